package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "welcome-packet-service/internal/common/errors"
)

// writeError translates any error into the API's JSON error envelope.
// This is the single boundary where workflow errors become user messages.
func (s *Server) writeError(c *gin.Context, err error) {
	status, body := apperrors.ToHTTP(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"path":  c.FullPath(),
			"code":  body.Code,
			"error": err,
		})
	}
	c.JSON(status, body)
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	status, body := apperrors.ToHTTP(err)
	c.AbortWithStatusJSON(status, body)
}

// writePDF streams the packet for download with its deterministic filename.
func writePDF(c *gin.Context, filename string, pdf []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

package web

import (
	"os"

	"github.com/gin-gonic/gin"

	apperrors "welcome-packet-service/internal/common/errors"
)

// resolveTemplate picks the template for this request: a PDF uploaded in
// the current session wins, otherwise the configured default on disk.
func (s *Server) resolveTemplate(c *gin.Context) ([]byte, error) {
	sess := s.currentSession(c)

	data, err := s.sessions.Template(c.Request.Context(), sess.ID)
	if err != nil {
		return nil, err
	}
	if data != nil {
		return data, nil
	}

	data, err = os.ReadFile(s.cfg.Template.DefaultPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewTemplateError("no template uploaded and no default template on disk")
		}
		return nil, apperrors.NewTemplateError("failed to read the default template: " + err.Error())
	}
	return data, nil
}

func (s *Server) defaultTemplateExists() bool {
	info, err := os.Stat(s.cfg.Template.DefaultPath)
	return err == nil && !info.IsDir()
}

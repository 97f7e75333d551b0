package web

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"welcome-packet-service/internal/audit"
	apperrors "welcome-packet-service/internal/common/errors"
	"welcome-packet-service/internal/common/metrics"
	"welcome-packet-service/internal/workflow"
)

const maxTemplateSize = 10 << 20 // 10 MiB

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type apiKeyRequest struct {
	APIKey string `json:"apiKey"`
}

type generateRequest struct {
	Mode  string `json:"mode"`
	Query string `json:"query"`
}

type emailRequest struct {
	Mode  string `json:"mode"`
	Query string `json:"query"`
	To    string `json:"to"`
}

type generateResponse struct {
	State        string      `json:"state"`
	Filename     string      `json:"filename"`
	Fields       interface{} `json:"fields"`
	Warning      string      `json:"warning,omitempty"`
	PacketBase64 string      `json:"packetBase64,omitempty"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperrors.NewInputError("username and password are required"))
		return
	}

	user, err := s.auth.Verify(req.Username, req.Password)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		s.writeError(c, err)
		return
	}

	sess, err := s.sessions.Create(c.Request.Context(), user.Username, user.Name, user.Email)
	if err != nil {
		s.writeError(c, err)
		return
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()

	c.SetCookie(
		s.cfg.Session.CookieName,
		sess.ID,
		s.cfg.Session.TTLMinutes*60,
		"/",
		"",
		s.cfg.Session.Secure,
		true, // HttpOnly
	)

	s.logger.Info("login", map[string]interface{}{"user": user.Username})
	c.JSON(http.StatusOK, gin.H{"username": user.Username, "name": user.Name})
}

func (s *Server) handleLogout(c *gin.Context) {
	sess := s.currentSession(c)
	if err := s.sessions.Delete(c.Request.Context(), sess.ID); err != nil {
		s.writeError(c, err)
		return
	}
	c.SetCookie(s.cfg.Session.CookieName, "", -1, "/", "", s.cfg.Session.Secure, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (s *Server) handleMe(c *gin.Context) {
	sess := s.currentSession(c)
	c.JSON(http.StatusOK, gin.H{
		"username":  sess.Username,
		"name":      sess.Name,
		"email":     sess.Email,
		"hasApiKey": sess.APIKey != "" || s.cfg.HubSpot.APIKey != "",
	})
}

func (s *Server) handleSetAPIKey(c *gin.Context) {
	var req apiKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.APIKey) == "" {
		s.writeError(c, apperrors.NewInputError("apiKey is required"))
		return
	}

	sess := s.currentSession(c)
	sess.APIKey = strings.TrimSpace(req.APIKey)
	if err := s.sessions.Save(c.Request.Context(), sess); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "api key stored"})
}

func (s *Server) handleTemplateStatus(c *gin.Context) {
	sess := s.currentSession(c)
	data, err := s.sessions.Template(c.Request.Context(), sess.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if data != nil {
		c.JSON(http.StatusOK, gin.H{"source": "uploaded", "bytes": len(data)})
		return
	}
	if s.defaultTemplateExists() {
		c.JSON(http.StatusOK, gin.H{"source": "default", "path": s.cfg.Template.DefaultPath})
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": "none"})
}

func (s *Server) handleTemplateUpload(c *gin.Context) {
	file, err := c.FormFile("template")
	if err != nil {
		s.writeError(c, apperrors.NewInputError("multipart field 'template' is required"))
		return
	}
	if file.Size > maxTemplateSize {
		s.writeError(c, apperrors.NewInputError("template exceeds the 10 MiB limit"))
		return
	}

	f, err := file.Open()
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxTemplateSize+1))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !strings.HasPrefix(string(data[:min(5, len(data))]), "%PDF-") {
		s.writeError(c, apperrors.NewTemplateError("uploaded file is not a PDF"))
		return
	}

	sess := s.currentSession(c)
	if err := s.sessions.SetTemplate(c.Request.Context(), sess.ID, data); err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info("template uploaded", map[string]interface{}{
		"user":  sess.Username,
		"bytes": len(data),
	})
	c.JSON(http.StatusOK, gin.H{"source": "uploaded", "bytes": len(data)})
}

func (s *Server) handleTemplateClear(c *gin.Context) {
	sess := s.currentSession(c)
	if err := s.sessions.ClearTemplate(c.Request.Context(), sess.ID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": "default"})
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperrors.NewInputError("mode and query are required"))
		return
	}

	result, err := s.runWorkflow(c, workflow.Mode(req.Mode), req.Query)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if c.Query("download") == "1" {
		writePDF(c, result.Filename, result.Packet)
		return
	}

	c.JSON(http.StatusOK, generateResponse{
		State:        string(result.State),
		Filename:     result.Filename,
		Fields:       result.Values,
		Warning:      result.Warning,
		PacketBase64: base64.StdEncoding.EncodeToString(result.Packet),
	})
}

func (s *Server) handleEmailPacket(c *gin.Context) {
	if s.mailer == nil {
		s.writeError(c, apperrors.NewInputError("email delivery is not enabled"))
		return
	}

	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperrors.NewInputError("mode and query are required"))
		return
	}

	result, err := s.runWorkflow(c, workflow.Mode(req.Mode), req.Query)
	if err != nil {
		s.writeError(c, err)
		return
	}

	recipient := strings.TrimSpace(req.To)
	if recipient == "" && result.Contact != nil {
		recipient = result.Contact.Email
	}
	if recipient == "" {
		s.writeError(c, apperrors.NewInputError("no recipient: the company has no contact email and none was supplied"))
		return
	}

	companyName := result.Values.CompanyName
	if err := s.mailer.SendPacket(c.Request.Context(), recipient, companyName, result.Filename, result.Packet); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":    string(result.State),
		"filename": result.Filename,
		"fields":   result.Values,
		"warning":  result.Warning,
		"sentTo":   recipient,
	})
}

// runWorkflow assembles a per-request controller from the session and
// executes one generate attempt, recording metrics and the audit entry.
func (s *Server) runWorkflow(c *gin.Context, mode workflow.Mode, query string) (*workflow.Result, error) {
	sess := s.currentSession(c)
	ctx := c.Request.Context()

	apiKey := sess.APIKey
	if apiKey == "" {
		apiKey = s.cfg.HubSpot.APIKey
	}
	if apiKey == "" {
		return nil, apperrors.NewInputError("no CRM API key configured for this session")
	}

	template, err := s.resolveTemplate(c)
	if err != nil {
		return nil, err
	}

	controller := workflow.New(
		workflow.Session{
			Username: sess.Username,
			Name:     sess.Name,
			Email:    sess.Email,
			APIKey:   apiKey,
		},
		s.crmFactory(apiKey),
		s.filler,
		s.logger,
	)

	start := time.Now()
	result, err := controller.Run(ctx, workflow.Request{
		Mode:     mode,
		Query:    query,
		Template: template,
	})

	outcome := "success"
	if err != nil {
		outcome = "failure"
		metrics.GenerateFailures.WithLabelValues(string(apperrors.Normalize(err).Code)).Inc()
	}
	if s.obs != nil {
		s.obs.RecordPacketGenerated(ctx, outcome)
		s.obs.RecordPacketDuration(ctx, time.Since(start), outcome)
	}
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		entry := audit.Entry{
			Username:    sess.Username,
			CompanyID:   result.Company.ID,
			CompanyName: result.Company.Name,
			Filename:    result.Filename,
			GeneratedAt: time.Now().UTC(),
		}
		if auditErr := s.audit.Record(ctx, entry); auditErr != nil {
			// Audit is best-effort; the packet is already generated.
			s.logger.Warn("audit record skipped", map[string]interface{}{
				"user":  sess.Username,
				"error": auditErr,
			})
		}
	}

	return result, nil
}

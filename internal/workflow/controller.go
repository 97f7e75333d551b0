// Package workflow orchestrates one generate action: search the CRM,
// fetch the primary contact, fill the template. Linear, no retry; any
// failure aborts the attempt and control returns to the caller.
package workflow

import (
	"context"
	"strings"
	"time"

	apperrors "welcome-packet-service/internal/common/errors"
	"welcome-packet-service/internal/common/logger"
	"welcome-packet-service/internal/hubspot"
	"welcome-packet-service/internal/packet"
)

// State tracks the progress of a single generate attempt.
type State string

const (
	StateIdle            State = "idle"
	StateSearching       State = "searching"
	StateFound           State = "found"
	StateNotFound        State = "not_found"
	StateFetchingContact State = "fetching_contact"
	StateFilling         State = "filling"
	StateReady           State = "ready"
	StateFailed          State = "failed"
)

// Mode selects how the company is looked up.
type Mode string

const (
	ModeName Mode = "name"
	ModeID   Mode = "id"
)

// CRM is the client surface the controller needs.
type CRM interface {
	GetCompanyByID(ctx context.Context, companyID string) (*hubspot.Company, error)
	SearchCompanyByName(ctx context.Context, text string) (*hubspot.Company, error)
	GetPrimaryContact(ctx context.Context, companyID string) (*hubspot.Contact, error)
}

// Filler fills the template and reports the resolved values.
type Filler interface {
	Fill(template []byte, company *hubspot.Company, contact *hubspot.Contact) ([]byte, packet.FieldValues, error)
}

// Session is the authenticated identity a controller is constructed with.
// There is no process-wide session state.
type Session struct {
	Username string
	Name     string
	Email    string
	APIKey   string
}

// Request is one generate action.
type Request struct {
	Mode     Mode
	Query    string
	Template []byte
}

// Result carries the outcome of a generate action. Packet is set only
// when State is StateReady; no partial output is ever returned.
type Result struct {
	State    State
	Company  *hubspot.Company
	Contact  *hubspot.Contact
	Values   packet.FieldValues
	Packet   []byte
	Filename string
	Warning  string
}

type Controller struct {
	session Session
	crm     CRM
	filler  Filler
	logger  logger.Logger
	now     func() time.Time
}

// New builds a controller for a single authenticated session.
func New(session Session, crm CRM, filler Filler, log logger.Logger) *Controller {
	return &Controller{
		session: session,
		crm:     crm,
		filler:  filler,
		logger: log.WithFields(map[string]interface{}{
			"component": "workflow",
			"user":      session.Username,
		}),
		now: time.Now,
	}
}

// Run executes the generate workflow to completion or failure.
func (c *Controller) Run(ctx context.Context, req Request) (*Result, error) {
	result := &Result{State: StateIdle}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		result.State = StateFailed
		return result, apperrors.NewInputError("company name or ID is required")
	}
	if len(req.Template) == 0 {
		result.State = StateFailed
		return result, apperrors.NewTemplateError("no template available; upload one or configure a default")
	}

	result.State = StateSearching
	company, err := c.lookupCompany(ctx, req.Mode, query)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeCompanyNotFound) {
			result.State = StateNotFound
		} else {
			result.State = StateFailed
		}
		return result, err
	}
	result.State = StateFound
	result.Company = company

	c.logger.Info("company found", map[string]interface{}{
		"companyId":   company.ID,
		"companyName": company.Name,
	})

	result.State = StateFetchingContact
	contact, err := c.crm.GetPrimaryContact(ctx, company.ID)
	if err != nil {
		result.State = StateFailed
		return result, err
	}
	if contact == nil {
		// Contact is optional; proceed with a warning.
		result.Warning = "no contact associated with this company"
		c.logger.Warn("no associated contact", map[string]interface{}{
			"companyId": company.ID,
		})
	}
	result.Contact = contact

	result.State = StateFilling
	filled, values, err := c.filler.Fill(req.Template, company, contact)
	if err != nil {
		result.State = StateFailed
		return result, err
	}

	result.State = StateReady
	result.Values = values
	result.Packet = filled
	result.Filename = packet.BuildFilename(values.CompanyName, c.now())

	c.logger.Info("packet ready", map[string]interface{}{
		"companyId": company.ID,
		"filename":  result.Filename,
		"bytes":     len(filled),
	})

	return result, nil
}

func (c *Controller) lookupCompany(ctx context.Context, mode Mode, query string) (*hubspot.Company, error) {
	switch mode {
	case ModeID:
		return c.crm.GetCompanyByID(ctx, query)
	case ModeName, "":
		return c.crm.SearchCompanyByName(ctx, query)
	default:
		return nil, apperrors.NewInputError("mode must be \"name\" or \"id\"")
	}
}

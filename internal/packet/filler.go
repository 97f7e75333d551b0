// Package packet fills the welcome packet PDF template from CRM records.
// The template contract: the first page exposes four text form fields
// (Text1..Text4); everything else in the document stays untouched.
package packet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	apperrors "welcome-packet-service/internal/common/errors"
	"welcome-packet-service/internal/common/logger"
	"welcome-packet-service/internal/hubspot"
)

// formDocument mirrors the pdfcpu form JSON for export and fill.
type formDocument struct {
	Forms []formPage `json:"forms"`
}

type formPage struct {
	TextFields []textField `json:"textfield,omitempty"`
}

// textField carries both identifiers pdfcpu exports: ID is the PDF
// object number, Name is the AcroForm field name. The template contract
// is expressed in Names; IDs are ignored.
type textField struct {
	Pages  []int  `json:"pages,omitempty"`
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Value  string `json:"value"`
	Locked bool   `json:"locked,omitempty"`
}

type Filler struct {
	logger logger.Logger
	now    func() time.Time
}

func NewFiller(log logger.Logger) *Filler {
	return &Filler{
		logger: log.WithFields(map[string]interface{}{"component": "packet-filler"}),
		now:    time.Now,
	}
}

// Fill writes the four field values into the template and returns the
// filled document bytes alongside the value mapping for display.
// The generation date is computed at fill time in local time.
func (f *Filler) Fill(template []byte, company *hubspot.Company, contact *hubspot.Contact) ([]byte, FieldValues, error) {
	values := BuildFieldValues(company, contact, f.now())

	if err := f.validateTemplate(template); err != nil {
		return nil, FieldValues{}, err
	}

	payload, err := json.Marshal(fillPayload(values))
	if err != nil {
		return nil, FieldValues{}, fmt.Errorf("failed to marshal form data: %w", err)
	}

	var filled bytes.Buffer
	if err := api.FillForm(bytes.NewReader(template), bytes.NewReader(payload), &filled, nil); err != nil {
		return nil, FieldValues{}, apperrors.NewTemplateError(fmt.Sprintf("filling form fields: %v", err))
	}

	f.logger.Info("packet filled", map[string]interface{}{
		"company":  values.CompanyName,
		"template": len(template),
		"output":   filled.Len(),
	})

	return filled.Bytes(), values, nil
}

// validateTemplate checks that the template parses and its first page
// exposes the four expected text fields.
func (f *Filler) validateTemplate(template []byte) error {
	fields, err := readFormFields(template)
	if err != nil {
		return err
	}

	for _, name := range []string{FieldCompanyName, FieldCustomerNumber, FieldAccountTeam, FieldGeneratedOn} {
		field, ok := fields[name]
		if !ok {
			return apperrors.NewTemplateError(fmt.Sprintf("template is missing form field %q", name))
		}
		if len(field.Pages) > 0 && field.Pages[0] != 1 {
			return apperrors.NewTemplateError(fmt.Sprintf("form field %q is not on the first page", name))
		}
	}

	return nil
}

// ReadFieldValues re-reads the text form field values of a document.
func ReadFieldValues(doc []byte) (map[string]string, error) {
	fields, err := readFormFields(doc)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(fields))
	for name, field := range fields {
		values[name] = field.Value
	}
	return values, nil
}

func readFormFields(doc []byte) (map[string]textField, error) {
	var exported bytes.Buffer
	if err := api.ExportFormJSON(bytes.NewReader(doc), &exported, "template.pdf", nil); err != nil {
		return nil, apperrors.NewTemplateError(fmt.Sprintf("parsing template form: %v", err))
	}

	var form formDocument
	if err := json.Unmarshal(exported.Bytes(), &form); err != nil {
		return nil, apperrors.NewTemplateError(fmt.Sprintf("decoding template form: %v", err))
	}
	if len(form.Forms) == 0 {
		return nil, apperrors.NewTemplateError("template has no form")
	}

	fields := make(map[string]textField)
	for _, page := range form.Forms {
		for _, field := range page.TextFields {
			fields[field.Name] = field
		}
	}
	return fields, nil
}

func fillPayload(values FieldValues) formDocument {
	return formDocument{
		Forms: []formPage{{
			TextFields: []textField{
				{Name: FieldCompanyName, Value: values.CompanyName},
				{Name: FieldCustomerNumber, Value: values.CustomerNumber},
				{Name: FieldAccountTeam, Value: values.AccountTeam},
				{Name: FieldGeneratedOn, Value: values.GeneratedOn},
			},
		}},
	}
}

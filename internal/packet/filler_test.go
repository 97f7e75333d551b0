package packet

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "welcome-packet-service/internal/common/errors"
	"welcome-packet-service/internal/common/logger"
	"welcome-packet-service/internal/hubspot"
)

// buildTemplate creates a one-page form PDF carrying the named text
// fields, standing in for the BTX cover page.
func buildTemplate(t *testing.T, fieldNames ...string) []byte {
	t.Helper()

	entries := make([]string, 0, len(fieldNames))
	for i, name := range fieldNames {
		entries = append(entries, fmt.Sprintf(
			`{"id": %q, "pos": [72, %d], "width": 300}`, name, 100+i*60))
	}

	createSpec := fmt.Sprintf(`{
		"paper": "A4",
		"origin": "upperLeft",
		"fonts": {
			"input": {"name": "Helvetica", "size": 12},
			"label": {"name": "Helvetica", "size": 12}
		},
		"pages": {
			"1": {
				"content": {
					"textfield": [%s]
				}
			}
		}
	}`, strings.Join(entries, ","))

	var buf bytes.Buffer
	require.NoError(t, api.Create(nil, strings.NewReader(createSpec), &buf, nil))
	return buf.Bytes()
}

func packetTemplate(t *testing.T) []byte {
	return buildTemplate(t, FieldCompanyName, FieldCustomerNumber, FieldAccountTeam, FieldGeneratedOn)
}

func newTestFiller(t *testing.T) *Filler {
	f := NewFiller(logger.NewTestLogger(t))
	f.now = func() time.Time { return fixedDate }
	return f
}

func TestFill_RoundTrip(t *testing.T) {
	template := packetTemplate(t)
	filler := newTestFiller(t)

	company := &hubspot.Company{ID: "42", Name: "Acme Corp", CustomerNumber: "CUST-9"}
	contact := &hubspot.Contact{FirstName: "Jane", LastName: "Doe"}

	filled, values, err := filler.Fill(template, company, contact)
	require.NoError(t, err)
	require.NotEmpty(t, filled)

	assert.Equal(t, "Acme Corp", values.CompanyName)
	assert.Equal(t, "CUST-9", values.CustomerNumber)
	assert.Equal(t, "Jane Doe", values.AccountTeam)
	assert.Equal(t, "March 04, 2025", values.GeneratedOn)

	got, err := ReadFieldValues(filled)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got[FieldCompanyName])
	assert.Equal(t, "CUST-9", got[FieldCustomerNumber])
	assert.Equal(t, "Jane Doe", got[FieldAccountTeam])
	assert.Equal(t, "March 04, 2025", got[FieldGeneratedOn])
}

func TestFill_NoContact(t *testing.T) {
	template := packetTemplate(t)
	filler := newTestFiller(t)

	company := &hubspot.Company{ID: "42", Name: "Acme Corp"}

	filled, values, err := filler.Fill(template, company, nil)
	require.NoError(t, err)
	require.NotEmpty(t, filled)
	assert.Equal(t, "N/A", values.AccountTeam)
	assert.Equal(t, "N/A", values.CustomerNumber)

	got, err := ReadFieldValues(filled)
	require.NoError(t, err)
	assert.Equal(t, "N/A", got[FieldAccountTeam])
}

func TestFill_MissingField(t *testing.T) {
	template := buildTemplate(t, FieldCompanyName, FieldCustomerNumber, FieldAccountTeam)
	filler := newTestFiller(t)

	_, _, err := filler.Fill(template, &hubspot.Company{ID: "42", Name: "Acme Corp"}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTemplateInvalid))
	assert.Contains(t, apperrors.Normalize(err).Details, FieldGeneratedOn)
}

func TestFill_NotAPDF(t *testing.T) {
	filler := newTestFiller(t)

	company := &hubspot.Company{ID: "42", Name: "Acme Corp"}

	_, _, err := filler.Fill([]byte("this is not a pdf"), company, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTemplateInvalid))
}

func TestFill_EmptyTemplate(t *testing.T) {
	filler := newTestFiller(t)

	_, _, err := filler.Fill(nil, &hubspot.Company{ID: "42"}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTemplateInvalid))
}

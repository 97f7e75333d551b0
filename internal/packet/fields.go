package packet

import (
	"fmt"
	"strings"
	"time"

	"welcome-packet-service/internal/hubspot"
)

// Form field identifiers on the first page of the packet template,
// in the order: company name, customer number, account team, date.
const (
	FieldCompanyName    = "Text1"
	FieldCustomerNumber = "Text2"
	FieldAccountTeam    = "Text3"
	FieldGeneratedOn    = "Text4"
)

const missingValue = "N/A"

const dateLayout = "January 02, 2006"

// FieldValues is the flat four-key mapping written into the template.
// Generated fresh per request, never persisted.
type FieldValues struct {
	CompanyName    string `json:"Text1"`
	CustomerNumber string `json:"Text2"`
	AccountTeam    string `json:"Text3"`
	GeneratedOn    string `json:"Text4"`
}

// BuildFieldValues maps CRM records to the template's field values.
// Absent properties and an absent or empty-named contact fall back to "N/A".
func BuildFieldValues(company *hubspot.Company, contact *hubspot.Contact, now time.Time) FieldValues {
	values := FieldValues{
		CompanyName:    missingValue,
		CustomerNumber: missingValue,
		AccountTeam:    missingValue,
		GeneratedOn:    now.Format(dateLayout),
	}

	if company != nil {
		if company.Name != "" {
			values.CompanyName = company.Name
		}
		if company.CustomerNumber != "" {
			values.CustomerNumber = company.CustomerNumber
		}
	}

	if contact != nil {
		team := strings.TrimSpace(contact.FirstName + " " + contact.LastName)
		if team != "" {
			values.AccountTeam = team
		}
	}

	return values
}

// filenameSanitizer keeps the download filename free of path
// separators; "N/A" company names would otherwise inject a slash.
var filenameSanitizer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// BuildFilename derives the deterministic download filename, e.g.
// BTX_Welcome_Packet_Acme_Corp_20250304.pdf.
func BuildFilename(companyName string, t time.Time) string {
	return fmt.Sprintf(
		"BTX_Welcome_Packet_%s_%s.pdf",
		filenameSanitizer.Replace(companyName),
		t.Format("20060102"),
	)
}

package packet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"welcome-packet-service/internal/hubspot"
)

var fixedDate = time.Date(2025, time.March, 4, 15, 30, 0, 0, time.UTC)

func TestBuildFieldValues_CompleteRecords(t *testing.T) {
	company := &hubspot.Company{ID: "42", Name: "Acme Corp", CustomerNumber: "CUST-9"}
	contact := &hubspot.Contact{FirstName: "Jane", LastName: "Doe"}

	values := BuildFieldValues(company, contact, fixedDate)

	assert.Equal(t, "Acme Corp", values.CompanyName)
	assert.Equal(t, "CUST-9", values.CustomerNumber)
	assert.Equal(t, "Jane Doe", values.AccountTeam)
	assert.Equal(t, "March 04, 2025", values.GeneratedOn)
}

func TestBuildFieldValues_Defaults(t *testing.T) {
	tests := []struct {
		name    string
		company *hubspot.Company
		contact *hubspot.Contact
		want    FieldValues
	}{
		{
			name: "nil contact",
			company: &hubspot.Company{ID: "42", Name: "Acme Corp", CustomerNumber: "CUST-9"},
			want: FieldValues{
				CompanyName:    "Acme Corp",
				CustomerNumber: "CUST-9",
				AccountTeam:    "N/A",
				GeneratedOn:    "March 04, 2025",
			},
		},
		{
			name:    "missing customer number",
			company: &hubspot.Company{ID: "42", Name: "Acme Corp"},
			contact: &hubspot.Contact{FirstName: "Jane", LastName: "Doe"},
			want: FieldValues{
				CompanyName:    "Acme Corp",
				CustomerNumber: "N/A",
				AccountTeam:    "Jane Doe",
				GeneratedOn:    "March 04, 2025",
			},
		},
		{
			name:    "contact with empty names",
			company: &hubspot.Company{ID: "42", Name: "Acme Corp"},
			contact: &hubspot.Contact{Email: "hello@acme.example"},
			want: FieldValues{
				CompanyName:    "Acme Corp",
				CustomerNumber: "N/A",
				AccountTeam:    "N/A",
				GeneratedOn:    "March 04, 2025",
			},
		},
		{
			name:    "first name only",
			company: &hubspot.Company{ID: "42", Name: "Acme Corp"},
			contact: &hubspot.Contact{FirstName: "Jane"},
			want: FieldValues{
				CompanyName:    "Acme Corp",
				CustomerNumber: "N/A",
				AccountTeam:    "Jane",
				GeneratedOn:    "March 04, 2025",
			},
		},
		{
			name: "nil company",
			want: FieldValues{
				CompanyName:    "N/A",
				CustomerNumber: "N/A",
				AccountTeam:    "N/A",
				GeneratedOn:    "March 04, 2025",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildFieldValues(tt.company, tt.contact, fixedDate)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildFilename(t *testing.T) {
	tests := []struct {
		companyName string
		want        string
	}{
		{"Acme Corp", "BTX_Welcome_Packet_Acme_Corp_20250304.pdf"},
		{"Acme", "BTX_Welcome_Packet_Acme_20250304.pdf"},
		{"Acme Corp International", "BTX_Welcome_Packet_Acme_Corp_International_20250304.pdf"},
		{"N/A", "BTX_Welcome_Packet_N_A_20250304.pdf"},
		{"Acme/EMEA Branch", "BTX_Welcome_Packet_Acme_EMEA_Branch_20250304.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.companyName, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildFilename(tt.companyName, fixedDate))
		})
	}
}

package hubspot

// Company is a CRM company record, mapped from the v3 object envelope.
// CustomerNumber is empty when the property is absent in the CRM.
type Company struct {
	ID             string
	Name           string
	CustomerNumber string
}

// Contact is a CRM contact record. Email is carried for packet delivery.
type Contact struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}

// companyEnvelope is the HubSpot v3 object envelope for companies.
type companyEnvelope struct {
	ID         string `json:"id"`
	Properties struct {
		Name           string `json:"name"`
		CustomerNumber string `json:"customer-number"`
	} `json:"properties"`
}

type contactEnvelope struct {
	ID         string `json:"id"`
	Properties struct {
		FirstName string `json:"firstname"`
		LastName  string `json:"lastname"`
		Email     string `json:"email"`
	} `json:"properties"`
}

type searchResponse struct {
	Total   int               `json:"total"`
	Results []companyEnvelope `json:"results"`
}

// associationsResponse is the v4 association listing. toObjectId is numeric
// on the wire.
type associationsResponse struct {
	Results []struct {
		ToObjectID int64 `json:"toObjectId"`
	} `json:"results"`
}

type searchRequest struct {
	FilterGroups []filterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties"`
}

type filterGroup struct {
	Filters []filter `json:"filters"`
}

type filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

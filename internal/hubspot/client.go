// Package hubspot wraps the four HubSpot CRM REST calls the packet
// workflow depends on. Calls are synchronous and single-attempt; the only
// timeout is the transport default configured on the client.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	apperrors "welcome-packet-service/internal/common/errors"
)

const companyProperties = "name,customer-number"

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetCompanyByID fetches a company directly, requesting only the name and
// customer-number properties.
func (c *Client) GetCompanyByID(ctx context.Context, companyID string) (*Company, error) {
	url := fmt.Sprintf("%s/crm/v3/objects/companies/%s?properties=%s", c.baseURL, companyID, companyProperties)

	body, err := c.get(ctx, "get company", url)
	if err != nil {
		return nil, err
	}

	var envelope companyEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.NewCRMAPIError("get company", http.StatusOK, fmt.Sprintf("malformed response: %v", err))
	}

	return companyFromEnvelope("get company", envelope)
}

// SearchCompanyByName performs a contains-token filter search on the name
// property and returns the first match. Zero matches yield a
// COMPANY_NOT_FOUND error, distinct from a direct-ID 404.
func (c *Client) SearchCompanyByName(ctx context.Context, text string) (*Company, error) {
	url := fmt.Sprintf("%s/crm/v3/objects/companies/search", c.baseURL)

	payload := searchRequest{
		FilterGroups: []filterGroup{{
			Filters: []filter{{
				PropertyName: "name",
				Operator:     "CONTAINS_TOKEN",
				Value:        text,
			}},
		}},
		Properties: []string{"name", "customer-number"},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do("search companies", req)
	if err != nil {
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.NewCRMAPIError("search companies", http.StatusOK, fmt.Sprintf("malformed response: %v", err))
	}

	if len(result.Results) == 0 {
		return nil, apperrors.NewCompanyNotFoundError(text)
	}

	// First result only; the CRM does not guarantee a stable order and the
	// tool deliberately skips disambiguation.
	return companyFromEnvelope("search companies", result.Results[0])
}

// GetPrimaryContact lists the company's contact associations, takes the
// first association's target and fetches its name properties. Returns
// (nil, nil) when no association exists.
func (c *Client) GetPrimaryContact(ctx context.Context, companyID string) (*Contact, error) {
	url := fmt.Sprintf("%s/crm/v4/objects/companies/%s/associations/contacts", c.baseURL, companyID)

	body, err := c.get(ctx, "list contact associations", url)
	if err != nil {
		return nil, err
	}

	var associations associationsResponse
	if err := json.Unmarshal(body, &associations); err != nil {
		return nil, apperrors.NewCRMAPIError("list contact associations", http.StatusOK, fmt.Sprintf("malformed response: %v", err))
	}

	if len(associations.Results) == 0 {
		return nil, nil
	}

	contactID := strconv.FormatInt(associations.Results[0].ToObjectID, 10)
	return c.getContactByID(ctx, contactID)
}

func (c *Client) getContactByID(ctx context.Context, contactID string) (*Contact, error) {
	url := fmt.Sprintf("%s/crm/v3/objects/contacts/%s?properties=firstname,lastname,email", c.baseURL, contactID)

	body, err := c.get(ctx, "get contact", url)
	if err != nil {
		return nil, err
	}

	var envelope contactEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.NewCRMAPIError("get contact", http.StatusOK, fmt.Sprintf("malformed response: %v", err))
	}
	if envelope.ID == "" {
		return nil, apperrors.NewCRMAPIError("get contact", http.StatusOK, "response is missing the object id")
	}

	return &Contact{
		ID:        envelope.ID,
		FirstName: envelope.Properties.FirstName,
		LastName:  envelope.Properties.LastName,
		Email:     envelope.Properties.Email,
	}, nil
}

func (c *Client) get(ctx context.Context, operation, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(operation, req)
}

func (c *Client) do(operation string, req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, apperrors.NewCRMAuthError(string(body))
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NewResourceNotFoundError(operation, string(body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, apperrors.NewCRMAPIError(operation, resp.StatusCode, string(body))
	}

	return body, nil
}

// companyFromEnvelope validates the envelope before handing a typed record
// to the workflow; schema mismatches fail fast as CRM_API_ERROR.
func companyFromEnvelope(operation string, envelope companyEnvelope) (*Company, error) {
	if envelope.ID == "" {
		return nil, apperrors.NewCRMAPIError(operation, http.StatusOK, "response is missing the object id")
	}
	return &Company{
		ID:             envelope.ID,
		Name:           envelope.Properties.Name,
		CustomerNumber: envelope.Properties.CustomerNumber,
	}, nil
}

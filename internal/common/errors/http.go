package errors

import "net/http"

// HTTPStatus maps an error code to the status the API boundary responds with.
// Every CRM or template failure aborts only the current generate attempt;
// nothing here is retried automatically.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInputInvalid:
		return http.StatusBadRequest
	case ErrCodeLoginFailed, ErrCodeSessionExpired, ErrCodeCRMAuthFailed:
		return http.StatusUnauthorized
	case ErrCodeCompanyNotFound, ErrCodeResourceNotFound:
		return http.StatusNotFound
	case ErrCodeTemplateInvalid:
		return http.StatusUnprocessableEntity
	case ErrCodeCRMAPIError, ErrCodeEmailSendFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HTTPBody is the JSON error envelope returned by the API.
type HTTPBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// ToHTTP normalizes any error into a status code and response body.
func ToHTTP(err error) (int, HTTPBody) {
	stdErr := Normalize(err)
	return HTTPStatus(stdErr.Code), HTTPBody{
		Code:    stdErr.Code,
		Message: stdErr.Message,
		Details: stdErr.Details,
	}
}

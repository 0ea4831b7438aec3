package chessdto

// DomainError is the JSON error body returned by the HTTP API.
type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chess service error"
}

// ErrorResponse wraps a DomainError on the wire.
type ErrorResponse struct {
	Error DomainError `json:"error"`
}

package httputils

// RequestError structure
type RequestError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// FieldErrors - field level validation messages surfaced to the checkout form
type FieldErrors struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

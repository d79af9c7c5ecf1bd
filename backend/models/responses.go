package models

// APIResponse is the JSON envelope of every non-page response.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// RetryAfter is set in seconds on rate limited responses.
	RetryAfter int `json:"retryAfter,omitempty"`
}

func OK(data any) APIResponse {
	return APIResponse{Success: true, Data: data}
}

func Failure(code, message string) APIResponse {
	return APIResponse{Error: &APIError{Code: code, Message: message}}
}

package models

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewErrorResponse builds an error body
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// InternalErrorMessage is returned for failures whose details stay server-side
const InternalErrorMessage = "internal server error"

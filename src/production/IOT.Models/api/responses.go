package api_models

// ErrorResponse is the body of every non-validation error
type ErrorResponse struct {
	Error string `json:"error" example:"Site not found"`
}

// FieldError describes one rejected field
type FieldError struct {
	Field   string `json:"field" example:"name"`
	Message string `json:"message" example:"name is required"`
}

// ValidationErrorResponse is returned when request validation fails
type ValidationErrorResponse struct {
	Error  string       `json:"error" example:"validation failed"`
	Errors []FieldError `json:"errors"`
}

// DeleteResponse is returned by every delete endpoint
type DeleteResponse struct {
	Message string `json:"message" example:"Site successfully deleted"`
	Deleted int64  `json:"deleted" example:"1"`
}

// MessageResponse is a plain informational body
type MessageResponse struct {
	Message string `json:"message"`
}

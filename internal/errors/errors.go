package errors

import "fmt"

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeExternal   ErrorType = "EXTERNAL_API_ERROR"
	ErrorTypeMalformed  ErrorType = "MALFORMED_RESPONSE"
	ErrorTypeStorage    ErrorType = "STORAGE_ERROR"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
)

type APIError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Details)
	}
	return e.Message
}

// Error constructors
func NewValidationError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

func NewExternalError(service string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeExternal,
		Message: fmt.Sprintf("Error from external service (%s)", service),
		Details: err.Error(),
	}
}

func NewMalformedError(service, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeMalformed,
		Message: fmt.Sprintf("Unexpected payload from external service (%s)", service),
		Details: message,
	}
}

func NewStorageError(op string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeStorage,
		Message: fmt.Sprintf("Storage operation failed (%s)", op),
		Details: err.Error(),
	}
}

func NewInternalError(err error) *APIError {
	return &APIError{
		Type:    ErrorTypeInternal,
		Message: "Internal server error",
		Details: err.Error(),
	}
}

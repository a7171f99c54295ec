package errors

import (
	"fmt"
	"testing"
)

func TestErrorConstructors(t *testing.T) {
	testCases := []struct {
		err      *APIError
		expected ErrorType
	}{
		{NewValidationError("image is required"), ErrorTypeValidation},
		{NewExternalError("classifier", fmt.Errorf("status 500")), ErrorTypeExternal},
		{NewMalformedError("classifier", "disease is float64, want string"), ErrorTypeMalformed},
		{NewStorageError("insert", fmt.Errorf("deadline exceeded")), ErrorTypeStorage},
		{NewInternalError(fmt.Errorf("boom")), ErrorTypeInternal},
	}

	for _, tc := range testCases {
		if tc.err.Type != tc.expected {
			t.Errorf("Expected type %s, got %s", tc.expected, tc.err.Type)
		}
		if tc.err.Message == "" {
			t.Errorf("Expected non-empty message for %s", tc.expected)
		}
	}
}

func TestAPIError_Error(t *testing.T) {
	withDetails := NewExternalError("classifier", fmt.Errorf("connection refused"))
	if withDetails.Error() != "Error from external service (classifier): connection refused" {
		t.Errorf("Unexpected error string: %q", withDetails.Error())
	}

	withoutDetails := NewValidationError("disease query parameter is required")
	if withoutDetails.Error() != "disease query parameter is required" {
		t.Errorf("Unexpected error string: %q", withoutDetails.Error())
	}
}

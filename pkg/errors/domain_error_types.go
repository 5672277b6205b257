package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// Reference error codes
const (
	CodeNodeNotFound        = "NODE_NOT_FOUND"
	CodeParentNotFound      = "PARENT_NOT_FOUND"
	CodeEdgeEndpointMissing = "EDGE_ENDPOINT_MISSING"
)

// Render error codes
const (
	CodeSurfaceUnavailable = "SURFACE_UNAVAILABLE"
	CodeEncodeFailed       = "ENCODE_FAILED"
	CodeExportCancelled    = "EXPORT_CANCELLED"
)

// Invariant codes
const (
	CodeRootCount       = "ROOT_COUNT"
	CodeDuplicateTarget = "DUPLICATE_TARGET"
	CodeOrphanNode      = "ORPHAN_NODE"
	CodeDuplicateID     = "DUPLICATE_ID"
)

// NewReferenceError reports a command that named an id the graph does not hold.
// Callers on the interaction path recover these as no-ops.
func NewReferenceError(code, id string) *AppError {
	msg := fmt.Sprintf("%s: %q", strings.ToLower(strings.ReplaceAll(code, "_", " ")), id)
	return newAppError(ErrorTypeReference, http.StatusNotFound, msg).
		WithCode(code).
		WithDetails(map[string]interface{}{"id": id})
}

// NewRenderError reports that an export could not produce its output.
func NewRenderError(code, message string) *AppError {
	return newAppError(ErrorTypeRender, http.StatusInternalServerError, message).WithCode(code)
}

// NewInvariantViolation reports a broken structural guarantee of the graph.
func NewInvariantViolation(code, message string) *AppError {
	return newAppError(ErrorTypeInvariant, http.StatusInternalServerError, message).WithCode(code)
}

// IsReference checks if an error is a reference error
func IsReference(err error) bool {
	return IsType(err, ErrorTypeReference)
}

// IsRender checks if an error is a render error
func IsRender(err error) bool {
	return IsType(err, ErrorTypeRender)
}

// IsInvariant checks if an error is an invariant violation
func IsInvariant(err error) bool {
	return IsType(err, ErrorTypeInvariant)
}

// HasCode checks the error chain for an AppError carrying code.
func HasCode(err error, code string) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// ValidationErrors aggregates multiple validation errors
type ValidationErrors struct {
	Errors []*AppError `json:"errors"`
}

// NewValidationErrors creates a new validation errors collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]*AppError, 0),
	}
}

// Add adds a validation error for field
func (v *ValidationErrors) Add(field string, message string) {
	err := NewValidationError(message).
		WithCode(CodeFieldInvalid).
		WithDetails(map[string]interface{}{"field": field})
	v.Errors = append(v.Errors, err)
}

// HasErrors returns true if there are validation errors
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}

	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return fmt.Sprintf("Validation failed: %s", strings.Join(messages, "; "))
}

// AsAppError folds the collection into a single validation AppError.
func (v *ValidationErrors) AsAppError() *AppError {
	return NewValidationError(v.Error()).WithDetails(map[string]interface{}{
		"fields": v.ToMap(),
	})
}

// ToMap converts validation errors to a map for JSON serialization
func (v *ValidationErrors) ToMap() map[string][]string {
	result := make(map[string][]string)

	for _, err := range v.Errors {
		field, ok := err.Details["field"].(string)
		if !ok {
			field = "general"
		}
		result[field] = append(result[field], err.Message)
	}

	return result
}

package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_Handle(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   ErrorType
		wantCode   string
	}{
		{"session missing", NewSessionNotFoundError("s1"), http.StatusNotFound, ErrorTypeNotFound, CodeSessionNotFound},
		{"validation", NewValidationError("bad").WithCode(CodeMalformedBody), http.StatusBadRequest, ErrorTypeValidation, CodeMalformedBody},
		{"conflict", NewConflictError("no idea is selected").WithCode(CodeNoSelection), http.StatusConflict, ErrorTypeConflict, CodeNoSelection},
		{"reference", NewReferenceError(CodeNodeNotFound, "n9"), http.StatusNotFound, ErrorTypeReference, CodeNodeNotFound},
		{"render", NewRenderError(CodeSurfaceUnavailable, "no surface"), http.StatusInternalServerError, ErrorTypeRender, CodeSurfaceUnavailable},
		{"wrapped", errors.Join(errors.New("ctx"), NewRateLimitError("slow down")), http.StatusTooManyRequests, ErrorTypeRateLimited, ""},
		{"plain", errors.New("boom"), http.StatusInternalServerError, ErrorTypeInternal, ""},
	}

	h := NewErrorHandler(zap.NewNop(), false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("X-Request-ID", "req-1")

			h.Handle(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			body := decode(t, rec)
			assert.True(t, body.Error)
			assert.Equal(t, string(tt.wantType), body.Type)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, "req-1", body.RequestID)
			assert.NotContains(t, body.Details, "stack_trace")
		})
	}
}

func TestErrorHandler_DebugExposesDetail(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), true)

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"))
	assert.Equal(t, "boom", decode(t, rec).Message)

	rec = httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), NewReferenceError(CodeNodeNotFound, "n1"))
	body := decode(t, rec)
	assert.Equal(t, "n1", body.Details["id"])
	assert.NotEmpty(t, body.Details["stack_trace"])
}

func TestErrorHandler_MiddlewareRecoversPanics(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)

	tests := []struct {
		name     string
		value    interface{}
		wantType ErrorType
	}{
		{"string", "kaboom", ErrorTypeInternal},
		{"invariant", NewInvariantViolation(CodeRootCount, "two roots"), ErrorTypeInvariant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := h.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic(tt.value)
			}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, string(tt.wantType), decode(t, rec).Type)
		})
	}
}

func TestErrorHandler_HandleStatus(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	req.Header.Set(traceHeader, "Root=1-abc")

	h.HandleStatus(rec, req, http.StatusTooManyRequests, "too many")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, string(ErrorTypeRateLimited), body.Type)
	assert.Equal(t, "Root=1-abc", body.TraceID)
}

func TestValidationErrorsAggregate(t *testing.T) {
	verrs := NewValidationErrors()
	assert.False(t, verrs.HasErrors())

	verrs.Add("nodes[0].id", "node ID cannot be empty")
	verrs.Add("nodes[0].id", "node ID must not contain whitespace")
	verrs.Add("metadata.nodeCount", "is 3 but document has 2 nodes")
	require.True(t, verrs.HasErrors())

	appErr := verrs.AsAppError()
	assert.True(t, IsValidation(appErr))
	fields := appErr.Details["fields"].(map[string][]string)
	assert.Len(t, fields["nodes[0].id"], 2)
	assert.Len(t, fields["metadata.nodeCount"], 1)
}

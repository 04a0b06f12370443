// Package http serves the tracker's JSON API.
//
// This file implements the Builder Pattern for JSON responses and the
// mapping from service errors to status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
	applog "garagetracker/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response. A 204 or a nil body writes no content.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil || b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(payload, '\n'))
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ErrorResponse creates a standard {"error": message} response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// UnauthorizedError creates a 401 response.
func UnauthorizedError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, "unauthorized")
}

// badRequest marks a request that could not be decoded at all.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

// classify maps err to a status code, a client-safe message and the log
// error type.
func classify(err error) (status int, body errorBody, errorType string) {
	var verr *core.ValidationError
	var breq *badRequest
	var serr *gateway.StoreError
	switch {
	case errors.As(err, &breq):
		return http.StatusBadRequest, errorBody{Error: breq.msg}, applog.ErrorTypeValidation
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, errorBody{Error: verr.Error(), Field: verr.Field}, applog.ErrorTypeValidation
	case errors.Is(err, gateway.ErrNoSession):
		return http.StatusUnauthorized, errorBody{Error: "unauthorized"}, applog.ErrorTypeAuth
	case errors.Is(err, gateway.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "not found"}, applog.ErrorTypeNotFound
	case errors.Is(err, gateway.ErrConstraint):
		return http.StatusConflict, errorBody{Error: "conflicts with existing records"}, applog.ErrorTypeConflict
	case errors.Is(err, gateway.ErrBadFilter):
		return http.StatusBadRequest, errorBody{Error: "unsupported filter"}, applog.ErrorTypeValidation
	case errors.As(err, &serr):
		return http.StatusBadGateway, errorBody{Error: "record store unavailable"}, applog.ErrorTypeDatabase
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal error"}, applog.ErrorTypeInternal
	}
}

// writeError answers with the status classify picks for err. Server-side
// failures are logged with the request's logger; client errors are not.
func writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status, body, errorType := classify(err)
	if status >= http.StatusInternalServerError {
		logger := applog.NewStructuredLogger(applog.FromContext(r.Context()))
		logger.LogError(r.Context(), "Request failed", err, operation,
			applog.NewFields().WithErrorType(errorType))
	}
	NewJSONResponse().Status(status).Body(body).Write(w)
}

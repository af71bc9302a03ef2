// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing responses.
// It provides a fluent API for status, headers, client-side triggers and
// JSON or HTML bodies so every handler formats responses the same way.

package http

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"pocket/internal/backup"
	"pocket/internal/chat"
	"pocket/internal/core"
	"pocket/internal/profile"
	"pocket/internal/report"
)

// TriggerHeader carries client-side events as a JSON object, read by app.js.
const TriggerHeader = "X-Pocket-Trigger"

// ResponseBuilder provides a fluent API for building responses.
type ResponseBuilder struct {
	triggers   map[string]interface{}
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		triggers:   make(map[string]interface{}),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event with optional data to the trigger header.
func (b *ResponseBuilder) Trigger(name string, data interface{}) *ResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerLedgerChanged tells the dashboard to refresh its totals and list.
func (b *ResponseBuilder) TriggerLedgerChanged(revision uint64) *ResponseBuilder {
	return b.Trigger("ledger:changed", map[string]uint64{"revision": revision})
}

// TriggerProfileChanged tells the dashboard to reload labels and greeting.
func (b *ResponseBuilder) TriggerProfileChanged() *ResponseBuilder {
	return b.Trigger("profile:changed", struct{}{})
}

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// TriggerNotification adds a show-notification trigger with the specified parameters.
func (b *ResponseBuilder) TriggerNotification(notifType NotificationType, message string, durationMs int) *ResponseBuilder {
	return b.Trigger("show-notification", map[string]interface{}{
		"type":     string(notifType),
		"message":  message,
		"duration": durationMs,
	})
}

// TriggerSuccessNotification is a convenience method for success notifications.
func (b *ResponseBuilder) TriggerSuccessNotification(message string) *ResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 3000)
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the response body as bytes.
func (b *ResponseBuilder) Body(content []byte) *ResponseBuilder {
	b.body = content
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *ResponseBuilder) BodyHTML(html string) *ResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// JSON encodes v as the response body. Encoding failures turn the response
// into a 500.
func (b *ResponseBuilder) JSON(v interface{}) *ResponseBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		b.statusCode = http.StatusInternalServerError
		data = []byte(`{"error":"encode response"}`)
	}
	b.headers["Content-Type"] = "application/json; charset=utf-8"
	b.body = append(data, '\n')
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		triggerJSON, err := json.Marshal(b.triggers)
		if err == nil {
			w.Header().Set(TriggerHeader, string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// apiError is the JSON error envelope.
type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(apiError{Error: message})
}

// HTMLErrorResponse creates an HTML fragment error response. The message is
// escaped.
func HTMLErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().
		Status(statusCode).
		BodyHTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// ErrorFor maps a domain error onto a response: validation problems are 422,
// an empty report is 404, everything else is 500 with a generic message.
func ErrorFor(err error) *ResponseBuilder {
	var fe *FieldError
	switch {
	case errors.As(err, &fe):
		return NewResponse().Status(http.StatusUnprocessableEntity).JSON(apiError{Error: fe.Message, Field: fe.Field})
	case isValidation(err):
		return UnprocessableEntityError(err.Error())
	case errors.Is(err, report.ErrEmptyReport):
		return NotFoundError(err.Error())
	case errors.Is(err, chat.ErrNoMessages), errors.Is(err, chat.ErrInvalidRole):
		return BadRequestError(err.Error())
	default:
		return InternalServerError("internal error")
	}
}

var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrEmptyDescription,
	core.ErrDescriptionTooLong,
	core.ErrInvalidType,
	core.ErrInvalidCategory,
	core.ErrInvalidDate,
	profile.ErrInvalidLanguage,
	profile.ErrInvalidTheme,
	backup.ErrInvalidBundle,
	backup.ErrEmptyBundle,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

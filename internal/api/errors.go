package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrorKind classifies an API failure so callers can branch on the category
// instead of sniffing ad hoc status fields.
type ErrorKind int

const (
	// KindNetwork covers requests that never produced a response:
	// offline, DNS failure, timeout.
	KindNetwork ErrorKind = iota
	// KindValidation covers request bodies the server rejected with
	// field-level errors.
	KindValidation
	// KindAuth covers 401 and 403 responses.
	KindAuth
	// KindNotFound covers 404 responses.
	KindNotFound
	// KindServer covers every other non-success status.
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	default:
		return "server"
	}
}

// Error is the uniform failure shape produced by the client. Status is zero
// for network failures. Body holds the parsed response body, when there was
// one, for callers that need detail beyond the message.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Body    map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func IsNetwork(err error) bool    { return IsKind(err, KindNetwork) }
func IsValidation(err error) bool { return IsKind(err, KindValidation) }
func IsAuth(err error) bool       { return IsKind(err, KindAuth) }
func IsNotFound(err error) bool   { return IsKind(err, KindNotFound) }

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: err.Error(), cause: err}
}

// statusError builds the uniform failure for a non-success response.
func statusError(status int, body map[string]interface{}) *Error {
	return &Error{
		Kind:    kindForStatus(status, body),
		Status:  status,
		Message: messageFromBody(status, body),
		Body:    body,
	}
}

func kindForStatus(status int, body map[string]interface{}) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 400 && status < 500 && hasValidationErrors(body):
		return KindValidation
	default:
		return KindServer
	}
}

func hasValidationErrors(body map[string]interface{}) bool {
	if body == nil {
		return false
	}
	errs, ok := body["errors"].(map[string]interface{})
	return ok && len(errs) > 0
}

// messageFromBody picks the human-readable message: a flattened validation
// errors map first, then a server-declared message field, then a generic one.
func messageFromBody(status int, body map[string]interface{}) string {
	if body != nil {
		if errs, ok := body["errors"].(map[string]interface{}); ok && len(errs) > 0 {
			return flattenErrors(errs)
		}
		if msg, ok := body["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("API error (%d)", status)
}

// flattenErrors joins a field->messages map into one string, fields in
// deterministic order.
func flattenErrors(errs map[string]interface{}) string {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var messages []string
	for _, field := range fields {
		switch v := errs[field].(type) {
		case string:
			messages = append(messages, v)
		case []interface{}:
			for _, m := range v {
				if s, ok := m.(string); ok {
					messages = append(messages, s)
				}
			}
		}
	}
	return strings.Join(messages, ", ")
}

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/containerd/errdefs"
)

// FieldError is one structured validation failure from the backend.
type FieldError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// ErrorDetail is the structured error payload the backend attaches to
// non-2xx responses under the "detail" key.
type ErrorDetail struct {
	Message          string       `json:"message"`
	Errors           []string     `json:"errors,omitempty"`
	ValidationErrors []FieldError `json:"validation_errors,omitempty"`
}

// Combined flattens the detail into one human-readable message: the base
// message followed by the joined field errors.
func (d ErrorDetail) Combined() string {
	parts := make([]string, 0, 1+len(d.Errors)+len(d.ValidationErrors))
	if d.Message != "" {
		parts = append(parts, d.Message)
	}
	parts = append(parts, d.Errors...)
	for _, ve := range d.ValidationErrors {
		loc := make([]string, 0, len(ve.Loc))
		for _, l := range ve.Loc {
			loc = append(loc, fmt.Sprint(l))
		}
		if len(loc) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(loc, "."), ve.Msg))
		} else {
			parts = append(parts, ve.Msg)
		}
	}
	if len(parts) == 0 {
		return "request failed"
	}
	return strings.Join(parts, "; ")
}

// APIError is a non-2xx backend response. It unwraps to an errdefs sentinel
// so callers can branch with errdefs.IsNotFound and friends instead of
// inspecting status codes.
type APIError struct {
	StatusCode int
	Detail     ErrorDetail
}

func (e *APIError) Error() string {
	msg := e.Detail.Combined()
	if msg == "request failed" {
		return fmt.Sprintf("backend returned HTTP %d", e.StatusCode)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return errdefs.ErrNotFound
	case e.StatusCode == http.StatusUnauthorized:
		return errdefs.ErrUnauthenticated
	case e.StatusCode == http.StatusForbidden:
		return errdefs.ErrPermissionDenied
	case e.StatusCode >= 500:
		return errdefs.ErrInternal
	case e.StatusCode >= 400:
		return errdefs.ErrInvalidArgument
	default:
		return errdefs.ErrUnknown
	}
}

// detailEnvelope tolerates both the structured form {"detail": {...}} and
// the terse form {"detail": "message"}.
type detailEnvelope struct {
	Detail json.RawMessage `json:"detail"`
}

// parseErrorBody extracts an APIError from a non-2xx response body. A body
// that is not JSON (or has no detail) still yields an APIError carrying the
// status code.
func parseErrorBody(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var env detailEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return apiErr
	}

	var detail ErrorDetail
	if err := json.Unmarshal(env.Detail, &detail); err == nil &&
		(detail.Message != "" || len(detail.Errors) > 0 || len(detail.ValidationErrors) > 0) {
		apiErr.Detail = detail
		return apiErr
	}

	var msg string
	if err := json.Unmarshal(env.Detail, &msg); err == nil {
		apiErr.Detail = ErrorDetail{Message: msg}
	}
	return apiErr
}

package errx

import (
	"errors"
	"time"
)

// Response is the JSON body of every error response.
type Response struct {
	Status    Status                 `json:"status"`
	Message   string                 `json:"message"`
	Timestamp string                 `json:"timestamp"`
	ErrorCode Code                   `json:"errorCode"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Stack     string                 `json:"stack,omitempty"`
	Error     *Cause                 `json:"error,omitempty"`
}

// Cause describes the underlying error in development responses.
type Cause struct {
	Message string                 `json:"message"`
	Code    Code                   `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func causeOf(err error) *Cause {
	if err == nil {
		return nil
	}
	c := &Cause{Message: err.Error()}
	var inner *Error
	if errors.As(err, &inner) {
		c.Code = inner.Code
		c.Details = nonEmpty(inner.Details)
	}
	return c
}

// ToResponse renders the error for a client.
// In production a non-operational error is reduced to a generic body.
func (e *Error) ToResponse(development bool) (int, Response) {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	stamp := ts.Format(time.RFC3339Nano)

	code := e.Code
	if code == "" {
		code = CodeDatabase
	}

	if development {
		resp := Response{
			Status:    e.Status,
			Message:   e.Message,
			Timestamp: stamp,
			ErrorCode: code,
			Details:   nonEmpty(e.Details),
			Stack:     e.Stack(),
			Error:     causeOf(e.Err),
		}
		return e.HTTPStatus, resp
	}

	if e.Operational {
		return e.HTTPStatus, Response{
			Status:    e.Status,
			Message:   e.Message,
			Timestamp: stamp,
			ErrorCode: code,
			Details:   nonEmpty(e.Details),
		}
	}

	return DefUnexpected.HTTPStatus, Response{
		Status:    StatusError,
		Message:   "Something went wrong",
		Timestamp: stamp,
		ErrorCode: code,
	}
}

func nonEmpty(m map[string]interface{}) map[string]interface{} {
	if len(m) == 0 {
		return nil
	}
	return m
}

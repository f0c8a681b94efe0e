package api

import (
	"encoding/json"
	"fmt"
)

// errorEnvelope is the backend error body: {statusCode, message, error?}.
// message is either a string or an array of strings.
type errorEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Message    json.RawMessage `json:"message"`
	Code       string          `json:"error,omitempty"`
}

// Error a structured backend failure
type Error struct {
	StatusCode int
	Messages   []string
	Code       string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.FirstMessage())
}

// FirstMessage returns the first server message, or "" when none came back
func (e *Error) FirstMessage() string {
	if len(e.Messages) == 0 {
		return ""
	}
	return e.Messages[0]
}

// decodeError builds an *Error from a non-2xx response body. Bodies that
// are not the expected envelope still yield a usable error.
func decodeError(status int, body []byte) *Error {
	apiErr := &Error{StatusCode: status}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return apiErr
	}

	apiErr.Code = envelope.Code
	if envelope.StatusCode != 0 {
		apiErr.StatusCode = envelope.StatusCode
	}

	var single string
	if json.Unmarshal(envelope.Message, &single) == nil {
		if single != "" {
			apiErr.Messages = []string{single}
		}
		return apiErr
	}

	var many []string
	if json.Unmarshal(envelope.Message, &many) == nil {
		apiErr.Messages = many
	}

	return apiErr
}

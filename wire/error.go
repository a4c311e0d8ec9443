package wire

import (
	"encoding/json"
	"fmt"
)

// Error kinds reported by hosts in failure events.
const (
	ErrorKindClient = "client_error"
	ErrorKindAPI    = "api_error"
	ErrorKindAuth   = "auth_error"
)

// ErrorData is the closed set of failure payload variants. Implementations
// are ClientError, APIError and AuthError; consumers switch over these
// concrete types.
type ErrorData interface {
	Kind() string
}

// ClientError reports a failure originating in the client environment, such
// as the user denying a permission prompt.
type ClientError struct {
	Code        int    `json:"error_code"`
	Reason      string `json:"error_reason"`
	Description string `json:"error_description,omitempty"`
}

func (ClientError) Kind() string { return ErrorKindClient }

// APIError reports a failure returned by the host API itself.
type APIError struct {
	Code          int      `json:"error_code"`
	Msg           string   `json:"error_msg"`
	RequestParams []string `json:"request_params"`
}

func (APIError) Kind() string { return ErrorKindAPI }

// AuthError reports an authorization failure.
type AuthError struct {
	Code        int      `json:"error_code"`
	Reason      string   `json:"error_reason"`
	Description []string `json:"error_description,omitempty"`
}

func (AuthError) Kind() string { return ErrorKindAuth }

// ErrorPayload is the body of a failure event. It discriminates the variant
// through the error_type field and carries the correlation id when the host
// attributed the failure to a specific call.
type ErrorPayload struct {
	Type      string    `json:"error_type"`
	Data      ErrorData `json:"error_data"`
	RequestID int64     `json:"request_id,omitempty"`
}

func (e *ErrorPayload) Error() string {
	switch d := e.Data.(type) {
	case *ClientError:
		return fmt.Sprintf("%s %d: %s", e.Type, d.Code, d.Reason)
	case *APIError:
		return fmt.Sprintf("%s %d: %s", e.Type, d.Code, d.Msg)
	case *AuthError:
		return fmt.Sprintf("%s %d: %s", e.Type, d.Code, d.Reason)
	default:
		return e.Type
	}
}

// UnmarshalJSON decodes the error_data variant selected by error_type.
// Unknown error_type values fail; the union is closed.
func (e *ErrorPayload) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type      string          `json:"error_type"`
		Data      json.RawMessage `json:"error_data"`
		RequestID int64           `json:"request_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e.Type = raw.Type
	e.RequestID = raw.RequestID
	switch raw.Type {
	case ErrorKindClient:
		d := &ClientError{}
		if err := json.Unmarshal(raw.Data, d); err != nil {
			return err
		}
		e.Data = d
	case ErrorKindAPI:
		d := &APIError{}
		if err := json.Unmarshal(raw.Data, d); err != nil {
			return err
		}
		e.Data = d
	case ErrorKindAuth:
		d := &AuthError{}
		if err := json.Unmarshal(raw.Data, d); err != nil {
			return err
		}
		e.Data = d
	default:
		return fmt.Errorf("wire: unknown error_type %q", raw.Type)
	}
	return nil
}

// MarshalJSON emits the envelope with request_id omitted when zero.
func (e *ErrorPayload) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	out := map[string]any{
		"error_type": e.Type,
		"error_data": json.RawMessage(data),
	}
	if e.RequestID != 0 {
		out["request_id"] = e.RequestID
	}
	return json.Marshal(out)
}

// NewClientError builds a client_error failure payload.
func NewClientError(code int, reason string) *ErrorPayload {
	return &ErrorPayload{Type: ErrorKindClient, Data: &ClientError{Code: code, Reason: reason}}
}

// NewAPIError builds an api_error failure payload.
func NewAPIError(code int, msg string, params ...string) *ErrorPayload {
	return &ErrorPayload{Type: ErrorKindAPI, Data: &APIError{Code: code, Msg: msg, RequestParams: params}}
}

// NewAuthError builds an auth_error failure payload.
func NewAuthError(code int, reason string) *ErrorPayload {
	return &ErrorPayload{Type: ErrorKindAuth, Data: &AuthError{Code: code, Reason: reason}}
}

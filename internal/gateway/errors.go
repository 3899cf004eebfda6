package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a gateway failure for callers that need to branch on it.
type Kind int

const (
	// KindNetwork means the request never produced a response.
	KindNetwork Kind = iota
	// KindValidation covers malformed or missing request fields (400, 422).
	KindValidation
	// KindAuth covers bad credentials and invalid or expired tokens (401).
	KindAuth
	// KindAuthorization means the session is valid but the role is not (403).
	KindAuthorization
	// KindNotFound is a missing entity (404).
	KindNotFound
	// KindServer is any other non-2xx response.
	KindServer
)

// Error is the uniform failure shape for every gateway call. Message is
// human-readable and safe to surface to the dashboard as-is.
type Error struct {
	Kind    Kind
	Status  int // HTTP status, 0 for network failures
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// netError wraps a transport failure that produced no response.
func netError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: err.Error()}
}

// statusError builds an Error from a non-2xx response. The message comes from
// the backend's error envelope when present, otherwise "HTTP <status>".
func statusError(status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	return &Error{Kind: classify(status), Status: status, Message: message}
}

func classify(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized:
		return KindAuth
	case http.StatusForbidden:
		return KindAuthorization
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindServer
	}
}

// IsAuth reports whether err is a gateway auth failure (invalid or expired
// token, bad credentials). Callers use it to tear down the session.
func IsAuth(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == KindAuth
}

// IsNetwork reports whether err is a transport failure with no response.
func IsNetwork(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == KindNetwork
}

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrHostUnavailable     = errors.New("host sdk unavailable")
	ErrIdentityMissing     = errors.New("host payload has no user")
	ErrAuthorizationFailed = errors.New("authorization failed")
	ErrTransport           = errors.New("transport error")
	ErrAlreadyInitialized  = errors.New("session client already initialized")
	ErrInvalidInitData     = errors.New("invalid init data")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrSecretNotFound      = errors.New("secret not found")
)

// AuthorizationError carries the human-readable reason a login failed:
// the server-provided message or the transport error text.
type AuthorizationError struct {
	Message string
	Err     error
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

func (e *AuthorizationError) Unwrap() error {
	return e.Err
}

func (e *AuthorizationError) Is(target error) bool {
	return target == ErrAuthorizationFailed
}

// TransportError covers network failures and non-2xx responses.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: http status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": transport error"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

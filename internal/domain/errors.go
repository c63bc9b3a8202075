package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNetwork indicates the request got no response from the gallery server
	ErrNetwork = errors.New("gallery server is unreachable")

	// ErrNotFound indicates the requested image or album does not exist
	ErrNotFound = errors.New("not found")

	// ErrAuthFailed indicates the configured token was rejected
	ErrAuthFailed = errors.New("authentication token is invalid")

	// ErrEmptySelection indicates an album operation was attempted with nothing selected
	ErrEmptySelection = errors.New("no images selected")

	// ErrInvalidInput indicates a malformed request (e.g. blank album title)
	ErrInvalidInput = errors.New("invalid input")
)

// ServerError is a non-2xx response carrying the server's error envelope
type ServerError struct {
	Status  int
	Code    string // "error" field of the envelope
	Message string // "message" field of the envelope
}

func (e *ServerError) Error() string {
	if e.Message != "" && e.Message != e.Code {
		return fmt.Sprintf("server error %d: %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("server error %d: %s", e.Status, e.Code)
}

// ErrorKind classifies errors for display
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNetwork
	KindServer
	KindNotFound
	KindAuth
	KindEmptySelection
	KindInvalidInput
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindNotFound:
		return "not found"
	case KindAuth:
		return "auth"
	case KindEmptySelection:
		return "empty selection"
	case KindInvalidInput:
		return "invalid input"
	default:
		return "unknown"
	}
}

// KindOf classifies err. Sentinels win over ServerError so a 404 reads as not found.
func KindOf(err error) ErrorKind {
	var serverErr *ServerError
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrEmptySelection):
		return KindEmptySelection
	case errors.Is(err, ErrAuthFailed):
		return KindAuth
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.As(err, &serverErr):
		return KindServer
	default:
		return KindUnknown
	}
}

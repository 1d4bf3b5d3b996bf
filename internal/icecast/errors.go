package icecast

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a status fetch failed.
type ErrorKind int

const (
	Unreachable ErrorKind = iota
	Timeout
	BadStatus
	MalformedBody
)

func (k ErrorKind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case Timeout:
		return "timeout"
	case BadStatus:
		return "bad_status"
	case MalformedBody:
		return "malformed_body"
	}
	return "unknown"
}

// FetchError is the only error FetchStatus returns.
type FetchError struct {
	Kind       ErrorKind
	StatusCode int // set for BadStatus
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == BadStatus {
		return fmt.Sprintf("icecast: %s: HTTP %d", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("icecast: %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a FetchError anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

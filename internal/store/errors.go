package store

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	WriteFailed ErrorKind = iota
	ReadCorrupt
	ReadFailed
)

func (k ErrorKind) String() string {
	switch k {
	case WriteFailed:
		return "write failed"
	case ReadCorrupt:
		return "corrupt document"
	case ReadFailed:
		return "read failed"
	}
	return "unknown"
}

// PersistenceError reports a failed read or write of one document.
type PersistenceError struct {
	Kind ErrorKind
	Doc  Document
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Doc, e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a PersistenceError of kind k.
func IsKind(err error, k ErrorKind) bool {
	var pe *PersistenceError
	return errors.As(err, &pe) && pe.Kind == k
}

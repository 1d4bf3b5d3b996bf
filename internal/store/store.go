// Package store persists the broadcast state as independent JSON documents.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// Document names one independently stored unit of state.
type Document string

const (
	CurrentTrack Document = "current"
	History      Document = "history"
	Stats        Document = "stats"
	Listeners    Document = "listeners"
	Playlist     Document = "playlist"
)

// Documents lists every document kind.
var Documents = []Document{CurrentTrack, History, Stats, Listeners, Playlist}

// ErrNotFound is returned by a Backend when the document was never written.
var ErrNotFound = errors.New("store: document not found")

// Backend persists raw document bodies. Save must be atomic with respect
// to concurrent Load calls on the same document.
type Backend interface {
	Load(ctx context.Context, doc Document) ([]byte, error)
	Save(ctx context.Context, doc Document, body []byte) error
}

// Store is a key-document store. Writes to one document are serialized,
// reads take no lock, and documents never lock each other.
type Store struct {
	backend Backend

	mu    sync.Mutex
	locks map[Document]*sync.Mutex
}

func New(backend Backend) *Store {
	locks := make(map[Document]*sync.Mutex, len(Documents))
	for _, doc := range Documents {
		locks[doc] = &sync.Mutex{}
	}
	return &Store{backend: backend, locks: locks}
}

func (s *Store) lockFor(doc Document) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[doc]
	if !ok {
		l = &sync.Mutex{}
		s.locks[doc] = l
	}
	return l
}

// ReadRaw returns the stored bytes of doc.
func (s *Store) ReadRaw(ctx context.Context, doc Document) ([]byte, error) {
	body, err := s.backend.Load(ctx, doc)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Kind: ReadFailed, Doc: doc, Err: err}
	}
	return body, nil
}

// Read decodes doc into dst. It returns ErrNotFound for a missing
// document and a ReadCorrupt PersistenceError for undecodable content.
func (s *Store) Read(ctx context.Context, doc Document, dst any) error {
	body, err := s.ReadRaw(ctx, doc)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &PersistenceError{Kind: ReadCorrupt, Doc: doc, Err: err}
	}
	return nil
}

// Write replaces doc with the JSON encoding of v.
func (s *Store) Write(ctx context.Context, doc Document, v any) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &PersistenceError{Kind: WriteFailed, Doc: doc, Err: err}
	}

	l := s.lockFor(doc)
	l.Lock()
	defer l.Unlock()

	if err := s.backend.Save(ctx, doc, body); err != nil {
		return &PersistenceError{Kind: WriteFailed, Doc: doc, Err: err}
	}
	return nil
}

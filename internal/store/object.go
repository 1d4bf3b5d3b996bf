package store

import (
	"context"
	"errors"

	"myradio/internal/storage"
)

// ObjectBackend keeps each document as "<doc>.json" in object storage
// (the local data directory or an S3 bucket).
type ObjectBackend struct {
	client *storage.Client
}

func NewObjectBackend(client *storage.Client) *ObjectBackend {
	return &ObjectBackend{client: client}
}

func objectName(doc Document) string {
	return string(doc) + ".json"
}

func (b *ObjectBackend) Load(_ context.Context, doc Document) ([]byte, error) {
	body, err := b.client.ReadObject(objectName(doc))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	return body, err
}

func (b *ObjectBackend) Save(_ context.Context, doc Document, body []byte) error {
	return b.client.WriteObject(objectName(doc), body, "application/json", "max-age=0, no-cache")
}

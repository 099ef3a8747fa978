package storage

import "context"

// ObjectStorage archives the original bytes of each upload under its stored
// filename.
type ObjectStorage interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	RemoveObject(ctx context.Context, key string) error
}

type noopStorage struct{}

// NewNoopStorage returns an ObjectStorage that discards everything.
func NewNoopStorage() ObjectStorage {
	return noopStorage{}
}

func (noopStorage) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}

func (noopStorage) RemoveObject(ctx context.Context, key string) error {
	return nil
}

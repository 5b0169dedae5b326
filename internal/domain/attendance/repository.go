// internal/domain/attendance/repository.go
package attendance

import "context"

// Backend is the durable key-value store holding the serialized record collection.
type Backend interface {
	// Read returns the text stored under key. ok is false when nothing has been written yet.
	Read(ctx context.Context, key string) (text string, ok bool, err error)
	// Write replaces the text stored under key.
	Write(ctx context.Context, key string, text string) error
}

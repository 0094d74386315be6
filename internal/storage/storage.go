package storage

import "context"

// Store defines the process-wide key/value persistence used by the client.
type Store interface {
	Close() error
	Migrate(ctx context.Context) error

	// GetPreference reports ok=false when the key has never been written.
	GetPreference(ctx context.Context, key string) (value string, ok bool, err error)
	PutPreference(ctx context.Context, key, value string) error
}

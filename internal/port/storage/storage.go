package storage

import "context"

// ObjectStorage is durable key/value byte storage. The ingestion core only
// ever writes; serving stored objects is someone else's problem.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

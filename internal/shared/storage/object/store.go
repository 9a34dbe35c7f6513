package object

import "context"

// ObjectStore defines the contract for fetching and persisting binary
// objects by opaque key. Bucket routing and key layout belong to the
// backing implementation.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) (storedKey string, err error)
}

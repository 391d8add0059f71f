package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// ObjectStorage defines the blob operations snaplife needs from a
// backend: store an image and hand back a public URL, or remove one.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// BlobStore wraps an ObjectStorage backend with bounded retry. Object
// store calls are the most failure-prone external dependency, so each
// operation is retried with fibonacci backoff before giving up.
type BlobStore struct {
	backend     ObjectStorage
	maxAttempts uint64
}

// NewBlobStore constructs a BlobStore for the provided backend.
// retryAttempts bounds the number of retries after the first failure.
func NewBlobStore(backend ObjectStorage, retryAttempts int) *BlobStore {
	if retryAttempts < 0 {
		retryAttempts = 0
	}
	return &BlobStore{backend: backend, maxAttempts: uint64(retryAttempts)}
}

// EnsureBucket ensures the configured bucket exists.
func (s *BlobStore) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Upload stores an image under the given key and returns its public URL.
func (s *BlobStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("image byte size is 0")
	}

	var url string
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		var err error
		url, err = s.backend.Put(ctx, key, data, contentType)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return url, nil
}

// Remove deletes the object under the given key.
func (s *BlobStore) Remove(ctx context.Context, key string) error {
	return retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		if err := s.backend.Delete(ctx, key); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// RemoveMany deletes the objects under the given keys. It keeps going
// after individual failures and reports them joined, so callers can
// treat cleanup as best-effort.
func (s *BlobStore) RemoveMany(ctx context.Context, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := s.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Bucket returns the configured bucket name.
func (s *BlobStore) Bucket() string {
	return s.backend.Bucket()
}

func (s *BlobStore) backoff() retry.Backoff {
	return retry.WithMaxRetries(s.maxAttempts, retry.NewFibonacci(250*time.Millisecond))
}

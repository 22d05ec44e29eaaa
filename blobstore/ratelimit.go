package blobstore

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// RateLimitedStore caps the request rate against an underlying store. Every
// Open, Put, Delete, List and ReadAt waits for a token.
type RateLimitedStore struct {
	store   BlobStore
	limiter *rate.Limiter
}

// RateLimited wraps store with a token bucket of the given rate and burst.
// A burst below 1 is raised to 1.
func RateLimited(store BlobStore, limit rate.Limit, burst int) *RateLimitedStore {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedStore{
		store:   store,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Unwrap returns the underlying store.
func (s *RateLimitedStore) Unwrap() BlobStore { return s.store }

func (s *RateLimitedStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	b, err := s.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &rateLimitedBlob{Blob: b, limiter: s.limiter}, nil
}

func (s *RateLimitedStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	return s.store.Put(ctx, name, data)
}

func (s *RateLimitedStore) Delete(ctx context.Context, name string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	return s.store.Delete(ctx, name)
}

func (s *RateLimitedStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.store.List(ctx, prefix)
}

// Lock delegates to the underlying store. Locking is not rate limited.
func (s *RateLimitedStore) Lock(ctx context.Context, name string) (io.Closer, error) {
	return LockIfSupported(ctx, s.store, name)
}

type rateLimitedBlob struct {
	Blob
	limiter *rate.Limiter
}

func (b *rateLimitedBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return b.Blob.ReadAt(ctx, p, off)
}

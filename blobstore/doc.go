// Package blobstore provides the storage abstraction prediction logs live in.
//
// A BlobStore holds whole objects addressed by slash-separated names. Logs are
// never patched in place: every change is a full Put, and every backend makes
// Put atomic so a reader sees either the previous object or the new one.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, temp file + fsync + rename
//   - MemoryStore: in-memory map, for tests
//   - s3.Store: Amazon S3 (single PUT or multipart upload)
//   - minio.Store: MinIO and other S3-compatible services
//
// RateLimited wraps any store to cap the request rate against a remote backend.
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error         // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Stores that can keep a second writer away from an object implement Locker.
package blobstore

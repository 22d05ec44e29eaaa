// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "lookout/")
//
//	logger, err := lookout.New(ctx, "detector", lookout.WithBackend(store))
//
// # Features
//
//   - Single PUT for small objects, multipart uploads for large ones; either
//     way the object becomes visible atomically
//   - Range reads
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3

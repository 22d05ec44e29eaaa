// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO itself and with other S3-compatible systems such as
// Ceph, SeaweedFS and Garage, without pulling in the AWS SDK.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "lookout/")
//	logger, err := lookout.New(ctx, "detector", lookout.WithBackend(store))
//
// Dial is a shortcut for the static-credentials case above.
package minio

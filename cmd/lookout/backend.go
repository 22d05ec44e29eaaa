package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/time/rate"

	"github.com/hupe1980/lookout/blobstore"
	minioblob "github.com/hupe1980/lookout/blobstore/minio"
	s3store "github.com/hupe1980/lookout/blobstore/s3"
)

// openBackend builds the blob store described by cfg.
func openBackend(ctx context.Context, cfg *Config) (blobstore.BlobStore, error) {
	var store blobstore.BlobStore

	switch cfg.Storage.Backend {
	case BackendLocal:
		return blobstore.NewLocalStore(cfg.LogsDir), nil
	case BackendS3:
		client, err := newS3Client(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		store = s3store.NewStore(client, cfg.Storage.Bucket, cfg.Storage.Prefix)
	case BackendMinio:
		accessKey := firstNonEmpty(cfg.Storage.AccessKey, os.Getenv("MINIO_ACCESS_KEY"))
		secretKey := firstNonEmpty(cfg.Storage.SecretKey, os.Getenv("MINIO_SECRET_KEY"))
		client, err := minioblob.Dial(cfg.Storage.Endpoint, accessKey, secretKey, !cfg.Storage.Insecure)
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		store = minioblob.NewStore(client, cfg.Storage.Bucket, cfg.Storage.Prefix)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Storage.Backend)
	}

	if cfg.Storage.RateLimit > 0 {
		burst := cfg.Storage.Burst
		if burst < 1 {
			burst = 1
		}
		store = blobstore.RateLimited(store, rate.Limit(cfg.Storage.RateLimit), burst)
	}
	return store, nil
}

func newS3Client(ctx context.Context, sc StorageConfig) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if sc.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(sc.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if sc.Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Package lookout records model predictions for monitoring.
//
// A Logger appends one row per prediction to a durable, append-only columnar
// log: the image name, predicted class, confidence and bounding box, plus any
// enabled image-quality metrics computed from the prediction's image. There is
// one log per (model, writer) pair, stored at
//
//	<logs_dir>/<model>/<model>_logs_<writer_id>.lkc
//
// # Quick Start
//
//	ctx := context.Background()
//	logger, err := lookout.New(ctx, "detector",
//	    lookout.WithLogsDir("./logs"),
//	    lookout.WithMetrics(imagemetric.Contrast, imagemetric.Blur),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Close()
//
//	err = logger.LogPrediction(ctx, lookout.Prediction{
//	    ImageName:  "frame_0001.jpg",
//	    PredClass:  "person",
//	    Confidence: 0.97,
//	    BBox:       imagemetric.BBox{X1: 12, Y1: 40, X2: 96, Y2: 210},
//	    Image:      imagemetric.FromPath("frame_0001.jpg"),
//	})
//
// # Schema Evolution
//
// Enabling more metrics on a later run widens the log: the new metric columns
// are appended and every earlier row reads null in them. Columns are never
// removed or retyped, so disabling a metric keeps its column.
//
// # Failure Model
//
// A missing mandatory field fails the call before any I/O. A metric that
// cannot be computed, or a value that does not fit its column type, is stored
// as null and never fails the call. Store failures surface as *ErrStoreIO and
// leave the log at its last successful write.
//
// # Storage Backends
//
// Logs live in a blobstore.BlobStore. The default is the local filesystem;
// S3 (blobstore/s3) and MinIO (blobstore/minio) are selected with WithBackend.
package lookout

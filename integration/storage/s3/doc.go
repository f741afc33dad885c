// Package s3 stores carousel messages in Amazon S3 and S3-compatible services
// (MinIO, DigitalOcean Spaces, Wasabi).
//
// Every delivered message becomes one object under
// <prefix>/<carousel id>/<sequence>-<consumer>-<uuid>:
//
//	sink, err := s3.New(ctx, s3.Config{
//		Bucket: "carousel-archive",
//		Region: "us-east-1",
//		Prefix: "orders",
//	}, s3.WithUploadTimeout(10*time.Second), s3.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	c, err := mp2c.New([]mp2c.Consumer{sink, other})
//
// MinIO:
//
//	sink, err := s3.New(ctx, s3.Config{
//		Bucket:         "carousel",
//		Region:         "us-east-1",
//		AccessKeyID:    "minioadmin",
//		SecretKey:      "minioadmin",
//		Endpoint:       "http://localhost:9000",
//		ForcePathStyle: true,
//	})
//
// Failed uploads are classified (ErrAccessDenied, ErrBucketNotFound,
// ErrServiceUnavailable, ...) and passed to the handler set with
// WithErrorHandler. Tests inject a fake through WithS3Client.
package s3

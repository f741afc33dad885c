package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/core/logger"
)

// S3Client defines the S3 operations used by Consumer.
type S3Client interface {
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3aws.HeadBucketInput, optFns ...func(*s3aws.Options)) (*s3aws.HeadBucketOutput, error)
}

var _ S3Client = (*s3aws.Client)(nil)

// Config contains configuration for the S3 consumer.
type Config struct {
	Bucket      string `env:"S3_BUCKET,required"`
	Region      string `env:"S3_REGION,required"`
	AccessKeyID string `env:"S3_ACCESS_KEY_ID"`
	SecretKey   string `env:"S3_SECRET_KEY"`

	// Endpoint and ForcePathStyle target S3-compatible services like MinIO.
	Endpoint       string `env:"S3_ENDPOINT"`
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`

	Prefix      string `env:"S3_PREFIX" envDefault:"carousel"`
	ContentType string `env:"S3_CONTENT_TYPE" envDefault:"application/octet-stream"`
}

// Consumer stores every carousel message as an S3 object.
//
// Keys have the form <prefix>/<carousel id>/<sequence>-<consumer>-<uuid>,
// with the sequence zero-padded so a prefix listing returns put order.
type Consumer struct {
	client        S3Client
	bucket        string
	prefix        string
	contentType   string
	uploadTimeout time.Duration
	logger        *slog.Logger
	onError       func(context.Context, error)
}

// Option configures a Consumer.
type Option func(*s3Options)

type s3Options struct {
	httpClient      *http.Client
	s3Client        S3Client
	s3ConfigOptions []func(*config.LoadOptions) error
	s3ClientOptions []func(*s3aws.Options)
	uploadTimeout   time.Duration
	logger          *slog.Logger
	onError         func(context.Context, error)
}

// WithS3Client sets a custom pre-configured S3 client.
func WithS3Client(client S3Client) Option {
	return func(o *s3Options) {
		o.s3Client = client
	}
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *s3Options) {
		o.httpClient = client
	}
}

// WithS3ConfigOption adds a custom AWS config option.
func WithS3ConfigOption(option func(*config.LoadOptions) error) Option {
	return func(o *s3Options) {
		o.s3ConfigOptions = append(o.s3ConfigOptions, option)
	}
}

// WithS3ClientOption adds a custom S3 client option.
func WithS3ClientOption(option func(*s3aws.Options)) Option {
	return func(o *s3Options) {
		o.s3ClientOptions = append(o.s3ClientOptions, option)
	}
}

// WithUploadTimeout bounds every PutObject call.
// If not set, the delivery context decides.
func WithUploadTimeout(timeout time.Duration) Option {
	return func(o *s3Options) {
		o.uploadTimeout = timeout
	}
}

// WithLogger sets the logger used by the default error handler.
func WithLogger(l *slog.Logger) Option {
	return func(o *s3Options) {
		o.logger = l
	}
}

// WithErrorHandler replaces the default error handler, which logs.
func WithErrorHandler(fn func(context.Context, error)) Option {
	return func(o *s3Options) {
		o.onError = fn
	}
}

// New creates an S3 consumer.
func New(ctx context.Context, cfg Config, opts ...Option) (*Consumer, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	options := &s3Options{}
	for _, opt := range opts {
		opt(options)
	}

	client := options.s3Client
	if client == nil {
		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}

		// Static credentials if provided, IAM roles or env vars otherwise.
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}

		if options.httpClient != nil {
			awsOptions = append(awsOptions, config.WithHTTPClient(options.httpClient))
		}

		awsOptions = append(awsOptions, options.s3ConfigOptions...)

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		client = s3aws.NewFromConfig(awsConfig, func(o *s3aws.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle

			for _, opt := range options.s3ClientOptions {
				opt(o)
			}
		})
	}

	log := options.logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Consumer{
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        cfg.Prefix,
		contentType:   cfg.ContentType,
		uploadTimeout: options.uploadTimeout,
		logger:        log,
		onError:       options.onError,
	}
	if c.contentType == "" {
		c.contentType = "application/octet-stream"
	}
	if c.onError == nil {
		c.onError = func(ctx context.Context, err error) {
			c.logger.ErrorContext(ctx, "s3 delivery failed", logger.Error(err))
		}
	}
	return c, nil
}

// Consume implements mp2c.Consumer.
func (c *Consumer) Consume(ctx context.Context, msg mp2c.Message) {
	if c.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.uploadTimeout)
		defer cancel()
	}

	idx, _ := mp2c.ConsumerIndex(ctx)
	_, err := c.client.PutObject(ctx, &s3aws.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(c.Key(ctx)),
		Body:          bytes.NewReader(msg),
		ContentLength: aws.Int64(int64(len(msg))),
		ContentType:   aws.String(c.contentType),
		Metadata: map[string]string{
			"carousel-id": mp2c.CarouselID(ctx),
			"sequence":    strconv.FormatUint(mp2c.Sequence(ctx), 10),
			"consumer":    strconv.Itoa(idx),
		},
	})
	if err != nil {
		c.onError(ctx, classifyS3Error(err, "put message"))
	}
}

// Key returns a fresh object key for the delivery described by ctx.
func (c *Consumer) Key(ctx context.Context) string {
	idx, _ := mp2c.ConsumerIndex(ctx)
	carousel := mp2c.CarouselID(ctx)
	if carousel == "" {
		carousel = "unknown"
	}
	name := fmt.Sprintf("%020d-%d-%s", mp2c.Sequence(ctx), idx, uuid.NewString())
	return path.Join(c.prefix, carousel, name)
}

// Healthcheck returns a check that verifies the bucket is reachable.
func (c *Consumer) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := c.client.HeadBucket(ctx, &s3aws.HeadBucketInput{Bucket: aws.String(c.bucket)})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrHealthcheckFailed, classifyS3Error(err, "head bucket"))
		}
		return nil
	}
}

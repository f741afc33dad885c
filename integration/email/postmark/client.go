package postmark

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	"github.com/mrz1836/postmark"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/core/logger"
)

var (
	ErrInvalidConfig     = errors.New("postmark: invalid config")
	ErrFailedToSendEmail = errors.New("postmark: failed to send email")
)

// Config holds Postmark settings.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
	Recipient            string `env:"POSTMARK_RECIPIENT,required"`
	SubjectPrefix        string `env:"POSTMARK_SUBJECT_PREFIX" envDefault:"[mp2c]"`
	Tag                  string `env:"POSTMARK_TAG" envDefault:"carousel"`
}

// Sender is the part of the Postmark client the consumer needs.
type Sender interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

var _ Sender = (*postmark.Client)(nil)

// Consumer sends every carousel message as a plain text email.
type Consumer struct {
	sender  Sender
	config  Config
	logger  *slog.Logger
	onError func(context.Context, error)
}

// Option configures a Consumer.
type Option func(*Consumer)

// WithSender replaces the Postmark API client, mainly for tests.
func WithSender(s Sender) Option {
	return func(c *Consumer) {
		c.sender = s
	}
}

// WithLogger sets the logger used by the default error handler.
func WithLogger(l *slog.Logger) Option {
	return func(c *Consumer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithErrorHandler replaces the default error handler, which logs.
func WithErrorHandler(fn func(context.Context, error)) Option {
	return func(c *Consumer) {
		c.onError = fn
	}
}

// New creates a Postmark-backed consumer.
// Tokens are required unless a Sender is injected.
func New(cfg Config, opts ...Option) (*Consumer, error) {
	for _, addr := range []struct{ name, value string }{
		{"SenderEmail", cfg.SenderEmail},
		{"SupportEmail", cfg.SupportEmail},
		{"Recipient", cfg.Recipient},
	} {
		if !isValidEmail(addr.value) {
			return nil, fmt.Errorf("%w: %s must be a valid email address", ErrInvalidConfig, addr.name)
		}
	}

	c := &Consumer{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.sender == nil {
		if cfg.PostmarkServerToken == "" {
			return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
		}
		if cfg.PostmarkAccountToken == "" {
			return nil, fmt.Errorf("%w: PostmarkAccountToken is required", ErrInvalidConfig)
		}
		c.sender = postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken)
	}
	if c.onError == nil {
		c.onError = func(ctx context.Context, err error) {
			c.logger.ErrorContext(ctx, "postmark delivery failed", logger.Error(err))
		}
	}
	return c, nil
}

// MustNew is like New but panics on invalid config.
func MustNew(cfg Config, opts ...Option) *Consumer {
	c, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Consume implements mp2c.Consumer. Reply-To is the support address.
func (c *Consumer) Consume(ctx context.Context, msg mp2c.Message) {
	resp, err := c.sender.SendEmail(ctx, postmark.Email{
		From:       c.config.SenderEmail,
		ReplyTo:    c.config.SupportEmail,
		To:         c.config.Recipient,
		Subject:    fmt.Sprintf("%s message #%d", c.config.SubjectPrefix, mp2c.Sequence(ctx)),
		Tag:        c.config.Tag,
		TextBody:   msg.String(),
		TrackOpens: false,
	})
	if err != nil {
		c.onError(ctx, errors.Join(ErrFailedToSendEmail, err))
		return
	}
	if resp.ErrorCode > 0 {
		c.onError(ctx, errors.Join(
			ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		))
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

package opensearch

import (
	"context"
	"errors"
	"fmt"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

var (
	ErrConnectionFailed  = errors.New("opensearch connection failed")
	ErrHealthcheckFailed = errors.New("opensearch healthcheck failed")
	ErrIndexFailed       = errors.New("opensearch index request failed")
	ErrEmptyIndex        = errors.New("opensearch index name is empty")
)

// Config holds OpenSearch connection settings.
type Config struct {
	Addresses    []string `env:"OPENSEARCH_ADDRESSES,required"`
	Username     string   `env:"OPENSEARCH_USERNAME,notEmpty"`
	Password     string   `env:"OPENSEARCH_PASSWORD,notEmpty"`
	MaxRetries   int      `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
	DisableRetry bool     `env:"OPENSEARCH_DISABLE_RETRY" envDefault:"false"`
	Index        string   `env:"OPENSEARCH_INDEX" envDefault:"carousel-messages"`
}

// New creates a client and fails fast if the cluster does not answer.
func New(ctx context.Context, cfg Config) (*opensearch.Client, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses:    cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		MaxRetries:   cfg.MaxRetries,
		DisableRetry: cfg.DisableRetry,
	})
	if err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	if err := Healthcheck(client)(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// Healthcheck returns a check that calls the cluster info endpoint.
func Healthcheck(transport opensearchapi.Transport) func(context.Context) error {
	return func(ctx context.Context) error {
		resp, err := opensearchapi.InfoRequest{}.Do(ctx, transport)
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		defer resp.Body.Close()

		if resp.IsError() {
			return errors.Join(ErrHealthcheckFailed, fmt.Errorf("status %s", resp.Status()))
		}
		return nil
	}
}

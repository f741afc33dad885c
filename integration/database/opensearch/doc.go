// Package opensearch indexes carousel messages in OpenSearch.
//
// New creates an OpenSearch client and verifies the cluster with an Info call.
// NewConsumer indexes one document per delivered message. Document IDs are
// derived from carousel ID, sequence and consumer index, so a repeated
// delivery overwrites instead of duplicating:
//
//	client, err := opensearch.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	sink, err := opensearch.NewConsumer(client, cfg.Index, opensearch.WithLogger(log))
//
// # Configuration
//
//	type Config struct {
//		Addresses    []string `env:"OPENSEARCH_ADDRESSES,required"`
//		Username     string   `env:"OPENSEARCH_USERNAME,notEmpty"`
//		Password     string   `env:"OPENSEARCH_PASSWORD,notEmpty"`
//		MaxRetries   int      `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
//		DisableRetry bool     `env:"OPENSEARCH_DISABLE_RETRY" envDefault:"false"`
//		Index        string   `env:"OPENSEARCH_INDEX" envDefault:"carousel-messages"`
//	}
//
// # Error Handling
//
//   - ErrConnectionFailed: the client could not be created
//   - ErrHealthcheckFailed: the cluster is unreachable or unhealthy
//   - ErrIndexFailed: passed to the consumer error handler
package opensearch

package consumer

import (
	"context"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/openspock/mp2c"
)

// UpperCaser converts each message to upper case using the casing rules of
// tag before passing it on. Invalid UTF-8 sequences are kept as is.
//
// Example:
//
//	shout := consumer.Decorate(consumer.NewWriter(os.Stdout), consumer.UpperCaser(language.Und))
func UpperCaser(tag language.Tag) Decorator {
	return func(next mp2c.Consumer) mp2c.Consumer {
		// A Caser carries state and a consumer may be registered more than once.
		var mu sync.Mutex
		caser := cases.Upper(tag)

		return mp2c.ConsumerFunc(func(ctx context.Context, msg mp2c.Message) {
			mu.Lock()
			upper := caser.Bytes(msg)
			mu.Unlock()
			next.Consume(ctx, upper)
		})
	}
}

// Package consumer provides ready-made mp2c consumers and decorators.
//
// Decorators wrap an mp2c.Consumer to add cross-cutting behaviour and compose
// with Decorate:
//
//	stdout := consumer.Decorate(
//		consumer.NewWriter(os.Stdout),
//		consumer.Logging(log),
//		consumer.UpperCaser(language.Und),
//	)
//
// Execution order: Logging -> UpperCaser -> Writer.
//
// Terminal consumers:
//
//   - Writer writes every message, followed by a delimiter, to an io.Writer.
//   - Logger logs every message at a fixed level.
//   - Recorder keeps messages in memory; tests and examples wait on it with WaitFor.
//
// Seal encrypts payloads with XChaCha20-Poly1305 before they reach an external
// sink; Open reverses it on the reading side.
package consumer

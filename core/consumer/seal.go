package consumer

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/openspock/mp2c"
)

var (
	// ErrInvalidKey is returned when a sealing key is not KeySize bytes long.
	ErrInvalidKey = errors.New("consumer: invalid sealing key")

	// ErrMalformedSealed is returned by Open for input too short to be a sealed message.
	ErrMalformedSealed = errors.New("consumer: malformed sealed message")
)

// KeySize is the length of a sealing key in bytes.
const KeySize = chacha20poly1305.KeySize

// NewKey returns a random sealing key.
func NewKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("consumer: generate key: %w", err)
	}
	return key, nil
}

// Seal encrypts every message with XChaCha20-Poly1305 before passing it on.
// The output is nonce || ciphertext. The carousel ID is bound as additional
// data, so Open must be given the same ID.
func Seal(key []byte) (Decorator, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return func(next mp2c.Consumer) mp2c.Consumer {
		return mp2c.ConsumerFunc(func(ctx context.Context, msg mp2c.Message) {
			nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(msg)+aead.Overhead())
			if _, err := rand.Read(nonce); err != nil {
				panic(fmt.Sprintf("consumer: read nonce: %v", err))
			}
			sealed := aead.Seal(nonce, nonce, msg, []byte(mp2c.CarouselID(ctx)))
			next.Consume(ctx, sealed)
		})
	}, nil
}

// Open decrypts a message produced by Seal for the carousel with the given ID.
func Open(key []byte, carouselID string, sealed []byte) (mp2c.Message, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrMalformedSealed
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(carouselID))
	if err != nil {
		return nil, fmt.Errorf("consumer: open sealed message: %w", err)
	}
	return plain, nil
}

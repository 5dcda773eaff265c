// Package secret seals short credentials (zoom api secrets) before they are stored.
package secret

//go:generate go run go.uber.org/mock/mockgen -source=./secret.go -destination=./mocks/secret_mock.go -package=mocks

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

var (
	ErrInvalidKey    = errors.New("secret key must be 32 bytes")
	ErrInvalidSealed = errors.New("sealed value is malformed")
	ErrDecrypt       = errors.New("sealed value could not be opened")
)

type Box interface {
	Seal(plain string) (string, error)
	Open(sealed string) (string, error)
}

type box struct {
	key [keySize]byte
}

func New(key string) (Box, error) {
	if len(key) != keySize {
		return nil, ErrInvalidKey
	}

	b := &box{}
	copy(b.key[:], key)

	return b, nil
}

// Seal encrypts plain and returns base64(nonce || ciphertext).
func (b *box) Seal(plain string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plain), &nonce, &b.key)

	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (b *box) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrInvalidSealed
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &b.key)
	if !ok {
		return "", ErrDecrypt
	}

	return string(plain), nil
}

type plain struct{}

// Plain is the Box used when no secret key is configured. Values are stored as given.
func Plain() Box {
	return plain{}
}

func (plain) Seal(value string) (string, error) {
	return value, nil
}

func (plain) Open(value string) (string, error) {
	return value, nil
}

package action

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

var encoding = base64.RawURLEncoding

// Mask encrypts name under a new random key read from random.
// It returns the masked name and the key, both base64url encoded.
func Mask(name string, random io.Reader) (masked, key string, err error) {
	if random == nil {
		random = rand.Reader
	}

	rawKey := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(random, rawKey); err != nil {
		return "", "", err
	}
	aead, err := chacha20poly1305.NewX(rawKey)
	if err != nil {
		return "", "", err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(name)+aead.Overhead())
	if _, err := io.ReadFull(random, nonce); err != nil {
		return "", "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(name), nil)

	return encoding.EncodeToString(sealed), encoding.EncodeToString(rawKey), nil
}

// Unmask reverses Mask.
func Unmask(masked, key string) (string, error) {
	rawKey, err := encoding.DecodeString(key)
	if err != nil {
		return "", fmt.Errorf("%w: key: %v", ErrMalformedCiphertext, err)
	}
	aead, err := chacha20poly1305.NewX(rawKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}

	sealed, err := encoding.DecodeString(masked)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	if len(sealed) < aead.NonceSize() {
		return "", ErrMalformedCiphertext
	}

	plain, err := aead.Open(nil, sealed[:aead.NonceSize()], sealed[aead.NonceSize():], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	return string(plain), nil
}

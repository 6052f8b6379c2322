package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

// ErrBadSignature is returned when a signed value was tampered with.
var ErrBadSignature = errors.New("auth: bad signature")

// Signer authenticates small cookie payloads such as flash messages.
type Signer struct {
	key []byte
}

// NewSigner returns a Signer keyed by secret. An empty secret yields a random
// per-process key, so signed values do not survive a restart.
func NewSigner(secret string) *Signer {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	return &Signer{key: key}
}

// Sign encodes value with its HMAC.
func (s *Signer) Sign(value string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(value))
	return payload + "." + s.mac(payload)
}

// Verify returns the value carried by signed.
func (s *Signer) Verify(signed string) (string, error) {
	payload, sig, ok := strings.Cut(signed, ".")
	if !ok {
		return "", ErrBadSignature
	}
	if !hmac.Equal([]byte(sig), []byte(s.mac(payload))) {
		return "", ErrBadSignature
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrBadSignature
	}
	return string(raw), nil
}

func (s *Signer) mac(payload string) string {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

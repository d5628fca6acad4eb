package app

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// MinJWTSecretBytes is the smallest accepted HMAC secret.
const MinJWTSecretBytes = 32

// SecretByteLength returns the decoded byte length of a secret string.
// It supports hex, base64, and raw string encodings.
func SecretByteLength(value string) int {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0
	}

	if len(v)%2 == 0 {
		if decoded, err := hex.DecodeString(v); err == nil {
			return len(decoded)
		}
	}

	if decoded, err := base64.StdEncoding.DecodeString(v); err == nil {
		return len(decoded)
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(v); err == nil {
		return len(decoded)
	}

	return len(v)
}

// ValidateSecrets rejects configurations the server must not start with.
func ValidateSecrets(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Auth.JWT.Secret = strings.TrimSpace(cfg.Auth.JWT.Secret)
	if cfg.Auth.JWT.Secret == "" {
		return errors.New("auth.jwt.secret must be configured")
	}
	if n := SecretByteLength(cfg.Auth.JWT.Secret); n < MinJWTSecretBytes {
		return fmt.Errorf("auth.jwt.secret must be at least %d bytes (current: %d)", MinJWTSecretBytes, n)
	}
	return nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/relaywire/connector/internal/connectorerr"
)

// Secret is a tagged union resolved once at startup: an inline value, an
// environment variable name, or a file path whose (trimmed) contents are
// the secret. It mirrors the JSON shapes:
//
//	"plain-value"
//	{"fromEnv": "MONGO_URL"}
//	{"fromFile": "/var/run/secrets/mongo-url"}
type Secret struct {
	plain    string
	fromEnv  string
	fromFile string
	kind     secretKind
}

type secretKind int

const (
	secretKindPlain secretKind = iota
	secretKindFromEnv
	secretKindFromFile
)

// UnmarshalJSON accepts either a bare JSON string (Plain) or an object with
// exactly one of "fromEnv"/"fromFile".
func (s *Secret) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		s.kind = secretKindPlain
		s.plain = plain
		return nil
	}

	var obj struct {
		FromEnv  *string `json:"fromEnv"`
		FromFile *string `json:"fromFile"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("secret: %w", err)
	}

	switch {
	case obj.FromEnv != nil && obj.FromFile != nil:
		return fmt.Errorf("secret: expected exactly one of \"fromEnv\" or \"fromFile\"")
	case obj.FromEnv != nil:
		s.kind = secretKindFromEnv
		s.fromEnv = *obj.FromEnv
	case obj.FromFile != nil:
		s.kind = secretKindFromFile
		s.fromFile = *obj.FromFile
	default:
		return fmt.Errorf("secret: expected a string, {\"fromEnv\": ...}, or {\"fromFile\": ...}")
	}
	return nil
}

// Resolve returns the secret's value, reading the environment or a file as
// needed. File contents are trimmed of surrounding whitespace.
func (s Secret) Resolve() (string, error) {
	switch s.kind {
	case secretKindPlain:
		return s.plain, nil
	case secretKindFromEnv:
		v, ok := os.LookupEnv(s.fromEnv)
		if !ok {
			return "", fmt.Errorf("%w: env %s", connectorerr.ErrSecretNotFound, s.fromEnv)
		}
		return v, nil
	case secretKindFromFile:
		data, err := os.ReadFile(s.fromFile)
		if err != nil {
			return "", fmt.Errorf("%w: file %s: %v", connectorerr.ErrSecretNotFound, s.fromFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	default:
		return "", fmt.Errorf("%w: unresolved secret", connectorerr.ErrSecretNotFound)
	}
}

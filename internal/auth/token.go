// Package auth holds the GitHub bearer credential.
package auth

import (
	"errors"
	"log/slog"
	"os"
	"strings"
)

// ErrMissingToken is returned when no credential is configured.
var ErrMissingToken = errors.New("GH_TOKEN or GITHUB_TOKEN environment variable required")

const redacted = "[REDACTED]"

// EnvVars are checked in order by FromEnv.
var EnvVars = []string{"GH_TOKEN", "GITHUB_TOKEN"}

// Token is a bearer credential. It is passed explicitly to the calls that
// need it and redacts itself wherever it could be printed or logged.
type Token struct {
	value string
}

// NewToken wraps a raw credential. Surrounding whitespace is dropped.
func NewToken(raw string) (Token, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Token{}, ErrMissingToken
	}
	return Token{value: raw}, nil
}

// FromEnv reads the first non-empty variable of EnvVars.
func FromEnv() (Token, error) {
	for _, name := range EnvVars {
		if v := os.Getenv(name); strings.TrimSpace(v) != "" {
			return NewToken(v)
		}
	}
	return Token{}, ErrMissingToken
}

// Secret returns the raw credential. Call it only at the point where the
// credential is put on the wire.
func (t Token) Secret() string { return t.value }

// IsZero reports whether the token is empty.
func (t Token) IsZero() bool { return t.value == "" }

// String implements fmt.Stringer.
func (t Token) String() string { return redacted }

// GoString implements fmt.GoStringer so %#v is redacted too.
func (t Token) GoString() string { return redacted }

// LogValue implements slog.LogValuer.
func (t Token) LogValue() slog.Value { return slog.StringValue(redacted) }

// MarshalText keeps the credential out of encoded config and JSON.
func (t Token) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// Redact replaces every occurrence of the credential in s.
func (t Token) Redact(s string) string {
	if t.value == "" {
		return s
	}
	return strings.ReplaceAll(s, t.value, redacted)
}

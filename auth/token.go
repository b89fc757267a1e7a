// Package auth supplies bearer tokens for backend requests.
//
// An empty token is not an error: it means the request is sent without an
// Authorization header.
package auth

import (
	"context"
	"os"
	"strings"
)

// TokenSource yields the bearer token for the next request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// Token calls f.
func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticToken always returns the same token.
type StaticToken string

// Token returns the trimmed token.
func (t StaticToken) Token(context.Context) (string, error) {
	return strings.TrimSpace(string(t)), nil
}

// EnvToken reads the token from an environment variable on every call.
func EnvToken(key string) TokenSource {
	return TokenFunc(func(context.Context) (string, error) {
		return strings.TrimSpace(os.Getenv(key)), nil
	})
}

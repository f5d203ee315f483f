// Package tokenstore persists the current bearer token in a single durable
// slot. The gateway reads it on every request; the session manager writes it
// on every refresh. Absence means "unauthenticated caller".
package tokenstore

import (
	"context"
	"errors"
)

// ErrTokenNotFound is returned when no token is currently stored.
var ErrTokenNotFound = errors.New("no bearer token stored")

// Store is the single-slot token store. Any writer may overwrite; the slot
// holds at most one value.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Package session keeps per-visitor state (identity, recently viewed
// listings, remembered search, flash messages) behind a cookie id.
package session

import (
	"context"
	"errors"

	"github.com/yourorg/roomeasy-api/internal/model"
)

var ErrNotFound = errors.New("session not found")

// Store persists sessions by id. Concurrent saves for one id are
// last-write-wins.
type Store interface {
	Load(ctx context.Context, id string) (model.ViewerSession, error)
	Save(ctx context.Context, sess model.ViewerSession) error
	Delete(ctx context.Context, id string) error
}

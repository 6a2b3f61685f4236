package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenStore is the allow-list of issued tokens. A token that is not stored
// is treated as revoked even when its signature and expiry are valid.
type TokenStore interface {
	StoreAccess(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error
	StoreRefresh(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error
	AccessExists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error)
	RefreshExists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error)
	RevokeAccess(ctx context.Context, userID uuid.UUID, tokenID string) error
	RevokeRefresh(ctx context.Context, userID uuid.UUID, tokenID string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

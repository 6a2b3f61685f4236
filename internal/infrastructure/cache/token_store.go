package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	accessTokenPrefix  = "access_token"
	refreshTokenPrefix = "refresh_token"
	scanBatchSize      = 100
)

// RedisTokenStore keeps issued token ids under access_token:<user>:<id> and
// refresh_token:<user>:<id>, expiring with the token itself.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func tokenKey(prefix string, userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s:%s:%s", prefix, userID.String(), tokenID)
}

func (s *RedisTokenStore) StoreAccess(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, tokenKey(accessTokenPrefix, userID, tokenID), "valid", ttl).Err()
}

func (s *RedisTokenStore) StoreRefresh(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, tokenKey(refreshTokenPrefix, userID, tokenID), "valid", ttl).Err()
}

func (s *RedisTokenStore) AccessExists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	return s.exists(ctx, tokenKey(accessTokenPrefix, userID, tokenID))
}

func (s *RedisTokenStore) RefreshExists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	return s.exists(ctx, tokenKey(refreshTokenPrefix, userID, tokenID))
}

func (s *RedisTokenStore) exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisTokenStore) RevokeAccess(ctx context.Context, userID uuid.UUID, tokenID string) error {
	return s.client.Del(ctx, tokenKey(accessTokenPrefix, userID, tokenID)).Err()
}

func (s *RedisTokenStore) RevokeRefresh(ctx context.Context, userID uuid.UUID, tokenID string) error {
	return s.client.Del(ctx, tokenKey(refreshTokenPrefix, userID, tokenID)).Err()
}

// RevokeAll drops every token of the user. SCAN keeps Redis responsive on large keyspaces.
func (s *RedisTokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	for _, prefix := range []string{accessTokenPrefix, refreshTokenPrefix} {
		pattern := fmt.Sprintf("%s:%s:*", prefix, userID.String())
		iter := s.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()

		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
	}
	return nil
}

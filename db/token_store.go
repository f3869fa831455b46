package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore tracks revoked access tokens. Entries expire with the token
// itself, so the set never needs collecting.
type TokenStore interface {
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsTokenInBlacklist(ctx context.Context, token string) bool
}

type redisTokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

func (s *redisTokenStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Set(ctx, "blacklist:"+token, "1", ttl).Err()
}

func (s *redisTokenStore) IsTokenInBlacklist(ctx context.Context, token string) bool {
	n, err := s.client.Exists(ctx, "blacklist:"+token).Result()
	if err != nil {
		// fail open on a cache error; the JWT signature check still applies
		return false
	}
	return n > 0
}

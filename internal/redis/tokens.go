package redisx

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/samirwankhede/roomstats/internal/comepass"
)

const tokenKey = "comepass:token"

// TokenCache shares the vendor access token between the server, worker and scheduler.
// The key expires together with the token.
type TokenCache struct{ client *redis.Client }

func NewTokenCache(client *redis.Client) *TokenCache {
	return &TokenCache{client: client}
}

func (t *TokenCache) LoadToken(ctx context.Context) (comepass.Token, error) {
	b, err := t.client.Get(ctx, tokenKey).Bytes()
	if err == redis.Nil {
		return comepass.Token{}, comepass.ErrNoToken
	}
	if err != nil {
		return comepass.Token{}, err
	}
	var tok comepass.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return comepass.Token{}, err
	}
	return tok, nil
}

func (t *TokenCache) SaveToken(ctx context.Context, tok comepass.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	ttl := time.Until(tok.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return t.client.Set(ctx, tokenKey, b, ttl).Err()
}

package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "webgo/internal/errors"
)

const sessionTTL = 24 * time.Hour

// RedisSessionStorage maps session ids handed out at login to user ids.
// Account management lives outside this service; we only resolve and refresh.
type RedisSessionStorage struct {
	client *redis.Client
	log    *zap.SugaredLogger
}

func NewSessionRedisStorage(client *redis.Client, log *zap.SugaredLogger) *RedisSessionStorage {
	return &RedisSessionStorage{client: client, log: log}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func (r *RedisSessionStorage) GetUserIDBySession(ctx context.Context, sessionID string) (string, error) {
	userID, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.ErrSessionNotFound
		}
		r.log.Errorw("session lookup failed", "error", err)
		return "", err
	}
	// Sliding expiry: any authenticated request keeps the session alive.
	r.client.Expire(ctx, sessionKey(sessionID), sessionTTL)
	return userID, nil
}

package dedup

import (
	"context"
	"fmt"
	"time"

	platformredis "rollcall/internal/platform/redis"
	id "rollcall/pkg/domain"
)

// Redis is a guard backed by SET NX, safe across multiple service instances.
// Reservations expire after ttl so abandoned sessions do not pin keys
// forever; sessions are expected to close well inside that window.
type Redis struct {
	client *platformredis.Client
	ttl    time.Duration
}

func NewRedis(client *platformredis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Reserve(ctx context.Context, sessionID id.SessionID, studentID id.UserID) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.key(sessionID, studentID), "1", r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup reserve: %w", err)
	}
	return ok, nil
}

func (r *Redis) Release(ctx context.Context, sessionID id.SessionID, studentID id.UserID) error {
	if err := r.client.Del(ctx, r.key(sessionID, studentID)).Err(); err != nil {
		return fmt.Errorf("dedup release: %w", err)
	}
	return nil
}

func (r *Redis) key(sessionID id.SessionID, studentID id.UserID) string {
	return "rollcall:dedup:" + sessionID.String() + ":" + studentID.String()
}

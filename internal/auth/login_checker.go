package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*LoginTestChecker)(nil)

type Checker interface {
	// IsLogged returns the id of the user owning a valid session.
	IsLogged(ctx context.Context, token string) (int, bool, error)
}

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

func (c *LoginChecker) IsLogged(ctx context.Context, token string) (int, bool, error) {
	session, err := getSession(ctx, c.redisClient, token)
	if errors.Is(err, ErrSessionNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	if time.Since(session.CreatedAt) > c.ttl {
		return 0, false, nil
	}

	return session.UserID, true, nil
}

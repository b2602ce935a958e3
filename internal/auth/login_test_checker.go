package auth

import (
	"context"
	"sync"
)

// LoginTestChecker is an in-memory Checker for local runs and tests.
type LoginTestChecker struct {
	mu       sync.RWMutex
	sessions map[string]int // token -> user id
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		sessions: map[string]int{},
	}
}

func (c *LoginTestChecker) Login(token string, userID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[token] = userID
}

func (c *LoginTestChecker) Logout(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, token)
}

func (c *LoginTestChecker) IsLogged(_ context.Context, token string) (int, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	userID, ok := c.sessions[token]
	return userID, ok, nil
}

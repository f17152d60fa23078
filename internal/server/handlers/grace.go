package handlers

import (
	"sync"
	"time"

	"github.com/iudanet/carelink/pkg/api"
)

// DefaultGraceWindow - сколько живет пара, выданная при ротации
const DefaultGraceWindow = 15 * time.Second

type graceEntry struct {
	createdAt   time.Time
	pair        api.TokenPairResponse
	refreshHash string // хеш выданного refresh token
}

// graceCache хранит недавно выданные при ротации пары по хешу старого refresh token.
// Дубликат refresh запроса со старым токеном получает ту же пару вместо 401.
type graceCache struct {
	m      map[string]graceEntry
	window time.Duration
	mu     sync.Mutex
}

func newGraceCache(window time.Duration) *graceCache {
	return &graceCache{
		m:      make(map[string]graceEntry),
		window: window,
	}
}

func (c *graceCache) get(oldHash string, now time.Time) (api.TokenPairResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[oldHash]
	if !ok {
		return api.TokenPairResponse{}, false
	}
	if now.After(e.createdAt.Add(c.window)) {
		delete(c.m, oldHash)
		return api.TokenPairResponse{}, false
	}
	return e.pair, true
}

func (c *graceCache) put(oldHash, refreshHash string, pair api.TokenPairResponse, now time.Time) {
	if c.window <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[oldHash] = graceEntry{pair: pair, refreshHash: refreshHash, createdAt: now}
}

// forget удаляет записи, которые выдали отозванный refresh token
func (c *graceCache) forget(refreshHash string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.m {
		if e.refreshHash == refreshHash {
			delete(c.m, key)
		}
	}
}

// purge удаляет истекшие записи
func (c *graceCache) purge(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	for key, e := range c.m {
		if now.After(e.createdAt.Add(c.window)) {
			delete(c.m, key)
			removed++
		}
	}
	return removed
}

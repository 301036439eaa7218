package routing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"noticeboard/internal/storage"
	"noticeboard/pkg/logx"
)

// RequirementKey is the storage key of the cached content-type requirement.
const RequirementKey = "routing.contenttype_requirement"

// Cache holds the requirement that was current at the last cache build.
// The content types it names are what the site routes can serve; a slug
// configured later stays unknown until Rebuild.
type Cache struct {
	mu     sync.RWMutex
	store  storage.Store // nil keeps the requirement in memory only
	value  string
	seeded bool
	log    logx.Logger
}

func NewCache(store storage.Store, log logx.Logger) *Cache {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Cache{store: store, log: log}
}

// Seed loads the persisted requirement. When none exists yet it is built
// from slugs and persisted, as on a first start.
func (c *Cache) Seed(ctx context.Context, slugs []string) error {
	if c.store != nil {
		v, ok, err := c.store.GetRequirement(ctx, RequirementKey)
		if err != nil {
			return fmt.Errorf("load routing requirement: %w", err)
		}
		if ok {
			c.mu.Lock()
			c.value, c.seeded = v, true
			c.mu.Unlock()
			c.log.Debug("routing requirement loaded", logx.String("requirement", v))
			return nil
		}
	}

	c.mu.RLock()
	seeded := c.seeded
	c.mu.RUnlock()
	if seeded {
		return nil
	}
	_, err := c.Rebuild(ctx, slugs)
	return err
}

// Rebuild replaces the requirement with one built from slugs.
func (c *Cache) Rebuild(ctx context.Context, slugs []string) (string, error) {
	req := BuildRequirement(slugs)
	if c.store != nil {
		if err := c.store.PutRequirement(ctx, RequirementKey, req); err != nil {
			return "", fmt.Errorf("store routing requirement: %w", err)
		}
	}
	c.mu.Lock()
	c.value, c.seeded = req, true
	c.mu.Unlock()
	c.log.Info("routing requirement rebuilt", logx.Int("content_types", len(ParseRequirement(req))))
	return req, nil
}

// Clear rebuilds the requirement on behalf of actor and appends the outcome
// to the audit log. A failed audit write is logged, not returned.
func (c *Cache) Clear(ctx context.Context, slugs []string, actor, requestID string) (string, error) {
	start := time.Now()
	req, err := c.Rebuild(ctx, slugs)
	if c.store == nil {
		return req, err
	}
	e := storage.AuditEntry{
		At:        start,
		Actor:     actor,
		RequestID: requestID,
		Action:    "cache.clear",
		Target:    req,
		OK:        err == nil,
		TookMS:    time.Since(start).Milliseconds(),
	}
	if err != nil {
		e.Error = err.Error()
	}
	if aerr := c.store.AppendAudit(ctx, e); aerr != nil {
		c.log.Warn("audit append failed", logx.String("action", e.Action), logx.Err(aerr))
	}
	return req, err
}

// Requirement returns the cached requirement string.
func (c *Cache) Requirement() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Known returns the slugs of the cached requirement. It is nil until the
// cache has been seeded and never nil afterwards, even when the requirement
// names no content type.
func (c *Cache) Known() []string {
	c.mu.RLock()
	v, seeded := c.value, c.seeded
	c.mu.RUnlock()
	if !seeded {
		return nil
	}
	return ParseRequirement(v)
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"linkshort/internal/cache"
	"linkshort/internal/entities"
)

type cachedLink struct {
	ID          string     `json:"id,omitempty"`
	OriginalURL string     `json:"original_url,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Deleted     bool       `json:"deleted,omitempty"`
}

// tombstoneTTL bounds how long a delete blocks lookups from refilling the
// key. It must outlast any resolve that read the row before the delete.
const tombstoneTTL = time.Minute

// LinkCache is a read-through cache of short code lookups. A nil *LinkCache
// is valid and caches nothing. Cache failures are logged and otherwise
// ignored so the store stays the source of truth.
//
// Deletes leave a tombstone and lookups only fill absent keys, so a resolve
// racing a delete cannot put the deleted link back.
type LinkCache struct {
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewLinkCache wraps c. It returns nil when c is nil.
func NewLinkCache(c cache.Cache, ttl time.Duration, logger *slog.Logger) *LinkCache {
	if c == nil {
		return nil
	}
	return &LinkCache{cache: c, ttl: ttl, logger: logger}
}

func linkCacheKey(shortCode string) string {
	return "link:code:" + shortCode
}

func (c *LinkCache) get(ctx context.Context, shortCode string) (*entities.ShortLink, bool) {
	if c == nil {
		return nil, false
	}

	var entry cachedLink
	if err := c.cache.GetJSON(ctx, linkCacheKey(shortCode), &entry); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn("link cache read failed", "short_code", shortCode, "error", err)
		}
		return nil, false
	}
	if entry.Deleted {
		return nil, false
	}

	return &entities.ShortLink{
		ID:          entry.ID,
		ShortCode:   shortCode,
		OriginalURL: entry.OriginalURL,
		ExpiresAt:   entry.ExpiresAt,
	}, true
}

// put stores a freshly created link, replacing any tombstone left for a
// reused code
func (c *LinkCache) put(ctx context.Context, link *entities.ShortLink) {
	if c == nil {
		return
	}

	entry := cachedLink{ID: link.ID, OriginalURL: link.OriginalURL, ExpiresAt: link.ExpiresAt}
	if err := c.cache.SetJSON(ctx, linkCacheKey(link.ShortCode), entry, c.ttl); err != nil {
		c.logger.Warn("link cache write failed", "short_code", link.ShortCode, "error", err)
	}
}

// fill caches a link read from the store unless the key is already taken,
// by a newer entry or by a tombstone
func (c *LinkCache) fill(ctx context.Context, link *entities.ShortLink) {
	if c == nil {
		return
	}

	entry := cachedLink{ID: link.ID, OriginalURL: link.OriginalURL, ExpiresAt: link.ExpiresAt}
	if _, err := c.cache.SetJSONIfAbsent(ctx, linkCacheKey(link.ShortCode), entry, c.ttl); err != nil {
		c.logger.Warn("link cache write failed", "short_code", link.ShortCode, "error", err)
	}
}

// evict replaces the entry for shortCode with a tombstone
func (c *LinkCache) evict(ctx context.Context, shortCode string) {
	if c == nil || shortCode == "" {
		return
	}
	if err := c.cache.SetJSON(ctx, linkCacheKey(shortCode), cachedLink{Deleted: true}, tombstoneTTL); err != nil {
		c.logger.Warn("link cache eviction failed", "short_code", shortCode, "error", err)
	}
}

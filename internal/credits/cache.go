// Package credits implements the Response Cache for Spotify track credits:
// encoded payloads keyed by artist and track, fresh for 24 hours.
package credits

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// TTL is the duration after which a cached payload is considered stale.
const TTL = 24 * time.Hour

// Entry is a cached payload and the time it was stored.
type Entry struct {
	Payload  []byte
	StoredAt time.Time
}

// Store is a cache backend. Load reports found=false for a missing key.
type Store interface {
	Load(ctx context.Context, key string) (entry *Entry, found bool, err error)
	Save(ctx context.Context, key string, entry Entry) error
}

// Key normalizes artist and track into a cache key.
func Key(artist, track string) string {
	return strings.ToLower(artist) + "_" + strings.ToLower(track)
}

// Cache checks freshness on top of a Store. Backend failures are logged
// and treated as misses so a broken cache never fails a request.
type Cache struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger log.FieldLogger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithTTL overrides the freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithLogger sets the logger for backend failures.
func WithLogger(logger log.FieldLogger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates a Cache over store.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		ttl:    TTL,
		now:    time.Now,
		logger: log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the payload stored for artist and track if it is still fresh.
func (c *Cache) Get(ctx context.Context, artist, track string) ([]byte, bool) {
	key := Key(artist, track)

	entry, found, err := c.store.Load(ctx, key)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("credits cache load failed")
		return nil, false
	}
	if !found {
		return nil, false
	}

	// Lazy invalidation: stale entries are overwritten by the next Put.
	if c.now().Sub(entry.StoredAt) >= c.ttl {
		return nil, false
	}
	return entry.Payload, true
}

// Put stores payload for artist and track, stamped with the current time.
func (c *Cache) Put(ctx context.Context, artist, track string, payload []byte) {
	key := Key(artist, track)
	entry := Entry{Payload: payload, StoredAt: c.now()}
	if err := c.store.Save(ctx, key, entry); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("credits cache save failed")
	}
}

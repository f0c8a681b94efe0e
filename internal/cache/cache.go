package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pyomin/bluecool-admin/pkg/logger"
)

// Loader fetches the value for a key from the backend
type Loader func(ctx context.Context) (any, error)

// NeverStale disables staleness for an entry (e.g. ['auth','me'])
const NeverStale = time.Duration(-1)

// DefaultStaleAfter staleness window applied when a read passes zero
const DefaultStaleAfter = 30 * time.Second

const redisKeyPrefix = "admin:cache:"

// ReadOptions tunes a single Read
type ReadOptions struct {
	// StaleAfter is the entry's staleness window. Zero means
	// DefaultStaleAfter, NeverStale means the value never goes stale.
	StaleAfter time.Duration

	// Placeholder names another key whose last value is served while
	// this key loads for the first time, so lists don't flash empty
	// across filter changes.
	Placeholder Key
}

// Result a Read outcome
type Result struct {
	Value any
	// Stale: served from a stale entry while a refresh runs
	Stale bool
	// Placeholder: served from the placeholder key, not this key
	Placeholder bool
}

type call struct {
	done  chan struct{}
	value any
	err   error
}

type entry struct {
	key        Key
	value      any
	hasValue   bool
	loadedAt   time.Time
	staleAfter time.Duration
	loader     Loader

	inflight *call
	// invalid: a prefix invalidation hit this entry; reads must wait
	// for a load initiated after the invalidation
	invalid bool
	// refetchQueued: an invalidation arrived while a fetch was in
	// flight; that result is still written, then a refetch runs
	refetchQueued bool

	observers  map[int]chan struct{}
	stopTicker chan struct{}
}

// Cache the request-scoped cache: keyed entries with staleness,
// coalesced in-flight loads, observer notification and prefix
// invalidation. Process-wide singleton; an optional redis mirror
// warm-starts entries across console restarts.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	nextObsID int
	redis     *redis.Client
}

// New creates an empty cache. rdb may be nil; mirroring is then off.
func New(rdb *redis.Client) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		redis:   rdb,
	}
}

func (c *Cache) ensure(key Key) *entry {
	ck := key.String()
	e, ok := c.entries[ck]
	if !ok {
		e = &entry{key: key, observers: make(map[int]chan struct{})}
		c.entries[ck] = e
	}
	return e
}

// Read returns the entry's value. Fresh values return immediately.
// Stale values are served while a background refresh runs. Absent or
// invalidated entries wait for the (coalesced) load; at most one
// network call runs per key regardless of concurrent readers. A read
// issued after an invalidation never adopts a load begun before it.
func (c *Cache) Read(ctx context.Context, key Key, loader Loader, opts ReadOptions) (Result, error) {
	staleAfter := opts.StaleAfter
	if staleAfter == 0 {
		staleAfter = DefaultStaleAfter
	}

	c.mu.Lock()
	e := c.ensure(key)
	e.loader = loader
	e.staleAfter = staleAfter

	for first := true; ; first = false {
		if e.hasValue && !e.invalid && !c.isStale(e) {
			v := e.value
			c.mu.Unlock()
			return Result{Value: v}, nil
		}

		cl := e.inflight
		if cl == nil {
			cl = c.startFetch(e)
		}

		// Stale-but-valid entries keep serving while the refresh runs
		if e.hasValue && !e.invalid {
			v := e.value
			c.mu.Unlock()
			return Result{Value: v, Stale: true}, nil
		}

		// First load: optionally serve the placeholder key's last value
		if first && opts.Placeholder != nil {
			if p, ok := c.entries[opts.Placeholder.String()]; ok && p.hasValue {
				v := p.value
				c.mu.Unlock()
				return Result{Value: v, Placeholder: true}, nil
			}
		}
		c.mu.Unlock()

		select {
		case <-cl.done:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}

		c.mu.Lock()
		if cl.err != nil {
			c.mu.Unlock()
			return Result{}, cl.err
		}
		if !e.invalid {
			c.mu.Unlock()
			return Result{Value: cl.value}, nil
		}
		// An invalidation landed while that call ran. Its result is
		// older than the invalidation, so keep waiting for the load
		// initiated after it.
	}
}

// isStale assumes c.mu is held
func (c *Cache) isStale(e *entry) bool {
	if e.staleAfter == NeverStale {
		return false
	}
	return time.Since(e.loadedAt) >= e.staleAfter
}

// startFetch assumes c.mu is held and e.inflight == nil
func (c *Cache) startFetch(e *entry) *call {
	cl := &call{done: make(chan struct{})}
	e.inflight = cl
	loader := e.loader

	go func() {
		// Loads outlive the reader that triggered them; results of
		// loads nobody awaits are still written.
		v, err := loader(context.Background())
		cl.value, cl.err = v, err
		c.complete(e, cl)
		close(cl.done)
	}()

	return cl
}

func (c *Cache) complete(e *entry, cl *call) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e.inflight = nil

	if cl.err == nil {
		e.value = cl.value
		e.hasValue = true
		e.loadedAt = time.Now()
		c.mirror(e)
		c.notify(e)
	} else {
		log := logger.WithComponent("cache")
		log.Warn().Err(cl.err).Str("key", e.key.String()).Msg("load failed")
	}

	if e.refetchQueued {
		// The invalidation raced this fetch: its result is written
		// above, but the entry stays invalid until a load initiated
		// after the invalidation lands.
		e.refetchQueued = false
		if len(e.observers) > 0 {
			c.startFetch(e)
		}
		// Without observers the next Read triggers the load.
		return
	}

	if cl.err == nil {
		e.invalid = false
	}
}

// Invalidate marks every entry whose key begins with prefix as stale.
// Entries with observers refetch immediately. An invalidation landing
// while a fetch is in flight still writes that fetch's result and then
// schedules one more refetch.
func (c *Cache) Invalidate(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}

		e.invalid = true
		c.unmirror(e)

		if e.inflight != nil {
			e.refetchQueued = true
			continue
		}
		if len(e.observers) > 0 && e.loader != nil {
			c.startFetch(e)
		}
	}
}

// Set writes a value imperatively (e.g. seeding ['auth','me'] from the
// login response without a round-trip).
func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.ensure(key)
	e.value = value
	e.hasValue = true
	e.invalid = false
	e.loadedAt = time.Now()
	if e.staleAfter == 0 {
		e.staleAfter = DefaultStaleAfter
	}
	c.mirror(e)
	c.notify(e)
}

// Subscribe registers an observer for the key. The returned channel
// receives a tick after every value update. The cancel func releases
// the observer; when the last observer of a key leaves, its background
// refresh ticker (if any) stops.
func (c *Cache) Subscribe(key Key) (<-chan struct{}, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.ensure(key)
	id := c.nextObsID
	c.nextObsID++

	ch := make(chan struct{}, 1)
	e.observers[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(e.observers, id)
		if len(e.observers) == 0 && e.stopTicker != nil {
			close(e.stopTicker)
			e.stopTicker = nil
		}
	}
	return ch, cancel
}

// StartRefresh begins background polling of the key every interval
// while it has at least one observer.
func (c *Cache) StartRefresh(key Key, every time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.ensure(key)
	if e.stopTicker != nil || len(e.observers) == 0 {
		return
	}

	stop := make(chan struct{})
	e.stopTicker = stop

	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.mu.Lock()
				if e.inflight == nil && e.loader != nil && len(e.observers) > 0 {
					c.startFetch(e)
				}
				c.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

// notify assumes c.mu is held; observers that are not draining miss
// intermediate ticks but always see a final one.
func (c *Cache) notify(e *entry) {
	for _, ch := range e.observers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Seed tries to warm-start the key from the redis mirror. The decoded
// value is installed already-stale, so the first Read serves it while
// a real load runs. Returns true on a mirror hit.
func (c *Cache) Seed(ctx context.Context, key Key, decode func([]byte) (any, error)) bool {
	if c.redis == nil {
		return false
	}

	data, err := c.redis.Get(ctx, redisKeyPrefix+key.String()).Bytes()
	if err != nil {
		return false
	}

	v, err := decode(data)
	if err != nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.ensure(key)
	if e.hasValue {
		return false
	}
	e.value = v
	e.hasValue = true
	// Stale on arrival: time zero forces a refresh on first Read
	e.loadedAt = time.Time{}
	if e.staleAfter == 0 {
		e.staleAfter = DefaultStaleAfter
	}
	return true
}

// mirror assumes c.mu is held. Mirror failures only cost the warm
// start, so they are logged and ignored.
func (c *Cache) mirror(e *entry) {
	if c.redis == nil {
		return
	}

	data, err := json.Marshal(e.value)
	if err != nil {
		return
	}

	ttl := e.staleAfter
	if ttl <= 0 {
		ttl = DefaultStaleAfter
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.redis.Set(ctx, redisKeyPrefix+e.key.String(), data, ttl).Err(); err != nil {
			log := logger.WithComponent("cache")
			log.Debug().Err(err).Msg("redis mirror write failed")
		}
	}()
}

// unmirror assumes c.mu is held
func (c *Cache) unmirror(e *entry) {
	if c.redis == nil {
		return
	}

	key := redisKeyPrefix + e.key.String()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		c.redis.Del(ctx, key) //nolint:errcheck
	}()
}

// Package storage implements the validated persistence operations for every
// entity. A Context carries the arena, its partitions, the clock, and the
// rate-limit policy; all operations hang off it so tests can build isolated
// instances instead of sharing process globals.
package storage

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cvault/cvault/pkg/store"
)

// Clock returns the current time in nanoseconds since the Unix epoch. All
// persisted timestamps come from here so tests can pin time.
type Clock func() uint64

// RateLimitConfig bounds assistant usage per user per day.
type RateLimitConfig struct {
	DailyLimit    uint32
	ResetInterval time.Duration
}

// DefaultRateLimit allows 50 assistant requests per rolling 24 hours.
func DefaultRateLimit() RateLimitConfig {
	return RateLimitConfig{
		DailyLimit:    50,
		ResetInterval: 24 * time.Hour,
	}
}

// Context is the storage root. One instance owns one arena.
type Context struct {
	logger    *zap.Logger
	clock     Clock
	rateLimit RateLimitConfig

	arena    store.Arena
	users    *store.Partition
	edu      *store.Partition
	bank     *store.Partition
	cvs      *store.Partition
	sessions *store.Partition
	messages *store.Partition
	usage    *store.Partition

	// ownerLocks serializes multi-step read-modify-write sequences scoped
	// to one owner, such as next-version allocation and rate-limit checks.
	ownerLocks sync.Map // string -> *sync.Mutex
}

// Option tweaks Context construction.
type Option func(*Context)

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(ctx *Context) { ctx.clock = c }
}

// WithRateLimit overrides the default assistant rate limit.
func WithRateLimit(cfg RateLimitConfig) Option {
	return func(ctx *Context) { ctx.rateLimit = cfg }
}

// NewContext builds a storage context over an open arena. The caller retains
// ownership of the arena's lifecycle; Close closes it.
func NewContext(arena store.Arena, logger *zap.Logger, opts ...Option) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := &Context{
		logger:    logger,
		clock:     func() uint64 { return uint64(time.Now().UnixNano()) },
		rateLimit: DefaultRateLimit(),
		arena:     arena,
		users:     store.NewPartition(arena, store.PartitionUsers),
		edu:       store.NewPartition(arena, store.PartitionEducation),
		bank:      store.NewPartition(arena, store.PartitionBank),
		cvs:       store.NewPartition(arena, store.PartitionCVs),
		sessions:  store.NewPartition(arena, store.PartitionChatSessions),
		messages:  store.NewPartition(arena, store.PartitionChatMessages),
		usage:     store.NewPartition(arena, store.PartitionUsage),
	}
	for _, opt := range opts {
		opt(ctx)
	}
	return ctx
}

// Now reads the context clock.
func (c *Context) Now() uint64 { return c.clock() }

// Close shuts the underlying arena down.
func (c *Context) Close() error {
	return c.arena.Close()
}

// lockOwner acquires the mutex for one owner id, creating it on first use.
// The returned function releases it.
func (c *Context) lockOwner(ownerID string) func() {
	v, _ := c.ownerLocks.LoadOrStore(ownerID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// RecordCounts reports the number of live records per partition, keyed by
// partition name.
func (c *Context) RecordCounts() (map[string]int, error) {
	counts := make(map[string]int)
	for _, p := range []*store.Partition{
		c.users, c.edu, c.bank, c.cvs, c.sessions, c.messages, c.usage,
	} {
		n, err := p.Count()
		if err != nil {
			return nil, SystemError("count records", err)
		}
		counts[p.ID().String()] = n
	}
	return counts, nil
}

// ClearAll wipes every partition. Operator-only; exposed for the admin
// surface and for tests.
func (c *Context) ClearAll() error {
	for _, p := range []*store.Partition{
		c.users, c.edu, c.bank, c.cvs, c.sessions, c.messages, c.usage,
	} {
		if err := p.Clear(); err != nil {
			return SystemError("clear storage", err)
		}
	}
	c.logger.Warn("storage cleared")
	return nil
}

// ClearChat wipes only chat sessions and messages.
func (c *Context) ClearChat() error {
	for _, p := range []*store.Partition{c.sessions, c.messages} {
		if err := p.Clear(); err != nil {
			return SystemError("clear chat storage", err)
		}
	}
	c.logger.Warn("chat storage cleared")
	return nil
}

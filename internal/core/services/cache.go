package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// DefaultCacheTTL is how long an aggregation result is served from memory.
const DefaultCacheTTL = 30 * time.Second

// maxEntriesPerCapability bounds the distinct queries kept per capability.
const maxEntriesPerCapability = 32

// ResultCache keeps recent aggregation results per capability.
//
// Each capability has a single writer at a time: concurrent misses wait
// for the in-flight load and are then served from its result. Invalidation
// always drops every entry of a capability.
type ResultCache struct {
	ttl   time.Duration
	now   func() time.Time
	slots map[domain.Capability]*cacheSlot
}

type cacheEntry struct {
	value    any
	storedAt time.Time
}

type cacheSlot struct {
	// writer admits one loader at a time.
	writer chan struct{}

	mu      sync.Mutex
	entries map[string]cacheEntry
	// gen changes on every invalidation so stale loads are discarded.
	gen uint64
}

// NewResultCache creates a cache. A non-positive ttl disables caching.
// now defaults to time.Now.
func NewResultCache(ttl time.Duration, now func() time.Time) *ResultCache {
	if now == nil {
		now = time.Now
	}
	c := &ResultCache{
		ttl:   ttl,
		now:   now,
		slots: make(map[domain.Capability]*cacheSlot, len(domain.AllCapabilities)),
	}
	for _, capability := range domain.AllCapabilities {
		c.slots[capability] = &cacheSlot{
			writer:  make(chan struct{}, 1),
			entries: make(map[string]cacheEntry),
		}
	}
	return c
}

// TTL returns the configured time to live.
func (c *ResultCache) TTL() time.Duration { return c.ttl }

// Enabled reports whether results are cached at all.
func (c *ResultCache) Enabled() bool { return c != nil && c.ttl > 0 }

// Invalidate drops every entry for the given capabilities, or for all
// capabilities when none are given.
func (c *ResultCache) Invalidate(capabilities ...domain.Capability) {
	if c == nil {
		return
	}
	if len(capabilities) == 0 {
		capabilities = domain.AllCapabilities
	}
	for _, capability := range capabilities {
		s, ok := c.slots[capability]
		if !ok {
			continue
		}
		s.mu.Lock()
		s.entries = make(map[string]cacheEntry)
		s.gen++
		s.mu.Unlock()
	}
}

// Clear drops every entry.
func (c *ResultCache) Clear() { c.Invalidate() }

// Len returns the number of live entries for capability.
func (c *ResultCache) Len(capability domain.Capability) int {
	s, ok := c.slots[capability]
	if !ok {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	now := c.now()
	for _, e := range s.entries {
		if c.fresh(e, now) {
			n++
		}
	}
	return n
}

func (c *ResultCache) fresh(e cacheEntry, now time.Time) bool {
	return now.Sub(e.storedAt) < c.ttl
}

func (c *ResultCache) lookup(s *cacheSlot, key string) (any, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, s.gen, false
	}
	if !c.fresh(e, c.now()) {
		delete(s.entries, key)
		return nil, s.gen, false
	}
	return e.value, s.gen, true
}

func (c *ResultCache) store(s *cacheSlot, key string, value any, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	now := c.now()
	if len(s.entries) >= maxEntriesPerCapability {
		for k, e := range s.entries {
			if !c.fresh(e, now) {
				delete(s.entries, k)
			}
		}
		if len(s.entries) >= maxEntriesPerCapability {
			s.entries = make(map[string]cacheEntry)
		}
	}
	s.entries[key] = cacheEntry{value: value, storedAt: now}
}

// cached serves key from the capability's cache or runs load as the
// capability's single writer. Only successful loads are stored.
// The returned slice is a copy; cached entities are never handed out by reference.
func cached[T any](
	ctx context.Context,
	c *ResultCache,
	capability domain.Capability,
	key string,
	load func(ctx context.Context) ([]T, error),
) ([]T, bool, error) {
	if !c.Enabled() {
		items, err := load(ctx)
		return items, false, err
	}
	s, ok := c.slots[capability]
	if !ok {
		items, err := load(ctx)
		return items, false, err
	}

	if v, _, hit := c.lookup(s, key); hit {
		return cloneSlice(v.([]T)), true, nil
	}

	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
	defer func() { <-s.writer }()

	// Another writer may have filled the entry while we waited.
	v, gen, hit := c.lookup(s, key)
	if hit {
		return cloneSlice(v.([]T)), true, nil
	}

	items, err := load(ctx)
	if err != nil {
		return items, false, err
	}
	c.store(s, key, cloneSlice(items), gen)
	return items, false, nil
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// windowKey renders the parts of a query window that change the result.
func windowKey(w domain.Window) string {
	var b strings.Builder
	b.WriteString("limit=")
	b.WriteString(strconv.Itoa(w.EffectiveLimit()))
	if w.Since != nil {
		b.WriteString("|since=")
		b.WriteString(strconv.FormatInt(w.Since.UTC().UnixNano(), 10))
	}
	if len(w.SourceTypes) > 0 {
		types := make([]string, 0, len(w.SourceTypes))
		for _, st := range w.SourceTypes {
			types = append(types, string(st))
		}
		sort.Strings(types)
		b.WriteString("|sources=")
		b.WriteString(strings.Join(types, ","))
	}
	return b.String()
}

func messageKey(q domain.MessageQuery) string {
	return windowKey(q.Window) + "|unread=" + strconv.FormatBool(q.UnreadOnly) + "|thread=" + q.ThreadID
}

func emailKey(q domain.EmailQuery) string {
	return windowKey(q.Window) + "|unread=" + strconv.FormatBool(q.UnreadOnly) + "|folder=" + q.Folder
}

func noteKey(q domain.NoteQuery) string {
	return windowKey(q.Window) + "|notebook=" + q.NotebookID
}

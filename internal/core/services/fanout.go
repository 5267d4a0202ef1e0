package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
	"github.com/him6ul/AIAssistant/internal/logger"
)

// AggregateResult is the merged outcome of one fan-out.
type AggregateResult[T any] struct {
	// Items is the merged, sorted, deduplicated and truncated list.
	Items []T

	// Failed lists the adapters whose contribution was dropped.
	Failed []domain.SourceFailure

	// Skipped lists adapters that were not called because they are not connected.
	Skipped []domain.SourceType
}

// FailedSources returns the source types that failed.
func (r AggregateResult[T]) FailedSources() []domain.SourceType {
	out := make([]domain.SourceType, 0, len(r.Failed))
	for _, f := range r.Failed {
		out = append(out, f.SourceType)
	}
	return out
}

// entity describes how the merge step reads a unified entity.
type entity[T any] struct {
	id     func(*T) string
	source func(*T) domain.SourceType
	at     func(*T) time.Time
	valid  func(*T) bool
}

var messageEntity = entity[domain.UnifiedMessage]{
	id:     func(m *domain.UnifiedMessage) string { return m.ID },
	source: func(m *domain.UnifiedMessage) domain.SourceType { return m.SourceType },
	at:     func(m *domain.UnifiedMessage) time.Time { return m.Timestamp },
	valid:  (*domain.UnifiedMessage).Valid,
}

var emailEntity = entity[domain.UnifiedEmail]{
	id:     func(e *domain.UnifiedEmail) string { return e.ID },
	source: func(e *domain.UnifiedEmail) domain.SourceType { return e.SourceType },
	at:     func(e *domain.UnifiedEmail) time.Time { return e.Timestamp },
	valid:  (*domain.UnifiedEmail).Valid,
}

var noteEntity = entity[domain.UnifiedNote]{
	id:     func(n *domain.UnifiedNote) string { return n.ID },
	source: func(n *domain.UnifiedNote) domain.SourceType { return n.SourceType },
	at:     func(n *domain.UnifiedNote) time.Time { return n.LastModified },
	valid:  (*domain.UnifiedNote).Valid,
}

// fanOut calls every connected source concurrently and collects their
// contributions in source order. Latency is bounded by the slowest source.
//
// It returns ErrAllSourcesFailed only when every called source failed, and
// surfaces a capability misuse error unchanged. An empty source list is not
// an error.
func fanOut[S driven.Source, T any](
	ctx context.Context,
	op string,
	sources []S,
	call func(ctx context.Context, src S) ([]T, error),
) ([]T, AggregateResult[T], error) {
	var agg AggregateResult[T]

	type slot struct {
		called bool
		items  []T
		err    error
	}
	slots := make([]slot, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		if !src.IsConnected() {
			logger.Debug("%s: skipping %s, not connected", op, src.SourceType())
			agg.Skipped = append(agg.Skipped, src.SourceType())
			continue
		}
		slots[i].called = true

		wg.Add(1)
		go func(i int, src S) {
			defer wg.Done()
			defer func() {
				// Sources registered without middleware may still panic.
				if r := recover(); r != nil {
					slots[i].err = domain.Permanent(fmt.Errorf("panic: %v", r))
				}
			}()
			slots[i].items, slots[i].err = call(ctx, src)
		}(i, src)
	}
	wg.Wait()

	var (
		merged []T
		called int
		misuse error
	)
	for i := range slots {
		s := slots[i]
		if !s.called {
			continue
		}
		called++
		if s.err != nil {
			st := sources[i].SourceType()
			if domain.IsCapabilityMisuse(s.err) && misuse == nil {
				misuse = s.err
			}
			logFailure(op, st, s.err)
			agg.Failed = append(agg.Failed, domain.SourceFailure{SourceType: st, Err: s.err})
			continue
		}
		merged = append(merged, s.items...)
	}

	if misuse != nil {
		return nil, agg, misuse
	}
	if called > 0 && len(agg.Failed) == called {
		errs := make([]error, 0, len(agg.Failed))
		for _, f := range agg.Failed {
			errs = append(errs, f.Err)
		}
		return nil, agg, fmt.Errorf("%s: %w: %w", op, domain.ErrAllSourcesFailed, errors.Join(errs...))
	}
	return merged, agg, nil
}

func logFailure(op string, st domain.SourceType, err error) {
	fields := logger.Fields{"op": op, "source": string(st), "error": err.Error()}
	if domain.IsTransient(err) {
		logger.WithFields(fields).Warn("source contribution dropped")
		return
	}
	logger.WithFields(fields).Error("source contribution dropped")
}

// merge drops invalid entities, sorts newest first with ties broken by
// source type then ID, removes duplicate IDs and applies the global limit.
// The input slice is not modified.
func merge[T any](items []T, e entity[T], limit int) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if !e.valid(&items[i]) {
			logger.Warn("dropping invalid entity from %s (id=%q)", e.source(&items[i]), e.id(&items[i]))
			continue
		}
		out = append(out, items[i])
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := e.at(&out[i]).UTC(), e.at(&out[j]).UTC()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		si, sj := e.source(&out[i]), e.source(&out[j])
		if si != sj {
			return si < sj
		}
		return e.id(&out[i]) < e.id(&out[j])
	})

	seen := make(map[string]struct{}, len(out))
	deduped := out[:0]
	for i := range out {
		id := e.id(&out[i])
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, out[i])
	}

	if limit > 0 && len(deduped) > limit {
		deduped = deduped[:limit]
	}
	return deduped
}

// filterSources keeps the sources wanted by w.
func filterSources[S driven.Source](sources []S, w domain.Window) []S {
	if len(w.SourceTypes) == 0 {
		return sources
	}
	out := make([]S, 0, len(sources))
	for _, src := range sources {
		if w.WantsSource(src.SourceType()) {
			out = append(out, src)
		}
	}
	return out
}

// localMatch is the search fallback for sources without server-side search.
func localMatch[T any](items []T, match func(*T) bool) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if match(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// searchFetchFactor widens the fetch used for local search fallback.
const searchFetchFactor = 2

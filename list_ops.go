// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
)

// TransformCache memoizes `List/map` results per [PersistenceId], so a
// recomputation triggered by one item's change does not re-run f over
// every other unchanged item (§2's "transform caching" optimization).
// The zero value is not usable; use [NewTransformCache].
type TransformCache struct {
	mu      sync.Mutex
	entries map[PersistenceId]cacheEntry
}

type cacheEntry struct {
	input  Value
	output Value
}

// NewTransformCache returns an empty cache. One instance is owned per
// `List/map` call site in the evaluated graph (not shared across call
// sites — two different maps over the same list must not share entries).
func NewTransformCache() *TransformCache {
	return &TransformCache{entries: make(map[PersistenceId]cacheEntry)}
}

// ListMap implements `List/map` (§4.3's list operations, §2's
// optimizations): applies f to every item of l, reusing the prior output
// for any item whose input is structurally unchanged since the last call.
// Cache misses are computed concurrently, bounded to [defaultMapWorkers]
// at a time via [ParallelMap] (SPEC_FULL.md's domain-stack wiring: a
// `List/map` over a large list shouldn't serialize pure per-item work,
// but also shouldn't spawn unbounded goroutines).
//
// Per §4.3.1 and invariant 7 (§8), a body that produces [*Flushed] is not
// an engine error: list elements are not a FLUSH boundary, so ListMap
// returns that [*Flushed] as its result Value, unchanged, for the
// binding boundary to restore. The first Flushed encountered, in list
// order, wins. A flushedOnce flag shared across the batch's workers stops
// any cache miss not already running from calling f once one item has
// flushed — [ParallelMap] itself always runs its full batch to
// completion (its contract guarantees every item a result-or-error), so
// this is an early-skip inside f rather than cancellation of the batch.
func (c *TransformCache) ListMap(ctx context.Context, l *List, f func(Value) (Value, error)) (Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := make(map[PersistenceId]struct{}, l.Len())
	out := make([]ListItem, l.Len())
	var missIdx []int
	for i, item := range l.Items {
		live[item.ID] = struct{}{}
		if prior, ok := c.entries[item.ID]; ok && ValuesEqual(prior.input, item.Value) {
			out[i] = ListItem{ID: item.ID, Value: prior.output}
			continue
		}
		missIdx = append(missIdx, i)
	}

	if len(missIdx) > 0 {
		misses := make([]ListItem, len(missIdx))
		for k, i := range missIdx {
			misses[k] = l.Items[i]
		}
		var flushedOnce atomic.Bool
		results, err := ParallelMap(ctx, defaultMapWorkers, misses, func(item ListItem) (Value, error) {
			if flushedOnce.Load() {
				return nil, nil
			}
			v, err := f(item.Value)
			if err != nil {
				return nil, err
			}
			if _, ok := IsFlushed(v); ok {
				flushedOnce.Store(true)
			}
			return v, nil
		})
		if err != nil {
			return nil, err
		}
		for k, i := range missIdx {
			result := results[k]
			if result == nil {
				// skipped because some other item (at any index) had
				// already flushed; it contributes nothing.
				continue
			}
			if _, ok := IsFlushed(result); ok {
				return result, nil
			}
			c.entries[l.Items[i].ID] = cacheEntry{input: l.Items[i].Value, output: result}
			out[i] = ListItem{ID: l.Items[i].ID, Value: result}
		}
	}

	for id := range c.entries {
		if _, ok := live[id]; !ok {
			delete(c.entries, id)
		}
	}
	return &List{Items: out}, nil
}

// ListRetain implements `List/retain`: keeps items for which pred
// reports true, preserving identity and relative order.
func ListRetain(l *List, pred func(Value) bool) *List {
	out := make([]ListItem, 0, l.Len())
	for _, item := range l.Items {
		if pred(item.Value) {
			out = append(out, item)
		}
	}
	return &List{Items: out}
}

// ListSortBy implements `List/sort_by`: returns a new list with items
// reordered by less, a stable sort so unrelated identical keys keep
// their relative order (identity-preserving diffing depends on this).
func ListSortBy(l *List, less func(a, b Value) bool) *List {
	out := append([]ListItem(nil), l.Items...)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i].Value, out[j].Value)
	})
	return &List{Items: out}
}

// ListEvery implements `List/every`: true iff pred holds for every item
// (vacuously true for an empty list).
func ListEvery(l *List, pred func(Value) bool) Bool {
	for _, item := range l.Items {
		if !pred(item.Value) {
			return false
		}
	}
	return true
}

// ListAny implements `List/any`: true iff pred holds for at least one
// item.
func ListAny(l *List, pred func(Value) bool) Bool {
	for _, item := range l.Items {
		if pred(item.Value) {
			return true
		}
	}
	return false
}

// ListAppend implements `List/append`: appends v, minting its identity
// from producerID combined with idHint (empty hint mints a fresh id).
func ListAppend(l *List, producerID PersistenceId, idHint string, v Value) *List {
	out := append([]ListItem(nil), l.Items...)
	out = append(out, ListItem{ID: producerID.ListItemID(idHint), Value: v})
	return &List{Items: out}
}

// ListFold implements `List/fold`: left-to-right reduction, aborting on
// the first error f returns.
func ListFold(l *List, init Value, f func(acc, item Value) (Value, error)) (Value, error) {
	acc := init
	for _, item := range l.Items {
		var err error
		acc, err = f(acc, item.Value)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// CoalesceStream implements the "coalesce" optimization (§2): when
// several values are already waiting in quick succession (a burst of
// synchronous upstream updates), only the most recent survives — matching
// a UI's "only the latest render matters" discipline. It never delays a
// value that arrives with no contention.
func CoalesceStream(inner Stream) Stream {
	return &streamFunc{
		lifetime: inner.Lifetime(),
		run: func(ctx context.Context, clock *Clock, out chan<- Envelope) {
			in := inner.Open(ctx, clock)
			for {
				env, ok := <-in
				if !ok {
					return
				}
				drain := true
				for drain {
					select {
					case next, ok := <-in:
						if !ok {
							drain = false
							break
						}
						env = next
					default:
						drain = false
					}
				}
				select {
				case out <- env:
				case <-ctx.Done():
					return
				}
			}
		},
	}
}

// DedupStream implements the "per-predicate" and "output" dedup
// optimizations (§2): suppresses a re-emission whose payload is equal
// (per equal) to the immediately preceding one.
func DedupStream(inner Stream, equal func(a, b Value) bool) Stream {
	return &streamFunc{
		lifetime: inner.Lifetime(),
		run: func(ctx context.Context, clock *Clock, out chan<- Envelope) {
			in := inner.Open(ctx, clock)
			var last Value
			hasLast := false
			for {
				select {
				case env, ok := <-in:
					if !ok {
						return
					}
					if hasLast && equal(last, env.Payload) {
						continue
					}
					last, hasLast = env.Payload, true
					select {
					case out <- env:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		},
	}
}

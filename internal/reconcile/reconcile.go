// Package reconcile implements merge-by-identity: applying an edited,
// authoritative collection onto a stored owned collection keyed by a stable
// identity. The same algorithm runs at two granularities — exercise details
// keyed by exercise ID, and sets keyed by set ID.
package reconcile

import "github.com/google/uuid"

// Update pairs an existing item with the incoming item that matched its
// identity. The existing item's storage row survives; its mutable fields are
// overwritten from the incoming one.
type Update[T any] struct {
	Existing T
	Incoming T
}

// Plan is the outcome of diffing an incoming collection against an existing
// one. Creates and Updates preserve incoming order; Deletes preserve
// existing order.
type Plan[T any] struct {
	Creates []T
	Updates []Update[T]
	Deletes []T
}

// Empty reports whether applying the plan would change nothing.
func (p Plan[T]) Empty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Diff computes the merge plan between an existing owned collection and an
// incoming authoritative collection, both keyed by the identity returned by
// key. An incoming item whose key matches an existing item becomes an update;
// one without a match becomes a create. Existing items absent from incoming
// become deletes. Items with a zero identity are always treated as new.
//
// Order is authoritative from the incoming items' own index fields; Diff does
// not infer order from slice position. Callers are expected to re-sequence
// indices to a dense 0..N-1 range before diffing.
func Diff[T any](existing, incoming []T, key func(T) uuid.UUID) Plan[T] {
	byID := make(map[uuid.UUID]int, len(existing))
	for i, e := range existing {
		if id := key(e); id != uuid.Nil {
			byID[id] = i
		}
	}

	var plan Plan[T]
	matched := make(map[uuid.UUID]bool, len(incoming))

	for _, in := range incoming {
		id := key(in)
		if id == uuid.Nil {
			plan.Creates = append(plan.Creates, in)
			continue
		}
		if i, ok := byID[id]; ok && !matched[id] {
			plan.Updates = append(plan.Updates, Update[T]{Existing: existing[i], Incoming: in})
			matched[id] = true
			continue
		}
		plan.Creates = append(plan.Creates, in)
	}

	for _, e := range existing {
		id := key(e)
		if id == uuid.Nil || !matched[id] {
			plan.Deletes = append(plan.Deletes, e)
		}
	}

	return plan
}

// Merge applies the diff in memory and returns the resulting collection in
// incoming order. Matched items are produced by update, which receives the
// existing item and the incoming one and keeps the existing storage identity.
// Unmatched incoming items are produced by create. Existing items absent from
// incoming simply drop out.
func Merge[T any](existing, incoming []T, key func(T) uuid.UUID, update func(existing, incoming T) T, create func(incoming T) T) []T {
	plan := Diff(existing, incoming, key)

	updates := make(map[uuid.UUID]T, len(plan.Updates))
	for _, u := range plan.Updates {
		updates[key(u.Incoming)] = update(u.Existing, u.Incoming)
	}

	out := make([]T, 0, len(incoming))
	for _, in := range incoming {
		if m, ok := updates[key(in)]; ok {
			out = append(out, m)
			delete(updates, key(in))
			continue
		}
		out = append(out, create(in))
	}
	return out
}

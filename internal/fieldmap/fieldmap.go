// Package fieldmap implements the ordered, insertion-stable multimap that
// backs every back-end's Tag type: an id-to-value container where iteration
// order within one id matches insertion order, which is what preserves
// multi-cover ordering across a parse/make round-trip.
package fieldmap

import "iter"

// Entry pairs a field id with its value. The value type V is left generic so
// FLAC/Vorbis (string ids, tagval.Value bodies), MP4 (uint32 ids, Mp4Field
// bodies), and any future back-end share one container implementation.
type Entry[K comparable, V any] struct {
	ID    K
	Value V
}

// Map is an ordered multimap from K to V. The zero value is ready to use.
type Map[K comparable, V any] struct {
	entries []Entry[K, V]
}

// New returns an empty Map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{}
}

// Insert appends (id, value) to the map, preserving prior entries for the
// same id (a map may hold several values under one id, e.g. multiple
// covers).
func (m *Map[K, V]) Insert(id K, value V) {
	m.entries = append(m.entries, Entry[K, V]{ID: id, Value: value})
}

// EraseAll removes every entry with the given id and returns how many were
// removed.
func (m *Map[K, V]) EraseAll(id K) int {
	out := m.entries[:0]
	removed := 0
	for _, e := range m.entries {
		if e.ID == id {
			removed++
			continue
		}
		out = append(out, e)
	}
	m.entries = out
	return removed
}

// Count returns the number of entries stored under id.
func (m *Map[K, V]) Count(id K) int {
	n := 0
	for _, e := range m.entries {
		if e.ID == id {
			n++
		}
	}
	return n
}

// Values iterates the values stored under id, in insertion order.
func (m *Map[K, V]) Values(id K) iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, e := range m.entries {
			if e.ID == id {
				if !yield(e.Value) {
					return
				}
			}
		}
	}
}

// First returns the first value stored under id, if any.
func (m *Map[K, V]) First(id K) (V, bool) {
	for _, e := range m.entries {
		if e.ID == id {
			return e.Value, true
		}
	}
	var zero V
	return zero, false
}

// Has reports whether any entry is stored under id.
func (m *Map[K, V]) Has(id K) bool {
	for _, e := range m.entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// SetOne replaces all entries under id with a single (id, value) entry. This
// is the primitive behind every back-end's single-valued known-field
// setters (Title, Album, Year, ...); multi-valued fields (covers) use
// Insert directly to preserve insertion order across several values.
func (m *Map[K, V]) SetOne(id K, value V) {
	m.EraseAll(id)
	m.Insert(id, value)
}

// All iterates every (id, value) pair in insertion order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, e := range m.entries {
			if !yield(e.ID, e.Value) {
				return
			}
		}
	}
}

// Len returns the total number of entries across all ids.
func (m *Map[K, V]) Len() int { return len(m.entries) }

// IsEmpty reports whether the map holds no entries.
func (m *Map[K, V]) IsEmpty() bool { return len(m.entries) == 0 }

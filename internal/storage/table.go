// Package storage holds the memory-resident tables behind the admin surface.
// Contents reset when the process restarts.
package storage

import (
	"errors"
	"slices"
	"sync"
)

// ErrNotFound is returned when no row has the requested id.
var ErrNotFound = errors.New("record not found")

// Table is a concurrency-safe map of rows keyed by sequential ids starting at 1.
type Table[T any] struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]T
	order  []int64
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{nextID: 1, rows: make(map[int64]T)}
}

// Insert assigns the next id, lets build stamp it into the row, stores the
// result and returns it.
func (t *Table[T]) Insert(build func(id int64) T) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	row := build(id)
	t.rows[id] = row
	t.order = append(t.order, id)
	return row
}

// Get returns the row stored under id.
func (t *Table[T]) Get(id int64) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return row, nil
}

// Update replaces the row under id with fn's result, under the write lock.
func (t *Table[T]) Update(id int64, fn func(T) T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	row = fn(row)
	t.rows[id] = row
	return row, nil
}

// List returns every row, newest first.
func (t *Table[T]) List() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.order))
	for _, id := range slices.Backward(t.order) {
		out = append(out, t.rows[id])
	}
	return out
}

// Filter returns the rows matching keep, oldest first.
func (t *Table[T]) Filter(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []T
	for _, id := range t.order {
		if row := t.rows[id]; keep(row) {
			out = append(out, row)
		}
	}
	return out
}

// Find returns the first row, oldest first, matching match.
func (t *Table[T]) Find(match func(T) bool) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, id := range t.order {
		if row := t.rows[id]; match(row) {
			return row, true
		}
	}
	var zero T
	return zero, false
}

// Len reports the number of rows.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Package cache provides the content-addressed enhancement cache.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Store is a TTL cache bounded by capacity. When full it evicts the oldest inserted entry;
// reads do not change eviction order, overwriting a key re-inserts it as the newest.
type Store[K comparable, V any] struct {
	entries  map[K]*entry[K, V]
	order    *list.List // front = newest
	capacity int
	ttl      time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

type entry[K comparable, V any] struct {
	createdAt time.Time
	element   *list.Element
	key       K
	value     V
}

// NewStore creates a store. Non-positive arguments select capacity 100 and a one hour TTL.
func NewStore[K comparable, V any](capacity int, ttl time.Duration) *Store[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Store[K, V]{
		entries:  make(map[K]*entry[K, V]),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the value for key if present and younger than the TTL.
// Expired entries are removed on lookup.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	if s.expired(e) {
		s.remove(e)
		var zero V
		return zero, false
	}

	return e.value, true
}

// Set inserts or overwrites key.
func (s *Store[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.remove(e)
	}

	for len(s.entries) >= s.capacity {
		s.evictOldest()
	}

	e := &entry[K, V]{
		key:       key,
		value:     value,
		createdAt: s.now(),
	}
	e.element = s.order.PushFront(e)
	s.entries[key] = e
}

// Remove deletes key and reports whether it was present.
func (s *Store[K, V]) Remove(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.remove(e)
		return true
	}
	return false
}

// Len returns the number of stored entries, expired ones included until they are touched.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Capacity returns the maximum number of entries.
func (s *Store[K, V]) Capacity() int {
	return s.capacity
}

// Clear removes every entry.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[K]*entry[K, V])
	s.order.Init()
}

// CleanupExpired removes all expired entries and returns how many were dropped.
func (s *Store[K, V]) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for el := s.order.Back(); el != nil; {
		prev := el.Prev()
		if e, ok := el.Value.(*entry[K, V]); ok && s.expired(e) {
			s.remove(e)
			removed++
		}
		el = prev
	}
	return removed
}

// Must be called with lock held.
func (s *Store[K, V]) expired(e *entry[K, V]) bool {
	return s.now().Sub(e.createdAt) >= s.ttl
}

// Must be called with lock held.
func (s *Store[K, V]) evictOldest() {
	oldest := s.order.Back()
	if oldest == nil {
		return
	}
	if e, ok := oldest.Value.(*entry[K, V]); ok {
		s.remove(e)
	}
}

// Must be called with lock held.
func (s *Store[K, V]) remove(e *entry[K, V]) {
	s.order.Remove(e.element)
	delete(s.entries, e.key)
}

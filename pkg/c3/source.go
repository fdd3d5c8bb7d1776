package c3

import (
	"sync"
	"sync/atomic"
)

// ParentSource resolves the accessor that yields a node's ordered parents.
// Resolve reports false when no accessor exists for the node; the Linearizer
// turns that into a [ConfigError].
//
// Accessors must return the same list for the same node for the duration of
// one [Merge] call.
type ParentSource[N comparable] interface {
	Resolve(node N) (ParentFunc[N], bool)
}

// ParentFunc returns the ordered immediate parents of a node.
type ParentFunc[N comparable] func(N) []N

// Resolve implements [ParentSource]. A nil ParentFunc resolves nothing.
func (f ParentFunc[N]) Resolve(N) (ParentFunc[N], bool) {
	return f, f != nil
}

// Registry resolves parent accessors by node kind. It replaces dispatch on a
// named accessor: a node whose kind has no registered accessor fails the
// linearization with a [ConfigError].
//
// Registry is not safe for concurrent registration; register everything
// before the first [Merge].
type Registry[N comparable] struct {
	kindOf    func(N) string
	accessors map[string]ParentFunc[N]
}

// NewRegistry creates an empty registry. kindOf classifies nodes; it must
// not be nil.
func NewRegistry[N comparable](kindOf func(N) string) *Registry[N] {
	return &Registry[N]{
		kindOf:    kindOf,
		accessors: make(map[string]ParentFunc[N]),
	}
}

// Register sets the accessor for kind, replacing any previous one.
// Registering a nil accessor removes the kind.
func (r *Registry[N]) Register(kind string, fn ParentFunc[N]) {
	if fn == nil {
		delete(r.accessors, kind)
		return
	}
	r.accessors[kind] = fn
}

// Resolve implements [ParentSource].
func (r *Registry[N]) Resolve(node N) (ParentFunc[N], bool) {
	fn, ok := r.accessors[r.kindOf(node)]
	return fn, ok
}

// SharedSource memoizes parent lookups of an underlying source across
// [Merge] calls. Only parent lists are shared; linearizations are always
// recomputed per call.
//
// The memo assumes the underlying hierarchy does not change. Call
// [SharedSource.Invalidate] or [SharedSource.Reset] after mutating it.
// SharedSource is safe for concurrent use.
type SharedSource[N comparable] struct {
	src ParentSource[N]

	mu      sync.RWMutex
	parents map[N][]N

	hits   atomic.Int64
	misses atomic.Int64
}

// NewSharedSource wraps src with a synchronized parent memo.
func NewSharedSource[N comparable](src ParentSource[N]) *SharedSource[N] {
	return &SharedSource[N]{
		src:     src,
		parents: make(map[N][]N),
	}
}

// Resolve implements [ParentSource]. Unresolvable nodes are not memoized.
func (s *SharedSource[N]) Resolve(node N) (ParentFunc[N], bool) {
	s.mu.RLock()
	ps, ok := s.parents[node]
	s.mu.RUnlock()
	if ok {
		s.hits.Add(1)
		return func(N) []N { return ps }, true
	}

	fn, ok := s.src.Resolve(node)
	if !ok {
		return nil, false
	}
	return func(n N) []N {
		ps := fn(n)
		s.mu.Lock()
		defer s.mu.Unlock()
		if cached, ok := s.parents[n]; ok {
			return cached
		}
		s.misses.Add(1)
		s.parents[n] = ps
		return ps
	}, true
}

// Invalidate drops the memoized parents of the given nodes.
func (s *SharedSource[N]) Invalidate(nodes ...N) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range nodes {
		delete(s.parents, n)
	}
}

// Reset drops every memoized entry and zeroes the counters.
func (s *SharedSource[N]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parents = make(map[N][]N)
	s.hits.Store(0)
	s.misses.Store(0)
}

// SharedStats summarizes memo usage.
type SharedStats struct {
	Entries int
	Hits    int
	Misses  int
}

// Stats returns a snapshot of memo usage.
func (s *SharedSource[N]) Stats() SharedStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SharedStats{
		Entries: len(s.parents),
		Hits:    int(s.hits.Load()),
		Misses:  int(s.misses.Load()),
	}
}

// Package store provides an in-memory graph.Store whose listings come back in key order,
// so every graph algorithm run on top of it is reproducible.
package store

import (
	"cmp"
	"slices"
	"sync"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
)

// Store is a graph.Store that can also edit vertex properties in place.
type Store[K cmp.Ordered, T any] interface {
	graph.Store[K, T]
	UpdateVertex(k K, options ...func(*graph.VertexProperties)) error
}

// MemoryStore keeps vertices and edges in maps and sorts them on every listing.
type MemoryStore[K cmp.Ordered, T any] struct {
	mu         sync.RWMutex
	vertices   map[K]T
	properties map[K]*graph.VertexProperties
	out        map[K]map[K]graph.Edge[K] // source -> target
	in         map[K]map[K]graph.Edge[K] // target -> source
}

// NewMemoryStore returns an empty store.
func NewMemoryStore[K cmp.Ordered, T any]() *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		vertices:   make(map[K]T),
		properties: make(map[K]*graph.VertexProperties),
		out:        make(map[K]map[K]graph.Edge[K]),
		in:         make(map[K]map[K]graph.Edge[K]),
	}
}

func (s *MemoryStore[K, T]) AddVertex(k K, t T, p graph.VertexProperties) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vertices[k]; ok {
		return graph.ErrVertexAlreadyExists
	}

	if p.Attributes == nil {
		p.Attributes = make(map[string]string)
	}

	s.vertices[k] = t
	s.properties[k] = &p

	return nil
}

// ListVertices returns the vertex hashes in ascending order.
func (s *MemoryStore[K, T]) ListVertices() ([]K, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]K, 0, len(s.vertices))
	for k := range s.vertices {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys, nil
}

func (s *MemoryStore[K, T]) VertexCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.vertices), nil
}

func (s *MemoryStore[K, T]) Vertex(k K) (T, graph.VertexProperties, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vertices[k]
	if !ok {
		return v, graph.VertexProperties{}, graph.ErrVertexNotFound
	}

	return v, *s.properties[k], nil
}

// UpdateVertex applies options to the stored properties of k.
func (s *MemoryStore[K, T]) UpdateVertex(k K, options ...func(*graph.VertexProperties)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.properties[k]
	if !ok {
		return errors.Wrapf(graph.ErrVertexNotFound, "vertex %v", k)
	}

	for _, opt := range options {
		opt(p)
	}

	return nil
}

func (s *MemoryStore[K, T]) RemoveVertex(k K) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vertices[k]; !ok {
		return graph.ErrVertexNotFound
	}

	if len(s.in[k]) > 0 || len(s.out[k]) > 0 {
		return graph.ErrVertexHasEdges
	}

	delete(s.in, k)
	delete(s.out, k)
	delete(s.vertices, k)
	delete(s.properties, k)

	return nil
}

func (s *MemoryStore[K, T]) AddEdge(source, target K, edge graph.Edge[K]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.out[source][target]; ok {
		return graph.ErrEdgeAlreadyExists
	}

	if s.out[source] == nil {
		s.out[source] = make(map[K]graph.Edge[K])
	}

	if s.in[target] == nil {
		s.in[target] = make(map[K]graph.Edge[K])
	}

	s.out[source][target] = edge
	s.in[target][source] = edge

	return nil
}

func (s *MemoryStore[K, T]) UpdateEdge(source, target K, edge graph.Edge[K]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.out[source][target]; !ok {
		return graph.ErrEdgeNotFound
	}

	s.out[source][target] = edge
	s.in[target][source] = edge

	return nil
}

func (s *MemoryStore[K, T]) RemoveEdge(source, target K) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.out[source][target]; !ok {
		return graph.ErrEdgeNotFound
	}

	delete(s.out[source], target)
	delete(s.in[target], source)

	return nil
}

func (s *MemoryStore[K, T]) Edge(source, target K) (graph.Edge[K], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edge, ok := s.out[source][target]
	if !ok {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}

	return edge, nil
}

// ListEdges returns the edges ordered by source, then target.
func (s *MemoryStore[K, T]) ListEdges() ([]graph.Edge[K], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := make([]graph.Edge[K], 0)
	for _, targets := range s.out {
		for _, edge := range targets {
			edges = append(edges, edge)
		}
	}

	slices.SortFunc(edges, func(a, b graph.Edge[K]) int {
		if c := cmp.Compare(a.Source, b.Source); c != 0 {
			return c
		}

		return cmp.Compare(a.Target, b.Target)
	})

	return edges, nil
}

// CreatesCycle reports whether an edge source -> target would close a cycle. The graph
// calls it instead of its generic search when cycle prevention is on.
func (s *MemoryStore[K, T]) CreatesCycle(source, target K) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.vertices[source]; !ok {
		return false, errors.Wrapf(graph.ErrVertexNotFound, "source %v", source)
	}

	if _, ok := s.vertices[target]; !ok {
		return false, errors.Wrapf(graph.ErrVertexNotFound, "target %v", target)
	}

	if source == target {
		return true, nil
	}

	// walk the ancestors of source; finding target means target already reaches source
	stack := []K{source}
	seen := make(map[K]struct{})

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur == target {
			return true, nil
		}

		if _, ok := seen[cur]; ok {
			continue
		}

		seen[cur] = struct{}{}

		for parent := range s.in[cur] {
			stack = append(stack, parent)
		}
	}

	return false, nil
}

var _ Store[int, int] = (*MemoryStore[int, int])(nil)

package store_test

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-autotrace/internal/store"
)

func TestListVerticesSorted(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore[int, int]()
	for _, k := range []int{5, 1, 4, 2, 3} {
		require.NoError(t, s.AddVertex(k, k*10, graph.VertexProperties{}))
	}

	got, err := s.ListVertices()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)

	count, err := s.VertexCount()
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	err = s.AddVertex(3, 0, graph.VertexProperties{})
	assert.ErrorIs(t, err, graph.ErrVertexAlreadyExists)
}

func TestEdges(t *testing.T) {
	t.Parallel()

	g := graph.NewWithStore(graph.StringHash, store.NewMemoryStore[string, string](), graph.Directed())
	for _, v := range []string{"c", "a", "b"} {
		require.NoError(t, g.AddVertex(v))
	}

	require.NoError(t, g.AddEdge("b", "c"))
	require.NoError(t, g.AddEdge("a", "c"))
	require.NoError(t, g.AddEdge("a", "b"))
	assert.ErrorIs(t, g.AddEdge("a", "b"), graph.ErrEdgeAlreadyExists)

	edges, err := g.Edges()
	require.NoError(t, err)

	got := make([][2]string, 0, len(edges))
	for _, e := range edges {
		got = append(got, [2]string{e.Source, e.Target})
	}

	assert.Equal(t, [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}}, got)

	require.NoError(t, g.UpdateEdge("a", "b", graph.EdgeAttribute("color", "red")))
	e, err := g.Edge("a", "b")
	require.NoError(t, err)
	assert.Equal(t, "red", e.Properties.Attributes["color"])

	assert.ErrorIs(t, g.RemoveVertex("a"), graph.ErrVertexHasEdges)
	require.NoError(t, g.RemoveEdge("a", "b"))
	require.NoError(t, g.RemoveEdge("a", "c"))
	require.NoError(t, g.RemoveVertex("a"))
}

func TestUpdateVertex(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore[string, string]()
	require.NoError(t, s.AddVertex("fit", "fit", graph.VertexProperties{}))
	require.NoError(t, s.UpdateVertex("fit", graph.VertexAttribute("xlabel", "2ms")))

	_, p, err := s.Vertex("fit")
	require.NoError(t, err)
	assert.Equal(t, "2ms", p.Attributes["xlabel"])

	assert.ErrorIs(t, s.UpdateVertex("missing"), graph.ErrVertexNotFound)
}

func TestCreatesCycle(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore[int, int]()
	g := graph.NewWithStore(graph.IntHash, graph.Store[int, int](s), graph.Directed(), graph.PreventCycles())

	for i := range 4 {
		require.NoError(t, g.AddVertex(i))
	}

	require.NoError(t, g.AddEdge(0, 1))
	require.NoError(t, g.AddEdge(1, 2))
	require.NoError(t, g.AddEdge(0, 3))

	tcs := map[string]struct {
		source, target int
		want           bool
	}{
		"back edge":  {source: 2, target: 0, want: true},
		"self loop":  {source: 1, target: 1, want: true},
		"cross edge": {source: 3, target: 2, want: false},
		"forward":    {source: 0, target: 2, want: false},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := s.CreatesCycle(tc.source, tc.target)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	assert.ErrorIs(t, g.AddEdge(2, 0), graph.ErrEdgeCreatesCycle)

	_, err := s.CreatesCycle(0, 42)
	assert.ErrorIs(t, err, graph.ErrVertexNotFound)
}

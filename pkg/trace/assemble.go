package trace

import (
	"slices"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/go-autotrace/internal/store"
	"github.com/askiada/go-autotrace/pkg/vector"
)

type regionKey struct {
	layer  int
	region int
}

// assemble orders the fitted paths and wraps them into a Vector. Paths are vertices of a
// containment graph whose edges run from a container to what it directly contains: a
// region's outer boundary to its holes, and a hole to the regions lying in it, whatever
// their colour. Paths come out container first, and otherwise in discovery order.
func (t *tracer) assemble(results []fitted) (*vector.Vector, error) {
	slices.SortFunc(results, func(a, b fitted) int {
		switch {
		case a.key.less(b.key):
			return -1
		case b.key.less(a.key):
			return 1
		default:
			return 0
		}
	})

	g := graph.NewWithStore(graph.IntHash, graph.Store[int, int](store.NewMemoryStore[int, int]()),
		graph.Directed(), graph.PreventCycles())

	for i := range results {
		err := g.AddVertex(i)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add path %d", i)
		}
	}

	if !t.opts.Centerline {
		err := nest(g, results)
		if err != nil {
			return nil, err
		}
	}

	order, err := containersFirst(g)
	if err != nil {
		return nil, err
	}

	vec := &vector.Vector{
		Paths:             make([]vector.Path, 0, len(order)),
		Width:             t.bm.Width,
		Height:            t.bm.Height,
		Centerline:        t.opts.Centerline,
		PreserveWidth:     t.opts.PreserveWidth,
		WidthWeightFactor: t.opts.WidthWeightFactor,
	}

	if t.opts.BackgroundColor != nil {
		bg := *t.opts.BackgroundColor
		vec.BackgroundColor = &bg
	}

	for _, i := range order {
		vec.Paths = append(vec.Paths, results[i].path)
	}

	return vec, nil
}

// nest adds the containment edges between filled outlines.
func nest(g graph.Graph[int, int], results []fitted) error {
	byKey := make(map[pathKey]int, len(results))
	outers := make(map[regionKey]int)
	layers := []*layerInfo{}

	for i, r := range results {
		byKey[r.key] = i

		if !r.outline.Hole {
			outers[regionKey{r.key.layer, r.outline.Region}] = i
		}

		if r.layer != nil && (len(layers) == 0 || layers[len(layers)-1] != r.layer) {
			layers = append(layers, r.layer)
		}
	}

	link := func(from, to int) error {
		err := g.AddEdge(from, to)
		switch {
		case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
			return nil
		case errors.Is(err, graph.ErrEdgeCreatesCycle):
			Logger().Debug("containment cycle ignored", "from", from, "to", to)

			return nil
		default:
			return errors.Wrapf(err, "unable to nest path %d in %d", to, from)
		}
	}

	for i, r := range results {
		if r.outline.Hole {
			outer, ok := outers[regionKey{r.key.layer, r.outline.Region}]
			if ok {
				err := link(outer, i)
				if err != nil {
					return err
				}
			}

			continue
		}

		for _, l := range layers {
			at := r.outline.Inside
			if l.index == r.key.layer {
				// the region itself is foreground here, look just outside it
				at = r.outline.Outside
				if !l.mask.In(at.X, at.Y) {
					continue
				}
			}

			seq, ok := l.holeOf[l.background.At(at.X, at.Y)]
			if !ok {
				continue
			}

			err := link(byKey[pathKey{l.index, seq}], i)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// containersFirst returns the vertices in topological order, always taking the smallest
// ready vertex next so that unrelated paths keep their discovery order.
func containersFirst(g graph.Graph[int, int]) ([]int, error) {
	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get containment edges")
	}

	predecessors, err := g.PredecessorMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get containers")
	}

	pending := make(map[int]int, len(predecessors))
	ready := []int{}

	for v, preds := range predecessors {
		pending[v] = len(preds)
		if len(preds) == 0 {
			ready = append(ready, v)
		}
	}

	slices.Sort(ready)

	order := make([]int, 0, len(predecessors))
	for len(ready) > 0 {
		v := ready[0]
		ready = ready[1:]
		order = append(order, v)

		for w := range adjacency[v] {
			pending[w]--
			if pending[w] == 0 {
				at, _ := slices.BinarySearch(ready, w)
				ready = slices.Insert(ready, at, w)
			}
		}
	}

	if len(order) != len(predecessors) {
		return nil, errors.New("containment graph has a cycle")
	}

	return order, nil
}

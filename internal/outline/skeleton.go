package outline

import (
	"image"

	"honnef.co/go/curve"

	"github.com/askiada/go-autotrace/internal/raster"
	"github.com/askiada/go-autotrace/internal/thin"
)

type link struct {
	a, b int
}

func newLink(a, b int) link {
	if a > b {
		a, b = b, a
	}

	return link{a, b}
}

type walker struct {
	sk     *thin.Skeleton
	m      *raster.Mask
	labels *raster.Labels
	used   map[link]bool
}

// TraceSkeleton walks the pixel centres of a skeleton. Walks start at end points, then at
// the branches of junctions, then at the top-most, left-most pixel of each remaining loop.
// Isolated pixels become one-point outlines. Edge neighbours are preferred over diagonal
// ones when a walk can go either way.
func TraceSkeleton(sk *thin.Skeleton) []Outline {
	w := &walker{
		sk:     sk,
		m:      sk.Mask,
		labels: raster.Label(sk.Mask, true, raster.Eight),
		used:   make(map[link]bool),
	}

	var outlines []Outline
	for y := range w.m.Height {
		for x := range w.m.Width {
			if !w.m.Get(x, y) {
				continue
			}
			switch len(w.adjacent(image.Pt(x, y))) {
			case 0:
				outlines = append(outlines, w.outline([]image.Point{{x, y}}, false))
			case 1:
				if o, ok := w.walk(image.Pt(x, y), false); ok {
					outlines = append(outlines, o)
				}
			}
		}
	}

	for y := range w.m.Height {
		for x := range w.m.Width {
			if !w.m.Get(x, y) || len(w.adjacent(image.Pt(x, y))) < 3 {
				continue
			}
			for {
				o, ok := w.walk(image.Pt(x, y), false)
				if !ok {
					break
				}
				outlines = append(outlines, o)
			}
		}
	}

	for y := range w.m.Height {
		for x := range w.m.Width {
			if !w.m.Get(x, y) || len(w.adjacent(image.Pt(x, y))) != 2 {
				continue
			}
			if o, ok := w.walk(image.Pt(x, y), true); ok {
				outlines = append(outlines, o)
			}
		}
	}

	return outlines
}

// adjacent lists the skeleton pixels linked to p, edge neighbours first. A diagonal
// neighbour is linked only when no edge neighbour of p already touches it, so staircases
// and junction corners do not grow spurious links.
func (w *walker) adjacent(p image.Point) []image.Point {
	out := make([]image.Point, 0, 8)
	for i, o := range raster.Offsets8 {
		q := p.Add(o)
		if !w.m.Get(q.X, q.Y) {
			continue
		}
		if i >= 4 && (w.m.Get(p.X+o.X, p.Y) || w.m.Get(p.X, p.Y+o.Y)) {
			continue
		}
		out = append(out, q)
	}

	return out
}

// step returns the first pixel linked to p through an unused link.
func (w *walker) step(p image.Point) (image.Point, bool) {
	for _, q := range w.adjacent(p) {
		if !w.used[newLink(w.m.Index(p.X, p.Y), w.m.Index(q.X, q.Y))] {
			return q, true
		}
	}

	return image.Point{}, false
}

// walk follows unused links from start until it reaches an end point, a junction, a pixel
// with no unused link left or, for loops, start again.
func (w *walker) walk(start image.Point, loop bool) (Outline, bool) {
	cur, ok := w.step(start)
	if !ok {
		return Outline{}, false
	}

	pts := []image.Point{start}
	prev := start
	for {
		w.used[newLink(w.m.Index(prev.X, prev.Y), w.m.Index(cur.X, cur.Y))] = true
		if loop && cur == start {
			return w.outline(pts, true), true
		}
		pts = append(pts, cur)

		if !loop && len(w.adjacent(cur)) != 2 {
			break
		}

		nxt, ok := w.step(cur)
		if !ok {
			break
		}
		prev, cur = cur, nxt
	}

	return w.outline(pts, false), true
}

func (w *walker) outline(pixels []image.Point, closed bool) Outline {
	o := Outline{
		Points: make([]curve.Point, len(pixels)),
		Closed: closed,
		Region: w.labels.At(pixels[0].X, pixels[0].Y),
		Inside: pixels[0],
	}
	if w.sk.Width != nil {
		o.Widths = make([]float64, len(pixels))
	}

	for i, p := range pixels {
		o.Points[i] = curve.Pt(float64(p.X)+0.5, float64(p.Y)+0.5)
		if o.Widths != nil {
			o.Widths[i] = w.sk.WidthAt(p.X, p.Y)
		}
	}

	if closed {
		o.Clockwise = shoelace(o.Points) > 0
	}

	return o
}

// Package outline turns layer masks into ordered point sequences: pixel-edge loops around
// filled regions, or walks along the pixels of a skeleton.
package outline

import (
	"cmp"
	"image"
	"slices"

	"honnef.co/go/curve"

	"github.com/askiada/go-autotrace/internal/raster"
)

// Outline is an ordered sequence of points in image space.
type Outline struct {
	Points []curve.Point
	// Widths holds the stroke width at every point of a skeleton walk, nil otherwise.
	Widths []float64
	Closed bool
	// Clockwise is set for loops whose signed area is positive with y pointing down.
	Clockwise bool
	// Hole is set for the inner boundaries of a region.
	Hole bool
	// Region is the 8-connected component of the layer the outline belongs to.
	Region int
	// Inside is a foreground pixel next to the outline, Outside a background pixel next to it.
	// Outside may lie beyond the image border.
	Inside  image.Point
	Outside image.Point
}

// Len returns the number of points.
func (o *Outline) Len() int {
	return len(o.Points)
}

// side names the pixel side a boundary edge runs along.
type side int

const (
	top side = iota
	right
	bottom
	left
)

// start returns the vertex a directed edge leaves from. The foreground pixel is always on
// the right of the edge.
func (s side) start(x, y int) curve.Point {
	switch s {
	case top:
		return curve.Pt(float64(x), float64(y))
	case right:
		return curve.Pt(float64(x+1), float64(y))
	case bottom:
		return curve.Pt(float64(x+1), float64(y+1))
	default:
		return curve.Pt(float64(x), float64(y+1))
	}
}

type edge struct {
	x, y int
	side side
}

// next returns the edge that follows e. At a vertex shared by two diagonal foreground
// pixels the left turn wins, which keeps the diagonal pixels in one region.
func next(m *raster.Mask, e edge) edge {
	x, y := e.x, e.y

	switch e.side {
	case top:
		if m.Get(x+1, y-1) {
			return edge{x + 1, y - 1, left}
		}
		if m.Get(x+1, y) {
			return edge{x + 1, y, top}
		}

		return edge{x, y, right}
	case right:
		if m.Get(x+1, y+1) {
			return edge{x + 1, y + 1, top}
		}
		if m.Get(x, y+1) {
			return edge{x, y + 1, right}
		}

		return edge{x, y, bottom}
	case bottom:
		if m.Get(x-1, y+1) {
			return edge{x - 1, y + 1, right}
		}
		if m.Get(x-1, y) {
			return edge{x - 1, y, bottom}
		}

		return edge{x, y, left}
	default:
		if m.Get(x-1, y-1) {
			return edge{x - 1, y - 1, bottom}
		}
		if m.Get(x, y-1) {
			return edge{x, y - 1, left}
		}

		return edge{x, y, top}
	}
}

// Trace follows the pixel-edge boundaries of every region of m. Outer boundaries run
// clockwise and holes counterclockwise, both starting at their top-most, left-most vertex.
// Regions come in row-major discovery order, each one's outer loop ahead of its holes.
func Trace(m *raster.Mask) []Outline {
	labels := raster.Label(m, true, raster.Eight)
	visited := make([]bool, m.Width*m.Height*4)
	seen := func(e edge) *bool {
		return &visited[(e.y*m.Width+e.x)*4+int(e.side)]
	}

	var outlines []Outline
	for y := range m.Height {
		for x := range m.Width {
			if !m.Get(x, y) || m.Get(x, y-1) {
				continue
			}

			first := edge{x, y, top}
			if *seen(first) {
				continue
			}

			var pts []curve.Point
			for e := first; ; {
				*seen(e) = true
				pts = append(pts, e.side.start(e.x, e.y))
				e = next(m, e)
				if e == first {
					break
				}
			}

			area := shoelace(pts)
			outlines = append(outlines, Outline{
				Points:    rotateTopLeft(pts),
				Closed:    true,
				Clockwise: area > 0,
				Hole:      area < 0,
				Region:    labels.At(x, y),
				Inside:    image.Pt(x, y),
				Outside:   image.Pt(x, y-1),
			})
		}
	}

	// Discovery order already puts every outer loop before its holes; sorting by region
	// groups each region's holes right behind it.
	slices.SortStableFunc(outlines, func(a, b Outline) int {
		if c := cmp.Compare(a.Region, b.Region); c != 0 {
			return c
		}

		return cmp.Compare(btoi(a.Hole), btoi(b.Hole))
	})

	return outlines
}

// shoelace returns the signed area of a closed polygon; positive means clockwise in a
// y-down frame.
func shoelace(pts []curve.Point) float64 {
	var a float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		a += p.X*q.Y - q.X*p.Y
	}

	return a / 2
}

func rotateTopLeft(pts []curve.Point) []curve.Point {
	best := 0
	for i, p := range pts {
		if p.Y < pts[best].Y || (p.Y == pts[best].Y && p.X < pts[best].X) {
			best = i
		}
	}

	if best == 0 {
		return pts
	}

	return append(slices.Clone(pts[best:]), pts[:best]...)
}

func btoi(b bool) int {
	if b {
		return 1
	}

	return 0
}

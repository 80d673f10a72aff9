// Package thin reduces layer masks to one pixel wide skeletons for centerline tracing.
package thin

import (
	"image"

	"github.com/askiada/go-autotrace/internal/raster"
)

// Skeleton is a thinned mask. Width is indexed like the mask and holds the local stroke
// width of every skeleton pixel, it is nil unless widths were requested.
type Skeleton struct {
	Mask  *raster.Mask
	Width []float64
}

// WidthAt returns the stroke width at (x, y), 0 when widths were not computed.
func (s *Skeleton) WidthAt(x, y int) float64 {
	if s.Width == nil || !s.Mask.In(x, y) {
		return 0
	}

	return s.Width[s.Mask.Index(x, y)]
}

// borders are the directions peeled in every cycle: north, south, east, west.
var borders = [4]image.Point{{0, -1}, {0, 1}, {1, 0}, {-1, 0}}

// ring lists the 8 neighbours in clockwise order starting north.
var ring = [8]image.Point{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}

// Thin peels border pixels until only a skeleton is left. A pixel is removed only when it
// is simple, so the number of components and holes never changes, and never when it is
// isolated or ends a stroke. The skeleton is one pixel wide except where no pixel is simple:
// a 2x2 block whose four corners each carry a diagonal arm keeps all four pixels.
func Thin(m *raster.Mask, preserveWidth bool) *Skeleton {
	sk := m.Clone()
	candidates := make([]image.Point, 0, 64)

	for changed := true; changed; {
		changed = false

		for _, dir := range borders {
			candidates = candidates[:0]
			for y := range sk.Height {
				for x := range sk.Width {
					if sk.Get(x, y) && !sk.Get(x+dir.X, y+dir.Y) {
						candidates = append(candidates, image.Pt(x, y))
					}
				}
			}

			for _, p := range candidates {
				if deletable(sk, p.X, p.Y) {
					sk.Set(p.X, p.Y, false)
					changed = true
				}
			}
		}
	}

	out := &Skeleton{Mask: sk}
	if preserveWidth {
		dist := chessboard(m)
		out.Width = make([]float64, len(dist))
		for i, d := range dist {
			if d > 0 && sk.Get(i%sk.Width, i/sk.Width) {
				out.Width[i] = float64(2*d - 1)
			}
		}
	}

	return out
}

func deletable(m *raster.Mask, x, y int) bool {
	var fg [8]bool
	n := 0
	for i, o := range ring {
		fg[i] = m.Get(x+o.X, y+o.Y)
		if fg[i] {
			n++
		}
	}

	if n <= 1 {
		return false
	}

	return simple(fg)
}

// simple reports whether the neighbourhood has exactly one 8-connected foreground component
// and exactly one 4-connected background component touching an edge neighbour.
func simple(fg [8]bool) bool {
	var seen [8]bool

	fgComponents := 0
	for i := range ring {
		if !fg[i] || seen[i] {
			continue
		}
		fgComponents++
		flood(fg, &seen, i, true)
	}

	bgComponents := 0
	for i := 0; i < len(ring); i += 2 {
		if fg[i] || seen[i] {
			continue
		}
		bgComponents++
		flood(fg, &seen, i, false)
	}

	return fgComponents == 1 && bgComponents == 1
}

// flood marks the ring cells reachable from start that share its value. Foreground cells
// connect through any touching neighbour, background cells only through a shared side.
func flood(fg [8]bool, seen *[8]bool, start int, value bool) {
	stack := []int{start}
	seen[start] = true

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for j := range ring {
			if seen[j] || fg[j] != value {
				continue
			}
			d := ring[i].Sub(ring[j])
			adx, ady := abs(d.X), abs(d.Y)
			if adx > 1 || ady > 1 {
				continue
			}
			if !value && adx+ady != 1 {
				continue
			}
			seen[j] = true
			stack = append(stack, j)
		}
	}
}

// chessboard returns the chessboard distance of every set pixel to the nearest unset pixel
// or the border of the image. Unset pixels get 0.
func chessboard(m *raster.Mask) []int {
	d := make([]int, m.Width*m.Height)
	at := func(x, y int) int {
		if !m.In(x, y) {
			return 0
		}

		return d[m.Index(x, y)]
	}

	for y := range m.Height {
		for x := range m.Width {
			if !m.Get(x, y) {
				continue
			}
			d[m.Index(x, y)] = 1 + min(at(x-1, y), at(x-1, y-1), at(x, y-1), at(x+1, y-1))
		}
	}

	for y := m.Height - 1; y >= 0; y-- {
		for x := m.Width - 1; x >= 0; x-- {
			if !m.Get(x, y) {
				continue
			}
			i := m.Index(x, y)
			d[i] = min(d[i], 1+min(at(x+1, y), at(x+1, y+1), at(x, y+1), at(x-1, y+1)))
		}
	}

	return d
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}

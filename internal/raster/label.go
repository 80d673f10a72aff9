package raster

import "image"

// Connectivity selects which neighbours are adjacent.
type Connectivity int

const (
	Four  Connectivity = 4
	Eight Connectivity = 8
)

var (
	// Offsets4 lists the edge neighbours: east, south, west, north.
	Offsets4 = [4]image.Point{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	// Offsets8 lists the edge neighbours first, then the diagonals.
	Offsets8 = [8]image.Point{{1, 0}, {0, 1}, {-1, 0}, {0, -1}, {1, 1}, {-1, 1}, {-1, -1}, {1, -1}}
)

func (c Connectivity) offsets() []image.Point {
	if c == Four {
		return Offsets4[:]
	}

	return Offsets8[:]
}

// Component summarises one connected set of pixels.
type Component struct {
	Label int
	Area  int
	// Perimeter is the number of pixel sides facing a pixel of the other value or the border.
	Perimeter int
	// First is the first pixel in row-major order.
	First         image.Point
	Bounds        image.Rectangle
	TouchesBorder bool
}

// Labels maps every pixel to the component it belongs to. Label 0 means the pixel is not
// part of any component; components are numbered from 1 in row-major discovery order.
type Labels struct {
	Width      int
	Height     int
	ids        []int
	Components []Component
}

// At returns the label of (x, y), 0 when out of bounds.
func (l *Labels) At(x, y int) int {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return 0
	}

	return l.ids[y*l.Width+x]
}

// Component returns the component with the given label.
func (l *Labels) Component(label int) Component {
	return l.Components[label-1]
}

// Label finds the connected components of the pixels equal to value.
func Label(m *Mask, value bool, conn Connectivity) *Labels {
	l := &Labels{Width: m.Width, Height: m.Height, ids: make([]int, m.Width*m.Height)}
	offsets := conn.offsets()
	stack := make([]image.Point, 0, 64)

	for y := range m.Height {
		for x := range m.Width {
			if m.Get(x, y) != value || l.ids[m.Index(x, y)] != 0 {
				continue
			}

			label := len(l.Components) + 1
			comp := Component{Label: label, First: image.Pt(x, y), Bounds: image.Rect(x, y, x+1, y+1)}
			l.ids[m.Index(x, y)] = label
			stack = append(stack[:0], image.Pt(x, y))

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				comp.Area++
				comp.Bounds = comp.Bounds.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
				if p.X == 0 || p.Y == 0 || p.X == m.Width-1 || p.Y == m.Height-1 {
					comp.TouchesBorder = true
				}

				for _, o := range Offsets4 {
					if !m.In(p.X+o.X, p.Y+o.Y) || m.Get(p.X+o.X, p.Y+o.Y) != value {
						comp.Perimeter++
					}
				}

				for _, o := range offsets {
					q := p.Add(o)
					if !m.In(q.X, q.Y) || m.Get(q.X, q.Y) != value || l.ids[m.Index(q.X, q.Y)] != 0 {
						continue
					}
					l.ids[m.Index(q.X, q.Y)] = label
					stack = append(stack, q)
				}
			}

			l.Components = append(l.Components, comp)
		}
	}

	return l
}

// Holes returns the labelling of the background with 4-connectivity, the dual of
// 8-connected foreground. Components that do not touch the border are holes.
func Holes(m *Mask) *Labels {
	return Label(m, false, Four)
}

// Euler returns the number of 8-connected foreground components minus the number of holes.
func Euler(m *Mask) int {
	fg := len(Label(m, true, Eight).Components)
	holes := 0
	for _, c := range Holes(m).Components {
		if !c.TouchesBorder {
			holes++
		}
	}

	return fg - holes
}

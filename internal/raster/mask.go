// Package raster holds binary masks and the neighbourhood machinery shared by the tracing stages.
package raster

import (
	"image"
	"strings"
)

// Mask is a binary image. Reads outside the bounds return false.
type Mask struct {
	Width  int
	Height int
	bits   []bool
}

// NewMask returns an empty width x height mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, bits: make([]bool, width*height)}
}

// ParseMask builds a mask from rows of text where '#' marks a set pixel. It is meant for
// tests and examples.
func ParseMask(rows ...string) *Mask {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	m := NewMask(width, len(rows))
	for y, r := range rows {
		for x, c := range r {
			m.Set(x, y, c == '#')
		}
	}

	return m
}

// In reports whether (x, y) lies inside the mask.
func (m *Mask) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// Index returns the offset of (x, y) in row-major order.
func (m *Mask) Index(x, y int) int {
	return y*m.Width + x
}

// Point is the inverse of Index.
func (m *Mask) Point(idx int) image.Point {
	return image.Pt(idx%m.Width, idx/m.Width)
}

func (m *Mask) Get(x, y int) bool {
	if !m.In(x, y) {
		return false
	}

	return m.bits[m.Index(x, y)]
}

func (m *Mask) Set(x, y int, v bool) {
	m.bits[m.Index(x, y)] = v
}

// Clone returns an independent copy.
func (m *Mask) Clone() *Mask {
	c := &Mask{Width: m.Width, Height: m.Height, bits: make([]bool, len(m.bits))}
	copy(c.bits, m.bits)

	return c
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}

	return n
}

// Empty reports whether no pixel is set.
func (m *Mask) Empty() bool {
	for _, b := range m.bits {
		if b {
			return false
		}
	}

	return true
}

// Neighbours counts the set 8-neighbours of (x, y).
func (m *Mask) Neighbours(x, y int) int {
	n := 0
	for _, o := range Offsets8 {
		if m.Get(x+o.X, y+o.Y) {
			n++
		}
	}

	return n
}

func (m *Mask) String() string {
	var sb strings.Builder
	for y := range m.Height {
		for x := range m.Width {
			if m.Get(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

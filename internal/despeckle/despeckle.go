// Package despeckle removes small or ragged connected components from a layer mask.
package despeckle

import (
	"math"

	"github.com/askiada/go-autotrace/internal/raster"
)

// squareCompactness is perimeter²/area of a square.
const squareCompactness = 16

// Level returns the component size threshold. An explicit level wins; level 0 derives one
// from noiseRemoval in [0, 1].
func Level(level int, noiseRemoval float64) int {
	if level > 0 {
		return level
	}

	return int(math.Floor((1 - noiseRemoval) * 100))
}

// Despeckle returns a copy of m without the 8-connected components that are smaller than
// level pixels. A component smaller than level² is also dropped when its compactness
// exceeds the compactness of a square scaled by tightness². Level 0 or 1 keeps everything.
func Despeckle(m *raster.Mask, level int, tightness float64) *raster.Mask {
	out := m.Clone()
	if level <= 1 {
		return out
	}

	labels := raster.Label(m, true, raster.Eight)
	drop := make([]bool, len(labels.Components)+1)
	removed := false
	for _, c := range labels.Components {
		if speckle(c, level, tightness) {
			drop[c.Label] = true
			removed = true
		}
	}

	if !removed {
		return out
	}

	for y := range m.Height {
		for x := range m.Width {
			if drop[labels.At(x, y)] {
				out.Set(x, y, false)
			}
		}
	}

	return out
}

func speckle(c raster.Component, level int, tightness float64) bool {
	if c.Area < level {
		return true
	}

	if c.Area >= level*level {
		return false
	}

	compactness := float64(c.Perimeter*c.Perimeter) / float64(c.Area)

	return compactness > squareCompactness*tightness*tightness
}

// Package corner finds the points where an outline changes direction sharply enough to
// split its curve.
package corner

import (
	"cmp"
	"math"
	"slices"

	"honnef.co/go/curve"
)

// Params tunes the detector. Angles are in degrees.
type Params struct {
	// Threshold is the largest angle still considered a corner.
	Threshold float64
	// AlwaysThreshold marks corners regardless of neighbouring corners.
	AlwaysThreshold float64
	// Surround is the number of points on each side that must be free of other corners.
	Surround int
	// TangentSurround is the number of points on each side used to estimate directions.
	TangentSurround int
	// RemoveAdjacent drops the weaker of two corners found at consecutive points.
	RemoveAdjacent bool
}

// Angles returns the angle at every point between the reversed incoming direction and the
// outgoing direction: 180 along a straight run, smaller the sharper the turn. Points whose
// directions cannot be estimated get 180.
func Angles(points []curve.Point, closed bool, tangentSurround int) []float64 {
	n := len(points)
	angles := make([]float64, n)

	k := max(tangentSurround, 1)
	if closed {
		k = min(k, max((n-1)/2, 1))
	}

	for i := range points {
		var in, out curve.Vec2
		for j := 1; j <= k; j++ {
			if closed {
				in = in.Add(points[i].Sub(points[(i-j+n)%n]))
				out = out.Add(points[(i+j)%n].Sub(points[i]))

				continue
			}
			if i-j >= 0 {
				in = in.Add(points[i].Sub(points[i-j]))
			}
			if i+j < n {
				out = out.Add(points[i+j].Sub(points[i]))
			}
		}

		angles[i] = angle(in, out)
	}

	return angles
}

func angle(in, out curve.Vec2) float64 {
	li, lo := in.Hypot(), out.Hypot()
	if li == 0 || lo == 0 {
		return 180
	}

	c := in.Negate().Dot(out) / (li * lo)
	c = math.Max(-1, math.Min(1, c))

	return math.Acos(c) * 180 / math.Pi
}

// Detect marks the corners of an outline. Open outlines always have corners at both ends.
// A closed outline without any corner gets one at index 0 so that fitting has a seam.
func Detect(points []curve.Point, closed bool, p Params) []bool {
	n := len(points)
	corners := make([]bool, n)
	if n == 0 {
		return corners
	}

	if !closed {
		corners[0], corners[n-1] = true, true
	}

	angles := Angles(points, closed, p.TangentSurround)

	var candidates []int
	for i, a := range angles {
		if a < p.Threshold && !corners[i] {
			candidates = append(candidates, i)
		}
	}

	slices.SortStableFunc(candidates, func(a, b int) int {
		return cmp.Compare(angles[a], angles[b])
	})

	for _, i := range candidates {
		if angles[i] < p.AlwaysThreshold || !crowded(corners, i, p.Surround, closed) {
			corners[i] = true
		}
	}

	if p.RemoveAdjacent {
		removeAdjacent(corners, angles, closed)
	}

	if closed && !slices.Contains(corners, true) {
		corners[0] = true
	}

	return corners
}

// crowded reports whether a corner is already marked within surround points of i.
func crowded(corners []bool, i, surround int, closed bool) bool {
	n := len(corners)
	for d := 1; d <= surround; d++ {
		for _, j := range [2]int{i - d, i + d} {
			if closed {
				j = ((j % n) + n) % n
			} else if j < 0 || j >= n {
				continue
			}
			if corners[j] {
				return true
			}
		}
	}

	return false
}

func removeAdjacent(corners []bool, angles []float64, closed bool) {
	n := len(corners)
	last := n - 1
	if closed {
		last = n
	}

	for i := 0; i < last; i++ {
		j := (i + 1) % n
		if i == j || !corners[i] || !corners[j] {
			continue
		}

		switch {
		case !closed && i == 0 && j == n-1:
			// both ends of a two-point outline stay
		case !closed && j == n-1:
			corners[i] = false
		case !closed && i == 0:
			corners[j] = false
		case angles[j] < angles[i]:
			corners[i] = false
		default:
			corners[j] = false
		}
	}
}

// Indices returns the positions of the marked corners.
func Indices(corners []bool) []int {
	var idx []int
	for i, c := range corners {
		if c {
			idx = append(idx, i)
		}
	}

	return idx
}

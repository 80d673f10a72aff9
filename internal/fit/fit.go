// Package fit approximates outline segments with Bézier splines.
package fit

import (
	"math"

	"honnef.co/go/curve"

	"github.com/askiada/go-autotrace/pkg/vector"
)

// reparameterizeRounds bounds the Newton iterations spent on one span before it is split.
const reparameterizeRounds = 4

// Params tunes the fitter.
type Params struct {
	ErrorThreshold         float64
	FilterIterations       int
	LineThreshold          float64
	LineReversionThreshold float64
	TangentSurround        int
	// PreserveWidth divides every fitting error by 1 + width/WidthWeightFactor.
	PreserveWidth     bool
	WidthWeightFactor float64
}

// FitOutline fits splines through the points of an outline, starting a new segment at every
// corner. The result is contiguous and, for closed outlines, ends where it starts. widths may
// be nil.
func FitOutline(points []curve.Point, corners []bool, closed bool, widths []float64, p Params) []vector.Spline {
	n := len(points)
	if n == 0 {
		return nil
	}

	if n == 1 {
		return []vector.Spline{vector.NewLine(points[0], points[0], 0)}
	}

	var splines []vector.Spline
	for _, seg := range segments(n, corners, closed) {
		f := &fitter{
			pts:    smooth(pick(points, seg), p.FilterIterations),
			widths: pick(widths, seg),
			p:      p,
		}
		splines = append(splines, f.run()...)
	}

	return join(splines, closed)
}

type segment struct {
	from, to int
}

// segments cuts the outline at its corners. Closed outlines wrap around, so to may exceed
// the last index.
func segments(n int, corners []bool, closed bool) []segment {
	var idx []int
	for i, c := range corners {
		if c && i < n {
			idx = append(idx, i)
		}
	}

	if !closed {
		if len(idx) == 0 || idx[0] != 0 {
			idx = append([]int{0}, idx...)
		}
		if idx[len(idx)-1] != n-1 {
			idx = append(idx, n-1)
		}

		segs := make([]segment, 0, len(idx)-1)
		for k := 1; k < len(idx); k++ {
			segs = append(segs, segment{idx[k-1], idx[k]})
		}

		return segs
	}

	switch len(idx) {
	case 0:
		idx = []int{0, n / 2}
	case 1:
		// A loop with one seam would be fitted by a curve whose ends coincide.
		other := (idx[0] + n/2) % n
		if other < idx[0] {
			idx = []int{other, idx[0]}
		} else {
			idx = append(idx, other)
		}
	}

	segs := make([]segment, 0, len(idx))
	for k := range idx {
		to := idx[(k+1)%len(idx)]
		if to <= idx[k] {
			to += n
		}
		segs = append(segs, segment{idx[k], to})
	}

	return segs
}

// pick copies the values of a segment, wrapping around the end of the slice.
func pick[T any](values []T, seg segment) []T {
	if values == nil {
		return nil
	}

	out := make([]T, 0, seg.to-seg.from+1)
	for i := seg.from; i <= seg.to; i++ {
		out = append(out, values[i%len(values)])
	}

	return out
}

// smooth averages every interior point with its neighbours, keeping both ends in place.
func smooth(pts []curve.Point, iterations int) []curve.Point {
	cur := pts
	for range iterations {
		if len(cur) < 3 {
			break
		}
		nxt := make([]curve.Point, len(cur))
		nxt[0], nxt[len(cur)-1] = cur[0], cur[len(cur)-1]
		for i := 1; i < len(cur)-1; i++ {
			nxt[i] = curve.Pt(
				(cur[i-1].X+2*cur[i].X+cur[i+1].X)/4,
				(cur[i-1].Y+2*cur[i].Y+cur[i+1].Y)/4,
			)
		}
		cur = nxt
	}

	return cur
}

// join makes every spline start exactly where its predecessor ends.
func join(splines []vector.Spline, closed bool) []vector.Spline {
	for i := 1; i < len(splines); i++ {
		splines[i].Points[0] = splines[i-1].Points[3]
		if splines[i].Degree == vector.Linear {
			splines[i].Points[1] = splines[i].Points[0]
		}
	}

	if closed && len(splines) > 1 {
		last := &splines[len(splines)-1]
		last.Points[3] = splines[0].Points[0]
		if last.Degree == vector.Linear {
			last.Points[2] = last.Points[3]
		}
	}

	return splines
}

type span struct {
	lo, hi int
	// t0 leaves the start of the span, t1 leaves its end backwards. Both are unit length
	// or zero.
	t0, t1 curve.Vec2
	depth  int
}

type fitter struct {
	pts    []curve.Point
	widths []float64
	p      Params
}

func (f *fitter) run() []vector.Spline {
	n := len(f.pts)
	stack := []span{{lo: 0, hi: n - 1, t0: f.tangent(0, 1), t1: f.tangent(n-1, -1)}}

	var out []vector.Spline
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		spline, split, ok := f.fitSpan(s)
		if ok {
			out = append(out, spline)

			continue
		}

		tc := unit(f.pts[split-1].Sub(f.pts[split+1]))
		if tc == (curve.Vec2{}) {
			tc = unit(f.pts[s.lo].Sub(f.pts[s.hi]))
		}

		// The left half is pushed last so that it is fitted first.
		stack = append(stack,
			span{lo: split, hi: s.hi, t0: tc.Negate(), t1: s.t1, depth: s.depth + 1},
			span{lo: s.lo, hi: split, t0: s.t0, t1: tc, depth: s.depth + 1},
		)
	}

	return out
}

// tangent estimates the direction leaving point i towards dir, from up to TangentSurround
// following points.
func (f *fitter) tangent(i, dir int) curve.Vec2 {
	var sum curve.Vec2
	for j := 1; j <= max(f.p.TangentSurround, 1); j++ {
		k := i + dir*j
		if k < 0 || k >= len(f.pts) {
			break
		}
		sum = sum.Add(f.pts[k].Sub(f.pts[i]))
	}

	if t := unit(sum); t != (curve.Vec2{}) {
		return t
	}

	return unit(f.pts[len(f.pts)-1-i].Sub(f.pts[i]))
}

// fitSpan fits one spline to pts[s.lo..s.hi]. When the fit is not good enough it returns
// the index to split at instead.
func (f *fitter) fitSpan(s span) (vector.Spline, int, bool) {
	pts := f.pts[s.lo : s.hi+1]
	m := len(pts)
	p0, p3 := pts[0], pts[m-1]

	if m == 2 {
		return vector.NewLine(p0, p3, 0), 0, true
	}

	chord := p3.Distance(p0)
	if chord == 0 {
		far, farDist := 0, 0.0
		for i := 1; i < m-1; i++ {
			if d := pts[i].Distance(p0); d > farDist {
				far, farDist = i, d
			}
		}
		if farDist == 0 || s.depth >= len(f.pts) {
			return vector.NewLine(p0, p3, 0), 0, true
		}

		return vector.Spline{}, s.lo + far, false
	}

	if dev := deviation(pts); dev <= f.p.LineThreshold {
		return vector.NewLine(p0, p3, dev), 0, true
	}

	u := chordLength(pts)
	bez := generate(pts, u, s.t0, s.t1)
	worst, at := f.maxError(pts, u, bez, s.lo)
	for round := 0; worst > f.p.ErrorThreshold && round < reparameterizeRounds; round++ {
		u = reparameterize(pts, u, bez)
		bez = generate(pts, u, s.t0, s.t1)
		worst, at = f.maxError(pts, u, bez, s.lo)
	}

	if worst <= f.p.ErrorThreshold || s.depth >= len(f.pts) {
		return f.curved(pts, u, bez, s.lo), 0, true
	}

	return vector.Spline{}, s.lo + at, false
}

// curved classifies an accepted cubic. It becomes QUADRATIC, stored degree-elevated, when
// its closest quadratic still keeps every point within the error threshold.
func (f *fitter) curved(pts []curve.Point, u []float64, bez curve.CubicBez, offset int) vector.Spline {
	lin := linearity(bez)
	if lin < f.p.LineReversionThreshold {
		return vector.NewLine(bez.P0, bez.P3, lin)
	}

	raised := quadratic(bez).Raise()
	if worst, _ := f.maxError(pts, u, raised, offset); worst <= f.p.ErrorThreshold {
		return vector.NewSpline(raised, vector.Quadratic, linearity(raised))
	}

	return vector.NewSpline(bez, vector.Cubic, lin)
}

// maxError returns the largest distance between a point and the curve at the point's
// parameter, and the index of that point. Only interior points are measured.
func (f *fitter) maxError(pts []curve.Point, u []float64, bez curve.CubicBez, offset int) (float64, int) {
	worst, at := 0.0, len(pts)/2
	for i := 1; i < len(pts)-1; i++ {
		d := bez.Eval(u[i]).Distance(pts[i])
		if f.p.PreserveWidth && f.widths != nil && f.p.WidthWeightFactor > 0 {
			d /= 1 + f.widths[offset+i]/f.p.WidthWeightFactor
		}
		if d > worst {
			worst, at = d, i
		}
	}

	return worst, at
}

// deviation is the largest distance from an interior point to the chord.
func deviation(pts []curve.Point) float64 {
	chord := curve.Line{P0: pts[0], P1: pts[len(pts)-1]}

	worst := 0.0
	for _, p := range pts[1 : len(pts)-1] {
		distSq, _ := chord.Nearest(p, 0)
		worst = math.Max(worst, distSq)
	}

	return math.Sqrt(worst)
}

// linearity is the distance of the farther control point from the chord, relative to the
// chord length.
func linearity(bez curve.CubicBez) float64 {
	chord := bez.P3.Sub(bez.P0)
	length := chord.Hypot()
	if length == 0 {
		return 0
	}

	d1 := math.Abs(bez.P1.Sub(bez.P0).Cross(chord)) / length
	d2 := math.Abs(bez.P2.Sub(bez.P0).Cross(chord)) / length

	return math.Max(d1, d2) / length
}

// quadratic returns the quadratic closest to bez. Its control point is where the two
// elevated control points of bez would coincide; for a degree-elevated quadratic it is exact.
func quadratic(bez curve.CubicBez) curve.QuadBez {
	c := curve.Vec2(bez.P1).Add(curve.Vec2(bez.P2)).Mul(3).
		Sub(curve.Vec2(bez.P0)).
		Sub(curve.Vec2(bez.P3)).
		Div(4)

	return curve.QuadBez{P0: bez.P0, P1: curve.Point(c), P2: bez.P3}
}

func chordLength(pts []curve.Point) []float64 {
	u := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		u[i] = u[i-1] + pts[i].Distance(pts[i-1])
	}

	total := u[len(u)-1]
	for i := range u {
		if total > 0 {
			u[i] /= total
		} else {
			u[i] = float64(i) / float64(len(u)-1)
		}
	}

	return u
}

func bernstein(t float64) (float64, float64, float64, float64) {
	mt := 1 - t

	return mt * mt * mt, 3 * t * mt * mt, 3 * t * t * mt, t * t * t
}

// generate finds the control arm lengths along t0 and t1 that minimise the squared distance
// to pts at parameters u. A negative arm is collapsed onto its end point and the other one
// refitted alone.
func generate(pts []curve.Point, u []float64, t0, t1 curve.Vec2) curve.CubicBez {
	p0, p3 := pts[0], pts[len(pts)-1]

	var c00, c01, c11, x0, x1 float64
	for i, p := range pts {
		b0, b1, b2, b3 := bernstein(u[i])
		a1, a2 := t0.Mul(b1), t1.Mul(b2)
		c00 += a1.Dot(a1)
		c01 += a1.Dot(a2)
		c11 += a2.Dot(a2)

		tmp := curve.Vec2(p).Sub(curve.Vec2(p0).Mul(b0 + b1)).Sub(curve.Vec2(p3).Mul(b2 + b3))
		x0 += a1.Dot(tmp)
		x1 += a2.Dot(tmp)
	}

	var alpha1, alpha2 float64
	if det := c00*c11 - c01*c01; math.Abs(det) > 1e-12 {
		alpha1 = (x0*c11 - x1*c01) / det
		alpha2 = (c00*x1 - c01*x0) / det
	}

	segLen := p3.Distance(p0)
	eps := 1e-6 * segLen

	switch {
	case alpha1 < eps && alpha2 < eps:
		alpha1, alpha2 = segLen/3, segLen/3
	case alpha1 < eps:
		alpha1 = 0
		if c11 > 0 {
			alpha2 = x1 / c11
		}
		if alpha2 < eps {
			alpha1, alpha2 = segLen/3, segLen/3
		}
	case alpha2 < eps:
		alpha2 = 0
		if c00 > 0 {
			alpha1 = x0 / c00
		}
		if alpha1 < eps {
			alpha1, alpha2 = segLen/3, segLen/3
		}
	}

	return curve.CubicBez{
		P0: p0,
		P1: p0.Translate(t0.Mul(alpha1)),
		P2: p3.Translate(t1.Mul(alpha2)),
		P3: p3,
	}
}

// reparameterize moves every parameter one Newton step closer to the root of
// (B(u) - p) · B'(u).
func reparameterize(pts []curve.Point, u []float64, bez curve.CubicBez) []float64 {
	d1 := bez.Differentiate()
	d2 := d1.Differentiate()

	out := make([]float64, len(u))
	copy(out, u)
	for i := 1; i < len(pts)-1; i++ {
		q := bez.Eval(u[i]).Sub(pts[i])
		q1 := curve.Vec2(d1.Eval(u[i]))
		q2 := curve.Vec2(d2.Eval(u[i]))

		den := q1.Dot(q1) + q.Dot(q2)
		if den == 0 {
			continue
		}
		out[i] = math.Max(0, math.Min(1, u[i]-q.Dot(q1)/den))
	}

	return out
}

func unit(v curve.Vec2) curve.Vec2 {
	l := v.Hypot()
	if l == 0 {
		return curve.Vec2{}
	}

	return v.Div(l)
}

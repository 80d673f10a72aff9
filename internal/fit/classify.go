package fit

import (
	"math"

	"honnef.co/go/curve"

	"github.com/askiada/go-autotrace/pkg/vector"
)

// samplesPerSpline is the number of points taken from every spline when matching a path
// against a circle or an ellipse.
const samplesPerSpline = 10

// Classify tags every spline of a closed path as CIRCLE, PARALLEL_ELLIPSE or ELLIPSE when
// the whole path stays within errorThreshold of such a shape, tried in that order. Only
// closed paths with at least two curved splines are considered. The geometry is untouched.
func Classify(splines []vector.Spline, closed bool, errorThreshold float64) []vector.Spline {
	if !closed || len(splines) < 2 {
		return splines
	}

	curved := 0
	for _, s := range splines {
		if s.Degree.Curved() {
			curved++
		}
	}
	if curved < 2 {
		return splines
	}

	samples := make([]curve.Point, 0, len(splines)*samplesPerSpline)
	for _, s := range splines {
		c := s.Cubic()
		for i := range samplesPerSpline {
			samples = append(samples, c.Eval(float64(i)/samplesPerSpline))
		}
	}

	degree, ok := match(samples, errorThreshold)
	if !ok {
		return splines
	}

	for i := range splines {
		splines[i].Degree = degree
	}

	return splines
}

func match(samples []curve.Point, threshold float64) (vector.PolynomialDegree, bool) {
	if c, ok := fitCircle(samples); ok && circleDeviation(c, samples) <= threshold {
		return vector.Circle, true
	}

	if e, ok := fitParallelEllipse(samples); ok && ellipseDeviation(e, samples) <= threshold {
		return vector.ParallelEllipse, true
	}

	if e, ok := fitEllipse(samples); ok && ellipseDeviation(e, samples) <= threshold {
		return vector.Ellipse, true
	}

	return 0, false
}

// centroid is subtracted from the samples before every algebraic fit to keep the normal
// equations well conditioned.
func centroid(samples []curve.Point) curve.Vec2 {
	var sum curve.Vec2
	for _, p := range samples {
		sum = sum.Add(curve.Vec2(p))
	}

	return sum.Div(float64(len(samples)))
}

// fitCircle is the algebraic (Kåsa) circle fit of x² + y² + Dx + Ey + F = 0.
func fitCircle(samples []curve.Point) (curve.Circle, bool) {
	o := centroid(samples)
	rows := make([][]float64, len(samples))
	rhs := make([]float64, len(samples))
	for i, p := range samples {
		x, y := p.X-o.X, p.Y-o.Y
		rows[i] = []float64{x, y, 1}
		rhs[i] = -(x*x + y*y)
	}

	sol, ok := leastSquares(rows, rhs)
	if !ok {
		return curve.Circle{}, false
	}

	cx, cy := -sol[0]/2, -sol[1]/2
	r2 := cx*cx + cy*cy - sol[2]
	if r2 <= 0 {
		return curve.Circle{}, false
	}

	return curve.Circle{Center: curve.Pt(cx+o.X, cy+o.Y), Radius: math.Sqrt(r2)}, true
}

func circleDeviation(c curve.Circle, samples []curve.Point) float64 {
	worst := 0.0
	for _, p := range samples {
		worst = math.Max(worst, math.Abs(p.Distance(c.Center)-c.Radius))
	}

	return worst
}

// ellipse is a conic fitted to the samples, kept in the frame it was solved in: radii.X
// runs along angle, radii.Y across it.
type ellipse struct {
	center curve.Point
	radii  curve.Vec2
	angle  float64
}

// unit maps p into the frame where the ellipse is the unit circle.
func (e ellipse) unit(p curve.Point) curve.Vec2 {
	d := p.Sub(e.center)
	sin, cos := math.Sincos(e.angle)

	return curve.Vec((d.X*cos+d.Y*sin)/e.radii.X, (-d.X*sin+d.Y*cos)/e.radii.Y)
}

// fitParallelEllipse fits Ax² + Cy² + Dx + Ey = 1, an ellipse whose axes follow the image axes.
func fitParallelEllipse(samples []curve.Point) (ellipse, bool) {
	o := centroid(samples)
	rows := make([][]float64, len(samples))
	rhs := make([]float64, len(samples))
	for i, p := range samples {
		x, y := p.X-o.X, p.Y-o.Y
		rows[i] = []float64{x * x, y * y, x, y}
		rhs[i] = 1
	}

	sol, ok := leastSquares(rows, rhs)
	if !ok {
		return ellipse{}, false
	}

	return conicEllipse(o, sol[0], 0, sol[1], sol[2], sol[3])
}

// fitEllipse fits the general conic Ax² + Bxy + Cy² + Dx + Ey = 1.
func fitEllipse(samples []curve.Point) (ellipse, bool) {
	o := centroid(samples)
	rows := make([][]float64, len(samples))
	rhs := make([]float64, len(samples))
	for i, p := range samples {
		x, y := p.X-o.X, p.Y-o.Y
		rows[i] = []float64{x * x, x * y, y * y, x, y}
		rhs[i] = 1
	}

	sol, ok := leastSquares(rows, rhs)
	if !ok {
		return ellipse{}, false
	}

	return conicEllipse(o, sol[0], sol[1], sol[2], sol[3], sol[4])
}

// conicEllipse converts Ax² + Bxy + Cy² + Dx + Ey = 1, expressed around origin o, into an
// ellipse. It fails when the conic is not a real ellipse.
func conicEllipse(o curve.Vec2, a, b, c, d, e float64) (ellipse, bool) {
	if a <= 0 || c <= 0 || 4*a*c-b*b <= 0 {
		return ellipse{}, false
	}

	center, ok := solve([][]float64{{2 * a, b}, {b, 2 * c}}, []float64{-d, -e})
	if !ok {
		return ellipse{}, false
	}
	cx, cy := center[0], center[1]

	// Value of the conic minus one at the centre; the level set through the samples sits
	// -f above it.
	f := a*cx*cx + b*cx*cy + c*cy*cy + d*cx + e*cy - 1
	if f >= 0 {
		return ellipse{}, false
	}

	th := 0.5 * math.Atan2(b, a-c)
	sin, cos := math.Sincos(th)
	l1 := a*cos*cos + b*cos*sin + c*sin*sin
	l2 := a*sin*sin - b*sin*cos + c*cos*cos
	if l1 <= 0 || l2 <= 0 {
		return ellipse{}, false
	}

	return ellipse{
		center: curve.Pt(cx+o.X, cy+o.Y),
		radii:  curve.Vec(math.Sqrt(-f/l1), math.Sqrt(-f/l2)),
		angle:  th,
	}, true
}

// ellipseDeviation measures, for every sample, how far it lies from the ellipse along the
// ray from the centre.
func ellipseDeviation(e ellipse, samples []curve.Point) float64 {
	if e.radii.X == 0 || e.radii.Y == 0 {
		return math.Inf(1)
	}

	worst := 0.0
	for _, p := range samples {
		rho := e.unit(p).Hypot()
		if rho == 0 {
			worst = math.Max(worst, math.Min(e.radii.X, e.radii.Y))

			continue
		}
		worst = math.Max(worst, p.Distance(e.center)*math.Abs(1-1/rho))
	}

	return worst
}

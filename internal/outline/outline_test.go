package outline_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"honnef.co/go/curve"

	"github.com/askiada/go-autotrace/internal/outline"
	"github.com/askiada/go-autotrace/internal/raster"
	"github.com/askiada/go-autotrace/internal/thin"
)

func pts(xy ...float64) []curve.Point {
	out := make([]curve.Point, 0, len(xy)/2)
	for i := 0; i < len(xy); i += 2 {
		out = append(out, curve.Pt(xy[i], xy[i+1]))
	}

	return out
}

func TestTraceSinglePixel(t *testing.T) {
	t.Parallel()

	got := outline.Trace(raster.ParseMask("...", ".#.", "..."))
	require.Len(t, got, 1)
	assert.Equal(t, pts(1, 1, 2, 1, 2, 2, 1, 2), got[0].Points)
	assert.True(t, got[0].Closed)
	assert.True(t, got[0].Clockwise)
	assert.False(t, got[0].Hole)
	assert.Equal(t, 1, got[0].Region)
	assert.Equal(t, image.Pt(1, 1), got[0].Inside)
	assert.Equal(t, image.Pt(1, 0), got[0].Outside)
}

func TestTraceSquare(t *testing.T) {
	t.Parallel()

	m := raster.NewMask(10, 10)
	for y := range 10 {
		for x := range 10 {
			m.Set(x, y, true)
		}
	}

	got := outline.Trace(m)
	require.Len(t, got, 1)
	o := got[0]
	assert.Equal(t, 40, o.Len())
	assert.Equal(t, curve.Pt(0, 0), o.Points[0])
	assert.Equal(t, curve.Pt(10, 0), o.Points[10])
	assert.Equal(t, curve.Pt(10, 10), o.Points[20])
	assert.Equal(t, curve.Pt(0, 10), o.Points[30])
	assert.True(t, o.Clockwise)

	for i, p := range o.Points {
		q := o.Points[(i+1)%o.Len()]
		assert.InDelta(t, 1, p.Distance(q), 1e-12, "unit steps between consecutive points")
	}
}

func TestTraceRing(t *testing.T) {
	t.Parallel()

	got := outline.Trace(raster.ParseMask("###", "#.#", "###"))
	require.Len(t, got, 2)

	outer, hole := got[0], got[1]
	assert.False(t, outer.Hole)
	assert.True(t, outer.Clockwise)
	assert.Equal(t, 12, outer.Len())

	assert.True(t, hole.Hole)
	assert.False(t, hole.Clockwise)
	assert.Equal(t, pts(1, 1, 1, 2, 2, 2, 2, 1), hole.Points)
	assert.Equal(t, outer.Region, hole.Region)
	assert.Equal(t, image.Pt(1, 1), hole.Outside)
	assert.Equal(t, image.Pt(1, 2), hole.Inside)
}

func TestTraceDiagonalPixelsShareOneLoop(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		rows []string
		want []curve.Point
	}{
		"main diagonal": {
			rows: []string{"#.", ".#"},
			want: pts(0, 0, 1, 0, 1, 1, 2, 1, 2, 2, 1, 2, 1, 1, 0, 1),
		},
		"anti diagonal": {
			rows: []string{".#", "#."},
			want: pts(1, 0, 2, 0, 2, 1, 1, 1, 1, 2, 0, 2, 0, 1, 1, 1),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := outline.Trace(raster.ParseMask(tc.rows...))
			require.Len(t, got, 1)
			assert.Equal(t, tc.want, got[0].Points)
			assert.True(t, got[0].Clockwise)
		})
	}
}

func TestTraceOrdering(t *testing.T) {
	t.Parallel()

	m := raster.ParseMask(
		"#######..##",
		"#.....#..##",
		"#.###.#....",
		"#.###.#....",
		"#.....#....",
		"#######....",
	)

	got := outline.Trace(m)
	require.Len(t, got, 4)

	assert.Equal(t, 1, got[0].Region)
	assert.False(t, got[0].Hole)
	assert.Equal(t, 1, got[1].Region)
	assert.True(t, got[1].Hole)
	assert.Equal(t, 2, got[2].Region)
	assert.Equal(t, curve.Pt(9, 0), got[2].Points[0])
	assert.Equal(t, 3, got[3].Region)
	assert.Equal(t, curve.Pt(2, 2), got[3].Points[0])

	for _, o := range got {
		assert.Equal(t, !o.Hole, o.Clockwise)
	}
}

func TestTraceEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, outline.Trace(raster.NewMask(4, 4)))
}

func TestTraceSkeletonLine(t *testing.T) {
	t.Parallel()

	sk := &thin.Skeleton{Mask: raster.ParseMask(
		"#...",
		".#..",
		"..#.",
		"...#",
	)}

	got := outline.TraceSkeleton(sk)
	require.Len(t, got, 1)
	assert.False(t, got[0].Closed)
	assert.Equal(t, pts(0.5, 0.5, 1.5, 1.5, 2.5, 2.5, 3.5, 3.5), got[0].Points)
	assert.Nil(t, got[0].Widths)
}

func TestTraceSkeletonIsolatedAndLoop(t *testing.T) {
	t.Parallel()

	sk := &thin.Skeleton{Mask: raster.ParseMask(
		"......#",
		".###...",
		".#.#...",
		".###...",
	)}

	got := outline.TraceSkeleton(sk)
	require.Len(t, got, 2)

	assert.Equal(t, pts(6.5, 0.5), got[0].Points)
	assert.False(t, got[0].Closed)

	loop := got[1]
	assert.True(t, loop.Closed)
	assert.True(t, loop.Clockwise)
	assert.Equal(t, 8, loop.Len())
	assert.Equal(t, curve.Pt(1.5, 1.5), loop.Points[0])
	assert.Equal(t, curve.Pt(2.5, 1.5), loop.Points[1])
}

func TestTraceSkeletonJunction(t *testing.T) {
	t.Parallel()

	sk := &thin.Skeleton{
		Mask: raster.ParseMask(
			"#####",
			"..#..",
			"..#..",
		),
		Width: make([]float64, 15),
	}
	sk.Width[2] = 3

	got := outline.TraceSkeleton(sk)
	require.Len(t, got, 3)
	assert.Equal(t, pts(0.5, 0.5, 1.5, 0.5, 2.5, 0.5), got[0].Points)
	assert.Equal(t, pts(4.5, 0.5, 3.5, 0.5, 2.5, 0.5), got[1].Points)
	assert.Equal(t, pts(2.5, 2.5, 2.5, 1.5, 2.5, 0.5), got[2].Points)
	assert.Equal(t, []float64{0, 0, 3}, got[0].Widths)

	for _, o := range got {
		assert.False(t, o.Closed)
	}
}

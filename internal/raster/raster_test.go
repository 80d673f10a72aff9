package raster_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-autotrace/internal/raster"
)

func TestParseMask(t *testing.T) {
	t.Parallel()

	m := raster.ParseMask(
		"#..",
		".##",
	)
	assert.Equal(t, 3, m.Width)
	assert.Equal(t, 2, m.Height)
	assert.Equal(t, 3, m.Count())
	assert.True(t, m.Get(0, 0))
	assert.False(t, m.Get(1, 0))
	assert.False(t, m.Get(-1, 0))
	assert.False(t, m.Get(3, 1))
	assert.Equal(t, "#..\n.##\n", m.String())
	assert.Equal(t, 2, m.Neighbours(1, 1))
	assert.Equal(t, image.Pt(2, 1), m.Point(m.Index(2, 1)))

	c := m.Clone()
	c.Set(0, 0, false)
	assert.True(t, m.Get(0, 0))
	assert.False(t, m.Empty())
	assert.True(t, raster.NewMask(2, 2).Empty())
}

func TestLabelConnectivity(t *testing.T) {
	t.Parallel()

	m := raster.ParseMask(
		"#...",
		".#..",
		"...#",
	)

	eight := raster.Label(m, true, raster.Eight)
	require.Len(t, eight.Components, 2)
	assert.Equal(t, 1, eight.At(0, 0))
	assert.Equal(t, 1, eight.At(1, 1))
	assert.Equal(t, 2, eight.At(3, 2))
	assert.Equal(t, 0, eight.At(1, 0))
	assert.Equal(t, 0, eight.At(-1, 0))
	assert.Equal(t, 2, eight.Component(1).Area)

	four := raster.Label(m, true, raster.Four)
	assert.Len(t, four.Components, 3)
}

func TestLabelComponentStats(t *testing.T) {
	t.Parallel()

	m := raster.ParseMask(
		"....",
		".##.",
		".##.",
		"....",
	)
	labels := raster.Label(m, true, raster.Eight)
	require.Len(t, labels.Components, 1)

	c := labels.Components[0]
	assert.Equal(t, 4, c.Area)
	assert.Equal(t, 8, c.Perimeter)
	assert.Equal(t, image.Pt(1, 1), c.First)
	assert.Equal(t, image.Rect(1, 1, 3, 3), c.Bounds)
	assert.False(t, c.TouchesBorder)

	bg := raster.Holes(m)
	require.Len(t, bg.Components, 1)
	assert.True(t, bg.Components[0].TouchesBorder)
}

func TestEuler(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		rows []string
		want int
	}{
		"empty": {rows: []string{"...", "..."}, want: 0},
		"dot":   {rows: []string{"#"}, want: 1},
		"ring": {rows: []string{
			"###",
			"#.#",
			"###",
		}, want: 0},
		"two rings and a dot": {rows: []string{
			"###.###",
			"#.#.#.#",
			"###.###",
			".......",
			"...#...",
		}, want: 1},
		"diamond encloses a hole": {rows: []string{
			".#.",
			"#.#",
			".#.",
		}, want: 0},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, raster.Euler(raster.ParseMask(tc.rows...)))
		})
	}
}

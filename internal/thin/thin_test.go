package thin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-autotrace/internal/raster"
	"github.com/askiada/go-autotrace/internal/thin"
)

func TestThinBar(t *testing.T) {
	t.Parallel()

	m := raster.NewMask(22, 5)
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 20; x++ {
			m.Set(x, y, true)
		}
	}

	sk := thin.Thin(m, true)
	require.Equal(t, 20, sk.Mask.Count())
	for x := 1; x <= 20; x++ {
		assert.True(t, sk.Mask.Get(x, 2), "x=%d", x)
	}
	assert.InDelta(t, 3, sk.WidthAt(10, 2), 1e-12)
	assert.InDelta(t, 1, sk.WidthAt(1, 2), 1e-12)
	assert.Zero(t, sk.WidthAt(10, 1))
	assert.Zero(t, sk.WidthAt(-1, 1))

	// The input mask is left alone.
	assert.Equal(t, 60, m.Count())
}

func TestThinWithoutWidth(t *testing.T) {
	t.Parallel()

	sk := thin.Thin(raster.ParseMask("###", "###"), false)
	assert.Nil(t, sk.Width)
	assert.Zero(t, sk.WidthAt(0, 0))
}

func TestThinStrokes(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in   []string
		want []string
	}{
		"dot": {
			in:   []string{"...", ".#.", "..."},
			want: []string{"...", ".#.", "..."},
		},
		"diagonal": {
			in:   []string{"#...", ".#..", "..#.", "...#"},
			want: []string{"#...", ".#..", "..#.", "...#"},
		},
		"ring": {
			in:   []string{".###.", "#...#", "#...#", ".###."},
			want: []string{".###.", "#...#", "#...#", ".###."},
		},
		"core with diagonal arms stays two wide": {
			in: []string{
				"........",
				".#....#.",
				"..#..#..",
				"...##...",
				"...##...",
				"..#..#..",
				".#....#.",
				"........",
			},
			want: []string{
				"........",
				".#....#.",
				"..#..#..",
				"...##...",
				"...##...",
				"..#..#..",
				".#....#.",
				"........",
			},
		},
		"elbow loses its redundant corner": {
			in:   []string{"#....", "#....", "#####"},
			want: []string{"#....", "#....", ".####"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			sk := thin.Thin(raster.ParseMask(tc.in...), false)
			assert.Equal(t, raster.ParseMask(tc.want...).String(), sk.Mask.String())
		})
	}
}

func TestThinPreservesTopology(t *testing.T) {
	t.Parallel()

	tcs := map[string][]string{
		"filled square": {
			"........",
			".######.",
			".######.",
			".######.",
			".######.",
			"........",
		},
		"thick ring": {
			"#########",
			"#########",
			"###...###",
			"###...###",
			"###...###",
			"#########",
			"#########",
		},
		"two holes": {
			"###########",
			"#..##...###",
			"#..##...###",
			"###########",
			"###########",
		},
		"blobs": {
			"##....###....",
			"###...###..#.",
			"..#...###.###",
			"..##.........",
			"#.....#####..",
			"##...#.#.##..",
			"......#####..",
		},
		"checker": {
			"#.#.",
			".#.#",
			"#.#.",
		},
	}

	for name, rows := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m := raster.ParseMask(rows...)
			sk := thin.Thin(m, false)

			assert.Equal(t, raster.Euler(m), raster.Euler(sk.Mask))
			assert.Equal(t,
				len(raster.Label(m, true, raster.Eight).Components),
				len(raster.Label(sk.Mask, true, raster.Eight).Components))
			assert.LessOrEqual(t, sk.Mask.Count(), m.Count())

			for y := range m.Height {
				for x := range m.Width {
					if sk.Mask.Get(x, y) {
						assert.True(t, m.Get(x, y), "skeleton pixel (%d,%d) outside the input", x, y)
					}
				}
			}

			again := thin.Thin(sk.Mask, false)
			assert.Equal(t, sk.Mask.String(), again.Mask.String(), "thinning is idempotent")
		})
	}
}

// Package quantize partitions a bitmap into one binary mask per colour class.
package quantize

import (
	"cmp"
	"slices"

	"github.com/askiada/go-autotrace/internal/raster"
	"github.com/askiada/go-autotrace/pkg/bitmap"
)

// Layer is the set of pixels that belong to one colour class.
type Layer struct {
	Color bitmap.Color
	Mask  *raster.Mask
}

// Quantize maps every pixel to a colour class and returns one layer per class, ordered by
// the first appearance of the class in row-major order. With colorCount 0 every exact RGB
// value is its own class, otherwise the palette is reduced to at most colorCount colours by
// median cut. Pixels equal to background, before or after reduction, belong to no layer.
func Quantize(bm *bitmap.Bitmap, colorCount int, background *bitmap.Color) []Layer {
	hist := histogram(bm)

	mapping := make(map[bitmap.Color]bitmap.Color, len(hist))
	if colorCount > 0 && len(hist) > colorCount {
		palette := medianCut(hist, colorCount)
		for _, e := range hist {
			mapping[e.color] = nearest(palette, e.color)
		}
	} else {
		for _, e := range hist {
			mapping[e.color] = e.color
		}
	}

	var (
		layers []Layer
		index  = make(map[bitmap.Color]int)
	)

	for y := range bm.Height {
		for x := range bm.Width {
			c := bm.At(x, y)
			mapped := mapping[c]
			if background != nil && (c == *background || mapped == *background) {
				continue
			}

			i, ok := index[mapped]
			if !ok {
				i = len(layers)
				index[mapped] = i
				layers = append(layers, Layer{Color: mapped, Mask: raster.NewMask(bm.Width, bm.Height)})
			}
			layers[i].Mask.Set(x, y, true)
		}
	}

	return layers
}

type entry struct {
	color bitmap.Color
	count int
	// order is the rank of the first appearance of the colour.
	order int
}

// histogram counts the distinct colours in order of first appearance.
func histogram(bm *bitmap.Bitmap) []entry {
	var (
		hist  []entry
		index = make(map[bitmap.Color]int)
	)

	for y := range bm.Height {
		for x := range bm.Width {
			c := bm.At(x, y)
			i, ok := index[c]
			if !ok {
				i = len(hist)
				index[c] = i
				hist = append(hist, entry{color: c, order: i})
			}
			hist[i].count++
		}
	}

	return hist
}

func nearest(palette []bitmap.Color, c bitmap.Color) bitmap.Color {
	best := palette[0]
	bestDist := best.DistanceSquared(c)
	for _, p := range palette[1:] {
		if d := p.DistanceSquared(c); d < bestDist {
			best, bestDist = p, d
		}
	}

	return best
}

type box struct {
	entries []entry
	count   int
}

func newBox(entries []entry) box {
	b := box{entries: entries}
	for _, e := range entries {
		b.count += e.count
	}

	return b
}

func channel(c bitmap.Color, ch int) uint8 {
	switch ch {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

// widest returns the channel with the largest range, red winning ties over green over blue.
func (b box) widest() (int, int) {
	bestCh, bestRange := 0, -1
	for ch := range 3 {
		lo, hi := uint8(255), uint8(0)
		for _, e := range b.entries {
			v := channel(e.color, ch)
			lo, hi = min(lo, v), max(hi, v)
		}
		if r := int(hi) - int(lo); r > bestRange {
			bestCh, bestRange = ch, r
		}
	}

	return bestCh, bestRange
}

// split cuts the box at the pixel-weighted median of its widest channel.
func (b box) split() (box, box) {
	ch, _ := b.widest()

	entries := slices.Clone(b.entries)
	slices.SortStableFunc(entries, func(x, y entry) int {
		if c := cmp.Compare(channel(x.color, ch), channel(y.color, ch)); c != 0 {
			return c
		}

		return cmp.Compare(x.order, y.order)
	})

	cut, acc := 1, 0
	for i, e := range entries[:len(entries)-1] {
		acc += e.count
		cut = i + 1
		if 2*acc >= b.count {
			break
		}
	}

	return newBox(entries[:cut]), newBox(entries[cut:])
}

// mean is the pixel-weighted mean colour of the box, rounded to the nearest integer.
func (b box) mean() bitmap.Color {
	var r, g, bl int
	for _, e := range b.entries {
		r += int(e.color.R) * e.count
		g += int(e.color.G) * e.count
		bl += int(e.color.B) * e.count
	}

	half := b.count / 2

	return bitmap.Color{
		R: uint8((r + half) / b.count),
		G: uint8((g + half) / b.count),
		B: uint8((bl + half) / b.count),
	}
}

// medianCut reduces hist to at most n representative colours. Boxes are split by
// descending pixel count times channel range, ties going to the older box.
func medianCut(hist []entry, n int) []bitmap.Color {
	boxes := []box{newBox(hist)}
	for len(boxes) < n {
		pick, pickScore := -1, -1
		for i, b := range boxes {
			if len(b.entries) < 2 {
				continue
			}
			_, rng := b.widest()
			if score := b.count * rng; score > pickScore {
				pick, pickScore = i, score
			}
		}
		if pick < 0 {
			break
		}

		left, right := boxes[pick].split()
		boxes[pick] = left
		boxes = append(boxes, right)
	}

	palette := make([]bitmap.Color, len(boxes))
	for i, b := range boxes {
		palette[i] = b.mean()
	}

	return palette
}

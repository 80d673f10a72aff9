// Package bitmap holds the raster input of a trace: a read-only grid of RGB pixels.
package bitmap

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidInput is returned when a bitmap or one of its attributes is malformed.
var ErrInvalidInput = errors.New("invalid input")

// Bitmap is a rectangular grid of RGB pixels stored in row-major order, three bytes per pixel.
// Nothing in the tracing pipeline mutates a Bitmap.
type Bitmap struct {
	Width  int
	Height int
	Pix    []uint8
}

// New validates the dimensions against the pixel buffer and returns a Bitmap that shares pix.
func New(width, height int, pix []uint8) (*Bitmap, error) {
	bm := &Bitmap{Width: width, Height: height, Pix: pix}
	if err := bm.Validate(); err != nil {
		return nil, err
	}

	return bm, nil
}

// NewFilled returns a width x height bitmap painted with c.
func NewFilled(width, height int, c Color) (*Bitmap, error) {
	size, err := pixelBytes(width, height)
	if err != nil {
		return nil, err
	}

	pix := make([]uint8, size)
	for i := 0; i < len(pix); i += 3 {
		pix[i], pix[i+1], pix[i+2] = c.R, c.G, c.B
	}

	return &Bitmap{Width: width, Height: height, Pix: pix}, nil
}

// Validate reports whether bm can be traced.
func (bm *Bitmap) Validate() error {
	if bm == nil {
		return errors.Wrap(ErrInvalidInput, "bitmap must be set")
	}

	want, err := pixelBytes(bm.Width, bm.Height)
	if err != nil {
		return err
	}

	if len(bm.Pix) != want {
		return errors.Wrapf(ErrInvalidInput, "pixel buffer has %d bytes, want %d", len(bm.Pix), want)
	}

	return nil
}

// pixelBytes is the buffer size of a width x height bitmap. Dimensions whose size does not
// fit in an int are rejected rather than wrapped.
func pixelBytes(width, height int) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, errors.Wrapf(ErrInvalidInput, "dimensions %dx%d", width, height)
	}

	if width > math.MaxInt/3/height {
		return 0, errors.Wrapf(ErrInvalidInput, "dimensions %dx%d are too large", width, height)
	}

	return width * height * 3, nil
}

// At returns the colour of the pixel at column x, row y.
func (bm *Bitmap) At(x, y int) Color {
	i := (y*bm.Width + x) * 3

	return Color{R: bm.Pix[i], G: bm.Pix[i+1], B: bm.Pix[i+2]}
}

// Set paints the pixel at column x, row y. It exists to build bitmaps, tracing never calls it.
func (bm *Bitmap) Set(x, y int, c Color) {
	i := (y*bm.Width + x) * 3
	bm.Pix[i], bm.Pix[i+1], bm.Pix[i+2] = c.R, c.G, c.B
}

// FillRect paints the half-open rectangle r, clipped to the bitmap.
func (bm *Bitmap) FillRect(r image.Rectangle, c Color) {
	r = r.Intersect(image.Rect(0, 0, bm.Width, bm.Height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			bm.Set(x, y, c)
		}
	}
}

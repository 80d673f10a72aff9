package bitmap

import (
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// FromImage copies img into a Bitmap. Transparency is dropped: every pixel keeps its
// non-premultiplied colour channels.
func FromImage(img image.Image) (*Bitmap, error) {
	if img == nil {
		return nil, errors.Wrap(ErrInvalidInput, "image must be set")
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, errors.Wrapf(ErrInvalidInput, "empty image bounds %v", b)
	}

	bm := &Bitmap{Width: b.Dx(), Height: b.Dy(), Pix: make([]uint8, b.Dx()*b.Dy()*3)}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, _ := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			bm.Set(x-b.Min.X, y-b.Min.Y, Color{R: c.R, G: c.G, B: c.B})
		}
	}

	return bm, nil
}

// Decode reads an encoded image (PNG, JPEG, GIF, BMP, TIFF or WebP) and returns it as a Bitmap
// together with the format name.
func Decode(r io.Reader) (*Bitmap, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", errors.Wrapf(ErrInvalidInput, "unable to decode image: %v", err)
	}

	bm, err := FromImage(img)
	if err != nil {
		return nil, "", err
	}

	return bm, format, nil
}

// Image returns an opaque copy of bm as an *image.RGBA.
func (bm *Bitmap) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, bm.Width, bm.Height))
	for y := range bm.Height {
		for x := range bm.Width {
			c := bm.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}

	return img
}

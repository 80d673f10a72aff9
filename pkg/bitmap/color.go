package bitmap

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1"
)

// Color is an RGB triple. Two colours are equal only when every channel is equal.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGB is a shorthand for Color{R: r, G: g, B: b}.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ParseColor accepts "#rrggbb", "#rgb", a bare "rrggbb" and the css forms "rgb(r, g, b)" and "rgba(r, g, b, a)".
// The alpha channel of the css form is discarded.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if len(s) == 6 || len(s) == 3 {
		if !strings.HasPrefix(s, "#") && !strings.HasPrefix(strings.ToLower(s), "rgb") {
			s = "#" + s
		}
	}

	parsed, err := colors.Parse(s)
	if err != nil {
		return Color{}, errors.Wrapf(ErrInvalidInput, "unable to parse colour %q: %v", s, err)
	}

	rgb := parsed.ToRGB()

	return Color{R: rgb.R, G: rgb.G, B: rgb.B}, nil
}

// Hex returns the colour as "#rrggbb".
func (c Color) Hex() string {
	rgb, _ := colors.RGB(c.R, c.G, c.B)

	return rgb.ToHEX().String()
}

func (c Color) String() string {
	return c.Hex()
}

// DistanceSquared is the squared euclidean distance between two colours in RGB space.
func (c Color) DistanceSquared(o Color) int {
	dr := int(c.R) - int(o.R)
	dg := int(c.G) - int(o.G)
	db := int(c.B) - int(o.B)

	return dr*dr + dg*dg + db*db
}

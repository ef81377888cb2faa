package uwimg

import (
	"fmt"
	"math"
)

// FullTurnRadians is one full turn, 2π.
const FullTurnRadians = 2 * math.Pi

// DrawLine traces a segment from (x, y) along (dx, dy) into a 3-channel
// image. The colour encodes the direction of (dx, dy) on a six-sector hue
// ramp. Pixels that fall outside the image are dropped.
func DrawLine(im *Image, x, y, dx, dy float32) error {
	if im.C != 3 {
		return fmt.Errorf("draw line on %v: %w", im, ErrChannelCount)
	}
	r, g, b := directionColor(dx, dy)

	d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	for i := float32(0); i < d; i++ {
		xi := int(x + dx*i/d)
		yi := int(y + dy*i/d)
		im.Set(xi, yi, 0, r)
		im.Set(xi, yi, 1, g)
		im.Set(xi, yi, 2, b)
	}
	return nil
}

// directionColor maps the angle of (dx, dy) to a linear RGB hue ramp.
// Angles of -π and π land in the same sector.
func directionColor(dx, dy float32) (r, g, b float32) {
	angle := 6 * (math.Atan2(float64(dy), float64(dx))/FullTurnRadians + .5)
	index := math.Floor(angle)
	f := float32(angle - index)
	switch int(index) % 6 {
	case 0:
		return 1, f, 0
	case 1:
		return 1 - f, 1, 0
	case 2:
		return 0, 1, f
	case 3:
		return 0, 1 - f, 1
	case 4:
		return f, 0, 1
	default:
		return 1, 0, 1 - f
	}
}

// DrawFlow draws one segment per velocity sample of v onto im, scaled by
// scale. The sampling stride is derived from the width ratio of im to v.
// Components longer than the image itself are dropped.
func DrawFlow(im, v *Image, scale float32) error {
	if v.W == 0 || v.C < 2 {
		return fmt.Errorf("draw flow %v: %w", v, ErrChannelCount)
	}
	stride := im.W / v.W
	if stride < 1 {
		return fmt.Errorf("flow field %v wider than image %v: %w", v, im, ErrSizeMismatch)
	}
	for j := (stride - 1) / 2; j < im.H; j += stride {
		for i := (stride - 1) / 2; i < im.W; i += stride {
			dx := scale * v.Get(i/stride, j/stride, 0)
			dy := scale * v.Get(i/stride, j/stride, 1)
			if math.Abs(float64(dx)) > float64(im.W) {
				dx = 0
			}
			if math.Abs(float64(dy)) > float64(im.H) {
				dy = 0
			}
			if err := DrawLine(im, float32(i), float32(j), dx, dy); err != nil {
				return err
			}
		}
	}
	return nil
}

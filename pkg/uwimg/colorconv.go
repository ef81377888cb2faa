package uwimg

import (
	"fmt"
	"math"
)

// RGBToGrayscale converts a 3-channel RGB image to luma using the
// Rec. 601 weights.
func RGBToGrayscale(im *Image) (*Image, error) {
	if im.C != 3 {
		return nil, fmt.Errorf("grayscale conversion of %v: %w", im, ErrChannelCount)
	}
	gray := NewImage(im.W, im.H, 1)
	r, g, b := im.Channel(0), im.Channel(1), im.Channel(2)
	for i := range gray.Data {
		gray.Data[i] = r[i]*0.299 + g[i]*0.587 + b[i]*0.114
	}
	return gray, nil
}

// RGBToHSV returns an HSV copy of a 3-channel RGB image. Hue is in [0, 1).
func RGBToHSV(im *Image) (*Image, error) {
	if im.C != 3 {
		return nil, fmt.Errorf("hsv conversion of %v: %w", im, ErrChannelCount)
	}
	out := NewImage(im.W, im.H, 3)
	r, g, b := im.Channel(0), im.Channel(1), im.Channel(2)
	hc, sc, vc := out.Channel(0), out.Channel(1), out.Channel(2)
	for i := range r {
		v := max(r[i], g[i], b[i])
		m := min(r[i], g[i], b[i])
		chroma := v - m

		vc[i] = v
		if v != 0 {
			sc[i] = chroma / v
		}
		if chroma == 0 {
			continue
		}
		var h float32
		switch v {
		case r[i]:
			h = (g[i] - b[i]) / chroma
		case g[i]:
			h = (b[i]-r[i])/chroma + 2
		default:
			h = (r[i]-g[i])/chroma + 4
		}
		if h < 0 {
			h = h/6 + 1
		} else {
			h /= 6
		}
		if h >= 1 {
			h = 0
		}
		hc[i] = h
	}
	return out, nil
}

// HSVToRGB is the inverse of RGBToHSV.
func HSVToRGB(im *Image) (*Image, error) {
	if im.C != 3 {
		return nil, fmt.Errorf("rgb conversion of %v: %w", im, ErrChannelCount)
	}
	out := NewImage(im.W, im.H, 3)
	hc, sc, vc := im.Channel(0), im.Channel(1), im.Channel(2)
	r, g, b := out.Channel(0), out.Channel(1), out.Channel(2)
	for i := range hc {
		r[i], g[i], b[i] = hsvToRGB(hc[i], sc[i], vc[i])
	}
	return out, nil
}

func hsvToRGB(h, s, v float32) (float32, float32, float32) {
	if v == 0 {
		return 0, 0, 0
	}
	chroma := v * s
	hp := h * 6
	if hp >= 6 {
		hp -= 6
	}
	x := chroma * (1 - float32(math.Abs(math.Mod(float64(hp), 2)-1)))

	var r, g, b float32
	switch {
	case hp >= 0 && hp < 1:
		r, g = chroma, x
	case hp >= 1 && hp < 2:
		r, g = x, chroma
	case hp >= 2 && hp < 3:
		g, b = chroma, x
	case hp >= 3 && hp < 4:
		g, b = x, chroma
	case hp >= 4 && hp < 5:
		r, b = x, chroma
	case hp >= 5 && hp < 6:
		r, b = chroma, x
	}
	m := v - chroma
	return r + m, g + m, b + m
}

// Gradient holds the per-pixel Sobel response of an image.
type Gradient struct {
	Magnitude *Image
	// Angle is atan2(gy, gx) in radians.
	Angle *Image
}

func (g Gradient) Close() {
	g.Magnitude.Close()
	g.Angle.Close()
}

// SobelImage computes gradient magnitude and direction. Multi-channel
// inputs are summed across channels.
func SobelImage(im *Image) (Gradient, error) {
	gx, err := Convolve(im, MakeGxFilter(), false)
	if err != nil {
		return Gradient{}, fmt.Errorf("sobel x: %w", err)
	}
	defer gx.Close()
	gy, err := Convolve(im, MakeGyFilter(), false)
	if err != nil {
		return Gradient{}, fmt.Errorf("sobel y: %w", err)
	}
	defer gy.Close()

	grad := Gradient{
		Magnitude: NewImage(im.W, im.H, 1),
		Angle:     NewImage(im.W, im.H, 1),
	}
	for i := range gx.Data {
		x, y := float64(gx.Data[i]), float64(gy.Data[i])
		grad.Magnitude.Data[i] = float32(math.Hypot(x, y))
		grad.Angle.Data[i] = float32(math.Atan2(y, x))
	}
	return grad, nil
}

// ColorizeSobel renders edge direction as hue and edge strength as
// saturation and value.
func ColorizeSobel(im *Image) (*Image, error) {
	grad, err := SobelImage(im)
	if err != nil {
		return nil, err
	}
	defer grad.Close()

	hsv := NewImage(im.W, im.H, 3)
	copy(hsv.Channel(0), grad.Angle.Data)
	copy(hsv.Channel(1), grad.Magnitude.Data)
	copy(hsv.Channel(2), grad.Magnitude.Data)
	FeatureNormalize(hsv)
	defer hsv.Close()
	return HSVToRGB(hsv)
}

// ColorizeFlow renders a velocity field densely: direction as hue and
// speed as value, saturating at maxMagnitude. A non-positive maxMagnitude
// uses the largest speed found in v.
func ColorizeFlow(v *Image, maxMagnitude float32) (*Image, error) {
	if v.C < 2 {
		return nil, fmt.Errorf("colorize flow %v: %w", v, ErrChannelCount)
	}
	vx, vy := v.Channel(0), v.Channel(1)
	if maxMagnitude <= 0 {
		for i := range vx {
			maxMagnitude = max(maxMagnitude, float32(math.Hypot(float64(vx[i]), float64(vy[i]))))
		}
	}

	out := NewImage(v.W, v.H, 3)
	r, g, b := out.Channel(0), out.Channel(1), out.Channel(2)
	for i := range vx {
		if maxMagnitude == 0 {
			break
		}
		mag := float32(math.Hypot(float64(vx[i]), float64(vy[i])))
		hue := float32(math.Atan2(float64(vy[i]), float64(vx[i]))/FullTurnRadians + .5)
		if hue >= 1 {
			hue = 0
		}
		r[i], g[i], b[i] = hsvToRGB(hue, 1, min(mag/maxMagnitude, 1))
	}
	return out, nil
}

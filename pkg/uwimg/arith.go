package uwimg

import (
	"fmt"
	"math"
)

// AddImage returns a + b.
func AddImage(a, b *Image) (*Image, error) {
	if !SameShape(a, b) {
		return nil, fmt.Errorf("add %v + %v: %w", a, b, ErrSizeMismatch)
	}
	out := NewImage(a.W, a.H, a.C)
	for i := range out.Data {
		out.Data[i] = a.Data[i] + b.Data[i]
	}
	return out, nil
}

// SubImage returns a - b.
func SubImage(a, b *Image) (*Image, error) {
	if !SameShape(a, b) {
		return nil, fmt.Errorf("sub %v - %v: %w", a, b, ErrSizeMismatch)
	}
	out := NewImage(a.W, a.H, a.C)
	for i := range out.Data {
		out.Data[i] = a.Data[i] - b.Data[i]
	}
	return out, nil
}

// ConstrainImage clamps every sample of im to [-limit, limit] in place.
func ConstrainImage(im *Image, limit float32) {
	for i, v := range im.Data {
		if v < -limit {
			im.Data[i] = -limit
		} else if v > limit {
			im.Data[i] = limit
		}
	}
}

// ClampImage clamps every sample of im to [0, 1] in place.
func ClampImage(im *Image) {
	for i, v := range im.Data {
		if v > 1 {
			im.Data[i] = 1
		} else if v < 0 {
			im.Data[i] = 0
		}
	}
}

// ShiftImage adds v to channel c in place.
func ShiftImage(im *Image, c int, v float32) {
	plane := im.Channel(c)
	for i := range plane {
		plane[i] += v
	}
}

// ScaleImage multiplies channel c by v in place.
func ScaleImage(im *Image, c int, v float32) {
	plane := im.Channel(c)
	for i := range plane {
		plane[i] *= v
	}
}

// FeatureNormalize rescales each channel to [0, 1] in place. A constant
// channel becomes all zeros.
func FeatureNormalize(im *Image) {
	for c := 0; c < im.C; c++ {
		plane := im.Channel(c)
		if len(plane) == 0 {
			continue
		}
		lo, hi := plane[0], plane[0]
		for _, v := range plane {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		span := hi - lo
		for i, v := range plane {
			if span == 0 {
				plane[i] = 0
			} else {
				plane[i] = (v - lo) / span
			}
		}
	}
}

// L1Normalize scales im in place so its samples sum to 1. An image that
// sums to zero is left unchanged.
func L1Normalize(im *Image) {
	var sum float64
	for _, v := range im.Data {
		sum += float64(v)
	}
	if sum == 0 || math.IsNaN(sum) {
		return
	}
	for i := range im.Data {
		im.Data[i] = float32(float64(im.Data[i]) / sum)
	}
}

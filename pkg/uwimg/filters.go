package uwimg

import "math"

// filterFromRows builds a single-channel filter from row-major weights.
func filterFromRows(rows [][]float32) *Image {
	f := NewImage(len(rows[0]), len(rows), 1)
	for y, row := range rows {
		for x, v := range row {
			f.Set(x, y, 0, v)
		}
	}
	return f
}

// MakeGxFilter returns the 3x3 horizontal Sobel kernel.
func MakeGxFilter() *Image {
	return filterFromRows([][]float32{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	})
}

// MakeGyFilter returns the 3x3 vertical Sobel kernel.
func MakeGyFilter() *Image {
	return filterFromRows([][]float32{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	})
}

func MakeHighpassFilter() *Image {
	return filterFromRows([][]float32{
		{0, -1, 0},
		{-1, 4, -1},
		{0, -1, 0},
	})
}

func MakeSharpenFilter() *Image {
	return filterFromRows([][]float32{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	})
}

func MakeEmbossFilter() *Image {
	return filterFromRows([][]float32{
		{-2, -1, 0},
		{-1, 1, 1},
		{0, 1, 2},
	})
}

// MakeBoxFilter returns a w x w averaging kernel.
func MakeBoxFilter(w int) *Image {
	f := NewImage(w, w, 1)
	for i := range f.Data {
		f.Data[i] = 1
	}
	L1Normalize(f)
	return f
}

// MakeGaussianFilter returns a normalized 2D Gaussian kernel covering
// six sigma, rounded up to the next odd size.
func MakeGaussianFilter(sigma float32) *Image {
	size := int(math.Ceil(float64(sigma) * 6))
	if size%2 == 0 {
		size++
	}
	f := NewImage(size, size, 1)
	half := size / 2
	s2 := float64(sigma) * float64(sigma)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x-half), float64(y-half)
			v := math.Exp(-(dx*dx+dy*dy)/(2*s2)) / (2 * math.Pi * s2)
			f.Set(x, y, 0, float32(v))
		}
	}
	L1Normalize(f)
	return f
}

// sobelGain is the response of the Sobel kernel to a unit slope ramp.
// Dividing a Sobel response by it yields a derivative in intensity per pixel.
func sobelGain(gx *Image) float32 {
	var gain float32
	cx := (gx.W - 1) / 2
	for y := 0; y < gx.H; y++ {
		for x := 0; x < gx.W; x++ {
			gain += gx.Get(x, y, 0) * float32(x-cx)
		}
	}
	return gain
}

package uwimg

import "math"

// NNResize resamples im to w x h by nearest neighbour.
func NNResize(im *Image, w, h int) *Image {
	out := NewImage(w, h, im.C)
	resample(im, out, func(x, y float32, c int) float32 {
		return im.Get(int(math.Round(float64(x))), int(math.Round(float64(y))), c)
	})
	return out
}

// BilinearResize resamples im to w x h by bilinear interpolation.
func BilinearResize(im *Image, w, h int) *Image {
	out := NewImage(w, h, im.C)
	resample(im, out, func(x, y float32, c int) float32 {
		x0, y0 := int(math.Floor(float64(x))), int(math.Floor(float64(y)))
		fx, fy := x-float32(x0), y-float32(y0)
		return im.Get(x0, y0, c)*(1-fx)*(1-fy) +
			im.Get(x0+1, y0, c)*fx*(1-fy) +
			im.Get(x0, y0+1, c)*(1-fx)*fy +
			im.Get(x0+1, y0+1, c)*fx*fy
	})
	return out
}

// resample maps the centre of each destination pixel back into src
// coordinates and fills dst with sample(x, y, c).
func resample(src, dst *Image, sample func(x, y float32, c int) float32) {
	if src.Empty() || dst.Empty() {
		return
	}
	sx := float32(src.W) / float32(dst.W)
	sy := float32(src.H) / float32(dst.H)
	parallelRows(dst.H, func(y0, y1 int) {
		for c := 0; c < dst.C; c++ {
			for y := y0; y < y1; y++ {
				srcY := (float32(y)+0.5)*sy - 0.5
				for x := 0; x < dst.W; x++ {
					srcX := (float32(x)+0.5)*sx - 0.5
					dst.Data[pixelIndex(x, y, c, dst.W, dst.H)] = sample(srcX, srcY, c)
				}
			}
		}
	})
}

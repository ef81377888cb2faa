package uwimg

import "fmt"

// IntegralImage returns the summed-area table of im. Each output pixel
// I(x, y, c) holds the sum of im over [0..x] x [0..y] in channel c.
// Channels are scanned independently.
func IntegralImage(im *Image) *Image {
	integ := NewImage(im.W, im.H, im.C)
	if im.Empty() {
		return integ
	}
	parallelChannels(im.C, func(c int) {
		integrate(im.Channel(c), integ.Channel(c), im.W, im.H)
	})
	return integ
}

// integrate fills dst with the summed-area table of the w x h plane src.
func integrate[T float32 | float64](src []float32, dst []T, w, h int) {
	dst[0] = T(src[0])
	for x := 1; x < w; x++ {
		dst[x] = T(src[x]) + dst[x-1]
	}
	for y := 1; y < h; y++ {
		dst[y*w] = T(src[y*w]) + dst[(y-1)*w]
	}
	for y := 1; y < h; y++ {
		row := y * w
		above := row - w
		for x := 1; x < w; x++ {
			dst[row+x] = T(src[row+x]) + dst[row+x-1] + dst[above+x] - dst[above+x-1]
		}
	}
}

// BoxFilter averages im over an s x s window centred on each pixel, using
// a summed-area table so the cost is independent of s. The window is
// clipped at the border and the average is taken over the clipped area only.
func BoxFilter(im *Image, s int) (*Image, error) {
	if s < 0 {
		return nil, fmt.Errorf("box filter window %d: %w", s, ErrInvalidParam)
	}
	out := NewImage(im.W, im.H, im.C)
	if im.Empty() {
		return out, nil
	}

	half := s / 2
	w, h := im.W, im.H
	// The table is kept in float64 so large windows over wide images do
	// not lose the low bits of the average.
	table := make([]float64, w*h)
	for c := 0; c < im.C; c++ {
		integrate(im.Channel(c), table, w, h)
		dst := out.Channel(c)
		parallelRows(h, func(r0, r1 int) {
			for y := r0; y < r1; y++ {
				y1 := min(h-1, y+half)
				y0 := y - half - 1
				for x := 0; x < w; x++ {
					x1 := min(w-1, x+half)
					x0 := x - half - 1

					sum := table[y1*w+x1]
					if y0 >= 0 {
						sum -= table[y0*w+x1]
					}
					if x0 >= 0 {
						sum -= table[y1*w+x0]
					}
					if x0 >= 0 && y0 >= 0 {
						sum += table[y0*w+x0]
					}

					area := (x1 - max(-1, x0)) * (y1 - max(-1, y0))
					if area <= 0 {
						dst[y*w+x] = 0
						continue
					}
					dst[y*w+x] = float32(sum / float64(area))
				}
			}
		})
	}
	return out, nil
}

package uwimg

import "fmt"

// Convolve applies filter to im. The filter must have 1 channel or as many
// channels as im. With preserve set, every input channel is convolved with
// its matching filter channel and the output keeps im.C channels; otherwise
// the per-channel responses are summed into a single output channel.
//
// The filter is anchored at ((fw-1)/2, (fh-1)/2), so even-sized filters lean
// towards the top-left. Reads past the border replicate the edge pixel.
func Convolve(im, filter *Image, preserve bool) (*Image, error) {
	if filter.C != 1 && filter.C != im.C {
		return nil, fmt.Errorf("convolve %v with %v: %w", im, filter, ErrFilterChannels)
	}

	outC := 1
	if preserve {
		outC = im.C
	}
	out := NewImage(im.W, im.H, outC)

	parallelRows(im.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < im.W; x++ {
				if preserve {
					for c := 0; c < im.C; c++ {
						out.Data[pixelIndex(x, y, c, im.W, im.H)] = convolvePixel(im, filter, x, y, c, filterChannel(filter, c))
					}
					continue
				}
				var sum float32
				for c := 0; c < im.C; c++ {
					sum += convolvePixel(im, filter, x, y, c, filterChannel(filter, c))
				}
				out.Data[pixelIndex(x, y, 0, im.W, im.H)] = sum
			}
		}
	})
	return out, nil
}

func filterChannel(filter *Image, c int) int {
	if filter.C == 1 {
		return 0
	}
	return c
}

// convolvePixel computes the filter response at (x, y) of channel c using
// filter channel fc.
func convolvePixel(im, filter *Image, x, y, c, fc int) float32 {
	ox := x - (filter.W-1)/2
	oy := y - (filter.H-1)/2
	kern := filter.Channel(fc)

	var sum float32
	// Interior: the whole window is inside the image, no clamping needed.
	if ox >= 0 && oy >= 0 && ox+filter.W <= im.W && oy+filter.H <= im.H {
		plane := im.Channel(c)
		for m := 0; m < filter.H; m++ {
			row := plane[(oy+m)*im.W+ox:]
			krow := kern[m*filter.W:]
			for n := 0; n < filter.W; n++ {
				sum += row[n] * krow[n]
			}
		}
		return sum
	}

	for m := 0; m < filter.H; m++ {
		for n := 0; n < filter.W; n++ {
			sum += im.Get(ox+n, oy+m, c) * kern[m*filter.W+n]
		}
	}
	return sum
}

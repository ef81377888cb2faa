package uwimg

import "fmt"

// Structure tensor channel layout.
const (
	TensorIxx = iota
	TensorIyy
	TensorIxy
	TensorIxt
	TensorIyt
	tensorChannels
)

// StructureTensor computes the windowed spatio-temporal structure tensor
// of a frame pair. The result has five channels (see TensorIxx..TensorIyt),
// each averaged over an s x s box window. Gradients are taken on the
// current frame; the temporal term is frame - prev.
func StructureTensor(frame, prev *Image, s int) (*Image, error) {
	if !SameShape(frame, prev) {
		return nil, fmt.Errorf("structure tensor of %v and %v: %w", frame, prev, ErrSizeMismatch)
	}
	if s < 0 {
		return nil, fmt.Errorf("structure tensor window %d: %w", s, ErrInvalidParam)
	}

	cur, err := luma(frame)
	if err != nil {
		return nil, err
	}
	if cur != frame {
		defer cur.Close()
	}
	old, err := luma(prev)
	if err != nil {
		return nil, err
	}
	if old != prev {
		defer old.Close()
	}

	gx := MakeGxFilter()
	gy := MakeGyFilter()
	ix, err := Convolve(cur, gx, false)
	if err != nil {
		return nil, fmt.Errorf("x gradient: %w", err)
	}
	defer ix.Close()
	iy, err := Convolve(cur, gy, false)
	if err != nil {
		return nil, fmt.Errorf("y gradient: %w", err)
	}
	defer iy.Close()

	w, h := cur.W, cur.H
	raw := NewImage(w, h, tensorChannels)
	defer raw.Close()
	ixx, iyy, ixy := raw.Channel(TensorIxx), raw.Channel(TensorIyy), raw.Channel(TensorIxy)
	ixt, iyt := raw.Channel(TensorIxt), raw.Channel(TensorIyt)
	parallelRows(h, func(y0, y1 int) {
		for i := y0 * w; i < y1*w; i++ {
			dx, dy := ix.Data[i], iy.Data[i]
			dt := cur.Data[i] - old.Data[i]
			ixx[i] = dx * dx
			iyy[i] = dy * dy
			ixy[i] = dx * dy
			ixt[i] = dx * dt
			iyt[i] = dy * dt
		}
	})

	return BoxFilter(raw, s)
}

// luma returns a single-channel view of im: 1-channel images are returned
// as is, RGB images are converted.
func luma(im *Image) (*Image, error) {
	switch im.C {
	case 1:
		return im, nil
	case 3:
		return RGBToGrayscale(im)
	default:
		return nil, fmt.Errorf("frame %v: %w", im, ErrChannelCount)
	}
}

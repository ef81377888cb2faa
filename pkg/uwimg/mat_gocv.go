//go:build gocv

package uwimg

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// MatToImage converts an 8- or 16-bit gocv.Mat with 1, 3 (BGR) or 4 (BGRA)
// channels to a planar image with samples in [0, 1]. BGR input becomes RGB
// and alpha is dropped.
func MatToImage(m gocv.Mat) (*Image, error) {
	if m.Empty() {
		return nil, errors.New("empty mat")
	}

	var scale float64
	switch m.Type() & 7 {
	case gocv.MatTypeCV8U:
		scale = 1.0 / 255
	case gocv.MatTypeCV16U:
		scale = 1.0 / 65535
	case gocv.MatTypeCV32F:
		scale = 1
	default:
		return nil, fmt.Errorf("unsupported mat type %v", m.Type())
	}

	channels := m.Channels()
	outC := 1
	switch channels {
	case 1:
	case 3, 4:
		outC = 3
	default:
		return nil, fmt.Errorf("mat with %d channels: %w", channels, ErrChannelCount)
	}

	floatMat := gocv.NewMat()
	defer floatMat.Close()
	m.ConvertToWithParams(&floatMat, gocv.MatTypeCV32F, float32(scale), 0)
	data, err := floatMat.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("mat data: %w", err)
	}

	w, h := m.Cols(), m.Rows()
	im := NewImage(w, h, outC)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := data[(y*w+x)*channels:]
			if outC == 1 {
				im.Data[pixelIndex(x, y, 0, w, h)] = px[0]
				continue
			}
			im.Data[pixelIndex(x, y, 0, w, h)] = px[2]
			im.Data[pixelIndex(x, y, 1, w, h)] = px[1]
			im.Data[pixelIndex(x, y, 2, w, h)] = px[0]
		}
	}
	return im, nil
}

// ImageToMat converts a 1- or 3-channel image to an 8-bit gocv.Mat
// (gray or BGR). The caller owns the returned Mat.
func ImageToMat(im *Image) (gocv.Mat, error) {
	var matType gocv.MatType
	switch im.C {
	case 1:
		matType = gocv.MatTypeCV8UC1
	case 3:
		matType = gocv.MatTypeCV8UC3
	default:
		return gocv.NewMat(), fmt.Errorf("mat from %v: %w", im, ErrChannelCount)
	}

	buf := make([]byte, im.W*im.H*im.C)
	for y := 0; y < im.H; y++ {
		for x := 0; x < im.W; x++ {
			off := (y*im.W + x) * im.C
			if im.C == 1 {
				buf[off] = to8(im.Get(x, y, 0))
				continue
			}
			buf[off] = to8(im.Get(x, y, 2))
			buf[off+1] = to8(im.Get(x, y, 1))
			buf[off+2] = to8(im.Get(x, y, 0))
		}
	}
	return gocv.NewMatFromBytes(im.H, im.W, matType, buf)
}

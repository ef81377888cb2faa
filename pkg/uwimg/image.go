package uwimg

import "fmt"

// Image is a planar float32 image. Pixel (x, y) of channel c lives at
// Data[c*W*H + y*W + x]; len(Data) is always C*W*H.
type Image struct {
	W    int
	H    int
	C    int
	Data []float32
}

// NewImage allocates a zeroed w x h image with c channels.
// Negative dimensions are treated as zero.
func NewImage(w, h, c int) *Image {
	w, h, c = max(w, 0), max(h, 0), max(c, 0)
	return &Image{
		W:    w,
		H:    h,
		C:    c,
		Data: make([]float32, w*h*c),
	}
}

// Close releases the pixel buffer. The image is empty afterwards.
func (im *Image) Close() {
	if im == nil {
		return
	}
	im.Data = nil
	im.W = 0
	im.H = 0
	im.C = 0
}

func (im *Image) Empty() bool {
	return im == nil || im.Data == nil || im.W == 0 || im.H == 0 || im.C == 0
}

func (im *Image) Clone() *Image {
	out := &Image{W: im.W, H: im.H, C: im.C, Data: make([]float32, len(im.Data))}
	copy(out.Data, im.Data)
	return out
}

// CopyImage returns an independent copy of im.
func CopyImage(im *Image) *Image {
	return im.Clone()
}

// SameShape reports whether a and b have identical width, height and channel count.
func SameShape(a, b *Image) bool {
	return a.W == b.W && a.H == b.H && a.C == b.C
}

func (im *Image) String() string {
	return fmt.Sprintf("Image{%dx%dx%d}", im.W, im.H, im.C)
}

// Channel returns the plane of channel c. The slice aliases the image buffer.
func (im *Image) Channel(c int) []float32 {
	n := im.W * im.H
	return im.Data[c*n : (c+1)*n]
}

// Get reads pixel (x, y, c). Coordinates outside the image are clamped to
// the nearest edge pixel, so reads never fail for any x or y.
func (im *Image) Get(x, y, c int) float32 {
	x = clampIndex(x, im.W)
	y = clampIndex(y, im.H)
	return im.Data[pixelIndex(x, y, c, im.W, im.H)]
}

// Set writes pixel (x, y, c). Writes outside the image are silently dropped.
func (im *Image) Set(x, y, c int, v float32) {
	if x < 0 || x >= im.W || y < 0 || y >= im.H {
		return
	}
	im.Data[pixelIndex(x, y, c, im.W, im.H)] = v
}

func pixelIndex(x, y, c, w, h int) int {
	return c*w*h + y*w + x
}

// clampIndex replicates the border: indices below 0 map to 0 and indices
// at or past size map to size-1.
func clampIndex(idx, size int) int {
	if idx < 0 {
		return 0
	}
	if idx >= size {
		return size - 1
	}
	return idx
}

package uwimg

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeImage decodes any registered format (png, jpeg, bmp, tiff, webp)
// into a 3-channel RGB image with samples in [0, 1].
func DecodeImage(r io.Reader) (*Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return FromImage(img), nil
}

// LoadImage reads and decodes the image file at path.
func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()
	return DecodeImage(bufio.NewReader(f))
}

// FromImage converts img to a 3-channel RGB image with samples in [0, 1].
func FromImage(img image.Image) *Image {
	b := img.Bounds()
	im := NewImage(b.Dx(), b.Dy(), 3)
	for y := 0; y < im.H; y++ {
		for x := 0; x < im.W; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			im.Set(x, y, 0, float32(r)/0xffff)
			im.Set(x, y, 1, float32(g)/0xffff)
			im.Set(x, y, 2, float32(bl)/0xffff)
		}
	}
	return im
}

// ToRGBA converts a 1- or 3-channel image to 8-bit RGBA, clamping samples
// to [0, 1]. Single-channel images are rendered as gray.
func ToRGBA(im *Image) (*image.RGBA, error) {
	if im.C != 1 && im.C != 3 {
		return nil, fmt.Errorf("render %v: %w", im, ErrChannelCount)
	}
	out := image.NewRGBA(image.Rect(0, 0, im.W, im.H))
	for y := 0; y < im.H; y++ {
		for x := 0; x < im.W; x++ {
			r := to8(im.Get(x, y, 0))
			g, b := r, r
			if im.C == 3 {
				g = to8(im.Get(x, y, 1))
				b = to8(im.Get(x, y, 2))
			}
			out.SetRGBA(x, y, color.RGBA{r, g, b, 255})
		}
	}
	return out, nil
}

func to8(v float32) uint8 {
	v = min(max(v, 0), 1)
	return uint8(v*255 + 0.5)
}

func SavePNG(path string, im *Image) error {
	return saveWith(path, im, func(w io.Writer, img image.Image) error {
		return png.Encode(w, img)
	})
}

func SaveJPEG(path string, im *Image, quality int) error {
	return saveWith(path, im, func(w io.Writer, img image.Image) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	})
}

// SaveTIFF writes one channel of im as a 16-bit grayscale TIFF, rescaled
// so the channel's range spans the full output range.
func SaveTIFF(path string, im *Image, c int) error {
	plane := NewImage(im.W, im.H, 1)
	copy(plane.Data, im.Channel(c))
	FeatureNormalize(plane)

	out := image.NewGray16(image.Rect(0, 0, im.W, im.H))
	for y := 0; y < im.H; y++ {
		for x := 0; x < im.W; x++ {
			out.SetGray16(x, y, color.Gray16{Y: uint16(plane.Get(x, y, 0)*0xffff + 0.5)})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tiff file: %w", err)
	}
	defer f.Close()
	return tiff.Encode(f, out, &tiff.Options{Compression: tiff.Deflate})
}

func saveWith(path string, im *Image, encode func(io.Writer, image.Image) error) error {
	img, err := ToRGBA(im)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := encode(w, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return w.Flush()
}

package uwimg

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func TestPNGRoundTrip(t *testing.T) {
	im := newImageFrom(5, 4, 3, func(x, y, c int) float32 { return float32((x*40+y*20+c*60)%256) / 255 })
	path := filepath.Join(t.TempDir(), "im.png")
	require.NoError(t, SavePNG(path, im))

	got, err := LoadImage(path)
	require.NoError(t, err)
	require.True(t, SameShape(im, got))
	assert.InDeltaSlice(t, im.Data, got.Data, 1e-6)
}

func TestDecodeGrayPNG(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 1))
	src.SetGray(1, 0, color.Gray{Y: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	im, err := DecodeImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, im.C)
	assert.Equal(t, [3]float32{1, 1, 1}, rgbAt(im, 1, 0))
	assert.Equal(t, [3]float32{0, 0, 0}, rgbAt(im, 0, 0))

	_, err = DecodeImage(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestToRGBA(t *testing.T) {
	gray := newImageFrom(2, 1, 1, func(x, _, _ int) float32 { return float32(x)*2 - 0.5 })
	img, err := ToRGBA(gray)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(1, 0))

	_, err = ToRGBA(NewImage(2, 2, 2))
	assert.ErrorIs(t, err, ErrChannelCount)
}

func TestSaveTIFF(t *testing.T) {
	im := newImageFrom(3, 2, 2, func(x, _, c int) float32 { return float32(x * (c + 1)) })
	path := filepath.Join(t.TempDir(), "plane.tif")
	require.NoError(t, SaveTIFF(path, im, 1))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := tiff.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	r0, _, _, _ := img.At(0, 0).RGBA()
	r2, _, _, _ := img.At(2, 0).RGBA()
	assert.Equal(t, uint32(0), r0)
	assert.Equal(t, uint32(0xffff), r2)
}

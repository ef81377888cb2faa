package uwimg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// texture is a smooth, non-degenerate test pattern with gradients in both
// directions. shiftX/shiftY translate its content.
func texture(w, h int, shiftX, shiftY float64) *Image {
	return newImageFrom(w, h, 1, func(x, y, _ int) float32 {
		fx := float64(x) - shiftX
		fy := float64(y) - shiftY
		return float32(0.5 + 0.2*math.Sin(0.25*fx) + 0.2*math.Sin(0.3*fy))
	})
}

func TestStructureTensorLayout(t *testing.T) {
	frame := texture(20, 16, 0, 0)
	tensor, err := StructureTensor(frame, frame, 3)
	require.NoError(t, err)
	assert.Equal(t, 20, tensor.W)
	assert.Equal(t, 16, tensor.H)
	assert.Equal(t, 5, tensor.C)

	for _, v := range tensor.Channel(TensorIxt) {
		assert.Zero(t, v)
	}
	for _, v := range tensor.Channel(TensorIyt) {
		assert.Zero(t, v)
	}
	for i, v := range tensor.Channel(TensorIxx) {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.GreaterOrEqual(t, tensor.Channel(TensorIyy)[i], float32(0))
	}
}

func TestStructureTensorOfRamp(t *testing.T) {
	ramp := newImageFrom(16, 16, 1, func(x, _, _ int) float32 { return 0.1 * float32(x) })
	brighter := newImageFrom(16, 16, 1, func(x, _, _ int) float32 { return 0.1*float32(x) + 0.05 })

	tensor, err := StructureTensor(brighter, ramp, 3)
	require.NoError(t, err)

	// Sobel of a 0.1 slope is 0.8 away from the left and right edges.
	assert.InDelta(t, 0.64, tensor.Get(8, 8, TensorIxx), 1e-5)
	assert.InDelta(t, 0, tensor.Get(8, 8, TensorIyy), 1e-6)
	assert.InDelta(t, 0, tensor.Get(8, 8, TensorIxy), 1e-6)
	assert.InDelta(t, 0.8*0.05, tensor.Get(8, 8, TensorIxt), 1e-5)
	assert.InDelta(t, 0, tensor.Get(8, 8, TensorIyt), 1e-6)
}

func TestStructureTensorConvertsRGB(t *testing.T) {
	gray := texture(12, 12, 0, 0)
	shifted := texture(12, 12, 1, 0)
	toRGB := func(im *Image) *Image {
		return newImageFrom(im.W, im.H, 3, func(x, y, _ int) float32 { return im.Get(x, y, 0) })
	}

	want, err := StructureTensor(shifted, gray, 5)
	require.NoError(t, err)
	got, err := StructureTensor(toRGB(shifted), toRGB(gray), 5)
	require.NoError(t, err)
	require.True(t, SameShape(want, got))
	for i := range want.Data {
		assert.InDelta(t, want.Data[i], got.Data[i], 1e-4)
	}
}

func TestStructureTensorValidation(t *testing.T) {
	_, err := StructureTensor(NewImage(4, 4, 1), NewImage(5, 4, 1), 3)
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = StructureTensor(NewImage(4, 4, 2), NewImage(4, 4, 2), 3)
	assert.ErrorIs(t, err, ErrChannelCount)

	_, err = StructureTensor(NewImage(4, 4, 1), NewImage(4, 4, 1), -3)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

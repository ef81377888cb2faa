package uwimg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSubImage(t *testing.T) {
	a := newImageFrom(3, 2, 2, func(x, y, c int) float32 { return float32(x + y + c) })
	b := newImageFrom(3, 2, 2, func(_, _, _ int) float32 { return 0.5 })

	sum, err := AddImage(a, b)
	require.NoError(t, err)
	diff, err := SubImage(sum, b)
	require.NoError(t, err)
	assert.Equal(t, a.Data, diff.Data)

	_, err = AddImage(a, NewImage(3, 2, 1))
	assert.ErrorIs(t, err, ErrSizeMismatch)
	_, err = SubImage(a, NewImage(2, 2, 2))
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestConstrainImage(t *testing.T) {
	im := NewImage(4, 1, 1)
	im.Data = []float32{-10, -6, 3, 7}
	ConstrainImage(im, 6)
	assert.Equal(t, []float32{-6, -6, 3, 6}, im.Data)
}

func TestClampShiftScale(t *testing.T) {
	im := NewImage(3, 1, 2)
	im.Data = []float32{-0.5, 0.5, 1.5, 0.1, 0.2, 0.3}

	ShiftImage(im, 1, 0.5)
	assert.InDeltaSlice(t, []float32{0.6, 0.7, 0.8}, im.Channel(1), 1e-6)
	ScaleImage(im, 1, 2)
	assert.InDeltaSlice(t, []float32{1.2, 1.4, 1.6}, im.Channel(1), 1e-6)

	ClampImage(im)
	assert.Equal(t, []float32{0, 0.5, 1, 1, 1, 1}, im.Data)
}

func TestFeatureNormalize(t *testing.T) {
	im := NewImage(3, 1, 2)
	im.Data = []float32{-2, 0, 2, 5, 5, 5}
	FeatureNormalize(im)
	assert.Equal(t, []float32{0, 0.5, 1, 0, 0, 0}, im.Data)
}

func TestL1Normalize(t *testing.T) {
	im := NewImage(2, 2, 1)
	im.Data = []float32{1, 1, 2, 4}
	L1Normalize(im)
	assert.InDeltaSlice(t, []float32{0.125, 0.125, 0.25, 0.5}, im.Data, 1e-7)

	zero := NewImage(2, 1, 1)
	zero.Data = []float32{1, -1}
	L1Normalize(zero)
	assert.Equal(t, []float32{1, -1}, zero.Data)
}

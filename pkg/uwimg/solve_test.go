package uwimg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniformTensor fills every pixel of a w x h tensor with the same terms.
func uniformTensor(w, h int, ixx, iyy, ixy, ixt, iyt float32) *Image {
	terms := [tensorChannels]float32{ixx, iyy, ixy, ixt, iyt}
	return newImageFrom(w, h, tensorChannels, func(_, _, c int) float32 { return terms[c] })
}

func TestVelocityFieldShape(t *testing.T) {
	v, err := VelocityField(NewImage(17, 10, tensorChannels), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, v.W)
	assert.Equal(t, 2, v.H)
	assert.Equal(t, 3, v.C)
}

func TestVelocityFieldSolvesSystem(t *testing.T) {
	// M = [[2 1] [1 4]], b = [3 5]  =>  M^-1 b = (1, 1), times the Sobel gain of 8.
	tensor := uniformTensor(6, 6, 2, 4, 1, -3, -5)
	v, err := VelocityField(tensor, 2)
	require.NoError(t, err)
	for y := 0; y < v.H; y++ {
		for x := 0; x < v.W; x++ {
			assert.InDelta(t, 8, v.Get(x, y, 0), 1e-4)
			assert.InDelta(t, 8, v.Get(x, y, 1), 1e-4)
			assert.Zero(t, v.Get(x, y, 2))
		}
	}
}

func TestVelocityFieldSingularIsZero(t *testing.T) {
	tests := []struct {
		name   string
		tensor *Image
	}{
		{"flat", uniformTensor(5, 5, 0, 0, 0, 0, 0)},
		{"flat with temporal change", uniformTensor(5, 5, 0, 0, 0, 1, 1)},
		{"rank one", uniformTensor(5, 5, 1, 1, 1, 2, -2)},
		{"edge only", uniformTensor(5, 5, 3, 0, 0, 1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := VelocityField(tt.tensor, 1)
			require.NoError(t, err)
			for _, val := range v.Data {
				assert.Zero(t, val)
			}
		})
	}
}

func TestVelocityFieldSamplePositions(t *testing.T) {
	// Identity spatial matrix and Ixt = -x/8, so vx equals the x coordinate
	// of the tensor pixel that was sampled.
	tensor := newImageFrom(10, 7, tensorChannels, func(x, _, c int) float32 {
		switch c {
		case TensorIxx, TensorIyy:
			return 1
		case TensorIxt:
			return -float32(x) / 8
		}
		return 0
	})

	v, err := VelocityField(tensor, 3)
	require.NoError(t, err)
	require.Equal(t, 3, v.W)
	require.Equal(t, 2, v.H)
	for y := 0; y < v.H; y++ {
		for x := 0; x < v.W; x++ {
			assert.InDelta(t, float32(1+3*x), v.Get(x, y, 0), 1e-5)
		}
	}
}

func TestVelocityFieldValidation(t *testing.T) {
	_, err := VelocityField(NewImage(4, 4, 3), 1)
	assert.ErrorIs(t, err, ErrChannelCount)

	_, err = VelocityField(NewImage(4, 4, tensorChannels), 0)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

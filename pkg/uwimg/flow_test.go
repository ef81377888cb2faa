package uwimg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpticalFlowIdenticalFramesIsZero(t *testing.T) {
	frame := texture(40, 32, 0, 0)
	v, err := OpticalFlow(frame, frame.Clone(), 7, 4)
	require.NoError(t, err)
	assert.Equal(t, 10, v.W)
	assert.Equal(t, 8, v.H)
	for _, val := range v.Data {
		assert.InDelta(t, 0, val, 1e-7)
	}
}

func TestOpticalFlowFlatFramesIsZero(t *testing.T) {
	dark := newImageFrom(24, 24, 1, func(_, _, _ int) float32 { return 0.2 })
	bright := newImageFrom(24, 24, 1, func(_, _, _ int) float32 { return 0.6 })
	v, err := OpticalFlow(bright, dark, 5, 2)
	require.NoError(t, err)
	for _, val := range v.Data {
		assert.Zero(t, val)
	}
}

// meanInterior averages channel c of v, skipping margin samples on each side.
func meanInterior(v *Image, c, margin int) float64 {
	var sum float64
	n := 0
	for y := margin; y < v.H-margin; y++ {
		for x := margin; x < v.W-margin; x++ {
			sum += float64(v.Get(x, y, c))
			n++
		}
	}
	return sum / float64(n)
}

func TestOpticalFlowRecoversTranslation(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy float64
	}{
		{"right", 1, 0},
		{"up", 0, -1},
		{"diagonal", 1, 1},
		{"two pixels left", -2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := texture(64, 64, 0, 0)
			frame := texture(64, 64, tt.dx, tt.dy)

			v, err := OpticalFlow(frame, prev, 9, 4)
			require.NoError(t, err)
			require.Equal(t, 16, v.W)

			assert.InDelta(t, tt.dx, meanInterior(v, 0, 3), 0.3)
			assert.InDelta(t, tt.dy, meanInterior(v, 1, 3), 0.3)
		})
	}
}

func TestOpticalFlowClampsVelocity(t *testing.T) {
	// A nearly singular but invertible system with a large temporal term
	// produces velocities far beyond the limit before clamping.
	tensor := uniformTensor(16, 16, 1e-3, 1e-3, 0, -1, 1)
	raw, err := VelocityField(tensor, 2)
	require.NoError(t, err)
	assert.Greater(t, raw.Get(0, 0, 0), float32(1000))

	p := NewFlowParams()
	p.Stride = 2
	v, err := flowFromTensor(tensor, p)
	require.NoError(t, err)
	for y := 0; y < v.H; y++ {
		for x := 0; x < v.W; x++ {
			assert.LessOrEqual(t, v.Get(x, y, 0), p.Limit)
			assert.GreaterOrEqual(t, v.Get(x, y, 1), -p.Limit)
			assert.InDelta(t, 6, v.Get(x, y, 0), 1e-5)
			assert.InDelta(t, -6, v.Get(x, y, 1), 1e-5)
		}
	}
}

func TestOpticalFlowOutputNeverExceedsLimit(t *testing.T) {
	// Large displacement of a high frequency pattern gives unreliable,
	// possibly huge raw estimates.
	prev := newImageFrom(48, 48, 1, func(x, y, _ int) float32 { return float32((x*7+y*13)%5) / 4 })
	frame := newImageFrom(48, 48, 1, func(x, y, _ int) float32 { return float32((x*3+y*11)%7) / 6 })
	v, err := OpticalFlow(frame, prev, 3, 1)
	require.NoError(t, err)
	for _, val := range v.Data {
		assert.LessOrEqual(t, val, float32(6))
		assert.GreaterOrEqual(t, val, float32(-6))
	}
}

func TestDefaultDrawScaleRemovesSobelGain(t *testing.T) {
	assert.Equal(t, float32(15), DefaultDrawScale(15, 8))
	assert.Equal(t, float32(0.625), DefaultDrawScale(5, 1))
	assert.Equal(t, float32(8), sobelGain(MakeGxFilter()))
}

func TestOpticalFlowValidation(t *testing.T) {
	frame := NewImage(8, 8, 1)
	_, err := OpticalFlow(frame, frame, 3, 0)
	assert.ErrorIs(t, err, ErrInvalidParam)

	_, err = OpticalFlow(frame, NewImage(8, 9, 1), 3, 1)
	assert.ErrorIs(t, err, ErrSizeMismatch)

	p := NewFlowParams()
	p.Limit = 0
	_, err = OpticalFlowWithParams(frame, frame, p)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestOpticalFlowSavesIntermediateFiles(t *testing.T) {
	dir := t.TempDir()
	p := NewFlowParams()
	p.Smoothing = 3
	p.SaveIntermediateFilesPath = dir

	frame := texture(16, 16, 0, 0)
	_, err := OpticalFlowWithParams(texture(16, 16, 1, 0), frame, p)
	require.NoError(t, err)

	for _, name := range []string{
		"00-params.txt",
		"01-structure-tensor-c0.tif",
		"01-structure-tensor-c4.tif",
		"02-velocity-c1.tif",
		"03-velocity-smoothed-c0.tif",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

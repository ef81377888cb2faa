package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzuan16/uwimg/pkg/uwimg"
)

func TestMedianMAD(t *testing.T) {
	med, mad := medianMAD([]float64{1, 2, 3, 4, 100})
	assert.Equal(t, 3.0, med)
	assert.InDelta(t, 1.4826, mad, 1e-9)

	med, mad = medianMAD(nil)
	assert.True(t, math.IsNaN(med))
	assert.True(t, math.IsNaN(mad))
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	assert.Error(t, run(nil))
	assert.ErrorContains(t, run([]string{"nope"}), "unknown command")
}

func TestRunFilterAndFlow(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	prevPath := filepath.Join(dir, "prev.png")
	frame := uwimg.NewImage(40, 30, 3)
	prev := uwimg.NewImage(40, 30, 3)
	for c := 0; c < 3; c++ {
		for y := 0; y < 30; y++ {
			for x := 0; x < 40; x++ {
				frame.Set(x, y, c, float32((x+y)%7)/7)
				prev.Set(x, y, c, float32((x+y+1)%7)/7)
			}
		}
	}
	require.NoError(t, uwimg.SavePNG(in, frame))
	require.NoError(t, uwimg.SavePNG(prevPath, prev))

	out := filepath.Join(dir, "box.png")
	require.NoError(t, run([]string{"filter", "-kernel", "box", "-size", "3", in, out}))
	_, err := os.Stat(out)
	require.NoError(t, err)

	overlay := filepath.Join(dir, "flow.jpg")
	flo := filepath.Join(dir, "flow.flo")
	require.NoError(t, run([]string{"flow", "-smooth", "5", "-stride", "2", "-out", overlay, "-flo", flo, in, prevPath}))
	v, err := uwimg.ReadFlo(flo)
	require.NoError(t, err)
	assert.Equal(t, 20, v.W)
	assert.Equal(t, 15, v.H)
}

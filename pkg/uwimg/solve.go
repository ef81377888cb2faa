package uwimg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// VelocityField solves the per-sample 2x2 least-squares system
//
//	[Ixx Ixy] [vx]   [-Ixt]
//	[Ixy Iyy] [vy] = [-Iyt]
//
// on a grid of every stride-th pixel of a structure tensor. Samples start
// at offset (stride-1)/2. The result is (W/stride) x (H/stride) with three
// channels: vx, vy and an unused zero channel. Velocities are in pixels per
// frame and point along the motion from the previous to the current frame.
// Singular systems yield zero velocity.
func VelocityField(tensor *Image, stride int) (*Image, error) {
	if tensor.C != tensorChannels {
		return nil, fmt.Errorf("velocity field from %v: %w", tensor, ErrChannelCount)
	}
	if stride < 1 {
		return nil, fmt.Errorf("velocity stride %d: %w", stride, ErrInvalidParam)
	}

	v := NewImage(tensor.W/stride, tensor.H/stride, 3)
	gain := float64(sobelGain(MakeGxFilter()))
	offset := (stride - 1) / 2
	sampleRows := 0
	if tensor.H > offset {
		sampleRows = (tensor.H - offset + stride - 1) / stride
	}

	parallelRows(sampleRows, func(r0, r1 int) {
		s := newFlowSolver(gain)
		for r := r0; r < r1; r++ {
			j := offset + r*stride
			for i := offset; i < tensor.W; i += stride {
				vx, vy := s.solve(
					tensor.Get(i, j, TensorIxx),
					tensor.Get(i, j, TensorIyy),
					tensor.Get(i, j, TensorIxy),
					tensor.Get(i, j, TensorIxt),
					tensor.Get(i, j, TensorIyt),
				)
				v.Set(i/stride, j/stride, 0, vx)
				v.Set(i/stride, j/stride, 1, vy)
			}
		}
	})
	return v, nil
}

// flowSolver holds the scratch matrices for one goroutine.
type flowSolver struct {
	m    *mat.Dense
	inv  *mat.Dense
	b    *mat.VecDense
	v    *mat.VecDense
	gain float64
}

func newFlowSolver(gain float64) *flowSolver {
	return &flowSolver{
		m:    mat.NewDense(2, 2, nil),
		inv:  mat.NewDense(2, 2, nil),
		b:    mat.NewVecDense(2, nil),
		v:    mat.NewVecDense(2, nil),
		gain: gain,
	}
}

// solve returns the velocity for one tensor sample, or (0, 0) when the
// spatial matrix cannot be inverted.
func (s *flowSolver) solve(ixx, iyy, ixy, ixt, iyt float32) (float32, float32) {
	a, d, bc := float64(ixx), float64(iyy), float64(ixy)
	det := a*d - bc*bc
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return 0, 0
	}

	s.m.Set(0, 0, a)
	s.m.Set(0, 1, bc)
	s.m.Set(1, 0, bc)
	s.m.Set(1, 1, d)
	// Inverse reports singular and badly conditioned matrices as an error.
	if err := s.inv.Inverse(s.m); err != nil {
		return 0, 0
	}

	s.b.SetVec(0, -float64(ixt))
	s.b.SetVec(1, -float64(iyt))
	s.v.MulVec(s.inv, s.b)

	// The tensor is built from Sobel responses, which scale the derivative
	// by the kernel gain; undo it to report pixels per frame.
	return float32(s.gain * s.v.AtVec(0)), float32(s.gain * s.v.AtVec(1))
}

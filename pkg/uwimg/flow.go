package uwimg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FlowParams configures OpticalFlowWithParams.
type FlowParams struct {
	// Smoothing is the box window applied to the structure tensor.
	Smoothing int
	// Stride is the sampling step of the velocity grid.
	Stride int
	// Limit bounds each velocity component to [-Limit, Limit] pixels per
	// frame. Velocities are already corrected for the Sobel gain, so the
	// default of 6 is six real pixels of motion.
	Limit float32
	// PostSmoothing is the box window applied to the clamped velocity field.
	PostSmoothing int
	// SaveIntermediateFilesPath, when it names an existing directory,
	// receives TIFF dumps of every pipeline stage.
	SaveIntermediateFilesPath string
}

// NewFlowParams returns the default parameters.
func NewFlowParams() *FlowParams {
	return &FlowParams{
		Smoothing:     15,
		Stride:        4,
		Limit:         6,
		PostSmoothing: 2,
	}
}

func (p *FlowParams) Validate() error {
	if p.Smoothing < 0 {
		return fmt.Errorf("smoothing must be non-negative, got %d: %w", p.Smoothing, ErrInvalidParam)
	}
	if p.Stride < 1 {
		return fmt.Errorf("stride must be positive, got %d: %w", p.Stride, ErrInvalidParam)
	}
	if p.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %f: %w", p.Limit, ErrInvalidParam)
	}
	if p.PostSmoothing < 0 {
		return fmt.Errorf("post smoothing must be non-negative, got %d: %w", p.PostSmoothing, ErrInvalidParam)
	}
	return nil
}

// DefaultDrawScale is the arrow scale used when none is configured:
// smoothing * div, divided by the Sobel gain so arrows keep the length
// they had when velocities were raw Sobel units.
func DefaultDrawScale(smoothing, div int) float32 {
	return float32(smoothing*div) / sobelGain(MakeGxFilter())
}

func (p FlowParams) String() string {
	return fmt.Sprintf("{Smoothing=%d, Stride=%d, Limit=%g, PostSmoothing=%d}", p.Smoothing, p.Stride, p.Limit, p.PostSmoothing)
}

// OpticalFlow estimates the dense velocity field from prev to frame with
// the default limit and post-smoothing.
func OpticalFlow(frame, prev *Image, smoothing, stride int) (*Image, error) {
	p := NewFlowParams()
	p.Smoothing = smoothing
	p.Stride = stride
	return OpticalFlowWithParams(frame, prev, p)
}

// OpticalFlowWithParams runs the full pipeline: structure tensor, per-sample
// solve, clamp to the velocity limit and a final box smoothing.
func OpticalFlowWithParams(frame, prev *Image, p *FlowParams) (*Image, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	maybeSaveText(p.SaveIntermediateFilesPath, "00-params.txt", p.String())

	tensor, err := StructureTensor(frame, prev, p.Smoothing)
	if err != nil {
		return nil, err
	}
	defer tensor.Close()
	maybeSaveImage(tensor, p.SaveIntermediateFilesPath, "01-structure-tensor")

	return flowFromTensor(tensor, p)
}

func flowFromTensor(tensor *Image, p *FlowParams) (*Image, error) {
	v, err := VelocityField(tensor, p.Stride)
	if err != nil {
		return nil, err
	}
	defer v.Close()
	maybeSaveImage(v, p.SaveIntermediateFilesPath, "02-velocity")

	ConstrainImage(v, p.Limit)
	vs, err := BoxFilter(v, p.PostSmoothing)
	if err != nil {
		return nil, err
	}
	maybeSaveImage(vs, p.SaveIntermediateFilesPath, "03-velocity-smoothed")
	return vs, nil
}

// maybeSaveImage dumps every channel of im as name-c<N>.tif.
func maybeSaveImage(im *Image, savePath, name string) {
	if savePath == "" {
		return
	}
	if _, err := os.Stat(savePath); os.IsNotExist(err) {
		return
	}
	for c := 0; c < im.C; c++ {
		_ = SaveTIFF(filepath.Join(savePath, fmt.Sprintf("%s-c%d.tif", name, c)), im, c)
	}
}

func maybeSaveText(savePath, filename string, lines ...string) {
	if savePath == "" {
		return
	}
	if _, err := os.Stat(savePath); os.IsNotExist(err) {
		return
	}
	_ = os.WriteFile(filepath.Join(savePath, filename), []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

package uwimg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// FrameSource yields consecutive video frames. Next returns io.EOF once
// the source is exhausted.
type FrameSource interface {
	Next(ctx context.Context) (*Image, error)
	Close() error
}

// FlowFrame is the result for one pair of consecutive frames. Velocity and
// Overlay are released after the sink returns; Frame stays alive as the
// previous frame of the next pair. Sinks must copy what they keep.
type FlowFrame struct {
	Index    int
	Frame    *Image
	Velocity *Image
	// Overlay is a copy of Frame with the velocity field drawn on it.
	Overlay *Image
	Elapsed time.Duration
}

// FlowSink receives every computed frame. Returning ErrStopTracking ends
// the run without error.
type FlowSink func(ctx context.Context, f *FlowFrame) error

var ErrStopTracking = errors.New("tracking stopped")

// Tracker computes optical flow over a stream of frames. Frames are
// downsampled by Div before flow estimation and the field is drawn back
// onto the full-resolution frame.
type Tracker struct {
	Params *FlowParams
	Div    int
	// Scale multiplies velocities when drawing the overlay. Zero uses
	// DefaultDrawScale(Params.Smoothing, Div).
	Scale  float32
	Logger *slog.Logger

	session uuid.UUID
}

func NewTracker(p *FlowParams, div int, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		Params:  p,
		Div:     max(div, 1),
		Logger:  logger,
		session: uuid.New(),
	}
}

func (t *Tracker) SessionID() uuid.UUID { return t.session }

// Run pulls frames from src until it is exhausted, ctx is cancelled or the
// sink stops the run. It returns the number of flow frames delivered.
func (t *Tracker) Run(ctx context.Context, src FrameSource, sink FlowSink) (int, error) {
	if err := t.Params.Validate(); err != nil {
		return 0, err
	}
	log := t.Logger.With("session", t.session.String())
	log.Info("uwimg: tracker starting", "params", t.Params.String(), "div", t.Div)

	prev, err := src.Next(ctx)
	if errors.Is(err, io.EOF) {
		log.Info("uwimg: source empty")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading first frame: %w", err)
	}
	prevSmall := t.downsample(prev)
	defer func() { release(prev, prevSmall) }()

	scale := t.Scale
	if scale == 0 {
		scale = DefaultDrawScale(t.Params.Smoothing, t.Div)
	}
	delivered := 0
	for index := 1; ; index++ {
		select {
		case <-ctx.Done():
			log.Info("uwimg: tracker cancelled", "frames", delivered)
			return delivered, ctx.Err()
		default:
		}

		cur, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return delivered, fmt.Errorf("reading frame %d: %w", index, err)
		}
		curSmall := t.downsample(cur)

		start := time.Now()
		v, err := OpticalFlowWithParams(curSmall, prevSmall, t.Params)
		if err != nil {
			release(cur, curSmall)
			return delivered, fmt.Errorf("flow for frame %d: %w", index, err)
		}
		overlay, err := rgbCopy(cur)
		if err == nil {
			err = DrawFlow(overlay, v, scale)
		}
		if err != nil {
			v.Close()
			release(cur, curSmall)
			return delivered, fmt.Errorf("drawing frame %d: %w", index, err)
		}

		ff := &FlowFrame{
			Index:    index,
			Frame:    cur,
			Velocity: v,
			Overlay:  overlay,
			Elapsed:  time.Since(start),
		}
		log.Debug("uwimg: flow computed", "frame", index, "elapsed", ff.Elapsed)
		sinkErr := sink(ctx, ff)
		delivered++

		v.Close()
		overlay.Close()
		release(prev, prevSmall)
		prev, prevSmall = cur, curSmall

		if errors.Is(sinkErr, ErrStopTracking) {
			log.Info("uwimg: tracker stopped by sink", "frames", delivered)
			return delivered, nil
		}
		if sinkErr != nil {
			return delivered, sinkErr
		}
	}

	log.Info("uwimg: tracker finished", "frames", delivered)
	return delivered, nil
}

func (t *Tracker) downsample(im *Image) *Image {
	if t.Div <= 1 {
		return im
	}
	return NNResize(im, im.W/t.Div, im.H/t.Div)
}

// release closes a frame and its downsampled copy when they differ.
func release(full, small *Image) {
	if small != full {
		small.Close()
	}
	full.Close()
}

// FileSequence is a FrameSource over image files, read in order.
type FileSequence struct {
	paths []string
	next  int
}

func NewFileSequence(paths ...string) *FileSequence {
	return &FileSequence{paths: paths}
}

// GlobFileSequence builds a FileSequence from the files matching pattern,
// sorted by name.
func GlobFileSequence(pattern string) (*FileSequence, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(paths)
	return NewFileSequence(paths...), nil
}

func (s *FileSequence) Next(ctx context.Context) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.paths) {
		return nil, io.EOF
	}
	path := s.paths[s.next]
	s.next++
	im, err := LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return im, nil
}

func (s *FileSequence) Close() error { return nil }

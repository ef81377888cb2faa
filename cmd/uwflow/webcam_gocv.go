//go:build gocv

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/tzuan16/uwimg/config"
	"github.com/tzuan16/uwimg/pkg/uwimg"
)

const keyEscape = 27

func runWebcam(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("webcam", flag.ContinueOnError)
	flowFlags(fs, cfg)
	fs.IntVar(&cfg.Div, "div", cfg.Div, "downsampling factor applied before flow estimation")
	fs.IntVar(&cfg.Camera, "camera", cfg.Camera, "capture device id")
	width := fs.Int("width", 1280, "requested capture width")
	height := fs.Int("height", 720, "requested capture height")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	cam, err := uwimg.OpenCamera(cfg.Camera, *width, *height)
	if err != nil {
		return err
	}
	defer cam.Close()

	window := gocv.NewWindow("flow")
	defer window.Close()

	tracker := uwimg.NewTracker(cfg.FlowParams(), cfg.Div, logger)
	tracker.Scale = cfg.DrawScale()
	_, err = tracker.Run(ctx, cam, func(ctx context.Context, f *uwimg.FlowFrame) error {
		mat, err := uwimg.ImageToMat(f.Overlay)
		if err != nil {
			return err
		}
		defer mat.Close()
		window.IMShow(mat)
		if key := window.WaitKey(5); key != -1 {
			key %= 256
			logger.Debug("uwflow: key pressed", "key", key)
			if key == keyEscape {
				return uwimg.ErrStopTracking
			}
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("webcam flow: %w", err)
	}
	return nil
}

//go:build !gocv

package main

import (
	"context"
	"log/slog"

	"github.com/tzuan16/uwimg/config"
	"github.com/tzuan16/uwimg/pkg/uwimg"
)

func runWebcam(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	_, _, _, _ = ctx, cfg, logger, args
	return uwimg.ErrCaptureUnavailable
}

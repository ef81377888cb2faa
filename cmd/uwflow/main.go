package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/tzuan16/uwimg/config"
	"github.com/tzuan16/uwimg/pkg/uwimg"
)

const usage = `usage: uwflow <command> [flags] [args]

commands:
  flow     <frame> <prev>    estimate flow between two images
  sequence <glob>            estimate flow over an ordered image sequence
  webcam                     live flow from a camera (needs -tags gocv)
  filter   <in> <out>        apply a convolution filter to an image`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%s", usage)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch args[0] {
	case "flow":
		return runFlow(cfg, args[1:])
	case "sequence":
		return runSequence(ctx, cfg, logger, args[1:])
	case "webcam":
		return runWebcam(ctx, cfg, logger, args[1:])
	case "filter":
		return runFilter(args[1:])
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

// flowFlags registers the flags shared by the flow commands, defaulting to cfg.
func flowFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.IntVar(&cfg.Smoothing, "smooth", cfg.Smoothing, "structure tensor box window")
	fs.IntVar(&cfg.Stride, "stride", cfg.Stride, "velocity sampling stride")
	fs.Float64Var(&cfg.Scale, "scale", cfg.Scale, "velocity drawing scale (0: smooth*div/8)")
	fs.StringVar(&cfg.DebugDir, "debug", cfg.DebugDir, "existing directory for intermediate TIFF dumps")
}

func runFlow(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("flow", flag.ContinueOnError)
	flowFlags(fs, cfg)
	out := fs.String("out", "flow.jpg", "overlay JPEG output")
	floOut := fs.String("flo", "", "optional Middlebury .flo output")
	plotDir := fs.String("plots", "", "optional directory for speed/velocity plots")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: uwflow flow [flags] <frame> <prev>")
	}
	cfg.Div = 1
	if err := cfg.Validate(); err != nil {
		return err
	}

	frame, err := loadImage(fs.Arg(0))
	if err != nil {
		return err
	}
	defer frame.Close()
	prev, err := loadImage(fs.Arg(1))
	if err != nil {
		return err
	}
	defer prev.Close()
	fmt.Printf("Loaded: %s (%dx%d), %s (%dx%d)\n", fs.Arg(0), frame.W, frame.H, fs.Arg(1), prev.W, prev.H)

	startTime := time.Now()
	v, err := uwimg.OpticalFlowWithParams(frame, prev, cfg.FlowParams())
	if err != nil {
		return fmt.Errorf("computing flow: %w", err)
	}
	defer v.Close()
	elapsed := time.Since(startTime)

	printMotion(v, elapsed)

	if err := uwimg.RenderFlowOverlay(frame, v, cfg.DrawScale(), *out); err != nil {
		return fmt.Errorf("rendering overlay: %w", err)
	}
	fmt.Printf("Overlay written to %s\n", *out)

	if *floOut != "" {
		if err := uwimg.WriteFlo(*floOut, v); err != nil {
			return err
		}
		fmt.Printf("Flow field written to %s\n", *floOut)
	}
	if *plotDir != "" {
		if err := uwimg.PlotSpeedHistogram(v, filepath.Join(*plotDir, "speed-histogram.png")); err != nil {
			return err
		}
		if err := uwimg.PlotVelocityScatter(v, filepath.Join(*plotDir, "velocity-scatter.png")); err != nil {
			return err
		}
		fmt.Printf("Plots written to %s\n", *plotDir)
	}
	return nil
}

func runSequence(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("sequence", flag.ContinueOnError)
	flowFlags(fs, cfg)
	fs.IntVar(&cfg.Div, "div", cfg.Div, "downsampling factor applied before flow estimation")
	outDir := fs.String("outdir", ".", "directory for per-frame overlays")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: uwflow sequence [flags] <glob>")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	src, err := uwimg.GlobFileSequence(fs.Arg(0))
	if err != nil {
		return err
	}
	defer src.Close()

	tracker := uwimg.NewTracker(cfg.FlowParams(), cfg.Div, logger)
	tracker.Scale = cfg.DrawScale()
	var speeds []float64
	n, err := tracker.Run(ctx, src, func(ctx context.Context, f *uwimg.FlowFrame) error {
		if m := uwimg.AnalyzeMotion(f.Velocity); m != nil {
			speeds = append(speeds, m.MeanSpeed)
		}
		path := filepath.Join(*outDir, fmt.Sprintf("flow-%04d.png", f.Index))
		return uwimg.SavePNG(path, f.Overlay)
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("=== Sequence Results (session %s) ===\n", tracker.SessionID())
	fmt.Printf("  Frame pairs:      %d\n", n)
	if len(speeds) > 0 {
		med, mad := medianMAD(speeds)
		fmt.Printf("  Mean speed:       %.3f +/- %.3f px/frame\n", med, mad)
	}
	fmt.Println("==============================")
	return nil
}

func runFilter(args []string) error {
	fs := flag.NewFlagSet("filter", flag.ContinueOnError)
	kernel := fs.String("kernel", "gauss", "box|gauss|highpass|sharpen|emboss|sobel")
	size := fs.Int("size", 7, "box filter width")
	sigma := fs.Float64("sigma", 2, "gaussian sigma")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: uwflow filter [flags] <in> <out>")
	}

	im, err := loadImage(fs.Arg(0))
	if err != nil {
		return err
	}
	defer im.Close()

	var result *uwimg.Image
	switch *kernel {
	case "box":
		result, err = uwimg.Convolve(im, uwimg.MakeBoxFilter(*size), true)
	case "gauss":
		result, err = uwimg.Convolve(im, uwimg.MakeGaussianFilter(float32(*sigma)), true)
	case "highpass":
		result, err = uwimg.Convolve(im, uwimg.MakeHighpassFilter(), false)
	case "sharpen":
		result, err = uwimg.Convolve(im, uwimg.MakeSharpenFilter(), true)
	case "emboss":
		result, err = uwimg.Convolve(im, uwimg.MakeEmbossFilter(), true)
	case "sobel":
		result, err = uwimg.ColorizeSobel(im)
	default:
		return fmt.Errorf("unknown kernel %q", *kernel)
	}
	if err != nil {
		return err
	}
	defer result.Close()
	uwimg.ClampImage(result)
	return uwimg.SavePNG(fs.Arg(1), result)
}

func printMotion(v *uwimg.Image, elapsed time.Duration) {
	m := uwimg.AnalyzeMotion(v)
	fmt.Println()
	fmt.Printf("=== Optical Flow Results (%.2fs) ===\n", elapsed.Seconds())
	fmt.Printf("  Field size:      %d x %d\n", v.W, v.H)
	if m == nil {
		fmt.Println("  [EMPTY FIELD]")
		fmt.Println("==============================")
		return
	}
	fmt.Printf("  Mean velocity:   (%.3f, %.3f) px/frame\n", m.MeanVX, m.MeanVY)
	fmt.Printf("  Speed:           %.3f +/- %.3f (max %.3f)\n", m.MeanSpeed, m.SpeedStdDev, m.MaxSpeed)
	fmt.Printf("  Direction:       %.1f deg\n", m.DominantAngle*180/math.Pi)
	fmt.Printf("  Moving samples:  %.1f%%\n", m.MovingFraction*100)
	fmt.Println("==============================")

	fmt.Println()
	fmt.Println("=== Zone Motion (3x3) ===")
	for i, pos := range uwimg.ZoneOrder {
		z := m.Zones[pos]
		fmt.Printf("  %-8s v=(%.2f, %.2f)  speed=%.3f  n=%d\n", z.Label, z.MeanVX, z.MeanVY, z.MeanSpeed, z.SampleCount)
		if (i+1)%3 == 0 && i < 8 {
			fmt.Println("  ---")
		}
	}
	fmt.Printf("\n  Busiest zone: %s\n", m.BusiestZone)
	fmt.Println("==============================")
}

func medianMAD(values []float64) (float64, float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	median := middle(sorted)

	deviations := make([]float64, len(sorted))
	for i := range sorted {
		deviations[i] = math.Abs(sorted[i] - median)
	}
	sort.Float64s(deviations)
	return median, 1.4826 * middle(deviations)
}

func middle(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2.0
	}
	return sorted[n/2]
}

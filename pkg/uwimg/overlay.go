package uwimg

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	overlayTargetWidth = 800
	overlaySummaryH    = 60
	legendRadius       = 22
)

// RenderFlowOverlay draws v onto a copy of frame, adds a summary band and
// writes the result as JPEG to outputPath.
func RenderFlowOverlay(frame, v *Image, scale float32, outputPath string) error {
	img, err := renderFlowImage(frame, v, scale)
	if err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create overlay file: %w", err)
	}
	defer f.Close()

	return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
}

// RenderFlowOverlayBytes is RenderFlowOverlay returning the JPEG bytes.
func RenderFlowOverlayBytes(frame, v *Image, scale float32) ([]byte, error) {
	img, err := renderFlowImage(frame, v, scale)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderFlowImage(frame, v *Image, scale float32) (*image.RGBA, error) {
	if frame.Empty() || v.Empty() {
		return nil, fmt.Errorf("no flow data to render")
	}

	canvas, err := rgbCopy(frame)
	if err != nil {
		return nil, err
	}
	defer canvas.Close()
	if err := DrawFlow(canvas, v, scale); err != nil {
		return nil, err
	}
	src, err := ToRGBA(canvas)
	if err != nil {
		return nil, err
	}

	// Render at a fixed width, proportional height
	imgW := overlayTargetWidth
	imgH := int(float64(frame.H) * float64(imgW) / float64(frame.W))
	if imgH < 100 {
		imgH = 100
	}
	totalH := imgH + overlaySummaryH

	img := image.NewRGBA(image.Rect(0, 0, imgW, totalH))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 255}), image.Point{}, xdraw.Src)

	// Nearest neighbour keeps one-pixel flow lines crisp when enlarging.
	var scaler xdraw.Scaler = xdraw.ApproxBiLinear
	if imgW > frame.W {
		scaler = xdraw.NearestNeighbor
	}
	scaler.Scale(img, image.Rect(0, 0, imgW, imgH), src, src.Bounds(), xdraw.Src, nil)

	face := basicfont.Face7x13
	summaryColor := color.RGBA{220, 220, 220, 255}
	summaryY := imgH + 20
	if m := AnalyzeMotion(v); m != nil {
		line1 := fmt.Sprintf("mean |v|: %.2f px  max: %.2f px  moving: %.0f%%", m.MeanSpeed, m.MaxSpeed, m.MovingFraction*100)
		line2 := fmt.Sprintf("dominant: %.0f deg  busiest zone: %s", m.DominantAngle*180/math.Pi, m.BusiestZone)
		drawText(img, face, line1, 10, summaryY, summaryColor)
		drawText(img, face, line2, 10, summaryY+18, summaryColor)
	}
	drawDirectionLegend(img, imgW-legendRadius-10, imgH+overlaySummaryH/2)

	return img, nil
}

// rgbCopy returns a 3-channel copy of a 1- or 3-channel image.
func rgbCopy(im *Image) (*Image, error) {
	switch im.C {
	case 3:
		return im.Clone(), nil
	case 1:
		out := NewImage(im.W, im.H, 3)
		for c := 0; c < 3; c++ {
			copy(out.Channel(c), im.Data)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("overlay of %v: %w", im, ErrChannelCount)
	}
}

// drawDirectionLegend paints a ring coloured the way DrawLine colours
// each direction.
func drawDirectionLegend(img *image.RGBA, cx, cy int) {
	for y := -legendRadius; y <= legendRadius; y++ {
		for x := -legendRadius; x <= legendRadius; x++ {
			d := math.Hypot(float64(x), float64(y))
			if d > legendRadius || d < legendRadius/2 {
				continue
			}
			r, g, b := directionColor(float32(x), float32(y))
			img.SetRGBA(cx+x, cy+y, color.RGBA{to8(r), to8(g), to8(b), 255})
		}
	}
}

// drawText draws a string at (x, y) using the given font face.
func drawText(img *image.RGBA, face font.Face, s string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

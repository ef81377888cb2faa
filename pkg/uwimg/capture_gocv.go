//go:build gocv

package uwimg

import (
	"context"
	"fmt"
	"io"

	"gocv.io/x/gocv"
)

// CameraSource reads frames from a video capture device.
type CameraSource struct {
	capture *gocv.VideoCapture
	frame   gocv.Mat
}

// OpenCamera opens capture device deviceID, requesting the given frame size.
// A zero width or height keeps the device default.
func OpenCamera(deviceID, width, height int) (*CameraSource, error) {
	capture, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", deviceID, err)
	}
	if width > 0 && height > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}
	return &CameraSource{capture: capture, frame: gocv.NewMat()}, nil
}

func (c *CameraSource) Next(ctx context.Context) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ok := c.capture.Read(&c.frame); !ok || c.frame.Empty() {
		return nil, io.EOF
	}
	return MatToImage(c.frame)
}

func (c *CameraSource) Close() error {
	c.frame.Close()
	return c.capture.Close()
}

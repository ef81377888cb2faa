//go:build !gocv

package uwimg

import "context"

// CameraSource is unavailable without the gocv build tag.
type CameraSource struct{}

// OpenCamera returns ErrCaptureUnavailable in builds without OpenCV.
func OpenCamera(deviceID, width, height int) (*CameraSource, error) {
	_, _, _ = deviceID, width, height
	return nil, ErrCaptureUnavailable
}

func (c *CameraSource) Next(ctx context.Context) (*Image, error) {
	return nil, ErrCaptureUnavailable
}

func (c *CameraSource) Close() error { return nil }

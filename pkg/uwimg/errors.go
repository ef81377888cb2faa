package uwimg

import "errors"

var (
	// ErrFilterChannels is returned when a filter has neither 1 channel nor
	// as many channels as the image it is applied to.
	ErrFilterChannels = errors.New("filter channel count must be 1 or match the image")
	ErrSizeMismatch   = errors.New("image sizes do not match")
	ErrChannelCount   = errors.New("unsupported channel count")
	ErrInvalidParam   = errors.New("invalid parameter")
)

// ErrCaptureUnavailable is returned by camera functions in builds without
// the gocv tag.
var ErrCaptureUnavailable = errors.New("gocv build tag is not enabled")

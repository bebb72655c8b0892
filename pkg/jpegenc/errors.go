package jpegenc

import "errors"

var (
	// ErrInvalidParams is returned by Params.Validate.
	ErrInvalidParams = errors.New("jpegenc: invalid parameters")

	// ErrFrameSize is returned when a raw frame does not match the configured geometry.
	ErrFrameSize = errors.New("jpegenc: raw frame size mismatch")

	// ErrClosed is returned by Process after Deinit.
	ErrClosed = errors.New("jpegenc: encoder closed")

	// ErrBroken is returned once recovery from a failed frame did not succeed.
	// The encoder can only be deinitialized.
	ErrBroken = errors.New("jpegenc: encoder unusable after failed recovery")

	// ErrProtocol is returned when the component breaks the buffer exchange,
	// for example by ending the frame before all input was sent.
	ErrProtocol = errors.New("jpegenc: component broke the buffer exchange")
)

package ports

import "context"

// ImageEncoder abstracts still-image encoding of packed raw frames.
type ImageEncoder interface {
	// Process encodes one raw frame and returns the compressed bitstream.
	Process(ctx context.Context, raw []byte) ([]byte, error)

	// Close releases encoder resources.
	Close() error
}

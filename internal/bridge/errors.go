package bridge

import "errors"

// Sentinel errors for the bridge layer.
var (
	// ErrPayloadInvalid indicates a job message that could not be decoded.
	// Such messages are dropped without a status record: no order id is
	// recoverable to key one on.
	ErrPayloadInvalid = errors.New("bridge: invalid job payload")

	// ErrNotConnected indicates an operation requiring a live transport.
	ErrNotConnected = errors.New("bridge: not connected")

	// ErrAlreadyConnected indicates Connect was called twice.
	ErrAlreadyConnected = errors.New("bridge: already connected")
)

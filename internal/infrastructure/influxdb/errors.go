package influxdb

import "errors"

// Sentinel errors, checked with errors.Is. Most write failures arrive
// asynchronously on the SetOnError callback instead; these cover the
// synchronous paths.
var (
	// ErrNotConnected: health check on a closed client.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed: the initial ping was rejected or timed out.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed wraps synchronous write rejections.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrDisabled: telemetry is off in config; callers run without a
	// sink rather than treating this as a fault.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)

package escpos

import "errors"

// Domain-specific errors for protocol translation.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrBitmapDimensions is returned when a bitmap's width or height is
	// outside the supported 1..256 range.
	ErrBitmapDimensions = errors.New("escpos: bitmap dimensions out of range")

	// ErrBitmapDataLength is returned when a packed bitmap's data length
	// does not match stride*height.
	ErrBitmapDataLength = errors.New("escpos: bitmap data length mismatch")

	// ErrPixelDataLength is returned when a pixel buffer's length does not
	// match width*height.
	ErrPixelDataLength = errors.New("escpos: pixel data length mismatch")

	// ErrEmptyQRPayload is returned when a QR code is requested with no
	// content.
	ErrEmptyQRPayload = errors.New("escpos: empty QR payload")

	// ErrQRGeneration is returned when QR matrix generation fails.
	ErrQRGeneration = errors.New("escpos: QR generation failed")
)

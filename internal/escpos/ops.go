package escpos

// Operation is one device-level step of a rendered document. The printer
// session executes operations in order and aborts on the first failure.
type Operation interface {
	isOperation()
}

// SetFormatOp applies the full formatting state to the device. Backends
// deduplicate against their own tracked state, so re-asserting an
// unchanged field costs nothing on the wire.
type SetFormatOp struct {
	State FormatState
}

func (SetFormatOp) isOperation() {}

// WriteTextOp writes literal text (already newline-terminated where the
// renderer wants a line break).
type WriteTextOp struct {
	Text string
}

func (WriteTextOp) isOperation() {}

// DrawLineOp prints a centered separator line, Thickness rows tall.
type DrawLineOp struct {
	Kind      string
	Thickness int
	Width     int
}

func (DrawLineOp) isOperation() {}

// RasterOp writes one pre-built ESC * raster band.
type RasterOp struct {
	Data []byte
}

func (RasterOp) isOperation() {}

// QRCodeOp prints a QR code. When Bitmap is set the image is rastered
// directly; otherwise the session tries the printer's native symbol
// generator first and falls back to a generated raster bitmap, then to a
// plain text line carrying the payload.
type QRCodeOp struct {
	Payload   string
	SizeClass int
	Align     Alignment
	Bitmap    *Bitmap
}

func (QRCodeOp) isOperation() {}

// FinalizeOp feeds and cuts the paper. It terminates every document,
// including empty ones.
type FinalizeOp struct{}

func (FinalizeOp) isOperation() {}

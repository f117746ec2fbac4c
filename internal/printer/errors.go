package printer

import "errors"

// Sentinel errors for printer operations. Wrap with fmt.Errorf("%w: ...")
// to add context while keeping errors.Is checks working.
var (
	// ErrNotConnected indicates an operation was attempted before Connect.
	ErrNotConnected = errors.New("printer: not connected")

	// ErrConnectFailed indicates no backend could be opened.
	ErrConnectFailed = errors.New("printer: connect failed")

	// ErrNoPrinterFound indicates auto-detection found no usable printer.
	ErrNoPrinterFound = errors.New("printer: no printer found")

	// ErrDeviceWrite indicates a write to the raw device file failed.
	ErrDeviceWrite = errors.New("printer: device write failed")

	// ErrQueueSend indicates handing a buffered document to the print
	// spooler failed.
	ErrQueueSend = errors.New("printer: queue send failed")

	// ErrStatusProbe indicates the status probe command failed.
	ErrStatusProbe = errors.New("printer: status probe failed")
)

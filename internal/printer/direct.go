package printer

import (
	"fmt"
	"io"
	"os"

	"github.com/scandeer/printbridge/internal/escpos"
)

// DirectDevice writes ESC/POS bytes straight to a character device such
// as /dev/usb/lp0. Every operation hits the wire immediately; Flush is a
// no-op.
type DirectDevice struct {
	w       io.WriteCloser
	path    string
	tracker formatTracker
}

// OpenDirect opens the device file for writing.
func OpenDirect(path string) (*DirectDevice, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrConnectFailed, path, err)
	}
	d := NewDirectDevice(f)
	d.path = path
	return d, nil
}

// NewDirectDevice wraps an already-open writer. Used directly in tests.
func NewDirectDevice(w io.WriteCloser) *DirectDevice {
	return &DirectDevice{
		w:       w,
		tracker: newFormatTracker(),
	}
}

func (d *DirectDevice) write(data []byte) error {
	if _, err := d.w.Write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceWrite, err)
	}
	return nil
}

// Init sends ESC @ and resets the tracked formatting state.
func (d *DirectDevice) Init() error {
	d.tracker.reset()
	return d.write(escpos.InitSequence())
}

func (d *DirectDevice) SetAlign(a escpos.Alignment) error {
	if !d.tracker.needAlign(a) {
		return nil
	}
	return d.write(escpos.AlignSequence(a))
}

func (d *DirectDevice) SetBold(on bool) error {
	if !d.tracker.needBold(on) {
		return nil
	}
	return d.write(escpos.BoldSequence(on))
}

func (d *DirectDevice) SetSize(size int) error {
	if !d.tracker.needSize(size) {
		return nil
	}
	return d.write(escpos.SizeSequence(size))
}

func (d *DirectDevice) WriteText(text string) error {
	return d.write([]byte(text))
}

func (d *DirectDevice) WriteRaw(data []byte) error {
	return d.write(data)
}

func (d *DirectDevice) Cut() error {
	return d.write(escpos.CutSequence())
}

// Flush is a no-op; writes are not buffered.
func (d *DirectDevice) Flush() error {
	return nil
}

func (d *DirectDevice) Close() error {
	return d.w.Close()
}

package printer

import "github.com/scandeer/printbridge/internal/escpos"

// Device is the minimal surface a printer backend must provide. The
// session drives it with rendered operations; backends decide whether
// bytes go out immediately (raw device file) or accumulate until Flush
// (spooled queue).
type Device interface {
	// Init resets the printer and the backend's tracked formatting state.
	Init() error

	// SetAlign, SetBold and SetSize change formatting. Backends skip the
	// write when the value matches what the device already has.
	SetAlign(a escpos.Alignment) error
	SetBold(on bool) error
	SetSize(size int) error

	// WriteText writes literal text bytes.
	WriteText(text string) error

	// WriteRaw writes a pre-built command sequence unmodified.
	WriteRaw(data []byte) error

	// Cut feeds and cuts the paper.
	Cut() error

	// Flush ships anything buffered. Immediate backends return nil.
	Flush() error

	// Close releases the backend. The device is unusable afterwards.
	Close() error
}

// statusProber is implemented by backends that can ask the system about
// printer condition. Backends without a probe are assumed ready while
// their writes keep succeeding.
type statusProber interface {
	probeStatus() (Status, error)
}

// formatTracker deduplicates formatting commands. The renderer re-asserts
// the full state before every text line, so without tracking every line
// would cost three extra command writes.
type formatTracker struct {
	align escpos.Alignment
	bold  bool
	size  int
}

// newFormatTracker returns a tracker matching the state after ESC @.
func newFormatTracker() formatTracker {
	return formatTracker{
		align: escpos.AlignLeft,
		bold:  false,
		size:  escpos.SizeNormal,
	}
}

func (t *formatTracker) reset() {
	*t = newFormatTracker()
}

// needAlign reports whether ESC a must be sent, recording the new value.
func (t *formatTracker) needAlign(a escpos.Alignment) bool {
	if t.align == a {
		return false
	}
	t.align = a
	return true
}

func (t *formatTracker) needBold(on bool) bool {
	if t.bold == on {
		return false
	}
	t.bold = on
	return true
}

func (t *formatTracker) needSize(size int) bool {
	if t.size == size {
		return false
	}
	t.size = size
	return true
}

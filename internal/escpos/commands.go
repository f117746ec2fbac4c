package escpos

// Control bytes.
const (
	esc byte = 0x1B
	gs  byte = 0x1D
	lf  byte = 0x0A
)

// Native QR limits.
const (
	// MaxNativeQRPayload is the longest payload stored in the printer's
	// symbol buffer. Longer payloads are truncated.
	MaxNativeQRPayload = 200

	// qrModuleSizeMin and qrModuleSizeMax bound the device dot size of one
	// QR module.
	qrModuleSizeMin = 1
	qrModuleSizeMax = 16
)

// InitSequence returns ESC @ (initialise printer, clear modes).
func InitSequence() []byte {
	return []byte{esc, '@'}
}

// AlignSequence returns ESC a n (select justification).
func AlignSequence(a Alignment) []byte {
	return []byte{esc, 'a', byte(a)}
}

// BoldSequence returns ESC E n (emphasis on/off).
func BoldSequence(on bool) []byte {
	n := byte(0)
	if on {
		n = 1
	}
	return []byte{esc, 'E', n}
}

// SizeSequence returns GS ! n (character size). Large selects double
// width and height; small and normal share the base cell.
func SizeSequence(size int) []byte {
	n := byte(0x00)
	if size == SizeLarge {
		n = 0x11
	}
	return []byte{gs, '!', n}
}

// CutSequence returns a feed followed by GS V 0 (full cut).
func CutSequence() []byte {
	return []byte{lf, lf, lf, gs, 'V', 0}
}

// FeedCutFallback returns blank lines used when the cutter is
// unavailable; the feed leaves enough paper to tear by hand.
func FeedCutFallback() []byte {
	return []byte{lf, lf, lf, lf}
}

// NativeQRSequences returns the GS ( k command sequence that prints a QR
// code using the printer's own symbol generator:
//
//  1. Select model 2
//  2. Set module size in device dots
//  3. Set error correction (fixed high)
//  4. Store payload in the symbol buffer
//  5. Print the stored symbol
//
// Payloads longer than MaxNativeQRPayload are truncated; callers warn.
// Module size is clamped to the device range [1, 16].
func NativeQRSequences(payload string, moduleSize int) [][]byte {
	if moduleSize < qrModuleSizeMin {
		moduleSize = qrModuleSizeMin
	}
	if moduleSize > qrModuleSizeMax {
		moduleSize = qrModuleSizeMax
	}

	data := []byte(payload)
	if len(data) > MaxNativeQRPayload {
		data = data[:MaxNativeQRPayload]
	}

	// Store command length covers the three function bytes plus the data.
	storeLen := len(data) + 3

	store := make([]byte, 0, len(data)+8)
	store = append(store, gs, '(', 'k', byte(storeLen&0xFF), byte(storeLen>>8), 49, 80, 48)
	store = append(store, data...)

	return [][]byte{
		{gs, '(', 'k', 4, 0, 49, 65, 50, 0},                // model 2
		{gs, '(', 'k', 3, 0, 49, 67, byte(moduleSize)},     // module size
		{gs, '(', 'k', 3, 0, 49, 69, 51},                   // error correction: high
		store,                                              // store payload
		{gs, '(', 'k', 3, 0, 49, 81, 48},                   // print symbol
	}
}

package escpos

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// QR size classes. Jobs carry a class from 1 to 16; the class maps to a
// raster edge length for bitmap rendering and a module dot size for
// native rendering.
const (
	qrSizeClassDefault = 10

	qrPixels64  = 64
	qrPixels96  = 96
	qrPixels128 = 128
	qrPixels160 = 160
	qrPixels192 = 192
)

// SizeClassToPixels maps a QR size class to the edge length in pixels of
// the rendered raster bitmap.
func SizeClassToPixels(class int) int {
	switch {
	case class <= 3:
		return qrPixels64
	case class <= 6:
		return qrPixels96
	case class <= 10:
		return qrPixels128
	case class <= 12:
		return qrPixels160
	default:
		return qrPixels192
	}
}

// SizeClassToModuleSize maps a QR size class to the native command's
// module dot size, clamped to the device range [1, 16].
func SizeClassToModuleSize(class int) int {
	var size int
	switch {
	case class <= 4:
		size = 3
	case class <= 8:
		size = 6
	case class <= 12:
		size = 10
	default:
		size = 12
	}
	if size < qrModuleSizeMin {
		size = qrModuleSizeMin
	}
	if size > qrModuleSizeMax {
		size = qrModuleSizeMax
	}
	return size
}

// ParseECLevel converts a config token ("L", "M", "Q", "H") to a
// go-qrcode recovery level. Unknown tokens fall back to medium.
func ParseECLevel(s string) qrcode.RecoveryLevel {
	switch strings.ToUpper(s) {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// BuildQRBitmap renders a QR code to a packed monochrome Bitmap for
// raster printing. The module matrix (including its quiet zone) is
// scaled nearest-neighbour to the square pixel size for the class.
func BuildQRBitmap(payload string, sizeClass int, level qrcode.RecoveryLevel) (Bitmap, error) {
	if payload == "" {
		return Bitmap{}, ErrEmptyQRPayload
	}

	q, err := qrcode.New(payload, level)
	if err != nil {
		return Bitmap{}, fmt.Errorf("%w: %w", ErrQRGeneration, err)
	}

	modules := q.Bitmap()
	n := len(modules)
	if n == 0 {
		return Bitmap{}, fmt.Errorf("%w: empty matrix", ErrQRGeneration)
	}

	target := SizeClassToPixels(sizeClass)
	pixels := make([]byte, target*target)
	for y := 0; y < target; y++ {
		srcY := y * n / target
		for x := 0; x < target; x++ {
			srcX := x * n / target
			if modules[srcY][srcX] {
				pixels[y*target+x] = 0
			} else {
				pixels[y*target+x] = 255
			}
		}
	}

	return EncodeBitmap(pixels, target, target)
}

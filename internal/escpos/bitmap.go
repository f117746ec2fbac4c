package escpos

import "fmt"

// Bitmap limits and thresholds.
const (
	// MaxBitmapDimension bounds bitmap width and height. Receipt paper is
	// 384 dots wide at most; 256 leaves margin for alignment and caps
	// memory for hostile payloads.
	MaxBitmapDimension = 256

	// blackThreshold is the grayscale cutoff: values below it are black.
	blackThreshold = 128

	// bandHeight is the number of scanlines per raster band (8-dot mode).
	bandHeight = 8
)

// Bitmap is a 1-bit-per-pixel monochrome image, packed MSB-first in
// row-major order. A set bit is a black pixel.
type Bitmap struct {
	Width  int
	Height int
	Data   []byte
}

// Stride returns the number of packed bytes per row.
func (b Bitmap) Stride() int {
	return (b.Width + 7) / 8
}

// Validate checks dimensions and data length.
func (b Bitmap) Validate() error {
	if b.Width < 1 || b.Width > MaxBitmapDimension ||
		b.Height < 1 || b.Height > MaxBitmapDimension {
		return fmt.Errorf("%w: %dx%d", ErrBitmapDimensions, b.Width, b.Height)
	}
	if want := b.Stride() * b.Height; len(b.Data) != want {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrBitmapDataLength, len(b.Data), want)
	}
	return nil
}

// EncodeBitmap packs 8-bit grayscale pixels into a 1bpp Bitmap.
//
// Pixels below the black threshold (128) become set bits. The pixel
// buffer is row-major, one byte per pixel, length width*height.
func EncodeBitmap(pixels []byte, width, height int) (Bitmap, error) {
	b := Bitmap{Width: width, Height: height}
	if width < 1 || width > MaxBitmapDimension ||
		height < 1 || height > MaxBitmapDimension {
		return Bitmap{}, fmt.Errorf("%w: %dx%d", ErrBitmapDimensions, width, height)
	}
	if len(pixels) != width*height {
		return Bitmap{}, fmt.Errorf("%w: have %d pixels, want %d", ErrPixelDataLength, len(pixels), width*height)
	}

	stride := b.Stride()
	b.Data = make([]byte, stride*height)
	for y := 0; y < height; y++ {
		row := y * stride
		for x := 0; x < width; x++ {
			if pixels[y*width+x] < blackThreshold {
				b.Data[row+x/8] |= 0x80 >> (x % 8)
			}
		}
	}
	return b, nil
}

// Decode unpacks the bitmap into 8-bit grayscale pixels: set bits become
// 0 (black), clear bits 255 (white). Pixels beyond the packed data
// (impossible after Validate, but tolerated) decode as white.
func (b Bitmap) Decode() ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	stride := b.Stride()
	pixels := make([]byte, b.Width*b.Height)
	for y := 0; y < b.Height; y++ {
		row := y * stride
		for x := 0; x < b.Width; x++ {
			idx := row + x/8
			if idx < len(b.Data) && b.Data[idx]&(0x80>>(x%8)) != 0 {
				pixels[y*b.Width+x] = 0
			} else {
				pixels[y*b.Width+x] = 255
			}
		}
	}
	return pixels, nil
}

// RasterOps converts the bitmap to ESC * raster bands.
//
// The image is sliced into bands of 8 scanlines. Each band is one
// operation: ESC * 0 nL nH, one column byte per pixel of width (bit 0 is
// the band's top scanline), then a line feed to advance the paper.
func (b Bitmap) RasterOps() ([]RasterOp, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	stride := b.Stride()
	bands := (b.Height + bandHeight - 1) / bandHeight
	ops := make([]RasterOp, 0, bands)

	for band := 0; band < bands; band++ {
		data := make([]byte, 0, b.Width+6)
		data = append(data, esc, '*', 0, byte(b.Width&0xFF), byte(b.Width>>8))

		top := band * bandHeight
		for x := 0; x < b.Width; x++ {
			var col byte
			for bit := 0; bit < bandHeight; bit++ {
				y := top + bit
				if y >= b.Height {
					break
				}
				if b.Data[y*stride+x/8]&(0x80>>(x%8)) != 0 {
					col |= 1 << bit
				}
			}
			data = append(data, col)
		}

		data = append(data, lf)
		ops = append(ops, RasterOp{Data: data})
	}

	return ops, nil
}

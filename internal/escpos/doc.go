// Package escpos translates receipt documents into ESC/POS device operations.
//
// This package is pure protocol logic: it never touches a device. It turns
// the JSON element stream carried in print jobs into an ordered list of
// device operations that internal/printer executes against a backend.
//
// # Architecture
//
//	┌─────────────────┐          ┌─────────────────┐          ┌──────────────┐
//	│   Print Job     │  render  │     escpos      │  execute │   printer    │
//	│  (JSON elements)│─────────►│   (this pkg)    │─────────►│   backend    │
//	└─────────────────┘          └─────────────────┘          └──────────────┘
//
// # Key Responsibilities
//
//   - Track text formatting state (alignment, bold, size) across a document
//   - Render document elements to device operations in order
//   - Pack grayscale images into 1-bit raster bands (ESC *)
//   - Generate QR codes, both as native GS ( k sequences and as raster bitmaps
//   - Build separator line patterns
//
// # Formatting Model
//
// A document starts from a known default state (left aligned, not bold,
// normal size). Format directives mutate the state; only fields that
// actually change produce device traffic. The state is never carried
// between documents.
//
// # Thread Safety
//
// Renderer instances are not safe for concurrent use. Create one per
// document; they are cheap.
package escpos

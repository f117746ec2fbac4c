package escpos

import "strings"

// Element is one entry of a document's receipt data. Each JSON entry in
// a job decodes to exactly one element; shapes that carry several keys
// resolve to a single element by a fixed precedence (page meta, then
// order meta, then format, then line, then QR, then text).
type Element interface {
	isElement()
}

// TextLine is a printable line of text.
type TextLine string

func (TextLine) isElement() {}

// LineDirective prints a separator line.
type LineDirective struct {
	Kind      string
	Thickness int
	Width     int
	Spacing   int
}

func (LineDirective) isElement() {}

// QRDirective prints a QR code. Bitmap, when set, is a pre-rendered
// image supplied by the job; otherwise Payload is encoded on demand.
type QRDirective struct {
	Payload   string
	SizeClass int
	Align     Alignment
	Bitmap    *Bitmap
}

func (QRDirective) isElement() {}

// PageMeta carries the page position within a multi-page order. It
// produces no device output.
type PageMeta struct {
	Page int
	Of   int
}

func (PageMeta) isElement() {}

// OrderMeta carries the order identifier. It produces no device output.
type OrderMeta struct {
	OrderID string
}

func (OrderMeta) isElement() {}

// Document is a decoded print job ready for rendering.
type Document struct {
	OrderID    string
	Page       int
	TotalPages int
	Elements   []Element
}

// Logger is the narrow logging interface the renderer needs.
type Logger interface {
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// Renderer turns a Document into an ordered operation list.
//
// A renderer carries per-document state (the FormatState and the
// one-QR-per-document guard); create a fresh one for each document.
type Renderer struct {
	state  FormatState
	logger Logger
}

// NewRenderer creates a renderer with the document-start format state.
func NewRenderer(logger Logger) *Renderer {
	return &Renderer{
		state:  NewFormatState(),
		logger: logger,
	}
}

// qrTextPrefix marks text lines that duplicate a QR payload for humans.
// They are suppressed: the QR directive is the authoritative rendering.
const qrTextPrefix = "QR:"

// Render converts the document's elements to device operations.
//
// Rules:
//   - Format directives update the state; device traffic is emitted only
//     when something actually changed.
//   - The current state is re-asserted before every text line, so
//     operations that move the print position (separator lines, QR
//     alignment) cannot leak formatting into later text.
//   - Only the first QR directive prints; later ones are logged and
//     dropped.
//   - Text lines starting with "QR:" are suppressed.
//   - Page and order meta produce no output.
//   - Every document ends with a FinalizeOp, even an empty one.
func (r *Renderer) Render(doc Document) []Operation {
	r.state.Reset()
	ops := make([]Operation, 0, len(doc.Elements)*2+1)
	qrPrinted := false

	for _, el := range doc.Elements {
		switch e := el.(type) {
		case PageMeta, OrderMeta:
			// Metadata only; tracked by the caller, nothing to print.

		case FormatDirective:
			if ch := r.state.Apply(e); !ch.Empty() {
				ops = append(ops, SetFormatOp{State: r.state})
			}

		case LineDirective:
			ops = append(ops, DrawLineOp{
				Kind:      e.Kind,
				Thickness: e.Thickness,
				Width:     e.Width,
			})

		case QRDirective:
			if qrPrinted {
				r.logger.Warn("dropping extra QR code, one per document",
					"order_id", doc.OrderID,
				)
				continue
			}
			qrPrinted = true
			ops = append(ops, QRCodeOp{
				Payload:   e.Payload,
				SizeClass: e.SizeClass,
				Align:     e.Align,
				Bitmap:    e.Bitmap,
			})

		case TextLine:
			text := string(e)
			if strings.HasPrefix(text, qrTextPrefix) {
				r.logger.Debug("suppressing QR text line", "order_id", doc.OrderID)
				continue
			}
			if text == "" {
				ops = append(ops, WriteTextOp{Text: "\n"})
				continue
			}
			ops = append(ops, SetFormatOp{State: r.state}, WriteTextOp{Text: text + "\n"})

		default:
			r.logger.Warn("skipping unknown receipt element", "order_id", doc.OrderID)
		}
	}

	return append(ops, FinalizeOp{})
}

package escpos

import "strings"

// Alignment is the horizontal alignment of printed content.
type Alignment int

// Supported alignments, in ESC/POS argument order.
const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// String returns the lowercase name of the alignment.
func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// ParseAlignment converts an alignment token to an Alignment.
//
// Accepted tokens (case-insensitive): "l", "left", "c", "center",
// "centre", "r", "right". The second return value is false for anything
// else; callers ignore unrecognised tokens rather than failing the
// document.
func ParseAlignment(s string) (Alignment, bool) {
	switch strings.ToLower(s) {
	case "l", "left":
		return AlignLeft, true
	case "c", "center", "centre":
		return AlignCenter, true
	case "r", "right":
		return AlignRight, true
	default:
		return AlignLeft, false
	}
}

// Text sizes. Small and normal map to the same device mode; large doubles
// width and height.
const (
	SizeSmall  = 0
	SizeNormal = 1
	SizeLarge  = 2
)

// FormatState is the cumulative text formatting for a document.
//
// Italic and underline are tracked for completeness but most thermal
// printers ignore them; no device traffic is generated for those fields.
type FormatState struct {
	Align     Alignment
	Bold      bool
	Size      int
	Italic    bool
	Underline bool
}

// NewFormatState returns the document-start state: left aligned, not bold,
// normal size, no italic, no underline.
func NewFormatState() FormatState {
	return FormatState{
		Align: AlignLeft,
		Size:  SizeNormal,
	}
}

// Reset returns the state to the document-start defaults.
func (s *FormatState) Reset() {
	*s = NewFormatState()
}

// FormatDirective is a partial formatting update. Nil fields are absent
// and leave the corresponding state untouched.
type FormatDirective struct {
	Align     *string
	Bold      *bool
	Size      *int
	Italic    *bool
	Underline *bool
}

func (FormatDirective) isElement() {}

// FormatChangeset describes which fields a directive actually changed.
// Nil fields were either absent, invalid, or already at the target value.
type FormatChangeset struct {
	Align     *Alignment
	Bold      *bool
	Size      *int
	Italic    *bool
	Underline *bool
}

// Empty reports whether the changeset contains no changes.
func (c FormatChangeset) Empty() bool {
	return c.Align == nil && c.Bold == nil && c.Size == nil &&
		c.Italic == nil && c.Underline == nil
}

// Apply merges a directive into the state and returns the changeset of
// fields that actually changed.
//
// Invalid values (unknown alignment tokens, out-of-range sizes) are
// ignored. Re-asserting the current value produces no change.
func (s *FormatState) Apply(d FormatDirective) FormatChangeset {
	var ch FormatChangeset

	if d.Align != nil {
		if a, ok := ParseAlignment(*d.Align); ok && a != s.Align {
			s.Align = a
			ch.Align = &a
		}
	}

	if d.Bold != nil && *d.Bold != s.Bold {
		s.Bold = *d.Bold
		b := *d.Bold
		ch.Bold = &b
	}

	if d.Size != nil {
		if sz := *d.Size; sz >= SizeSmall && sz <= SizeLarge && sz != s.Size {
			s.Size = sz
			ch.Size = &sz
		}
	}

	if d.Italic != nil && *d.Italic != s.Italic {
		s.Italic = *d.Italic
		v := *d.Italic
		ch.Italic = &v
	}

	if d.Underline != nil && *d.Underline != s.Underline {
		s.Underline = *d.Underline
		v := *d.Underline
		ch.Underline = &v
	}

	return ch
}

package escpos

import "strings"

// Separator line defaults. 48 characters fills an 80mm receipt at the
// normal character size.
const (
	DefaultLineWidth     = 48
	DefaultLineThickness = 1
)

// linePatternChars maps line kinds to their repeat character.
var linePatternChars = map[string]string{
	"solid":  "─",
	"dotted": "·",
	"double": "═",
}

// LinePattern builds the character pattern for a separator line. Unknown
// kinds render as plain dashes; non-positive widths use the default.
func LinePattern(kind string, width int) string {
	if width <= 0 {
		width = DefaultLineWidth
	}
	ch, ok := linePatternChars[strings.ToLower(kind)]
	if !ok {
		ch = "-"
	}
	return strings.Repeat(ch, width)
}

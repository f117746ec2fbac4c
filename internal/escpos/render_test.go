package escpos

import (
	"strings"
	"testing"
)

// testLogger records warnings for assertions.
type testLogger struct {
	warns  []string
	debugs []string
}

func (l *testLogger) Warn(msg string, args ...any)  { l.warns = append(l.warns, msg) }
func (l *testLogger) Debug(msg string, args ...any) { l.debugs = append(l.debugs, msg) }

func render(t *testing.T, elements ...Element) []Operation {
	t.Helper()
	r := NewRenderer(&testLogger{})
	return r.Render(Document{OrderID: "order-1", Page: 1, TotalPages: 1, Elements: elements})
}

func TestRender_EmptyDocumentStillFinalizes(t *testing.T) {
	ops := render(t)

	if len(ops) != 1 {
		t.Fatalf("ops = %d, want 1", len(ops))
	}
	if _, ok := ops[0].(FinalizeOp); !ok {
		t.Errorf("ops[0] = %T, want FinalizeOp", ops[0])
	}
}

func TestRender_FormatThenText(t *testing.T) {
	ops := render(t,
		FormatDirective{Align: strPtr("c"), Bold: boolPtr(true), Size: intPtr(SizeLarge)},
		TextLine("HELLO"),
	)

	// SetFormat (directive), SetFormat (before text), WriteText, Finalize.
	if len(ops) != 4 {
		t.Fatalf("ops = %d, want 4: %#v", len(ops), ops)
	}

	sf, ok := ops[0].(SetFormatOp)
	if !ok {
		t.Fatalf("ops[0] = %T, want SetFormatOp", ops[0])
	}
	want := FormatState{Align: AlignCenter, Bold: true, Size: SizeLarge}
	if sf.State != want {
		t.Errorf("state = %+v, want %+v", sf.State, want)
	}

	wt, ok := ops[2].(WriteTextOp)
	if !ok {
		t.Fatalf("ops[2] = %T, want WriteTextOp", ops[2])
	}
	if wt.Text != "HELLO\n" {
		t.Errorf("text = %q, want %q", wt.Text, "HELLO\n")
	}

	if _, ok := ops[3].(FinalizeOp); !ok {
		t.Errorf("last op = %T, want FinalizeOp", ops[3])
	}
}

func TestRender_NoOpFormatEmitsNothing(t *testing.T) {
	ops := render(t,
		FormatDirective{Align: strPtr("l")}, // already left
		FormatDirective{},                   // empty
	)

	if len(ops) != 1 {
		t.Fatalf("ops = %d, want 1 (finalize only): %#v", len(ops), ops)
	}
}

func TestRender_StateReassertedBeforeEachTextLine(t *testing.T) {
	ops := render(t,
		FormatDirective{Align: strPtr("c")},
		TextLine("FIRST"),
		LineDirective{Kind: "solid"},
		TextLine("SECOND"),
	)

	// Every text line is preceded by a SetFormatOp carrying the current
	// state, so the centered separator cannot leak alignment.
	var setsBeforeText int
	for i, op := range ops {
		if _, ok := op.(WriteTextOp); ok {
			if i == 0 {
				t.Fatal("text op without preceding format")
			}
			if sf, ok := ops[i-1].(SetFormatOp); ok {
				setsBeforeText++
				if sf.State.Align != AlignCenter {
					t.Errorf("format before text = %v, want center", sf.State.Align)
				}
			}
		}
	}
	if setsBeforeText != 2 {
		t.Errorf("format ops before text = %d, want 2", setsBeforeText)
	}
}

func TestRender_EmptyTextIsBareNewline(t *testing.T) {
	ops := render(t, TextLine(""))

	if len(ops) != 2 {
		t.Fatalf("ops = %d, want 2: %#v", len(ops), ops)
	}
	wt, ok := ops[0].(WriteTextOp)
	if !ok || wt.Text != "\n" {
		t.Errorf("ops[0] = %#v, want bare newline", ops[0])
	}
}

func TestRender_QRTextLineSuppressed(t *testing.T) {
	ops := render(t,
		TextLine("QR: https://example.com/r/42"),
		TextLine("KEPT"),
	)

	for _, op := range ops {
		if wt, ok := op.(WriteTextOp); ok && strings.HasPrefix(wt.Text, "QR:") {
			t.Errorf("QR text line leaked into output: %q", wt.Text)
		}
	}

	var kept bool
	for _, op := range ops {
		if wt, ok := op.(WriteTextOp); ok && wt.Text == "KEPT\n" {
			kept = true
		}
	}
	if !kept {
		t.Error("non-QR text line missing from output")
	}
}

func TestRender_OneQRPerDocument(t *testing.T) {
	logger := &testLogger{}
	r := NewRenderer(logger)

	ops := r.Render(Document{Elements: []Element{
		QRDirective{Payload: "first", SizeClass: 10, Align: AlignCenter},
		QRDirective{Payload: "second", SizeClass: 10, Align: AlignCenter},
	}})

	var qrOps []QRCodeOp
	for _, op := range ops {
		if q, ok := op.(QRCodeOp); ok {
			qrOps = append(qrOps, q)
		}
	}

	if len(qrOps) != 1 {
		t.Fatalf("QR ops = %d, want 1", len(qrOps))
	}
	if qrOps[0].Payload != "first" {
		t.Errorf("kept payload = %q, want %q (first wins)", qrOps[0].Payload, "first")
	}
	if len(logger.warns) == 0 {
		t.Error("dropping the extra QR should warn")
	}
}

func TestRender_MetadataProducesNoOutput(t *testing.T) {
	ops := render(t,
		PageMeta{Page: 1, Of: 3},
		OrderMeta{OrderID: "order-99"},
	)

	if len(ops) != 1 {
		t.Fatalf("ops = %d, want 1 (finalize only): %#v", len(ops), ops)
	}
}

func TestRender_LineDirective(t *testing.T) {
	ops := render(t, LineDirective{Kind: "dotted", Thickness: 2, Width: 32})

	dl, ok := ops[0].(DrawLineOp)
	if !ok {
		t.Fatalf("ops[0] = %T, want DrawLineOp", ops[0])
	}
	if dl.Kind != "dotted" || dl.Thickness != 2 || dl.Width != 32 {
		t.Errorf("DrawLineOp = %+v", dl)
	}
}

func TestRender_StateResetsBetweenDocuments(t *testing.T) {
	r := NewRenderer(&testLogger{})

	r.Render(Document{Elements: []Element{
		FormatDirective{Align: strPtr("r"), Bold: boolPtr(true)},
		TextLine("ONE"),
	}})

	// Same renderer, new document: the right/bold state must not carry over.
	ops := r.Render(Document{Elements: []Element{
		TextLine("TWO"),
	}})

	sf, ok := ops[0].(SetFormatOp)
	if !ok {
		t.Fatalf("ops[0] = %T, want SetFormatOp", ops[0])
	}
	if sf.State != NewFormatState() {
		t.Errorf("state = %+v, want document-start defaults", sf.State)
	}
}

func TestRender_RestaurantReceiptScenario(t *testing.T) {
	bold := true
	ops := render(t,
		FormatDirective{Align: strPtr("c"), Bold: &bold, Size: intPtr(SizeLarge)},
		TextLine("EASTSIDE CAFE"),
		FormatDirective{Align: strPtr("l"), Bold: boolPtr(false), Size: intPtr(SizeNormal)},
		LineDirective{Kind: "solid"},
		TextLine("1x Flat White            4.50"),
		TextLine(""),
		QRDirective{Payload: "https://example.com/r/42", SizeClass: 10, Align: AlignCenter},
	)

	if _, ok := ops[len(ops)-1].(FinalizeOp); !ok {
		t.Fatalf("last op = %T, want FinalizeOp", ops[len(ops)-1])
	}

	var texts, qrs, lines int
	for _, op := range ops {
		switch op.(type) {
		case WriteTextOp:
			texts++
		case QRCodeOp:
			qrs++
		case DrawLineOp:
			lines++
		}
	}
	if texts != 3 {
		t.Errorf("text ops = %d, want 3", texts)
	}
	if qrs != 1 {
		t.Errorf("QR ops = %d, want 1", qrs)
	}
	if lines != 1 {
		t.Errorf("line ops = %d, want 1", lines)
	}
}

func TestLinePattern(t *testing.T) {
	tests := []struct {
		kind  string
		width int
		want  string
	}{
		{"solid", 4, "────"},
		{"dotted", 3, "···"},
		{"double", 2, "══"},
		{"SOLID", 2, "──"},
		{"wavy", 4, "----"},
		{"", 4, "----"},
	}

	for _, tt := range tests {
		if got := LinePattern(tt.kind, tt.width); got != tt.want {
			t.Errorf("LinePattern(%q, %d) = %q, want %q", tt.kind, tt.width, got, tt.want)
		}
	}
}

func TestLinePattern_DefaultWidth(t *testing.T) {
	got := LinePattern("solid", 0)
	if len([]rune(got)) != DefaultLineWidth {
		t.Errorf("default width = %d runes, want %d", len([]rune(got)), DefaultLineWidth)
	}
}

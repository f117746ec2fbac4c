package bridge

import (
	"errors"
	"testing"

	"github.com/scandeer/printbridge/internal/escpos"
)

func TestDecodeJob_FullReceipt(t *testing.T) {
	payload := []byte(`{
		"order_id": "order-42",
		"page": 1,
		"total_pages": 2,
		"table": "7",
		"receipt_data": [
			{"f": {"a": "c", "b": true, "s": 2}},
			"EASTSIDE CAFE",
			{"line": "solid"},
			{"f": {"a": "l", "b": false, "s": 1}},
			"Order {{order_id}} - Table {{table}}",
			"1x Flat White            4.50",
			{"qr_url": "https://example.com/r/{{order_id}}", "qr_size": 8, "qr_alignment": "c"},
			{"page": 1, "of": 2}
		]
	}`)

	doc, err := DecodeJob(payload, nil)
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}

	if doc.OrderID != "order-42" || doc.Page != 1 || doc.TotalPages != 2 {
		t.Errorf("envelope = %q/%d/%d, want order-42/1/2", doc.OrderID, doc.Page, doc.TotalPages)
	}
	if len(doc.Elements) != 8 {
		t.Fatalf("elements = %d, want 8", len(doc.Elements))
	}

	f, ok := doc.Elements[0].(escpos.FormatDirective)
	if !ok {
		t.Fatalf("elements[0] = %T, want FormatDirective", doc.Elements[0])
	}
	if f.Align == nil || *f.Align != "c" || f.Bold == nil || !*f.Bold || f.Size == nil || *f.Size != 2 {
		t.Errorf("format = %+v, want center/bold/large", f)
	}

	if text, ok := doc.Elements[4].(escpos.TextLine); !ok || string(text) != "Order order-42 - Table 7" {
		t.Errorf("elements[4] = %#v, want substituted text", doc.Elements[4])
	}

	qr, ok := doc.Elements[6].(escpos.QRDirective)
	if !ok {
		t.Fatalf("elements[6] = %T, want QRDirective", doc.Elements[6])
	}
	if qr.Payload != "https://example.com/r/order-42" {
		t.Errorf("QR payload = %q, want substituted URL", qr.Payload)
	}
	if qr.SizeClass != 8 || qr.Align != escpos.AlignCenter {
		t.Errorf("QR = size %d align %v, want 8/center", qr.SizeClass, qr.Align)
	}

	if pm, ok := doc.Elements[7].(escpos.PageMeta); !ok || pm.Page != 1 || pm.Of != 2 {
		t.Errorf("elements[7] = %#v, want PageMeta{1,2}", doc.Elements[7])
	}
}

func TestDecodeJob_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "not json at all"},
		{"wrong type", `"just a string"`},
		{"missing order id", `{"page": 1, "receipt_data": ["X"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJob([]byte(tt.payload), nil)
			if !errors.Is(err, ErrPayloadInvalid) {
				t.Errorf("DecodeJob() error = %v, want ErrPayloadInvalid", err)
			}
		})
	}
}

func TestDecodeJob_UnmatchedPlaceholderKept(t *testing.T) {
	payload := []byte(`{"order_id": "o1", "receipt_data": ["Hello {{nobody}}"]}`)

	doc, err := DecodeJob(payload, nil)
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}
	if text := doc.Elements[0].(escpos.TextLine); string(text) != "Hello {{nobody}}" {
		t.Errorf("text = %q, want placeholder untouched", text)
	}
}

func TestDecodeJob_LooseFormatValues(t *testing.T) {
	// Firmware-sourced jobs carry booleans as numbers and quoted strings.
	payload := []byte(`{"order_id": "o1", "receipt_data": [
		{"f": {"b": 1, "i": "true", "u": "0", "s": "2"}}
	]}`)

	doc, err := DecodeJob(payload, nil)
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}

	f := doc.Elements[0].(escpos.FormatDirective)
	if f.Bold == nil || !*f.Bold {
		t.Error("b:1 should parse as bold on")
	}
	if f.Italic == nil || !*f.Italic {
		t.Error(`i:"true" should parse as italic on`)
	}
	if f.Underline == nil || *f.Underline {
		t.Error(`u:"0" should parse as underline off`)
	}
	if f.Size == nil || *f.Size != 2 {
		t.Error(`s:"2" should parse as size 2`)
	}
}

func TestDecodeJob_LineForms(t *testing.T) {
	payload := []byte(`{"order_id": "o1", "receipt_data": [
		{"line": "dotted"},
		{"line": {"type": "double", "thickness": 2, "width": 32}}
	]}`)

	doc, err := DecodeJob(payload, nil)
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}

	if l := doc.Elements[0].(escpos.LineDirective); l.Kind != "dotted" {
		t.Errorf("short line = %+v, want dotted", l)
	}
	l := doc.Elements[1].(escpos.LineDirective)
	if l.Kind != "double" || l.Thickness != 2 || l.Width != 32 {
		t.Errorf("long line = %+v, want double/2/32", l)
	}
}

func TestDecodeJob_QRForms(t *testing.T) {
	payload := []byte(`{"order_id": "o1", "receipt_data": [
		{"qr": "https://a.example"},
		{"qr": {"text": "https://b.example"}},
		{"qr": {"url": "https://c.example"}}
	]}`)

	doc, err := DecodeJob(payload, nil)
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}

	want := []string{"https://a.example", "https://b.example", "https://c.example"}
	for i, w := range want {
		qr, ok := doc.Elements[i].(escpos.QRDirective)
		if !ok {
			t.Fatalf("elements[%d] = %T, want QRDirective", i, doc.Elements[i])
		}
		if qr.Payload != w {
			t.Errorf("elements[%d] payload = %q, want %q", i, qr.Payload, w)
		}
		if qr.SizeClass != defaultQRSizeClass {
			t.Errorf("elements[%d] size = %d, want default %d", i, qr.SizeClass, defaultQRSizeClass)
		}
	}
}

func TestDecodeJob_QRBitmap(t *testing.T) {
	// 8x1 half-black row, packed 0xF0, base64 "8A==".
	payload := []byte(`{"order_id": "o1", "receipt_data": [
		{"qr_bitmap": {"width": 8, "height": 1, "data": "8A=="}}
	]}`)

	doc, err := DecodeJob(payload, nil)
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}

	qr := doc.Elements[0].(escpos.QRDirective)
	if qr.Bitmap == nil {
		t.Fatal("QR bitmap missing")
	}
	if qr.Bitmap.Width != 8 || qr.Bitmap.Height != 1 || qr.Bitmap.Data[0] != 0xF0 {
		t.Errorf("bitmap = %+v, want 8x1 0xF0", qr.Bitmap)
	}
}

func TestDecodeJob_InvalidQRBitmapSkipped(t *testing.T) {
	// Data length does not match stride*height.
	payload := []byte(`{"order_id": "o1", "receipt_data": [
		{"qr_bitmap": {"width": 8, "height": 2, "data": "8A=="}},
		"STILL HERE"
	]}`)

	doc, err := DecodeJob(payload, nil)
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}
	if len(doc.Elements) != 1 {
		t.Fatalf("elements = %d, want 1 (bad bitmap skipped)", len(doc.Elements))
	}
	if text := doc.Elements[0].(escpos.TextLine); string(text) != "STILL HERE" {
		t.Errorf("surviving element = %#v", doc.Elements[0])
	}
}

func TestDecodeJob_UnknownElementSkipped(t *testing.T) {
	payload := []byte(`{"order_id": "o1", "receipt_data": [
		{"mystery": true},
		42,
		"KEPT"
	]}`)

	doc, err := DecodeJob(payload, nil)
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}
	if len(doc.Elements) != 1 {
		t.Fatalf("elements = %d, want 1", len(doc.Elements))
	}
}

func TestDecodeJob_CombinedKeysUsePrecedence(t *testing.T) {
	// One object carrying format, line, and QR keys resolves to a single
	// element: format outranks the others.
	payload := []byte(`{"order_id": "o1", "receipt_data": [
		{"f": {"a": "c"}, "line": "solid", "qr_url": "https://x.example"}
	]}`)

	doc, err := DecodeJob(payload, nil)
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}
	if len(doc.Elements) != 1 {
		t.Fatalf("elements = %d, want exactly 1", len(doc.Elements))
	}
	if _, ok := doc.Elements[0].(escpos.FormatDirective); !ok {
		t.Errorf("element = %T, want FormatDirective to win precedence", doc.Elements[0])
	}
}

func TestDecodeJob_OrderMeta(t *testing.T) {
	payload := []byte(`{"order_id": "o1", "receipt_data": [{"m": {"order_id": "o1"}}]}`)

	doc, err := DecodeJob(payload, nil)
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}
	if om, ok := doc.Elements[0].(escpos.OrderMeta); !ok || om.OrderID != "o1" {
		t.Errorf("element = %#v, want OrderMeta{o1}", doc.Elements[0])
	}
}

func TestSubstitute(t *testing.T) {
	vars := map[string]string{"order_id": "o9", "page": "2", "ready": "true"}

	tests := []struct {
		input string
		want  string
	}{
		{"Order {{order_id}}", "Order o9"},
		{"Page {{page}} ready={{ready}}", "Page 2 ready=true"},
		{"{{order_id}}{{order_id}}", "o9o9"},
		{"{{missing}}", "{{missing}}"},
		{"no placeholders", "no placeholders"},
	}

	for _, tt := range tests {
		if got := substitute(tt.input, vars); got != tt.want {
			t.Errorf("substitute(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLooseBool(t *testing.T) {
	tests := []struct {
		raw    string
		want   bool
		wantOK bool
	}{
		{"true", true, true},
		{"false", false, true},
		{"1", true, true},
		{"0", false, true},
		{`"true"`, true, true},
		{`"on"`, true, true},
		{`"0"`, false, true},
		{`"maybe"`, false, false},
		{`[1]`, false, false},
	}

	for _, tt := range tests {
		got, ok := looseBool([]byte(tt.raw))
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("looseBool(%s) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

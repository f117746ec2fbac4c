package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/scandeer/printbridge/internal/escpos"
)

// Logger defines the logging interface for the bridge.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// defaultQRSizeClass is used when a QR element omits its size.
const defaultQRSizeClass = 10

// jobEnvelope is the top-level job message on the job topic.
type jobEnvelope struct {
	OrderID     string            `json:"order_id"`
	Page        int               `json:"page"`
	TotalPages  int               `json:"total_pages"`
	ReceiptData []json.RawMessage `json:"receipt_data"`
}

// DecodeJob parses a job payload into a renderable document.
//
// Template variables of the form {{name}} in string-valued element
// fields are substituted from the job record's own top-level scalar
// fields; unmatched placeholders are left untouched.
//
// Each receipt_data entry decodes to exactly one element. Entries that
// carry several directive keys resolve by a fixed precedence: page meta,
// then order meta, then format, then line, then QR. Entries of unknown
// shape are logged and skipped; they do not fail the document.
func DecodeJob(payload []byte, logger Logger) (escpos.Document, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	var env jobEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return escpos.Document{}, fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}
	if env.OrderID == "" {
		return escpos.Document{}, fmt.Errorf("%w: missing order_id", ErrPayloadInvalid)
	}

	vars := templateVars(payload)

	doc := escpos.Document{
		OrderID:    env.OrderID,
		Page:       env.Page,
		TotalPages: env.TotalPages,
		Elements:   make([]escpos.Element, 0, len(env.ReceiptData)),
	}

	for i, raw := range env.ReceiptData {
		el, ok := decodeElement(raw, vars, logger)
		if !ok {
			logger.Warn("skipping undecodable receipt element",
				"order_id", env.OrderID,
				"index", i,
			)
			continue
		}
		doc.Elements = append(doc.Elements, el)
	}

	return doc, nil
}

// templateVars collects the job's top-level scalar fields as substitution
// variables. Numbers keep their wire form (no float formatting).
func templateVars(payload []byte) map[string]string {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var top map[string]any
	if err := dec.Decode(&top); err != nil {
		return nil
	}

	vars := make(map[string]string, len(top))
	for key, value := range top {
		switch v := value.(type) {
		case string:
			vars[key] = v
		case json.Number:
			vars[key] = v.String()
		case bool:
			vars[key] = strconv.FormatBool(v)
		}
	}
	return vars
}

// substitute replaces {{name}} placeholders. Unmatched placeholders stay
// in the text so a misspelled variable is visible on paper.
func substitute(s string, vars map[string]string) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	for key, value := range vars {
		s = strings.ReplaceAll(s, "{{"+key+"}}", value)
	}
	return s
}

// decodeElement turns one receipt_data entry into an element.
func decodeElement(raw json.RawMessage, vars map[string]string, logger Logger) (escpos.Element, bool) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return escpos.TextLine(substitute(text, vars)), true
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}

	// Directive keys are mutually exclusive; first match by precedence
	// wins.
	switch {
	case hasKey(obj, "page"):
		return decodePageMeta(obj), true

	case hasKey(obj, "m"):
		return decodeOrderMeta(obj["m"], vars)

	case hasKey(obj, "f"):
		return decodeFormat(obj["f"])

	case hasKey(obj, "line"):
		return decodeLine(obj["line"])

	case hasKey(obj, "qr_bitmap"):
		return decodeQRBitmap(obj["qr_bitmap"], logger)

	case hasKey(obj, "qr_url"):
		return decodeQRURL(obj, vars)

	case hasKey(obj, "qr"):
		return decodeQRShort(obj["qr"], vars)

	default:
		return nil, false
	}
}

func hasKey(obj map[string]json.RawMessage, key string) bool {
	_, ok := obj[key]
	return ok
}

func decodePageMeta(obj map[string]json.RawMessage) escpos.PageMeta {
	var meta escpos.PageMeta
	if n, ok := looseInt(obj["page"]); ok {
		meta.Page = n
	}
	if n, ok := looseInt(obj["of"]); ok {
		meta.Of = n
	}
	return meta
}

func decodeOrderMeta(raw json.RawMessage, vars map[string]string) (escpos.Element, bool) {
	var m struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return escpos.OrderMeta{OrderID: substitute(m.OrderID, vars)}, true
}

// decodeFormat accepts the compact firmware form {"a","b","s","i","u"}.
// Booleans arrive loosely typed (true, 1, "1", "true") and numbers may
// be quoted.
func decodeFormat(raw json.RawMessage) (escpos.Element, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}

	var d escpos.FormatDirective
	if v, ok := fields["a"]; ok {
		var align string
		if json.Unmarshal(v, &align) == nil {
			d.Align = &align
		}
	}
	if v, ok := fields["b"]; ok {
		if b, ok := looseBool(v); ok {
			d.Bold = &b
		}
	}
	if v, ok := fields["s"]; ok {
		if n, ok := looseInt(v); ok {
			d.Size = &n
		}
	}
	if v, ok := fields["i"]; ok {
		if b, ok := looseBool(v); ok {
			d.Italic = &b
		}
	}
	if v, ok := fields["u"]; ok {
		if b, ok := looseBool(v); ok {
			d.Underline = &b
		}
	}
	return d, true
}

// decodeLine accepts "solid" or {"type","thickness","width","spacing"}.
func decodeLine(raw json.RawMessage) (escpos.Element, bool) {
	var kind string
	if err := json.Unmarshal(raw, &kind); err == nil {
		return escpos.LineDirective{Kind: kind}, true
	}

	var obj struct {
		Type      string `json:"type"`
		Thickness int    `json:"thickness"`
		Width     int    `json:"width"`
		Spacing   int    `json:"spacing"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return escpos.LineDirective{
		Kind:      obj.Type,
		Thickness: obj.Thickness,
		Width:     obj.Width,
		Spacing:   obj.Spacing,
	}, true
}

// decodeQRBitmap accepts a pre-rendered bitmap: width, height, and
// packed data as base64.
func decodeQRBitmap(raw json.RawMessage, logger Logger) (escpos.Element, bool) {
	var obj struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Data   []byte `json:"data"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}

	bitmap := escpos.Bitmap{Width: obj.Width, Height: obj.Height, Data: obj.Data}
	if err := bitmap.Validate(); err != nil {
		logger.Warn("rejecting invalid QR bitmap", "error", err)
		return nil, false
	}

	return escpos.QRDirective{
		SizeClass: defaultQRSizeClass,
		Align:     escpos.AlignCenter,
		Bitmap:    &bitmap,
	}, true
}

// decodeQRURL accepts {"qr_url","qr_size","qr_alignment"}.
func decodeQRURL(obj map[string]json.RawMessage, vars map[string]string) (escpos.Element, bool) {
	var url string
	if err := json.Unmarshal(obj["qr_url"], &url); err != nil || url == "" {
		return nil, false
	}

	size := defaultQRSizeClass
	if n, ok := looseInt(obj["qr_size"]); ok && n > 0 {
		size = n
	}

	align := escpos.AlignCenter
	if v, ok := obj["qr_alignment"]; ok {
		var token string
		if json.Unmarshal(v, &token) == nil {
			if a, ok := escpos.ParseAlignment(token); ok {
				align = a
			}
		}
	}

	return escpos.QRDirective{
		Payload:   substitute(url, vars),
		SizeClass: size,
		Align:     align,
	}, true
}

// decodeQRShort accepts the legacy forms "payload", {"text": ...}, and
// {"url": ...}.
func decodeQRShort(raw json.RawMessage, vars map[string]string) (escpos.Element, bool) {
	var payload string
	if err := json.Unmarshal(raw, &payload); err != nil {
		var obj struct {
			Text string `json:"text"`
			URL  string `json:"url"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, false
		}
		payload = obj.Text
		if payload == "" {
			payload = obj.URL
		}
	}
	if payload == "" {
		return nil, false
	}

	return escpos.QRDirective{
		Payload:   substitute(payload, vars),
		SizeClass: defaultQRSizeClass,
		Align:     escpos.AlignCenter,
	}, true
}

// looseBool parses firmware booleans: true, 1, "1", "true", "on".
func looseBool(raw json.RawMessage) (bool, bool) {
	if raw == nil {
		return false, false
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n != 0, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(s) {
		case "true", "1", "on", "yes":
			return true, true
		case "false", "0", "off", "no", "":
			return false, true
		}
	}
	return false, false
}

// looseInt parses integers that may arrive quoted.
func looseInt(raw json.RawMessage) (int, bool) {
	if raw == nil {
		return 0, false
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v, true
		}
	}
	return 0, false
}

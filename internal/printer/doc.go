// Package printer drives a thermal receipt printer over one of two
// backends and tracks its health.
//
// # Architecture
//
//	escpos.Document
//	      │
//	      ▼
//	  Session ── Status()/Stats() ──▶ heartbeats, telemetry
//	      │
//	      ▼
//	   Device ─┬─ BufferedQueue ──▶ lp -d <queue> -o raw
//	           └─ DirectDevice  ──▶ /dev/usb/lp0
//
// The Session renders a document to operations and executes them on the
// connected Device. The queue backend buffers a whole document and ships
// it to the spooler as one raw job; the direct backend writes to the
// device file immediately. Backend selection is explicit or automatic
// (configured queue, then configured device path, then a spooler scan
// for a thermal-looking queue name).
//
// Both backends deduplicate formatting commands against the state the
// device already has, so the renderer can re-assert formatting freely.
//
// QR codes degrade through strategies: a job-supplied bitmap, the
// printer's native symbol generator, a locally generated raster, and
// finally a plain text line carrying the payload.
package printer

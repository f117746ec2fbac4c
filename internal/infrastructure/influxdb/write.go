package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteJobOutcome writes the terminal outcome of a print job.
//
// This is the primary method for recording print telemetry.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - printerID: Printer identifier (e.g., "printer-front-01")
//   - orderID: Order the job belonged to
//   - page: Page number within the order
//   - status: Terminal status ("completed" or "failed")
//   - durationSeconds: Wall-clock print time in seconds
//
// Example:
//
//	client.WriteJobOutcome("printer-front-01", "order-123", 1, "completed", 0.84)
func (c *Client) WriteJobOutcome(printerID, orderID string, page int, status string, durationSeconds float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"print_jobs",
		map[string]string{
			"printer_id": printerID,
			"status":     status,
		},
		map[string]interface{}{
			"order_id":         orderID,
			"page":             page,
			"duration_seconds": durationSeconds,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteHeartbeat writes a heartbeat snapshot.
//
// Used for tracking printer availability over time.
//
// Parameters:
//   - printerID: Printer identifier
//   - printerOnline: Whether the physical printer was reachable
//   - printerStatus: Printer status string (e.g., "ready", "paper_out")
func (c *Client) WriteHeartbeat(printerID string, printerOnline bool, printerStatus string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"heartbeats",
		map[string]string{
			"printer_id": printerID,
		},
		map[string]interface{}{
			"printer_online": printerOnline,
			"printer_status": printerStatus,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteReconnect writes a reconnection event.
//
// Parameters:
//   - printerID: Printer identifier
//   - reconnectCount: Total reconnects since startup
func (c *Client) WriteReconnect(printerID string, reconnectCount int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"reconnects",
		map[string]string{
			"printer_id": printerID,
		},
		map[string]interface{}{
			"reconnect_count": reconnectCount,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("bridge_stats",
//	    map[string]string{"printer_id": "printer-front-01"},
//	    map[string]interface{}{"jobs_completed": 42, "uptime_ms": 360000})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}

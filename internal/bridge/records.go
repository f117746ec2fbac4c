package bridge

import "time"

// Wire records published on the status, heartbeat, error, and recovery
// topics. Field names are stable wire contracts shared with the firmware
// these records originated from; timestamps are Unix milliseconds.

// Job status values.
const (
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// ESP32 status tokens carried in heartbeats.
const (
	esp32StatusOnline = "online"
)

// StatusRecord reports the outcome of one print job page.
type StatusRecord struct {
	TimestampMS int64   `json:"timestamp_ms"`
	PrinterID   string  `json:"printer_id"`
	OrderID     string  `json:"order_id"`
	Page        int     `json:"page"`
	Status      string  `json:"status"`
	PrintTime   float64 `json:"print_time"`
}

// ErrorRecord reports a failure worth surfacing beyond the log.
type ErrorRecord struct {
	TimestampMS   int64  `json:"timestamp_ms"`
	PrinterID     string `json:"printer_id"`
	ErrorType     string `json:"error_type"`
	ErrorMessage  string `json:"error_message"`
	PrinterStatus string `json:"printer_status"`
}

// RecoveryRecord reports a successful reconnect.
type RecoveryRecord struct {
	TimestampMS    int64  `json:"timestamp_ms"`
	PrinterID      string `json:"printer_id"`
	Message        string `json:"message"`
	Uptime         int64  `json:"uptime"`
	ReconnectCount int    `json:"reconnect_count"`
}

// HeartbeatDetails carries the device-level health snapshot inside a
// heartbeat.
type HeartbeatDetails struct {
	PaperPresent  bool   `json:"paper_present"`
	CoverClosed   bool   `json:"cover_closed"`
	CutterOK      bool   `json:"cutter_ok"`
	WifiConnected bool   `json:"wifi_connected"`
	MQTTConnected bool   `json:"mqtt_connected"`
	FreeHeap      uint64 `json:"free_heap"`
	UptimeMS      int64  `json:"uptime_ms"`
	WifiRSSI      int    `json:"wifi_rssi"`
	LocalIP       string `json:"local_ip"`
}

// HeartbeatRecord is the periodic liveness report.
type HeartbeatRecord struct {
	PrinterID     string           `json:"printer_id"`
	TimestampMS   int64            `json:"timestamp_ms"`
	ESP32Status   string           `json:"esp32_status"`
	PrinterOnline bool             `json:"printer_online"`
	PrinterStatus string           `json:"printer_status"`
	Details       HeartbeatDetails `json:"details"`
}

// nowMS returns the current time as Unix milliseconds.
func nowMS() int64 {
	return time.Now().UnixMilli()
}

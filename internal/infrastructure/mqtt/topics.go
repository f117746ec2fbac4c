package mqtt

import "fmt"

// Topic suffixes for the printer topic tree.
//
// All printer topics use the flat scheme: {account}/pt/{printer_id}/{suffix}
// The single-letter suffixes are part of the published wire contract and
// must not change: firmware clients subscribe to them verbatim.
const (
	// TopicSegmentPrinter is the fixed segment identifying printer traffic.
	TopicSegmentPrinter = "pt"

	// SuffixJob carries incoming print jobs.
	SuffixJob = "p"

	// SuffixStatus carries per-job status records.
	SuffixStatus = "a"

	// SuffixHeartbeat carries periodic heartbeat records.
	SuffixHeartbeat = "h"

	// SuffixError carries error records.
	SuffixError = "e"

	// SuffixRecovery carries recovery records after reconnects.
	SuffixRecovery = "r"
)

// Topics builds the MQTT topics for one printer under one account.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{Account: "cafe-eastside", PrinterID: "printer-front-01"}
//	topics.Job() // "cafe-eastside/pt/printer-front-01/p"
type Topics struct {
	Account   string
	PrinterID string
}

// Job returns the topic print jobs arrive on.
//
// Example: cafe-eastside/pt/printer-front-01/p
func (t Topics) Job() string {
	return t.build(SuffixJob)
}

// Status returns the topic per-job status records are published to.
//
// Example: cafe-eastside/pt/printer-front-01/a
func (t Topics) Status() string {
	return t.build(SuffixStatus)
}

// Heartbeat returns the topic heartbeat records are published to.
//
// Example: cafe-eastside/pt/printer-front-01/h
func (t Topics) Heartbeat() string {
	return t.build(SuffixHeartbeat)
}

// Error returns the topic error records are published to.
//
// Example: cafe-eastside/pt/printer-front-01/e
func (t Topics) Error() string {
	return t.build(SuffixError)
}

// Recovery returns the topic recovery records are published to.
//
// Example: cafe-eastside/pt/printer-front-01/r
func (t Topics) Recovery() string {
	return t.build(SuffixRecovery)
}

// AllPrinterJobs returns a pattern matching job topics for every printer
// under the account.
//
// Pattern: cafe-eastside/pt/+/p
func (t Topics) AllPrinterJobs() string {
	return fmt.Sprintf("%s/%s/+/%s", t.Account, TopicSegmentPrinter, SuffixJob)
}

func (t Topics) build(suffix string) string {
	return fmt.Sprintf("%s/%s/%s/%s", t.Account, TopicSegmentPrinter, t.PrinterID, suffix)
}

// Package logging wraps log/slog with the bridge's conventions: handler
// selection (JSON for production, text for development), level parsing,
// and service/version attributes stamped on every record.
//
// Configured from the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Every long-lived component in the bridge declares its own narrow
// Logger interface (Error/Warn/Info/Debug) and accepts this logger
// through a SetLogger setter, so packages never import each other for
// logging.
//
// Job payloads can carry order details; log order ids and page numbers,
// never receipt contents.
package logging

// Package history is the local job journal: every print outcome is
// written to SQLite alongside the broker status stream, so receipts can
// be audited even across connectivity gaps.
//
// The package owns its own schema (applied idempotently on startup) and
// exposes insert, recent-listing, counting, and retention pruning over
// the shared database handle.
package history

// Package bridge connects the MQTT side of the system to the printer
// side: it decodes inbound job messages, prints them, and publishes the
// outbound record stream.
//
// # Architecture
//
//	                broker
//	                  │ p (jobs)
//	                  ▼
//	            ConnectionManager ──▶ a (status), e (errors), r (recovery)
//	            │            │
//	            ▼            ▼
//	      printer.Session   Reporter ──▶ h (heartbeats)
//	                  ▲
//	                  │ poll
//	          RecoveryController ──▶ Fatal()
//
// Three schedules run concurrently: the transport's callback loop (jobs
// are handled synchronously inside it, so at most one document prints at
// a time), the heartbeat reporter's ticker (active only while
// connected), and the recovery controller's poll loop.
//
// The manager never reconnects from inside a disconnect callback. The
// recovery controller polls both the printer session and the broker
// connection, reconnects whichever is down, and escalates to a fatal
// signal after too many consecutive failures.
package bridge

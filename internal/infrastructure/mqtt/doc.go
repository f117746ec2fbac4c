// Package mqtt provides MQTT client connectivity for the print bridge.
//
// This package manages:
//   - Connection to the broker with a bounded connect timeout
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) on the heartbeat topic
//
// # Architecture
//
// The bridge uses MQTT as the transport between point-of-sale backends
// and the physical receipt printer. One printer owns one topic subtree:
//
//	{account}/pt/{printer_id}/p  jobs in
//	{account}/pt/{printer_id}/a  status records out
//	{account}/pt/{printer_id}/h  heartbeats out
//	{account}/pt/{printer_id}/e  error records out
//	{account}/pt/{printer_id}/r  recovery records out
//
// # Reconnection
//
// The paho auto-reconnect machinery is disabled. A lost connection is
// reported through the disconnect callback and the connection stays down
// until the recovery loop builds a fresh client. This keeps connection
// state observable in one place instead of two.
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	topics := mqtt.Topics{Account: cfg.MQTT.Account, PrinterID: cfg.Printer.ID}
//	client, err := mqtt.Connect(cfg.MQTT, topics)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(topics.Job(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
package mqtt

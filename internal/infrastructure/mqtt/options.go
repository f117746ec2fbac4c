package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/scandeer/printbridge/internal/infrastructure/config"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 1000 // milliseconds
	defaultKeepAlive         = 60 * time.Second

	maxQoS = 2

	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions maps bridge config onto paho options: broker URL
// (tcp or ssl), client id, credentials, clean session.
//
// Auto-reconnect and connect-retry are off on purpose. The recovery
// loop owns reconnection; a lost connection surfaces through the
// disconnect callback and stays lost until recovery dials a fresh
// client, so reconnect attempts are counted in exactly one place.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	return opts
}

// configureLWT registers the Last Will on the heartbeat topic
// ({account}/pt/{printer_id}/h, QoS 1, not retained). The broker
// publishes it when the bridge dies without a clean disconnect, so
// dashboards see the printer go dark without waiting out a missed
// heartbeat interval. Not retained: heartbeats are a live stream, and
// a sticky "offline" would outlive the next restart.
func configureLWT(opts *pahomqtt.ClientOptions, topics Topics) {
	opts.SetWill(topics.Heartbeat(), buildOfflinePayload(topics.PrinterID, "unexpected_disconnect"), 1, false)
}

// buildOfflinePayload is the offline heartbeat used for both the LWT
// and the graceful-shutdown publish, told apart by reason.
func buildOfflinePayload(printerID, reason string) string {
	return fmt.Sprintf(
		`{"printer_id":"%s","esp32_status":"offline","printer_online":false,"reason":"%s","timestamp_ms":%d}`,
		printerID,
		reason,
		time.Now().UnixMilli(),
	)
}

package mqtt

import (
	"fmt"
)

// maxPayloadSize caps outbound payloads at 1MB. Bridge records are a
// few hundred bytes; anything larger is a bug upstream, and brokers
// commonly reject oversized messages anyway.
const maxPayloadSize = 1 << 20

// Publish sends one message. Status, heartbeat, error, and recovery
// records are a live stream, so callers publish them non-retained; the
// retained flag exists for the rare sticky value.
//
// The call blocks until the broker acks (per QoS) or the publish
// timeout elapses.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// PublishString publishes a string payload.
func (c *Client) PublishString(topic string, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}

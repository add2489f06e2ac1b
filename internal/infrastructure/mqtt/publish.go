package mqtt

import (
	"fmt"
)

// maxPayloadSize bounds a published message. Response lines are far smaller.
const maxPayloadSize = 1 << 16

// Publish sends a message to the specified MQTT topic.
//
// Parameters:
//   - topic: The topic to publish to (e.g., "brewlogic/fermenter-1/response")
//   - payload: The message payload (max 64 KiB)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message for new subscribers
//
// QoS Levels:
//   - 0: At most once (fire and forget)
//   - 1: At least once (guaranteed delivery, may duplicate)
//   - 2: Exactly once (guaranteed, no duplicates, higher overhead)
//
// Retained Messages:
//   - When true, broker stores the last message for each topic
//   - New subscribers immediately receive the retained message
//   - Use for the status topic only; never for protocol lines
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
//
// Example:
//
//	topic := client.Topics().Response()
//	err := client.Publish(topic, []byte("0001|0000\n"), 1, false)
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

// PublishRetained publishes a retained message with the configured default QoS.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}

// publishStatus announces the controller state on the retained status topic,
// the same topic the broker uses for the LWT.
func (c *Client) publishStatus(state, reason string) error {
	return c.PublishRetained(c.topics.Status(), []byte(buildStatusPayload(c.topics.DeviceID, state, reason)))
}

// PublishResponse publishes protocol output on the device response topic.
func (c *Client) PublishResponse(payload []byte) error {
	return c.Publish(c.topics.Response(), payload, byte(c.cfg.QoS), false)
}

package connection

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nerrad567/brewlogic-core/internal/infrastructure/mqtt"
)

// Broker is the part of the MQTT client used by MQTTConn.
// *mqtt.Client implements it.
type Broker interface {
	Topics() mqtt.Topics
	QoS() byte
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	PublishResponse(payload []byte) error
}

// MQTTConn exchanges frames over the device's command and response topics.
// Message boundaries carry no meaning: payloads are joined and split on
// newlines like any other stream, and each Flush publishes one message.
type MQTTConn struct {
	id     string
	broker Broker
	queue  frameQueue
	logger Logger

	mu      sync.Mutex
	pending bytes.Buffer
	closed  bool
}

// NewMQTTConn subscribes to the command topic of broker.
func NewMQTTConn(broker Broker, logger Logger) (*MQTTConn, error) {
	if logger == nil {
		logger = noopLogger{}
	}
	c := &MQTTConn{
		id:     uuid.NewString(),
		broker: broker,
		logger: logger,
	}

	if err := broker.Subscribe(broker.Topics().Command(), broker.QoS(), c.receive); err != nil {
		return nil, fmt.Errorf("subscribing to command topic: %w", err)
	}
	return c, nil
}

func (c *MQTTConn) receive(_ string, payload []byte) error {
	if err := c.queue.feed(payload); err != nil {
		c.logger.Warn("discarding command input", "conn", c.id, "error", err)
	}
	return nil
}

func (c *MQTTConn) ID() string     { return c.id }
func (c *MQTTConn) Kind() string   { return KindMQTT }
func (c *MQTTConn) Remote() string { return c.broker.Topics().Command() }

func (c *MQTTConn) Next() ([]byte, bool) { return c.queue.next() }

func (c *MQTTConn) Done() bool { return c.queue.done() }

func (c *MQTTConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	return c.pending.Write(p)
}

// Flush publishes buffered output as one response message.
func (c *MQTTConn) Flush() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.pending.Len() == 0 {
		c.mu.Unlock()
		return nil
	}
	payload := bytes.Clone(c.pending.Bytes())
	c.pending.Reset()
	c.mu.Unlock()

	return c.broker.PublishResponse(payload)
}

// Close unsubscribes from the command topic. The broker connection itself is
// owned by the caller.
func (c *MQTTConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.queue.close()
	return c.broker.Unsubscribe(c.broker.Topics().Command())
}

package connection

import (
	"bytes"
	"sync"

	"github.com/google/uuid"
)

// BufferConn is an in-memory connection. Input is supplied with Feed and
// flushed output is collected for Output.
type BufferConn struct {
	id    string
	queue frameQueue

	mu      sync.Mutex
	pending bytes.Buffer
	sent    bytes.Buffer
	closed  bool
}

// NewBufferConn creates an open in-memory connection.
func NewBufferConn() *BufferConn {
	return &BufferConn{id: uuid.NewString()}
}

// Feed queues client input. Partial lines wait for their newline.
func (c *BufferConn) Feed(data string) error {
	return c.queue.feed([]byte(data))
}

// Output returns and clears everything flushed so far.
func (c *BufferConn) Output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.sent.String()
	c.sent.Reset()
	return out
}

func (c *BufferConn) ID() string     { return c.id }
func (c *BufferConn) Kind() string   { return KindBuffer }
func (c *BufferConn) Remote() string { return "memory" }

func (c *BufferConn) Next() ([]byte, bool) { return c.queue.next() }

func (c *BufferConn) Done() bool { return c.queue.done() }

func (c *BufferConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	return c.pending.Write(p)
}

func (c *BufferConn) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	_, err := c.pending.WriteTo(&c.sent)
	return err
}

// Close ends the input. Frames already fed can still be read.
func (c *BufferConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.queue.close()
	return nil
}

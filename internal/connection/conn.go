package connection

import (
	"bufio"
	"errors"
	"io"
	"net"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Connection kinds.
const (
	KindTCP    = "tcp"
	KindSerial = "serial"
	KindMQTT   = "mqtt"
	KindBuffer = "buffer"
)

// Conn is one client stream. Next never blocks.
type Conn interface {
	io.Writer

	// ID is unique per connection for its lifetime.
	ID() string
	Kind() string
	Remote() string

	// Next returns the oldest complete frame, if any.
	Next() ([]byte, bool)

	// Flush sends everything written since the last flush.
	Flush() error

	// Done reports whether the client went away and all its frames were read.
	Done() bool

	Close() error
}

// Logger is the logging surface of this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

const readBufferSize = 512

// StreamConn wraps a byte stream such as a TCP socket or a serial device.
type StreamConn struct {
	id     string
	kind   string
	remote string

	rwc    io.ReadWriteCloser
	queue  frameQueue
	logger Logger

	mu     sync.Mutex
	out    *bufio.Writer
	closed bool
	once   sync.Once
}

// NewStreamConn starts reading rwc in the background.
//
// Parameters:
//   - kind: Transport name used in logs and metrics (KindTCP, KindSerial)
//   - remote: Peer address or device path
//   - rwc: The underlying stream; closed by Close
//   - logger: Optional logger (nil for none)
func NewStreamConn(kind, remote string, rwc io.ReadWriteCloser, logger Logger) *StreamConn {
	if logger == nil {
		logger = noopLogger{}
	}
	c := &StreamConn{
		id:     uuid.NewString(),
		kind:   kind,
		remote: remote,
		rwc:    rwc,
		logger: logger,
		out:    bufio.NewWriter(rwc),
	}
	go c.readLoop()
	return c
}

func (c *StreamConn) readLoop() {
	defer c.queue.close()

	buf := make([]byte, readBufferSize)
	for {
		n, err := c.rwc.Read(buf)
		if n > 0 {
			if ferr := c.queue.feed(buf[:n]); ferr != nil {
				c.logger.Warn("discarding input", "conn", c.id, "kind", c.kind, "error", ferr)
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) && !errors.Is(err, os.ErrClosed) {
				c.logger.Debug("read failed", "conn", c.id, "kind", c.kind, "error", err)
			}
			return
		}
	}
}

func (c *StreamConn) ID() string     { return c.id }
func (c *StreamConn) Kind() string   { return c.kind }
func (c *StreamConn) Remote() string { return c.remote }

func (c *StreamConn) Next() ([]byte, bool) { return c.queue.next() }

func (c *StreamConn) Done() bool { return c.queue.done() }

// Write buffers p until Flush.
func (c *StreamConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	return c.out.Write(p)
}

// Flush writes buffered output to the stream.
func (c *StreamConn) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.out.Flush()
}

// Close closes the underlying stream. The read loop exits on its own.
func (c *StreamConn) Close() error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		err = c.rwc.Close()
	})
	return err
}

package connection

import (
	"io"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/nerrad567/brewlogic-core/internal/stream"
)

// DefaultBanner is announced to every new connection.
const DefaultBanner = "!Connected to BrewLogic"

// Observer is told about connections coming and going.
type Observer interface {
	ConnectionOpened(kind string)
	ConnectionClosed(kind string)
}

type noopObserver struct{}

func (noopObserver) ConnectionOpened(string) {}
func (noopObserver) ConnectionClosed(string) {}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithLogger sets the pool logger. Listeners created for the pool share it.
func WithLogger(l Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithBanner sets the annotation written to new connections. Version is
// appended when non-empty.
func WithBanner(text, version string) PoolOption {
	return func(p *Pool) {
		p.banner = text
		if version != "" {
			p.banner += " v" + version
		}
	}
}

// WithObserver reports connection changes, typically to metrics.
func WithObserver(o Observer) PoolOption {
	return func(p *Pool) {
		if o != nil {
			p.observer = o
		}
	}
}

// Pool holds the live connections. Add may be called from any goroutine;
// Process is called from the box loop.
type Pool struct {
	conns    *xsync.MapOf[string, Conn]
	banner   string
	logger   Logger
	observer Observer
	closed   atomic.Bool
}

// NewPool creates an empty pool.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		conns:    xsync.NewMapOf[string, Conn](),
		banner:   DefaultBanner,
		logger:   noopLogger{},
		observer: noopObserver{},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Add announces the banner on c and starts serving it.
func (p *Pool) Add(c Conn) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	if p.banner != "" {
		_ = stream.WriteAnnotation(c, p.banner)
		if err := c.Flush(); err != nil {
			p.logger.Debug("writing banner failed", "conn", c.ID(), "error", err)
		}
	}

	p.conns.Store(c.ID(), c)
	p.observer.ConnectionOpened(c.Kind())
	p.logger.Info("connection added", "conn", c.ID(), "kind", c.Kind(), "remote", c.Remote())
	return nil
}

// Len returns the number of live connections.
func (p *Pool) Len() int {
	return p.conns.Size()
}

// Process hands every buffered frame of every connection to handle, flushing
// the response after each frame. Connections whose client went away are
// closed and removed once drained.
//
// Processing stops at the first error from handle, which is returned after
// the current response is flushed. Remaining frames stay queued.
func (p *Pool) Process(handle func(frame []byte, w io.Writer) error) error {
	var failed error
	p.conns.Range(func(id string, c Conn) bool {
		for {
			frame, ok := c.Next()
			if !ok {
				break
			}
			err := handle(frame, c)
			if ferr := c.Flush(); ferr != nil {
				p.logger.Debug("flush failed", "conn", id, "error", ferr)
			}
			if err != nil {
				failed = err
				return false
			}
		}

		if c.Done() {
			p.remove(id, c)
		}
		return true
	})
	return failed
}

func (p *Pool) remove(id string, c Conn) {
	if _, ok := p.conns.LoadAndDelete(id); !ok {
		return
	}
	if err := c.Close(); err != nil {
		p.logger.Debug("close failed", "conn", id, "error", err)
	}
	p.observer.ConnectionClosed(c.Kind())
	p.logger.Info("connection removed", "conn", id, "kind", c.Kind(), "remote", c.Remote())
}

// Close closes and removes every connection. Later Adds fail.
func (p *Pool) Close() error {
	p.closed.Store(true)
	p.conns.Range(func(id string, c Conn) bool {
		p.remove(id, c)
		return true
	})
	return nil
}

package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
)

// Listener accepts TCP clients and adds them to a pool.
type Listener struct {
	ln     net.Listener
	pool   *Pool
	logger Logger
	wg     sync.WaitGroup
	stop   chan struct{}
	once   sync.Once
}

// Listen starts accepting TCP clients on addr until ctx is cancelled or
// Close is called.
//
// Parameters:
//   - ctx: Stops the accept loop when cancelled
//   - addr: host:port to listen on (port 0 picks a free port)
//   - pool: Receives every accepted connection
//
// Returns:
//   - *Listener: Running listener
//   - error: If the address cannot be bound
func Listen(ctx context.Context, addr string, pool *Pool) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}

	l := &Listener{ln: ln, pool: pool, logger: pool.logger, stop: make(chan struct{})}
	l.logger.Info("listening", "addr", ln.Addr().String())

	l.wg.Add(2)
	go func() {
		defer l.wg.Done()
		l.acceptLoop()
	}()
	go func() {
		defer l.wg.Done()
		select {
		case <-ctx.Done():
		case <-l.stop:
		}
		l.ln.Close()
	}()

	return l, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

func (l *Listener) acceptLoop() {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				l.logger.Info("listener closed", "addr", l.ln.Addr().String())
				return
			}
			l.logger.Error("accept failed", "error", err)
			continue
		}

		c := NewStreamConn(KindTCP, conn.RemoteAddr().String(), conn, l.logger)
		if err := l.pool.Add(c); err != nil {
			l.logger.Warn("rejecting connection", "remote", c.Remote(), "error", err)
			c.Close()
		}
	}
}

// Close stops accepting. Accepted connections stay in the pool.
func (l *Listener) Close() error {
	l.once.Do(func() { close(l.stop) })
	err := l.ln.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return err
}

// Wait blocks until the listener goroutines exit. Call after Close or after
// cancelling the context passed to Listen.
func (l *Listener) Wait() {
	l.wg.Wait()
}

// OpenSerial opens a serial device (or any readable and writable file) as a
// connection. Line settings are expected to be configured outside the
// process.
func OpenSerial(path string, logger Logger) (*StreamConn, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening serial device %s: %w", path, err)
	}
	return NewStreamConn(KindSerial, path, f, logger), nil
}

package connection

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echo answers every frame with its upper-cased text.
func echo(frame []byte, w io.Writer) error {
	_, err := io.WriteString(w, strings.ToUpper(string(frame)))
	return err
}

type countingObserver struct {
	mu     sync.Mutex
	opened map[string]int
	closed map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{opened: map[string]int{}, closed: map[string]int{}}
}

func (o *countingObserver) ConnectionOpened(kind string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened[kind]++
}

func (o *countingObserver) ConnectionClosed(kind string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed[kind]++
}

func TestPoolAnnouncesBanner(t *testing.T) {
	p := NewPool(WithBanner(DefaultBanner, "0.1.0"))
	c := NewBufferConn()
	require.NoError(t, p.Add(c))

	assert.Equal(t, "<!Connected to BrewLogic v0.1.0>", c.Output())
	assert.Equal(t, 1, p.Len())
}

func TestPoolProcessAnswersEveryFrame(t *testing.T) {
	p := NewPool(WithBanner("", ""))
	a, b := NewBufferConn(), NewBufferConn()
	require.NoError(t, p.Add(a))
	require.NoError(t, p.Add(b))

	require.NoError(t, a.Feed("ab\ncd\n"))
	require.NoError(t, b.Feed("ef\n0"))

	require.NoError(t, p.Process(echo))
	assert.Equal(t, "AB\nCD\n", a.Output())
	assert.Equal(t, "EF\n", b.Output())

	require.NoError(t, b.Feed("1\n"))
	require.NoError(t, p.Process(echo))
	assert.Equal(t, "01\n", b.Output())
	assert.Empty(t, a.Output())
}

func TestPoolRemovesFinishedConnections(t *testing.T) {
	obs := newCountingObserver()
	p := NewPool(WithObserver(obs))
	c := NewBufferConn()
	require.NoError(t, p.Add(c))
	c.Output()

	require.NoError(t, c.Feed("ff\n"))
	require.NoError(t, c.Close())

	require.NoError(t, p.Process(func(frame []byte, w io.Writer) error { return nil }))
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, map[string]int{KindBuffer: 1}, obs.opened)
	assert.Equal(t, map[string]int{KindBuffer: 1}, obs.closed)
}

func TestPoolProcessStopsOnHandlerError(t *testing.T) {
	p := NewPool(WithBanner("", ""))
	c := NewBufferConn()
	require.NoError(t, p.Add(c))
	require.NoError(t, c.Feed("01\n02\n"))

	halt := errors.New("halt")
	calls := 0
	err := p.Process(func(frame []byte, w io.Writer) error {
		calls++
		_, _ = io.WriteString(w, "bye\n")
		return halt
	})

	assert.ErrorIs(t, err, halt)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "bye\n", c.Output(), "response is flushed before returning")

	frame, ok := c.Next()
	require.True(t, ok)
	assert.Equal(t, "02\n", string(frame))
}

func TestPoolClose(t *testing.T) {
	p := NewPool()
	c := NewBufferConn()
	require.NoError(t, p.Add(c))

	require.NoError(t, p.Close())
	assert.Equal(t, 0, p.Len())
	assert.ErrorIs(t, p.Add(NewBufferConn()), ErrPoolClosed)

	_, err := c.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrClosed)
}

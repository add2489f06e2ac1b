package connection

import (
	"bytes"
	"sync"

	"github.com/nerrad567/brewlogic-core/internal/stream"
)

// MaxFrameLength is the longest accepted request line, in bytes of hex text
// including the newline.
const MaxFrameLength = 64 * 1024

// frameQueue splits a byte stream into '\n'-terminated frames. It is fed by a
// reader goroutine and drained by the box loop.
//
// A line longer than MaxFrameLength is not buffered. When its newline
// arrives, stream.OverlongFrame is queued in its place so the client still
// gets one response per line.
type frameQueue struct {
	mu       sync.Mutex
	partial  []byte
	frames   [][]byte
	closed   bool
	overflow bool
}

// feed appends data and queues every completed frame. It returns
// ErrFrameTooLong once per over-long line, when the limit is first crossed.
func (q *frameQueue) feed(data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	var err error
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		chunk := data
		if i >= 0 {
			chunk = data[:i+1]
		}

		if !q.overflow && len(q.partial)+len(chunk) > MaxFrameLength {
			q.partial = q.partial[:0]
			q.overflow = true
			err = ErrFrameTooLong
		}

		switch {
		case i < 0:
			if !q.overflow {
				q.partial = append(q.partial, chunk...)
			}
			return err
		case q.overflow:
			q.frames = append(q.frames, []byte(stream.OverlongFrame))
			q.overflow = false
		default:
			frame := make([]byte, 0, len(q.partial)+len(chunk))
			frame = append(frame, q.partial...)
			frame = append(frame, chunk...)
			q.frames = append(q.frames, frame)
		}
		q.partial = q.partial[:0]
		data = data[i+1:]
	}
	return err
}

// next pops the oldest complete frame.
func (q *frameQueue) next() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.frames) == 0 {
		return nil, false
	}
	frame := q.frames[0]
	q.frames[0] = nil
	q.frames = q.frames[1:]
	return frame, true
}

// close marks the input as finished. Queued frames stay readable; an
// unterminated partial line is dropped.
func (q *frameQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.partial = nil
}

// done reports whether the input is finished and every frame was drained.
func (q *frameQueue) done() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.frames) == 0
}

func (q *frameQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

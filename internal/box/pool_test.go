package box

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
	"github.com/nerrad567/brewlogic-core/internal/connection"
	"github.com/nerrad567/brewlogic-core/internal/storage"
)

func TestOverlongRequestGetsErrorResponse(t *testing.T) {
	h := newHarness(t, storage.NewMemoryStore())
	pool := connection.NewPool(connection.WithBanner("", ""))
	c := connection.NewBufferConn()
	require.NoError(t, pool.Add(c))

	tests := []struct {
		name   string
		chunks []string
	}{
		{"one chunk", []string{strings.Repeat("00", connection.MaxFrameLength) + "\n"}},
		{"split", []string{strings.Repeat("00", connection.MaxFrameLength), "00\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, chunk := range tt.chunks {
				_ = c.Feed(chunk)
			}
			require.NoError(t, c.Feed(string(frame([]byte{byte(CommandNoop)}))))
			require.NoError(t, h.box.Communicate(pool))

			lines := strings.SplitAfter(c.Output(), "\n")
			require.Len(t, lines, 3, "one response per line")
			assert.Empty(t, lines[2])

			r := parseResponse(t, lines[0])
			assert.Empty(t, r.echo)
			assert.Equal(t, cbox.StatusInputStreamReadError, r.status)
			assert.Empty(t, r.payload)

			assert.Equal(t, cbox.StatusOK, parseResponse(t, lines[1]).status, "the next request is served")
		})
	}
}

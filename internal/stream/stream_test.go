package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

func TestHexReader(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{"upper case", "0A1BFF\n", []byte{0x0A, 0x1B, 0xFF}},
		{"lower case", "0a1bff\n", []byte{0x0A, 0x1B, 0xFF}},
		{"whitespace and carriage return", "0A 1B\tFF\r\n", []byte{0x0A, 0x1B, 0xFF}},
		{"stops at newline", "01\n02\n", []byte{0x01}},
		{"no newline", "0102", []byte{0x01, 0x02}},
		{"dangling nibble dropped", "010\n", []byte{0x01}},
		{"empty frame", "\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewHexReader(bytes.NewBufferString(tt.in))
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.want, got)
			}
			assert.True(t, r.Finished())
		})
	}
}

func TestHexWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewHexWriter(&buf)
	n, err := w.Write([]byte{0x00, 0xAB, 0x7F})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, w.WriteRaw("|"))
	assert.Equal(t, "00AB7F|", buf.String())
}

func TestChecksumResidueIsZero(t *testing.T) {
	msg := []byte{0x01, 0x64, 0x00}
	framed := append(msg, Checksum(msg))
	assert.Equal(t, uint8(0), Checksum(framed))
	assert.Equal(t, uint8(0xA1), Checksum([]byte("123456789")), "CRC-8/MAXIM check value")
}

func TestCRCWriterMessage(t *testing.T) {
	var buf bytes.Buffer
	w := NewCRCWriter(&buf)

	_, err := w.Write([]byte{0x01, 0x02})
	require.NoError(t, err)
	require.NoError(t, w.WriteResponseSeparator())
	require.NoError(t, w.WriteByte(0x00))
	require.NoError(t, w.WriteListSeparator())
	_, err = w.Write([]byte{0x10})
	require.NoError(t, err)
	crc := Checksum([]byte{0x00, 0x10})
	require.NoError(t, w.EndMessage())

	expected := "0102|00,10" + string(hexDigits[crc>>4]) + string(hexDigits[crc&0x0F]) + "\n"
	assert.Equal(t, expected, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("buffer full") }

func TestCRCWriterStickyError(t *testing.T) {
	w := NewCRCWriter(failingWriter{})
	_, err := w.Write([]byte{1})
	require.Error(t, err)
	assert.Equal(t, cbox.StatusOutputStreamWriteError, cbox.StatusOf(err))
	assert.ErrorIs(t, w.EndMessage(), w.Err())
}

func encodeRequest(body ...byte) string {
	var buf bytes.Buffer
	_, _ = NewHexWriter(&buf).Write(append(body, Checksum(body)))
	return buf.String() + "\n"
}

func TestTeeReaderEchoAndCRC(t *testing.T) {
	var buf bytes.Buffer
	out := NewCRCWriter(&buf)
	in := NewTeeReader(NewHexReader(bytes.NewBufferString(encodeRequest(0x01, 0x64, 0x00))), out)

	cmd, err := in.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), cmd)

	id, err := cbox.ReadID(in)
	require.NoError(t, err)
	assert.Equal(t, cbox.ID(100), id)

	rest := in.Spool()
	assert.Len(t, rest, 1)
	assert.Empty(t, StripCRC(rest))
	assert.Equal(t, uint8(0), out.CRC())
	assert.Equal(t, encodeRequest(0x01, 0x64, 0x00)[:8], buf.String())
}

func TestTeeReaderDetectsCorruption(t *testing.T) {
	body := []byte{0x03, 0x00, 0x00, 0x01, 0x02, 0x01, 0x42}
	for i := range len(body) * 8 {
		corrupted := append([]byte(nil), body...)
		crc := Checksum(body)
		corrupted[i/8] ^= 1 << (i % 8)

		var frame bytes.Buffer
		_, _ = NewHexWriter(&frame).Write(append(corrupted, crc))
		frame.WriteByte('\n')

		out := NewCRCWriter(io.Discard)
		in := NewTeeReader(NewHexReader(&frame), out)
		in.Spool()
		assert.NotEqual(t, uint8(0), out.CRC(), "bit %d", i)
	}
}

func TestStripCRC(t *testing.T) {
	assert.Empty(t, StripCRC(nil))
	assert.Equal(t, []byte{1, 2}, StripCRC([]byte{1, 2, 3}))
}

func TestWriteAnnotation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAnnotation(&buf, "!Connected"))
	assert.Equal(t, "<!Connected>", buf.String())
}

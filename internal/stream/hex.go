package stream

import (
	"bufio"
	"io"
)

const hexDigits = "0123456789ABCDEF"

// HexReader decodes hex text into bytes. It stops at the first newline.
type HexReader struct {
	r    io.ByteReader
	done bool
}

// NewHexReader wraps r. Readers that do not implement io.ByteReader are buffered.
func NewHexReader(r io.Reader) *HexReader {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &HexReader{r: br}
}

func nibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// nextNibble returns the next hex digit, skipping anything that is not one.
func (h *HexReader) nextNibble() (byte, error) {
	for {
		if h.done {
			return 0, io.EOF
		}
		c, err := h.r.ReadByte()
		if err != nil {
			h.done = true
			return 0, io.EOF
		}
		if c == '\n' {
			h.done = true
			return 0, io.EOF
		}
		if v, ok := nibble(c); ok {
			return v, nil
		}
	}
}

// ReadByte decodes one byte. A dangling half byte at the end of the frame is dropped.
func (h *HexReader) ReadByte() (byte, error) {
	hi, err := h.nextNibble()
	if err != nil {
		return 0, err
	}
	lo, err := h.nextNibble()
	if err != nil {
		return 0, err
	}
	return hi<<4 | lo, nil
}

// Read implements io.Reader.
func (h *HexReader) Read(p []byte) (int, error) {
	for i := range p {
		b, err := h.ReadByte()
		if err != nil {
			if i == 0 {
				return 0, err
			}
			return i, nil
		}
		p[i] = b
	}
	return len(p), nil
}

// Finished reports whether the end of the frame was reached.
func (h *HexReader) Finished() bool {
	return h.done
}

// HexWriter encodes bytes as upper-case hex text.
type HexWriter struct {
	w   io.Writer
	buf []byte
}

// NewHexWriter wraps w.
func NewHexWriter(w io.Writer) *HexWriter {
	return &HexWriter{w: w}
}

// Write encodes p. The returned count is in input bytes.
func (h *HexWriter) Write(p []byte) (int, error) {
	h.buf = h.buf[:0]
	for _, b := range p {
		h.buf = append(h.buf, hexDigits[b>>4], hexDigits[b&0x0F])
	}
	if _, err := h.w.Write(h.buf); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteRaw writes text without encoding.
func (h *HexWriter) WriteRaw(s string) error {
	_, err := io.WriteString(h.w, s)
	return err
}

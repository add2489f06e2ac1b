package stream

import (
	"fmt"
	"io"

	"github.com/sigurn/crc8"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

const (
	responseSeparator = "|"
	listSeparator     = ","
	endOfMessage      = "\n"
)

var crcTable = crc8.MakeTable(crc8.CRC8_MAXIM)

// Checksum returns the CRC-8/MAXIM of data. Appending it to data makes the
// checksum of the result zero.
func Checksum(data []byte) uint8 {
	return crc8.Checksum(data, crcTable)
}

// CRCWriter writes hex text and keeps a running CRC over the binary bytes.
//
// The first write error is sticky: later writes are dropped and return it,
// so a handler can stream a whole response and check once.
type CRCWriter struct {
	hex *HexWriter
	crc uint8
	err error
}

// NewCRCWriter wraps w.
func NewCRCWriter(w io.Writer) *CRCWriter {
	return &CRCWriter{hex: NewHexWriter(w), crc: crc8.Init(crcTable)}
}

// Write hex-encodes p and adds it to the CRC.
func (c *CRCWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.crc = crc8.Update(c.crc, p, crcTable)
	if _, err := c.hex.Write(p); err != nil {
		c.err = fmt.Errorf("%w: %w", cbox.StatusOutputStreamWriteError, err)
		return 0, c.err
	}
	return len(p), nil
}

// WriteByte writes a single byte.
func (c *CRCWriter) WriteByte(b byte) error {
	_, err := c.Write([]byte{b})
	return err
}

// CRC returns the checksum of everything written since the last reset.
func (c *CRCWriter) CRC() uint8 {
	return crc8.Complete(c.crc, crcTable)
}

// Err returns the first write error.
func (c *CRCWriter) Err() error {
	return c.err
}

func (c *CRCWriter) raw(s string) error {
	if c.err != nil {
		return c.err
	}
	if err := c.hex.WriteRaw(s); err != nil {
		c.err = fmt.Errorf("%w: %w", cbox.StatusOutputStreamWriteError, err)
	}
	return c.err
}

// WriteResponseSeparator ends the request echo and restarts the CRC for the response.
func (c *CRCWriter) WriteResponseSeparator() error {
	c.crc = crc8.Init(crcTable)
	return c.raw(responseSeparator)
}

// WriteListSeparator marks the start of a list element. It is not checksummed.
func (c *CRCWriter) WriteListSeparator() error {
	return c.raw(listSeparator)
}

// EndMessage appends the CRC and the end-of-message marker, then resets the CRC.
func (c *CRCWriter) EndMessage() error {
	if err := c.WriteByte(c.CRC()); err != nil {
		return err
	}
	c.crc = crc8.Init(crcTable)
	return c.raw(endOfMessage)
}

// WriteAnnotation writes a "<text>" annotation outside any message, as used
// for connection banners and events.
func WriteAnnotation(w io.Writer, text string) error {
	_, err := io.WriteString(w, "<"+text+">")
	return err
}

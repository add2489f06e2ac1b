package cbox

import (
	"encoding/binary"
	"io"
)

const (
	counterType  Type = 500 // 0xF4 0x01 on the wire
	counterIface Type = 501
)

// counter is a minimal object: a persisted uint32 setting and a runtime
// update count.
type counter struct {
	setting uint32
	updates int
	ifaces  Interfaces
}

func newCounter() *counter {
	c := &counter{}
	c.ifaces = Interfaces{
		counterType:  func() any { return c },
		counterIface: func() any { return &c.setting },
	}
	return c
}

func (c *counter) TypeID() Type { return counterType }

func (c *counter) StreamFrom(r io.Reader) error {
	var v uint32
	if err := readLE(r, &v); err != nil {
		return err
	}
	c.setting = v
	return nil
}

func (c *counter) StreamTo(w io.Writer) error {
	if err := c.StreamPersistedTo(w); err != nil {
		return err
	}
	return writeLE(w, uint32(c.updates))
}

func (c *counter) StreamPersistedTo(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, c.setting)
}

func (c *counter) Update(now Ticks) Ticks {
	c.updates++
	return now + 100
}

func (c *counter) Implements(iface Type) any {
	return c.ifaces.Lookup(iface)
}

package blox

import (
	"fmt"
	"io"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

// SysInfoState is the read-only payload of the system info block.
type SysInfoState struct {
	DeviceID        string `cbor:"1,keyasint,omitempty"`
	Version         string `cbor:"2,keyasint,omitempty"`
	Platform        string `cbor:"3,keyasint,omitempty"`
	ProtocolVersion string `cbor:"4,keyasint,omitempty"`
}

// SysInfo reports the identity of the controller. It lives at SysInfoID.
type SysInfo struct {
	state SysInfoState
}

// NewSysInfo creates the block from static device information.
func NewSysInfo(state SysInfoState) *SysInfo {
	return &SysInfo{state: state}
}

func (s *SysInfo) TypeID() cbox.Type { return SysInfoType }

// StreamFrom always fails: system info is read-only.
func (s *SysInfo) StreamFrom(io.Reader) error {
	return fmt.Errorf("%w: system info is read-only", cbox.StatusObjectNotWritable)
}

func (s *SysInfo) StreamTo(w io.Writer) error { return encode(w, s.state) }

// StreamPersistedTo writes nothing; the block is rebuilt from configuration.
func (s *SysInfo) StreamPersistedTo(io.Writer) error { return nil }

// Transient implements cbox.Transient.
func (s *SysInfo) Transient() {}

func (s *SysInfo) Update(now cbox.Ticks) cbox.Ticks { return now + 10*updateInterval }

func (s *SysInfo) Implements(iface cbox.Type) any {
	if iface == SysInfoType {
		return s
	}
	return nil
}

// Info returns the reported state.
func (s *SysInfo) Info() SysInfoState { return s.state }

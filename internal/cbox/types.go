package cbox

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ID identifies an object in the container.
type ID uint16

// Type is the type tag of an object or of a capability interface.
type Type uint16

// Profiles is the 8-bit profile mask of a contained object.
type Profiles uint8

// Ticks is a monotonic timestamp in milliseconds since boot. It wraps around.
type Ticks uint32

const (
	// InvalidID is never assigned; passing it to Container.Add requests automatic assignment.
	InvalidID ID = 0

	// MaxID is the largest assignable ID.
	MaxID ID = 0xFFFF

	// DefaultUserStartID is the first ID available to user objects.
	DefaultUserStartID ID = 100

	// ProfilesID is the reserved ID of the profile mediator object.
	ProfilesID ID = 1
)

// Reserved type tags used by the core itself.
const (
	// InvalidType is never registered.
	InvalidType Type = 0

	// InactiveType is the type tag of the Inactive sentinel.
	InactiveType Type = 0xFFFF

	// ProfilesType is the type tag of the profile mediator object.
	ProfilesType Type = 0xFFFE
)

// SystemProfiles is the mask given to system objects: member of every profile.
const SystemProfiles Profiles = 0xFF

// Active reports whether p shares at least one bit with the active mask.
func (p Profiles) Active(active Profiles) bool {
	return p&active != 0
}

// Due reports whether t is at or after due, accounting for wrap-around.
func (t Ticks) Due(due Ticks) bool {
	return int32(t-due) >= 0
}

// String returns the ID in decimal.
func (id ID) String() string {
	return fmt.Sprintf("%d", uint16(id))
}

// ReadID reads a little-endian object ID.
func ReadID(r io.Reader) (ID, error) {
	var v uint16
	if err := readLE(r, &v); err != nil {
		return 0, err
	}
	return ID(v), nil
}

// WriteID writes a little-endian object ID.
func WriteID(w io.Writer, id ID) error {
	return writeLE(w, uint16(id))
}

// ReadType reads a little-endian type tag.
func ReadType(r io.Reader) (Type, error) {
	var v uint16
	if err := readLE(r, &v); err != nil {
		return 0, err
	}
	return Type(v), nil
}

// WriteType writes a little-endian type tag.
func WriteType(w io.Writer, t Type) error {
	return writeLE(w, uint16(t))
}

// ReadProfiles reads a profile mask.
func ReadProfiles(r io.Reader) (Profiles, error) {
	var v uint8
	if err := readLE(r, &v); err != nil {
		return 0, err
	}
	return Profiles(v), nil
}

// WriteProfiles writes a profile mask.
func WriteProfiles(w io.Writer, p Profiles) error {
	return writeLE(w, uint8(p))
}

// readLE decodes a fixed-width value. A short read is an input stream error.
func readLE(r io.Reader, v any) error {
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		return fmt.Errorf("%w: %w", StatusInputStreamReadError, err)
	}
	return nil
}

func writeLE(w io.Writer, v any) error {
	if err := binary.Write(w, binary.LittleEndian, v); err != nil {
		return fmt.Errorf("%w: %w", StatusOutputStreamWriteError, err)
	}
	return nil
}

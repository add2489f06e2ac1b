package blox

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map keys,
// smallest integer encoding. Persisted records are therefore byte-stable.
var encMode cbor.EncMode

// decMode rejects duplicate keys and ignores unknown ones, so an older
// firmware can still read a record written by a newer one.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("blox: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("blox: CBOR decoder initialization failed: " + err.Error())
	}
}

// encode writes v as one CBOR item.
func encode(w io.Writer, v any) error {
	data, err := encMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %w", cbox.StatusOutputStreamEncodingError, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %w", cbox.StatusOutputStreamWriteError, err)
	}
	return nil
}

// decode reads one CBOR item into v. The caller passes a scratch value and
// applies it only on success.
func decode(r io.Reader, v any) error {
	if err := decMode.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", cbox.StatusInputStreamDecodingError, err)
	}
	return nil
}

// Marshal encodes v with the block codec. Used by clients and tests to build
// payloads.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes a block payload.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

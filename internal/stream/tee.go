package stream

// OverlongFrame stands in for a request line that exceeded the transport's
// length limit. It contains no hex digit, so it never decodes as a command.
const OverlongFrame = "<toolong>\n"

// TeeReader echoes every byte read from a HexReader into a CRCWriter.
type TeeReader struct {
	in  *HexReader
	out *CRCWriter
}

// NewTeeReader connects in to out.
func NewTeeReader(in *HexReader, out *CRCWriter) *TeeReader {
	return &TeeReader{in: in, out: out}
}

// Read implements io.Reader.
func (t *TeeReader) Read(p []byte) (int, error) {
	n, err := t.in.Read(p)
	if n > 0 {
		// Echo failures surface on the response path through out.Err.
		_, _ = t.out.Write(p[:n])
	}
	return n, err
}

// ReadByte implements io.ByteReader.
func (t *TeeReader) ReadByte() (byte, error) {
	b, err := t.in.ReadByte()
	if err != nil {
		return 0, err
	}
	_ = t.out.WriteByte(b)
	return b, nil
}

// Spool consumes and echoes the rest of the frame, returning the bytes read.
// The last byte of a well-formed request is its CRC.
func (t *TeeReader) Spool() []byte {
	var rest []byte
	for {
		b, err := t.ReadByte()
		if err != nil {
			return rest
		}
		rest = append(rest, b)
	}
}

// StripCRC returns rest without its trailing CRC byte.
func StripCRC(rest []byte) []byte {
	if len(rest) == 0 {
		return rest
	}
	return rest[:len(rest)-1]
}

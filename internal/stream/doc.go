// Package stream implements the text framing of the command protocol.
//
// Requests arrive as hex text: every binary byte is two hex characters.
// Whitespace and other non-hex characters are ignored and a newline ends the
// frame. Responses are written back as hex text with a running CRC-8/MAXIM:
//
//	[hex echo of request] '|' [hex status] [hex payload] [hex crc] '\n'
//
// List elements inside a response are preceded by ','.
//
// The pieces compose like this:
//
//	in := stream.NewHexReader(bytes.NewReader(frame))
//	out := stream.NewCRCWriter(conn)
//	req := stream.NewTeeReader(in, out) // echo every decoded request byte
//
// Because the echo passes through the CRC writer, a request whose trailing
// CRC byte is correct leaves out.CRC() at zero just before the response
// separator is written.
package stream

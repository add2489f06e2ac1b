package box

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nerrad567/brewlogic-core/internal/blox"
	"github.com/nerrad567/brewlogic-core/internal/cbox"
	"github.com/nerrad567/brewlogic-core/internal/storage"
	"github.com/nerrad567/brewlogic-core/internal/stream"
)

// harness drives a Box over the text protocol.
type harness struct {
	t       *testing.T
	box     *Box
	objects *cbox.Container
	store   storage.Storage
	resets  []bool
}

func newHarness(t *testing.T, store storage.Storage, opts ...Option) *harness {
	t.Helper()
	h := &harness{t: t, store: store}

	c := cbox.NewContainer()
	_, err := c.Add(blox.NewSysInfo(blox.SysInfoState{DeviceID: "test"}), cbox.SystemProfiles, blox.SysInfoID, false)
	require.NoError(t, err)
	factory, err := blox.NewFactory(c)
	require.NoError(t, err)

	opts = append([]Option{WithResetFunc(func(factory bool) { h.resets = append(h.resets, factory) })}, opts...)
	b, err := New(factory, c, store, Config{StartID: cbox.DefaultUserStartID, DefaultProfiles: 0x01}, opts...)
	require.NoError(t, err)

	h.box = b
	h.objects = c
	return h
}

// frame hex-encodes body with its CRC and a newline.
func frame(body []byte) []byte {
	return hexLine(withCRC(body))
}

func withCRC(body []byte) []byte {
	return append(bytes.Clone(body), stream.Checksum(body))
}

// hexLine hex-encodes raw bytes as one request line.
func hexLine(raw []byte) []byte {
	var buf bytes.Buffer
	_, _ = stream.NewHexWriter(&buf).Write(raw)
	buf.WriteByte('\n')
	return buf.Bytes()
}

type response struct {
	echo     string
	status   cbox.Status
	payload  []byte   // bytes after the status, up to the first list separator
	elements [][]byte // list elements
}

// parseResponse splits "echo|status payload(,element)* crc\n" and verifies the CRC.
func parseResponse(t *testing.T, raw string) response {
	t.Helper()
	require.True(t, strings.HasSuffix(raw, "\n"), "response %q is not terminated", raw)
	echo, body, ok := strings.Cut(strings.TrimSuffix(raw, "\n"), "|")
	require.True(t, ok, "response %q has no separator", raw)

	all, err := hex.DecodeString(strings.ReplaceAll(body, ",", ""))
	require.NoError(t, err)
	require.Zero(t, stream.Checksum(all), "response CRC mismatch in %q", raw)

	parts := strings.Split(body, ",")
	last := len(parts) - 1
	parts[last] = parts[last][:len(parts[last])-2] // strip CRC

	head, err := hex.DecodeString(parts[0])
	require.NoError(t, err)
	require.NotEmpty(t, head)

	r := response{echo: echo, status: cbox.Status(head[0]), payload: head[1:]}
	for _, p := range parts[1:] {
		el, err := hex.DecodeString(p)
		require.NoError(t, err)
		r.elements = append(r.elements, el)
	}
	return r
}

// do sends one request and parses the response.
func (h *harness) do(body ...byte) response {
	h.t.Helper()
	var out bytes.Buffer
	err := h.box.HandleCommand(frame(body), &out)
	if err != nil {
		require.ErrorIs(h.t, err, ErrHalted)
	}
	return parseResponse(h.t, out.String())
}

func le16(v uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, v)
}

func cborPayload(t *testing.T, v any) []byte {
	t.Helper()
	data, err := blox.Marshal(v)
	require.NoError(t, err)
	return data
}

// objectRequest builds "cmd id profiles type payload".
func objectRequest(cmd CommandID, id cbox.ID, profiles cbox.Profiles, typ cbox.Type, payload []byte) []byte {
	req := []byte{byte(cmd)}
	req = append(req, le16(uint16(id))...)
	req = append(req, byte(profiles))
	req = append(req, le16(uint16(typ))...)
	return append(req, payload...)
}

func idRequest(cmd CommandID, id cbox.ID) []byte {
	return append([]byte{byte(cmd)}, le16(uint16(id))...)
}

func (h *harness) create(id cbox.ID, profiles cbox.Profiles, typ cbox.Type, settings any) response {
	h.t.Helper()
	return h.do(objectRequest(CommandCreateObject, id, profiles, typ, cborPayload(h.t, settings))...)
}

func (h *harness) write(id cbox.ID, profiles cbox.Profiles, typ cbox.Type, settings any) response {
	h.t.Helper()
	return h.do(objectRequest(CommandWriteObject, id, profiles, typ, cborPayload(h.t, settings))...)
}

// objectPayload splits "id profiles type data".
type objectPayload struct {
	id       cbox.ID
	profiles cbox.Profiles
	typ      cbox.Type
	data     []byte
}

func splitObject(t *testing.T, p []byte) objectPayload {
	t.Helper()
	require.GreaterOrEqual(t, len(p), 5, "object payload too short: %X", p)
	return objectPayload{
		id:       cbox.ID(binary.LittleEndian.Uint16(p)),
		profiles: cbox.Profiles(p[2]),
		typ:      cbox.Type(binary.LittleEndian.Uint16(p[3:])),
		data:     p[5:],
	}
}

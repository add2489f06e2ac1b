package box

import (
	"bytes"
	"io"
	"time"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
	"github.com/nerrad567/brewlogic-core/internal/stream"
)

// Pool delivers complete request frames from every connected stream.
// connection.Pool implements it.
type Pool interface {
	Process(handle func(frame []byte, w io.Writer) error) error
}

// Communicate processes every complete frame buffered in pool. It returns
// ErrHalted once a reset has been requested.
func (b *Box) Communicate(pool Pool) error {
	if b.halted {
		return ErrHalted
	}
	return pool.Process(b.HandleCommand)
}

type flusher interface {
	Flush() error
}

// HandleCommand processes one request frame and writes one response to w.
//
// Frames that decode to no bytes (blank lines) are ignored. An over-long line
// replaced by the transport gets a bare input_stream_read_error response.
// After a REBOOT or FACTORY_RESET response is flushed the reset function runs
// and every later call returns ErrHalted.
func (b *Box) HandleCommand(frame []byte, w io.Writer) error {
	if b.halted {
		return ErrHalted
	}

	out := stream.NewCRCWriter(w)
	if string(frame) == stream.OverlongFrame {
		b.logger.Warn("rejecting over-long request")
		writeStatus(out, cbox.StatusInputStreamReadError)
		_ = out.EndMessage()
		return out.Err()
	}

	hexIn := stream.NewHexReader(bytes.NewReader(frame))
	in := stream.NewTeeReader(hexIn, out)

	cmdByte, err := in.ReadByte()
	if err != nil {
		return nil
	}
	cmd := CommandID(cmdByte)

	started := time.Now()
	status := b.dispatch(cmd, in, out)
	if err := out.EndMessage(); err != nil {
		b.logger.Warn("writing response failed", "command", cmd.String(), "error", err)
	}
	b.observer.CommandHandled(cmd, status, time.Since(started))
	b.logger.Debug("command handled", "command", cmd.String(), "status", status.String())

	if b.resetRequested {
		if f, ok := w.(flusher); ok {
			_ = f.Flush()
		}
		b.halted = true
		b.logger.Info("reset requested", "factory_reset", b.factoryReset)
		b.reset(b.factoryReset)
		return ErrHalted
	}
	return out.Err()
}

func (b *Box) dispatch(cmd CommandID, in *stream.TeeReader, out *stream.CRCWriter) cbox.Status {
	switch cmd {
	case CommandNoop:
		return b.noop(in, out)
	case CommandReadObject:
		return b.readObject(in, out)
	case CommandWriteObject:
		return b.writeObject(in, out)
	case CommandCreateObject:
		return b.createObject(in, out)
	case CommandDeleteObject:
		return b.deleteObject(in, out)
	case CommandListActiveObjects:
		return b.listActiveObjects(in, out)
	case CommandReadStoredObject:
		return b.readStoredObject(in, out)
	case CommandListStoredObjects:
		return b.listStoredObjects(in, out)
	case CommandClearObjects:
		return b.clearObjects(in, out)
	case CommandReboot:
		return b.reboot(in, out)
	case CommandFactoryReset:
		return b.factoryResetCommand(in, out)
	case CommandListCompatibleObjects:
		return b.listCompatibleObjects(in, out)
	case CommandDiscoverNewObjects:
		return b.discoverNewObjects(in, out)
	}
	if fn, ok := b.commands[cmd]; ok {
		return b.applicationCommand(fn, in, out)
	}
	return b.invalidCommand(in, out)
}

// finishRequest spools the rest of the request and applies the CRC gate.
// It returns the spooled bytes without the CRC.
func finishRequest(in *stream.TeeReader, out *stream.CRCWriter, status cbox.Status) ([]byte, cbox.Status) {
	rest := stream.StripCRC(in.Spool())
	if out.CRC() != 0 {
		return nil, cbox.StatusCRCErrorInCommand
	}
	return rest, status
}

func writeStatus(out *stream.CRCWriter, status cbox.Status) {
	_ = out.WriteResponseSeparator()
	_ = out.WriteByte(byte(status))
}

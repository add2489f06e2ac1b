package box

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
	"github.com/nerrad567/brewlogic-core/internal/storage"
	"github.com/nerrad567/brewlogic-core/internal/stream"
)

func (b *Box) noop(in *stream.TeeReader, out *stream.CRCWriter) cbox.Status {
	_, status := finishRequest(in, out, cbox.StatusOK)
	writeStatus(out, status)
	return status
}

func (b *Box) invalidCommand(in *stream.TeeReader, out *stream.CRCWriter) cbox.Status {
	_, status := finishRequest(in, out, cbox.StatusInvalidCommand)
	writeStatus(out, status)
	return status
}

// readObject: [id] -> [id profiles type payload]
func (b *Box) readObject(in *stream.TeeReader, out *stream.CRCWriter) cbox.Status {
	id, err := cbox.ReadID(in)
	status := cbox.StatusOf(err)

	var co *cbox.ContainedObject
	if status == cbox.StatusOK {
		if co = b.objects.FetchContained(id); co == nil {
			status = cbox.StatusInvalidObjectID
		}
	}

	_, status = finishRequest(in, out, status)
	writeStatus(out, status)
	if status == cbox.StatusOK {
		if err := co.StreamTo(out); err != nil {
			b.logger.Warn("streaming object failed", "id", id, "error", err)
		}
	}
	return status
}

// writeObject: [id profiles type payload] -> [id profiles type payload]
func (b *Box) writeObject(in *stream.TeeReader, out *stream.CRCWriter) cbox.Status {
	id, err := cbox.ReadID(in)
	status := cbox.StatusOf(err)

	req, status := finishRequest(in, out, status)

	var co *cbox.ContainedObject
	if status == cbox.StatusOK {
		co, err = b.applyWrite(id, bytes.NewReader(req))
		status = cbox.StatusOf(err)
	}

	writeStatus(out, status)
	if status == cbox.StatusOK {
		if err := co.StreamTo(out); err != nil {
			b.logger.Warn("streaming object failed", "id", id, "error", err)
		}
	}
	return status
}

// applyWrite streams new settings into the object at id. An inactive slot is
// replaced only after a complete replacement object was built from r, so a
// failed write never leaves the slot half-replaced.
//
// A storage failure is returned but the in-memory change stays: the object
// keeps running with its new settings, even when its profiles are inactive.
func (b *Box) applyWrite(id cbox.ID, r io.Reader) (*cbox.ContainedObject, error) {
	co := b.objects.FetchContained(id)
	if co == nil {
		return nil, fmt.Errorf("%w: %d", cbox.StatusInvalidObjectID, id)
	}

	if inactive, ok := co.Object().(*cbox.Inactive); ok {
		profiles, obj, err := b.createFromStream(r)
		if err != nil {
			return nil, err
		}
		if obj.TypeID() != inactive.ActualType() {
			return nil, fmt.Errorf("%w: object %d is type %d, got %d",
				cbox.StatusInvalidType, id, inactive.ActualType(), obj.TypeID())
		}
		if _, err := b.objects.Add(obj, profiles, id, true); err != nil {
			return nil, err
		}
		co = b.objects.FetchContained(id)
	} else if err := co.StreamFrom(r, b.objects.IsSystem(id)); err != nil {
		return nil, err
	}

	storeErr := b.persist(co)

	if !b.objects.IsSystem(id) && !co.Profiles().Active(b.activeProfiles) {
		if _, err := b.deactivate(id); err != nil {
			return nil, err
		}
		co = b.objects.FetchContained(id)
	}
	b.objectsChanged()
	return co, storeErr
}

// createObject: [id profiles type payload] -> [id profiles type payload]
// Request id 0 assigns the next free user ID.
func (b *Box) createObject(in *stream.TeeReader, out *stream.CRCWriter) cbox.Status {
	id, err := cbox.ReadID(in)
	status := cbox.StatusOf(err)

	req, status := finishRequest(in, out, status)

	var co *cbox.ContainedObject
	if status == cbox.StatusOK {
		co, err = b.applyCreate(id, bytes.NewReader(req))
		status = cbox.StatusOf(err)
	}

	writeStatus(out, status)
	if status == cbox.StatusOK {
		if err := co.StreamTo(out); err != nil {
			b.logger.Warn("streaming object failed", "id", co.ID(), "error", err)
		}
	}
	return status
}

func (b *Box) applyCreate(id cbox.ID, r io.Reader) (*cbox.ContainedObject, error) {
	if id != cbox.InvalidID {
		if b.objects.IsSystem(id) {
			return nil, fmt.Errorf("%w: %d is in the system range", cbox.StatusInvalidObjectID, id)
		}
		if b.objects.FetchContained(id) != nil {
			return nil, fmt.Errorf("%w: %d already exists", cbox.StatusInvalidObjectID, id)
		}
	}

	profiles, obj, err := b.createFromStream(r)
	if err != nil {
		return nil, err
	}
	id, err = b.objects.Add(obj, profiles, id, false)
	if err != nil {
		return nil, err
	}
	co := b.objects.FetchContained(id)
	storeErr := b.persist(co)

	if !co.Profiles().Active(b.activeProfiles) {
		if _, err := b.deactivate(id); err != nil {
			return nil, err
		}
		co = b.objects.FetchContained(id)
	}
	b.forceUpdate = true
	b.objectsChanged()
	b.logger.Info("object created", "id", id, "type", obj.TypeID(), "profiles", uint8(profiles))
	return co, storeErr
}

// deleteObject: [id] -> []
func (b *Box) deleteObject(in *stream.TeeReader, out *stream.CRCWriter) cbox.Status {
	id, err := cbox.ReadID(in)
	status := cbox.StatusOf(err)

	_, status = finishRequest(in, out, status)
	if status == cbox.StatusOK {
		status = cbox.StatusOf(b.objects.Remove(id))
		if status == cbox.StatusOK {
			b.dispose(id)
			b.objectsChanged()
			b.logger.Info("object deleted", "id", id)
		}
	}
	writeStatus(out, status)
	return status
}

// listActiveObjects: [] -> (, [id profiles type payload])*
func (b *Box) listActiveObjects(in *stream.TeeReader, out *stream.CRCWriter) cbox.Status {
	_, status := finishRequest(in, out, cbox.StatusOK)
	writeStatus(out, status)
	if status != cbox.StatusOK {
		return status
	}
	for co := range b.objects.All() {
		_ = out.WriteListSeparator()
		if err := co.StreamTo(out); err != nil {
			b.logger.Warn("streaming object failed", "id", co.ID(), "error", err)
		}
	}
	return status
}

// readStoredObject: [id] -> [id record]
func (b *Box) readStoredObject(in *stream.TeeReader, out *stream.CRCWriter) cbox.Status {
	id, err := cbox.ReadID(in)
	status := cbox.StatusOf(err)

	_, status = finishRequest(in, out, status)

	var record []byte
	if status == cbox.StatusOK {
		err := b.storage.RetrieveObject(id, func(r io.Reader) error {
			var err error
			record, err = io.ReadAll(r)
			return err
		})
		switch {
		case errors.Is(err, storage.ErrRecordNotFound):
			status = cbox.StatusInvalidObjectID
		case err != nil:
			b.observer.StorageFailed("retrieve")
			status = cbox.StatusOf(err)
		}
	}

	writeStatus(out, status)
	if status == cbox.StatusOK {
		_ = cbox.WriteID(out, id)
		_, _ = out.Write(record)
	}
	return status
}

// listStoredObjects: [] -> (, [id record])*
func (b *Box) listStoredObjects(in *stream.TeeReader, out *stream.CRCWriter) cbox.Status {
	_, status := finishRequest(in, out, cbox.StatusOK)
	writeStatus(out, status)
	if status != cbox.StatusOK {
		return status
	}
	err := b.storage.RetrieveObjects(func(id cbox.ID, r io.Reader) error {
		_ = out.WriteListSeparator()
		if err := cbox.WriteID(out, id); err != nil {
			return err
		}
		_, err := io.Copy(out, r)
		return err
	})
	if err != nil {
		b.observer.StorageFailed("retrieve")
		b.logger.Warn("listing stored objects failed", "error", err)
	}
	return status
}

// clearObjects removes every user object from the container and storage.
func (b *Box) clearObjects(in *stream.TeeReader, out *stream.CRCWriter) cbox.Status {
	_, status := finishRequest(in, out, cbox.StatusOK)
	if status == cbox.StatusOK {
		for _, id := range b.objects.UserIDs() {
			b.dispose(id)
		}
		b.objects.Clear()
		clear(b.unpersisted)
		b.forceUpdate = true
		b.objectsChanged()
		b.logger.Info("user objects cleared")
	}
	writeStatus(out, status)
	return status
}

func (b *Box) reboot(in *stream.TeeReader, out *stream.CRCWriter) cbox.Status {
	_, status := finishRequest(in, out, cbox.StatusOK)
	writeStatus(out, status)
	if status == cbox.StatusOK {
		b.resetRequested = true
	}
	return status
}

func (b *Box) factoryResetCommand(in *stream.TeeReader, out *stream.CRCWriter) cbox.Status {
	_, status := finishRequest(in, out, cbox.StatusOK)
	if status == cbox.StatusOK {
		if err := b.storage.Clear(); err != nil {
			b.observer.StorageFailed("clear")
			b.logger.Error("clearing storage failed", "error", err)
			status = cbox.StatusOf(err)
		}
	}
	writeStatus(out, status)
	if status == cbox.StatusOK {
		b.resetRequested = true
		b.factoryReset = true
	}
	return status
}

// listCompatibleObjects: [interface type] -> (, [id])*
func (b *Box) listCompatibleObjects(in *stream.TeeReader, out *stream.CRCWriter) cbox.Status {
	iface, err := cbox.ReadType(in)
	status := cbox.StatusOf(err)

	_, status = finishRequest(in, out, status)
	writeStatus(out, status)
	if status != cbox.StatusOK {
		return status
	}
	for co := range b.objects.All() {
		if co.Object().Implements(iface) != nil {
			_ = out.WriteListSeparator()
			_ = cbox.WriteID(out, co.ID())
		}
	}
	return status
}

// discoverNewObjects: [] -> (, [id])*
// Discovered objects join every profile.
func (b *Box) discoverNewObjects(in *stream.TeeReader, out *stream.CRCWriter) cbox.Status {
	_, status := finishRequest(in, out, cbox.StatusOK)
	writeStatus(out, status)
	if status != cbox.StatusOK {
		return status
	}
	for _, scanner := range b.scanners {
		for _, obj := range scanner.Scan(b.objects) {
			id, err := b.objects.Add(obj, cbox.SystemProfiles, cbox.InvalidID, false)
			if err != nil {
				b.logger.Warn("adding discovered object failed", "type", obj.TypeID(), "error", err)
				continue
			}
			_ = b.persist(b.objects.FetchContained(id))
			_ = out.WriteListSeparator()
			_ = cbox.WriteID(out, id)
			b.logger.Info("object discovered", "id", id, "type", obj.TypeID())
		}
	}
	b.forceUpdate = true
	b.objectsChanged()
	return status
}

func (b *Box) applicationCommand(fn CommandFunc, in *stream.TeeReader, out *stream.CRCWriter) cbox.Status {
	req, status := finishRequest(in, out, cbox.StatusOK)

	var resp []byte
	if status == cbox.StatusOK {
		var err error
		resp, err = fn(req)
		status = cbox.StatusOf(err)
	}
	writeStatus(out, status)
	if status == cbox.StatusOK && len(resp) > 0 {
		_, _ = out.Write(resp)
	}
	return status
}

package box

import (
	"io"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

// ProfilesObject exposes the active profile mask as an object. Its payload is
// the single mask byte. Writing it reconciles every user object.
type ProfilesObject struct {
	box *Box
}

func (p *ProfilesObject) TypeID() cbox.Type { return cbox.ProfilesType }

func (p *ProfilesObject) StreamFrom(r io.Reader) error {
	active, err := cbox.ReadProfiles(r)
	if err != nil {
		return err
	}
	p.box.SetActiveProfiles(active)
	return nil
}

func (p *ProfilesObject) StreamTo(w io.Writer) error {
	return cbox.WriteProfiles(w, p.box.activeProfiles)
}

func (p *ProfilesObject) StreamPersistedTo(w io.Writer) error {
	return p.StreamTo(w)
}

func (p *ProfilesObject) Update(now cbox.Ticks) cbox.Ticks { return now + 1000 }

func (p *ProfilesObject) Implements(iface cbox.Type) any {
	if iface == cbox.ProfilesType {
		return p
	}
	return nil
}

// SetActiveProfiles sets the active mask and brings every user object in line
// with it.
//
// Objects rebuilt from storage may themselves change the mask. A nested call
// only records the new mask; the outer call then runs another pass over a
// fresh snapshot of IDs until a pass completes without a change.
func (b *Box) SetActiveProfiles(active cbox.Profiles) {
	b.activeProfiles = active
	if b.reconciling {
		b.reconcileAgain = true
		return
	}

	b.reconciling = true
	defer func() { b.reconciling = false }()

	for pass := 0; ; pass++ {
		if pass == maxReconcilePasses {
			b.logger.Warn("profile reconciliation did not settle", "passes", pass,
				"active_profiles", uint8(b.activeProfiles))
			break
		}
		b.reconcileAgain = false
		if swaps := b.reconcile(); swaps > 0 {
			b.forceUpdate = true
			b.logger.Debug("profiles reconciled", "swaps", swaps, "active_profiles", uint8(b.activeProfiles))
		}
		if !b.reconcileAgain {
			break
		}
	}
	b.objectsChanged()
}

// reconcile makes one pass over the user objects and returns the number of
// activations and deactivations.
func (b *Box) reconcile() int {
	swaps := 0
	for _, id := range b.objects.UserIDs() {
		co := b.objects.FetchContained(id)
		if co == nil {
			continue
		}
		shouldBeActive := co.Profiles().Active(b.activeProfiles)

		switch {
		case shouldBeActive && co.Inactive():
			if err := b.reloadFromStorage(id); err == nil {
				swaps++
			}
		case !shouldBeActive && !co.Inactive():
			swapped, err := b.deactivate(id)
			if err != nil {
				b.logger.Warn("deactivating object failed", "id", id, "error", err)
				continue
			}
			if swapped {
				swaps++
			}
		}
	}
	return swaps
}

package box

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
	"github.com/nerrad567/brewlogic-core/internal/storage"
)

// Logger defines the logging interface used by the Box.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Observer receives engine events. Implementations must be safe to call from
// the main loop and cheap; the metrics package publishes them to Prometheus.
type Observer interface {
	CommandHandled(cmd CommandID, status cbox.Status, elapsed time.Duration)
	ObjectsChanged(total, inactive int, activeProfiles cbox.Profiles)
	StorageFailed(op string)
}

type noopObserver struct{}

func (noopObserver) CommandHandled(CommandID, cbox.Status, time.Duration) {}
func (noopObserver) ObjectsChanged(int, int, cbox.Profiles)               {}
func (noopObserver) StorageFailed(string)                                 {}

// Scanner discovers objects attached to the controller (for example sensors
// on a bus). Scan returns only objects not yet represented in c.
type Scanner interface {
	Scan(c *cbox.Container) []cbox.Object
}

// ResetFunc restarts the controller. It is called after the response to a
// REBOOT or FACTORY_RESET command has been flushed.
type ResetFunc func(factoryReset bool)

// ErrHalted is returned by HandleCommand and Communicate after a reset was
// requested. No further commands are processed.
var ErrHalted = errors.New("box: halted for reset")

// maxReconcilePasses bounds reconciliation when reloaded objects keep
// changing the active profiles.
const maxReconcilePasses = 8

// Config holds the engine settings from the box section of config.yaml.
type Config struct {
	// StartID is the first user object ID. IDs below it are system objects.
	StartID cbox.ID

	// DefaultProfiles is the active mask until the profiles object is loaded
	// from storage or written.
	DefaultProfiles cbox.Profiles
}

// Option configures a Box at construction.
type Option func(*Box)

// WithLogger sets the logger used from construction on, including storage replay.
func WithLogger(l Logger) Option {
	return func(b *Box) { b.logger = l }
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(b *Box) { b.observer = o }
}

// WithScanners sets the scanners run by DISCOVER_NEW_OBJECTS.
func WithScanners(s ...Scanner) Option {
	return func(b *Box) { b.scanners = append(b.scanners, s...) }
}

// WithResetFunc sets the function invoked by REBOOT and FACTORY_RESET.
func WithResetFunc(fn ResetFunc) Option {
	return func(b *Box) { b.reset = fn }
}

// Box is the command engine. See the package documentation.
type Box struct {
	factory  *cbox.Factory
	objects  *cbox.Container
	storage  storage.Storage
	scanners []Scanner
	commands map[CommandID]CommandFunc
	reset    ResetFunc
	logger   Logger
	observer Observer

	activeProfiles cbox.Profiles
	lastUpdate     cbox.Ticks
	forceUpdate    bool

	reconciling    bool
	reconcileAgain bool

	// unpersisted holds user objects whose last store failed. They are
	// never deactivated: the live object is their only copy.
	unpersisted map[cbox.ID]struct{}

	resetRequested bool
	factoryReset   bool
	halted         bool
}

// New creates the engine around a container that already holds the
// application's system objects.
//
// It adds the profiles object at cbox.ProfilesID, raises the container's
// start ID to cfg.StartID, replays every storage record through the same
// construction path as CREATE_OBJECT and reconciles profiles once.
//
// Parameters:
//   - factory: constructors for user-creatable types
//   - objects: container seeded with system objects
//   - store: persistent record storage
//   - cfg: engine settings
//
// Returns:
//   - *Box: ready engine
//   - error: if the profiles object cannot be added or storage cannot be enumerated
func New(factory *cbox.Factory, objects *cbox.Container, store storage.Storage, cfg Config, opts ...Option) (*Box, error) {
	b := &Box{
		factory:        factory,
		objects:        objects,
		storage:        store,
		commands:       make(map[CommandID]CommandFunc),
		unpersisted:    make(map[cbox.ID]struct{}),
		reset:          func(bool) {},
		logger:         noopLogger{},
		observer:       noopObserver{},
		activeProfiles: cfg.DefaultProfiles,
	}
	for _, opt := range opts {
		opt(b)
	}

	startID := cfg.StartID
	if startID <= cbox.ProfilesID {
		return nil, fmt.Errorf("start id %d must be above the profiles object id %d", startID, cbox.ProfilesID)
	}
	if _, err := objects.Add(&ProfilesObject{box: b}, cbox.SystemProfiles, cbox.ProfilesID, false); err != nil {
		return nil, fmt.Errorf("adding profiles object: %w", err)
	}
	objects.SetStartID(startID)

	if err := b.loadObjectsFromStorage(); err != nil {
		return nil, err
	}
	return b, nil
}

// SetLogger replaces the logger.
func (b *Box) SetLogger(l Logger) {
	b.logger = l
}

// Objects returns the container. It must only be used from the main loop.
func (b *Box) Objects() *cbox.Container {
	return b.objects
}

// ActiveProfiles returns the active profile mask.
func (b *Box) ActiveProfiles() cbox.Profiles {
	return b.activeProfiles
}

// LastUpdate returns the timestamp of the last Update call.
func (b *Box) LastUpdate() cbox.Ticks {
	return b.lastUpdate
}

// Halted reports whether a reset was requested.
func (b *Box) Halted() bool {
	return b.halted
}

// RegisterCommand installs an application command. IDs below
// FirstApplicationCommand are reserved.
func (b *Box) RegisterCommand(id CommandID, fn CommandFunc) error {
	if id < FirstApplicationCommand {
		return fmt.Errorf("%w: command %d is reserved", cbox.StatusInvalidCommand, id)
	}
	if fn == nil {
		return fmt.Errorf("%w: nil handler for command %d", cbox.StatusInvalidParameter, id)
	}
	b.commands[id] = fn
	return nil
}

// Update runs the periodic object sweep. After bulk reconfiguration (storage
// replay, profile changes, clear) every object is updated regardless of schedule.
func (b *Box) Update(now cbox.Ticks) {
	b.lastUpdate = now
	if b.forceUpdate {
		b.forceUpdate = false
		b.objects.ForcedUpdate(now)
		return
	}
	b.objects.Update(now)
}

// createFromStream builds an object from profiles, type tag and payload.
// Nothing is added to the container.
func (b *Box) createFromStream(r io.Reader) (cbox.Profiles, cbox.Object, error) {
	profiles, err := cbox.ReadProfiles(r)
	if err != nil {
		return 0, nil, err
	}
	typeID, err := cbox.ReadType(r)
	if err != nil {
		return 0, nil, err
	}
	obj, err := b.factory.Make(typeID)
	if err != nil {
		return 0, nil, err
	}
	if err := obj.StreamFrom(r); err != nil {
		return 0, nil, err
	}
	return profiles, obj, nil
}

// StoreUpdatedObject persists the current state of the object at id. Objects
// that change their own persisted settings call this through the application.
func (b *Box) StoreUpdatedObject(id cbox.ID) error {
	co := b.objects.FetchContained(id)
	if co == nil {
		return fmt.Errorf("%w: %d", cbox.StatusInvalidObjectID, id)
	}
	if co.Inactive() {
		return fmt.Errorf("%w: %d is inactive", cbox.StatusObjectNotReadable, id)
	}
	return b.persist(co)
}

// ReloadStoredObject rebuilds the object at id from its storage record,
// replacing the live object.
func (b *Box) ReloadStoredObject(id cbox.ID) error {
	if b.objects.FetchContained(id) == nil {
		return fmt.Errorf("%w: %d", cbox.StatusInvalidObjectID, id)
	}
	return b.reloadFromStorage(id)
}

func (b *Box) persist(co *cbox.ContainedObject) error {
	if _, ok := co.Object().(cbox.Transient); ok {
		return nil
	}
	err := b.storage.StoreObject(co.ID(), co.StreamPersistedTo)
	if err != nil {
		b.observer.StorageFailed("store")
		b.logger.Error("persisting object failed", "id", co.ID(), "error", err)
		if !b.objects.IsSystem(co.ID()) {
			b.unpersisted[co.ID()] = struct{}{}
		}
		return err
	}
	delete(b.unpersisted, co.ID())
	return nil
}

// deactivate swaps the object at id for an inactive sentinel unless it has no
// storage record to come back from. It reports whether the swap happened.
func (b *Box) deactivate(id cbox.ID) (bool, error) {
	if _, ok := b.unpersisted[id]; ok {
		b.logger.Warn("keeping unpersisted object active", "id", id)
		return false, nil
	}
	if err := b.objects.Deactivate(id); err != nil {
		return false, err
	}
	return true, nil
}

func (b *Box) dispose(id cbox.ID) {
	delete(b.unpersisted, id)
	if err := b.storage.DisposeObject(id); err != nil {
		b.observer.StorageFailed("dispose")
		b.logger.Error("disposing object failed", "id", id, "error", err)
	}
}

func (b *Box) reloadFromStorage(id cbox.ID) error {
	err := b.storage.RetrieveObject(id, func(r io.Reader) error {
		profiles, obj, err := b.createFromStream(r)
		if err != nil {
			return err
		}
		_, err = b.objects.Add(obj, profiles, id, true)
		return err
	})
	if err != nil {
		b.logger.Warn("reloading object from storage failed", "id", id, "error", err)
	}
	return err
}

// loadObjectsFromStorage replays every record. Records for unknown IDs are
// created; records for existing (system) objects are streamed into them.
// A bad record is logged and skipped.
func (b *Box) loadObjectsFromStorage() error {
	loaded := 0
	err := b.storage.RetrieveObjects(func(id cbox.ID, r io.Reader) error {
		if co := b.objects.FetchContained(id); co != nil {
			if err := co.StreamFrom(r, b.objects.IsSystem(id)); err != nil {
				b.logger.Warn("loading stored settings failed", "id", id, "error", err)
				return nil
			}
			loaded++
			return nil
		}
		profiles, obj, err := b.createFromStream(r)
		if err != nil {
			b.logger.Warn("recreating stored object failed", "id", id, "error", err)
			return nil
		}
		if _, err := b.objects.Add(obj, profiles, id, false); err != nil {
			b.logger.Warn("adding stored object failed", "id", id, "error", err)
			return nil
		}
		loaded++
		return nil
	})
	if err != nil {
		return fmt.Errorf("loading objects from storage: %w", err)
	}

	b.SetActiveProfiles(b.activeProfiles)
	b.logger.Info("objects loaded from storage", "count", loaded, "active_profiles", fmt.Sprintf("0x%02X", uint8(b.activeProfiles)))
	return nil
}

func (b *Box) objectsChanged() {
	total, inactive := 0, 0
	for co := range b.objects.All() {
		total++
		if co.Inactive() {
			inactive++
		}
	}
	b.observer.ObjectsChanged(total, inactive, b.activeProfiles)
}

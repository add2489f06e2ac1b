package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	_ "github.com/nerrad567/brewlogic-core/migrations"

	"github.com/nerrad567/brewlogic-core/internal/api"
	"github.com/nerrad567/brewlogic-core/internal/blox"
	"github.com/nerrad567/brewlogic-core/internal/box"
	"github.com/nerrad567/brewlogic-core/internal/cbox"
	"github.com/nerrad567/brewlogic-core/internal/connection"
	"github.com/nerrad567/brewlogic-core/internal/infrastructure/config"
	"github.com/nerrad567/brewlogic-core/internal/infrastructure/database"
	"github.com/nerrad567/brewlogic-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/brewlogic-core/internal/infrastructure/logging"
	"github.com/nerrad567/brewlogic-core/internal/infrastructure/metrics"
	"github.com/nerrad567/brewlogic-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/brewlogic-core/internal/storage"
	"github.com/nerrad567/brewlogic-core/internal/telemetry"
)

// protocolVersion is reported by the SysInfo object.
const protocolVersion = "1"

// statusPublishInterval is how often the HTTP status snapshot is refreshed.
const statusPublishInterval = time.Second

// controller owns every component of a running device. All fields are used
// from the loop goroutine only, except where noted.
type controller struct {
	cfg *config.Config
	log *logging.Logger

	objects *cbox.Container
	box     *box.Box
	pool    *connection.Pool // safe for concurrent Add
	metrics *metrics.Metrics
	status  *api.Status // safe for concurrent reads
	sampler *telemetry.Sampler
	scanner *blox.MockBusScanner

	// checkers are reported by the HTTP health endpoint.
	checkers map[string]api.HealthChecker

	started     time.Time
	lastPublish time.Time

	closers []func() error
}

// run is the actual application logic, separated from main for testability.
//
// Returns:
//   - error: nil on clean shutdown, errResetRequested after REBOOT or
//     FACTORY_RESET, or an error describing a startup failure
func run(ctx context.Context, configPath string) error {
	log := logging.Default()
	log.Info("starting BrewLogic Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)

	c, err := newController(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer c.close()

	if err := c.startConnections(ctx); err != nil {
		return err
	}
	if err := c.startTelemetry(); err != nil {
		return err
	}
	if err := c.startHTTP(); err != nil {
		return err
	}

	log.Info("initialisation complete", "objects", c.objects.Len())
	return c.loop(ctx)
}

// newController opens storage and restores the object container.
func newController(ctx context.Context, cfg *config.Config, log *logging.Logger) (*controller, error) {
	c := &controller{
		cfg:     cfg,
		log:     log,
		objects: cbox.NewContainer(),
		metrics: metrics.New(),
		status:  &api.Status{},
		scanner: blox.NewMockBusScanner(cfg.Box.MockSensors...),
		started: time.Now(),

		checkers: make(map[string]api.HealthChecker),
	}

	store, err := c.openStorage(ctx)
	if err != nil {
		c.close()
		return nil, err
	}

	if err := c.addSystemObjects(); err != nil {
		c.close()
		return nil, err
	}

	factory, err := blox.NewFactory(c.objects)
	if err != nil {
		c.close()
		return nil, fmt.Errorf("registering block types: %w", err)
	}

	c.box, err = box.New(factory, c.objects, store, box.Config{
		StartID:         cbox.ID(cfg.Box.UserStartID),
		DefaultProfiles: cbox.Profiles(cfg.Box.DefaultProfiles),
	},
		box.WithLogger(log.Component("box")),
		box.WithObserver(c.metrics),
		box.WithScanners(c.scanner),
		box.WithResetFunc(func(factoryReset bool) {
			log.Warn("restart requested by client", "factory_reset", factoryReset)
		}),
	)
	if err != nil {
		c.close()
		return nil, fmt.Errorf("starting box: %w", err)
	}
	log.Info("objects restored",
		"objects", c.objects.Len(),
		"active_profiles", uint8(c.box.ActiveProfiles()),
	)

	c.pool = connection.NewPool(
		connection.WithLogger(log.Component("connection")),
		connection.WithBanner(connection.DefaultBanner, version),
		connection.WithObserver(c.metrics),
	)
	c.onClose(c.pool.Close)

	c.publishStatus(c.started)
	return c, nil
}

// openStorage opens the configured record store.
func (c *controller) openStorage(ctx context.Context) (storage.Storage, error) {
	cfg := c.cfg.Storage
	var opts []storage.Option
	if cfg.Capacity > 0 {
		opts = append(opts, storage.WithCapacity(cfg.Capacity))
	}

	switch cfg.Backend {
	case "memory":
		c.log.Warn("using memory storage, objects are lost on restart")
		return storage.NewMemoryStore(opts...), nil

	case "pebble":
		store, err := storage.OpenPebbleStore(cfg.PebblePath, opts...)
		if err != nil {
			return nil, fmt.Errorf("opening pebble store: %w", err)
		}
		c.onClose(store.Close)
		if err := c.metrics.RegisterPebble(store); err != nil {
			c.log.Warn("pebble metrics unavailable", "error", err)
		}
		c.log.Info("pebble store opened", "path", cfg.PebblePath)
		return store, nil

	default:
		db, err := database.Open(database.Config{
			Path:        c.cfg.Database.Path,
			WALMode:     c.cfg.Database.WALMode,
			BusyTimeout: c.cfg.Database.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		c.onClose(db.Close)
		c.checkers["database"] = db
		if err := db.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		c.log.Info("database connected", "path", c.cfg.Database.Path)
		return storage.NewSQLiteStore(db, opts...), nil
	}
}

// addSystemObjects seeds the container with the objects that exist on every
// device. The box adds the profiles object itself.
func (c *controller) addSystemObjects() error {
	info := blox.NewSysInfo(blox.SysInfoState{
		DeviceID:        c.cfg.Device.ID,
		Version:         version,
		Platform:        platform(c.cfg.Device.Platform),
		ProtocolVersion: protocolVersion,
	})
	if _, err := c.objects.Add(info, cbox.SystemProfiles, blox.SysInfoID, false); err != nil {
		return fmt.Errorf("adding system info: %w", err)
	}
	if _, err := c.objects.Add(blox.NewTicks(), cbox.SystemProfiles, blox.TicksID, false); err != nil {
		return fmt.Errorf("adding ticks: %w", err)
	}
	return nil
}

func platform(configured string) string {
	if configured != "" {
		return configured
	}
	return runtime.GOOS + "/" + runtime.GOARCH
}

// startConnections opens every configured protocol transport.
func (c *controller) startConnections(ctx context.Context) error {
	conns := c.cfg.Connections

	if conns.TCP.Enabled {
		addr := fmt.Sprintf("%s:%d", conns.TCP.Host, conns.TCP.Port)
		l, err := connection.Listen(ctx, addr, c.pool)
		if err != nil {
			return err
		}
		c.onClose(l.Close)
	}

	if conns.Serial.Enabled {
		sc, err := connection.OpenSerial(conns.Serial.Device, c.log.Component("serial"))
		if err != nil {
			return err
		}
		if err := c.pool.Add(sc); err != nil {
			if cerr := sc.Close(); cerr != nil {
				c.log.Error("closing serial connection failed", "error", cerr)
			}
			return err
		}
	}

	if conns.MQTT.Enabled {
		client, err := mqtt.Connect(c.cfg.MQTT, c.cfg.Device.ID)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		c.onClose(client.Close)
		c.checkers["mqtt"] = client
		client.SetLogger(c.log.Component("mqtt"))
		client.SetOnDisconnect(func(err error) {
			c.log.Warn("MQTT disconnected", "error", err)
		})
		c.log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", c.cfg.MQTT.Broker.Host, c.cfg.MQTT.Broker.Port),
			"command_topic", client.Topics().Command(),
		)

		mc, err := connection.NewMQTTConn(client, c.log.Component("mqtt"))
		if err != nil {
			return err
		}
		if err := c.pool.Add(mc); err != nil {
			return err
		}
	}

	return nil
}

// startTelemetry connects to InfluxDB when enabled.
func (c *controller) startTelemetry() error {
	if !c.cfg.InfluxDB.Enabled || c.cfg.Box.TelemetryInterval == 0 {
		c.log.Info("telemetry disabled")
		return nil
	}

	client, err := influxdb.Connect(c.cfg.InfluxDB, influxdb.WithErrorHandler(func(err error) {
		c.log.Error("InfluxDB write error", "error", err)
	}))
	if err != nil {
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	c.onClose(client.Close)
	c.checkers["influxdb"] = client

	c.sampler = telemetry.NewSampler(c.cfg.Device.ID, client, c.cfg.GetTelemetryInterval())
	c.sampler.SetLogger(c.log.Component("telemetry"))
	c.log.Info("InfluxDB connected",
		"url", c.cfg.InfluxDB.URL,
		"bucket", c.cfg.InfluxDB.Bucket,
	)
	return nil
}

// startHTTP starts the status server when enabled.
func (c *controller) startHTTP() error {
	if !c.cfg.HTTP.Enabled {
		return nil
	}

	srv, err := api.New(api.Deps{
		Config:   c.cfg.HTTP,
		Device:   c.cfg.Device,
		Logger:   c.log.Component("api"),
		Status:   c.status,
		Metrics:  c.metrics.Handler(),
		Checkers: c.checkers,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := srv.Start(); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	c.onClose(srv.Close)
	return nil
}

// loop drives the box until ctx is cancelled or a reset is requested.
func (c *controller) loop(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.GetUpdateInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("shutdown signal received")
			return nil
		case now := <-ticker.C:
			if err := c.step(now); err != nil {
				return err
			}
		}
	}
}

// step runs one iteration: pending commands, the update sweep, telemetry
// and the status snapshot.
func (c *controller) step(now time.Time) error {
	err := c.box.Communicate(c.pool)
	if errors.Is(err, box.ErrHalted) {
		return errResetRequested
	}
	if err != nil {
		c.log.Debug("command handling stopped early", "error", err)
	}

	c.box.Update(c.ticks(now))

	if c.sampler != nil {
		c.sampler.Tick(c.objects, c.box.ActiveProfiles())
	}
	if now.Sub(c.lastPublish) >= statusPublishInterval {
		c.publishStatus(now)
	}
	return nil
}

// ticks converts wall time to milliseconds since start. The value wraps
// after about 49 days, as object schedules expect.
func (c *controller) ticks(now time.Time) cbox.Ticks {
	return cbox.Ticks(now.Sub(c.started).Milliseconds())
}

func (c *controller) publishStatus(now time.Time) {
	c.status.Publish(api.Capture(c.objects, c.box.ActiveProfiles(), c.pool.Len(), now))
	c.lastPublish = now
}

func (c *controller) onClose(fn func() error) {
	c.closers = append(c.closers, fn)
}

// close releases resources in reverse order of acquisition.
func (c *controller) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.log.Error("error during shutdown", "error", err)
		}
	}
	c.closers = nil
}

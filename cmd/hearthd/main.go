// Hearth Core - Smart Home Automation Platform
//
// This is the main entry point for the Hearth Core daemon. Hearth manages
// a registry of smart home devices (lights, thermostats, cameras, locks),
// dispatches validated commands to device drivers, and runs time- and
// condition-triggered schedules against the registry.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/hearthd/hearth-core/migrations"

	"github.com/hearthd/hearth-core/internal/api"
	"github.com/hearthd/hearth-core/internal/controller"
	"github.com/hearthd/hearth-core/internal/device"
	"github.com/hearthd/hearth-core/internal/driver"
	"github.com/hearthd/hearth-core/internal/infrastructure/config"
	"github.com/hearthd/hearth-core/internal/infrastructure/database"
	"github.com/hearthd/hearth-core/internal/infrastructure/influxdb"
	"github.com/hearthd/hearth-core/internal/infrastructure/logging"
	"github.com/hearthd/hearth-core/internal/infrastructure/mqtt"
	"github.com/hearthd/hearth-core/internal/schedule"
	"github.com/hearthd/hearth-core/internal/scheduler"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel the root context on interrupt signals for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // Linear startup wiring
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Hearth Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to MQTT broker (optional). Without MQTT commands are applied
	// through an in-memory driver, which suits development and testing.
	var mqttClient *mqtt.Client
	var drv device.Driver
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		drv = driver.NewMQTTDriver(mqttClient)
	} else {
		log.Info("MQTT disabled, using in-memory driver")
		drv = driver.NewMemoryDriver()
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build the controller over persistent repositories and hydrate the
	// registry from the database.
	deviceRepo := device.NewSQLiteRepository(db.DB)
	schedRepo := schedule.NewSQLiteRepository(db.DB)

	ctrl := controller.New(device.NewFactory(), drv, deviceRepo, schedRepo)
	ctrl.SetLogger(log)

	if hydrateErr := ctrl.Hydrate(ctx); hydrateErr != nil {
		return fmt.Errorf("hydrating controller: %w", hydrateErr)
	}
	log.Info("controller hydrated",
		"devices", len(ctrl.ListDevices()),
		"schedules", len(ctrl.ListSchedules()),
	)

	// Feed driver state reports back into the registry.
	if mqttClient != nil {
		ingest := driver.NewStateIngest(ctrl, log)
		if ingestErr := ingest.Start(mqttClient, byte(cfg.MQTT.QoS)); ingestErr != nil {
			return fmt.Errorf("starting state ingest: %w", ingestErr)
		}
		log.Info("state ingest started")
	}

	// Publish confirmed device state and write telemetry on every change.
	topics := mqtt.Topics{}
	ctrl.SubscribeState(func(deviceID string, state device.State) {
		if mqttClient != nil {
			payload, marshalErr := json.Marshal(map[string]any{
				"device_id": deviceID,
				"state":     state,
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			if marshalErr == nil {
				if pubErr := mqttClient.PublishRetained(topics.CoreDeviceState(deviceID), payload); pubErr != nil {
					log.Debug("publishing device state failed", "device_id", deviceID, "error", pubErr)
				}
			}
		}

		if influxClient != nil {
			writeStateTelemetry(influxClient, ctrl, deviceID, state)
		}
	})

	// Start HTTP API server
	server, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Logger:     log,
		Controller: ctrl,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Start the schedule executor and arm hydrated schedules.
	exec := scheduler.New(ctrl, scheduler.Config{
		Location:        cfg.SchedulerLocation(),
		DispatchTimeout: cfg.DispatchTimeout(),
	})
	exec.SetLogger(log)
	exec.SetOnRun(func(run *schedule.RunResult) {
		server.BroadcastScheduleRun(run)
		if mqttClient != nil {
			payload, marshalErr := json.Marshal(run)
			if marshalErr == nil {
				if pubErr := mqttClient.PublishEvent(topics.CoreScheduleFired(run.ScheduleID), payload); pubErr != nil {
					log.Debug("publishing schedule run failed", "schedule_id", run.ScheduleID, "error", pubErr)
				}
			}
		}
		if influxClient != nil {
			influxClient.WriteScheduleRun(
				run.ScheduleID,
				string(run.Status),
				run.ActionsTotal,
				run.ActionsFailed,
				run.CompletedAt.Sub(run.StartedAt),
			)
		}
	})

	ctrl.AddScheduleObserver(exec)
	ctrl.SubscribeState(exec.OnStateChange)
	for _, sched := range ctrl.ListSchedules() {
		s := sched
		exec.ScheduleAdded(&s)
	}

	exec.Start()
	defer exec.Stop()

	// Seed demonstration devices and routines on an empty registry
	if cfg.Seed.Enabled && len(ctrl.ListDevices()) == 0 {
		if seedErr := seed(ctx, ctrl); seedErr != nil {
			log.Warn("seeding failed", "error", seedErr)
		} else {
			log.Info("seeded demonstration devices and routines")
		}
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. Scheduler (drains in-flight runs)
	// 2. API server
	// 3. InfluxDB (if enabled)
	// 4. MQTT (if enabled)
	// 5. Database

	log.Info("Hearth Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HEARTH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HEARTH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// writeStateTelemetry flattens numeric and boolean state fields into
// time-series points.
func writeStateTelemetry(influx *influxdb.Client, ctrl *controller.Controller, deviceID string, state device.State) {
	deviceType := ""
	if dev, err := ctrl.GetDevice(deviceID); err == nil {
		deviceType = string(dev.Type())
	}

	for field, val := range state {
		switch v := val.(type) {
		case float64:
			influx.WriteDeviceState(deviceID, deviceType, field, v)
		case int:
			influx.WriteDeviceState(deviceID, deviceType, field, float64(v))
		case bool:
			boolVal := 0.0
			if v {
				boolVal = 1.0
			}
			influx.WriteDeviceState(deviceID, deviceType, field, boolVal)
		}
	}
}

// healthCheck verifies all infrastructure connections are healthy.
// MQTT and InfluxDB clients may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, server *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	return nil
}

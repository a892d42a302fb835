// babylog - baby-care record API
//
// This is the main entry point for the babylog server. It wires the SQLite
// store, the auth and logbook services and the HTTP API, plus the optional
// MQTT activity feed, InfluxDB care metrics and OpenTelemetry tracing.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/babylog/internal/activity"
	"github.com/nerrad567/babylog/internal/api"
	"github.com/nerrad567/babylog/internal/auth"
	"github.com/nerrad567/babylog/internal/infrastructure/config"
	"github.com/nerrad567/babylog/internal/infrastructure/database"
	"github.com/nerrad567/babylog/internal/infrastructure/influxdb"
	"github.com/nerrad567/babylog/internal/infrastructure/logging"
	"github.com/nerrad567/babylog/internal/infrastructure/mqtt"
	"github.com/nerrad567/babylog/internal/infrastructure/telemetry"
	"github.com/nerrad567/babylog/internal/logbook"
	"github.com/nerrad567/babylog/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// telemetryShutdownTimeout bounds the final span flush.
const telemetryShutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application lifecycle, separated from main for testability.
// It returns nil on a clean shutdown after ctx is cancelled.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting babylog",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, version)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if shutdownErr := shutdownTracing(flushCtx); shutdownErr != nil {
			log.Error("error flushing traces", "error", shutdownErr)
		}
	}()

	db, err := database.Open(ctx, database.Config{
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

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	var observers []logbook.Observer
	optionalChecks := make(map[string]api.HealthChecker)

	if cfg.MQTT.Enabled {
		publisher, mqttClient, closeMQTT, mqttErr := startActivityFeed(cfg.MQTT, log)
		if mqttErr != nil {
			return mqttErr
		}
		defer closeMQTT()
		observers = append(observers, publisher)
		optionalChecks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT activity feed disabled")
	}

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
			stats := influxClient.Stats()
			log.Info("InfluxDB connection closed",
				"points_written", stats.PointsWritten,
				"failed_batches", stats.FailedBatches,
			)
		}()
		influxClient.SetOnError(func(err error) {
			log.Warn("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		observers = append(observers, activity.NewRecorder(influxClient, time.Local))
		optionalChecks["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	authSvc, err := auth.NewService(auth.NewUserRepository(db.DB), auth.ServiceConfig{
		Secret:   cfg.Security.JWT.Secret,
		TokenTTL: cfg.GetAccessTokenTTL(),
	})
	if err != nil {
		return fmt.Errorf("creating auth service: %w", err)
	}

	server, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log,
		Auth:    authSvc,
		Bottles: logbook.NewBottleService(db.DB, observers...),
		Diapers: logbook.NewDiaperService(db.DB, observers...),
		Checks: map[string]api.HealthChecker{
			"database": db,
		},
		OptionalChecks: optionalChecks,
		Version:        version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// startActivityFeed connects to the broker and returns an observer that
// publishes log changes, along with the client for health reporting. The
// returned close function drains the queue before disconnecting.
func startActivityFeed(cfg config.MQTTConfig, log *logging.Logger) (logbook.Observer, *mqtt.Client, func(), error) {
	client, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", cfg.Broker.ClientID,
		"topic_prefix", client.Topics().Prefix,
	)

	publisher := activity.NewPublisher(client, client.Topics().Activity, client.QoS(), log)

	return publisher, client, func() {
		publisher.Close()
		log.Info("disconnecting from MQTT")
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}, nil
}

// getConfigPath returns BABYLOG_CONFIG, or "" to run from defaults and
// environment variables alone.
func getConfigPath() string {
	return os.Getenv("BABYLOG_CONFIG")
}

// Command miheaterd serves the heater over HTTP, WebSocket and, optionally,
// MQTT, polling it on a fixed interval.
//
// @title                       miheater API
// @version                     1.0
// @description                 Control and monitoring API for Xiaomi Mi smart space heaters.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "miheater/docs"
	"miheater/internal/config"
	"miheater/internal/handlers"
	"miheater/internal/heater"
	"miheater/internal/logger"
	"miheater/internal/mqtt"
	"miheater/internal/repository"
	"miheater/internal/repository/db"
	"miheater/internal/server"
	"miheater/internal/service"
	"miheater/internal/transport"
	"miheater/internal/tsdb"
)

const (
	defaultSimTick  = time.Second
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	log := logger.Get(logger.InfoLevel)
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load("configs", ".")
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	log.SetLevel(cfg.Log.Level)

	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.DB.Path, "err", err)
	}
	defer closeDB(conn, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dev := openDevice(ctx, cfg, log)

	hub := handlers.NewHub()
	sinks := []service.StateSink{hub}

	pub := connectMQTT(cfg, log)
	if pub != nil {
		defer pub.Close()
		sinks = append(sinks, pub)
	}
	if influx := connectInflux(ctx, cfg, log); influx != nil {
		defer influx.Close()
		sinks = append(sinks, influx)
	}

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Deps{
		Device:   dev,
		Auth:     service.AuthConfig{SigningKey: cfg.Auth.SigningKey, TokenTTL: cfg.Auth.TokenTTL},
		CacheTTL: cfg.HTTP.CacheTTL,
		Sinks:    sinks,
		Logger:   log,
	})
	if err := services.Bootstrap(ctx, cfg.Auth.AdminUser, cfg.Auth.AdminPassword); err != nil {
		log.Fatalw("failed to create admin user", "err", err)
	}
	if pub != nil {
		if err := pub.HandleCommands(services.Control); err != nil {
			log.Errorw("mqtt commands disabled", "err", err)
		}
	}

	go services.Poller.Run(ctx, cfg.Poll.Interval)

	apiHandler := handlers.NewHandler(services, log.Named("http"), handlers.Config{
		RateLimitPerSec: cfg.HTTP.RateLimitPerSec,
		RateBurst:       cfg.HTTP.RateBurst,
		Hub:             hub,
	})
	srv := server.New(cfg.Port, apiHandler.InitRoutes())
	runHTTPServer(srv, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// openDevice builds the heater client over the configured transport and
// resolves its model. Resolution failures are logged; the configured or
// default model stays active.
func openDevice(ctx context.Context, cfg *config.Config, log *logger.Logger) *heater.Client {
	registry := heater.NewRegistry()
	if cfg.Device.ModelsFile != "" {
		n, err := registry.LoadModelsFile(cfg.Device.ModelsFile)
		if err != nil {
			log.Fatalw("failed to load models file", "path", cfg.Device.ModelsFile, "err", err)
		}
		log.Infow("loaded heater models", "path", cfg.Device.ModelsFile, "count", n)
	}

	var t heater.Transport
	if cfg.Device.Simulate {
		model := cfg.Device.Model
		if model == "" {
			model = heater.DefaultModel
		}
		sim := transport.NewSimulator(registry.Resolve(model), time.Now())
		go sim.Run(ctx, defaultSimTick)
		t = sim
		log.Infow("using simulated heater", "model", model)
	} else {
		t = transport.NewBridge(transport.BridgeConfig{
			URL:     cfg.Device.BridgeURL,
			Host:    cfg.Device.Host,
			Token:   cfg.Device.Token,
			Timeout: cfg.Device.Timeout,
		})
	}

	dev := heater.New(transport.Serialize(t, log.Named("transport")),
		heater.WithRegistry(registry),
		heater.WithModel(cfg.Device.Model),
		heater.WithLogger(log.Named("heater")),
	)

	rctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	if _, err := dev.ResolveModel(rctx); err != nil {
		log.Warnw("could not resolve heater model", "model", dev.Model().ID, "err", err)
	}
	return dev
}

func connectMQTT(cfg *config.Config, log *logger.Logger) *mqtt.Publisher {
	if !cfg.MQTT.Enabled {
		return nil
	}
	pub, err := mqtt.Connect(mqtt.Config{
		Broker:          cfg.MQTT.Broker,
		ClientID:        cfg.MQTT.ClientID,
		Username:        cfg.MQTT.Username,
		Password:        cfg.MQTT.Password,
		TopicPrefix:     cfg.MQTT.TopicPrefix,
		DiscoveryPrefix: cfg.MQTT.DiscoveryPrefix,
		Device:          cfg.Device.Name,
	}, log.Named("mqtt"))
	if err != nil {
		log.Errorw("mqtt disabled", "broker", cfg.MQTT.Broker, "err", err)
		return nil
	}
	return pub
}

func connectInflux(ctx context.Context, cfg *config.Config, log *logger.Logger) *tsdb.Sink {
	if !cfg.InfluxDB.Enabled {
		return nil
	}
	sink, err := tsdb.Connect(ctx, tsdb.Config{
		URL:    cfg.InfluxDB.URL,
		Token:  cfg.InfluxDB.Token,
		Org:    cfg.InfluxDB.Org,
		Bucket: cfg.InfluxDB.Bucket,
		Device: cfg.Device.Name,
	})
	if err != nil {
		log.Errorw("influxdb disabled", "url", cfg.InfluxDB.URL, "err", err)
		return nil
	}
	return sink
}

func closeDB(conn *sql.DB, log *logger.Logger) {
	if err := conn.Close(); err != nil {
		log.Errorw("failed to close sqlite", "err", err)
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "addr", srv.Addr())
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}

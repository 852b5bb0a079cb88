package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"lovemenu/internal/config"
	"lovemenu/internal/database"
	"lovemenu/internal/logger"
	"lovemenu/internal/messaging"
	"lovemenu/internal/metrics"
	"lovemenu/internal/server"
	"lovemenu/internal/services/catalog"
	"lovemenu/internal/services/eventlog"
	"lovemenu/internal/services/order"
)

func main() {
	var (
		mode       = flag.String("mode", "api-server", "Service mode (api-server, migrate, event-logger)")
		configPath = flag.String("config", "config.yaml", "Path to the YAML config file")
		port       = flag.Int("port", 0, "HTTP port (overrides server.port)")
		prefetch   = flag.Int("prefetch", 10, "RabbitMQ prefetch count for event-logger")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log := logger.NewWithWriter(*mode, os.Stdout, cfg.Log.Level)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode":             *mode,
		"port":             cfg.Server.Port,
		"rabbitmq_enabled": cfg.RabbitMQ.Enabled,
		"auto_migrate":     cfg.Database.AutoMigrate,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	switch *mode {
	case "api-server":
		err = runAPIServer(ctx, cfg, log)
	case "migrate":
		err = runMigrate(ctx, cfg, log)
	case "event-logger":
		err = runEventLogger(ctx, cfg, log, *prefetch)
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	if err != nil {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runAPIServer serves the HTTP API until ctx is canceled
func runAPIServer(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if cfg.Database.AutoMigrate {
		if err := db.RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	var publisher order.EventPublisher = messaging.NopPublisher{}
	if cfg.RabbitMQ.Enabled {
		conn, err := messaging.New(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize messaging: %w", err)
		}
		defer conn.Close()
		conn.WatchReconnect(ctx)

		log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)
		publisher = messaging.NewPublisher(conn, log)
	}

	m := metrics.NewRegistry()

	dishes := catalog.NewService(catalog.NewRepository(db), log)
	orders := order.NewService(order.NewRepository(db), dishes, publisher, m, log)

	router := server.NewRouter(server.Deps{
		Catalog:        catalog.NewHandler(dishes, log),
		Orders:         order.NewHandler(orders, log),
		DB:             db,
		Metrics:        m,
		Logger:         log,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	srv := server.New(cfg.Server.Port, router, cfg.Server.ShutdownTimeout, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		return srv.Shutdown(gctx)
	})

	return g.Wait()
}

// runMigrate applies pending migrations and exits
func runMigrate(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("migrations_complete", "Database schema is up to date", "startup", nil)
	return nil
}

// runEventLogger writes every order event from RabbitMQ into the log
func runEventLogger(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	conn, err := messaging.New(ctx, cfg, log, messaging.Binding{
		Queue:      eventlog.QueueName,
		RoutingKey: eventlog.BindingKey,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}

	consumer := messaging.NewConsumer(conn, log, eventlog.QueueName, "lovemenu-event-logger", prefetch)
	return eventlog.NewSubscriber(consumer, log).Start(ctx)
}

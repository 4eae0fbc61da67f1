package main

import (
	"context"
	"time"

	alertsHandler "groupstay/internal/alerts/handler"
	alertsService "groupstay/internal/alerts/service"
	guestsHandler "groupstay/internal/guests/handler"
	guestsService "groupstay/internal/guests/service"
	guestsValidator "groupstay/internal/guests/validator"
	"groupstay/internal/hotels"
	inventoryHandler "groupstay/internal/inventory/handler"
	inventoryService "groupstay/internal/inventory/service"
	inventoryValidator "groupstay/internal/inventory/validator"
	"groupstay/internal/ledger"
	"groupstay/internal/ledger/snapshot"
	"groupstay/internal/notify"
	"groupstay/pkg/app"
	"groupstay/pkg/config"
	"groupstay/pkg/contracts"
	"groupstay/pkg/eventbus"
	"groupstay/pkg/kafka"
	kafka_config "groupstay/pkg/kafka/config"
	kafka_middleware "groupstay/pkg/kafka/middleware"
	"groupstay/pkg/metrics"
	"groupstay/pkg/model"
	"groupstay/pkg/telemetry"
)

const ServiceName = "inventory"

func main() {
	cfg := config.Load(ServiceName)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, ServiceName, cfg.OTelEndpoint)
	if err != nil {
		cfg.Log.Fatal("Failed to set up tracing", "error", err)
	}

	store, err := snapshot.Open(ctx, cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to open snapshot store", "driver", cfg.StoreDriver, "error", err)
	}
	registry := ledger.NewRegistry(store, cfg.Log, ledger.WithAlertCap(cfg.AlertLogCap))
	if err := registry.Ensure(ctx, model.Scope{ID: cfg.DefaultScope, Name: cfg.DefaultScopeName}); err != nil {
		cfg.Log.Fatal("Failed to prepare default event", "scope_id", cfg.DefaultScope, "error", err)
	}

	m := metrics.New()
	bus := eventbus.New(cfg.Log)
	producer := initProducer(cfg, m)
	var pub notify.Publisher
	if producer != nil {
		pub = producer
	}
	notify.Subscribe(bus, m, pub, ServiceName, cfg.Log)

	handlers, err := initHandlers(cfg, registry, bus, m)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize handlers", "error", err)
	}

	cfg.Log.Info("Starting Inventory service", "store", cfg.StoreDriver, "default_scope", cfg.DefaultScope)
	serverApp := app.NewApplication(cfg, m)
	serverApp.SetApp(registry, handlers...)
	if producer != nil {
		serverApp.OnShutdown(func(context.Context) error { return producer.Close() })
	}
	serverApp.OnShutdown(func(context.Context) error { return registry.Close() })
	serverApp.OnShutdown(shutdownTracing)
	serverApp.Run()
}

func initProducer(cfg *config.Config, m *metrics.Metrics) *kafka.Producer {
	if !cfg.KafkaEnabled {
		return nil
	}
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaAlertsTopic, cfg.KafkaAlertsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(m))
	}
	return producer
}

func initHandlers(cfg *config.Config, registry *ledger.Registry, bus *eventbus.Bus, m *metrics.Metrics) ([]contracts.Handler, error) {
	inventory := inventoryService.NewInventoryService(registry, inventoryValidator.NewInventoryValidator(), bus, m, cfg)
	guests := guestsService.NewGuestService(registry, guestsValidator.NewGuestValidator(), bus, cfg)
	alerts := alertsService.NewAlertService(registry, cfg)

	hotelsCfg, err := hotels.LoadConfig()
	if err != nil {
		return nil, err
	}
	if !hotelsCfg.Enabled() {
		cfg.Log.Warn("TBO_API_URL not set, hotel search will fail")
	}

	cfg.Log.Info("Services initialized")
	return []contracts.Handler{
		inventoryHandler.NewInventoryHandler(inventory, cfg.Log),
		guestsHandler.NewGuestHandler(guests, cfg.Log),
		guestsHandler.NewReportHandler(guests, cfg.Log),
		alertsHandler.NewAlertHandler(alerts, cfg.Log, cfg.DefaultScope, cfg.AlertListLimit),
		hotels.NewHandler(hotels.NewClient(hotelsCfg), cfg.Log, int64(cfg.MaxRequestSize)),
	}, nil
}

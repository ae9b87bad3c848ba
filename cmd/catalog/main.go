package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"ProductCatalog/internal/cache"
	"ProductCatalog/internal/catalog"
	"ProductCatalog/internal/config"
	"ProductCatalog/internal/events"
	"ProductCatalog/internal/mediator"
	"ProductCatalog/pkg/kit"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := kit.NewLogger(cfg.Service, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	for _, key := range cfg.Ignored {
		log.Warn("ignoring unparsable env value", zap.String("key", key))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("catalog stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	deps := catalog.SubscriberDeps{Log: log}

	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		deps.Invalidator = cache.NewRedisInvalidator(client)
		log.Info("cache invalidation via redis")
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub, err := events.NewKafkaPublisher(cfg.KafkaBrokers, map[string]string{
			catalog.KindProductAdded: cfg.KafkaTopicProductAdded,
		})
		if err != nil {
			return err
		}
		defer func() { _ = pub.Close() }()
		deps.Publisher = pub
		log.Info("forwarding product events to kafka", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	bus, err := catalog.NewBus(store, deps,
		mediator.WithLogger(log),
		mediator.WithMetrics(mediator.NewMetrics(reg)),
		mediator.WithMiddleware(mediator.Logging(log)),
	)
	if err != nil {
		return fmt.Errorf("wire dispatcher: %w", err)
	}
	log.Info("dispatcher ready",
		zap.Strings("kinds", bus.Kinds()),
		zap.Strings("product_added_subscribers", bus.Subscribers(catalog.KindProductAdded)),
	)

	s := &catalog.Server{
		Bus:            bus,
		Store:          store,
		Log:            log,
		StrictNotFound: cfg.StrictNotFound,
	}
	if cfg.WriteRateLimitPerMin > 0 {
		s.WriteLimiter = kit.NewIPRateLimiter(cfg.WriteRateLimitPerMin, time.Minute)
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        cfg.Service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	return kit.RunHTTPServer(ctx, cfg.Addr(), h, log, cfg.ShutdownTimeout)
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (catalog.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory store")
		return catalog.NewMemStore(), func() {}, nil
	}

	db, err := catalog.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	store := catalog.NewPostgresStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}

	log.Info("using postgres store")
	return store, func() { _ = db.Close() }, nil
}

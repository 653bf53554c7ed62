// README: Entry point; loads config and the pricing catalog, wires services, serves HTTP until signalled.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"waslhaa/internal/config"
	httptransport "waslhaa/internal/http"
	"waslhaa/internal/infra"
	"waslhaa/internal/logging"
	"waslhaa/internal/maps"
	"waslhaa/internal/modules/order"
	"waslhaa/internal/modules/pricing"
	"waslhaa/internal/modules/user"
	"waslhaa/internal/modules/zone"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logging.NewLogger(cfg.LogLevel)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	source := config.NewCatalogSource(cfg.PricingFile)
	catalog, err := source.Load()
	if err != nil {
		return err
	}
	registry, err := zone.NewRegistry(catalog)
	if err != nil {
		return err
	}
	engine, err := pricing.NewEngine(catalog.Pricing)
	if err != nil {
		return err
	}
	source.Watch(log, config.ApplyCatalog(registry, engine))
	log.Info("pricing catalog loaded", "file", cfg.PricingFile, "zones", len(catalog.Zones), "villages", len(catalog.Villages))

	app, err := infra.NewFirebaseApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		return err
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, app)
	if err != nil {
		return err
	}

	var userStore user.Repository = user.NewMemoryStore()
	if cfg.Firebase.UserStore == "firestore" {
		fs, err := infra.NewFirestore(ctx, app)
		if err != nil {
			return err
		}
		defer fs.Close()
		userStore = user.NewFirestoreStore(fs)
	} else {
		log.Warn("using in-memory user store")
	}
	userSvc := user.NewService(userStore, log)

	opts := []order.Option{order.WithLogger(log), order.WithDriverEligibility(userSvc)}

	var orderStore order.Repository = order.NewMemoryStore()
	if cfg.DB.DSN != "" {
		db, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if cfg.DB.Migrate {
			files, err := infra.Migrate(ctx, db, cfg.DB.MigrationsDir)
			if err != nil {
				return err
			}
			log.Info("migrations applied", "files", files)
		}
		orderStore = order.NewStore(db)
	} else {
		log.Warn("WASLHAA_DB_DSN not set, using in-memory order store")
	}

	if cfg.Redis.Addr != "" {
		rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer rdb.Close()
		opts = append(opts, order.WithRevenueCache(order.NewRedisRevenueCache(rdb, cfg.Redis.RevenueCacheTTL)))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		w := infra.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer w.Close()
		opts = append(opts, order.WithPublisher(order.NewKafkaPublisher(w)))
	}

	if cfg.Maps.APIKey != "" {
		geocoder, err := maps.NewGeocoder(cfg.Maps.APIKey)
		if err != nil {
			return err
		}
		opts = append(opts, order.WithAddressResolver(geocoder))
	}

	orderSvc := order.NewService(orderStore, engine, zone.NewSingleZoneResolver(registry), registry, opts...)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Orders:   orderSvc,
		Users:    userSvc,
		Zones:    registry,
		Verifier: verifier,
		Log:      log,
	})
	server := httptransport.NewServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.HTTP.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

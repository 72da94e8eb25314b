package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pharmaterm/pos-core/internal/application/commands"
	"github.com/pharmaterm/pos-core/internal/application/use_cases"
	"github.com/pharmaterm/pos-core/internal/config"
	"github.com/pharmaterm/pos-core/internal/domain/pos"
	"github.com/pharmaterm/pos-core/internal/infrastructure/monitoring"
	"github.com/pharmaterm/pos-core/internal/infrastructure/persistence/postgres"
	"github.com/pharmaterm/pos-core/internal/infrastructure/persistence/redis"
	"github.com/pharmaterm/pos-core/internal/infrastructure/persistence/sqlite"
	"github.com/pharmaterm/pos-core/internal/infrastructure/scheduler"
	"github.com/pharmaterm/pos-core/internal/pkg/clock"
	"github.com/pharmaterm/pos-core/internal/pkg/generator"
	"github.com/pharmaterm/pos-core/internal/pkg/logger"
)

// The terminal binary wires the engine and runs the background sync loop.
// The sales UI embeds the same packages and drives Cart/CheckoutHandler
// from its event loop.
func main() {
	configPath := flag.String("config", "config.json", "Path to configuration file")
	flag.Parse()

	log := logger.NewLogger()

	cfg, configErr := config.LoadConfig(*configPath)
	if configErr != nil {
		log.Fatal("Failed to load configuration", "error", configErr)
	}
	log = log.WithField("terminal_id", cfg.Terminal.ID)
	log.Info("Starting POS terminal engine")

	db, dbErr := postgres.NewConnection(cfg.Ledger)
	if dbErr != nil {
		log.Fatal("Failed to connect to ledger database", "error", dbErr)
	}
	defer db.Close()

	if cfg.Ledger.MigrationsPath != "" {
		if migrationErr := postgres.RunMigrations(cfg.Ledger); migrationErr != nil {
			log.Fatal("Failed to run migrations", "error", migrationErr)
		}
	}

	redisConn, err := redis.NewConnection(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", "error", err)
	}
	defer redisConn.Close()

	clk := clock.NewRealClock()

	queue, err := sqlite.Open(cfg.Queue.Path, clk)
	if err != nil {
		log.Fatal("Failed to open offline queue", "error", err)
	}
	defer queue.Close()

	settings := pos.Settings{
		CurrencySymbol: cfg.Terminal.CurrencySymbol,
		OrgScope:       cfg.Terminal.OrgScope,
	}

	ledger := postgres.NewLedgerClient(db, time.Duration(cfg.Ledger.TimeoutSeconds)*time.Second)
	cache := redis.NewStockCache(redisConn, log)

	checkoutUC := use_cases.NewCheckoutUseCase(ledger, queue, cache, settings, log)
	syncUC := use_cases.NewSyncUseCase(checkoutUC, queue, log)
	syncHandler := commands.NewSyncHandler(syncUC, log)

	// Exercised by the embedding UI; constructed here so wiring mistakes
	// surface at startup.
	_ = commands.NewCheckoutHandler(checkoutUC, generator.NewReferenceGenerator(cfg.Terminal.ID), log)
	_ = use_cases.NewProductLookupUseCase(ledger, cache, time.Duration(cfg.Terminal.ProductCacheTTLSecs)*time.Second, log)

	syncScheduler := scheduler.NewSyncScheduler(
		syncHandler,
		ledger,
		log,
		time.Duration(cfg.Terminal.SyncIntervalSeconds)*time.Second,
	)

	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	dbMetricsCollector := monitoring.NewDBMetricsCollector(db.GetDB())
	dbMetricsCollector.StartCollecting(serverCtx, 30*time.Second)

	queueMetricsCollector := monitoring.NewQueueMetricsCollector(queue)
	queueMetricsCollector.StartCollecting(serverCtx, 15*time.Second)

	metricsServer := monitoring.NewMetricsServer(cfg.Monitoring.Addr)

	go syncScheduler.Start(serverCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigChan
		shutdownCtx, cancel := context.WithTimeout(serverCtx, 30*time.Second)
		defer cancel()

		log.Info("Shutting down terminal engine...")
		syncScheduler.Stop()
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			log.Error("Metrics server shutdown error", "error", err)
		}

		serverStopCtx()
	}()

	log.Info("Metrics server starting", "address", cfg.Monitoring.Addr)
	if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Metrics server failed", "error", err)
	}

	<-serverCtx.Done()
	log.Info("Terminal engine stopped")
}

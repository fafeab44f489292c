package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kenny08gt/event-ticket/internal/app"
	"github.com/kenny08gt/event-ticket/internal/clock"
	"github.com/kenny08gt/event-ticket/internal/config"
	"github.com/kenny08gt/event-ticket/internal/storage/memory"
	"github.com/kenny08gt/event-ticket/internal/storage/postgres"
	"github.com/kenny08gt/event-ticket/internal/telemetry"
	transporthttp "github.com/kenny08gt/event-ticket/internal/transport/http"
	"github.com/kenny08gt/event-ticket/migrations"
)

const serviceName = "event-ticket-api"
const shutdownTimeout = 10 * time.Second

type ledgerStore interface {
	app.LedgerRepository
	app.LedgerInitializer
}

func main() {
	logger := log.Default()

	cfg, err := config.Load(logger)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ledgerCfg, err := cfg.LedgerConfig()
	if err != nil {
		log.Fatalf("ledger config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(startupCtx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		log.Fatalf("setup tracing: %v", err)
	}
	if cfg.OTelEndpoint == "" {
		logger.Printf("WARN: OTEL_EXPORTER_ENDPOINT not set, tracing disabled")
	}

	var (
		repo     ledgerStore
		payments app.Payments
		health   transporthttp.HealthCheck
		clk      = clock.NewSystem()
	)
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Printf("WARN: STORAGE=memory, ledger state is lost on restart")
		store := memory.NewStore()
		repo, payments = store, store
	default:
		pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("connect to db: %v", err)
		}
		defer pool.Close()

		if err := pool.Ping(startupCtx); err != nil {
			log.Fatalf("db ping: %v", err)
		}
		if err := migrations.Apply(startupCtx, pool); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}
		repo = postgres.NewLedgerRepository(pool)
		payments = postgres.NewPayoutLedger(pool)
		health = pool.Ping
		clk = clock.Truncated(clk, time.Microsecond)
	}

	ledgerCfg, err = app.InitializeLedger(startupCtx, repo, clk, ledgerCfg)
	if err != nil {
		log.Fatalf("initialize ledger: %v", err)
	}
	logger.Printf("ledger ready total_tickets=%d ticket_price=%d organizer=%s storage=%s",
		ledgerCfg.TotalTickets, ledgerCfg.TicketPrice, ledgerCfg.Organizer, cfg.Storage)

	svc := app.NewMarketplaceService(repo, payments, ledgerCfg, clk, app.WithLogger(logger))

	mux := transporthttp.NewMux(svc, health)
	handler := transporthttp.RequestLogger(
		transporthttp.RecoverPanic(transporthttp.CORS(cfg.CORSOrigins, mux), logger),
		logger,
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.Printf("api listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("tracing shutdown error: %v", err)
	}
	log.Printf("server stopped")
}

// Package main runs the SOLAY39 mining backend: the public HTTP API,
// the quota ledger, and the on-chain reward payout pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solay-backend/internal/domain"
	"solay-backend/internal/eligibility"
	"solay-backend/internal/mining"
	"solay-backend/internal/price"
	"solay-backend/internal/reward"
	"solay-backend/internal/server"
	"solay-backend/internal/solana"
	"solay-backend/internal/spl"
	"solay-backend/internal/storage"
	chstore "solay-backend/internal/storage/clickhouse"
	"solay-backend/internal/storage/memory"
	"solay-backend/internal/storage/migrations"
	pgstore "solay-backend/internal/storage/postgres"
	"solay-backend/internal/transfer"
)

// stores holds the storage implementations behind the orchestrator.
type stores struct {
	ledger    storage.QuotaLedger
	miningLog storage.MiningLogStore
	events    storage.RewardEventSink
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("ADDR", ":8080"), "HTTP listen address")
	rpcEndpoint := flag.String("rpc-endpoint", envOr("SOLANA_RPC_ENDPOINT", solana.MainnetEndpoint), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (optional, enables push confirmation)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional, enables analytics events)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	mint := flag.String("mint", envOr("TOKEN_MINT", domain.TokenMint), "SPL token mint address")
	birdeyeKey := flag.String("birdeye-api-key", os.Getenv("BIRDEYE_API_KEY"), "Birdeye API key")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required configuration
	walletSecret := os.Getenv("APP_WALLET_SECRET")
	if walletSecret == "" {
		logger.Fatal("APP_WALLET_SECRET is required")
	}
	keypair, err := spl.ParseSecret(walletSecret)
	if err != nil {
		logger.Fatalf("Failed to parse APP_WALLET_SECRET: %v", err)
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	st, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Solana clients
	rpcClient := solana.NewHTTPClient(*rpcEndpoint)
	var confirmer transfer.Confirmer
	if *wsEndpoint != "" {
		ws, err := solana.NewWSConfirmer(ctx, *wsEndpoint, nil)
		if err != nil {
			logger.Fatalf("Failed to connect WebSocket confirmer: %v", err)
		}
		defer ws.Close()
		confirmer = ws
	} else {
		logger.Println("No WebSocket endpoint configured, confirming via status polling")
	}

	sender := transfer.NewSender(transfer.Options{
		RPC:       rpcClient,
		Keypair:   keypair,
		Mint:      *mint,
		Decimals:  domain.TokenDecimals,
		Confirmer: confirmer,
		Logger:    logger,
	})

	priceClient := price.NewBirdeyeClient(price.Options{APIKey: *birdeyeKey})

	calc := reward.NewCalculator(reward.DefaultParams())
	orch := mining.NewOrchestrator(mining.Options{
		Balance:  rpcClient,
		Price:    priceClient,
		Transfer: sender,
		Gate:     eligibility.NewGate(domain.MinHold, calc, st.ledger),
		Calc:     calc,
		Ledger:   st.ledger,
		Log:      st.miningLog,
		Events:   st.events,
		Mint:     *mint,
		MinHold:  domain.MinHold,
		Logger:   logger,
	})

	api := server.New(orch, logger)
	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      api.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown error: %v", err)
		}
	}()

	logger.Printf("Serving wallet %s, mint %s on %s", keypair.Address(), *mint, *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores wires the quota ledger, the mining log, and the reward
// event sink. ClickHouse is optional; without it events are kept in
// memory for the /metrics scrape only.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, logger *log.Logger) (*stores, func(), error) {
	if useMemory {
		logger.Println("Using in-memory storage")
		return &stores{
			ledger:    memory.NewQuotaLedger(domain.DailyLimit),
			miningLog: memory.NewMiningLogStore(),
			events:    memory.NewRewardEventSink(),
		}, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	st := &stores{
		ledger:    pgstore.NewQuotaLedger(pool, domain.DailyLimit),
		miningLog: pgstore.NewMiningLogStore(pool),
	}
	cleanup := func() { pool.Close() }

	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		st.events = chstore.NewRewardEventSink(conn)
		cleanup = func() {
			conn.Close()
			pool.Close()
		}
	} else {
		logger.Println("No ClickHouse DSN configured, reward events kept in memory")
		st.events = memory.NewRewardEventSink()
	}

	return st, cleanup, nil
}

// envOr returns the environment value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

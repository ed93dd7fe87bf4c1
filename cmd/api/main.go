package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-vault/internal/adapter"
	"github.com/feral-file/ff-vault/internal/api/middleware"
	"github.com/feral-file/ff-vault/internal/api/server"
	"github.com/feral-file/ff-vault/internal/bridge"
	"github.com/feral-file/ff-vault/internal/config"
	"github.com/feral-file/ff-vault/internal/logger"
	"github.com/feral-file/ff-vault/internal/messaging"
	"github.com/feral-file/ff-vault/internal/providers/ethereum"
	"github.com/feral-file/ff-vault/internal/providers/jetstream"
	"github.com/feral-file/ff-vault/internal/registry"
	"github.com/feral-file/ff-vault/internal/store"
	"github.com/feral-file/ff-vault/internal/vault"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "ff-vault-api",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Feral File Vault")

	// Vault locks are held across custody confirmations
	confirmTimeout := cfg.Ethereum.ConfirmTimeout
	if confirmTimeout <= 0 {
		confirmTimeout = ethereum.DEFAULT_CONFIRM_TIMEOUT
	}
	lockTimeout := vault.WatchLocks(confirmTimeout)
	logger.InfoCtx(ctx, "Configured lock wait detection", zap.Duration("timeout", lockTimeout))

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.Migrate(db); err != nil {
		logger.FatalCtx(ctx, "Failed to migrate database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	fs := adapter.NewFileSystem()
	jsonAdapter := adapter.NewJSON()
	clock := adapter.NewClock()

	// Load collection whitelist
	var whitelist []common.Address
	if cfg.Hub.WhitelistPath != "" {
		whitelist, err = registry.NewWhitelistLoader(fs, jsonAdapter).Load(cfg.Hub.WhitelistPath, cfg.Ethereum.ChainID)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to load collection whitelist",
				zap.Error(err),
				zap.String("path", cfg.Hub.WhitelistPath))
		}
		logger.InfoCtx(ctx, "Loaded collection whitelist",
			zap.String("path", cfg.Hub.WhitelistPath),
			zap.Int("collections", len(whitelist)))
	} else {
		logger.WarnCtx(ctx, "Whitelist path not configured, vaults can only be created for collections whitelisted by the owner")
	}

	// Open vault custody
	var custody registry.CustodyFactory
	switch cfg.Hub.CustodyMode {
	case config.CustodyModeEthereum:
		ethClient, err := adapter.NewEthClientDialer().Dial(ctx, cfg.Ethereum.RPCURL)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to dial Ethereum RPC", zap.Error(err))
		}
		defer ethClient.Close()

		auth, err := ethereum.NewTransactor(ctx, ethClient, cfg.Ethereum.CustodyPrivateKey)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create custody transactor", zap.Error(err))
		}
		custody = ethereum.NewCustody(ethClient, auth, clock, ethereum.CollectionConfig{
			OwnerWorkers:   cfg.Ethereum.OwnerWorkers,
			ConfirmTimeout: cfg.Ethereum.ConfirmTimeout,
		})
		logger.InfoCtx(ctx, "Using Ethereum custody",
			zap.String("chain_id", string(cfg.Ethereum.ChainID)),
			zap.String("custodian", auth.From.Hex()))
	default:
		custody = registry.NewMemoryCustody(cfg.Hub.HubAddress())
		logger.WarnCtx(ctx, "Using in-memory custody, nfts do not leave this process")
	}

	// Connect to NATS JetStream
	var sink vault.EventSink
	var publisher messaging.Publisher
	var subscriber messaging.Subscriber
	natsCfg := jetstream.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: cfg.NATS.ConnectionName,
		PublishTimeout: cfg.NATS.PublishTimeout,
		ConsumerName:   cfg.NATS.ConsumerName,
		Workers:        cfg.Worker.WorkerPoolSize,
		QueueSize:      cfg.Worker.WorkerQueueSize,
		MaxDeliver:     cfg.NATS.MaxDeliver,
		AckWait:        cfg.NATS.AckWait,
	}
	if cfg.NATS.URL != "" {
		natsJS := adapter.NewNatsJetStream()
		publisher, err = jetstream.NewPublisher(ctx, natsCfg, natsJS, jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err))
		}
		defer publisher.Close()
		sink = publisher

		subscriber, err = jetstream.NewSubscriber(ctx, natsCfg, natsJS, jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create NATS subscriber", zap.Error(err))
		}
		logger.InfoCtx(ctx, "Connected to NATS JetStream",
			zap.String("url", cfg.NATS.URL),
			zap.String("stream", cfg.NATS.StreamName))
	} else {
		logger.WarnCtx(ctx, "NATS not configured, vault events are not published")
	}

	// Load the hub and restore its vaults
	hub, err := registry.NewHub(ctx, registry.Config{
		Address:           cfg.Hub.HubAddress(),
		Owner:             cfg.Hub.HubOwner(),
		Whitelist:         whitelist,
		RedeemMaxDeadline: cfg.Hub.RedeemMaxDeadline,
	}, custody, dataStore, sink, clock)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load vault hub", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Loaded vault hub",
		zap.String("owner", hub.Owner().Hex()),
		zap.Int("vaults", len(hub.Vaults())))

	errCh := make(chan error, 2)

	// Custody notifications arrive through JetStream when configured and through the webhook always
	br := bridge.NewBridge(subscriber, hub)
	if subscriber != nil {
		go func() {
			if err := br.Run(ctx); err != nil {
				errCh <- fmt.Errorf("bridge: %w", err)
			}
		}()
	}

	// Create server config
	serverConfig := server.Config{
		Debug:          cfg.Debug,
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Auth: middleware.AuthConfig{
			JWTPublicKey:  cfg.Auth.JWTPublicKey,
			APIKeys:       cfg.Auth.APIKeys,
			WebhookSecret: cfg.Auth.WebhookSecret,
		},
	}

	// Create and start server
	srv := server.New(serverConfig, hub, dataStore, br.HandleNotification, clock)

	go func() {
		if err := srv.Start(); err != nil {
			errCh <- fmt.Errorf("server: %w", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err)
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("component", "server"))
	}
	if subscriber != nil {
		br.Close()
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("Vault daemon stopped")
}

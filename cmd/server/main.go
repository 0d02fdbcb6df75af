package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/vidtube/internal/crypto"
	"github.com/iudanet/vidtube/internal/logging"
	"github.com/iudanet/vidtube/internal/server"
	"github.com/iudanet/vidtube/internal/server/account"
	"github.com/iudanet/vidtube/internal/server/config"
	"github.com/iudanet/vidtube/internal/server/graph"
	"github.com/iudanet/vidtube/internal/server/handlers"
	"github.com/iudanet/vidtube/internal/server/objectstore"
	"github.com/iudanet/vidtube/internal/server/session"
	"github.com/iudanet/vidtube/internal/server/storage/sqlstore"
	"github.com/iudanet/vidtube/internal/server/token"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		printVersion()
		return
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	dialect, err := sqlstore.ParseDialect(cfg.DatabaseDriver)
	if err != nil {
		return err
	}

	store, err := sqlstore.New(ctx, dialect, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	codec, err := token.NewCodec(token.Config{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	// nil MediaStore отключает загрузку аватаров и обложек
	var media account.MediaStore
	if cfg.MediaEnabled() {
		objects, err := objectstore.New(ctx, objectstore.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
			UploadTTL: cfg.UploadURLTTL,
		})
		if err != nil {
			return fmt.Errorf("object store: %w", err)
		}
		media = objects
	} else {
		logger.Warn("object store is not configured, media uploads are disabled")
	}

	hasher := crypto.NewPasswordHasher(cfg.BcryptCost)

	srv := server.New(logger, cfg.Address, cfg.ShutdownTimeout, server.Deps{
		Store:      store,
		Codec:      codec,
		Sessions:   session.NewManager(logger, store, hasher, codec),
		Accounts:   account.NewService(logger, store, hasher, media),
		Graph:      graph.NewService(logger, store),
		Cookies:    handlers.CookieConfig{Secure: cfg.CookieSecure},
		Version:    Version,
		RateLimit:  cfg.RateLimitRequests,
		RateWindow: cfg.RateLimitWindow,
	})

	logger.Info("starting vidtube server",
		slog.String("version", Version),
		slog.String("address", cfg.Address),
		slog.String("db_driver", string(dialect)))

	return srv.Run(ctx)
}

func printVersion() {
	fmt.Printf("VidTube Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

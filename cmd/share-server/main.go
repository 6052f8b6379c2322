package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Its-donkey/sharebox/internal/auth"
	"github.com/Its-donkey/sharebox/internal/config"
	"github.com/Its-donkey/sharebox/internal/files"
	"github.com/Its-donkey/sharebox/internal/server"
	"github.com/Its-donkey/sharebox/internal/sharedtext"
	"github.com/Its-donkey/sharebox/internal/watch"
	"github.com/Its-donkey/sharebox/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configPath := flag.String("config", "sharebox.yml", "path to the YAML configuration")
	listen := flag.String("listen", "", "listen address (overrides server.listen)")
	showQR := flag.Bool("qr", false, "print a QR code for the LAN URL")
	initConfig := flag.Bool("init-config", false, "write the default configuration to -config and exit")
	flag.Parse()

	if *initConfig {
		if _, err := os.Stat(*configPath); err == nil {
			log.Fatalf("%s already exists", *configPath)
		}
		if err := config.DefaultConfig().Save(*configPath); err != nil {
			log.Fatalf("write config: %v", err)
		}
		fmt.Printf("Wrote default configuration to %s\n", *configPath)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}
	if *showQR {
		cfg.Server.ShowQR = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config:\n%v", err)
	}

	logger, closeLogs, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closeLogs()

	if err := run(ctx, cfg, logger, os.Stdout); err != nil {
		logger.Error("server", "exited with error", err, nil)
		closeLogs()
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) (*logging.Logger, func(), error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	writers := []io.Writer{os.Stdout}
	closeFn := func() {}
	if cfg.Dir != "" {
		fw, err := logging.NewFileWriter(cfg.Dir, "sharebox.log", cfg.MaxSizeMB, cfg.MaxFiles)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, fw)
		closeFn = func() { _ = fw.Close() }
	}
	return logging.New("sharebox", level, writers...), closeFn, nil
}

func openSessionStore(path string) (auth.Store, func(), error) {
	if path == "" {
		return auth.NewMemoryStore(), func() {}, nil
	}
	store, err := auth.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger, out io.Writer) error {
	store, err := files.New(cfg.Storage.UploadDir, files.Options{
		Hidden:   cfg.Storage.Hidden,
		MaxBytes: cfg.MaxUploadBytes(),
	})
	if err != nil {
		return err
	}
	text, err := sharedtext.New(cfg.Storage.TextFile)
	if err != nil {
		return err
	}

	sessions, closeSessions, err := openSessionStore(cfg.Auth.SessionDB)
	if err != nil {
		return err
	}
	defer closeSessions()
	manager, err := auth.NewManager(sessions, auth.Options{
		Password:     cfg.Auth.Password,
		PasswordHash: cfg.Auth.PasswordHash,
		TTL:          cfg.Auth.SessionTTL,
	})
	if err != nil {
		return err
	}
	if cfg.Auth.SecretKey == "" {
		logger.Warn("auth", "no secret key configured; flash cookies are signed with a per-process key", nil)
	}

	hub := watch.NewHub(logger)
	defer hub.Close()
	watcher := watch.NewWatcher(store.Dir(), hub, logger, watch.WithSkip(store.IsHidden))
	go func() {
		if err := watcher.Run(ctx); err != nil {
			logger.Warn("watch", "live refresh disabled", map[string]any{"error": err.Error()})
		}
	}()

	srv, err := server.New(server.Options{
		Listen:          cfg.Server.Listen,
		AssetsDir:       cfg.App.Assets,
		CORSOrigins:     cfg.Server.CORSOrigins,
		CookieName:      cfg.Auth.CookieName,
		MaxUploadBytes:  cfg.MaxUploadBytes(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Files:           store,
		Text:            text,
		Auth:            manager,
		Signer:          auth.NewSigner(cfg.Auth.SecretKey),
		Live:            hub,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	printInfo(out, cfg)

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

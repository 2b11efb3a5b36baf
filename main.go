package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/alimasry/blockedit/config"
	"github.com/alimasry/blockedit/editor"
	"github.com/alimasry/blockedit/persist"
	"github.com/alimasry/blockedit/server"
	"github.com/alimasry/blockedit/store"
	"github.com/alimasry/blockedit/tui"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (optional, defaults to ~/.config/blockedit/config.toml)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	terminal := flag.Bool("tui", false, "edit in the terminal instead of serving the browser editor")
	staticDir := flag.String("static", "static", "directory of browser assets")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "blockedit: %v\n", err)
		return 1
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	logger, err := newLogger(cfg, *terminal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "blockedit: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store", zap.Error(err))
		fmt.Fprintf(os.Stderr, "blockedit: %v\n", err)
		return 1
	}
	defer closeStore()

	edOpts := editor.Options{
		HistoryLimit:    cfg.HistoryLimit,
		Placeholder:     cfg.Placeholder,
		PlaceholderMode: editor.PlaceholderMode(cfg.PlaceholderMode),
	}

	if *terminal {
		err = runTerminal(ctx, cfg, st, edOpts, logger)
	} else {
		err = serve(ctx, cfg, st, edOpts, *staticDir, logger)
	}
	if err != nil {
		logger.Error("exit", zap.Error(err))
		fmt.Fprintf(os.Stderr, "blockedit: %v\n", err)
		return 1
	}
	return 0
}

func newLogger(cfg config.Config, terminal bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc.Level = level
	if terminal {
		// Keep log output off the screen the editor draws on.
		if err := os.MkdirAll(cfg.Store.Path, 0o755); err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
		path := filepath.Join(cfg.Store.Path, "blockedit.log")
		zc.OutputPaths = []string{path}
		zc.ErrorOutputPaths = []string{path}
	}
	return zc.Build()
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendFile:
		fs, err := store.NewFileStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using file store", zap.String("path", cfg.Store.Path))
		return fs, func() {}, nil
	case config.BackendFirestore:
		client, err := firestore.NewClient(ctx, cfg.Store.FirestoreProject)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}
		fs := store.NewFirestoreStore(client, cfg.Store.Collection)
		cs := store.NewCachedStore(fs, cfg.Store.FlushInterval, logger)
		logger.Info("using firestore store",
			zap.String("project", cfg.Store.FirestoreProject),
			zap.String("collection", cfg.Store.Collection),
			zap.Duration("flush_interval", cfg.Store.FlushInterval))
		return cs, func() {
			cs.Close()
			client.Close()
		}, nil
	default:
		logger.Info("using in-memory store")
		return store.NewMemoryStore(), func() {}, nil
	}
}

func serve(ctx context.Context, cfg config.Config, st store.Store, edOpts editor.Options, staticDir string, logger *zap.Logger) error {
	hub := server.NewHub(st, server.Options{
		Editor:        edOpts,
		StatusTimeout: cfg.StatusTimeout,
		DefaultDocID:  cfg.StorageKey,
	}, logger)
	go hub.Run()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.NewHandler(hub, staticDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// Websocket connections are hijacked and not closed by Shutdown.
		hub.Shutdown()
		return err
	}
}

func runTerminal(ctx context.Context, cfg config.Config, st store.Store, edOpts editor.Options, logger *zap.Logger) error {
	bridge := persist.NewBridge(st, cfg.StorageKey, logger)
	ed := editor.New(bridge.LoadOrEmpty(ctx), edOpts)

	model := tui.New(tui.Options{
		Context:       ctx,
		Editor:        ed,
		Bridge:        bridge,
		StatusTimeout: cfg.StatusTimeout,
	})
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

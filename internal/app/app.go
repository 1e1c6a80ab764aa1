// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app wires the vibetable server together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/wingedpig/vibetable/internal/api"
	"github.com/wingedpig/vibetable/internal/api/handlers"
	"github.com/wingedpig/vibetable/internal/config"
	"github.com/wingedpig/vibetable/internal/dataset"
	"github.com/wingedpig/vibetable/internal/events"
	"github.com/wingedpig/vibetable/internal/ingest"
	"github.com/wingedpig/vibetable/internal/metrics"
	"github.com/wingedpig/vibetable/internal/vibration"
	"github.com/wingedpig/vibetable/internal/watcher"
)

// App is the main application container.
type App struct {
	mu sync.Mutex

	configPath string // "" when running on defaults
	version    string
	config     *config.Config
	label      *vibration.Label // configured convert.label
	listener   net.Listener

	eventBus  *events.MemoryEventBus
	registry  *prometheus.Registry
	collector *metrics.Collector
	store     *ingest.MemoryStore
	datasets  *dataset.Manager
	inbox     *watcher.InboxWatcher
	apiServer *api.Server

	done     chan struct{}
	stopOnce sync.Once
	shutOnce sync.Once
}

// Options holds configuration options for the app.
type Options struct {
	ConfigPath string // explicit config file; "" searches the working directory
	Host       string
	Port       int
	Version    string       // Application version string
	Listener   net.Listener // overrides Host and Port when set
}

// New creates a new App instance. Without a config file the defaults are
// used.
func New(opts Options) (*App, error) {
	app := &App{
		configPath: opts.ConfigPath,
		version:    opts.Version,
		listener:   opts.Listener,
		done:       make(chan struct{}),
	}

	// Load configuration
	loader := config.NewLoader()
	if app.configPath == "" {
		path, err := loader.FindConfig("")
		if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
			return nil, err
		}
		app.configPath = path
	}

	var cfg *config.Config
	if app.configPath == "" {
		log.Printf("No config file found, using defaults")
		cfg = config.Default()
	} else {
		var err error
		cfg, err = loader.LoadWithDefaults(context.Background(), app.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// Override host/port if specified
	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	label, err := cfg.Convert.LabelValue()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	app.config = cfg
	app.label = label

	// Initialize event bus
	app.eventBus = events.NewMemoryEventBus(events.MemoryBusConfig{
		HistoryMaxEvents: cfg.Events.History.MaxEvents,
		HistoryMaxAge:    config.ParseDuration(cfg.Events.History.MaxAge, time.Hour),
	})

	return app, nil
}

// Config returns the effective configuration.
func (app *App) Config() *config.Config {
	return app.config
}

// Initialize builds the components. It is called by Run.
func (app *App) Initialize(ctx context.Context) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.apiServer != nil {
		return nil
	}
	cfg := app.config

	// Metrics
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(collectors.NewGoCollector())
	app.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.collector = metrics.NewCollector()
	app.collector.Register(app.registry)

	app.store = ingest.NewMemoryStore(ingest.StoreConfig{
		MaxBytes: cfg.Ingest.MaxDocumentBytes,
		Bus:      app.eventBus,
		Recorder: app.collector,
	})
	app.datasets = dataset.NewManager(app.eventBus, app.collector)

	if cfg.Inbox.Enabled() {
		inbox, err := watcher.NewInboxWatcher(watcher.InboxConfig{
			Dir:      cfg.Inbox.Dir,
			Pattern:  cfg.Inbox.Pattern,
			Debounce: config.ParseDuration(cfg.Inbox.Debounce, 250*time.Millisecond),
		}, app.ingestFile, app.eventBus)
		if err != nil {
			return fmt.Errorf("failed to start inbox: %w", err)
		}
		app.inbox = inbox
	}

	app.apiServer = api.NewServer(api.ServerConfig{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, api.Dependencies{
		Store:            app.store,
		MaxDocumentBytes: app.store.MaxBytes(),
		Datasets:         app.datasets,
		EventBus:         app.eventBus,
		Gatherer:         app.registry,
		Defaults: handlers.ConvertDefaults{
			Label:  app.label,
			Strict: cfg.Convert.Strict,
		},
		FilePrefix: app.filePrefix,
	})

	return nil
}

// Handler returns the HTTP handler. Initialize must have been called.
func (app *App) Handler() http.Handler {
	return app.apiServer.Router()
}

// Run starts the app and blocks until shutdown. SIGINT and SIGTERM trigger a
// graceful shutdown, as do Stop and cancellation of ctx.
func (app *App) Run(ctx context.Context) error {
	if err := app.Initialize(ctx); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("vibetable %s starting: %s", app.version, app.config)
	if app.configPath != "" {
		log.Printf("Using config %s", app.configPath)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if app.listener != nil {
			return app.apiServer.Serve(app.listener)
		}
		return app.apiServer.ListenAndServe()
	})

	if app.inbox != nil {
		g.Go(func() error {
			return app.inbox.Run(gctx)
		})
	}

	g.Go(func() error {
		select {
		case <-gctx.Done():
			log.Printf("Shutting down: %v", context.Cause(gctx))
		case <-app.done:
			log.Printf("Shutdown requested...")
		}
		return app.Shutdown(context.Background())
	})

	return g.Wait()
}

// Shutdown gracefully shuts down all components. Only the first call has
// any effect.
func (app *App) Shutdown(ctx context.Context) error {
	var err error
	app.shutOnce.Do(func() {
		app.mu.Lock()
		defer app.mu.Unlock()

		log.Println("Shutting down...")

		// Create shutdown context with timeout
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		// Stop API server first to stop accepting new requests
		if app.apiServer != nil {
			if serr := app.apiServer.Shutdown(shutdownCtx); serr != nil {
				log.Printf("Error shutting down API server: %v", serr)
				err = serr
			}
		}

		// Stop inbox watcher
		if app.inbox != nil {
			app.inbox.Close()
		}

		// Close event bus
		if app.eventBus != nil {
			app.eventBus.Close()
		}

		log.Println("Shutdown complete")
	})
	return err
}

// Stop signals the app to shut down. Safe to call multiple times.
func (app *App) Stop() {
	app.stopOnce.Do(func() {
		close(app.done)
	})
}

// ingestFile stores a settled inbox file and, when configured, converts it
// and writes both CSVs.
func (app *App) ingestFile(ctx context.Context, name string, content []byte) error {
	doc, err := app.store.Put(ctx, string(content), "inbox:"+name)
	if err != nil {
		return err
	}
	if !app.config.Inbox.AutoConvert {
		return nil
	}

	ds, err := app.datasets.Convert(ctx, doc.Content, dataset.ConvertOptions{
		Label:  app.label,
		Strict: app.config.Convert.Strict,
		Source: doc.Source,
	})
	if err != nil {
		return fmt.Errorf("converting: %w", err)
	}

	prefix, err := app.filePrefix(ds)
	if err != nil {
		log.Printf("Inbox: file prefix: %v, using default", err)
		prefix = ""
	}
	widePath, longPath, err := dataset.ExportFiles(app.config.Convert.OutputDir, prefix, &dataset.View{Wide: ds.Base, Long: ds.Full})
	if err != nil {
		return err
	}
	log.Printf("Inbox: converted %s: %d rows -> %s, %s", name, ds.Base.Len(), widePath, longPath)
	return nil
}

// filePrefix expands convert.file_prefix for ds.
func (app *App) filePrefix(ds *dataset.Dataset) (string, error) {
	if app.config.Convert.FilePrefix == "" {
		return "", nil
	}
	label := ""
	if ds.Label != nil {
		label = ds.Label.Name()
	}
	return config.NewTemplateExpander().ExpandPrefix(app.config.Convert.FilePrefix, &config.PrefixContext{
		ID:     ds.ID,
		Label:  label,
		Source: ds.Source,
		Time:   ds.ConvertedAt,
	})
}

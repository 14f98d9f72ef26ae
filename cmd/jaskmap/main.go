package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/jask/jaskmap/core/geo"
	"github.com/jask/jaskmap/core/route"
	"github.com/jask/jaskmap/core/store"
	"github.com/jask/jaskmap/internal/config"
	"github.com/jask/jaskmap/internal/database"
	"github.com/jask/jaskmap/internal/database/repository"
	"github.com/jask/jaskmap/internal/features"
	"github.com/jask/jaskmap/internal/logger"
	"github.com/jask/jaskmap/internal/metrics"
	"github.com/jask/jaskmap/internal/tui"
)

func main() {
	_ = godotenv.Load(".env")

	opts := &Options{}
	parser := flags.NewParser(opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if err := run(context.Background(), opts); err != nil {
		log.Fatalf("%v", err)
	}
}

// run wires the explore screen and blocks until the program exits.
func run(ctx context.Context, opts *Options) error {
	if opts.Config != "" {
		if err := os.Setenv("JASKMAP_CONFIG", opts.Config); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	applyOptions(&cfg, opts)

	logFile, err := logger.OpenFile(cfg.Log.Path)
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	defer logFile.Close()
	l := logger.New(logFile, cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(database.MemoryPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := database.RunMigrations(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	featureRepo := repository.NewFeatureRepo(db)

	router, err := route.NewRouter(cfg.Route.Initial, l)
	if err != nil {
		return fmt.Errorf("route: %w", err)
	}
	st := store.New(store.InitialState(geo.Viewport{
		Center: geo.LngLat{Lng: cfg.Map.CenterLng, Lat: cfg.Map.CenterLat},
		Zoom:   cfg.Map.Zoom,
	}), l)

	if cfg.Metrics.Addr != "" {
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				l.Error("metrics: server stopped", "err", err)
			}
		}()
		defer srv.Close()
	}

	loader := &features.Loader{
		Client:  &http.Client{},
		Repo:    featureRepo,
		Timeout: cfg.Features.Timeout,
		Logger:  l,
	}

	p := tea.NewProgram(tui.New(ctx, cfg, tui.Deps{
		Store:    st,
		Router:   router,
		Features: featureRepo,
		Loader:   loader,
		Logger:   l,
	}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	l.Info("jaskmap: exit", "url", router.URL())
	return nil
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func applyOptions(cfg *config.Config, opts *Options) {
	if opts.Route != "" {
		cfg.Route.Initial = opts.Route
	}
	if opts.Features != "" {
		cfg.Features.URL = opts.Features
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
}

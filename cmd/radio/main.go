package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"myradio/internal/api/live"
	apiserver "myradio/internal/api/server"
	"myradio/internal/config"
	"myradio/internal/geo"
	"myradio/internal/icecast"
	"myradio/internal/listeners"
	"myradio/internal/metadata"
	"myradio/internal/query"
	"myradio/internal/radio"
	"myradio/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var configFile string

	rootCmd := &cobra.Command{
		Use:          "radio",
		Short:        "Icecast state sync and read API for MyRadio",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: ./config.yaml)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sync loop and the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configFile)
		},
	}

	syncOnceCmd := &cobra.Command{
		Use:   "sync-once",
		Short: "Run a single sync cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncOnce(cmd.Context(), configFile)
		},
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Dry run: fetch Icecast once and print what would be recorded",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			log.Println("🧪 MODE: DRY RUN / SIMULATION")
			return radio.Simulate(cmd.Context(), newSource(cfg), os.Stdout)
		},
	}

	rootCmd.AddCommand(runCmd, syncOnceCmd, simulateCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSource(cfg *config.Config) *icecast.Client {
	return icecast.New(cfg.StatusURL(), cfg.Icecast.MountPoint, cfg.Icecast.UserAgent, cfg.FetchTimeout())
}

func engineOptions(cfg *config.Config) radio.Options {
	opts := radio.Options{
		Interval:         cfg.SyncInterval(),
		HistoryLimit:     cfg.Sync.HistoryLimit,
		DurationEstimate: cfg.DurationEstimate(),
		MaxSimulated:     cfg.Sync.MaxSimulatedListeners,
	}
	if cfg.Services.EnrichGenre {
		opts.Genres = metadata.NewITunes(cfg.Services.ITunesURL)
	}
	return opts
}

func runServe(ctx context.Context, configFile string) error {
	log.Println("🚀 Starting MyRadio sync service...")

	// 1. Config
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	// 2. State store
	st, closeStore, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	if err := store.SeedPlaylist(ctx, st, cfg.Store.PlaylistSeed); err != nil {
		log.Printf("⚠️ Playlist seed failed: %v", err)
	}

	// 3. Metrics
	radio.RegisterMetrics()
	query.RegisterMetrics()
	go func() {
		http.Handle("/_metrics", promhttp.Handler())
		log.Printf("📊 Metrics exposed at http://localhost%s/_metrics", cfg.Server.MetricsPort)
		if err := http.ListenAndServe(cfg.Server.MetricsPort, nil); err != nil {
			log.Printf("⚠️ Metrics server error: %v", err)
		}
	}()

	// 4. Read side
	svc := query.New(st, query.Options{
		StreamURL:       cfg.StreamURL(),
		Host:            cfg.Icecast.Host,
		HistoryView:     cfg.Sync.HistoryView,
		CurrentTrackTTL: cfg.CurrentTrackTTL(),
		StreamStatusTTL: cfg.StreamStatusTTL(),
		DocumentTTL:     cfg.DocumentTTL(),
	})
	cfg.Watch(func(next *config.Config) {
		svc.SetTTLs(next.CurrentTrackTTL(), next.StreamStatusTTL(), next.DocumentTTL())
	})

	// 5. Sync engine
	opts := engineOptions(cfg)
	opts.Publisher = svc
	if cfg.GeoIP.Path != "" {
		db, err := geo.Open(cfg.GeoIP.Path)
		if err != nil {
			log.Printf("⚠️ GeoIP disabled: %v", err)
		} else {
			defer db.Close()
			opts.Locator = listeners.Locator(db)
		}
	}

	engine, err := radio.New(ctx, newSource(cfg), st, opts)
	if err != nil {
		return err
	}

	// 6. Run everything until a signal arrives
	hub := live.New(svc, cfg.LiveInterval())
	srv := apiserver.New(cfg, svc, engine, hub)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return engine.Run(gctx) })
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error { return srv.Start(gctx, cfg.Server.Addr) })

	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("👋 Bye")
	return nil
}

func runSyncOnce(ctx context.Context, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	st, closeStore, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	engine, err := radio.New(ctx, newSource(cfg), st, engineOptions(cfg))
	if err != nil {
		return err
	}
	if err := engine.Sync(ctx); err != nil {
		return err
	}
	log.Println("✅ Sync complete")
	return nil
}

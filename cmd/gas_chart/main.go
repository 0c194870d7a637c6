package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/gas_chart/internal/api"
	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/config"
	"github.com/dgnsrekt/gas_chart/internal/controller"
	"github.com/dgnsrekt/gas_chart/internal/dashboard"
	"github.com/dgnsrekt/gas_chart/internal/ingest"
	"github.com/dgnsrekt/gas_chart/internal/journal"
	"github.com/dgnsrekt/gas_chart/internal/metrics"
	"github.com/dgnsrekt/gas_chart/internal/netutil"
	"github.com/dgnsrekt/gas_chart/internal/notify"
	"github.com/dgnsrekt/gas_chart/internal/raster"
	"github.com/dgnsrekt/gas_chart/internal/relay"
	"github.com/dgnsrekt/gas_chart/internal/snapshot"
	"github.com/dgnsrekt/gas_chart/internal/source"
	"github.com/dgnsrekt/gas_chart/internal/store"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.LoadServer()
	if err != nil {
		slog.Error("failed to load server config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	fileCfg, err := config.LoadFile(cfg.ConfigFile)
	if err != nil {
		slog.Error("failed to load config file", "path", cfg.ConfigFile, "error", err)
		os.Exit(1)
	}
	loc, _ := cfg.Location()

	slog.Info("gas_chart config loaded",
		"bind_addr", cfg.BindAddr,
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"source", cfg.Source,
		"db_path", cfg.DBPath,
		"upstream_url", cfg.UpstreamURL,
		"timezone", loc.String(),
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
		"snapshot_dir", cfg.SnapshotDir,
		"feeds", len(fileCfg.Feeds),
		"webhook", cfg.WebhookURL != "",
	)

	host, _, err := net.SplitHostPort(cfg.BindAddr)
	if err != nil {
		slog.Error("invalid bind address", "bind_addr", cfg.BindAddr, "error", err)
		os.Exit(1)
	}
	bindAddr, err := netutil.SelectBindAddr(cfg.BindAddr, netutil.CandidateAddrs(host, cfg.PortCandidates), cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	src, ingester, closeSrc, err := buildSource(cfg, fileCfg)
	if err != nil {
		slog.Error("failed to open data source", "source", cfg.Source, "error", err)
		os.Exit(1)
	}
	defer closeSrc()

	snapStore, err := snapshot.NewStore(cfg.SnapshotDir)
	if err != nil {
		slog.Error("failed to create snapshot store", "dir", cfg.SnapshotDir, "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	broker := relay.NewBroker()
	webhook := &notify.Webhook{Endpoint: cfg.WebhookURL, Location: loc}

	svc := controller.NewService(controller.Options{
		Source:    src,
		Ingester:  ingester,
		Snapshots: snapStore,
		Raster:    &raster.Chromium{CDPURL: cfg.ChromiumCDPURL},
		Chart: chart.Config{
			Palette:   chart.DefaultPalette().Merge(fileCfg.Palette),
			Location:  loc,
			UnitLabel: cfg.PriceLabel,
			OnRender:  m.ObserveRender,
		},
		Observers: []dashboard.Observer{broker.Notify, webhook.Notify, m.Observe},
		OnSessionCount: func(delta int) {
			if delta > 0 {
				m.SessionOpened()
			} else {
				m.SessionClosed()
			}
		},
	})

	h := api.NewServer(svc, api.Options{
		Metrics:       m.Handler(),
		Events:        relay.SSEHandler(broker),
		SessionSocket: relay.SocketHandler(broker, svc),
	})

	srv := &http.Server{Addr: bindAddr, Handler: h}

	go func() {
		slog.Info("gas_chart listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("gas_chart server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("gas_chart shutdown failed", "error", err)
	}
	webhook.Wait()
}

// buildSource opens the configured data source. Re-ingest is only wired for
// the SQLite store, which is the only source it can write to.
func buildSource(cfg *config.ServerConfig, fileCfg *config.FileConfig) (source.Source, dashboard.Ingester, func(), error) {
	switch cfg.Source {
	case config.SourceHTTP:
		return source.NewHTTP(cfg.UpstreamURL, nil), nil, func() {}, nil
	case config.SourceSample:
		return source.NewSample(int64(cfg.SampleSeed), nil), nil, func() {}, nil
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			slog.Debug("sqlite close failed", "error", err)
		}
	}

	pipeline := &ingest.Pipeline{
		Sink:      db,
		Series:    source.SeriesHenryHub,
		RSS:       &ingest.RSS{Limit: cfg.Ingest.FeedLimit},
		Feeds:     fileCfg.Feeds,
		FeedDelay: cfg.Ingest.FeedDelay,
	}
	if cfg.Ingest.EIAAPIKey != "" {
		pipeline.EIA = &ingest.EIA{APIKey: cfg.Ingest.EIAAPIKey, SeriesID: cfg.Ingest.EIASeriesID}
	}
	if cfg.Ingest.JournalDir != "" {
		jw := journal.NewWriter(cfg.Ingest.JournalDir, 0, 0)
		pipeline.Journal = jw
		closeDB = func() {
			if err := jw.Close(); err != nil {
				slog.Debug("ingest journal close failed", "error", err)
			}
			if err := db.Close(); err != nil {
				slog.Debug("sqlite close failed", "error", err)
			}
		}
	}
	return db, pipeline, closeDB, nil
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}

package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/gas_chart/internal/config"
	"github.com/dgnsrekt/gas_chart/internal/ingest"
	"github.com/dgnsrekt/gas_chart/internal/journal"
	"github.com/dgnsrekt/gas_chart/internal/source"
	"github.com/dgnsrekt/gas_chart/internal/store"
)

func main() {
	config.LoadDotEnv()
	ingestCfg := config.LoadIngest()

	var (
		dbPath      = flag.String("db", ingestCfg.DBPath, "SQLite database path")
		configFile  = flag.String("config", os.Getenv("GAS_CHART_CONFIG_FILE"), "YAML config file with the feed list")
		series      = flag.String("series", source.SeriesHenryHub, "series to store rows under")
		withRSS     = flag.Bool("rss", false, "ingest the configured RSS feeds")
		withEIA     = flag.Bool("eia", false, "ingest the EIA Henry Hub daily series (needs EIA_API_KEY)")
		withGDELT   = flag.Bool("gdelt", false, "ingest recent GDELT natural gas articles under NG_FUTURES")
		gdeltQuery  = flag.String("gdelt-query", ingest.DefaultGDELTQuery, "GDELT DOC search query")
		withSample  = flag.Bool("sample", false, "seed synthetic prices and headlines")
		sampleRange = flag.String("sample-range", "1Y", "range covered by -sample")
		importPath  = flag.String("parquet", "", "import a parquet price archive")
		exportPath  = flag.String("export", "", "export stored prices of -series to a parquet archive")
		logLevel    = flag.String("log-level", "info", "debug, info, warn or error")
		logFile     = flag.String("log-file", "logs/gas_ingest.log", "rotating log file")
	)
	flag.Parse()

	if err := setupLogger(*logLevel, *logFile); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}
	if !*withRSS && !*withEIA && !*withGDELT && !*withSample && *importPath == "" && *exportPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Debug("sqlite close failed", "error", err)
		}
	}()

	if *importPath != "" {
		if err := importArchive(ctx, db, *importPath); err != nil {
			slog.Error("parquet import failed", "path", *importPath, "error", err)
			os.Exit(1)
		}
	}

	if *withRSS || *withEIA || *withGDELT || *withSample {
		p := &ingest.Pipeline{Sink: db, Series: *series, FeedDelay: ingestCfg.FeedDelay, SampleRange: *sampleRange}
		if *withRSS {
			fileCfg, err := config.LoadFile(*configFile)
			if err != nil {
				slog.Error("failed to load config file", "path", *configFile, "error", err)
				os.Exit(1)
			}
			p.RSS = &ingest.RSS{Limit: ingestCfg.FeedLimit}
			p.Feeds = fileCfg.Feeds
		}
		if *withEIA {
			p.EIA = &ingest.EIA{APIKey: ingestCfg.EIAAPIKey, SeriesID: ingestCfg.EIASeriesID}
		}
		if *withGDELT {
			p.GDELT = &ingest.GDELT{Query: *gdeltQuery}
		}
		if *withSample {
			p.Sample = source.NewSample(time.Now().UnixNano(), nil)
		}
		var jw *journal.Writer
		if ingestCfg.JournalDir != "" {
			jw = journal.NewWriter(ingestCfg.JournalDir, 0, 0)
			p.Journal = jw
		}

		res, err := p.Run(ctx)
		if jw != nil {
			if cerr := jw.Close(); cerr != nil {
				slog.Warn("ingest journal close failed", "error", cerr)
			}
		}
		if err != nil {
			slog.Error("ingest failed", "error", err)
			os.Exit(1)
		}
		slog.Info("ingest complete", "prices_ingested", res.PricesIngested, "news_ingested", res.NewsIngested)
	}

	if *exportPath != "" {
		samples, err := db.AllPrices(ctx, *series)
		if err != nil {
			slog.Error("read prices failed", "series", *series, "error", err)
			os.Exit(1)
		}
		if err := store.WritePriceArchive(*exportPath, *series, samples); err != nil {
			slog.Error("parquet export failed", "path", *exportPath, "error", err)
			os.Exit(1)
		}
		slog.Info("parquet export complete", "path", *exportPath, "series", *series, "rows", len(samples))
	}

	prices, news, err := db.Counts(ctx)
	if err != nil {
		slog.Warn("count rows failed", "error", err)
		return
	}
	slog.Info("database totals", "prices", prices, "news", news)
}

func importArchive(ctx context.Context, db *store.SQLite, path string) error {
	bySeries, err := store.ReadPriceArchive(path)
	if err != nil {
		return err
	}
	for series, samples := range bySeries {
		n, err := db.UpsertPrices(ctx, series, "parquet:"+filepath.Base(path), samples)
		if err != nil {
			return err
		}
		slog.Info("parquet prices imported", "series", series, "rows", n)
	}
	return nil
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

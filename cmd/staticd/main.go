// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

// Staticd serves a directory tree over HTTP entirely from memory. At
// startup it walks the base directory once, loading every file and
// any pre-compressed .gz/.br/.zst sibling into an immutable snapshot;
// requests never touch the filesystem. SIGHUP rebuilds the snapshot
// from disk and swaps it in atomically.
//
// Configuration layers, later winning: built-in defaults, a YAML file
// (--config or STATICD_CONFIG), the ADDRESS and PORT environment
// variables, then command-line flags. The base directory is the
// single positional argument.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/staticd/lib/config"
	"github.com/bureau-foundation/staticd/lib/filecache"
	"github.com/bureau-foundation/staticd/lib/fileserver"
	"github.com/bureau-foundation/staticd/lib/precompress"
	"github.com/bureau-foundation/staticd/lib/service"
	"github.com/bureau-foundation/staticd/lib/urlpath"
	"github.com/bureau-foundation/staticd/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath     string
		fallbackPath   string
		address        string
		port           int
		logLevel       string
		logFormat      string
		precompressDir bool
		showVersion    bool
	)

	flagSet := pflag.NewFlagSet("staticd", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
	flagSet.StringVarP(&fallbackPath, "fallback-path", "f", "", "URL path served when a request misses (e.g., /index.html)")
	flagSet.StringVarP(&address, "address", "a", "", "host:port to bind (default 127.0.0.1:12234)")
	flagSet.IntVarP(&port, "port", "p", 0, "override the port part of the bind address")
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flagSet.StringVar(&logFormat, "log-format", "", "log format: text or json")
	flagSet.BoolVar(&precompressDir, "precompress", false, "generate .gz/.br/.zst siblings in the base directory before serving")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: staticd [flags] [directory]\n\n")
		fmt.Fprint(os.Stderr, flagSet.FlagUsages())
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Printf("staticd %s\n", version.Info())
		return nil
	}

	if flagSet.NArg() > 1 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(1))
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Flags win over the file and environment, but only when given.
	if flagSet.NArg() == 1 {
		cfg.BaseDir = flagSet.Arg(0)
	}
	if flagSet.Changed("fallback-path") {
		cfg.FallbackPath = fallbackPath
	}
	if flagSet.Changed("address") {
		cfg.Address = address
	}
	if flagSet.Changed("port") {
		cfg.Port = port
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flagSet.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if flagSet.Changed("precompress") {
		cfg.Precompress.Enabled = precompressDir
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	logger.Info("starting staticd",
		"version", version.Info(),
		"address", cfg.ListenAddress(),
	)

	for extension, contentType := range cfg.MimeTypes {
		if err := mime.AddExtensionType(extension, contentType); err != nil {
			return fmt.Errorf("registering mime type %s for %s: %w", contentType, extension, err)
		}
	}

	// The fallback is configured as a URL path but the cache is keyed
	// by logical paths, so resolve it through the same code that
	// resolves request paths.
	fallbackKey := ""
	if cfg.FallbackPath != "" {
		fallbackKey, err = urlpath.Resolve(cfg.FallbackPath)
		if err != nil {
			return fmt.Errorf("invalid fallback path %q: %w", cfg.FallbackPath, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Precompress.Enabled {
		stats, err := precompress.Run(cfg.BaseDir, precompress.Options{
			MinSize: cfg.Precompress.MinSize,
		}, logger)
		if err != nil {
			return fmt.Errorf("pre-compressing %s: %w", cfg.BaseDir, err)
		}
		logger.Info("pre-compression finished",
			"examined", stats.Examined,
			"written", stats.Written,
			"skipped_fresh", stats.SkippedFresh,
			"incompressible", stats.Incompressible,
		)
	}

	snapshot, err := filecache.Build(cfg.BaseDir, logger)
	if err != nil {
		return fmt.Errorf("building cache from %s: %w", cfg.BaseDir, err)
	}
	if fallbackKey != "" {
		if _, ok := snapshot.Lookup(fallbackKey); !ok {
			return fmt.Errorf("fallback path %s does not exist under %s", cfg.FallbackPath, cfg.BaseDir)
		}
	}
	store := filecache.NewStore(snapshot)

	stats := snapshot.Stats()
	logger.Info("cache built",
		"dir", cfg.BaseDir,
		"files", stats.Files,
		"variants", stats.Variants,
		"bytes", humanize.IBytes(uint64(stats.Bytes)),
	)

	go watchReload(ctx, store, cfg.BaseDir, fallbackKey, logger)

	handler := fileserver.NewHandler(fileserver.HandlerConfig{
		Store:        store,
		FallbackPath: fallbackKey,
		Logger:       logger,
	})

	server := service.NewHTTPServer(service.HTTPServerConfig{
		Address: cfg.ListenAddress(),
		Handler: handler,
		Logger:  logger,
	})

	return server.Serve(ctx)
}

// loadConfig resolves the config file from the flag, then the
// STATICD_CONFIG environment variable, then defaults.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. Level and format strings are
// validated by config.Validate before this runs.
func newLogger(level, format string) *slog.Logger {
	slogLevel := slog.LevelInfo
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	}

	options := &slog.HandlerOptions{Level: slogLevel}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, options)
	} else {
		handler = slog.NewTextHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// watchReload rebuilds the snapshot on SIGHUP. A failed rebuild keeps
// the current snapshot serving; only startup failures are fatal.
func watchReload(ctx context.Context, store *filecache.Store, dir string, fallbackKey string, logger *slog.Logger) {
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)

	for {
		select {
		case <-ctx.Done():
			return
		case <-reload:
			logger.Info("rebuilding cache", "dir", dir)
			snapshot, err := filecache.Build(dir, logger)
			if err != nil {
				logger.Error("cache rebuild failed, keeping current snapshot", "error", err)
				continue
			}
			if fallbackKey != "" {
				if _, ok := snapshot.Lookup(fallbackKey); !ok {
					logger.Warn("fallback path missing from rebuilt cache", "path", fallbackKey)
				}
			}
			store.Replace(snapshot)

			stats := snapshot.Stats()
			logger.Info("cache replaced",
				"files", stats.Files,
				"variants", stats.Variants,
				"bytes", humanize.IBytes(uint64(stats.Bytes)),
			)
		}
	}
}

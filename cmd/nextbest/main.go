// Package main is the nextbest CLI entry point.
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
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/nextbest/internal/catalog"
	"github.com/hyperjump/nextbest/internal/cli"
	"github.com/hyperjump/nextbest/internal/config"
	"github.com/hyperjump/nextbest/internal/models"
	"github.com/hyperjump/nextbest/internal/server"
	"github.com/hyperjump/nextbest/internal/storage"
	"github.com/hyperjump/nextbest/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/nextbest/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory wins if present; when neither exists, built-in
// defaults are used and the returned path is empty. An explicit path must exist.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// overrides are command line values that replace config file settings when set.
type overrides struct {
	catalog string
	mode    string
	port    int
	debug   bool
}

func (o overrides) apply(cfg *config.Config) error {
	if o.catalog != "" {
		abs, err := filepath.Abs(o.catalog)
		if err != nil {
			return err
		}
		cfg.Catalog.Path = abs
		cfg.Catalog.Format = ""
	}
	if o.mode != "" {
		if o.mode != cfg.Server.Mode && o.mode == config.ModeHosted && cfg.Server.Host == "localhost" {
			cfg.Server.Host = "0.0.0.0"
		}
		cfg.Server.Mode = o.mode
	}
	if o.port != 0 {
		cfg.Server.Port = o.port
	}
	if o.debug {
		cfg.Debug = true
	}
	return cfg.Validate()
}

// argsReorder moves any flags (and their values) that appear after the
// positional arguments to the front so that flag.Parse sees them. The flag
// package stops at the first non-flag argument, so "nextbest recommend 42
// --top-n 3" would otherwise leave --top-n unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "recommend":
		runRecommend()
	case "status":
		runStatus()
	case "import":
		runImport()
	case "init":
		runInit()
	case "version", "--version", "-v":
		fmt.Printf("nextbest version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config, applies overrides, and creates the logger.
func setup(configPath string, o overrides) (*config.Config, string, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := o.apply(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, resolved, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	catalogPath := fs.String("catalog", "", "catalog file (overrides catalog.path)")
	mode := fs.String("mode", "", "delivery mode: local or hosted (overrides server.mode)")
	port := fs.Int("port", 0, "listen port (overrides server.port)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger := setup(*configPath, overrides{
		catalog: *catalogPath, mode: *mode, port: *port, debug: *debug,
	})
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", cfg.Debug),
		zap.String("mode", cfg.Server.Mode),
	)

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	opts := []server.Option{server.WithNameIndex(components.Names)}
	if components.Metrics != nil {
		opts = append(opts, server.WithMetricsHandler(components.Metrics.Handler()))
	}
	srv := server.NewServer(components.Service, cfg, logger, opts...)
	if cfg.Server.Mode == config.ModeHosted && cfg.Server.PublicURL != "" {
		logger.Info("public URL", zap.String("url", cfg.Server.PublicURL))
	}
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func printRecommendUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: nextbest recommend [flags] <product-id>\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Without --server the catalog is loaded and answered locally.

Examples:
  nextbest recommend 101
  nextbest recommend --top-n 3 101
  nextbest recommend 101 --server http://localhost:5000 --output json
`)
}

func runRecommend() {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = load the catalog locally)")
	catalogPath := fs.String("catalog", "", "catalog file (overrides catalog.path)")
	topN := fs.Int("top-n", -1, "number of recommendations (default from config)")
	outputFormat := fs.String("output", "text", "output format: text, compact (one result per line), or json")
	fs.Usage = func() { printRecommendUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() != 1 {
		printRecommendUsage(fs)
		os.Exit(1)
	}
	id, err := models.ParseProductID(strings.TrimSpace(fs.Arg(0)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	var requested *int
	if *topN >= 0 {
		requested = topN
	}

	var resp *models.RecommendResponse
	if *serverURL != "" {
		resp, err = recommendViaHTTP(*serverURL, int64(id), requested)
	} else {
		cfg, _, logger := setup(*configPath, overrides{catalog: *catalogPath})
		defer logger.Sync()
		components, initErr := initializeComponents(context.Background(), cfg, logger)
		if initErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", initErr)
			os.Exit(1)
		}
		defer components.Close()
		resp, err = components.Service.Recommend(context.Background(), &models.RecommendRequest{ProductID: &id, TopN: requested})
	}
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "Product ID not found: %d\n", id)
		} else {
			fmt.Fprintf(os.Stderr, "Recommend failed: %v\n", err)
		}
		os.Exit(1)
	}
	if err := cli.WriteRecommendations(os.Stdout, resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = load the catalog locally)")
	catalogPath := fs.String("catalog", "", "catalog file (overrides catalog.path)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	var status *cli.Status
	if *serverURL != "" {
		status, err = statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, logger := setup(*configPath, overrides{catalog: *catalogPath})
		defer logger.Sync()
		components, err := initializeComponents(context.Background(), cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		status = localStatus(components)
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	catalogPath := fs.String("catalog", "", "catalog file to import (default catalog.path)")
	dbPath := fs.String("db", "", "SQLite database to write (required)")
	table := fs.String("table", storage.DefaultTable, "products table name")
	_ = fs.Parse(os.Args[2:])

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: nextbest import --catalog <file> --db <database> [--table name]")
		os.Exit(1)
	}
	cfg, _, logger := setup(*configPath, overrides{catalog: *catalogPath})
	defer logger.Sync()

	n, err := importCatalog(context.Background(), cfg.Catalog, *dbPath, *table, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d products into %s (table %s)\n", n, *dbPath, *table)
}

// importCatalog loads and validates the catalog described by src and replaces
// the products table of the SQLite database at dbPath with it.
func importCatalog(ctx context.Context, src config.CatalogConfig, dbPath, table string, logger *zap.Logger) (int, error) {
	logger = utils.OrNop(logger)
	source, err := catalog.NewSource(src)
	if err != nil {
		return 0, err
	}
	cat, err := catalog.Load(ctx, source)
	if err != nil {
		return 0, err
	}
	store, err := storage.NewSQLiteStorage(dbPath, storage.WithTable(table))
	if err != nil {
		return 0, err
	}
	defer store.Close()
	if err := store.ReplaceProducts(ctx, cat.Products); err != nil {
		return 0, err
	}
	logger.Info("catalog imported",
		zap.String("source", cat.Source),
		zap.String("fingerprint", cat.Fingerprint),
		zap.Int("items", cat.Len()),
		zap.String("db", dbPath))
	return cat.Len(), nil
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("config", "config.yaml", "config file to write")
	force := fs.Bool("force", false, "overwrite an existing file")
	_ = fs.Parse(os.Args[2:])

	if err := writeDefaultConfig(*path, *force); err != nil {
		fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s\n", *path)
}

// writeDefaultConfig writes the built-in defaults to path. The catalog path
// is kept relative so the file can be moved along with the dataset.
func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return config.Save(path, cfg)
}

func printUsage() {
	fmt.Println(`nextbest - item-based "next best product" recommender

Usage:
  nextbest server [flags]                 Start the HTTP server
  nextbest recommend [flags] <product-id> Recommend similar products
  nextbest status [flags]                 Show catalog and index status
  nextbest import [flags]                 Import a catalog into SQLite
  nextbest init [flags]                   Write a default config.yaml
  nextbest version                        Show version
  nextbest help                           Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/nextbest/config.yaml)
  --debug            Enable debug logging
  --catalog string   Catalog file (CSV, XLSX or SQLite)
  --mode string      local or hosted
  --port int         Listen port (default: 5000)

Recommend Flags:
  --server string    Server URL. Empty (default) loads the catalog locally.
  --top-n int        Number of recommendations (default from config, 5)
  --output string    Output format: text, compact, or json (default: text)
  --catalog string   Catalog file for local mode

Status Flags:
  --server string    Server URL. Empty (default) loads the catalog locally.
  --output string    Output format: text or json (default: text)

Import Flags:
  --catalog string   Catalog file to import (default: catalog.path)
  --db string        SQLite database to write
  --table string     Table name (default: products)

Examples:
  nextbest server --catalog ./bosch_item_based_collaborative_filtering.csv
  nextbest server --mode hosted --port 8080
  nextbest recommend 101
  nextbest recommend --server http://localhost:5000 --output json 101
  nextbest import --catalog products.xlsx --db catalog.db
  nextbest status --output json
  nextbest init --config ./config.yaml`)
}

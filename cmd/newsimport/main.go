// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/newsimport"
	"github.com/poiesic/newsimport/config"
	"github.com/poiesic/newsimport/core"
	"github.com/poiesic/newsimport/provider"
	"github.com/poiesic/newsimport/telemetry"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "newsimport",
		Usage: "Import and deduplicate articles from NewsAPI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a config file (YAML, TOML or JSON)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Run one import batch and print the result",
				Action: importCommand,
				Flags: append(importFlags(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the full result as JSON",
					},
				),
			},
			{
				Name:   "sources",
				Usage:  "List the sources known to the provider",
				Action: sourcesCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Usage: "Filter by category",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Filter by language",
					},
					&cli.StringFlag{
						Name:  "country",
						Usage: "Filter by country",
					},
				},
			},
			{
				Name:   "schedule",
				Usage:  "Import on a cron schedule and serve Prometheus metrics",
				Action: scheduleCommand,
				Flags: append(importFlags(),
					&cli.StringFlag{
						Name:  "cron",
						Usage: "Cron expression overriding the configured schedule",
					},
					&cli.StringFlag{
						Name:  "metrics-addr",
						Usage: "Address of the metrics endpoint overriding the configured one",
					},
					&cli.BoolFlag{
						Name:  "run-now",
						Usage: "Run one batch immediately before waiting for the schedule",
					},
				),
			},
		},
	}
}

func importFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "queries",
			Aliases:  []string{"q"},
			Usage:    "Path to the query definitions (YAML or JSON)",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "pool-size",
			Usage: "Number of import workers (0 uses the configured value)",
		},
		&cli.StringFlag{
			Name:  "spill-dir",
			Usage: "Keep the batch record set in BadgerDB under this directory",
		},
		&cli.BoolFlag{
			Name:  "disabled",
			Usage: "Do not contact the provider",
		},
		&cli.BoolFlag{
			Name:  "mock",
			Usage: "Import synthetic responses (implies --disabled)",
		},
	}
}

// loadConfig reads the configuration and applies command-line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Read(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("pool-size") {
		cfg.PoolSize = c.Int("pool-size")
	}
	if c.IsSet("spill-dir") {
		cfg.SpillDir = c.String("spill-dir")
	}
	if c.Bool("disabled") {
		cfg.Disabled = true
	}
	if c.Bool("mock") {
		cfg.Disabled = true
		cfg.ImportMockData = true
	}
	if c.IsSet("cron") {
		cfg.Cron = c.String("cron")
	}
	if c.IsSet("metrics-addr") {
		cfg.MetricsAddr = c.String("metrics-addr")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func importCommand(c *cli.Context) error {
	ctx := c.Context

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	queries, err := config.LoadQueries(c.String("queries"))
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	svc, err := newsimport.NewService(cfg, newsimport.WithLogger(slog.Default()))
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	go logFailures(svc.Errors(), slog.Default())

	svc.LogSources(ctx)
	start := time.Now()
	result := svc.Import(ctx, queries)

	if c.Bool("json") {
		return writeJSON(c.App.Writer, result)
	}
	printSummary(c.App.Writer, result, time.Since(start))
	return nil
}

func sourcesCommand(c *cli.Context) error {
	ctx := c.Context

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Disabled {
		return fmt.Errorf("cannot list sources while the importer is disabled")
	}

	svc, err := newsimport.NewService(cfg, newsimport.WithLogger(slog.Default()))
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	req := &provider.SourcesRequest{
		Category: c.String("category"),
		Language: c.String("language"),
		Country:  c.String("country"),
	}
	resp, err := svc.Sources(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	for _, src := range resp.Sources {
		fmt.Fprintf(c.App.Writer, "%-30s %-40s %-12s %-4s %s\n", src.ID, src.Name, src.Category, src.Language, src.Country)
	}
	fmt.Fprintf(c.App.ErrWriter, "%d sources\n", len(resp.Sources))
	return nil
}

func scheduleCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := slog.Default()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if _, err := cron.ParseStandard(cfg.Cron); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", cfg.Cron, err)
	}
	queriesPath := c.String("queries")
	if _, err := config.LoadQueries(queriesPath); err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	svc, err := newsimport.NewService(cfg, newsimport.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	go logFailures(svc.Errors(), logger)

	server, err := telemetry.Start(cfg.MetricsAddr, svc.Registry(), logger)
	if err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", "err", err)
		}
	}()

	svc.LogSources(ctx)

	// Query definitions are re-read on every run so edits take effect
	// without a restart.
	runBatch := func() {
		queries, err := config.LoadQueries(queriesPath)
		if err != nil {
			logger.Error("failed to reload queries, skipping run", "path", queriesPath, "err", err)
			return
		}
		start := time.Now()
		result := svc.Import(ctx, queries)
		logger.Info("scheduled import finished",
			"records", len(result.Records),
			"succeeded", result.SuccessCount(),
			"failed", result.ErrorCount(),
			"elapsed", time.Since(start))
	}

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := scheduler.AddFunc(cfg.Cron, runBatch); err != nil {
		return fmt.Errorf("failed to schedule import job: %w", err)
	}

	if c.Bool("run-now") {
		runBatch()
	}

	scheduler.Start()
	logger.Info("import scheduler started",
		"schedule", cfg.Cron,
		"metrics", server.Addr(),
		"next", scheduler.Entries()[0].Next)

	<-ctx.Done()

	// Stop accepting new jobs and wait for running jobs to complete
	<-scheduler.Stop().Done()
	logger.Info("import scheduler stopped")
	return nil
}

func logFailures(errs <-chan error, logger *slog.Logger) {
	for err := range errs {
		logger.Warn("query failed", "err", err)
	}
}

func printSummary(w io.Writer, result *core.ImportResult, elapsed time.Duration) {
	fmt.Fprintf(w, "Imported %d records from %d queries in %s\n",
		len(result.Records), len(result.Metrics), elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  succeeded: %d\n", result.SuccessCount())
	fmt.Fprintf(w, "  failed:    %d\n", result.ErrorCount())
	for _, m := range result.Metrics {
		if m.Failed() {
			fmt.Fprintf(w, "  query %d: %s\n", m.QueryID, m.ErrorDetail)
		}
	}
}

func writeJSON(w io.Writer, result *core.ImportResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

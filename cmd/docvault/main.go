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
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/docvault"
	"github.com/poiesic/docvault/config"
	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/extract"
	"github.com/poiesic/docvault/vault"
	"github.com/urfave/cli/v2"

	// Cloud vault roots (s3://, gs://)
	_ "github.com/viant/afsc/gs"
	_ "github.com/viant/afsc/s3"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "docvault",
		Usage: "Ingest documents from a vault into a vector store",
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
				Usage:   "Path to YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to .env file",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Vault root (local path or s3://, gs:// URL)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Create the unprocessed and processed areas",
				Action: initCommand,
			},
			{
				Name:   "sweep",
				Usage:  "Ingest every unprocessed file once",
				Action: sweepCommand,
				Flags:  pipelineFlags(),
			},
			{
				Name:   "watch",
				Usage:  "Sweep on an interval until interrupted",
				Action: watchCommand,
				Flags: append(pipelineFlags(),
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "Time between sweeps (defaults to watch.interval)",
					},
					&cli.BoolFlag{
						Name:  "notify",
						Usage: "Also sweep when files appear in a local vault",
					},
				),
			},
			{
				Name:   "status",
				Usage:  "Show vault and store counts",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "List unprocessed files",
					},
				},
			},
			{
				Name:      "inspect",
				Usage:     "Extract and chunk one unprocessed file without uploading it",
				ArgsUsage: "FILE",
				Action:    inspectCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "html-element",
						Usage: "HTML element=id to extract, in order (repeatable)",
					},
					&cli.IntFlag{
						Name:  "preview",
						Usage: "Characters of each chunk to print",
						Value: 60,
					},
				},
			},
		},
	}
}

func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "html-element",
			Usage: "HTML element=id to extract, in order (repeatable)",
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: "Files processed in parallel (defaults to pipeline.concurrency)",
		},
		&cli.BoolFlag{
			Name:  "keep-on-upload-failure",
			Usage: "Leave a file unprocessed when its upload fails",
		},
		&cli.BoolFlag{
			Name:  "progress",
			Usage: "Print sweep progress to stderr",
		},
	}
}

// loadConfig layers the config file, .env, the environment and flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if err := config.LoadEnvFile(c.String("env-file")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)

	if c.IsSet("root") {
		cfg.Root = c.String("root")
	}
	if c.IsSet("html-element") {
		selectors := []extract.ElementSelector{}
		for _, raw := range c.StringSlice("html-element") {
			selector, err := extract.ParseElementSelector(raw)
			if err != nil {
				return nil, err
			}
			selectors = append(selectors, selector)
		}
		cfg.Extract.HTML.Selectors = selectors
	}
	if c.IsSet("concurrency") {
		cfg.Pipeline.Concurrency = c.Int("concurrency")
	}
	if c.Bool("keep-on-upload-failure") {
		cfg.Pipeline.MoveOnUploadFailure = false
	}
	if c.IsSet("interval") {
		cfg.Watch.Interval = c.Duration("interval")
	}
	return cfg, cfg.Validate()
}

func openIngestor(c *cli.Context, cfg *config.Config) (*docvault.Ingestor, error) {
	opts := []docvault.IngestorOption{docvault.WithLogger(slog.Default())}
	if c.Bool("progress") {
		opts = append(opts, docvault.WithProgress(os.Stderr))
	}
	return docvault.NewIngestor(cfg, opts...)
}

func initCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	v, err := vault.New(vault.NewAFSStorage(), cfg.VaultConfig(), vault.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	if err := v.Init(c.Context); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Vault ready at %s\n  unprocessed: %s\n  processed:   %s\n",
		cfg.Root, v.UnprocessedRoot(), v.ProcessedRoot())
	return nil
}

func sweepCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ing, err := openIngestor(c, cfg)
	if err != nil {
		return err
	}
	defer ing.Close()

	report, err := ing.Sweep(c.Context)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	fmt.Fprintln(c.App.Writer, report.String())
	return nil
}

func statusCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ing, err := openIngestor(c, cfg)
	if err != nil {
		return err
	}
	defer ing.Close()

	status, err := ing.Status(c.Context)
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "Vault:        %s\n", status.Root)
	fmt.Fprintf(w, "Unprocessed:  %d\n", len(status.Unprocessed))
	fmt.Fprintf(w, "Processed:    %d\n", len(status.Processed))
	if status.StoredChunks >= 0 {
		fmt.Fprintf(w, "Stored chunks (%s): %d\n", cfg.Store.Namespace, status.StoredChunks)
	} else {
		fmt.Fprintf(w, "Stored chunks: not available for %s store\n", cfg.Store.Type)
	}
	if c.Bool("verbose") {
		for _, rel := range status.Unprocessed {
			fmt.Fprintf(w, "  %s\n", rel)
		}
	}
	return nil
}

func inspectCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("inspect takes exactly one FILE relative to the unprocessed area")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ing, err := openIngestor(c, cfg)
	if err != nil {
		return err
	}
	defer ing.Close()

	inspection, err := ing.Inspect(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "%s: %d documents, %d chunks\n", inspection.Source, len(inspection.Documents), len(inspection.Chunks))
	for _, chunk := range inspection.Chunks {
		fmt.Fprintf(w, "  [%v] start=%v len=%d %q\n",
			chunk.Metadata[core.MetaChunkID], chunk.Metadata[core.MetaStartIndex],
			len([]rune(chunk.PageContent)), preview(chunk.PageContent, c.Int("preview")))
	}
	return nil
}

func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if n <= 0 || len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
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

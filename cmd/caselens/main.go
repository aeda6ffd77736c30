// Copyright 2025 The caselens Authors
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
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	caselens "github.com/caselens/caselens"
	"github.com/caselens/caselens/ai"
	"github.com/caselens/caselens/projection"
	"github.com/caselens/caselens/search"
	"github.com/caselens/caselens/server"
)

func main() {
	app := &cli.App{
		Name:   "caselens",
		Usage:  "Similarity search over medical teaching cases",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Load the embedding store and serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "listen",
						Usage: "HTTP listen address",
						Value: ":8000",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "all-minilm:l6-v2",
					},
					&cli.StringFlag{
						Name:  "projection-dir",
						Usage: "Directory holding UMAP projection artifacts",
					},
					&cli.StringFlag{
						Name:  "images-dir",
						Usage: "Directory served as static case images",
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Seed the database from exported pipeline artifacts",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "artifacts",
						Aliases:  []string{"a"},
						Usage:    "Directory holding the exported artifacts",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (for backfill)",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name (for backfill)",
						Value: "all-minilm:l6-v2",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of cases written per batch",
						Value: 500,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Print corpus and embedding-space statistics",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	ctx := context.Background()

	explorer, err := newExplorer(c)
	if err != nil {
		return err
	}
	defer explorer.Close()

	store, err := explorer.LoadStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to load embedding store: %w", err)
	}
	searcher, err := search.NewSearcher(store, explorer.Provider())
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	srv, err := server.New(server.Config{
		Store:       store,
		Searcher:    searcher,
		Projections: projection.NewStore(c.String("projection-dir"), slog.Default()),
		ImagesDir:   c.String("images-dir"),
	})
	if err != nil {
		return err
	}

	return srv.ListenAndServe(c.String("listen"))
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	explorer, err := newExplorer(c)
	if err != nil {
		return err
	}
	defer explorer.Close()

	pipeline, err := explorer.NewIngestPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	if err := pipeline.Seed(ctx, c.String("artifacts")); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	explorer, err := newExplorer(c)
	if err != nil {
		return err
	}
	defer explorer.Close()

	searcher, err := explorer.NewSearcher(ctx)
	if err != nil {
		return fmt.Errorf("failed to load embedding store: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(searcher.Stats())
}

func newExplorer(c *cli.Context) (*caselens.Explorer, error) {
	var opts []ai.ConfigOption
	if host := c.String("embedding-host"); host != "" {
		opts = append(opts, ai.WithHost(host))
	}
	if model := c.String("embedding-model"); model != "" {
		opts = append(opts, ai.WithModel(model))
	}
	aiConfig := ai.NewConfig(opts...)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	explorer, err := caselens.NewExplorer(c.String("db"), caselens.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return explorer, nil
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

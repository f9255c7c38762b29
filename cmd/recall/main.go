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
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	recall "github.com/poiesic/recall"
	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/chunking"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/ingestion"
	"github.com/poiesic/recall/search"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "recall",
		Usage: "Local knowledge base with semantic retrieval",
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
				Name:      "ingest",
				Usage:     "Chunk, embed, and store a document (from file or stdin)",
				ArgsUsage: "[file]",
				Action:    ingestCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:  "title",
						Usage: "Document title",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Provenance label, e.g. a path or URL",
					},
					&cli.StringFlag{
						Name:  "confidence",
						Usage: "Trust level (high, medium, low)",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Tag to attach (repeatable)",
					},
					&cli.StringFlag{
						Name:  "content-type",
						Usage: "Content type label, e.g. text or markdown",
					},
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "Chunking strategy (fixed, sentence, paragraph, sliding, semantic, recursive)",
						Value: string(chunking.StrategyFixed),
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk size in characters for fixed and sliding strategies",
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "Overlap in characters for the fixed strategy",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Query the knowledge base",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:  "method",
						Usage: "Retrieval method (vector, keyword, hybrid, mmr, multi_query)",
						Value: string(search.MethodHybrid),
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: search.DefaultLimit,
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Restrict results to this source",
					},
					&cli.StringFlag{
						Name:  "confidence",
						Usage: "Restrict results to this confidence",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Restrict results to chunks carrying any of these tags (repeatable)",
					},
				),
			},
			{
				Name:      "get",
				Usage:     "Show an entry and its chunks",
				ArgsUsage: "<entry-id>",
				Action:    getCommand,
				Flags:     databaseFlags(),
			},
			{
				Name:   "list",
				Usage:  "List stored entries, newest first",
				Action: listCommand,
				Flags: append(databaseFlags(),
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Number of entries to skip",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries to show",
						Value: 20,
					},
				),
			},
			{
				Name:      "delete",
				Usage:     "Delete an entry and all of its chunks",
				ArgsUsage: "<entry-id>",
				Action:    deleteCommand,
				Flags:     databaseFlags(),
			},
			{
				Name:   "stats",
				Usage:  "Summarize the stored corpus",
				Action: statsCommand,
				Flags:  databaseFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func databaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.IntFlag{
			Name:  "dimension",
			Usage: "Embedding vector dimension",
			Value: 768,
		},
	}
}

func openKnowledgeBase(c *cli.Context) (*recall.KnowledgeBase, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
		ai.WithDimension(c.Int("dimension")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	kb, err := recall.NewKnowledgeBase(c.String("db"), recall.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge base: %w", err)
	}
	return kb, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	strategy, ok := chunking.ParseStrategy(c.String("strategy"))
	if !ok {
		return fmt.Errorf("unknown chunking strategy %q", c.String("strategy"))
	}

	// Read document from the file argument, or stdin when absent
	var (
		text []byte
		err  error
	)
	source := c.String("source")
	if c.Args().Len() > 0 {
		path := c.Args().First()
		text, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if source == "" {
			source = path
		}
	} else {
		text, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	opts := chunking.Options{
		ChunkSize: c.Int("chunk-size"),
		Overlap:   c.Int("overlap"),
	}

	receipt, err := kb.Ingest(ctx, ingestion.Request{
		Text:        string(text),
		Title:       c.String("title"),
		Source:      source,
		Confidence:  c.String("confidence"),
		Tags:        c.StringSlice("tag"),
		ContentType: c.String("content-type"),
		Strategy:    strategy,
		Options:     opts,
	}, ingestion.WithDimension(c.Int("dimension")))
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Entry %d ingested: %d chunks (%s)\n", receipt.Id, receipt.ChunkCount, receipt.Strategy)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	var filter *core.Filter
	if c.String("source") != "" || c.String("confidence") != "" || len(c.StringSlice("tag")) > 0 {
		filter = &core.Filter{
			Source:     c.String("source"),
			Confidence: c.String("confidence"),
			Tags:       c.StringSlice("tag"),
		}
	}

	response, err := kb.Search(ctx, query, search.Options{
		Method: search.Method(c.String("method")),
		Limit:  c.Int("limit"),
		Filter: filter,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if response.Truncated {
		fmt.Fprintln(os.Stderr, "warning: keyword scan truncated; lexical scores cover a partial pool")
	}

	for i, result := range response.Results {
		fmt.Printf("%2d. [%.3f] %s\n", i+1, result.Score, summarize(result.Chunk.Text, 120))
		fmt.Printf("    entry=%d ordinal=%d/%d", result.Chunk.ParentId, result.Chunk.Ordinal+1, result.Chunk.Siblings)
		if result.Chunk.Source != "" {
			fmt.Printf(" source=%s", result.Chunk.Source)
		}
		fmt.Println()
	}
	if len(response.Results) == 0 {
		fmt.Println("No results.")
	}
	return nil
}

func getCommand(c *cli.Context) error {
	ctx := context.Background()

	id, err := parseEntryID(c)
	if err != nil {
		return err
	}

	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	entry, chunks, err := kb.GetEntryWithChunks(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("Entry %d", entry.Id)
	if entry.Title != "" {
		fmt.Printf(": %s", entry.Title)
	}
	fmt.Println()
	fmt.Printf("  strategy=%s chunks=%d inserted=%s\n", entry.Strategy, entry.ChunkCount, entry.InsertedAt.Format("2006-01-02 15:04:05"))
	if entry.Source != "" {
		fmt.Printf("  source=%s\n", entry.Source)
	}
	if len(entry.Tags) > 0 {
		fmt.Printf("  tags=%s\n", strings.Join(entry.Tags, ","))
	}
	for _, chunk := range chunks {
		fmt.Printf("  [%d] %s\n", chunk.Ordinal, summarize(chunk.Text, 100))
	}
	return nil
}

func listCommand(c *cli.Context) error {
	ctx := context.Background()

	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	entries, total, err := kb.ListEntries(ctx, c.Int("offset"), c.Int("limit"))
	if err != nil {
		return err
	}

	for _, entry := range entries {
		title := entry.Title
		if title == "" {
			title = summarize(entry.Text, 60)
		}
		fmt.Printf("%d  %s  chunks=%d  %s\n", entry.Id, entry.InsertedAt.Format("2006-01-02 15:04"), entry.ChunkCount, title)
	}
	fmt.Printf("%d of %d entries\n", len(entries), total)
	return nil
}

func deleteCommand(c *cli.Context) error {
	ctx := context.Background()

	id, err := parseEntryID(c)
	if err != nil {
		return err
	}

	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	removed, err := kb.DeleteEntry(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("Deleted entry %d and %d chunks\n", id, removed)
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	stats, err := kb.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Entries: %d\n", stats.EntryCount)
	fmt.Printf("Chunks:  %d\n", stats.ChunkCount)
	fmt.Printf("Avg chunks per entry: %.1f\n", stats.AvgChunksPerEntry)
	printBreakdown("By strategy", stats.ByStrategy)
	printBreakdown("By source", stats.BySource)
	printBreakdown("By confidence", stats.ByConfidence)
	return nil
}

func printBreakdown(label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for key, count := range counts {
		fmt.Printf("  %-20s %d\n", key, count)
	}
}

func parseEntryID(c *cli.Context) (core.ID, error) {
	if c.Args().Len() == 0 {
		return 0, fmt.Errorf("entry ID is required")
	}
	return core.ParseID(c.Args().First())
}

func summarize(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

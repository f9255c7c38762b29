package main

import (
	"bufio"
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/recall"
	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/ai/mock"
	"github.com/poiesic/recall/chunking"
	"github.com/poiesic/recall/ingestion"
)

type document struct {
	title string
	tags  []string
	text  string
}

var documents = []document{
	{
		title: "Field notes: the old lighthouse",
		tags:  []string{"fiction", "coast"},
		text: `The abandoned lighthouse still broadcasts its warning every third Tuesday. Nobody maintains the lamp, yet the beam cuts through fog as if guided by habit alone.

Sailors who pass the point at dusk report a second, fainter light answering from the cliffs. The harbormaster logs each report and files it under weather.

The town council voted twice to demolish the tower. Both votes were lost to a clerical error that nobody can reproduce.`,
	},
	{
		title: "Kitchen almanac",
		tags:  []string{"food"},
		text: `Coffee tastes better when nobody's watching. The first press of the morning carries notes the second never finds.

They tasted fresh bread baked just before dawn, still warm enough to melt butter on contact. The baker swears by a starter older than the shop itself.

Honey straight from the hive keeps a trace of whatever bloomed that week. Clover years are mild; buckwheat years are not.`,
	},
	{
		title: "Distributed systems bestiary",
		tags:  []string{"software", "humor"},
		text: `The server room developed opinions about the backup schedule. Snapshots now occur whenever the air conditioning cycles, which the operators have chosen to interpret as a feature.

TCP packets started arriving before they were sent. The network team blames clock skew; the clocks blame the network team.

The distributed system achieved consensus through interpretive dance. Quorum is reached when a majority of nodes finish the same movement.

Kubernetes pods formed their own government. Scheduling decisions are now subject to appeal.`,
	},
	{
		title: "Notes on weather",
		tags:  []string{"nature"},
		text: `Rain drummed on the rooftop, creating a soothing rhythm. A gentle snowfall blanketed the city in quiet white.

A sudden thunderclap shattered the silence of the forest. The storm rolled in fast, bringing thunder and lightning, and left just as quickly.

The wind carried scents of jasmine from distant gardens. By morning the air was clear and cold.`,
	},
	{
		title: "The attic key",
		tags:  []string{"fiction"},
		text: `She found a hidden key in the dusty attic, wrapped in a handkerchief embroidered with initials that matched nobody in the family.

The old map showed roads that no longer existed. One of them ended at the property line, exactly beneath the attic window.

They discovered an ancient rune carved deep within the stone foundation. The key fit nothing in the house. It fit the stone perfectly.`,
	},
}

var (
	seedFileName = flag.String("src", "", "file of seed data, one document per blank-line-separated block")
	dbPath       = flag.String("db", "./recall_db", "path to BadgerDB database directory")
	strategyName = flag.String("strategy", string(chunking.StrategyParagraph), "chunking strategy for seeded documents")
	useMock      = flag.Bool("mock", false, "use deterministic mock embeddings instead of a provider")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// documentsFromFile returns an iterator over blank-line-separated blocks in a
// file. Each block becomes one document with no title or tags.
func documentsFromFile(filename string) (iter.Seq[document], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(document) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		var block strings.Builder
		flush := func() bool {
			text := strings.TrimSpace(block.String())
			block.Reset()
			if text == "" {
				return true
			}
			return yield(document{text: text})
		}

		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				if !flush() {
					return
				}
				continue
			}
			block.WriteString(line)
			block.WriteString("\n")
		}
		flush()
	}, nil
}

// documentsFromSlice returns an iterator over the built-in sample documents.
func documentsFromSlice(docs []document) iter.Seq[document] {
	return func(yield func(document) bool) {
		for _, doc := range docs {
			if !yield(doc) {
				return
			}
		}
	}
}

func ingestAll(ctx context.Context, pipeline *ingestion.Pipeline, source iter.Seq[document], strategy chunking.Strategy) error {
	count := 0
	for doc := range source {
		receipt, err := pipeline.Ingest(ctx, ingestion.Request{
			Text:     doc.text,
			Title:    doc.title,
			Source:   "seeder",
			Tags:     doc.tags,
			Strategy: strategy,
		})
		if err != nil {
			return err
		}
		count++
		slog.Info("seeded document", "entry", receipt.Id, "chunks", receipt.ChunkCount, "title", doc.title)
	}
	slog.Info("seeding complete", "documents", count)
	return nil
}

func main() {
	strategy, ok := chunking.ParseStrategy(*strategyName)
	if !ok {
		panic("unknown chunking strategy: " + *strategyName)
	}

	opts := []recall.KnowledgeBaseOption{}
	if *useMock {
		opts = append(opts, recall.WithEmbedder(mock.NewMockEmbedderWithDimension(ai.DefaultConfig().Dimension)))
	}

	kb, err := recall.NewKnowledgeBase(*dbPath, opts...)
	if err != nil {
		panic(err)
	}
	defer kb.Close()

	ingester, err := kb.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer ingester.Release()

	ctx := context.Background()

	// Determine source of seed data
	var source iter.Seq[document]
	if *seedFileName != "" {
		source, err = documentsFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = documentsFromSlice(documents)
	}

	if err := ingestAll(ctx, ingester, source, strategy); err != nil {
		panic(err)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nana-intelligence/agent-juliette/internal/config"
	"github.com/nana-intelligence/agent-juliette/internal/llm"
	"github.com/nana-intelligence/agent-juliette/internal/retrieval"
)

// ingestConcurrency bounds parallel embedding calls during ingestion.
const ingestConcurrency = 4

var ingestCmd = &cobra.Command{
	Use:   "ingest <file-or-dir>...",
	Short: "Index knowledge base documents",
	Long: `Read Markdown or text files, split them into paragraph-aligned chunks,
embed each chunk, and index it into the Qdrant collection the retriever
searches during quote drafting.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	paths, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no .md or .txt files found in %v", args)
	}

	ctx := context.Background()
	ag, err := buildAgent(ctx, cfg)
	if err != nil {
		return err
	}
	defer ag.Close()

	if err := ag.retriever.EnsureCollection(ctx, llm.EmbeddingDimensions); err != nil {
		return fmt.Errorf("failed to prepare collection: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(ingestConcurrency)

	var total int
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		source := filepath.Base(path)
		chunks := retrieval.ChunkText(string(data))
		total += len(chunks)
		log.Printf("indexing %s: %d chunks", source, len(chunks))

		for _, chunk := range chunks {
			doc := retrieval.Document{Text: chunk, Source: source}
			g.Go(func() error {
				return ag.retriever.Index(gCtx, doc)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Indexed %d chunks from %d files into %q\n", total, len(paths), cfg.QdrantCollection)
	return nil
}

// collectFiles expands directories into their .md and .txt files.
func collectFiles(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if ext == ".md" || ext == ".txt" {
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	return paths, nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alexschlessinger/vanillachat/llm"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentAnalyses bounds in-flight analyze requests
const maxConcurrentAnalyses = 4

type analysisResult struct {
	File     string        `json:"file"`
	Analysis *llm.Analysis `json:"analysis"`
}

// analyzer is the part of llm.Client the analyze command needs
type analyzer interface {
	Analyze(ctx context.Context, text string) (*llm.Analysis, error)
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Extract entities and relationships from files",
		ArgsUsage: "FILE...",
		Action:    runAnalyze,
	}
}

func runAnalyze(ctx context.Context, cmd *cli.Command) error {
	config, err := parseConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(config)

	files := cmd.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("analyze requires at least one file")
	}

	ctx, cancel := setupSignalHandling(ctx)
	defer cancel()

	results, err := analyzeFiles(ctx, newClient(config, llm.RouteAnalyze), files)
	if err != nil {
		return err
	}
	if config.JSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		printAnalysis(os.Stdout, r)
	}
	return nil
}

// analyzeFiles analyzes files concurrently; results keep the order of files
func analyzeFiles(ctx context.Context, client analyzer, files []string) ([]analysisResult, error) {
	results := make([]analysisResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentAnalyses)

	for i, file := range files {
		g.Go(func() error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			analysis, err := client.Analyze(ctx, string(data))
			if err != nil {
				return fmt.Errorf("failed to analyze %s: %w", file, err)
			}
			zap.S().Debugw("file_analyzed", "file", file, "entities", len(analysis.Entities))
			results[i] = analysisResult{File: file, Analysis: analysis}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printAnalysis(w io.Writer, r analysisResult) {
	fmt.Fprintln(w, boldStyle.Styled(r.File))

	names := make(map[string]string, len(r.Analysis.Entities))
	for _, e := range r.Analysis.Entities {
		names[e.ID] = e.Name
		line := "  " + e.Name
		if e.Type != "" {
			line += dimStyle.Styled(" (" + e.Type + ")")
		}
		fmt.Fprintln(w, line)
	}

	for _, rel := range r.Analysis.Relationships {
		fmt.Fprintf(w, "  %s %s %s %s\n",
			entityName(names, rel.Entity1ID),
			toolStyle.Styled(rel.Relationship),
			entityName(names, rel.Entity2ID),
			dimStyle.Styled(fmt.Sprintf("[%.2f]", rel.Score)),
		)
	}
}

func entityName(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}

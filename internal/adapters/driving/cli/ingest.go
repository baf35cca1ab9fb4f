package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/creditrust-labs/crag-cli/internal/adapters/driven/ai"
	"github.com/creditrust-labs/crag-cli/internal/adapters/driven/index/flat"
	"github.com/creditrust-labs/crag-cli/internal/adapters/driven/source/precomputed"
	"github.com/creditrust-labs/crag-cli/internal/core/services"
)

var ingestIndexDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest [embeddings.jsonl]",
	Short: "Build the complaint index from pre-computed embeddings",
	Long: `Builds a vector index from rows that were embedded elsewhere.

Each JSONL row carries the chunk text, its embedding vector, and the
complaint metadata. The file is validated in full before any insertion,
so a malformed row never leaves a half-written bundle behind.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestIndexDir, "index-dir", defaultIndexDir(), "index bundle directory")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	settings, err := currentSettings()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	// The embedder is optional here: when configured it only names the
	// model in the bundle manifest.
	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		embedder = nil
	}
	if embedder != nil {
		defer embedder.Close()
	}

	builder := services.NewBuilderService(flat.NewFactory(), embedder, nil, ingestIndexDir, settings.Build)
	builder.SetPrecomputedSource(precomputed.New(args[0]))

	report, err := builder.IngestPrecomputed(cmd.Context())
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	printBuildReport(cmd, report)
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/creditrust-labs/crag-cli/internal/adapters/driven/ai"
	"github.com/creditrust-labs/crag-cli/internal/adapters/driven/index/flat"
	"github.com/creditrust-labs/crag-cli/internal/adapters/driven/source/csvsource"
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driving"
	"github.com/creditrust-labs/crag-cli/internal/core/services"
	"github.com/creditrust-labs/crag-cli/internal/normalisers/narrative"
	"github.com/creditrust-labs/crag-cli/internal/postprocessors/chunker"
)

// roundTo is the precision build durations are reported at.
const roundTo = 10 * time.Millisecond

var (
	buildIndexDir string
	buildProducts []string
	buildSample   int
	buildSeed     int64
	buildNoSample bool
)

var buildCmd = &cobra.Command{
	Use:   "build [complaints.csv]",
	Short: "Build the complaint index from a CSV export",
	Long: `Builds a vector index from a consumer complaint CSV export.

Narratives are cleaned, split into overlapping chunks, embedded with the
configured provider, and written to the index directory as an atomic
bundle. A previous bundle at the same location is replaced, never merged.

Large exports are downsampled to a manageable size using stratified
sampling, so every product category keeps its share of the corpus. Use
--sample to change the target, or --no-sample to index everything.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildIndexDir, "index-dir", defaultIndexDir(), "index bundle directory")
	buildCmd.Flags().StringSliceVar(&buildProducts, "products", nil,
		"restrict to these product categories (comma-separated)")
	buildCmd.Flags().IntVar(&buildSample, "sample", 0,
		"stratified sampling target (0 = use configured default)")
	buildCmd.Flags().Int64Var(&buildSeed, "seed", 0,
		"sampling seed (0 = use configured default)")
	buildCmd.Flags().BoolVar(&buildNoSample, "no-sample", false, "index the full corpus without sampling")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	settings, err := currentSettings()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return err
	}
	if embedder == nil {
		return errors.New("no embedding provider configured. Run 'crag settings wizard' first")
	}
	defer embedder.Close()

	cfg := settings.Build
	if buildSample > 0 {
		cfg.SampleSize = buildSample
	}
	if buildNoSample {
		cfg.SampleSize = 0
	}
	if buildSeed != 0 {
		cfg.SampleSeed = buildSeed
	}

	split := chunker.New(
		chunker.WithChunkSize(cfg.ChunkSize),
		chunker.WithOverlap(cfg.ChunkOverlap),
	)

	builder := services.NewBuilderService(flat.NewFactory(), embedder, split, buildIndexDir, cfg)

	opts := []csvsource.Option{csvsource.WithCleaner(narrative.Clean)}
	if len(buildProducts) > 0 {
		opts = append(opts, csvsource.WithProducts(buildProducts...))
	}
	builder.SetSource(csvsource.New(args[0], opts...))

	report, err := builder.BuildFromRecords(cmd.Context())
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	printBuildReport(cmd, report)
	return nil
}

// printBuildReport renders a completed build run.
func printBuildReport(cmd *cobra.Command, report *driving.BuildReport) {
	cmd.Println("Build complete.")
	cmd.Printf("  Run:     %s\n", report.RunID)
	if report.Records > 0 {
		sampled := ""
		if report.Sampled {
			sampled = " (sampled)"
		}
		cmd.Printf("  Records: %d%s\n", report.Records, sampled)
	}
	cmd.Printf("  Entries: %d in %d batches\n", report.Entries, report.Batches)
	cmd.Printf("  Took:    %s\n", report.Duration.Round(roundTo))
	cmd.Printf("  Index:   %s\n", report.IndexDir)
}

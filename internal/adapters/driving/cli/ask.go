package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

var (
	askIndexDir string
	askTopK     int
	askJSON     bool
	askNoSource bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the complaint corpus",
	Long: `Answers a question using retrieval-augmented generation.

The question is embedded, the most similar complaint chunks are
retrieved from the index, and the configured LLM generates an answer
grounded in those excerpts. The excerpts are listed below the answer so
the reasoning can be checked against the underlying complaints.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askIndexDir, "index-dir", defaultIndexDir(), "index bundle directory")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (0 = configured default)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().BoolVar(&askNoSource, "no-sources", false, "suppress the source listing")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	pipeline, err := newQueryPipeline(cmd.Context(), askIndexDir, askTopK)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	answer, err := pipeline.query.AnswerQuestion(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	if askJSON {
		return printAnswerJSON(cmd, answer)
	}

	printAnswer(cmd, answer, !askNoSource)
	return nil
}

func printAnswerJSON(cmd *cobra.Command, answer domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printAnswer renders an answer and, optionally, its sources.
func printAnswer(cmd *cobra.Command, answer domain.Answer, showSources bool) {
	if answer.Empty() {
		cmd.Println("No question asked.")
		return
	}

	cmd.Println(answer.Text)

	if answer.Degraded {
		cmd.Println()
		cmd.Printf("Note: this is a fallback response (%s).\n", answer.DegradedReason)
	}

	if !showSources || len(answer.Sources) == 0 {
		return
	}

	cmd.Println()
	cmd.Printf("Sources (%d):\n", len(answer.Sources))
	for i, src := range answer.Sources {
		cmd.Printf("  [%d] %.2f  %s", i+1, src.Similarity, src.Metadata.Product)
		if src.Metadata.Issue != "" {
			cmd.Printf(" / %s", src.Metadata.Issue)
		}
		cmd.Println()
		if src.Metadata.Company != "" || src.Metadata.Date != "" {
			cmd.Printf("      %s %s\n", src.Metadata.Company, src.Metadata.Date)
		}
		cmd.Printf("      %s\n", src.Snippet())
	}
}

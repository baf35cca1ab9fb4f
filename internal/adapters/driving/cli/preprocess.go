package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/creditrust-labs/crag-cli/internal/adapters/driven/source/csvsource"
	"github.com/creditrust-labs/crag-cli/internal/normalisers/narrative"
)

var (
	preprocessOutput   string
	preprocessProducts []string
)

// preprocessBatchSize bounds memory while copying large exports.
const preprocessBatchSize = 1000

var preprocessCmd = &cobra.Command{
	Use:   "preprocess [complaints.csv]",
	Short: "Clean a complaint export into a filtered CSV",
	Long: `Reads a consumer complaint CSV export, drops rows without a
narrative, cleans the remaining narratives (redaction markers, dates,
boilerplate openers, whitespace), and writes the result as a CSV in the
same column layout.

The output feeds straight into 'crag build'. Preprocessing separately is
useful for inspecting what the index will actually contain.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreprocess,
}

func init() {
	preprocessCmd.Flags().StringVarP(&preprocessOutput, "output", "o", "filtered_complaints.csv",
		"output CSV path")
	preprocessCmd.Flags().StringSliceVar(&preprocessProducts, "products", nil,
		"restrict to these product categories (comma-separated)")
	rootCmd.AddCommand(preprocessCmd)
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	opts := []csvsource.Option{csvsource.WithCleaner(narrative.Clean)}
	if len(preprocessProducts) > 0 {
		opts = append(opts, csvsource.WithProducts(preprocessProducts...))
	}
	source := csvsource.New(args[0], opts...)

	writer, err := csvsource.NewWriter(preprocessOutput)
	if err != nil {
		return err
	}

	records, errs := source.Stream(cmd.Context(), preprocessBatchSize)
	for batch := range records {
		for _, record := range batch {
			if err := writer.Write(record); err != nil {
				writer.Close() //nolint:errcheck // already failing
				return err
			}
		}
	}
	if err := <-errs; err != nil {
		writer.Close() //nolint:errcheck // already failing
		return fmt.Errorf("reading export: %w", err)
	}

	count := writer.Count()
	if err := writer.Close(); err != nil {
		return err
	}

	cmd.Printf("Wrote %d cleaned records to %s\n", count, preprocessOutput)
	return nil
}

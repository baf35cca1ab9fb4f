package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/creditrust-labs/crag-cli/internal/adapters/driving/tui"
)

var tuiIndexDir string

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for crag.

The TUI provides a conversational view over the complaint index: type a
question, press Enter, and read the grounded answer with its sources.

Controls:
  Enter - Ask the question
  Esc   - Quit`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiIndexDir, "index-dir", defaultIndexDir(), "index bundle directory")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	pipeline, err := newQueryPipeline(cmd.Context(), tuiIndexDir, 0)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	app, err := tui.NewApp(tui.NewPorts(pipeline.query))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

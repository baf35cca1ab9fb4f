// Package cli implements the command-line interface for crag.
// It is a driving adapter: commands wire driven adapters into the core
// services at run time and render their results.
package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driven"
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driving"
	"github.com/creditrust-labs/crag-cli/internal/logger"
)

// version is the build version, injected via SetVersion.
var version = "dev"

// Services injected by main before Execute.
var (
	settingsService driving.SettingsService
	promptStore     driven.PromptStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "crag",
	Short: "Question answering over consumer complaint narratives",
	Long: `crag builds a vector index over consumer financial complaint
narratives and answers questions about them, grounded in retrieved
complaint excerpts.

Typical workflow:
  crag settings wizard          # configure embedding and LLM providers
  crag build complaints.csv     # clean, chunk, embed and index
  crag ask "why are customers unhappy with BNPL?"`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSettingsService sets the settings service used by commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetPromptStore sets the prompt store used for answer generation.
func SetPromptStore(p driven.PromptStore) {
	promptStore = p
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// defaultIndexDir returns the default location of the index bundle.
func defaultIndexDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "index"
	}
	return filepath.Join(home, ".crag", "index")
}

// currentSettings returns the stored settings, or defaults when no
// settings service is wired.
func currentSettings() (*domain.AppSettings, error) {
	if settingsService == nil {
		s := domain.DefaultAppSettings()
		return &s, nil
	}
	return settingsService.Get()
}

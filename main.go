// crag answers questions about consumer financial complaints, grounded
// in retrieved complaint narratives.
package main

import (
	"fmt"
	"os"

	"github.com/creditrust-labs/crag-cli/internal/adapters/driven/ai"
	"github.com/creditrust-labs/crag-cli/internal/adapters/driven/config/file"
	"github.com/creditrust-labs/crag-cli/internal/adapters/driving/cli"
	"github.com/creditrust-labs/crag-cli/internal/core/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("initialising config store: %w", err)
	}

	promptStore, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("initialising prompt store: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	cli.SetVersion(version)
	cli.SetSettingsService(settingsService)
	cli.SetPromptStore(promptStore)

	return cli.Execute()
}

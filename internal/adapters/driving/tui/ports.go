// Package tui provides an interactive terminal user interface for crag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions grounded in the complaint index.
	Query driving.QueryService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(query driving.QueryService) *Ports {
	return &Ports{Query: query}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}

package mcp

import (
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions with grounded, sourced answers.
	Query driving.QueryService

	// Retriever exposes raw similarity search without generation.
	Retriever driving.Retriever
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	// Retriever is optional; the search tool reports unavailability.
	return nil
}

// Package mcp provides an MCP (Model Context Protocol) server adapter for crag.
// It lets AI assistants ask grounded questions about the complaint corpus.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

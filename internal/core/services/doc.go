// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The pipeline is split along its two halves: BuilderService turns
// complaint data into a persisted vector index, while RetrieverService,
// GeneratorService, and QueryService serve questions against it.
package services

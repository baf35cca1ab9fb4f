package flat

import (
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.IndexFactory = (*Factory)(nil)

// Factory creates empty flat indexes.
type Factory struct{}

// NewFactory creates a flat index factory.
func NewFactory() *Factory {
	return &Factory{}
}

// New creates an Empty flat index that persists into dir.
func (f *Factory) New(dir, model string, dimensions int) (driven.VectorIndex, error) {
	return newIndex(dir, model, dimensions)
}

// Package normalisers holds text cleaning implementations that prepare
// raw input for chunking and embedding. Each sub-package handles one
// input shape.
package normalisers

// Package domain contains the core business entities for crag:
// complaint records, chunks, index entries, answers, settings, and the
// error taxonomy. It has no dependencies on adapters or services.
package domain

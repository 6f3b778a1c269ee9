// Package preprocess rewrites the differ's logical operation stream
// into a dialect-executable one. Generic is the SQL-Server-like
// passthrough; Restricted is the SQLite-like rebuild-table machine in
// restricted.go.
package preprocess

import "schemamig/internal/model"

// Processor rewrites an operation stream into a dialect-legal execution
// plan. The source and target models are available for rewrites (the
// rebuild protocol) that must re-derive table definitions.
type Processor interface {
	Process(ops []model.Operation, source, target *model.Schema) ([]model.Operation, error)
}

// Generic passes operations straight through: every operation the
// differ produced is already directly executable against a dialect
// with full ALTER TABLE support, so there is nothing to rewrite.
type Generic struct{}

// NewGeneric constructs a Generic pre-processor.
func NewGeneric() *Generic { return &Generic{} }

// Process returns ops unchanged.
func (Generic) Process(ops []model.Operation, _, _ *model.Schema) ([]model.Operation, error) {
	return ops, nil
}

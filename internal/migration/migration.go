// Package migration assembles the pipeline: it takes two schema models
// and a dialect selector and runs Diff -> pre-process -> SQL
// generation, returning the ordered statement list. Everything stateful
// lives on the call stack of one Generate call.
package migration

import (
	"fmt"

	"schemamig/internal/model"
	"schemamig/internal/modeldiff"
	"schemamig/internal/opfactory"
	"schemamig/internal/preprocess"
	"schemamig/internal/sqlgen/sqlite"
	"schemamig/internal/sqlgen/sqlserver"
	"schemamig/internal/typemap"
)

// Dialect selects which pre-processor, type mapper, and SQL generator
// drive a Generate call.
type Dialect string

const (
	DialectSQLServer Dialect = "sqlserver"
	DialectSQLite    Dialect = "sqlite"
)

// SupportedDialects lists the dialect selector values Generate accepts.
func SupportedDialects() []Dialect {
	return []Dialect{DialectSQLServer, DialectSQLite}
}

// ParseDialect validates a raw dialect string from a CLI flag or
// configuration file.
func ParseDialect(raw string) (Dialect, error) {
	switch Dialect(raw) {
	case DialectSQLServer, DialectSQLite:
		return Dialect(raw), nil
	}
	return "", fmt.Errorf("unsupported dialect %q; supported: %v", raw, SupportedDialects())
}

// generator is the single surface every dialect SQL generator
// implements.
type generator interface {
	Generate(ops []model.Operation) ([]string, error)
}

// Generate diffs source against target and renders the resulting
// operations as dialect-specific SQL statements, one complete statement
// per list entry.
func Generate(source, target *model.Schema, d Dialect, opts modeldiff.Options) ([]string, error) {
	var (
		mapper typemap.Mapper
		gen    generator
	)
	switch d {
	case DialectSQLServer:
		mapper = typemap.NewSQLServerMapper()
		gen = sqlserver.New()
	case DialectSQLite:
		mapper = typemap.NewSQLiteMapper()
		gen = sqlite.New()
	default:
		return nil, fmt.Errorf("unsupported dialect %q; supported: %v", d, SupportedDialects())
	}

	factory := opfactory.New(mapper)

	var proc preprocess.Processor
	if d == DialectSQLite {
		proc = preprocess.NewRestricted(factory)
	} else {
		proc = preprocess.NewGeneric()
	}

	ops := modeldiff.Diff(source, target, factory, opts)
	ops, err := proc.Process(ops, source, target)
	if err != nil {
		return nil, fmt.Errorf("pre-process: %w", err)
	}

	stmts, err := gen.Generate(ops)
	if err != nil {
		return nil, fmt.Errorf("generate sql: %w", err)
	}
	return stmts, nil
}

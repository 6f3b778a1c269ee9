// Package typemap maps a logical property (primitive kind, length,
// key/concurrency role) to a dialect storage-type string. Mapping is
// total on the primitive-kind x (is-key, is-concurrency-token) matrix;
// each dialect contributes its own table-driven map. Options.MaxLength
// is carried but neither mapper in this package uses it: a string
// column maps to the same type whatever its maximum length.
package typemap

import "schemamig/internal/model"

// Options carries the role a property plays, which some dialects use to
// select between otherwise-equivalent storage types (e.g. a bounded
// nvarchar(128) for key columns vs. nvarchar(max) elsewhere).
type Options struct {
	IsKey              bool
	IsConcurrencyToken bool
	MaxLength          *int
}

// Mapper maps a logical Kind to a dialect-specific storage type string.
type Mapper interface {
	MapType(kind model.Kind, opts Options) string
}

// resolve is the shared "try exact match, else fall back" helper used by
// every dialect mapper below.
func resolve(table map[model.Kind]string, kind model.Kind, fallback string) string {
	if t, ok := table[kind]; ok {
		return t
	}
	return fallback
}

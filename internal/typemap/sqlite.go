package typemap

import "schemamig/internal/model"

// sqliteAffinities holds the kind -> storage-class mapping. SQLite's
// type system is dynamically typed with column "affinities" rather than
// enforced storage types; a representative type is still declared on
// every column.
var sqliteAffinities = map[model.Kind]string{
	model.KindBool:           "INTEGER",
	model.KindByte:           "INTEGER",
	model.KindInt16:          "INTEGER",
	model.KindInt32:          "INTEGER",
	model.KindInt64:          "INTEGER",
	model.KindUint64:         "NUMERIC",
	model.KindFloat32:        "REAL",
	model.KindFloat64:        "REAL",
	model.KindDecimal:        "NUMERIC",
	model.KindDateTime:       "TEXT",
	model.KindDateTimeOffset: "TEXT",
	model.KindGUID:           "TEXT",
	model.KindString:         "TEXT",
	model.KindBlob:           "BLOB",
}

// SQLiteMapper implements Mapper for the SQLite dialect. SQLite has no
// notion of bounded-length strings or key-specific storage types, so
// Options is ignored save for the affinity lookup itself.
type SQLiteMapper struct{}

// NewSQLiteMapper constructs a SQLiteMapper.
func NewSQLiteMapper() *SQLiteMapper { return &SQLiteMapper{} }

// MapType implements Mapper.
func (SQLiteMapper) MapType(kind model.Kind, _ Options) string {
	return resolve(sqliteAffinities, kind, "BLOB")
}

package typemap

import "schemamig/internal/model"

// sqlServerBaseTypes holds the kind -> type mappings that do not depend
// on the column's key/concurrency role.
var sqlServerBaseTypes = map[model.Kind]string{
	model.KindBool:           "bit",
	model.KindByte:           "tinyint",
	model.KindInt16:          "smallint",
	model.KindInt32:          "int",
	model.KindInt64:          "bigint",
	model.KindUint64:         "numeric(20,0)",
	model.KindFloat32:        "real",
	model.KindFloat64:        "float",
	model.KindDecimal:        "decimal(18,2)",
	model.KindDateTime:       "datetime2",
	model.KindDateTimeOffset: "datetimeoffset",
	model.KindGUID:           "uniqueidentifier",
}

// SQLServerMapper implements Mapper for the SQL-Server dialect.
type SQLServerMapper struct{}

// NewSQLServerMapper constructs a SQLServerMapper.
func NewSQLServerMapper() *SQLServerMapper { return &SQLServerMapper{} }

// MapType implements Mapper.
func (SQLServerMapper) MapType(kind model.Kind, opts Options) string {
	switch kind {
	case model.KindString:
		if opts.IsKey {
			return "nvarchar(128)"
		}
		return "nvarchar(max)"
	case model.KindBlob:
		if opts.IsConcurrencyToken {
			return "rowversion"
		}
		if opts.IsKey {
			return "varbinary(128)"
		}
		return "varbinary(max)"
	}
	return resolve(sqlServerBaseTypes, kind, "sql_variant")
}

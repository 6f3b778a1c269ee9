// Package namegen derives canonical table/column/key/index/sequence
// names from schema metadata, applying dialect-neutral conventions when
// the metadata does not supply an explicit name. Every function here is
// pure and side-effect-free.
package namegen

import (
	"strings"

	"schemamig/internal/model"
)

// FullTableName returns the schema-qualified table name for an entity,
// falling back to the entity's logical name when no relational table
// name is set.
func FullTableName(e *model.EntityType) model.SchemaName {
	if e.HasTable {
		return e.Table
	}
	return model.SchemaName{Name: e.Name}
}

// TableName returns the unqualified table name.
func TableName(e *model.EntityType) string {
	return FullTableName(e).Name
}

// TableSchema returns the table's schema component, which may be empty.
func TableSchema(e *model.EntityType) string {
	return FullTableName(e).Schema
}

// ColumnName returns the relational column name for a property, falling
// back to the property's logical name.
func ColumnName(p *model.Property) string {
	return p.EffectiveColumnName()
}

// KeyName returns the primary key's constraint name, synthesizing
// "PK_<Table>" when unset.
func KeyName(e *model.EntityType, pk *model.PrimaryKey) string {
	if pk.Name != "" {
		return pk.Name
	}
	return "PK_" + TableName(e)
}

// AlternateKeyName returns an alternate key's constraint name,
// synthesizing "AK_<Table>_<Cols>" when unset.
func AlternateKeyName(e *model.EntityType, k *model.Key) string {
	if k.Name != "" {
		return k.Name
	}
	return "AK_" + TableName(e) + "_" + joinColumnNames(k.Properties)
}

// ForeignKeyName returns a foreign key's constraint name, synthesizing
// "FK_<Table>_<Ref>_<Cols>" when unset.
func ForeignKeyName(e *model.EntityType, fk *model.ForeignKey) string {
	if fk.Name != "" {
		return fk.Name
	}
	ref := fk.PrincipalEntity.Name
	if fk.PrincipalEntity.HasTable {
		ref = TableName(fk.PrincipalEntity)
	}
	return "FK_" + TableName(e) + "_" + ref + "_" + joinColumnNames(fk.Properties)
}

// IndexName returns an index's name, synthesizing "IX_<Table>_<Cols>"
// when unset.
func IndexName(e *model.EntityType, idx *model.Index) string {
	if idx.Name != "" {
		return idx.Name
	}
	return "IX_" + TableName(e) + "_" + joinColumnNames(idx.Properties)
}

// FullSequenceName returns the schema-qualified sequence name.
func FullSequenceName(s *model.Sequence) model.SchemaName {
	return s.Name
}

// SequenceName returns the unqualified sequence name.
func SequenceName(s *model.Sequence) string {
	return s.Name.Name
}

// SequenceSchema returns the sequence's schema component, which may be
// empty.
func SequenceSchema(s *model.Sequence) string {
	return s.Name.Schema
}

func joinColumnNames(props []*model.Property) string {
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = ColumnName(p)
	}
	return strings.Join(names, "_")
}

// Package opfactory is a pure constructor service: one
// function per operation kind the differ emits (there are no
// constructors for CreateDatabase, DropDatabase or CopyData), each
// snapshotting metadata references
// into an immutable model.Operation value. It resolves default names
// through internal/namegen and column storage types through
// internal/typemap. It never mutates its inputs and never touches a
// database connection.
package opfactory

import (
	"schemamig/internal/model"
	"schemamig/internal/namegen"
	"schemamig/internal/typemap"
)

// Factory snapshots schema metadata into operations using a single
// dialect's type mapper.
type Factory struct {
	Mapper typemap.Mapper
}

// New constructs a Factory bound to a dialect's type mapper.
func New(mapper typemap.Mapper) *Factory {
	return &Factory{Mapper: mapper}
}

func isKeyProperty(e *model.EntityType, p *model.Property) bool {
	if e.PrimaryKey != nil {
		for _, kp := range e.PrimaryKey.Properties {
			if kp == p {
				return true
			}
		}
	}
	return false
}

// ColumnSpec snapshots a property's column-level attributes, resolving
// its storage type via the factory's Mapper unless the property carries
// an explicit ColumnType override.
func (f *Factory) ColumnSpec(e *model.EntityType, p *model.Property) model.ColumnSpec {
	colType := p.ColumnType
	if colType == "" {
		colType = f.Mapper.MapType(p.Kind, typemap.Options{
			IsKey:              isKeyProperty(e, p),
			IsConcurrencyToken: p.ConcurrencyToken,
			MaxLength:          p.MaxLength,
		})
	}
	return model.ColumnSpec{
		Name:                namegen.ColumnName(p),
		ColumnType:          colType,
		Nullable:            p.Nullable,
		DefaultValue:        p.DefaultValue,
		DefaultExpression:   p.DefaultExpression,
		ValueGeneratedOnAdd: p.ValueGeneratedOnAdd,
		ConcurrencyToken:    p.ConcurrencyToken,
	}
}

func (f *Factory) primaryKeySpec(e *model.EntityType) *model.PrimaryKeySpec {
	if e.PrimaryKey == nil {
		return nil
	}
	return &model.PrimaryKeySpec{
		Name:    namegen.KeyName(e, e.PrimaryKey),
		Columns: columnNames(e.PrimaryKey.Properties),
	}
}

func (f *Factory) keySpec(e *model.EntityType, k *model.Key) model.KeySpec {
	return model.KeySpec{Name: namegen.AlternateKeyName(e, k), Columns: columnNames(k.Properties)}
}

func (f *Factory) foreignKeySpec(e *model.EntityType, fk *model.ForeignKey) model.ForeignKeySpec {
	return model.ForeignKeySpec{
		Name:             namegen.ForeignKeyName(e, fk),
		Columns:          columnNames(fk.Properties),
		PrincipalTable:   namegen.FullTableName(fk.PrincipalEntity),
		PrincipalColumns: columnNames(fk.PrincipalProperties),
		OnDelete:         fk.OnDelete,
	}
}

func (f *Factory) indexSpec(e *model.EntityType, idx *model.Index) model.IndexSpec {
	return model.IndexSpec{Name: namegen.IndexName(e, idx), Unique: idx.Unique, Columns: columnNames(idx.Properties)}
}

func columnNames(props []*model.Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = namegen.ColumnName(p)
	}
	return out
}

// CreateTable constructs a CreateTableOperation for the whole entity,
// inlining its primary key, unique constraints, and foreign keys.
func (f *Factory) CreateTable(e *model.EntityType) model.CreateTableOperation {
	cols := make([]model.ColumnSpec, len(e.Properties))
	for i, p := range e.Properties {
		cols[i] = f.ColumnSpec(e, p)
	}
	uniques := make([]model.KeySpec, len(e.Keys))
	for i, k := range e.Keys {
		uniques[i] = f.keySpec(e, k)
	}
	fks := make([]model.ForeignKeySpec, len(e.ForeignKeys))
	for i, fk := range e.ForeignKeys {
		fks[i] = f.foreignKeySpec(e, fk)
	}
	return model.CreateTableOperation{
		Name:              namegen.FullTableName(e),
		Columns:           cols,
		PrimaryKey:        f.primaryKeySpec(e),
		UniqueConstraints: uniques,
		ForeignKeys:       fks,
	}
}

// DropTable constructs a DropTableOperation.
func (f *Factory) DropTable(e *model.EntityType) model.DropTableOperation {
	return model.DropTableOperation{Name: namegen.FullTableName(e)}
}

// RenameTable constructs a RenameTableOperation.
func (f *Factory) RenameTable(oldName model.SchemaName, newName string) model.RenameTableOperation {
	return model.RenameTableOperation{Name: oldName, NewName: newName}
}

// MoveTable constructs a MoveTableOperation.
func (f *Factory) MoveTable(name model.SchemaName, newSchema string) model.MoveTableOperation {
	return model.MoveTableOperation{Name: name, NewSchema: newSchema}
}

// AddColumn constructs an AddColumnOperation.
func (f *Factory) AddColumn(e *model.EntityType, table model.SchemaName, p *model.Property) model.AddColumnOperation {
	return model.AddColumnOperation{Table: table, Column: f.ColumnSpec(e, p)}
}

// DropColumn constructs a DropColumnOperation.
func (f *Factory) DropColumn(table model.SchemaName, columnName string) model.DropColumnOperation {
	return model.DropColumnOperation{Table: table, ColumnName: columnName}
}

// AlterColumn constructs an AlterColumnOperation.
func (f *Factory) AlterColumn(e *model.EntityType, table model.SchemaName, p *model.Property) model.AlterColumnOperation {
	return model.AlterColumnOperation{Table: table, Column: f.ColumnSpec(e, p)}
}

// RenameColumn constructs a RenameColumnOperation with the
// (table, oldCol, newCol) argument order.
func (f *Factory) RenameColumn(table model.SchemaName, oldCol, newCol string) model.RenameColumnOperation {
	return model.RenameColumnOperation{Table: table, OldName: oldCol, NewName: newCol}
}

// AddDefaultConstraint constructs an AddDefaultConstraintOperation.
func (f *Factory) AddDefaultConstraint(table model.SchemaName, columnName string, value, expr *string) model.AddDefaultConstraintOperation {
	return model.AddDefaultConstraintOperation{Table: table, ColumnName: columnName, DefaultValue: value, DefaultExpression: expr}
}

// DropDefaultConstraint constructs a DropDefaultConstraintOperation.
func (f *Factory) DropDefaultConstraint(table model.SchemaName, columnName string) model.DropDefaultConstraintOperation {
	return model.DropDefaultConstraintOperation{Table: table, ColumnName: columnName}
}

// AddPrimaryKey constructs an AddPrimaryKeyOperation.
func (f *Factory) AddPrimaryKey(e *model.EntityType, table model.SchemaName) model.AddPrimaryKeyOperation {
	return model.AddPrimaryKeyOperation{Table: table, PrimaryKey: *f.primaryKeySpec(e)}
}

// DropPrimaryKey constructs a DropPrimaryKeyOperation.
func (f *Factory) DropPrimaryKey(table model.SchemaName, name string) model.DropPrimaryKeyOperation {
	return model.DropPrimaryKeyOperation{Table: table, Name: name}
}

// AddUniqueConstraint constructs an AddUniqueConstraintOperation.
func (f *Factory) AddUniqueConstraint(e *model.EntityType, table model.SchemaName, k *model.Key) model.AddUniqueConstraintOperation {
	return model.AddUniqueConstraintOperation{Table: table, Key: f.keySpec(e, k)}
}

// DropUniqueConstraint constructs a DropUniqueConstraintOperation.
func (f *Factory) DropUniqueConstraint(table model.SchemaName, name string) model.DropUniqueConstraintOperation {
	return model.DropUniqueConstraintOperation{Table: table, Name: name}
}

// AddForeignKey constructs an AddForeignKeyOperation.
func (f *Factory) AddForeignKey(e *model.EntityType, table model.SchemaName, fk *model.ForeignKey) model.AddForeignKeyOperation {
	return model.AddForeignKeyOperation{Table: table, ForeignKey: f.foreignKeySpec(e, fk)}
}

// DropForeignKey constructs a DropForeignKeyOperation.
func (f *Factory) DropForeignKey(table model.SchemaName, name string) model.DropForeignKeyOperation {
	return model.DropForeignKeyOperation{Table: table, Name: name}
}

// CreateIndex constructs a CreateIndexOperation.
func (f *Factory) CreateIndex(e *model.EntityType, table model.SchemaName, idx *model.Index) model.CreateIndexOperation {
	return model.CreateIndexOperation{Table: table, Index: f.indexSpec(e, idx)}
}

// DropIndex constructs a DropIndexOperation.
func (f *Factory) DropIndex(table model.SchemaName, name string) model.DropIndexOperation {
	return model.DropIndexOperation{Table: table, Name: name}
}

// RenameIndex constructs a RenameIndexOperation. newName is taken
// explicitly rather than derived from idx so a rename chain can route
// through a temp intermediary; the snapshotted spec carries newName so
// a restricted dialect's drop-and-recreate expansion lands on the name
// this step of the chain actually establishes.
func (f *Factory) RenameIndex(e *model.EntityType, table model.SchemaName, oldName, newName string, idx *model.Index) model.RenameIndexOperation {
	spec := f.indexSpec(e, idx)
	spec.Name = newName
	return model.RenameIndexOperation{Table: table, OldName: oldName, NewName: newName, Index: spec}
}

// CreateSequence constructs a CreateSequenceOperation.
func (f *Factory) CreateSequence(s *model.Sequence) model.CreateSequenceOperation {
	return model.CreateSequenceOperation{
		Name:        namegen.FullSequenceName(s),
		ClrType:     s.NumericType,
		StartValue:  s.StartValue,
		IncrementBy: s.IncrementBy,
		MinValue:    s.MinValue,
		MaxValue:    s.MaxValue,
	}
}

// DropSequence constructs a DropSequenceOperation.
func (f *Factory) DropSequence(s *model.Sequence) model.DropSequenceOperation {
	return model.DropSequenceOperation{Name: namegen.FullSequenceName(s)}
}

// MoveSequence constructs a MoveSequenceOperation.
func (f *Factory) MoveSequence(name model.SchemaName, newSchema string) model.MoveSequenceOperation {
	return model.MoveSequenceOperation{Name: name, NewSchema: newSchema}
}

// RenameSequence constructs a RenameSequenceOperation.
func (f *Factory) RenameSequence(name model.SchemaName, newName string) model.RenameSequenceOperation {
	return model.RenameSequenceOperation{Name: name, NewName: newName}
}

// AlterSequence constructs an AlterSequenceOperation.
func (f *Factory) AlterSequence(name model.SchemaName, incrementBy int64) model.AlterSequenceOperation {
	return model.AlterSequenceOperation{Name: name, IncrementBy: incrementBy}
}

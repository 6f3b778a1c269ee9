// Package model contains the single source of truth for the abstract schema
// that the migration core diffs, pre-processes, and generates SQL from. It
// provides a structured, dialect-agnostic representation of entities,
// properties, keys, indexes, foreign keys, and sequences.
package model

// Kind is an ENUM with all possible primitive property kinds.
type Kind string

const (
	KindInt16          Kind = "int16"
	KindInt32          Kind = "int32"
	KindInt64          Kind = "int64"
	KindUint64         Kind = "uint64"
	KindByte           Kind = "byte"
	KindBool           Kind = "bool"
	KindFloat32        Kind = "float32"
	KindFloat64        Kind = "float64"
	KindDecimal        Kind = "decimal"
	KindString         Kind = "string"
	KindBlob           Kind = "blob"
	KindDateTime       Kind = "datetime"
	KindDateTimeOffset Kind = "datetimeoffset"
	KindGUID           Kind = "guid"
)

// SchemaName is a schema-qualified name pair. Equality is case-sensitive
// and component-wise; dialects without schema support flatten it by
// concatenation with a period (see sqlgen/sqlite).
type SchemaName struct {
	Schema string
	Name   string
}

// Equal compares two schema-qualified names component-wise.
func (n SchemaName) Equal(o SchemaName) bool {
	return n.Schema == o.Schema && n.Name == o.Name
}

// Schema is an immutable bundle of entity types and sequences. Instances
// live only for the duration of one Diff call.
type Schema struct {
	Entities  []*EntityType
	Sequences []*Sequence
}

// EntityType describes one mapped relational table.
type EntityType struct {
	Name        string
	Table       SchemaName
	HasTable    bool
	Properties  []*Property
	PrimaryKey  *PrimaryKey
	Keys        []*Key
	ForeignKeys []*ForeignKey
	Indexes     []*Index
}

// Property describes a single mapped column.
type Property struct {
	Name                string
	Kind                Kind
	Nullable            bool
	MaxLength           *int
	ConcurrencyToken    bool
	ValueGeneratedOnAdd bool
	StoreComputed       bool

	// Relational extensions.
	ColumnName        string
	ColumnType        string // explicit storage-type override, empty if derived
	DefaultValue      *string
	DefaultExpression *string
}

// PrimaryKey is the entity's single primary key.
type PrimaryKey struct {
	Name       string
	Properties []*Property
}

// Key is an alternate (unique) key.
type Key struct {
	Name       string
	Properties []*Property
}

// ForeignKey references another entity type's properties.
type ForeignKey struct {
	Name                string
	Properties          []*Property // dependent (this entity's) properties
	PrincipalEntity     *EntityType
	PrincipalProperties []*Property
	OnDelete            ReferentialAction
}

// ReferentialAction mirrors the dialect ON DELETE/ON UPDATE vocabulary.
type ReferentialAction string

const (
	ActionNoAction ReferentialAction = ""
	ActionCascade  ReferentialAction = "CASCADE"
	ActionSetNull  ReferentialAction = "SET NULL"
	ActionRestrict ReferentialAction = "RESTRICT"
)

// Index describes an ordered set of properties with optional uniqueness.
type Index struct {
	Name       string
	Unique     bool
	Properties []*Property
}

// Sequence describes a standalone numeric sequence object.
type Sequence struct {
	Name        SchemaName
	StartValue  int64
	IncrementBy int64
	MinValue    *int64
	MaxValue    *int64
	NumericType Kind
}

// FindEntity looks up an entity type by logical name.
func (s *Schema) FindEntity(name string) *EntityType {
	for _, e := range s.Entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// FindEntityByTable looks up an entity type by its resolved table
// identity, used by the pre-processor to recover the target schema for
// a table undergoing the rebuild protocol.
func (s *Schema) FindEntityByTable(name SchemaName) *EntityType {
	for _, e := range s.Entities {
		table := e.Table
		if !e.HasTable {
			table = SchemaName{Name: e.Name}
		}
		if table.Equal(name) {
			return e
		}
	}
	return nil
}

// FindProperty looks up a property by logical name.
func (e *EntityType) FindProperty(name string) *Property {
	for _, p := range e.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// EffectiveColumnName returns the column name, defaulting to the property
// name when no relational override is set.
func (p *Property) EffectiveColumnName() string {
	if p.ColumnName != "" {
		return p.ColumnName
	}
	return p.Name
}

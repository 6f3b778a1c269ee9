package model

// OperationKind identifies one of the closed catalog of operation
// variants, used as the key of an OperationCollection.
type OperationKind string

const (
	KindCreateDatabase        OperationKind = "CreateDatabase"
	KindDropDatabase          OperationKind = "DropDatabase"
	KindCreateSequence        OperationKind = "CreateSequence"
	KindDropSequence          OperationKind = "DropSequence"
	KindMoveSequence          OperationKind = "MoveSequence"
	KindRenameSequence        OperationKind = "RenameSequence"
	KindAlterSequence         OperationKind = "AlterSequence"
	KindCreateTable           OperationKind = "CreateTable"
	KindDropTable             OperationKind = "DropTable"
	KindRenameTable           OperationKind = "RenameTable"
	KindMoveTable             OperationKind = "MoveTable"
	KindAddColumn             OperationKind = "AddColumn"
	KindDropColumn            OperationKind = "DropColumn"
	KindAlterColumn           OperationKind = "AlterColumn"
	KindAddDefaultConstraint  OperationKind = "AddDefaultConstraint"
	KindDropDefaultConstraint OperationKind = "DropDefaultConstraint"
	KindRenameColumn          OperationKind = "RenameColumn"
	KindAddPrimaryKey         OperationKind = "AddPrimaryKey"
	KindDropPrimaryKey        OperationKind = "DropPrimaryKey"
	KindAddUniqueConstraint   OperationKind = "AddUniqueConstraint"
	KindDropUniqueConstraint  OperationKind = "DropUniqueConstraint"
	KindAddForeignKey         OperationKind = "AddForeignKey"
	KindDropForeignKey        OperationKind = "DropForeignKey"
	KindCreateIndex           OperationKind = "CreateIndex"
	KindDropIndex             OperationKind = "DropIndex"
	KindRenameIndex           OperationKind = "RenameIndex"
	KindCopyData              OperationKind = "CopyData"
)

// KindOf reports the OperationKind of a concrete Operation value. The
// default case is unreachable for any member of the closed catalog as
// long as the type switch below is kept in lockstep with operation.go;
// a type missing from the switch panics at run time.
func KindOf(op Operation) OperationKind {
	switch op.(type) {
	case CreateDatabaseOperation:
		return KindCreateDatabase
	case DropDatabaseOperation:
		return KindDropDatabase
	case CreateSequenceOperation:
		return KindCreateSequence
	case DropSequenceOperation:
		return KindDropSequence
	case MoveSequenceOperation:
		return KindMoveSequence
	case RenameSequenceOperation:
		return KindRenameSequence
	case AlterSequenceOperation:
		return KindAlterSequence
	case CreateTableOperation:
		return KindCreateTable
	case DropTableOperation:
		return KindDropTable
	case RenameTableOperation:
		return KindRenameTable
	case MoveTableOperation:
		return KindMoveTable
	case AddColumnOperation:
		return KindAddColumn
	case DropColumnOperation:
		return KindDropColumn
	case AlterColumnOperation:
		return KindAlterColumn
	case AddDefaultConstraintOperation:
		return KindAddDefaultConstraint
	case DropDefaultConstraintOperation:
		return KindDropDefaultConstraint
	case RenameColumnOperation:
		return KindRenameColumn
	case AddPrimaryKeyOperation:
		return KindAddPrimaryKey
	case DropPrimaryKeyOperation:
		return KindDropPrimaryKey
	case AddUniqueConstraintOperation:
		return KindAddUniqueConstraint
	case DropUniqueConstraintOperation:
		return KindDropUniqueConstraint
	case AddForeignKeyOperation:
		return KindAddForeignKey
	case DropForeignKeyOperation:
		return KindDropForeignKey
	case CreateIndexOperation:
		return KindCreateIndex
	case DropIndexOperation:
		return KindDropIndex
	case RenameIndexOperation:
		return KindRenameIndex
	case CopyDataOperation:
		return KindCopyData
	default:
		panic("model: unhandled operation kind")
	}
}

// OperationCollection is a multimap keyed by operation kind, supporting
// ordered append and per-kind retrieval. Order within a kind is
// preserved; global emission order is imposed by callers (the differ's
// canonical precedence, or the pre-processor's table-handler order) via
// Ordered, not by the collection itself.
type OperationCollection struct {
	byKind map[OperationKind][]Operation
	order  []OperationKind
}

// NewOperationCollection returns an empty collection.
func NewOperationCollection() *OperationCollection {
	return &OperationCollection{byKind: make(map[OperationKind][]Operation)}
}

// Add appends op to the collection under its kind.
func (c *OperationCollection) Add(op Operation) {
	k := KindOf(op)
	if _, seen := c.byKind[k]; !seen {
		c.order = append(c.order, k)
	}
	c.byKind[k] = append(c.byKind[k], op)
}

// Get returns the ordered operations of a single kind.
func (c *OperationCollection) Get(k OperationKind) []Operation {
	return c.byKind[k]
}

// Ordered returns every operation in the collection, concatenated in the
// order given by kinds (the differ's canonical precedence list). Kinds
// omitted from the argument are not returned.
func (c *OperationCollection) Ordered(kinds ...OperationKind) []Operation {
	out := make([]Operation, 0, c.Len())
	for _, k := range kinds {
		out = append(out, c.byKind[k]...)
	}
	return out
}

// Len returns the total number of operations across all kinds.
func (c *OperationCollection) Len() int {
	n := 0
	for _, ops := range c.byKind {
		n += len(ops)
	}
	return n
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationCollectionOrderWithinKind(t *testing.T) {
	c := NewOperationCollection()
	c.Add(DropTableOperation{Name: SchemaName{Name: "A"}})
	c.Add(CreateTableOperation{Name: SchemaName{Name: "B"}})
	c.Add(DropTableOperation{Name: SchemaName{Name: "C"}})

	drops := c.Get(KindDropTable)
	require.Len(t, drops, 2)
	assert.Equal(t, "A", drops[0].(DropTableOperation).Name.Name)
	assert.Equal(t, "C", drops[1].(DropTableOperation).Name.Name)
	assert.Equal(t, 3, c.Len())
}

func TestOperationCollectionOrderedFollowsKindPrecedence(t *testing.T) {
	c := NewOperationCollection()
	c.Add(DropTableOperation{Name: SchemaName{Name: "Gone"}})
	c.Add(CreateTableOperation{Name: SchemaName{Name: "Fresh"}})

	ops := c.Ordered(KindCreateTable, KindDropTable)
	require.Len(t, ops, 2)
	_, first := ops[0].(CreateTableOperation)
	_, second := ops[1].(DropTableOperation)
	assert.True(t, first)
	assert.True(t, second)

	// Kinds omitted from the precedence list are not returned.
	assert.Empty(t, c.Ordered(KindCreateIndex))
}

func TestKindOfCoversCatalog(t *testing.T) {
	ops := []Operation{
		CreateDatabaseOperation{}, DropDatabaseOperation{},
		CreateSequenceOperation{}, DropSequenceOperation{},
		MoveSequenceOperation{}, RenameSequenceOperation{}, AlterSequenceOperation{},
		CreateTableOperation{}, DropTableOperation{}, RenameTableOperation{}, MoveTableOperation{},
		AddColumnOperation{}, DropColumnOperation{}, AlterColumnOperation{},
		AddDefaultConstraintOperation{}, DropDefaultConstraintOperation{}, RenameColumnOperation{},
		AddPrimaryKeyOperation{}, DropPrimaryKeyOperation{},
		AddUniqueConstraintOperation{}, DropUniqueConstraintOperation{},
		AddForeignKeyOperation{}, DropForeignKeyOperation{},
		CreateIndexOperation{}, DropIndexOperation{}, RenameIndexOperation{},
		CopyDataOperation{},
	}
	seen := make(map[OperationKind]bool, len(ops))
	for _, op := range ops {
		k := KindOf(op)
		assert.False(t, seen[k], "duplicate kind %s", k)
		seen[k] = true
	}
	assert.Len(t, seen, 27)
}

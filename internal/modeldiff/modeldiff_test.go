package modeldiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemamig/internal/model"
	"schemamig/internal/opfactory"
	"schemamig/internal/typemap"
)

func newFactory() *opfactory.Factory {
	return opfactory.New(typemap.NewSQLServerMapper())
}

func prop(name string, kind model.Kind) *model.Property {
	return &model.Property{Name: name, Kind: kind}
}

func entity(name, table, schema string, props ...*model.Property) *model.EntityType {
	return &model.EntityType{
		Name:       name,
		HasTable:   true,
		Table:      model.SchemaName{Schema: schema, Name: table},
		Properties: props,
	}
}

func withPK(e *model.EntityType, name string, props ...*model.Property) *model.EntityType {
	e.PrimaryKey = &model.PrimaryKey{Name: name, Properties: props}
	return e
}

func schemaOf(entities ...*model.EntityType) *model.Schema {
	return &model.Schema{Entities: entities}
}

func TestDiffIdenticalModelsIsEmpty(t *testing.T) {
	id := prop("Id", model.KindInt32)
	name := prop("Name", model.KindString)
	m := schemaOf(withPK(entity("Blog", "Blogs", "dbo", id, name), "PK_Blogs", id))
	m.Sequences = []*model.Sequence{{
		Name: model.SchemaName{Schema: "dbo", Name: "Seq"}, IncrementBy: 1, NumericType: model.KindInt64,
	}}

	ops := Diff(m, m, newFactory(), Options{})
	assert.Empty(t, ops)
}

func TestDiffCreateTableEmitsCreateAndIndexes(t *testing.T) {
	id := prop("Id", model.KindInt32)
	name := prop("Name", model.KindString)
	e := withPK(entity("Blog", "Blogs", "dbo", id, name), "PK_Blogs", id)
	e.Indexes = []*model.Index{{Name: "IX_Blogs_Name", Properties: []*model.Property{name}}}

	ops := Diff(schemaOf(), schemaOf(e), newFactory(), Options{})
	require.Len(t, ops, 2)

	create, ok := ops[0].(model.CreateTableOperation)
	require.True(t, ok)
	assert.Equal(t, model.SchemaName{Schema: "dbo", Name: "Blogs"}, create.Name)
	require.NotNil(t, create.PrimaryKey)
	assert.Equal(t, "PK_Blogs", create.PrimaryKey.Name)
	require.Len(t, create.Columns, 2)
	assert.Equal(t, "nvarchar(max)", create.Columns[1].ColumnType)

	idx, ok := ops[1].(model.CreateIndexOperation)
	require.True(t, ok)
	assert.Equal(t, "IX_Blogs_Name", idx.Index.Name)
}

func TestDiffDropTable(t *testing.T) {
	e := entity("Blog", "Blogs", "dbo", prop("Id", model.KindInt32))

	ops := Diff(schemaOf(e), schemaOf(), newFactory(), Options{})
	require.Len(t, ops, 1)
	drop, ok := ops[0].(model.DropTableOperation)
	require.True(t, ok)
	assert.Equal(t, "Blogs", drop.Name.Name)
}

func TestDiffFuzzyMatchRenamesTable(t *testing.T) {
	mkProps := func() []*model.Property {
		return []*model.Property{
			prop("Id", model.KindInt32),
			prop("Title", model.KindString),
			prop("Body", model.KindString),
			prop("Created", model.KindDateTime),
			prop("Rating", model.KindInt32),
		}
	}
	source := entity("Post", "Post", "dbo", mkProps()...)
	target := entity("Posts", "Posts", "dbo", mkProps()...)

	ops := Diff(schemaOf(source), schemaOf(target), newFactory(), Options{})
	require.Len(t, ops, 1)
	rename, ok := ops[0].(model.RenameTableOperation)
	require.True(t, ok)
	assert.Equal(t, "Post", rename.Name.Name)
	assert.Equal(t, "Posts", rename.NewName)
}

func TestDiffFuzzyMatchBelowThresholdDropsAndCreates(t *testing.T) {
	source := entity("Post", "Post", "dbo",
		prop("Id", model.KindInt32), prop("A", model.KindString), prop("B", model.KindString))
	target := entity("Comment", "Comment", "dbo",
		prop("Id", model.KindInt32), prop("X", model.KindString), prop("Y", model.KindString))

	ops := Diff(schemaOf(source), schemaOf(target), newFactory(), Options{})
	require.Len(t, ops, 2)
	_, isCreate := ops[0].(model.CreateTableOperation)
	_, isDrop := ops[1].(model.DropTableOperation)
	assert.True(t, isCreate)
	assert.True(t, isDrop)
}

func TestDiffTableNameSwapUsesTempName(t *testing.T) {
	mk := func(aTable, bTable string) *model.Schema {
		return schemaOf(
			entity("A", aTable, "dbo", prop("Id", model.KindInt32)),
			entity("B", bTable, "dbo", prop("Id", model.KindInt32)),
		)
	}
	source, target := mk("T1", "T2"), mk("T2", "T1")

	ops := Diff(source, target, newFactory(), Options{})
	require.Len(t, ops, 3)

	renames := make([]model.RenameTableOperation, 3)
	for i, op := range ops {
		r, ok := op.(model.RenameTableOperation)
		require.True(t, ok)
		renames[i] = r
	}
	assert.Equal(t, "T1", renames[0].Name.Name)
	assert.Equal(t, "__mig_tmp__0", renames[0].NewName)
	assert.Equal(t, "T2", renames[1].Name.Name)
	assert.Equal(t, "T1", renames[1].NewName)
	assert.Equal(t, "__mig_tmp__0", renames[2].Name.Name)
	assert.Equal(t, "T2", renames[2].NewName)

	// At every prefix of the sequence all table names stay unique.
	names := map[string]bool{"T1": true, "T2": true}
	for _, r := range renames {
		require.True(t, names[r.Name.Name])
		require.False(t, names[r.NewName])
		delete(names, r.Name.Name)
		names[r.NewName] = true
	}
}

func TestDiffTableMoveAndRename(t *testing.T) {
	source := entity("Blog", "Blogs", "dbo", prop("Id", model.KindInt32))
	target := entity("Blog", "Weblogs", "app", prop("Id", model.KindInt32))

	ops := Diff(schemaOf(source), schemaOf(target), newFactory(), Options{})
	require.Len(t, ops, 2)

	move, ok := ops[0].(model.MoveTableOperation)
	require.True(t, ok)
	assert.Equal(t, model.SchemaName{Schema: "dbo", Name: "Blogs"}, move.Name)
	assert.Equal(t, "app", move.NewSchema)

	rename, ok := ops[1].(model.RenameTableOperation)
	require.True(t, ok)
	assert.Equal(t, model.SchemaName{Schema: "app", Name: "Blogs"}, rename.Name)
	assert.Equal(t, "Weblogs", rename.NewName)
}

func TestDiffColumnAddDropAlter(t *testing.T) {
	source := entity("Blog", "Blogs", "dbo",
		prop("Id", model.KindInt32),
		prop("Old", model.KindString),
		prop("Grows", model.KindInt32))
	target := entity("Blog", "Blogs", "dbo",
		prop("Id", model.KindInt32),
		prop("Fresh", model.KindDateTime),
		prop("Grows", model.KindInt64))

	ops := Diff(schemaOf(source), schemaOf(target), newFactory(), Options{})
	require.Len(t, ops, 3)

	add, ok := ops[0].(model.AddColumnOperation)
	require.True(t, ok)
	assert.Equal(t, "Fresh", add.Column.Name)

	drop, ok := ops[1].(model.DropColumnOperation)
	require.True(t, ok)
	assert.Equal(t, "Old", drop.ColumnName)

	alter, ok := ops[2].(model.AlterColumnOperation)
	require.True(t, ok)
	assert.Equal(t, "Grows", alter.Column.Name)
	assert.Equal(t, "bigint", alter.Column.ColumnType)
}

func TestDiffColumnRenameDetectedByColumnName(t *testing.T) {
	sp := prop("Title", model.KindString)
	sp.ColumnName = "Title"
	tp := prop("Heading", model.KindString)
	tp.ColumnName = "Title"

	source := entity("Post", "Posts", "", prop("Id", model.KindInt32), sp)
	target := entity("Post", "Posts", "", prop("Id", model.KindInt32), tp)

	// Same column name pairs the properties, so no rename and no churn.
	ops := Diff(schemaOf(source), schemaOf(target), newFactory(), Options{})
	assert.Empty(t, ops)
}

func TestDiffColumnRename(t *testing.T) {
	source := entity("Post", "Posts", "", prop("Id", model.KindInt32), prop("Title", model.KindString))
	tp := prop("Title", model.KindString)
	tp.ColumnName = "Heading"
	target := entity("Post", "Posts", "", prop("Id", model.KindInt32), tp)

	ops := Diff(schemaOf(source), schemaOf(target), newFactory(), Options{})
	require.Len(t, ops, 1)
	rename, ok := ops[0].(model.RenameColumnOperation)
	require.True(t, ok)
	assert.Equal(t, "Title", rename.OldName)
	assert.Equal(t, "Heading", rename.NewName)
}

func TestDiffPrimaryKeyChange(t *testing.T) {
	sid := prop("Id", model.KindInt32)
	tid := prop("Id", model.KindInt32)
	tcode := prop("Code", model.KindString)

	source := withPK(entity("Blog", "Blogs", "", sid), "PK_Blogs", sid)
	target := withPK(entity("Blog", "Blogs", "", tid, tcode), "PK_Blogs", tid, tcode)

	ops := Diff(schemaOf(source), schemaOf(target), newFactory(), Options{})
	require.Len(t, ops, 3)
	_, isAdd := ops[0].(model.AddColumnOperation)
	require.True(t, isAdd)
	dropPK, ok := ops[1].(model.DropPrimaryKeyOperation)
	require.True(t, ok)
	assert.Equal(t, "PK_Blogs", dropPK.Name)
	addPK, ok := ops[2].(model.AddPrimaryKeyOperation)
	require.True(t, ok)
	assert.Equal(t, []string{"Id", "Code"}, addPK.PrimaryKey.Columns)
}

func TestDiffForeignKeyAddAndDrop(t *testing.T) {
	principalID := prop("Id", model.KindInt32)
	principal := withPK(entity("Author", "Authors", "", principalID), "PK_Authors", principalID)

	mkPost := func() *model.EntityType {
		return entity("Post", "Posts", "", prop("Id", model.KindInt32), prop("AuthorId", model.KindInt32))
	}
	source := mkPost()
	target := mkPost()
	target.ForeignKeys = []*model.ForeignKey{{
		Name:                "FK_Posts_Authors_AuthorId",
		Properties:          []*model.Property{target.Properties[1]},
		PrincipalEntity:     principal,
		PrincipalProperties: []*model.Property{principalID},
		OnDelete:            model.ActionCascade,
	}}

	ops := Diff(schemaOf(source, principal), schemaOf(target, principal), newFactory(), Options{})
	require.Len(t, ops, 1)
	add, ok := ops[0].(model.AddForeignKeyOperation)
	require.True(t, ok)
	assert.Equal(t, "FK_Posts_Authors_AuthorId", add.ForeignKey.Name)
	assert.Equal(t, model.ActionCascade, add.ForeignKey.OnDelete)

	reverse := Diff(schemaOf(target, principal), schemaOf(source, principal), newFactory(), Options{})
	require.Len(t, reverse, 1)
	drop, ok := reverse[0].(model.DropForeignKeyOperation)
	require.True(t, ok)
	assert.Equal(t, "FK_Posts_Authors_AuthorId", drop.Name)
}

func TestDiffIndexRenameDetected(t *testing.T) {
	mk := func(indexName string) *model.EntityType {
		name := prop("Name", model.KindString)
		e := entity("Blog", "Blogs", "", prop("Id", model.KindInt32), name)
		e.Indexes = []*model.Index{{Name: indexName, Properties: []*model.Property{name}}}
		return e
	}

	ops := Diff(schemaOf(mk("IX_Old")), schemaOf(mk("IX_New")), newFactory(), Options{})
	require.Len(t, ops, 1)
	rename, ok := ops[0].(model.RenameIndexOperation)
	require.True(t, ok)
	assert.Equal(t, "IX_Old", rename.OldName)
	assert.Equal(t, "IX_New", rename.NewName)
}

func TestDiffIndexNameSwapUsesTempName(t *testing.T) {
	mk := func(aName, bName string) *model.EntityType {
		a := prop("A", model.KindString)
		b := prop("B", model.KindString)
		e := entity("Blog", "Blogs", "", prop("Id", model.KindInt32), a, b)
		e.Indexes = []*model.Index{
			{Name: aName, Properties: []*model.Property{a}},
			{Name: bName, Properties: []*model.Property{b}},
		}
		return e
	}
	source, target := mk("IX1", "IX2"), mk("IX2", "IX1")

	ops := Diff(schemaOf(source), schemaOf(target), newFactory(), Options{})
	require.Len(t, ops, 3)

	renames := make([]model.RenameIndexOperation, 3)
	for i, op := range ops {
		r, ok := op.(model.RenameIndexOperation)
		require.True(t, ok)
		renames[i] = r
	}
	assert.Equal(t, "IX1", renames[0].OldName)
	assert.Equal(t, "__mig_tmp__0", renames[0].NewName)
	assert.Equal(t, []string{"A"}, renames[0].Index.Columns)
	assert.Equal(t, "IX2", renames[1].OldName)
	assert.Equal(t, "IX1", renames[1].NewName)
	assert.Equal(t, []string{"B"}, renames[1].Index.Columns)
	assert.Equal(t, "__mig_tmp__0", renames[2].OldName)
	assert.Equal(t, "IX2", renames[2].NewName)
	assert.Equal(t, []string{"A"}, renames[2].Index.Columns)

	// The snapshotted spec always carries the name the step establishes.
	for _, r := range renames {
		assert.Equal(t, r.NewName, r.Index.Name)
	}
}

func TestDiffUniqueConstraintChange(t *testing.T) {
	mk := func(withKey bool) *model.EntityType {
		code := prop("Code", model.KindString)
		e := entity("Blog", "Blogs", "", prop("Id", model.KindInt32), code)
		if withKey {
			e.Keys = []*model.Key{{Name: "AK_Blogs_Code", Properties: []*model.Property{code}}}
		}
		return e
	}

	ops := Diff(schemaOf(mk(false)), schemaOf(mk(true)), newFactory(), Options{})
	require.Len(t, ops, 1)
	add, ok := ops[0].(model.AddUniqueConstraintOperation)
	require.True(t, ok)
	assert.Equal(t, "AK_Blogs_Code", add.Key.Name)
}

func TestDiffSequenceOperations(t *testing.T) {
	seq := func(name string, inc int64) *model.Sequence {
		return &model.Sequence{
			Name:        model.SchemaName{Schema: "dbo", Name: name},
			IncrementBy: inc,
			NumericType: model.KindInt64,
		}
	}

	source := &model.Schema{Sequences: []*model.Sequence{seq("Stays", 1), seq("Goes", 1)}}
	target := &model.Schema{Sequences: []*model.Sequence{seq("Stays", 5), seq("Arrives", 1)}}

	ops := Diff(source, target, newFactory(), Options{})
	require.Len(t, ops, 3)

	create, ok := ops[0].(model.CreateSequenceOperation)
	require.True(t, ok)
	assert.Equal(t, "Arrives", create.Name.Name)

	drop, ok := ops[1].(model.DropSequenceOperation)
	require.True(t, ok)
	assert.Equal(t, "Goes", drop.Name.Name)

	alter, ok := ops[2].(model.AlterSequenceOperation)
	require.True(t, ok)
	assert.Equal(t, int64(5), alter.IncrementBy)
}

func TestDiffDefaultOnlyChangeRoutesThroughDefaultConstraints(t *testing.T) {
	five := "5"
	mk := func(withDefault bool) *model.EntityType {
		n := prop("N", model.KindInt32)
		if withDefault {
			n.DefaultValue = &five
		}
		return entity("Blog", "Blogs", "dbo", prop("Id", model.KindInt32), n)
	}

	ops := Diff(schemaOf(mk(false)), schemaOf(mk(true)), newFactory(), Options{})
	require.Len(t, ops, 1)
	add, ok := ops[0].(model.AddDefaultConstraintOperation)
	require.True(t, ok)
	assert.Equal(t, "N", add.ColumnName)
	require.NotNil(t, add.DefaultValue)
	assert.Equal(t, "5", *add.DefaultValue)

	reverse := Diff(schemaOf(mk(true)), schemaOf(mk(false)), newFactory(), Options{})
	require.Len(t, reverse, 1)
	_, ok = reverse[0].(model.DropDefaultConstraintOperation)
	require.True(t, ok)
}

package sqlserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemamig/internal/model"
)

func generateOne(t *testing.T, op model.Operation) string {
	t.Helper()
	stmts, err := New().Generate([]model.Operation{op})
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	return stmts[0]
}

func dbo(name string) model.SchemaName {
	return model.SchemaName{Schema: "dbo", Name: name}
}

func TestCreateSequence(t *testing.T) {
	sql := generateOne(t, model.CreateSequenceOperation{
		Name:        dbo("MySequence"),
		ClrType:     model.KindInt64,
		StartValue:  0,
		IncrementBy: 1,
	})
	assert.Equal(t, "CREATE SEQUENCE [dbo].[MySequence] AS bigint START WITH 0 INCREMENT BY 1", sql)
}

func TestRenameTable(t *testing.T) {
	sql := generateOne(t, model.RenameTableOperation{Name: dbo("MyTable"), NewName: "MyTable2"})
	assert.Equal(t, "EXECUTE sp_rename @objname = N'dbo.MyTable', @newname = N'MyTable2', @objtype = N'OBJECT'", sql)
}

func TestAddForeignKeyWithCascade(t *testing.T) {
	sql := generateOne(t, model.AddForeignKeyOperation{
		Table: dbo("MyTable"),
		ForeignKey: model.ForeignKeySpec{
			Name:             "MyFK",
			Columns:          []string{"Foo", "Bar"},
			PrincipalTable:   dbo("MyTable2"),
			PrincipalColumns: []string{"Foo2", "Bar2"},
			OnDelete:         model.ActionCascade,
		},
	})
	assert.Equal(t, "ALTER TABLE [dbo].[MyTable] ADD CONSTRAINT [MyFK] FOREIGN KEY ([Foo], [Bar]) REFERENCES [dbo].[MyTable2] ([Foo2], [Bar2]) ON DELETE CASCADE", sql)
}

func TestCreateTableWithDefaultsAndCompositeKey(t *testing.T) {
	five := "5"
	sql := generateOne(t, model.CreateTableOperation{
		Name: dbo("MyTable"),
		Columns: []model.ColumnSpec{
			{Name: "Foo", ColumnType: "int", DefaultValue: &five},
			{Name: "Bar", ColumnType: "int", Nullable: true},
		},
		PrimaryKey: &model.PrimaryKeySpec{Name: "MyPK", Columns: []string{"Foo", "Bar"}},
	})
	assert.Equal(t, "CREATE TABLE [dbo].[MyTable] (\n"+
		"    [Foo] int NOT NULL DEFAULT 5,\n"+
		"    [Bar] int NULL,\n"+
		"    CONSTRAINT [MyPK] PRIMARY KEY NONCLUSTERED ([Foo], [Bar])\n"+
		")", sql)
}

func TestDropDefaultConstraintDynamicLookup(t *testing.T) {
	sql := generateOne(t, model.DropDefaultConstraintOperation{Table: dbo("MyTable"), ColumnName: "Foo"})
	assert.Equal(t, "DECLARE @var0 sysname;\n"+
		"SELECT @var0 = [d].[name] FROM sys.default_constraints [d] INNER JOIN sys.columns [c] ON [d].[parent_object_id] = [c].[object_id] AND [d].[parent_column_id] = [c].[column_id] WHERE [d].[parent_object_id] = OBJECT_ID(N'[dbo].[MyTable]') AND [c].[name] = N'Foo';\n"+
		"IF @var0 IS NOT NULL EXECUTE(N'ALTER TABLE [dbo].[MyTable] DROP CONSTRAINT [' + @var0 + N']');", sql)
}

func TestRenameColumnAndIndex(t *testing.T) {
	col := generateOne(t, model.RenameColumnOperation{Table: dbo("T"), OldName: "A", NewName: "B"})
	assert.Equal(t, "EXECUTE sp_rename @objname = N'dbo.T.A', @newname = N'B', @objtype = N'COLUMN'", col)

	idx := generateOne(t, model.RenameIndexOperation{Table: dbo("T"), OldName: "IX", NewName: "IX2"})
	assert.Equal(t, "EXECUTE sp_rename @objname = N'dbo.T.IX', @newname = N'IX2', @objtype = N'INDEX'", idx)
}

func TestMoveTableTransfersSchema(t *testing.T) {
	sql := generateOne(t, model.MoveTableOperation{Name: dbo("T"), NewSchema: "app"})
	assert.Equal(t, "ALTER SCHEMA [app] TRANSFER [dbo].[T]", sql)
}

func TestIdentityColumn(t *testing.T) {
	sql := generateOne(t, model.AddColumnOperation{
		Table:  dbo("T"),
		Column: model.ColumnSpec{Name: "Id", ColumnType: "int", ValueGeneratedOnAdd: true},
	})
	assert.Equal(t, "ALTER TABLE [dbo].[T] ADD [Id] int IDENTITY(1,1) NOT NULL", sql)
}

func TestCreateUniqueIndex(t *testing.T) {
	sql := generateOne(t, model.CreateIndexOperation{
		Table: dbo("T"),
		Index: model.IndexSpec{Name: "IX_T_C", Unique: true, Columns: []string{"C"}},
	})
	assert.Equal(t, "CREATE UNIQUE INDEX [IX_T_C] ON [dbo].[T] ([C])", sql)
}

func TestStringDefaultIsQuoted(t *testing.T) {
	v := "it's"
	sql := generateOne(t, model.AddColumnOperation{
		Table:  dbo("T"),
		Column: model.ColumnSpec{Name: "C", ColumnType: "nvarchar(max)", Nullable: true, DefaultValue: &v},
	})
	assert.Equal(t, "ALTER TABLE [dbo].[T] ADD [C] nvarchar(max) NULL DEFAULT 'it''s'", sql)
}

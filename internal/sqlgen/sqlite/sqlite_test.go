package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemamig/internal/migrerr"
	"schemamig/internal/model"
)

func generateOne(t *testing.T, op model.Operation) string {
	t.Helper()
	stmts, err := New().Generate([]model.Operation{op})
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	return stmts[0]
}

func TestMoveTableFlattensSchemaIntoName(t *testing.T) {
	sql := generateOne(t, model.MoveTableOperation{
		Name:      model.SchemaName{Schema: "my", Name: "Pony"},
		NewSchema: "bro",
	})
	assert.Equal(t, `ALTER TABLE "my.Pony" RENAME TO "bro.Pony"`, sql)
}

func TestRenameTable(t *testing.T) {
	sql := generateOne(t, model.RenameTableOperation{
		Name:    model.SchemaName{Name: "Pony"},
		NewName: "Horse",
	})
	assert.Equal(t, `ALTER TABLE "Pony" RENAME TO "Horse"`, sql)
}

func TestCreateDatabaseNotSupported(t *testing.T) {
	_, err := New().Generate([]model.Operation{model.CreateDatabaseOperation{Name: "db"}})
	require.Error(t, err)
	var notSupported *migrerr.OperationNotSupportedError
	require.ErrorAs(t, err, &notSupported)
	assert.Equal(t, "sqlite", notSupported.Dialect)
}

func TestCreateSequenceNotSupported(t *testing.T) {
	_, err := New().Generate([]model.Operation{model.CreateSequenceOperation{
		Name: model.SchemaName{Name: "Seq"},
	}})
	var notSupported *migrerr.OperationNotSupportedError
	require.ErrorAs(t, err, &notSupported)
}

func TestCreateTableInlinesConstraints(t *testing.T) {
	sql := generateOne(t, model.CreateTableOperation{
		Name: model.SchemaName{Name: "Child"},
		Columns: []model.ColumnSpec{
			{Name: "Id", ColumnType: "INTEGER"},
			{Name: "ParentId", ColumnType: "INTEGER", Nullable: true},
		},
		PrimaryKey: &model.PrimaryKeySpec{Name: "PK_Child", Columns: []string{"Id"}},
		UniqueConstraints: []model.KeySpec{
			{Name: "AK_Child_ParentId", Columns: []string{"ParentId"}},
		},
		ForeignKeys: []model.ForeignKeySpec{{
			Name:             "FK0",
			Columns:          []string{"ParentId"},
			PrincipalTable:   model.SchemaName{Name: "Parent"},
			PrincipalColumns: []string{"Id"},
			OnDelete:         model.ActionCascade,
		}},
	})
	assert.Equal(t, "CREATE TABLE \"Child\" (\n"+
		"    \"Id\" INTEGER NOT NULL,\n"+
		"    \"ParentId\" INTEGER,\n"+
		"    CONSTRAINT \"PK_Child\" PRIMARY KEY (\"Id\"),\n"+
		"    CONSTRAINT \"AK_Child_ParentId\" UNIQUE (\"ParentId\"),\n"+
		"    CONSTRAINT \"FK0\" FOREIGN KEY (\"ParentId\") REFERENCES \"Parent\" (\"Id\") ON DELETE CASCADE\n"+
		")", sql)
}

func TestCopyData(t *testing.T) {
	sql := generateOne(t, model.CopyDataOperation{
		SourceTable:   model.SchemaName{Name: "__mig_tmp__T"},
		SourceColumns: []string{"Id", "C"},
		TargetTable:   model.SchemaName{Name: "T"},
		TargetColumns: []string{"Id", "C"},
	})
	assert.Equal(t, `INSERT INTO "T" ("Id", "C") SELECT "Id", "C" FROM "__mig_tmp__T"`, sql)
}

func TestAddColumnWithDefault(t *testing.T) {
	v := "7"
	sql := generateOne(t, model.AddColumnOperation{
		Table:  model.SchemaName{Name: "T"},
		Column: model.ColumnSpec{Name: "N", ColumnType: "INTEGER", DefaultValue: &v},
	})
	assert.Equal(t, `ALTER TABLE "T" ADD COLUMN "N" INTEGER NOT NULL DEFAULT 7`, sql)
}

func TestCreateAndDropIndex(t *testing.T) {
	create := generateOne(t, model.CreateIndexOperation{
		Table: model.SchemaName{Name: "T"},
		Index: model.IndexSpec{Name: "IX_T_C", Unique: true, Columns: []string{"C"}},
	})
	assert.Equal(t, `CREATE UNIQUE INDEX "IX_T_C" ON "T" ("C")`, create)

	drop := generateOne(t, model.DropIndexOperation{Table: model.SchemaName{Name: "T"}, Name: "IX_T_C"})
	assert.Equal(t, `DROP INDEX "IX_T_C"`, drop)
}

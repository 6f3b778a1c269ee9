// Package sqlserver implements the SQL-Server SQL generator: it
// dispatches on operation variant and renders the dialect's idioms
// (sp_rename, ALTER SCHEMA ... TRANSFER, the sys.default_constraints
// lookup, IDENTITY, PRIMARY KEY NONCLUSTERED), one method per
// statement kind.
package sqlserver

import (
	"fmt"
	"strings"

	"schemamig/internal/migrerr"
	"schemamig/internal/model"
	"schemamig/internal/sqlgen/relational"
)

// Generator renders model.Operation values to SQL-Server T-SQL text.
type Generator struct{}

// New constructs a Generator.
func New() *Generator { return &Generator{} }

// Dialect identifies this generator for error messages.
const Dialect = "sqlserver"

// Generate dispatches each operation to its dialect-specific rendering,
// returning one SQL statement per operation. It stops and returns an
// error at the first unsupported operation.
func (g *Generator) Generate(ops []model.Operation) ([]string, error) {
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		stmt, err := g.generateOne(op)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

func (g *Generator) generateOne(op model.Operation) (string, error) {
	switch o := op.(type) {
	case model.CreateDatabaseOperation:
		return fmt.Sprintf("CREATE DATABASE %s", g.quoteName(o.Name)), nil
	case model.DropDatabaseOperation:
		return fmt.Sprintf("DROP DATABASE %s", g.quoteName(o.Name)), nil
	case model.CreateSequenceOperation:
		return g.createSequence(o), nil
	case model.DropSequenceOperation:
		return fmt.Sprintf("DROP SEQUENCE %s", g.qualify(o.Name)), nil
	case model.MoveSequenceOperation:
		return g.transferSchema(o.Name, o.NewSchema), nil
	case model.RenameSequenceOperation:
		return g.spRename(o.Name, o.NewName, "OBJECT"), nil
	case model.AlterSequenceOperation:
		return fmt.Sprintf("ALTER SEQUENCE %s INCREMENT BY %d", g.qualify(o.Name), o.IncrementBy), nil
	case model.CreateTableOperation:
		return g.createTable(o), nil
	case model.DropTableOperation:
		return fmt.Sprintf("DROP TABLE %s", g.qualify(o.Name)), nil
	case model.RenameTableOperation:
		return g.spRename(o.Name, o.NewName, "OBJECT"), nil
	case model.MoveTableOperation:
		return g.transferSchema(o.Name, o.NewSchema), nil
	case model.AddColumnOperation:
		return fmt.Sprintf("ALTER TABLE %s ADD %s", g.qualify(o.Table), g.columnDefinition(o.Column)), nil
	case model.DropColumnOperation:
		return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", g.qualify(o.Table), relational.QuoteBracket(o.ColumnName)), nil
	case model.AlterColumnOperation:
		return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s", g.qualify(o.Table), g.columnDefinition(o.Column)), nil
	case model.AddDefaultConstraintOperation:
		return g.addDefaultConstraint(o), nil
	case model.DropDefaultConstraintOperation:
		return g.dropDefaultConstraint(o), nil
	case model.RenameColumnOperation:
		return g.spRenameColumn(o.Table, o.OldName, o.NewName), nil
	case model.AddPrimaryKeyOperation:
		return fmt.Sprintf("ALTER TABLE %s ADD %s", g.qualify(o.Table), g.primaryKeyDefinition(o.PrimaryKey)), nil
	case model.DropPrimaryKeyOperation:
		return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", g.qualify(o.Table), relational.QuoteBracket(o.Name)), nil
	case model.AddUniqueConstraintOperation:
		return fmt.Sprintf("ALTER TABLE %s ADD %s", g.qualify(o.Table), g.uniqueConstraintDefinition(o.Key)), nil
	case model.DropUniqueConstraintOperation:
		return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", g.qualify(o.Table), relational.QuoteBracket(o.Name)), nil
	case model.AddForeignKeyOperation:
		return fmt.Sprintf("ALTER TABLE %s ADD %s", g.qualify(o.Table), g.foreignKeyDefinition(o.ForeignKey)), nil
	case model.DropForeignKeyOperation:
		return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", g.qualify(o.Table), relational.QuoteBracket(o.Name)), nil
	case model.CreateIndexOperation:
		return g.createIndex(o.Table, o.Index), nil
	case model.DropIndexOperation:
		return fmt.Sprintf("DROP INDEX %s ON %s", relational.QuoteBracket(o.Name), g.qualify(o.Table)), nil
	case model.RenameIndexOperation:
		return g.spRenameIndex(o.Table, o.OldName, o.NewName), nil
	case model.CopyDataOperation:
		return g.copyData(o), nil
	default:
		return "", migrerr.NewOperationNotSupported(Dialect, fmt.Sprintf("%T", op))
	}
}

func (g *Generator) quoteName(name string) string { return relational.QuoteBracket(name) }

// qualify renders a schema-qualified name as [schema].[name], omitting
// the schema segment when it is empty.
func (g *Generator) qualify(n model.SchemaName) string {
	if n.Schema == "" {
		return relational.QuoteBracket(n.Name)
	}
	return relational.QuoteBracket(n.Schema) + "." + relational.QuoteBracket(n.Name)
}

// rawQualified renders the dotted-but-unquoted name used inside
// sp_rename's @objname argument, which takes the qualified name as a
// single N'...' string literal rather than a bracket-quoted identifier.
func rawQualified(n model.SchemaName) string {
	if n.Schema == "" {
		return n.Name
	}
	return n.Schema + "." + n.Name
}

func (g *Generator) spRename(n model.SchemaName, newName, objType string) string {
	return fmt.Sprintf("EXECUTE sp_rename @objname = N'%s', @newname = N'%s', @objtype = N'%s'", rawQualified(n), newName, objType)
}

func (g *Generator) spRenameColumn(table model.SchemaName, oldCol, newCol string) string {
	return fmt.Sprintf("EXECUTE sp_rename @objname = N'%s.%s', @newname = N'%s', @objtype = N'COLUMN'", rawQualified(table), oldCol, newCol)
}

func (g *Generator) spRenameIndex(table model.SchemaName, oldName, newName string) string {
	return fmt.Sprintf("EXECUTE sp_rename @objname = N'%s.%s', @newname = N'%s', @objtype = N'INDEX'", rawQualified(table), oldName, newName)
}

func (g *Generator) transferSchema(n model.SchemaName, newSchema string) string {
	return fmt.Sprintf("ALTER SCHEMA %s TRANSFER %s", relational.QuoteBracket(newSchema), g.qualify(n))
}

func (g *Generator) createSequence(o model.CreateSequenceOperation) string {
	clr := sequenceClrType(o.ClrType)
	s := fmt.Sprintf("CREATE SEQUENCE %s AS %s START WITH %d INCREMENT BY %d", g.qualify(o.Name), clr, o.StartValue, o.IncrementBy)
	if o.MinValue != nil {
		s += fmt.Sprintf(" MINVALUE %d", *o.MinValue)
	}
	if o.MaxValue != nil {
		s += fmt.Sprintf(" MAXVALUE %d", *o.MaxValue)
	}
	return s
}

func sequenceClrType(k model.Kind) string {
	switch k {
	case model.KindInt32:
		return "int"
	case model.KindInt16:
		return "smallint"
	case model.KindByte:
		return "tinyint"
	case model.KindUint64:
		return "numeric(20,0)"
	case model.KindDecimal:
		return "decimal(18,0)"
	default:
		return "bigint"
	}
}

func (g *Generator) columnDefinition(c model.ColumnSpec) string {
	var b strings.Builder
	b.WriteString(relational.QuoteBracket(c.Name))
	b.WriteByte(' ')
	b.WriteString(c.ColumnType)
	if c.ValueGeneratedOnAdd {
		b.WriteString(" IDENTITY(1,1)")
	}
	if c.Nullable {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}
	if c.DefaultExpression != nil {
		fmt.Fprintf(&b, " DEFAULT (%s)", *c.DefaultExpression)
	} else if c.DefaultValue != nil {
		fmt.Fprintf(&b, " DEFAULT %s", g.literal(*c.DefaultValue))
	}
	return b.String()
}

// literal renders a stored default value as a SQL literal. Values that
// already look numeric pass through bare; everything else is quoted as
// a string literal.
func (g *Generator) literal(v string) string {
	if v == "" {
		return relational.QuoteStringLiteral(v)
	}
	isNumeric := true
	for i, r := range v {
		if r >= '0' && r <= '9' {
			continue
		}
		if (r == '-' || r == '+') && i == 0 {
			continue
		}
		if r == '.' {
			continue
		}
		isNumeric = false
		break
	}
	if isNumeric {
		return v
	}
	return relational.QuoteStringLiteral(v)
}

func (g *Generator) primaryKeyDefinition(pk model.PrimaryKeySpec) string {
	return fmt.Sprintf("CONSTRAINT %s PRIMARY KEY NONCLUSTERED (%s)", relational.QuoteBracket(pk.Name), g.columnList(pk.Columns))
}

func (g *Generator) uniqueConstraintDefinition(k model.KeySpec) string {
	return fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)", relational.QuoteBracket(k.Name), g.columnList(k.Columns))
}

func (g *Generator) foreignKeyDefinition(fk model.ForeignKeySpec) string {
	s := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		relational.QuoteBracket(fk.Name), g.columnList(fk.Columns), g.qualify(fk.PrincipalTable), g.columnList(fk.PrincipalColumns))
	if fk.OnDelete != model.ActionNoAction {
		s += " ON DELETE " + string(fk.OnDelete)
	}
	return s
}

func (g *Generator) columnList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = relational.QuoteBracket(c)
	}
	return strings.Join(quoted, ", ")
}

func (g *Generator) createTable(o model.CreateTableOperation) string {
	var lines []string
	for _, c := range o.Columns {
		lines = append(lines, "    "+g.columnDefinition(c))
	}
	if o.PrimaryKey != nil {
		lines = append(lines, "    "+g.primaryKeyDefinition(*o.PrimaryKey))
	}
	for _, k := range o.UniqueConstraints {
		lines = append(lines, "    "+g.uniqueConstraintDefinition(k))
	}
	for _, fk := range o.ForeignKeys {
		lines = append(lines, "    "+g.foreignKeyDefinition(fk))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n)", g.qualify(o.Name), strings.Join(lines, ",\n"))
}

func (g *Generator) createIndex(table model.SchemaName, idx model.IndexSpec) string {
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, relational.QuoteBracket(idx.Name), g.qualify(table), g.columnList(idx.Columns))
}

// addDefaultConstraint renders an ADD CONSTRAINT ... DEFAULT statement
// using a synthesized constraint name, since the schema model does not
// track one for a bare Property.DefaultValue/DefaultExpression.
func (g *Generator) addDefaultConstraint(o model.AddDefaultConstraintOperation) string {
	var valueExpr string
	if o.DefaultExpression != nil {
		valueExpr = "(" + *o.DefaultExpression + ")"
	} else if o.DefaultValue != nil {
		valueExpr = g.literal(*o.DefaultValue)
	}
	name := "DF_" + o.Table.Name + "_" + o.ColumnName
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s DEFAULT %s FOR %s",
		g.qualify(o.Table), relational.QuoteBracket(name), valueExpr, relational.QuoteBracket(o.ColumnName))
}

// dropDefaultConstraint renders the three-statement dynamic-SQL trick
// needed because SQL-Server default constraints are system-named unless
// created with an explicit name, which the schema model does not carry.
func (g *Generator) dropDefaultConstraint(o model.DropDefaultConstraintOperation) string {
	table := g.qualify(o.Table)
	var b strings.Builder
	fmt.Fprintf(&b, "DECLARE @var0 sysname;\n")
	fmt.Fprintf(&b, "SELECT @var0 = [d].[name] FROM sys.default_constraints [d] INNER JOIN sys.columns [c] ON [d].[parent_object_id] = [c].[object_id] AND [d].[parent_column_id] = [c].[column_id] WHERE [d].[parent_object_id] = OBJECT_ID(N'%s') AND [c].[name] = N'%s';\n", table, o.ColumnName)
	fmt.Fprintf(&b, "IF @var0 IS NOT NULL EXECUTE(N'ALTER TABLE %s DROP CONSTRAINT [' + @var0 + N']');", table)
	return b.String()
}

func (g *Generator) copyData(o model.CopyDataOperation) string {
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
		g.qualify(o.TargetTable), g.columnList(o.TargetColumns), g.columnList(o.SourceColumns), g.qualify(o.SourceTable))
}

// Package sqlite implements the SQLite SQL generator. SQLite lacks
// schemas, sequences, and most ALTER TABLE subordinates; almost
// everything beyond CREATE/DROP TABLE, RENAME TO, ADD COLUMN, index
// create/drop, and the rebuild's copy-data INSERT ... SELECT is expected
// to have already been rewritten by preprocess.Restricted
// before reaching this generator, and anything else raises
// OperationNotSupported.
package sqlite

import (
	"fmt"
	"strings"

	"schemamig/internal/migrerr"
	"schemamig/internal/model"
	"schemamig/internal/sqlgen/relational"
)

// Generator renders model.Operation values to SQLite SQL text.
type Generator struct{}

// New constructs a Generator.
func New() *Generator { return &Generator{} }

// Dialect identifies this generator for error messages.
const Dialect = "sqlite"

// Generate dispatches each operation to its dialect-specific rendering,
// stopping at the first unsupported operation.
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
	case model.CreateTableOperation:
		return g.createTable(o), nil
	case model.DropTableOperation:
		return fmt.Sprintf("DROP TABLE %s", g.qualify(o.Name)), nil
	case model.RenameTableOperation:
		return g.renameTo(o.Name, model.SchemaName{Schema: o.Name.Schema, Name: o.NewName}), nil
	case model.MoveTableOperation:
		return g.renameTo(o.Name, model.SchemaName{Schema: o.NewSchema, Name: o.Name.Name}), nil
	case model.AddColumnOperation:
		return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", g.qualify(o.Table), g.columnDefinition(o.Column)), nil
	case model.CreateIndexOperation:
		return g.createIndex(o.Table, o.Index), nil
	case model.DropIndexOperation:
		return fmt.Sprintf("DROP INDEX %s", relational.QuoteDouble(o.Name)), nil
	case model.CopyDataOperation:
		return g.copyData(o), nil
	default:
		return "", migrerr.NewOperationNotSupported(Dialect, fmt.Sprintf("%T", op))
	}
}

// qualify flattens a schema-qualified name into one SQLite identifier
// by concatenating "schema.name" and quoting the whole string, since
// the dialect has no schema objects of its own.
func (g *Generator) qualify(n model.SchemaName) string {
	return relational.QuoteDouble(flatten(n))
}

func flatten(n model.SchemaName) string {
	if n.Schema == "" {
		return n.Name
	}
	return n.Schema + "." + n.Name
}

func (g *Generator) renameTo(old, new model.SchemaName) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", g.qualify(old), g.qualify(new))
}

func (g *Generator) columnDefinition(c model.ColumnSpec) string {
	var b strings.Builder
	b.WriteString(relational.QuoteDouble(c.Name))
	b.WriteByte(' ')
	b.WriteString(c.ColumnType)
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.DefaultExpression != nil {
		fmt.Fprintf(&b, " DEFAULT (%s)", *c.DefaultExpression)
	} else if c.DefaultValue != nil {
		fmt.Fprintf(&b, " DEFAULT %s", g.literal(*c.DefaultValue))
	}
	return b.String()
}

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

func (g *Generator) columnList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = relational.QuoteDouble(c)
	}
	return strings.Join(quoted, ", ")
}

// createTable inlines the primary key and every foreign key into the
// CREATE TABLE body, since SQLite cannot add a foreign key to an
// existing table.
func (g *Generator) createTable(o model.CreateTableOperation) string {
	var lines []string
	for _, c := range o.Columns {
		lines = append(lines, "    "+g.columnDefinition(c))
	}
	if o.PrimaryKey != nil {
		lines = append(lines, fmt.Sprintf("    CONSTRAINT %s PRIMARY KEY (%s)", relational.QuoteDouble(o.PrimaryKey.Name), g.columnList(o.PrimaryKey.Columns)))
	}
	for _, k := range o.UniqueConstraints {
		lines = append(lines, fmt.Sprintf("    CONSTRAINT %s UNIQUE (%s)", relational.QuoteDouble(k.Name), g.columnList(k.Columns)))
	}
	for _, fk := range o.ForeignKeys {
		line := fmt.Sprintf("    CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			relational.QuoteDouble(fk.Name), g.columnList(fk.Columns), g.qualify(fk.PrincipalTable), g.columnList(fk.PrincipalColumns))
		if fk.OnDelete != model.ActionNoAction {
			line += " ON DELETE " + string(fk.OnDelete)
		}
		lines = append(lines, line)
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n)", g.qualify(o.Name), strings.Join(lines, ",\n"))
}

func (g *Generator) createIndex(table model.SchemaName, idx model.IndexSpec) string {
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, relational.QuoteDouble(idx.Name), g.qualify(table), g.columnList(idx.Columns))
}

func (g *Generator) copyData(o model.CopyDataOperation) string {
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
		g.qualify(o.TargetTable), g.columnList(o.TargetColumns), g.columnList(o.SourceColumns), g.qualify(o.SourceTable))
}

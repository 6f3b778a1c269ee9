// Package sqlddl parses a MySQL-dialect CREATE TABLE dump into a
// model.Schema, giving the CLI a second way to assemble a differ input
// besides the TOML document format. Only CREATE TABLE statements are
// consumed; everything else in the dump is ignored.
package sqlddl

import (
	"fmt"
	"os"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver" // required to register TiDB parser driver implementations

	"schemamig/internal/model"
)

// Parser converts MySQL DDL text into schema models.
type Parser struct {
	p *parser.Parser
}

// NewParser creates a new DDL parser.
func NewParser() *Parser {
	return &Parser{p: parser.New()}
}

// ParseFile reads the file at path and parses its CREATE TABLE
// statements into a schema model.
func (p *Parser) ParseFile(path string) (*model.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sqlddl: read file %q: %w", path, err)
	}
	return p.Parse(string(data))
}

// Parse parses sql and returns the corresponding model.Schema.
func (p *Parser) Parse(sql string) (*model.Schema, error) {
	stmtNodes, _, err := p.p.Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("sqlddl: parse: %w", err)
	}

	schema := &model.Schema{}
	entities := make(map[string]*model.EntityType)
	var fkStmts []*ast.CreateTableStmt

	for _, stmtNode := range stmtNodes {
		createStmt, ok := stmtNode.(*ast.CreateTableStmt)
		if !ok {
			continue
		}
		e, err := p.convertCreateTable(createStmt)
		if err != nil {
			return nil, err
		}
		if entities[e.Name] != nil {
			return nil, fmt.Errorf("sqlddl: duplicate table %q", e.Name)
		}
		entities[e.Name] = e
		schema.Entities = append(schema.Entities, e)
		fkStmts = append(fkStmts, createStmt)
	}

	// Foreign keys reference tables that may be declared later in the
	// dump; resolve them once every table exists.
	for _, stmt := range fkStmts {
		if err := resolveForeignKeys(stmt, entities); err != nil {
			return nil, err
		}
	}

	return schema, nil
}

func (p *Parser) convertCreateTable(stmt *ast.CreateTableStmt) (*model.EntityType, error) {
	name := stmt.Table.Name.O
	e := &model.EntityType{
		Name:     name,
		HasTable: true,
		Table:    model.SchemaName{Schema: stmt.Table.Schema.O, Name: name},
	}

	for _, colDef := range stmt.Cols {
		prop, inlinePK := p.convertColumn(colDef)
		e.Properties = append(e.Properties, prop)
		if inlinePK {
			e.PrimaryKey = &model.PrimaryKey{Properties: []*model.Property{prop}}
		}
	}

	for _, constraint := range stmt.Constraints {
		if err := applyConstraint(e, constraint); err != nil {
			return nil, fmt.Errorf("sqlddl: table %q: %w", name, err)
		}
	}

	return e, nil
}

func (p *Parser) convertColumn(colDef *ast.ColumnDef) (prop *model.Property, inlinePK bool) {
	rawType := colDef.Tp.String()
	prop = &model.Property{
		Name:     colDef.Name.Name.O,
		Kind:     normalizeKind(rawType),
		Nullable: true,
	}
	if length := colDef.Tp.GetFlen(); length > 0 && prop.Kind == model.KindString {
		l := length
		prop.MaxLength = &l
	}

	for _, opt := range colDef.Options {
		switch opt.Tp {
		case ast.ColumnOptionNotNull:
			prop.Nullable = false
		case ast.ColumnOptionNull:
			prop.Nullable = true
		case ast.ColumnOptionPrimaryKey:
			prop.Nullable = false
			inlinePK = true
		case ast.ColumnOptionAutoIncrement:
			prop.ValueGeneratedOnAdd = true
		case ast.ColumnOptionDefaultValue:
			prop.DefaultValue = exprToString(opt.Expr)
		case ast.ColumnOptionGenerated:
			prop.StoreComputed = opt.Stored
		}
	}

	return prop, inlinePK
}

func applyConstraint(e *model.EntityType, constraint *ast.Constraint) error {
	props, err := constraintProperties(e, constraint.Keys)
	if err != nil {
		return err
	}

	switch constraint.Tp {
	case ast.ConstraintPrimaryKey:
		for _, p := range props {
			p.Nullable = false
		}
		e.PrimaryKey = &model.PrimaryKey{Name: constraint.Name, Properties: props}
	case ast.ConstraintUniq, ast.ConstraintUniqKey, ast.ConstraintUniqIndex:
		e.Keys = append(e.Keys, &model.Key{Name: constraint.Name, Properties: props})
	case ast.ConstraintIndex, ast.ConstraintKey:
		e.Indexes = append(e.Indexes, &model.Index{Name: constraint.Name, Properties: props})
	case ast.ConstraintForeignKey:
		// handled by resolveForeignKeys
	}
	return nil
}

func resolveForeignKeys(stmt *ast.CreateTableStmt, entities map[string]*model.EntityType) error {
	e := entities[stmt.Table.Name.O]
	for _, constraint := range stmt.Constraints {
		if constraint.Tp != ast.ConstraintForeignKey || constraint.Refer == nil {
			continue
		}
		props, err := constraintProperties(e, constraint.Keys)
		if err != nil {
			return fmt.Errorf("sqlddl: table %q: foreign key %q: %w", e.Name, constraint.Name, err)
		}
		principal := entities[constraint.Refer.Table.Name.O]
		if principal == nil {
			return fmt.Errorf("sqlddl: table %q: foreign key %q references unknown table %q",
				e.Name, constraint.Name, constraint.Refer.Table.Name.O)
		}
		var principalProps []*model.Property
		for _, spec := range constraint.Refer.IndexPartSpecifications {
			if spec.Column == nil {
				continue
			}
			p := principal.FindProperty(spec.Column.Name.O)
			if p == nil {
				return fmt.Errorf("sqlddl: table %q: foreign key %q references unknown column %q.%q",
					e.Name, constraint.Name, principal.Name, spec.Column.Name.O)
			}
			principalProps = append(principalProps, p)
		}
		fk := &model.ForeignKey{
			Name:                constraint.Name,
			Properties:          props,
			PrincipalEntity:     principal,
			PrincipalProperties: principalProps,
		}
		if constraint.Refer.OnDelete != nil {
			fk.OnDelete = normalizeReferentialAction(constraint.Refer.OnDelete.ReferOpt.String())
		}
		e.ForeignKeys = append(e.ForeignKeys, fk)
	}
	return nil
}

func constraintProperties(e *model.EntityType, keys []*ast.IndexPartSpecification) ([]*model.Property, error) {
	props := make([]*model.Property, 0, len(keys))
	for _, spec := range keys {
		if spec.Column == nil {
			continue
		}
		p := e.FindProperty(spec.Column.Name.O)
		if p == nil {
			return nil, fmt.Errorf("unknown column %q", spec.Column.Name.O)
		}
		props = append(props, p)
	}
	return props, nil
}

func normalizeReferentialAction(raw string) model.ReferentialAction {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "CASCADE":
		return model.ActionCascade
	case "SET NULL":
		return model.ActionSetNull
	case "RESTRICT":
		return model.ActionRestrict
	default:
		return model.ActionNoAction
	}
}

type kindRule struct {
	kind       model.Kind
	substrings []string
}

// kindRules map a raw MySQL type string to a logical kind; matching is
// case-insensitive substring containment, first rule wins.
var kindRules = []kindRule{
	{kind: model.KindBool, substrings: []string{"bool", "tinyint(1)"}},
	{kind: model.KindByte, substrings: []string{"tinyint"}},
	{kind: model.KindInt16, substrings: []string{"smallint"}},
	{kind: model.KindInt64, substrings: []string{"bigint"}},
	{kind: model.KindInt32, substrings: []string{"int"}},
	{kind: model.KindFloat32, substrings: []string{"float"}},
	{kind: model.KindFloat64, substrings: []string{"double", "real"}},
	{kind: model.KindDecimal, substrings: []string{"decimal", "numeric"}},
	{kind: model.KindGUID, substrings: []string{"uuid", "char(36)"}},
	{kind: model.KindString, substrings: []string{"char", "text", "enum", "set", "json"}},
	{kind: model.KindDateTime, substrings: []string{"timestamp", "datetime", "date", "time", "year"}},
	{kind: model.KindBlob, substrings: []string{"blob", "binary"}},
}

func normalizeKind(rawType string) model.Kind {
	lower := strings.ToLower(strings.TrimSpace(rawType))
	if strings.Contains(lower, "bigint") && strings.Contains(lower, "unsigned") {
		return model.KindUint64
	}
	for _, rule := range kindRules {
		for _, sub := range rule.substrings {
			if strings.Contains(lower, sub) {
				return rule.kind
			}
		}
	}
	return model.KindString
}

func exprToString(expr ast.ExprNode) *string {
	if expr == nil {
		return nil
	}

	var sb strings.Builder
	restoreCtx := format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)
	if err := expr.Restore(restoreCtx); err != nil {
		return nil
	}
	s := strings.TrimSpace(sb.String())
	// The restore step prefixes string literals with their charset
	// introducer (e.g. _UTF8MB4'x'); drop it so only the quoted literal remains.
	if strings.HasPrefix(s, "_") {
		if i := strings.IndexByte(s, '\''); i > 0 && !strings.ContainsAny(s[:i], " (") {
			s = s[i:]
		}
	}
	if unquoted, ok := tryUnquoteStringLiteral(s); ok {
		return &unquoted
	}
	return &s
}

// tryUnquoteStringLiteral strips the surrounding quotes the restore
// step puts around string literals, so the model carries the bare value.
func tryUnquoteStringLiteral(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	quote := s[0]
	if (quote != '\'' && quote != '"') || s[len(s)-1] != quote {
		return "", false
	}
	inner := s[1 : len(s)-1]
	return strings.ReplaceAll(inner, string(quote)+string(quote), string(quote)), true
}

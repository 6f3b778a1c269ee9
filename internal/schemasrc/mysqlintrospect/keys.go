package mysqlintrospect

import (
	"database/sql"
	"fmt"

	"schemamig/internal/model"
)

// introspectKeys reads the primary key and unique constraints from
// information_schema.table_constraints + key_column_usage.
func introspectKeys(ic *introspectCtx, e *model.EntityType) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT
			tc.constraint_name,
			tc.constraint_type,
			kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
			AND tc.constraint_name = kcu.constraint_name
		WHERE tc.table_schema = DATABASE()
			AND tc.table_name = ?
			AND tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE')
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`, e.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	type keyAccum struct {
		typ   string
		props []*model.Property
	}
	var order []string
	keys := make(map[string]*keyAccum)

	for rows.Next() {
		var name, typ, column sql.NullString
		if err := rows.Scan(&name, &typ, &column); err != nil {
			return err
		}
		p := e.FindProperty(column.String)
		if p == nil {
			return fmt.Errorf("mysqlintrospect: table %s: constraint %s names unknown column %s",
				e.Name, name.String, column.String)
		}
		k, ok := keys[name.String]
		if !ok {
			k = &keyAccum{typ: typ.String}
			keys[name.String] = k
			order = append(order, name.String)
		}
		k.props = append(k.props, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, name := range order {
		k := keys[name]
		if k.typ == "PRIMARY KEY" {
			for _, p := range k.props {
				p.Nullable = false
			}
			e.PrimaryKey = &model.PrimaryKey{Properties: k.props}
			continue
		}
		e.Keys = append(e.Keys, &model.Key{Name: name, Properties: k.props})
	}

	return nil
}

// introspectForeignKeys runs after every table's columns exist, reading
// key_column_usage rows that reference another table.
func introspectForeignKeys(ic *introspectCtx, e *model.EntityType, schema *model.Schema) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT
			kcu.constraint_name,
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			rc.delete_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON kcu.constraint_schema = rc.constraint_schema
			AND kcu.constraint_name = rc.constraint_name
		WHERE kcu.table_schema = DATABASE()
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.constraint_name, kcu.ordinal_position
	`, e.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	var order []string
	fks := make(map[string]*model.ForeignKey)

	for rows.Next() {
		var name, column, refTable, refColumn, deleteRule sql.NullString
		if err := rows.Scan(&name, &column, &refTable, &refColumn, &deleteRule); err != nil {
			return err
		}

		fk, ok := fks[name.String]
		if !ok {
			principal := schema.FindEntity(refTable.String)
			if principal == nil {
				return fmt.Errorf("mysqlintrospect: table %s: foreign key %s references unknown table %s",
					e.Name, name.String, refTable.String)
			}
			fk = &model.ForeignKey{
				Name:            name.String,
				PrincipalEntity: principal,
				OnDelete:        normalizeDeleteRule(deleteRule.String),
			}
			fks[name.String] = fk
			order = append(order, name.String)
		}

		p := e.FindProperty(column.String)
		pp := fk.PrincipalEntity.FindProperty(refColumn.String)
		if p == nil || pp == nil {
			return fmt.Errorf("mysqlintrospect: table %s: foreign key %s names unknown column",
				e.Name, name.String)
		}
		fk.Properties = append(fk.Properties, p)
		fk.PrincipalProperties = append(fk.PrincipalProperties, pp)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, name := range order {
		e.ForeignKeys = append(e.ForeignKeys, fks[name])
	}
	return nil
}

func normalizeDeleteRule(rule string) model.ReferentialAction {
	switch rule {
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

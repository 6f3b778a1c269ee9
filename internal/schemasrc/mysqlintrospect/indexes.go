package mysqlintrospect

import (
	"database/sql"
	"fmt"
	"strings"

	"schemamig/internal/model"
)

func introspectIndexes(ic *introspectCtx, e *model.EntityType) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT
			i.index_name,
			i.non_unique,
			GROUP_CONCAT(c.column_name ORDER BY c.seq_in_index SEPARATOR ', ')
		FROM information_schema.statistics i
		JOIN information_schema.statistics c
			ON i.table_schema = c.table_schema
			AND i.table_name = c.table_name
			AND i.index_name = c.index_name
		WHERE i.table_schema = DATABASE() AND i.table_name = ?
		GROUP BY i.index_name, i.non_unique
	`, e.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var indexName, unique, columns sql.NullString
		if err := rows.Scan(&indexName, &unique, &columns); err != nil {
			return err
		}

		// The primary key and unique constraints surface here too but
		// are already modeled as keys.
		if indexName.String == "PRIMARY" || isConstraintIndex(e, indexName.String) {
			continue
		}

		idx := &model.Index{
			Name:   indexName.String,
			Unique: unique.String == "0",
		}
		for _, col := range strings.Split(columns.String, ", ") {
			p := e.FindProperty(col)
			if p == nil {
				return fmt.Errorf("mysqlintrospect: table %s: index %s names unknown column %s",
					e.Name, indexName.String, col)
			}
			idx.Properties = append(idx.Properties, p)
		}

		e.Indexes = append(e.Indexes, idx)
	}

	return rows.Err()
}

func isConstraintIndex(e *model.EntityType, name string) bool {
	for _, k := range e.Keys {
		if k.Name == name {
			return true
		}
	}
	return false
}

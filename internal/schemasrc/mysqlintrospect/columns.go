package mysqlintrospect

import (
	"database/sql"
	"strings"

	"schemamig/internal/model"
)

func introspectColumns(ic *introspectCtx, e *model.EntityType) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.column_default,
			c.extra,
			c.character_maximum_length,
			c.generation_expression
		FROM information_schema.columns c
		WHERE c.table_schema = DATABASE() AND c.table_name = ?
		ORDER BY c.ordinal_position
	`, e.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, colType, nullable, defaultVal, extra, genExpr sql.NullString
		var maxLength sql.NullInt64
		if err := rows.Scan(&name, &colType, &nullable, &defaultVal, &extra, &maxLength, &genExpr); err != nil {
			return err
		}

		p := &model.Property{
			Name:                name.String,
			Kind:                normalizeKind(colType.String),
			Nullable:            nullable.String == "YES",
			ValueGeneratedOnAdd: strings.Contains(extra.String, "auto_increment"),
		}
		if maxLength.Valid && p.Kind == model.KindString {
			l := int(maxLength.Int64)
			p.MaxLength = &l
		}
		if defaultVal.Valid {
			v := defaultVal.String
			p.DefaultValue = &v
		}
		if genExpr.Valid && genExpr.String != "" {
			p.StoreComputed = strings.Contains(extra.String, "STORED")
		}

		e.Properties = append(e.Properties, p)
	}

	return rows.Err()
}

type kindRule struct {
	kind       model.Kind
	substrings []string
}

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

// normalizeKind maps a raw column_type (e.g. "varchar(255)") to a
// logical kind by case-insensitive substring containment, first rule
// wins.
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

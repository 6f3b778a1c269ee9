// Package mysqlintrospect snapshots a live MySQL database into a
// model.Schema usable as a differ input. It reads information_schema
// only; it never locks or mutates the target database.
package mysqlintrospect

import (
	"context"
	"database/sql"

	"github.com/sirupsen/logrus"

	"schemamig/internal/model"
)

// Introspecter reads a schema model out of a live MySQL connection.
type Introspecter struct {
	log logrus.FieldLogger
}

// New constructs an Introspecter. A nil logger disables progress logs.
func New(log logrus.FieldLogger) *Introspecter {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Introspecter{log: log}
}

type introspectCtx struct {
	db  *sql.DB
	ctx context.Context
}

// Introspect builds a model.Schema from the connection's current
// database.
func (i *Introspecter) Introspect(ctx context.Context, db *sql.DB) (*model.Schema, error) {
	ic := &introspectCtx{db: db, ctx: ctx}

	var dbName string
	if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&dbName); err != nil {
		return nil, err
	}
	i.log.WithField("database", dbName).Debug("introspecting schema")

	schema := &model.Schema{}
	entities, err := introspectTables(ic)
	if err != nil {
		return nil, err
	}

	for _, e := range entities {
		if err := introspectColumns(ic, e); err != nil {
			return nil, err
		}
		if err := introspectKeys(ic, e); err != nil {
			return nil, err
		}
		if err := introspectIndexes(ic, e); err != nil {
			return nil, err
		}
		i.log.WithField("table", e.Name).Debug("introspected table")
		schema.Entities = append(schema.Entities, e)
	}

	// Foreign keys reference tables introspected above; resolve them
	// once every entity carries its columns.
	for _, e := range entities {
		if err := introspectForeignKeys(ic, e, schema); err != nil {
			return nil, err
		}
	}

	return schema, nil
}

func introspectTables(ic *introspectCtx) ([]*model.EntityType, error) {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []*model.EntityType
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		entities = append(entities, &model.EntityType{
			Name:     name,
			HasTable: true,
			Table:    model.SchemaName{Name: name},
		})
	}
	return entities, rows.Err()
}

package preprocess

import (
	"fmt"

	"schemamig/internal/migrerr"
	"schemamig/internal/model"
	"schemamig/internal/opfactory"
)

// TempTablePrefix marks the intermediate table of an in-flight rebuild.
// A table carrying this prefix after a migration run is the leftover of
// a rebuild that failed between steps.
const TempTablePrefix = "__mig_tmp__"

// Restricted rewrites the differ's stream for a dialect (SQLite) that
// cannot alter most table subordinates in place. Operations targeting a
// table accumulate in a per-table handler; a handler upgrades one way
// through None -> CreateTable|AlterTable -> RebuildTable, and on
// finalization a RebuildTable handler synthesizes the
// rename -> recreate -> copy-data -> drop protocol.
type Restricted struct {
	factory *opfactory.Factory
}

// NewRestricted constructs a Restricted pre-processor. The factory must
// be bound to the restricted dialect's type mapper, since rebuild
// re-creates tables from the target model through it.
func NewRestricted(factory *opfactory.Factory) *Restricted {
	return &Restricted{factory: factory}
}

type handlerMode int

const (
	modeCreate handlerMode = iota
	modeAlter
	modeRebuild
)

// tableHandler accumulates the pending operations of one table.
type tableHandler struct {
	mode    handlerMode
	create  model.CreateTableOperation
	pending []model.Operation

	// initialName is the table's name when the handler was installed
	// (its name in the source model); currentName tracks swallowed
	// renames and moves while in rebuild mode.
	initialName model.SchemaName
	currentName model.SchemaName

	// columnNamePairs maps a column's current name back to its name in
	// the source table, driving the copy-data column lists. Renames
	// re-key an entry; drops remove it.
	columnNamePairs map[string]string
}

type restrictedRun struct {
	pre            *Restricted
	source, target *model.Schema
	handlers       []*tableHandler
	byName         map[model.SchemaName]*tableHandler
	out            []model.Operation
	deferred       []model.Operation
}

// Process implements Processor for the restricted dialect.
func (r *Restricted) Process(ops []model.Operation, source, target *model.Schema) ([]model.Operation, error) {
	run := &restrictedRun{
		pre:    r,
		source: source,
		target: target,
		byName: make(map[model.SchemaName]*tableHandler),
	}
	for _, op := range ops {
		if err := run.process(op); err != nil {
			return nil, err
		}
	}
	if err := run.flushAll(); err != nil {
		return nil, err
	}
	return append(run.out, run.deferred...), nil
}

func (run *restrictedRun) process(op model.Operation) error {
	switch o := op.(type) {
	case model.CreateTableOperation:
		if h, ok := run.byName[o.Name]; ok {
			if err := run.flush(h); err != nil {
				return err
			}
		}
		run.install(&tableHandler{
			mode:        modeCreate,
			create:      o,
			initialName: o.Name,
			currentName: o.Name,
		})
		return nil

	case model.DropTableOperation:
		if h, ok := run.byName[o.Name]; ok {
			if err := run.flush(h); err != nil {
				return err
			}
		}
		run.out = append(run.out, o)
		return nil

	case model.RenameTableOperation:
		h := run.handlerFor(o.Name)
		newName := model.SchemaName{Schema: o.Name.Schema, Name: o.NewName}
		if h.mode == modeRebuild {
			run.rekey(h, newName)
			return nil
		}
		h.pending = append(h.pending, o)
		run.rekey(h, newName)
		return nil

	case model.MoveTableOperation:
		h := run.handlerFor(o.Name)
		newName := model.SchemaName{Schema: o.NewSchema, Name: o.Name.Name}
		if h.mode == modeRebuild {
			run.rekey(h, newName)
			return nil
		}
		h.pending = append(h.pending, o)
		run.rekey(h, newName)
		return nil

	case model.AddColumnOperation:
		h := run.handlerFor(o.Table)
		if h.mode == modeRebuild {
			// The rebuilt table is created from the target model, which
			// already carries the column; it has no source data to copy.
			return nil
		}
		h.pending = append(h.pending, o)
		return nil

	case model.AddForeignKeyOperation:
		h := run.handlerFor(o.Table)
		if h.mode == modeCreate {
			for _, fk := range h.create.ForeignKeys {
				if fk.Name == o.ForeignKey.Name {
					return nil // already inlined in the CREATE body
				}
			}
			return migrerr.NewInvalidOperationSequence(fmt.Sprintf(
				"foreign key %s is not declared in the created table %s", o.ForeignKey.Name, o.Table.Name))
		}
		run.upgrade(h)
		return nil

	case model.DropColumnOperation:
		h := run.rebuildHandlerFor(o.Table)
		delete(h.columnNamePairs, o.ColumnName)
		return nil

	case model.RenameColumnOperation:
		h := run.rebuildHandlerFor(o.Table)
		if orig, ok := h.columnNamePairs[o.OldName]; ok {
			delete(h.columnNamePairs, o.OldName)
			h.columnNamePairs[o.NewName] = orig
		}
		return nil

	case model.AlterColumnOperation:
		run.rebuildHandlerFor(o.Table)
		return nil
	case model.AddDefaultConstraintOperation:
		run.rebuildHandlerFor(o.Table)
		return nil
	case model.DropDefaultConstraintOperation:
		run.rebuildHandlerFor(o.Table)
		return nil
	case model.AddPrimaryKeyOperation:
		run.rebuildHandlerFor(o.Table)
		return nil
	case model.DropPrimaryKeyOperation:
		run.rebuildHandlerFor(o.Table)
		return nil
	case model.AddUniqueConstraintOperation:
		run.rebuildHandlerFor(o.Table)
		return nil
	case model.DropUniqueConstraintOperation:
		run.rebuildHandlerFor(o.Table)
		return nil
	case model.DropForeignKeyOperation:
		run.rebuildHandlerFor(o.Table)
		return nil

	case model.CreateIndexOperation:
		if err := run.flushTable(o.Table); err != nil {
			return err
		}
		run.out = append(run.out, o)
		return nil

	case model.DropIndexOperation:
		if err := run.flushTable(o.Table); err != nil {
			return err
		}
		run.out = append(run.out, o)
		return nil

	case model.RenameIndexOperation:
		// SQLite has no index rename; expand to drop + create. The
		// create must see the final table, so every pending handler is
		// forced out first.
		if err := run.flushAll(); err != nil {
			return err
		}
		run.out = append(run.out,
			model.DropIndexOperation{Table: o.Table, Name: o.OldName},
			model.CreateIndexOperation{Table: o.Table, Index: o.Index},
		)
		return nil

	default:
		// Sequence and database operations pass through untouched; the
		// generator is the site that rejects what the dialect cannot
		// express.
		run.out = append(run.out, op)
		return nil
	}
}

// handlerFor returns the table's current handler, installing an
// AlterTable handler lazily for a table already present in source.
func (run *restrictedRun) handlerFor(name model.SchemaName) *tableHandler {
	if h, ok := run.byName[name]; ok {
		return h
	}
	h := &tableHandler{mode: modeAlter, initialName: name, currentName: name}
	run.install(h)
	return h
}

// rebuildHandlerFor returns the table's handler upgraded to rebuild mode.
func (run *restrictedRun) rebuildHandlerFor(name model.SchemaName) *tableHandler {
	h := run.handlerFor(name)
	run.upgrade(h)
	return h
}

// upgrade moves an AlterTable handler into rebuild mode. Accumulated
// supported operations are discarded: the rebuild re-creates the table
// from the target model, which already reflects them, and copy-data only
// carries columns that exist in the source.
func (run *restrictedRun) upgrade(h *tableHandler) {
	if h.mode == modeRebuild {
		return
	}
	h.mode = modeRebuild
	h.pending = nil
	h.columnNamePairs = make(map[string]string)
	if e := run.source.FindEntityByTable(h.initialName); e != nil {
		for _, p := range e.Properties {
			col := p.EffectiveColumnName()
			h.columnNamePairs[col] = col
		}
	}
}

func (run *restrictedRun) install(h *tableHandler) {
	run.handlers = append(run.handlers, h)
	run.byName[h.currentName] = h
}

func (run *restrictedRun) rekey(h *tableHandler, newName model.SchemaName) {
	delete(run.byName, h.currentName)
	h.currentName = newName
	run.byName[newName] = h
}

func (run *restrictedRun) flushTable(name model.SchemaName) error {
	if h, ok := run.byName[name]; ok {
		return run.flush(h)
	}
	return nil
}

func (run *restrictedRun) flushAll() error {
	for _, h := range run.handlers {
		if run.byName[h.currentName] != h {
			continue
		}
		if err := run.flush(h); err != nil {
			return err
		}
	}
	return nil
}

// flush emits a handler's pending operations and retires it.
func (run *restrictedRun) flush(h *tableHandler) error {
	delete(run.byName, h.currentName)
	switch h.mode {
	case modeCreate:
		run.out = append(run.out, h.create)
		run.out = append(run.out, h.pending...)
		return nil
	case modeAlter:
		run.out = append(run.out, h.pending...)
		return nil
	default:
		return run.flushRebuild(h)
	}
}

// flushRebuild emits the rebuild-table protocol: rename the old table
// out of the way when its name collides with the target, create the
// target table, copy the surviving columns, and defer the drop of the
// old table until after every other handler has emitted.
func (run *restrictedRun) flushRebuild(h *tableHandler) error {
	entity := run.target.FindEntityByTable(h.currentName)
	if entity == nil {
		return migrerr.NewInvalidOperationSequence(fmt.Sprintf(
			"table %s undergoing rebuild has no target definition", h.currentName.Name))
	}

	copySource := h.initialName
	if h.currentName == h.initialName {
		temp := TempTablePrefix + h.initialName.Name
		run.out = append(run.out, model.RenameTableOperation{Name: h.initialName, NewName: temp})
		copySource = model.SchemaName{Schema: h.initialName.Schema, Name: temp}
	}

	create := run.pre.factory.CreateTable(entity)
	run.out = append(run.out, create)

	var sourceCols, targetCols []string
	for _, p := range entity.Properties {
		col := p.EffectiveColumnName()
		if orig, ok := h.columnNamePairs[col]; ok {
			targetCols = append(targetCols, col)
			sourceCols = append(sourceCols, orig)
		}
	}
	if len(targetCols) > 0 {
		run.out = append(run.out, model.CopyDataOperation{
			SourceTable:   copySource,
			SourceColumns: sourceCols,
			TargetTable:   create.Name,
			TargetColumns: targetCols,
		})
	}

	run.deferred = append(run.deferred, model.DropTableOperation{Name: copySource})
	return nil
}

package modeldiff

import (
	"schemamig/internal/model"
	"schemamig/internal/namegen"
	"schemamig/internal/opfactory"
)

// emitTableMovesAndRenames returns the MoveTable/RenameTable operations
// for every surviving pair. Moves come first so each rename's Name
// argument already reflects the post-move schema; the renames of one
// schema form a single namespace and go through ResolveCycles together,
// so a table-name swap across two pairs gets a temp intermediary
// instead of two colliding renames.
func emitTableMovesAndRenames(pairs []entityPair, factory *opfactory.Factory) []model.Operation {
	var out []model.Operation
	var schemas []string
	itemsBySchema := make(map[string][]RenameItem)

	for _, p := range pairs {
		source, target := namegen.FullTableName(p.Source), namegen.FullTableName(p.Target)
		if source.Schema != target.Schema {
			out = append(out, factory.MoveTable(source, target.Schema))
		}
		if source.Name != target.Name {
			if _, seen := itemsBySchema[target.Schema]; !seen {
				schemas = append(schemas, target.Schema)
			}
			itemsBySchema[target.Schema] = append(itemsBySchema[target.Schema], RenameItem{Old: source.Name, New: target.Name})
		}
	}

	for _, schema := range schemas {
		for _, it := range ResolveCycles(itemsBySchema[schema]) {
			out = append(out, factory.RenameTable(model.SchemaName{Schema: schema, Name: it.Old}, it.New))
		}
	}
	return out
}

// emitTablePairOperations adds every column, primary-key,
// unique-constraint, foreign-key, and index operation for one surviving
// table pair to c.
func emitTablePairOperations(p entityPair, factory *opfactory.Factory, c *model.OperationCollection) {
	source, target := p.Source, p.Target
	table := namegen.FullTableName(target)
	pm := pairProperties(source.Properties, target.Properties)

	emitColumnRenames(pm, source, table, factory, c)
	emitColumnAddsDrops(pm, source, target, table, factory, c)
	emitColumnAlters(pm, source, target, table, factory, c)
	emitPrimaryKey(pm, source, target, table, factory, c)
	emitUniqueConstraints(source, target, table, factory, c)
	emitForeignKeys(pm, source, target, table, factory, c)
	emitIndexes(pm, source, target, table, factory, c)
}

func emitColumnRenames(pm propertyMap, source *model.EntityType, table model.SchemaName, factory *opfactory.Factory, c *model.OperationCollection) {
	var items []RenameItem
	for _, sp := range source.Properties {
		tp, ok := pm[sp]
		if !ok {
			continue
		}
		if sp.EffectiveColumnName() != tp.EffectiveColumnName() {
			items = append(items, RenameItem{Old: sp.EffectiveColumnName(), New: tp.EffectiveColumnName()})
		}
	}
	for _, it := range ResolveCycles(items) {
		c.Add(factory.RenameColumn(table, it.Old, it.New))
	}
}

func emitColumnAddsDrops(pm propertyMap, source, target *model.EntityType, table model.SchemaName, factory *opfactory.Factory, c *model.OperationCollection) {
	matchedTarget := make(map[*model.Property]bool, len(pm))
	for _, tp := range pm {
		matchedTarget[tp] = true
	}
	for _, tp := range target.Properties {
		if !matchedTarget[tp] {
			c.Add(factory.AddColumn(target, table, tp))
		}
	}
	matchedSource := make(map[*model.Property]bool, len(pm))
	for sp := range pm {
		matchedSource[sp] = true
	}
	for _, sp := range source.Properties {
		if !matchedSource[sp] {
			c.Add(factory.DropColumn(table, sp.EffectiveColumnName()))
		}
	}
}

// columnsEquivalentIgnoringDefault reports whether two columns match on
// every structural attribute except default value/expression, letting a
// default-only change route through AddDefaultConstraint/
// DropDefaultConstraint instead of a full AlterColumn (defaults are
// separate constraint objects, not part of the column type itself).
func columnsEquivalentIgnoringDefault(a, b *model.Property) bool {
	return a.Kind == b.Kind &&
		a.ColumnType == b.ColumnType &&
		a.Nullable == b.Nullable &&
		a.ValueGeneratedOnAdd == b.ValueGeneratedOnAdd &&
		a.StoreComputed == b.StoreComputed &&
		a.ConcurrencyToken == b.ConcurrencyToken &&
		intPtrEqual(a.MaxLength, b.MaxLength)
}

func emitColumnAlters(pm propertyMap, source, target *model.EntityType, table model.SchemaName, factory *opfactory.Factory, c *model.OperationCollection) {
	for _, sp := range source.Properties {
		tp, ok := pm[sp]
		if !ok {
			continue
		}
		// The resolved storage type also depends on the key role, which
		// the property attributes alone do not show.
		typeChanged := factory.ColumnSpec(source, sp).ColumnType != factory.ColumnSpec(target, tp).ColumnType
		if !typeChanged && columnsEquivalent(sp, tp) {
			continue
		}
		if !strPtrEqual(sp.DefaultValue, tp.DefaultValue) || !strPtrEqual(sp.DefaultExpression, tp.DefaultExpression) {
			if sp.DefaultValue != nil || sp.DefaultExpression != nil {
				c.Add(factory.DropDefaultConstraint(table, sp.EffectiveColumnName()))
			}
			if tp.DefaultValue != nil || tp.DefaultExpression != nil {
				c.Add(factory.AddDefaultConstraint(table, tp.EffectiveColumnName(), tp.DefaultValue, tp.DefaultExpression))
			}
		}
		if typeChanged || !columnsEquivalentIgnoringDefault(sp, tp) {
			c.Add(factory.AlterColumn(target, table, tp))
		}
	}
}

func emitPrimaryKey(pm propertyMap, source, target *model.EntityType, table model.SchemaName, factory *opfactory.Factory, c *model.OperationCollection) {
	if primaryKeysEquivalent(pm, source.PrimaryKey, target.PrimaryKey) {
		return
	}
	if source.PrimaryKey != nil {
		c.Add(factory.DropPrimaryKey(table, namegen.KeyName(source, source.PrimaryKey)))
	}
	if target.PrimaryKey != nil {
		c.Add(factory.AddPrimaryKey(target, table))
	}
}

// emitUniqueConstraints pairs alternate keys by their resolved name (the
// catalog has no rename operation for them, so a renamed key is a drop
// of the old name plus an add of the new one) and emits
// Add/DropUniqueConstraint for anything not structurally identical
// under that pairing.
func emitUniqueConstraints(source, target *model.EntityType, table model.SchemaName, factory *opfactory.Factory, c *model.OperationCollection) {
	pm := pairProperties(source.Properties, target.Properties)
	matchedTarget := make(map[string]bool, len(target.Keys))
	for _, sk := range source.Keys {
		skName := namegen.AlternateKeyName(source, sk)
		tk := findKeyByName(target, target.Keys, skName)
		if tk == nil {
			c.Add(factory.DropUniqueConstraint(table, skName))
			continue
		}
		tkName := namegen.AlternateKeyName(target, tk)
		matchedTarget[tkName] = true
		if !keysEquivalent(pm, sk, tk) {
			c.Add(factory.DropUniqueConstraint(table, skName))
			c.Add(factory.AddUniqueConstraint(target, table, tk))
		}
	}
	for _, tk := range target.Keys {
		if !matchedTarget[namegen.AlternateKeyName(target, tk)] {
			c.Add(factory.AddUniqueConstraint(target, table, tk))
		}
	}
}

func findKeyByName(e *model.EntityType, keys []*model.Key, name string) *model.Key {
	for _, k := range keys {
		if namegen.AlternateKeyName(e, k) == name {
			return k
		}
	}
	return nil
}

// emitForeignKeys mirrors emitUniqueConstraints: foreign keys are paired
// by name (no rename operation exists for them either). The principal
// side is compared by column name rather than through a full
// cross-entity property map, since the principal entity's own pairing is
// out of scope for this table's diff.
func emitForeignKeys(pm propertyMap, source, target *model.EntityType, table model.SchemaName, factory *opfactory.Factory, c *model.OperationCollection) {
	matchedTarget := make(map[string]bool, len(target.ForeignKeys))
	for _, sfk := range source.ForeignKeys {
		sfkName := namegen.ForeignKeyName(source, sfk)
		tfk := findForeignKeyByName(target, target.ForeignKeys, sfkName)
		if tfk == nil {
			c.Add(factory.DropForeignKey(table, sfkName))
			continue
		}
		tfkName := namegen.ForeignKeyName(target, tfk)
		matchedTarget[tfkName] = true
		principalPM := buildPrincipalMap(sfk, tfk)
		if !foreignKeysEquivalent(pm, principalPM, sfk, tfk) {
			c.Add(factory.DropForeignKey(table, sfkName))
			c.Add(factory.AddForeignKey(target, table, tfk))
		}
	}
	for _, tfk := range target.ForeignKeys {
		if !matchedTarget[namegen.ForeignKeyName(target, tfk)] {
			c.Add(factory.AddForeignKey(target, table, tfk))
		}
	}
}

func findForeignKeyByName(e *model.EntityType, fks []*model.ForeignKey, name string) *model.ForeignKey {
	for _, fk := range fks {
		if namegen.ForeignKeyName(e, fk) == name {
			return fk
		}
	}
	return nil
}

func buildPrincipalMap(a, b *model.ForeignKey) propertyMap {
	pm := make(propertyMap, len(a.PrincipalProperties))
	for _, sp := range a.PrincipalProperties {
		for _, tp := range b.PrincipalProperties {
			if sp.EffectiveColumnName() == tp.EffectiveColumnName() {
				pm[sp] = tp
				break
			}
		}
	}
	return pm
}

// emitIndexes pairs indexes structurally (ignoring name) so that a
// property-identical index under a new name is detected as a rename
// rather than a drop-and-create, then emits create/drop for whatever is
// left over. A table's index names are one namespace, so the renames go
// through ResolveCycles together and a name swap between two indexes
// gets a temp intermediary.
func emitIndexes(pm propertyMap, source, target *model.EntityType, table model.SchemaName, factory *opfactory.Factory, c *model.OperationCollection) {
	var items []RenameItem
	renamed := make(map[string]*model.Index)
	targetRemaining := append([]*model.Index(nil), target.Indexes...)
	for _, si := range source.Indexes {
		matchIdx := -1
		for i, ti := range targetRemaining {
			if indexesEquivalent(pm, si, ti) {
				matchIdx = i
				break
			}
		}
		if matchIdx < 0 {
			c.Add(factory.DropIndex(table, namegen.IndexName(source, si)))
			continue
		}
		ti := targetRemaining[matchIdx]
		targetRemaining = append(targetRemaining[:matchIdx], targetRemaining[matchIdx+1:]...)
		siName, tiName := namegen.IndexName(source, si), namegen.IndexName(target, ti)
		if siName != tiName {
			items = append(items, RenameItem{Old: siName, New: tiName})
			renamed[siName] = ti
		}
	}
	// renamed tracks which target index each name currently refers to,
	// so a temp hop still snapshots the right spec.
	for _, it := range ResolveCycles(items) {
		ti := renamed[it.Old]
		delete(renamed, it.Old)
		renamed[it.New] = ti
		c.Add(factory.RenameIndex(target, table, it.Old, it.New, ti))
	}
	for _, ti := range targetRemaining {
		c.Add(factory.CreateIndex(target, table, ti))
	}
}

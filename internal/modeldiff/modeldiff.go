// Package modeldiff implements the model differ: pairing entities,
// properties, keys, indexes, foreign keys, and sequences across two
// schemas, emitting a logical operation sequence in the canonical
// precedence order, and resolving transitive rename cycles. Diff never
// fails; unknown constructs simply produce no operation, and the
// pre-processor and generator are the fail-fast sites.
package modeldiff

import (
	"sort"

	"schemamig/internal/model"
	"schemamig/internal/namegen"
	"schemamig/internal/opfactory"
)

// DefaultFuzzyMatchThreshold is the minimum property-overlap ratio
// required to fuzzy-match a source entity to a target entity whose
// logical name differs.
const DefaultFuzzyMatchThreshold = 0.8

// Options configures a single Diff call.
type Options struct {
	// FuzzyMatchThreshold overrides DefaultFuzzyMatchThreshold when > 0.
	FuzzyMatchThreshold float64
}

func (o Options) threshold() float64 {
	if o.FuzzyMatchThreshold > 0 {
		return o.FuzzyMatchThreshold
	}
	return DefaultFuzzyMatchThreshold
}

// Diff compares source and target and returns the ordered migration
// operations that evolve source's schema into target's.
func Diff(source, target *model.Schema, factory *opfactory.Factory, opts Options) []model.Operation {
	threshold := opts.threshold()

	entityPairs, addedEntities, removedEntities := pairEntities(source.Entities, target.Entities, threshold)
	sequencePairs, addedSequences, removedSequences := pairSequences(source.Sequences, target.Sequences)

	var out []model.Operation

	// 1. Sequence: move, rename, create, drop, alter.
	out = append(out, sequenceOperations(sequencePairs, addedSequences, removedSequences, factory)...)

	// 2. Table: move, rename. All pairs' renames resolve together so
	// cross-pair name swaps get temp intermediaries.
	out = append(out, emitTableMovesAndRenames(entityPairs, factory)...)

	// 3. Table: create, with inline FKs and secondary-index creates for
	// the new table collected alongside.
	sort.SliceStable(addedEntities, func(i, j int) bool { return addedEntities[i].Name < addedEntities[j].Name })
	for _, e := range addedEntities {
		out = append(out, factory.CreateTable(e))
		table := namegen.FullTableName(e)
		for _, idx := range e.Indexes {
			out = append(out, factory.CreateIndex(e, table, idx))
		}
	}

	// 4. Table: drop.
	sort.SliceStable(removedEntities, func(i, j int) bool { return removedEntities[i].Name < removedEntities[j].Name })
	for _, e := range removedEntities {
		out = append(out, factory.DropTable(e))
	}

	// 5. Per surviving table pair: column renames, adds, drops, alters;
	// primary-key drop/add; unique-constraint add/drop; foreign-key
	// add/drop; index rename, create, drop.
	sort.SliceStable(entityPairs, func(i, j int) bool {
		return entityPairs[i].Target.Name < entityPairs[j].Target.Name
	})
	pair := model.NewOperationCollection()
	for _, p := range entityPairs {
		emitTablePairOperations(p, factory, pair)
	}
	out = append(out, pair.Ordered(
		model.KindRenameColumn,
		model.KindAddColumn,
		model.KindDropColumn,
		model.KindAlterColumn,
		model.KindDropDefaultConstraint,
		model.KindAddDefaultConstraint,
		model.KindDropPrimaryKey,
		model.KindAddPrimaryKey,
		model.KindAddUniqueConstraint,
		model.KindDropUniqueConstraint,
		model.KindAddForeignKey,
		model.KindDropForeignKey,
		model.KindRenameIndex,
		model.KindCreateIndex,
		model.KindDropIndex,
	)...)

	return out
}

package modeldiff

import (
	"schemamig/internal/model"
	"schemamig/internal/opfactory"
)

// sequenceOperations builds the sequence-category operations (move,
// rename, create, drop, alter) from the pairing produced by
// pairSequences.
//
// pairSequences matches on exact (name, schema) equality: a sequence pair
// therefore always shares its identity already, so MoveSequence and
// RenameSequence never arise from this pairing alone. Both factory calls
// still run through the shared collection so the emission order stays
// correct if a future identity scheme (e.g. a stable logical name
// distinct from the relational one) starts producing them.
func sequenceOperations(pairs [][2]*model.Sequence, added, removed []*model.Sequence, factory *opfactory.Factory) []model.Operation {
	c := model.NewOperationCollection()

	for _, pair := range pairs {
		old, new := pair[0], pair[1]
		if old.Name.Schema != new.Name.Schema {
			c.Add(factory.MoveSequence(old.Name, new.Name.Schema))
		}
		if old.Name.Name != new.Name.Name {
			c.Add(factory.RenameSequence(old.Name, new.Name.Name))
		}
	}
	for _, s := range added {
		c.Add(factory.CreateSequence(s))
	}
	for _, s := range removed {
		c.Add(factory.DropSequence(s))
	}
	for _, pair := range pairs {
		old, new := pair[0], pair[1]
		if !sequencesEquivalent(old, new) {
			c.Add(factory.AlterSequence(new.Name, new.IncrementBy))
		}
	}

	return c.Ordered(
		model.KindMoveSequence,
		model.KindRenameSequence,
		model.KindCreateSequence,
		model.KindDropSequence,
		model.KindAlterSequence,
	)
}

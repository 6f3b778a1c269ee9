package modeldiff

import "schemamig/internal/model"

// entityPair links a source entity to its matched target entity.
type entityPair struct {
	Source *model.EntityType
	Target *model.EntityType
}

// propertyMap is the global source-property -> target-property map
// produced by property pairing, consulted by every downstream
// structural-equivalence predicate.
type propertyMap map[*model.Property]*model.Property

// pairEntities runs a simple name-equality pass followed by a fuzzy
// pass over the remainders. Entities matched in
// either pass appear in at most one pair.
func pairEntities(source, target []*model.EntityType, threshold float64) (pairs []entityPair, added, removed []*model.EntityType) {
	sourceRemaining := append([]*model.EntityType(nil), source...)
	targetRemaining := append([]*model.EntityType(nil), target...)

	// Simple pass: exact logical-name match.
	var nextSource []*model.EntityType
	for _, s := range sourceRemaining {
		idx := indexOfByName(targetRemaining, s.Name)
		if idx < 0 {
			nextSource = append(nextSource, s)
			continue
		}
		pairs = append(pairs, entityPair{Source: s, Target: targetRemaining[idx]})
		targetRemaining = removeAt(targetRemaining, idx)
	}
	sourceRemaining = nextSource

	// Fuzzy pass over the remainders: each source entity (in source
	// order) claims the best-scoring remaining target entity that
	// clears the threshold. Processing in source order implements the
	// "ties break by first-found in source order" rule, since an
	// earlier source entity removes its target before a later source
	// entity can consider it.
	var stillUnmatched []*model.EntityType
	for _, s := range sourceRemaining {
		bestIdx, bestScore := -1, -1.0
		for i, t := range targetRemaining {
			score := fuzzyMatchScore(s, t)
			if score > bestScore {
				bestScore, bestIdx = score, i
			}
		}
		if bestIdx >= 0 && bestScore >= threshold {
			pairs = append(pairs, entityPair{Source: s, Target: targetRemaining[bestIdx]})
			targetRemaining = removeAt(targetRemaining, bestIdx)
			continue
		}
		stillUnmatched = append(stillUnmatched, s)
	}

	removed = stillUnmatched
	added = targetRemaining
	return pairs, added, removed
}

// fuzzyMatchScore is the overlap ratio: matched equivalent-property
// pairs over (|source.props|+|target.props|)/2.
func fuzzyMatchScore(s, t *model.EntityType) float64 {
	denom := float64(len(s.Properties)+len(t.Properties)) / 2
	if denom == 0 {
		return 0
	}
	matched := 0
	used := make(map[*model.Property]bool, len(t.Properties))
	for _, sp := range s.Properties {
		for _, tp := range t.Properties {
			if used[tp] {
				continue
			}
			if equivalentProperties(sp, tp) {
				matched++
				used[tp] = true
				break
			}
		}
	}
	return float64(matched) / denom
}

// equivalentProperties is the fuzzy-matching predicate: same property
// name and same primitive kind.
func equivalentProperties(a, b *model.Property) bool {
	return a.Name == b.Name && a.Kind == b.Kind
}

// pairProperties matches first by property name, then, among the
// unmatched, by column name.
func pairProperties(source, target []*model.Property) propertyMap {
	pm := make(propertyMap)
	usedTarget := make(map[*model.Property]bool, len(target))
	usedSource := make(map[*model.Property]bool, len(source))

	for _, sp := range source {
		for _, tp := range target {
			if usedTarget[tp] {
				continue
			}
			if sp.Name == tp.Name {
				pm[sp] = tp
				usedSource[sp] = true
				usedTarget[tp] = true
				break
			}
		}
	}

	for _, sp := range source {
		if usedSource[sp] {
			continue
		}
		for _, tp := range target {
			if usedTarget[tp] {
				continue
			}
			if sp.EffectiveColumnName() == tp.EffectiveColumnName() {
				pm[sp] = tp
				usedSource[sp] = true
				usedTarget[tp] = true
				break
			}
		}
	}

	return pm
}

// pairSequences matches on exact (name, schema) equality, no fuzzy
// matching.
func pairSequences(source, target []*model.Sequence) (pairs [][2]*model.Sequence, added, removed []*model.Sequence) {
	targetRemaining := append([]*model.Sequence(nil), target...)
	for _, s := range source {
		idx := -1
		for i, t := range targetRemaining {
			if t.Name.Equal(s.Name) {
				idx = i
				break
			}
		}
		if idx < 0 {
			removed = append(removed, s)
			continue
		}
		pairs = append(pairs, [2]*model.Sequence{s, targetRemaining[idx]})
		targetRemaining = append(targetRemaining[:idx], targetRemaining[idx+1:]...)
	}
	added = targetRemaining
	return pairs, added, removed
}

func indexOfByName(entities []*model.EntityType, name string) int {
	for i, e := range entities {
		if e.Name == name {
			return i
		}
	}
	return -1
}

func removeAt(entities []*model.EntityType, idx int) []*model.EntityType {
	out := append([]*model.EntityType(nil), entities[:idx]...)
	return append(out, entities[idx+1:]...)
}

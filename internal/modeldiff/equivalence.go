package modeldiff

import "schemamig/internal/model"

// columnsEquivalent reports whether two paired properties declare the
// same column: same primitive kind, same storage-type override, same default value,
// same default expression, same nullability, same generate-on-add, same
// store-computed, same concurrency-token, same max-length.
func columnsEquivalent(a, b *model.Property) bool {
	return a.Kind == b.Kind &&
		a.ColumnType == b.ColumnType &&
		strPtrEqual(a.DefaultValue, b.DefaultValue) &&
		strPtrEqual(a.DefaultExpression, b.DefaultExpression) &&
		a.Nullable == b.Nullable &&
		a.ValueGeneratedOnAdd == b.ValueGeneratedOnAdd &&
		a.StoreComputed == b.StoreComputed &&
		a.ConcurrencyToken == b.ConcurrencyToken &&
		intPtrEqual(a.MaxLength, b.MaxLength)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// mapsThrough reports whether every property in a maps (via pm) to the
// corresponding property in b, pairwise and in order.
func mapsThrough(pm propertyMap, a, b []*model.Property) bool {
	if len(a) != len(b) {
		return false
	}
	for i, sp := range a {
		if pm[sp] != b[i] {
			return false
		}
	}
	return true
}

// primaryKeysEquivalent: same key name and property lists that
// pairwise map through pm.
func primaryKeysEquivalent(pm propertyMap, a, b *model.PrimaryKey) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name == b.Name && mapsThrough(pm, a.Properties, b.Properties)
}

// foreignKeysEquivalent: same FK name, and both the dependent and the
// referenced property lists map.
func foreignKeysEquivalent(pm propertyMap, principalPM propertyMap, a, b *model.ForeignKey) bool {
	if a.Name != b.Name {
		return false
	}
	if !mapsThrough(pm, a.Properties, b.Properties) {
		return false
	}
	return mapsThrough(principalPM, a.PrincipalProperties, b.PrincipalProperties)
}

// keysEquivalent mirrors primaryKeysEquivalent for alternate (unique) keys.
func keysEquivalent(pm propertyMap, a, b *model.Key) bool {
	return a.Name == b.Name && mapsThrough(pm, a.Properties, b.Properties)
}

// indexesEquivalent: same uniqueness and property lists map. Name
// mismatch among equivalents is how a rename is detected (handled by
// the caller).
func indexesEquivalent(pm propertyMap, a, b *model.Index) bool {
	return a.Unique == b.Unique && mapsThrough(pm, a.Properties, b.Properties)
}

// sequencesEquivalent: same increment-by.
func sequencesEquivalent(a, b *model.Sequence) bool {
	return a.IncrementBy == b.IncrementBy
}

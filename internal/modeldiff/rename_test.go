package modeldiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertUniquePrefixes checks the core rename invariant: applied in
// order, no step ever produces two objects sharing a name.
func assertUniquePrefixes(t *testing.T, initial []string, renames []RenameItem) {
	t.Helper()
	names := make(map[string]bool, len(initial))
	for _, n := range initial {
		names[n] = true
	}
	for _, r := range renames {
		require.True(t, names[r.Old], "rename source %q does not exist", r.Old)
		require.False(t, names[r.New], "rename target %q collides", r.New)
		delete(names, r.Old)
		names[r.New] = true
	}
}

func TestResolveCyclesEmpty(t *testing.T) {
	assert.Nil(t, ResolveCycles(nil))
}

func TestResolveCyclesIndependentRenames(t *testing.T) {
	items := []RenameItem{{Old: "A", New: "X"}, {Old: "B", New: "Y"}}
	out := ResolveCycles(items)
	assert.Equal(t, items, out)
	assertUniquePrefixes(t, []string{"A", "B"}, out)
}

func TestResolveCyclesChainOrderedTailFirst(t *testing.T) {
	// A->B while B->C: B must vacate before A arrives.
	items := []RenameItem{{Old: "A", New: "B"}, {Old: "B", New: "C"}}
	out := ResolveCycles(items)
	require.Equal(t, []RenameItem{{Old: "B", New: "C"}, {Old: "A", New: "B"}}, out)
	assertUniquePrefixes(t, []string{"A", "B"}, out)
}

func TestResolveCyclesSwap(t *testing.T) {
	items := []RenameItem{{Old: "A", New: "B"}, {Old: "B", New: "A"}}
	out := ResolveCycles(items)
	require.Len(t, out, 3)
	assert.Equal(t, RenameItem{Old: "A", New: "__mig_tmp__0"}, out[0])
	assert.Equal(t, RenameItem{Old: "B", New: "A"}, out[1])
	assert.Equal(t, RenameItem{Old: "__mig_tmp__0", New: "B"}, out[2])
	assertUniquePrefixes(t, []string{"A", "B"}, out)
}

func TestResolveCyclesThreeCycle(t *testing.T) {
	items := []RenameItem{
		{Old: "A", New: "B"},
		{Old: "B", New: "C"},
		{Old: "C", New: "A"},
	}
	out := ResolveCycles(items)
	// One temp name breaks a cycle of any length: the first rename is
	// split into two temp hops, so k renames become k+1.
	require.Len(t, out, len(items)+1)
	assertUniquePrefixes(t, []string{"A", "B", "C"}, out)
}

func TestResolveCyclesMixedChainAndCycle(t *testing.T) {
	items := []RenameItem{
		{Old: "P", New: "Q"},
		{Old: "A", New: "B"},
		{Old: "B", New: "A"},
		{Old: "X", New: "Y"},
		{Old: "Y", New: "Z"},
	}
	out := ResolveCycles(items)
	assertUniquePrefixes(t, []string{"P", "A", "B", "X", "Y"}, out)

	// Every original rename must still be realized: each Old ends up
	// under its intended New name once the sequence has been applied.
	final := map[string]string{}
	for _, n := range []string{"P", "A", "B", "X", "Y"} {
		final[n] = n
	}
	for _, r := range out {
		for orig, cur := range final {
			if cur == r.Old {
				final[orig] = r.New
			}
		}
	}
	assert.Equal(t, "Q", final["P"])
	assert.Equal(t, "B", final["A"])
	assert.Equal(t, "A", final["B"])
	assert.Equal(t, "Y", final["X"])
	assert.Equal(t, "Z", final["Y"])
}

package owl2_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/owl2go/reasoner/pkg/owl2"
)

func TestEqualityReasonerUnionFind(t *testing.T) {
	mm := owl2.NewMemoryManager(0)
	eq := owl2.NewEqualityReasoner(mm)

	eq.MakeSet(1)
	eq.MakeSet(2)
	eq.MakeSet(3)

	require.False(t, eq.SameRepresentative(1, 2))

	clash, _ := eq.Same(1, 2, owl2.EmptyDepSet())
	require.False(t, clash)
	require.True(t, eq.SameRepresentative(1, 2))
	require.False(t, eq.SameRepresentative(1, 3))

	clash, _ = eq.Same(2, 3, owl2.EmptyDepSet())
	require.False(t, clash)
	require.True(t, eq.SameRepresentative(1, 3), "union is transitive across merges")
}

func TestEqualityReasonerDifferentFromClashesWithSame(t *testing.T) {
	mm := owl2.NewMemoryManager(0)
	eq := owl2.NewEqualityReasoner(mm)
	eq.MakeSet(1)
	eq.MakeSet(2)

	clash, _ := eq.Different(1, 2, owl2.EmptyDepSet())
	require.False(t, clash)

	clash, _ = eq.Same(1, 2, owl2.EmptyDepSet())
	require.True(t, clash, "merging two nodes already marked different-from is a clash")
}

func TestEqualityReasonerSameThenDifferentClashes(t *testing.T) {
	mm := owl2.NewMemoryManager(0)
	eq := owl2.NewEqualityReasoner(mm)
	eq.MakeSet(1)
	eq.MakeSet(2)

	clash, _ := eq.Same(1, 2, owl2.EmptyDepSet())
	require.False(t, clash)

	clash, _ = eq.Different(1, 2, owl2.EmptyDepSet())
	require.True(t, clash, "asserting different-from on already-merged nodes is a clash")
}

func TestEqualityReasonerRewindUndoesUnion(t *testing.T) {
	mm := owl2.NewMemoryManager(0)
	eq := owl2.NewEqualityReasoner(mm)
	eq.MakeSet(1)
	eq.MakeSet(2)

	mark := mm.Mark()
	_, _ = eq.Same(1, 2, owl2.EmptyDepSet())
	require.True(t, eq.SameRepresentative(1, 2))

	require.NoError(t, mm.Rewind(mark))
	require.False(t, eq.SameRepresentative(1, 2), "rewinding past the union should restore separate sets")
}

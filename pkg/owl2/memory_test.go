package owl2_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/owl2go/reasoner/pkg/owl2"
)

func TestMemoryManagerTrailRewind(t *testing.T) {
	mm := owl2.NewMemoryManager(0)

	counter := 0
	mark := mm.Mark()

	mm.Record(func() { counter-- })
	counter++
	mm.Record(func() { counter -= 10 })
	counter += 10

	require.Equal(t, 11, counter)

	err := mm.Rewind(mark)
	require.NoError(t, err)
	require.Equal(t, 0, counter, "rewinding to the pre-mark watermark should undo both records")
}

func TestMemoryManagerRewindIsIdempotentAtSameMark(t *testing.T) {
	mm := owl2.NewMemoryManager(0)
	mark := mm.Mark()

	require.NoError(t, mm.Rewind(mark))
	require.NoError(t, mm.Rewind(mark))
}

func TestMemoryManagerCapacityLimit(t *testing.T) {
	mm := owl2.NewMemoryManager(2)

	require.NoError(t, mm.CheckCapacity(1))
	mm.NodeCreated()
	mm.NodeCreated()
	require.Error(t, mm.CheckCapacity(1), "exceeding MaxGraphNodes should be reported")
}

func TestMemoryManagerUnboundedWhenMaxIsZero(t *testing.T) {
	mm := owl2.NewMemoryManager(0)
	for i := 0; i < 1000; i++ {
		mm.NodeCreated()
	}
	require.NoError(t, mm.CheckCapacity(1))
}

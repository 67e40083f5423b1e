package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](3)
	require.NoError(t, rq.Enqueue(1))
	require.NoError(t, rq.Enqueue(2))
	require.NoError(t, rq.Enqueue(3))
	assert.True(t, rq.IsFull())
	assert.ErrorIs(t, rq.Enqueue(4), ErrQueueFull)

	v, err := rq.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// wraps around
	require.NoError(t, rq.Enqueue(4))
	for _, want := range []int{2, 3, 4} {
		v, err := rq.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
	assert.True(t, rq.IsEmpty())
	_, err = rq.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestRingQueuePeekAndClear(t *testing.T) {
	rq := NewRingQueue[string](2)
	_, err := rq.Peek()
	assert.ErrorIs(t, err, ErrQueueEmpty)

	require.NoError(t, rq.Enqueue("a"))
	v, err := rq.Peek()
	require.NoError(t, err)
	assert.Equal(t, "a", v)
	assert.Equal(t, 1, rq.Len())

	rq.Clear()
	assert.Equal(t, 0, rq.Len())
	assert.Equal(t, 2, rq.Cap())
	require.NoError(t, rq.Enqueue("b"))
	require.NoError(t, rq.Enqueue("c"))
	assert.True(t, rq.IsFull())
}

func TestRingQueueMinimumSize(t *testing.T) {
	rq := NewRingQueue[int](0)
	assert.Equal(t, 1, rq.Cap())
}

package sequence

import (
	"iter"
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	key int
	seq int
}

func TestHeapOrdersByLess(t *testing.T) {
	h := NewHeap(func(a, b int) bool { return a < b })
	for _, v := range []int{5, 1, 4, 2, 3} {
		h.Push(v)
	}
	var out []int
	for h.Len() > 0 {
		v, ok := h.Pop()
		require.True(t, ok)
		out = append(out, v)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, out)

	_, ok := h.Pop()
	assert.False(t, ok)
	_, ok = h.Peek()
	assert.False(t, ok)
}

func TestHeapFixAndRemove(t *testing.T) {
	h := NewHeap(func(a, b *entry) bool {
		if a.key != b.key {
			return a.key < b.key
		}
		return a.seq < b.seq
	})
	a := h.Push(&entry{key: 10, seq: 0})
	b := h.Push(&entry{key: 20, seq: 1})
	c := h.Push(&entry{key: 30, seq: 2})

	c.Value.key = 1
	h.Fix(c)
	top, _ := h.Peek()
	assert.Same(t, c.Value, top)

	removed, ok := h.Remove(a)
	require.True(t, ok)
	assert.Equal(t, 10, removed.key)
	assert.False(t, a.InHeap())

	_, ok = h.Remove(a)
	assert.False(t, ok)

	first, _ := h.Pop()
	second, _ := h.Pop()
	assert.Same(t, c.Value, first)
	assert.Same(t, b.Value, second)
	assert.False(t, b.InHeap())
	h.Fix(b)
	assert.Equal(t, 0, h.Len())
}

func TestHeapClear(t *testing.T) {
	h := NewHeap(func(a, b int) bool { return a < b })
	item := h.Push(1)
	h.Push(2)
	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.False(t, item.InHeap())
	h.Push(3)
	v, _ := h.Pop()
	assert.Equal(t, 3, v)
}

func TestIterator(t *testing.T) {
	it := From([]int{3, 1, 4, 1, 5, 9, 2, 6})

	assert.Equal(t, []int{4, 2, 6}, it.Filter(func(v int) bool { return v%2 == 0 }).Collect())
	assert.Equal(t, []int{1, 1, 2, 3, 4, 5, 6, 9}, it.Sort(func(a, b int) bool { return a < b }).Collect())
	assert.Len(t, it.Collect(), 8)
	assert.True(t, it.Any(func(v int) bool { return v == 9 }))

	v, ok := it.Find(func(v int) bool { return v > 4 })
	assert.True(t, ok)
	assert.Equal(t, 5, v)

	_, ok = it.Find(func(v int) bool { return v > 100 })
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	var seq iter.Seq2[string, int] = func(yield func(string, int) bool) {
		_ = yield("a", 1) && yield("b", 2)
	}
	assert.Equal(t, []string{"a", "b"}, Keys(seq).Collect())

	levels := map[uint32]int{7: 1, 3: 2, 5: 1, 1: 1}
	got := Keys(maps.All(levels)).
		Filter(func(id uint32) bool { return levels[id] == 1 }).
		Sort(func(a, b uint32) bool { return a < b }).
		Collect()
	assert.Equal(t, []uint32{1, 5, 7}, got)
}

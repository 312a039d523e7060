package sequence

import "container/heap"

// Item is a handle to a value stored in a Heap. Keep it to Fix or Remove the
// value after its ordering key changed.
type Item[T any] struct {
	Value T
	index int
}

// InHeap reports whether the item is still queued.
func (it *Item[T]) InHeap() bool { return it.index >= 0 }

type heapItems[T any] struct {
	items []*Item[T]
	less  func(a, b T) bool
}

func (h *heapItems[T]) Len() int { return len(h.items) }

func (h *heapItems[T]) Less(i, j int) bool {
	return h.less(h.items[i].Value, h.items[j].Value)
}

func (h *heapItems[T]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

func (h *heapItems[T]) Push(x any) {
	item := x.(*Item[T])
	item.index = len(h.items)
	h.items = append(h.items, item)
}

func (h *heapItems[T]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	h.items = old[0 : n-1]
	return item
}

// Heap is a binary min-heap ordered by less.
type Heap[T any] struct {
	h heapItems[T]
}

func NewHeap[T any](less func(a, b T) bool) *Heap[T] {
	hp := &Heap[T]{h: heapItems[T]{less: less}}
	heap.Init(&hp.h)
	return hp
}

func (hp *Heap[T]) Len() int { return hp.h.Len() }

func (hp *Heap[T]) Push(value T) *Item[T] {
	item := &Item[T]{Value: value}
	heap.Push(&hp.h, item)
	return item
}

// Pop removes and returns the least value.
func (hp *Heap[T]) Pop() (T, bool) {
	if hp.h.Len() == 0 {
		var zero T
		return zero, false
	}
	item := heap.Pop(&hp.h).(*Item[T])
	return item.Value, true
}

func (hp *Heap[T]) Peek() (T, bool) {
	if hp.h.Len() == 0 {
		var zero T
		return zero, false
	}
	return hp.h.items[0].Value, true
}

// Fix restores ordering after the item's key changed. No-op for popped items.
func (hp *Heap[T]) Fix(item *Item[T]) {
	if item == nil || !item.InHeap() {
		return
	}
	heap.Fix(&hp.h, item.index)
}

// Remove takes item out of the heap.
func (hp *Heap[T]) Remove(item *Item[T]) (T, bool) {
	if item == nil || !item.InHeap() {
		var zero T
		return zero, false
	}
	removed := heap.Remove(&hp.h, item.index).(*Item[T])
	return removed.Value, true
}

// Clear drops every queued value.
func (hp *Heap[T]) Clear() {
	for _, item := range hp.h.items {
		item.index = -1
	}
	clear(hp.h.items)
	hp.h.items = hp.h.items[:0]
}

package sequence

import (
	"iter"
	"slices"
)

// Iterator chains lazy filters over a sequence. Stages run only when a
// terminal method (Collect, Find, Any) pulls values.
type Iterator[T any] struct {
	seq iter.Seq[T]
}

func From[T any](data []T) *Iterator[T] {
	return &Iterator[T]{seq: slices.Values(data)}
}

func FromSeq[T any](seq iter.Seq[T]) *Iterator[T] {
	return &Iterator[T]{seq: seq}
}

// Keys drops the values of a key/value sequence such as maps.All.
func Keys[K, V any](seq iter.Seq2[K, V]) *Iterator[K] {
	return &Iterator[K]{seq: func(yield func(K) bool) {
		for k := range seq {
			if !yield(k) {
				return
			}
		}
	}}
}

func (i *Iterator[T]) Seq() iter.Seq[T] { return i.seq }

func (i *Iterator[T]) Collect() []T { return slices.Collect(i.seq) }

// Sort materializes the sequence and orders it stably by less.
func (i *Iterator[T]) Sort(less func(a, b T) bool) *Iterator[T] {
	data := i.Collect()
	slices.SortStableFunc(data, func(a, b T) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		}
		return 0
	})
	return From(data)
}

func (i *Iterator[T]) Filter(keep func(T) bool) *Iterator[T] {
	return &Iterator[T]{seq: func(yield func(T) bool) {
		for v := range i.seq {
			if keep(v) && !yield(v) {
				return
			}
		}
	}}
}

// Find stops at the first match.
func (i *Iterator[T]) Find(match func(T) bool) (T, bool) {
	for v := range i.seq {
		if match(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (i *Iterator[T]) Any(match func(T) bool) bool {
	_, ok := i.Find(match)
	return ok
}

// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package array

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"

	"github.com/matrixorigin/mocontainer/pkg/common/moerr"
)

// Array is a fixed-length sequence that owns its backing storage.
// The length only changes through Resize.
type Array[T any] struct {
	data []T
}

// New returns an array of n zero values.
func New[T any](n int) *Array[T] {
	if n < 0 {
		panic(moerr.NewInvalidArg(moerr.Context(), "array length", n))
	}
	return &Array[T]{data: make([]T, n)}
}

// FromSlice returns an array holding a copy of s.
func FromSlice[T any](s []T) *Array[T] {
	a := New[T](len(s))
	copy(a.data, s)
	return a
}

func (a *Array[T]) Len() int {
	return len(a.data)
}

func (a *Array[T]) At(i int) T {
	a.checkIndex(i)
	return a.data[i]
}

// Ref returns a pointer to the element slot at i.
func (a *Array[T]) Ref(i int) *T {
	a.checkIndex(i)
	return &a.data[i]
}

func (a *Array[T]) Write(i int, v T) {
	a.checkIndex(i)
	a.data[i] = v
}

func (a *Array[T]) First() T {
	return a.At(0)
}

func (a *Array[T]) Last() T {
	return a.At(len(a.data) - 1)
}

func (a *Array[T]) Fill(v T) {
	for i := range a.data {
		a.data[i] = v
	}
}

// Resize changes the length to n. Kept elements are preserved, new
// ones are zero.
func (a *Array[T]) Resize(n int) {
	if n < 0 {
		panic(moerr.NewInvalidArg(moerr.Context(), "array length", n))
	}
	if n <= cap(a.data) {
		old := len(a.data)
		a.data = a.data[:n]
		if n > old {
			var zero T
			for i := old; i < n; i++ {
				a.data[i] = zero
			}
		}
		return
	}
	data := make([]T, n)
	copy(data, a.data)
	a.data = data
}

func (a *Array[T]) Swap(i, j int) {
	a.checkIndex(i)
	a.checkIndex(j)
	a.data[i], a.data[j] = a.data[j], a.data[i]
}

// Sort sorts in place by less.
func (a *Array[T]) Sort(less func(x, y T) bool) {
	slices.SortFunc(a.data, less)
}

func (a *Array[T]) Reverse() {
	for i, j := 0, len(a.data)-1; i < j; i, j = i+1, j-1 {
		a.data[i], a.data[j] = a.data[j], a.data[i]
	}
}

// Iter calls fn for every element in index order until fn returns false.
func (a *Array[T]) Iter(fn func(i int, v T) bool) {
	for i, v := range a.data {
		if !fn(i, v) {
			return
		}
	}
}

// Slice exposes the backing storage. It stays owned by the array.
func (a *Array[T]) Slice() []T {
	return a.data
}

// Free drops the backing storage; the array is empty afterwards.
func (a *Array[T]) Free() {
	a.data = nil
}

func (a *Array[T]) checkIndex(i int) {
	if i < 0 || i >= len(a.data) {
		panic(moerr.NewOutOfRange(moerr.Context(), "array", "index %d, length %d", i, len(a.data)))
	}
}

// SortOrdered sorts an array of ordered elements ascending.
func SortOrdered[T constraints.Ordered](a *Array[T]) {
	slices.Sort(a.data)
}

// Index returns the first index holding v, or -1.
func Index[T comparable](a *Array[T], v T) int {
	return slices.Index(a.data, v)
}

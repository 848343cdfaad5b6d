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

package vector

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"

	"github.com/matrixorigin/mocontainer/pkg/common/moerr"
	"github.com/matrixorigin/mocontainer/pkg/container/array"
)

// Vector is a growable sequence. Capacity doubles when a push does
// not fit, starting from 1.
type Vector[T any] struct {
	data []T
}

func New[T any]() *Vector[T] {
	return &Vector[T]{}
}

// NewWithCapacity returns an empty vector with room for n elements.
func NewWithCapacity[T any](n int) *Vector[T] {
	v := New[T]()
	v.Reserve(n)
	return v
}

func (v *Vector[T]) Len() int {
	return len(v.data)
}

func (v *Vector[T]) Cap() int {
	return cap(v.data)
}

func (v *Vector[T]) IsEmpty() bool {
	return len(v.data) == 0
}

func (v *Vector[T]) At(i int) T {
	v.checkIndex(i)
	return v.data[i]
}

// Ref returns a pointer to the element slot at i. It is invalidated by
// any call that grows the vector.
func (v *Vector[T]) Ref(i int) *T {
	v.checkIndex(i)
	return &v.data[i]
}

func (v *Vector[T]) Set(i int, val T) {
	v.checkIndex(i)
	v.data[i] = val
}

func (v *Vector[T]) First() T {
	return v.At(0)
}

func (v *Vector[T]) Last() T {
	return v.At(len(v.data) - 1)
}

func (v *Vector[T]) Push(val T) {
	v.expand(1)
	v.data = append(v.data, val)
}

// Pop removes the last element and returns it.
func (v *Vector[T]) Pop() T {
	if len(v.data) == 0 {
		panic(moerr.NewEmptyVector(moerr.Context()))
	}
	n := len(v.data) - 1
	val := v.data[n]
	var zero T
	v.data[n] = zero
	v.data = v.data[:n]
	return val
}

// Insert puts val at index i, shifting later elements right. i may be
// equal to Len.
func (v *Vector[T]) Insert(i int, val T) {
	if i < 0 || i > len(v.data) {
		panic(moerr.NewOutOfRange(moerr.Context(), "vector", "insert index %d, length %d", i, len(v.data)))
	}
	v.expand(1)
	v.data = slices.Insert(v.data, i, val)
}

// Splice removes n elements starting at i.
func (v *Vector[T]) Splice(i, n int) {
	v.checkRange(i, n)
	old := len(v.data)
	v.data = slices.Delete(v.data, i, i+n)
	v.zeroTail(old)
}

// SwapSplice removes n elements starting at i and fills the hole with
// the last n elements. Order is not preserved.
func (v *Vector[T]) SwapSplice(i, n int) {
	v.checkRange(i, n)
	old := len(v.data)
	copy(v.data[i:i+n], v.data[old-n:])
	v.data = v.data[:old-n]
	v.zeroTail(old)
}

// RemoveFunc removes the first element matching eq and reports whether
// one was found.
func (v *Vector[T]) RemoveFunc(eq func(T) bool) bool {
	i := slices.IndexFunc(v.data, eq)
	if i < 0 {
		return false
	}
	v.Splice(i, 1)
	return true
}

func (v *Vector[T]) Swap(i, j int) {
	v.checkIndex(i)
	v.checkIndex(j)
	v.data[i], v.data[j] = v.data[j], v.data[i]
}

// Extend pushes every element of other.
func (v *Vector[T]) Extend(other *Vector[T]) {
	v.ExtendFrom(other.data)
}

// ExtendFrom pushes every element of vals. Capacity is rounded up to a
// power of two.
func (v *Vector[T]) ExtendFrom(vals []T) {
	if len(vals) == 0 {
		return
	}
	need := len(v.data) + len(vals)
	n2 := 1
	for n2 < need {
		n2 <<= 1
	}
	v.Reserve(n2)
	v.data = append(v.data, vals...)
}

func (v *Vector[T]) Sort(less func(x, y T) bool) {
	slices.SortFunc(v.data, less)
}

func (v *Vector[T]) Reverse() {
	for i, j := 0, len(v.data)-1; i < j; i, j = i+1, j-1 {
		v.data[i], v.data[j] = v.data[j], v.data[i]
	}
}

// Reserve makes room for at least n elements.
func (v *Vector[T]) Reserve(n int) {
	if n <= cap(v.data) {
		return
	}
	data := make([]T, len(v.data), n)
	copy(data, v.data)
	v.data = data
}

// Truncate keeps the first n elements. It never grows the vector.
func (v *Vector[T]) Truncate(n int) {
	if n < 0 {
		panic(moerr.NewInvalidArg(moerr.Context(), "vector truncate", n))
	}
	if n >= len(v.data) {
		return
	}
	old := len(v.data)
	v.data = v.data[:n]
	v.zeroTail(old)
}

// Compact shrinks capacity down to the length.
func (v *Vector[T]) Compact() {
	if len(v.data) == 0 {
		v.data = nil
		return
	}
	v.data = slices.Clip(slices.Clone(v.data))
}

// Clear sets the length to zero and keeps the capacity.
func (v *Vector[T]) Clear() {
	v.Truncate(0)
}

// Iter calls fn for every element in index order until fn returns false.
func (v *Vector[T]) Iter(fn func(i int, val T) bool) {
	for i, val := range v.data {
		if !fn(i, val) {
			return
		}
	}
}

// Slice exposes the live elements. It stays owned by the vector.
func (v *Vector[T]) Slice() []T {
	return v.data
}

// ToArray copies the elements into a fixed-length array.
func (v *Vector[T]) ToArray() *array.Array[T] {
	return array.FromSlice(v.data)
}

func (v *Vector[T]) expand(n int) {
	if len(v.data)+n <= cap(v.data) {
		return
	}
	c := cap(v.data)
	if c == 0 {
		c = 1
	}
	for c < len(v.data)+n {
		c <<= 1
	}
	v.Reserve(c)
}

func (v *Vector[T]) zeroTail(old int) {
	var zero T
	tail := v.data[len(v.data):old]
	for i := range tail {
		tail[i] = zero
	}
}

func (v *Vector[T]) checkIndex(i int) {
	if i < 0 || i >= len(v.data) {
		panic(moerr.NewOutOfRange(moerr.Context(), "vector", "index %d, length %d", i, len(v.data)))
	}
}

func (v *Vector[T]) checkRange(i, n int) {
	if i < 0 || n < 0 || i+n > len(v.data) {
		panic(moerr.NewOutOfRange(moerr.Context(), "vector", "range [%d, %d), length %d", i, i+n, len(v.data)))
	}
}

// Find returns the index of the first element equal to val, or -1.
func Find[T comparable](v *Vector[T], val T) int {
	return slices.Index(v.data, val)
}

// Remove removes the first element equal to val.
func Remove[T comparable](v *Vector[T], val T) bool {
	i := Find(v, val)
	if i < 0 {
		return false
	}
	v.Splice(i, 1)
	return true
}

// SortOrdered sorts ascending.
func SortOrdered[T constraints.Ordered](v *Vector[T]) {
	slices.Sort(v.data)
}

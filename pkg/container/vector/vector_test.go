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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/mocontainer/pkg/common/moerr"
)

func newInts(vals ...int) *Vector[int] {
	v := New[int]()
	for _, val := range vals {
		v.Push(val)
	}
	return v
}

func TestPushPop(t *testing.T) {
	v := New[int]()
	require.True(t, v.IsEmpty())
	for i := 0; i < 1000; i++ {
		v.Push(i)
	}
	require.Equal(t, 1000, v.Len())
	require.Equal(t, 1024, v.Cap())
	require.Equal(t, 0, v.First())
	require.Equal(t, 999, v.Last())
	for i := 999; i >= 0; i-- {
		require.Equal(t, i, v.Pop())
	}
	require.True(t, v.IsEmpty())
	require.Panics(t, func() { v.Pop() })
}

func TestCapacityDoubles(t *testing.T) {
	v := New[int]()
	caps := []int{}
	for i := 0; i < 5; i++ {
		v.Push(i)
		caps = append(caps, v.Cap())
	}
	require.Equal(t, []int{1, 2, 4, 4, 8}, caps)
}

func TestInsert(t *testing.T) {
	v := newInts(1, 3)
	v.Insert(1, 2)
	v.Insert(0, 0)
	v.Insert(v.Len(), 4)
	require.Equal(t, []int{0, 1, 2, 3, 4}, v.Slice())

	defer func() {
		err := recover()
		require.True(t, moerr.IsMoErrCode(err.(error), moerr.ErrOutOfRange))
	}()
	v.Insert(7, 1)
}

func TestSplice(t *testing.T) {
	v := newInts(0, 1, 2, 3, 4, 5)
	v.Splice(1, 2)
	require.Equal(t, []int{0, 3, 4, 5}, v.Slice())

	v = newInts(0, 1, 2, 3, 4, 5)
	v.SwapSplice(1, 2)
	require.Equal(t, []int{0, 4, 5, 3}, v.Slice())

	require.Panics(t, func() { v.Splice(3, 2) })
}

func TestRemoveAndFind(t *testing.T) {
	v := newInts(5, 6, 7, 6)
	require.Equal(t, 1, Find(v, 6))
	require.True(t, Remove(v, 6))
	require.Equal(t, []int{5, 7, 6}, v.Slice())
	require.False(t, Remove(v, 42))
	require.Equal(t, -1, Find(v, 42))

	require.True(t, v.RemoveFunc(func(x int) bool { return x > 6 }))
	require.Equal(t, []int{5, 6}, v.Slice())
	require.False(t, v.RemoveFunc(func(x int) bool { return x > 6 }))
}

func TestExtend(t *testing.T) {
	v := newInts(1, 2, 3)
	v.Extend(newInts(4, 5))
	require.Equal(t, []int{1, 2, 3, 4, 5}, v.Slice())
	require.Equal(t, 8, v.Cap())

	v.ExtendFrom(nil)
	require.Equal(t, 5, v.Len())
}

func TestSortReverseSwap(t *testing.T) {
	v := newInts(3, 1, 2)
	SortOrdered(v)
	require.Equal(t, []int{1, 2, 3}, v.Slice())
	v.Sort(func(x, y int) bool { return x > y })
	require.Equal(t, []int{3, 2, 1}, v.Slice())
	v.Reverse()
	require.Equal(t, []int{1, 2, 3}, v.Slice())
	v.Swap(0, 2)
	require.Equal(t, []int{3, 2, 1}, v.Slice())
}

func TestReserveTruncateCompact(t *testing.T) {
	v := NewWithCapacity[string](10)
	require.Equal(t, 10, v.Cap())
	require.Equal(t, 0, v.Len())

	v.ExtendFrom([]string{"a", "b", "c"})
	v.Truncate(5)
	require.Equal(t, 3, v.Len())
	v.Truncate(1)
	require.Equal(t, []string{"a"}, v.Slice())

	v.Compact()
	require.Equal(t, 1, v.Cap())

	v.Clear()
	require.True(t, v.IsEmpty())
	v.Compact()
	require.Equal(t, 0, v.Cap())
}

func TestSetRefIter(t *testing.T) {
	v := newInts(1, 2, 3)
	v.Set(0, 10)
	*v.Ref(1) = 20
	sum := 0
	v.Iter(func(_ int, val int) bool {
		sum += val
		return true
	})
	require.Equal(t, 33, sum)

	a := v.ToArray()
	v.Set(2, 0)
	require.Equal(t, []int{10, 20, 3}, a.Slice())
}

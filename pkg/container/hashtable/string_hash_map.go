// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hashtable

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/matrixorigin/mocontainer/pkg/common/moerr"
	"github.com/matrixorigin/mocontainer/pkg/common/mpool"
	"github.com/matrixorigin/mocontainer/pkg/config"
	"github.com/matrixorigin/mocontainer/pkg/container/array"
	"github.com/matrixorigin/mocontainer/pkg/logutil"
)

const (
	DefaultCapacity     = 10
	DefaultLoadFactor   = 0.75
	DefaultResizeFactor = 2
)

// defaultPool backs maps created without WithMPool.
var defaultPool = mpool.MustNew("hashtable")

type entry[V any] struct {
	key   []byte
	value V
	next  *entry[V]
}

type mapOptions struct {
	capacity     int
	loadFactor   float64
	resizeFactor int
	hasher       Hasher
	mp           *mpool.MPool
}

type Option func(*mapOptions)

// WithCapacity sets the starting number of buckets.
func WithCapacity(n int) Option {
	return func(o *mapOptions) {
		o.capacity = n
	}
}

// WithLoadFactor sets the size/capacity ratio at which the map grows.
func WithLoadFactor(f float64) Option {
	return func(o *mapOptions) {
		o.loadFactor = f
	}
}

// WithResizeFactor sets the capacity multiplier used when growing.
func WithResizeFactor(n int) Option {
	return func(o *mapOptions) {
		o.resizeFactor = n
	}
}

func WithHasher(h Hasher) Option {
	return func(o *mapOptions) {
		o.hasher = h
	}
}

// WithMPool charges every key copy, entry and bucket array to mp.
func WithMPool(mp *mpool.MPool) Option {
	return func(o *mapOptions) {
		o.mp = mp
	}
}

// StringHashMap maps byte-string keys to values of type V. Collisions
// are chained; the bucket array grows by ResizeFactor once size reaches
// LoadFactor*capacity and never shrinks.
//
// The map owns a private copy of every key. It is not safe for
// concurrent use.
type StringHashMap[V any] struct {
	mapOptions

	buckets []*entry[V]
	size    int

	entrySize  int64
	bucketSize int64
}

func NewStringHashMap[V any](opts ...Option) (*StringHashMap[V], error) {
	o := mapOptions{
		capacity:     DefaultCapacity,
		loadFactor:   DefaultLoadFactor,
		resizeFactor: DefaultResizeFactor,
	}
	for _, opt := range opts {
		opt(&o)
	}
	ctx := moerr.Context()
	if o.capacity <= 0 {
		return nil, moerr.NewInvalidArg(ctx, "hashmap capacity", o.capacity)
	}
	if o.loadFactor <= 0 || o.loadFactor > 1 {
		return nil, moerr.NewInvalidArg(ctx, "hashmap load factor", o.loadFactor)
	}
	if o.resizeFactor < 2 {
		return nil, moerr.NewInvalidArg(ctx, "hashmap resize factor", o.resizeFactor)
	}
	if o.hasher == nil {
		o.hasher = defaultHasher
	}
	if o.mp == nil {
		o.mp = defaultPool
	}

	ht := &StringHashMap[V]{
		mapOptions: o,
		entrySize:  int64(unsafe.Sizeof(entry[V]{})),
		bucketSize: int64(unsafe.Sizeof((*entry[V])(nil))),
	}
	if err := ht.mp.Reserve(ht.bucketBytes(o.capacity)); err != nil {
		return nil, err
	}
	ht.buckets = make([]*entry[V], o.capacity)
	return ht, nil
}

// NewStringHashMapFromConfig builds a map from the [map] section of a
// configuration file.
func NewStringHashMapFromConfig[V any](cfg config.MapParameters, mp *mpool.MPool) (*StringHashMap[V], error) {
	h, err := HasherByName(moerr.Context(), cfg.Hasher)
	if err != nil {
		return nil, err
	}
	return NewStringHashMap[V](
		WithCapacity(cfg.Capacity),
		WithLoadFactor(cfg.LoadFactor),
		WithResizeFactor(cfg.ResizeFactor),
		WithHasher(h),
		WithMPool(mp),
	)
}

func (ht *StringHashMap[V]) Len() int {
	return ht.size
}

func (ht *StringHashMap[V]) IsEmpty() bool {
	return ht.size == 0
}

// Capacity is the current number of buckets.
func (ht *StringHashMap[V]) Capacity() int {
	return len(ht.buckets)
}

func (ht *StringHashMap[V]) Contains(key []byte) bool {
	return ht.find(key) != nil
}

// Get returns a pointer to the stored value. Writes through the pointer
// update the map in place.
func (ht *StringHashMap[V]) Get(key []byte) (*V, bool) {
	e := ht.find(key)
	if e == nil {
		return nil, false
	}
	return &e.value, true
}

// Insert stores value under key, overwriting an existing value. On
// error the map is left exactly as it was.
func (ht *StringHashMap[V]) Insert(key []byte, value V) error {
	if key == nil {
		return moerr.NewInvalidArg(moerr.Context(), "hashmap key", "nil")
	}
	if ht.buckets == nil {
		return moerr.NewInvalidState(moerr.Context(), "hashmap already freed")
	}

	grow := float64(ht.size) >= ht.loadFactor*float64(len(ht.buckets))
	found := ht.find(key)

	var e *entry[V]
	if found == nil {
		kcopy, err := ht.mp.Alloc(len(key))
		if err != nil {
			return err
		}
		if err = ht.mp.Reserve(ht.entrySize); err != nil {
			ht.mp.Free(kcopy)
			return err
		}
		copy(kcopy, key)
		e = &entry[V]{key: kcopy}
	}

	if grow {
		if err := ht.rehash(); err != nil {
			if e != nil {
				ht.mp.Free(e.key)
				ht.mp.Release(ht.entrySize)
			}
			return err
		}
	}

	if found != nil {
		found.value = value
		return nil
	}
	e.value = value
	idx := ht.bucketIndex(e.key)
	e.next = ht.buckets[idx]
	ht.buckets[idx] = e
	ht.size++
	return nil
}

// Remove drops key. Removing an absent key does nothing.
func (ht *StringHashMap[V]) Remove(key []byte) {
	ht.Delete(key)
}

// Delete drops key and reports whether it was present.
func (ht *StringHashMap[V]) Delete(key []byte) bool {
	if key == nil || ht.buckets == nil {
		return false
	}
	idx := ht.bucketIndex(key)
	var prev *entry[V]
	for e := ht.buckets[idx]; e != nil; prev, e = e, e.next {
		if !StrEqual(e.key, key) {
			continue
		}
		if prev == nil {
			ht.buckets[idx] = e.next
		} else {
			prev.next = e.next
		}
		ht.freeEntry(e)
		ht.size--
		return true
	}
	return false
}

// Clear drops every entry and shrinks the bucket array back to the
// starting capacity.
func (ht *StringHashMap[V]) Clear() {
	if ht.buckets == nil {
		return
	}
	oldCap := len(ht.buckets)
	n := ht.size
	ht.freeEntries()
	if oldCap > ht.capacity {
		ht.mp.Release(ht.bucketBytes(oldCap - ht.capacity))
	}
	ht.buckets = make([]*entry[V], ht.capacity)
	logutil.Debug("string hash map cleared",
		zap.Int("entries", n),
		zap.Int("old-capacity", oldCap),
		zap.Int("capacity", ht.capacity))
}

// Free returns all memory to the pool. The map rejects inserts
// afterwards.
func (ht *StringHashMap[V]) Free() {
	if ht.buckets == nil {
		return
	}
	ht.freeEntries()
	ht.mp.Release(ht.bucketBytes(len(ht.buckets)))
	ht.buckets = nil
}

// Keys returns every key, bucket by bucket and head first within a
// chain. The strings share memory with the map: an element is valid
// until its key is removed, or the map is cleared or freed.
func (ht *StringHashMap[V]) Keys() (*array.Array[string], error) {
	// the array lives on the Go heap; check the pool can cover it
	sz := int64(ht.size) * int64(unsafe.Sizeof(""))
	if err := ht.mp.Reserve(sz); err != nil {
		return nil, err
	}
	ht.mp.Release(sz)

	keys := array.New[string](ht.size)
	i := 0
	ht.ForEach(func(key string, _ *V) bool {
		keys.Write(i, key)
		i++
		return true
	})
	return keys, nil
}

// ForEach visits entries in Keys order until fn returns false. fn must
// not insert into or remove from the map.
func (ht *StringHashMap[V]) ForEach(fn func(key string, value *V) bool) {
	for _, head := range ht.buckets {
		for e := head; e != nil; e = e.next {
			if !fn(unsafe.String(unsafe.SliceData(e.key), len(e.key)), &e.value) {
				return
			}
		}
	}
}

func (ht *StringHashMap[V]) InsertString(key string, value V) error {
	return ht.Insert(stringKey(key), value)
}

func (ht *StringHashMap[V]) GetString(key string) (*V, bool) {
	return ht.Get(stringKey(key))
}

func (ht *StringHashMap[V]) ContainsString(key string) bool {
	return ht.Contains(stringKey(key))
}

func (ht *StringHashMap[V]) RemoveString(key string) {
	ht.Remove(stringKey(key))
}

// rehash moves every entry into a bucket array resizeFactor times
// larger. Entries are relinked, never copied.
func (ht *StringHashMap[V]) rehash() error {
	oldCap := len(ht.buckets)
	newCap := oldCap * ht.resizeFactor
	if err := ht.mp.Reserve(ht.bucketBytes(newCap)); err != nil {
		return err
	}
	buckets := make([]*entry[V], newCap)
	for _, head := range ht.buckets {
		for e := head; e != nil; {
			next := e.next
			idx := ht.hasher(e.key) % uint64(newCap)
			e.next = buckets[idx]
			buckets[idx] = e
			e = next
		}
	}
	ht.buckets = buckets
	ht.mp.Release(ht.bucketBytes(oldCap))
	logutil.Debug("string hash map rehash",
		zap.Int("old-capacity", oldCap),
		zap.Int("new-capacity", newCap),
		zap.Int("size", ht.size))
	return nil
}

func (ht *StringHashMap[V]) find(key []byte) *entry[V] {
	if key == nil || ht.buckets == nil {
		return nil
	}
	for e := ht.buckets[ht.bucketIndex(key)]; e != nil; e = e.next {
		if StrEqual(e.key, key) {
			return e
		}
	}
	return nil
}

func (ht *StringHashMap[V]) bucketIndex(key []byte) uint64 {
	return ht.hasher(key) % uint64(len(ht.buckets))
}

func (ht *StringHashMap[V]) bucketBytes(n int) int64 {
	return int64(n) * ht.bucketSize
}

func (ht *StringHashMap[V]) freeEntry(e *entry[V]) {
	ht.mp.Free(e.key)
	ht.mp.Release(ht.entrySize)
	e.key, e.next = nil, nil
}

func (ht *StringHashMap[V]) freeEntries() {
	for i, head := range ht.buckets {
		for e := head; e != nil; {
			next := e.next
			ht.freeEntry(e)
			e = next
		}
		ht.buckets[i] = nil
	}
	ht.size = 0
}

// stringKey views s as bytes without copying. The empty string maps to
// an empty, non-nil key.
func stringKey(s string) []byte {
	if len(s) == 0 {
		return []byte{}
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

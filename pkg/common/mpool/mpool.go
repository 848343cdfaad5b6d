// Copyright 2021 - 2022 Matrix Origin
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

package mpool

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/matrixorigin/mocontainer/pkg/common/moerr"
	"github.com/matrixorigin/mocontainer/pkg/logutil"
)

const (
	// NoLimit means the pool never refuses an allocation.
	NoLimit = 0

	// NoFixed disables the free list of small buffers.
	NoFixed = 1
)

const (
	fixedPoolSize = 64
	fixedPoolCnt  = 1024
)

// MPoolStats records allocation counters of one pool.
type MPoolStats struct {
	NumAlloc      atomic.Int64
	NumFree       atomic.Int64
	NumCurrBytes  atomic.Int64
	HighWaterMark atomic.Int64
}

func (s *MPoolStats) String() string {
	return fmt.Sprintf("alloc %d, free %d, curr %d bytes, hwm %d bytes",
		s.NumAlloc.Load(), s.NumFree.Load(), s.NumCurrBytes.Load(), s.HighWaterMark.Load())
}

// MPool is a named, optionally capped, memory pool. Every byte the
// containers own is charged against it, so a pool with a cap is the
// one place an allocation can fail.
type MPool struct {
	name  string
	cap   int64
	flag  int
	stats MPoolStats

	// small buffers are recycled through a free list
	fixed chan []byte
}

var globalPools sync.Map

// NewMPool creates a pool. cap is in bytes; NoLimit disables the cap.
func NewMPool(name string, cap int64, flag int) (*MPool, error) {
	if cap < 0 {
		return nil, moerr.NewInvalidArg(moerr.Context(), "mpool cap", cap)
	}
	mp := &MPool{
		name: name,
		cap:  cap,
		flag: flag,
	}
	if flag&NoFixed == 0 {
		mp.fixed = make(chan []byte, fixedPoolCnt)
	}
	globalPools.Store(mp, struct{}{})
	return mp, nil
}

// MustNew creates an unlimited pool and panics on failure.
func MustNew(name string) *MPool {
	mp, err := NewMPool(name, NoLimit, 0)
	if err != nil {
		panic(err)
	}
	return mp
}

// MustNewZero is used by tests.
func MustNewZero() *MPool {
	return MustNew("zero")
}

// DeleteMPool drops a pool from the global registry.
func DeleteMPool(mp *MPool) {
	if mp == nil {
		return
	}
	globalPools.Delete(mp)
}

// ForEachPool visits every live pool.
func ForEachPool(fn func(mp *MPool) bool) {
	globalPools.Range(func(k, _ any) bool {
		return fn(k.(*MPool))
	})
}

func (mp *MPool) Name() string {
	return mp.name
}

func (mp *MPool) Cap() int64 {
	return mp.cap
}

func (mp *MPool) CurrNB() int64 {
	return mp.stats.NumCurrBytes.Load()
}

func (mp *MPool) Stats() *MPoolStats {
	return &mp.stats
}

func (mp *MPool) charge(sz int64) error {
	curr := mp.stats.NumCurrBytes.Add(sz)
	if mp.cap > 0 && curr > mp.cap {
		mp.stats.NumCurrBytes.Add(-sz)
		logutil.Debug("mpool out of memory",
			zap.String("pool", mp.name),
			zap.Int64("request", sz),
			zap.Int64("curr", curr-sz),
			zap.Int64("cap", mp.cap))
		return moerr.NewOOM(moerr.Context()).WithDetail("pool %s", mp.name)
	}
	for {
		hwm := mp.stats.HighWaterMark.Load()
		if curr <= hwm || mp.stats.HighWaterMark.CompareAndSwap(hwm, curr) {
			break
		}
	}
	mp.stats.NumAlloc.Add(1)
	return nil
}

func (mp *MPool) discharge(sz int64) {
	mp.stats.NumCurrBytes.Add(-sz)
	mp.stats.NumFree.Add(1)
}

// Alloc returns a zeroed buffer of length sz.
func (mp *MPool) Alloc(sz int) ([]byte, error) {
	if sz < 0 {
		return nil, moerr.NewInvalidArg(moerr.Context(), "mpool alloc size", sz)
	}
	if sz <= fixedPoolSize && mp.fixed != nil {
		if err := mp.charge(fixedPoolSize); err != nil {
			return nil, err
		}
		select {
		case bs := <-mp.fixed:
			bs = bs[:sz]
			clear(bs)
			return bs, nil
		default:
			return make([]byte, sz, fixedPoolSize), nil
		}
	}
	if err := mp.charge(int64(sz)); err != nil {
		return nil, err
	}
	return make([]byte, sz), nil
}

// Free returns a buffer obtained from Alloc or Realloc.
func (mp *MPool) Free(bs []byte) {
	if bs == nil {
		return
	}
	if cap(bs) == fixedPoolSize && mp.fixed != nil {
		mp.discharge(fixedPoolSize)
		select {
		case mp.fixed <- bs[:0]:
		default:
		}
		return
	}
	mp.discharge(int64(cap(bs)))
}

// Realloc grows old to sz bytes, keeping its content.
func (mp *MPool) Realloc(old []byte, sz int) ([]byte, error) {
	if sz <= cap(old) {
		n := len(old)
		old = old[:sz]
		if sz > n {
			clear(old[n:])
		}
		return old, nil
	}
	bs, err := mp.Alloc(sz)
	if err != nil {
		return nil, err
	}
	copy(bs, old)
	mp.Free(old)
	return bs, nil
}

// Reserve charges sz bytes that live in the Go heap, such as pointer
// arrays that cannot be carved out of a byte buffer.
func (mp *MPool) Reserve(sz int64) error {
	if sz < 0 {
		return moerr.NewInvalidArg(moerr.Context(), "mpool reserve size", sz)
	}
	return mp.charge(sz)
}

// Release gives back bytes taken with Reserve.
func (mp *MPool) Release(sz int64) {
	mp.discharge(sz)
}

func (mp *MPool) String() string {
	return fmt.Sprintf("mpool %s (cap %d): %s", mp.name, mp.cap, mp.stats.String())
}

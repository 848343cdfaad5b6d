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
	"bytes"
	"context"

	"github.com/cespare/xxhash/v2"

	"github.com/matrixorigin/mocontainer/pkg/common/moerr"
)

// Hasher maps a key to a 64-bit hash. It must be deterministic.
type Hasher func(key []byte) uint64

const (
	HasherDJB2   = "djb2"
	HasherXXHash = "xxhash"
)

const djb2Seed uint64 = 5381

// StrHash is the djb2 hash: h = h*33 + b over every byte, wrapping at
// 64 bits.
func StrHash(key []byte) uint64 {
	h := djb2Seed
	for _, b := range key {
		h = h<<5 + h + uint64(b)
	}
	return h
}

// XXHash hashes key with xxhash64.
func XXHash(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// StrEqual reports whether a and b hold the same bytes.
func StrEqual(a, b []byte) bool {
	return bytes.Equal(a, b)
}

// HasherByName resolves a configured hasher name. The empty name is djb2.
func HasherByName(ctx context.Context, name string) (Hasher, error) {
	switch name {
	case "", HasherDJB2:
		return StrHash, nil
	case HasherXXHash:
		return XXHash, nil
	}
	return nil, moerr.NewInvalidArg(ctx, "hasher", name)
}

// defaultHasher is what a map uses when no WithHasher option is given.
var defaultHasher Hasher = StrHash

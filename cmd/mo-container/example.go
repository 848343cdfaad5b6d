// Copyright 2022 Matrix Origin
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

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/matrixorigin/mocontainer/pkg/common/moerr"
	"github.com/matrixorigin/mocontainer/pkg/config"
	"github.com/matrixorigin/mocontainer/pkg/container/array"
	"github.com/matrixorigin/mocontainer/pkg/container/hashtable"
	"github.com/matrixorigin/mocontainer/pkg/container/vector"
	"github.com/matrixorigin/mocontainer/pkg/logutil"
)

type person struct {
	id   int
	name string
}

// runPersonExample inserts three people, looks one up, removes it and
// lists what is left.
func runPersonExample(ctx context.Context, w io.Writer) error {
	pu := config.GetParameterUnit(ctx)
	m, err := hashtable.NewStringHashMapFromConfig[person](pu.SV.Map, pu.MPool)
	if err != nil {
		return err
	}
	defer m.Free()

	for i, name := range []string{"John", "Mary", "Bob"} {
		if err = m.InsertString(fmt.Sprintf("key%d", i+1), person{id: i + 1, name: name}); err != nil {
			return err
		}
	}

	p, ok := m.GetString("key2")
	if !ok {
		return moerr.NewInvalidState(ctx, "key2 missing after insert")
	}
	fmt.Fprintf(w, "Value for key 'key2': Person %d: %s\n", p.id, p.name)

	m.RemoveString("key2")
	fmt.Fprintf(w, "%d\n", m.Len())

	keys, err := m.Keys()
	if err != nil {
		return err
	}
	defer keys.Free()
	array.SortOrdered(keys)
	keys.Iter(func(_ int, k string) bool {
		v, _ := m.GetString(k)
		fmt.Fprintf(w, "%q -> %d\n", k, v.id)
		return true
	})
	return nil
}

type wordCount struct {
	word  string
	count int
}

// runWordCount counts the words of every file and prints the top n.
func runWordCount(ctx context.Context, w io.Writer, files []string, n int) error {
	pu := config.GetParameterUnit(ctx)
	m, err := hashtable.NewStringHashMapFromConfig[int](pu.SV.Map, pu.MPool)
	if err != nil {
		return err
	}
	defer m.Free()

	for _, name := range files {
		if err = countFile(ctx, m, name); err != nil {
			return err
		}
	}

	counts := vector.NewWithCapacity[wordCount](m.Len())
	m.ForEach(func(word string, count *int) bool {
		counts.Push(wordCount{word: strings.Clone(word), count: *count})
		return true
	})
	counts.Sort(func(a, b wordCount) bool {
		if a.count != b.count {
			return a.count > b.count
		}
		return a.word < b.word
	})
	if n >= 0 {
		counts.Truncate(n)
	}
	counts.Iter(func(_ int, wc wordCount) bool {
		fmt.Fprintf(w, "%8d %s\n", wc.count, wc.word)
		return true
	})
	logutil.Debug("word count finished",
		zap.Int("files", len(files)),
		zap.Int("distinct", m.Len()),
		zap.Int("capacity", m.Capacity()))
	return nil
}

func countFile(ctx context.Context, m *hashtable.StringHashMap[int], name string) error {
	f, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return moerr.NewFileNotFound(ctx, name)
		}
		return moerr.ConvertGoError(ctx, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		word := scanner.Bytes()
		if c, ok := m.Get(word); ok {
			*c++
			continue
		}
		if err = m.Insert(word, 1); err != nil {
			return err
		}
	}
	if err = scanner.Err(); err != nil {
		return moerr.ConvertGoError(ctx, err)
	}
	return nil
}

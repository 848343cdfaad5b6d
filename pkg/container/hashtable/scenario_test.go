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
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestMapScenario(t *testing.T) {
	convey.Convey("string hash map walkthrough", t, func() {
		ht, err := NewStringHashMap[int]()
		convey.So(err, convey.ShouldBeNil)
		defer ht.Free()
		convey.So(ht.Capacity(), convey.ShouldEqual, 10)

		for i, k := range []string{"a", "b", "c"} {
			convey.So(ht.InsertString(k, i+1), convey.ShouldBeNil)
		}

		v, ok := ht.GetString("b")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(*v, convey.ShouldEqual, 2)

		ht.RemoveString("b")
		convey.So(ht.ContainsString("b"), convey.ShouldBeFalse)
		convey.So(ht.Len(), convey.ShouldEqual, 2)

		more := []string{"d", "e", "f", "g", "h", "i"}
		for i, k := range more {
			convey.So(ht.InsertString(k, i+4), convey.ShouldBeNil)
		}
		// 8 live entries, 7 of them present before the last insert: 7 < 7.5
		convey.So(ht.Len(), convey.ShouldEqual, 8)
		convey.So(ht.Capacity(), convey.ShouldEqual, 10)

		convey.Convey("the insert at 8 >= 0.75*10 grows first", func() {
			convey.So(ht.InsertString("j", 10), convey.ShouldBeNil)
			convey.So(ht.Len(), convey.ShouldEqual, 9)
			convey.So(ht.Capacity(), convey.ShouldEqual, 20)

			for _, k := range append([]string{"a", "c", "j"}, more...) {
				convey.So(ht.ContainsString(k), convey.ShouldBeTrue)
			}
			v, ok := ht.GetString("c")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(*v, convey.ShouldEqual, 3)

			keys, err := ht.Keys()
			convey.So(err, convey.ShouldBeNil)
			convey.So(keys.Len(), convey.ShouldEqual, 9)
		})

		convey.Convey("clear returns to the starting capacity", func() {
			ht.Clear()
			convey.So(ht.IsEmpty(), convey.ShouldBeTrue)
			convey.So(ht.Capacity(), convey.ShouldEqual, 10)
			convey.So(ht.ContainsString("a"), convey.ShouldBeFalse)
		})
	})
}

// Copyright 2017-25 the original author or authors.
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

package decode

import (
	"errors"

	"github.com/osmx/pbf/internal/osmpb"
)

// ErrStringIndexOutOfRange is returned when a key/value/role/user index
// falls outside the block's string table, which indicates a malformed or
// truncated block rather than a normal absence (absence is index 0).
var ErrStringIndexOutOfRange = errors.New("decode: string table index out of range")

// blockContext holds the per-PrimitiveBlock parameters every group decoder
// needs: the shared string table and the delta-coordinate scale/offset.
type blockContext struct {
	strings         [][]byte
	granularity     int32
	latOffset       int64
	lonOffset       int64
	dateGranularity int32
}

func newBlockContext(pb *osmpb.PrimitiveBlock) *blockContext {
	var st [][]byte
	if pb.StringTable != nil {
		st = pb.StringTable.S
	}

	return &blockContext{
		strings:         st,
		granularity:     pb.Granularity,
		latOffset:       pb.LatOffset,
		lonOffset:       pb.LonOffset,
		dateGranularity: pb.DateGranularity,
	}
}

// string resolves a string table index, returning an error instead of
// panicking on an out-of-range index produced by a corrupt block.
func (c *blockContext) string(idx uint32) (string, error) {
	return stringAt(c.strings, idx)
}

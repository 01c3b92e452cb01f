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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmx/pbf/internal/osmpb"
	"github.com/osmx/pbf/model"
)

func TestParsePrimitiveBlock_DenseNodes(t *testing.T) {
	blk := &osmpb.PrimitiveBlock{
		StringTable:     &osmpb.StringTable{S: [][]byte{[]byte(""), []byte("highway"), []byte("residential")}},
		Granularity:     100,
		DateGranularity: 1000,
		Groups: []*osmpb.PrimitiveGroup{{
			DenseNodes: &osmpb.DenseNodes{
				ID:       []int64{1, 1}, // ids 1, 2
				Lat:      []int64{100, 1},
				Lon:      []int64{200, 1},
				KeysVals: []int32{1, 2, 0, 0},
			},
		}},
	}

	entities, err := decodeBlockContextRoundTrip(t, blk)
	require.NoError(t, err)
	require.Len(t, entities, 2)

	n0, ok := entities[0].(model.Node)
	require.True(t, ok)
	assert.Equal(t, model.ID(1), n0.ID)
	assert.Equal(t, map[string]string{"highway": "residential"}, n0.Tags)

	n1, ok := entities[1].(model.Node)
	require.True(t, ok)
	assert.Equal(t, model.ID(2), n1.ID)
	assert.Nil(t, n1.Tags)
}

func TestParsePrimitiveBlock_DenseNodesColumnMismatch(t *testing.T) {
	blk := &osmpb.PrimitiveBlock{
		Granularity: 100,
		Groups: []*osmpb.PrimitiveGroup{{
			DenseNodes: &osmpb.DenseNodes{
				ID:  []int64{1, 1},
				Lat: []int64{100},
				Lon: []int64{200, 1},
			},
		}},
	}

	_, err := decodeBlockContextRoundTrip(t, blk)
	require.ErrorIs(t, err, ErrDenseColumnMismatch)
}

func TestParsePrimitiveBlock_KeysValsUnterminated(t *testing.T) {
	blk := &osmpb.PrimitiveBlock{
		StringTable: &osmpb.StringTable{S: [][]byte{[]byte(""), []byte("k")}},
		Granularity: 100,
		Groups: []*osmpb.PrimitiveGroup{{
			DenseNodes: &osmpb.DenseNodes{
				ID:       []int64{1},
				Lat:      []int64{0},
				Lon:      []int64{0},
				KeysVals: []int32{1}, // missing value and sentinel
			},
		}},
	}

	_, err := decodeBlockContextRoundTrip(t, blk)
	require.ErrorIs(t, err, ErrKeysValsUnterminated)
}

func TestParsePrimitiveBlock_Way(t *testing.T) {
	blk := &osmpb.PrimitiveBlock{
		Granularity: 100,
		Groups: []*osmpb.PrimitiveGroup{{
			Ways: []*osmpb.Way{{
				ID:   42,
				Refs: []int64{10, 1, 1}, // node ids 10, 11, 12
			}},
		}},
	}

	entities, err := decodeBlockContextRoundTrip(t, blk)
	require.NoError(t, err)
	require.Len(t, entities, 1)

	w, ok := entities[0].(model.Way)
	require.True(t, ok)
	assert.Equal(t, model.ID(42), w.ID)
	assert.Equal(t, []model.ID{10, 11, 12}, w.NodeIDs)
}

func TestParsePrimitiveBlock_RelationUnknownMemberType(t *testing.T) {
	blk := &osmpb.PrimitiveBlock{
		StringTable: &osmpb.StringTable{S: [][]byte{[]byte("")}},
		Granularity: 100,
		Groups: []*osmpb.PrimitiveGroup{{
			Relations: []*osmpb.Relation{{
				ID:       5,
				MemIDs:   []int64{1},
				Types:    []osmpb.RelationMemberType{99},
				RolesSID: []int32{0},
			}},
		}},
	}

	_, err := decodeBlockContextRoundTrip(t, blk)
	require.ErrorIs(t, err, ErrUnknownMemberType)
}

func TestParsePrimitiveBlock_TagColumnMismatch(t *testing.T) {
	blk := &osmpb.PrimitiveBlock{
		StringTable: &osmpb.StringTable{S: [][]byte{[]byte(""), []byte("k")}},
		Granularity: 100,
		Groups: []*osmpb.PrimitiveGroup{{
			Nodes: []*osmpb.Node{{ID: 1, Keys: []uint32{1}, Vals: []uint32{}}},
		}},
	}

	_, err := decodeBlockContextRoundTrip(t, blk)
	require.ErrorIs(t, err, ErrTagColumnMismatch)
}

func TestParsePrimitiveBlock_DenseInfoPartialColumns(t *testing.T) {
	blk := &osmpb.PrimitiveBlock{
		Granularity: 100,
		Groups: []*osmpb.PrimitiveGroup{{
			DenseNodes: &osmpb.DenseNodes{
				ID:  []int64{1, 1},
				Lat: []int64{0, 0},
				Lon: []int64{0, 0},
				DenseInfo: &osmpb.DenseInfo{
					Version: []int32{1, 1},
					// UID, Timestamp, Changeset, UserSID all absent.
				},
			},
		}},
	}

	entities, err := decodeBlockContextRoundTrip(t, blk)
	require.NoError(t, err)
	require.Len(t, entities, 2)

	n0, ok := entities[0].(model.Node)
	require.True(t, ok)
	require.NotNil(t, n0.Info)
	assert.Equal(t, int32(1), n0.Info.Version)
	assert.Equal(t, model.UID(0), n0.Info.UID)
}

func TestParsePrimitiveBlock_StringIndexOutOfRange(t *testing.T) {
	blk := &osmpb.PrimitiveBlock{
		StringTable: &osmpb.StringTable{S: [][]byte{[]byte("")}},
		Granularity: 100,
		Groups: []*osmpb.PrimitiveGroup{{
			Nodes: []*osmpb.Node{{ID: 1, Keys: []uint32{5}, Vals: []uint32{0}}},
		}},
	}

	_, err := decodeBlockContextRoundTrip(t, blk)
	require.ErrorIs(t, err, ErrStringIndexOutOfRange)
}

// decodeBlockContextRoundTrip exercises ParsePrimitiveBlock's group dispatch
// logic directly against a pre-built PrimitiveBlock struct rather than
// re-serializing it to wire bytes -- osmpb.UnmarshalPrimitiveBlock itself is
// covered in the osmpb package's own tests.
func decodeBlockContextRoundTrip(t *testing.T, blk *osmpb.PrimitiveBlock) ([]model.Entity, error) {
	t.Helper()

	c := newBlockContext(blk)

	var entities []model.Entity

	for _, pg := range blk.Groups {
		nodes, err := c.decodeNodes(pg.Nodes)
		if err != nil {
			return nil, err
		}

		entities = append(entities, nodes...)

		dense, err := c.decodeDenseNodes(pg.DenseNodes)
		if err != nil {
			return nil, err
		}

		entities = append(entities, dense...)

		ways, err := c.decodeWays(pg.Ways)
		if err != nil {
			return nil, err
		}

		entities = append(entities, ways...)

		relations, err := c.decodeRelations(pg.Relations)
		if err != nil {
			return nil, err
		}

		entities = append(entities, relations...)
	}

	return entities, nil
}

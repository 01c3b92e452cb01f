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

package info

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/osmx/pbf/model"
)

// The helpers below hand-assemble a minimal, uncompressed PBF byte stream
// for exercising runInfo without a testdata fixture -- production code never
// encodes PBF (spec.md's Non-goals exclude writing it).

func appendTagBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendTagString(b []byte, num protowire.Number, v string) []byte {
	return appendTagBytes(b, num, []byte(v))
}

func appendTagVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendTagPacked(b []byte, num protowire.Number, vs []uint64) []byte {
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, v)
	}

	return appendTagBytes(b, num, packed)
}

func buildFrame(t *testing.T, dst *bytes.Buffer, blobType string, payload []byte) {
	t.Helper()

	blob := appendTagBytes(nil, 1, payload)

	header := appendTagString(nil, 1, blobType)
	header = appendTagVarint(header, 3, uint64(len(blob)))

	require.NoError(t, binary.Write(dst, binary.BigEndian, uint32(len(header))))
	dst.Write(header)
	dst.Write(blob)
}

func buildHeaderBlock(replicationTimestamp int64) []byte {
	bbox := appendTagVarint(nil, 1, protowire.EncodeZigZag(-511482000))
	bbox = appendTagVarint(bbox, 2, protowire.EncodeZigZag(335437000))
	bbox = appendTagVarint(bbox, 3, protowire.EncodeZigZag(51693440000))
	bbox = appendTagVarint(bbox, 4, protowire.EncodeZigZag(51285540000))

	b := appendTagBytes(nil, 1, bbox)
	b = appendTagString(b, 4, "OsmSchema-V0.6")
	b = appendTagString(b, 4, "DenseNodes")
	b = appendTagString(b, 16, "testwriter")
	b = appendTagVarint(b, 32, uint64(replicationTimestamp))

	return b
}

func buildDenseNodesBlock(n int) []byte {
	ids := make([]uint64, n)
	lats := make([]uint64, n)
	lons := make([]uint64, n)

	for i := 0; i < n; i++ {
		ids[i] = protowire.EncodeZigZag(1)
		lats[i] = protowire.EncodeZigZag(1)
		lons[i] = protowire.EncodeZigZag(1)
	}

	dn := appendTagPacked(nil, 1, ids)
	dn = appendTagPacked(dn, 8, lats)
	dn = appendTagPacked(dn, 9, lons)

	pg := appendTagBytes(nil, 2, dn)

	return appendTagBytes(nil, 2, pg)
}

func buildStream(t *testing.T, replicationTimestamp int64, nodesPerBlock []int) []byte {
	t.Helper()

	var out bytes.Buffer

	buildFrame(t, &out, "OSMHeader", buildHeaderBlock(replicationTimestamp))

	for _, n := range nodesPerBlock {
		buildFrame(t, &out, "OSMData", buildDenseNodesBlock(n))
	}

	return out.Bytes()
}

func TestRunInfo(t *testing.T) {
	const replicationTimestamp = 1395697000

	data := buildStream(t, replicationTimestamp, nil)

	info, err := runInfo(bytes.NewReader(data), 2, false)
	require.NoError(t, err)

	wantBBox := &model.BoundingBox{Left: -0.511482, Right: 0.335437, Top: 51.69344, Bottom: 51.28554}
	require.NotNil(t, info.BoundingBox)
	assert.True(t, info.BoundingBox.EqualWithin(wantBBox, model.E6))
	assert.Equal(t, []string{"OsmSchema-V0.6", "DenseNodes"}, info.RequiredFeatures)
	assert.Nil(t, info.OptionalFeatures)
	assert.Equal(t, "testwriter", info.WritingProgram)
	assert.Equal(t, "", info.Source)
	assert.Equal(t, time.Unix(replicationTimestamp, 0).UTC(), info.OsmosisReplicationTimestamp.UTC())
	assert.Equal(t, int64(0), info.OsmosisReplicationSequenceNumber)
	assert.Equal(t, "", info.OsmosisReplicationBaseURL)
	assert.Equal(t, int64(0), info.NodeCount)
	assert.Equal(t, int64(0), info.WayCount)
	assert.Equal(t, int64(0), info.RelationCount)
}

func TestRunInfoExtended(t *testing.T) {
	data := buildStream(t, 1395697000, []int{3, 5, 2})

	info, err := runInfo(bytes.NewReader(data), 2, true)
	require.NoError(t, err)

	assert.Equal(t, int64(10), info.NodeCount)
	assert.Equal(t, int64(0), info.WayCount)
	assert.Equal(t, int64(0), info.RelationCount)
}

func TestRunInfo_UnsupportedFeature(t *testing.T) {
	var out bytes.Buffer

	hb := appendTagString(nil, 4, "Has_Metadata")
	buildFrame(t, &out, "OSMHeader", hb)

	_, err := runInfo(bytes.NewReader(out.Bytes()), 0, false)
	require.Error(t, err)
}

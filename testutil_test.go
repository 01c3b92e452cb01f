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

package pbf

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

// The helpers below hand-assemble a minimal, uncompressed PBF byte stream --
// one OSMHeader blob followed by zero or more OSMData blobs -- so Reader,
// RandomAccessReader, and ParMapReduce can be exercised without a testdata
// fixture. They live in a _test.go file only; production code never encodes
// (spec.md's Non-goals exclude writing PBF).

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

// buildFrame appends one length-prefixed BlobHeader+Blob(raw) pair to dst.
func buildFrame(t *testing.T, dst *bytes.Buffer, blobType string, payload []byte) {
	t.Helper()

	blob := appendTagBytes(nil, 1, payload)

	header := appendTagString(nil, 1, blobType)
	header = appendTagVarint(header, 3, uint64(len(blob)))

	require.NoError(t, binary.Write(dst, binary.BigEndian, uint32(len(header))))
	dst.Write(header)
	dst.Write(blob)
}

// buildHeaderBlock builds a minimal HeaderBlock payload with no required
// features (so it's always accepted) and the given writing program.
func buildHeaderBlock(writingProgram string) []byte {
	return appendTagString(nil, 16, writingProgram)
}

// buildDenseNodesBlock builds a PrimitiveBlock payload containing one dense
// node group with n untagged nodes at increasing coordinates.
func buildDenseNodesBlock(n int) []byte {
	ids := make([]uint64, n)
	lats := make([]uint64, n)
	lons := make([]uint64, n)

	for i := 0; i < n; i++ {
		ids[i] = protowire.EncodeZigZag(1) // delta +1 each node
		lats[i] = protowire.EncodeZigZag(1)
		lons[i] = protowire.EncodeZigZag(1)
	}

	dn := appendTagPacked(nil, 1, ids)
	dn = appendTagPacked(dn, 8, lats)
	dn = appendTagPacked(dn, 9, lons)

	pg := appendTagBytes(nil, 2, dn)
	pb := appendTagBytes(nil, 2, pg)

	return pb
}

// buildPBFStream assembles a full in-memory PBF byte stream: one OSMHeader
// blob plus one OSMData blob per entry in nodesPerBlock.
func buildPBFStream(t *testing.T, writingProgram string, nodesPerBlock []int) []byte {
	t.Helper()

	var out bytes.Buffer

	buildFrame(t, &out, "OSMHeader", buildHeaderBlock(writingProgram))

	for _, n := range nodesPerBlock {
		buildFrame(t, &out, "OSMData", buildDenseNodesBlock(n))
	}

	return out.Bytes()
}

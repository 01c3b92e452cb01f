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
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

// buildFrame hand-assembles one length-prefixed BlobHeader+Blob pair the way
// a real PBF writer would, for feeding GenerateFrameReader in tests.
func buildFrame(t *testing.T, blobType string, payload []byte) []byte {
	t.Helper()

	blob := protowire.AppendTag(nil, 1, protowire.BytesType)
	blob = protowire.AppendBytes(blob, payload)

	header := protowire.AppendTag(nil, 1, protowire.BytesType)
	header = protowire.AppendBytes(header, []byte(blobType))
	header = protowire.AppendTag(header, 3, protowire.VarintType)
	header = protowire.AppendVarint(header, uint64(len(blob)))

	var out bytes.Buffer

	require.NoError(t, binary.Write(&out, binary.BigEndian, uint32(len(header))))
	out.Write(header)
	out.Write(blob)

	return out.Bytes()
}

func TestGenerateFrameReader_TwoFrames(t *testing.T) {
	var data bytes.Buffer
	data.Write(buildFrame(t, "OSMHeader", []byte("first")))
	data.Write(buildFrame(t, "OSMData", []byte("second")))

	var frames []Frame

	for f, err := range GenerateFrameReader(context.Background(), bytes.NewReader(data.Bytes())) {
		require.NoError(t, err)
		frames = append(frames, f)
	}

	require.Len(t, frames, 2)
	assert.Equal(t, "OSMHeader", frames[0].Header.Type)
	assert.Equal(t, []byte("first"), frames[0].Blob.Raw)
	assert.Equal(t, int64(0), frames[0].Offset)
	assert.Equal(t, "OSMData", frames[1].Header.Type)
	assert.Equal(t, []byte("second"), frames[1].Blob.Raw)
	assert.Equal(t, frames[0].Offset+frames[0].Size, frames[1].Offset)
}

func TestGenerateFrameReader_StopsAfterOneOnBreak(t *testing.T) {
	var data bytes.Buffer
	data.Write(buildFrame(t, "OSMHeader", []byte("first")))
	data.Write(buildFrame(t, "OSMData", []byte("second")))

	r := bytes.NewReader(data.Bytes())

	var seen int

	for range GenerateFrameReader(context.Background(), r) {
		seen++

		break
	}

	assert.Equal(t, 1, seen)
	// Only the first frame's bytes should have been consumed from r.
	assert.Equal(t, int64(len(buildFrame(t, "OSMHeader", []byte("first")))), int64(data.Len())-int64(r.Len()))
}

func TestGenerateFrameReader_EmptyStreamYieldsNothing(t *testing.T) {
	var count int

	for range GenerateFrameReader(context.Background(), bytes.NewReader(nil)) {
		count++
	}

	assert.Equal(t, 0, count)
}

func TestGenerateFrameReader_TruncatedHeaderLength(t *testing.T) {
	data := []byte{0, 0, 0, 10} // declares 10 header bytes, none follow

	var gotErr error

	for _, err := range GenerateFrameReader(context.Background(), bytes.NewReader(data)) {
		gotErr = err
	}

	require.Error(t, gotErr)
}

func TestGenerateFrameReader_TruncatedLengthPrefix(t *testing.T) {
	data := []byte{0, 0, 1} // only 3 of the 4 length-prefix bytes present

	var gotErr error

	for _, err := range GenerateFrameReader(context.Background(), bytes.NewReader(data)) {
		gotErr = err
	}

	require.Error(t, gotErr)
	assert.False(t, errors.Is(gotErr, io.EOF))
}

func TestGenerateFrameReader_ZeroLengthHeader(t *testing.T) {
	var data bytes.Buffer
	require.NoError(t, binary.Write(&data, binary.BigEndian, uint32(0)))

	var gotErr error

	for _, err := range GenerateFrameReader(context.Background(), bytes.NewReader(data.Bytes())) {
		gotErr = err
	}

	require.ErrorIs(t, gotErr, ErrBlobHeaderEmpty)
}

func TestGenerateFrameReader_OversizedBlobHeader(t *testing.T) {
	var data bytes.Buffer
	require.NoError(t, binary.Write(&data, binary.BigEndian, uint32(maxBlobHeaderSize+1)))

	var gotErr error

	for _, err := range GenerateFrameReader(context.Background(), bytes.NewReader(data.Bytes())) {
		gotErr = err
	}

	require.ErrorIs(t, gotErr, ErrBlobHeaderTooLarge)
}

func TestGenerateFrameReader_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := buildFrame(t, "OSMHeader", []byte("x"))

	var gotErr error

	for _, err := range GenerateFrameReader(ctx, bytes.NewReader(data)) {
		gotErr = err
	}

	require.ErrorIs(t, gotErr, context.Canceled)
}

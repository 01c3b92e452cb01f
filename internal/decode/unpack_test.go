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
	"compress/zlib"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmx/pbf/internal/core"
	"github.com/osmx/pbf/internal/osmpb"
)

func TestUnpack_Raw(t *testing.T) {
	buf := core.NewPooledBuffer()
	defer buf.Close()

	got, err := Unpack(buf, &osmpb.Blob{Raw: []byte("hello")})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestUnpack_Zlib(t *testing.T) {
	var compressed bytes.Buffer

	w := zlib.NewWriter(&compressed)
	_, err := w.Write([]byte("the quick brown fox"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	buf := core.NewPooledBuffer()
	defer buf.Close()

	got, err := Unpack(buf, &osmpb.Blob{
		ZlibData:   compressed.Bytes(),
		RawSize:    int32(len("the quick brown fox")),
		HasRawSize: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "the quick brown fox", string(got))
}

func TestUnpack_ZlibSizeMismatch(t *testing.T) {
	var compressed bytes.Buffer

	w := zlib.NewWriter(&compressed)
	_, err := w.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	buf := core.NewPooledBuffer()
	defer buf.Close()

	_, err = Unpack(buf, &osmpb.Blob{
		ZlibData:   compressed.Bytes(),
		RawSize:    999,
		HasRawSize: true,
	})
	require.Error(t, err)
}

func TestUnpack_UnknownCompression(t *testing.T) {
	buf := core.NewPooledBuffer()
	defer buf.Close()

	_, err := Unpack(buf, &osmpb.Blob{})
	require.ErrorIs(t, err, ErrUnknownCompressionType)
}

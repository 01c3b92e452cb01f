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
	"errors"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz/lzma"

	"github.com/osmx/pbf/internal/core"
	"github.com/osmx/pbf/internal/osmpb"
)

// ErrUnknownCompressionType is returned when a Blob carries none of the
// recognized data fields, which should not happen for a conformant writer
// but is checked rather than assumed.
var ErrUnknownCompressionType = errors.New("decode: unknown blob compression type")

// Unpack returns the uncompressed payload of blob, using buf as scratch
// space sized to the declared raw_size so repeated calls across a batch
// reuse one allocation. The returned slice is only valid until the next
// call that reuses buf.
func Unpack(buf *core.PooledBuffer, blob *osmpb.Blob) ([]byte, error) {
	if len(blob.Raw) > 0 {
		return blob.Raw, nil
	}

	var factory func() (io.Reader, error)

	switch {
	case len(blob.ZlibData) > 0:
		factory = func() (io.Reader, error) {
			return zlib.NewReader(bytes.NewReader(blob.ZlibData))
		}
	case len(blob.LzmaData) > 0:
		factory = func() (io.Reader, error) {
			return lzma.NewReader(bytes.NewReader(blob.LzmaData))
		}
	case len(blob.Lz4Data) > 0:
		factory = func() (io.Reader, error) {
			return lz4.NewReader(bytes.NewReader(blob.Lz4Data)), nil
		}
	case len(blob.ZstdData) > 0:
		factory = func() (io.Reader, error) {
			return zstd.NewReader(bytes.NewReader(blob.ZstdData))
		}
	case len(blob.ObsBzip2) > 0:
		factory = func() (io.Reader, error) {
			return bzip2.NewReader(bytes.NewReader(blob.ObsBzip2), nil)
		}
	default:
		return nil, ErrUnknownCompressionType
	}

	rawSize := int(blob.RawSize + bytes.MinRead)
	if rawSize > buf.Cap() {
		buf.Grow(rawSize)
	}

	rdr, err := factory()
	if err != nil {
		return nil, fmt.Errorf("decode: opening compressed blob: %w", err)
	}

	n, err := buf.ReadFrom(rdr)
	if err != nil {
		return nil, fmt.Errorf("decode: reading compressed blob: %w", err)
	}

	if blob.HasRawSize && n != int64(blob.RawSize) {
		return nil, fmt.Errorf("decode: blob expanded to %d bytes but raw_size declared %d", n, blob.RawSize)
	}

	return buf.Bytes(), nil
}

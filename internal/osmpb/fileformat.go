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

package osmpb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// BlobHeader is the small envelope descriptor preceding every blob payload.
// Field numbers follow fileformat.proto.
type BlobHeader struct {
	Type      string
	IndexData []byte
	DataSize  int32
}

// Blob carries the (possibly compressed) payload bytes plus the declared
// uncompressed size. Exactly one of the data fields is set.
type Blob struct {
	Raw         []byte
	RawSize     int32
	HasRawSize  bool
	ZlibData    []byte
	LzmaData    []byte
	ObsBzip2    []byte
	Lz4Data     []byte
	ZstdData    []byte
}

// UnmarshalBlobHeader parses a BlobHeader from protobuf wire bytes.
func UnmarshalBlobHeader(b []byte) (*BlobHeader, error) {
	h := &BlobHeader{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("osmpb: BlobHeader tag: %w", ErrTruncatedMessage)
		}

		b = b[n:]

		switch num {
		case 1: // type
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: BlobHeader.type: %w", ErrTruncatedMessage)
			}

			h.Type = v
			b = b[n:]

		case 2: // indexdata
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: BlobHeader.indexdata: %w", ErrTruncatedMessage)
			}

			h.IndexData = append([]byte(nil), v...)
			b = b[n:]

		case 3: // datasize
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: BlobHeader.datasize: %w", ErrTruncatedMessage)
			}

			h.DataSize = int32(v)
			b = b[n:]

		default:
			n, err := consumeUnknown(num, typ, b)
			if err != nil {
				return nil, err
			}

			b = b[n:]
		}
	}

	return h, nil
}

// UnmarshalBlob parses a Blob from protobuf wire bytes.
func UnmarshalBlob(b []byte) (*Blob, error) {
	blob := &Blob{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("osmpb: Blob tag: %w", ErrTruncatedMessage)
		}

		b = b[n:]

		switch num {
		case 1: // raw
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Blob.raw: %w", ErrTruncatedMessage)
			}

			blob.Raw = append([]byte(nil), v...)
			b = b[n:]

		case 2: // raw_size
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Blob.raw_size: %w", ErrTruncatedMessage)
			}

			blob.RawSize = int32(v)
			blob.HasRawSize = true
			b = b[n:]

		case 3: // zlib_data
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Blob.zlib_data: %w", ErrTruncatedMessage)
			}

			blob.ZlibData = append([]byte(nil), v...)
			b = b[n:]

		case 4: // lzma_data
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Blob.lzma_data: %w", ErrTruncatedMessage)
			}

			blob.LzmaData = append([]byte(nil), v...)
			b = b[n:]

		case 5: // OBSOLETE_bzip2_data
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Blob.obsolete_bzip2_data: %w", ErrTruncatedMessage)
			}

			blob.ObsBzip2 = append([]byte(nil), v...)
			b = b[n:]

		case 6: // lz4_data
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Blob.lz4_data: %w", ErrTruncatedMessage)
			}

			blob.Lz4Data = append([]byte(nil), v...)
			b = b[n:]

		case 7: // zstd_data
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Blob.zstd_data: %w", ErrTruncatedMessage)
			}

			blob.ZstdData = append([]byte(nil), v...)
			b = b[n:]

		default:
			n, err := consumeUnknown(num, typ, b)
			if err != nil {
				return nil, err
			}

			b = b[n:]
		}
	}

	return blob, nil
}

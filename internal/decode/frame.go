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

// Package decode implements the container-level and block-level decoding
// algorithms: framing (C1), decompression (C2), header validation (C3),
// block context (C4), and element decoding (C5).
package decode

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/osmx/pbf/internal/core"
	"github.com/osmx/pbf/internal/osmpb"
)

// maxBlobHeaderSize and maxBlobDataSize bound a single frame's declared size,
// guarding against a corrupt or hostile length prefix driving an unbounded
// allocation.
const (
	maxBlobHeaderSize = 64 * 1024
	maxBlobDataSize   = 32 * 1024 * 1024
)

var (
	// ErrBlobHeaderTooLarge is returned when a BlobHeader's declared size
	// exceeds maxBlobHeaderSize.
	ErrBlobHeaderTooLarge = errors.New("decode: blob header too large")

	// ErrBlobHeaderEmpty is returned when a BlobHeader's declared length
	// prefix is zero.
	ErrBlobHeaderEmpty = errors.New("decode: blob header length is zero")

	// ErrBlobTooLarge is returned when a BlobHeader's datasize field
	// exceeds maxBlobDataSize.
	ErrBlobTooLarge = errors.New("decode: blob data too large")
)

// Frame is one length-prefixed BlobHeader+Blob pair read off the container,
// along with the byte offset it started at so callers can build a random
// access index.
type Frame struct {
	Header *osmpb.BlobHeader
	Blob   *osmpb.Blob
	Offset int64
	Size   int64
}

// GenerateFrameReader returns an iterator over the frames of r, reading
// lazily: no frame past the one currently yielded has been parsed. Iteration
// stops cleanly at io.EOF; any other read or parse error is surfaced once
// and then iteration stops.
func GenerateFrameReader(ctx context.Context, r io.Reader) func(yield func(Frame, error) bool) {
	return func(yield func(Frame, error) bool) {
		buf := core.NewPooledBuffer()
		defer buf.Close()

		var offset int64

		for {
			select {
			case <-ctx.Done():
				yield(Frame{}, ctx.Err())
				return
			default:
			}

			start := offset

			header, headerLen, err := readBlobHeader(buf, r)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					slog.Error("reading blob header", "error", err, "offset", start)
					yield(Frame{}, err)
				}

				return
			}

			offset += headerLen

			blob, blobLen, err := readBlobData(buf, r, int64(header.DataSize))
			if err != nil {
				slog.Error("reading blob data", "error", err, "offset", offset)
				yield(Frame{}, err)

				return
			}

			offset += blobLen

			if !yield(Frame{Header: header, Blob: blob, Offset: start, Size: offset - start}, nil) {
				return
			}

			buf.Reset()
		}
	}
}

// readBlobHeader reads the four-byte big-endian length prefix and the
// BlobHeader message that follows it. Only a clean boundary -- zero bytes
// read before hitting end of stream -- returns io.EOF; any truncation
// encountered after that point, whether mid-length-prefix or mid-header, is
// reported as a distinct error so callers never mistake it for a clean stop.
func readBlobHeader(buf *core.PooledBuffer, r io.Reader) (*osmpb.BlobHeader, int64, error) {
	var size uint32

	if err := binary.Read(r, binary.BigEndian, &size); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}

		return nil, 0, fmt.Errorf("decode: reading blob header length: %w", err)
	}

	if size == 0 {
		return nil, 0, ErrBlobHeaderEmpty
	}

	if size > maxBlobHeaderSize {
		return nil, 0, fmt.Errorf("%w: %d bytes", ErrBlobHeaderTooLarge, size)
	}

	buf.Reset()

	n, err := io.CopyN(buf, r, int64(size))
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return nil, 0, fmt.Errorf("decode: reading blob header: %w", err)
	}

	header, err := osmpb.UnmarshalBlobHeader(buf.Bytes())
	if err != nil {
		return nil, 0, fmt.Errorf("decode: unmarshalling blob header: %w", err)
	}

	return header, 4 + n, nil
}

// readBlobData reads a Blob message of the given size.
func readBlobData(buf *core.PooledBuffer, r io.Reader, size int64) (*osmpb.Blob, int64, error) {
	if size > maxBlobDataSize {
		return nil, 0, fmt.Errorf("%w: %d bytes", ErrBlobTooLarge, size)
	}

	buf.Reset()

	n, err := io.CopyN(buf, r, size)
	if err != nil {
		return nil, 0, fmt.Errorf("decode: reading blob: %w", err)
	}

	blob, err := osmpb.UnmarshalBlob(buf.Bytes())
	if err != nil {
		return nil, 0, fmt.Errorf("decode: unmarshalling blob: %w", err)
	}

	return blob, n, nil
}

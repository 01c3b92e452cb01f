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
	"context"
	"errors"
	"io"

	"github.com/osmx/pbf/internal/core"
	"github.com/osmx/pbf/internal/decode"
	"github.com/osmx/pbf/model"
)

// ErrNotSeekable is returned by NewRandomAccessReader when it is given a nil
// source.
var ErrNotSeekable = errors.New("pbf: source is not seekable")

// RandomAccessReader resumes decoding at a previously-recorded file offset,
// the positioned-access half of C1's framed blob reader contract: a caller
// that held on to a decode.Frame.Offset from an earlier pass can reopen
// there without re-reading everything before it.
type RandomAccessReader struct {
	ra io.ReaderAt
}

// NewRandomAccessReader wraps src for positioned access. It returns
// ErrNotSeekable if src is nil; any non-nil io.ReaderAt is accepted.
func NewRandomAccessReader(src io.ReaderAt) (*RandomAccessReader, error) {
	if src == nil {
		return nil, wrapErr("pbf.NewRandomAccessReader", KindIO, ErrNotSeekable)
	}

	return &RandomAccessReader{ra: src}, nil
}

// BlockAt decodes the single blob frame starting at offset, returning its
// entities. offset must be a value previously observed as a decode.Frame's
// Offset field (e.g. from Reader.Blobs); arbitrary offsets are not
// guaranteed to land on a frame boundary.
func (rar *RandomAccessReader) BlockAt(ctx context.Context, offset int64) ([]model.Entity, error) {
	const op = "pbf.RandomAccessReader.BlockAt"

	sr := io.NewSectionReader(rar.ra, offset, 1<<62)

	var (
		frame decode.Frame
		ferr  error
		found bool
	)

	for f, err := range decode.GenerateFrameReader(ctx, sr) {
		frame, ferr, found = f, err, true

		break
	}

	if !found {
		return nil, wrapErr(op, KindFraming, io.ErrUnexpectedEOF)
	}

	if ferr != nil {
		return nil, classifyFrameErr(op, ferr)
	}

	buf := core.NewPooledBuffer()
	defer buf.Close()

	payload, err := decode.Unpack(buf, frame.Blob)
	if err != nil {
		return nil, wrapErr(op, KindCompression, err)
	}

	entities, err := decode.ParsePrimitiveBlock(payload)
	if err != nil {
		return nil, wrapErr(op, KindInvariant, err)
	}

	return entities, nil
}

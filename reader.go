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

// Package pbf reads OpenStreetMap PBF data into a stream of nodes, ways,
// and relations. It offers a sequential ForEach over the whole file and a
// parallel ParMapReduce that farms blob decode+fold work across a worker
// pool while still combining results deterministically by default.
//
// Writing PBF and resolving cross-element references (e.g. looking up the
// node a way's ref points at) are out of scope; this package only preserves
// the ids a caller would use to do that resolution themselves.
package pbf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/osmx/pbf/internal/core"
	"github.com/osmx/pbf/internal/decode"
	"github.com/osmx/pbf/model"
)

// Reader provides sequential and parallel access to the elements of a PBF
// source. A Reader is not safe for concurrent use by multiple goroutines
// except where documented (ParMapReduce manages its own internal
// concurrency over a single Reader).
type Reader struct {
	opts       options
	source     io.Reader
	closer     io.Closer
	header     model.Header
	headerSize int64
}

// Open opens the named file and reads its header. The returned Reader must
// be closed when no longer needed.
func Open(path string, opt ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr("pbf.Open", KindIO, err)
	}

	r, err := NewReader(f, opt...)
	if err != nil {
		f.Close()

		return nil, err
	}

	r.closer = f

	return r, nil
}

// NewReader wraps an already-open source. The Reader does not take
// ownership of src's lifecycle unless src also implements io.Closer and the
// caller calls Reader.Close.
func NewReader(src io.Reader, opt ...Option) (*Reader, error) {
	o := defaultOptions()
	for _, fn := range opt {
		fn(&o)
	}

	r := &Reader{opts: o, source: src}

	if c, ok := src.(io.Closer); ok {
		r.closer = c
	}

	hdr, err := r.readHeader()
	if err != nil {
		return nil, err
	}

	r.header = hdr

	return r, nil
}

// Close releases the underlying source, if it owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}

	return r.closer.Close()
}

// Header returns the file's header block: bounding box, feature flags, and
// replication metadata.
func (r *Reader) Header() model.Header {
	return r.header
}

// readHeader consumes the first frame, which must be an OSMHeader blob, and
// parses it. Breaking out of the range after one iteration stops the
// underlying generator before it reads any further bytes, so r.source is
// left positioned right after the header frame for Blocks/ForEach/
// ParMapReduce to pick up.
func (r *Reader) readHeader() (model.Header, error) {
	const op = "pbf.NewReader"

	var hdr model.Header

	var (
		frame decode.Frame
		ferr  error
		found bool
	)

	for f, err := range decode.GenerateFrameReader(context.Background(), r.source) {
		frame, ferr, found = f, err, true

		break
	}

	if !found {
		return hdr, wrapErr(op, KindFraming, io.ErrUnexpectedEOF)
	}

	if ferr != nil {
		return hdr, classifyFrameErr(op, ferr)
	}

	if frame.Header.Type != "OSMHeader" {
		return hdr, wrapErr(op, KindFraming, fmt.Errorf("expected OSMHeader blob, got %q", frame.Header.Type))
	}

	r.headerSize = frame.Size

	buf := core.NewPooledBuffer()
	defer buf.Close()

	payload, err := decode.Unpack(buf, frame.Blob)
	if err != nil {
		return hdr, wrapErr(op, KindCompression, err)
	}

	hdr, err = decode.ParseHeaderBlock(payload)
	if err != nil {
		if errors.Is(err, decode.ErrUnsupportedFeature) {
			return hdr, wrapErr(op, KindUnsupportedFeature, err)
		}

		return hdr, wrapErr(op, KindSchema, err)
	}

	return hdr, nil
}

// Blobs returns a lazy iterator over the OSMData blob frames following the
// header, each paired with its file offset and total frame size for later
// random access. Offsets count the header frame but no other bytes read
// from the source, so they are file offsets only when no blobs were consumed
// from the Reader before this call.
func (r *Reader) Blobs(ctx context.Context) func(yield func(decode.Frame, error) bool) {
	return func(yield func(decode.Frame, error) bool) {
		for f, err := range decode.GenerateFrameReader(ctx, r.source) {
			if err == nil {
				f.Offset += r.headerSize
			}

			if !yield(f, err) {
				return
			}
		}
	}
}

// Blocks returns a lazy iterator that unpacks and parses each blob into its
// entities, in file order. This is the C2-C5 pipeline feeding ForEach.
func (r *Reader) Blocks(ctx context.Context) func(yield func([]model.Entity, error) bool) {
	return func(yield func([]model.Entity, error) bool) {
		buf := core.NewPooledBuffer()
		defer buf.Close()

		for frame, ferr := range decode.GenerateFrameReader(ctx, r.source) {
			if ferr != nil {
				yield(nil, classifyFrameErr("pbf.Blocks", ferr))

				return
			}

			buf.Reset()

			payload, err := decode.Unpack(buf, frame.Blob)
			if err != nil {
				if !yield(nil, wrapErr("pbf.Blocks", KindCompression, err)) {
					return
				}

				continue
			}

			entities, err := decode.ParsePrimitiveBlock(payload)
			if err != nil {
				if !yield(nil, wrapErr("pbf.Blocks", KindInvariant, err)) {
					return
				}

				continue
			}

			if !yield(entities, nil) {
				return
			}
		}
	}
}

// ForEach invokes f once per element in file order, stopping on the first
// decode error or the first error f returns.
func (r *Reader) ForEach(ctx context.Context, f func(model.Entity) error) error {
	for entities, err := range r.Blocks(ctx) {
		if err != nil {
			return err
		}

		for _, e := range entities {
			if err := f(e); err != nil {
				return wrapErr("pbf.ForEach", KindUser, err)
			}
		}
	}

	return nil
}

// classifyFrameErr maps a raw framing/IO error into the right Kind.
func classifyFrameErr(op string, err error) error {
	switch {
	case errors.Is(err, decode.ErrBlobHeaderTooLarge), errors.Is(err, decode.ErrBlobHeaderEmpty), errors.Is(err, decode.ErrBlobTooLarge):
		return wrapErr(op, KindFraming, err)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return wrapErr(op, KindFraming, err)
	default:
		return wrapErr(op, KindIO, err)
	}
}

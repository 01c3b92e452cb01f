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
	"sync"

	"github.com/destel/rill"

	"github.com/osmx/pbf/internal/core"
	"github.com/osmx/pbf/internal/decode"
	"github.com/osmx/pbf/model"
)

// job is one dispatched blob, tagged with its position in file order so the
// collector can fold (and, on error, report) results deterministically. err
// is set instead of frame when the producer itself failed to read/frame
// that position (a truncated stream, an oversized descriptor).
type job struct {
	idx   int
	frame decode.Frame
	err   error
}

// partial is a worker's contribution for one blob: its locally-folded value
// or the error that interrupted folding, still tagged with idx.
type partial[T any] struct {
	idx int
	try rill.Try[T]
}

// ParMapReduce parallelizes map across every element of r's remaining blobs
// and folds the results through combine. map is invoked once per element;
// the per-blob results of map are folded together with combine, then
// cross-blob partials are folded again with the same combine -- so combine
// must be associative and zero must be its identity.
//
// Order of combination is unspecified unless the Reader was built with
// WithDeterministicReduce(true) (the default), in which case partials are
// folded strictly in blob file-order. Either way, if map or combine returns
// an error, the first such error in blob file-order is returned and the
// producer stops dispatching blobs once the error is seen; blobs already
// queued or in flight at that point may still be decoded.
//
// ParMapReduce is a package-level function, not a method, because Go does
// not allow a method to introduce its own type parameters.
func ParMapReduce[T any](ctx context.Context, r *Reader, mapFn func(model.Entity) (T, error), zero T, combine func(T, T) (T, error)) (T, error) {
	const op = "pbf.ParMapReduce"

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job, r.opts.queueDepthOrDefault())
	results := make(chan partial[T], r.opts.queueDepthOrDefault())

	go produceBlobs(ctx, r, jobs)

	var wg sync.WaitGroup

	wg.Add(r.opts.workers)

	for i := 0; i < r.opts.workers; i++ {
		go func() {
			defer wg.Done()

			runWorker(ctx, jobs, results, mapFn, zero, combine)
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	if r.opts.deterministicReduce {
		return collectOrdered(op, ctx, cancel, results, zero, combine)
	}

	return collectUnordered(op, ctx, cancel, results, zero, combine)
}

// produceBlobs is the C7 producer: it reads frames off the Reader's single
// underlying source as fast as framing allows and dispatches them to jobs,
// blocking once the bounded channel is full (the backpressure spec.md
// §4.7 requires to keep peak memory proportional to worker count).
func produceBlobs(ctx context.Context, r *Reader, jobs chan<- job) {
	defer close(jobs)

	idx := 0

	for frame, ferr := range decode.GenerateFrameReader(ctx, r.source) {
		if ferr != nil {
			select {
			case jobs <- job{idx: idx, err: classifyFrameErr("pbf.ParMapReduce", ferr)}:
			case <-ctx.Done():
			}

			return
		}

		select {
		case jobs <- job{idx: idx, frame: frame}:
		case <-ctx.Done():
			return
		}

		idx++
	}
}

// runWorker pulls jobs until the channel closes or ctx is cancelled,
// unpacking and parsing each blob (C2-C5), running mapFn over its elements,
// and folding the per-blob results locally with combine before handing the
// partial to the collector.
func runWorker[T any](ctx context.Context, jobs <-chan job, results chan<- partial[T], mapFn func(model.Entity) (T, error), zero T, combine func(T, T) (T, error)) {
	buf := core.NewPooledBuffer()
	defer buf.Close()

	for {
		select {
		case j, ok := <-jobs:
			if !ok {
				return
			}

			if j.err != nil {
				results <- partial[T]{idx: j.idx, try: rill.Try[T]{Error: j.err}}

				continue
			}

			results <- partial[T]{idx: j.idx, try: foldBlob(buf, j.frame, mapFn, zero, combine)}
		case <-ctx.Done():
			return
		}
	}
}

func foldBlob[T any](buf *core.PooledBuffer, frame decode.Frame, mapFn func(model.Entity) (T, error), zero T, combine func(T, T) (T, error)) rill.Try[T] {
	buf.Reset()

	payload, err := decode.Unpack(buf, frame.Blob)
	if err != nil {
		return rill.Try[T]{Error: wrapErr("pbf.ParMapReduce", KindCompression, err)}
	}

	entities, err := decode.ParsePrimitiveBlock(payload)
	if err != nil {
		return rill.Try[T]{Error: wrapErr("pbf.ParMapReduce", KindInvariant, err)}
	}

	acc := zero

	for _, e := range entities {
		v, err := mapFn(e)
		if err != nil {
			return rill.Try[T]{Error: wrapErr("pbf.ParMapReduce", KindUser, err)}
		}

		acc, err = combine(acc, v)
		if err != nil {
			return rill.Try[T]{Error: wrapErr("pbf.ParMapReduce", KindUser, err)}
		}
	}

	return rill.Try[T]{Value: acc}
}

// collectOrdered folds partials strictly in blob file-order, buffering
// out-of-order arrivals until the run becomes contiguous. The first error
// encountered in that order short-circuits the fold and cancels ctx so the
// producer stops dispatching further blobs.
func collectOrdered[T any](op string, ctx context.Context, cancel context.CancelFunc, results <-chan partial[T], zero T, combine func(T, T) (T, error)) (T, error) {
	pending := make(map[int]partial[T])
	next := 0
	acc := zero

	for p := range results {
		pending[p.idx] = p

		for {
			cur, ok := pending[next]
			if !ok {
				break
			}

			delete(pending, next)
			next++

			if cur.try.Error != nil {
				cancel()

				drain(results)

				return zero, cur.try.Error
			}

			var err error

			acc, err = combine(acc, cur.try.Value)
			if err != nil {
				cancel()

				drain(results)

				return zero, wrapErr(op, KindUser, err)
			}
		}
	}

	return acc, nil
}

// collectUnordered folds partials as they arrive, tracking the lowest-index
// error seen so that, per spec.md's "first error by blob file-order"
// contract, the reported error does not depend on goroutine scheduling even
// though the value fold itself does.
func collectUnordered[T any](op string, ctx context.Context, cancel context.CancelFunc, results <-chan partial[T], zero T, combine func(T, T) (T, error)) (T, error) {
	acc := zero

	var (
		firstErrIdx = -1
		firstErr    error
	)

	for p := range results {
		if p.try.Error != nil {
			if firstErrIdx == -1 || p.idx < firstErrIdx {
				firstErrIdx = p.idx
				firstErr = p.try.Error
			}

			cancel()

			continue
		}

		if firstErrIdx != -1 {
			continue
		}

		var err error

		acc, err = combine(acc, p.try.Value)
		if err != nil {
			firstErrIdx = p.idx
			firstErr = wrapErr(op, KindUser, err)

			cancel()
		}
	}

	if firstErr != nil {
		return zero, firstErr
	}

	return acc, nil
}

// drain empties results after a short-circuit so worker goroutines blocked
// on a send don't leak once ctx has been cancelled.
func drain[T any](results <-chan partial[T]) {
	for range results {
	}
}

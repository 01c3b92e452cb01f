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

import "runtime"

// options holds the Reader's tunables. Zero value is invalid; NewReader fills
// in defaults via defaultOptions before applying the caller's Option values.
type options struct {
	workers             int
	queueDepth          int
	deterministicReduce bool
}

// Option configures a Reader at construction time.
type Option func(*options)

func defaultOptions() options {
	return options{
		workers:             runtime.GOMAXPROCS(-1),
		queueDepth:          0, // resolved to 2x workers by queueDepthOrDefault if left at 0
		deterministicReduce: true,
	}
}

// WithWorkers sets the number of concurrent workers used by ParMapReduce.
// Values less than 1 are treated as 1.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}

		o.workers = n
	}
}

// WithQueueDepth bounds the number of undecoded blobs the producer may read
// ahead of the worker pool. The default is 2x the worker count, which caps
// peak memory at a small multiple of one blob's decompressed size regardless
// of input file size. Values less than 1 are treated as 1.
func WithQueueDepth(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}

		o.queueDepth = n
	}
}

// WithDeterministicReduce controls whether ParMapReduce folds partial
// results in blob file-order (true, the default) or via an arbitrary
// associative fold (false, which folds each partial as it arrives instead of
// holding out-of-order partials until every earlier blob has been folded).
func WithDeterministicReduce(deterministic bool) Option {
	return func(o *options) {
		o.deterministicReduce = deterministic
	}
}

func (o *options) queueDepthOrDefault() int {
	if o.queueDepth > 0 {
		return o.queueDepth
	}

	return 2 * o.workers
}

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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRandomAccessReader_NilSource(t *testing.T) {
	_, err := NewRandomAccessReader(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotSeekable)
}

func TestRandomAccessReader_BlockAt(t *testing.T) {
	data := buildPBFStream(t, "testwriter", []int{2, 4})

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer r.Close()

	var offsets []int64

	for f, err := range r.Blobs(context.Background()) {
		require.NoError(t, err)
		offsets = append(offsets, f.Offset)
	}

	require.Len(t, offsets, 2)

	rar, err := NewRandomAccessReader(bytes.NewReader(data))
	require.NoError(t, err)

	entities, err := rar.BlockAt(context.Background(), offsets[0])
	require.NoError(t, err)
	assert.Len(t, entities, 2)

	entities, err = rar.BlockAt(context.Background(), offsets[1])
	require.NoError(t, err)
	assert.Len(t, entities, 4)
}

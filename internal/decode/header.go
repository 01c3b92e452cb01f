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
	"errors"
	"fmt"
	"time"

	"github.com/osmx/pbf/internal/osmpb"
	"github.com/osmx/pbf/model"
)

// ErrUnsupportedFeature is wrapped with the offending feature names when a
// header declares a required feature this decoder does not implement.
var ErrUnsupportedFeature = errors.New("decode: unsupported required feature")

// ParseHeaderBlock decodes an OSMHeader blob's payload and validates its
// required_features against model.RecognizedFeatures, per spec's fail-closed
// requirement: any unrecognized required feature must stop decoding before a
// single element is produced.
func ParseHeaderBlock(data []byte) (model.Header, error) {
	hb, err := osmpb.UnmarshalHeaderBlock(data)
	if err != nil {
		return model.Header{}, fmt.Errorf("decode: parsing header block: %w", err)
	}

	if unsupported := model.UnsupportedFeatures(hb.RequiredFeatures); len(unsupported) > 0 {
		return model.Header{}, fmt.Errorf("%w: %v", ErrUnsupportedFeature, unsupported)
	}

	hdr := model.Header{
		RequiredFeatures: hb.RequiredFeatures,
		OptionalFeatures: hb.OptionalFeatures,
		WritingProgram:   hb.WritingProgram,
		Source:           hb.Source,
	}

	if hb.BBox != nil {
		hdr.BoundingBox = &model.BoundingBox{
			Left:   nanoToDegrees(hb.BBox.Left),
			Right:  nanoToDegrees(hb.BBox.Right),
			Top:    nanoToDegrees(hb.BBox.Top),
			Bottom: nanoToDegrees(hb.BBox.Bottom),
		}
	}

	if hb.OsmosisReplicationTimestamp != 0 {
		hdr.OsmosisReplicationTimestamp = time.Unix(hb.OsmosisReplicationTimestamp, 0).UTC()
	}

	hdr.OsmosisReplicationSequenceNumber = hb.OsmosisReplicationSeqNumber
	hdr.OsmosisReplicationBaseURL = hb.OsmosisReplicationBaseURL

	return hdr, nil
}

// nanoToDegrees converts the header bbox's nanodegree (1e-9) fixed-point
// integers to Degrees, distinct from the granularity-scaled coordinates used
// by PrimitiveBlock nodes.
func nanoToDegrees(v int64) model.Degrees {
	return model.Degrees(float64(v) / 1e9)
}

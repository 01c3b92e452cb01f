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

package model

import (
	"time"
)

// Header is the contents of the OSMHeader blob: bounding box, feature
// flags, and replication metadata.
type Header struct {
	BoundingBox                      *BoundingBox `json:"bounding_box,omitempty"`
	RequiredFeatures                 []string     `json:"required_features,omitempty"`
	OptionalFeatures                 []string     `json:"optional_features,omitempty"`
	WritingProgram                   string       `json:"writing_program,omitempty"`
	Source                           string       `json:"source,omitempty"`
	OsmosisReplicationTimestamp      time.Time    `json:"osmosis_replication_timestamp"`
	OsmosisReplicationSequenceNumber int64        `json:"osmosis_replication_sequence_number,omitempty"`
	OsmosisReplicationBaseURL        string       `json:"osmosis_replication_base_url,omitempty"`
}

// RecognizedFeatures is the set of required-feature strings this decoder
// understands. A header declaring a required feature outside this set must
// be rejected before any element is produced (spec §3).
var RecognizedFeatures = map[string]bool{
	"OsmSchema-V0.6":    true,
	"DenseNodes":        true,
	"Sort.Type_then_ID": true,
}

// UnsupportedFeatures returns the subset of required that this decoder does
// not recognize, preserving order.
func UnsupportedFeatures(required []string) []string {
	var unsupported []string

	for _, f := range required {
		if !RecognizedFeatures[f] {
			unsupported = append(unsupported, f)
		}
	}

	return unsupported
}

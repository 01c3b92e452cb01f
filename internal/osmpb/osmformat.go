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

// HeaderBBox is the header block's optional bounding box, stored as
// nanodegrees (1e-9) per osmformat.proto.
type HeaderBBox struct {
	Left, Right, Top, Bottom int64
	HasLeft, HasRight, HasTop, HasBottom bool
}

// HeaderBlock is the payload of the leading OSMHeader blob.
type HeaderBlock struct {
	BBox                        *HeaderBBox
	RequiredFeatures            []string
	OptionalFeatures            []string
	WritingProgram              string
	Source                      string
	OsmosisReplicationTimestamp  int64
	OsmosisReplicationSeqNumber  int64
	OsmosisReplicationBaseURL    string
}

func UnmarshalHeaderBlock(b []byte) (*HeaderBlock, error) {
	hb := &HeaderBlock{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("osmpb: HeaderBlock tag: %w", ErrTruncatedMessage)
		}

		b = b[n:]

		switch num {
		case 1: // bbox
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: HeaderBlock.bbox: %w", ErrTruncatedMessage)
			}

			bbox, err := unmarshalHeaderBBox(v)
			if err != nil {
				return nil, err
			}

			hb.BBox = bbox
			b = b[n:]

		case 4: // required_features
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: HeaderBlock.required_features: %w", ErrTruncatedMessage)
			}

			hb.RequiredFeatures = append(hb.RequiredFeatures, v)
			b = b[n:]

		case 5: // optional_features
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: HeaderBlock.optional_features: %w", ErrTruncatedMessage)
			}

			hb.OptionalFeatures = append(hb.OptionalFeatures, v)
			b = b[n:]

		case 16: // writingprogram
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: HeaderBlock.writingprogram: %w", ErrTruncatedMessage)
			}

			hb.WritingProgram = v
			b = b[n:]

		case 17: // source
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: HeaderBlock.source: %w", ErrTruncatedMessage)
			}

			hb.Source = v
			b = b[n:]

		case 32: // osmosis_replication_timestamp
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: HeaderBlock.osmosis_replication_timestamp: %w", ErrTruncatedMessage)
			}

			hb.OsmosisReplicationTimestamp = int64(v)
			b = b[n:]

		case 33: // osmosis_replication_sequence_number
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: HeaderBlock.osmosis_replication_sequence_number: %w", ErrTruncatedMessage)
			}

			hb.OsmosisReplicationSeqNumber = int64(v)
			b = b[n:]

		case 34: // osmosis_replication_base_url
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: HeaderBlock.osmosis_replication_base_url: %w", ErrTruncatedMessage)
			}

			hb.OsmosisReplicationBaseURL = v
			b = b[n:]

		default:
			n, err := consumeUnknown(num, typ, b)
			if err != nil {
				return nil, err
			}

			b = b[n:]
		}
	}

	return hb, nil
}

func unmarshalHeaderBBox(b []byte) (*HeaderBBox, error) {
	bbox := &HeaderBBox{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("osmpb: HeaderBBox tag: %w", ErrTruncatedMessage)
		}

		b = b[n:]

		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: HeaderBBox.left: %w", ErrTruncatedMessage)
			}

			bbox.Left = protowire.DecodeZigZag(v)
			bbox.HasLeft = true
			b = b[n:]

		case 2:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: HeaderBBox.right: %w", ErrTruncatedMessage)
			}

			bbox.Right = protowire.DecodeZigZag(v)
			bbox.HasRight = true
			b = b[n:]

		case 3:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: HeaderBBox.top: %w", ErrTruncatedMessage)
			}

			bbox.Top = protowire.DecodeZigZag(v)
			bbox.HasTop = true
			b = b[n:]

		case 4:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: HeaderBBox.bottom: %w", ErrTruncatedMessage)
			}

			bbox.Bottom = protowire.DecodeZigZag(v)
			bbox.HasBottom = true
			b = b[n:]

		default:
			n, err := consumeUnknown(num, typ, b)
			if err != nil {
				return nil, err
			}

			b = b[n:]
		}
	}

	return bbox, nil
}

// StringTable is the per-block string pool; index 0 is always reserved/empty.
type StringTable struct {
	S [][]byte
}

func unmarshalStringTable(b []byte) (*StringTable, error) {
	st := &StringTable{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("osmpb: StringTable tag: %w", ErrTruncatedMessage)
		}

		b = b[n:]

		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: StringTable.s: %w", ErrTruncatedMessage)
			}

			st.S = append(st.S, append([]byte(nil), v...))
			b = b[n:]

		default:
			n, err := consumeUnknown(num, typ, b)
			if err != nil {
				return nil, err
			}

			b = b[n:]
		}
	}

	return st, nil
}

// Info is per-entity version/author metadata, present on plain (non-dense)
// elements.
type Info struct {
	Version       int32
	HasVersion    bool
	Timestamp     int64
	HasTimestamp  bool
	Changeset     int64
	HasChangeset  bool
	UID           int32
	HasUID        bool
	UserSID       uint32
	HasUserSID    bool
	Visible       bool
	HasVisible    bool
}

func unmarshalInfo(b []byte) (*Info, error) {
	info := &Info{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("osmpb: Info tag: %w", ErrTruncatedMessage)
		}

		b = b[n:]

		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Info.version: %w", ErrTruncatedMessage)
			}

			info.Version = int32(v)
			info.HasVersion = true
			b = b[n:]

		case 2:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Info.timestamp: %w", ErrTruncatedMessage)
			}

			info.Timestamp = int64(v)
			info.HasTimestamp = true
			b = b[n:]

		case 3:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Info.changeset: %w", ErrTruncatedMessage)
			}

			info.Changeset = int64(v)
			info.HasChangeset = true
			b = b[n:]

		case 4:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Info.uid: %w", ErrTruncatedMessage)
			}

			info.UID = int32(v)
			info.HasUID = true
			b = b[n:]

		case 5:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Info.user_sid: %w", ErrTruncatedMessage)
			}

			info.UserSID = uint32(v)
			info.HasUserSID = true
			b = b[n:]

		case 6:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Info.visible: %w", ErrTruncatedMessage)
			}

			info.Visible = v != 0
			info.HasVisible = true
			b = b[n:]

		default:
			n, err := consumeUnknown(num, typ, b)
			if err != nil {
				return nil, err
			}

			b = b[n:]
		}
	}

	return info, nil
}

// DenseInfo parallels DenseNodes: each field is a per-node column rather
// than a single scalar. Timestamp, Changeset, UID and UserSID are
// delta-encoded; Version and Visible are stored as is.
type DenseInfo struct {
	Version   []int32
	Timestamp []int64
	Changeset []int64
	UID       []int32
	UserSID   []int32
	Visible   []bool
}

func unmarshalDenseInfo(b []byte) (*DenseInfo, error) {
	di := &DenseInfo{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("osmpb: DenseInfo tag: %w", ErrTruncatedMessage)
		}

		b = b[n:]

		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: DenseInfo.version: %w", ErrTruncatedMessage)
			}

			vs, err := packedInt32(v)
			if err != nil {
				return nil, err
			}

			di.Version = vs
			b = b[n:]

		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: DenseInfo.timestamp: %w", ErrTruncatedMessage)
			}

			vs, err := packedSint64(v)
			if err != nil {
				return nil, err
			}

			di.Timestamp = vs
			b = b[n:]

		case 3:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: DenseInfo.changeset: %w", ErrTruncatedMessage)
			}

			vs, err := packedSint64(v)
			if err != nil {
				return nil, err
			}

			di.Changeset = vs
			b = b[n:]

		case 4:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: DenseInfo.uid: %w", ErrTruncatedMessage)
			}

			vs, err := packedSint32(v)
			if err != nil {
				return nil, err
			}

			di.UID = vs
			b = b[n:]

		case 5:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: DenseInfo.user_sid: %w", ErrTruncatedMessage)
			}

			vs, err := packedSint32(v)
			if err != nil {
				return nil, err
			}

			di.UserSID = vs
			b = b[n:]

		case 6:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: DenseInfo.visible: %w", ErrTruncatedMessage)
			}

			vs, err := packedBool(v)
			if err != nil {
				return nil, err
			}

			di.Visible = vs
			b = b[n:]

		default:
			n, err := consumeUnknown(num, typ, b)
			if err != nil {
				return nil, err
			}

			b = b[n:]
		}
	}

	return di, nil
}

// Node is a plain (non-dense) node, rarely emitted by real writers but part
// of the schema.
type Node struct {
	ID     int64
	Keys   []uint32
	Vals   []uint32
	Info   *Info
	Lat    int64
	Lon    int64
}

func unmarshalNode(b []byte) (*Node, error) {
	node := &Node{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("osmpb: Node tag: %w", ErrTruncatedMessage)
		}

		b = b[n:]

		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Node.id: %w", ErrTruncatedMessage)
			}

			node.ID = int64(v)
			b = b[n:]

		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Node.keys: %w", ErrTruncatedMessage)
			}

			vs, err := packedUint32(v)
			if err != nil {
				return nil, err
			}

			node.Keys = vs
			b = b[n:]

		case 3:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Node.vals: %w", ErrTruncatedMessage)
			}

			vs, err := packedUint32(v)
			if err != nil {
				return nil, err
			}

			node.Vals = vs
			b = b[n:]

		case 4:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Node.info: %w", ErrTruncatedMessage)
			}

			info, err := unmarshalInfo(v)
			if err != nil {
				return nil, err
			}

			node.Info = info
			b = b[n:]

		case 8:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Node.lat: %w", ErrTruncatedMessage)
			}

			node.Lat = protowire.DecodeZigZag(v)
			b = b[n:]

		case 9:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Node.lon: %w", ErrTruncatedMessage)
			}

			node.Lon = protowire.DecodeZigZag(v)
			b = b[n:]

		default:
			n, err := consumeUnknown(num, typ, b)
			if err != nil {
				return nil, err
			}

			b = b[n:]
		}
	}

	return node, nil
}

// DenseNodes holds a run of nodes whose id/lat/lon/keyvals/info are each
// delta- or flat-encoded column-wise rather than repeated per node.
type DenseNodes struct {
	ID        []int64
	DenseInfo *DenseInfo
	Lat       []int64
	Lon       []int64
	KeysVals  []int32
}

func unmarshalDenseNodes(b []byte) (*DenseNodes, error) {
	dn := &DenseNodes{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("osmpb: DenseNodes tag: %w", ErrTruncatedMessage)
		}

		b = b[n:]

		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: DenseNodes.id: %w", ErrTruncatedMessage)
			}

			vs, err := packedSint64(v)
			if err != nil {
				return nil, err
			}

			dn.ID = vs
			b = b[n:]

		case 5:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: DenseNodes.denseinfo: %w", ErrTruncatedMessage)
			}

			di, err := unmarshalDenseInfo(v)
			if err != nil {
				return nil, err
			}

			dn.DenseInfo = di
			b = b[n:]

		case 8:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: DenseNodes.lat: %w", ErrTruncatedMessage)
			}

			vs, err := packedSint64(v)
			if err != nil {
				return nil, err
			}

			dn.Lat = vs
			b = b[n:]

		case 9:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: DenseNodes.lon: %w", ErrTruncatedMessage)
			}

			vs, err := packedSint64(v)
			if err != nil {
				return nil, err
			}

			dn.Lon = vs
			b = b[n:]

		case 10:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: DenseNodes.keys_vals: %w", ErrTruncatedMessage)
			}

			vs, err := packedInt32(v)
			if err != nil {
				return nil, err
			}

			dn.KeysVals = vs
			b = b[n:]

		default:
			n, err := consumeUnknown(num, typ, b)
			if err != nil {
				return nil, err
			}

			b = b[n:]
		}
	}

	return dn, nil
}

// Way is a polyline: an ordered run of delta-encoded node id refs plus
// flat keys/vals tag indices.
type Way struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Refs []int64
}

func unmarshalWay(b []byte) (*Way, error) {
	way := &Way{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("osmpb: Way tag: %w", ErrTruncatedMessage)
		}

		b = b[n:]

		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Way.id: %w", ErrTruncatedMessage)
			}

			way.ID = int64(v)
			b = b[n:]

		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Way.keys: %w", ErrTruncatedMessage)
			}

			vs, err := packedUint32(v)
			if err != nil {
				return nil, err
			}

			way.Keys = vs
			b = b[n:]

		case 3:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Way.vals: %w", ErrTruncatedMessage)
			}

			vs, err := packedUint32(v)
			if err != nil {
				return nil, err
			}

			way.Vals = vs
			b = b[n:]

		case 4:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Way.info: %w", ErrTruncatedMessage)
			}

			info, err := unmarshalInfo(v)
			if err != nil {
				return nil, err
			}

			way.Info = info
			b = b[n:]

		case 8:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Way.refs: %w", ErrTruncatedMessage)
			}

			vs, err := packedSint64(v)
			if err != nil {
				return nil, err
			}

			way.Refs = vs
			b = b[n:]

		default:
			n, err := consumeUnknown(num, typ, b)
			if err != nil {
				return nil, err
			}

			b = b[n:]
		}
	}

	return way, nil
}

// RelationMemberType mirrors the Relation.MemberType wire enum.
type RelationMemberType int32

const (
	MemberNode RelationMemberType = iota
	MemberWay
	MemberRelation
)

// Relation documents a relationship between member entities, each referenced
// by a delta-encoded memid plus a parallel type/role-sid triple.
type Relation struct {
	ID        int64
	Keys      []uint32
	Vals      []uint32
	Info      *Info
	RolesSID  []int32
	MemIDs    []int64
	Types     []RelationMemberType
}

func unmarshalRelation(b []byte) (*Relation, error) {
	rel := &Relation{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("osmpb: Relation tag: %w", ErrTruncatedMessage)
		}

		b = b[n:]

		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Relation.id: %w", ErrTruncatedMessage)
			}

			rel.ID = int64(v)
			b = b[n:]

		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Relation.keys: %w", ErrTruncatedMessage)
			}

			vs, err := packedUint32(v)
			if err != nil {
				return nil, err
			}

			rel.Keys = vs
			b = b[n:]

		case 3:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Relation.vals: %w", ErrTruncatedMessage)
			}

			vs, err := packedUint32(v)
			if err != nil {
				return nil, err
			}

			rel.Vals = vs
			b = b[n:]

		case 4:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Relation.info: %w", ErrTruncatedMessage)
			}

			info, err := unmarshalInfo(v)
			if err != nil {
				return nil, err
			}

			rel.Info = info
			b = b[n:]

		case 8:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Relation.roles_sid: %w", ErrTruncatedMessage)
			}

			vs, err := packedInt32(v)
			if err != nil {
				return nil, err
			}

			rel.RolesSID = vs
			b = b[n:]

		case 9:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Relation.memids: %w", ErrTruncatedMessage)
			}

			vs, err := packedSint64(v)
			if err != nil {
				return nil, err
			}

			rel.MemIDs = vs
			b = b[n:]

		case 10:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: Relation.types: %w", ErrTruncatedMessage)
			}

			vs, err := consumePackedVarint(v)
			if err != nil {
				return nil, err
			}

			types := make([]RelationMemberType, len(vs))
			for i, t := range vs {
				types[i] = RelationMemberType(t)
			}

			rel.Types = types
			b = b[n:]

		default:
			n, err := consumeUnknown(num, typ, b)
			if err != nil {
				return nil, err
			}

			b = b[n:]
		}
	}

	return rel, nil
}

// PrimitiveGroup is a homogeneous run of one element kind: exactly one of
// the fields below is populated per spec's "never-mixed" invariant.
type PrimitiveGroup struct {
	Nodes      []*Node
	DenseNodes *DenseNodes
	Ways       []*Way
	Relations  []*Relation
}

func unmarshalPrimitiveGroup(b []byte) (*PrimitiveGroup, error) {
	pg := &PrimitiveGroup{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("osmpb: PrimitiveGroup tag: %w", ErrTruncatedMessage)
		}

		b = b[n:]

		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: PrimitiveGroup.nodes: %w", ErrTruncatedMessage)
			}

			node, err := unmarshalNode(v)
			if err != nil {
				return nil, err
			}

			pg.Nodes = append(pg.Nodes, node)
			b = b[n:]

		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: PrimitiveGroup.dense: %w", ErrTruncatedMessage)
			}

			dn, err := unmarshalDenseNodes(v)
			if err != nil {
				return nil, err
			}

			pg.DenseNodes = dn
			b = b[n:]

		case 3:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: PrimitiveGroup.ways: %w", ErrTruncatedMessage)
			}

			way, err := unmarshalWay(v)
			if err != nil {
				return nil, err
			}

			pg.Ways = append(pg.Ways, way)
			b = b[n:]

		case 4:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: PrimitiveGroup.relations: %w", ErrTruncatedMessage)
			}

			rel, err := unmarshalRelation(v)
			if err != nil {
				return nil, err
			}

			pg.Relations = append(pg.Relations, rel)
			b = b[n:]

		default:
			n, err := consumeUnknown(num, typ, b)
			if err != nil {
				return nil, err
			}

			b = b[n:]
		}
	}

	return pg, nil
}

// PrimitiveBlock is the payload of an OSMData blob: a string table, the
// delta coordinate parameters, and an ordered run of PrimitiveGroups.
type PrimitiveBlock struct {
	StringTable        *StringTable
	Groups             []*PrimitiveGroup
	Granularity        int32
	HasGranularity     bool
	LatOffset          int64
	LonOffset          int64
	DateGranularity    int32
	HasDateGranularity bool
}

func UnmarshalPrimitiveBlock(b []byte) (*PrimitiveBlock, error) {
	pb := &PrimitiveBlock{
		Granularity:     100,
		DateGranularity: 1000,
	}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("osmpb: PrimitiveBlock tag: %w", ErrTruncatedMessage)
		}

		b = b[n:]

		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: PrimitiveBlock.stringtable: %w", ErrTruncatedMessage)
			}

			st, err := unmarshalStringTable(v)
			if err != nil {
				return nil, err
			}

			pb.StringTable = st
			b = b[n:]

		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: PrimitiveBlock.primitivegroup: %w", ErrTruncatedMessage)
			}

			pg, err := unmarshalPrimitiveGroup(v)
			if err != nil {
				return nil, err
			}

			pb.Groups = append(pb.Groups, pg)
			b = b[n:]

		case 17:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: PrimitiveBlock.granularity: %w", ErrTruncatedMessage)
			}

			pb.Granularity = int32(v)
			pb.HasGranularity = true
			b = b[n:]

		case 18:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: PrimitiveBlock.date_granularity: %w", ErrTruncatedMessage)
			}

			pb.DateGranularity = int32(v)
			pb.HasDateGranularity = true
			b = b[n:]

		case 19:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: PrimitiveBlock.lat_offset: %w", ErrTruncatedMessage)
			}

			pb.LatOffset = int64(v)
			b = b[n:]

		case 20:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("osmpb: PrimitiveBlock.lon_offset: %w", ErrTruncatedMessage)
			}

			pb.LonOffset = int64(v)
			b = b[n:]

		default:
			n, err := consumeUnknown(num, typ, b)
			if err != nil {
				return nil, err
			}

			b = b[n:]
		}
	}

	return pb, nil
}

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

// ErrDenseColumnMismatch is returned when a DenseNodes group's parallel
// columns (id/lat/lon/denseinfo) don't share the same run length, when its
// keys_vals column holds entries past the last node's terminator, or when a
// relation's memids/types/roles_sid columns differ in length.
var ErrDenseColumnMismatch = errors.New("decode: dense column length mismatch")

// ErrKeysValsUnterminated is returned when a dense keys_vals column runs out
// of entries before hitting the sentinel 0 that should terminate the last
// node's tag run.
var ErrKeysValsUnterminated = errors.New("decode: keys_vals run not terminated")

// ErrTagColumnMismatch is returned when a plain Node/Way/Relation's keys and
// vals columns don't share the same length.
var ErrTagColumnMismatch = errors.New("decode: tag key/val column length mismatch")

// ErrUnknownMemberType is returned when a relation member's type code is
// none of NODE(0)/WAY(1)/RELATION(2).
var ErrUnknownMemberType = errors.New("decode: unknown relation member type")

// ParsePrimitiveBlock decodes the payload of an OSMData blob into the
// entities of each of its groups, in file order.
func ParsePrimitiveBlock(data []byte) ([]model.Entity, error) {
	blk, err := osmpb.UnmarshalPrimitiveBlock(data)
	if err != nil {
		return nil, fmt.Errorf("decode: parsing primitive block: %w", err)
	}

	c := newBlockContext(blk)

	var entities []model.Entity

	for _, pg := range blk.Groups {
		nodes, err := c.decodeNodes(pg.Nodes)
		if err != nil {
			return nil, err
		}

		entities = append(entities, nodes...)

		dense, err := c.decodeDenseNodes(pg.DenseNodes)
		if err != nil {
			return nil, err
		}

		entities = append(entities, dense...)

		ways, err := c.decodeWays(pg.Ways)
		if err != nil {
			return nil, err
		}

		entities = append(entities, ways...)

		relations, err := c.decodeRelations(pg.Relations)
		if err != nil {
			return nil, err
		}

		entities = append(entities, relations...)
	}

	return entities, nil
}

func (c *blockContext) decodeNodes(nodes []*osmpb.Node) ([]model.Entity, error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	entities := make([]model.Entity, len(nodes))

	for i, n := range nodes {
		tags, err := c.decodeTags(n.Keys, n.Vals)
		if err != nil {
			return nil, err
		}

		info, err := c.decodeInfo(n.Info)
		if err != nil {
			return nil, err
		}

		entities[i] = model.Node{
			ID:   model.ID(n.ID),
			Tags: tags,
			Info: info,
			Lat:  model.ToDegrees(c.latOffset, c.granularity, n.Lat),
			Lon:  model.ToDegrees(c.lonOffset, c.granularity, n.Lon),
		}
	}

	return entities, nil
}

func (c *blockContext) decodeDenseNodes(dn *osmpb.DenseNodes) ([]model.Entity, error) {
	if dn == nil {
		return nil, nil
	}

	ids := dn.ID
	lats := dn.Lat
	lons := dn.Lon

	if len(lats) != len(ids) || len(lons) != len(ids) {
		return nil, fmt.Errorf("%w: ids=%d lats=%d lons=%d", ErrDenseColumnMismatch, len(ids), len(lats), len(lons))
	}

	entities := make([]model.Entity, len(ids))

	tic := c.newTagsContext(dn.KeysVals)

	dic, err := c.newDenseInfoContext(dn.DenseInfo, len(ids))
	if err != nil {
		return nil, err
	}

	var id, lat, lon int64

	for i := range ids {
		id += ids[i]
		lat += lats[i]
		lon += lons[i]

		tags, err := tic.decodeTags()
		if err != nil {
			return nil, err
		}

		info, err := dic.decodeInfo(i)
		if err != nil {
			return nil, err
		}

		entities[i] = model.Node{
			ID:   model.ID(id),
			Tags: tags,
			Info: info,
			Lat:  model.ToDegrees(c.latOffset, c.granularity, lat),
			Lon:  model.ToDegrees(c.lonOffset, c.granularity, lon),
		}
	}

	if tic.keyVals != nil && tic.i != len(tic.keyVals) {
		return nil, fmt.Errorf("%w: %d keys_vals entries left after %d nodes", ErrDenseColumnMismatch, len(tic.keyVals)-tic.i, len(ids))
	}

	return entities, nil
}

func (c *blockContext) decodeWays(ways []*osmpb.Way) ([]model.Entity, error) {
	if len(ways) == 0 {
		return nil, nil
	}

	entities := make([]model.Entity, len(ways))

	for i, w := range ways {
		tags, err := c.decodeTags(w.Keys, w.Vals)
		if err != nil {
			return nil, err
		}

		info, err := c.decodeInfo(w.Info)
		if err != nil {
			return nil, err
		}

		nodeIDs := make([]model.ID, len(w.Refs))

		var nodeID int64

		for j, delta := range w.Refs {
			nodeID += delta
			nodeIDs[j] = model.ID(nodeID)
		}

		entities[i] = model.Way{
			ID:      model.ID(w.ID),
			Tags:    tags,
			NodeIDs: nodeIDs,
			Info:    info,
		}
	}

	return entities, nil
}

func (c *blockContext) decodeRelations(relations []*osmpb.Relation) ([]model.Entity, error) {
	if len(relations) == 0 {
		return nil, nil
	}

	entities := make([]model.Entity, len(relations))

	for i, r := range relations {
		tags, err := c.decodeTags(r.Keys, r.Vals)
		if err != nil {
			return nil, err
		}

		info, err := c.decodeInfo(r.Info)
		if err != nil {
			return nil, err
		}

		members, err := c.decodeMembers(r)
		if err != nil {
			return nil, err
		}

		entities[i] = model.Relation{
			ID:      model.ID(r.ID),
			Tags:    tags,
			Info:    info,
			Members: members,
		}
	}

	return entities, nil
}

func (c *blockContext) decodeMembers(r *osmpb.Relation) ([]model.Member, error) {
	memids := r.MemIDs
	memtypes := r.Types
	memroles := r.RolesSID

	if len(memtypes) != len(memids) || len(memroles) != len(memids) {
		return nil, fmt.Errorf("%w: memids=%d types=%d roles=%d", ErrDenseColumnMismatch, len(memids), len(memtypes), len(memroles))
	}

	members := make([]model.Member, len(memids))

	var memid int64

	for i := range memids {
		memid += memids[i]

		role, err := c.string(uint32(memroles[i]))
		if err != nil {
			return nil, err
		}

		mtype, err := decodeMemberType(memtypes[i])
		if err != nil {
			return nil, err
		}

		members[i] = model.Member{
			ID:   model.ID(memid),
			Type: mtype,
			Role: role,
		}
	}

	return members, nil
}

func (c *blockContext) decodeTags(keyIDs, valIDs []uint32) (map[string]string, error) {
	if len(keyIDs) == 0 {
		return nil, nil
	}

	if len(valIDs) != len(keyIDs) {
		return nil, fmt.Errorf("%w: keys=%d vals=%d", ErrTagColumnMismatch, len(keyIDs), len(valIDs))
	}

	tags := make(map[string]string, len(keyIDs))

	for i, keyID := range keyIDs {
		k, err := c.string(keyID)
		if err != nil {
			return nil, err
		}

		v, err := c.string(valIDs[i])
		if err != nil {
			return nil, err
		}

		tags[k] = v
	}

	return tags, nil
}

func (c *blockContext) decodeInfo(info *osmpb.Info) (*model.Info, error) {
	if info == nil {
		return &model.Info{Visible: true}, nil
	}

	i := &model.Info{
		Version:   info.Version,
		Timestamp: toTimestamp(c.dateGranularity, info.Timestamp),
		Changeset: info.Changeset,
		UID:       model.UID(info.UID),
		Visible:   true,
	}

	if info.HasUserSID {
		user, err := c.string(info.UserSID)
		if err != nil {
			return nil, err
		}

		i.User = user
	}

	if info.HasVisible {
		i.Visible = info.Visible
	}

	return i, nil
}

// denseInfoContext accumulates the delta-encoded DenseInfo columns into the
// running totals each index needs, mirroring the dense node id/lat/lon
// accumulation one level up. The version and visible columns are not delta
// coded and are read per index as stored.
type denseInfoContext struct {
	version   int32
	uid       int32
	timestamp int64
	changeset int64
	userSid   int32

	dateGranularity int32
	strings         [][]byte
	versions        []int32
	uids            []int32
	timestamps      []int64
	changesets      []int64
	userSids        []int32
	visibilities    []bool
}

func (c *blockContext) newDenseInfoContext(di *osmpb.DenseInfo, n int) (*denseInfoContext, error) {
	dic := &denseInfoContext{dateGranularity: c.dateGranularity, strings: c.strings}

	if di == nil {
		return dic, nil
	}

	for _, col := range [][]int32{di.Version, di.UID, di.UserSID} {
		if len(col) != 0 && len(col) != n {
			return nil, fmt.Errorf("%w: column length %d, expected %d", ErrDenseColumnMismatch, len(col), n)
		}
	}

	for _, col := range [][]int64{di.Timestamp, di.Changeset} {
		if len(col) != 0 && len(col) != n {
			return nil, fmt.Errorf("%w: column length %d, expected %d", ErrDenseColumnMismatch, len(col), n)
		}
	}

	dic.versions = di.Version
	dic.uids = di.UID
	dic.timestamps = di.Timestamp
	dic.changesets = di.Changeset
	dic.userSids = di.UserSID

	if len(di.Visible) == n {
		dic.visibilities = di.Visible
	}

	return dic, nil
}

func (dic *denseInfoContext) decodeInfo(i int) (*model.Info, error) {
	if len(dic.versions) == 0 && len(dic.uids) == 0 && len(dic.timestamps) == 0 &&
		len(dic.changesets) == 0 && len(dic.userSids) == 0 && dic.visibilities == nil {
		return &model.Info{Visible: true}, nil
	}

	if len(dic.versions) != 0 {
		dic.version = dic.versions[i]
	}

	if len(dic.uids) != 0 {
		dic.uid += dic.uids[i]
	}

	if len(dic.timestamps) != 0 {
		dic.timestamp += dic.timestamps[i]
	}

	if len(dic.changesets) != 0 {
		dic.changeset += dic.changesets[i]
	}

	if len(dic.userSids) != 0 {
		dic.userSid += dic.userSids[i]
	}

	info := &model.Info{
		Version:   dic.version,
		UID:       model.UID(dic.uid),
		Timestamp: toTimestamp(dic.dateGranularity, dic.timestamp),
		Changeset: dic.changeset,
		Visible:   true,
	}

	if dic.userSid != 0 {
		user, err := stringAt(dic.strings, uint32(dic.userSid))
		if err != nil {
			return nil, err
		}

		info.User = user
	}

	if dic.visibilities != nil {
		info.Visible = dic.visibilities[i]
	}

	return info, nil
}

// tagsContext walks a dense group's flat keys_vals column, which packs every
// node's tags back-to-back and terminates each node's run with a 0 index.
type tagsContext struct {
	strings [][]byte
	i       int
	keyVals []int32
}

func (c *blockContext) newTagsContext(keyVals []int32) *tagsContext {
	return &tagsContext{strings: c.strings, keyVals: keyVals}
}

func (tic *tagsContext) decodeTags() (map[string]string, error) {
	if tic.keyVals == nil {
		return nil, nil
	}

	var tags map[string]string

	for {
		if tic.i >= len(tic.keyVals) {
			return nil, ErrKeysValsUnterminated
		}

		keyIdx := tic.keyVals[tic.i]
		if keyIdx == 0 {
			tic.i++

			return tags, nil
		}

		if tic.i+1 >= len(tic.keyVals) {
			return nil, ErrKeysValsUnterminated
		}

		valIdx := tic.keyVals[tic.i+1]

		k, err := stringAt(tic.strings, uint32(keyIdx))
		if err != nil {
			return nil, err
		}

		v, err := stringAt(tic.strings, uint32(valIdx))
		if err != nil {
			return nil, err
		}

		if tags == nil {
			tags = make(map[string]string)
		}

		tags[k] = v
		tic.i += 2
	}
}

func stringAt(table [][]byte, idx uint32) (string, error) {
	if int(idx) >= len(table) {
		return "", fmt.Errorf("%w: index %d, table size %d", ErrStringIndexOutOfRange, idx, len(table))
	}

	return string(table[idx]), nil
}

// decodeMemberType converts the wire enum to the public EntityType, failing
// on any code outside NODE(0)/WAY(1)/RELATION(2) rather than guessing.
func decodeMemberType(mt osmpb.RelationMemberType) (model.EntityType, error) {
	switch mt {
	case osmpb.MemberNode:
		return model.NODE, nil
	case osmpb.MemberWay:
		return model.WAY, nil
	case osmpb.MemberRelation:
		return model.RELATION, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownMemberType, mt)
	}
}

// toTimestamp converts a timestamp expressed in units of granularity
// milliseconds to a UTC time.Time.
func toTimestamp(granularity int32, timestamp int64) time.Time {
	if granularity == 0 {
		granularity = 1000
	}

	return time.UnixMilli(timestamp * int64(granularity)).UTC()
}

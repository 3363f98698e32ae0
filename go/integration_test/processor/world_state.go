// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package processor

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/Fantom-foundation/Tessera/go/ledger"
)

// ----------------------------------------------------------------------------
// WorldState
// ----------------------------------------------------------------------------

// WorldState provides a utility to model the live objects of a ledger for
// testing. It is mainly intended to be used to define pre/post states of
// test scenarios for transaction processors. Objects not listed are
// expected to be absent.
type WorldState map[ledger.ObjectID]Object

func (s WorldState) Equal(other WorldState) bool {
	return equalMapsIgnoringZero(s, other, func(a, b Object) bool {
		return a.Equal(&b)
	})
}

func (s WorldState) Clone() WorldState {
	if s == nil {
		return nil
	}
	res := make(WorldState, len(s))
	for k, v := range s {
		res[k] = v.Clone()
	}
	return res
}

func (s WorldState) Diff(other WorldState) []string {
	return diffMaps("", s, other, func(id ledger.ObjectID, a, b Object) []string {
		if a.Equal(&b) {
			return nil
		}
		return a.Diff(fmt.Sprintf("%v/", id.ShortString()), &b)
	})
}

// Objects materializes the world state, ordered by id.
func (s WorldState) Objects() []*ledger.Object {
	res := make([]*ledger.Object, 0, len(s))
	for id, o := range s {
		if !o.IsZero() {
			res = append(res, o.ToLedger(id))
		}
	}
	slices.SortFunc(res, func(a, b *ledger.Object) int {
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	return res
}

// Ref returns the current reference of an object of the world state.
func (s WorldState) Ref(id ledger.ObjectID) ledger.ObjectRef {
	o := s[id]
	return o.ToLedger(id).Ref()
}

// ----------------------------------------------------------------------------
// Object
// ----------------------------------------------------------------------------

// Object represents an object in the world state. The zero value stands for
// an absent object and is ignored by the world state.
type Object struct {
	Version       ledger.Version
	Owner         ledger.Owner
	Type          ledger.TypeTag
	Contents      []ledger.Field
	StorageRebate uint64
}

// Coin creates a coin object of the given type.
func Coin(id ledger.ObjectID, coinType ledger.TypeTag, version ledger.Version, balance uint64, owner ledger.Owner) Object {
	res := FromLedger(ledger.NewCoin(id, coinType, balance, owner))
	res.Version = version
	return res
}

func (o Object) IsZero() bool {
	return o.Version == 0 && o.Owner == (ledger.Owner{}) && o.Type == "" && len(o.Contents) == 0 && o.StorageRebate == 0
}

// ToLedger converts the object into a ledger object with the given id.
func (o Object) ToLedger(id ledger.ObjectID) *ledger.Object {
	res := &ledger.Object{
		ID:            id,
		Version:       o.Version,
		Owner:         o.Owner,
		Type:          o.Type,
		Contents:      o.Contents,
		StorageRebate: o.StorageRebate,
	}
	return res.Clone()
}

// FromLedger is the inverse of ToLedger.
func FromLedger(o *ledger.Object) Object {
	c := o.Clone()
	return Object{
		Version:       c.Version,
		Owner:         c.Owner,
		Type:          c.Type,
		Contents:      c.Contents,
		StorageRebate: c.StorageRebate,
	}
}

// Balance returns the balance of a coin object.
func (o Object) Balance() uint64 {
	res, _ := o.ToLedger(ledger.ObjectID{}).CoinBalance()
	return res
}

func (o *Object) Equal(other *Object) bool {
	return o.Version == other.Version &&
		o.Owner == other.Owner &&
		o.Type == other.Type &&
		o.StorageRebate == other.StorageRebate &&
		slices.EqualFunc(o.Contents, other.Contents, func(a, b ledger.Field) bool {
			return a.Name == b.Name && a.Value.Kind == b.Value.Kind && bytes.Equal(a.Value.Data, b.Value.Data)
		})
}

func (o *Object) Clone() Object {
	res := *o
	res.Contents = nil
	for _, f := range o.Contents {
		res.Contents = append(res.Contents, ledger.Field{
			Name:  f.Name,
			Value: ledger.FieldValue{Kind: f.Value.Kind, Data: bytes.Clone(f.Value.Data)},
		})
	}
	return res
}

func (o *Object) Diff(prefix string, other *Object) []string {
	var res []string
	if o.Version != other.Version {
		res = append(res, fmt.Sprintf("different version: %v != %v", o.Version, other.Version))
	}
	if o.Owner != other.Owner {
		res = append(res, fmt.Sprintf("different owner: %v != %v", o.Owner, other.Owner))
	}
	if o.Type != other.Type {
		res = append(res, fmt.Sprintf("different type: %v != %v", o.Type, other.Type))
	}
	if o.StorageRebate != other.StorageRebate {
		res = append(res, fmt.Sprintf("different storage rebate: %v != %v", o.StorageRebate, other.StorageRebate))
	}
	if !o.Equal(&Object{o.Version, o.Owner, o.Type, other.Contents, o.StorageRebate}) {
		res = append(res, fmt.Sprintf("different contents: %v != %v", o.Contents, other.Contents))
	}
	for i, diff := range res {
		res[i] = prefix + diff
	}
	return res
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

// equalMapsIgnoringZero compares two maps, ignoring zero-valued entries.
func equalMapsIgnoringZero[K comparable, V any](a, b map[K]V, equal func(V, V) bool) bool {
	for k, v := range a {
		if !equal(v, b[k]) {
			return false
		}
	}
	for k, v := range b {
		if !equal(v, a[k]) {
			return false
		}
	}
	return true
}

// diffMaps compares two maps and returns a list of differences.
func diffMaps[K comparable, V any](prefix string, a, b map[K]V, diff func(K, V, V) []string) []string {
	var diffs []string
	for k, v := range a {
		diffs = append(diffs, diff(k, v, b[k])...)
	}
	for k, v := range b {
		if _, overlap := a[k]; !overlap {
			diffs = append(diffs, diff(k, a[k], v)...)
		}
	}
	for i, diff := range diffs {
		diffs[i] = prefix + diff
	}
	return diffs
}

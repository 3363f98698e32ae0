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
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/Fantom-foundation/Tessera/go/ledger"
)

func TestWorldState_Equal(t *testing.T) {
	tests := map[string]struct {
		a, b WorldState
	}{
		"both_nil": {},
		"left_hand_side_nil": {
			b: WorldState{},
		},
		"zero_objects_are_ignored": {
			a: WorldState{
				{1}: Object{},
			},
			b: WorldState{
				{2}: Object{},
			},
		},
		"same_objects": {
			a: WorldState{
				{1}: Coin(ledger.ObjectID{1}, ledger.GasCoinType, 1, 100, ledger.AddressOwned(ledger.Address{1})),
			},
			b: WorldState{
				{1}: Coin(ledger.ObjectID{1}, ledger.GasCoinType, 1, 100, ledger.AddressOwned(ledger.Address{1})),
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if !test.a.Equal(test.b) {
				t.Errorf("world states %v and %v are expected to be equivalent, but they are not", test.a, test.b)
			}
		})
	}
}

func TestWorldState_Clone(t *testing.T) {
	tests := map[string]struct {
		a WorldState
	}{
		"empty": {},
		"singleton": {
			a: WorldState{
				{1}: Object{},
			},
		},
		"multiple": {
			a: WorldState{
				{1}: Coin(ledger.ObjectID{1}, ledger.GasCoinType, 1, 100, ledger.ImmutableOwner()),
				{2}: Coin(ledger.ObjectID{2}, ledger.GasCoinType, 2, 200, ledger.Shared(1)),
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			clone := test.a.Clone()
			if !test.a.Equal(clone) {
				t.Errorf("expected world state %v and its clone %v to be equal", test.a, clone)
			}
		})
	}
}

func TestWorldState_ClonesAreIndependent(t *testing.T) {
	id := ledger.ObjectID{1}
	original := WorldState{
		id: Coin(id, ledger.GasCoinType, 1, 100, ledger.ImmutableOwner()),
	}

	clone := original.Clone()
	clone[id].Contents[1].Value.Data[0] = 0xff

	if want, got := uint64(100), original[id].Balance(); want != got {
		t.Errorf("expected the original object to be independent from its clone, got balance %d", got)
	}
}

func TestWorldState_EntriesCanBeInspectedInPlace(t *testing.T) {
	id := ledger.ObjectID{1}
	state := WorldState{
		id: Coin(id, ledger.GasCoinType, 3, 250, ledger.AddressOwned(ledger.Address{2})),
	}

	if state[id].IsZero() {
		t.Errorf("existing entry reported as zero")
	}
	if !state[ledger.ObjectID{9}].IsZero() {
		t.Errorf("missing entry should be zero")
	}
	if want, got := uint64(250), state[id].Balance(); want != got {
		t.Errorf("unexpected balance, wanted %d, got %d", want, got)
	}
	if want, got := ledger.Version(3), state[id].ToLedger(id).Version; want != got {
		t.Errorf("unexpected version, wanted %d, got %d", want, got)
	}
}

func TestWorldState_Diff(t *testing.T) {
	tests := map[string]struct {
		a, b     WorldState
		expected []string
	}{
		"both_nil": {},
		"identical": {
			a: WorldState{},
			b: WorldState{},
		},
		"different_versions": {
			a:        WorldState{{1}: Object{Version: 1}},
			b:        WorldState{{1}: Object{Version: 2}},
			expected: []string{"0x100000000000000000000000000000000000000000000000000000000000000/different version: 1 != 2"},
		},
		"extra_objects": {
			a: WorldState{
				{1}: Object{Version: 1},
			},
			b: WorldState{
				{1}:     Object{Version: 1},
				{31: 2}: Object{Version: 2},
			},
			expected: []string{"0x2/different version: 0 != 2"},
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			diffs := test.a.Diff(test.b)
			slices.Sort(test.expected)
			want := strings.Join(test.expected, ",")
			slices.Sort(diffs)
			got := strings.Join(diffs, ",")

			if want != got {
				t.Errorf("expected diffs [%v], but got [%v]", want, got)
			}
		})
	}
}

func TestWorldState_ObjectsAreSortedAndSkipZeroEntries(t *testing.T) {
	state := WorldState{
		{3}: Object{Version: 3, Owner: ledger.ImmutableOwner()},
		{1}: Object{Version: 1, Owner: ledger.ImmutableOwner()},
		{2}: Object{},
	}
	objects := state.Objects()
	if want, got := 2, len(objects); want != got {
		t.Fatalf("unexpected number of objects, wanted %d, got %d", want, got)
	}
	if objects[0].ID != (ledger.ObjectID{1}) || objects[1].ID != (ledger.ObjectID{3}) {
		t.Errorf("unexpected order of objects: %v, %v", objects[0].ID, objects[1].ID)
	}
}

func TestObject_ConversionPreservesObject(t *testing.T) {
	id := ledger.ObjectID{1}
	original := ledger.NewCoin(id, ledger.GasCoinType, 42, ledger.ObjectOwned(ledger.ObjectID{2}))
	original.Version = 7
	original.StorageRebate = 12

	object := FromLedger(original)
	if want, got := original.Digest(), object.ToLedger(id).Digest(); want != got {
		t.Errorf("conversion changed the object, wanted digest %v, got %v", want, got)
	}
	if want, got := uint64(12), object.ToLedger(id).StorageRebate; want != got {
		t.Errorf("unexpected storage rebate, wanted %d, got %d", want, got)
	}
	if want, got := uint64(42), object.Balance(); want != got {
		t.Errorf("unexpected balance, wanted %d, got %d", want, got)
	}
}

func TestObject_Diff(t *testing.T) {
	a := Coin(ledger.ObjectID{1}, ledger.GasCoinType, 1, 100, ledger.ImmutableOwner())
	tests := map[string]struct {
		modify   func(*Object)
		expected []string
	}{
		"identical": {
			modify: func(*Object) {},
		},
		"version": {
			modify:   func(o *Object) { o.Version = 2 },
			expected: []string{"p/different version: 1 != 2"},
		},
		"owner": {
			modify:   func(o *Object) { o.Owner = ledger.Shared(1) },
			expected: []string{fmt.Sprintf("p/different owner: %v != %v", ledger.ImmutableOwner(), ledger.Shared(1))},
		},
		"type": {
			modify:   func(o *Object) { o.Type = ledger.CoinType("0x3::usd::USD") },
			expected: []string{"p/different type: 0x2::coin::Coin<0x2::gas::GAS> != 0x2::coin::Coin<0x3::usd::USD>"},
		},
		"storage_rebate": {
			modify:   func(o *Object) { o.StorageRebate = 5 },
			expected: []string{"p/different storage rebate: 0 != 5"},
		},
		"contents": {
			modify: func(o *Object) { o.Contents = o.Contents[:1] },
			expected: []string{
				fmt.Sprintf("p/different contents: %v != %v", a.Contents, a.Contents[:1]),
			},
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			b := a.Clone()
			test.modify(&b)
			if want, got := len(test.expected) == 0, a.Equal(&b); want != got {
				t.Errorf("unexpected equality, wanted %t, got %t", want, got)
			}
			if want, got := strings.Join(test.expected, ","), strings.Join(a.Diff("p/", &b), ","); want != got {
				t.Errorf("unexpected diff, wanted [%v], got [%v]", want, got)
			}
		})
	}
}

func TestEqualMapsIgnoringZero_Equal(t *testing.T) {
	tests := map[string]struct {
		a, b map[int]int
	}{
		"both_nil": {},
		"left_hand_side_nil": {
			b: map[int]int{},
		},
		"right_hand_side_nil": {
			b: map[int]int{},
		},
		"singleton": {
			a: map[int]int{1: 2},
			b: map[int]int{1: 2},
		},
		"multiple": {
			a: map[int]int{
				1: 2,
				3: 4,
			},
			b: map[int]int{
				1: 2,
				3: 4,
			},
		},
		"zero_values_are_ignored": {
			a: map[int]int{1: 0},
			b: map[int]int{2: 0},
		},
		"zero_values_in_left_hand_side_is_ignored": {
			a: map[int]int{1: 0},
			b: map[int]int{},
		},
		"zero_values_in_right_hand_side_is_ignored": {
			a: map[int]int{},
			b: map[int]int{1: 0},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if !equalMapsIgnoringZero(test.a, test.b, func(a, b int) bool { return a == b }) {
				t.Errorf("expected maps %v and %v to be equal", test.a, test.b)
			}
		})
	}
}

func TestEqualMapsIgnoringZero_NonEqual(t *testing.T) {
	tests := map[string]struct {
		a, b map[int]int
	}{
		"different_value_for_same_key": {
			a: map[int]int{1: 2},
			b: map[int]int{1: 3},
		},
		"extra_non_zero_entry_in_left_hand_side": {
			a: map[int]int{1: 2, 3: 4},
			b: map[int]int{1: 2},
		},
		"extra_non_zero_entry_in_right_hand_side": {
			a: map[int]int{1: 2},
			b: map[int]int{1: 2, 3: 4},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if equalMapsIgnoringZero(test.a, test.b, func(a, b int) bool { return a == b }) {
				t.Errorf("expected maps %v and %v to be not equal", test.a, test.b)
			}
		})
	}
}

func TestDiffMaps(t *testing.T) {
	tests := map[string]struct {
		prefix   string
		a, b     map[int]int
		expected []string
	}{
		"both nil": {},
		"identical": {
			a: map[int]int{1: 2},
			b: map[int]int{1: 2},
		},
		"different value": {
			a:        map[int]int{1: 1},
			b:        map[int]int{1: 2},
			expected: []string{"different value for 1: 1 != 2"},
		},
		"additional key in first map": {
			a:        map[int]int{1: 2, 2: 4},
			b:        map[int]int{1: 2},
			expected: []string{"different value for 2: 4 != 0"},
		},
		"additional key in second map": {
			a:        map[int]int{1: 2},
			b:        map[int]int{1: 2, 2: 4},
			expected: []string{"different value for 2: 0 != 4"},
		},
		"different keys": {
			a: map[int]int{1: 3},
			b: map[int]int{2: 3},
			expected: []string{
				"different value for 1: 3 != 0",
				"different value for 2: 0 != 3",
			},
		},
		"different value with prefix": {
			prefix:   "myContext/",
			a:        map[int]int{1: 1},
			b:        map[int]int{1: 2},
			expected: []string{"myContext/different value for 1: 1 != 2"},
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			diffs := diffMaps(test.prefix, test.a, test.b, func(k int, a, b int) []string {
				if a == b {
					return nil
				}
				return []string{
					fmt.Sprintf("different value for %d: %d != %d", k, a, b),
				}
			})

			slices.Sort(test.expected)
			want := strings.Join(test.expected, ",")
			slices.Sort(diffs)
			got := strings.Join(diffs, ",")

			if want != got {
				t.Errorf("expected diffs [%v], but got [%v]", want, got)
			}
		})
	}
}

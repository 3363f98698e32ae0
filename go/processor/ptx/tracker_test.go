// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ptx

import (
	"testing"

	"github.com/Fantom-foundation/Tessera/go/ledger"
)

func TestTracker_LookupReportsAddressingErrors(t *testing.T) {
	tracker := newTracker([]ledger.Value{ledger.U64Value(1)}, ledger.Value{}, 3)
	tracker.bindResult(0, []ledger.Value{ledger.U64Value(1), ledger.U64Value(2)})
	tracker.bindResult(1, []ledger.Value{ledger.U64Value(3)})

	tests := map[string]struct {
		arg  ledger.Argument
		want ledger.ErrorKind
	}{
		"input out of range":       {arg: ledger.InputArg(1), want: ledger.IndexOutOfBounds},
		"result out of range":      {arg: ledger.Result(3), want: ledger.IndexOutOfBounds},
		"result of future command": {arg: ledger.Result(2), want: ledger.ArgumentWithoutValue},
		"result with two values":   {arg: ledger.Result(0), want: ledger.InvalidResultArity},
		"nested out of range":      {arg: ledger.NestedResult(0, 2), want: ledger.SecondaryIndexOutOfBounds},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, failure := tracker.lookup(test.arg, 4)
			if failure == nil {
				t.Fatalf("expected failure, got none")
			}
			if want, got := test.want, failure.Kind; want != got {
				t.Errorf("unexpected kind, wanted %v, got %v", want, got)
			}
			if want, got := "4", fieldOf(failure, "arg_idx"); want != got {
				t.Errorf("unexpected arg_idx, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestTracker_ValidArgumentsAreResolved(t *testing.T) {
	tracker := newTracker([]ledger.Value{ledger.U64Value(1)}, ledger.U64Value(9), 2)
	tracker.bindResult(0, []ledger.Value{ledger.U64Value(2), ledger.U64Value(3)})
	tracker.bindResult(1, []ledger.Value{ledger.U64Value(4)})

	tests := map[ledger.Argument]uint64{
		ledger.GasCoin():          9,
		ledger.InputArg(0):        1,
		ledger.NestedResult(0, 1): 3,
		ledger.Result(1):          4,
		ledger.NestedResult(1, 0): 4,
	}
	for arg, want := range tests {
		t.Run(arg.String(), func(t *testing.T) {
			v, failure := tracker.peek(arg, 0)
			if failure != nil {
				t.Fatalf("unexpected failure: %v", failure)
			}
			if got, _ := v.AsU64(); want != got {
				t.Errorf("unexpected value, wanted %d, got %d", want, got)
			}
		})
	}
}

func TestTracker_CopyableValuesCanBeTakenRepeatedly(t *testing.T) {
	tracker := newTracker([]ledger.Value{ledger.U64Value(7)}, ledger.Value{}, 0)
	for i := 0; i < 3; i++ {
		v, failure := tracker.take(ledger.InputArg(0), 0)
		if failure != nil {
			t.Fatalf("unexpected failure in round %d: %v", i, failure)
		}
		v.Bytes[0] = 0xff
	}
	v, _ := tracker.peek(ledger.InputArg(0), 0)
	if got, _ := v.AsU64(); got != 7 {
		t.Errorf("slot modified through a copy, got %d", got)
	}
}

func TestTracker_ObjectsAreConsumedOnTake(t *testing.T) {
	coin := ledger.NewCoin(ledger.ObjectID{1}, ledger.GasCoinType, 10, ledger.AddressOwned(ledger.Address{1}))
	tracker := newTracker([]ledger.Value{ledger.ObjectOf(coin)}, ledger.Value{}, 0)

	v, failure := tracker.take(ledger.InputArg(0), 0)
	if failure != nil {
		t.Fatalf("unexpected failure: %v", failure)
	}
	if v.Object != coin {
		t.Errorf("taken value does not refer to the tracked object")
	}
	for name, op := range map[string]func(ledger.Argument, int) (ledger.Value, *ledger.ExecutionError){
		"take": tracker.take,
		"peek": tracker.peek,
	} {
		_, failure = op(ledger.InputArg(0), 2)
		if failure == nil || failure.Kind != ledger.ArgumentWithoutValue {
			t.Errorf("%s of consumed slot should fail with ArgumentWithoutValue, got %v", name, failure)
		}
	}
}

func TestTracker_UnusedObjectLocatesFirstRemainingObject(t *testing.T) {
	coin := ledger.NewCoin(ledger.ObjectID{1}, ledger.GasCoinType, 10, ledger.Owner{})
	tracker := newTracker(nil, ledger.Value{}, 3)
	tracker.bindResult(0, []ledger.Value{ledger.U64Value(1)})
	tracker.bindResult(1, []ledger.Value{ledger.U64Value(2), ledger.Vector(coin.Type, []ledger.Value{ledger.ObjectOf(coin)})})

	command, output, found := tracker.unusedObject()
	if !found {
		t.Fatalf("remaining object not detected")
	}
	if command != 1 || output != 1 {
		t.Errorf("unexpected location, wanted (1, 1), got (%d, %d)", command, output)
	}

	if _, failure := tracker.take(ledger.NestedResult(1, 1), 0); failure != nil {
		t.Fatalf("unexpected failure: %v", failure)
	}
	if _, _, found := tracker.unusedObject(); found {
		t.Errorf("consumed object reported as unused")
	}
}

func fieldOf(e *ledger.ExecutionError, name string) string {
	res, _ := e.Field(name)
	return res
}

func TestTracker_PinFixesTheTypeOfPureValues(t *testing.T) {
	tracker := newTracker([]ledger.Value{ledger.Primitive("", ledger.EncodeU64(5))}, ledger.Value{}, 0)
	v, failure := tracker.peek(ledger.InputArg(0), 0)
	if failure != nil {
		t.Fatalf("unexpected failure: %v", failure)
	}
	if !v.CheckType(ledger.TypeBytes) || !v.CheckType(ledger.TypeU64) {
		t.Fatalf("untyped value should accept any matching encoding")
	}

	tracker.pin(ledger.InputArg(0), ledger.TypeU64)
	tracker.pin(ledger.InputArg(0), ledger.TypeBytes)

	v, failure = tracker.peek(ledger.InputArg(0), 0)
	if failure != nil {
		t.Fatalf("unexpected failure: %v", failure)
	}
	if want, got := ledger.TypeU64, v.Type; want != got {
		t.Errorf("unexpected type, wanted %v, got %v", want, got)
	}
	if v.CheckType(ledger.TypeBytes) {
		t.Errorf("pinned value should not be usable as %v", ledger.TypeBytes)
	}
}

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

func TestGate_OperationsOnObjects(t *testing.T) {
	owner := ledger.AddressOwned(ledger.Address{1})
	owned := func() *trackedObject {
		o := &ledger.Object{ID: ledger.ObjectID{1}, Version: 2, Owner: owner}
		return &trackedObject{current: o.Clone(), loaded: o, origin: fromOwnedInput, input: 0}
	}
	shared := func(mutable bool) *trackedObject {
		o := &ledger.Object{ID: ledger.ObjectID{2}, Version: 2, Owner: ledger.Shared(1)}
		return &trackedObject{current: o.Clone(), loaded: o, origin: fromSharedInput, input: 1, mutable: mutable}
	}
	created := func() *trackedObject {
		return &trackedObject{current: &ledger.Object{ID: ledger.ObjectID{3}}, origin: fromCreated, input: -1}
	}

	tests := map[string]struct {
		object  *trackedObject
		source  ledger.Argument
		op      gateOp
		allowed bool
	}{
		"owned transferred":                {owned(), ledger.InputArg(0), opTransfer, true},
		"owned shared through input":       {owned(), ledger.InputArg(0), opShare, true},
		"owned shared through result":      {owned(), ledger.Result(0), opShare, false},
		"owned transferred through result": {owned(), ledger.Result(0), opTransfer, true},
		"owned frozen through result":      {owned(), ledger.Result(0), opFreeze, true},
		"created shared":                   {created(), ledger.Result(0), opShare, true},
		"created attached":                 {created(), ledger.Result(0), opAttach, true},
		"shared re-shared":                 {shared(true), ledger.InputArg(1), opShare, true},
		"shared deleted":                   {shared(true), ledger.InputArg(1), opDelete, true},
		"shared frozen":                    {shared(true), ledger.InputArg(1), opFreeze, true},
		"shared transferred":               {shared(true), ledger.InputArg(1), opTransfer, false},
		"shared attached":                  {shared(true), ledger.InputArg(1), opAttach, false},
		"shared deleted through result":    {shared(true), ledger.Result(0), opDelete, false},
		"shared wrong input":               {shared(true), ledger.InputArg(0), opShare, false},
		"read-only shared re-shared":       {shared(false), ledger.InputArg(1), opShare, false},
		"read-only shared deleted":         {shared(false), ledger.InputArg(1), opDelete, false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			failure := checkGate(test.object, test.source, test.op)
			if want, got := test.allowed, failure == nil; want != got {
				t.Fatalf("unexpected decision, wanted allowed=%t, got %v", want, failure)
			}
			if failure == nil {
				return
			}
			if want, got := ledger.SharedObjectOperationNotAllowed, failure.Kind; want != got {
				t.Errorf("unexpected kind, wanted %v, got %v", want, got)
			}
			if failure.Command != nil {
				t.Errorf("gate failures must not name a command, got %v", failure.CommandString())
			}
		})
	}
}

func TestGate_NewlySharedObjectsStayShared(t *testing.T) {
	o := &trackedObject{current: &ledger.Object{ID: ledger.ObjectID{3}, Owner: ledger.Shared(5)}, origin: fromCreated, input: -1}
	for _, op := range []gateOp{opTransfer, opAttach} {
		if failure := checkGate(o, ledger.Result(0), op); failure == nil {
			t.Errorf("%v of shared object should be rejected", op)
		}
	}
}

func TestGate_OpForOwner(t *testing.T) {
	tests := map[ledger.OwnerKind]gateOp{
		ledger.AddressOwner: opTransfer,
		ledger.ObjectOwner:  opAttach,
		ledger.SharedOwner:  opShare,
		ledger.Immutable:    opFreeze,
	}
	for kind, want := range tests {
		if got := opFor(ledger.Owner{Kind: kind}); want != got {
			t.Errorf("unexpected op for %v, wanted %v, got %v", kind, want, got)
		}
	}
}

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
	"bytes"
	"slices"

	"github.com/Fantom-foundation/Tessera/go/ledger"
	"github.com/sirupsen/logrus"
)

// outcome is the result of executing a transaction: its effects and the
// object changes to be committed.
type outcome struct {
	effects ledger.TransactionEffects
	written []*ledger.Object
	removed []ledger.ObjectID
}

// rejected produces the outcome of a transaction failing its validation.
// Such transactions do not touch the store and are not charged.
func rejected(e *execution, failure *ledger.ExecutionError) outcome {
	log.WithFields(logrus.Fields{"tx": e.digest, "error": failure}).Debug("transaction rejected")
	return outcome{effects: ledger.TransactionEffects{
		TransactionDigest: e.digest,
		Status:            ledger.ExecutionStatus{Error: failure},
	}}
}

// finish charges gas, assigns versions and assembles the effects. If the
// transaction failed, all changes except the gas payment are discarded.
func (e *execution) finish(failure *ledger.ExecutionError) outcome {
	var written, removed []*trackedObject
	var summary ledger.GasSummary
	var charges storageCharges

	if failure == nil {
		e.releaseBudget()
		written, removed, failure = e.partition()
	}
	if failure == nil {
		charges = e.meter.chargeStorage(currentOf(written), loadedOf(append(slices.Clone(written), removed...)))
		summary = e.meter.summarize(charges)
		if e.meter.exceedsBudget(summary) {
			failure = ledger.NewError(ledger.InsufficientGas)
		}
	}
	if failure != nil {
		e.restoreGasCoin()
		written, removed = []*trackedObject{e.gasCoin}, nil
		charges = e.meter.chargeStorage(currentOf(written), loadedOf(written))
		summary = e.meter.summarize(charges)
	}

	balance, _ := e.gasCoin.current.CoinBalance()
	e.gasCoin.current.SetCoinBalance(settle(balance, summary))
	for _, t := range written {
		t.current.Version = e.lamport
		t.current.PreviousTransaction = e.digest
		t.current.StorageRebate = charges.fees[t.current.ID]
	}

	res := outcome{effects: ledger.TransactionEffects{
		TransactionDigest: e.digest,
		Status:            ledger.ExecutionStatus{Error: failure},
		LamportVersion:    e.lamport,
		GasObject:         e.gasCoin.current.Ref(),
		SharedObjects:     e.sharedObjects(),
		Dependencies:      e.dependencies(),
		GasSummary:        summary,
	}}
	for _, t := range written {
		if t.loaded == nil {
			res.effects.Created = append(res.effects.Created, t.current.Ref())
		} else {
			res.effects.Mutated = append(res.effects.Mutated, t.current.Ref())
		}
		res.written = append(res.written, t.current.Clone())
	}
	for _, t := range removed {
		if t.state == deleted {
			res.effects.Deleted = append(res.effects.Deleted, t.current.ID)
		} else {
			res.effects.Wrapped = append(res.effects.Wrapped, t.current.ID)
		}
		res.removed = append(res.removed, t.current.ID)
	}

	log.WithFields(logrus.Fields{
		"tx":      e.digest,
		"success": failure == nil,
		"written": len(res.written),
		"removed": len(res.removed),
		"gas":     summary,
	}).Debug("transaction executed")
	return res
}

// partition splits the working set into objects to be written and
// pre-existing objects removed by the transaction, both ordered by id.
func (e *execution) partition() (written, removed []*trackedObject, failure *ledger.ExecutionError) {
	for _, t := range e.sortedObjects() {
		switch {
		case t.isWritten():
			if t.current.Owner.Kind == ledger.Unowned {
				return nil, nil, violation("object %v was never placed", t.current.ID)
			}
			written = append(written, t)
		case t.state != live && t.loaded != nil:
			removed = append(removed, t)
		}
	}
	return written, removed, nil
}

func (e *execution) sharedObjects() []ledger.ObjectRef {
	res := slices.Clone(e.shared)
	slices.SortFunc(res, func(a, b ledger.ObjectRef) int {
		return compareIDs(a.ID, b.ID)
	})
	return res
}

// dependencies lists the transactions that wrote the loaded inputs.
func (e *execution) dependencies() []ledger.Digest {
	var res []ledger.Digest
	for _, t := range e.objects {
		if t.loaded != nil && t.loaded.PreviousTransaction != (ledger.Digest{}) {
			res = append(res, t.loaded.PreviousTransaction)
		}
	}
	slices.SortFunc(res, func(a, b ledger.Digest) int {
		return bytes.Compare(a[:], b[:])
	})
	return slices.Compact(res)
}

func currentOf(objects []*trackedObject) []*ledger.Object {
	res := make([]*ledger.Object, 0, len(objects))
	for _, t := range objects {
		res = append(res, t.current)
	}
	return res
}

func loadedOf(objects []*trackedObject) []*ledger.Object {
	res := make([]*ledger.Object, 0, len(objects))
	for _, t := range objects {
		if t.loaded != nil {
			res = append(res, t.loaded)
		}
	}
	return res
}

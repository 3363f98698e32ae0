// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/blake2b"
)

// GasSummary lists the charges of a transaction in the base fee unit.
type GasSummary struct {
	ComputationCost         uint64
	StorageCost             uint64
	StorageRebate           uint64
	NonRefundableStorageFee uint64
}

// NetCharge is the amount deducted from the gas coin. A negative value is a
// credit to the gas coin.
func (g GasSummary) NetCharge() int64 {
	return int64(g.ComputationCost) + int64(g.StorageCost) - int64(g.StorageRebate)
}

func (g GasSummary) String() string {
	return fmt.Sprintf(
		"computation_cost: %d, storage_cost: %d,  storage_rebate: %d, non_refundable_storage_fee: %d",
		g.ComputationCost, g.StorageCost, g.StorageRebate, g.NonRefundableStorageFee,
	)
}

// ExecutionStatus is the outcome of a transaction, successful if Error is nil.
type ExecutionStatus struct {
	Error *ExecutionError
}

func (s ExecutionStatus) Success() bool {
	return s.Error == nil
}

// TransactionEffects is the deterministic record of all changes made by a
// transaction. All lists are sorted by object id.
type TransactionEffects struct {
	TransactionDigest Digest
	Status            ExecutionStatus
	LamportVersion    Version
	GasObject         ObjectRef
	Created           []ObjectRef
	Mutated           []ObjectRef
	Deleted           []ObjectID
	Wrapped           []ObjectID
	SharedObjects     []ObjectRef
	Dependencies      []Digest
	GasSummary        GasSummary
}

func (e *TransactionEffects) Success() bool {
	return e.Status.Success()
}

type statusEncoding struct {
	Success    bool
	Kind       ErrorKind
	Fields     []ErrorField
	HasCommand bool
	Command    uint64
}

type effectsEncoding struct {
	TransactionDigest Digest
	Status            statusEncoding
	LamportVersion    Version
	GasObject         ObjectRef
	Created           []ObjectRef
	Mutated           []ObjectRef
	Deleted           []ObjectID
	Wrapped           []ObjectID
	SharedObjects     []ObjectRef
	Dependencies      []Digest
	GasSummary        GasSummary
}

// Digest is the content hash of the effects. Independent executions of the
// same transaction on the same state produce the same digest.
func (e *TransactionEffects) Digest() Digest {
	status := statusEncoding{Success: e.Status.Success()}
	if err := e.Status.Error; err != nil {
		status.Kind = err.Kind
		status.Fields = err.Fields
		if err.Command != nil {
			status.HasCommand = true
			status.Command = uint64(*err.Command)
		}
	}
	data, err := rlp.EncodeToBytes(effectsEncoding{
		TransactionDigest: e.TransactionDigest,
		Status:            status,
		LamportVersion:    e.LamportVersion,
		GasObject:         e.GasObject,
		Created:           e.Created,
		Mutated:           e.Mutated,
		Deleted:           e.Deleted,
		Wrapped:           e.Wrapped,
		SharedObjects:     e.SharedObjects,
		Dependencies:      e.Dependencies,
		GasSummary:        e.GasSummary,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to encode effects: %v", err))
	}
	return blake2b.Sum256(data)
}

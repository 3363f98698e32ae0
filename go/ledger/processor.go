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

//go:generate mockgen -source processor.go -destination processor_mock.go -package ledger

// Processor is an interface for a component capable of executing
// programmable transactions. Implementations resolve the inputs of a
// transaction against the given store, run its commands, charge gas and
// commit the resulting object changes to the store.
//
// The resulting error is nil whenever the transaction was correctly
// processed, even if the transaction itself failed. In that case the
// failure is reported by the status of the effects. A non-nil error
// signals an infrastructure problem, e.g. a failing store, and the state
// of the store is undefined.
type Processor interface {
	// Run executes the transaction and commits its effects to the store.
	Run(EpochParameters, Transaction, ObjectStore) (TransactionEffects, error)
}

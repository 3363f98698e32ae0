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
	"github.com/Fantom-foundation/Tessera/go/config"
	"github.com/Fantom-foundation/Tessera/go/ledger"
	"github.com/holiman/uint256"
)

// gasMeter accumulates the computation charged for a transaction. It is
// carried by the execution and updated after every completed command.
type gasMeter struct {
	protocol config.Protocol
	price    uint64
	budget   uint64
	units    uint64
}

func newGasMeter(protocol config.Protocol, gas ledger.GasData) *gasMeter {
	return &gasMeter{
		protocol: protocol,
		price:    gas.Price,
		budget:   gas.Budget,
	}
}

// chargeCommand accounts for a completed command and the units it consumed
// within the VM.
func (m *gasMeter) chargeCommand(vmUnits uint64) {
	total := new(uint256.Int).Add(uint256.NewInt(m.units), uint256.NewInt(m.protocol.PerCommandComputationUnits))
	total.Add(total, uint256.NewInt(vmUnits))
	if !total.IsUint64() {
		m.units = ^uint64(0)
		return
	}
	m.units = total.Uint64()
}

// computationCost is the price of all charged units, capped at the budget.
func (m *gasMeter) computationCost() uint64 {
	return min(m.protocol.ComputationCost(m.units, m.price), m.budget)
}

// storageCharges lists the fees for writing objects and the rebate pool
// recovered from the versions they supersede.
type storageCharges struct {
	fees map[ledger.ObjectID]uint64
	cost uint64
	pool uint64
}

// chargeStorage prices the written objects and collects the rebates of all
// superseded versions, including those of removed objects.
func (m *gasMeter) chargeStorage(written []*ledger.Object, superseded []*ledger.Object) storageCharges {
	res := storageCharges{fees: make(map[ledger.ObjectID]uint64, len(written))}
	cost, pool := new(uint256.Int), new(uint256.Int)
	for _, o := range written {
		fee := m.protocol.StorageFee(o.ContentSize())
		res.fees[o.ID] = fee
		cost.Add(cost, uint256.NewInt(fee))
	}
	for _, o := range superseded {
		pool.Add(pool, uint256.NewInt(o.StorageRebate))
	}
	res.cost = saturate(cost)
	res.pool = saturate(pool)
	return res
}

// summarize splits the rebate pool into the refunded and the retained share.
func (m *gasMeter) summarize(storage storageCharges) ledger.GasSummary {
	nonRefundable := m.protocol.NonRefundableFee(storage.pool)
	return ledger.GasSummary{
		ComputationCost:         m.computationCost(),
		StorageCost:             storage.cost,
		StorageRebate:           storage.pool - nonRefundable,
		NonRefundableStorageFee: nonRefundable,
	}
}

// exceedsBudget reports whether the charges for computation and storage
// together exceed the budget.
func (m *gasMeter) exceedsBudget(summary ledger.GasSummary) bool {
	total := new(uint256.Int).Add(uint256.NewInt(summary.ComputationCost), uint256.NewInt(summary.StorageCost))
	return total.Gt(uint256.NewInt(m.budget))
}

// settle applies the net charge of the summary to a balance. Credits
// saturate at the maximum balance, charges exceeding the balance leave a
// zero balance.
func settle(balance uint64, summary ledger.GasSummary) uint64 {
	res := new(uint256.Int).Add(uint256.NewInt(balance), uint256.NewInt(summary.StorageRebate))
	charge := new(uint256.Int).Add(uint256.NewInt(summary.ComputationCost), uint256.NewInt(summary.StorageCost))
	if charge.Gt(res) {
		return 0
	}
	return saturate(res.Sub(res, charge))
}

func saturate(v *uint256.Int) uint64 {
	if !v.IsUint64() {
		return ^uint64(0)
	}
	return v.Uint64()
}

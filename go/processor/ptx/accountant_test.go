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
	"math"
	"testing"

	"github.com/Fantom-foundation/Tessera/go/config"
	"github.com/Fantom-foundation/Tessera/go/ledger"
)

func TestGasMeter_ComputationIsChargedPerCommand(t *testing.T) {
	meter := newGasMeter(config.Default(), ledger.GasData{Price: 1000, Budget: 10_000_000})
	meter.chargeCommand(0)
	meter.chargeCommand(500)
	if want, got := uint64(2500), meter.units; want != got {
		t.Errorf("unexpected units, wanted %d, got %d", want, got)
	}
	if want, got := uint64(2_500_000), meter.computationCost(); want != got {
		t.Errorf("unexpected cost, wanted %d, got %d", want, got)
	}
}

func TestGasMeter_ComputationIsCappedAtBudget(t *testing.T) {
	meter := newGasMeter(config.Default(), ledger.GasData{Price: 1000, Budget: 1_500_000})
	meter.chargeCommand(math.MaxUint64)
	if want, got := uint64(math.MaxUint64), meter.units; want != got {
		t.Errorf("units should saturate, wanted %d, got %d", want, got)
	}
	if want, got := uint64(1_500_000), meter.computationCost(); want != got {
		t.Errorf("unexpected cost, wanted %d, got %d", want, got)
	}
}

func TestGasMeter_RebateKeepsOnePercent(t *testing.T) {
	meter := newGasMeter(config.Default(), ledger.GasData{Price: 1000, Budget: 10_000_000})
	superseded := &ledger.Object{ID: ledger.ObjectID{1}, StorageRebate: 988000}

	summary := meter.summarize(meter.chargeStorage(nil, []*ledger.Object{superseded}))
	if want, got := uint64(978120), summary.StorageRebate; want != got {
		t.Errorf("unexpected rebate, wanted %d, got %d", want, got)
	}
	if want, got := uint64(9880), summary.NonRefundableStorageFee; want != got {
		t.Errorf("unexpected non-refundable fee, wanted %d, got %d", want, got)
	}
}

func TestGasMeter_StorageIsChargedPerWrittenObject(t *testing.T) {
	meter := newGasMeter(config.Default(), ledger.GasData{Price: 1000, Budget: 10_000_000})
	a := ledger.NewCoin(ledger.ObjectID{1}, ledger.GasCoinType, 5, ledger.AddressOwned(ledger.Address{1}))
	b := ledger.NewCoin(ledger.ObjectID{2}, ledger.GasCoinType, 7, ledger.AddressOwned(ledger.Address{1}))

	charges := meter.chargeStorage([]*ledger.Object{a, b}, nil)
	if want, got := uint64(2*988000), charges.cost; want != got {
		t.Errorf("unexpected storage cost, wanted %d, got %d", want, got)
	}
	for _, o := range []*ledger.Object{a, b} {
		if want, got := uint64(988000), charges.fees[o.ID]; want != got {
			t.Errorf("unexpected fee for %v, wanted %d, got %d", o.ID, want, got)
		}
	}
	if charges.pool != 0 {
		t.Errorf("unexpected rebate pool %d", charges.pool)
	}
}

func TestGasMeter_ExceedsBudget(t *testing.T) {
	meter := newGasMeter(config.Default(), ledger.GasData{Price: 1000, Budget: 2_000_000})
	tests := map[string]struct {
		summary ledger.GasSummary
		want    bool
	}{
		"within":         {ledger.GasSummary{ComputationCost: 1_000_000, StorageCost: 988_000}, false},
		"exactly":        {ledger.GasSummary{ComputationCost: 1_000_000, StorageCost: 1_000_000}, false},
		"above":          {ledger.GasSummary{ComputationCost: 1_000_000, StorageCost: 1_000_001}, true},
		"rebate ignored": {ledger.GasSummary{ComputationCost: 1_000_000, StorageCost: 1_500_000, StorageRebate: 900_000}, true},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if want, got := test.want, meter.exceedsBudget(test.summary); want != got {
				t.Errorf("unexpected result, wanted %t, got %t", want, got)
			}
		})
	}
}

func TestSettle(t *testing.T) {
	tests := map[string]struct {
		balance uint64
		summary ledger.GasSummary
		want    uint64
	}{
		"charge": {
			balance: 10_000_000,
			summary: ledger.GasSummary{ComputationCost: 1_000_000, StorageCost: 988_000, StorageRebate: 978_120},
			want:    10_000_000 - 1_000_000 - 988_000 + 978_120,
		},
		"credit": {
			balance: 100,
			summary: ledger.GasSummary{StorageRebate: 50},
			want:    150,
		},
		"clamped at zero": {
			balance: 100,
			summary: ledger.GasSummary{ComputationCost: 200, StorageRebate: 50},
			want:    0,
		},
		"saturated": {
			balance: math.MaxUint64 - 1,
			summary: ledger.GasSummary{StorageRebate: 50},
			want:    math.MaxUint64,
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if want, got := test.want, settle(test.balance, test.summary); want != got {
				t.Errorf("unexpected balance, wanted %d, got %d", want, got)
			}
		})
	}
}

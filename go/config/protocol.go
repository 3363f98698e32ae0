// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package config

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// RoundingMode selects how the non-refundable share of a storage rebate
// pool is rounded to an integer.
type RoundingMode string

const (
	RoundFloor  RoundingMode = "floor"
	RoundHalfUp RoundingMode = "half-up"
	RoundCeil   RoundingMode = "ceil"
)

const basisPoints = 10_000

// Protocol holds the parameters governing execution and gas accounting.
// All nodes of a network must use identical values.
type Protocol struct {
	// BaseComputationUnits are charged once per transaction.
	BaseComputationUnits uint64 `mapstructure:"base_computation_units"`
	// PerCommandComputationUnits are charged for every executed command.
	PerCommandComputationUnits uint64 `mapstructure:"per_command_computation_units"`
	// StorageUnitsPerByte scales object sizes into storage units.
	StorageUnitsPerByte uint64 `mapstructure:"storage_units_per_byte"`
	// StoragePrice is the fee charged per storage unit.
	StoragePrice uint64 `mapstructure:"storage_price"`
	// ObjectOverheadBytes is added to the size of every stored object.
	ObjectOverheadBytes uint64 `mapstructure:"object_overhead_bytes"`
	// NonRefundableRateBps is the share of a rebate pool kept by the
	// protocol, in basis points.
	NonRefundableRateBps uint64 `mapstructure:"non_refundable_rate_bps"`
	// RebateRounding is the rounding mode of the non-refundable share.
	RebateRounding RoundingMode `mapstructure:"rebate_rounding"`

	MinGasBudget        uint64 `mapstructure:"min_gas_budget"`
	MaxGasBudget        uint64 `mapstructure:"max_gas_budget"`
	MaxCommands         int    `mapstructure:"max_commands"`
	MaxInputs           int    `mapstructure:"max_inputs"`
	MaxPureArgumentSize int    `mapstructure:"max_pure_argument_size"`
	MaxVectorLength     int    `mapstructure:"max_vector_length"`
}

// Default returns the parameters used unless configured otherwise.
func Default() Protocol {
	return Protocol{
		BaseComputationUnits:       0,
		PerCommandComputationUnits: 1_000,
		StorageUnitsPerByte:        100,
		StoragePrice:               76,
		ObjectOverheadBytes:        4,
		NonRefundableRateBps:       100,
		RebateRounding:             RoundHalfUp,
		MinGasBudget:               1_000,
		MaxGasBudget:               50_000_000_000,
		MaxCommands:                1_024,
		MaxInputs:                  2_048,
		MaxPureArgumentSize:        16 * 1024,
		MaxVectorLength:            256,
	}
}

// Validate checks the consistency of the parameters.
func (p Protocol) Validate() error {
	var errs []error
	if p.NonRefundableRateBps > basisPoints {
		errs = append(errs, fmt.Errorf("non-refundable rate of %d bps exceeds 100%%", p.NonRefundableRateBps))
	}
	switch p.RebateRounding {
	case RoundFloor, RoundHalfUp, RoundCeil:
	default:
		errs = append(errs, fmt.Errorf("unknown rebate rounding mode %q", p.RebateRounding))
	}
	if p.MinGasBudget > p.MaxGasBudget {
		errs = append(errs, fmt.Errorf("min gas budget %d exceeds max gas budget %d", p.MinGasBudget, p.MaxGasBudget))
	}
	if p.MaxCommands <= 0 {
		errs = append(errs, fmt.Errorf("max commands must be positive, got %d", p.MaxCommands))
	}
	if p.MaxInputs < 0 || p.MaxPureArgumentSize < 0 || p.MaxVectorLength < 0 {
		errs = append(errs, errors.New("limits must not be negative"))
	}
	return errors.Join(errs...)
}

// NonRefundableFee computes the share of the given rebate pool that is not
// returned to the payer.
func (p Protocol) NonRefundableFee(pool uint64) uint64 {
	return ScaleBps(pool, p.NonRefundableRateBps, p.RebateRounding)
}

// ScaleBps computes amount * bps / 10000, rounded with the given mode. The
// result is exact for all inputs; bps must not exceed 10000.
func ScaleBps(amount, bps uint64, mode RoundingMode) uint64 {
	product := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(bps))
	denominator := uint256.NewInt(basisPoints)
	quotient, remainder := new(uint256.Int).DivMod(product, denominator, new(uint256.Int))
	switch mode {
	case RoundCeil:
		if !remainder.IsZero() {
			quotient.AddUint64(quotient, 1)
		}
	case RoundHalfUp:
		if remainder.Mul(remainder, uint256.NewInt(2)).Cmp(denominator) >= 0 {
			quotient.AddUint64(quotient, 1)
		}
	}
	return quotient.Uint64()
}

// StorageFee is the fee charged for storing an object of the given content
// size. The result saturates at the maximum uint64 value.
func (p Protocol) StorageFee(contentSize uint64) uint64 {
	units := new(uint256.Int).Add(uint256.NewInt(contentSize), uint256.NewInt(p.ObjectOverheadBytes))
	units.Mul(units, uint256.NewInt(p.StorageUnitsPerByte))
	units.Mul(units, uint256.NewInt(p.StoragePrice))
	return saturate(units)
}

// ComputationCost is the price of the given number of computation units,
// including the per-transaction base units.
func (p Protocol) ComputationCost(units, price uint64) uint64 {
	total := new(uint256.Int).Add(uint256.NewInt(p.BaseComputationUnits), uint256.NewInt(units))
	return saturate(total.Mul(total, uint256.NewInt(price)))
}

func saturate(v *uint256.Int) uint64 {
	if !v.IsUint64() {
		return ^uint64(0)
	}
	return v.Uint64()
}

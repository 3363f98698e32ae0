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
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding parameters,
// e.g. TESSERA_STORAGE_PRICE.
const EnvPrefix = "tessera"

// Load reads protocol parameters from the given file, which may be TOML,
// YAML or JSON. Parameters not mentioned keep their default value and
// environment variables take precedence over the file. An empty path loads
// the defaults plus environment overrides.
func Load(path string) (Protocol, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Protocol{}, fmt.Errorf("failed to read protocol config %s: %w", path, err)
		}
	}

	var res Protocol
	if err := v.Unmarshal(&res); err != nil {
		return Protocol{}, fmt.Errorf("failed to decode protocol config: %w", err)
	}
	if err := res.Validate(); err != nil {
		return Protocol{}, fmt.Errorf("invalid protocol config: %w", err)
	}
	return res, nil
}

func setDefaults(v *viper.Viper, p Protocol) {
	v.SetDefault("base_computation_units", p.BaseComputationUnits)
	v.SetDefault("per_command_computation_units", p.PerCommandComputationUnits)
	v.SetDefault("storage_units_per_byte", p.StorageUnitsPerByte)
	v.SetDefault("storage_price", p.StoragePrice)
	v.SetDefault("object_overhead_bytes", p.ObjectOverheadBytes)
	v.SetDefault("non_refundable_rate_bps", p.NonRefundableRateBps)
	v.SetDefault("rebate_rounding", string(p.RebateRounding))
	v.SetDefault("min_gas_budget", p.MinGasBudget)
	v.SetDefault("max_gas_budget", p.MaxGasBudget)
	v.SetDefault("max_commands", p.MaxCommands)
	v.SetDefault("max_inputs", p.MaxInputs)
	v.SetDefault("max_pure_argument_size", p.MaxPureArgumentSize)
	v.SetDefault("max_vector_length", p.MaxVectorLength)
}

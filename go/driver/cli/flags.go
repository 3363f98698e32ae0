// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cliUtils

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/Fantom-foundation/Tessera/go/config"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

type configFlagType struct {
	cli.StringFlag
}

var ConfigFlag = &configFlagType{
	cli.StringFlag{
		Name:      "config",
		Aliases:   []string{"c"},
		Usage:     "protocol parameters file (TOML, YAML or JSON)",
		TakesFile: true,
	},
}

// Fetch loads the protocol parameters, using the defaults if no file is given.
func (f *configFlagType) Fetch(context *cli.Context) (config.Protocol, error) {
	return config.Load(context.String(f.Name))
}

type dbFlagType struct {
	cli.StringFlag
}

var DbFlag = &dbFlagType{
	cli.StringFlag{
		Name:      "db",
		Usage:     "directory of a persistent object store, in-memory if not set",
		TakesFile: true,
	},
}

func (f *dbFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type jobsFlagType struct {
	cli.IntFlag
}

var JobsFlag = &jobsFlagType{
	cli.IntFlag{
		Name:    "jobs",
		Aliases: []string{"j"},
		Usage:   "number of jobs run simultaneously",
		Value:   runtime.NumCPU(),
	},
}

func (f *jobsFlagType) Fetch(context *cli.Context) int {
	if jobs := context.Int(f.Name); jobs > 0 {
		return jobs
	}
	return runtime.NumCPU()
}

type seedFlagType struct {
	cli.Uint64Flag
}

var SeedFlag = &seedFlagType{
	cli.Uint64Flag{
		Name:    "seed",
		Aliases: []string{"s"},
		Usage:   "seed for the random number generator",
	},
}

func (f *seedFlagType) Fetch(context *cli.Context) uint64 {
	return context.Uint64(f.Name)
}

type countFlagType struct {
	cli.IntFlag
}

var CountFlag = &countFlagType{
	cli.IntFlag{
		Name:    "count",
		Aliases: []string{"n"},
		Usage:   "number of transactions run by each job",
		Value:   1_000,
	},
}

func (f *countFlagType) Fetch(context *cli.Context) int {
	return context.Int(f.Name)
}

type logLevelFlagType struct {
	cli.StringFlag
}

var LogLevelFlag = &logLevelFlagType{
	cli.StringFlag{
		Name:  "log-level",
		Usage: "logging level (panic, fatal, error, warn, info, debug, trace)",
		Value: "warn",
	},
}

func (f *logLevelFlagType) Fetch(context *cli.Context) (logrus.Level, error) {
	return logrus.ParseLevel(context.String(f.Name))
}

type logFormatFlagType struct {
	cli.StringFlag
}

var LogFormatFlag = &logFormatFlagType{
	cli.StringFlag{
		Name:  "log-format",
		Usage: "format of log messages (text or json)",
		Value: "text",
	},
}

func (f *logFormatFlagType) Fetch(context *cli.Context) (logrus.Formatter, error) {
	switch format := context.String(f.Name); format {
	case "text":
		return &logrus.TextFormatter{}, nil
	case "json":
		return &logrus.JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

type cpuProfileType struct {
	cli.StringFlag
}

var CpuProfileFlag = &cpuProfileType{
	cli.StringFlag{
		Name:      "cpuprofile",
		Usage:     "store CPU profile in the provided filename",
		TakesFile: true,
	},
}

func (f *cpuProfileType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

var commonFlags = []cli.Flag{
	LogLevelFlag,
	LogFormatFlag,
	CpuProfileFlag,
}

// AddCommonFlags extends the command by the logging and profiling flags.
func AddCommonFlags(command cli.Command) cli.Command {
	command.Flags = append(command.Flags, commonFlags...)

	action := command.Action
	command.Action = func(ctx *cli.Context) (err error) {
		level, err := LogLevelFlag.Fetch(ctx)
		if err != nil {
			return err
		}
		formatter, err := LogFormatFlag.Fetch(ctx)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		logrus.SetFormatter(formatter)

		if cpuprofileFilename := CpuProfileFlag.Fetch(ctx); cpuprofileFilename != "" {
			f, err := os.Create(cpuprofileFilename)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %w", err)
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %w", err)
			}
			defer pprof.StopCPUProfile()
		}

		return action(ctx)
	}
	return command
}

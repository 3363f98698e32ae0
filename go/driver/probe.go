// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Fantom-foundation/Tessera/go/config"
	cliUtils "github.com/Fantom-foundation/Tessera/go/driver/cli"
	"github.com/Fantom-foundation/Tessera/go/ledger"
	"github.com/Fantom-foundation/Tessera/go/processor/ptx"
	"github.com/Fantom-foundation/Tessera/go/store/memory"
	"github.com/Fantom-foundation/Tessera/go/vm/native"
	"github.com/dsnet/golib/unitconv"
	"github.com/urfave/cli/v2"
	"pgregory.net/rand"
)

var ProbeCmd = cli.Command{
	Action: doProbe,
	Name:   "probe",
	Usage:  "Runs random transactions and checks properties of their effects",
	Flags: []cli.Flag{
		cliUtils.ConfigFlag,
		cliUtils.JobsFlag,
		cliUtils.SeedFlag,
		cliUtils.CountFlag,
	},
}

func doProbe(context *cli.Context) error {
	protocol, err := cliUtils.ConfigFlag.Fetch(context)
	if err != nil {
		return err
	}
	seed := cliUtils.SeedFlag.Fetch(context)
	jobs := cliUtils.JobsFlag.Fetch(context)
	count := cliUtils.CountFlag.Fetch(context)

	printProgress := func(relativeTime time.Duration, rate float64, current int64) {
		fmt.Printf(
			"[t=%4d:%02d] - Processing ~%s transactions per second, total %d\n",
			int(relativeTime.Seconds())/60, int(relativeTime.Seconds())%60,
			unitconv.FormatPrefix(rate, unitconv.SI, 0), current,
		)
	}

	fmt.Printf("Probing with seed %d using %d jobs ...\n", seed, jobs)
	if err := probe(protocol, seed, jobs, count, printProgress); err != nil {
		return err
	}
	fmt.Printf("All properties hold!\n")
	return nil
}

// probe runs count random transactions in each of the given number of jobs.
// Every job works on its own store, seeded with seed+job.
func probe(
	protocol config.Protocol,
	seed uint64,
	jobs, count int,
	printProgress func(relativeTime time.Duration, rate float64, current int64),
) error {
	var counter atomic.Int64

	done := make(chan bool)
	printerDone := make(chan bool)
	go func() {
		defer close(printerDone)
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		startTime := time.Now()
		lastTime := startTime
		lastCounter := int64(0)

		checkTimingAndPrint := func(now time.Time) {
			if printProgress == nil {
				return
			}
			cur := counter.Load()
			rate := float64(cur-lastCounter) / now.Sub(lastTime).Seconds()
			lastTime = now
			lastCounter = cur
			printProgress(now.Sub(startTime), rate, cur)
		}

		for {
			select {
			case <-done:
				checkTimingAndPrint(time.Now())
				return
			case now := <-ticker.C:
				checkTimingAndPrint(now)
			}
		}
	}()

	var wg sync.WaitGroup
	errs := make([]error, jobs)
	wg.Add(jobs)
	for i := 0; i < jobs; i++ {
		go func(job int) {
			defer wg.Done()
			p, err := newProber(protocol, seed+uint64(job))
			if err != nil {
				errs[job] = err
				return
			}
			for j := 0; j < count; j++ {
				if err := p.step(); err != nil {
					errs[job] = fmt.Errorf("job %d, transaction %d: %w", job, j, err)
					return
				}
				counter.Add(1)
			}
		}(i)
	}
	wg.Wait()
	close(done)
	<-printerDone
	return errors.Join(errs...)
}

const (
	probeGasBalance = 1_000_000_000_000
	probeCoins      = 4
	probeBudget     = 50_000_000
)

// prober runs random transactions of a single sender against a fresh store
// and checks the properties all effects have to satisfy.
type prober struct {
	rnd       *rand.Rand
	store     *memory.Store
	processor *ptx.Processor
	epoch     ledger.EpochParameters
	sender    ledger.Address
	gas       ledger.ObjectID
	versions  map[ledger.ObjectID]ledger.Version
}

func newProber(protocol config.Protocol, seed uint64) (*prober, error) {
	vm, err := ledger.NewVM("native")
	if err != nil {
		return nil, err
	}
	rnd := rand.New(seed)
	var sender ledger.Address
	sender[0] = 0xa1
	sender[31] = byte(rnd.Intn(256))

	var genesis []*ledger.Object
	for i := 0; i <= probeCoins; i++ {
		balance := uint64(probeGasBalance)
		if i > 0 {
			balance = 1 + rnd.Uint64n(1_000_000)
		}
		coin := ledger.NewCoin(genesisID(i), ledger.GasCoinType, balance, ledger.AddressOwned(sender))
		coin.Version = 1
		coin.StorageRebate = protocol.StorageFee(coin.ContentSize())
		genesis = append(genesis, coin)
	}
	store, err := memory.NewWithObjects(genesis...)
	if err != nil {
		return nil, err
	}
	versions := map[ledger.ObjectID]ledger.Version{}
	for _, o := range genesis {
		versions[o.ID] = o.Version
	}
	return &prober{
		rnd:       rnd,
		store:     store,
		processor: ptx.New(vm, protocol),
		epoch:     ledger.EpochParameters{Epoch: 1, ReferenceGasPrice: 1_000},
		sender:    sender,
		gas:       genesis[0].ID,
		versions:  versions,
	}, nil
}

// step runs a single random transaction and checks its effects.
func (p *prober) step() error {
	tx, expected, err := p.randomTransaction()
	if err != nil {
		return err
	}
	initial, err := p.totalBalance()
	if err != nil {
		return err
	}

	dry, _, err := p.processor.DryRun(p.epoch, tx, p.store)
	if err != nil {
		return err
	}
	effects, err := p.processor.Run(p.epoch, tx, p.store)
	if err != nil {
		return err
	}

	if want, got := dry.Digest(), effects.Digest(); want != got {
		return fmt.Errorf("non-deterministic effects: dry run %v, run %v", want, got)
	}
	if expected != "" {
		if effects.Status.Error == nil || effects.Status.Error.Kind != expected {
			return fmt.Errorf("expected failure %v, got %v", expected, effects.Status.Error)
		}
	}
	if err := p.checkVersions(effects); err != nil {
		return err
	}

	final, err := p.totalBalance()
	if err != nil {
		return err
	}
	if int64(initial)-effects.GasSummary.NetCharge() != int64(final) {
		return fmt.Errorf("balance not conserved: %d before, %d after, charged %d", initial, final, effects.GasSummary.NetCharge())
	}
	return nil
}

// checkVersions checks that all written objects carry the lamport version
// and that versions only grow.
func (p *prober) checkVersions(effects ledger.TransactionEffects) error {
	if effects.LamportVersion == 0 {
		if len(effects.Created)+len(effects.Mutated)+len(effects.Deleted) > 0 {
			return fmt.Errorf("rejected transaction with changes")
		}
		return nil
	}
	written := append(append([]ledger.ObjectRef{}, effects.Created...), effects.Mutated...)
	written = append(written, effects.GasObject)
	for _, ref := range written {
		if ref.Version != effects.LamportVersion {
			return fmt.Errorf("object %v written at version %d, lamport version %d", ref.ID, ref.Version, effects.LamportVersion)
		}
		if previous, found := p.versions[ref.ID]; found && previous > ref.Version {
			return fmt.Errorf("version of %v decreased from %d to %d", ref.ID, previous, ref.Version)
		}
		p.versions[ref.ID] = ref.Version
	}
	return nil
}

func (p *prober) totalBalance() (uint64, error) {
	var res uint64
	for _, id := range p.store.LiveObjects() {
		o, err := p.store.GetObject(id)
		if err != nil {
			return 0, err
		}
		if o.Type != ledger.GasCoinType {
			continue
		}
		balance, _ := o.CoinBalance()
		res += balance
	}
	return res, nil
}

// owned lists the live objects of the sender of the given type, excluding
// the gas coin.
func (p *prober) owned(t ledger.TypeTag) ([]*ledger.Object, error) {
	var res []*ledger.Object
	for _, id := range p.store.LiveObjects() {
		if id == p.gas {
			continue
		}
		o, err := p.store.GetObject(id)
		if err != nil {
			return nil, err
		}
		if o.Type == t && o.Owner.IsOwnedBy(p.sender) {
			res = append(res, o)
		}
	}
	return res, nil
}

// randomTransaction creates a transaction and, if it must fail, the kind of
// the expected failure.
func (p *prober) randomTransaction() (ledger.Transaction, ledger.ErrorKind, error) {
	gas, err := p.store.GetObject(p.gas)
	if err != nil {
		return ledger.Transaction{}, "", err
	}
	tx := ledger.Transaction{
		Sender: p.sender,
		Gas: ledger.GasData{
			Payment: gas.Ref(),
			Owner:   p.sender,
			Price:   p.epoch.ReferenceGasPrice,
			Budget:  probeBudget,
		},
	}
	coins, err := p.owned(ledger.GasCoinType)
	if err != nil {
		return ledger.Transaction{}, "", err
	}
	counters, err := p.owned(native.CounterType)
	if err != nil {
		return ledger.Transaction{}, "", err
	}

	var expected ledger.ErrorKind
	switch choice := p.rnd.Intn(6); {
	case choice == 1 && len(coins) > 0:
		// merge some coins into the gas coin
		n := 1 + p.rnd.Intn(min(3, len(coins)))
		sources := make([]ledger.Argument, 0, n)
		for i, c := range coins[:n] {
			tx.Inputs = append(tx.Inputs, ledger.NewOwnedInput(c.Ref()))
			sources = append(sources, ledger.InputArg(uint16(i)))
		}
		tx.Commands = append(tx.Commands, ledger.MergeCoins{Destination: ledger.GasCoin(), Sources: sources})

	case choice == 2 && len(coins) > 0:
		// split a coin, the amount may exceed its balance
		coin := coins[p.rnd.Intn(len(coins))]
		balance, _ := coin.CoinBalance()
		tx.Inputs = append(tx.Inputs,
			ledger.NewOwnedInput(coin.Ref()),
			ledger.NewU64Input(p.rnd.Uint64n(balance+balance/4+1)),
			ledger.NewAddressInput(p.sender),
		)
		tx.Commands = append(tx.Commands,
			ledger.SplitCoins{Coin: ledger.InputArg(0), Amounts: []ledger.Argument{ledger.InputArg(1)}},
			ledger.TransferObjects{Objects: []ledger.Argument{ledger.NestedResult(0, 0)}, Recipient: ledger.InputArg(2)},
		)

	case choice == 3 && len(coins) > 0:
		// a value moved once cannot be used again
		tx.Inputs = append(tx.Inputs,
			ledger.NewOwnedInput(coins[0].Ref()),
			ledger.NewAddressInput(p.sender),
		)
		tx.Commands = append(tx.Commands, ledger.TransferObjects{
			Objects:   []ledger.Argument{ledger.InputArg(0), ledger.InputArg(0)},
			Recipient: ledger.InputArg(1),
		})
		expected = ledger.ArgumentWithoutValue

	case choice == 4 && len(counters) > 0:
		counter := counters[p.rnd.Intn(len(counters))]
		tx.Inputs = append(tx.Inputs, ledger.NewOwnedInput(counter.Ref()))
		tx.Commands = append(tx.Commands, ledger.MoveCall{
			Target: ledger.CallTarget{Package: ledger.FrameworkPackage, Module: "counter", Function: "increment"},
			Args:   []ledger.Argument{ledger.InputArg(0)},
		})

	case choice == 5:
		tx.Inputs = append(tx.Inputs, ledger.NewAddressInput(p.sender))
		tx.Commands = append(tx.Commands,
			ledger.MoveCall{Target: ledger.CallTarget{Package: ledger.FrameworkPackage, Module: "counter", Function: "create"}},
			ledger.TransferObjects{Objects: []ledger.Argument{ledger.Result(0)}, Recipient: ledger.InputArg(0)},
		)

	default:
		// split the gas coin into up to four new coins
		n := 1 + p.rnd.Intn(4)
		objects := make([]ledger.Argument, 0, n)
		amounts := make([]ledger.Argument, 0, n)
		for i := 0; i < n; i++ {
			tx.Inputs = append(tx.Inputs, ledger.NewU64Input(1+p.rnd.Uint64n(1_000_000)))
			amounts = append(amounts, ledger.InputArg(uint16(i)))
			objects = append(objects, ledger.NestedResult(0, uint16(i)))
		}
		tx.Inputs = append(tx.Inputs, ledger.NewAddressInput(p.sender))
		tx.Commands = append(tx.Commands,
			ledger.SplitCoins{Coin: ledger.GasCoin(), Amounts: amounts},
			ledger.TransferObjects{Objects: objects, Recipient: ledger.InputArg(uint16(n))},
		)
	}
	return tx, expected, nil
}

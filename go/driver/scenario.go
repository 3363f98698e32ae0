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
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/Fantom-foundation/Tessera/go/config"
	"github.com/Fantom-foundation/Tessera/go/ledger"
	"github.com/Fantom-foundation/Tessera/go/vm/native"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// scenarioFile is the JSON form of a list of tasks run against a ledger.
// Objects are referred to by names of the form object(task,index), where
// task is the index of the step creating the object (0 for the genesis
// objects) and index is the creation order within that step.
type scenarioFile struct {
	Epoch    ledger.EpochParameters `json:"epoch"`
	Accounts map[string]string      `json:"accounts"`
	Genesis  []genesisObject        `json:"genesis"`
	Steps    []step                 `json:"steps"`
}

type genesisObject struct {
	Owner   ownerJSON `json:"owner"`
	Coin    string    `json:"coin,omitempty"` // < balance type, e.g. 0x2::gas::GAS
	Balance uint64    `json:"balance,omitempty"`
	Counter *uint64   `json:"counter,omitempty"`
}

type ownerJSON struct {
	Address   string         `json:"address,omitempty"`
	Object    string         `json:"object,omitempty"`
	Shared    bool           `json:"shared,omitempty"`
	Immutable bool           `json:"immutable,omitempty"`
	Version   ledger.Version `json:"version,omitempty"` // < initial shared version
}

// step is either a transaction or the dump of an object.
type step struct {
	Transaction *transactionJSON `json:"transaction,omitempty"`
	Dump        string           `json:"dump,omitempty"`
}

type transactionJSON struct {
	Sender   string        `json:"sender"`
	Gas      gasJSON       `json:"gas"`
	Inputs   []inputJSON   `json:"inputs"`
	Commands []commandJSON `json:"commands"`
}

type gasJSON struct {
	Coin   string `json:"coin"`
	Budget uint64 `json:"budget"`
	Price  uint64 `json:"price"`
}

type inputJSON struct {
	U64       *uint64 `json:"u64,omitempty"`
	Bool      *bool   `json:"bool,omitempty"`
	Address   string  `json:"address,omitempty"`
	Pure      string  `json:"pure,omitempty"` // < hex encoded
	Object    string  `json:"object,omitempty"`
	Shared    string  `json:"shared,omitempty"`
	Mutable   bool    `json:"mutable,omitempty"`
	Receiving string  `json:"receiving,omitempty"`
}

type commandJSON struct {
	MoveCall        *moveCallJSON        `json:"MoveCall,omitempty"`
	TransferObjects *transferObjectsJSON `json:"TransferObjects,omitempty"`
	SplitCoins      *splitCoinsJSON      `json:"SplitCoins,omitempty"`
	MergeCoins      *mergeCoinsJSON      `json:"MergeCoins,omitempty"`
	MakeVector      *makeVectorJSON      `json:"MakeVector,omitempty"`
	Publish         *publishJSON         `json:"Publish,omitempty"`
	Upgrade         *upgradeJSON         `json:"Upgrade,omitempty"`
}

type moveCallJSON struct {
	Target   string            `json:"target"`
	TypeArgs []ledger.TypeTag  `json:"type_args"`
	Args     []ledger.Argument `json:"args"`
}

type transferObjectsJSON struct {
	Objects   []ledger.Argument `json:"objects"`
	Recipient ledger.Argument   `json:"recipient"`
}

type splitCoinsJSON struct {
	Coin    ledger.Argument   `json:"coin"`
	Amounts []ledger.Argument `json:"amounts"`
}

type mergeCoinsJSON struct {
	Destination ledger.Argument   `json:"destination"`
	Sources     []ledger.Argument `json:"sources"`
}

type makeVectorJSON struct {
	Type     ledger.TypeTag    `json:"type"`
	Elements []ledger.Argument `json:"elements"`
}

type publishJSON struct {
	Modules      []hexutil.Bytes `json:"modules"`
	Dependencies []string        `json:"dependencies"`
}

type upgradeJSON struct {
	Modules      []hexutil.Bytes `json:"modules"`
	Dependencies []string        `json:"dependencies"`
	Package      string          `json:"package"`
	Ticket       ledger.Argument `json:"ticket"`
}

func loadScenario(path string) (*scenarioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseScenario(data)
}

func parseScenario(data []byte) (*scenarioFile, error) {
	res := &scenarioFile{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if res.Epoch.ReferenceGasPrice == 0 {
		res.Epoch.ReferenceGasPrice = 1_000
	}
	return res, nil
}

// ----------------------------------------------------------------------------
// Names
// ----------------------------------------------------------------------------

var objectName = regexp.MustCompile(`^object\((\d+),(\d+)\)$`)

type objectKey struct {
	task, index int
}

// names maps between object ids and their object(task,index) names.
type names struct {
	ids      map[objectKey]ledger.ObjectID
	keys     map[ledger.ObjectID]objectKey
	accounts map[string]ledger.Address
}

func newNames(accounts map[string]string) (*names, error) {
	res := &names{
		ids:      map[objectKey]ledger.ObjectID{},
		keys:     map[ledger.ObjectID]objectKey{},
		accounts: map[string]ledger.Address{},
	}
	for name, hex := range accounts {
		address, err := ledger.HexToAddress(hex)
		if err != nil {
			return nil, fmt.Errorf("invalid address of account %s: %w", name, err)
		}
		res.accounts[name] = address
	}
	return res, nil
}

func (n *names) add(task, index int, id ledger.ObjectID) {
	key := objectKey{task, index}
	n.ids[key] = id
	n.keys[id] = key
}

// Name renders the id of a known object as object(task,index).
func (n *names) Name(id ledger.ObjectID) string {
	if key, found := n.keys[id]; found {
		return fmt.Sprintf("object(%d,%d)", key.task, key.index)
	}
	return id.ShortString()
}

// object resolves an object name or a hex id.
func (n *names) object(name string) (ledger.ObjectID, error) {
	match := objectName.FindStringSubmatch(name)
	if match == nil {
		return ledger.HexToObjectID(name)
	}
	task, _ := strconv.Atoi(match[1])
	index, _ := strconv.Atoi(match[2])
	id, found := n.ids[objectKey{task, index}]
	if !found {
		return ledger.ObjectID{}, fmt.Errorf("unknown object %s", name)
	}
	return id, nil
}

// address resolves an account name, an object name or a hex address.
func (n *names) address(name string) (ledger.Address, error) {
	if address, found := n.accounts[name]; found {
		return address, nil
	}
	if objectName.MatchString(name) {
		id, err := n.object(name)
		return ledger.Address(id), err
	}
	return ledger.HexToAddress(name)
}

// ----------------------------------------------------------------------------
// Genesis
// ----------------------------------------------------------------------------

// genesisID is the id of the i-th genesis object.
func genesisID(i int) ledger.ObjectID {
	return ledger.DeriveObjectID(ledger.Digest{}, uint64(i))
}

// buildGenesis creates the genesis objects, registering their names as
// object(0,i).
func buildGenesis(objects []genesisObject, n *names, protocol config.Protocol) ([]*ledger.Object, error) {
	for i := range objects {
		n.add(0, i, genesisID(i))
	}
	res := make([]*ledger.Object, 0, len(objects))
	for i, o := range objects {
		id := genesisID(i)
		owner, err := o.Owner.resolve(n)
		if err != nil {
			return nil, fmt.Errorf("genesis object %d: %w", i, err)
		}
		var object *ledger.Object
		switch {
		case o.Coin != "":
			object = ledger.NewCoin(id, ledger.CoinType(ledger.TypeTag(o.Coin)), o.Balance, owner)
		case o.Counter != nil:
			object = &ledger.Object{
				ID:    id,
				Owner: owner,
				Type:  native.CounterType,
				Contents: []ledger.Field{
					{Name: "id", Value: ledger.IDField(id)},
					{Name: "value", Value: ledger.U64Field(*o.Counter)},
				},
			}
		default:
			return nil, fmt.Errorf("genesis object %d is neither a coin nor a counter", i)
		}
		object.Version = 1
		if owner.IsShared() {
			object.Version = owner.InitialSharedVersion
		}
		object.StorageRebate = protocol.StorageFee(object.ContentSize())
		res = append(res, object)
	}
	return res, nil
}

func (o ownerJSON) resolve(n *names) (ledger.Owner, error) {
	switch {
	case o.Address != "":
		address, err := n.address(o.Address)
		return ledger.AddressOwned(address), err
	case o.Object != "":
		parent, err := n.object(o.Object)
		return ledger.ObjectOwned(parent), err
	case o.Shared:
		return ledger.Shared(max(o.Version, 1)), nil
	case o.Immutable:
		return ledger.ImmutableOwner(), nil
	}
	return ledger.Owner{}, fmt.Errorf("missing owner")
}

// ----------------------------------------------------------------------------
// Transactions
// ----------------------------------------------------------------------------

// build creates the transaction, resolving object references against the
// current state of the store.
func (s *transactionJSON) build(n *names, store ledger.ObjectReader) (ledger.Transaction, error) {
	sender, err := n.address(s.Sender)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("invalid sender: %w", err)
	}
	ref := func(name string) (ledger.ObjectRef, error) {
		id, err := n.object(name)
		if err != nil {
			return ledger.ObjectRef{}, err
		}
		o, err := store.GetObject(id)
		if err != nil {
			return ledger.ObjectRef{}, fmt.Errorf("failed to resolve %s: %w", name, err)
		}
		return o.Ref(), nil
	}

	payment, err := ref(s.Gas.Coin)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("invalid gas coin: %w", err)
	}
	res := ledger.Transaction{
		Sender: sender,
		Gas: ledger.GasData{
			Payment: payment,
			Owner:   sender,
			Price:   s.Gas.Price,
			Budget:  s.Gas.Budget,
		},
	}

	for i, in := range s.Inputs {
		input, err := in.build(n, store, ref)
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("invalid input %d: %w", i, err)
		}
		res.Inputs = append(res.Inputs, input)
	}
	for i, c := range s.Commands {
		command, err := c.build(n)
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("invalid command %d: %w", i, err)
		}
		res.Commands = append(res.Commands, command)
	}
	return res, nil
}

func (in inputJSON) build(n *names, store ledger.ObjectReader, ref func(string) (ledger.ObjectRef, error)) (ledger.Input, error) {
	switch {
	case in.U64 != nil:
		return ledger.NewU64Input(*in.U64), nil
	case in.Bool != nil:
		if *in.Bool {
			return ledger.NewPureInput([]byte{1}), nil
		}
		return ledger.NewPureInput([]byte{0}), nil
	case in.Address != "":
		address, err := n.address(in.Address)
		return ledger.NewAddressInput(address), err
	case in.Pure != "":
		data, err := hexutil.Decode(in.Pure)
		return ledger.NewPureInput(data), err
	case in.Object != "":
		r, err := ref(in.Object)
		return ledger.NewOwnedInput(r), err
	case in.Receiving != "":
		r, err := ref(in.Receiving)
		return ledger.NewReceivingInput(r), err
	case in.Shared != "":
		id, err := n.object(in.Shared)
		if err != nil {
			return ledger.Input{}, err
		}
		o, err := store.GetObject(id)
		if err != nil {
			return ledger.Input{}, fmt.Errorf("failed to resolve %s: %w", in.Shared, err)
		}
		return ledger.NewSharedInput(id, o.Owner.InitialSharedVersion, in.Mutable), nil
	}
	return ledger.Input{}, fmt.Errorf("empty input")
}

func (c commandJSON) build(n *names) (ledger.Command, error) {
	switch {
	case c.MoveCall != nil:
		target, err := ledger.ParseCallTarget(c.MoveCall.Target)
		if err != nil {
			return nil, err
		}
		return ledger.MoveCall{Target: target, TypeArgs: c.MoveCall.TypeArgs, Args: c.MoveCall.Args}, nil
	case c.TransferObjects != nil:
		return ledger.TransferObjects{Objects: c.TransferObjects.Objects, Recipient: c.TransferObjects.Recipient}, nil
	case c.SplitCoins != nil:
		return ledger.SplitCoins{Coin: c.SplitCoins.Coin, Amounts: c.SplitCoins.Amounts}, nil
	case c.MergeCoins != nil:
		return ledger.MergeCoins{Destination: c.MergeCoins.Destination, Sources: c.MergeCoins.Sources}, nil
	case c.MakeVector != nil:
		return ledger.MakeVector{Type: c.MakeVector.Type, Elements: c.MakeVector.Elements}, nil
	case c.Publish != nil:
		dependencies, err := resolveAll(n, c.Publish.Dependencies)
		if err != nil {
			return nil, err
		}
		return ledger.Publish{Modules: modules(c.Publish.Modules), Dependencies: dependencies}, nil
	case c.Upgrade != nil:
		dependencies, err := resolveAll(n, c.Upgrade.Dependencies)
		if err != nil {
			return nil, err
		}
		pkg, err := n.object(c.Upgrade.Package)
		if err != nil {
			return nil, err
		}
		return ledger.Upgrade{
			Modules:      modules(c.Upgrade.Modules),
			Dependencies: dependencies,
			Package:      pkg,
			Ticket:       c.Upgrade.Ticket,
		}, nil
	}
	return nil, fmt.Errorf("empty command")
}

func resolveAll(n *names, list []string) ([]ledger.ObjectID, error) {
	res := make([]ledger.ObjectID, 0, len(list))
	for _, name := range list {
		id, err := n.object(name)
		if err != nil {
			return nil, err
		}
		res = append(res, id)
	}
	return res, nil
}

func modules(list []hexutil.Bytes) [][]byte {
	res := make([][]byte, 0, len(list))
	for _, m := range list {
		res = append(res, m)
	}
	return res
}

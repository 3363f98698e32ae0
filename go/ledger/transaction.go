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
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/blake2b"
)

// InputKind distinguishes the variants of a transaction input.
type InputKind uint8

const (
	PureInput InputKind = iota
	OwnedObjectInput
	SharedObjectInput
	ReceivingInput
)

func (k InputKind) String() string {
	switch k {
	case PureInput:
		return "Pure"
	case OwnedObjectInput:
		return "OwnedObject"
	case SharedObjectInput:
		return "SharedObject"
	case ReceivingInput:
		return "ReceivingObject"
	}
	return fmt.Sprintf("InputKind(%d)", k)
}

// Input is a tagged variant, only the fields matching Kind are meaningful.
type Input struct {
	Kind                 InputKind
	Pure                 []byte    // < for PureInput
	Object               ObjectRef // < for OwnedObjectInput and ReceivingInput
	SharedID             ObjectID  // < for SharedObjectInput
	InitialSharedVersion Version   // < for SharedObjectInput
	Mutable              bool      // < for SharedObjectInput
}

func NewPureInput(data []byte) Input {
	return Input{Kind: PureInput, Pure: data}
}

func NewU64Input(v uint64) Input {
	return NewPureInput(EncodeU64(v))
}

func NewAddressInput(a Address) Input {
	return NewPureInput(a[:])
}

func NewOwnedInput(ref ObjectRef) Input {
	return Input{Kind: OwnedObjectInput, Object: ref}
}

func NewSharedInput(id ObjectID, initialSharedVersion Version, mutable bool) Input {
	return Input{Kind: SharedObjectInput, SharedID: id, InitialSharedVersion: initialSharedVersion, Mutable: mutable}
}

func NewReceivingInput(ref ObjectRef) Input {
	return Input{Kind: ReceivingInput, Object: ref}
}

// ObjectID returns the id of the object referenced by the input.
func (in Input) ObjectID() (ObjectID, bool) {
	switch in.Kind {
	case OwnedObjectInput, ReceivingInput:
		return in.Object.ID, true
	case SharedObjectInput:
		return in.SharedID, true
	}
	return ObjectID{}, false
}

// ArgumentKind distinguishes the sources a command argument may refer to.
type ArgumentKind uint8

const (
	GasCoinArgument ArgumentKind = iota
	InputArgument
	ResultArgument
	NestedResultArgument
)

// Argument addresses a value slot of the running transaction.
type Argument struct {
	Kind   ArgumentKind
	Index  uint16
	Nested uint16 // < only for NestedResultArgument
}

func GasCoin() Argument {
	return Argument{Kind: GasCoinArgument}
}

func InputArg(i uint16) Argument {
	return Argument{Kind: InputArgument, Index: i}
}

func Result(i uint16) Argument {
	return Argument{Kind: ResultArgument, Index: i}
}

func NestedResult(i, j uint16) Argument {
	return Argument{Kind: NestedResultArgument, Index: i, Nested: j}
}

func (a Argument) String() string {
	switch a.Kind {
	case GasCoinArgument:
		return "GasCoin"
	case InputArgument:
		return fmt.Sprintf("Input(%d)", a.Index)
	case ResultArgument:
		return fmt.Sprintf("Result(%d)", a.Index)
	case NestedResultArgument:
		return fmt.Sprintf("NestedResult(%d,%d)", a.Index, a.Nested)
	}
	return fmt.Sprintf("Argument(%d)", a.Kind)
}

func (a Argument) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Argument) UnmarshalText(data []byte) error {
	res, err := ParseArgument(string(data))
	if err != nil {
		return err
	}
	*a = res
	return nil
}

// ParseArgument is the inverse of Argument.String.
func ParseArgument(s string) (Argument, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "GasCoin" {
		return GasCoin(), nil
	}
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Argument{}, fmt.Errorf("invalid argument: %q", s)
	}
	name, params := s[:open], strings.Split(s[open+1:len(s)-1], ",")
	indices := make([]uint16, 0, len(params))
	for _, p := range params {
		v, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return Argument{}, fmt.Errorf("invalid argument index in %q: %w", s, err)
		}
		indices = append(indices, uint16(v))
	}
	switch {
	case name == "Input" && len(indices) == 1:
		return InputArg(indices[0]), nil
	case name == "Result" && len(indices) == 1:
		return Result(indices[0]), nil
	case name == "NestedResult" && len(indices) == 2:
		return NestedResult(indices[0], indices[1]), nil
	}
	return Argument{}, fmt.Errorf("invalid argument: %q", s)
}

// CallTarget names a function of a published package.
type CallTarget struct {
	Package  ObjectID
	Module   string
	Function string
}

func (t CallTarget) String() string {
	return fmt.Sprintf("%s::%s::%s", t.Package.ShortString(), t.Module, t.Function)
}

// ParseCallTarget parses package::module::function.
func ParseCallTarget(s string) (CallTarget, error) {
	parts := strings.Split(s, "::")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return CallTarget{}, fmt.Errorf("invalid call target: %q", s)
	}
	pkg, err := HexToObjectID(parts[0])
	if err != nil {
		return CallTarget{}, fmt.Errorf("invalid call target package: %w", err)
	}
	return CallTarget{Package: pkg, Module: parts[1], Function: parts[2]}, nil
}

// Command is one of MoveCall, TransferObjects, SplitCoins, MergeCoins,
// MakeVector, Publish or Upgrade. The set is closed.
type Command interface {
	commandTag() commandTag
}

type commandTag uint8

const (
	moveCallTag commandTag = iota
	transferObjectsTag
	splitCoinsTag
	mergeCoinsTag
	makeVectorTag
	publishTag
	upgradeTag
)

// MoveCall invokes a function through the VM collaborator.
type MoveCall struct {
	Target   CallTarget
	TypeArgs []TypeTag
	Args     []Argument
}

// TransferObjects sends objects to the address given by Recipient.
type TransferObjects struct {
	Objects   []Argument
	Recipient Argument
}

// SplitCoins creates one new coin per amount, taken from Coin.
type SplitCoins struct {
	Coin    Argument
	Amounts []Argument
}

// MergeCoins folds the balances of Sources into Destination.
type MergeCoins struct {
	Destination Argument
	Sources     []Argument
}

// MakeVector aggregates the elements into a single vector value. Type may
// be empty if there is at least one element to infer it from.
type MakeVector struct {
	Type     TypeTag
	Elements []Argument
}

// Publish creates a new package from the given modules.
type Publish struct {
	Modules      [][]byte
	Dependencies []ObjectID
}

// Upgrade creates a new version of Package, authorized by Ticket.
type Upgrade struct {
	Modules      [][]byte
	Dependencies []ObjectID
	Package      ObjectID
	Ticket       Argument
}

func (MoveCall) commandTag() commandTag        { return moveCallTag }
func (TransferObjects) commandTag() commandTag { return transferObjectsTag }
func (SplitCoins) commandTag() commandTag      { return splitCoinsTag }
func (MergeCoins) commandTag() commandTag      { return mergeCoinsTag }
func (MakeVector) commandTag() commandTag      { return makeVectorTag }
func (Publish) commandTag() commandTag         { return publishTag }
func (Upgrade) commandTag() commandTag         { return upgradeTag }

// CommandName returns the name of the command variant.
func CommandName(c Command) string {
	switch c.(type) {
	case MoveCall:
		return "MoveCall"
	case TransferObjects:
		return "TransferObjects"
	case SplitCoins:
		return "SplitCoins"
	case MergeCoins:
		return "MergeCoins"
	case MakeVector:
		return "MakeVector"
	case Publish:
		return "Publish"
	case Upgrade:
		return "Upgrade"
	}
	return fmt.Sprintf("%T", c)
}

// GasData describes the payment of a transaction.
type GasData struct {
	Payment ObjectRef // the coin paying for the execution
	Owner   Address   // the owner of the payment coin
	Price   uint64    // the price of a computation unit
	Budget  uint64    // the maximum amount to be charged
}

// Transaction is a programmable transaction: inputs plus an ordered list
// of commands.
type Transaction struct {
	Sender   Address
	Inputs   []Input
	Commands []Command
	Gas      GasData
}

type taggedCommand struct {
	Tag     commandTag
	Payload []byte
}

type transactionEncoding struct {
	Sender   Address
	Inputs   []Input
	Commands []taggedCommand
	Gas      GasData
}

// Digest is the content hash of the transaction.
func (t *Transaction) Digest() Digest {
	commands := make([]taggedCommand, 0, len(t.Commands))
	for _, c := range t.Commands {
		payload, err := rlp.EncodeToBytes(c)
		if err != nil {
			panic(fmt.Sprintf("failed to encode command %v: %v", CommandName(c), err))
		}
		commands = append(commands, taggedCommand{Tag: c.commandTag(), Payload: payload})
	}
	data, err := rlp.EncodeToBytes(transactionEncoding{t.Sender, t.Inputs, commands, t.Gas})
	if err != nil {
		panic(fmt.Sprintf("failed to encode transaction: %v", err))
	}
	return blake2b.Sum256(data)
}

// DeriveObjectID computes the id of the n-th object created by the
// transaction with the given digest. Re-executions of a transaction thus
// create the same ids.
func DeriveObjectID(tx Digest, n uint64) ObjectID {
	data := binary.LittleEndian.AppendUint64(bytes.Clone(tx[:]), n)
	return blake2b.Sum256(data)
}

// EpochParameters are the protocol wide parameters of the current epoch.
type EpochParameters struct {
	Epoch             uint64
	ReferenceGasPrice uint64
}

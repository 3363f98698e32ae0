// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package native

import (
	"fmt"
	"strings"

	"github.com/Fantom-foundation/Tessera/go/ledger"
)

// Types defined by the framework package.
const (
	CounterType        ledger.TypeTag = "0x2::counter::Counter"
	UpgradeCapType     ledger.TypeTag = "0x2::package::UpgradeCap"
	UpgradeTicketType  ledger.TypeTag = "0x2::package::UpgradeTicket"
	UpgradeReceiptType ledger.TypeTag = "0x2::package::UpgradeReceipt"
	PackageType        ledger.TypeTag = "package"

	receivingPrefix = "0x2::transfer::Receiving<"
)

// ReceivingType is the type of a ticket for receiving an object of type t.
func ReceivingType(t ledger.TypeTag) ledger.TypeTag {
	return ledger.TypeTag(receivingPrefix + string(t) + ">")
}

type function struct {
	typeParams int
	units      uint64
	signature  func(typeArgs []ledger.TypeTag) ledger.FunctionSignature
	run        func(*call) (ledger.InvokeResult, error)
}

type call struct {
	ctx      ledger.TxContext
	typeArgs []ledger.TypeTag
	args     []ledger.Value
}

func (c *call) object(i int) *ledger.Object {
	return c.args[i].Object
}

func byValue(t ledger.TypeTag) ledger.Parameter {
	return ledger.Parameter{Kind: ledger.ByValue, Type: t}
}

func byRef(t ledger.TypeTag) ledger.Parameter {
	return ledger.Parameter{Kind: ledger.ByImmutableRef, Type: t}
}

func byMutRef(t ledger.TypeTag) ledger.Parameter {
	return ledger.Parameter{Kind: ledger.ByMutableRef, Type: t}
}

func sig(returns []ledger.TypeTag, params ...ledger.Parameter) ledger.FunctionSignature {
	return ledger.FunctionSignature{Parameters: params, Returns: returns}
}

func returns(types ...ledger.TypeTag) []ledger.TypeTag {
	return types
}

// framework lists the functions of package 0x2 by module::function.
var framework = map[string]function{
	"transfer::public_transfer": {
		typeParams: 1,
		units:      100,
		signature: func(ta []ledger.TypeTag) ledger.FunctionSignature {
			return sig(nil, byValue(ta[0]), byValue(ledger.TypeAddress))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			recipient, ok := c.args[1].AsAddress()
			if !ok {
				return ledger.InvokeResult{}, fmt.Errorf("invalid recipient %v", c.args[1])
			}
			o := c.object(0)
			o.Owner = ledger.AddressOwned(recipient)
			return ledger.InvokeResult{Written: []*ledger.Object{o}}, nil
		},
	},
	"transfer::public_share_object": {
		typeParams: 1,
		units:      100,
		signature: func(ta []ledger.TypeTag) ledger.FunctionSignature {
			return sig(nil, byValue(ta[0]))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			o := c.object(0)
			// the initial shared version is assigned by the engine
			o.Owner = ledger.Shared(0)
			return ledger.InvokeResult{Written: []*ledger.Object{o}}, nil
		},
	},
	"transfer::public_freeze_object": {
		typeParams: 1,
		units:      100,
		signature: func(ta []ledger.TypeTag) ledger.FunctionSignature {
			return sig(nil, byValue(ta[0]))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			o := c.object(0)
			o.Owner = ledger.ImmutableOwner()
			return ledger.InvokeResult{Written: []*ledger.Object{o}}, nil
		},
	},
	"transfer::receive": {
		typeParams: 2,
		units:      150,
		signature: func(ta []ledger.TypeTag) ledger.FunctionSignature {
			return sig(returns(ta[1]), byMutRef(ta[0]), byValue(ReceivingType(ta[1])))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			parent := c.object(0)
			received := c.args[1].Object
			if received == nil {
				return ledger.InvokeResult{}, fmt.Errorf("ticket for %v without object", c.args[1].Receiving.ID)
			}
			owner := received.Owner
			ownedByParent := (owner.Kind == ledger.ObjectOwner && owner.Parent == parent.ID) ||
				(owner.Kind == ledger.AddressOwner && owner.Address == ledger.Address(parent.ID))
			if !ownedByParent {
				return abort(EObjectNotOwnedByParent), nil
			}
			if received.Type != c.typeArgs[1] {
				return abort(EReceivedTypeMismatch), nil
			}
			return ledger.InvokeResult{Returns: []ledger.Value{ledger.ObjectOf(received)}}, nil
		},
	},
	"dynamic_field::add": {
		typeParams: 2,
		units:      150,
		signature: func(ta []ledger.TypeTag) ledger.FunctionSignature {
			return sig(nil, byMutRef(ta[0]), byValue(ta[1]))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			child := c.object(1)
			child.Owner = ledger.ObjectOwned(c.object(0).ID)
			return ledger.InvokeResult{Written: []*ledger.Object{child}}, nil
		},
	},
	"object::wrap": {
		typeParams: 2,
		units:      150,
		signature: func(ta []ledger.TypeTag) ledger.FunctionSignature {
			return sig(nil, byMutRef(ta[0]), byValue(ta[1]))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			parent, child := c.object(0), c.object(1)
			wrapped := 0
			for _, f := range parent.Contents {
				if strings.HasPrefix(f.Name, "wrapped_") {
					wrapped++
				}
			}
			parent.SetField(fmt.Sprintf("wrapped_%d", wrapped), ledger.IDField(child.ID))
			return ledger.InvokeResult{
				Written: []*ledger.Object{parent},
				Wrapped: []ledger.ObjectID{child.ID},
			}, nil
		},
	},
	"object::delete": {
		typeParams: 1,
		units:      50,
		signature: func(ta []ledger.TypeTag) ledger.FunctionSignature {
			return sig(nil, byValue(ta[0]))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			return ledger.InvokeResult{Deleted: []ledger.ObjectID{c.object(0).ID}}, nil
		},
	},
	"coin::value": {
		typeParams: 1,
		units:      20,
		signature: func(ta []ledger.TypeTag) ledger.FunctionSignature {
			return sig(returns(ledger.TypeU64), byRef(ledger.CoinType(ta[0])))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			balance, ok := c.object(0).CoinBalance()
			if !ok {
				return ledger.InvokeResult{}, fmt.Errorf("object %v is not a coin", c.object(0).ID)
			}
			return ledger.InvokeResult{Returns: []ledger.Value{ledger.U64Value(balance)}}, nil
		},
	},
	"coin::zero": {
		typeParams: 1,
		units:      50,
		signature: func(ta []ledger.TypeTag) ledger.FunctionSignature {
			return sig(returns(ledger.CoinType(ta[0])))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			coin := ledger.NewCoin(c.ctx.FreshID(), ledger.CoinType(c.typeArgs[0]), 0, ledger.Owner{})
			return ledger.InvokeResult{Returns: []ledger.Value{ledger.ObjectOf(coin)}}, nil
		},
	},
	"helper::pass": {
		typeParams: 1,
		units:      10,
		signature: func(ta []ledger.TypeTag) ledger.FunctionSignature {
			return sig(returns(ta[0]), byValue(ta[0]))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			return ledger.InvokeResult{Returns: []ledger.Value{c.args[0]}}, nil
		},
	},
	"helper::id": {
		typeParams: 1,
		units:      10,
		signature: func(ta []ledger.TypeTag) ledger.FunctionSignature {
			return sig(returns(ledger.TypeID), byRef(ta[0]))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			return ledger.InvokeResult{Returns: []ledger.Value{ledger.IDValue(c.object(0).ID)}}, nil
		},
	},
	"counter::create_shared": {
		units: 100,
		signature: func([]ledger.TypeTag) ledger.FunctionSignature {
			return sig(nil)
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			counter := newCounter(c.ctx.FreshID(), ledger.Shared(0))
			return ledger.InvokeResult{Written: []*ledger.Object{counter}}, nil
		},
	},
	"counter::create": {
		units: 100,
		signature: func([]ledger.TypeTag) ledger.FunctionSignature {
			return sig(returns(CounterType))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			counter := newCounter(c.ctx.FreshID(), ledger.Owner{})
			return ledger.InvokeResult{Returns: []ledger.Value{ledger.ObjectOf(counter)}}, nil
		},
	},
	"counter::increment": {
		units: 30,
		signature: func([]ledger.TypeTag) ledger.FunctionSignature {
			return sig(nil, byMutRef(CounterType))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			counter := c.object(0)
			value, err := counterValue(counter)
			if err != nil {
				return ledger.InvokeResult{}, err
			}
			if value == ^uint64(0) {
				return abort(ECounterOverflow), nil
			}
			counter.SetField("value", ledger.U64Field(value+1))
			return ledger.InvokeResult{Written: []*ledger.Object{counter}}, nil
		},
	},
	"counter::value": {
		units: 20,
		signature: func([]ledger.TypeTag) ledger.FunctionSignature {
			return sig(returns(ledger.TypeU64), byRef(CounterType))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			value, err := counterValue(c.object(0))
			if err != nil {
				return ledger.InvokeResult{}, err
			}
			return ledger.InvokeResult{Returns: []ledger.Value{ledger.U64Value(value)}}, nil
		},
	},
	"test::abort": {
		units: 10,
		signature: func([]ledger.TypeTag) ledger.FunctionSignature {
			return sig(nil, byValue(ledger.TypeU64))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			code, ok := c.args[0].AsU64()
			if !ok {
				return ledger.InvokeResult{}, fmt.Errorf("invalid abort code %v", c.args[0])
			}
			return abort(code), nil
		},
	},
	"package::authorize_upgrade": {
		units: 100,
		signature: func([]ledger.TypeTag) ledger.FunctionSignature {
			return sig(returns(UpgradeTicketType), byMutRef(UpgradeCapType))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			capability := c.object(0)
			pkg, err := idField(capability, "package")
			if err != nil {
				return ledger.InvokeResult{}, err
			}
			id := c.ctx.FreshID()
			ticket := &ledger.Object{
				ID:   id,
				Type: UpgradeTicketType,
				Contents: []ledger.Field{
					{Name: "id", Value: ledger.IDField(id)},
					{Name: "cap", Value: ledger.IDField(capability.ID)},
					{Name: "package", Value: ledger.IDField(pkg)},
				},
			}
			return ledger.InvokeResult{Returns: []ledger.Value{ledger.ObjectOf(ticket)}}, nil
		},
	},
	"package::commit_upgrade": {
		units: 100,
		signature: func([]ledger.TypeTag) ledger.FunctionSignature {
			return sig(nil, byMutRef(UpgradeCapType), byValue(UpgradeReceiptType))
		},
		run: func(c *call) (ledger.InvokeResult, error) {
			capability, receipt := c.object(0), c.object(1)
			owner, err := idField(receipt, "cap")
			if err != nil {
				return ledger.InvokeResult{}, err
			}
			if owner != capability.ID {
				return abort(EWrongUpgradeCap), nil
			}
			pkg, err := idField(receipt, "package")
			if err != nil {
				return ledger.InvokeResult{}, err
			}
			version, _ := capability.Field("version")
			v, _ := version.U64()
			capability.SetField("package", ledger.IDField(pkg))
			capability.SetField("version", ledger.U64Field(v+1))
			return ledger.InvokeResult{
				Written: []*ledger.Object{capability},
				Deleted: []ledger.ObjectID{receipt.ID},
			}, nil
		},
	},
}

func newCounter(id ledger.ObjectID, owner ledger.Owner) *ledger.Object {
	return &ledger.Object{
		ID:    id,
		Owner: owner,
		Type:  CounterType,
		Contents: []ledger.Field{
			{Name: "id", Value: ledger.IDField(id)},
			{Name: "value", Value: ledger.U64Field(0)},
		},
	}
}

func counterValue(o *ledger.Object) (uint64, error) {
	field, found := o.Field("value")
	if !found {
		return 0, fmt.Errorf("counter %v has no value", o.ID)
	}
	value, ok := field.U64()
	if !ok {
		return 0, fmt.Errorf("counter %v has invalid value %v", o.ID, field)
	}
	return value, nil
}

func idField(o *ledger.Object, name string) (ledger.ObjectID, error) {
	field, found := o.Field(name)
	if !found {
		return ledger.ObjectID{}, fmt.Errorf("object %v has no field %s", o.ID, name)
	}
	id, ok := field.ID()
	if !ok {
		return ledger.ObjectID{}, fmt.Errorf("field %s of %v is not an id", name, o.ID)
	}
	return id, nil
}

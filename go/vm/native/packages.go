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

	"github.com/Fantom-foundation/Tessera/go/ledger"
)

// publishUnitsPerModule is the computation charged per published module.
const publishUnitsPerModule = 1000

// Publish creates a package holding the given modules and returns the
// capability authorizing its upgrades. Modules are identified by their
// content; empty and duplicate modules fail verification.
func (v *VM) Publish(params ledger.PublishParameters) (ledger.PublishResult, error) {
	pkg, failure := newPackage(params.Context, params.Modules, params.Dependencies)
	if failure != nil {
		return ledger.PublishResult{Failure: failure}, nil
	}
	id := params.Context.FreshID()
	capability := &ledger.Object{
		ID:   id,
		Type: UpgradeCapType,
		Contents: []ledger.Field{
			{Name: "id", Value: ledger.IDField(id)},
			{Name: "package", Value: ledger.IDField(pkg.ID)},
			{Name: "version", Value: ledger.U64Field(1)},
		},
	}
	log.WithField("package", pkg.ID).WithField("modules", len(params.Modules)).Debug("published package")
	return ledger.PublishResult{
		Package:          pkg,
		Returns:          []ledger.Value{ledger.ObjectOf(capability)},
		ComputationUnits: publishUnitsPerModule * uint64(len(params.Modules)),
	}, nil
}

// Upgrade creates a new version of a package. The ticket must have been
// issued for that package; the returned receipt is to be committed to the
// capability the ticket was issued by.
func (v *VM) Upgrade(params ledger.UpgradeParameters) (ledger.PublishResult, error) {
	ticket := params.Ticket.Object
	if ticket == nil || ticket.Type != UpgradeTicketType {
		return ledger.PublishResult{Failure: vmError(ledger.TypeError, "arg_idx", 0)}, nil
	}
	target, err := idField(ticket, "package")
	if err != nil {
		return ledger.PublishResult{}, err
	}
	if target != params.Package {
		res := abort(EWrongPackage)
		return ledger.PublishResult{Failure: res.Failure}, nil
	}
	capability, err := idField(ticket, "cap")
	if err != nil {
		return ledger.PublishResult{}, err
	}

	pkg, failure := newPackage(params.Context, params.Modules, params.Dependencies)
	if failure != nil {
		return ledger.PublishResult{Failure: failure}, nil
	}
	pkg.Contents = append(pkg.Contents, ledger.Field{Name: "previous", Value: ledger.IDField(params.Package)})

	id := params.Context.FreshID()
	receipt := &ledger.Object{
		ID:   id,
		Type: UpgradeReceiptType,
		Contents: []ledger.Field{
			{Name: "id", Value: ledger.IDField(id)},
			{Name: "cap", Value: ledger.IDField(capability)},
			{Name: "package", Value: ledger.IDField(pkg.ID)},
		},
	}
	log.WithField("package", pkg.ID).WithField("previous", params.Package).Debug("upgraded package")
	return ledger.PublishResult{
		Package:          pkg,
		Returns:          []ledger.Value{ledger.ObjectOf(receipt)},
		ComputationUnits: publishUnitsPerModule * uint64(len(params.Modules)),
	}, nil
}

func newPackage(ctx ledger.TxContext, modules [][]byte, dependencies []ledger.ObjectID) (*ledger.Object, *ledger.VMError) {
	id := ctx.FreshID()
	res := &ledger.Object{ID: id, Owner: ledger.ImmutableOwner(), Type: PackageType}
	seen := map[string]bool{}
	for i, module := range modules {
		if len(module) == 0 {
			return nil, vmError(PackageVerificationError, "module_idx", i)
		}
		if seen[string(module)] {
			return nil, vmError(PackageVerificationError, "module_idx", i)
		}
		seen[string(module)] = true
		res.Contents = append(res.Contents, ledger.Field{
			Name:  fmt.Sprintf("module_%d", i),
			Value: ledger.BytesField(module),
		})
	}
	for i, dependency := range dependencies {
		res.Contents = append(res.Contents, ledger.Field{
			Name:  fmt.Sprintf("dependency_%d", i),
			Value: ledger.IDField(dependency),
		})
	}
	return res, nil
}

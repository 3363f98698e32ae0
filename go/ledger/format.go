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
	"fmt"
	"strings"
)

// NameFunc renders object ids in textual output, e.g. as object(2,0).
type NameFunc func(ObjectID) string

// HexNames renders ids in hex.
func HexNames(id ObjectID) string {
	return id.String()
}

// FormatEffects renders the effects record. Failed transactions start with
// the failure record.
func FormatEffects(e *TransactionEffects, names NameFunc) string {
	if names == nil {
		names = HexNames
	}
	var b strings.Builder
	if err := e.Status.Error; err != nil {
		b.WriteString(FormatFailure(err))
		b.WriteString("\n")
	}
	writeList := func(label string, ids []ObjectID) {
		if len(ids) == 0 {
			return
		}
		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			parts = append(parts, names(id))
		}
		fmt.Fprintf(&b, "%s: %s\n", label, strings.Join(parts, ", "))
	}
	writeList("created", refIDs(e.Created))
	writeList("mutated", refIDs(e.Mutated))
	writeList("deleted", e.Deleted)
	writeList("wrapped", e.Wrapped)
	fmt.Fprintf(&b, "gas summary: %v", e.GasSummary)
	return b.String()
}

// FormatFailure renders the two line failure record.
func FormatFailure(err *ExecutionError) string {
	return fmt.Sprintf(
		"Error: Transaction Effects Status: %s.\nDebug of error: %s at command %s",
		err.Summary(), err.Debug(), err.CommandString(),
	)
}

// FormatObject renders the diagnostic dump of an object.
func FormatObject(o *Object, names NameFunc) string {
	if names == nil {
		names = HexNames
	}
	owner := o.Owner.String()
	switch o.Owner.Kind {
	case AddressOwner:
		owner = fmt.Sprintf("Address(%v)", o.Owner.Address)
	case ObjectOwner:
		owner = fmt.Sprintf("Object(%s)", names(o.Owner.Parent))
	}
	fields := make([]string, 0, len(o.Contents))
	for _, f := range o.Contents {
		value := f.Value.String()
		if id, ok := f.Value.ID(); ok {
			value = names(id)
		}
		fields = append(fields, f.Name+": "+value)
	}
	contents := string(o.Type)
	if len(fields) > 0 {
		contents += " { " + strings.Join(fields, ", ") + " }"
	}
	return fmt.Sprintf("Owner: %s\nVersion: %d\nContents: %s", owner, o.Version, contents)
}

func refIDs(refs []ObjectRef) []ObjectID {
	res := make([]ObjectID, 0, len(refs))
	for _, r := range refs {
		res = append(res, r.ID)
	}
	return res
}

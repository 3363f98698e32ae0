// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package leveldb

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Fantom-foundation/Tessera/go/ledger"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStorage(storage.NewMemStorage())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return store
}

func counter(id byte, version ledger.Version, value uint64) *ledger.Object {
	return &ledger.Object{
		ID:      ledger.ObjectID{id},
		Version: version,
		Owner:   ledger.Shared(1),
		Type:    "0x2::counter::Counter",
		Contents: []ledger.Field{
			{Name: "id", Value: ledger.IDField(ledger.ObjectID{id})},
			{Name: "value", Value: ledger.U64Field(value)},
		},
		StorageRebate: 988000,
	}
}

func TestStore_ObjectsSurviveReopening(t *testing.T) {
	path := t.TempDir()
	store, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	want := counter(1, 1, 7)
	if err := store.PutObject(want); err != nil {
		t.Fatalf("failed to put object: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	store, err = Open(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer store.Close()
	got, err := store.GetObject(want.ID)
	if err != nil {
		t.Fatalf("failed to get object: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("unexpected object, wanted %v, got %v", want, got)
	}
}

func TestStore_VersionsAreRetained(t *testing.T) {
	store := newStore(t)
	for _, version := range []ledger.Version{1, 2, 5} {
		if err := store.PutObject(counter(1, version, uint64(version))); err != nil {
			t.Fatalf("failed to put version %d: %v", version, err)
		}
	}
	if err := store.PutObject(counter(2, 3, 0)); err != nil {
		t.Fatalf("failed to put object: %v", err)
	}
	versions, err := store.Versions(ledger.ObjectID{1})
	if err != nil {
		t.Fatalf("failed to list versions: %v", err)
	}
	if want := []ledger.Version{1, 2, 5}; !reflect.DeepEqual(want, versions) {
		t.Errorf("unexpected versions, wanted %v, got %v", want, versions)
	}
	got, err := store.GetObjectByVersion(ledger.ObjectID{1}, 2)
	if err != nil {
		t.Fatalf("failed to get version: %v", err)
	}
	if value, _ := got.Field("value"); value.String() != "2" {
		t.Errorf("unexpected value of version 2: %v", value)
	}
	if _, err := store.GetObjectByVersion(ledger.ObjectID{1}, 3); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("unexpected error for missing version: %v", err)
	}
}

func TestStore_VersionsMustIncrease(t *testing.T) {
	store := newStore(t)
	if err := store.PutObject(counter(1, 4, 0)); err != nil {
		t.Fatalf("failed to put object: %v", err)
	}
	if err := store.PutObject(counter(1, 4, 1)); err == nil {
		t.Errorf("expected put of same version to fail")
	}
}

func TestStore_DeleteHidesLiveObject(t *testing.T) {
	store := newStore(t)
	if err := store.PutObject(counter(1, 1, 0)); err != nil {
		t.Fatalf("failed to put object: %v", err)
	}
	if err := store.DeleteObject(ledger.ObjectID{1}); err != nil {
		t.Fatalf("failed to delete object: %v", err)
	}
	if _, err := store.GetObject(ledger.ObjectID{1}); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("deleted object must not be found, got %v", err)
	}
	if _, err := store.GetObjectByVersion(ledger.ObjectID{1}, 1); err != nil {
		t.Errorf("history of deleted object must be retained, got %v", err)
	}
	if err := store.DeleteObject(ledger.ObjectID{9}); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("deleting an unknown object must fail, got %v", err)
	}
}

func TestStore_FailedBatchLeavesStoreUnchanged(t *testing.T) {
	store := newStore(t)
	if err := store.PutObject(counter(1, 1, 0)); err != nil {
		t.Fatalf("failed to put object: %v", err)
	}
	if err := store.WriteBatch([]*ledger.Object{counter(1, 2, 1)}, []ledger.ObjectID{{2}}); err == nil {
		t.Fatalf("expected batch to fail")
	}
	got, err := store.GetObject(ledger.ObjectID{1})
	if err != nil {
		t.Fatalf("failed to get object: %v", err)
	}
	if got.Version != 1 {
		t.Errorf("failed batch was partially applied")
	}
}

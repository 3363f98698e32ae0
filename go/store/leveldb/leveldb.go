// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package leveldb provides a persistent object store backed by LevelDB.
//
// Every version of an object is kept under a key composed of the object id
// and its big-endian version, so versions of one object are adjacent and
// ordered. A separate head entry per object records the latest version and
// whether that version is live.
package leveldb

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Fantom-foundation/Tessera/go/ledger"
	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var log = logrus.WithField("module", "store/leveldb")

const (
	objectPrefix = 'o'
	headPrefix   = 'h'
)

// Store is an object store on top of a LevelDB instance. It is safe for
// concurrent reads; writes of a single transaction are applied atomically.
type Store struct {
	db *leveldb.DB
}

// Open opens or creates a store in the given directory.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open object store at %s: %w", path, err)
	}
	log.WithField("path", path).Debug("opened object store")
	return &Store{db: db}, nil
}

// OpenStorage opens a store on the given LevelDB storage, e.g. an in-memory
// storage for tests.
func OpenStorage(stor storage.Storage) (*Store, error) {
	db, err := leveldb.Open(stor, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open object store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func objectKey(id ledger.ObjectID, version ledger.Version) []byte {
	key := make([]byte, 0, 1+len(id)+8)
	key = append(key, objectPrefix)
	key = append(key, id[:]...)
	return binary.BigEndian.AppendUint64(key, uint64(version))
}

func headKey(id ledger.ObjectID) []byte {
	return append([]byte{headPrefix}, id[:]...)
}

type head struct {
	version ledger.Version
	live    bool
}

func (h head) encode() []byte {
	res := binary.BigEndian.AppendUint64(nil, uint64(h.version))
	if h.live {
		return append(res, 1)
	}
	return append(res, 0)
}

func decodeHead(data []byte) (head, error) {
	if len(data) != 9 {
		return head{}, fmt.Errorf("invalid head entry of length %d", len(data))
	}
	return head{
		version: ledger.Version(binary.BigEndian.Uint64(data)),
		live:    data[8] != 0,
	}, nil
}

func (s *Store) getHead(id ledger.ObjectID) (head, bool, error) {
	data, err := s.db.Get(headKey(id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return head{}, false, nil
	}
	if err != nil {
		return head{}, false, err
	}
	h, err := decodeHead(data)
	return h, err == nil, err
}

func (s *Store) GetObject(id ledger.ObjectID) (*ledger.Object, error) {
	h, found, err := s.getHead(id)
	if err != nil {
		return nil, err
	}
	if !found || !h.live {
		return nil, ledger.ErrNotFound
	}
	return s.GetObjectByVersion(id, h.version)
}

func (s *Store) GetObjectByVersion(id ledger.ObjectID, version ledger.Version) (*ledger.Object, error) {
	data, err := s.db.Get(objectKey(id, version), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ledger.DecodeObject(data)
}

func (s *Store) PutObject(o *ledger.Object) error {
	return s.WriteBatch([]*ledger.Object{o}, nil)
}

func (s *Store) DeleteObject(id ledger.ObjectID) error {
	return s.WriteBatch(nil, []ledger.ObjectID{id})
}

// WriteBatch applies all changes in a single LevelDB batch.
func (s *Store) WriteBatch(written []*ledger.Object, deleted []ledger.ObjectID) error {
	batch := new(leveldb.Batch)
	for _, o := range written {
		if o.Owner.Kind == ledger.Unowned {
			return fmt.Errorf("cannot store object %v without owner", o.ID)
		}
		h, found, err := s.getHead(o.ID)
		if err != nil {
			return err
		}
		if found && o.Version <= h.version {
			return fmt.Errorf("version of %v must increase, got %d after %d", o.ID, o.Version, h.version)
		}
		data, err := o.Encode()
		if err != nil {
			return err
		}
		batch.Put(objectKey(o.ID, o.Version), data)
		batch.Put(headKey(o.ID), head{version: o.Version, live: true}.encode())
	}
	for _, id := range deleted {
		h, found, err := s.getHead(id)
		if err != nil {
			return err
		}
		if !found || !h.live {
			return fmt.Errorf("cannot delete %v: %w", id, ledger.ErrNotFound)
		}
		h.live = false
		batch.Put(headKey(id), h.encode())
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	log.WithFields(logrus.Fields{"written": len(written), "deleted": len(deleted)}).Debug("applied batch")
	return nil
}

// Versions lists all stored versions of the given object in ascending order.
func (s *Store) Versions(id ledger.ObjectID) ([]ledger.Version, error) {
	prefix := append([]byte{objectPrefix}, id[:]...)
	iter := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	var res []ledger.Version
	for iter.Next() {
		key := iter.Key()
		res = append(res, ledger.Version(binary.BigEndian.Uint64(key[len(prefix):])))
	}
	return res, iter.Error()
}

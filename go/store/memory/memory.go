// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package memory provides an in-memory object store retaining all versions
// of all objects. It is intended for tests, tools and short lived replays.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Fantom-foundation/Tessera/go/ledger"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "store/memory")

// Store is a versioned object store. All returned objects are copies, so
// callers may modify them freely. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	versions map[ledger.ObjectID][]*ledger.Object // ordered by version
	live     map[ledger.ObjectID]bool
}

func New() *Store {
	return &Store{
		versions: map[ledger.ObjectID][]*ledger.Object{},
		live:     map[ledger.ObjectID]bool{},
	}
}

// NewWithObjects creates a store holding the given genesis objects.
func NewWithObjects(objects ...*ledger.Object) (*Store, error) {
	res := New()
	for _, o := range objects {
		if err := res.PutObject(o); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *Store) GetObject(id ledger.ObjectID) (*ledger.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live[id] {
		return nil, ledger.ErrNotFound
	}
	history := s.versions[id]
	return history[len(history)-1].Clone(), nil
}

func (s *Store) GetObjectByVersion(id ledger.ObjectID, version ledger.Version) (*ledger.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.versions[id]
	i := sort.Search(len(history), func(i int) bool { return history[i].Version >= version })
	if i == len(history) || history[i].Version != version {
		return nil, ledger.ErrNotFound
	}
	return history[i].Clone(), nil
}

func (s *Store) PutObject(o *ledger.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkPut(o); err != nil {
		return err
	}
	s.put(o)
	return nil
}

func (s *Store) DeleteObject(id ledger.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live[id] {
		return fmt.Errorf("cannot delete %v: %w", id, ledger.ErrNotFound)
	}
	s.live[id] = false
	log.WithField("id", id).Debug("deleted object")
	return nil
}

// WriteBatch applies all changes or none of them.
func (s *Store) WriteBatch(written []*ledger.Object, deleted []ledger.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range written {
		if err := s.checkPut(o); err != nil {
			return err
		}
	}
	for _, id := range deleted {
		if !s.live[id] {
			return fmt.Errorf("cannot delete %v: %w", id, ledger.ErrNotFound)
		}
	}
	for _, o := range written {
		s.put(o)
	}
	for _, id := range deleted {
		s.live[id] = false
	}
	log.WithFields(logrus.Fields{"written": len(written), "deleted": len(deleted)}).Debug("applied batch")
	return nil
}

// LiveObjects returns the ids of all live objects in ascending order.
func (s *Store) LiveObjects() []ledger.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]ledger.ObjectID, 0, len(s.live))
	for id, live := range s.live {
		if live {
			res = append(res, id)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return string(res[i][:]) < string(res[j][:])
	})
	return res
}

func (s *Store) checkPut(o *ledger.Object) error {
	if o.Owner.Kind == ledger.Unowned {
		return fmt.Errorf("cannot store object %v without owner", o.ID)
	}
	history := s.versions[o.ID]
	if len(history) > 0 {
		if last := history[len(history)-1].Version; o.Version <= last {
			return fmt.Errorf("version of %v must increase, got %d after %d", o.ID, o.Version, last)
		}
	}
	return nil
}

func (s *Store) put(o *ledger.Object) {
	s.versions[o.ID] = append(s.versions[o.ID], o.Clone())
	s.live[o.ID] = true
	log.WithFields(logrus.Fields{"id": o.ID, "version": o.Version}).Debug("stored object")
}

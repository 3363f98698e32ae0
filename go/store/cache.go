// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package store provides object store decorators shared by all store
// implementations.
package store

import (
	"fmt"

	"github.com/Fantom-foundation/Tessera/go/ledger"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of objects retained by a cache if no
// explicit size is requested.
const DefaultCacheSize = 1 << 16

// Cached is an object store keeping recently accessed live objects in an
// LRU cache in front of another store. Writes pass through to the
// underlying store and update the cache.
type Cached struct {
	store ledger.ObjectStore
	cache *lru.Cache[ledger.ObjectID, *ledger.Object]
}

// NewCached wraps the given store. If size is 0, DefaultCacheSize is used.
func NewCached(store ledger.ObjectStore, size int) (*Cached, error) {
	if size == 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[ledger.ObjectID, *ledger.Object](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create object cache: %w", err)
	}
	return &Cached{store: store, cache: cache}, nil
}

func (c *Cached) GetObject(id ledger.ObjectID) (*ledger.Object, error) {
	if res, found := c.cache.Get(id); found {
		return res.Clone(), nil
	}
	res, err := c.store.GetObject(id)
	if err != nil {
		return nil, err
	}
	c.cache.Add(id, res.Clone())
	return res, nil
}

func (c *Cached) GetObjectByVersion(id ledger.ObjectID, version ledger.Version) (*ledger.Object, error) {
	if res, found := c.cache.Get(id); found && res.Version == version {
		return res.Clone(), nil
	}
	return c.store.GetObjectByVersion(id, version)
}

func (c *Cached) PutObject(o *ledger.Object) error {
	c.cache.Remove(o.ID)
	if err := c.store.PutObject(o); err != nil {
		return err
	}
	c.cache.Add(o.ID, o.Clone())
	return nil
}

func (c *Cached) DeleteObject(id ledger.ObjectID) error {
	c.cache.Remove(id)
	return c.store.DeleteObject(id)
}

// WriteBatch applies the changes atomically if the underlying store
// supports batches, and one by one otherwise.
func (c *Cached) WriteBatch(written []*ledger.Object, deleted []ledger.ObjectID) error {
	for _, o := range written {
		c.cache.Remove(o.ID)
	}
	for _, id := range deleted {
		c.cache.Remove(id)
	}
	if batcher, ok := c.store.(ledger.BatchWriter); ok {
		if err := batcher.WriteBatch(written, deleted); err != nil {
			return err
		}
	} else {
		for _, o := range written {
			if err := c.store.PutObject(o); err != nil {
				return err
			}
		}
		for _, id := range deleted {
			if err := c.store.DeleteObject(id); err != nil {
				return err
			}
		}
	}
	for _, o := range written {
		c.cache.Add(o.ID, o.Clone())
	}
	return nil
}

// Len returns the number of cached objects.
func (c *Cached) Len() int {
	return c.cache.Len()
}

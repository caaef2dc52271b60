// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"path/filepath"
	"sync"
)

// Cache memoizes loaded packages by file path and by (name, version).
// A file is read at most once per Cache; packages registered from other
// sources (e.g., downloaded registry members) are found by key, and the
// members of such a package are kept as a group under its key.
//
// The zero value is not usable; use NewCache.
type Cache struct {
	mu     sync.Mutex
	byPath map[string]*Package
	byKey  map[Key]*Package
	groups map[Key][]Key
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		byPath: make(map[string]*Package),
		byKey:  make(map[Key]*Package),
		groups: make(map[Key][]Key),
	}
}

// Load returns the package at path, reading it on first use. Failed loads
// are not cached.
func (c *Cache) Load(path string) (*Package, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	abs = filepath.Clean(abs)

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.byPath[abs]; ok {
		return p, nil
	}
	p, err := Load(abs)
	if err != nil {
		return nil, err
	}
	c.byPath[abs] = p
	if _, ok := c.byKey[p.Key()]; !ok {
		c.byKey[p.Key()] = p
	}
	return p, nil
}

// Get returns the package cached under (name, version).
func (c *Cache) Get(name, version string) (*Package, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.byKey[Key{Name: name, Version: version}]
	return p, ok
}

// Put registers p under its (name, version), replacing any previous entry.
func (c *Cache) Put(p *Package) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey[p.Key()] = p
}

// Len returns the number of distinct files loaded through the cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byPath)
}

// PutMembers registers owner and members by key and records members as the
// group belonging to owner, replacing any previous group.
func (c *Cache) PutMembers(owner *Package, members []*Package) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey[owner.Key()] = owner
	keys := make([]Key, 0, len(members))
	for _, m := range members {
		c.byKey[m.Key()] = m
		keys = append(keys, m.Key())
	}
	c.groups[owner.Key()] = keys
}

// Members returns the group recorded for owner by PutMembers, in the order
// it was recorded. ok is false when no group was recorded.
func (c *Cache) Members(owner Key) (members []*Package, ok bool) {
	c.mu.Lock()
	keys, ok := c.groups[owner]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	members = make([]*Package, 0, len(keys))
	for _, k := range keys {
		m, found := c.Get(k.Name, k.Version)
		if !found {
			return nil, false
		}
		members = append(members, m)
	}
	return members, true
}

package model

import (
	"github.com/toeirei/ledgerbase/internal/guid"
)

// Book is the container of all loaded objects, grouped by type name.
// Objects of a type are kept in insertion order so writes are deterministic.
type Book struct {
	guid        guid.GUID
	collections map[string]*collection
}

type collection struct {
	byGUID map[guid.GUID]Instance
	order  []Instance
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{
		guid:        guid.New(),
		collections: make(map[string]*collection),
	}
}

// GUID returns the book's own identifier.
func (b *Book) GUID() guid.GUID { return b.guid }

func (b *Book) coll(typeName string) *collection {
	c, ok := b.collections[typeName]
	if !ok {
		c = &collection{byGUID: make(map[guid.GUID]Instance)}
		b.collections[typeName] = c
	}
	return c
}

func (b *Book) insert(inst Instance) {
	c := b.coll(inst.TypeName())
	if _, exists := c.byGUID[inst.GUID()]; exists {
		return
	}
	c.byGUID[inst.GUID()] = inst
	c.order = append(c.order, inst)
}

func (b *Book) rekey(typeName string, old, g guid.GUID) {
	c := b.coll(typeName)
	inst, ok := c.byGUID[old]
	if !ok {
		return
	}
	delete(c.byGUID, old)
	c.byGUID[g] = inst
}

// Lookup returns the object of typeName with the given GUID, or nil.
func (b *Book) Lookup(typeName string, g guid.GUID) Instance {
	c, ok := b.collections[typeName]
	if !ok {
		return nil
	}
	return c.byGUID[g]
}

// Remove drops inst from the book.
func (b *Book) Remove(inst Instance) {
	c, ok := b.collections[inst.TypeName()]
	if !ok {
		return
	}
	if _, ok := c.byGUID[inst.GUID()]; !ok {
		return
	}
	delete(c.byGUID, inst.GUID())
	for i, o := range c.order {
		if o == inst {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// ForEach calls fn for every object of typeName in insertion order until fn
// returns false.
func (b *Book) ForEach(typeName string, fn func(Instance) bool) {
	c, ok := b.collections[typeName]
	if !ok {
		return
	}
	for _, inst := range append([]Instance(nil), c.order...) {
		if !fn(inst) {
			return
		}
	}
}

// Instances returns a copy of the objects of typeName in insertion order.
func (b *Book) Instances(typeName string) []Instance {
	c, ok := b.collections[typeName]
	if !ok {
		return nil
	}
	return append([]Instance(nil), c.order...)
}

// Count returns the number of objects of typeName.
func (b *Book) Count(typeName string) int {
	c, ok := b.collections[typeName]
	if !ok {
		return 0
	}
	return len(c.order)
}

// TypeNames returns the type names that have at least one object.
func (b *Book) TypeNames() []string {
	names := make([]string, 0, len(b.collections))
	for name, c := range b.collections {
		if len(c.order) > 0 {
			names = append(names, name)
		}
	}
	return names
}

// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package backend

import "iter"

// Registry maps type names to Object Backends. It is append-only and is
// passed explicitly to each Backend, so independent backends do not share
// registrations.
type Registry struct {
	entries []registryEntry
}

type registryEntry struct {
	typeName string
	ob       ObjectBackend
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Register appends ob under typeName. Registering a name twice keeps both
// entries; Get returns the later one.
func (r *Registry) Register(typeName string, ob ObjectBackend) {
	r.entries = append(r.entries, registryEntry{typeName: typeName, ob: ob})
}

// Get returns the most recently registered backend for typeName.
func (r *Registry) Get(typeName string) (ObjectBackend, bool) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].typeName == typeName {
			return r.entries[i].ob, true
		}
	}
	return nil, false
}

// All yields every registration in order.
func (r *Registry) All() iter.Seq2[string, ObjectBackend] {
	return func(yield func(string, ObjectBackend) bool) {
		for _, e := range r.entries {
			if !yield(e.typeName, e.ob) {
				return
			}
		}
	}
}

// Len returns the number of registrations.
func (r *Registry) Len() int { return len(r.entries) }

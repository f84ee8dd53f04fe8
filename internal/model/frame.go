package model

import "sort"

// Frame holds an object's free-form key/value slots. Supported value types
// are int64, float64, string, time.Time, guid.GUID, Numeric and Date.
type Frame struct {
	values map[string]any
}

// Set stores value under key.
func (f *Frame) Set(key string, value any) {
	if f.values == nil {
		f.values = make(map[string]any)
	}
	f.values[key] = value
}

// Get returns the value stored under key.
func (f *Frame) Get(key string) (any, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Delete removes key.
func (f *Frame) Delete(key string) {
	delete(f.values, key)
}

// Keys returns the keys in sorted order.
func (f *Frame) Keys() []string {
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of slots.
func (f *Frame) Len() int { return len(f.values) }

// Clear removes every slot.
func (f *Frame) Clear() { f.values = nil }

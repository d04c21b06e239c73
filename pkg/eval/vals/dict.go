package vals

import (
	"strings"
	"sync"
	"unsafe"

	"src.crush.sh/pkg/eval/errs"
	"src.crush.sh/pkg/persistent/hash"
	"src.crush.sh/pkg/persistent/hashmap"
)

// Dict is a typed, mutable mapping. All of its methods are safe for
// concurrent use. Each Dict has its own identity: copies made with Copy do
// not observe later mutations of the original.
//
// The mapping itself is a persistent hash map that is swapped on every
// mutation, so iteration works on a consistent snapshot.
type Dict struct {
	keyType   Type
	valueType Type

	mu sync.RWMutex
	m  hashmap.Map
}

// NewDict creates an empty dict. It returns an argument error if the key type
// is not hashable.
func NewDict(keyType, valueType Type) (*Dict, error) {
	if !keyType.IsHashable() {
		return nil, errs.BadValue{
			What: "key type", Valid: "hashable type", Actual: keyType.String()}
	}
	return &Dict{keyType: keyType, valueType: valueType, m: hashmap.New(Equal, Hash)}, nil
}

// KeyType returns the type of the keys.
func (d *Dict) KeyType() Type { return d.keyType }

// ValueType returns the type of the values.
func (d *Dict) ValueType() Type { return d.valueType }

// Type returns the parameterized dict type.
func (d *Dict) Type() Type { return DictOf(d.keyType, d.valueType) }

// Len returns the number of mappings.
func (d *Dict) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.m.Len()
}

// Get returns the value the key is mapped to.
func (d *Dict) Get(k any) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.m.Index(k)
}

// Insert creates a new mapping or replaces an existing one. The key and the
// value must conform to the types of the dict.
func (d *Dict) Insert(k, v any) error {
	if !d.keyType.Is(k) {
		return errs.BadValue{What: "key", Valid: d.keyType.String(), Actual: TypeOf(k).String()}
	}
	if !d.valueType.Is(v) {
		return errs.BadValue{What: "value", Valid: d.valueType.String(), Actual: TypeOf(v).String()}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m = d.m.Assoc(k, v)
	return nil
}

// Remove removes a mapping, returning the value it had.
func (d *Dict) Remove(k any) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.m.Index(k)
	if ok {
		d.m = d.m.Dissoc(k)
	}
	return v, ok
}

// Clear removes all mappings.
func (d *Dict) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m = hashmap.New(Equal, Hash)
}

// Copy returns a new dict with the same types and mappings.
func (d *Dict) Copy() *Dict {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return &Dict{keyType: d.keyType, valueType: d.valueType, m: d.m}
}

// Iterate calls f with every mapping until f returns false. Mutations made by
// f are not observed by the iteration.
func (d *Dict) Iterate(f func(k, v any) bool) {
	d.mu.RLock()
	m := d.m
	d.mu.RUnlock()
	for it := m.Iterator(); it.HasElem(); it.Next() {
		if !f(it.Elem()) {
			break
		}
	}
}

// Equal compares by identity.
func (d *Dict) Equal(other any) bool {
	return d == other
}

// Hash hashes the address.
func (d *Dict) Hash() uint32 {
	return hash.Pointer(unsafe.Pointer(d))
}

// Repr returns a literal-like representation, e.g. [&"a"=1].
func (d *Dict) Repr(indent int) string {
	var b strings.Builder
	b.WriteString("[")
	first := true
	d.Iterate(func(k, v any) bool {
		if first {
			first = false
		} else {
			b.WriteString(" ")
		}
		b.WriteString("&" + Repr(k, indent+1) + "=" + Repr(v, indent+1))
		return true
	})
	if first {
		b.WriteString("&")
	}
	b.WriteString("]")
	return b.String()
}

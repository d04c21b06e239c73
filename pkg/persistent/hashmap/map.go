package hashmap

// Map is an immutable map. Assoc and Dissoc return new maps that share most
// of their structure with the receiver, so a Map may be used from several
// goroutines without locking.
type Map interface {
	// Len returns the number of pairs.
	Len() int
	// Index returns the value for k and whether k is present.
	Index(k any) (any, bool)
	// Assoc returns the map with k set to v.
	Assoc(k, v any) Map
	// Dissoc returns the map without k.
	Dissoc(k any) Map
	// Iterator returns an Iterator positioned at the first pair. The nil key,
	// if present, comes first; other pairs come in no particular order.
	Iterator() Iterator
}

// Iterator walks the pairs of a Map:
//
//	for it := m.Iterator(); it.HasElem(); it.Next() {
//		k, v := it.Elem()
//	}
type Iterator interface {
	Elem() (any, any)
	HasElem() bool
	Next()
}

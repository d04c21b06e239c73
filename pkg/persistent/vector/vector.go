// Package vector implements an append-only persistent vector: a 32-way trie
// of full leaves plus a tail that is copied on append.
package vector

const (
	chunkBits = 5
	nodeSize  = 1 << chunkBits
	chunkMask = nodeSize - 1
)

// Vector is an immutable sequence. Conj returns a new Vector sharing most of
// its structure with the old one, so a Vector can be shared freely between
// goroutines. Empty is the empty Vector.
type Vector interface {
	// Len returns the number of elements.
	Len() int
	// Index returns the i-th element and whether it exists.
	Index(i int) (any, bool)
	// Conj returns a Vector with val appended.
	Conj(val any) Vector
	// Iterator returns an iterator positioned at the first element.
	Iterator() Iterator
}

// Iterator walks the elements of a Vector in order:
//
//	for it := v.Iterator(); it.HasElem(); it.Next() {
//	    elem := it.Elem()
//	}
type Iterator interface {
	Elem() any
	HasElem() bool
	Next()
}

type node *[nodeSize]any

type vector struct {
	count int
	// 0 when root is a leaf.
	height uint
	root   node
	tail   []any
}

// Empty is an empty Vector.
var Empty Vector = &vector{}

func (v *vector) Len() int { return v.count }

// Number of elements stored in the trie rather than the tail.
func (v *vector) treeSize() int {
	if v.count < nodeSize {
		return 0
	}
	return (v.count - 1) &^ chunkMask
}

func (v *vector) Index(i int) (any, bool) {
	if i < 0 || i >= v.count {
		return nil, false
	}
	if i >= v.treeSize() {
		return v.tail[i&chunkMask], true
	}
	n := v.root
	for shift := v.height * chunkBits; shift > 0; shift -= chunkBits {
		n = n[(i>>shift)&chunkMask].(node)
	}
	return n[i&chunkMask], true
}

func (v *vector) Conj(val any) Vector {
	if v.count-v.treeSize() < nodeSize {
		tail := make([]any, len(v.tail)+1)
		copy(tail, v.tail)
		tail[len(v.tail)] = val
		return &vector{v.count + 1, v.height, v.root, tail}
	}
	// The tail is full: move it into the trie and start a new one.
	var leaf [nodeSize]any
	copy(leaf[:], v.tail)
	newRoot := v.root
	newHeight := v.height
	switch {
	case v.root == nil:
		newRoot = &leaf
	case (v.count >> chunkBits) > (1 << (v.height * chunkBits)):
		// The trie is full: grow a level.
		newRoot = &[nodeSize]any{v.root, newPath(v.height, &leaf)}
		newHeight++
	default:
		newRoot = pushTail(v.count, v.height, v.root, &leaf)
	}
	return &vector{v.count + 1, newHeight, newRoot, []any{val}}
}

func pushTail(count int, height uint, parent node, leaf node) node {
	n := *parent
	ret := node(&n)
	idx := ((count - 1) >> (height * chunkBits)) & chunkMask
	if height == 1 {
		ret[idx] = leaf
		return ret
	}
	if child, ok := parent[idx].(node); ok && child != nil {
		ret[idx] = pushTail(count, height-1, child, leaf)
	} else {
		ret[idx] = newPath(height-1, leaf)
	}
	return ret
}

func newPath(height uint, leaf node) node {
	if height == 0 {
		return leaf
	}
	return &[nodeSize]any{newPath(height-1, leaf)}
}

func (v *vector) Iterator() Iterator { return &iterator{v, 0} }

type iterator struct {
	v *vector
	i int
}

func (it *iterator) Elem() any {
	e, _ := it.v.Index(it.i)
	return e
}

func (it *iterator) HasElem() bool { return it.i < it.v.count }

func (it *iterator) Next() { it.i++ }

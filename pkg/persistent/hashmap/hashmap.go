// Package hashmap implements a persistent hash map, a hash array mapped trie
// with caller-supplied equality and hash functions.
package hashmap

const (
	chunkBits = 5
	nodeCap   = 1 << chunkBits
	chunkMask = nodeCap - 1
)

// Equal is the type of a function that reports whether two keys are equal.
type Equal func(k1, k2 any) bool

// Hash is the type of a function that returns the hash code of a key. Equal
// keys must have the same hash code.
type Hash func(k any) uint32

// New takes an equality function and a hash function, and returns an empty
// Map.
func New(e Equal, h Hash) Map {
	return &hashMap{0, emptyBitmapNode, nil, e, h}
}

type hashMap struct {
	count int
	root  node
	// The value of the nil key, stored outside the trie since nil marks
	// subtrees in bitmap nodes. Nil when there is no nil key.
	nilV  *nilValue
	equal Equal
	hash  Hash
}

type nilValue struct {
	v any
}

func (m *hashMap) Len() int {
	return m.count
}

func (m *hashMap) Index(k any) (any, bool) {
	if k == nil {
		if m.nilV == nil {
			return nil, false
		}
		return m.nilV.v, true
	}
	return m.root.find(0, m.hash(k), k, m.equal)
}

func (m *hashMap) Assoc(k, v any) Map {
	if k == nil {
		newCount := m.count
		if m.nilV == nil {
			newCount++
		}
		return &hashMap{newCount, m.root, &nilValue{v}, m.equal, m.hash}
	}
	newRoot, added := m.root.assoc(0, m.hash(k), k, v, m.hash, m.equal)
	newCount := m.count
	if added {
		newCount++
	}
	return &hashMap{newCount, newRoot, m.nilV, m.equal, m.hash}
}

func (m *hashMap) Dissoc(k any) Map {
	if k == nil {
		if m.nilV == nil {
			return m
		}
		return &hashMap{m.count - 1, m.root, nil, m.equal, m.hash}
	}
	newRoot, deleted := m.root.without(0, m.hash(k), k, m.equal)
	if !deleted {
		return m
	}
	return &hashMap{m.count - 1, newRoot, m.nilV, m.equal, m.hash}
}

func (m *hashMap) Iterator() Iterator {
	if m.nilV != nil {
		return &nilKeyIterator{m.nilV.v, true, m.root.iterator()}
	}
	return m.root.iterator()
}

// Yields the nil key first, then the entries of the trie.
type nilKeyIterator struct {
	v     any
	atNil bool
	rest  Iterator
}

func (it *nilKeyIterator) Elem() (any, any) {
	if it.atNil {
		return nil, it.v
	}
	return it.rest.Elem()
}

func (it *nilKeyIterator) HasElem() bool {
	return it.atNil || it.rest.HasElem()
}

func (it *nilKeyIterator) Next() {
	if it.atNil {
		it.atNil = false
	} else {
		it.rest.Next()
	}
}

// node is a node of the trie.
type node interface {
	// assoc adds or replaces a pair. It returns the new node and whether a new
	// pair was added.
	assoc(shift, hash uint32, k, v any, h Hash, eq Equal) (node, bool)
	// without removes a key. It returns the new node and whether a pair was
	// removed. A node left with no entries is returned as nil.
	without(shift, hash uint32, k any, eq Equal) (node, bool)
	find(shift, hash uint32, k any, eq Equal) (any, bool)
	iterator() Iterator
}

// arrayNode stores all of its children in an array. The array is always at
// least 1/4 full, otherwise it is packed into a bitmapNode.
type arrayNode struct {
	nChildren int
	children  [nodeCap]node
}

func (n *arrayNode) withNewChild(i uint32, newChild node, d int) *arrayNode {
	newChildren := n.children
	newChildren[i] = newChild
	return &arrayNode{n.nChildren + d, newChildren}
}

func (n *arrayNode) assoc(shift, hash uint32, k, v any, h Hash, eq Equal) (node, bool) {
	idx := chunk(shift, hash)
	child := n.children[idx]
	if child == nil {
		newChild, _ := emptyBitmapNode.assoc(shift+chunkBits, hash, k, v, h, eq)
		return n.withNewChild(idx, newChild, 1), true
	}
	newChild, added := child.assoc(shift+chunkBits, hash, k, v, h, eq)
	return n.withNewChild(idx, newChild, 0), added
}

func (n *arrayNode) without(shift, hash uint32, k any, eq Equal) (node, bool) {
	idx := chunk(shift, hash)
	child := n.children[idx]
	if child == nil {
		return n, false
	}
	newChild, deleted := child.without(shift+chunkBits, hash, k, eq)
	if !deleted {
		return n, false
	}
	if newChild == nil || newChild == node(emptyBitmapNode) {
		if n.nChildren <= nodeCap/4 {
			return n.pack(int(idx)), true
		}
		return n.withNewChild(idx, nil, -1), true
	}
	return n.withNewChild(idx, newChild, 0), true
}

func (n *arrayNode) pack(skip int) *bitmapNode {
	newNode := bitmapNode{0, make([]mapEntry, 0, n.nChildren-1)}
	for i, child := range n.children {
		if i != skip && child != nil {
			newNode.bitmap |= 1 << uint(i)
			newNode.entries = append(newNode.entries, mapEntry{child: child})
		}
	}
	return &newNode
}

func (n *arrayNode) find(shift, hash uint32, k any, eq Equal) (any, bool) {
	child := n.children[chunk(shift, hash)]
	if child == nil {
		return nil, false
	}
	return child.find(shift+chunkBits, hash, k, eq)
}

func (n *arrayNode) iterator() Iterator {
	it := &arrayNodeIterator{n, 0, nil}
	it.fixCurrent()
	return it
}

type arrayNodeIterator struct {
	n       *arrayNode
	index   int
	current Iterator
}

func (it *arrayNodeIterator) fixCurrent() {
	for ; it.index < nodeCap; it.index++ {
		if child := it.n.children[it.index]; child != nil {
			if current := child.iterator(); current.HasElem() {
				it.current = current
				return
			}
		}
	}
	it.current = nil
}

func (it *arrayNodeIterator) Elem() (any, any) {
	return it.current.Elem()
}

func (it *arrayNodeIterator) HasElem() bool {
	return it.current != nil
}

func (it *arrayNodeIterator) Next() {
	it.current.Next()
	if !it.current.HasElem() {
		it.index++
		it.fixCurrent()
	}
}

var emptyBitmapNode = &bitmapNode{}

// bitmapNode stores its entries compactly; bit i of bitmap is set iff there
// is an entry for chunk i.
type bitmapNode struct {
	bitmap  uint32
	entries []mapEntry
}

// mapEntry is either a pair or, in a bitmapNode, a subtree.
type mapEntry struct {
	key   any
	value any
	child node
}

func chunk(shift, hash uint32) uint32 {
	return (hash >> shift) & chunkMask
}

func bitpos(shift, hash uint32) uint32 {
	return 1 << chunk(shift, hash)
}

func index(bitmap, bit uint32) uint32 {
	return popCount(bitmap & (bit - 1))
}

const (
	m1  uint32 = 0x55555555
	m2  uint32 = 0x33333333
	m4  uint32 = 0x0f0f0f0f
	m8  uint32 = 0x00ff00ff
	m16 uint32 = 0x0000ffff
)

func popCount(u uint32) uint32 {
	u = (u & m1) + ((u >> 1) & m1)
	u = (u & m2) + ((u >> 2) & m2)
	u = (u & m4) + ((u >> 4) & m4)
	u = (u & m8) + ((u >> 8) & m8)
	u = (u & m16) + ((u >> 16) & m16)
	return u
}

func createNode(shift uint32, k1, v1 any, h2 uint32, k2, v2 any, h Hash, eq Equal) node {
	h1 := h(k1)
	if h1 == h2 {
		return &collisionNode{h1, []mapEntry{{key: k1, value: v1}, {key: k2, value: v2}}}
	}
	n, _ := emptyBitmapNode.assoc(shift, h1, k1, v1, h, eq)
	n, _ = n.assoc(shift, h2, k2, v2, h, eq)
	return n
}

func (n *bitmapNode) unpack(shift, idx uint32, newChild node, h Hash, eq Equal) *arrayNode {
	var newNode arrayNode
	newNode.nChildren = len(n.entries) + 1
	newNode.children[idx] = newChild
	j := 0
	for i := uint(0); i < nodeCap; i++ {
		if (n.bitmap>>i)&1 != 0 {
			entry := n.entries[j]
			j++
			if entry.child != nil {
				newNode.children[i] = entry.child
			} else {
				newNode.children[i], _ = emptyBitmapNode.assoc(
					shift+chunkBits, h(entry.key), entry.key, entry.value, h, eq)
			}
		}
	}
	return &newNode
}

func (n *bitmapNode) withoutEntry(bit, idx uint32) *bitmapNode {
	if n.bitmap == bit {
		return emptyBitmapNode
	}
	return &bitmapNode{n.bitmap ^ bit, withoutEntry(n.entries, idx)}
}

func withoutEntry(entries []mapEntry, idx uint32) []mapEntry {
	newEntries := make([]mapEntry, len(entries)-1)
	copy(newEntries[:idx], entries[:idx])
	copy(newEntries[idx:], entries[idx+1:])
	return newEntries
}

func (n *bitmapNode) withReplacedEntry(i uint32, entry mapEntry) *bitmapNode {
	return &bitmapNode{n.bitmap, replaceEntry(n.entries, i, entry)}
}

func replaceEntry(entries []mapEntry, i uint32, entry mapEntry) []mapEntry {
	newEntries := append([]mapEntry(nil), entries...)
	newEntries[i] = entry
	return newEntries
}

func (n *bitmapNode) assoc(shift, hash uint32, k, v any, h Hash, eq Equal) (node, bool) {
	bit := bitpos(shift, hash)
	idx := index(n.bitmap, bit)
	if n.bitmap&bit == 0 {
		// No entry for this chunk yet.
		if len(n.entries) >= nodeCap/2 {
			newNode, _ := emptyBitmapNode.assoc(shift+chunkBits, hash, k, v, h, eq)
			return n.unpack(shift, chunk(shift, hash), newNode, h, eq), true
		}
		newEntries := make([]mapEntry, len(n.entries)+1)
		copy(newEntries[:idx], n.entries[:idx])
		newEntries[idx] = mapEntry{key: k, value: v}
		copy(newEntries[idx+1:], n.entries[idx:])
		return &bitmapNode{n.bitmap | bit, newEntries}, true
	}
	entry := n.entries[idx]
	if entry.child != nil {
		newChild, added := entry.child.assoc(shift+chunkBits, hash, k, v, h, eq)
		return n.withReplacedEntry(idx, mapEntry{child: newChild}), added
	}
	if eq(k, entry.key) {
		return n.withReplacedEntry(idx, mapEntry{key: k, value: v}), false
	}
	newNode := createNode(shift+chunkBits, entry.key, entry.value, hash, k, v, h, eq)
	return n.withReplacedEntry(idx, mapEntry{child: newNode}), true
}

func (n *bitmapNode) without(shift, hash uint32, k any, eq Equal) (node, bool) {
	bit := bitpos(shift, hash)
	if n.bitmap&bit == 0 {
		return n, false
	}
	idx := index(n.bitmap, bit)
	entry := n.entries[idx]
	if entry.child != nil {
		newChild, deleted := entry.child.without(shift+chunkBits, hash, k, eq)
		if !deleted {
			return n, false
		}
		if newChild == nil || newChild == node(emptyBitmapNode) {
			return n.withoutEntry(bit, idx), true
		}
		return n.withReplacedEntry(idx, mapEntry{child: newChild}), true
	}
	if eq(entry.key, k) {
		return n.withoutEntry(bit, idx), true
	}
	return n, false
}

func (n *bitmapNode) find(shift, hash uint32, k any, eq Equal) (any, bool) {
	bit := bitpos(shift, hash)
	if n.bitmap&bit == 0 {
		return nil, false
	}
	entry := n.entries[index(n.bitmap, bit)]
	if entry.child != nil {
		return entry.child.find(shift+chunkBits, hash, k, eq)
	}
	if eq(entry.key, k) {
		return entry.value, true
	}
	return nil, false
}

func (n *bitmapNode) iterator() Iterator {
	it := &bitmapNodeIterator{n, 0, nil}
	it.fixCurrent()
	return it
}

type bitmapNodeIterator struct {
	n       *bitmapNode
	index   int
	current Iterator
}

// Points current at the iterator of the subtree at index, skipping empty
// subtrees.
func (it *bitmapNodeIterator) fixCurrent() {
	it.current = nil
	for ; it.index < len(it.n.entries); it.index++ {
		entry := it.n.entries[it.index]
		if entry.child == nil {
			return
		}
		if current := entry.child.iterator(); current.HasElem() {
			it.current = current
			return
		}
	}
}

func (it *bitmapNodeIterator) Elem() (any, any) {
	if it.current != nil {
		return it.current.Elem()
	}
	entry := it.n.entries[it.index]
	return entry.key, entry.value
}

func (it *bitmapNodeIterator) HasElem() bool {
	return it.index < len(it.n.entries)
}

func (it *bitmapNodeIterator) Next() {
	if it.current != nil {
		it.current.Next()
		if it.current.HasElem() {
			return
		}
	}
	it.index++
	it.fixCurrent()
}

// collisionNode holds pairs whose keys have the same full hash.
type collisionNode struct {
	hash    uint32
	entries []mapEntry
}

func (n *collisionNode) assoc(shift, hash uint32, k, v any, h Hash, eq Equal) (node, bool) {
	if hash == n.hash {
		idx := n.findIndex(k, eq)
		if idx != -1 {
			return &collisionNode{
				n.hash, replaceEntry(n.entries, uint32(idx), mapEntry{key: k, value: v})}, false
		}
		newEntries := make([]mapEntry, len(n.entries)+1)
		copy(newEntries, n.entries)
		newEntries[len(n.entries)] = mapEntry{key: k, value: v}
		return &collisionNode{n.hash, newEntries}, true
	}
	// Wrap in a bitmapNode and add the pair there.
	wrap := bitmapNode{bitpos(shift, n.hash), []mapEntry{{child: n}}}
	return wrap.assoc(shift, hash, k, v, h, eq)
}

func (n *collisionNode) without(shift, hash uint32, k any, eq Equal) (node, bool) {
	idx := n.findIndex(k, eq)
	if idx == -1 {
		return n, false
	}
	if len(n.entries) == 1 {
		return nil, true
	}
	return &collisionNode{n.hash, withoutEntry(n.entries, uint32(idx))}, true
}

func (n *collisionNode) find(shift, hash uint32, k any, eq Equal) (any, bool) {
	idx := n.findIndex(k, eq)
	if idx == -1 {
		return nil, false
	}
	return n.entries[idx].value, true
}

func (n *collisionNode) findIndex(k any, eq Equal) int {
	for i, entry := range n.entries {
		if eq(k, entry.key) {
			return i
		}
	}
	return -1
}

func (n *collisionNode) iterator() Iterator {
	return &collisionNodeIterator{n, 0}
}

type collisionNodeIterator struct {
	n     *collisionNode
	index int
}

func (it *collisionNodeIterator) Elem() (any, any) {
	entry := it.n.entries[it.index]
	return entry.key, entry.value
}

func (it *collisionNodeIterator) HasElem() bool {
	return it.index < len(it.n.entries)
}

func (it *collisionNodeIterator) Next() {
	it.index++
}

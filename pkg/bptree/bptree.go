// Package bptree provides an ordered in-memory map backed by a B+tree.
//
// Leaves are linked left to right so a full scan visits keys in ascending
// order without touching internal nodes. Deletes remove the key from its leaf
// without rebalancing; separators in internal nodes stay valid bounds, so
// lookups remain correct and an emptied leaf is simply skipped during scans.
package bptree

import (
	"cmp"
	"sync"
)

// DefaultOrder is the fallback branching factor if a user-supplied order is too small.
const DefaultOrder = 32

// BPlusTree is an ordered map from K to V. It is safe for concurrent use.
type BPlusTree[K cmp.Ordered, V any] struct {
	root   *node[K, V]
	order  int
	height int
	size   int
	m      sync.RWMutex
}

// node represents both internal and leaf nodes in the B+Tree.
type node[K cmp.Ordered, V any] struct {
	isLeaf   bool
	keys     []K
	children []*node[K, V] // used if !isLeaf
	values   []V           // used if isLeaf
	parent   *node[K, V]
	next     *node[K, V] // leaf-link pointer, for range scans
}

// NewBPlusTree creates and returns a B+Tree with the given order.
// If the specified order < 3, we fall back to DefaultOrder.
func NewBPlusTree[K cmp.Ordered, V any](order int) *BPlusTree[K, V] {
	if order < 3 {
		order = DefaultOrder
	}
	return &BPlusTree[K, V]{
		root:   newLeaf[K, V](order),
		order:  order,
		height: 1,
	}
}

func newLeaf[K cmp.Ordered, V any](order int) *node[K, V] {
	return &node[K, V]{
		isLeaf: true,
		keys:   make([]K, 0, order+1),
		values: make([]V, 0, order+1),
	}
}

// Height returns the number of levels in the tree
func (tree *BPlusTree[K, V]) Height() int {
	tree.m.RLock()
	defer tree.m.RUnlock()
	return tree.height
}

// Len returns the number of keys stored
func (tree *BPlusTree[K, V]) Len() int {
	tree.m.RLock()
	defer tree.m.RUnlock()
	return tree.size
}

// Search locates the value associated with key
func (tree *BPlusTree[K, V]) Search(key K) (V, bool) {
	tree.m.RLock()
	defer tree.m.RUnlock()

	leaf := tree.findLeaf(key)
	if idx, found := leafIndex(leaf.keys, key); found {
		return leaf.values[idx], true
	}
	var zero V
	return zero, false
}

// Insert adds or replaces the value for key. It reports whether the key was new.
func (tree *BPlusTree[K, V]) Insert(key K, value V) bool {
	tree.m.Lock()
	defer tree.m.Unlock()

	leaf := tree.findLeaf(key)
	idx, found := leafIndex(leaf.keys, key)
	if found {
		leaf.values[idx] = value
		return false
	}

	leaf.keys = insertAt(leaf.keys, idx, key)
	leaf.values = insertAt(leaf.values, idx, value)
	tree.size++

	if len(leaf.keys) > tree.order {
		tree.splitLeaf(leaf)
	}
	return true
}

// Delete removes key from the tree and returns the value it held
func (tree *BPlusTree[K, V]) Delete(key K) (V, bool) {
	tree.m.Lock()
	defer tree.m.Unlock()

	var zero V
	leaf := tree.findLeaf(key)
	idx, found := leafIndex(leaf.keys, key)
	if !found {
		return zero, false
	}

	value := leaf.values[idx]
	leaf.keys = append(leaf.keys[:idx], leaf.keys[idx+1:]...)
	copy(leaf.values[idx:], leaf.values[idx+1:])
	leaf.values[len(leaf.values)-1] = zero
	leaf.values = leaf.values[:len(leaf.values)-1]
	tree.size--

	if tree.size == 0 {
		tree.reset()
	}
	return value, true
}

// Ascend calls fn for every key in ascending order until fn returns false
func (tree *BPlusTree[K, V]) Ascend(fn func(key K, value V) bool) {
	tree.m.RLock()
	defer tree.m.RUnlock()

	for leaf := tree.leftmostLeaf(); leaf != nil; leaf = leaf.next {
		for i, k := range leaf.keys {
			if !fn(k, leaf.values[i]) {
				return
			}
		}
	}
}

// Keys returns all keys in ascending order
func (tree *BPlusTree[K, V]) Keys() []K {
	keys := make([]K, 0, tree.Len())
	tree.Ascend(func(k K, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Values returns all values in ascending key order
func (tree *BPlusTree[K, V]) Values() []V {
	values := make([]V, 0, tree.Len())
	tree.Ascend(func(_ K, v V) bool {
		values = append(values, v)
		return true
	})
	return values
}

// Clear removes every key
func (tree *BPlusTree[K, V]) Clear() {
	tree.m.Lock()
	defer tree.m.Unlock()
	tree.reset()
}

func (tree *BPlusTree[K, V]) reset() {
	tree.root = newLeaf[K, V](tree.order)
	tree.height = 1
	tree.size = 0
}

// findLeaf walks from the root to the leaf that owns key.
// Must be called with tree.m held.
func (tree *BPlusTree[K, V]) findLeaf(key K) *node[K, V] {
	current := tree.root
	for !current.isLeaf {
		current = current.children[findChildIndex(current.keys, key)]
	}
	return current
}

func (tree *BPlusTree[K, V]) leftmostLeaf() *node[K, V] {
	current := tree.root
	for !current.isLeaf {
		current = current.children[0]
	}
	return current
}

// findChildIndex determines which child pointer to follow in an internal node.
// Child i holds keys below keys[i]; the last child holds the rest.
func findChildIndex[K cmp.Ordered](keys []K, searchKey K) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if cmp.Less(searchKey, keys[mid]) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// leafIndex returns the position of key in a sorted leaf, or the position it
// would be inserted at.
func leafIndex[K cmp.Ordered](keys []K, key K) (int, bool) {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if cmp.Less(keys[mid], key) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < len(keys) && keys[lo] == key
}

func insertAt[T any](s []T, idx int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[idx+1:], s[idx:])
	s[idx] = v
	return s
}

// splitLeaf handles splitting a leaf node that has overflowed.
func (tree *BPlusTree[K, V]) splitLeaf(leaf *node[K, V]) {
	mid := len(leaf.keys) / 2

	right := newLeaf[K, V](tree.order)
	right.keys = append(right.keys, leaf.keys[mid:]...)
	right.values = append(right.values, leaf.values[mid:]...)
	right.next = leaf.next
	right.parent = leaf.parent

	clear(leaf.values[mid:])
	leaf.keys = leaf.keys[:mid]
	leaf.values = leaf.values[:mid]
	leaf.next = right

	tree.insertIntoParent(leaf, right.keys[0], right)
}

// insertIntoParent links right after left under their parent with separator
// key, growing a new root when left was the root.
func (tree *BPlusTree[K, V]) insertIntoParent(left *node[K, V], key K, right *node[K, V]) {
	parent := left.parent
	if parent == nil {
		newRoot := &node[K, V]{
			keys:     []K{key},
			children: []*node[K, V]{left, right},
		}
		left.parent = newRoot
		right.parent = newRoot
		tree.root = newRoot
		tree.height++
		return
	}

	idx := findChildIndex(parent.keys, key)
	parent.keys = insertAt(parent.keys, idx, key)
	parent.children = insertAt(parent.children, idx+1, right)
	right.parent = parent

	if len(parent.keys) > tree.order {
		tree.splitInternal(parent)
	}
}

// splitInternal handles splitting an internal node that has overflowed.
func (tree *BPlusTree[K, V]) splitInternal(internal *node[K, V]) {
	mid := len(internal.keys) / 2
	splitKey := internal.keys[mid]

	right := &node[K, V]{
		keys:     append([]K{}, internal.keys[mid+1:]...),
		children: append([]*node[K, V]{}, internal.children[mid+1:]...),
		parent:   internal.parent,
	}
	for _, child := range right.children {
		child.parent = right
	}

	internal.keys = internal.keys[:mid]
	internal.children = internal.children[:mid+1]

	tree.insertIntoParent(internal, splitKey, right)
}

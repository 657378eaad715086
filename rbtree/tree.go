/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package rbtree implements an intrusive-style red-black tree keyed by a
// (Key, Tie) pair plus a companion doubly linked queue, the two ordered-index
// primitives spec.md §3 requires for both the timer wheel (C3) and the disk
// cache index (C10). Unlike a textbook map, nodes are returned to the caller
// so they can be held onto and removed again in O(log n) without a second
// lookup, and the queue gives O(1) removal-by-handle for the LRU list.
package rbtree

type color bool

const (
	red   color = false
	black color = true
)

// Node is one entry of the tree. Value is caller-owned payload; Key/Tie form
// the ordering (Key first, Tie breaks exact-Key collisions so that two
// entries with equal Key still sort into a stable total order, matching
// spec.md's "tree-breaker comparison" requirement for the cache index).
type Node[V any] struct {
	Key   uint64
	Tie   uint64
	Value V

	left, right, parent *Node[V]
	color                color
}

// Tree is a red-black tree ordered by (Key, Tie).
type Tree[V any] struct {
	root *Node[V]
	size int
}

// New returns an empty Tree.
func New[V any]() *Tree[V] {
	return &Tree[V]{}
}

// Len returns the number of nodes currently in the tree.
func (t *Tree[V]) Len() int {
	return t.size
}

func less(k1, t1, k2, t2 uint64) bool {
	if k1 != k2 {
		return k1 < k2
	}
	return t1 < t2
}

// Insert creates and links a new node for (key, tie, value) and returns it.
func (t *Tree[V]) Insert(key, tie uint64, value V) *Node[V] {
	n := &Node[V]{Key: key, Tie: tie, Value: value, color: red}
	t.insertNode(n)
	return n
}

func (t *Tree[V]) insertNode(n *Node[V]) {
	var parent *Node[V]
	cur := t.root

	for cur != nil {
		parent = cur
		if less(n.Key, n.Tie, cur.Key, cur.Tie) {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}

	n.parent = parent
	if parent == nil {
		t.root = n
	} else if less(n.Key, n.Tie, parent.Key, parent.Tie) {
		parent.left = n
	} else {
		parent.right = n
	}

	n.color = red
	t.size++
	t.fixInsert(n)
}

func (t *Tree[V]) fixInsert(z *Node[V]) {
	for z.parent != nil && z.parent.color == red {
		gp := z.parent.parent
		if gp == nil {
			break
		}

		if z.parent == gp.left {
			u := gp.right
			if u != nil && u.color == red {
				z.parent.color = black
				u.color = black
				gp.color = red
				z = gp
			} else {
				if z == z.parent.right {
					z = z.parent
					t.rotateLeft(z)
				}
				z.parent.color = black
				gp.color = red
				t.rotateRight(gp)
			}
		} else {
			u := gp.left
			if u != nil && u.color == red {
				z.parent.color = black
				u.color = black
				gp.color = red
				z = gp
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rotateRight(z)
				}
				z.parent.color = black
				gp.color = red
				t.rotateLeft(gp)
			}
		}
	}

	t.root.color = black
}

func (t *Tree[V]) rotateLeft(x *Node[V]) {
	y := x.right
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == nil {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *Tree[V]) rotateRight(x *Node[V]) {
	y := x.left
	x.left = y.right
	if y.right != nil {
		y.right.parent = x
	}
	y.parent = x.parent
	if x.parent == nil {
		t.root = y
	} else if x == x.parent.right {
		x.parent.right = y
	} else {
		x.parent.left = y
	}
	y.right = x
	x.parent = y
}

// Find returns the node whose (Key, Tie) exactly matches, or nil.
func (t *Tree[V]) Find(key, tie uint64) *Node[V] {
	cur := t.root
	for cur != nil {
		if key == cur.Key && tie == cur.Tie {
			return cur
		}
		if less(key, tie, cur.Key, cur.Tie) {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}
	return nil
}

// FindGE returns the left-most node whose (Key, Tie) is >= (key, tie), used
// by the timer wheel for "next timer to fire" lookups. Returns nil if every
// node sorts below (key, tie).
func (t *Tree[V]) FindGE(key, tie uint64) *Node[V] {
	cur := t.root
	var best *Node[V]

	for cur != nil {
		if !less(cur.Key, cur.Tie, key, tie) {
			best = cur
			cur = cur.left
		} else {
			cur = cur.right
		}
	}

	return best
}

// Min returns the left-most (smallest) node, or nil if the tree is empty.
func (t *Tree[V]) Min() *Node[V] {
	if t.root == nil {
		return nil
	}
	return minimum(t.root)
}

func minimum[V any](n *Node[V]) *Node[V] {
	for n.left != nil {
		n = n.left
	}
	return n
}

func maximum[V any](n *Node[V]) *Node[V] {
	for n.right != nil {
		n = n.right
	}
	return n
}

// Next returns the in-order successor of n, or nil if n is the last node.
func (t *Tree[V]) Next(n *Node[V]) *Node[V] {
	if n == nil {
		return nil
	}
	if n.right != nil {
		return minimum(n.right)
	}
	p := n.parent
	for p != nil && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

// Delete unlinks n from the tree. n must have been returned by this Tree's
// Insert/Find; behavior is undefined otherwise.
func (t *Tree[V]) Delete(n *Node[V]) {
	if n == nil {
		return
	}

	y := n
	yOriginalColor := y.color
	var x, xParent *Node[V]

	if n.left == nil {
		x = n.right
		xParent = n.parent
		t.transplant(n, n.right)
	} else if n.right == nil {
		x = n.left
		xParent = n.parent
		t.transplant(n, n.left)
	} else {
		y = minimum(n.right)
		yOriginalColor = y.color
		x = y.right

		if y.parent == n {
			xParent = y
		} else {
			xParent = y.parent
			t.transplant(y, y.right)
			y.right = n.right
			y.right.parent = y
		}

		t.transplant(n, y)
		y.left = n.left
		y.left.parent = y
		y.color = n.color
	}

	t.size--

	if yOriginalColor == black {
		t.fixDelete(x, xParent)
	}

	n.left, n.right, n.parent = nil, nil, nil
}

func (t *Tree[V]) transplant(u, v *Node[V]) {
	if u.parent == nil {
		t.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}
	if v != nil {
		v.parent = u.parent
	}
}

func (t *Tree[V]) fixDelete(x, parent *Node[V]) {
	for x != t.root && isBlack(x) {
		if parent == nil {
			break
		}

		if x == parent.left {
			w := parent.right
			if w != nil && w.color == red {
				w.color = black
				parent.color = red
				t.rotateLeft(parent)
				w = parent.right
			}
			if w == nil {
				x = parent
				parent = x.parent
				continue
			}
			if isBlack(w.left) && isBlack(w.right) {
				w.color = red
				x = parent
				parent = x.parent
			} else {
				if isBlack(w.right) {
					if w.left != nil {
						w.left.color = black
					}
					w.color = red
					t.rotateRight(w)
					w = parent.right
				}
				w.color = parent.color
				parent.color = black
				if w.right != nil {
					w.right.color = black
				}
				t.rotateLeft(parent)
				x = t.root
				parent = nil
			}
		} else {
			w := parent.left
			if w != nil && w.color == red {
				w.color = black
				parent.color = red
				t.rotateRight(parent)
				w = parent.left
			}
			if w == nil {
				x = parent
				parent = x.parent
				continue
			}
			if isBlack(w.right) && isBlack(w.left) {
				w.color = red
				x = parent
				parent = x.parent
			} else {
				if isBlack(w.left) {
					if w.right != nil {
						w.right.color = black
					}
					w.color = red
					t.rotateLeft(w)
					w = parent.left
				}
				w.color = parent.color
				parent.color = black
				if w.left != nil {
					w.left.color = black
				}
				t.rotateRight(parent)
				x = t.root
				parent = nil
			}
		}
	}

	if x != nil {
		x.color = black
	}
}

func isBlack[V any](n *Node[V]) bool {
	return n == nil || n.color == black
}

// Walk performs an in-order traversal, calling fn for every node in
// ascending (Key, Tie) order. Traversal stops early if fn returns false.
func (t *Tree[V]) Walk(fn func(n *Node[V]) bool) {
	walk(t.root, fn)
}

func walk[V any](n *Node[V], fn func(n *Node[V]) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.left, fn) {
		return false
	}
	if !fn(n) {
		return false
	}
	return walk(n.right, fn)
}

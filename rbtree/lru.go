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

package rbtree

// QNode is one entry of a Queue; callers hold onto the returned *QNode to get
// O(1) removal without a second search, exactly like the cache index node's
// embedded LRU cursor described in spec.md §3.
type QNode[V any] struct {
	Value V

	prev, next *QNode[V]
	q          *Queue[V]
}

// Queue is an intrusive doubly linked list used as an LRU: PushFront puts the
// newest entry at the head, and the manager (C11) walks from the tail via
// Back/Prev to find inactive victims, matching spec.md §4.7.
type Queue[V any] struct {
	head, tail *QNode[V]
	size       int
}

// NewQueue returns an empty Queue.
func NewQueue[V any]() *Queue[V] {
	return &Queue[V]{}
}

// Len returns the number of linked entries.
func (q *Queue[V]) Len() int {
	return q.size
}

// Front returns the most recently pushed entry, or nil if empty.
func (q *Queue[V]) Front() *QNode[V] {
	return q.head
}

// Back returns the least recently pushed entry, or nil if empty.
func (q *Queue[V]) Back() *QNode[V] {
	return q.tail
}

// Prev returns the entry closer to the front than n.
func (n *QNode[V]) Prev() *QNode[V] {
	return n.prev
}

// Next returns the entry closer to the back than n.
func (n *QNode[V]) Next() *QNode[V] {
	return n.next
}

// PushFront links a new entry at the head (newest) and returns its handle.
func (q *Queue[V]) PushFront(value V) *QNode[V] {
	n := &QNode[V]{Value: value, q: q}
	q.linkFront(n)
	return n
}

func (q *Queue[V]) linkFront(n *QNode[V]) {
	n.prev = nil
	n.next = q.head

	if q.head != nil {
		q.head.prev = n
	}
	q.head = n

	if q.tail == nil {
		q.tail = n
	}

	n.q = q
	q.size++
}

// Remove unlinks n from q. It is a no-op if n is nil, already unlinked,
// or linked in another Queue.
func (q *Queue[V]) Remove(n *QNode[V]) {
	if n == nil || n.q != q {
		return
	}

	if n.prev != nil {
		n.prev.next = n.next
	} else {
		q.head = n.next
	}

	if n.next != nil {
		n.next.prev = n.prev
	} else {
		q.tail = n.prev
	}

	n.prev, n.next, n.q = nil, nil, nil
	q.size--
}

// MoveToFront relinks n at the head without allocating a new node, used by
// the manager's "requeue a still-referenced leaked entry to the head"
// behavior (spec.md §4.7 / Open Question 2).
func (q *Queue[V]) MoveToFront(n *QNode[V]) {
	if n == nil || n.q != q {
		return
	}
	if q.head == n {
		return
	}
	q.Remove(n)
	n.q = q
	q.linkFront(n)
}

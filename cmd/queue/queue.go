// Package queue implements a queue of strings on top of a circular doubly
// linked list with a sentinel node.
//
// A Queue is not safe for concurrent use. Callers sharing one between
// goroutines must synchronize access themselves.
package queue

import "strings"

type Queue struct {
	// Sentinel, never carries a value. root.next is the head and root.prev
	// the tail.
	root Element
}

// New returns an empty queue.
func New() *Queue {
	return new(Queue).init()
}

func (q *Queue) init() *Queue {
	q.root.next = &q.root
	q.root.prev = &q.root
	return q
}

func (q *Queue) lazyInit() {
	if q.root.next == nil {
		q.init()
	}
}

// Free removes and releases every element. The queue is empty afterwards.
func (q *Queue) Free() {
	if q == nil {
		return
	}
	q.lazyInit()

	q.eachSafe(func(e *Element) bool {
		q.unlink(e)
		Release(e)
		return true
	})
}

// InsertHead adds a copy of s at the head of the queue. It only fails on a
// nil queue.
func (q *Queue) InsertHead(s string) bool {
	if q == nil {
		return false
	}
	q.lazyInit()

	q.insertAfter(&Element{Value: strings.Clone(s)}, &q.root)
	return true
}

// InsertTail adds a copy of s at the tail of the queue.
func (q *Queue) InsertTail(s string) bool {
	if q == nil {
		return false
	}
	q.lazyInit()

	q.insertBefore(&Element{Value: strings.Clone(s)}, &q.root)
	return true
}

// RemoveHead unlinks the head element and hands it to the caller. When sp
// is not empty the value is copied into it, truncated to len(sp)-1 bytes
// and followed by a zero byte. Returns nil if the queue is nil or empty.
func (q *Queue) RemoveHead(sp []byte) *Element {
	if q == nil {
		return nil
	}
	q.lazyInit()
	if q.empty() {
		return nil
	}

	return q.remove(q.root.next, sp)
}

// RemoveTail is RemoveHead for the tail element.
func (q *Queue) RemoveTail(sp []byte) *Element {
	if q == nil {
		return nil
	}
	q.lazyInit()
	if q.empty() {
		return nil
	}

	return q.remove(q.root.prev, sp)
}

func (q *Queue) remove(e *Element, sp []byte) *Element {
	q.unlink(e)
	if len(sp) > 0 {
		n := copy(sp[:len(sp)-1], e.Value)
		sp[n] = 0
	}
	return e
}

// Release drops the value of an element that has been removed from its
// queue. Releasing an element still linked into a queue is a no-op.
func Release(e *Element) {
	if e == nil || e.list != nil {
		return
	}
	e.Value = ""
}

// Size counts the elements by walking the whole ring.
func (q *Queue) Size() int {
	if q == nil {
		return 0
	}
	q.lazyInit()

	size := 0
	q.each(func(*Element) bool {
		size++
		return true
	})
	return size
}

// Head returns the first element or nil if the queue is empty.
func (q *Queue) Head() *Element {
	if q == nil {
		return nil
	}
	q.lazyInit()
	if q.empty() {
		return nil
	}
	return q.root.next
}

// Tail returns the last element or nil if the queue is empty.
func (q *Queue) Tail() *Element {
	if q == nil {
		return nil
	}
	q.lazyInit()
	if q.empty() {
		return nil
	}
	return q.root.prev
}

// Values returns the values from head to tail.
func (q *Queue) Values() []string {
	values := []string{}
	if q == nil {
		return values
	}
	q.lazyInit()

	q.each(func(e *Element) bool {
		values = append(values, e.Value)
		return true
	})
	return values
}

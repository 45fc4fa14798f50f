package queue

// Element is a node of a Queue holding one text value.
type Element struct {
	next, prev *Element

	// The queue this element belongs to, nil once it has been removed.
	list *Queue

	Value string
}

// Next returns the following element or nil at the tail.
func (e *Element) Next() *Element {
	if p := e.next; e.list != nil && p != &e.list.root {
		return p
	}
	return nil
}

// Prev returns the preceding element or nil at the head.
func (e *Element) Prev() *Element {
	if p := e.prev; e.list != nil && p != &e.list.root {
		return p
	}
	return nil
}

// Link primitives. The root element of a Queue is the sentinel, every other
// element is reachable from it by following next until root comes back.

func (q *Queue) empty() bool {
	return q.root.next == &q.root
}

// insertAfter links e right after at.
func (q *Queue) insertAfter(e, at *Element) {
	e.prev = at
	e.next = at.next
	e.prev.next = e
	e.next.prev = e
	e.list = q
}

func (q *Queue) insertBefore(e, at *Element) {
	q.insertAfter(e, at.prev)
}

// unlink takes e out of the ring and clears its links.
func (q *Queue) unlink(e *Element) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.next = nil
	e.prev = nil
	e.list = nil
}

// move places e right after at. e and at must both be linked into q.
func (q *Queue) move(e, at *Element) {
	if e == at {
		return
	}
	e.prev.next = e.next
	e.next.prev = e.prev

	e.prev = at
	e.next = at.next
	e.prev.next = e
	e.next.prev = e
}

// each calls fn for every element from head to tail until fn returns false.
func (q *Queue) each(fn func(e *Element) bool) {
	for e := q.root.next; e != &q.root; e = e.next {
		if !fn(e) {
			return
		}
	}
}

// eachSafe is each but fn may unlink the element it is handed.
func (q *Queue) eachSafe(fn func(e *Element) bool) {
	for e, n := q.root.next, q.root.next.next; e != &q.root; e, n = n, n.next {
		if !fn(e) {
			return
		}
	}
}

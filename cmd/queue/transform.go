package queue

// middle returns the element at index size/2 counting from the head, using a
// fast pointer that moves two links for every link of the slow one. The
// queue must not be empty.
func (q *Queue) middle() *Element {
	slow, fast := q.root.next, q.root.next
	for fast != &q.root && fast.next != &q.root {
		fast = fast.next.next
		slow = slow.next
	}
	return slow
}

// DeleteMid removes the middle element. For an even number of elements the
// later of the two middle elements is removed. Returns false if the queue is
// nil or empty.
func (q *Queue) DeleteMid() bool {
	if q == nil {
		return false
	}
	q.lazyInit()
	if q.empty() {
		return false
	}

	mid := q.middle()
	q.unlink(mid)
	Release(mid)
	return true
}

// DeleteDup removes every element whose value appears more than once in the
// queue, so only values that were unique are left. The queue does not need
// to be sorted.
func (q *Queue) DeleteDup() bool {
	if q == nil {
		return false
	}
	q.lazyInit()

	for cur := q.root.next; cur != &q.root; {
		dup := false
		for e := cur.next; e != &q.root; {
			next := e.next
			if e.Value == cur.Value {
				q.unlink(e)
				Release(e)
				dup = true
			}
			e = next
		}

		next := cur.next
		if dup {
			q.unlink(cur)
			Release(cur)
		}
		cur = next
	}
	return true
}

// Swap exchanges every two adjacent elements starting from the head. With an
// odd number of elements the last one stays in place.
func (q *Queue) Swap() {
	if q == nil {
		return
	}
	q.lazyInit()

	for first := q.root.next; first != &q.root && first.next != &q.root; first = first.next {
		q.move(first, first.next)
	}
}

// Reverse reverses the order of the elements in place by exchanging the
// outermost pair and walking inward.
func (q *Queue) Reverse() {
	if q == nil {
		return
	}
	q.lazyInit()

	left, right := q.root.next, q.root.prev
	for left != right && left.prev != right {
		nextLeft, nextRight := left.next, right.prev
		if nextLeft == right {
			q.move(left, right)
			return
		}

		q.exchange(left, right)
		left, right = nextLeft, nextRight
	}
}

// exchange swaps the positions of two distinct, non adjacent elements.
func (q *Queue) exchange(a, b *Element) {
	before := a.prev
	q.move(a, b)
	q.move(b, before)
}

package queue

// Sort orders the elements by value in ascending byte-wise order. The sort
// is stable and relinks the existing elements instead of copying values.
func (q *Queue) Sort() {
	if q == nil {
		return
	}
	q.lazyInit()
	if q.empty() || q.root.next == q.root.prev {
		return
	}

	// Cut the ring open into a chain ending in nil. Only next links are
	// meaningful until relink puts the ring back together.
	first := q.root.next
	q.root.prev.next = nil

	q.relink(mergeSort(first))
}

func mergeSort(head *Element) *Element {
	if head == nil || head.next == nil {
		return head
	}

	mid := splitChain(head)
	return mergeChains(mergeSort(head), mergeSort(mid))
}

// splitChain cuts a chain of at least two elements after its first half and
// returns the head of the second half.
func splitChain(head *Element) *Element {
	slow, fast := head, head.next
	for fast != nil && fast.next != nil {
		slow = slow.next
		fast = fast.next.next
	}

	mid := slow.next
	slow.next = nil
	return mid
}

// mergeChains merges two sorted chains, taking from left on equal values.
func mergeChains(left, right *Element) *Element {
	var head Element
	tail := &head
	for left != nil && right != nil {
		if right.Value < left.Value {
			tail.next = right
			right = right.next
		} else {
			tail.next = left
			left = left.next
		}
		tail = tail.next
	}

	if left != nil {
		tail.next = left
	} else {
		tail.next = right
	}
	return head.next
}

// relink turns a sorted chain back into the ring, fixing every prev link.
func (q *Queue) relink(chain *Element) {
	prev := &q.root
	for e := chain; e != nil; e = e.next {
		prev.next = e
		e.prev = prev
		prev = e
	}
	prev.next = &q.root
	q.root.prev = prev
}

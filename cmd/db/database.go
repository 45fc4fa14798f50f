package db

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"skabillium/ringq/cmd/queue"
)

var (
	ErrNoSuchQueue = errors.New("ERR no such queue")
	ErrEmptyQueue  = errors.New("ERR queue is empty")
)

// Database holds named queues. Queues are not safe for concurrent use, so
// every access goes through the database lock.
type Database struct {
	mu     sync.Mutex
	queues map[string]*queue.Queue
}

func NewDatabase() *Database {
	return &Database{queues: make(map[string]*queue.Queue)}
}

func (d *Database) FlushAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, q := range d.queues {
		q.Free()
	}
	d.queues = make(map[string]*queue.Queue)
}

func (d *Database) Keys() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	keys := make([]string, 0, len(d.queues))
	for k := range d.queues {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// New creates an empty queue under key, freeing any queue it replaces.
func (d *Database) New(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if q, found := d.queues[key]; found {
		q.Free()
	}
	d.queues[key] = queue.New()
}

func (d *Database) Free(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	q, found := d.queues[key]
	if !found {
		return ErrNoSuchQueue
	}

	q.Free()
	delete(d.queues, key)
	return nil
}

// InsertHead adds values one by one at the head of the queue, creating it
// if needed, and returns the resulting size.
func (d *Database) InsertHead(key string, values ...string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	q := d.getOrCreate(key)
	for _, v := range values {
		q.InsertHead(v)
	}
	return q.Size()
}

func (d *Database) InsertTail(key string, values ...string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	q := d.getOrCreate(key)
	for _, v := range values {
		q.InsertTail(v)
	}
	return q.Size()
}

// RemoveHead pops the head value. With a positive bufSize the value is
// truncated the way a bufSize byte buffer would hold it. The second result
// is false when there is nothing to remove.
func (d *Database) RemoveHead(key string, bufSize int) (string, bool, error) {
	return d.removeWith(key, bufSize, (*queue.Queue).RemoveHead)
}

func (d *Database) RemoveTail(key string, bufSize int) (string, bool, error) {
	return d.removeWith(key, bufSize, (*queue.Queue).RemoveTail)
}

func (d *Database) removeWith(key string, bufSize int, remove func(*queue.Queue, []byte) *queue.Element) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	q, found := d.queues[key]
	if !found {
		return "", false, ErrNoSuchQueue
	}

	var sp []byte
	if bufSize > 0 {
		sp = make([]byte, bufSize)
	}

	e := remove(q, sp)
	if e == nil {
		return "", false, nil
	}
	defer queue.Release(e)

	if sp == nil {
		return e.Value, true, nil
	}
	return cstring(sp), true, nil
}

func (d *Database) Size(key string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	q, found := d.queues[key]
	if !found {
		return 0, ErrNoSuchQueue
	}
	return q.Size(), nil
}

func (d *Database) DeleteMid(key string) error {
	return d.apply(key, func(q *queue.Queue) error {
		if !q.DeleteMid() {
			return ErrEmptyQueue
		}
		return nil
	})
}

func (d *Database) DeleteDup(key string) error {
	return d.apply(key, func(q *queue.Queue) error {
		q.DeleteDup()
		return nil
	})
}

func (d *Database) Swap(key string) error {
	return d.apply(key, func(q *queue.Queue) error {
		q.Swap()
		return nil
	})
}

func (d *Database) Reverse(key string) error {
	return d.apply(key, func(q *queue.Queue) error {
		q.Reverse()
		return nil
	})
}

func (d *Database) Sort(key string) error {
	return d.apply(key, func(q *queue.Queue) error {
		q.Sort()
		return nil
	})
}

func (d *Database) Show(key string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	q, found := d.queues[key]
	if !found {
		return nil, ErrNoSuchQueue
	}
	return q.Values(), nil
}

func (d *Database) apply(key string, fn func(q *queue.Queue) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	q, found := d.queues[key]
	if !found {
		return ErrNoSuchQueue
	}
	return fn(q)
}

func (d *Database) getOrCreate(key string) *queue.Queue {
	q, found := d.queues[key]
	if !found {
		q = queue.New()
		d.queues[key] = q
	}
	return q
}

// cstring returns the bytes of sp up to the first zero byte.
func cstring(sp []byte) string {
	for i, b := range sp {
		if b == 0 {
			return string(sp[:i])
		}
	}
	return string(sp)
}

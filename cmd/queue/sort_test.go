package queue

import (
	"math/rand"
	"reflect"
	"sort"
	"strconv"
	"testing"
)

func TestSort(t *testing.T) {
	cases := []struct {
		in       []string
		expected []string
	}{
		{[]string{}, []string{}},
		{[]string{"a"}, []string{"a"}},
		{[]string{"b", "a"}, []string{"a", "b"}},
		{[]string{"banana", "apple", "cherry"}, []string{"apple", "banana", "cherry"}},
		{[]string{"d", "c", "b", "a"}, []string{"a", "b", "c", "d"}},
		{[]string{"b", "a", "b", "a", "c"}, []string{"a", "a", "b", "b", "c"}},
		{[]string{"ab", "a", "", "b", "aa"}, []string{"", "a", "aa", "ab", "b"}},
		{[]string{"Z", "a", "B"}, []string{"B", "Z", "a"}},
	}

	for _, c := range cases {
		q := newQueue(c.in...)
		q.Sort()
		if res := q.Values(); !reflect.DeepEqual(res, c.expected) {
			t.Errorf("Sort() on %v: expected %v, got %v", c.in, c.expected, res)
		}
		checkLinks(t, q)
	}
}

func TestSortIdempotent(t *testing.T) {
	q := newQueue("pear", "fig", "apple", "fig", "kiwi")
	q.Sort()
	once := q.Values()
	q.Sort()

	if !reflect.DeepEqual(once, q.Values()) {
		t.Error("Expected sorting a sorted queue to change nothing, got", q.Values())
	}
}

func TestSortStable(t *testing.T) {
	q := newQueue("b", "a", "b", "a", "b")
	ids := map[*Element]int{}
	i := 0
	for e := q.Head(); e != nil; e = e.Next() {
		ids[e] = i
		i++
	}

	q.Sort()

	last := map[string]int{}
	for e := q.Head(); e != nil; e = e.Next() {
		if prev, found := last[e.Value]; found && prev > ids[e] {
			t.Errorf("Expected equal values to keep their order, %q moved before an earlier one", e.Value)
		}
		last[e.Value] = ids[e]
	}
}

func TestSortRandom(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for n := 0; n < 64; n++ {
		in := make([]string, n)
		for i := range in {
			in[i] = strconv.Itoa(r.Intn(20))
		}

		q := newQueue(in...)
		q.Sort()

		expected := append([]string{}, in...)
		sort.Strings(expected)
		if res := q.Values(); !reflect.DeepEqual(res, expected) {
			t.Errorf("Sort() on %v: expected %v, got %v", in, expected, res)
		}
		if q.Size() != n {
			t.Errorf("Expected Size() to stay %d after Sort(), got %d", n, q.Size())
		}
		checkLinks(t, q)
	}
}

package check

import (
	"sort"
	"strings"
)

// Queue is the ordered set of mod names still to be checked. Names are
// unique ignoring case and sorted case-insensitively.
type Queue struct {
	names []string
}

// NewQueue builds a queue from names. Duplicates (ignoring case) keep
// their first spelling; empty names are dropped.
func NewQueue(names ...string) *Queue {
	seen := make(map[string]bool, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, name)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		a, b := strings.ToLower(unique[i]), strings.ToLower(unique[j])
		if a != b {
			return a < b
		}
		return unique[i] < unique[j]
	})
	return &Queue{names: unique}
}

// Len returns the number of names left.
func (q *Queue) Len() int {
	return len(q.names)
}

// Pop removes and returns the front name.
func (q *Queue) Pop() (string, bool) {
	if len(q.names) == 0 {
		return "", false
	}
	name := q.names[0]
	q.names = q.names[1:]
	return name, true
}

// Names returns a copy of the remaining names in order.
func (q *Queue) Names() []string {
	return append([]string(nil), q.names...)
}

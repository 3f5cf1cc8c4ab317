package flow

import "sort"

// RefTable collects deferred references: values, like the page number a
// TOC entry points at or the total page count, that are unknown while
// the referring text is placed and filled in once pagination finishes.
type RefTable struct {
	vals map[string]string
}

func NewRefTable() *RefTable {
	return &RefTable{vals: make(map[string]string)}
}

func (t *RefTable) Set(id, value string) { t.vals[id] = value }

func (t *RefTable) Get(id string) (string, bool) {
	v, ok := t.vals[id]
	return v, ok
}

// IDs returns the registered identifiers in sorted order.
func (t *RefTable) IDs() []string {
	ids := make([]string, 0, len(t.vals))
	for id := range t.vals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

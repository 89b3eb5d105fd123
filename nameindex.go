package pkggraph

import "github.com/armon/go-radix"

// nameIndex is a typed wrapper over a radix tree, used by the graph
// assembler (C12) to back module(byName) and product(byName) lookups with
// ordered, deterministic iteration. Mirrors golang-dep's deducerTrie
// wrapper over the same library, retargeted from path deducers to arena
// indices.
type nameIndex struct {
	t *radix.Tree
}

func newNameIndex() nameIndex {
	return nameIndex{t: radix.New()}
}

// Insert records that name maps to idx, returning false if name was
// already present (a caller-visible duplicate-name condition, which C8
// reports separately before the index is ever consulted).
func (n nameIndex) Insert(name string, idx int) bool {
	_, had := n.t.Insert(name, idx)
	return !had
}

// Get looks up idx by name.
func (n nameIndex) Get(name string) (int, bool) {
	v, ok := n.t.Get(name)
	if !ok {
		return 0, false
	}
	return v.(int), true
}

// Len returns the number of indexed names.
func (n nameIndex) Len() int { return n.t.Len() }

// Names returns every indexed name in sorted order.
func (n nameIndex) Names() []string {
	names := make([]string, 0, n.t.Len())
	n.t.Walk(func(s string, _ interface{}) bool {
		names = append(names, s)
		return false
	})
	return names
}

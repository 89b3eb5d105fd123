package pkggraph

import (
	"sort"
	"strings"
	"sync"
)

// DefaultTraitName is the trait name a manifest may designate as the
// implicit selection when the root specifies none.
const DefaultTraitName = "default"

// traitMemo memoizes EnabledTraits by (package identity, selection hash),
// per spec.md §9's "memoize by (package_identity, selection_hash)"
// guidance. It is safe for concurrent use across independent assemble
// invocations that happen to share a cache, though the assembler normally
// creates a fresh one per run.
type traitMemo struct {
	mu    sync.Mutex
	cache map[string]map[string]map[string]bool // identity -> selectionKey -> enabled set
}

func newTraitMemo() *traitMemo {
	return &traitMemo{cache: make(map[string]map[string]map[string]bool)}
}

func selectionKey(selection []string) string {
	s := append([]string{}, selection...)
	sort.Strings(s)
	return strings.Join(s, ",")
}

// EnabledTraits computes the fixed-point-expanded set of traits enabled
// for pkg given a root trait selection. An empty selection means
// {"default"}. The result is the seed, repeatedly unioned with
// enabledTraits(t) for every t already in the working set, until no trait
// adds anything new.
func EnabledTraits(pkg *Manifest, selection []string) map[string]bool {
	if len(selection) == 0 {
		selection = []string{DefaultTraitName}
	}

	declared := make(map[string][]string, len(pkg.Traits))
	for _, t := range pkg.Traits {
		declared[t.Name] = t.EnabledTraits
	}

	enabled := make(map[string]bool, len(selection))
	queue := append([]string{}, selection...)
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		if enabled[t] {
			continue
		}
		enabled[t] = true

		for _, next := range declared[t] {
			if !enabled[next] {
				queue = append(queue, next)
			}
		}
	}

	return enabled
}

// enabledTraitsMemoized is the memoized entry point the graph assembler
// uses; EnabledTraits itself stays a pure function so it can be tested and
// used standalone without a memo.
func (m *traitMemo) enabledTraitsMemoized(pkg *Manifest, selection []string) map[string]bool {
	key := selectionKey(selection)
	idKey := pkg.Identity.String()

	m.mu.Lock()
	if byPkg, ok := m.cache[idKey]; ok {
		if result, ok := byPkg[key]; ok {
			m.mu.Unlock()
			return result
		}
	}
	m.mu.Unlock()

	result := EnabledTraits(pkg, selection)

	m.mu.Lock()
	byPkg, ok := m.cache[idKey]
	if !ok {
		byPkg = make(map[string]map[string]bool)
		m.cache[idKey] = byPkg
	}
	byPkg[key] = result
	m.mu.Unlock()

	return result
}

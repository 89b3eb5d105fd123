package pkggraph

import (
	"reflect"
	"sort"
	"testing"
)

func enabledNames(enabled map[string]bool) []string {
	var out []string
	for name, on := range enabled {
		if on {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func TestEnabledTraitsDefaultsToDefaultTrait(t *testing.T) {
	pkg := &Manifest{
		Traits: []Trait{
			{Name: "default", EnabledTraits: []string{"networking"}},
			{Name: "networking"},
			{Name: "metrics"},
		},
	}

	got := enabledNames(EnabledTraits(pkg, nil))
	want := []string{"default", "networking"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("EnabledTraits(nil) = %v, want %v", got, want)
	}
}

func TestEnabledTraitsFixedPointExpansion(t *testing.T) {
	pkg := &Manifest{
		Traits: []Trait{
			{Name: "a", EnabledTraits: []string{"b"}},
			{Name: "b", EnabledTraits: []string{"c"}},
			{Name: "c"},
			{Name: "unrelated"},
		},
	}

	got := enabledNames(EnabledTraits(pkg, []string{"a"}))
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("EnabledTraits([a]) = %v, want %v", got, want)
	}
}

func TestEnabledTraitsHandlesCycles(t *testing.T) {
	pkg := &Manifest{
		Traits: []Trait{
			{Name: "a", EnabledTraits: []string{"b"}},
			{Name: "b", EnabledTraits: []string{"a"}},
		},
	}

	got := enabledNames(EnabledTraits(pkg, []string{"a"}))
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("EnabledTraits with a cycle = %v, want %v (should terminate)", got, want)
	}
}

func TestTraitMemoReturnsSameResultOnRepeatedCalls(t *testing.T) {
	pkg := &Manifest{
		Identity: Identity{value: "pkg"},
		Traits: []Trait{
			{Name: "default", EnabledTraits: []string{"x"}},
			{Name: "x"},
		},
	}
	memo := newTraitMemo()

	first := memo.enabledTraitsMemoized(pkg, nil)
	second := memo.enabledTraitsMemoized(pkg, nil)
	if !reflect.DeepEqual(enabledNames(first), enabledNames(second)) {
		t.Fatalf("memoized results differ: %v vs %v", first, second)
	}
}

func TestSelectionKeyIgnoresOrder(t *testing.T) {
	if selectionKey([]string{"a", "b"}) != selectionKey([]string{"b", "a"}) {
		t.Fatal("selectionKey should be order-independent")
	}
	if selectionKey([]string{"a"}) == selectionKey([]string{"a", "b"}) {
		t.Fatal("selectionKey should differ for different selections")
	}
}

package permtree

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

// drawForest 生成随机森林：每个节点的父节点只能是之前生成的节点，保证无环
func drawForest(t *rapid.T) []*Node {
	return Build(drawRecords(t))
}

func drawRecords(t *rapid.T) []Record {
	size := rapid.IntRange(1, 25).Draw(t, "size")
	records := make([]Record, size)
	for i := 0; i < size; i++ {
		id := int64(i + 1)
		var parent int64
		if i > 0 {
			parent = int64(rapid.IntRange(0, i).Draw(t, fmt.Sprintf("parent_%d", id)))
		}
		records[i] = Record{
			ID:       id,
			ParentID: parent,
			Key:      fmt.Sprintf("perm:%d", id),
			Title:    fmt.Sprintf("Menu %d", id),
			Sort:     rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("sort_%d", id)),
		}
	}
	return records
}

func drawNodes(forest []*Node) []*Node {
	var nodes []*Node
	Walk(forest, func(n *Node, _ int) bool {
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

func drawSelected(t *rapid.T, forest []*Node) SelectedSet {
	keys := rapid.SliceOf(rapid.SampledFrom(Keys(forest))).Draw(t, "selected")
	return NewSelectedSet(keys...)
}

func TestProperty_LeafDeterminism(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		forest := drawForest(t)
		selected := drawSelected(t, forest)
		for _, n := range drawNodes(forest) {
			if !n.IsLeaf() {
				continue
			}
			got := ResolveCheckedState(n, selected)
			if (got == Checked) != selected.Has(n.Key) {
				t.Fatalf("leaf %s: state %s, selected %v", n.Key, got, selected.Has(n.Key))
			}
			if got == Indeterminate {
				t.Fatalf("leaf %s resolved indeterminate", n.Key)
			}
		}
	})
}

func TestProperty_ParentAuthority(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		forest := drawForest(t)
		selected := drawSelected(t, forest)
		for _, n := range drawNodes(forest) {
			if n.IsLeaf() || !selected.Has(n.Key) {
				continue
			}
			if got := ResolveCheckedState(n, selected); got != Checked {
				t.Fatalf("selected parent %s resolved %s", n.Key, got)
			}
		}
	})
}

func TestProperty_IndeterminateBoundary(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		forest := drawForest(t)
		selected := drawSelected(t, forest)
		for _, n := range drawNodes(forest) {
			if n.IsLeaf() || selected.Has(n.Key) {
				continue
			}
			hit := false
			for _, k := range CollectDescendantKeys(n) {
				if selected.Has(k) {
					hit = true
					break
				}
			}
			want := Unchecked
			if hit {
				want = Indeterminate
			}
			if got := ResolveCheckedState(n, selected); got != want {
				t.Fatalf("node %s: got %s want %s", n.Key, got, want)
			}
		}
	})
}

func TestProperty_ToggleOnIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		forest := drawForest(t)
		selected := drawSelected(t, forest)
		n := rapid.SampledFrom(drawNodes(forest)).Draw(t, "node")

		once := ToggleNode(n, selected, true)
		twice := ToggleNode(n, once, true)
		if !once.Equal(twice) {
			t.Fatalf("toggle on not idempotent: %v vs %v", once.Keys(), twice.Keys())
		}

		subtree := append([]string{n.Key}, CollectDescendantKeys(n)...)
		for _, k := range subtree {
			if !once.Has(k) {
				t.Fatalf("key %s missing after toggle on", k)
			}
		}
		for _, k := range selected.Keys() {
			if !once.Has(k) {
				t.Fatalf("unrelated key %s dropped by toggle on", k)
			}
		}
		if once.Len() > selected.Len()+len(subtree) {
			t.Fatalf("toggle on added keys outside the subtree")
		}
	})
}

func TestProperty_ToggleOffCompleteness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		forest := drawForest(t)
		selected := drawSelected(t, forest)
		n := rapid.SampledFrom(drawNodes(forest)).Draw(t, "node")

		result := ToggleNode(n, selected, false)
		if result.Has(n.Key) {
			t.Fatalf("key %s survived toggle off", n.Key)
		}
		inSubtree := map[string]bool{n.Key: true}
		for _, k := range CollectDescendantKeys(n) {
			inSubtree[k] = true
			if result.Has(k) {
				t.Fatalf("descendant %s survived toggle off", k)
			}
		}
		for _, k := range selected.Keys() {
			if !inSubtree[k] && !result.Has(k) {
				t.Fatalf("unrelated key %s removed by toggle off", k)
			}
		}
		if got := ResolveCheckedState(n, result); got != Unchecked {
			t.Fatalf("node %s resolved %s after toggle off", n.Key, got)
		}
	})
}

func TestProperty_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		forest := drawForest(t)
		selected := drawSelected(t, forest)
		n := rapid.SampledFrom(drawNodes(forest)).Draw(t, "node")

		if got := ResolveCheckedState(n, ToggleNode(n, selected, true)); got != Checked {
			t.Fatalf("after toggle on: %s", got)
		}
		if got := ResolveCheckedState(n, ToggleNode(n, selected, false)); got != Unchecked {
			t.Fatalf("after toggle off: %s", got)
		}
	})
}

func TestProperty_BuildKeepsEveryRecord(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := drawRecords(t)
		forest := Build(records)
		if err := Validate(forest); err != nil {
			t.Fatalf("generated forest invalid: %v", err)
		}
		if got := Count(forest); got != len(records) {
			t.Fatalf("forest has %d nodes, want %d", got, len(records))
		}
	})
}

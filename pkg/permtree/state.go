package permtree

import (
	"fmt"
)

// CheckedState 节点勾选状态
type CheckedState int8

const (
	Unchecked CheckedState = iota
	Checked
	Indeterminate
)

// String 状态名称
func (s CheckedState) String() string {
	switch s {
	case Unchecked:
		return "unchecked"
	case Checked:
		return "checked"
	case Indeterminate:
		return "indeterminate"
	default:
		return fmt.Sprintf("CheckedState(%d)", int8(s))
	}
}

// MarshalText 序列化为状态名称
func (s CheckedState) MarshalText() ([]byte, error) {
	switch s {
	case Unchecked, Checked, Indeterminate:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("invalid checked state %d", int8(s))
	}
}

// UnmarshalText 从状态名称解析
func (s *CheckedState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unchecked":
		*s = Unchecked
	case "checked":
		*s = Checked
	case "indeterminate":
		*s = Indeterminate
	default:
		return fmt.Errorf("unknown checked state %q", string(text))
	}
	return nil
}

// CollectDescendantKeys 收集节点全部后代的key（不含自身），先序深度优先、按子节点原有顺序
func CollectDescendantKeys(n *Node) []string {
	if n == nil {
		return nil
	}
	var keys []string
	for _, c := range n.Children {
		keys = collect(c, keys)
	}
	return keys
}

func collect(n *Node, keys []string) []string {
	if n == nil {
		return keys
	}
	keys = append(keys, n.Key)
	for _, c := range n.Children {
		keys = collect(c, keys)
	}
	return keys
}

// ResolveCheckedState 计算节点勾选状态。
//
// 叶子只看自身；非叶子自身被选中即为 Checked；否则有任一后代被选中为 Indeterminate，
// 全部未选中为 Unchecked。后代全选而自身未选仍是 Indeterminate。
func ResolveCheckedState(n *Node, selected SelectedSet) CheckedState {
	if n == nil {
		return Unchecked
	}
	selfSelected := selected.Has(n.Key)
	if n.IsLeaf() {
		if selfSelected {
			return Checked
		}
		return Unchecked
	}
	if selfSelected {
		return Checked
	}
	for _, k := range CollectDescendantKeys(n) {
		if selected.Has(k) {
			return Indeterminate
		}
	}
	return Unchecked
}

// ResolveForest 计算森林中每个节点的状态，按节点ID索引
func ResolveForest(forest []*Node, selected SelectedSet) map[int64]CheckedState {
	states := make(map[int64]CheckedState)
	Walk(forest, func(n *Node, _ int) bool {
		states[n.ID] = ResolveCheckedState(n, selected)
		return true
	})
	return states
}

// ToggleNode 勾选/取消节点，返回新集合（不修改入参）。
// 勾选时加入自身与全部后代，取消时移除自身与全部后代；祖先不受影响。
func ToggleNode(n *Node, selected SelectedSet, checked bool) SelectedSet {
	if n == nil {
		return selected.Union()
	}
	all := append([]string{n.Key}, CollectDescendantKeys(n)...)
	if checked {
		return selected.Union(all...)
	}
	return selected.Difference(all...)
}

package permtree

import (
	"sort"
)

// ExpansionState 展开的节点ID集合，仅用于展示，不参与勾选计算
type ExpansionState struct {
	ids map[int64]struct{}
}

// NewExpansionState 创建空的展开状态（全部折叠）
func NewExpansionState() *ExpansionState {
	return &ExpansionState{ids: make(map[int64]struct{})}
}

// IsExpanded 节点是否展开
func (e *ExpansionState) IsExpanded(id int64) bool {
	if e == nil {
		return false
	}
	_, ok := e.ids[id]
	return ok
}

// Toggle 切换展开状态，返回切换后是否展开
func (e *ExpansionState) Toggle(id int64) bool {
	if e.IsExpanded(id) {
		delete(e.ids, id)
		return false
	}
	e.ids[id] = struct{}{}
	return true
}

// Expand 展开
func (e *ExpansionState) Expand(id int64) {
	e.ids[id] = struct{}{}
}

// Collapse 折叠
func (e *ExpansionState) Collapse(id int64) {
	delete(e.ids, id)
}

// ExpandAll 展开森林中所有非叶子节点
func (e *ExpansionState) ExpandAll(forest []*Node) {
	Walk(forest, func(n *Node, _ int) bool {
		if !n.IsLeaf() {
			e.ids[n.ID] = struct{}{}
		}
		return true
	})
}

// CollapseAll 全部折叠
func (e *ExpansionState) CollapseAll() {
	e.ids = make(map[int64]struct{})
}

// IDs 已展开的节点ID（升序）
func (e *ExpansionState) IDs() []int64 {
	ids := make([]int64, 0, len(e.ids))
	for id := range e.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

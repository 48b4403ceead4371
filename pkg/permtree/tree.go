package permtree

import (
	"strings"
)

// SelectionChangeFunc 选择变更回调，参数为完整的新key列表
type SelectionChangeFunc func(keys []string)

// Row 可见行
type Row struct {
	Node       *Node
	Depth      int
	Title      string
	State      CheckedState
	Expandable bool
	Expanded   bool
	Last       bool   // 同级中的最后一个
	Guides     []bool // 自第一层起各祖先下方是否还有兄弟节点
}

// Prefix 树形缩进与分支符
func (r Row) Prefix() string {
	if r.Depth == 0 {
		return ""
	}
	var sb strings.Builder
	for _, more := range r.Guides {
		if more {
			sb.WriteString("│   ")
		} else {
			sb.WriteString("    ")
		}
	}
	if r.Last {
		sb.WriteString("└── ")
	} else {
		sb.WriteString("├── ")
	}
	return sb.String()
}

// Tree 权限树视图模型。
//
// 已选集合是受控值：Toggle 只计算新集合并通过回调上报一次，
// 展示中的集合仅在持有者调用 SetSelected 后变化。展开状态由 Tree 自己持有。
type Tree struct {
	menus    []*Node
	selected SelectedSet
	expanded *ExpansionState
	onChange SelectionChangeFunc
}

// NewTree 创建视图模型，展开状态初始为空
func NewTree(menus []*Node, selected []string, onChange SelectionChangeFunc) *Tree {
	return &Tree{
		menus:    menus,
		selected: NewSelectedSet(selected...),
		expanded: NewExpansionState(),
		onChange: onChange,
	}
}

// Menus 森林
func (t *Tree) Menus() []*Node {
	return t.menus
}

// Selected 当前展示的已选集合
func (t *Tree) Selected() SelectedSet {
	return t.selected
}

// SetSelected 持有者回写已选集合
func (t *Tree) SetSelected(keys []string) {
	t.selected = NewSelectedSet(keys...)
}

// Expansion 展开状态
func (t *Tree) Expansion() *ExpansionState {
	return t.expanded
}

// State 节点当前勾选状态
func (t *Tree) State(id int64) CheckedState {
	return ResolveCheckedState(Find(t.menus, id), t.selected)
}

// Toggle 勾选/取消节点并上报新集合，节点不存在时返回 false
func (t *Tree) Toggle(id int64, checked bool) bool {
	n := Find(t.menus, id)
	if n == nil {
		return false
	}
	next := ToggleNode(n, t.selected, checked)
	if t.onChange != nil {
		t.onChange(next.Keys())
	}
	return true
}

// Click 模拟点击复选框：已勾选则取消，否则（含半选）勾选
func (t *Tree) Click(id int64) bool {
	return t.Toggle(id, t.State(id) != Checked)
}

// ToggleExpanded 切换节点展开状态，叶子节点或不存在时返回 false
func (t *Tree) ToggleExpanded(id int64) bool {
	n := Find(t.menus, id)
	if n == nil || n.IsLeaf() {
		return false
	}
	t.expanded.Toggle(id)
	return true
}

// Rows 展开后的可见行（先序），只有展开节点的子节点可见
func (t *Tree) Rows(locale string) []Row {
	var rows []Row
	t.appendRows(&rows, t.menus, 0, nil, locale)
	return rows
}

func (t *Tree) appendRows(rows *[]Row, nodes []*Node, depth int, guides []bool, locale string) {
	visible := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			visible = append(visible, n)
		}
	}

	for i, n := range visible {
		last := i == len(visible)-1
		expandable := !n.IsLeaf()
		expanded := expandable && t.expanded.IsExpanded(n.ID)

		g := make([]bool, len(guides))
		copy(g, guides)
		*rows = append(*rows, Row{
			Node:       n,
			Depth:      depth,
			Title:      n.TitleFor(locale),
			State:      ResolveCheckedState(n, t.selected),
			Expandable: expandable,
			Expanded:   expanded,
			Last:       last,
			Guides:     g,
		})

		if expanded {
			childGuides := g
			if depth > 0 {
				childGuides = append(append([]bool{}, g...), !last)
			}
			t.appendRows(rows, n.Children, depth+1, childGuides, locale)
		}
	}
}

package permtree

import (
	"sort"
)

// Record 扁平存储的菜单行（按 parent_id 关联）
type Record struct {
	ID       int64
	ParentID int64
	Key      string
	Title    string
	Titles   map[string]string
	Sort     int
}

// Build 由扁平记录构建森林。
// 父节点不存在的记录作为根节点；只能经由父子环到达的记录不会被挂载，
// 因此构建出的森林必然无环。同级按 Sort、ID 升序。
func Build(records []Record) []*Node {
	if len(records) == 0 {
		return nil
	}

	rows := make([]Record, len(records))
	copy(rows, records)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Sort != rows[j].Sort {
			return rows[i].Sort < rows[j].Sort
		}
		return rows[i].ID < rows[j].ID
	})

	exists := make(map[int64]struct{}, len(rows))
	for _, r := range rows {
		exists[r.ID] = struct{}{}
	}

	childrenOf := make(map[int64][]Record)
	var roots []Record
	for _, r := range rows {
		_, hasParent := exists[r.ParentID]
		if r.ParentID == 0 || !hasParent || r.ParentID == r.ID {
			roots = append(roots, r)
			continue
		}
		childrenOf[r.ParentID] = append(childrenOf[r.ParentID], r)
	}

	visited := make(map[int64]struct{}, len(rows))
	forest := make([]*Node, 0, len(roots))
	for _, r := range roots {
		if n := buildNode(r, childrenOf, visited); n != nil {
			forest = append(forest, n)
		}
	}
	return forest
}

func buildNode(r Record, childrenOf map[int64][]Record, visited map[int64]struct{}) *Node {
	if _, seen := visited[r.ID]; seen {
		return nil
	}
	visited[r.ID] = struct{}{}

	n := &Node{
		ID:       r.ID,
		Key:      r.Key,
		Title:    r.Title,
		Titles:   r.Titles,
		Children: []*Node{},
	}
	for _, c := range childrenOf[r.ID] {
		if child := buildNode(c, childrenOf, visited); child != nil {
			n.Children = append(n.Children, child)
		}
	}
	return n
}

// Prune 返回只保留 keep 命中节点及其祖先的新森林（原森林不变）
func Prune(forest []*Node, keep func(n *Node) bool) []*Node {
	var out []*Node
	for _, n := range forest {
		if p := prune(n, keep); p != nil {
			out = append(out, p)
		}
	}
	return out
}

func prune(n *Node, keep func(n *Node) bool) *Node {
	if n == nil {
		return nil
	}
	var children []*Node
	for _, c := range n.Children {
		if p := prune(c, keep); p != nil {
			children = append(children, p)
		}
	}
	if len(children) == 0 && !keep(n) {
		return nil
	}
	cp := *n
	cp.Children = children
	if cp.Children == nil {
		cp.Children = []*Node{}
	}
	return &cp
}

// Package permtree 权限菜单树：节点模型、后代收集、勾选状态计算、选择变更与展开状态。
//
// 树结构由调用方构造并保证无环、key 唯一；本包的算法不做环检测。
// 已选集合以权限 key 为单位，由外部持有，本包只返回新的集合。
package permtree

import (
	"fmt"
)

// Node 权限菜单节点
type Node struct {
	ID       int64             `json:"id"`
	Key      string            `json:"key"`
	Title    string            `json:"title"`
	Titles   map[string]string `json:"titles,omitempty"` // 多语言标题覆盖
	Children []*Node           `json:"children"`
}

// IsLeaf 是否叶子节点（children 为 nil 或全为 nil 时视为叶子）
func (n *Node) IsLeaf() bool {
	if n == nil {
		return true
	}
	for _, c := range n.Children {
		if c != nil {
			return false
		}
	}
	return true
}

// Walk 深度优先遍历森林，fn 返回 false 时不再进入该节点的子树
func Walk(forest []*Node, fn func(n *Node, depth int) bool) {
	for _, n := range forest {
		walk(n, 0, fn)
	}
}

func walk(n *Node, depth int, fn func(n *Node, depth int) bool) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// Find 根据ID查找节点
func Find(forest []*Node, id int64) *Node {
	var found *Node
	Walk(forest, func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindByKey 根据key查找节点
func FindByKey(forest []*Node, key string) *Node {
	var found *Node
	Walk(forest, func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.Key == key {
			found = n
			return false
		}
		return true
	})
	return found
}

// Keys 返回森林中全部节点的key（先序）
func Keys(forest []*Node) []string {
	var keys []string
	Walk(forest, func(n *Node, _ int) bool {
		keys = append(keys, n.Key)
		return true
	})
	return keys
}

// Count 节点总数
func Count(forest []*Node) int {
	total := 0
	Walk(forest, func(*Node, int) bool {
		total++
		return true
	})
	return total
}

// Validate 检查ID与key的唯一性。
// 算法本身不依赖此检查，供边界处（如从接口接收的树）使用。
func Validate(forest []*Node) error {
	ids := make(map[int64]struct{})
	keys := make(map[string]struct{})
	var err error
	Walk(forest, func(n *Node, _ int) bool {
		if err != nil {
			return false
		}
		if _, ok := ids[n.ID]; ok {
			err = fmt.Errorf("duplicate node id %d", n.ID)
			return false
		}
		ids[n.ID] = struct{}{}
		if n.Key == "" {
			err = fmt.Errorf("node %d has empty key", n.ID)
			return false
		}
		if _, ok := keys[n.Key]; ok {
			err = fmt.Errorf("duplicate node key %q", n.Key)
			return false
		}
		keys[n.Key] = struct{}{}
		return true
	})
	return err
}

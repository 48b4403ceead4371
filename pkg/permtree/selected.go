package permtree

import (
	"sort"
)

// SelectedSet 已选权限key集合。值语义：所有变更方法都返回新集合，零值为空集合。
type SelectedSet struct {
	keys map[string]struct{}
}

// NewSelectedSet 由key列表创建集合，重复key自动合并
func NewSelectedSet(keys ...string) SelectedSet {
	s := SelectedSet{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// Has 是否包含key
func (s SelectedSet) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Len 集合大小
func (s SelectedSet) Len() int {
	return len(s.keys)
}

// Keys 返回排序后的key列表
func (s SelectedSet) Keys() []string {
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Union 并集
func (s SelectedSet) Union(keys ...string) SelectedSet {
	out := SelectedSet{keys: make(map[string]struct{}, len(s.keys)+len(keys))}
	for k := range s.keys {
		out.keys[k] = struct{}{}
	}
	for _, k := range keys {
		out.keys[k] = struct{}{}
	}
	return out
}

// Difference 差集
func (s SelectedSet) Difference(keys ...string) SelectedSet {
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}
	out := SelectedSet{keys: make(map[string]struct{}, len(s.keys))}
	for k := range s.keys {
		if _, ok := drop[k]; !ok {
			out.keys[k] = struct{}{}
		}
	}
	return out
}

// Equal 集合相等
func (s SelectedSet) Equal(other SelectedSet) bool {
	if len(s.keys) != len(other.keys) {
		return false
	}
	for k := range s.keys {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

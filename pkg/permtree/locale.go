package permtree

import (
	"sort"

	"golang.org/x/text/language"
)

// TitleFor 按语言解析显示标题，找不到匹配的覆盖时回退到基础标题
func (n *Node) TitleFor(locale string) string {
	if n == nil {
		return ""
	}
	if locale == "" || len(n.Titles) == 0 {
		return n.Title
	}
	if t := n.Titles[locale]; t != "" {
		return t
	}

	want, err := language.Parse(locale)
	if err != nil {
		return n.Title
	}

	names := make([]string, 0, len(n.Titles))
	for name := range n.Titles {
		names = append(names, name)
	}
	sort.Strings(names)

	tags := make([]language.Tag, 0, len(names))
	supported := make([]string, 0, len(names))
	for _, name := range names {
		tag, err := language.Parse(name)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		supported = append(supported, name)
	}
	if len(tags) == 0 {
		return n.Title
	}

	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No {
		return n.Title
	}
	if t := n.Titles[supported[idx]]; t != "" {
		return t
	}
	return n.Title
}

// Localize 返回标题已按语言解析的森林副本，Titles 被清空
func Localize(forest []*Node, locale string) []*Node {
	out := make([]*Node, 0, len(forest))
	for _, n := range forest {
		if n == nil {
			continue
		}
		out = append(out, localize(n, locale))
	}
	return out
}

func localize(n *Node, locale string) *Node {
	cp := &Node{
		ID:       n.ID,
		Key:      n.Key,
		Title:    n.TitleFor(locale),
		Children: make([]*Node, 0, len(n.Children)),
	}
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		cp.Children = append(cp.Children, localize(c, locale))
	}
	return cp
}

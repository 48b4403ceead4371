package treeview

import (
	"github.com/barengs/smp/pkg/permtree"
	"github.com/charmbracelet/lipgloss"
)

// Styles 渲染样式
type Styles struct {
	Title         lipgloss.Style
	Guide         lipgloss.Style
	Cursor        lipgloss.Style
	Checked       lipgloss.Style
	Indeterminate lipgloss.Style
	Unchecked     lipgloss.Style
	Dirty         lipgloss.Style
	Status        lipgloss.Style
	Error         lipgloss.Style
}

// DefaultStyles 默认样式
func DefaultStyles() Styles {
	return Styles{
		Title:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1),
		Guide:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Cursor:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Checked:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Indeterminate: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Unchecked:     lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		Dirty:         lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Status:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// Glyph 复选框字形
func Glyph(s permtree.CheckedState) string {
	switch s {
	case permtree.Checked:
		return "[x]"
	case permtree.Indeterminate:
		return "[-]"
	default:
		return "[ ]"
	}
}

// Affordance 展开标记，叶子节点留空
func Affordance(r permtree.Row) string {
	switch {
	case !r.Expandable:
		return "  "
	case r.Expanded:
		return "▾ "
	default:
		return "▸ "
	}
}

func (s Styles) checkbox(state permtree.CheckedState) string {
	switch state {
	case permtree.Checked:
		return s.Checked.Render(Glyph(state))
	case permtree.Indeterminate:
		return s.Indeterminate.Render(Glyph(state))
	default:
		return s.Unchecked.Render(Glyph(state))
	}
}

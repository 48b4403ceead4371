// Package treeview 终端权限树：光标移动、勾选、展开折叠与保存
package treeview

import (
	"fmt"
	"strings"

	"github.com/barengs/smp/pkg/permtree"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Saver 保存角色选择集合
type Saver interface {
	SavePermissions(roleID int64, keys []string) ([]string, error)
}

// savedMsg 保存结果，gen 为发起保存时的修改代数
type savedMsg struct {
	keys []string
	gen  uint64
	err  error
}

// Model 权限树终端模型。
//
// 选择集合由模型持有：Tree 通过回调上报新集合，模型存下后用 SetSelected 回写。
type Model struct {
	tree   *permtree.Tree
	saver  Saver
	roleID int64
	locale string

	rows   []permtree.Row
	cursor int
	offset int
	height int

	keys   []string
	gen    uint64
	dirty  bool
	saving bool
	status string
	err    error

	keyMap KeyMap
	styles Styles
	help   help.Model
}

// New 创建模型，顶层节点默认展开
func New(menus []*permtree.Node, selected []string, roleID int64, locale string, saver Saver) *Model {
	m := &Model{
		saver:  saver,
		roleID: roleID,
		locale: locale,
		keys:   append([]string(nil), selected...),
		keyMap: DefaultKeyMap(),
		styles: DefaultStyles(),
		help:   help.New(),
	}
	m.tree = permtree.NewTree(menus, selected, m.onSelectionChange)
	for _, n := range menus {
		if n != nil && !n.IsLeaf() {
			m.tree.Expansion().Expand(n.ID)
		}
	}
	m.refresh(0, false)
	return m
}

func (m *Model) onSelectionChange(keys []string) {
	m.keys = keys
	m.tree.SetSelected(keys)
	m.gen++
	m.dirty = true
	m.status = ""
	m.err = nil
}

// Keys 当前选择集合
func (m *Model) Keys() []string {
	return m.keys
}

// Dirty 是否有未保存的修改
func (m *Model) Dirty() bool {
	return m.dirty
}

// Init 实现 tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update 实现 tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.help.Width = msg.Width
		m.scroll()
	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		// 保存期间又有修改，保留当前选择，仍为未保存
		if msg.gen != m.gen {
			m.status = fmt.Sprintf("saved %d keys, newer changes pending", len(msg.keys))
			return m, nil
		}
		m.keys = msg.keys
		m.tree.SetSelected(msg.keys)
		m.dirty = false
		m.status = fmt.Sprintf("saved %d keys", len(msg.keys))
		m.refresh(m.focused())
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return tea.Quit
	case key.Matches(msg, m.keyMap.Up):
		m.move(-1)
	case key.Matches(msg, m.keyMap.Down):
		m.move(1)
	case key.Matches(msg, m.keyMap.Toggle):
		if id, ok := m.focused(); ok {
			m.tree.Click(id)
			m.refresh(id, true)
		}
	case key.Matches(msg, m.keyMap.Expand):
		m.expand()
	case key.Matches(msg, m.keyMap.Collapse):
		m.collapse()
	case key.Matches(msg, m.keyMap.ExpandAll):
		id, ok := m.focused()
		m.tree.Expansion().ExpandAll(m.tree.Menus())
		m.refresh(id, ok)
	case key.Matches(msg, m.keyMap.CollapseAll):
		root, ok := m.rootOf(m.cursor)
		m.tree.Expansion().CollapseAll()
		m.refresh(root, ok)
	case key.Matches(msg, m.keyMap.Save):
		return m.save()
	}
	return nil
}

func (m *Model) save() tea.Cmd {
	if m.saving || m.saver == nil {
		return nil
	}
	m.saving = true
	m.status = "saving..."
	m.err = nil
	keys := append([]string(nil), m.keys...)
	saver, roleID, gen := m.saver, m.roleID, m.gen
	return func() tea.Msg {
		saved, err := saver.SavePermissions(roleID, keys)
		return savedMsg{keys: saved, gen: gen, err: err}
	}
}

// expand 折叠的节点展开，已展开的节点移到第一个子节点
func (m *Model) expand() {
	if len(m.rows) == 0 {
		return
	}
	r := m.rows[m.cursor]
	if !r.Expandable {
		return
	}
	if !r.Expanded {
		m.tree.ToggleExpanded(r.Node.ID)
		m.refresh(r.Node.ID, true)
		return
	}
	m.move(1)
}

// collapse 展开的节点折叠，否则跳到父节点
func (m *Model) collapse() {
	if len(m.rows) == 0 {
		return
	}
	r := m.rows[m.cursor]
	if r.Expanded {
		m.tree.ToggleExpanded(r.Node.ID)
		m.refresh(r.Node.ID, true)
		return
	}
	if p := m.parentIndex(m.cursor); p >= 0 {
		m.cursor = p
		m.scroll()
	}
}

func (m *Model) parentIndex(i int) int {
	depth := m.rows[i].Depth
	for j := i - 1; j >= 0; j-- {
		if m.rows[j].Depth < depth {
			return j
		}
	}
	return -1
}

func (m *Model) rootOf(i int) (int64, bool) {
	if len(m.rows) == 0 {
		return 0, false
	}
	for j := i; j >= 0; j-- {
		if m.rows[j].Depth == 0 {
			return m.rows[j].Node.ID, true
		}
	}
	return 0, false
}

// focused 光标所在节点，没有可见行时 ok 为 false
func (m *Model) focused() (int64, bool) {
	if len(m.rows) == 0 {
		return 0, false
	}
	return m.rows[m.cursor].Node.ID, true
}

func (m *Model) move(delta int) {
	m.cursor += delta
	m.clamp()
	m.scroll()
}

// refresh 重新计算可见行，ok 时光标尽量停留在 focus 节点
func (m *Model) refresh(focus int64, ok bool) {
	m.rows = m.tree.Rows(m.locale)
	for i, r := range m.rows {
		if ok && r.Node.ID == focus {
			m.cursor = i
			break
		}
	}
	m.clamp()
	m.scroll()
}

func (m *Model) clamp() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// visibleRows 树区域可用行数，0 表示不限
func (m *Model) visibleRows() int {
	if m.height <= 0 {
		return 0
	}
	// 标题两行、状态一行、帮助一行
	if n := m.height - 4; n > 0 {
		return n
	}
	return 1
}

func (m *Model) scroll() {
	n := m.visibleRows()
	if n == 0 {
		m.offset = 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+n {
		m.offset = m.cursor - n + 1
	}
}

// View 实现 tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	title := fmt.Sprintf("Role #%d permissions", m.roleID)
	if m.dirty {
		title += " " + m.styles.Dirty.Render("*")
	}
	sb.WriteString(m.styles.Title.Render(title))
	sb.WriteString("\n")

	if len(m.rows) == 0 {
		sb.WriteString(m.styles.Status.Render("no menus"))
		sb.WriteString("\n")
	}

	end := len(m.rows)
	if n := m.visibleRows(); n > 0 && m.offset+n < end {
		end = m.offset + n
	}
	for i := m.offset; i < end; i++ {
		sb.WriteString(m.renderRow(i))
		sb.WriteString("\n")
	}

	switch {
	case m.err != nil:
		sb.WriteString(m.styles.Error.Render("error: " + m.err.Error()))
	case m.status != "":
		sb.WriteString(m.styles.Status.Render(m.status))
	}
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keyMap))
	return sb.String()
}

func (m *Model) renderRow(i int) string {
	r := m.rows[i]
	line := Affordance(r) + m.styles.checkbox(r.State) + " "
	pointer := "  "
	if i == m.cursor {
		pointer = m.styles.Cursor.Render("> ")
		line += m.styles.Cursor.Render(r.Title)
	} else {
		line += r.Title
	}
	return pointer + m.styles.Guide.Render(r.Prefix()) + line
}

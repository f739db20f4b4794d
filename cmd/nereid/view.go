package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bnomei/nereid-sub000/internal/canvas"
	"github.com/bnomei/nereid-sub000/internal/datasource"
	"github.com/bnomei/nereid-sub000/internal/model"
	"github.com/bnomei/nereid-sub000/internal/snapshot"
)

// --- Messages ---

type fileChangedMsg struct{}

type snapshotReadyMsg struct {
	snap *snapshot.Snapshot
	err  error
}

type tickMsg struct{}

// --- Key bindings ---

type keyMap struct {
	Quit    key.Binding
	Tab     key.Binding
	Refresh key.Binding
	Up      key.Binding
	Down    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Copy    key.Binding
	CopyRef key.Binding
	Help    key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	Next:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next object")),
	Prev:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous object")),
	Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy text")),
	CopyRef: key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy ref")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// viewKeys maps single keys to views for fast navigation.
var viewKeys = map[string]viewID{
	"d": viewDiagram,
	"o": viewObjects,
	"t": viewText,
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Next, k.Refresh, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Refresh, k.Up, k.Down},
		{k.Next, k.Prev, k.Copy, k.CopyRef},
		{k.Help, k.Quit},
	}
}

// contextHelp returns help text appropriate for the current view.
func contextHelp(v viewID) string {
	switch v {
	case viewDiagram:
		return "n/p: select object | j/k: scroll | y/Y: copy text/ref | d/o/t: views | ?: help | q: quit"
	case viewObjects:
		return "j/k: select object | Y: copy ref | d/o/t: views | tab: next | ?: help | q: quit"
	default:
		return "j/k: scroll | y: copy text | d/o/t: views | tab: next | ?: help | q: quit"
	}
}

// --- Views ---

type viewID int

const (
	viewDiagram viewID = iota
	viewObjects
	viewText
	viewCount // sentinel
)

func (v viewID) String() string {
	switch v {
	case viewDiagram:
		return "Diagram"
	case viewObjects:
		return "Objects"
	case viewText:
		return "Text"
	}
	return "?"
}

// --- Model ---

type uiModel struct {
	watcher *datasource.Watcher
	snap    *snapshot.Snapshot
	loadErr error // last reload failure; snap keeps the previous good render
	path    string
	opts    model.RenderOptions

	activeView      viewID
	width           int
	height          int
	scrollPos       int
	selected        int // index into snap.Refs(), -1 when nothing is selected
	refreshInterval time.Duration

	highlight lipgloss.Style
	copy      func(string) error
	status    string
	logger    *slog.Logger

	help     help.Model
	showHelp bool

	lastRefresh time.Time
}

func newModel(w *datasource.Watcher, snap *snapshot.Snapshot, path string, opts model.RenderOptions) uiModel {
	return uiModel{
		watcher:     w,
		snap:        snap,
		path:        path,
		opts:        opts,
		selected:    -1,
		highlight:   highlightStyle("205"),
		copy:        clipboard.WriteAll,
		logger:      slog.Default(),
		help:        help.New(),
		lastRefresh: time.Now(),
	}
}

func highlightStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
}

func (m uiModel) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}

// selectedRef returns the selected object, if any.
func (m uiModel) selectedRef() (model.ObjectRef, bool) {
	refs := m.snap.Refs()
	if m.selected < 0 || m.selected >= len(refs) {
		return model.ObjectRef{}, false
	}
	return refs[m.selected], true
}

// selectRef selects ref when it is on screen.
func (m *uiModel) selectRef(ref model.ObjectRef) bool {
	for i, r := range m.snap.Refs() {
		if r == ref {
			m.selected = i
			return true
		}
	}
	return false
}

// contentHeight is the number of rows available below the title and tabs.
func (m uiModel) contentHeight() int {
	h := m.height - 5 // title + tabs + status + padding
	if m.loadErr != nil {
		h--
	}
	if m.showHelp {
		h -= 3
	}
	return max(1, h)
}

// reveal scrolls the diagram so the selected object's first row is visible.
func (m *uiModel) reveal() {
	ref, ok := m.selectedRef()
	if !ok || m.snap.Result.Index == nil {
		return
	}
	b, ok := m.snap.Result.Index.Bounds(ref)
	if !ok {
		return
	}
	if b.Top < m.scrollPos || b.Top >= m.scrollPos+m.contentHeight() {
		m.scrollPos = max(0, b.Top-1)
	}
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status = ""
		// Check single-key view shortcuts first (always available).
		if v, ok := viewKeys[msg.String()]; ok {
			m.activeView = v
			m.scrollPos = 0
			return m, nil
		}

		switch {
		case key.Matches(msg, keys.Quit):
			if m.watcher != nil {
				m.watcher.Close()
			}
			return m, tea.Quit

		case key.Matches(msg, keys.Tab):
			m.activeView = (m.activeView + 1) % viewCount
			m.scrollPos = 0

		case key.Matches(msg, keys.Refresh):
			return m, m.refreshSnapshot()

		case key.Matches(msg, keys.Up):
			if m.activeView == viewObjects {
				if m.selected > 0 {
					m.selected--
				}
			} else if m.scrollPos > 0 {
				m.scrollPos--
			}

		case key.Matches(msg, keys.Down):
			if m.activeView == viewObjects {
				if m.selected < len(m.snap.Refs())-1 {
					m.selected++
				}
			} else if m.snap != nil && m.scrollPos < m.snap.Result.Height-1 {
				m.scrollPos++
			}

		case key.Matches(msg, keys.Next):
			if n := len(m.snap.Refs()); n > 0 {
				m.selected = (m.selected + 1) % n
				m.reveal()
			}

		case key.Matches(msg, keys.Prev):
			if n := len(m.snap.Refs()); n > 0 {
				if m.selected <= 0 {
					m.selected = n - 1
				} else {
					m.selected--
				}
				m.reveal()
			}

		case key.Matches(msg, keys.Copy):
			if m.snap != nil {
				m.status = m.copyOut(m.snap.Result.Text, "diagram text")
			}

		case key.Matches(msg, keys.CopyRef):
			if ref, ok := m.selectedRef(); ok {
				m.status = m.copyOut(ref.String(), ref.String())
			} else {
				m.status = "nothing selected"
			}

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case fileChangedMsg:
		return m, m.refreshSnapshot()

	case snapshotReadyMsg:
		if msg.err != nil {
			if m.loadErr == nil || m.loadErr.Error() != msg.err.Error() {
				m.logger.Warn("reload failed", "path", m.path, "error", msg.err)
			}
			m.loadErr = msg.err
			return m, nil
		}
		if msg.snap != nil {
			m.swap(msg.snap)
		}

	case tickMsg:
		return m, tickEvery()
	}

	return m, nil
}

// swap installs a new snapshot, keeping the same object selected when it
// still exists and clamping the selection otherwise.
func (m *uiModel) swap(snap *snapshot.Snapshot) {
	prev, had := m.selectedRef()
	m.snap = snap
	m.loadErr = nil
	m.lastRefresh = time.Now()

	if had && m.selectRef(prev) {
		return
	}
	n := len(snap.Refs())
	switch {
	case n == 0:
		m.selected = -1
	case m.selected >= n:
		m.selected = n - 1
	}
}

func (m uiModel) copyOut(text, what string) string {
	if m.copy == nil {
		return "clipboard unavailable"
	}
	if err := m.copy(text); err != nil {
		m.logger.Warn("clipboard write failed", "error", err)
		return "copy failed: " + err.Error()
	}
	return "copied " + what
}

func (m uiModel) refreshSnapshot() tea.Cmd {
	path, opts := m.path, m.opts
	return func() tea.Msg {
		snap, err := snapshot.Build(path, opts)
		return snapshotReadyMsg{snap: snap, err: err}
	}
}

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1E1E2E")).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6C7086")).
				Background(lipgloss.Color("#313244")).
				Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#89B4FA"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8")).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#1E1E2E"))
)

// --- View rendering ---

func (m uiModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderTitleBar())
	b.WriteRune('\n')
	b.WriteString(m.renderTabBar())
	b.WriteRune('\n')
	b.WriteRune('\n')

	var content string
	switch m.activeView {
	case viewDiagram:
		content = m.renderDiagram()
	case viewObjects:
		content = m.renderObjects()
	case viewText:
		content = m.renderText()
	}

	// Apply scroll using a local variable; View has a value receiver.
	lines := strings.Split(content, "\n")
	scrollPos := m.scrollPos
	if m.activeView == viewObjects {
		// Keep the selected row on screen.
		scrollPos = max(0, m.selected+2-m.contentHeight()+1)
	}
	if scrollPos >= len(lines) {
		scrollPos = max(0, len(lines)-1)
	}
	if scrollPos > 0 {
		lines = lines[scrollPos:]
	}
	if len(lines) > m.contentHeight() {
		lines = lines[:m.contentHeight()]
	}
	content = truncateLines(strings.Join(lines, "\n"), m.width)
	b.WriteString(content)

	// Pad to fill screen.
	rendered := strings.Count(b.String(), "\n")
	bottom := m.height - 2
	if m.loadErr != nil {
		bottom--
	}
	for rendered < bottom {
		b.WriteRune('\n')
		rendered++
	}

	if m.loadErr != nil {
		b.WriteString(truncateLines(errorStyle.Render("error: "+oneLine(m.loadErr.Error())), m.width))
		b.WriteRune('\n')
	}

	if m.showHelp {
		b.WriteString(m.help.View(keys))
	} else {
		b.WriteString(m.renderStatusBar())
	}

	return b.String()
}

func (m uiModel) renderTitleBar() string {
	title := titleStyle.Render("nereid")
	stats := dimStyle.Render("no diagram")
	if m.snap != nil {
		stats = dimStyle.Render(fmt.Sprintf(
			"%d participants | %d messages | %d blocks | %dx%d",
			m.snap.Participants,
			m.snap.Messages,
			m.snap.Blocks,
			m.snap.Result.Width,
			m.snap.Result.Height,
		))
	}
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(title)-lipgloss.Width(stats)-2))
	return title + gap + stats
}

func (m uiModel) renderTabBar() string {
	var tabs []string
	for i := viewID(0); i < viewCount; i++ {
		if i == m.activeView {
			tabs = append(tabs, tabActiveStyle.Render(i.String()))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(i.String()))
		}
	}
	if ref, ok := m.selectedRef(); ok {
		tabs = append(tabs, dimStyle.Render(ref.Category+"/"+ref.Object))
	}
	return strings.Join(tabs, " ")
}

func (m uiModel) renderStatusBar() string {
	left := " " + contextHelp(m.activeView)
	if m.status != "" {
		left = " " + m.status
	}
	ago := time.Since(m.lastRefresh).Truncate(time.Second)
	right := fmt.Sprintf("refreshed %s ago ", ago)
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right)))
	return statusBarStyle.Render(left + gap + right)
}

// --- Diagram view ---

func (m uiModel) renderDiagram() string {
	if m.snap == nil {
		return dimStyle.Render("  (no diagram rendered yet)")
	}
	if m.snap.Result.Height == 0 {
		return dimStyle.Render("  (empty diagram)")
	}
	lines := m.snap.Result.Lines()
	ref, ok := m.selectedRef()
	if !ok {
		return strings.Join(lines, "\n")
	}
	spans := m.snap.Spans(ref)
	for y, line := range lines {
		lines[y] = paintLine(line, y, spans, m.highlight)
	}
	return strings.Join(lines, "\n")
}

// paintLine styles every rune of line whose cell lies inside one of the
// spans on row y. Columns are counted in cells, so wide runes advance by two.
func paintLine(line string, y int, spans []model.LineSpan, style lipgloss.Style) string {
	var row []model.LineSpan
	for _, s := range spans {
		if s.Row == y {
			row = append(row, s)
		}
	}
	if len(row) == 0 {
		return line
	}
	inside := func(col int) bool {
		for _, s := range row {
			if s.Contains(y, col) {
				return true
			}
		}
		return false
	}

	var b, run strings.Builder
	lit := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if lit {
			b.WriteString(style.Render(run.String()))
		} else {
			b.WriteString(run.String())
		}
		run.Reset()
	}
	col := 0
	for _, r := range line {
		in := inside(col)
		if in != lit {
			flush()
			lit = in
		}
		run.WriteRune(r)
		col += canvas.StringWidth(string(r))
	}
	flush()
	return b.String()
}

// --- Objects view ---

func (m uiModel) renderObjects() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Objects"))
	b.WriteRune('\n')
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-44s %-6s %s", "Ref", "Spans", "Bounds")))
	b.WriteRune('\n')

	refs := m.snap.Refs()
	if len(refs) == 0 {
		b.WriteString(dimStyle.Render("  (none)"))
		b.WriteRune('\n')
		return b.String()
	}
	for i, ref := range refs {
		spans := m.snap.Spans(ref)
		bounds := ""
		if r, ok := m.snap.Result.Index.Bounds(ref); ok {
			bounds = fmt.Sprintf("rows %d-%d cols %d-%d", r.Top, r.Bottom, r.Left, r.Right)
		}
		line := fmt.Sprintf("%-44s %-6d %s", truncate(ref.String(), 44), len(spans), bounds)
		if i == m.selected {
			b.WriteString(m.highlight.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteRune('\n')
	}
	return b.String()
}

// --- Text view ---

func (m uiModel) renderText() string {
	if m.snap == nil {
		return dimStyle.Render("  (no diagram rendered yet)")
	}
	return m.snap.Result.Text
}

// --- Helpers ---

// truncateLines truncates each line in content to at most width visible
// characters, preserving ANSI escape codes. This prevents terminal line
// wrapping when the window is resized narrower.
func truncateLines(content string, width int) string {
	if width <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if ansi.StringWidth(line) > width {
			lines[i] = ansi.Truncate(line, width, "")
		}
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	return ansi.Truncate(s, n, "...")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazytab/internal/filter"
	"github.com/rebeliceyang/lazytab/internal/ui/theme"
)

// ApplyFilterMsg is sent when the built filter should be applied
type ApplyFilterMsg struct {
	Expr filter.Expr
}

// SaveFilterMsg is sent when the current filter should be stored in
// the library
type SaveFilterMsg struct {
	Name string
	Expr filter.Expr
}

// CloseFilterBuilderMsg is sent when the filter builder should close
type CloseFilterBuilderMsg struct{}

// predicate kinds the builder cycles through when adding a condition
var predicateKinds = []string{
	"Contains",
	"Regex",
	"Equals",
	"GreaterThan",
	"GreaterThanOrEqual",
	"LessThan",
	"LessThanOrEqual",
	"Between",
	"InList",
	"StringLength",
	"IsEmpty",
	"IsNotEmpty",
	"IsNull",
	"NotNull",
}

// FilterBuilder provides an interactive UI for building a boolean
// filter tree. It holds the selection cursor as a Path and only ever
// moves it through tree editor results, so the cursor cannot go
// stale.
type FilterBuilder struct {
	Width  int
	Height int
	Theme  theme.Theme

	tree     *filter.Tree
	columns  []string
	selected filter.Path
	scroll   int

	// "" (navigate), "add", "edit", "group", "save"
	mode string

	columnIndex   int
	kindIndex     int
	valueInput    textinput.Model
	nameInput     textinput.Model
	caseSensitive bool
	insertPath    filter.Path
	groupAnd      bool

	validationError string
}

// NewFilterBuilder creates a new filter builder over the given columns
func NewFilterBuilder(th theme.Theme, columns []string) *FilterBuilder {
	value := textinput.New()
	value.Placeholder = "value"
	value.CharLimit = 256
	name := textinput.New()
	name.Placeholder = "filter name"
	name.CharLimit = 64

	return &FilterBuilder{
		Width:      80,
		Height:     30,
		Theme:      th,
		tree:       filter.NewTree(),
		columns:    columns,
		selected:   filter.Root(),
		valueInput: value,
		nameInput:  name,
		groupAnd:   true,
	}
}

// Tree exposes the tree under construction
func (fb *FilterBuilder) Tree() *filter.Tree {
	return fb.tree
}

// SetColumns updates the available columns for filtering
func (fb *FilterBuilder) SetColumns(columns []string) {
	fb.columns = columns
	if fb.columnIndex >= len(columns) {
		fb.columnIndex = 0
	}
}

// Restore replaces the tree (e.g. after loading from the library) and
// resets the cursor to the root
func (fb *FilterBuilder) Restore(e filter.Expr) {
	fb.selected = fb.tree.SetRoot(e)
	fb.scroll = 0
	fb.mode = ""
	fb.validationError = ""
}

// Update handles keyboard input
func (fb *FilterBuilder) Update(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch fb.mode {
	case "":
		return fb.handleNavigationMode(msg)
	case "add", "edit":
		return fb.handleConditionMode(msg)
	case "group":
		return fb.handleGroupMode(msg)
	case "save":
		return fb.handleSaveMode(msg)
	}
	return fb, nil
}

func (fb *FilterBuilder) handleNavigationMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	lines := fb.lines()
	idx := fb.selectedLine(lines)

	switch msg.String() {
	case "up", "k":
		if idx > 0 {
			fb.selected = lines[idx-1].path
		}
	case "down", "j":
		if idx+1 < len(lines) {
			fb.selected = lines[idx+1].path
		}
	case "a", "n":
		fb.startConditionEntry("add")
	case "e":
		fb.startEdit()
	case "g":
		fb.mode = "group"
		fb.groupAnd = true
	case "t":
		fb.tree.ToggleOp(fb.selected)
	case "d", "x":
		if !fb.selected.IsRoot() {
			fb.selected = fb.tree.Remove(fb.selected)
		}
	case "c":
		fb.Restore(filter.And())
	case "s":
		fb.mode = "save"
		fb.nameInput.SetValue("")
		fb.nameInput.Focus()
	case "enter":
		fb.validationError = ""
		expr := filter.Clone(fb.tree.Root())
		return fb, func() tea.Msg {
			return ApplyFilterMsg{Expr: expr}
		}
	case "esc":
		return fb, func() tea.Msg {
			return CloseFilterBuilderMsg{}
		}
	}
	return fb, nil
}

// startConditionEntry decides where a new condition will land: as the
// last child of a selected group, or as the next sibling of a
// selected condition.
func (fb *FilterBuilder) startConditionEntry(mode string) {
	node, ok := fb.tree.At(fb.selected)
	if !ok {
		return
	}
	switch n := node.(type) {
	case *filter.Group:
		fb.insertPath = fb.selected.Child(len(n.Children))
	case *filter.Condition:
		last := fb.selected[len(fb.selected)-1]
		fb.insertPath = fb.selected.Parent().Child(last + 1)
	}
	fb.mode = mode
	fb.kindIndex = 0
	fb.valueInput.SetValue("")
	fb.valueInput.Focus()
	fb.validationError = ""
}

func (fb *FilterBuilder) startEdit() {
	node, ok := fb.tree.At(fb.selected)
	if !ok {
		return
	}
	cond, ok := node.(*filter.Condition)
	if !ok {
		return
	}
	for i, col := range fb.columns {
		if col == cond.Column {
			fb.columnIndex = i
			break
		}
	}
	for i, kind := range predicateKinds {
		if kind == cond.Pred.Name() {
			fb.kindIndex = i
			break
		}
	}
	fb.valueInput.SetValue(predicateValueText(cond.Pred))
	fb.valueInput.Focus()
	fb.caseSensitive = predicateCaseSensitive(cond.Pred)
	fb.mode = "edit"
	fb.validationError = ""
}

func (fb *FilterBuilder) handleConditionMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fb.mode = ""
		fb.valueInput.Blur()
		fb.validationError = ""
		return fb, nil
	case "left":
		fb.columnIndex = (fb.columnIndex + len(fb.columns) - 1) % max(len(fb.columns), 1)
		return fb, nil
	case "right":
		fb.columnIndex = (fb.columnIndex + 1) % max(len(fb.columns), 1)
		return fb, nil
	case "shift+up":
		fb.kindIndex = (fb.kindIndex + len(predicateKinds) - 1) % len(predicateKinds)
		return fb, nil
	case "shift+down", "tab":
		fb.kindIndex = (fb.kindIndex + 1) % len(predicateKinds)
		return fb, nil
	case "ctrl+a":
		fb.caseSensitive = !fb.caseSensitive
		return fb, nil
	case "enter":
		return fb.commitCondition()
	}
	var cmd tea.Cmd
	fb.valueInput, cmd = fb.valueInput.Update(msg)
	return fb, cmd
}

func (fb *FilterBuilder) commitCondition() (*FilterBuilder, tea.Cmd) {
	if len(fb.columns) == 0 {
		fb.validationError = "no columns available"
		return fb, nil
	}
	pred, err := predicateFromKind(predicateKinds[fb.kindIndex], fb.valueInput.Value(), fb.caseSensitive)
	if err != nil {
		fb.validationError = err.Error()
		return fb, nil
	}
	cond := filter.Cond(fb.columns[fb.columnIndex], pred)

	if fb.mode == "edit" {
		fb.tree.Replace(fb.selected, cond)
	} else {
		fb.tree.Insert(fb.insertPath, cond)
		if node, ok := fb.tree.At(fb.insertPath); ok && node == cond {
			fb.selected = fb.insertPath
		}
	}
	fb.mode = ""
	fb.valueInput.Blur()
	fb.validationError = ""
	return fb, nil
}

func (fb *FilterBuilder) handleGroupMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fb.mode = ""
	case "tab", " ", "left", "right":
		fb.groupAnd = !fb.groupAnd
	case "enter":
		op := filter.GroupOr
		if fb.groupAnd {
			op = filter.GroupAnd
		}
		node, ok := fb.tree.At(fb.selected)
		if ok {
			switch n := node.(type) {
			case *filter.Condition:
				fb.tree.WrapInGroup(fb.selected, op)
			case *filter.Group:
				child := fb.selected.Child(len(n.Children))
				fb.tree.Insert(child, &filter.Group{Op: op})
				fb.selected = child
			}
		}
		fb.mode = ""
	}
	return fb, nil
}

func (fb *FilterBuilder) handleSaveMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fb.mode = ""
		fb.nameInput.Blur()
		return fb, nil
	case "enter":
		name := strings.TrimSpace(fb.nameInput.Value())
		if name == "" {
			fb.validationError = "enter a name for the saved filter"
			return fb, nil
		}
		fb.mode = ""
		fb.nameInput.Blur()
		fb.validationError = ""
		expr := filter.Clone(fb.tree.Root())
		return fb, func() tea.Msg {
			return SaveFilterMsg{Name: name, Expr: expr}
		}
	}
	var cmd tea.Cmd
	fb.nameInput, cmd = fb.nameInput.Update(msg)
	return fb, cmd
}

// View renders the filter builder
func (fb *FilterBuilder) View() string {
	var sections []string

	titleStyle := lipgloss.NewStyle().
		Foreground(fb.Theme.Foreground).
		Background(fb.Theme.Info).
		Padding(0, 1).
		Bold(true)
	sections = append(sections, titleStyle.Render("Filter"))

	instructionStyle := lipgloss.NewStyle().
		Foreground(fb.Theme.Metadata).
		Padding(0, 1)

	var instructions string
	switch fb.mode {
	case "add", "edit":
		instructions = "←→ column  Tab type  Ctrl+A case  Enter confirm  Esc cancel"
	case "group":
		instructions = "Tab AND/OR  Enter confirm  Esc cancel"
	case "save":
		instructions = "Type name, Enter to save, Esc to cancel"
	default:
		instructions = "a=Add g=Group t=And/Or w/g=Wrap e=Edit d=Delete s=Save Enter=Apply Esc=Close"
	}
	sections = append(sections, instructionStyle.Render(instructions))

	if fb.validationError != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(fb.Theme.Error).
			Padding(0, 1).
			Bold(true)
		sections = append(sections, errorStyle.Render("Error: "+fb.validationError))
	}

	sections = append(sections, fb.renderTree())

	switch fb.mode {
	case "add", "edit":
		sections = append(sections, fb.renderConditionForm())
	case "group":
		label := "OR"
		if fb.groupAnd {
			label = "AND"
		}
		sections = append(sections, fmt.Sprintf("\nGroup type: %s", label))
	case "save":
		sections = append(sections, "\nName: "+fb.nameInput.View())
	}

	content := strings.Join(sections, "\n")

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(fb.Theme.Border).
		Foreground(fb.Theme.Foreground).
		Width(fb.Width).
		Height(fb.Height).
		Padding(1)

	return containerStyle.Render(content)
}

func (fb *FilterBuilder) renderTree() string {
	lines := fb.lines()
	selectedIdx := fb.selectedLine(lines)

	maxRows := fb.Height - 8
	if maxRows < 1 {
		maxRows = 1
	}
	if selectedIdx < fb.scroll {
		fb.scroll = selectedIdx
	}
	if selectedIdx >= fb.scroll+maxRows {
		fb.scroll = selectedIdx - maxRows + 1
	}

	var out []string
	end := min(fb.scroll+maxRows, len(lines))
	for i := fb.scroll; i < end; i++ {
		line := lines[i]
		style := lipgloss.NewStyle().Foreground(fb.Theme.ConditionText)
		if line.isGroup {
			style = style.Foreground(fb.Theme.GroupLabel).Bold(true)
		}
		if i == selectedIdx {
			style = style.Background(fb.Theme.Selection).Bold(true)
		}
		indent := strings.Repeat("  ", line.indent)
		out = append(out, style.Render(indent+line.label))
	}
	return strings.Join(out, "\n")
}

func (fb *FilterBuilder) renderConditionForm() string {
	column := ""
	if fb.columnIndex < len(fb.columns) {
		column = fb.columns[fb.columnIndex]
	}
	kind := predicateKinds[fb.kindIndex]
	caseLabel := "[aA]"
	if fb.caseSensitive {
		caseLabel = "[Aa]"
	}
	return fmt.Sprintf("\nColumn: %s\nType: %s %s\nValue: %s",
		column, kind, caseLabel, fb.valueInput.View())
}

// exprLine is one row of the flattened tree rendering
type exprLine struct {
	indent  int
	label   string
	path    filter.Path
	isGroup bool
}

// lines flattens the tree depth-first, root first, the way the tree
// is displayed
func (fb *FilterBuilder) lines() []exprLine {
	var lines []exprLine
	flattenExpr(fb.tree.Root(), filter.Root(), 0, &lines)
	return lines
}

func flattenExpr(e filter.Expr, path filter.Path, indent int, lines *[]exprLine) {
	switch n := e.(type) {
	case *filter.Condition:
		*lines = append(*lines, exprLine{indent: indent, label: n.Summary(), path: path})
	case *filter.Group:
		label := strings.ToUpper(string(n.Op))
		if indent == 0 {
			label = "Root " + label
		}
		*lines = append(*lines, exprLine{indent: indent, label: label, path: path, isGroup: true})
		for i, child := range n.Children {
			flattenExpr(child, path.Child(i), indent+1, lines)
		}
	}
}

func (fb *FilterBuilder) selectedLine(lines []exprLine) int {
	for i, line := range lines {
		if line.path.Equal(fb.selected) {
			return i
		}
	}
	return 0
}

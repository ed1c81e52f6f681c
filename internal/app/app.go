package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazytab/internal/config"
	"github.com/rebeliceyang/lazytab/internal/dataset"
	"github.com/rebeliceyang/lazytab/internal/export"
	"github.com/rebeliceyang/lazytab/internal/filter"
	"github.com/rebeliceyang/lazytab/internal/store"
	"github.com/rebeliceyang/lazytab/internal/styling"
	"github.com/rebeliceyang/lazytab/internal/ui/components"
	"github.com/rebeliceyang/lazytab/internal/ui/help"
	"github.com/rebeliceyang/lazytab/internal/ui/theme"
)

// ViewMode tracks which surface currently owns the keyboard
type ViewMode int

const (
	NormalMode ViewMode = iota
	FilterMode
	LibraryMode
	HelpMode
)

// App is the main application model
type App struct {
	mode   ViewMode
	config *config.Config
	theme  theme.Theme

	width  int
	height int

	// Data
	tableName string
	table     *dataset.Table
	columns   []string

	// Active filter
	expr filter.Expr
	mask filter.Mask

	// Conditional styling
	styleSet *styling.StyleSet
	applied  *styling.Applied

	// Components
	tableView     *components.TableView
	filterBuilder *components.FilterBuilder

	// Filter library
	library      *store.Store
	savedFilters []store.SavedFilter
	librarySel   int

	// Error overlay
	showError    bool
	errorOverlay *components.ErrorOverlay

	statusMsg string
}

// SavedFiltersLoadedMsg is sent when the library listing completes
type SavedFiltersLoadedMsg struct {
	Filters []store.SavedFilter
	Err     error
}

// FilterSavedMsg is sent when a filter has been written to the library
type FilterSavedMsg struct {
	Saved store.SavedFilter
	Err   error
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Title   string
	Message string
}

// New creates a new App instance for the given table. lib may be nil
// when the filter library is disabled.
func New(cfg *config.Config, tableName string, tbl *dataset.Table, styleSet *styling.StyleSet, lib *store.Store) *App {
	themeName := "default"
	if cfg != nil && cfg.UI.Theme != "" {
		themeName = cfg.UI.Theme
	}
	th := theme.GetTheme(themeName)

	a := &App{
		mode:         NormalMode,
		config:       cfg,
		theme:        th,
		tableName:    tableName,
		table:        tbl,
		columns:      tbl.ColumnNames(),
		styleSet:     styleSet,
		tableView:    components.NewTableView(),
		library:      lib,
		errorOverlay: components.NewErrorOverlay(th),
	}

	if styleSet != nil {
		applied, err := styleSet.Apply(tbl)
		if err != nil {
			a.statusMsg = fmt.Sprintf("style set %q disabled: %v", styleSet.Name, err)
		} else {
			a.applied = applied
		}
	}

	a.refreshTable()
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ErrorMsg:
		a.ShowError(msg.Title, msg.Message)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case components.ApplyFilterMsg:
		a.applyFilter(msg.Expr)
		a.mode = NormalMode
		a.filterBuilder = nil
		return a, nil

	case components.SaveFilterMsg:
		return a, a.saveFilter(msg.Name, msg.Expr)

	case components.CloseFilterBuilderMsg:
		a.mode = NormalMode
		a.filterBuilder = nil
		return a, nil

	case FilterSavedMsg:
		if msg.Err != nil {
			a.ShowError("Library Error", fmt.Sprintf("Failed to save filter:\n\n%v", msg.Err))
			return a, nil
		}
		a.statusMsg = fmt.Sprintf("saved filter %q", msg.Saved.Name)
		return a, nil

	case SavedFiltersLoadedMsg:
		if msg.Err != nil {
			a.ShowError("Library Error", fmt.Sprintf("Failed to load filter library:\n\n%v", msg.Err))
			return a, nil
		}
		a.savedFilters = msg.Filters
		a.librarySel = 0
		a.mode = LibraryMode
		return a, nil

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Error overlay consumes everything except dismiss and quit
	if a.showError {
		switch msg.String() {
		case "esc", "enter":
			a.DismissError()
		case "q", "ctrl+c":
			return a, tea.Quit
		}
		return a, nil
	}

	switch a.mode {
	case FilterMode:
		if a.filterBuilder == nil {
			a.mode = NormalMode
			return a, nil
		}
		var cmd tea.Cmd
		a.filterBuilder, cmd = a.filterBuilder.Update(msg)
		return a, cmd

	case LibraryMode:
		return a.handleLibraryKey(msg)

	case HelpMode:
		switch msg.String() {
		case "esc", "?", "q":
			a.mode = NormalMode
		case "ctrl+c":
			return a, tea.Quit
		}
		return a, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "?":
		a.mode = HelpMode
	case "f":
		fb := components.NewFilterBuilder(a.theme, a.columns)
		if a.expr != nil {
			fb.Restore(a.expr)
		}
		a.filterBuilder = fb
		a.mode = FilterMode
	case "F":
		a.applyFilter(nil)
		a.statusMsg = "filter cleared"
	case "l":
		if a.library == nil {
			a.statusMsg = "filter library is disabled"
			return a, nil
		}
		return a, a.loadLibrary
	case "y":
		a.copySelectedRow()
	case "E":
		a.exportFiltered()
	case "up", "k":
		a.tableView.MoveSelection(-1)
	case "down", "j":
		a.tableView.MoveSelection(1)
	case "ctrl+u":
		a.tableView.PageUp()
	case "ctrl+d":
		a.tableView.PageDown()
	}
	return a, nil
}

func (a *App) handleLibraryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		a.mode = NormalMode
	case "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.librarySel > 0 {
			a.librarySel--
		}
	case "down", "j":
		if a.librarySel < len(a.savedFilters)-1 {
			a.librarySel++
		}
	case "enter":
		if a.librarySel >= 0 && a.librarySel < len(a.savedFilters) {
			saved := a.savedFilters[a.librarySel]
			a.applyFilter(saved.Expr)
			a.statusMsg = fmt.Sprintf("applied filter %q", saved.Name)
			a.mode = NormalMode
		}
	case "d":
		if a.librarySel >= 0 && a.librarySel < len(a.savedFilters) {
			saved := a.savedFilters[a.librarySel]
			if err := a.library.DeleteFilter(saved.ID); err != nil {
				a.ShowError("Library Error", fmt.Sprintf("Failed to delete filter:\n\n%v", err))
				return a, nil
			}
			a.savedFilters = append(a.savedFilters[:a.librarySel], a.savedFilters[a.librarySel+1:]...)
			if a.librarySel >= len(a.savedFilters) && a.librarySel > 0 {
				a.librarySel--
			}
		}
	}
	return a, nil
}

// applyFilter evaluates expr against the table and swaps in the new
// mask. A nil expr clears the filter. Evaluation errors leave the
// current mask untouched.
func (a *App) applyFilter(expr filter.Expr) {
	if expr == nil {
		a.expr = nil
		a.mask = nil
		a.refreshTable()
		return
	}

	mask, err := filter.Evaluate(expr, a.table)
	if err != nil {
		a.ShowError("Filter Error", fmt.Sprintf("Failed to evaluate filter:\n\n%v", err))
		return
	}

	a.expr = expr
	a.mask = mask
	a.refreshTable()
	a.statusMsg = fmt.Sprintf("%d of %d rows match", mask.Count(), a.table.NumRows())
}

// refreshTable rebuilds the visible row set from the table and the
// active mask.
func (a *App) refreshTable() {
	total := a.table.NumRows()
	maxLen := 0
	if a.config != nil {
		maxLen = a.config.Data.MaxCellDisplayLength
	}

	var rows [][]string
	var indices []int
	for i := 0; i < total; i++ {
		if a.mask != nil && !a.mask[i] {
			continue
		}
		cells := make([]string, len(a.columns))
		for j := range a.columns {
			cell := a.table.CellString(i, j)
			if maxLen > 0 && len(cell) > maxLen {
				cell = cell[:maxLen]
			}
			cells[j] = cell
		}
		rows = append(rows, cells)
		indices = append(indices, i)
	}

	a.tableView.Styles = a.applied
	a.tableView.SetData(a.columns, rows, indices, total)
}

// copySelectedRow copies the selected row's cells to the clipboard,
// tab separated.
func (a *App) copySelectedRow() {
	cells := a.tableView.SelectedCells()
	if cells == nil {
		return
	}
	if err := clipboard.WriteAll(strings.Join(cells, "\t")); err != nil {
		a.statusMsg = fmt.Sprintf("clipboard: %v", err)
		return
	}
	a.statusMsg = "row copied"
}

// exportFiltered writes the currently visible rows to a CSV file in
// the working directory.
func (a *App) exportFiltered() {
	path := fmt.Sprintf("lazytab-export-%s.csv", time.Now().Format("20060102-150405"))
	if err := export.ExportCSV(a.table, a.mask, path); err != nil {
		a.ShowError("Export Error", fmt.Sprintf("Failed to export rows:\n\n%v", err))
		return
	}
	a.statusMsg = fmt.Sprintf("exported %d rows to %s", len(a.tableView.Rows), path)
}

// saveFilter writes a filter to the library in the background
func (a *App) saveFilter(name string, expr filter.Expr) tea.Cmd {
	if a.library == nil {
		a.statusMsg = "filter library is disabled"
		return nil
	}
	return func() tea.Msg {
		saved, err := a.library.SaveFilter(name, expr)
		return FilterSavedMsg{Saved: saved, Err: err}
	}
}

// loadLibrary lists saved filters in the background
func (a *App) loadLibrary() tea.Msg {
	filters, err := a.library.ListFilters()
	return SavedFiltersLoadedMsg{Filters: filters, Err: err}
}

// View implements tea.Model
func (a *App) View() string {
	if a.showError {
		return lipgloss.Place(
			a.width, a.height,
			lipgloss.Center, lipgloss.Center,
			a.errorOverlay.View(),
		)
	}

	switch a.mode {
	case FilterMode:
		if a.filterBuilder != nil {
			return lipgloss.Place(
				a.width, a.height,
				lipgloss.Center, lipgloss.Center,
				a.filterBuilder.View(),
			)
		}
	case LibraryMode:
		return lipgloss.Place(
			a.width, a.height,
			lipgloss.Center, lipgloss.Center,
			a.renderLibrary(),
		)
	case HelpMode:
		return help.Render(a.width, a.height, lipgloss.NewStyle())
	}

	return a.renderNormalView()
}

// renderNormalView renders the table with top and bottom bars
func (a *App) renderNormalView() string {
	topBarLeft := "lazytab — " + a.tableName
	if a.expr != nil {
		topBarLeft += "  [filtered]"
	}
	topBarContent := a.formatStatusBar(topBarLeft, "? Help")

	topBar := lipgloss.NewStyle().
		Width(a.width).
		Background(a.theme.BorderFocused).
		Foreground(lipgloss.Color("230")).
		Padding(0, 2).
		Render(topBarContent)

	bottomBarLeft := "[f] Filter | [l] Library | [y] Copy row | [q] Quit"
	if a.statusMsg != "" {
		bottomBarLeft = a.statusMsg
	}
	bottomBarContent := a.formatStatusBar(bottomBarLeft, "? Help")

	bottomBar := lipgloss.NewStyle().
		Width(a.width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(bottomBarContent)

	a.tableView.Width = a.width
	a.tableView.Height = a.height - 2
	if a.tableView.Height < 5 {
		a.tableView.Height = 5
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		topBar,
		a.tableView.View(),
		bottomBar,
	)
}

// renderLibrary renders the saved filter picker
func (a *App) renderLibrary() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(a.theme.BorderFocused).
		Padding(0, 1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Filter Library"))
	b.WriteString("\n\n")

	if len(a.savedFilters) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Foreground(a.theme.Metadata).
			Italic(true).
			Render("  (no saved filters)"))
	}

	for i, saved := range a.savedFilters {
		line := fmt.Sprintf("%s  %s",
			saved.Name,
			saved.UpdatedAt.Format("2006-01-02 15:04"))
		if i == a.librarySel {
			line = lipgloss.NewStyle().
				Background(a.theme.Selection).
				Foreground(a.theme.Foreground).
				Bold(true).
				Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Foreground(a.theme.Metadata).
		Italic(true).
		Render("[enter] Apply  [d] Delete  [esc] Close"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.theme.BorderFocused).
		Padding(1, 2).
		Width(60).
		Render(b.String())
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	availableWidth := a.width - 4
	if availableWidth < 0 {
		availableWidth = 0
	}

	leftLen := len(left)
	rightLen := len(right)

	if leftLen+rightLen > availableWidth {
		if availableWidth > rightLen {
			return left[:availableWidth-rightLen] + right
		}
		if availableWidth <= leftLen {
			return left[:availableWidth]
		}
		return left
	}

	spacing := availableWidth - leftLen - rightLen
	return left + lipgloss.NewStyle().Width(spacing).Render("") + right
}

// ShowError displays an error overlay with the given title and message
func (a *App) ShowError(title, message string) {
	a.errorOverlay.SetError(title, message)
	a.showError = true
}

// DismissError hides the error overlay
func (a *App) DismissError() {
	a.showError = false
}

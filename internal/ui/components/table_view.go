package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazytab/internal/styling"
)

// TableView displays filtered table data with virtual scrolling.
// Rows holds the formatted cells of the rows surviving the filter
// mask; RowIndices maps each displayed row back to its table row so
// style rules evaluated against the full table line up.
type TableView struct {
	Columns    []string
	Rows       [][]string
	RowIndices []int
	Width      int
	Height     int
	Style      lipgloss.Style

	// Styling applied per source row, may be nil
	Styles *styling.Applied

	// Virtual scrolling state
	TopRow      int
	VisibleRows int
	SelectedRow int
	TotalRows   int

	// Column widths (calculated)
	ColumnWidths []int
}

// NewTableView creates a new table view
func NewTableView() *TableView {
	return &TableView{
		Columns:      []string{},
		Rows:         [][]string{},
		ColumnWidths: []int{},
	}
}

// SetData sets the visible rows. rowIndices carries the source row of
// each visible row; totalRows is the unfiltered row count.
func (tv *TableView) SetData(columns []string, rows [][]string, rowIndices []int, totalRows int) {
	tv.Columns = columns
	tv.Rows = rows
	tv.RowIndices = rowIndices
	tv.TotalRows = totalRows
	if tv.SelectedRow >= len(rows) {
		tv.SelectedRow = 0
		tv.TopRow = 0
	}
	tv.calculateColumnWidths()
}

// calculateColumnWidths calculates optimal column widths
func (tv *TableView) calculateColumnWidths() {
	if len(tv.Columns) == 0 {
		return
	}

	tv.ColumnWidths = make([]int, len(tv.Columns))

	// Start with column header lengths
	for i, col := range tv.Columns {
		tv.ColumnWidths[i] = len(col)
	}

	// Check row data
	for _, row := range tv.Rows {
		for i, cell := range row {
			if i < len(tv.ColumnWidths) {
				cellLen := len(cell)
				if cellLen > tv.ColumnWidths[i] {
					tv.ColumnWidths[i] = cellLen
				}
			}
		}
	}

	// Apply max width constraint
	maxWidth := 50
	for i := range tv.ColumnWidths {
		if tv.ColumnWidths[i] > maxWidth {
			tv.ColumnWidths[i] = maxWidth
		}
		// Min width
		if tv.ColumnWidths[i] < 10 {
			tv.ColumnWidths[i] = 10
		}
	}
}

// SelectedIndex returns the source row index of the selection, or -1
// when nothing is visible.
func (tv *TableView) SelectedIndex() int {
	if tv.SelectedRow < 0 || tv.SelectedRow >= len(tv.RowIndices) {
		return -1
	}
	return tv.RowIndices[tv.SelectedRow]
}

// SelectedCells returns the formatted cells of the selected row.
func (tv *TableView) SelectedCells() []string {
	if tv.SelectedRow < 0 || tv.SelectedRow >= len(tv.Rows) {
		return nil
	}
	return tv.Rows[tv.SelectedRow]
}

// View renders the table
func (tv *TableView) View() string {
	if len(tv.Columns) == 0 {
		return tv.Style.Render("No data")
	}

	var b strings.Builder

	// Render header
	b.WriteString(tv.renderHeader())
	b.WriteString("\n")
	b.WriteString(tv.renderSeparator())
	b.WriteString("\n")

	// Calculate how many rows we can show
	tv.VisibleRows = tv.Height - 3 // Header + separator + status

	// Render visible rows
	endRow := tv.TopRow + tv.VisibleRows
	if endRow > len(tv.Rows) {
		endRow = len(tv.Rows)
	}

	for i := tv.TopRow; i < endRow; i++ {
		isSelected := i == tv.SelectedRow
		b.WriteString(tv.renderRow(i, isSelected))
		if i < endRow-1 {
			b.WriteString("\n")
		}
	}

	// Render status
	b.WriteString("\n")
	b.WriteString(tv.renderStatus())

	return tv.Style.Width(tv.Width).Height(tv.Height).Render(b.String())
}

func (tv *TableView) renderHeader() string {
	var parts []string
	for i, col := range tv.Columns {
		width := tv.ColumnWidths[i]
		parts = append(parts, tv.pad(col, width))
	}
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("105")).
		Background(lipgloss.Color("236"))
	return headerStyle.Render(" " + strings.Join(parts, " │ ") + " ")
}

func (tv *TableView) renderSeparator() string {
	var parts []string
	for _, width := range tv.ColumnWidths {
		parts = append(parts, strings.Repeat("─", width))
	}
	separatorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))
	return separatorStyle.Render("─" + strings.Join(parts, "─┼─") + "─")
}

func (tv *TableView) renderRow(visIdx int, selected bool) string {
	row := tv.Rows[visIdx]
	srcRow := -1
	if visIdx < len(tv.RowIndices) {
		srcRow = tv.RowIndices[visIdx]
	}

	if selected {
		var parts []string
		for i, cell := range row {
			if i >= len(tv.ColumnWidths) {
				break
			}
			parts = append(parts, tv.pad(cell, tv.ColumnWidths[i]))
		}
		return lipgloss.NewStyle().
			Background(lipgloss.Color("25")).
			Foreground(lipgloss.Color("15")).
			Bold(true).
			Render(" " + strings.Join(parts, " │ ") + " ")
	}

	rowStyle := lipgloss.NewStyle()
	if tv.Styles != nil && srcRow >= 0 {
		if st, ok := tv.Styles.RowStyle(srcRow); ok {
			rowStyle = st.Render()
		}
	}

	var parts []string
	for i, cell := range row {
		if i >= len(tv.ColumnWidths) {
			break
		}
		padded := tv.pad(cell, tv.ColumnWidths[i])
		cellStyle := rowStyle
		if tv.Styles != nil && srcRow >= 0 && i < len(tv.Columns) {
			if st, ok := tv.Styles.CellStyle(srcRow, tv.Columns[i]); ok {
				cellStyle = st.Render()
			}
		}
		parts = append(parts, cellStyle.Render(padded))
	}

	return " " + strings.Join(parts, " │ ") + " "
}

func (tv *TableView) renderStatus() string {
	showing := fmt.Sprintf(" %d of %d rows match", len(tv.Rows), tv.TotalRows)
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(showing)
}

func (tv *TableView) pad(s string, width int) string {
	if len(s) > width {
		return s[:width-3] + "..."
	}
	return s + strings.Repeat(" ", width-len(s))
}

// MoveSelection moves the selection up or down
func (tv *TableView) MoveSelection(delta int) {
	tv.SelectedRow += delta

	// Bounds checking
	if tv.SelectedRow < 0 {
		tv.SelectedRow = 0
	}
	if tv.SelectedRow >= len(tv.Rows) {
		tv.SelectedRow = len(tv.Rows) - 1
	}

	// Adjust visible window if needed
	if tv.SelectedRow < tv.TopRow {
		tv.TopRow = tv.SelectedRow
	}
	if tv.SelectedRow >= tv.TopRow+tv.VisibleRows {
		tv.TopRow = tv.SelectedRow - tv.VisibleRows + 1
	}
}

// PageUp/PageDown
func (tv *TableView) PageUp() {
	tv.SelectedRow -= tv.VisibleRows
	if tv.SelectedRow < 0 {
		tv.SelectedRow = 0
	}
	tv.TopRow = tv.SelectedRow
}

func (tv *TableView) PageDown() {
	tv.SelectedRow += tv.VisibleRows
	if tv.SelectedRow >= len(tv.Rows) {
		tv.SelectedRow = len(tv.Rows) - 1
	}
	tv.TopRow = tv.SelectedRow
	if tv.TopRow+tv.VisibleRows > len(tv.Rows) {
		tv.TopRow = len(tv.Rows) - tv.VisibleRows
		if tv.TopRow < 0 {
			tv.TopRow = 0
		}
	}
}

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/parcellink/internal/types"
)

const truncationTail = "…"

// ConsolePrinter renders a traversal report for a terminal.
type ConsolePrinter struct {
	w            io.Writer
	color        bool
	maxCellWidth int // 0 disables truncation

	heading color.Style
	hop     color.Style
	muted   color.Style
}

// NewConsolePrinter creates a printer writing to w.
func NewConsolePrinter(w io.Writer, useColor bool, maxCellWidth int) *ConsolePrinter {
	return &ConsolePrinter{
		w:            w,
		color:        useColor,
		maxCellWidth: maxCellWidth,
		heading:      color.New(color.FgCyan, color.OpBold),
		hop:          color.New(color.FgYellow),
		muted:        color.New(color.FgGray),
	}
}

func (p *ConsolePrinter) paint(style color.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Sprint(s)
}

// Print writes one section per dataset followed by the summary line.
func (p *ConsolePrinter) Print(summary Summary, exports []*types.Table) {
	byName := make(map[string]*types.Table, len(exports))
	for _, t := range exports {
		byName[t.Name] = t
	}

	title := fmt.Sprintf("Parcel linkage from %s", summary.Start)
	rule := strings.Repeat("=", runewidth.StringWidth(title)+4)
	fmt.Fprintln(p.w, rule)
	fmt.Fprintf(p.w, "  %s\n", p.paint(p.heading, title))
	fmt.Fprintln(p.w, rule)

	for _, name := range summary.Names() {
		ds, _ := summary.Dataset(name)
		fmt.Fprintln(p.w)
		p.printSection(ds.Name)

		if ds.Excluded {
			fmt.Fprintln(p.w, p.paint(p.muted, "  no identifier columns, dataset excluded"))
			continue
		}
		fmt.Fprintf(p.w, "  active columns: %s\n", strings.Join(ds.ActiveColumns, ", "))
		fmt.Fprintf(p.w, "  matched rows:   %d / %d\n", ds.Matched, ds.Rows)

		table, ok := byName[ds.Name]
		if !ok || table.Len() == 0 {
			fmt.Fprintln(p.w, p.paint(p.muted, "  no matching records"))
			continue
		}
		p.printTable(table)
	}

	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "[SUMMARY] discovered identifiers: %d, matched rows: %d, levels: %d\n",
		summary.Discovered, summary.TotalMatched, summary.Levels)
}

func (p *ConsolePrinter) printSection(title string) {
	fmt.Fprintf(p.w, "[%s]\n", p.paint(p.heading, title))
	fmt.Fprintln(p.w, strings.Repeat("-", runewidth.StringWidth(title)+2))
}

// printTable writes a width-aligned table. Widths are measured in terminal
// cells so Hangul stays aligned.
func (p *ConsolePrinter) printTable(t *types.Table) {
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = p.clampWidth(runewidth.StringWidth(col))
	}
	for _, rec := range t.Rows {
		for i, v := range rec.Values(t.Columns) {
			if w := p.clampWidth(runewidth.StringWidth(v)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	fmt.Fprintf(p.w, "  %s\n", p.formatRow(t.Columns, t.Columns, widths, true))
	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	fmt.Fprintf(p.w, "  %s\n", strings.Join(seps, "-+-"))
	for _, rec := range t.Rows {
		fmt.Fprintf(p.w, "  %s\n", p.formatRow(t.Columns, rec.Values(t.Columns), widths, false))
	}
}

func (p *ConsolePrinter) formatRow(columns, values []string, widths []int, header bool) string {
	cells := make([]string, len(values))
	for i, v := range values {
		cell := runewidth.FillRight(p.fit(v, widths[i]), widths[i])
		if !header && columns[i] == HopColumn {
			cell = p.paint(p.hop, cell)
		}
		cells[i] = cell
	}
	return strings.Join(cells, " | ")
}

func (p *ConsolePrinter) fit(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, truncationTail)
}

func (p *ConsolePrinter) clampWidth(w int) int {
	if p.maxCellWidth > 0 && w > p.maxCellWidth {
		return p.maxCellWidth
	}
	return w
}

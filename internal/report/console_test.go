package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/parcellink/internal/types"
)

func TestConsolePrinter_Print(t *testing.T) {
	tables, result := fixture(t)
	exports := Assemble(result, tables)

	var buf bytes.Buffer
	NewConsolePrinter(&buf, false, 0).Print(Summarize(result, tables), exports)
	out := buf.String()

	assert.Contains(t, out, "Parcel linkage from 0000000000000000001")
	assert.Contains(t, out, "[moves]")
	assert.Contains(t, out, "active columns: 이동전_필지코드, 이동후_필지코드")
	assert.Contains(t, out, "matched rows:   2 / 3")
	assert.Contains(t, out, "[ledger]")
	assert.Contains(t, out, "no identifier columns, dataset excluded")
	assert.Contains(t, out, "[empty]")
	assert.Contains(t, out, "no matching records")
	assert.Contains(t, out, "[SUMMARY] discovered identifiers: 3, matched rows: 3, levels: 2")
	assert.NotContains(t, out, "\x1b[", "color codes must be disabled")

	// Sections keep dataset order.
	assert.Less(t, strings.Index(out, "[moves]"), strings.Index(out, "[cancels]"))
	assert.Less(t, strings.Index(out, "[cancels]"), strings.Index(out, "[ledger]"))
}

func TestConsolePrinter_AlignsWideCharacters(t *testing.T) {
	tb := types.NewTable("t", []string{"필지코드", HopColumn})
	require.NoError(t, tb.AppendRow([]string{"1", "0"}))
	require.NoError(t, tb.AppendRow([]string{"가나다라마바사", "12"}))

	var buf bytes.Buffer
	NewConsolePrinter(&buf, false, 0).printTable(tb)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	width := runewidth.StringWidth(lines[0])
	for _, line := range lines[1:] {
		assert.Equal(t, width, runewidth.StringWidth(line), "line %q", line)
	}
}

func TestConsolePrinter_TruncatesLongCells(t *testing.T) {
	tb := types.NewTable("t", []string{"비고"})
	require.NoError(t, tb.AppendRow([]string{strings.Repeat("가", 20)}))

	var buf bytes.Buffer
	NewConsolePrinter(&buf, false, 6).printTable(tb)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], truncationTail)
	assert.LessOrEqual(t, runewidth.StringWidth(strings.TrimSpace(lines[2])), 6)
}

package graph

import (
	"reflect"
	"testing"

	"github.com/dbsmedya/parcellink/internal/types"
)

func newTable(t *testing.T, name string, columns []string, rows ...[]string) *types.Table {
	t.Helper()
	table := types.NewTable(name, columns)
	for _, row := range rows {
		if err := table.AppendRow(row); err != nil {
			t.Fatalf("AppendRow() failed: %v", err)
		}
	}
	return table
}

func TestIndexDataset_ActiveColumnsFollowDeclaredOrder(t *testing.T) {
	table := newTable(t, "moves",
		[]string{"비고", "이동후_필지코드", "이동전_필지코드"},
		[]string{"x", "2", "1"},
	)

	ix := IndexDataset(table, []string{"이동전_필지코드", "이동후_필지코드", "PNU"})

	want := []string{"이동전_필지코드", "이동후_필지코드"}
	if !reflect.DeepEqual(ix.ActiveColumns, want) {
		t.Errorf("ActiveColumns = %v, want %v", ix.ActiveColumns, want)
	}
	if !ix.Participating() {
		t.Error("expected index to participate")
	}
	if ix.RowCount() != 1 {
		t.Errorf("RowCount() = %d, want 1", ix.RowCount())
	}
}

func TestIndexDataset_DuplicateDeclaredColumns(t *testing.T) {
	table := newTable(t, "d", []string{"PNU"}, []string{"7"})

	ix := IndexDataset(table, []string{"PNU", "PNU"})

	if len(ix.ActiveColumns) != 1 {
		t.Errorf("ActiveColumns = %v, want one column", ix.ActiveColumns)
	}
	if got := ix.Rows("0000000000000000007"); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("Rows() = %v, want [0]", got)
	}
}

func TestIndexDataset_NoActiveColumns(t *testing.T) {
	table := newTable(t, "ledger", []string{"필지코드2"}, []string{"123"})

	ix := IndexDataset(table, []string{"PNU"})

	if ix.Participating() {
		t.Error("expected index without active columns to be excluded")
	}
	if ix.RowCount() != 0 {
		t.Errorf("RowCount() = %d, want 0", ix.RowCount())
	}
	if ids := ix.DistinctIdentifiers(); len(ids) != 0 {
		t.Errorf("DistinctIdentifiers() = %v, want none", ids)
	}
}

func TestIndexDataset_Postings(t *testing.T) {
	table := newTable(t, "moves",
		[]string{"before", "after"},
		[]string{"11-1", "22"},
		[]string{"22", "22"},
		[]string{"", "abc"},
		[]string{"111", "33"},
	)

	ix := IndexDataset(table, []string{"before", "after"})

	id11 := "0000000000000000111"
	id22 := "0000000000000000022"

	if got := ix.Rows(id11); !reflect.DeepEqual(got, []int{0, 3}) {
		t.Errorf("Rows(%s) = %v, want [0 3]", id11, got)
	}
	// Row 1 holds id22 in both columns and must be posted once.
	if got := ix.Rows(id22); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("Rows(%s) = %v, want [0 1]", id22, got)
	}
	if got := ix.Rows(""); len(got) != 0 {
		t.Errorf("empty identifier must never be posted, got %v", got)
	}

	if got := ix.Identifiers(1); !reflect.DeepEqual(got, []string{id22}) {
		t.Errorf("Identifiers(1) = %v, want [%s]", got, id22)
	}
	if got := ix.Identifiers(2); len(got) != 0 {
		t.Errorf("Identifiers(2) = %v, want none", got)
	}
	if got := ix.Identifiers(99); got != nil {
		t.Errorf("Identifiers(99) = %v, want nil", got)
	}

	want := []string{"0000000000000000022", "0000000000000000033", "0000000000000000111"}
	if got := ix.DistinctIdentifiers(); !reflect.DeepEqual(got, want) {
		t.Errorf("DistinctIdentifiers() = %v, want %v", got, want)
	}
}

func TestIndexDataset_DeclaredIsCopied(t *testing.T) {
	declared := []string{"PNU"}
	ix := IndexDataset(newTable(t, "d", []string{"PNU"}), declared)
	declared[0] = "changed"

	if ix.Declared[0] != "PNU" {
		t.Errorf("Declared aliased caller slice: %v", ix.Declared)
	}
}

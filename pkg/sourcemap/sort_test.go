package sourcemap

import "testing"

func TestIsRowSorted(t *testing.T) {
	sorted := Row{{GenCol: 0}, {GenCol: 3}, {GenCol: 3}, {GenCol: 7}}
	if !isRowSorted(sorted) {
		t.Error("expected sorted row to report sorted")
	}

	unsorted := Row{{GenCol: 5}, {GenCol: 1}}
	if isRowSorted(unsorted) {
		t.Error("expected unsorted row to report unsorted")
	}
}

func TestSortedRowStable(t *testing.T) {
	row := Row{
		{GenCol: 3, NameIdx: 1},
		{GenCol: 1, NameIdx: 2},
		{GenCol: 3, NameIdx: 3},
	}
	sorted := sortedRow(row)
	if sorted[0].GenCol != 1 {
		t.Fatalf("unexpected order: %#v", sorted)
	}
	// The two GenCol==3 entries must keep their relative order.
	if sorted[1].NameIdx != 1 || sorted[2].NameIdx != 3 {
		t.Errorf("stable sort violated: %#v", sorted)
	}
}

func TestNormalizeMappings(t *testing.T) {
	d := DecodedMappings{
		Row{{GenCol: 4}, {GenCol: 1}},
		Row{{GenCol: 0}, {GenCol: 2}},
	}
	normalizeMappings(d)
	if !isRowSorted(d[0]) {
		t.Errorf("row 0 not normalized: %#v", d[0])
	}
	if d[1][0].GenCol != 0 || d[1][1].GenCol != 2 {
		t.Errorf("already-sorted row mutated unexpectedly: %#v", d[1])
	}
}

package sourcemap

import "sort"

// isRowSorted reports whether row is already non-decreasing in GenCol.
func isRowSorted(row Row) bool {
	for i := 1; i < len(row); i++ {
		if row[i-1].GenCol > row[i].GenCol {
			return false
		}
	}
	return true
}

// sortedRow returns row stably sorted by GenCol. Equal-column segments
// keep their relative order — spec.md allows duplicate generated columns
// mapping to different targets, and stability preserves which one was
// encountered first.
func sortedRow(row Row) Row {
	sort.SliceStable(row, func(i, j int) bool {
		return row[i].GenCol < row[j].GenCol
	})
	return row
}

// normalizeMappings checks every row for GenCol monotonicity and
// stable-sorts any row that violates it. Maps parsed from a JSON mappings
// string are assumed sorted (the codec already normalizes as it decodes);
// a decoded-form map supplied directly by a programmatic caller is not
// assumed sorted and is always checked here.
func normalizeMappings(d DecodedMappings) DecodedMappings {
	for i, row := range d {
		if !isRowSorted(row) {
			d[i] = sortedRow(row)
		}
	}
	return d
}

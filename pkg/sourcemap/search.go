package sourcemap

// Bias constants, exported per spec.md §6.
const (
	GreatestLowerBound = 1
	LeastUpperBound    = -1
)

// binarySearch returns the greatest index in row[lo:hi+1] whose GenCol is
// <= needle, or lo-1 (-1 when the whole row was in range) if no such index
// exists within the bound. found reports an exact match.
func binarySearch(row Row, needle, lo, hi int) (idx int, found bool) {
	result := lo - 1
	for lo <= hi {
		mid := (lo + hi) / 2
		if row[mid].GenCol <= needle {
			result = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	found = result >= 0 && result < len(row) && row[result].GenCol == needle
	return result, found
}

// applyBias turns the raw greatest-lower-bound search result into the
// caller's requested bias. GREATEST_LOWER_BOUND is returned as-is (or -1
// if the search found nothing in range). LEAST_UPPER_BOUND returns the
// same index on an exact match, or the next index over on a miss; both
// biases report -1 when that falls outside the row.
func applyBias(idx int, found bool, rowLen int, bias int) int {
	if bias == GreatestLowerBound {
		if idx < 0 {
			return -1
		}
		return idx
	}

	if found {
		return idx
	}
	next := idx + 1
	if next >= rowLen {
		return -1
	}
	return next
}

// lowerBound widens idx down to the lowest index sharing the same GenCol.
func lowerBound(row Row, idx int) int {
	if idx < 0 || idx >= len(row) {
		return idx
	}
	col := row[idx].GenCol
	for idx > 0 && row[idx-1].GenCol == col {
		idx--
	}
	return idx
}

// upperBound widens idx up to the index just past the highest match
// sharing the same GenCol.
func upperBound(row Row, idx int) int {
	if idx < 0 {
		return idx
	}
	if idx >= len(row) {
		return len(row)
	}
	col := row[idx].GenCol
	for idx < len(row) && row[idx].GenCol == col {
		idx++
	}
	return idx
}

// searchMemo records the last (row, column) search against a set of rows
// and accelerates the next query when it is monotonic with the last one,
// per spec.md §4.2. The zero value is a cold cache.
type searchMemo struct {
	has   bool
	row   int
	col   int
	index int
}

// search finds needle in rows[line], applying the bias, and updates the
// memo. It never changes the result a cold search would have produced —
// memoization is only an acceleration (spec.md §5, "Ordering guarantee").
func (m *searchMemo) search(rows DecodedMappings, line, needle, bias int) int {
	if line < 0 || line >= len(rows) {
		return -1
	}
	row := rows[line]

	lo, hi := 0, len(row)-1
	if m.has && m.row == line {
		if m.col == needle {
			found := m.index >= 0 && m.index < len(row) && row[m.index].GenCol == needle
			return applyBias(m.index, found, len(row), bias)
		}
		if needle >= m.col {
			lo = m.index
			if lo < 0 {
				lo = 0
			}
		} else {
			hi = m.index
		}
	}

	idx, found := binarySearch(row, needle, lo, hi)
	m.has, m.row, m.col, m.index = true, line, needle, idx
	return applyBias(idx, found, len(row), bias)
}

// binarySearchRev is binarySearch's twin over a ReverseRow, keyed by
// OrigCol instead of GenCol. Kept as a small duplicate rather than a
// generic helper: the two searches operate on unrelated field names and
// the bodies are short enough that sharing one generic function over an
// accessor closure would only obscure them.
func binarySearchRev(row ReverseRow, needle, lo, hi int) (idx int, found bool) {
	result := lo - 1
	for lo <= hi {
		mid := (lo + hi) / 2
		if row[mid].OrigCol <= needle {
			result = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	found = result >= 0 && result < len(row) && row[result].OrigCol == needle
	return result, found
}

func lowerBoundRev(row ReverseRow, idx int) int {
	if idx < 0 || idx >= len(row) {
		return idx
	}
	col := row[idx].OrigCol
	for idx > 0 && row[idx-1].OrigCol == col {
		idx--
	}
	return idx
}

func upperBoundRev(row ReverseRow, idx int) int {
	if idx < 0 {
		return idx
	}
	if idx >= len(row) {
		return len(row)
	}
	col := row[idx].OrigCol
	for idx < len(row) && row[idx].OrigCol == col {
		idx++
	}
	return idx
}

// searchRev is binarySearchRev's memoized form, mirroring searchMemo.search
// over a source's reverse rows instead of the forward mappings.
func (m *searchMemo) searchRev(rows []ReverseRow, line, needle, bias int) int {
	if line < 0 || line >= len(rows) {
		return -1
	}
	row := rows[line]

	lo, hi := 0, len(row)-1
	if m.has && m.row == line {
		if m.col == needle {
			found := m.index >= 0 && m.index < len(row) && row[m.index].OrigCol == needle
			return applyBias(m.index, found, len(row), bias)
		}
		if needle >= m.col {
			lo = m.index
			if lo < 0 {
				lo = 0
			}
		} else {
			hi = m.index
		}
	}

	idx, found := binarySearchRev(row, needle, lo, hi)
	m.has, m.row, m.col, m.index = true, line, needle, idx
	return applyBias(idx, found, len(row), bias)
}

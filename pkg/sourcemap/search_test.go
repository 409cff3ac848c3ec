package sourcemap

import "testing"

func sampleRows() DecodedMappings {
	return DecodedMappings{
		Row{{GenCol: 0}, {GenCol: 9}, {GenCol: 12}, {GenCol: 13}, {GenCol: 16}, {GenCol: 18}},
	}
}

func TestBinarySearchGreatestLowerBound(t *testing.T) {
	rows := sampleRows()
	row := rows[0]

	idx, found := binarySearch(row, 13, 0, len(row)-1)
	if idx != 3 || !found {
		t.Fatalf("binarySearch(13) = (%d, %v), expected (3, true)", idx, found)
	}

	idx, found = binarySearch(row, 14, 0, len(row)-1)
	if idx != 3 || found {
		t.Fatalf("binarySearch(14) = (%d, %v), expected (3, false)", idx, found)
	}

	idx, _ = binarySearch(row, -1, 0, len(row)-1)
	if idx != -1 {
		t.Fatalf("binarySearch(-1) = %d, expected -1 (out of range below)", idx)
	}
}

func TestApplyBias(t *testing.T) {
	rows := sampleRows()
	row := rows[0]

	// Exact match: both biases agree.
	idx, found := binarySearch(row, 13, 0, len(row)-1)
	if got := applyBias(idx, found, len(row), GreatestLowerBound); got != 3 {
		t.Errorf("GLB exact match = %d, expected 3", got)
	}
	if got := applyBias(idx, found, len(row), LeastUpperBound); got != 3 {
		t.Errorf("LUB exact match = %d, expected 3", got)
	}

	// Miss between segments: GLB keeps the lower index, LUB steps to the
	// next one (seed scenario S4's "between 13 and 16" case).
	idx, found = binarySearch(row, 14, 0, len(row)-1)
	if got := applyBias(idx, found, len(row), GreatestLowerBound); got != 3 {
		t.Errorf("GLB miss = %d, expected 3", got)
	}
	if got := applyBias(idx, found, len(row), LeastUpperBound); got != 4 {
		t.Errorf("LUB miss = %d, expected 4", got)
	}
}

func TestLowerUpperBoundWidenDuplicates(t *testing.T) {
	row := Row{{GenCol: 1}, {GenCol: 5}, {GenCol: 5}, {GenCol: 5}, {GenCol: 9}}

	if got := lowerBound(row, 3); got != 1 {
		t.Errorf("lowerBound(3) = %d, expected 1", got)
	}
	if got := upperBound(row, 1); got != 4 {
		t.Errorf("upperBound(1) = %d, expected 4", got)
	}
}

func TestSearchMemoMonotonicAcceleration(t *testing.T) {
	rows := sampleRows()
	var memo searchMemo

	// A cold search and a memoized search for the same column must agree.
	cold := memo.search(rows, 0, 13, GreatestLowerBound)
	if cold != 3 {
		t.Fatalf("cold search = %d, expected 3", cold)
	}

	// Monotonically increasing queries reuse the cached lower bound.
	next := memo.search(rows, 0, 16, GreatestLowerBound)
	if next != 4 {
		t.Fatalf("monotonic search = %d, expected 4", next)
	}

	// A smaller column after that must still find the right answer even
	// though the cached index now constrains the high bound.
	back := memo.search(rows, 0, 9, GreatestLowerBound)
	if back != 1 {
		t.Fatalf("backward search = %d, expected 1", back)
	}

	// Exact repeat of the last query hits the (row, col) fast path.
	repeat := memo.search(rows, 0, 9, GreatestLowerBound)
	if repeat != 1 {
		t.Fatalf("repeated search = %d, expected 1", repeat)
	}
}

func TestSearchMemoOutOfRangeLine(t *testing.T) {
	var memo searchMemo
	if got := memo.search(sampleRows(), 5, 0, GreatestLowerBound); got != -1 {
		t.Errorf("search on missing line = %d, expected -1", got)
	}
}

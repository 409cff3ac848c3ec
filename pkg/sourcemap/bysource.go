package sourcemap

import "sort"

// buildBySource inverts a decoded generated→original map into one
// original→generated index per source, per spec.md §4.4. A single pass
// appends a ReverseSegment for every segment with a source position;
// each original-line row is then stable-sorted by OrigCol so duplicate
// forward mappings to the same (source, line, column) are preserved in
// the order they were encountered, not collapsed.
func buildBySource(mappings DecodedMappings, numSources int) []BySource {
	bySource := make([]BySource, numSources)

	for genLine, row := range mappings {
		for _, seg := range row {
			if !seg.HasSource() {
				continue
			}
			if seg.SourceIdx < 0 || seg.SourceIdx >= numSources {
				continue
			}

			src := bySource[seg.SourceIdx]
			for len(src) <= seg.SrcLine {
				src = append(src, nil)
			}
			src[seg.SrcLine] = append(src[seg.SrcLine], ReverseSegment{
				OrigCol: seg.SrcCol,
				GenLine: genLine,
				GenCol:  seg.GenCol,
			})
			bySource[seg.SourceIdx] = src
		}
	}

	for i, src := range bySource {
		for j, row := range src {
			if row == nil {
				continue
			}
			sort.SliceStable(row, func(a, b int) bool {
				return row[a].OrigCol < row[b].OrigCol
			})
			bySource[i][j] = row
		}
	}

	return bySource
}

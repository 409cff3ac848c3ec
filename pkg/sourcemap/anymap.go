package sourcemap

import (
	"encoding/json"
	"errors"
	"fmt"
)

// genPos is a generated (line, column) pair used only to track section
// boundaries during flattening.
type genPos struct {
	line int
	col  int
}

// flattenState accumulates the output of AnyMap across a recursive section
// traversal: one growing decoded-mappings array, plus unique source and
// name tables so segments from different leaves can share indices.
type flattenState struct {
	mappings       DecodedMappings
	sources        []*string
	sourceIndex    map[string]int
	sourcesContent []*string
	names          []string
	nameIndex      map[string]int
}

func newFlattenState() *flattenState {
	return &flattenState{
		sourceIndex: make(map[string]int),
		nameIndex:   make(map[string]int),
	}
}

func (fs *flattenState) growMappings(n int) {
	for len(fs.mappings) < n {
		fs.mappings = append(fs.mappings, Row{})
	}
}

func (fs *flattenState) internSource(name string, content *string) int {
	if idx, ok := fs.sourceIndex[name]; ok {
		if fs.sourcesContent[idx] == nil && content != nil {
			fs.sourcesContent[idx] = content
		}
		return idx
	}
	idx := len(fs.sources)
	s := name
	fs.sources = append(fs.sources, &s)
	fs.sourcesContent = append(fs.sourcesContent, content)
	fs.sourceIndex[name] = idx
	return idx
}

func (fs *flattenState) internName(name string) int {
	if idx, ok := fs.nameIndex[name]; ok {
		return idx
	}
	idx := len(fs.names)
	fs.names = append(fs.names, name)
	fs.nameIndex[name] = idx
	return idx
}

// AnyMap flattens a sectioned (index) source map into a single TraceMap,
// recursively resolving nested sections, per spec.md §4.6. env must carry
// a non-empty Sections list.
func AnyMap(env *SourceMapV3, mapURL string) (*TraceMap, error) {
	if len(env.Sections) == 0 {
		return nil, errors.New("sourcemap: AnyMap requires a sectioned map with at least one section")
	}
	fs := newFlattenState()
	if err := fs.addSections(env.Sections, mapURL, 0, 0, nil); err != nil {
		return nil, err
	}
	decoded := &DecodedSourceMap{
		Version:        3,
		File:           env.File,
		Sources:        fs.sources,
		SourcesContent: fs.sourcesContent,
		Names:          fs.names,
		Mappings:       fs.mappings,
	}
	return PresortedDecodedMap(decoded, mapURL)
}

// addSections walks one sections list, computing each child's absolute
// offset and the generated-position limit beyond which that child's
// segments are truncated (the next sibling's offset, or the limit
// inherited from the enclosing section list if this is the last sibling).
func (fs *flattenState) addSections(sections []Section, mapURL string, offsetLine, offsetCol int, outerLimit *genPos) error {
	for i, sec := range sections {
		childLine := offsetLine + sec.Offset.Line
		childCol := sec.Offset.Column
		if sec.Offset.Line == 0 {
			childCol += offsetCol
		}

		var limit *genPos
		if i+1 < len(sections) {
			next := sections[i+1]
			nextLine := offsetLine + next.Offset.Line
			nextCol := next.Offset.Column
			if next.Offset.Line == 0 {
				nextCol += offsetCol
			}
			limit = &genPos{line: nextLine, col: nextCol}
		} else {
			limit = outerLimit
		}

		var probe struct {
			Sections []Section `json:"sections"`
		}
		if err := json.Unmarshal(sec.Map, &probe); err != nil {
			return fmt.Errorf("sourcemap: parse section %d map: %w", i, err)
		}

		if len(probe.Sections) > 0 {
			var nested SourceMapV3
			if err := json.Unmarshal(sec.Map, &nested); err != nil {
				return fmt.Errorf("sourcemap: parse nested sectioned map: %w", err)
			}
			if err := fs.addSections(nested.Sections, mapURL, childLine, childCol, limit); err != nil {
				return err
			}
			continue
		}

		var leaf SourceMapV3
		if err := json.Unmarshal(sec.Map, &leaf); err != nil {
			return fmt.Errorf("sourcemap: parse section %d leaf map: %w", i, err)
		}
		if err := fs.addLeaf(&leaf, mapURL, childLine, childCol, limit); err != nil {
			return err
		}
	}
	return nil
}

// addLeaf decodes one standard (non-sectioned) map and merges its rows
// into the flattened output at the given offset, discarding any segment
// that falls at or past limit.
func (fs *flattenState) addLeaf(env *SourceMapV3, mapURL string, offsetLine, offsetCol int, limit *genPos) error {
	tm, err := newFromEncoded(env, mapURL)
	if err != nil {
		return err
	}
	decoded, err := tm.DecodedMappings()
	if err != nil {
		return err
	}

	for r, row := range decoded {
		outLine := offsetLine + r
		fs.growMappings(outLine + 1)

		for _, seg := range row {
			genCol := seg.GenCol
			if r == 0 {
				genCol += offsetCol
			}
			if limit != nil && (outLine > limit.line || (outLine == limit.line && genCol >= limit.col)) {
				continue
			}

			out := Segment{GenCol: genCol, Arity: seg.Arity}
			if seg.HasSource() {
				name := ""
				if seg.SourceIdx >= 0 && seg.SourceIdx < len(tm.ResolvedSources) {
					name = tm.ResolvedSources[seg.SourceIdx]
				}
				var content *string
				if seg.SourceIdx >= 0 && seg.SourceIdx < len(tm.SourcesContent) {
					content = tm.SourcesContent[seg.SourceIdx]
				}
				out.SourceIdx = fs.internSource(name, content)
				out.SrcLine = seg.SrcLine
				out.SrcCol = seg.SrcCol
				if seg.HasName() {
					nameVal := ""
					if seg.NameIdx >= 0 && seg.NameIdx < len(tm.Names) {
						nameVal = tm.Names[seg.NameIdx]
					}
					out.NameIdx = fs.internName(nameVal)
				}
			}
			fs.mappings[outLine] = append(fs.mappings[outLine], out)
		}
	}
	return nil
}

// Package sourcemap implements a source-map codec and bidirectional
// tracer: bijective VLQ encoding of the `mappings` field, a TraceMap
// query type with monotonic-access acceleration, a sectioned-map
// flattener (AnyMap), and a Remapper that composes a chain of maps
// transitively. See SPEC_FULL.md for the full contract.
package sourcemap

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SourceMapV3 is the wire envelope with an encoded (VLQ string) mappings
// field, per spec.md §3 / §6.
type SourceMapV3 struct {
	Version        int       `json:"version"`
	File           string    `json:"file,omitempty"`
	SourceRoot     string    `json:"sourceRoot,omitempty"`
	Sources        []*string `json:"sources"`
	SourcesContent []*string `json:"sourcesContent,omitempty"`
	Names          []string  `json:"names"`
	Mappings       string    `json:"mappings"`
	Sections       []Section `json:"sections,omitempty"`
}

// Section is one entry of a sectioned (index) map; see anymap.go.
type Section struct {
	Offset struct {
		Line   int `json:"line"`
		Column int `json:"column"`
	} `json:"offset"`
	Map json.RawMessage `json:"map"`
}

// DecodedSourceMap is the same envelope with mappings already decoded —
// the shape a programmatic caller (the Remapper, AnyMap) builds directly
// rather than round-tripping through JSON.
type DecodedSourceMap struct {
	Version        int
	File           string
	SourceRoot     string
	Sources        []*string
	SourcesContent []*string
	Names          []string
	Mappings       DecodedMappings
}

// Input is a SourceMapInput: exactly one of JSON, Encoded, or Decoded
// should be set. This is the tagged-union shape spec.md §3 describes for
// SourceMapSegment, applied at the envelope level.
type Input struct {
	JSON    string
	Encoded *SourceMapV3
	Decoded *DecodedSourceMap
}

// OriginalPosition is the result of OriginalPositionFor. Found is false
// for the all-null record spec.md §7 defines for NotFound — Source,
// Line, Column and Name are meaningless when Found is false.
type OriginalPosition struct {
	Source  string
	Line    int
	Column  int
	Name    string
	HasName bool
	Found   bool
}

// GeneratedPosition is the result of GeneratedPositionFor.
type GeneratedPosition struct {
	Line   int
	Column int
	Found  bool
}

// Mapping is one fully-resolved entry as EachMapping delivers it.
type Mapping struct {
	GeneratedLine   int
	GeneratedColumn int
	Source          string
	HasSource       bool
	OriginalLine    int
	OriginalColumn  int
	Name            string
	HasName         bool
}

// TraceMap holds a source map's metadata plus lazily-computed encoded,
// decoded, and reverse-index forms. It is effectively immutable after
// construction (spec.md §3 "Lifecycle"); the lazy fields are populated at
// most once and cached for the TraceMap's lifetime. A TraceMap must not
// be shared across goroutines without external synchronization (§5).
type TraceMap struct {
	Version         int
	File            string
	SourceRoot      string
	Sources         []*string
	ResolvedSources []string
	SourcesContent  []*string
	Names           []string
	mapURL          string

	hasEncoded bool
	encoded    string
	hasDecoded bool
	decoded    DecodedMappings

	hasBySource bool
	bySource    []BySource

	fwdMemo       searchMemo
	revMemo       searchMemo
	revMemoSource int
}

// New constructs a TraceMap from a SourceMapInput. mapURL is optional
// (pass "" if the map's own location is unknown); it participates in
// resolving sources per spec.md invariant 5.
func New(in Input, mapURL string) (*TraceMap, error) {
	switch {
	case in.JSON != "":
		var env SourceMapV3
		if err := json.Unmarshal([]byte(in.JSON), &env); err != nil {
			return nil, fmt.Errorf("sourcemap: parse json: %w", err)
		}
		return newFromEncoded(&env, mapURL)
	case in.Encoded != nil:
		return newFromEncoded(in.Encoded, mapURL)
	case in.Decoded != nil:
		return newFromDecoded(in.Decoded, mapURL, true)
	default:
		return nil, errors.New("sourcemap: empty input")
	}
}

// PresortedDecodedMap builds a TraceMap directly from a decoded map known
// to already be sorted, skipping the per-row sort check New would do for
// a programmatically-supplied decoded map. AnyMap uses this because
// section traversal order already produces sorted output.
func PresortedDecodedMap(m *DecodedSourceMap, mapURL string) (*TraceMap, error) {
	return newFromDecoded(m, mapURL, false)
}

func newFromEncoded(env *SourceMapV3, mapURL string) (*TraceMap, error) {
	if env.Version != 3 {
		return nil, fmt.Errorf("sourcemap: unsupported version %d", env.Version)
	}
	tm := &TraceMap{
		Version:        3,
		File:           env.File,
		SourceRoot:     env.SourceRoot,
		Sources:        env.Sources,
		SourcesContent: env.SourcesContent,
		Names:          env.Names,
		mapURL:         mapURL,
		hasEncoded:     true,
		encoded:        env.Mappings,
	}
	tm.ResolvedSources = computeResolvedSources(env.Sources, env.SourceRoot, mapURL)
	return tm, nil
}

func newFromDecoded(env *DecodedSourceMap, mapURL string, checkSort bool) (*TraceMap, error) {
	if env.Version != 3 {
		return nil, fmt.Errorf("sourcemap: unsupported version %d", env.Version)
	}
	decoded := env.Mappings
	if checkSort {
		decoded = normalizeMappings(decoded)
	}
	tm := &TraceMap{
		Version:        3,
		File:           env.File,
		SourceRoot:     env.SourceRoot,
		Sources:        env.Sources,
		SourcesContent: env.SourcesContent,
		Names:          env.Names,
		mapURL:         mapURL,
		hasDecoded:     true,
		decoded:        decoded,
	}
	tm.ResolvedSources = computeResolvedSources(env.Sources, env.SourceRoot, mapURL)
	return tm, nil
}

func computeResolvedSources(sources []*string, sourceRoot, mapURL string) []string {
	base := Resolve(sourceRoot, StripFilename(mapURL))
	out := make([]string, len(sources))
	for i, s := range sources {
		name := ""
		if s != nil {
			name = *s
		}
		out[i] = Resolve(name, base)
	}
	return out
}

func (m *TraceMap) ensureDecoded() error {
	if m.hasDecoded {
		return nil
	}
	decoded, err := decodeMappings(m.encoded)
	if err != nil {
		return err
	}
	m.decoded = decoded
	m.hasDecoded = true
	return nil
}

func (m *TraceMap) ensureEncoded() error {
	if m.hasEncoded {
		return nil
	}
	if err := m.ensureDecoded(); err != nil {
		return err
	}
	m.encoded = encodeMappings(m.decoded)
	m.hasEncoded = true
	return nil
}

func (m *TraceMap) ensureBySource() error {
	if m.hasBySource {
		return nil
	}
	if err := m.ensureDecoded(); err != nil {
		return err
	}
	m.bySource = buildBySource(m.decoded, len(m.Sources))
	m.hasBySource = true
	return nil
}

// EncodedMappings returns the VLQ mappings string, decoding and
// re-encoding if only the decoded form is currently held.
func (m *TraceMap) EncodedMappings() (string, error) {
	if err := m.ensureEncoded(); err != nil {
		return "", err
	}
	return m.encoded, nil
}

// DecodedMappings returns the decoded rows, decoding the VLQ string on
// first call if that's the only form held.
func (m *TraceMap) DecodedMappings() (DecodedMappings, error) {
	if err := m.ensureDecoded(); err != nil {
		return nil, err
	}
	return m.decoded, nil
}

// TraceSegment returns the segment matched at a 0-based generated
// position, or nil if line is out of range or no segment's GenCol is
// <= col. The returned segment may itself be arity-1 (no source
// position) — callers that need a source position should use
// OriginalPositionFor instead, which turns that case into a not-found
// result.
func (m *TraceMap) TraceSegment(line, col int) (*Segment, error) {
	if err := m.ensureDecoded(); err != nil {
		return nil, err
	}
	if line < 0 || line >= len(m.decoded) {
		return nil, nil
	}
	idx := m.fwdMemo.search(m.decoded, line, col, GreatestLowerBound)
	if idx < 0 {
		return nil, nil
	}
	seg := m.decoded[line][idx]
	return &seg, nil
}

// OriginalPositionFor maps a 1-based generated line and 0-based column to
// an original position. bias defaults to GreatestLowerBound when passed
// as 0.
func (m *TraceMap) OriginalPositionFor(line, col, bias int) (OriginalPosition, error) {
	if line < 1 {
		return OriginalPosition{}, invalidCoordinateErr("line", line)
	}
	if col < 0 {
		return OriginalPosition{}, invalidCoordinateErr("column", col)
	}
	if bias == 0 {
		bias = GreatestLowerBound
	}
	if err := m.ensureDecoded(); err != nil {
		return OriginalPosition{}, err
	}

	genLine := line - 1
	if genLine >= len(m.decoded) {
		return OriginalPosition{}, nil
	}
	idx := m.fwdMemo.search(m.decoded, genLine, col, bias)
	if idx < 0 {
		return OriginalPosition{}, nil
	}
	seg := m.decoded[genLine][idx]
	if !seg.HasSource() {
		return OriginalPosition{}, nil
	}

	source := ""
	if seg.SourceIdx >= 0 && seg.SourceIdx < len(m.ResolvedSources) {
		source = m.ResolvedSources[seg.SourceIdx]
	}
	pos := OriginalPosition{
		Source: source,
		Line:   seg.SrcLine + 1,
		Column: seg.SrcCol,
		Found:  true,
	}
	if seg.HasName() && seg.NameIdx >= 0 && seg.NameIdx < len(m.Names) {
		pos.Name = m.Names[seg.NameIdx]
		pos.HasName = true
	}
	return pos, nil
}

// resolveSourceIndex finds the index of source within Sources, checking
// the raw source names first and the resolved source URLs second —
// spec.md §9.3's documented lookup order, reused here since both
// GeneratedPositionFor and SourceContentFor key off the same source
// index space.
func (m *TraceMap) resolveSourceIndex(source string) (int, bool) {
	for i, s := range m.Sources {
		if s != nil && *s == source {
			return i, true
		}
	}
	for i, s := range m.ResolvedSources {
		if s == source {
			return i, true
		}
	}
	return -1, false
}

// GeneratedPositionFor maps a 1-based original line and 0-based column in
// a named source back to a generated position.
func (m *TraceMap) GeneratedPositionFor(source string, line, col, bias int) (GeneratedPosition, error) {
	if line < 1 {
		return GeneratedPosition{}, invalidCoordinateErr("line", line)
	}
	if col < 0 {
		return GeneratedPosition{}, invalidCoordinateErr("column", col)
	}
	if bias == 0 {
		bias = GreatestLowerBound
	}
	if err := m.ensureBySource(); err != nil {
		return GeneratedPosition{}, err
	}

	srcIdx, ok := m.resolveSourceIndex(source)
	if !ok || srcIdx >= len(m.bySource) {
		return GeneratedPosition{}, nil
	}
	if m.revMemoSource != srcIdx {
		// The reverse memo covers one source's rows at a time.
		m.revMemo = searchMemo{}
		m.revMemoSource = srcIdx
	}
	srcLine := line - 1
	rows := m.bySource[srcIdx]
	idx := m.revMemo.searchRev(rows, srcLine, col, bias)
	if idx < 0 {
		return GeneratedPosition{}, nil
	}
	rev := rows[srcLine][idx]
	return GeneratedPosition{Line: rev.GenLine + 1, Column: rev.GenCol, Found: true}, nil
}

// AllGeneratedPositionsFor returns every generated position sharing the
// original column band matched by the same lookup GeneratedPositionFor
// performs, ordered by (GenLine, GenCol) — spec.md §4.5's tie-break: find
// the first match with GREATEST_LOWER_BOUND (incrementing past a miss
// when bias is LEAST_UPPER_BOUND), then widen to [lowerBound,
// upperBound) over that matched column.
func (m *TraceMap) AllGeneratedPositionsFor(source string, line, col, bias int) ([]GeneratedPosition, error) {
	if line < 1 {
		return nil, invalidCoordinateErr("line", line)
	}
	if col < 0 {
		return nil, invalidCoordinateErr("column", col)
	}
	if err := m.ensureBySource(); err != nil {
		return nil, err
	}

	srcIdx, ok := m.resolveSourceIndex(source)
	if !ok || srcIdx >= len(m.bySource) {
		return nil, nil
	}
	srcLine := line - 1
	rows := m.bySource[srcIdx]
	if srcLine < 0 || srcLine >= len(rows) {
		return nil, nil
	}
	row := rows[srcLine]

	idx, found := binarySearchRev(row, col, 0, len(row)-1)
	if bias == LeastUpperBound && !found {
		idx++
	}
	if idx < 0 || idx >= len(row) {
		return nil, nil
	}

	lo := lowerBoundRev(row, idx)
	hi := upperBoundRev(row, idx)

	out := make([]GeneratedPosition, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, GeneratedPosition{Line: row[i].GenLine + 1, Column: row[i].GenCol, Found: true})
	}
	return out, nil
}

// EachMapping invokes cb once per segment, in generated line/column
// order, with every field fully resolved (source name, original
// position, symbol name) per that segment's arity.
func (m *TraceMap) EachMapping(cb func(Mapping)) error {
	if err := m.ensureDecoded(); err != nil {
		return err
	}
	for line, row := range m.decoded {
		for _, seg := range row {
			mp := Mapping{GeneratedLine: line + 1, GeneratedColumn: seg.GenCol}
			if seg.HasSource() {
				mp.HasSource = true
				mp.OriginalLine = seg.SrcLine + 1
				mp.OriginalColumn = seg.SrcCol
				if seg.SourceIdx >= 0 && seg.SourceIdx < len(m.ResolvedSources) {
					mp.Source = m.ResolvedSources[seg.SourceIdx]
				}
				if seg.HasName() && seg.NameIdx >= 0 && seg.NameIdx < len(m.Names) {
					mp.Name = m.Names[seg.NameIdx]
					mp.HasName = true
				}
			}
			cb(mp)
		}
	}
	return nil
}

// SourceContentFor returns the sourcesContent entry for source, checking
// both the raw source name and the resolved source URL (spec.md §9.3). ok
// is false when source matches neither list, or when sourcesContent has
// no entry at the matched index.
func (m *TraceMap) SourceContentFor(source string) (content string, ok bool) {
	idx, found := m.resolveSourceIndex(source)
	if !found || idx >= len(m.SourcesContent) {
		return "", false
	}
	c := m.SourcesContent[idx]
	if c == nil {
		return "", false
	}
	return *c, true
}

// DecodedMap returns a fresh envelope with mappings in decoded form.
func (m *TraceMap) DecodedMap() (*DecodedSourceMap, error) {
	if err := m.ensureDecoded(); err != nil {
		return nil, err
	}
	return &DecodedSourceMap{
		Version:        3,
		File:           m.File,
		SourceRoot:     m.SourceRoot,
		Sources:        m.Sources,
		SourcesContent: m.SourcesContent,
		Names:          m.Names,
		Mappings:       m.decoded,
	}, nil
}

// EncodedMap returns a fresh envelope with mappings VLQ-encoded.
func (m *TraceMap) EncodedMap() (*SourceMapV3, error) {
	if err := m.ensureEncoded(); err != nil {
		return nil, err
	}
	return &SourceMapV3{
		Version:        3,
		File:           m.File,
		SourceRoot:     m.SourceRoot,
		Sources:        m.Sources,
		SourcesContent: m.SourcesContent,
		Names:          m.Names,
		Mappings:       m.encoded,
	}, nil
}

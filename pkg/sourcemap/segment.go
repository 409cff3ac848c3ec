package sourcemap

// Segment arities, per the Source Map v3 `mappings` grammar: a segment is
// either a bare generated column, a column mapped to a source position, or
// a column mapped to a source position plus a symbol name.
const (
	ArityGenColOnly = 1
	ArityNoName     = 4
	ArityWithName   = 5
)

// Segment is the decoded form of one entry in a mappings row. Arity tells
// the reader which fields are meaningful: 1 means only GenCol is set, 4
// adds SourceIdx/SrcLine/SrcCol, 5 adds NameIdx on top of that. This packed
// shape (rather than a three-constructor sum type) keeps rows as plain
// slices, which is what the binary search and sort routines want.
type Segment struct {
	GenCol    int
	SourceIdx int
	SrcLine   int
	SrcCol    int
	NameIdx   int
	Arity     int
}

// HasSource reports whether the segment carries a source position.
func (s Segment) HasSource() bool { return s.Arity >= ArityNoName }

// HasName reports whether the segment carries a name index.
func (s Segment) HasName() bool { return s.Arity == ArityWithName }

// Row is one generated line's worth of segments, ordered by GenCol once
// normalized (see normalizeMappings in sort.go).
type Row []Segment

// DecodedMappings is an ordered sequence of rows, one per generated line.
// Row i holds every segment whose generated line is i (0-based). Empty
// rows are permitted and do occur (e.g. blank lines in the generated
// output, or trailing semicolons in the encoded mappings).
type DecodedMappings []Row

// ReverseSegment is one entry of a by-source reverse index: the original
// column it was observed at, plus the generated position it maps back to.
type ReverseSegment struct {
	OrigCol int
	GenLine int
	GenCol  int
}

// ReverseRow is every ReverseSegment observed at a given original line,
// sorted by OrigCol.
type ReverseRow []ReverseSegment

// BySource holds, for one source file, the reverse index keyed by original
// line. A nil entry at index i means "no mappings on original line i" —
// callers must treat absent as empty, not as an error.
type BySource []ReverseRow

package sourcemap

// LoaderContext is passed to a Loader for each source the Remapper
// encounters. Importer is the resolved URL of the map doing the
// importing. Source starts out resolved against that map's sourceRoot
// and mapURL; a loader may overwrite it to rename the source in the
// output. Content and HasContent let a loader attach sourcesContent for
// an original leaf (a source the loader declines to expand further).
type LoaderContext struct {
	Importer   string
	Source     string
	Content    string
	HasContent bool
}

// Loader resolves one source name to its own source map, or reports that
// the source is an original (not itself generated) by returning a nil
// Input. The Remapper calls it synchronously, exactly once per distinct
// source at each nesting level, in traversal order (spec.md §5).
type Loader func(ctx *LoaderContext) (*Input, error)

// RemapOptions controls Remap's composition step.
type RemapOptions struct {
	// ExcludeContent suppresses the output sourcesContent array entirely.
	ExcludeContent bool
	// DecodedMappings keeps the output mappings decoded instead of
	// re-encoding them to a VLQ string.
	DecodedMappings bool
}

// RemappedMap is the Remapper's result: exactly one of Decoded or Encoded
// is populated, selected by RemapOptions.DecodedMappings — the same
// tagged-union shape Input uses for the opposite direction.
type RemappedMap struct {
	Decoded *DecodedSourceMap
	Encoded *SourceMapV3
}

// dropSegmentOnMissingTrace selects the Open Question #1 behavior: a
// segment whose recursive trace yields no source position is dropped
// entirely rather than degraded to a bare [genCol] segment. Flipping this
// to false reproduces the other documented variant.
const dropSegmentOnMissingTrace = true

// leaf is an original source: a file the loader declined to expand.
type leaf struct {
	filename   string
	content    *string
	hasContent bool
}

// graphNode is a source map expanded one level: its decoded mappings plus
// one child per entry of its Sources table, aligned by index.
type graphNode struct {
	tm       *TraceMap
	decoded  DecodedMappings
	children []child
}

// child is either an original leaf or a nested graphNode — the rooted DAG
// spec.md §4.7 describes.
type child struct {
	isLeaf bool
	leaf   leaf
	node   *graphNode
}

// Remap composes a chain of source maps transitively: root's sources are
// expanded via loader until an original leaf is reached, then every
// segment of root (arity >= 4) is retraced all the way down to that leaf,
// producing one flattened map from root's generated file straight to
// the ultimate originals.
func Remap(root Input, loader Loader, opts RemapOptions) (*RemappedMap, error) {
	rootMap, err := New(root, "")
	if err != nil {
		return nil, err
	}
	if err := rootMap.ensureDecoded(); err != nil {
		return nil, err
	}

	children, err := buildChildren(rootMap, loader)
	if err != nil {
		return nil, err
	}

	fs := newFlattenState()
	outMappings := make(DecodedMappings, len(rootMap.decoded))

	for line, row := range rootMap.decoded {
		var outRow Row
		for _, seg := range row {
			if !seg.HasSource() {
				outRow = append(outRow, Segment{GenCol: seg.GenCol, Arity: ArityGenColOnly})
				continue
			}

			name, hasName := "", false
			if seg.HasName() && seg.NameIdx >= 0 && seg.NameIdx < len(rootMap.Names) {
				name, hasName = rootMap.Names[seg.NameIdx], true
			}

			if seg.SourceIdx < 0 || seg.SourceIdx >= len(children) {
				continue
			}
			result, ok, err := traceThrough(children[seg.SourceIdx], seg.SrcLine, seg.SrcCol, name, hasName)
			if err != nil {
				return nil, err
			}
			if !ok {
				if !dropSegmentOnMissingTrace {
					outRow = append(outRow, Segment{GenCol: seg.GenCol, Arity: ArityGenColOnly})
				}
				continue
			}

			var content *string
			if result.hasContent {
				content = &result.content
			}
			outSeg := Segment{
				GenCol:    seg.GenCol,
				SourceIdx: fs.internSource(result.filename, content),
				SrcLine:   result.line,
				SrcCol:    result.col,
				Arity:     ArityNoName,
			}
			if result.hasName {
				outSeg.NameIdx = fs.internName(result.name)
				outSeg.Arity = ArityWithName
			}
			outRow = append(outRow, outSeg)
		}
		outMappings[line] = outRow
	}

	sourcesContent := fs.sourcesContent
	if opts.ExcludeContent {
		sourcesContent = nil
	}

	decoded := &DecodedSourceMap{
		Version:        3,
		File:           rootMap.File,
		Sources:        fs.sources,
		SourcesContent: sourcesContent,
		Names:          fs.names,
		Mappings:       outMappings,
	}

	if opts.DecodedMappings {
		return &RemappedMap{Decoded: decoded}, nil
	}
	tm, err := PresortedDecodedMap(decoded, "")
	if err != nil {
		return nil, err
	}
	encoded, err := tm.EncodedMap()
	if err != nil {
		return nil, err
	}
	return &RemappedMap{Encoded: encoded}, nil
}

// buildChildren expands root's Sources table one level via loader,
// recursing into every map the loader returns.
func buildChildren(tm *TraceMap, loader Loader) ([]child, error) {
	children := make([]child, len(tm.Sources))
	for i := range tm.Sources {
		file := ""
		if i < len(tm.ResolvedSources) {
			file = tm.ResolvedSources[i]
		}
		ctx := &LoaderContext{Importer: tm.mapURL, Source: file}
		if i < len(tm.SourcesContent) && tm.SourcesContent[i] != nil {
			ctx.Content, ctx.HasContent = *tm.SourcesContent[i], true
		}

		childInput, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if childInput == nil {
			l := leaf{filename: ctx.Source}
			if ctx.HasContent {
				content := ctx.Content
				l.content, l.hasContent = &content, true
			}
			children[i] = child{isLeaf: true, leaf: l}
			continue
		}

		childTM, err := New(*childInput, ctx.Source)
		if err != nil {
			return nil, err
		}
		if err := childTM.ensureDecoded(); err != nil {
			return nil, err
		}
		grandchildren, err := buildChildren(childTM, loader)
		if err != nil {
			return nil, err
		}
		children[i] = child{node: &graphNode{tm: childTM, decoded: childTM.decoded, children: grandchildren}}
	}
	return children, nil
}

// traced is the fully-resolved result of walking a trace down to an
// original leaf.
type traced struct {
	filename   string
	content    string
	hasContent bool
	line       int
	col        int
	name       string
	hasName    bool
}

// traceThrough follows one segment's source position into c. On a leaf,
// the trace terminates there. On a node, it binary-searches that node's
// row srcLine for the GREATEST_LOWER_BOUND of srcCol and recurses into
// whichever source that matched segment points to; a node's own name
// (when present) overrides the name carried down from the caller.
func traceThrough(c child, line, col int, name string, hasName bool) (traced, bool, error) {
	if c.isLeaf {
		return traced{
			filename:   c.leaf.filename,
			content:    derefOr(c.leaf.content, ""),
			hasContent: c.leaf.hasContent,
			line:       line,
			col:        col,
			name:       name,
			hasName:    hasName,
		}, true, nil
	}

	node := c.node
	if line < 0 || line >= len(node.decoded) {
		return traced{}, false, invalidMapErr(node.tm.mapURL, line)
	}
	row := node.decoded[line]
	idx, found := binarySearch(row, col, 0, len(row)-1)
	idx = applyBias(idx, found, len(row), GreatestLowerBound)
	if idx < 0 || idx >= len(row) {
		return traced{}, false, nil
	}

	seg := row[idx]
	if !seg.HasSource() {
		return traced{}, false, nil
	}
	if seg.HasName() && seg.NameIdx >= 0 && seg.NameIdx < len(node.tm.Names) {
		name, hasName = node.tm.Names[seg.NameIdx], true
	}
	if seg.SourceIdx < 0 || seg.SourceIdx >= len(node.children) {
		return traced{}, false, nil
	}
	return traceThrough(node.children[seg.SourceIdx], seg.SrcLine, seg.SrcCol, name, hasName)
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

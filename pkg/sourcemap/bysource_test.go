package sourcemap

import "testing"

func TestBuildBySourceSingleSource(t *testing.T) {
	decoded := DecodedMappings{
		Row{
			{GenCol: 0, Arity: ArityGenColOnly},
			{GenCol: 4, SourceIdx: 0, SrcLine: 0, SrcCol: 0, Arity: ArityNoName},
			{GenCol: 8, SourceIdx: 0, SrcLine: 0, SrcCol: 4, Arity: ArityNoName},
		},
		Row{
			{GenCol: 2, SourceIdx: 0, SrcLine: 1, SrcCol: 0, Arity: ArityNoName},
		},
	}

	bySource := buildBySource(decoded, 1)
	if len(bySource) != 1 {
		t.Fatalf("expected 1 source, got %d", len(bySource))
	}

	line0 := bySource[0][0]
	if len(line0) != 2 || line0[0].OrigCol != 0 || line0[1].OrigCol != 4 {
		t.Fatalf("unexpected line 0 reverse row: %#v", line0)
	}
	if line0[0].GenLine != 0 || line0[0].GenCol != 4 {
		t.Errorf("unexpected reverse segment: %#v", line0[0])
	}

	line1 := bySource[0][1]
	if len(line1) != 1 || line1[0].GenLine != 1 || line1[0].GenCol != 2 {
		t.Fatalf("unexpected line 1 reverse row: %#v", line1)
	}
}

func TestBuildBySourceDuplicateTargetsPreserved(t *testing.T) {
	decoded := DecodedMappings{
		Row{
			{GenCol: 0, SourceIdx: 0, SrcLine: 0, SrcCol: 5, Arity: ArityNoName},
			{GenCol: 3, SourceIdx: 0, SrcLine: 0, SrcCol: 5, Arity: ArityNoName},
		},
	}
	bySource := buildBySource(decoded, 1)
	row := bySource[0][0]
	if len(row) != 2 {
		t.Fatalf("expected both duplicate-target segments preserved, got %d", len(row))
	}
	if row[0].GenCol != 0 || row[1].GenCol != 3 {
		t.Errorf("insertion order not preserved: %#v", row)
	}
}

func TestBuildBySourceUntouchedLinesAbsent(t *testing.T) {
	decoded := DecodedMappings{
		Row{{GenCol: 0, SourceIdx: 0, SrcLine: 5, SrcCol: 0, Arity: ArityNoName}},
	}
	bySource := buildBySource(decoded, 1)
	if bySource[0][0] != nil {
		t.Errorf("expected line 0 to be absent, got %#v", bySource[0][0])
	}
	if bySource[0][5] == nil {
		t.Error("expected line 5 to be present")
	}
}

func TestBuildBySourceArity1Ignored(t *testing.T) {
	decoded := DecodedMappings{
		Row{{GenCol: 0, Arity: ArityGenColOnly}},
	}
	bySource := buildBySource(decoded, 1)
	if len(bySource[0]) != 0 {
		t.Errorf("arity-1 segment should not populate the reverse index: %#v", bySource[0])
	}
}

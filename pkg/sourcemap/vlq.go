package sourcemap

// VLQ (Variable Length Quantity) codec for the source map `mappings`
// field. Based on the Source Map v3 specification: groups of 5 data bits,
// LSB-first, with the 6th bit of every non-final byte set as a
// continuation flag, and the low bit of the first group carrying the
// sign.

import "strings"

const (
	vlqBaseShift       = 5
	vlqBase            = 1 << vlqBaseShift // 32
	vlqBaseMask        = vlqBase - 1       // 31
	vlqContinuationBit = vlqBase           // 32
	vlqInt32MinMagic   = -0x80000000
)

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var base64Decode [256]int8

func init() {
	for i := range base64Decode {
		base64Decode[i] = -1
	}
	for i := 0; i < len(base64Chars); i++ {
		base64Decode[base64Chars[i]] = int8(i)
	}
}

// encodeVLQ appends the base64-VLQ encoding of value to buf.
func encodeVLQ(buf *strings.Builder, value int) {
	var vlq int
	switch {
	case value == vlqInt32MinMagic:
		// Magnitude bits all zero, sign bit set: the one value that can't
		// be produced by negating and shifting without overflow.
		vlq = 1
	case value < 0:
		vlq = ((-value) << 1) | 1
	default:
		vlq = value << 1
	}

	for {
		digit := vlq & vlqBaseMask
		vlq >>= vlqBaseShift

		if vlq > 0 {
			digit |= vlqContinuationBit
		}

		buf.WriteByte(base64Chars[digit])

		if vlq == 0 {
			break
		}
	}
}

// decodeVLQ reads one signed base64-VLQ integer from s starting at index i
// and returns its value and the index just past it.
func decodeVLQ(s string, i int) (value int, next int, err error) {
	var result, shift int
	start := i
	for {
		if i >= len(s) {
			return 0, 0, malformedMappingsErr(start, "unexpected end of input mid-integer")
		}
		digit := base64Decode[s[i]]
		i++
		if digit < 0 {
			return 0, 0, malformedMappingsErr(i-1, "invalid base64 character")
		}

		continuation := digit&vlqContinuationBit != 0
		result += int(digit&vlqBaseMask) << shift
		shift += vlqBaseShift

		if !continuation {
			break
		}
	}

	negate := result&1 != 0
	magnitude := result >> 1
	if negate {
		if magnitude == 0 {
			return vlqInt32MinMagic, i, nil
		}
		return -magnitude, i, nil
	}
	return magnitude, i, nil
}

// decodeMappings parses an encoded `mappings` string into decoded rows,
// maintaining the five-slot delta state from spec.md §4.1: genCol resets
// to 0 on every ';', the other four slots persist across lines. A row
// found to be non-monotonic in GenCol during decoding is stable-sorted
// before being appended to the result; already-sorted rows are left as-is.
func decodeMappings(s string) (DecodedMappings, error) {
	if len(s) == 0 {
		return DecodedMappings{}, nil
	}

	var rows DecodedMappings
	var row Row
	var genCol, sourceIdx, srcLine, srcCol, nameIdx int
	needsSort := false

	flush := func() {
		if needsSort {
			row = sortedRow(row)
		}
		rows = append(rows, row)
		row = nil
		needsSort = false
	}

	i, n := 0, len(s)
	for i < n {
		switch s[i] {
		case ';':
			flush()
			genCol = 0
			i++
			continue
		case ',':
			i++
			continue
		}

		var vals [5]int
		arity := 0
		for arity < 5 {
			if i >= n || s[i] == ';' || s[i] == ',' {
				break
			}
			v, next, err := decodeVLQ(s, i)
			if err != nil {
				return nil, err
			}
			vals[arity] = v
			i = next
			arity++
		}

		switch arity {
		case ArityGenColOnly, ArityNoName, ArityWithName:
		default:
			return nil, malformedMappingsErr(i, "segment has an unsupported number of fields")
		}

		genCol += vals[0]
		seg := Segment{GenCol: genCol, Arity: arity}
		if arity >= ArityNoName {
			sourceIdx += vals[1]
			srcLine += vals[2]
			srcCol += vals[3]
			seg.SourceIdx, seg.SrcLine, seg.SrcCol = sourceIdx, srcLine, srcCol
		}
		if arity == ArityWithName {
			nameIdx += vals[4]
			seg.NameIdx = nameIdx
		}

		if len(row) > 0 && row[len(row)-1].GenCol > seg.GenCol {
			needsSort = true
		}
		row = append(row, seg)
	}
	flush()

	return rows, nil
}

// encodeMappings is the inverse of decodeMappings for a decoded map whose
// rows are already sorted by GenCol (callers holding unsorted decoded rows
// must normalize first — see sort.go). Buffer growth is the
// strings.Builder default (amortized doubling); this never pre-sizes for
// an estimated total.
func encodeMappings(d DecodedMappings) string {
	var buf strings.Builder
	var sourceIdx, srcLine, srcCol, nameIdx int

	for line, row := range d {
		if line > 0 {
			buf.WriteByte(';')
		}
		genCol := 0
		for i, seg := range row {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodeVLQ(&buf, seg.GenCol-genCol)
			genCol = seg.GenCol
			if seg.Arity >= ArityNoName {
				encodeVLQ(&buf, seg.SourceIdx-sourceIdx)
				encodeVLQ(&buf, seg.SrcLine-srcLine)
				encodeVLQ(&buf, seg.SrcCol-srcCol)
				sourceIdx, srcLine, srcCol = seg.SourceIdx, seg.SrcLine, seg.SrcCol
			}
			if seg.Arity == ArityWithName {
				encodeVLQ(&buf, seg.NameIdx-nameIdx)
				nameIdx = seg.NameIdx
			}
		}
	}

	return buf.String()
}

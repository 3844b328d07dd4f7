// Package stl parses STL (stereolithography) triangle mesh data.
// Both the ASCII and the binary encoding are supported through a single
// entry point; the encoding is detected from the payload itself.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"
	"strconv"

	"github.com/Faultbox/stlview/pkg/math"
)

// STL format errors.
var (
	ErrTruncated       = errors.New("truncated STL data")
	ErrMalformedNumber = errors.New("malformed number in STL data")
)

// Binary layout constants.
const (
	binaryHeaderSize = 80 // opaque header, ignored
	binaryCountSize  = 4  // uint32 LE triangle count
	binaryRecordSize = 50 // 12B normal + 36B vertices + 2B attribute

	// detectWindow is how many leading bytes are inspected as text when
	// classifying the encoding.
	detectWindow = 256
)

// ASCII marker tokens.
const (
	facetToken  = "facet normal"
	vertexToken = "vertex"
)

// Encoding identifies how an STL payload is encoded.
type Encoding int

const (
	EncodingBinary Encoding = iota
	EncodingASCII
)

// String returns a human-readable encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingBinary:
		return "binary"
	case EncodingASCII:
		return "ascii"
	default:
		return fmt.Sprintf("Unknown(%d)", int(e))
	}
}

// Triangle is one facet: a face normal and three vertices.
// Triangles are independent; no shared-vertex topology is kept.
type Triangle struct {
	Normal   math.Vec3
	Vertices [3]math.Vec3
}

// DetectEncoding classifies a payload as ASCII or binary STL.
//
// The first 256 bytes (or the whole buffer, if shorter) are inspected as
// text; if both the facet-normal and the vertex marker appear there the
// payload is treated as ASCII. This mirrors how common STL tooling
// classifies files: it is a heuristic, not a signature check, and a
// binary file whose opaque header happens to contain both tokens is
// misclassified.
func DetectEncoding(data []byte) Encoding {
	window := data
	if len(window) > detectWindow {
		window = window[:detectWindow]
	}
	if bytes.Contains(window, []byte(facetToken)) && bytes.Contains(window, []byte(vertexToken)) {
		return EncodingASCII
	}
	return EncodingBinary
}

// Decode parses STL data in either encoding into a triangle list.
// Triangle order equals file order; no deduplication or winding
// correction is performed.
func Decode(data []byte) ([]Triangle, error) {
	if DetectEncoding(data) == EncodingASCII {
		return decodeASCII(data)
	}
	return decodeBinary(data)
}

// decodeBinary parses the fixed-layout binary encoding:
// 80-byte opaque header, uint32 LE triangle count, then 50-byte records
// (3x float32 normal, 9x float32 vertices, 2 attribute bytes, all LE).
func decodeBinary(data []byte) ([]Triangle, error) {
	if len(data) < binaryHeaderSize+binaryCountSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d for header",
			ErrTruncated, len(data), binaryHeaderSize+binaryCountSize)
	}

	count := binary.LittleEndian.Uint32(data[binaryHeaderSize:])
	need := uint64(binaryHeaderSize+binaryCountSize) + uint64(count)*binaryRecordSize
	if uint64(len(data)) < need {
		return nil, fmt.Errorf("%w: %d bytes, need %d for %d triangles",
			ErrTruncated, len(data), need, count)
	}

	tris := make([]Triangle, count)
	offset := binaryHeaderSize + binaryCountSize
	for i := range tris {
		rec := data[offset : offset+binaryRecordSize]
		tris[i].Normal = readVec3(rec, 0)
		tris[i].Vertices[0] = readVec3(rec, 12)
		tris[i].Vertices[1] = readVec3(rec, 24)
		tris[i].Vertices[2] = readVec3(rec, 36)
		// Trailing 2 attribute bytes are ignored.
		offset += binaryRecordSize
	}

	return tris, nil
}

// readVec3 reads three little-endian float32 values starting at off.
func readVec3(b []byte, off int) math.Vec3 {
	return math.Vec3{
		X: gomath.Float32frombits(binary.LittleEndian.Uint32(b[off:])),
		Y: gomath.Float32frombits(binary.LittleEndian.Uint32(b[off+4:])),
		Z: gomath.Float32frombits(binary.LittleEndian.Uint32(b[off+8:])),
	}
}

// decodeASCII parses the text encoding line by line. A facet-normal line
// sets the current normal; each vertex line appends one vertex under it,
// and every third vertex closes a triangle. A numeric field that does
// not parse is an error -- corrupt geometry must never be coerced to a
// placeholder value.
func decodeASCII(data []byte) ([]Triangle, error) {
	var (
		tris      []Triangle
		normal    math.Vec3
		verts     [3]math.Vec3
		nverts    int
		sawMarker bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := bytes.Fields(scanner.Bytes())
		if len(fields) == 0 {
			continue
		}

		switch string(fields[0]) {
		case "facet":
			if len(fields) < 5 || string(fields[1]) != "normal" {
				continue
			}
			sawMarker = true
			v, err := parseVec3(fields[2:5])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normal = v
			nverts = 0

		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: %w: vertex needs 3 fields", lineNo, ErrMalformedNumber)
			}
			sawMarker = true
			v, err := parseVec3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			verts[nverts] = v
			nverts++
			if nverts == 3 {
				tris = append(tris, Triangle{Normal: normal, Vertices: verts})
				nverts = 0
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading STL text: %w", err)
	}

	if !sawMarker {
		return nil, fmt.Errorf("%w: no facet or vertex markers found", ErrTruncated)
	}

	return tris, nil
}

// parseVec3 parses three whitespace-separated float fields.
func parseVec3(fields [][]byte) (math.Vec3, error) {
	var out [3]float32
	for i, f := range fields {
		v, err := strconv.ParseFloat(string(f), 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("%w: %q", ErrMalformedNumber, f)
		}
		out[i] = float32(v)
	}
	return math.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

package stl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"
	"strings"
	"testing"

	"github.com/Faultbox/stlview/pkg/math"
)

// cubeTriangles returns the 12 facets of a unit cube, two per face.
func cubeTriangles() []Triangle {
	quad := func(n math.Vec3, a, b, c, d math.Vec3) []Triangle {
		return []Triangle{
			{Normal: n, Vertices: [3]math.Vec3{a, b, c}},
			{Normal: n, Vertices: [3]math.Vec3{a, c, d}},
		}
	}

	p := func(x, y, z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }

	var tris []Triangle
	tris = append(tris, quad(p(0, 0, -1), p(0, 0, 0), p(0, 1, 0), p(1, 1, 0), p(1, 0, 0))...)
	tris = append(tris, quad(p(0, 0, 1), p(0, 0, 1), p(1, 0, 1), p(1, 1, 1), p(0, 1, 1))...)
	tris = append(tris, quad(p(-1, 0, 0), p(0, 0, 0), p(0, 0, 1), p(0, 1, 1), p(0, 1, 0))...)
	tris = append(tris, quad(p(1, 0, 0), p(1, 0, 0), p(1, 1, 0), p(1, 1, 1), p(1, 0, 1))...)
	tris = append(tris, quad(p(0, -1, 0), p(0, 0, 0), p(1, 0, 0), p(1, 0, 1), p(0, 0, 1))...)
	tris = append(tris, quad(p(0, 1, 0), p(0, 1, 0), p(0, 1, 1), p(1, 1, 1), p(1, 1, 0))...)
	return tris
}

// encodeBinarySTL builds a binary STL payload from triangles.
func encodeBinarySTL(tris []Triangle) []byte {
	buf := make([]byte, binaryHeaderSize+binaryCountSize+len(tris)*binaryRecordSize)
	binary.LittleEndian.PutUint32(buf[binaryHeaderSize:], uint32(len(tris)))

	putVec3 := func(off int, v math.Vec3) {
		binary.LittleEndian.PutUint32(buf[off:], gomath.Float32bits(v.X))
		binary.LittleEndian.PutUint32(buf[off+4:], gomath.Float32bits(v.Y))
		binary.LittleEndian.PutUint32(buf[off+8:], gomath.Float32bits(v.Z))
	}

	off := binaryHeaderSize + binaryCountSize
	for _, tri := range tris {
		putVec3(off, tri.Normal)
		putVec3(off+12, tri.Vertices[0])
		putVec3(off+24, tri.Vertices[1])
		putVec3(off+36, tri.Vertices[2])
		off += binaryRecordSize
	}
	return buf
}

// encodeASCIISTL builds a text STL payload from triangles.
func encodeASCIISTL(tris []Triangle) []byte {
	var b bytes.Buffer
	fmt.Fprintln(&b, "solid cube")
	for _, tri := range tris {
		fmt.Fprintf(&b, "  facet normal %g %g %g\n", tri.Normal.X, tri.Normal.Y, tri.Normal.Z)
		fmt.Fprintln(&b, "    outer loop")
		for _, v := range tri.Vertices {
			fmt.Fprintf(&b, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintln(&b, "    endloop")
		fmt.Fprintln(&b, "  endfacet")
	}
	fmt.Fprintln(&b, "endsolid cube")
	return b.Bytes()
}

func TestDetectEncoding(t *testing.T) {
	cube := cubeTriangles()

	tests := []struct {
		name string
		data []byte
		want Encoding
	}{
		{"ascii cube", encodeASCIISTL(cube), EncodingASCII},
		{"binary cube", encodeBinarySTL(cube), EncodingBinary},
		{"empty", []byte{}, EncodingBinary},
		{"vertex token only", []byte("vertex 0 0 0"), EncodingBinary},
		{"facet token only", []byte("facet normal 0 0 1"), EncodingBinary},
		{"tokens beyond window", append(make([]byte, detectWindow), []byte("facet normal vertex")...), EncodingBinary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectEncoding(tt.data); got != tt.want {
				t.Errorf("DetectEncoding() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeBinaryCube(t *testing.T) {
	cube := cubeTriangles()
	got, err := Decode(encodeBinarySTL(cube))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if len(got) != 12 {
		t.Fatalf("expected 12 triangles, got %d", len(got))
	}

	// Binary floats round-trip exactly; order must equal file order.
	for i := range cube {
		if got[i] != cube[i] {
			t.Errorf("triangle %d = %+v, want %+v", i, got[i], cube[i])
		}
	}
}

func TestDecodeCrossEncodingEquivalence(t *testing.T) {
	cube := cubeTriangles()

	fromBinary, err := Decode(encodeBinarySTL(cube))
	if err != nil {
		t.Fatalf("binary decode failed: %v", err)
	}
	fromASCII, err := Decode(encodeASCIISTL(cube))
	if err != nil {
		t.Fatalf("ascii decode failed: %v", err)
	}

	if len(fromASCII) != len(fromBinary) {
		t.Fatalf("triangle count mismatch: ascii %d, binary %d", len(fromASCII), len(fromBinary))
	}

	const eps = 1e-6
	closeVec := func(a, b math.Vec3) bool {
		return a.Sub(b).Length() < eps
	}
	for i := range fromBinary {
		if !closeVec(fromASCII[i].Normal, fromBinary[i].Normal) {
			t.Errorf("triangle %d normal: ascii %+v, binary %+v", i, fromASCII[i].Normal, fromBinary[i].Normal)
		}
		for j := range fromBinary[i].Vertices {
			if !closeVec(fromASCII[i].Vertices[j], fromBinary[i].Vertices[j]) {
				t.Errorf("triangle %d vertex %d: ascii %+v, binary %+v",
					i, j, fromASCII[i].Vertices[j], fromBinary[i].Vertices[j])
			}
		}
	}
}

func TestDecodeBinaryTruncated(t *testing.T) {
	full := encodeBinarySTL(cubeTriangles())

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"header only", full[:binaryHeaderSize]},
		{"header and count only", full[:binaryHeaderSize+binaryCountSize]},
		{"one byte short", full[:len(full)-1]},
		{"mid record", full[:binaryHeaderSize+binaryCountSize+binaryRecordSize+17]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris, err := Decode(tt.data)
			if !errors.Is(err, ErrTruncated) {
				t.Errorf("Decode() error = %v, want ErrTruncated", err)
			}
			if tris != nil {
				t.Errorf("Decode() returned %d triangles on truncated data", len(tris))
			}
		})
	}
}

func TestDecodeBinaryHugeCountDoesNotOverread(t *testing.T) {
	// Declared count far beyond the buffer must fail, not read past it.
	data := make([]byte, binaryHeaderSize+binaryCountSize)
	binary.LittleEndian.PutUint32(data[binaryHeaderSize:], 0xFFFFFFFF)

	if _, err := Decode(data); !errors.Is(err, ErrTruncated) {
		t.Errorf("Decode() error = %v, want ErrTruncated", err)
	}
}

func TestDecodeASCIIMalformedNumber(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			"bad vertex field",
			"facet normal 0 0 1\nvertex 0 0 0\nvertex 1 zero 0\nvertex 0 1 0\n",
		},
		{
			"bad normal field",
			"facet normal 0 oops 1\nvertex 0 0 0\nvertex 1 0 0\nvertex 0 1 0\n",
		},
		{
			"missing vertex field",
			"facet normal 0 0 1\nvertex 0 0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris, err := Decode([]byte(tt.body))
			if !errors.Is(err, ErrMalformedNumber) {
				t.Errorf("Decode() error = %v, want ErrMalformedNumber", err)
			}
			if tris != nil {
				t.Errorf("Decode() returned %d triangles on malformed data", len(tris))
			}
		})
	}
}

func TestDecodeASCIIScientificNotation(t *testing.T) {
	body := strings.Join([]string{
		"solid s",
		"facet normal 0.0e0 0 1.0E0",
		"vertex -1.5e-1 0 0",
		"vertex 1 2.25e2 0",
		"vertex 0 1 3e-3",
		"endfacet",
		"endsolid s",
	}, "\n")

	tris, err := Decode([]byte(body))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(tris) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(tris))
	}
	if tris[0].Vertices[0].X != -0.15 {
		t.Errorf("vertex X = %v, want -0.15", tris[0].Vertices[0].X)
	}
	if tris[0].Vertices[1].Y != 225 {
		t.Errorf("vertex Y = %v, want 225", tris[0].Vertices[1].Y)
	}
}

func TestDecodeBinaryExtraTrailingBytesIgnored(t *testing.T) {
	// Only the declared record range is read; trailing junk is fine.
	data := append(encodeBinarySTL(cubeTriangles()), 0xDE, 0xAD, 0xBE, 0xEF)
	tris, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(tris) != 12 {
		t.Errorf("expected 12 triangles, got %d", len(tris))
	}
}

func TestEncodingString(t *testing.T) {
	tests := []struct {
		enc  Encoding
		want string
	}{
		{EncodingBinary, "binary"},
		{EncodingASCII, "ascii"},
		{Encoding(7), "Unknown(7)"},
	}

	for _, tt := range tests {
		if got := tt.enc.String(); got != tt.want {
			t.Errorf("Encoding(%d).String() = %q, want %q", int(tt.enc), got, tt.want)
		}
	}
}

package viewer

import (
	"bytes"
	"encoding/binary"

	"github.com/Faultbox/stlview/pkg/math"
	"github.com/Faultbox/stlview/pkg/stl"
)

// encodeBinary builds a binary mesh payload from triangles.
func encodeBinary(tris []stl.Triangle) []byte {
	var buf bytes.Buffer
	buf.Write(make([]byte, 80))
	binary.Write(&buf, binary.LittleEndian, uint32(len(tris)))
	for _, tri := range tris {
		writeVec3(&buf, tri.Normal)
		for _, v := range tri.Vertices {
			writeVec3(&buf, v)
		}
		binary.Write(&buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

// encodeBinaryTruncated claims one triangle but omits its record.
func encodeBinaryTruncated() []byte {
	var buf bytes.Buffer
	buf.Write(make([]byte, 80))
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	return buf.Bytes()
}

func singleTriangleSTL() []byte {
	return encodeBinary([]stl.Triangle{
		{
			Normal: math.Vec3{Z: 1},
			Vertices: [3]math.Vec3{
				{X: 0, Y: 0, Z: 0},
				{X: 1, Y: 0, Z: 0},
				{X: 0, Y: 1, Z: 0},
			},
		},
	})
}

func writeVec3(buf *bytes.Buffer, v math.Vec3) {
	binary.Write(buf, binary.LittleEndian, v.X)
	binary.Write(buf, binary.LittleEndian, v.Y)
	binary.Write(buf, binary.LittleEndian, v.Z)
}

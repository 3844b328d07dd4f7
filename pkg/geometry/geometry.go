// Package geometry assembles decoded triangles into renderable buffers.
package geometry

import (
	"github.com/Faultbox/stlview/pkg/math"
	"github.com/Faultbox/stlview/pkg/stl"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the center of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the per-axis extent of the box (always >= 0).
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Mesh is a flat-shaded triangle mesh ready for GPU upload.
//
// Positions holds 3 floats per vertex, 3 vertices per triangle, in file
// order. Normals has the same shape, with each face normal repeated for
// all three vertices of its triangle. The format carries only per-face
// normals; duplicating them is a deliberate flat-shading choice, not a
// place to synthesize smooth vertex normals.
type Mesh struct {
	Positions []float32
	Normals   []float32
	Bounds    Bounds
}

// Build flattens triangles into a mesh and computes its bounding box.
// The box is always recomputed from the exact vertex set that will be
// rendered, never taken from file metadata.
func Build(tris []stl.Triangle) *Mesh {
	m := &Mesh{
		Positions: make([]float32, 0, len(tris)*9),
		Normals:   make([]float32, 0, len(tris)*9),
	}

	first := true
	for _, tri := range tris {
		for _, v := range tri.Vertices {
			m.Positions = append(m.Positions, v.X, v.Y, v.Z)
			m.Normals = append(m.Normals, tri.Normal.X, tri.Normal.Y, tri.Normal.Z)

			if first {
				m.Bounds.Min, m.Bounds.Max = v, v
				first = false
				continue
			}
			m.Bounds.Min = m.Bounds.Min.Min(v)
			m.Bounds.Max = m.Bounds.Max.Max(v)
		}
	}

	return m
}

// VertexCount returns the number of vertices (3 per triangle).
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Positions) / 9
}

// Dimensions returns the per-axis extent of the bounding box, in the
// source file's units.
func (m *Mesh) Dimensions() math.Vec3 {
	return m.Bounds.Size()
}

// Center translates all vertices so the bounding-box center sits at the
// origin and returns the offset that was applied. Centering is a display
// policy: callers that report dimensions read them before or after, the
// extent is unchanged either way.
func (m *Mesh) Center() math.Vec3 {
	offset := m.Bounds.Center()
	if offset == (math.Vec3{}) {
		return offset
	}

	for i := 0; i < len(m.Positions); i += 3 {
		m.Positions[i] -= offset.X
		m.Positions[i+1] -= offset.Y
		m.Positions[i+2] -= offset.Z
	}
	m.Bounds.Min = m.Bounds.Min.Sub(offset)
	m.Bounds.Max = m.Bounds.Max.Sub(offset)

	return offset
}

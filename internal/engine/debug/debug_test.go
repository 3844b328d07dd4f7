package debug

import (
	"os"
	"testing"

	"github.com/Faultbox/stlview/pkg/geometry"
	"github.com/Faultbox/stlview/pkg/math"
)

func TestImageFromPixelsFlipsRows(t *testing.T) {
	// 1x2 image: bottom row red, top row green.
	pixels := []byte{
		255, 0, 0, 255, // row 0 (bottom in GL)
		0, 255, 0, 255, // row 1 (top in GL)
	}

	img, err := ImageFromPixels(pixels, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	top := img.RGBAAt(0, 0)
	bottom := img.RGBAAt(0, 1)
	if top.G != 255 || top.R != 0 {
		t.Errorf("expected green at image top, got %+v", top)
	}
	if bottom.R != 255 || bottom.G != 0 {
		t.Errorf("expected red at image bottom, got %+v", bottom)
	}
}

func TestImageFromPixelsSizeMismatch(t *testing.T) {
	if _, err := ImageFromPixels(make([]byte, 7), 2, 2); err == nil {
		t.Error("expected error for short pixel buffer")
	}
}

func TestSnapshotterSave(t *testing.T) {
	dir := t.TempDir()
	s := NewSnapshotter(dir, "snap")

	pixels := make([]byte, 4*4*4)
	path, err := s.Save(pixels, 4, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected non-empty PNG file")
	}
}

func TestBoundsWireframe(t *testing.T) {
	b := geometry.Bounds{
		Min: math.Vec3{X: -1, Y: -2, Z: -3},
		Max: math.Vec3{X: 1, Y: 2, Z: 3},
	}

	verts := BoundsWireframe(b)
	if len(verts) != BoundsWireframeVertexCount*3 {
		t.Fatalf("expected %d floats, got %d", BoundsWireframeVertexCount*3, len(verts))
	}

	// Every coordinate must sit on the box surface.
	for i := 0; i < len(verts); i += 3 {
		x, y, z := verts[i], verts[i+1], verts[i+2]
		if x < -1 || x > 1 || y < -2 || y > 2 || z < -3 || z > 3 {
			t.Fatalf("vertex (%v,%v,%v) outside bounds", x, y, z)
		}
	}
}

package math

import (
	gomath "math"
	"testing"
)

func almostEqual(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-5
}

func TestIdentityTransformPoint(t *testing.T) {
	m := Identity()
	p := Vec3{1, 2, 3}
	if got := m.TransformPoint(p); got != p {
		t.Errorf("Identity().TransformPoint(%v) = %v", p, got)
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(10, -5, 2)
	got := m.TransformPoint(Vec3{1, 1, 1})
	want := Vec3{11, -4, 3}
	if got != want {
		t.Errorf("Translate().TransformPoint() = %v, want %v", got, want)
	}
}

func TestRotateY(t *testing.T) {
	m := RotateY(gomath.Pi / 2)
	got := m.TransformPoint(Vec3{1, 0, 0})
	// Rotating +X by 90 degrees around Y lands on -Z.
	if !almostEqual(got.X, 0) || !almostEqual(got.Y, 0) || !almostEqual(got.Z, -1) {
		t.Errorf("RotateY(pi/2).TransformPoint(1,0,0) = %v, want (0,0,-1)", got)
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(3, 4, 5).Mul(RotateY(0.7))
	got := m.Mul(Identity())
	if got != m {
		t.Errorf("m.Mul(Identity()) = %v, want %v", got, m)
	}
}

func TestLookAtEyePosition(t *testing.T) {
	eye := Vec3{0, 0, 10}
	center := Vec3{0, 0, 0}
	up := Vec3{0, 1, 0}
	view := LookAt(eye, center, up)

	// The eye must map to the view-space origin.
	got := view.TransformPoint(eye)
	if !almostEqual(got.X, 0) || !almostEqual(got.Y, 0) || !almostEqual(got.Z, 0) {
		t.Errorf("LookAt view maps eye to %v, want origin", got)
	}

	// The target must land on the negative Z axis at the eye distance.
	got = view.TransformPoint(center)
	if !almostEqual(got.Z, -10) {
		t.Errorf("LookAt view maps center to %v, want z=-10", got)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := Perspective(0.785398, 1.0, 0.1, 100.0)

	// A point on the near plane projects to NDC z=-1.
	near := proj.TransformPoint(Vec3{0, 0, -0.1})
	if !almostEqual(near.Z, -1) {
		t.Errorf("near plane projects to z=%v, want -1", near.Z)
	}

	// A point on the far plane projects to NDC z=+1.
	far := proj.TransformPoint(Vec3{0, 0, -100})
	if !almostEqual(far.Z, 1) {
		t.Errorf("far plane projects to z=%v, want 1", far.Z)
	}
}

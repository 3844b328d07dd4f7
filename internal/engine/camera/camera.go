// Package camera provides the orbit camera used to inspect a mesh.
package camera

import (
	gomath "math"

	"github.com/Faultbox/stlview/pkg/geometry"
	"github.com/Faultbox/stlview/pkg/math"
)

// OrbitCamera orbits around a target point. Drag and zoom input feeds
// target values that the camera eases toward each frame, so motion
// stays smooth regardless of how bursty the input events are.
type OrbitCamera struct {
	// Target point to orbit around
	Target math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from target
	Pitch    float32 // Vertical angle, radians
	Yaw      float32 // Horizontal angle, radians

	// Input targets the camera eases toward
	targetDistance float32
	targetPitch    float32
	targetYaw      float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
	PanSensitivity  float32

	// Auto-rotation
	AutoRotate  bool
	RotateSpeed float32 // radians per second

	// Damping controls how fast the camera eases toward its input
	// targets; higher values settle faster.
	Damping float32

	// Margin scales the fit distance relative to the largest mesh
	// dimension.
	Margin float32

	// fit state restored by Reset
	fitTarget   math.Vec3
	fitDistance float32
	fitPitch    float32
	fitYaw      float32
}

// New creates an orbit camera with viewer defaults.
func New() *OrbitCamera {
	c := &OrbitCamera{
		Distance:        100.0,
		Pitch:           0.4,
		Yaw:             0.6,
		MinDistance:     0.01,
		MaxDistance:     1e6,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.008,
		ZoomSensitivity: 0.1,
		PanSensitivity:  0.002,
		RotateSpeed:     0.8,
		Damping:         10.0,
		Margin:          2.0,
	}
	c.targetDistance = c.Distance
	c.targetPitch = c.Pitch
	c.targetYaw = c.Yaw
	c.snapshotFit()
	return c
}

// Eye returns the camera position in world space.
func (c *OrbitCamera) Eye() math.Vec3 {
	x := c.Distance * float32(gomath.Cos(float64(c.Pitch))*gomath.Sin(float64(c.Yaw)))
	y := c.Distance * float32(gomath.Sin(float64(c.Pitch)))
	z := c.Distance * float32(gomath.Cos(float64(c.Pitch))*gomath.Cos(float64(c.Yaw)))

	return math.Vec3{
		X: c.Target.X + x,
		Y: c.Target.Y + y,
		Z: c.Target.Z + z,
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.Eye(), c.Target, up)
}

// HandleDrag updates rotation targets from a mouse drag delta in pixels.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.targetYaw += deltaX * c.DragSensitivity
	c.targetPitch += deltaY * c.DragSensitivity
	c.targetPitch = clamp(c.targetPitch, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates the distance target from a scroll wheel delta.
// Zoom steps are proportional to the current distance so the feel is
// consistent across model scales.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.targetDistance -= delta * c.targetDistance * c.ZoomSensitivity
	c.targetDistance = clamp(c.targetDistance, c.MinDistance, c.MaxDistance)
}

// HandlePan shifts the orbit target in the camera's screen plane.
func (c *OrbitCamera) HandlePan(deltaX, deltaY float32) {
	// Pan speed scales with distance for consistent feel.
	speed := c.Distance * c.PanSensitivity

	sinYaw := float32(gomath.Sin(float64(c.Yaw)))
	cosYaw := float32(gomath.Cos(float64(c.Yaw)))

	// Camera right vector on the XZ plane.
	right := math.Vec3{X: cosYaw, Y: 0, Z: -sinYaw}
	up := math.Vec3{X: 0, Y: 1, Z: 0}

	c.Target = c.Target.Add(right.Scale(-deltaX * speed))
	c.Target = c.Target.Add(up.Scale(deltaY * speed))
}

// Update advances auto-rotation and eases the camera toward its input
// targets. dt is the frame delta in seconds.
func (c *OrbitCamera) Update(dt float32) {
	if c.AutoRotate {
		c.targetYaw += c.RotateSpeed * dt
	}

	// Exponential ease toward targets. The factor approaches 1 for
	// large dt so a stalled frame cannot overshoot.
	t := 1 - float32(gomath.Exp(float64(-c.Damping*dt)))
	c.Yaw += (c.targetYaw - c.Yaw) * t
	c.Pitch += (c.targetPitch - c.Pitch) * t
	c.Distance += (c.targetDistance - c.Distance) * t
}

// Fit positions the camera so the given bounds are fully visible.
// The distance is the largest bounding dimension scaled by Margin,
// with a floor for degenerate meshes.
func (c *OrbitCamera) Fit(b geometry.Bounds) {
	c.Target = b.Center()

	maxDim := b.Size().MaxComponent()
	distance := maxDim * c.Margin
	if distance < 10 {
		distance = 10
	}

	c.Distance = distance
	c.targetDistance = distance
	c.MinDistance = distance * 0.05
	c.MaxDistance = distance * 20

	c.Pitch = 0.4
	c.Yaw = 0.6
	c.targetPitch = c.Pitch
	c.targetYaw = c.Yaw

	c.snapshotFit()
}

// Reset restores the view established by the last Fit call.
func (c *OrbitCamera) Reset() {
	c.Target = c.fitTarget
	c.Distance = c.fitDistance
	c.Pitch = c.fitPitch
	c.Yaw = c.fitYaw
	c.targetDistance = c.fitDistance
	c.targetPitch = c.fitPitch
	c.targetYaw = c.fitYaw
}

func (c *OrbitCamera) snapshotFit() {
	c.fitTarget = c.Target
	c.fitDistance = c.Distance
	c.fitPitch = c.Pitch
	c.fitYaw = c.Yaw
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

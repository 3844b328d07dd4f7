// Package viewer owns the render session: it turns mesh URLs into
// uploaded geometry and keeps the display consistent across rapid
// reloads, errors and shutdown.
package viewer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/stlview/internal/engine/camera"
	"github.com/Faultbox/stlview/internal/logger"
	"github.com/Faultbox/stlview/pkg/geometry"
	"github.com/Faultbox/stlview/pkg/math"
	"github.com/Faultbox/stlview/pkg/stl"
)

// State describes what the session is currently showing.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Renderer is the GPU surface the session draws to. The production
// implementation lives in internal/engine/renderer; tests use fakes.
type Renderer interface {
	UploadMesh(mesh *geometry.Mesh) error
	DisposeMesh()
	Render(view, proj math.Mat4)
	Close()
}

// completion carries the outcome of one load back to the render thread.
type completion struct {
	generation uint64
	mesh       *geometry.Mesh
	dims       math.Vec3
	url        string
	err        error
}

// Session drives load, display and teardown for one viewing surface.
//
// Load may be called any number of times; only the most recent call's
// outcome ever reaches the screen. Loads run off the render thread and
// hand their result back through a buffered channel that Tick drains,
// so all state transitions happen on the render thread.
type Session struct {
	fetcher  Fetcher
	renderer Renderer
	Camera   *camera.OrbitCamera

	state State
	err   error
	mesh  *geometry.Mesh
	url   string
	dims  math.Vec3

	aspect float32

	mu          sync.Mutex
	generation  uint64
	cancel      context.CancelFunc
	completions chan completion

	closed bool

	// OnDimensions is invoked on the render thread when a mesh becomes
	// ready, with its pre-centering extent per axis.
	OnDimensions func(dims math.Vec3)
	// OnError is invoked on the render thread when a load fails.
	OnError func(err error)
}

// NewSession creates an empty session drawing to the given renderer.
func NewSession(fetcher Fetcher, renderer Renderer, cam *camera.OrbitCamera) *Session {
	return &Session{
		fetcher:     fetcher,
		renderer:    renderer,
		Camera:      cam,
		state:       StateEmpty,
		aspect:      4.0 / 3.0,
		completions: make(chan completion, 1),
	}
}

// State returns the current session state.
func (s *Session) State() State { return s.state }

// Err returns the error behind StateError, nil otherwise.
func (s *Session) Err() error { return s.err }

// URL returns the URL of the currently displayed or loading mesh.
func (s *Session) URL() string { return s.url }

// Mesh returns the currently displayed mesh, nil unless StateReady.
func (s *Session) Mesh() *geometry.Mesh { return s.mesh }

// Dimensions returns the displayed mesh's pre-centering extent.
func (s *Session) Dimensions() math.Vec3 { return s.dims }

// SetViewport updates the projection aspect ratio.
func (s *Session) SetViewport(width, height int) {
	if height > 0 {
		s.aspect = float32(width) / float32(height)
	}
}

// Load starts fetching and decoding the mesh at url. Any in-flight load
// is cancelled and its eventual outcome discarded. Call on the render
// thread.
func (s *Session) Load(url string) {
	if s.closed {
		return
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	cancel := s.cancel
	ctx, newCancel := context.WithCancel(context.Background())
	s.cancel = newCancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	s.state = StateLoading
	s.url = url
	s.err = nil
	logger.Info("loading mesh", zap.String("url", url))

	go s.load(ctx, gen, url)
}

// load runs off the render thread: fetch, decode, build, center.
func (s *Session) load(ctx context.Context, gen uint64, url string) {
	data, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.deliver(completion{generation: gen, url: url, err: err})
		return
	}
	if ctx.Err() != nil {
		return
	}

	tris, err := stl.Decode(data)
	if err != nil {
		s.deliver(completion{generation: gen, url: url, err: err})
		return
	}

	mesh := geometry.Build(tris)
	dims := mesh.Dimensions()
	mesh.Center()

	s.deliver(completion{generation: gen, mesh: mesh, dims: dims, url: url})
}

// deliver hands a completion to the render thread. Superseded results
// are dropped here so a stale load can never displace the newest one
// from the buffer.
func (s *Session) deliver(c completion) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.generation != s.generation {
		return
	}

	select {
	case <-s.completions:
	default:
	}
	s.completions <- c
}

// Tick advances the session by one frame: applies the latest load
// outcome if one arrived, updates the camera and issues one render.
// dt is the frame delta in seconds. Call on the render thread.
func (s *Session) Tick(dt float32) {
	if s.closed {
		return
	}

	select {
	case c := <-s.completions:
		s.apply(c)
	default:
	}

	s.Camera.Update(dt)

	if s.state == StateReady {
		view := s.Camera.ViewMatrix()
		proj := s.projection()
		s.renderer.Render(view, proj)
	}
}

// apply commits a load outcome. Runs on the render thread only.
func (s *Session) apply(c completion) {
	s.mu.Lock()
	current := c.generation == s.generation
	s.mu.Unlock()
	if !current {
		return
	}

	if c.err != nil {
		s.state = StateError
		s.err = c.err
		logger.Error("mesh load failed", zap.String("url", c.url), zap.Error(c.err))
		if s.OnError != nil {
			s.OnError(c.err)
		}
		return
	}

	s.renderer.DisposeMesh()
	s.mesh = nil

	if err := s.renderer.UploadMesh(c.mesh); err != nil {
		s.state = StateError
		s.err = &RenderError{Op: "upload", Err: err}
		logger.Error("mesh upload failed", zap.String("url", c.url), zap.Error(err))
		if s.OnError != nil {
			s.OnError(s.err)
		}
		return
	}

	s.mesh = c.mesh
	s.dims = c.dims
	s.state = StateReady
	s.err = nil

	s.Camera.Fit(c.mesh.Bounds)

	logger.Info("mesh ready",
		zap.String("url", c.url),
		zap.Int("triangles", c.mesh.TriangleCount()),
		zap.String("dimensions", fmt.Sprintf("%.2f x %.2f x %.2f", c.dims.X, c.dims.Y, c.dims.Z)))

	if s.OnDimensions != nil {
		s.OnDimensions(c.dims)
	}
}

// projection builds a perspective matrix whose depth range tracks the
// camera distance, so both tiny and huge models stay inside the
// near/far planes.
func (s *Session) projection() math.Mat4 {
	near := s.Camera.Distance * 0.01
	far := s.Camera.Distance * 100
	return math.Perspective(math.Radians(45), s.aspect, near, far)
}

// Close cancels any in-flight load and releases GPU resources. It is
// idempotent and synchronous: after it returns no further upload,
// render or callback will happen.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true

	s.mu.Lock()
	// A closed session accepts no generation, so late deliveries drop.
	s.generation++
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	s.renderer.DisposeMesh()
	s.renderer.Close()
	s.mesh = nil
	s.state = StateEmpty
}

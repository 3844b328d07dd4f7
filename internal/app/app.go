// Package app implements the viewer application loop.
package app

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/stlview/internal/config"
	"github.com/Faultbox/stlview/internal/engine/camera"
	"github.com/Faultbox/stlview/internal/engine/debug"
	"github.com/Faultbox/stlview/internal/engine/input"
	"github.com/Faultbox/stlview/internal/engine/renderer"
	"github.com/Faultbox/stlview/internal/engine/window"
	"github.com/Faultbox/stlview/internal/logger"
	"github.com/Faultbox/stlview/internal/preview"
	"github.com/Faultbox/stlview/internal/viewer"
	"github.com/Faultbox/stlview/pkg/math"
)

// App owns the window, the render session and the event loop.
type App struct {
	cfg     *config.Config
	running bool

	window    *window.Window
	renderer  *renderer.Renderer
	input     *input.Input
	camera    *camera.OrbitCamera
	session   *viewer.Session
	preview   *preview.Server
	snapshots *debug.Snapshotter

	// url is the current mesh location, kept for reloads.
	url string
}

// New creates the application. url may be empty; the viewer then starts
// with an empty session.
func New(cfg *config.Config, url string) (*App, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	a := &App{
		cfg: cfg,
		url: url,
	}

	// Create window (this also creates the OpenGL context)
	var err error
	a.window, err = window.New(window.Config{
		Title:      "stlview",
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since the OpenGL context must exist)
	drawW, drawH := a.window.GetDrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:  drawW,
		Height: drawH,
	})
	if err != nil {
		a.window.Close()
		return nil, &viewer.RenderError{Op: "init", Err: err}
	}

	a.input = input.New()

	a.camera = camera.New()
	a.camera.Margin = cfg.Camera.Margin
	a.camera.AutoRotate = cfg.Camera.AutoRotate
	a.camera.RotateSpeed = cfg.Camera.RotateSpeed

	fetcher := viewer.NewHTTPFetcher(cfg.Fetch.Timeout, cfg.Fetch.MaxBytes)
	a.session = viewer.NewSession(fetcher, a.renderer, a.camera)
	a.session.SetViewport(drawW, drawH)
	a.session.OnDimensions = a.onDimensions
	a.session.OnError = a.onError

	a.snapshots = debug.NewSnapshotter(".", "stlview")

	if cfg.Preview.Enabled {
		a.preview = preview.NewServer(cfg.Preview.Listen, cfg.Preview.FrameWidth)
		a.preview.Start()
	}

	logger.Info("viewer initialized")
	return a, nil
}

// Run starts the main loop. It returns when the window is closed or
// Escape is pressed.
func (a *App) Run() error {
	a.running = true

	if a.url != "" {
		a.session.Load(a.url)
		a.syncStatus()
	}

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting viewer loop")

	for a.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		// 1. Process input
		if a.input.Update() {
			a.running = false
			break
		}
		a.handleEvents()

		// 2. Advance the session and render
		a.renderer.Clear()
		a.session.Tick(dt)

		// 3. Stream to connected browsers before presenting; the back
		// buffer still holds this frame.
		if a.preview != nil && a.preview.HasClients() {
			pixels, w, h := a.renderer.ReadPixels()
			if err := a.preview.Publish(pixels, w, h); err != nil {
				logger.Debug("preview publish failed", zap.Error(err))
			}
		}

		// 4. Present
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// handleEvents applies pending input events to the session and camera.
func (a *App) handleEvents() {
	for _, event := range a.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			drawW, drawH := a.window.GetDrawableSize()
			a.renderer.Resize(drawW, drawH)
			a.session.SetViewport(drawW, drawH)

		case input.EventKeyDown:
			a.handleKey(event.Key)

		case input.EventMouseMove:
			if a.input.LeftButtonDown() {
				a.camera.HandleDrag(float32(event.DeltaX), float32(event.DeltaY))
			} else if a.input.RightButtonDown() {
				a.camera.HandlePan(float32(event.DeltaX), float32(event.DeltaY))
			}

		case input.EventMouseWheel:
			a.camera.HandleZoom(float32(event.DeltaY))
		}
	}
}

func (a *App) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		a.running = false

	case sdl.SCANCODE_SPACE:
		a.camera.AutoRotate = !a.camera.AutoRotate
		logger.Info("auto-rotate toggled", zap.Bool("enabled", a.camera.AutoRotate))
		a.syncStatus()

	case sdl.SCANCODE_R:
		if a.url != "" {
			a.session.Load(a.url)
			a.syncStatus()
		}

	case sdl.SCANCODE_0:
		a.camera.Reset()

	case sdl.SCANCODE_B:
		a.renderer.ShowBounds = !a.renderer.ShowBounds

	case sdl.SCANCODE_S:
		pixels, w, h := a.renderer.ReadPixels()
		path, err := a.snapshots.Save(pixels, w, h)
		if err != nil {
			logger.Error("snapshot failed", zap.Error(err))
		} else {
			logger.Info("snapshot saved", zap.String("path", path))
		}
	}
}

// Load switches the viewer to a new mesh URL.
func (a *App) Load(url string) {
	a.url = url
	a.session.Load(url)
	a.syncStatus()
}

// onDimensions runs on the render thread when a mesh becomes ready.
func (a *App) onDimensions(dims math.Vec3) {
	a.window.SetTitle(fmt.Sprintf("stlview - %s (%.2f x %.2f x %.2f)",
		a.session.URL(), dims.X, dims.Y, dims.Z))
	a.syncStatus()
}

// onError runs on the render thread when a load fails.
func (a *App) onError(err error) {
	a.window.SetTitle("stlview - load failed")
	a.syncStatus()
}

// syncStatus pushes the session state to the preview server.
func (a *App) syncStatus() {
	if a.preview == nil {
		return
	}

	st := preview.Status{
		State:      a.session.State().String(),
		URL:        a.session.URL(),
		AutoRotate: a.camera.AutoRotate,
	}
	if err := a.session.Err(); err != nil {
		st.Error = err.Error()
	}
	if mesh := a.session.Mesh(); mesh != nil {
		dims := a.session.Dimensions()
		st.Width = dims.X
		st.Height = dims.Y
		st.Depth = dims.Z
		st.Triangles = mesh.TriangleCount()
	}
	a.preview.UpdateStatus(st)
}

// Close shuts everything down. The session disposes GPU resources and
// closes the renderer; the window owns the GL context and goes last.
func (a *App) Close() {
	logger.Info("closing viewer")

	if a.preview != nil {
		a.preview.Close()
	}
	if a.session != nil {
		a.session.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

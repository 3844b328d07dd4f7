// Package preview streams rendered frames to browsers over websockets,
// so a viewer running on a headless box or another machine can still be
// inspected.
package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"github.com/Faultbox/stlview/internal/engine/debug"
	"github.com/Faultbox/stlview/internal/logger"
	"github.com/Faultbox/stlview/pkg/math"
)

// Status is the viewer state exposed on /dimensions.
type Status struct {
	State      string  `json:"state"`
	URL        string  `json:"url,omitempty"`
	Error      string  `json:"error,omitempty"`
	Width      float32 `json:"width"`
	Height     float32 `json:"height"`
	Depth      float32 `json:"depth"`
	Triangles  int     `json:"triangles"`
	AutoRotate bool    `json:"auto_rotate"`
}

// Server broadcasts PNG frames to connected websocket clients.
type Server struct {
	frameWidth  int
	minInterval time.Duration

	httpServer *http.Server
	upgrader   websocket.Upgrader

	mu          sync.Mutex
	clients     map[*websocket.Conn]bool
	latestFrame []byte
	status      Status
	lastPublish time.Time
}

// NewServer creates a preview server. frameWidth is the broadcast frame
// width; frames are downscaled to it, height following the aspect ratio.
func NewServer(listen string, frameWidth int) *Server {
	s := &Server{
		frameWidth:  frameWidth,
		minInterval: 100 * time.Millisecond,
		clients:     make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		status: Status{State: "empty"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveHome)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/dimensions", s.handleDimensions)

	s.httpServer = &http.Server{Addr: listen, Handler: mux}
	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	logger.Info("preview server listening", zap.String("addr", s.httpServer.Addr))
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("preview server failed", zap.Error(err))
		}
	}()
}

// Close shuts the server down and disconnects all clients.
func (s *Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.httpServer.Shutdown(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
}

// UpdateStatus replaces the state served on /dimensions.
func (s *Server) UpdateStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// SetDimensions updates only the mesh extent fields of the status.
func (s *Server) SetDimensions(dims math.Vec3, triangles int) {
	s.mu.Lock()
	s.status.Width = dims.X
	s.status.Height = dims.Y
	s.status.Depth = dims.Z
	s.status.Triangles = triangles
	s.mu.Unlock()
}

// HasClients reports whether any browser is connected. Callers can skip
// the framebuffer readback entirely when nobody is watching.
func (s *Server) HasClients() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients) > 0
}

// Publish encodes raw framebuffer pixels and broadcasts them. Frames
// arriving faster than the broadcast interval are dropped.
func (s *Server) Publish(pixels []byte, width, height int) error {
	s.mu.Lock()
	throttled := time.Since(s.lastPublish) < s.minInterval
	noClients := len(s.clients) == 0
	s.mu.Unlock()
	if throttled || noClients {
		return nil
	}

	img, err := debug.ImageFromPixels(pixels, width, height)
	if err != nil {
		return err
	}

	frame, err := s.encodeFrame(img)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestFrame = frame
	s.lastPublish = time.Now()

	for client := range s.clients {
		if err := client.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			logger.Debug("preview client write failed", zap.Error(err))
			client.Close()
			delete(s.clients, client)
		}
	}
	return nil
}

// encodeFrame downscales and PNG-encodes a frame.
func (s *Server) encodeFrame(img image.Image) ([]byte, error) {
	if s.frameWidth > 0 && img.Bounds().Dx() > s.frameWidth {
		img = resize.Resize(uint(s.frameWidth), 0, img, resize.Bilinear)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// handleWebSocket upgrades a connection and registers it for frames.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	latest := s.latestFrame
	s.mu.Unlock()

	logger.Info("preview client connected", zap.String("remote", r.RemoteAddr))

	// Send the last frame immediately so the page is not blank until
	// the next publish.
	if latest != nil {
		conn.WriteMessage(websocket.BinaryMessage, latest)
	}

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
		logger.Info("preview client disconnected", zap.String("remote", r.RemoteAddr))
	}()

	// Read messages from client (for keep-alive)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// handleDimensions serves the current viewer status as JSON.
func (s *Server) handleDimensions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	st := s.status
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(st)
}

// serveHome serves the preview page.
func (s *Server) serveHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(htmlContent))
}

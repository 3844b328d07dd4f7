// Package renderer provides OpenGL rendering for triangle meshes.
package renderer

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/stlview/internal/engine/debug"
	"github.com/Faultbox/stlview/internal/logger"
	"github.com/Faultbox/stlview/pkg/geometry"
	"github.com/Faultbox/stlview/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer draws one flat-shaded mesh with OpenGL 4.1 core.
type Renderer struct {
	config Config

	shaderProgram uint32
	lineProgram   uint32

	// Uniform locations
	viewLoc     int32
	projLoc     int32
	lineViewLoc int32
	lineProjLoc int32

	// Current mesh buffers; zero when no mesh is uploaded
	meshVAO     uint32
	positionVBO uint32
	normalVBO   uint32
	vertexCount int32

	// Bounding box overlay, rebuilt on every mesh upload
	lineVAO   uint32
	lineVBO   uint32
	lineCount int32

	// ShowBounds toggles the bounding box wireframe overlay.
	ShowBounds bool
}

// New creates a renderer.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0) // Dark blue-gray background

	var err error
	r.shaderProgram, err = r.createShaderProgram()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	r.viewLoc = gl.GetUniformLocation(r.shaderProgram, gl.Str("uView\x00"))
	r.projLoc = gl.GetUniformLocation(r.shaderProgram, gl.Str("uProj\x00"))

	r.lineProgram, err = r.createLineProgram()
	if err != nil {
		return nil, fmt.Errorf("failed to create line program: %w", err)
	}
	r.lineViewLoc = gl.GetUniformLocation(r.lineProgram, gl.Str("uView\x00"))
	r.lineProjLoc = gl.GetUniformLocation(r.lineProgram, gl.Str("uProj\x00"))

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	return r, nil
}

// Close releases all GPU resources including any uploaded mesh.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.DisposeMesh()
	if r.shaderProgram != 0 {
		gl.DeleteProgram(r.shaderProgram)
		r.shaderProgram = 0
	}
	if r.lineProgram != 0 {
		gl.DeleteProgram(r.lineProgram)
		r.lineProgram = 0
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Clear starts a new frame.
func (r *Renderer) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// UploadMesh replaces the current mesh with the given geometry.
func (r *Renderer) UploadMesh(mesh *geometry.Mesh) error {
	r.DisposeMesh()

	if len(mesh.Positions) == 0 {
		return nil
	}

	gl.GenVertexArrays(1, &r.meshVAO)
	gl.BindVertexArray(r.meshVAO)

	gl.GenBuffers(1, &r.positionVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.positionVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Positions)*4,
		unsafe.Pointer(&mesh.Positions[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.GenBuffers(1, &r.normalVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.normalVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Normals)*4,
		unsafe.Pointer(&mesh.Normals[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	r.vertexCount = int32(mesh.VertexCount())
	r.uploadBoundsWireframe(mesh.Bounds)

	if err := gl.GetError(); err != gl.NO_ERROR {
		r.DisposeMesh()
		return fmt.Errorf("mesh upload failed: GL error 0x%04x", err)
	}

	logger.Debug("mesh uploaded",
		zap.Uint32("vao", r.meshVAO),
		zap.Int32("vertices", r.vertexCount),
	)
	return nil
}

// DisposeMesh deletes the current mesh's GPU buffers. Safe to call when
// no mesh is uploaded.
func (r *Renderer) DisposeMesh() {
	if r.meshVAO != 0 {
		gl.DeleteVertexArrays(1, &r.meshVAO)
		r.meshVAO = 0
	}
	if r.positionVBO != 0 {
		gl.DeleteBuffers(1, &r.positionVBO)
		r.positionVBO = 0
	}
	if r.normalVBO != 0 {
		gl.DeleteBuffers(1, &r.normalVBO)
		r.normalVBO = 0
	}
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
		r.lineVAO = 0
	}
	if r.lineVBO != 0 {
		gl.DeleteBuffers(1, &r.lineVBO)
		r.lineVBO = 0
	}
	r.vertexCount = 0
	r.lineCount = 0
}

// Render draws the current mesh with the given view and projection.
func (r *Renderer) Render(view, proj math.Mat4) {
	if r.meshVAO == 0 || r.vertexCount == 0 {
		return
	}

	gl.UseProgram(r.shaderProgram)
	gl.UniformMatrix4fv(r.viewLoc, 1, false, view.Ptr())
	gl.UniformMatrix4fv(r.projLoc, 1, false, proj.Ptr())

	gl.BindVertexArray(r.meshVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, r.vertexCount)
	gl.BindVertexArray(0)

	if r.ShowBounds && r.lineVAO != 0 {
		gl.UseProgram(r.lineProgram)
		gl.UniformMatrix4fv(r.lineViewLoc, 1, false, view.Ptr())
		gl.UniformMatrix4fv(r.lineProjLoc, 1, false, proj.Ptr())
		gl.BindVertexArray(r.lineVAO)
		gl.DrawArrays(gl.LINES, 0, r.lineCount)
		gl.BindVertexArray(0)
	}
}

// uploadBoundsWireframe builds the bounding box overlay buffers.
func (r *Renderer) uploadBoundsWireframe(b geometry.Bounds) {
	verts := debug.BoundsWireframe(b)

	gl.GenVertexArrays(1, &r.lineVAO)
	gl.BindVertexArray(r.lineVAO)

	gl.GenBuffers(1, &r.lineVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4,
		unsafe.Pointer(&verts[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	r.lineCount = debug.BoundsWireframeVertexCount
}

// ReadPixels reads back the current framebuffer as tightly packed RGBA
// rows, bottom-up as OpenGL delivers them.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width = r.config.Width
	height = r.config.Height
	pixels = make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height),
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, width, height
}

// createShaderProgram builds the flat-shading program. The normal
// buffer carries one face normal per vertex, so interpolation across a
// triangle is constant and each facet gets a single shade.
func (r *Renderer) createShaderProgram() (uint32, error) {
	vertexShaderSource := `
		#version 410 core

		layout (location = 0) in vec3 aPos;
		layout (location = 1) in vec3 aNormal;

		uniform mat4 uView;
		uniform mat4 uProj;

		out vec3 worldNormal;

		void main() {
			gl_Position = uProj * uView * vec4(aPos, 1.0);
			worldNormal = aNormal;
		}
	` + "\x00"

	fragmentShaderSource := `
		#version 410 core

		in vec3 worldNormal;
		out vec4 FragColor;

		const vec3 lightDir = normalize(vec3(0.4, 0.7, 0.6));
		const vec3 baseColor = vec3(0.55, 0.6, 0.65);

		void main() {
			vec3 n = normalize(worldNormal);
			float diffuse = max(abs(dot(n, lightDir)), 0.0);
			vec3 color = baseColor * (0.25 + 0.75 * diffuse);
			FragColor = vec4(color, 1.0);
		}
	` + "\x00"

	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("link failed: %s", log)
	}

	logger.Debug("shader program created", zap.Uint32("program", program))
	return program, nil
}

// createLineProgram builds the solid-color program for the bounding
// box overlay.
func (r *Renderer) createLineProgram() (uint32, error) {
	vertexShaderSource := `
		#version 410 core

		layout (location = 0) in vec3 aPos;

		uniform mat4 uView;
		uniform mat4 uProj;

		void main() {
			gl_Position = uProj * uView * vec4(aPos, 1.0);
		}
	` + "\x00"

	fragmentShaderSource := `
		#version 410 core

		out vec4 FragColor;

		void main() {
			FragColor = vec4(0.9, 0.7, 0.2, 1.0);
		}
	` + "\x00"

	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("link failed: %s", log)
	}

	return program, nil
}

// compileShader compiles a shader from source.
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("compile failed: %s", log)
	}

	return shader, nil
}

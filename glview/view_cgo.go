//go:build !tinygo && cgo

package glview

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/glgl/v4.1-core/glgl"
	"github.com/soypat/trussview"
	"github.com/soypat/trussview/camera"
	"github.com/soypat/trussview/light"
	"github.com/soypat/trussview/mesh"
	"github.com/soypat/trussview/truss"
)

// locations of the non-light uniforms.
type locations struct {
	model, view, projection int32
	eye, colour, unlit      int32
	specular, shininess     int32
}

// meshes drawn every frame. Released together on exit.
type meshes struct {
	sphere, beam, wire mesh.Resource
}

func (m *meshes) release() {
	m.sphere.Release()
	m.beam.Release()
	m.wire.Release()
}

func run(scene *trussview.Scene, cfg Config) error {
	log := cfg.Logger
	window, term, err := startGLFW(cfg.Width, cfg.Height, cfg.Title)
	if err != nil {
		return err
	}
	defer term()
	log.Debug("OpenGL context ready", slog.String("version", gl.GoStr(gl.GetString(gl.VERSION))))

	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   vertexShader,
		Fragment: fragmentShader,
	})
	if err != nil {
		return fmt.Errorf("compiling truss shader: %w", err)
	}
	defer prog.Delete()
	prog.Bind()
	loc, err := resolveLocations(prog)
	if err != nil {
		return err
	}
	slots, err := light.ResolveSlots(func(name string) (int32, error) {
		// Unused array elements may be optimized out, -1 is ignored by GL.
		return gl.GetUniformLocation(prog.ID(), gl.Str(name+"\x00")), nil
	})
	if err != nil {
		return err
	}

	var m meshes
	defer m.release()
	err = m.upload(scene, cfg)
	if err != nil {
		return err
	}

	var in inputState
	wireframe := cfg.Wireframe
	setCallbacks(window, &in)
	gl.Enable(gl.DEPTH_TEST)
	glfw.SwapInterval(1)
	var uniforms glUniforms
	ctx := cfg.Context
	previousTime := glfw.GetTime()
	for !window.ShouldClose() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u := <-cfg.Updates:
			m.reload(scene, u, log)
		default:
		}
		glfw.PollEvents()
		currentTime := glfw.GetTime()
		elapsed := float32(currentTime - previousTime)
		previousTime = currentTime

		toggleMode, toggleWire := in.consumeToggles()
		if toggleMode {
			scene.Rig().Toggle()
			log.Info("camera mode toggled")
		}
		if toggleWire {
			wireframe = !wireframe
		}
		width, height := window.GetSize()
		scene.Resize(width, height)
		for _, c := range in.consumeClicks() {
			hits, err := scene.Click(float32(c.X), float32(c.Y))
			if err != nil {
				log.Warn("pick failed", slog.Any("err", err))
				continue
			}
			if len(hits) > 0 {
				log.Info("nodes toggled", slog.Any("nodes", hits), slog.Any("selected", scene.Selected()))
			}
		}
		err = scene.Step(frameInput(&in), elapsed)
		if err != nil {
			log.Warn("camera step", slog.Any("err", err))
		}

		fbw, fbh := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(fbw), int32(fbh))
		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		prog.Bind()
		setMat4(loc.projection, scene.Projection())
		setMat4(loc.view, scene.View())
		eye := scene.Eye()
		gl.Uniform3f(loc.eye, eye[0], eye[1], eye[2])
		gl.Uniform1f(loc.specular, cfg.Material.SpecularIntensity)
		gl.Uniform1f(loc.shininess, cfg.Material.Shininess)
		gl.Uniform1i(loc.unlit, 0)
		err = scene.Lights().Serialize(uniforms, slots)
		if err != nil {
			return err
		}

		for i, model := range scene.NodeTransforms() {
			setVec3(loc.colour, scene.NodeColour(i))
			setMat4(loc.model, model)
			m.sphere.Render()
		}
		setVec3(loc.colour, trussview.BeamColour)
		for _, model := range scene.BeamTransforms() {
			setMat4(loc.model, model)
			m.beam.Render()
		}
		if wireframe {
			gl.Uniform1i(loc.unlit, 1)
			setMat4(loc.model, mgl32.Ident4())
			m.wire.Render()
		}
		window.SwapBuffers()
		if err := glgl.Err(); err != nil {
			return fmt.Errorf("drawing frame: %w", err)
		}
	}
	log.Info("window closed")
	return nil
}

// frameInput consumes this frame's input. Pointer motion only steers the
// camera while the cursor is captured.
func frameInput(in *inputState) camera.Input {
	dx, dy := in.ConsumeXDelta(), in.ConsumeYDelta()
	if !in.captured {
		dx, dy = 0, 0
	}
	return camera.Input{
		Keys: camera.Keys{
			Forward: in.pressed(int(glfw.KeyW)),
			Back:    in.pressed(int(glfw.KeyS)),
			Left:    in.pressed(int(glfw.KeyA)),
			Right:   in.pressed(int(glfw.KeyD)),
		},
		DX:   float32(dx),
		DY:   float32(dy),
		Zoom: float32(in.consumeScroll()),
	}
}

func (m *meshes) upload(scene *trussview.Scene, cfg Config) error {
	var backend mesh.GL
	v, idx, err := mesh.UnitSphere(cfg.SphereStacks, cfg.SphereSectors)
	if err != nil {
		return err
	}
	err = m.sphere.Upload(backend, v, idx)
	if err != nil {
		return fmt.Errorf("node mesh: %w", err)
	}
	v, idx = mesh.UnitBeam()
	err = m.beam.Upload(backend, v, idx)
	if err != nil {
		return fmt.Errorf("beam mesh: %w", err)
	}
	m.wire.SetDrawMode(mesh.Lines)
	return m.uploadWire(scene)
}

func (m *meshes) uploadWire(scene *trussview.Scene) error {
	t := scene.Truss()
	if len(t.Beams) == 0 {
		m.wire.Release()
		return nil
	}
	err := m.wire.Upload(mesh.GL{}, t.Vertices(), t.LineIndices())
	if err != nil {
		return fmt.Errorf("wireframe mesh: %w", err)
	}
	return nil
}

func (m *meshes) reload(scene *trussview.Scene, u truss.Update, log *slog.Logger) {
	if u.Err != nil {
		log.Warn("truss reload failed, keeping previous", slog.Any("err", u.Err))
		return
	}
	err := scene.SetTruss(u.Truss)
	if err == nil {
		err = m.uploadWire(scene)
	}
	if err != nil {
		log.Error("truss reload", slog.Any("err", err))
		return
	}
	log.Info("truss reloaded", slog.Int("nodes", len(u.Truss.Nodes)), slog.Int("beams", len(u.Truss.Beams)))
}

func resolveLocations(prog glgl.Program) (loc locations, err error) {
	for _, u := range []struct {
		dst  *int32
		name string
	}{
		{&loc.model, uniformModel},
		{&loc.view, uniformView},
		{&loc.projection, uniformProjection},
		{&loc.eye, uniformEye},
		{&loc.colour, uniformColour},
		{&loc.unlit, uniformUnlit},
		{&loc.specular, uniformSpecular},
		{&loc.shininess, uniformShininess},
	} {
		*u.dst, err = prog.UniformLocation(u.name)
		if err != nil {
			return loc, fmt.Errorf("uniform %q: %w", u.name[:len(u.name)-1], err)
		}
	}
	return loc, nil
}

func setCallbacks(window *glfw.Window, in *inputState) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		var pressed bool
		switch action {
		case glfw.Press, glfw.Repeat:
			pressed = true
		case glfw.Release:
			pressed = false
		default:
			return
		}
		in.setKey(int(key), pressed)
		if action != glfw.Press && action != glfw.Release {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(w.ShouldClose() || pressed)
		case glfw.KeyTab:
			in.toggleMode = in.toggleMode || pressed
		case glfw.KeyF:
			in.toggleWireframe = in.toggleWireframe || pressed
		case glfw.KeyLeftControl, glfw.KeyRightControl:
			in.captured = in.pressed(int(glfw.KeyLeftControl)) || in.pressed(int(glfw.KeyRightControl))
			in.resetCursor()
			if in.captured {
				w.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
			} else {
				w.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
			}
		}
	})
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		in.cursor(xpos, ypos)
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		in.addScroll(yoff)
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft || action != glfw.Press || in.captured {
			return
		}
		x, y := w.GetCursorPos()
		in.addClick(x, y)
	})
}

func startGLFW(width, height int, title string) (window *glfw.Window, term func(), err error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, fmt.Errorf("initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err = glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("creating GLFW window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	return window, glfw.Terminate, nil
}

type glUniforms struct{}

func (glUniforms) Uniform1i(loc int32, v int32)            { gl.Uniform1i(loc, v) }
func (glUniforms) Uniform1f(loc int32, v float32)          { gl.Uniform1f(loc, v) }
func (glUniforms) Uniform3f(loc int32, v0, v1, v2 float32) { gl.Uniform3f(loc, v0, v1, v2) }

func setMat4(loc int32, m mgl32.Mat4) { gl.UniformMatrix4fv(loc, 1, false, &m[0]) }
func setVec3(loc int32, v mgl32.Vec3) { gl.Uniform3f(loc, v[0], v[1], v[2]) }

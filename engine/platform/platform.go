package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/tessera/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window

	input  *core.Input
	events *core.Subject[core.Event]
}

func New() *Platform {
	return &Platform{}
}

// Attach routes window input and events to the engine. Events before Attach are dropped.
func (p *Platform) Attach(input *core.Input, events *core.Subject[core.Event]) {
	p.input = input
	p.events = events
}

// Startup opens the window and makes its OpenGL 4.1 core context current on the calling
// thread.
func (p *Platform) Startup(applicationName string, x, y, width, height int32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetCloseCallback(p.closeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events. Returns false once the window should close.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

func (p *Platform) SwapBuffers() {
	p.Window.SwapBuffers()
}

func (p *Platform) FramebufferSize() (int32, int32) {
	w, h := p.Window.GetFramebufferSize()
	return int32(w), int32(h)
}

// translateKey maps glfw keys to engine key codes. Printable keys share their ASCII value.
func translateKey(key glfw.Key) (core.KeyCode, bool) {
	switch {
	case key == glfw.KeyEscape:
		return core.KEY_ESCAPE, true
	case key == glfw.KeyEnter:
		return core.KEY_ENTER, true
	case key == glfw.KeyTab:
		return core.KEY_TAB, true
	case key == glfw.KeyBackspace:
		return core.KEY_BACKSPACE, true
	case key == glfw.KeySpace,
		key >= glfw.Key0 && key <= glfw.Key9,
		key >= glfw.KeyA && key <= glfw.KeyZ:
		return core.KeyCode(key), true
	default:
		return 0, false
	}
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Repeat {
		return
	}
	code, ok := translateKey(key)
	if !ok || p.input == nil {
		return
	}
	p.input.ProcessKey(code, action == glfw.Press)
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	if p.events == nil {
		return
	}
	ev := core.Event{Code: core.EVENT_CODE_RESIZED, Sender: p}
	ev.Data.Data.U16[0] = uint16(width)
	ev.Data.Data.U16[1] = uint16(height)
	p.events.NotifyAll(ev)
}

func (p *Platform) closeCallback(w *glfw.Window) {
	if p.events == nil {
		return
	}
	p.events.NotifyAll(core.Event{Code: core.EVENT_CODE_APPLICATION_QUIT, Sender: p})
}

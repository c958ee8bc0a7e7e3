// package window provides the GLFW window and surface plumbing the rendering
// examples present into.
package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a
	// WebGPU surface, built by the wgpuglfw bridge for the current platform.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform surface descriptor, or nil before init
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop. Blocks until the window is
	// closed, invoking the update callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// appWindow is the implementation of the Window interface.
type appWindow struct {
	title  string
	width  int
	height int

	platform *glfwState

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(keyCode uint32)
}

var _ Window = &appWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
func NewWindow(options ...WindowOption) Window {
	w := &appWindow{
		title:  "igl",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("window: failed to create platform window: %v", err))
	}
	return w
}

func (w *appWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *appWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *appWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *appWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformSurfaceDescriptor(w)
}

func (w *appWindow) IsRunning() bool {
	return platformIsRunning(w)
}

func (w *appWindow) Close() error {
	return platformClose(w)
}

func (w *appWindow) ProcessMessages() {
	for w.IsRunning() {
		if ok := platformProcessMessages(w); !ok {
			break
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *appWindow) Width() int {
	return w.width
}

func (w *appWindow) Height() int {
	return w.height
}

// WindowOption is a functional option for configuring a Window.
type WindowOption func(w *appWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowOption: option function to apply
func WithTitle(title string) WindowOption {
	return func(w *appWindow) {
		w.title = title
	}
}

// WithSize sets the initial window dimensions.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - WindowOption: option function to apply
func WithSize(width, height int) WindowOption {
	return func(w *appWindow) {
		w.width = width
		w.height = height
	}
}

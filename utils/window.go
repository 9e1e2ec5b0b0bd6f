package utils

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
)

// Renderer is driven by Window.RenderingLoop. Draw reports whether a frame reached the
// presentation engine.
type Renderer interface {
	Draw() (bool, error)
	OnWindowSizeChanged() error
}

type Window struct {
	window *sdl.Window

	pollEvent    func() sdl.Event
	drawableSize func() (int32, int32)
}

func CreateWindow(title string, width, height int) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "initialize sdl video")
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(width), int32(height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "create window")
	}

	return &Window{
		window:       window,
		pollEvent:    sdl.PollEvent,
		drawableSize: window.VulkanGetDrawableSize,
	}, nil
}

// SDLWindow exposes the underlying window for surface creation.
func (w *Window) SDLWindow() *sdl.Window {
	return w.window
}

func (w *Window) DrawableSize() (int, int) {
	width, height := w.drawableSize()
	return int(width), int(height)
}

func (w *Window) Minimized() bool {
	if w.window == nil {
		return false
	}
	return (w.window.GetFlags() & sdl.WINDOW_MINIMIZED) != 0
}

// RenderingLoop pumps window events and draws until the window is closed, maxFrames
// frames were presented (when maxFrames > 0) or the renderer fails.
func (w *Window) RenderingLoop(renderer Renderer, maxFrames int) error {
	rendering := true
	frames := 0

appLoop:
	for {
		for event := w.pollEvent(); event != nil; event = w.pollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				break appLoop
			case *sdl.WindowEvent:
				switch e.Event {
				case sdl.WINDOWEVENT_MINIMIZED:
					rendering = false
				case sdl.WINDOWEVENT_RESTORED:
					rendering = true
				case sdl.WINDOWEVENT_RESIZED:
					width, height := w.DrawableSize()
					if width > 0 && height > 0 {
						rendering = true
						if err := renderer.OnWindowSizeChanged(); err != nil {
							return errors.Wrap(err, "resize")
						}
					} else {
						rendering = false
					}
				}
			}
		}

		if !rendering {
			sdl.Delay(10)
			continue
		}

		presented, err := renderer.Draw()
		if err != nil {
			return errors.Wrap(err, "draw")
		}
		if !presented {
			continue
		}

		frames++
		if maxFrames > 0 && frames >= maxFrames {
			break
		}
	}

	return nil
}

func (w *Window) Destroy() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}

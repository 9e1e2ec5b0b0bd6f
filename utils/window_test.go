package utils

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
)

// eventScript feeds one batch of events per loop iteration and quits once it runs out.
type eventScript struct {
	batches [][]sdl.Event
	next    int
}

func (s *eventScript) poll() sdl.Event {
	if len(s.batches) == 0 {
		return &sdl.QuitEvent{Type: sdl.QUIT}
	}

	batch := s.batches[0]
	if s.next < len(batch) {
		event := batch[s.next]
		s.next++
		return event
	}

	s.batches = s.batches[1:]
	s.next = 0
	return nil
}

type countingRenderer struct {
	draws   int
	resizes int
	drawErr error

	// the first rebuilds draws only recreate the swapchain
	rebuilds int
}

func (r *countingRenderer) Draw() (bool, error) {
	r.draws++
	if r.drawErr != nil {
		return false, r.drawErr
	}
	return r.draws > r.rebuilds, nil
}

func (r *countingRenderer) OnWindowSizeChanged() error {
	r.resizes++
	return nil
}

func scriptedWindow(width, height int32, batches ...[]sdl.Event) *Window {
	script := &eventScript{batches: batches}
	return &Window{
		pollEvent: script.poll,
		drawableSize: func() (int32, int32) {
			return width, height
		},
	}
}

func windowEvent(event uint8) sdl.Event {
	return &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: event}
}

func TestRenderingLoopQuit(t *testing.T) {
	renderer := &countingRenderer{}
	window := scriptedWindow(800, 600, []sdl.Event{&sdl.QuitEvent{Type: sdl.QUIT}})

	if err := window.RenderingLoop(renderer, 0); err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if renderer.draws != 0 {
		t.Errorf("expected no draws, got %d", renderer.draws)
	}
}

func TestRenderingLoopMaxFrames(t *testing.T) {
	renderer := &countingRenderer{}
	window := scriptedWindow(800, 600, nil, nil, nil, nil, nil, nil)

	if err := window.RenderingLoop(renderer, 3); err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if renderer.draws != 3 {
		t.Errorf("expected 3 draws, got %d", renderer.draws)
	}
}

func TestRenderingLoopMaxFramesCountsPresents(t *testing.T) {
	renderer := &countingRenderer{rebuilds: 2}
	window := scriptedWindow(800, 600, nil, nil, nil, nil, nil, nil)

	if err := window.RenderingLoop(renderer, 3); err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if renderer.draws != 5 {
		t.Errorf("expected 3 presents after 2 rebuilds, got %d draws", renderer.draws)
	}
}

func TestRenderingLoopMinimize(t *testing.T) {
	renderer := &countingRenderer{}
	window := scriptedWindow(800, 600,
		[]sdl.Event{windowEvent(sdl.WINDOWEVENT_MINIMIZED)},
		nil,
		[]sdl.Event{windowEvent(sdl.WINDOWEVENT_RESTORED)},
	)

	if err := window.RenderingLoop(renderer, 0); err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if renderer.draws != 1 {
		t.Errorf("expected a single draw after restoring, got %d", renderer.draws)
	}
}

func TestRenderingLoopResize(t *testing.T) {
	renderer := &countingRenderer{}
	window := scriptedWindow(640, 480,
		[]sdl.Event{windowEvent(sdl.WINDOWEVENT_RESIZED)},
	)

	if err := window.RenderingLoop(renderer, 0); err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if renderer.resizes != 1 || renderer.draws != 1 {
		t.Errorf("expected one resize and one draw, got %d and %d", renderer.resizes, renderer.draws)
	}
}

func TestRenderingLoopResizeToEmpty(t *testing.T) {
	renderer := &countingRenderer{}
	window := scriptedWindow(0, 0,
		[]sdl.Event{windowEvent(sdl.WINDOWEVENT_RESIZED)},
		nil,
	)

	if err := window.RenderingLoop(renderer, 0); err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if renderer.resizes != 0 || renderer.draws != 0 {
		t.Errorf("an empty window should not be resized or drawn, got %d and %d", renderer.resizes, renderer.draws)
	}
}

func TestRenderingLoopDrawError(t *testing.T) {
	failure := errors.New("device lost")
	renderer := &countingRenderer{drawErr: failure}
	window := scriptedWindow(800, 600, nil, nil)

	err := window.RenderingLoop(renderer, 0)
	if !errors.Is(err, failure) {
		t.Errorf("expected the draw error, got %v", err)
	}
	if renderer.draws != 1 {
		t.Errorf("expected the loop to stop after the failed draw, got %d draws", renderer.draws)
	}
}

package system

import (
	"sync"
	"time"

	"github.com/prism3d/engine/internal/component"
	"github.com/prism3d/engine/internal/config"
	"github.com/prism3d/engine/internal/core/ecs"
	"github.com/prism3d/engine/internal/core/event"
	"go.uber.org/zap"
)

// InputFrame is one poll of the platform window.
type InputFrame struct {
	Pressed        map[component.Key]bool
	MouseX, MouseY float64
	ScrollY        float64
	Width, Height  int
	CloseRequested bool
}

// InputSource is the platform window collaborator.
type InputSource interface {
	Poll() InputFrame
}

// InputSystem owns the window entity. It polls the input source once per
// frame, mirrors the result into InputState and WindowState, and emits
// WindowResized when the framebuffer size changes.
type InputSystem struct {
	source InputSource
	bus    *event.Bus
	cfg    config.WindowConfig
	window ecs.EntityID
	log    *zap.Logger
}

func NewInputSystem(source InputSource, bus *event.Bus, cfg config.WindowConfig, log *zap.Logger) *InputSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &InputSystem{source: source, bus: bus, cfg: cfg, log: log}
}

func (s *InputSystem) SystemName() string { return "input" }

func (s *InputSystem) OnRegistered(w *ecs.World) {
	s.window = w.CreateEntity()
	ecs.AddComponent(w, s.window, component.WindowState{
		Width:  s.cfg.Width,
		Height: s.cfg.Height,
		Title:  s.cfg.Title,
	})
	ecs.AddComponent(w, s.window, component.InputState{Pressed: map[component.Key]bool{}})
	ecs.RegisterContext[component.MainWindowContext](w, s.window)
	s.log.Info("window created",
		zap.Uint32("entity", uint32(s.window)), zap.Int("width", s.cfg.Width), zap.Int("height", s.cfg.Height))
}

// Window returns the window entity created at registration.
func (s *InputSystem) Window() ecs.EntityID { return s.window }

func (s *InputSystem) Update(w *ecs.World, _ time.Duration, _ []ecs.EntityID) {
	win := ecs.GetComponent[component.WindowState](w, s.window)
	in := ecs.GetComponent[component.InputState](w, s.window)
	if win == nil || in == nil {
		return
	}
	f := s.source.Poll()

	in.Pressed = f.Pressed
	if in.Pressed == nil {
		in.Pressed = map[component.Key]bool{}
	}
	in.MouseX, in.MouseY, in.ScrollY = f.MouseX, f.MouseY, f.ScrollY

	if f.Width > 0 && f.Height > 0 && (f.Width != win.Width || f.Height != win.Height) {
		win.Width, win.Height = f.Width, f.Height
		event.Emit(s.bus, event.WindowResized{Width: f.Width, Height: f.Height})
	}
	if f.CloseRequested || in.Pressed[component.KeyEscape] {
		win.ShouldClose = true
	}
}

// ScriptedInput is an InputSource replaying queued frames. Once the queue
// is empty it reports the last size with no input.
type ScriptedInput struct {
	mu     sync.Mutex
	frames []InputFrame
	width  int
	height int
}

func NewScriptedInput(width, height int) *ScriptedInput {
	return &ScriptedInput{width: width, height: height}
}

// Push queues frames for later polls.
func (si *ScriptedInput) Push(frames ...InputFrame) {
	si.mu.Lock()
	si.frames = append(si.frames, frames...)
	si.mu.Unlock()
}

func (si *ScriptedInput) Poll() InputFrame {
	si.mu.Lock()
	defer si.mu.Unlock()
	if len(si.frames) == 0 {
		return InputFrame{Width: si.width, Height: si.height}
	}
	f := si.frames[0]
	si.frames = si.frames[1:]
	if f.Width > 0 && f.Height > 0 {
		si.width, si.height = f.Width, f.Height
	} else {
		f.Width, f.Height = si.width, si.height
	}
	return f
}

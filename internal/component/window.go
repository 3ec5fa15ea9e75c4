package component

// WindowState mirrors the platform window owned by InputSystem.
type WindowState struct {
	Width       int
	Height      int
	Title       string
	ShouldClose bool
}

// Key is a platform-independent key code.
type Key uint16

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeySpace
	KeyEscape
)

// InputState is the input snapshot for the current frame.
type InputState struct {
	Pressed map[Key]bool
	MouseX  float64
	MouseY  float64
	ScrollY float64
}

package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Atom is a server-interned protocol identifier.
type Atom uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Window describes a titled window found in the hierarchy.
type Window struct {
	ID     WindowID `json:"id"`
	Title  string   `json:"title"`
	Bounds Rect     `json:"bounds"`
}

// Binding abstracts the display-server primitives the fuzzer needs. A Binding
// owns its display connection until Close is called.
type Binding interface {
	RootWindow() WindowID
	// FetchTitle reports the window's title, if one is set.
	FetchTitle(windowID WindowID) (string, bool)
	// Children returns the direct children of a window. A failed query
	// returns an empty slice.
	Children(windowID WindowID) []WindowID
	Exists(windowID WindowID) bool
	Geometry(windowID WindowID) (Rect, bool)

	SetInputFocus(windowID WindowID) error
	ActivateWindow(windowID WindowID) error

	KeysymToKeycode(keysym uint32) (byte, error)
	SendKeyEvent(keycode byte, press bool) error
	SendButtonEvent(button byte, press bool) error
	SendMotionEvent(x, y int) error

	InternAtom(name string) (Atom, error)
	SendClientMessage(windowID WindowID, messageType Atom, data [5]uint32) error

	Close()
}

// Opener acquires a new Binding.
type Opener func() (Binding, error)

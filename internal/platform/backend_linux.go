//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/lfuzz/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an X11 connection behind the platform Binding interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Binding = (*LinuxBackend)(nil)

// Open opens a fresh X11 connection. It satisfies Opener.
func Open() (Binding, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Close closes the underlying X11 connection.
func (b *LinuxBackend) Close() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// RootWindow returns the X11 root window ID of the default screen.
func (b *LinuxBackend) RootWindow() WindowID {
	if b == nil || b.conn == nil {
		return 0
	}
	return WindowID(b.conn.Root)
}

func (b *LinuxBackend) FetchTitle(windowID WindowID) (string, bool) {
	return b.conn.WindowTitle(xproto.Window(windowID))
}

func (b *LinuxBackend) Children(windowID WindowID) []WindowID {
	children := b.conn.Children(xproto.Window(windowID))
	ids := make([]WindowID, 0, len(children))
	for _, child := range children {
		ids = append(ids, WindowID(child))
	}
	return ids
}

func (b *LinuxBackend) Exists(windowID WindowID) bool {
	return b.conn.WindowExists(xproto.Window(windowID))
}

func (b *LinuxBackend) Geometry(windowID WindowID) (Rect, bool) {
	x, y, w, h, err := b.conn.WindowGeometry(xproto.Window(windowID))
	if err != nil {
		return Rect{}, false
	}
	return Rect{X: x, Y: y, Width: w, Height: h}, true
}

func (b *LinuxBackend) SetInputFocus(windowID WindowID) error {
	return b.conn.SetInputFocus(xproto.Window(windowID))
}

// ActivateWindow asks the window manager to focus and raise the window.
func (b *LinuxBackend) ActivateWindow(windowID WindowID) error {
	return b.conn.FocusWindow(xproto.Window(windowID))
}

func (b *LinuxBackend) KeysymToKeycode(keysym uint32) (byte, error) {
	keycode, err := b.conn.KeysymToKeycode(xproto.Keysym(keysym))
	if err != nil {
		return 0, err
	}
	return byte(keycode), nil
}

func (b *LinuxBackend) SendKeyEvent(keycode byte, press bool) error {
	return b.conn.SendKey(xproto.Keycode(keycode), press)
}

func (b *LinuxBackend) SendButtonEvent(button byte, press bool) error {
	return b.conn.SendButton(xproto.Button(button), press)
}

func (b *LinuxBackend) SendMotionEvent(x, y int) error {
	return b.conn.SendMotion(x, y)
}

func (b *LinuxBackend) InternAtom(name string) (Atom, error) {
	atom, err := b.conn.InternAtom(name)
	if err != nil {
		return 0, err
	}
	return Atom(atom), nil
}

func (b *LinuxBackend) SendClientMessage(windowID WindowID, messageType Atom, data [5]uint32) error {
	return b.conn.SendClientMessage(xproto.Window(windowID), xproto.Atom(messageType), data)
}

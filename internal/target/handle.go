package target

import (
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/lfuzz/internal/platform"
)

// FocusMode selects how Activate gives the target keyboard focus.
type FocusMode string

const (
	// FocusInput sets input focus directly on the window.
	FocusInput FocusMode = "input"
	// FocusEWMH asks the window manager through _NET_ACTIVE_WINDOW.
	FocusEWMH FocusMode = "ewmh"
)

// Point is an absolute position in root window coordinates.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

const (
	DefaultSettleDelay = 50 * time.Millisecond
	DefaultButton      = 3
)

// DefaultMotion is where MoveCursor sends the pointer.
var DefaultMotion = Point{X: 100, Y: 200}

// Options tunes the behaviour of an attached Handle.
type Options struct {
	// SettleDelay is how long Activate waits for the focus change to land.
	SettleDelay time.Duration
	// Button is the pointer button Click presses.
	Button    byte
	Motion    Point
	FocusMode FocusMode
	Logger    *slog.Logger
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		SettleDelay: DefaultSettleDelay,
		Button:      DefaultButton,
		Motion:      DefaultMotion,
		FocusMode:   FocusInput,
	}
}

// Handle is an attached fuzzing target: an open display connection plus the
// window resolved on it. A Handle owns its connection; Close releases it.
// Handles must not be copied.
type Handle struct {
	binding platform.Binding
	window  platform.WindowID
	title   string
	opts    Options
	logger  *slog.Logger

	closeOnce sync.Once
}

// Connect opens a display connection, reporting failure as a ConnectionError.
func Connect(open platform.Opener) (platform.Binding, error) {
	b, err := open()
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	return b, nil
}

// Attach opens a connection and resolves title under the root window. If
// resolution fails the connection is closed before the error is returned.
func Attach(open platform.Opener, title string, opts Options) (*Handle, error) {
	b, err := Connect(open)
	if err != nil {
		return nil, err
	}

	window, err := Resolve(b, b.RootWindow(), title)
	if err != nil {
		b.Close()
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Handle{
		binding: b,
		window:  window,
		title:   title,
		opts:    opts,
		logger:  logger.With("window", uint32(window)),
	}, nil
}

// Window returns the resolved window ID.
func (h *Handle) Window() platform.WindowID {
	return h.window
}

// Title returns the title the handle was attached with.
func (h *Handle) Title() string {
	return h.title
}

// Activate gives the target keyboard focus and waits for the change to
// settle. Focus failures are logged, not returned.
func (h *Handle) Activate() {
	var err error
	switch h.opts.FocusMode {
	case FocusEWMH:
		err = h.binding.ActivateWindow(h.window)
	default:
		err = h.binding.SetInputFocus(h.window)
	}
	if err != nil {
		h.logger.Warn("focus change failed", "mode", string(h.opts.FocusMode), "error", err)
	}

	time.Sleep(h.opts.SettleDelay)
}

// Press sends a key-down then key-up for the keysym code.
func (h *Handle) Press(code uint16) {
	keycode, err := h.binding.KeysymToKeycode(uint32(code))
	if err != nil {
		h.logger.Debug("keysym not mapped", "keysym", code, "error", err)
		return
	}
	if err := h.binding.SendKeyEvent(keycode, true); err != nil {
		h.logger.Debug("key press failed", "keysym", code, "keycode", keycode, "error", err)
	}
	if err := h.binding.SendKeyEvent(keycode, false); err != nil {
		h.logger.Debug("key release failed", "keysym", code, "keycode", keycode, "error", err)
	}
}

// Click presses and releases the configured pointer button.
func (h *Handle) Click() {
	if err := h.binding.SendButtonEvent(h.opts.Button, true); err != nil {
		h.logger.Debug("button press failed", "button", h.opts.Button, "error", err)
	}
	if err := h.binding.SendButtonEvent(h.opts.Button, false); err != nil {
		h.logger.Debug("button release failed", "button", h.opts.Button, "error", err)
	}
}

// MoveCursor sends one pointer motion event to the configured position.
func (h *Handle) MoveCursor() {
	if err := h.binding.SendMotionEvent(h.opts.Motion.X, h.opts.Motion.Y); err != nil {
		h.logger.Debug("pointer motion failed", "x", h.opts.Motion.X, "y", h.opts.Motion.Y, "error", err)
	}
}

// RequestClose sends WM_DELETE_WINDOW to the target. Whether the client
// honours it is not checked.
func (h *Handle) RequestClose() {
	deleteWindow, err := h.binding.InternAtom("WM_DELETE_WINDOW")
	if err != nil {
		h.logger.Warn("close request failed", "error", err)
		return
	}
	protocols, err := h.binding.InternAtom("WM_PROTOCOLS")
	if err != nil {
		h.logger.Warn("close request failed", "error", err)
		return
	}

	const currentTime = 0
	data := [5]uint32{uint32(deleteWindow), currentTime, 0, 0, 0}
	if err := h.binding.SendClientMessage(h.window, protocols, data); err != nil {
		h.logger.Warn("close request failed", "error", err)
	}
}

// Alive reports whether the target window still exists.
func (h *Handle) Alive() bool {
	return h.binding.Exists(h.window)
}

// Close releases the display connection. Only the first call has an effect.
func (h *Handle) Close() {
	h.closeOnce.Do(func() {
		h.binding.Close()
	})
}

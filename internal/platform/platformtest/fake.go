// Package platformtest provides an in-memory platform.Binding for tests.
package platformtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/1broseidon/lfuzz/internal/platform"
)

// Node describes one window in a fake hierarchy.
type Node struct {
	ID       platform.WindowID
	Title    string
	HasTitle bool
	Bounds   platform.Rect
	Children []platform.WindowID
}

// KeyEvent records one synthetic key event.
type KeyEvent struct {
	Keycode byte
	Press   bool
}

// ButtonEvent records one synthetic button event.
type ButtonEvent struct {
	Button byte
	Press  bool
}

// ClientMessage records one client message sent to a window.
type ClientMessage struct {
	Window platform.WindowID
	Type   platform.Atom
	Data   [5]uint32
}

// Counters tracks connection lifecycle across every Fake an opener produced.
type Counters struct {
	mu     sync.Mutex
	Opens  int
	Closes int
}

// Balanced reports whether every opened connection was closed.
func (c *Counters) Balanced() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Opens == c.Closes
}

// Fake is a scripted display binding. Keysyms map to keycodes by truncation
// unless Unmapped lists them.
type Fake struct {
	Root  platform.WindowID
	Nodes map[platform.WindowID]*Node

	Unmapped  map[uint32]bool
	FailFocus bool
	FailSend  bool

	counters *Counters

	mu              sync.Mutex
	closed          bool
	TitleLookups    int
	ChildrenLookups int
	Focused         []platform.WindowID
	Activated       []platform.WindowID
	Keysyms         []uint32
	Keys            []KeyEvent
	Buttons         []ButtonEvent
	Motions         [][2]int
	Atoms           map[string]platform.Atom
	Messages        []ClientMessage
}

var _ platform.Binding = (*Fake)(nil)

// NewFake builds a fake whose root is nodes[0].
func NewFake(nodes ...Node) *Fake {
	f := &Fake{
		Nodes:    make(map[platform.WindowID]*Node),
		Unmapped: make(map[uint32]bool),
		Atoms:    make(map[string]platform.Atom),
	}
	for i := range nodes {
		n := nodes[i]
		if i == 0 {
			f.Root = n.ID
		}
		f.Nodes[n.ID] = &n
	}
	return f
}

// Titled is shorthand for a node with a title.
func Titled(id platform.WindowID, title string, children ...platform.WindowID) Node {
	return Node{ID: id, Title: title, HasTitle: true, Children: children}
}

// Untitled is shorthand for a node without a title.
func Untitled(id platform.WindowID, children ...platform.WindowID) Node {
	return Node{ID: id, Children: children}
}

// Opener returns a platform.Opener that hands out f and counts the open and
// close calls in counters. A non-nil err makes every open fail.
func Opener(f *Fake, counters *Counters, err error) platform.Opener {
	return func() (platform.Binding, error) {
		if err != nil {
			return nil, err
		}
		counters.mu.Lock()
		counters.Opens++
		counters.mu.Unlock()
		f.mu.Lock()
		f.counters = counters
		f.closed = false
		f.mu.Unlock()
		return f, nil
	}
}

// Closed reports whether Close has been called since the last open.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Remove deletes a window from the hierarchy, as if the client exited.
func (f *Fake) Remove(id platform.WindowID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Nodes, id)
}

// PressedKeycodes returns the keycodes of every key-down event in order.
func (f *Fake) PressedKeycodes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []byte
	for _, ev := range f.Keys {
		if ev.Press {
			out = append(out, ev.Keycode)
		}
	}
	return out
}

func (f *Fake) RootWindow() platform.WindowID { return f.Root }

func (f *Fake) FetchTitle(id platform.WindowID) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TitleLookups++
	n, ok := f.Nodes[id]
	if !ok || !n.HasTitle {
		return "", false
	}
	return n.Title, true
}

func (f *Fake) Children(id platform.WindowID) []platform.WindowID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ChildrenLookups++
	n, ok := f.Nodes[id]
	if !ok {
		return nil
	}
	return append([]platform.WindowID(nil), n.Children...)
}

func (f *Fake) Exists(id platform.WindowID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Nodes[id]
	return ok
}

func (f *Fake) Geometry(id platform.WindowID) (platform.Rect, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.Nodes[id]
	if !ok {
		return platform.Rect{}, false
	}
	return n.Bounds, true
}

func (f *Fake) SetInputFocus(id platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailFocus {
		return errors.New("focus refused")
	}
	f.Focused = append(f.Focused, id)
	return nil
}

func (f *Fake) ActivateWindow(id platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailFocus {
		return errors.New("activate refused")
	}
	f.Activated = append(f.Activated, id)
	return nil
}

func (f *Fake) KeysymToKeycode(keysym uint32) (byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Keysyms = append(f.Keysyms, keysym)
	if f.Unmapped[keysym] {
		return 0, fmt.Errorf("keysym %#x is not mapped to any keycode", keysym)
	}
	return byte(keysym), nil
}

func (f *Fake) SendKeyEvent(keycode byte, press bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSend {
		return errors.New("send failed")
	}
	f.Keys = append(f.Keys, KeyEvent{Keycode: keycode, Press: press})
	return nil
}

func (f *Fake) SendButtonEvent(button byte, press bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSend {
		return errors.New("send failed")
	}
	f.Buttons = append(f.Buttons, ButtonEvent{Button: button, Press: press})
	return nil
}

func (f *Fake) SendMotionEvent(x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSend {
		return errors.New("send failed")
	}
	f.Motions = append(f.Motions, [2]int{x, y})
	return nil
}

func (f *Fake) InternAtom(name string) (platform.Atom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if atom, ok := f.Atoms[name]; ok {
		return atom, nil
	}
	atom := platform.Atom(100 + len(f.Atoms))
	f.Atoms[name] = atom
	return atom, nil
}

func (f *Fake) SendClientMessage(id platform.WindowID, messageType platform.Atom, data [5]uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSend {
		return errors.New("send failed")
	}
	f.Messages = append(f.Messages, ClientMessage{Window: id, Type: messageType, Data: data})
	return nil
}

func (f *Fake) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.counters != nil {
		f.counters.mu.Lock()
		f.counters.Closes++
		f.counters.mu.Unlock()
	}
}

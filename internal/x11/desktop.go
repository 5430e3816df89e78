package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// SetInputFocus gives keyboard focus to a window directly, bypassing the
// window manager.
func (c *Connection) SetInputFocus(windowID xproto.Window) error {
	return xproto.SetInputFocusChecked(
		c.XUtil.Conn(),
		xproto.InputFocusNone,
		windowID,
		xproto.TimeCurrentTime,
	).Check()
}

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
// The request is a client message sent to the root window.
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	atom, err := c.InternAtom("_NET_ACTIVE_WINDOW")
	if err != nil {
		return err
	}

	const sourceIndication = 2 // pager/direct action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourceIndication, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// InternAtom returns the atom for name, creating it if the server does not
// know it yet.
func (c *Connection) InternAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	return reply.Atom, nil
}

// SendClientMessage delivers a 32-bit format client message to a window with
// no event mask, which is how ICCCM protocol messages such as
// WM_DELETE_WINDOW are addressed.
func (c *Connection) SendClientMessage(windowID xproto.Window, messageType xproto.Atom, data [5]uint32) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   messageType,
		Data:   xproto.ClientMessageDataUnionData32New(data[:]),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		windowID,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowTitle returns the window's WM_NAME, falling back to _NET_WM_NAME for
// clients that only set the UTF-8 property. ok is false only when neither
// property exists; a property set to the empty string is an empty title.
func (c *Connection) WindowTitle(windowID xproto.Window) (string, bool) {
	return firstTitle(
		func() (string, error) { return icccm.WmNameGet(c.XUtil, windowID) },
		func() (string, error) { return ewmh.WmNameGet(c.XUtil, windowID) },
	)
}

// firstTitle returns the first non-empty title among lookups. A lookup that
// succeeds with an empty value still counts as present.
func firstTitle(lookups ...func() (string, error)) (string, bool) {
	present := false
	for _, lookup := range lookups {
		title, err := lookup()
		if err != nil {
			continue
		}
		if title != "" {
			return title, true
		}
		present = true
	}
	return "", present
}

// Children returns the direct children of a window in stacking order.
// Query failures are reported as an empty list.
func (c *Connection) Children(windowID xproto.Window) []xproto.Window {
	reply, err := xproto.QueryTree(c.XUtil.Conn(), windowID).Reply()
	if err != nil || reply == nil {
		return nil
	}
	return reply.Children
}

// WindowExists reports whether the server still knows about the window.
func (c *Connection) WindowExists(windowID xproto.Window) bool {
	_, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	return err == nil
}

// WindowGeometry returns the window's size and its position relative to the root.
func (c *Connection) WindowGeometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xwindow.New(c.XUtil, windowID).Geometry()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	return int(translate.DstX), int(translate.DstY), geom.Width(), geom.Height(), nil
}

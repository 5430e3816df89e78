package x11

import (
	"fmt"
	"math"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil/keybind"
)

// KeysymToKeycode returns the lowest keycode whose mapping produces keysym in
// any column. The keyboard mapping is read once per connection.
func (c *Connection) KeysymToKeycode(keysym xproto.Keysym) (xproto.Keycode, error) {
	if c.keycodes == nil {
		c.keycodes = c.loadKeycodes()
	}
	keycode, ok := c.keycodes[keysym]
	if !ok {
		return 0, fmt.Errorf("keysym %#x is not mapped to any keycode", uint32(keysym))
	}
	return keycode, nil
}

func (c *Connection) loadKeycodes() map[xproto.Keysym]xproto.Keycode {
	keycodes := make(map[xproto.Keysym]xproto.Keycode)

	mapping := keybind.KeyMapGet(c.XUtil)
	if mapping == nil || mapping.KeysymsPerKeycode == 0 {
		return keycodes
	}

	setup := xproto.Setup(c.XUtil.Conn())
	perKeycode := int(mapping.KeysymsPerKeycode)
	for kc := int(setup.MinKeycode); kc <= int(setup.MaxKeycode); kc++ {
		base := (kc - int(setup.MinKeycode)) * perKeycode
		for col := 0; col < perKeycode; col++ {
			if base+col >= len(mapping.Keysyms) {
				break
			}
			sym := mapping.Keysyms[base+col]
			if sym == 0 {
				continue
			}
			if _, seen := keycodes[sym]; !seen {
				keycodes[sym] = xproto.Keycode(kc)
			}
		}
	}
	return keycodes
}

// SendKey fakes a key press or release through XTest. The event goes to
// whichever window holds focus.
func (c *Connection) SendKey(keycode xproto.Keycode, isPress bool) error {
	inputType := byte(xproto.KeyRelease)
	if isPress {
		inputType = xproto.KeyPress
	}
	return c.fakeInput(inputType, byte(keycode), 0, 0)
}

// SendButton fakes a pointer button press or release through XTest.
func (c *Connection) SendButton(button xproto.Button, isPress bool) error {
	inputType := byte(xproto.ButtonRelease)
	if isPress {
		inputType = xproto.ButtonPress
	}
	return c.fakeInput(inputType, byte(button), 0, 0)
}

// SendMotion moves the pointer to absolute root coordinates through XTest.
func (c *Connection) SendMotion(x, y int) error {
	if x < math.MinInt16 || x > math.MaxInt16 || y < math.MinInt16 || y > math.MaxInt16 {
		return fmt.Errorf("pointer position (%d, %d) is outside the X11 coordinate range", x, y)
	}
	return c.fakeInput(xproto.MotionNotify, 0, int16(x), int16(y))
}

func (c *Connection) fakeInput(inputType, detail byte, rootX, rootY int16) error {
	err := xtest.FakeInputChecked(
		c.XUtil.Conn(),
		inputType,
		detail,
		xproto.TimeCurrentTime,
		c.Root,
		rootX, rootY,
		0,
	).Check()
	c.XUtil.Sync()
	return err
}

package fuzz

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Code is a 16-bit input code, interpreted as an X keysym at dispatch.
type Code = uint16

// CodeSpace is the number of representable codes.
const CodeSpace = 1 << 16

// DefaultUpperBound is the highest code generated by default. It covers the
// Latin, Katakana and Arabic keysym blocks and excludes the function-key page.
const DefaultUpperBound Code = 0x4a0

// Denylist is a set of codes excluded from generation. Build it before a run
// and treat it as read-only afterwards.
type Denylist struct {
	bits [CodeSpace / 64]uint64
}

// NewDenylist returns a denylist containing codes.
func NewDenylist(codes ...Code) *Denylist {
	d := &Denylist{}
	for _, c := range codes {
		d.Add(c)
	}
	return d
}

func (d *Denylist) Add(c Code) {
	d.bits[c/64] |= 1 << (c % 64)
}

// AddRange adds every code in [lo, hi].
func (d *Denylist) AddRange(lo, hi Code) {
	for c := uint32(lo); c <= uint32(hi); c++ {
		d.Add(Code(c))
	}
}

func (d *Denylist) Contains(c Code) bool {
	if d == nil {
		return false
	}
	return d.bits[c/64]&(1<<(c%64)) != 0
}

// Len is the number of denied codes.
func (d *Denylist) Len() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, w := range d.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// Full reports whether every code is denied, leaving nothing to generate.
func (d *Denylist) Full() bool {
	return d.Len() == CodeSpace
}

// HazardKeysyms are keys that steal focus from the target or open system
// menus and help viewers.
var HazardKeysyms = []Code{
	keysyms["Super_L"],
	keysyms["Super_R"],
	keysyms["F1"],
}

// DefaultDenylist denies the hazard keysyms, any extra codes, and every code
// above upper.
func DefaultDenylist(upper Code, extra ...Code) *Denylist {
	d := NewDenylist(HazardKeysyms...)
	for _, c := range extra {
		d.Add(c)
	}
	if upper < CodeSpace-1 {
		d.AddRange(upper+1, CodeSpace-1)
	}
	return d
}

var keysyms = map[string]Code{
	"BackSpace": 0xff08,
	"Tab":       0xff09,
	"Return":    0xff0d,
	"Pause":     0xff13,
	"Sys_Req":   0xff15,
	"Escape":    0xff1b,
	"Print":     0xff61,
	"Menu":      0xff67,
	"Num_Lock":  0xff7f,
	"F1":        0xffbe,
	"F2":        0xffbf,
	"F3":        0xffc0,
	"F4":        0xffc1,
	"F5":        0xffc2,
	"F6":        0xffc3,
	"F7":        0xffc4,
	"F8":        0xffc5,
	"F9":        0xffc6,
	"F10":       0xffc7,
	"F11":       0xffc8,
	"F12":       0xffc9,
	"Shift_L":   0xffe1,
	"Shift_R":   0xffe2,
	"Control_L": 0xffe3,
	"Control_R": 0xffe4,
	"Caps_Lock": 0xffe5,
	"Meta_L":    0xffe7,
	"Meta_R":    0xffe8,
	"Alt_L":     0xffe9,
	"Alt_R":     0xffea,
	"Super_L":   0xffeb,
	"Super_R":   0xffec,
	"Hyper_L":   0xffed,
	"Hyper_R":   0xffee,
	"Delete":    0xffff,
}

// ParseCode accepts a keysym name (e.g. "Super_L"), a hex literal ("0xffeb")
// or a decimal number.
func ParseCode(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if c, ok := keysyms[s]; ok {
		return c, nil
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid input code %q: expected a keysym name or a number up to 0xffff", s)
	}
	return Code(v), nil
}

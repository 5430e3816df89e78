package x11

import "testing"

func TestSendMotionRejectsOutOfRangePositions(t *testing.T) {
	c := &Connection{}
	for _, pos := range [][2]int{{32768, 0}, {0, -32769}, {1 << 20, 1 << 20}} {
		if err := c.SendMotion(pos[0], pos[1]); err == nil {
			t.Fatalf("SendMotion(%d, %d) succeeded, want range error", pos[0], pos[1])
		}
	}
}

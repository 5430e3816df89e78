//go:build !linux

package platform

import "fmt"

// Open reports that no X11 backend exists for this platform.
func Open() (Binding, error) {
	return nil, fmt.Errorf("no display backend available on this platform")
}

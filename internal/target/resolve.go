package target

import "github.com/1broseidon/lfuzz/internal/platform"

// Walk visits root and its descendants depth-first, most recently discovered
// window first. fn is called for every window that has a title; returning
// false stops the walk. Untitled windows are traversed but not reported.
//
// The hierarchy is assumed to be a finite tree. A cycle reported by the
// server would make Walk loop forever.
func Walk(b platform.Binding, root platform.WindowID, fn func(id platform.WindowID, title string) bool) {
	stack := []platform.WindowID{root}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if title, ok := b.FetchTitle(current); ok {
			if !fn(current, title) {
				return
			}
		}

		stack = append(stack, b.Children(current)...)
	}
}

// Resolve returns the first window under root whose title equals title
// exactly. Matching is case-sensitive and byte-for-byte.
func Resolve(b platform.Binding, root platform.WindowID, title string) (platform.WindowID, error) {
	var (
		found platform.WindowID
		ok    bool
	)
	Walk(b, root, func(id platform.WindowID, candidate string) bool {
		if candidate == title {
			found, ok = id, true
			return false
		}
		return true
	})
	if !ok {
		return 0, &ResolutionError{Title: title}
	}
	return found, nil
}

// List returns every titled window under root in walk order, with geometry
// when the binding can report it.
func List(b platform.Binding, root platform.WindowID) []platform.Window {
	var windows []platform.Window
	Walk(b, root, func(id platform.WindowID, title string) bool {
		bounds, _ := b.Geometry(id)
		windows = append(windows, platform.Window{ID: id, Title: title, Bounds: bounds})
		return true
	})
	return windows
}

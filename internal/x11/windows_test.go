package x11

import (
	"errors"
	"testing"
)

func TestFirstTitle(t *testing.T) {
	missing := func() (string, error) { return "", errors.New("no such property") }
	empty := func() (string, error) { return "", nil }
	named := func(s string) func() (string, error) {
		return func() (string, error) { return s, nil }
	}

	tests := []struct {
		name      string
		lookups   []func() (string, error)
		wantTitle string
		wantOK    bool
	}{
		{name: "wm name set", lookups: []func() (string, error){named("Calculator"), named("Other")}, wantTitle: "Calculator", wantOK: true},
		{name: "falls back to net wm name", lookups: []func() (string, error){missing, named("Calculator")}, wantTitle: "Calculator", wantOK: true},
		{name: "empty wm name prefers net wm name", lookups: []func() (string, error){empty, named("Calculator")}, wantTitle: "Calculator", wantOK: true},
		{name: "empty wm name is present", lookups: []func() (string, error){empty, missing}, wantTitle: "", wantOK: true},
		{name: "empty net wm name is present", lookups: []func() (string, error){missing, empty}, wantTitle: "", wantOK: true},
		{name: "neither property", lookups: []func() (string, error){missing, missing}, wantTitle: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, ok := firstTitle(tt.lookups...)
			if title != tt.wantTitle || ok != tt.wantOK {
				t.Fatalf("firstTitle = (%q, %v), want (%q, %v)", title, ok, tt.wantTitle, tt.wantOK)
			}
		})
	}
}

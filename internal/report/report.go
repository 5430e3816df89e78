// Package report renders end-of-run statistics and window listings.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/1broseidon/lfuzz/internal/fuzz"
	"github.com/1broseidon/lfuzz/internal/platform"
	"github.com/1broseidon/lfuzz/internal/stats"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Summary is the end-of-run report.
type Summary struct {
	Target  string         `json:"target"`
	Window  uint32         `json:"window"`
	Count   uint64         `json:"count"`
	Unique  int            `json:"unique"`
	Codes   []uint16       `json:"codes"`
	Actions map[string]int `json:"actions,omitempty"`
}

// FromStatistics summarizes a fixed-count run.
func FromStatistics(title string, window platform.WindowID, s *stats.Statistics) Summary {
	return Summary{
		Target: title,
		Window: uint32(window),
		Count:  s.Count(),
		Unique: s.Unique(),
		Codes:  s.Codes(),
	}
}

// FromActions summarizes a predicate-mode run. Count covers every action;
// the code fields cover key presses only.
func FromActions(title string, window platform.WindowID, actions []fuzz.Action) Summary {
	pressed := stats.New()
	for _, a := range actions {
		if a.Kind == fuzz.ActionPress {
			pressed.Record(a.Code)
		}
	}
	kinds := make(map[string]int)
	for kind, n := range fuzz.CountKinds(actions) {
		kinds[string(kind)] = n
	}
	return Summary{
		Target:  title,
		Window:  uint32(window),
		Count:   uint64(len(actions)),
		Unique:  pressed.Unique(),
		Codes:   pressed.Codes(),
		Actions: kinds,
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type styles struct {
	on    bool
	label lipgloss.Style
	value lipgloss.Style
	dim   lipgloss.Style
}

func newStyles(styled bool) styles {
	if !styled {
		return styles{}
	}
	st := styles{
		label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Width(14).
			Align(lipgloss.Right).
			PaddingRight(2),
		value: lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true),
		dim: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
	}
	st.on = true
	return st
}

func (st styles) render(style lipgloss.Style, text string) string {
	if !st.on {
		return text
	}
	return style.Render(text)
}

// WriteSummary prints the summary. styled enables colours and alignment.
func WriteSummary(w io.Writer, s Summary, styled bool) error {
	st := newStyles(styled)
	row := func(label, value string) string {
		if !st.on {
			if value == "" {
				return label + ":"
			}
			return fmt.Sprintf("%s: %s", label, value)
		}
		return st.label.Render(label) + st.value.Render(value)
	}

	lines := []string{
		row("target", fmt.Sprintf("%q (%#x)", s.Target, s.Window)),
		row("count", fmt.Sprintf("%d", s.Count)),
		row("unique", fmt.Sprintf("%d", s.Unique)),
	}
	if len(s.Actions) > 0 {
		names := make([]string, 0, len(s.Actions))
		for name := range s.Actions {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%d", name, s.Actions[name]))
		}
		lines = append(lines, row("actions", strings.Join(parts, " ")))
	}
	if len(s.Codes) > 0 {
		lines = append(lines, row("codes", ""))
		for _, chunk := range chunkCodes(s.Codes, 12) {
			lines = append(lines, st.render(st.dim, "  "+chunk))
		}
	}

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func chunkCodes(codes []uint16, perLine int) []string {
	var out []string
	for start := 0; start < len(codes); start += perLine {
		end := min(start+perLine, len(codes))
		parts := make([]string, 0, end-start)
		for _, c := range codes[start:end] {
			parts = append(parts, fmt.Sprintf("0x%04x", c))
		}
		out = append(out, strings.Join(parts, " "))
	}
	return out
}

// WriteWindows prints one line per titled window.
func WriteWindows(w io.Writer, windows []platform.Window, styled bool) error {
	st := newStyles(styled)
	for _, win := range windows {
		geom := fmt.Sprintf("%dx%d+%d+%d", win.Bounds.Width, win.Bounds.Height, win.Bounds.X, win.Bounds.Y)
		line := fmt.Sprintf("%s  %s  %s",
			st.render(st.dim, fmt.Sprintf("0x%08x", uint32(win.ID))),
			st.render(st.dim, fmt.Sprintf("%-20s", geom)),
			st.render(st.value, win.Title),
		)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

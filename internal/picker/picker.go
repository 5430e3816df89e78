// Package picker lets the user choose a target window interactively.
package picker

import (
	"errors"
	"fmt"
	"sort"

	"github.com/1broseidon/lfuzz/internal/platform"
	"github.com/charmbracelet/huh"
)

// ErrNoWindows is returned when there is nothing to pick from.
var ErrNoWindows = errors.New("no titled windows found")

// ErrAborted is returned when the user cancels the picker.
var ErrAborted = errors.New("window selection aborted")

// Choose shows a select list of windows and returns the chosen title.
func Choose(windows []platform.Window) (string, error) {
	opts := options(windows)
	if len(opts) == 0 {
		return "", ErrNoWindows
	}

	var title string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Target window").
				Description("Input is sent to the first window carrying this exact title.").
				Options(opts...).
				Value(&title),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("window picker failed: %w", err)
	}
	return title, nil
}

// options builds one entry per distinct title, sorted by title. Windows
// sharing a title resolve to the same target, so they are listed once with a
// count.
func options(windows []platform.Window) []huh.Option[string] {
	counts := make(map[string]int)
	for _, w := range windows {
		if w.Title == "" {
			continue
		}
		counts[w.Title]++
	}

	titles := make([]string, 0, len(counts))
	for title := range counts {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	opts := make([]huh.Option[string], 0, len(titles))
	for _, title := range titles {
		label := title
		if n := counts[title]; n > 1 {
			label = fmt.Sprintf("%s (%d windows)", title, n)
		}
		opts = append(opts, huh.NewOption(label, title))
	}
	return opts
}

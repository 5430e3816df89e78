package tui

import (
	"strings"
	"testing"

	"github.com/1broseidon/lfuzz/internal/fuzz"
)

func TestModelCountsObservedActions(t *testing.T) {
	c := &counter{}
	m := newModel("Calculator", 10, c)

	c.observe(fuzz.Action{Kind: fuzz.ActionPress, Code: 0x41})
	c.observe(fuzz.Action{Kind: fuzz.ActionPress, Code: 0x42})
	c.observe(fuzz.Action{Kind: fuzz.ActionPress, Code: 0x43})

	next, cmd := m.Update(refreshMsg{})
	if cmd == nil {
		t.Fatalf("refresh should schedule another refresh")
	}
	view := next.View()
	if !strings.Contains(view, "3/10") {
		t.Fatalf("view missing 3/10:\n%s", view)
	}
	if !strings.Contains(view, "Calculator") {
		t.Fatalf("view missing title:\n%s", view)
	}
}

func TestModelOpenEndedShowsActionCount(t *testing.T) {
	c := &counter{}
	m := newModel("Editor", 0, c)
	c.observe(fuzz.Action{Kind: fuzz.ActionClick})

	next, _ := m.Update(refreshMsg{})
	view := next.View()
	if !strings.Contains(view, "1 actions") {
		t.Fatalf("view missing action count:\n%s", view)
	}
	if !strings.Contains(view, "last: click") {
		t.Fatalf("view missing last action:\n%s", view)
	}
}

func TestModelFinishedQuits(t *testing.T) {
	c := &counter{}
	m := newModel("Editor", 5, c)
	for i := 0; i < 5; i++ {
		c.observe(fuzz.Action{Kind: fuzz.ActionPress, Code: 0x61})
	}

	next, cmd := m.Update(finishedMsg{})
	if cmd == nil {
		t.Fatalf("finished should return a quit command")
	}
	got := next.(model)
	if !got.done || got.sent != 5 {
		t.Fatalf("done=%v sent=%d, want true 5", got.done, got.sent)
	}

	if _, cmd := got.Update(refreshMsg{}); cmd != nil {
		t.Fatalf("refresh after finish should not reschedule")
	}
}

func TestModelNoActionYet(t *testing.T) {
	m := newModel("Editor", 5, &counter{})
	if strings.Contains(m.View(), "last:") {
		t.Fatalf("view shows a last action before any dispatch:\n%s", m.View())
	}
}

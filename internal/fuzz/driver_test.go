package fuzz

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/lfuzz/internal/platform/platformtest"
	"github.com/1broseidon/lfuzz/internal/target"
)

type recordingTarget struct {
	presses []uint16
	clicks  int
	moves   int
	closes  int
}

func (r *recordingTarget) Press(code uint16) { r.presses = append(r.presses, code) }
func (r *recordingTarget) Click()            { r.clicks++ }
func (r *recordingTarget) MoveCursor()       { r.moves++ }
func (r *recordingTarget) RequestClose()     { r.closes++ }

// scriptedSource yields codes in order. Rand.Uint32 uses the high 32 bits of
// each value, so codes are shifted into place.
type scriptedSource struct {
	codes []uint16
	next  int
}

func (s *scriptedSource) Uint64() uint64 {
	c := s.codes[s.next%len(s.codes)]
	s.next++
	return uint64(c) << 32
}

func seeded(seed uint64) Option {
	return WithSource(NewSource(&seed))
}

func printableDenylist() *Denylist {
	d := NewDenylist()
	d.AddRange(0x00, 0x22)
	d.AddRange(0x7f, 0xffff)
	return d
}

func TestRun_CountsOnlyAcceptedCodes(t *testing.T) {
	src := &scriptedSource{codes: []uint16{0x10, 0x41, 0xffeb, 0x42, 0x41, 0x20, 0x43}}
	tgt := &recordingTarget{}
	deny := NewDenylist(0x10, 0xffeb, 0x20)

	s, err := NewDriver(tgt, deny, WithSource(src), WithInterval(0)).Run(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []uint16{0x41, 0x42, 0x41, 0x43}
	if len(tgt.presses) != len(want) {
		t.Fatalf("presses = %#x, want %#x", tgt.presses, want)
	}
	for i := range want {
		if tgt.presses[i] != want[i] {
			t.Fatalf("presses = %#x, want %#x", tgt.presses, want)
		}
	}
	if s.Count() != 4 {
		t.Fatalf("Count = %d, want 4", s.Count())
	}
	if s.Unique() != 3 {
		t.Fatalf("Unique = %d, want 3", s.Unique())
	}
	if src.next != 7 {
		t.Fatalf("expected 7 draws, got %d", src.next)
	}
}

func TestRun_PrintableScenario(t *testing.T) {
	tgt := &recordingTarget{}

	s, err := NewDriver(tgt, printableDenylist(), seeded(1), WithInterval(0)).Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Count() != 5 {
		t.Fatalf("Count = %d, want 5", s.Count())
	}
	if len(tgt.presses) != 5 {
		t.Fatalf("expected 5 presses, got %d", len(tgt.presses))
	}
	for _, c := range tgt.presses {
		if c < 0x23 || c > 0x7e {
			t.Fatalf("pressed %#x outside [0x23, 0x7e]", c)
		}
		if !s.Contains(c) {
			t.Fatalf("pressed %#x but it was not recorded", c)
		}
	}
	for _, c := range s.Codes() {
		if c < 0x23 || c > 0x7e {
			t.Fatalf("recorded %#x outside [0x23, 0x7e]", c)
		}
	}
}

func TestRun_EndToEndThroughHandle(t *testing.T) {
	fake := platformtest.NewFake(
		platformtest.Untitled(1, 2),
		platformtest.Titled(2, "Calculator"),
	)
	counters := &platformtest.Counters{}
	opts := target.DefaultOptions()
	opts.SettleDelay = 0

	h, err := target.Attach(platformtest.Opener(fake, counters, nil), "Calculator", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.Activate()
	s, err := NewDriver(h, printableDenylist(), seeded(42), WithInterval(0)).Run(context.Background(), 5)
	h.Close()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Count() != 5 {
		t.Fatalf("Count = %d, want 5", s.Count())
	}
	if len(fake.Keysyms) != 5 {
		t.Fatalf("binding translated %d keysyms, want 5", len(fake.Keysyms))
	}
	for _, ks := range fake.Keysyms {
		if ks < 0x23 || ks > 0x7e {
			t.Fatalf("binding got keysym %#x outside [0x23, 0x7e]", ks)
		}
	}
	if got := len(fake.PressedKeycodes()); got != 5 {
		t.Fatalf("expected 5 key-down events, got %d", got)
	}
	if !counters.Balanced() {
		t.Fatalf("opens=%d closes=%d", counters.Opens, counters.Closes)
	}
}

func TestRun_NeverRecordsDenylistedCodes(t *testing.T) {
	deny := DefaultDenylist(0x100)
	tgt := &recordingTarget{}

	s, err := NewDriver(tgt, deny, seeded(7), WithInterval(0)).Run(context.Background(), 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range s.Codes() {
		if deny.Contains(c) {
			t.Fatalf("recorded denylisted code %#x", c)
		}
	}
	if uint64(s.Unique()) > s.Count() {
		t.Fatalf("unique=%d exceeds count=%d", s.Unique(), s.Count())
	}
	if s.Count() != 500 {
		t.Fatalf("Count = %d, want 500", s.Count())
	}
}

func TestRun_ZeroLimit(t *testing.T) {
	tgt := &recordingTarget{}
	s, err := NewDriver(tgt, nil, seeded(1)).Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Count() != 0 || len(tgt.presses) != 0 {
		t.Fatalf("expected no dispatches")
	}
}

func TestRun_FullDenylist(t *testing.T) {
	deny := NewDenylist()
	deny.AddRange(0, 0xffff)

	_, err := NewDriver(&recordingTarget{}, deny, seeded(1)).Run(context.Background(), 1)
	if !errors.Is(err, ErrDenylistExhausted) {
		t.Fatalf("expected ErrDenylistExhausted, got %v", err)
	}
}

func TestRun_CancelledContextReturnsPartialStats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tgt := &cancellingTarget{after: 3, cancel: cancel}

	s, err := NewDriver(tgt, nil, seeded(3), WithInterval(0)).Run(ctx, 100)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if s.Count() != 3 {
		t.Fatalf("Count = %d, want 3", s.Count())
	}
}

type cancellingTarget struct {
	recordingTarget
	after  int
	cancel context.CancelFunc
}

func (c *cancellingTarget) Press(code uint16) {
	c.recordingTarget.Press(code)
	if len(c.presses) == c.after {
		c.cancel()
	}
}

func TestRun_SeedReproducesSequence(t *testing.T) {
	a, b := &recordingTarget{}, &recordingTarget{}
	deny := DefaultDenylist(DefaultUpperBound)

	if _, err := NewDriver(a, deny, seeded(99), WithInterval(0)).Run(context.Background(), 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewDriver(b, deny, seeded(99), WithInterval(0)).Run(context.Background(), 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range a.presses {
		if a.presses[i] != b.presses[i] {
			t.Fatalf("sequences diverge at %d: %#x vs %#x", i, a.presses[i], b.presses[i])
		}
	}
}

func TestRunUntil_StopsWhenPredicateTrue(t *testing.T) {
	tgt := &recordingTarget{}
	calls := 0
	stop := func() bool {
		calls++
		return calls > 10
	}

	actions, err := NewDriver(tgt, printableDenylist(), seeded(5), WithInterval(0)).RunUntil(context.Background(), stop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 10 {
		t.Fatalf("expected 10 actions, got %d", len(actions))
	}
	counts := CountKinds(actions)
	if counts[ActionPress]+counts[ActionClick] != 10 {
		t.Fatalf("unexpected kinds: %v", counts)
	}
	if counts[ActionPress] != len(tgt.presses) || counts[ActionClick] != tgt.clicks {
		t.Fatalf("actions %v do not match dispatches presses=%d clicks=%d", counts, len(tgt.presses), tgt.clicks)
	}
	for _, a := range actions {
		if a.Kind == ActionPress && (a.Code < 0x23 || a.Code > 0x7e) {
			t.Fatalf("pressed denylisted code %#x", a.Code)
		}
	}
}

func TestRunUntil_ImmediateStop(t *testing.T) {
	tgt := &recordingTarget{}
	actions, err := NewDriver(tgt, nil, seeded(1)).RunUntil(context.Background(), func() bool { return true })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 0 || len(tgt.presses) != 0 || tgt.clicks != 0 {
		t.Fatalf("expected no dispatches")
	}
}

func TestRunUntil_CloseStopsOnGoneWindow(t *testing.T) {
	fake := platformtest.NewFake(
		platformtest.Untitled(1, 2),
		platformtest.Titled(2, "Editor"),
	)
	opts := target.DefaultOptions()
	opts.SettleDelay = 0
	h, err := target.Attach(platformtest.Opener(fake, &platformtest.Counters{}, nil), "Editor", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer h.Close()

	closing := &closingTarget{Handle: h, fake: fake}
	d := NewDriver(closing, nil, seeded(8), WithInterval(0), WithActions(ActionClose))
	actions, err := d.RunUntil(context.Background(), func() bool { return !h.Alive() })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 1 || actions[0].Kind != ActionClose {
		t.Fatalf("expected a single close action, got %v", actions)
	}
	if len(fake.Messages) != 1 {
		t.Fatalf("expected one WM_DELETE_WINDOW message, got %d", len(fake.Messages))
	}
}

// closingTarget removes the window from the fake once a close is requested,
// as a well-behaved client would.
type closingTarget struct {
	*target.Handle
	fake *platformtest.Fake
}

func (c *closingTarget) RequestClose() {
	c.Handle.RequestClose()
	c.fake.Remove(c.Handle.Window())
}

func TestRun_ObserverSeesEveryAcceptedPress(t *testing.T) {
	src := &scriptedSource{codes: []uint16{0x41, 0xffeb, 0x42}}
	deny := NewDenylist(0xffeb)

	var seen []Action
	observe := WithObserver(func(a Action) { seen = append(seen, a) })
	if _, err := NewDriver(&recordingTarget{}, deny, WithSource(src), WithInterval(0), observe).Run(context.Background(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Action{{Kind: ActionPress, Code: 0x41}, {Kind: ActionPress, Code: 0x42}, {Kind: ActionPress, Code: 0x41}}
	if len(seen) != len(want) {
		t.Fatalf("observed %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("observed[%d] = %v, want %v", i, seen[i], want[i])
		}
	}
}

// Package fuzz drives randomized input against an attached target.
package fuzz

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/1broseidon/lfuzz/internal/stats"
)

// DefaultInterval is the pause before each dispatch.
const DefaultInterval = 500 * time.Nanosecond

// ErrDenylistExhausted is returned when the denylist leaves no code to draw.
var ErrDenylistExhausted = errors.New("denylist covers every input code")

// Target receives dispatched input. *target.Handle implements it.
type Target interface {
	Press(code uint16)
	Click()
	MoveCursor()
	RequestClose()
}

// NewSource returns a random source. A nil seed draws one from the runtime's
// entropy-backed generator; a fixed seed reproduces the same code sequence.
func NewSource(seed *uint64) rand.Source {
	if seed == nil {
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)
}

// Driver generates codes, filters them against a denylist and dispatches the
// survivors. A Driver is used by one goroutine at a time.
type Driver struct {
	target   Target
	deny     *Denylist
	rng      *rand.Rand
	interval time.Duration
	kinds    []ActionKind
	logger   *slog.Logger
	observe  func(Action)
}

type Option func(*Driver)

// WithSource replaces the random source.
func WithSource(src rand.Source) Option {
	return func(d *Driver) { d.rng = rand.New(src) }
}

// WithInterval sets the pause taken before every dispatch.
func WithInterval(interval time.Duration) Option {
	return func(d *Driver) { d.interval = interval }
}

// WithActions sets the action kinds RunUntil chooses from.
func WithActions(kinds ...ActionKind) Option {
	return func(d *Driver) {
		if len(kinds) > 0 {
			d.kinds = append([]ActionKind(nil), kinds...)
		}
	}
}

// WithObserver registers fn to be called after every dispatch.
func WithObserver(fn func(Action)) Option {
	return func(d *Driver) { d.observe = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDriver creates a driver for target. A nil denylist denies nothing.
func NewDriver(target Target, deny *Denylist, opts ...Option) *Driver {
	if deny == nil {
		deny = NewDenylist()
	}
	d := &Driver{
		target:   target,
		deny:     deny,
		interval: DefaultInterval,
		kinds:    DefaultActionKinds,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.rng == nil {
		d.rng = rand.New(NewSource(nil))
	}
	return d
}

// draw returns the next code not in the denylist. Rejected draws are not
// reported anywhere.
func (d *Driver) draw() Code {
	for {
		c := Code(d.rng.Uint32())
		if !d.deny.Contains(c) {
			return c
		}
	}
}

// Run presses limit accepted codes and returns what was dispatched. The
// context is checked between dispatches; a cancelled run returns the
// statistics gathered so far together with the context error.
func (d *Driver) Run(ctx context.Context, limit uint64) (*stats.Statistics, error) {
	s := stats.New()
	if limit == 0 {
		return s, nil
	}
	if d.deny.Full() {
		return s, ErrDenylistExhausted
	}

	for s.Count() < limit {
		if err := ctx.Err(); err != nil {
			return s, err
		}

		code := d.draw()
		time.Sleep(d.interval)
		d.logger.Debug("key press", "keysym", code)
		d.target.Press(code)
		s.Record(code)
		if d.observe != nil {
			d.observe(Action{Kind: ActionPress, Code: code})
		}
	}

	return s, nil
}

// RunUntil dispatches random actions until stop reports true. stop is
// checked once before every step.
func (d *Driver) RunUntil(ctx context.Context, stop func() bool) ([]Action, error) {
	var actions []Action
	if d.deny.Full() {
		return actions, ErrDenylistExhausted
	}

	for {
		if stop() {
			return actions, nil
		}
		if err := ctx.Err(); err != nil {
			return actions, err
		}

		code := d.draw()
		action := Action{Kind: d.kinds[d.rng.IntN(len(d.kinds))]}
		time.Sleep(d.interval)

		switch action.Kind {
		case ActionPress:
			action.Code = code
			d.target.Press(code)
		case ActionClick:
			d.target.Click()
		case ActionMove:
			d.target.MoveCursor()
		case ActionClose:
			d.target.RequestClose()
		}
		d.logger.Debug("dispatched", "action", action.String())
		actions = append(actions, action)
		if d.observe != nil {
			d.observe(action)
		}
	}
}

// Package tui renders a live view of a running fuzz session.
package tui

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/lfuzz/internal/fuzz"
)

const refreshInterval = 100 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// counter is shared between the driver goroutine and the view.
type counter struct {
	sent atomic.Uint64
	last atomic.Value // fuzz.Action
}

func (c *counter) observe(a fuzz.Action) {
	c.sent.Add(1)
	c.last.Store(a)
}

func (c *counter) lastAction() (fuzz.Action, bool) {
	a, ok := c.last.Load().(fuzz.Action)
	return a, ok
}

type refreshMsg struct{}

type finishedMsg struct{}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

// model is the bubbletea model for the progress view. total is zero for
// open-ended runs, which show a spinner instead of a bar.
type model struct {
	title   string
	total   uint64
	counter *counter
	sent    uint64
	bar     progress.Model
	spinner spinner.Model
	done    bool
}

func newModel(title string, total uint64, c *counter) model {
	return model{
		title:   title,
		total:   total,
		counter: c,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(refresh(), m.spinner.Tick)
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.sent = m.counter.sent.Load()
		if m.done {
			return m, nil
		}
		return m, refresh()
	case finishedMsg:
		m.sent = m.counter.sent.Load()
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	if m.total > 0 {
		percent := float64(m.sent) / float64(m.total)
		if percent > 1 {
			percent = 1
		}
		b.WriteString(m.bar.ViewAs(percent))
		b.WriteString(" ")
		b.WriteString(countStyle.Render(fmt.Sprintf("%d/%d", m.sent, m.total)))
	} else {
		if !m.done {
			b.WriteString(m.spinner.View())
			b.WriteString(" ")
		}
		b.WriteString(countStyle.Render(fmt.Sprintf("%d actions", m.sent)))
	}

	if a, ok := m.counter.lastAction(); ok {
		b.WriteString(dimStyle.Render("  last: " + a.String()))
	}
	b.WriteString("\n")
	return b.String()
}

// Progress shows a live view of a run. Observe may be called from the
// driver goroutine while the view is running.
type Progress struct {
	counter *counter
	program *tea.Program
	done    chan struct{}
	err     error
}

// Start begins rendering to out. total is the expected number of presses, or
// zero for runs that stop on a condition.
func Start(out io.Writer, title string, total uint64) *Progress {
	p := &Progress{
		counter: &counter{},
		done:    make(chan struct{}),
	}
	p.program = tea.NewProgram(
		newModel(title, total, p.counter),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	go func() {
		defer close(p.done)
		_, p.err = p.program.Run()
	}()
	return p
}

// Observe counts one dispatched action. It matches fuzz.WithObserver.
func (p *Progress) Observe(a fuzz.Action) {
	p.counter.observe(a)
}

// Stop renders the final state and waits for the terminal to be restored.
func (p *Progress) Stop() error {
	p.program.Send(finishedMsg{})
	<-p.done
	return p.err
}

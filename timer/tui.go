package timer

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gen2brain/beeep"

	"github.com/jgehrke/worklog/internal/sharedstate"
)

const (
	padding  = 2
	maxWidth = 80
)

type keymap struct {
	togglePlay key.Binding
	endDay     key.Binding
	enter      key.Binding
	quit       key.Binding
}

var defaultKeymap = keymap{
	togglePlay: key.NewBinding(
		key.WithKeys("p", " "),
		key.WithHelp("p", "pause/resume"),
	),
	endDay: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "end day"),
	),
	enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "dismiss"),
	),
	quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type styles struct {
	base      lipgloss.Style
	main      lipgloss.Style
	secondary lipgloss.Style
	hint      lipgloss.Style
}

type tui struct {
	progress   progress.Model
	help       help.Model
	style      styles
	confirmEnd bool
	finished   bool
}

// tickMsg carries the generation it was scheduled under so that a tick
// dispatched before a state transition can be recognised and dropped.
type tickMsg struct {
	gen int
}

func (t *Timer) initUI() {
	accent := t.display.AccentColor
	if accent == "" {
		accent = "#B0DB43"
	}

	t.ui = tui{
		progress: progress.New(progress.WithDefaultGradient()),
		help:     help.New(),
		style: styles{
			base: lipgloss.NewStyle().Padding(1, padding),
			main: lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(accent)),
			secondary: lipgloss.NewStyle().Bold(true),
			hint:      lipgloss.NewStyle().Faint(true),
		},
	}
}

// tick schedules the next 1 Hz recomputation under the current generation.
func (t *Timer) tick() tea.Cmd {
	gen := t.tickGen

	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// retick invalidates any in-flight tick and schedules a fresh one while a
// session is live. Paused sessions keep ticking too: the tick is what drains
// the external command queue, and a paused session must still be resumable
// from outside. It must be called after every state transition.
func (t *Timer) retick() tea.Cmd {
	t.tickGen++

	if t.state == StateRunning || t.state == StatePaused {
		return t.tick()
	}

	return nil
}

func (t *Timer) Init() tea.Cmd {
	if t.state == StateNotStarted {
		_ = t.Start()
	}

	return t.retick()
}

// applyCommands drains the shared command queue written by out-of-process
// consumers. Only toggle and end-day can arrive here.
func (t *Timer) applyCommands() {
	if t.shared == nil {
		return
	}

	cmds, err := t.shared.DrainCommands()
	if err != nil {
		return
	}

	for _, cmd := range cmds {
		switch cmd {
		case sharedstate.CommandToggle:
			_ = t.Toggle()
		case sharedstate.CommandEndDay:
			if err := t.EndDay(); err == nil {
				t.ui.finished = true
			}
		}
	}
}

func (t *Timer) notifyEndOfDay() {
	if !t.display.Notify {
		return
	}

	_ = beeep.Notify(
		"Standard hours reached",
		"You have worked your standard hours for today. End the day?",
		"",
	)
}

func (t *Timer) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if msg.gen != t.tickGen {
		return t, nil
	}

	stateBefore := t.state

	t.applyCommands()

	if t.ui.finished || t.state == StateFinished {
		t.ui.finished = true
		return t, tea.Quit
	}

	if t.ShouldEndDay() {
		t.ui.confirmEnd = true

		t.notifyEndOfDay()
	}

	if t.state != stateBefore {
		return t, t.retick()
	}

	if t.state == StateRunning || t.state == StatePaused {
		return t, t.tick()
	}

	return t, nil
}

func (t *Timer) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, defaultKeymap.togglePlay):
		_ = t.Toggle()

		return t, t.retick()

	case key.Matches(msg, defaultKeymap.endDay):
		if err := t.EndDay(); err == nil {
			t.ui.finished = true
			t.tickGen++

			return t, tea.Quit
		}

		return t, nil

	case key.Matches(msg, defaultKeymap.enter):
		t.ui.confirmEnd = false

		return t, nil

	case key.Matches(msg, defaultKeymap.quit):
		// the snapshot already reflects the latest transition, so quitting
		// mid-session is safe: the session resumes on the next launch
		if t.state == StateRunning || t.state == StatePaused {
			t.persistSnapshot()
		}

		t.tickGen++

		return t, tea.Batch(tea.ClearScreen, tea.Quit)
	}

	return t, nil
}

func (t *Timer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return t.handleTick(msg)

	case tea.KeyMsg:
		return t.handleKey(msg)

	case tea.WindowSizeMsg:
		t.ui.progress.Width = msg.Width - padding*2 - 4
		if t.ui.progress.Width > maxWidth {
			t.ui.progress.Width = maxWidth
		}

		return t, nil

	case progress.FrameMsg:
		progressModel, cmd := t.ui.progress.Update(msg)
		t.ui.progress, _ = progressModel.(progress.Model)

		return t, cmd
	}

	return t, nil
}

func formatElapsed(d time.Duration) string {
	secs := int64(d.Seconds())
	if secs < 0 {
		secs = 0
	}

	return fmt.Sprintf(
		"%02d:%02d:%02d",
		secs/3600,
		(secs%3600)/60,
		secs%60,
	)
}

func (t *Timer) confirmEndView() string {
	var s strings.Builder

	s.WriteString(
		t.ui.style.main.Render("You have reached your standard hours"),
	)
	s.WriteString("\n\n")
	s.WriteString(
		t.ui.style.secondary.Render(
			"End the day now, or keep going to build overtime.",
		),
	)
	s.WriteString("\n\n" + t.ui.help.ShortHelpView([]key.Binding{
		defaultKeymap.endDay,
		defaultKeymap.enter,
		defaultKeymap.quit,
	}))

	return s.String()
}

func (t *Timer) sessionView() string {
	var s strings.Builder

	switch t.state {
	case StatePaused:
		s.WriteString(t.ui.style.secondary.Render("[Paused]"))
	default:
		s.WriteString(t.ui.style.hint.Render(
			"since " + t.startTimestamp.Format("15:04:05"),
		))
	}

	s.WriteString("\n\n")
	s.WriteString(t.ui.style.main.Render(formatElapsed(t.Elapsed())))
	s.WriteString("\n\n")

	standard := t.StandardDaySeconds()
	if standard > 0 {
		percent := t.Elapsed().Seconds() / float64(standard)
		if percent > 1 {
			percent = 1
		}

		s.WriteString(t.ui.progress.ViewAs(percent))
	}

	s.WriteString("\n\n" + t.ui.help.ShortHelpView([]key.Binding{
		defaultKeymap.togglePlay,
		defaultKeymap.endDay,
		defaultKeymap.quit,
	}))

	return s.String()
}

func (t *Timer) View() string {
	if t.ui.finished {
		return ""
	}

	if t.ui.confirmEnd {
		return t.ui.style.base.Render(t.confirmEndView())
	}

	return t.ui.style.base.Render(t.sessionView())
}

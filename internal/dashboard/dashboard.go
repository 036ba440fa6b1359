// Package dashboard implements the live Bubble Tea TUI behind the
// `watch` and `watch-all` commands. Adapted from the teacher's
// transcript-viewer model/update/view loop (main.go), but rendering
// per-agent health/efficiency/rot scores and recent warnings instead of
// a message transcript — the transcript-rendering concern itself
// (chunking, the session picker) is explicitly out of scope here.
package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/muesli/termenv"

	"github.com/kylesnowschwartz/agentwatch/internal/detect"
	"github.com/kylesnowschwartz/agentwatch/internal/runner"
	"github.com/kylesnowschwartz/agentwatch/internal/tail"
	"github.com/kylesnowschwartz/agentwatch/internal/theme"
)

// tickMsg advances the model's animFrame counter on the teacher's 150ms
// tickCmd cadence; View does not draw an indicator from it.
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// agentRow is one tailed session's live state within the dashboard.
type agentRow struct {
	path    string
	session *runner.Session
	snap    runner.Snapshot
	stopped bool
}

type model struct {
	rows      map[string]*agentRow
	order     []string
	cursor    int
	width     int
	height    int
	themeName string
	mode      detect.Mode

	events chan any
	watch  *tail.MultiWatcher

	animFrame int
	render    *warningRenderer
}

// Run starts the dashboard against the given MultiWatcher, blocking
// until the user quits.
func Run(watcher *tail.MultiWatcher, themeName string, mode detect.Mode) error {
	// termenv's OSC 11 dark-background query must happen before the
	// alt screen takes over the terminal, same constraint the teacher's
	// main() observes before calling tea.NewProgram.
	hasDarkBg := termenv.HasDarkBackground()
	lipgloss.SetHasDarkBackground(hasDarkBg)

	m := &model{
		rows:      make(map[string]*agentRow),
		themeName: themeName,
		mode:      mode,
		events:    make(chan any, 64),
		render:    newWarningRenderer(),
	}
	m.watch = watcher

	go func() {
		for ev := range watcher.Events() {
			m.events <- ev
		}
	}()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitForEvent(m.events))
}

type eventMsg struct{ ev tail.Event }

func waitForEvent(ch chan any) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		if e, ok := ev.(tail.Event); ok {
			return eventMsg{ev: e}
		}
		return nil
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.order)-1 {
				m.cursor++
			}
		}
		return m, nil

	case tickMsg:
		m.animFrame++
		return m, tickCmd()

	case eventMsg:
		m.handleEvent(msg.ev)
		return m, waitForEvent(m.events)
	}
	return m, nil
}

func (m *model) handleEvent(ev tail.Event) {
	switch ev.Kind {
	case tail.EventAgentAdded:
		if _, ok := m.rows[ev.Path]; !ok {
			m.rows[ev.Path] = &agentRow{path: ev.Path, session: runner.New(0)}
			m.order = append(m.order, ev.Path)
			sort.Strings(m.order)
		}
	case tail.EventAction:
		row, ok := m.rows[ev.Path]
		if !ok {
			row = &agentRow{path: ev.Path, session: runner.New(0)}
			m.rows[ev.Path] = row
			m.order = append(m.order, ev.Path)
			sort.Strings(m.order)
		}
		row.session.Ingest(ev.Actions)
		row.snap = row.session.Score(m.mode)
	}
}

func (m *model) View() string {
	t := theme.Get(m.themeName)
	var b strings.Builder

	header := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("agentwatch — %d agent(s)", len(m.order)))
	b.WriteString(header + "\n\n")

	if len(m.order) == 0 {
		b.WriteString("waiting for an agent session...\n")
		return b.String()
	}

	for i, path := range m.order {
		row := m.rows[path]
		level := theme.StatusFromScore(row.snap.Overall)
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(t.ColorFor(level)))
		line := fmt.Sprintf("%s%s %-40s overall %3.0f  health %3.0f  eff %3d  rot %.2f",
			cursor, t.EmojiFor(level), shortPath(path), row.snap.Overall, row.snap.Health.Overall,
			row.snap.Efficiency.Score, row.snap.Rot.Smoothed)
		b.WriteString(style.Render(line) + "\n")
	}

	if m.cursor < len(m.order) {
		b.WriteString("\n" + m.detailView(m.rows[m.order[m.cursor]]))
	}

	b.WriteString("\n\nq: quit   up/down: select agent\n")
	return b.String()
}

func (m *model) detailView(row *agentRow) string {
	if len(row.snap.Warnings) == 0 {
		return "no warnings"
	}
	var b strings.Builder
	b.WriteString("recent warnings:\n")
	for i, w := range row.snap.Warnings {
		if i >= 8 {
			b.WriteString(fmt.Sprintf("  ... and %d more\n", len(row.snap.Warnings)-i))
			break
		}
		b.WriteString(fmt.Sprintf("  [%s/%s] %s\n", w.Category, w.Severity, w.Message))
		if w.Suggestion != "" {
			b.WriteString("    " + m.render.renderSuggestion(w.Suggestion, m.width-6) + "\n")
		}
		if cmd, ok := w.Details["command"].(string); ok && cmd != "" {
			b.WriteString("    " + m.render.hl.highlightCommand(cmd) + "\n")
		}
	}
	return b.String()
}

func shortPath(p string) string {
	if len(p) <= 48 {
		return p
	}
	return "..." + p[len(p)-45:]
}

// Package tui renders a live dashboard for a running program and forwards
// parameter changes to the executor.
package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/plcrt/internal/executor"
)

const (
	historyLen = 60
	tuneStep   = 0.05
)

// Tuner receives parameter changes. *executor.Executor satisfies it.
type Tuner interface {
	Tune(name string, value float64) error
}

type updateMsg Update

// DoneMsg reports that the executor returned.
type DoneMsg struct {
	Summary *executor.Summary
	Err     error
}

type Model struct {
	program  string
	periodMs int
	tuner    Tuner
	updates  <-chan Update
	cancel   func()

	last     Update
	params   map[string]float64
	names    []string
	cursor   int
	elapsed  []float64
	channel  string
	samples  []float64
	status   string
	done     *DoneMsg
	quitting bool
}

// New builds the dashboard. cancel is called when the user quits and
// should stop the executor.
func New(program string, periodMs int, tuner Tuner, updates <-chan Update, cancel func()) Model {
	return Model{
		program:  program,
		periodMs: periodMs,
		tuner:    tuner,
		updates:  updates,
		cancel:   cancel,
		params:   map[string]float64{},
	}
}

func (m Model) Init() tea.Cmd { return m.waitForUpdate() }

func (m Model) waitForUpdate() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	ch := m.updates
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return updateMsg(u)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case updateMsg:
		m.apply(Update(msg))
		return m, m.waitForUpdate()
	case DoneMsg:
		m.done = &msg
		return m, nil
	}
	return m, nil
}

func (m *Model) apply(u Update) {
	m.last = u
	m.elapsed = pushBounded(m.elapsed, u.Record.ElapsedMs)

	if len(u.Params) > 0 {
		m.params = u.Params
		if len(m.names) != len(u.Params) {
			m.names = sortedKeys(u.Params)
			if m.cursor >= len(m.names) {
				m.cursor = 0
			}
		}
	}

	if m.channel == "" {
		m.channel = pickChannel(u.Record.Samples)
	}
	if v, ok := u.Record.Samples[m.channel]; ok {
		m.samples = pushBounded(m.samples, v)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case "tab":
		if len(m.names) > 0 {
			m.cursor = (m.cursor + 1) % len(m.names)
		}
	case "up", "k":
		m.nudge(1 + tuneStep)
	case "down", "j":
		m.nudge(1 - tuneStep)
	}
	return m, nil
}

// nudge scales the selected parameter. A zero parameter steps by tuneStep
// so it can leave zero.
func (m *Model) nudge(factor float64) {
	if len(m.names) == 0 || m.tuner == nil {
		return
	}
	name := m.names[m.cursor]
	cur := m.params[name]

	next := cur * factor
	if cur == 0 {
		next = tuneStep
		if factor < 1 {
			next = 0
		}
	}

	if err := m.tuner.Tune(name, next); err != nil {
		m.status = fmt.Sprintf("%s: %v", name, err)
		return
	}
	m.params[name] = next
	m.status = fmt.Sprintf("%s → %.4g", name, next)
}

func (m Model) Selected() string {
	if len(m.names) == 0 {
		return ""
	}
	return m.names[m.cursor]
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(title.Render(fmt.Sprintf("plcrt  %s  %d ms", m.program, m.periodMs)))
	b.WriteString("\n\n")

	st := m.last.Stats
	status := ok.Render("RUNNING")
	if m.done != nil {
		status = label.Render("STOPPED")
	}
	overruns := value.Render(fmt.Sprintf("%d", st.TimeoutCount))
	if st.TimeoutCount > 0 {
		overruns = warn.Render(fmt.Sprintf("%d", st.TimeoutCount))
	}
	minMs := st.MinCycleMs
	if st.CycleCount == 0 {
		minMs = 0
	}
	stats := fmt.Sprintf("%s %s\n%s %s\n%s %s\n%s %s / %s / %s ms\n%s %s",
		label.Render("state   "), status,
		label.Render("cycles  "), value.Render(fmt.Sprintf("%d", st.CycleCount)),
		label.Render("overruns"), overruns,
		label.Render("cycle   "),
		value.Render(fmt.Sprintf("%.3f", minMs)),
		value.Render(fmt.Sprintf("%.3f", st.AvgCycleMs)),
		value.Render(fmt.Sprintf("%.3f", st.MaxCycleMs)),
		label.Render("interval"), value.Render(fmt.Sprintf("%.2f ms", m.last.Record.IntervalMs)),
	)

	var params strings.Builder
	for i, name := range m.names {
		line := fmt.Sprintf("%-14s %10.4g", name, m.params[name])
		if i == m.cursor {
			params.WriteString(selected.Render("> " + line))
		} else {
			params.WriteString(label.Render("  " + line))
		}
		params.WriteString("\n")
	}
	if len(m.names) == 0 {
		params.WriteString(label.Render("no tunable parameters"))
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		panel.Render(stats),
		panel.Render(strings.TrimRight(params.String(), "\n"))))
	b.WriteString("\n")

	if len(m.elapsed) > 1 {
		b.WriteString(asciigraph.Plot(m.elapsed,
			asciigraph.Height(6),
			asciigraph.Width(60),
			asciigraph.Caption("cycle time (ms)")))
		b.WriteString("\n")
	}
	if len(m.samples) > 1 {
		b.WriteString(asciigraph.Plot(m.samples,
			asciigraph.Height(6),
			asciigraph.Width(60),
			asciigraph.Caption(m.channel)))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(value.Render(m.status))
		b.WriteString("\n")
	}
	if m.done != nil && m.done.Err != nil {
		b.WriteString(warn.Render(m.done.Err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(hint.Render("tab select · ↑/↓ ±5% · q quit"))
	return b.String()
}

func pushBounded(s []float64, v float64) []float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return s
	}
	s = append(s, v)
	if len(s) > historyLen {
		s = s[len(s)-historyLen:]
	}
	return s
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// pickChannel prefers the process value, then the controller output.
func pickChannel(samples map[string]float64) string {
	for _, k := range []string{"temperature", "output"} {
		if _, ok := samples[k]; ok {
			return k
		}
	}
	keys := sortedKeys(samples)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

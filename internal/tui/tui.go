// Package tui is the interactive `np play` screen.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"noticeperiod/internal/achievement"
	"noticeperiod/internal/cli"
	"noticeperiod/internal/content"
	"noticeperiod/internal/game"
)

// Backend is the part of *cli.Client the screen drives.
type Backend interface {
	State(ctx context.Context) (cli.GameState, error)
	Choose(ctx context.Context, choice string, index int, idem string) (cli.ChoiceResponse, error)
	Reset(ctx context.Context) error
}

type sessionState int

const (
	stateLoading sessionState = iota
	statePlaying
	stateResult
	stateFinished
	stateError
)

const (
	stressBarWidth = 20
	defaultWidth   = 72
)

type model struct {
	ctx     context.Context
	backend Backend
	state   sessionState
	spinner spinner.Model

	player game.PlayerProgress
	step   content.Step
	cursor int
	last   *cli.ChoiceResponse

	width int
	err   error
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E4572E")).
			Bold(true)

	phaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			Italic(true)

	scenarioStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			PaddingLeft(1)

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC")).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	resultStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			Padding(0, 1)

	goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F"))
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)
)

func NewModel(ctx context.Context, b Backend) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return model{
		ctx:     ctx,
		backend: b,
		state:   stateLoading,
		spinner: sp,
		width:   defaultWidth,
	}
}

// Run blocks until the player quits.
func Run(ctx context.Context, b Backend) error {
	_, err := tea.NewProgram(NewModel(ctx, b), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

type stateLoadedMsg struct {
	state cli.GameState
}

type choiceMadeMsg struct {
	resp cli.ChoiceResponse
}

type errMsg struct {
	err error
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchState())
}

func (m model) fetchState() tea.Cmd {
	return func() tea.Msg {
		st, err := m.backend.State(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return stateLoadedMsg{st}
	}
}

func (m model) choose(label string, index int) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.backend.Choose(m.ctx, label, index, uuid.NewString())
		if err != nil {
			return errMsg{err}
		}
		return choiceMadeMsg{resp}
	}
}

func (m model) reset() tea.Cmd {
	return func() tea.Msg {
		if err := m.backend.Reset(m.ctx); err != nil {
			return errMsg{err}
		}
		st, err := m.backend.State(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return stateLoadedMsg{st}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stateLoadedMsg:
		m.player = msg.state.Player
		m.step = msg.state.CurrentStep
		m.cursor = 0
		m.last = nil
		m.state = statePlaying
		if m.player.Outcome.Terminal() {
			m.state = stateFinished
		}

	case choiceMadeMsg:
		m.last = &msg.resp
		m.player = msg.resp.Player
		if msg.resp.NextStep != nil {
			m.step = *msg.resp.NextStep
		}
		m.cursor = 0
		m.state = stateResult

	case errMsg:
		m.err = msg.err
		m.state = stateError
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		return m, tea.Quit
	}

	switch m.state {
	case statePlaying:
		labels := m.step.Choices.Labels()
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(labels)-1 {
				m.cursor++
			}
		case "1", "2", "3":
			idx := int(msg.String()[0] - '1')
			if idx < len(labels) {
				m.state = stateLoading
				return m, m.choose(labels[idx], idx)
			}
		case "enter":
			if m.cursor < len(labels) {
				m.state = stateLoading
				return m, m.choose(labels[m.cursor], m.cursor)
			}
		}

	case stateResult:
		if msg.String() != "enter" && msg.String() != " " {
			return m, nil
		}
		switch {
		case m.player.Outcome.Terminal():
			m.state = stateFinished
		case m.last != nil && m.last.NextStep == nil:
			// A repeat restarts the run; the new first step comes from the server.
			m.state = stateLoading
			return m, m.fetchState()
		default:
			m.state = statePlaying
		}

	case stateFinished, stateError:
		if msg.String() == "r" {
			m.err = nil
			m.state = stateLoading
			return m, m.reset()
		}
	}
	return m, nil
}

func (m model) View() string {
	switch m.state {
	case stateLoading:
		return fmt.Sprintf("\n %s Waiting on corporate...\n", m.spinner.View())
	case stateError:
		return fmt.Sprintf("\n%s\n\n%s\n", badStyle.Render("Error: "+m.err.Error()), helpStyle.Render("r to reset the run · q to quit"))
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	switch m.state {
	case statePlaying:
		b.WriteString(titleStyle.Render(m.step.Title))
		b.WriteString("\n")
		b.WriteString(scenarioStyle.Width(m.width - 2).Render(m.step.Scenario))
		b.WriteString("\n\n")
		for i, label := range m.step.Choices.Labels() {
			line := fmt.Sprintf("%d. %s", i+1, label)
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString(choiceStyle.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ or 1-3 to pick · enter to commit · q to quit"))

	case stateResult:
		b.WriteString(resultStyle.Width(m.width - 4).Render(renderResult(*m.last)))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter to continue · q to quit"))

	case stateFinished:
		b.WriteString(titleStyle.Render(endingHeadline(m.player)))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("Days survived: %d · Achievements: %d\n\n", m.player.DaysSurvived(), len(m.player.Achievements)))
		b.WriteString(helpStyle.Render("r to start over · q to quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m model) header() string {
	day := m.player.CurrentStep
	if day > content.TotalSteps {
		day = content.TotalSteps
	}
	phase := content.PhaseProgress(day)
	top := titleStyle.Render("THE NOTICE PERIOD") + "  " +
		phaseStyle.Render(fmt.Sprintf("Day %d/%d · %s %d/%d", day, content.TotalSteps, phase.Phase.Label(), phase.Progress, phase.Total))
	stats := fmt.Sprintf("Stress %s %3d%%   Bank $%.2f", stressBar(m.player.StressLevel, stressBarWidth), m.player.StressLevel, m.player.BankAccount)
	return top + "\n" + stats
}

func renderResult(r cli.ChoiceResponse) string {
	var b strings.Builder
	b.WriteString("Stress ")
	b.WriteString(signed(float64(r.StressChange), "%+.0f", true))
	b.WriteString("   Money ")
	b.WriteString(signed(r.MoneyChange, "%+.2f", false))
	b.WriteString("\n\n")
	if r.ViralPost.Title != "" {
		b.WriteString(fmt.Sprintf("r/%s: %s\n", r.ViralPost.Subreddit, r.ViralPost.Title))
		b.WriteString(fmt.Sprintf("▲ %d · %d comments\n", r.ViralPost.Engagement.Upvotes, r.ViralPost.Engagement.Comments))
	}
	for _, a := range r.NewAchievements {
		b.WriteString("\n")
		b.WriteString(goodStyle.Render(unlockedLine(a)))
	}
	if r.GameComplete {
		b.WriteString("\n\n")
		b.WriteString(titleStyle.Render(endingHeadline(r.Player)))
	}
	return b.String()
}

func unlockedLine(a achievement.Status) string {
	return fmt.Sprintf("%s Achievement unlocked: %s", a.Icon, a.Title)
}

// signed colours a delta; for stress an increase is bad, for money it is good.
func signed(v float64, format string, higherIsWorse bool) string {
	text := fmt.Sprintf(format, v)
	switch {
	case v == 0:
		return text
	case (v > 0) == higherIsWorse:
		return badStyle.Render(text)
	default:
		return goodStyle.Render(text)
	}
}

func endingHeadline(p game.PlayerProgress) string {
	switch p.Outcome {
	case game.OutcomeEscaped:
		return "You escaped corporate purgatory."
	case game.OutcomeSabbatical:
		return "You took a sabbatical to figure things out."
	case game.OutcomeRepeat:
		return "New company, same cycle. Day 1 again."
	default:
		return "Still clocked in."
	}
}

func stressBar(level, width int) string {
	level = game.ClampStress(level)
	filled := level * width / game.MaxStress
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

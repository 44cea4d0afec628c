package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"noticeperiod/internal/cli"
	"noticeperiod/internal/content"
	"noticeperiod/internal/game"
)

type fakeBackend struct {
	state   cli.GameState
	resp    cli.ChoiceResponse
	err     error
	choices []string
	resets  int
}

func (f *fakeBackend) State(context.Context) (cli.GameState, error) {
	return f.state, f.err
}

func (f *fakeBackend) Choose(_ context.Context, choice string, index int, idem string) (cli.ChoiceResponse, error) {
	if idem == "" {
		return cli.ChoiceResponse{}, errors.New("missing idempotency key")
	}
	f.choices = append(f.choices, choice)
	return f.resp, f.err
}

func (f *fakeBackend) Reset(context.Context) error {
	f.resets++
	return f.err
}

func step(id int) content.Step {
	s, _ := content.Lookup(id)
	return s
}

func player(stepID int, outcome game.Outcome) game.PlayerProgress {
	return game.PlayerProgress{CurrentStep: stepID, StressLevel: 40, BankAccount: 75, Outcome: outcome}
}

// run executes cmd and feeds its message back through Update.
func run(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	next, _ := m.Update(cmd())
	return next.(model)
}

func press(m model, key string) (model, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func TestPlayLoop(t *testing.T) {
	next := step(2)
	fb := &fakeBackend{
		state: cli.GameState{Player: player(1, game.OutcomePlaying), CurrentStep: step(1)},
		resp:  cli.ChoiceResponse{Player: player(2, game.OutcomePlaying), NextStep: &next, StressChange: 7, MoneyChange: -5},
	}
	m := NewModel(context.Background(), fb)
	m = run(t, m, m.fetchState())
	if m.state != statePlaying {
		t.Fatalf("state=%v want playing", m.state)
	}
	if !strings.Contains(m.View(), step(1).Title) {
		t.Fatalf("view missing step title")
	}

	m, _ = press(m, "down")
	if m.cursor != 1 {
		t.Fatalf("cursor=%d", m.cursor)
	}
	m, cmd := press(m, "enter")
	if m.state != stateLoading {
		t.Fatalf("expected loading while the choice is in flight")
	}
	m = run(t, m, cmd)
	if m.state != stateResult {
		t.Fatalf("state=%v want result", m.state)
	}
	if got, want := fb.choices[0], step(1).Choices.Label(1); got != want {
		t.Fatalf("sent %q want %q", got, want)
	}
	if !strings.Contains(m.View(), "+7") {
		t.Fatalf("result view missing stress delta:\n%s", m.View())
	}

	m, cmd = press(m, "enter")
	if cmd != nil || m.state != statePlaying || m.step.ID != 2 {
		t.Fatalf("expected to continue on step 2, got state=%v step=%d", m.state, m.step.ID)
	}
}

func TestNumberKeysChooseDirectly(t *testing.T) {
	fb := &fakeBackend{state: cli.GameState{Player: player(1, game.OutcomePlaying), CurrentStep: step(1)}}
	m := NewModel(context.Background(), fb)
	m = run(t, m, m.fetchState())

	m, cmd := press(m, "3")
	if len(step(1).Choices.Labels()) < 3 {
		if cmd != nil {
			t.Fatalf("key 3 should be ignored on a two-choice step")
		}
		return
	}
	run(t, m, cmd)
	if len(fb.choices) != 1 {
		t.Fatalf("expected one choice, got %v", fb.choices)
	}
}

func TestTerminalEndingAndReset(t *testing.T) {
	fb := &fakeBackend{
		state: cli.GameState{Player: player(30, game.OutcomePlaying), CurrentStep: step(30)},
		resp:  cli.ChoiceResponse{Player: player(30, game.OutcomeEscaped), GameComplete: true},
	}
	m := NewModel(context.Background(), fb)
	m = run(t, m, m.fetchState())
	m, cmd := press(m, "1")
	m = run(t, m, cmd)
	if !strings.Contains(m.View(), "escaped") {
		t.Fatalf("result view missing ending:\n%s", m.View())
	}
	m, _ = press(m, "enter")
	if m.state != stateFinished {
		t.Fatalf("state=%v want finished", m.state)
	}

	fb.state = cli.GameState{Player: player(1, game.OutcomePlaying), CurrentStep: step(1)}
	m, cmd = press(m, "r")
	m = run(t, m, cmd)
	if fb.resets != 1 || m.state != statePlaying || m.step.ID != 1 {
		t.Fatalf("reset did not restart: resets=%d state=%v step=%d", fb.resets, m.state, m.step.ID)
	}
}

func TestRepeatRefetchesState(t *testing.T) {
	fb := &fakeBackend{
		state: cli.GameState{Player: player(30, game.OutcomePlaying), CurrentStep: step(30)},
		resp:  cli.ChoiceResponse{Player: player(1, game.OutcomeRepeat), GameComplete: true},
	}
	m := NewModel(context.Background(), fb)
	m = run(t, m, m.fetchState())
	m, cmd := press(m, "2")
	m = run(t, m, cmd)

	fb.state = cli.GameState{Player: player(1, game.OutcomeRepeat), CurrentStep: step(1)}
	m, cmd = press(m, "enter")
	m = run(t, m, cmd)
	if m.state != statePlaying || m.step.ID != 1 {
		t.Fatalf("repeat should keep playing from step 1, got state=%v step=%d", m.state, m.step.ID)
	}
}

func TestErrorState(t *testing.T) {
	fb := &fakeBackend{err: errors.New("connection refused")}
	m := NewModel(context.Background(), fb)
	m = run(t, m, m.fetchState())
	if m.state != stateError || !strings.Contains(m.View(), "connection refused") {
		t.Fatalf("expected error view, got state=%v", m.state)
	}
}

func TestStressBar(t *testing.T) {
	tests := []struct {
		level  int
		filled int
	}{
		{0, 0},
		{50, 10},
		{100, 20},
		{140, 20},
		{-5, 0},
	}
	for _, tc := range tests {
		bar := stressBar(tc.level, 20)
		if got := strings.Count(bar, "█"); got != tc.filled {
			t.Fatalf("level %d: filled=%d want %d", tc.level, got, tc.filled)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != 20 {
			t.Fatalf("level %d: width=%d", tc.level, got)
		}
	}
}

// Package content holds the static day-by-day script of a run. The table is
// decoded once from the embedded steps.yaml and is read-only afterwards.
package content

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

type Phase string

const (
	PhaseHunt      Phase = "hunt"
	PhaseHoneymoon Phase = "honeymoon"
	PhaseGrind     Phase = "grind"
	PhaseChoice    Phase = "choice"
)

const (
	TotalSteps = 30
	FinalStep  = TotalSteps

	lastHuntStep      = 8
	lastHoneymoonStep = 15
	lastGrindStep     = 25
)

var ErrStepNotFound = errors.New("step not found")

// Choices mirrors the option1..option3 shape the client renders.
type Choices struct {
	Option1 string `yaml:"option1" json:"option1"`
	Option2 string `yaml:"option2" json:"option2"`
	Option3 string `yaml:"option3,omitempty" json:"option3,omitempty"`
}

// Labels returns the non-empty labels in index order.
func (c Choices) Labels() []string {
	out := make([]string, 0, 3)
	for _, l := range []string{c.Option1, c.Option2, c.Option3} {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Label returns the authored label at index, or "" when the step has none.
func (c Choices) Label(index int) string {
	labels := c.Labels()
	if index < 0 || index >= len(labels) {
		return ""
	}
	return labels[index]
}

type Step struct {
	ID          int     `yaml:"id" json:"id"`
	Title       string  `yaml:"title" json:"title"`
	Scenario    string  `yaml:"scenario" json:"scenario"`
	AIPrompt    string  `yaml:"aiPrompt" json:"aiPrompt"`
	RedditPost  string  `yaml:"redditPost" json:"redditPost"`
	StressMeter int     `yaml:"stressMeter" json:"stressMeter"`
	BankAccount float64 `yaml:"bankAccount" json:"bankAccount"`
	Phase       Phase   `yaml:"phase" json:"phase"`
	Choices     Choices `yaml:"choices" json:"choices"`
}

// Progress locates a step inside its phase.
type Progress struct {
	Phase    Phase `json:"phase"`
	Progress int   `json:"progress"`
	Total    int   `json:"total"`
}

//go:embed steps.yaml
var stepsYAML []byte

var table = mustLoad(stepsYAML)

type document struct {
	Steps []Step `yaml:"steps"`
}

func mustLoad(raw []byte) []Step {
	steps, err := load(raw)
	if err != nil {
		panic(fmt.Sprintf("content: %v", err))
	}
	return steps
}

func load(raw []byte) ([]Step, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode steps: %w", err)
	}
	if err := validate(doc.Steps); err != nil {
		return nil, err
	}
	return doc.Steps, nil
}

func validate(steps []Step) error {
	if len(steps) != TotalSteps {
		return fmt.Errorf("expected %d steps, got %d", TotalSteps, len(steps))
	}
	for i, s := range steps {
		if s.ID != i+1 {
			return fmt.Errorf("step at position %d has id %d; ids must be contiguous from 1", i, s.ID)
		}
		if want := PhaseOf(s.ID); s.Phase != want {
			return fmt.Errorf("step %d tagged %q, want %q", s.ID, s.Phase, want)
		}
		if n := len(s.Choices.Labels()); n < 2 || n > 3 {
			return fmt.Errorf("step %d has %d choices; want 2 or 3", s.ID, n)
		}
	}
	if len(steps[FinalStep-1].Choices.Labels()) != 3 {
		return fmt.Errorf("step %d must offer all three endings", FinalStep)
	}
	return nil
}

// PhaseOf maps a step id onto its phase. Ids past the last step stay in the
// choice phase.
func PhaseOf(step int) Phase {
	switch {
	case step <= lastHuntStep:
		return PhaseHunt
	case step <= lastHoneymoonStep:
		return PhaseHoneymoon
	case step <= lastGrindStep:
		return PhaseGrind
	default:
		return PhaseChoice
	}
}

func PhaseProgress(step int) Progress {
	switch PhaseOf(step) {
	case PhaseHunt:
		return Progress{Phase: PhaseHunt, Progress: step, Total: lastHuntStep}
	case PhaseHoneymoon:
		return Progress{Phase: PhaseHoneymoon, Progress: step - lastHuntStep, Total: lastHoneymoonStep - lastHuntStep}
	case PhaseGrind:
		return Progress{Phase: PhaseGrind, Progress: step - lastHoneymoonStep, Total: lastGrindStep - lastHoneymoonStep}
	default:
		return Progress{Phase: PhaseChoice, Progress: step - lastGrindStep, Total: TotalSteps - lastGrindStep}
	}
}

func Lookup(id int) (Step, bool) {
	if id < 1 || id > len(table) {
		return Step{}, false
	}
	return table[id-1], true
}

// Get is Lookup for callers that propagate errors.
func Get(id int) (Step, error) {
	s, ok := Lookup(id)
	if !ok {
		return Step{}, fmt.Errorf("%w: %d", ErrStepNotFound, id)
	}
	return s, nil
}

func ByPhase(phase Phase) []Step {
	var out []Step
	for _, s := range table {
		if s.Phase == phase {
			out = append(out, s)
		}
	}
	return out
}

func Total() int {
	return len(table)
}

// Label returns the display name of a phase.
func (p Phase) Label() string {
	switch p {
	case PhaseHunt:
		return "Hunt"
	case PhaseHoneymoon:
		return "Honeymoon"
	case PhaseGrind:
		return "Grind"
	case PhaseChoice:
		return "Choice"
	default:
		return string(p)
	}
}

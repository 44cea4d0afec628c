package game

import (
	"fmt"
	"slices"
	"strings"

	"noticeperiod/internal/achievement"
	"noticeperiod/internal/content"
	"noticeperiod/internal/viral"
)

// Identity is supplied by the hosting platform and is never authenticated.
type Identity struct {
	PostID string
	UserID string
}

func (id Identity) validate() error {
	if strings.TrimSpace(id.PostID) == "" || strings.TrimSpace(id.UserID) == "" {
		return fmt.Errorf("%w: postId and userId required", ErrInvalidInput)
	}
	return nil
}

// Outcome is how a run ended. The wire field "escaped" can only express three
// of the four values, so sabbatical and playing both serialize as null there.
type Outcome string

const (
	OutcomePlaying    Outcome = "playing"
	OutcomeEscaped    Outcome = "escaped"
	OutcomeRepeat     Outcome = "repeat"
	OutcomeSabbatical Outcome = "sabbatical"
)

// Terminal reports whether the run accepts no further choices. A repeat
// starts a new run, so it is not terminal.
func (o Outcome) Terminal() bool {
	return o == OutcomeEscaped || o == OutcomeSabbatical
}

func (o Outcome) escapedFlag() *bool {
	var v bool
	switch o {
	case OutcomeEscaped:
		v = true
	case OutcomeRepeat:
		v = false
	default:
		return nil
	}
	return &v
}

type PlayerProgress struct {
	Version          int            `json:"version"`
	CurrentStep      int            `json:"currentStep"`
	StressLevel      int            `json:"stressLevel"`
	BankAccount      float64        `json:"bankAccount"`
	ChoicesMade      []string       `json:"choicesMade"`
	StartDate        string         `json:"startDate"`
	CompletedSteps   []int          `json:"completedSteps"`
	Phase            content.Phase  `json:"phase"`
	Escaped          *bool          `json:"escaped"`
	Outcome          Outcome        `json:"outcome"`
	EndingChoice     string         `json:"endingChoice,omitempty"`
	Achievements     []string       `json:"achievements"`
	ViralMoments     []viral.Moment `json:"viralMoments"`
	// RecentChoiceKeys holds the last idempotency keys applied, oldest first.
	RecentChoiceKeys []string       `json:"recentChoiceKeys,omitempty"`
}

func newPlayer(startDate string) PlayerProgress {
	p := PlayerProgress{
		Version:        CurrentRecordVersion,
		CurrentStep:    1,
		StressLevel:    InitialStress,
		BankAccount:    InitialBank,
		ChoicesMade:    []string{},
		StartDate:      startDate,
		CompletedSteps: []int{},
		Phase:          content.PhaseHunt,
		Achievements:   []string{},
		ViralMoments:   []viral.Moment{},
	}
	p.setOutcome(OutcomePlaying)
	return p
}

func (p *PlayerProgress) setOutcome(o Outcome) {
	p.Outcome = o
	p.Escaped = o.escapedFlag()
}

func (p *PlayerProgress) rememberChoiceKey(key string) {
	p.RecentChoiceKeys = append(p.RecentChoiceKeys, key)
	if n := len(p.RecentChoiceKeys); n > maxRecentChoiceKeys {
		p.RecentChoiceKeys = slices.Clone(p.RecentChoiceKeys[n-maxRecentChoiceKeys:])
	}
}

func (p *PlayerProgress) recordMoment(m viral.Moment) {
	p.ViralMoments = append(p.ViralMoments, m)
	if n := len(p.ViralMoments); n > maxViralMoments {
		p.ViralMoments = slices.Clone(p.ViralMoments[n-maxViralMoments:])
	}
}

// DaysSurvived is the number of completed steps in the current run.
func (p PlayerProgress) DaysSurvived() int {
	return len(p.CompletedSteps)
}

func (p PlayerProgress) GameComplete() bool {
	return p.CurrentStep > content.TotalSteps || p.Outcome != OutcomePlaying
}

func (p PlayerProgress) snapshot() achievement.Snapshot {
	return achievement.Snapshot{
		CompletedSteps: len(p.CompletedSteps),
		StressLevel:    p.StressLevel,
		Escaped:        p.Outcome == OutcomeEscaped,
		Repeated:       p.Outcome == OutcomeRepeat,
		Sabbatical:     p.Outcome == OutcomeSabbatical,
		Unlocked:       p.Achievements,
	}
}

type ChoiceInput struct {
	Identity       Identity
	Choice         string
	ChoiceIndex    int
	IdempotencyKey string
}

type ChoiceResult struct {
	Player PlayerProgress
	// Step is the step the choice was made on.
	Step            content.Step
	NextStep        *content.Step
	StressChange    int
	MoneyChange     float64
	NewAchievements []achievement.Achievement
	GameComplete    bool
}

type GameState struct {
	Player       PlayerProgress `json:"player"`
	CurrentStep  content.Step   `json:"currentStep"`
	GameComplete bool           `json:"gameComplete"`
}

type PostConfig struct {
	GameInitialized bool   `json:"gameInitialized"`
	CreatedAt       string `json:"createdAt"`
}

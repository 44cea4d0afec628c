package game

import (
	"errors"
	"math"

	"noticeperiod/internal/content"
)

const (
	InitialStress = 10
	InitialBank   = 100.0

	MinStress = 0
	MaxStress = 100

	EscapeBonus      = 1_000_000.0
	EscapeRelief     = -50
	SabbaticalRelief = -30

	HuntDailyCost      = -5.0
	HoneymoonDailyWage = 0.69
	GrindDailyWage     = 0.6969

	CurrentRecordVersion = 1

	firstPaidStep     = 8
	lastHoneymoonStep = 15

	choiceEscape     = 0
	choiceRepeat     = 1
	choiceSabbatical = 2
	maxChoiceIndex   = choiceSabbatical

	maxRecentChoiceKeys = 32
	maxViralMoments     = 20
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrGameOver         = errors.New("game is over")
	ErrDuplicateChoice  = errors.New("duplicate idempotency key")
	ErrCorruptRecord    = errors.New("corrupt record")
)

// MoneyChange is the daily bank delta, keyed on the step being completed
// (before it advances).
func MoneyChange(step int) float64 {
	switch {
	case step < firstPaidStep:
		return HuntDailyCost
	case step <= lastHoneymoonStep:
		return HoneymoonDailyWage
	default:
		return GrindDailyWage
	}
}

// stressRange is [min, min+span) per choice index.
var stressRange = [...]struct{ min, span int }{
	{5, 10},
	{0, 5},
	{10, 15},
}

func ClampStress(v int) int {
	if v < MinStress {
		return MinStress
	}
	if v > MaxStress {
		return MaxStress
	}
	return v
}

func floorBank(v float64) float64 {
	return math.Max(0, v)
}

func validChoiceIndex(i int) bool {
	return i >= 0 && i <= maxChoiceIndex
}

func isFinalStep(step int) bool {
	return step == content.FinalStep
}

package game

import (
	"encoding/json"
	"fmt"

	"noticeperiod/internal/content"
	"noticeperiod/internal/viral"
)

// DecodeProgress reads a stored player record. Records written before the
// version field existed are upgraded in memory; the caller decides whether to
// write them back.
func DecodeProgress(raw []byte) (PlayerProgress, error) {
	var p PlayerProgress
	if err := json.Unmarshal(raw, &p); err != nil {
		return PlayerProgress{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	switch {
	case p.Version > CurrentRecordVersion:
		return PlayerProgress{}, fmt.Errorf("%w: unknown record version %d", ErrCorruptRecord, p.Version)
	case p.Version < 0:
		return PlayerProgress{}, fmt.Errorf("%w: negative record version", ErrCorruptRecord)
	}
	if p.CurrentStep < 1 {
		return PlayerProgress{}, fmt.Errorf("%w: currentStep %d", ErrCorruptRecord, p.CurrentStep)
	}

	if p.ChoicesMade == nil {
		p.ChoicesMade = []string{}
	}
	if p.CompletedSteps == nil {
		p.CompletedSteps = []int{}
	}
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	if p.ViralMoments == nil {
		p.ViralMoments = []viral.Moment{}
	}
	if p.Version == 0 || p.Outcome == "" {
		p.setOutcome(deriveOutcome(p))
		if p.EndingChoice == "" && p.Outcome != OutcomePlaying {
			p.EndingChoice = legacyEndingChoice(p)
		}
	} else {
		switch p.Outcome {
		case OutcomePlaying, OutcomeEscaped, OutcomeRepeat, OutcomeSabbatical:
			p.setOutcome(p.Outcome)
		default:
			return PlayerProgress{}, fmt.Errorf("%w: unknown outcome %q", ErrCorruptRecord, p.Outcome)
		}
	}
	p.Phase = content.PhaseOf(p.CurrentStep)
	p.StressLevel = ClampStress(p.StressLevel)
	p.Version = CurrentRecordVersion
	return p, nil
}

func EncodeProgress(p PlayerProgress) ([]byte, error) {
	p.Version = CurrentRecordVersion
	return json.Marshal(p)
}

// deriveOutcome recovers the ending from the legacy tri-state flag. A null
// flag is a sabbatical only when the final step was completed without
// advancing.
func deriveOutcome(p PlayerProgress) Outcome {
	if p.Escaped != nil {
		if *p.Escaped {
			return OutcomeEscaped
		}
		return OutcomeRepeat
	}
	n := len(p.CompletedSteps)
	if p.CurrentStep == content.FinalStep && n > 0 && p.CompletedSteps[n-1] == content.FinalStep {
		return OutcomeSabbatical
	}
	return OutcomePlaying
}

func legacyEndingChoice(p PlayerProgress) string {
	if len(p.ChoicesMade) == 0 {
		return ""
	}
	if p.Outcome == OutcomeRepeat && len(p.CompletedSteps) > 0 {
		// choices were made after the repeat; the ending one is lost.
		return ""
	}
	return p.ChoicesMade[len(p.ChoicesMade)-1]
}

func decodePostConfig(raw []byte) (PostConfig, error) {
	var c PostConfig
	if err := json.Unmarshal(raw, &c); err != nil {
		return PostConfig{}, fmt.Errorf("%w: post config: %v", ErrCorruptRecord, err)
	}
	return c, nil
}

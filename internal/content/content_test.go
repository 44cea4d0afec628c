package content

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestTableIsContiguous(t *testing.T) {
	if Total() != TotalSteps {
		t.Fatalf("total=%d want %d", Total(), TotalSteps)
	}
	for id := 1; id <= TotalSteps; id++ {
		s, ok := Lookup(id)
		if !ok {
			t.Fatalf("step %d missing", id)
		}
		if s.ID != id {
			t.Fatalf("lookup(%d) returned step %d", id, s.ID)
		}
		if s.Scenario == "" || s.Title == "" {
			t.Fatalf("step %d has empty text", id)
		}
	}
}

func TestPhaseOf(t *testing.T) {
	tests := []struct {
		from, to int
		want     Phase
	}{
		{1, 8, PhaseHunt},
		{9, 15, PhaseHoneymoon},
		{16, 25, PhaseGrind},
		{26, 30, PhaseChoice},
	}
	for _, tc := range tests {
		for id := tc.from; id <= tc.to; id++ {
			if got := PhaseOf(id); got != tc.want {
				t.Fatalf("PhaseOf(%d)=%s want %s", id, got, tc.want)
			}
			s, _ := Lookup(id)
			if s.Phase != tc.want {
				t.Fatalf("step %d tagged %s want %s", id, s.Phase, tc.want)
			}
		}
	}
}

func TestLookupOutOfRange(t *testing.T) {
	for _, id := range []int{-1, 0, 31, 100} {
		if _, ok := Lookup(id); ok {
			t.Fatalf("expected lookup(%d) to miss", id)
		}
		if _, err := Get(id); !errors.Is(err, ErrStepNotFound) {
			t.Fatalf("Get(%d) err=%v want ErrStepNotFound", id, err)
		}
	}
}

func TestByPhaseRanges(t *testing.T) {
	tests := []struct {
		phase       Phase
		first, last int
	}{
		{PhaseHunt, 1, 8},
		{PhaseHoneymoon, 9, 15},
		{PhaseGrind, 16, 25},
		{PhaseChoice, 26, 30},
	}
	for _, tc := range tests {
		steps := ByPhase(tc.phase)
		if len(steps) != tc.last-tc.first+1 {
			t.Fatalf("%s: got %d steps", tc.phase, len(steps))
		}
		if steps[0].ID != tc.first || steps[len(steps)-1].ID != tc.last {
			t.Fatalf("%s: range %d..%d want %d..%d", tc.phase, steps[0].ID, steps[len(steps)-1].ID, tc.first, tc.last)
		}
	}
}

func TestPhaseProgress(t *testing.T) {
	tests := []struct {
		step int
		want Progress
	}{
		{1, Progress{PhaseHunt, 1, 8}},
		{8, Progress{PhaseHunt, 8, 8}},
		{9, Progress{PhaseHoneymoon, 1, 7}},
		{20, Progress{PhaseGrind, 5, 10}},
		{30, Progress{PhaseChoice, 5, 5}},
	}
	for _, tc := range tests {
		if got := PhaseProgress(tc.step); got != tc.want {
			t.Fatalf("step %d got %+v want %+v", tc.step, got, tc.want)
		}
	}
}

func TestFinalStepOffersThreeEndings(t *testing.T) {
	s, _ := Lookup(FinalStep)
	labels := s.Choices.Labels()
	if len(labels) != 3 {
		t.Fatalf("final step has %d choices", len(labels))
	}
	if !strings.Contains(labels[0], "ESCAPE") || !strings.Contains(labels[1], "REPEAT") {
		t.Fatalf("unexpected ending labels: %v", labels)
	}
	if s.Choices.Label(3) != "" {
		t.Fatalf("expected empty label past the last choice")
	}
}

func TestLoadRejectsBrokenTables(t *testing.T) {
	if _, err := load([]byte("steps: [")); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := load([]byte("steps:\n  - id: 1\n    phase: hunt\n")); err == nil {
		t.Fatalf("expected short table to fail validation")
	}

	steps := slices.Clone(table)
	steps[4].Phase = PhaseGrind
	if err := validate(steps); err == nil {
		t.Fatalf("expected phase mismatch to fail validation")
	}

	steps = slices.Clone(table)
	steps[2].ID = 7
	if err := validate(steps); err == nil {
		t.Fatalf("expected non-contiguous ids to fail validation")
	}
}

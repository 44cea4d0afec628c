package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticeperiod/internal/content"
)

func TestDecodeLegacyRecordBackfills(t *testing.T) {
	raw := `{"currentStep":12,"stressLevel":40,"bankAccount":70.5,"choicesMade":["a"],
		"startDate":"2024-01-01T00:00:00Z","completedSteps":[11],"phase":"hunt","escaped":null}`

	p, err := DecodeProgress([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, CurrentRecordVersion, p.Version)
	assert.Equal(t, OutcomePlaying, p.Outcome)
	assert.Nil(t, p.Escaped)
	assert.Equal(t, content.PhaseHoneymoon, p.Phase)
	assert.NotNil(t, p.Achievements)
	assert.Empty(t, p.Achievements)
	assert.NotNil(t, p.ViralMoments)
}

func TestDecodeLegacyOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   Outcome
		ending string
	}{
		{
			name:   "escaped",
			raw:    `{"currentStep":30,"completedSteps":[29,30],"choicesMade":["x","Go solo"],"escaped":true}`,
			want:   OutcomeEscaped,
			ending: "Go solo",
		},
		{
			name:   "fresh repeat",
			raw:    `{"currentStep":1,"completedSteps":[],"choicesMade":["x","Again"],"escaped":false}`,
			want:   OutcomeRepeat,
			ending: "Again",
		},
		{
			name: "repeat that kept playing",
			raw:  `{"currentStep":3,"completedSteps":[1,2],"choicesMade":["x","Again","y","z"],"escaped":false}`,
			want: OutcomeRepeat,
		},
		{
			name:   "sabbatical",
			raw:    `{"currentStep":30,"completedSteps":[29,30],"choicesMade":["x","Rest"],"escaped":null}`,
			want:   OutcomeSabbatical,
			ending: "Rest",
		},
		{
			name: "standing on the final step",
			raw:  `{"currentStep":30,"completedSteps":[28,29],"escaped":null}`,
			want: OutcomePlaying,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := DecodeProgress([]byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.Outcome)
			assert.Equal(t, tc.ending, p.EndingChoice)
		})
	}
}

func TestDecodeRejectsCorruptRecords(t *testing.T) {
	for _, raw := range []string{
		`not json`,
		`{"version":99,"currentStep":1}`,
		`{"version":1,"currentStep":0}`,
		`{"version":1,"currentStep":1,"outcome":"vanished"}`,
	} {
		_, err := DecodeProgress([]byte(raw))
		assert.ErrorIs(t, err, ErrCorruptRecord, raw)
	}
}

func TestEncodeKeepsWireShape(t *testing.T) {
	p := newPlayer("2025-01-01T00:00:00Z")
	p.setOutcome(OutcomeSabbatical)

	raw, err := EncodeProgress(p)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.Contains(t, wire, "escaped")
	assert.Nil(t, wire["escaped"])
	assert.Equal(t, "sabbatical", wire["outcome"])
	assert.Equal(t, []any{}, wire["completedSteps"])

	back, err := DecodeProgress(raw)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSabbatical, back.Outcome)
}

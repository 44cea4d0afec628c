// Package achievement declares the unlockable achievements and evaluates
// which of them a player has newly earned.
package achievement

const (
	daysPerViralPoint  = 10
	escapeViralBonus   = 500
	viralLegendScore   = 1000
	maxStress          = 100
	fullRunCompletions = 30
)

// Snapshot is the slice of player state the predicates read.
type Snapshot struct {
	CompletedSteps int
	StressLevel    int
	Escaped        bool
	Repeated       bool
	Sabbatical     bool
	// Unlocked holds the ids already granted.
	Unlocked []string
}

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	ShareText   string `json:"shareText"`

	condition func(Snapshot) bool
}

// Status is an achievement paired with whether a player holds it.
type Status struct {
	Achievement
	Unlocked bool `json:"unlocked"`
}

// ViralScore is the cosmetic score used by viral_legend and flavor text.
func ViralScore(s Snapshot) int {
	score := s.CompletedSteps * daysPerViralPoint
	if s.Escaped {
		score += escapeViralBonus
	}
	return score
}

var catalog = []Achievement{
	{
		ID:          "first_day",
		Title:       "Corporate Virgin",
		Description: "Survived your first day of corporate hell",
		Icon:        "🎯",
		ShareText:   "🏆 Achievement Unlocked: Corporate Virgin! Just survived my first day of corporate hell. The journey begins... #TheNoticePeriod #CorporateLife",
		condition:   func(s Snapshot) bool { return s.CompletedSteps >= 1 },
	},
	{
		ID:          "buzzword_master",
		Title:       "Buzzword Bingo Champion",
		Description: "Used 10+ corporate buzzwords in a single day",
		Icon:        "🎪",
		ShareText:   "🏆 Achievement Unlocked: Buzzword Bingo Champion! I can now leverage synergistic solutions to optimize paradigm shifts! #CorporateSpeak #TheNoticePeriod",
		condition:   func(s Snapshot) bool { return s.CompletedSteps >= 3 },
	},
	{
		ID:          "meeting_survivor",
		Title:       "Meeting Marathon Survivor",
		Description: "Attended 5+ meetings in a single day",
		Icon:        "🏃‍♂️",
		ShareText:   "🏆 Achievement Unlocked: Meeting Marathon Survivor! 5 meetings, 0 decisions made, 100% time wasted. #MeetingHell #TheNoticePeriod",
		condition:   func(s Snapshot) bool { return s.CompletedSteps >= 16 },
	},
	{
		ID:          "stress_maxed",
		Title:       "Maximum Stress Achieved",
		Description: "Reached 100% stress level",
		Icon:        "💀",
		ShareText:   "🏆 Achievement Unlocked: Maximum Stress Achieved! My soul has officially left the building. #Burnout #TheNoticePeriod #SendHelp",
		condition:   func(s Snapshot) bool { return s.StressLevel >= maxStress },
	},
	{
		ID:          "honeymoon_over",
		Title:       "Honeymoon Phase Survivor",
		Description: "Completed the honeymoon phase",
		Icon:        "💔",
		ShareText:   "🏆 Achievement Unlocked: Honeymoon Phase Survivor! The optimism is officially dead. Reality has set in. #CorporateReality #TheNoticePeriod",
		condition:   func(s Snapshot) bool { return s.CompletedSteps >= 15 },
	},
	{
		ID:          "grind_master",
		Title:       "Corporate Grind Master",
		Description: "Survived the grind phase",
		Icon:        "⚙️",
		ShareText:   "🏆 Achievement Unlocked: Corporate Grind Master! I am now one with the machine. Resistance is futile. #CorporateGrind #TheNoticePeriod",
		condition:   func(s Snapshot) bool { return s.CompletedSteps >= 25 },
	},
	{
		ID:          "escape_artist",
		Title:       "The Great Escape",
		Description: "Successfully escaped corporate purgatory",
		Icon:        "🚀",
		ShareText:   "🏆 Achievement Unlocked: The Great Escape! I broke free from corporate purgatory and started my own path! Freedom tastes amazing! #Entrepreneur #TheNoticePeriod #Freedom",
		condition:   func(s Snapshot) bool { return s.Escaped },
	},
	{
		ID:          "cycle_repeater",
		Title:       "Cycle Repeater",
		Description: "Got trapped in the corporate cycle again",
		Icon:        "🔄",
		ShareText:   "🏆 Achievement Unlocked: Cycle Repeater! Welcome to my new company - they're different here! (Narrator: They weren't) #CorporateCycle #TheNoticePeriod",
		condition:   func(s Snapshot) bool { return s.Repeated },
	},
	{
		ID:          "sabbatical_taker",
		Title:       "Sabbatical Sage",
		Description: "Took a sabbatical to figure things out",
		Icon:        "🏃",
		ShareText:   "🏆 Achievement Unlocked: Sabbatical Sage! Sometimes the best choice is to step back and reassess. Journey continues! #Sabbatical #TheNoticePeriod",
		condition:   func(s Snapshot) bool { return s.Sabbatical && s.CompletedSteps >= fullRunCompletions },
	},
	{
		ID:          "viral_legend",
		Title:       "Viral Legend",
		Description: "Achieved over 1000 viral score",
		Icon:        "👑",
		ShareText:   "🏆 Achievement Unlocked: Viral Legend! My corporate suffering has reached legendary status! 👑 #ViralLegend #TheNoticePeriod #CorporateInfluencer",
		condition:   func(s Snapshot) bool { return ViralScore(s) >= viralLegendScore },
	},
}

// Lookup finds a catalog entry by id.
func Lookup(id string) (Achievement, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Evaluate returns, in declaration order, the achievements whose predicate
// holds for s and whose id is not yet in s.Unlocked. It does not record
// anything; callers append the returned ids themselves.
func Evaluate(s Snapshot) []Achievement {
	held := make(map[string]struct{}, len(s.Unlocked))
	for _, id := range s.Unlocked {
		held[id] = struct{}{}
	}
	var out []Achievement
	for _, a := range catalog {
		if _, ok := held[a.ID]; ok {
			continue
		}
		if a.condition(s) {
			out = append(out, a)
		}
	}
	return out
}

// Statuses pairs every catalog entry with whether its id is in unlocked.
func Statuses(unlocked []string) []Status {
	held := make(map[string]struct{}, len(unlocked))
	for _, id := range unlocked {
		held[id] = struct{}{}
	}
	out := make([]Status, 0, len(catalog))
	for _, a := range catalog {
		_, ok := held[a.ID]
		out = append(out, Status{Achievement: a, Unlocked: ok})
	}
	return out
}

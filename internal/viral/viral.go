// Package viral produces the cosmetic social content that accompanies a run:
// mock subreddit posts, shareable blurbs, a simulated leaderboard and weekly
// community challenges. Nothing here affects game state.
package viral

import (
	"fmt"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"noticeperiod/internal/content"
)

var (
	subreddits = []string{"antiwork", "cscareerquestions", "ProgrammerHumor", "jobs", "careerguidance", "WorkReform"}
	hashtags   = []string{"#TheNoticePeriod", "#CorporateLife", "#WorkplaceReality"}
)

type Engagement struct {
	Upvotes  int `json:"upvotes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

type RedditPost struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Subreddit   string     `json:"subreddit"`
	Day         int        `json:"day"`
	StressLevel int        `json:"stressLevel"`
	Hashtags    []string   `json:"hashtags"`
	Engagement  Engagement `json:"engagement"`
}

type Moment struct {
	Step        int    `json:"step"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ShareText   string `json:"shareText"`
	Timestamp   string `json:"timestamp"`
	ViralScore  int    `json:"viralScore"`
}

type LeaderboardData struct {
	TotalPlayers     int      `json:"totalPlayers"`
	EscapedCount     int      `json:"escapedCount"`
	TrappedCount     int      `json:"trappedCount"`
	AverageStress    int      `json:"averageStress"`
	MostCommonEscape string   `json:"mostCommonEscape"`
	MostCommonTrap   string   `json:"mostCommonTrap"`
	TopViralMoments  []Moment `json:"topViralMoments"`
	// Simulated is false when the numbers come from real player records.
	Simulated   bool   `json:"simulated"`
	GeneratedAt string `json:"generatedAt,omitempty"`
}

// Generator is safe for concurrent use.
type Generator struct {
	mu   sync.Mutex
	rand *mathrand.Rand
	now  func() time.Time
}

// NewGenerator seeds from the clock when seed is 0.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rand: mathrand.New(mathrand.NewSource(seed)),
		now:  time.Now,
	}
}

// WithClock replaces the clock used for timestamps and returns g.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// intn returns a uniform int in [min, min+span).
func (g *Generator) intn(min, span int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return min + g.rand.Intn(span)
}

func (g *Generator) timestamp() string {
	return g.now().UTC().Format(time.RFC3339)
}

func (g *Generator) RedditPost(day, stressLevel int, scenario, choice string) RedditPost {
	desc := StressDescription(stressLevel)
	titles := []string{
		fmt.Sprintf("Day %d of Corporate Survival - %s", day, desc),
		fmt.Sprintf("Corporate Life Update Day %d: %s", day, desc),
		fmt.Sprintf("The Notice Period Day %d: %s", day, desc),
		fmt.Sprintf("Workplace Reality Check Day %d: %s", day, desc),
		fmt.Sprintf("Corporate Purgatory Day %d: %s", day, desc),
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", scenario)
	fmt.Fprintf(&b, "My choice: %q\n\n", choice)
	fmt.Fprintf(&b, "Stress Level: %d/100 %s\n\n", stressLevel, StressEmoji(stressLevel))
	b.WriteString("Anyone else living this corporate nightmare? Share your worst workplace moments below.\n\n")
	b.WriteString("What would you have done in this situation?\n\n")
	b.WriteString(strings.Join(hashtags, " "))

	return RedditPost{
		Title:       titles[mod(day, len(titles))],
		Content:     b.String(),
		Subreddit:   subreddits[mod(day, len(subreddits))],
		Day:         day,
		StressLevel: stressLevel,
		Hashtags:    append([]string(nil), hashtags...),
		Engagement: Engagement{
			Upvotes:  g.intn(50, 500),
			Comments: g.intn(10, 100),
			Shares:   g.intn(5, 50),
		},
	}
}

// ShareableAchievement is deterministic: same inputs, same text.
func (g *Generator) ShareableAchievement(day int, choice string, stressLevel int) string {
	phase := content.PhaseOf(day).Label()
	return fmt.Sprintf(`Achievement Unlocked: Survived Day %d of Corporate Purgatory!

Phase: %s %s
Choice: %q
Stress Level: %d/100 %s

How many days can you survive? Play The Notice Period and find out!

#TheNoticePeriod #CorporateLife #WorkplaceGame`,
		day, phase, PhaseEmoji(content.PhaseOf(day)), choice, stressLevel, StressEmoji(stressLevel))
}

func (g *Generator) Moment(step int, title, choice string) Moment {
	return Moment{
		Step:        step,
		Title:       title,
		Description: "Made a crucial choice that resonated with the community",
		ShareText:   fmt.Sprintf("Just had a moment in The Notice Period! %q - this hit too close to home #TheNoticePeriod #CorporateLife", choice),
		Timestamp:   g.timestamp(),
		ViralScore:  g.intn(0, 100) + step*5,
	}
}

// Leaderboard returns simulated community numbers for when no aggregated
// snapshot exists yet.
func (g *Generator) Leaderboard() LeaderboardData {
	ts := g.timestamp()
	return LeaderboardData{
		TotalPlayers:     g.intn(5000, 10000),
		EscapedCount:     g.intn(500, 1000),
		TrappedCount:     g.intn(1000, 2000),
		AverageStress:    g.intn(70, 30),
		MostCommonEscape: DefaultEscape,
		MostCommonTrap:   DefaultTrap,
		TopViralMoments:  FeaturedMoments(ts),
		Simulated:        true,
		GeneratedAt:      ts,
	}
}

const (
	DefaultEscape = "Started own business"
	DefaultTrap   = "Found 'better' corporate job"
)

// FeaturedMoments are the two hand-picked moments shown on every board.
func FeaturedMoments(timestamp string) []Moment {
	return []Moment{
		{
			Step:        30,
			Title:       "The Ultimate Choice",
			Description: "Player chose freedom over security",
			ShareText:   "Just escaped corporate purgatory!",
			Timestamp:   timestamp,
			ViralScore:  950,
		},
		{
			Step:        24,
			Title:       "The Breaking Point Meeting",
			Description: "Pizza party solution to burnout",
			ShareText:   "They offered pizza for our mental health crisis",
			Timestamp:   timestamp,
			ViralScore:  875,
		},
	}
}

func StressDescription(stressLevel int) string {
	switch {
	case stressLevel >= 95:
		return "Soul Completely Crushed"
	case stressLevel >= 85:
		return "Questioning Life Choices"
	case stressLevel >= 75:
		return "Burnout Mode Activated"
	case stressLevel >= 65:
		return "Reality Setting In"
	case stressLevel >= 45:
		return "Optimism Fading"
	case stressLevel >= 25:
		return "Still Hopeful"
	default:
		return "Blissfully Unaware"
	}
}

func StressEmoji(stressLevel int) string {
	switch {
	case stressLevel >= 90:
		return "💀"
	case stressLevel >= 80:
		return "😰"
	case stressLevel >= 70:
		return "😓"
	case stressLevel >= 60:
		return "😅"
	case stressLevel >= 40:
		return "🤔"
	case stressLevel >= 20:
		return "😊"
	default:
		return "😄"
	}
}

func PhaseEmoji(p content.Phase) string {
	switch p {
	case content.PhaseHunt:
		return "🎯"
	case content.PhaseHoneymoon:
		return "🍯"
	case content.PhaseGrind:
		return "⚙️"
	case content.PhaseChoice:
		return "🚪"
	default:
		return "📋"
	}
}

// mod is a non-negative remainder; day can be 0 right after a Repeat.
func mod(n, m int) int {
	r := n % m
	if r < 0 {
		r += m
	}
	return r
}

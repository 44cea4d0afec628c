package viral

import (
	"fmt"
	"strings"
	"time"
)

var weeklyChallenges = []string{
	"Micromanagement Monday: Share your worst micromanager story",
	"Toxic Tuesday: What's the most toxic thing you've heard at work?",
	"Wasteful Wednesday: Biggest waste of time meeting you've attended",
	"Throwback Thursday: Share your most cringe LinkedIn post",
	"Freedom Friday: What would you do if you quit tomorrow?",
	"Survival Saturday: How do you cope with Sunday scaries?",
	"Soul-crushing Sunday: What moment made you question everything?",
}

type Challenge struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Hashtag      string       `json:"hashtag"`
	StartDate    string       `json:"startDate"`
	EndDate      string       `json:"endDate"`
	Participants int          `json:"participants"`
	TopPosts     []RedditPost `json:"topPosts"`
}

// ChallengePrompt returns the raw prompt for a week number.
func ChallengePrompt(week int) string {
	return weeklyChallenges[mod(week, len(weeklyChallenges))]
}

// CommunityChallenge builds the challenge for week, dated to the ISO week
// containing now. The participant count and post engagement are cosmetic.
func (g *Generator) CommunityChallenge(week int) Challenge {
	prompt := ChallengePrompt(week)
	title, desc, ok := strings.Cut(prompt, ":")
	if !ok {
		title, desc = prompt, prompt
	}
	title = strings.TrimSpace(title)
	desc = strings.TrimSpace(desc)

	start := startOfWeek(g.now().UTC())
	end := start.AddDate(0, 0, 7).Add(-time.Second)

	post := g.RedditPost(week, g.intn(40, 60), desc, title)
	return Challenge{
		ID:           fmt.Sprintf("week-%d", week),
		Title:        title,
		Description:  desc,
		Hashtag:      "#" + strings.NewReplacer(" ", "", "-", "").Replace(title),
		StartDate:    start.Format(time.RFC3339),
		EndDate:      end.Format(time.RFC3339),
		Participants: g.intn(100, 4900),
		TopPosts:     []RedditPost{post},
	}
}

// CurrentWeek is the ISO week number of t.
func CurrentWeek(t time.Time) int {
	_, w := t.ISOWeek()
	return w
}

func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

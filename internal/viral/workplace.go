package viral

import "fmt"

var workplaceScenarios = []string{
	"Your boss schedules a 'quick sync' that lasts 2 hours about nothing important",
	"HR announces a new policy that contradicts the policy they announced yesterday",
	"The coffee machine breaks and productivity drops 73%",
	"Someone replies-all to a company-wide email to say 'please remove me from this list'",
	"Your computer crashes and IT says it'll be 'a few days' to fix it",
	"The office temperature is either arctic tundra or surface of the sun",
	"A coworker microwaves fish in the break room during your lunch break",
	"Management announces a 'fun' mandatory team building exercise",
	"The printer jams every time you have an important deadline",
	"Someone steals your lunch from the fridge (again)",
}

var buzzwords = []string{
	"synergistic solutions",
	"paradigm shifts",
	"disruptive innovation",
	"thought leadership",
	"growth hacking",
	"blockchain-enabled",
	"AI-powered optimization",
	"scalable frameworks",
	"agile methodologies",
	"customer-centric approaches",
	"data-driven insights",
	"cross-functional collaboration",
	"strategic initiatives",
	"value propositions",
	"core competencies",
}

var meetingTopics = []string{
	"Syncing on the sync about the previous sync",
	"Aligning our alignment on strategic alignment",
	"Circling back on the circle back action items",
	"Deep diving into shallow end solutions",
	"Touching base about touching base protocols",
	"Leveraging our leverage for maximum leverage",
	"Optimizing our optimization optimization",
	"Streamlining the streamlining process",
	"Ideating on ideation methodologies",
	"Brainstorming about brainstorming best practices",
}

var reviewComments = []string{
	"Needs to be more proactive about things we never mentioned",
	"Should have anticipated problems we didn't tell them about",
	"Lacks initiative in areas outside their job description",
	"Needs to improve communication by reading our minds better",
	"Should be more of a team player while working completely alone",
	"Needs to show more leadership without any authority",
	"Should be more flexible with completely inflexible deadlines",
	"Needs to work smarter, not harder (but also harder)",
	"Should take more ownership of other people's mistakes",
	"Needs to be more innovative within our rigid framework",
}

// WorkplaceScenario picks a canned scenario for step. Prior choices are
// accepted for signature compatibility with generated content but unused.
func WorkplaceScenario(step int, _ []string) string {
	return workplaceScenarios[mod(step, len(workplaceScenarios))]
}

// DiaryPost is the one-line "corporate diary" entry for a day.
func DiaryPost(step, stressLevel int, text string) string {
	var emojis string
	switch {
	case stressLevel > 80:
		emojis = "😵💀🔥"
	case stressLevel > 60:
		emojis = "😰😤😮‍💨"
	case stressLevel > 40:
		emojis = "😅😬🙃"
	default:
		emojis = "😊🤔😐"
	}
	posts := []string{
		fmt.Sprintf("Day %d: %s %s", step, text, emojis),
		fmt.Sprintf("Update Day %d: Corporate life is... something. %s %s", step, text, emojis),
		fmt.Sprintf("Day %d of my corporate journey: %s Anyone else? %s", step, text, emojis),
		fmt.Sprintf("Corporate Diary Day %d: %s Send help %s", step, text, emojis),
		fmt.Sprintf("Day %d: %s Is this normal? %s", step, text, emojis),
	}
	return posts[mod(step, len(posts))]
}

func Buzzwords() []string {
	return append([]string(nil), buzzwords...)
}

func MeetingTopics() []string {
	return append([]string(nil), meetingTopics...)
}

func PerformanceReviewComments() []string {
	return append([]string(nil), reviewComments...)
}

// Generated is the payload of the canned "AI" endpoint.
type Generated struct {
	Scenario   string `json:"scenario"`
	RedditPost string `json:"redditPost"`
	Prompt     string `json:"prompt"`
}

// Generate returns pre-authored content for a prompt. No model is called.
func Generate(prompt string, step int) Generated {
	scenario := WorkplaceScenario(step, nil)
	return Generated{
		Scenario:   scenario,
		RedditPost: DiaryPost(step, 50, scenario),
		Prompt:     "AI Generated: " + prompt,
	}
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mdp/qrterminal/v3"

	"noticeperiod/internal/achievement"
	cl "noticeperiod/internal/cli"
	"noticeperiod/internal/content"
	"noticeperiod/internal/game"
	"noticeperiod/internal/viral"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptOptional(label string) (string, error) {
	fmt.Printf("%s: ", label)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

// promptIndex asks for 1..n and returns the zero-based index.
func promptIndex(label string, n int) (int, error) {
	for {
		text, err := promptOptional(fmt.Sprintf("%s (1-%d)", label, n))
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(text)
		if err != nil || v < 1 || v > n {
			printWarn(fmt.Sprintf("Enter a number from 1 to %d.", n))
			continue
		}
		return v - 1, nil
	}
}

func isAPIError(err error) bool {
	var apiErr *cl.APIError
	return errors.As(err, &apiErr)
}

func renderState(st cl.GameState) {
	p := st.Player
	day := p.CurrentStep
	if day > content.TotalSteps {
		day = content.TotalSteps
	}
	prog := content.PhaseProgress(day)
	accent.Printf("\n== DAY %d/%d · %s %d/%d ==\n", day, content.TotalSteps, strings.ToUpper(prog.Phase.Label()), prog.Progress, prog.Total)
	fmt.Printf("Stress:   %s\n", colorizeStress(p.StressLevel))
	fmt.Printf("Bank:     $%s\n", formatMoney(p.BankAccount))
	fmt.Printf("Survived: %d days\n", p.DaysSurvived())
	if p.Outcome != game.OutcomePlaying && p.Outcome != "" {
		fmt.Printf("Ending:   %s\n", outcomeLabel(p.Outcome))
	}
	if !p.Outcome.Terminal() {
		renderStep(st.CurrentStep)
	}
	fmt.Println()
}

func renderStep(s content.Step) {
	fmt.Println()
	accent.Println(s.Title)
	fmt.Println(wrap(s.Scenario, 76))
	fmt.Println()
	for i, label := range s.Choices.Labels() {
		fmt.Printf("  %d. %s\n", i+1, label)
	}
}

func renderChoice(r cl.ChoiceResponse) {
	fmt.Println()
	fmt.Printf("Stress %s   Money %s\n", colorizeDelta(float64(r.StressChange), "%+.0f", true), colorizeDelta(r.MoneyChange, "%+.2f", false))
	if r.ViralPost.Title != "" {
		neutral.Printf("r/%s · %s (▲ %d)\n", r.ViralPost.Subreddit, r.ViralPost.Title, r.ViralPost.Engagement.Upvotes)
	}
	for _, a := range r.NewAchievements {
		printSuccess(fmt.Sprintf("%s Achievement unlocked: %s", a.Icon, a.Title))
	}
	if r.Player.Outcome.Terminal() {
		accent.Printf("\n%s\n", outcomeLabel(r.Player.Outcome))
		printInfo("`np certificate` for your PDF, `np share` to brag.")
		fmt.Println()
		return
	}
	restarted, next := followUp(r)
	if restarted {
		warn.Println("\nNew company, same cycle. Back to day 1.")
	}
	if next != nil {
		renderStep(*next)
	}
	fmt.Println()
}

// followUp reports whether r is the day-30 answer that sent the player back
// to day 1, and the step to show next. The server only fills NextStep while
// the outcome is playing, so a second run after a repeat looks the step up
// locally.
func followUp(r cl.ChoiceResponse) (restarted bool, next *content.Step) {
	p := r.Player
	if p.Outcome.Terminal() {
		return false, nil
	}
	if r.NextStep != nil {
		return false, r.NextStep
	}
	if p.Outcome != game.OutcomeRepeat {
		return false, nil
	}
	restarted = r.GameComplete && len(p.CompletedSteps) == 0
	if step, ok := content.Lookup(p.CurrentStep); ok {
		next = &step
	}
	return restarted, next
}

func renderAchievements(list []achievement.Status) {
	accent.Println("\n== ACHIEVEMENTS ==")
	held := 0
	for _, a := range list {
		mark := neutral.Sprint("  ")
		if a.Unlocked {
			mark = success.Sprint("✔ ")
			held++
		}
		fmt.Printf("%s%s %-28s %s\n", mark, a.Icon, truncate(a.Title, 28), truncate(a.Description, 48))
	}
	fmt.Printf("\n%d/%d unlocked\n\n", held, len(list))
}

func renderLeaderboard(lb viral.LeaderboardData) {
	title := "COMMUNITY"
	if lb.Simulated {
		title += " (simulated)"
	}
	accent.Printf("\n== %s ==\n", title)
	fmt.Printf("Players:        %s\n", comma(int64(lb.TotalPlayers)))
	fmt.Printf("Escaped:        %s\n", success.Sprint(comma(int64(lb.EscapedCount))))
	fmt.Printf("Trapped:        %s\n", danger.Sprint(comma(int64(lb.TrappedCount))))
	fmt.Printf("Average stress: %s\n", colorizeStress(lb.AverageStress))
	fmt.Printf("Top escape:     %s\n", truncate(lb.MostCommonEscape, 60))
	fmt.Printf("Top trap:       %s\n", truncate(lb.MostCommonTrap, 60))
	if len(lb.TopViralMoments) > 0 {
		fmt.Println()
		accent.Println("Viral moments")
		for _, m := range lb.TopViralMoments {
			fmt.Printf("  %6d  %s\n", m.ViralScore, truncate(m.Title, 60))
		}
	}
	fmt.Println()
}

func renderChallenge(ch viral.Challenge) {
	accent.Printf("\n== %s ==\n", strings.ToUpper(ch.Title))
	fmt.Println(wrap(ch.Description, 76))
	fmt.Printf("\n%s · %s participants · %s to %s\n\n", ch.Hashtag, comma(int64(ch.Participants)), dateOf(ch.StartDate), dateOf(ch.EndDate))
}

func renderShareQR(w io.Writer, url string) {
	fmt.Fprintln(w)
	qrterminal.GenerateHalfBlock(url, qrterminal.L, w)
	fmt.Fprintln(w, url)
}

func outcomeLabel(o game.Outcome) string {
	switch o {
	case game.OutcomeEscaped:
		return "ESCAPED: you broke free of corporate purgatory."
	case game.OutcomeSabbatical:
		return "SABBATICAL: stepping back to figure things out."
	case game.OutcomeRepeat:
		return "REPEAT: the cycle continues."
	default:
		return string(o)
	}
}

func colorizeStress(level int) string {
	text := fmt.Sprintf("%d%%", level)
	switch {
	case level >= 80:
		return danger.Sprint(text)
	case level >= 50:
		return warn.Sprint(text)
	default:
		return success.Sprint(text)
	}
}

func colorizeDelta(v float64, format string, higherIsWorse bool) string {
	text := fmt.Sprintf(format, v)
	switch {
	case v == 0:
		return neutral.Sprint(text)
	case (v > 0) == higherIsWorse:
		return danger.Sprint(text)
	default:
		return success.Sprint(text)
	}
}

func formatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(v*100 + 0.5)
	return fmt.Sprintf("%s%s.%02d", sign, comma(cents/100), cents%100)
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func wrap(s string, width int) string {
	var b strings.Builder
	line := 0
	for i, word := range strings.Fields(s) {
		if i > 0 {
			if line+1+len(word) > width {
				b.WriteByte('\n')
				line = 0
			} else {
				b.WriteByte(' ')
				line++
			}
		}
		b.WriteString(word)
		line += len(word)
	}
	return b.String()
}

func dateOf(rfc3339 string) string {
	if d, _, ok := strings.Cut(rfc3339, "T"); ok {
		return d
	}
	return rfc3339
}

// Package certificate renders a one-page PDF "survival certificate" for a
// player's current run.
package certificate

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"noticeperiod/internal/achievement"
	"noticeperiod/internal/content"
	"noticeperiod/internal/game"

	"github.com/jung-kurt/gofpdf/v2"
)

const (
	pageW     = 842
	pageH     = 595
	margin    = 36
	titleSize = 30
	bodySize  = 13
	smallSize = 9
)

// Generate returns PDF bytes. holder is printed as-is; an empty holder
// falls back to "Anonymous Employee".
func Generate(p game.PlayerProgress, holder string, issued time.Time) ([]byte, error) {
	holder = latin1(strings.TrimSpace(holder))
	if holder == "" {
		holder = "Anonymous Employee"
	}

	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("The Notice Period - Survival Certificate", false)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// paper and double frame
	pdf.SetFillColor(250, 247, 238)
	pdf.Rect(0, 0, pageW, pageH, "F")
	pdf.SetDrawColor(60, 60, 80)
	pdf.SetLineWidth(3)
	pdf.Rect(margin/2, margin/2, pageW-margin, pageH-margin, "D")
	pdf.SetLineWidth(0.8)
	pdf.Rect(margin, margin, pageW-2*margin, pageH-2*margin, "D")

	pdf.SetTextColor(40, 40, 60)
	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(margin, margin+40)
	pdf.CellFormat(pageW-2*margin, 36, "Certificate of Corporate Survival", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "I", bodySize)
	pdf.SetX(margin)
	pdf.CellFormat(pageW-2*margin, 24, "This certifies that", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetX(margin)
	pdf.CellFormat(pageW-2*margin, 32, tr(holder), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", bodySize)
	pdf.SetX(margin)
	pdf.CellFormat(pageW-2*margin, 22, headline(p), "", 1, "C", false, 0, "")

	pdf.Ln(12)
	stats := []string{
		fmt.Sprintf("Days survived: %d", p.DaysSurvived()),
		fmt.Sprintf("Phase reached: %s", p.Phase.Label()),
		fmt.Sprintf("Final stress: %d/100", p.StressLevel),
		fmt.Sprintf("Bank account: $%.2f", p.BankAccount),
	}
	pdf.SetFont("Helvetica", "", bodySize)
	for _, line := range stats {
		pdf.SetX(margin)
		pdf.CellFormat(pageW-2*margin, 18, line, "", 1, "C", false, 0, "")
	}

	if titles := achievementTitles(p.Achievements); len(titles) > 0 {
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "B", bodySize)
		pdf.SetX(margin)
		pdf.CellFormat(pageW-2*margin, 18, "Achievements", "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", smallSize+1)
		pdf.SetX(margin * 3)
		pdf.MultiCell(pageW-6*margin, 14, strings.Join(titles, "  |  "), "", "C", false)
	}

	pdf.SetFont("Helvetica", "", smallSize)
	pdf.SetTextColor(110, 110, 120)
	pdf.SetXY(margin, pageH-margin-28)
	footer := fmt.Sprintf("Started %s  -  Issued %s", dateOnly(p.StartDate), issued.UTC().Format("2006-01-02"))
	pdf.CellFormat(pageW-2*margin, 12, footer, "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func headline(p game.PlayerProgress) string {
	switch p.Outcome {
	case game.OutcomeEscaped:
		return "escaped corporate purgatory and started their own path."
	case game.OutcomeSabbatical:
		return "walked away on a well-earned sabbatical."
	case game.OutcomeRepeat:
		return "found a 'better' corporate job and started the cycle again."
	}
	if p.CurrentStep >= content.FinalStep {
		return "reached the final choice of their notice period."
	}
	return fmt.Sprintf("is still surviving, on day %d of %d.", p.CurrentStep, content.TotalSteps)
}

func achievementTitles(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if a, ok := achievement.Lookup(id); ok {
			out = append(out, latin1(a.Title))
		}
	}
	return out
}

func dateOnly(rfc3339 string) string {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return "unknown"
	}
	return t.UTC().Format("2006-01-02")
}

// latin1 drops runes the core PDF fonts cannot encode.
func latin1(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xff {
			return -1
		}
		return r
	}, s)
}

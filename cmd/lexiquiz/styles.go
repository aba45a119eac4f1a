package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/japaniel/lexiquiz/pkg/progress"
	"github.com/japaniel/lexiquiz/pkg/quiz"
	"github.com/japaniel/lexiquiz/pkg/words"
)

var (
	styleCorrect   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true) // Green
	styleIncorrect = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)  // Red
	styleWarn      = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true) // Yellow
	styleTerm      = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	styleSubtle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleHeader    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleError     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(1)
	styleBox       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	styleBarGreen  = lipgloss.NewStyle().Background(lipgloss.Color("10")).SetString(" ")
	styleBarRed    = lipgloss.NewStyle().Background(lipgloss.Color("9")).SetString(" ")
)

// renderBar draws a percentage (0-100) as a bar of width cells.
func renderBar(percentage, width int) string {
	green := min(max(percentage*width/100, 0), width)
	return strings.Repeat(styleBarGreen.String(), green) +
		strings.Repeat(styleBarRed.String(), width-green)
}

func renderStats(s quiz.Stats) string {
	var b strings.Builder
	b.WriteString(styleHeader.Render("lexiquiz statistics"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Score:     %d (level %d)\n", s.TotalScore, s.Level)
	fmt.Fprintf(&b, "Streak:    %d (best %d)\n", s.CurrentStreak, s.BestStreak)
	fmt.Fprintf(&b, "Answered:  %d, %d correct\n", s.TotalWordsAttempted, s.CorrectAnswers)
	fmt.Fprintf(&b, "Accuracy:  %s %d%%\n", renderBar(s.AverageAccuracy, 20), s.AverageAccuracy)
	fmt.Fprintf(&b, "Words:     %d seen, %d to review\n", len(s.CompletedWords), len(s.MissedWords))

	b.WriteString("\nBy difficulty\n")
	for _, d := range words.Difficulties {
		t := s.DifficultyStats[d]
		fmt.Fprintf(&b, "  %-7s %s %3d%%  (%d/%d)\n", d, renderBar(t.Accuracy, 20), t.Accuracy, t.Correct, t.Total)
	}

	b.WriteString("\nCompleted categories\n")
	b.WriteString(renderCompletion(s.Completion))

	if s.StoreAvailable {
		b.WriteString(styleSubtle.Render(fmt.Sprintf("\nStorage: %d items, %d bytes", s.Storage.ItemCount, s.Storage.TotalBytes)))
	} else {
		b.WriteString(styleWarn.Render("\nStorage unavailable: progress is not being saved"))
	}
	b.WriteString("\n")
	return b.String()
}

func renderCompletion(c progress.CompletionStats) string {
	var b strings.Builder
	for _, d := range words.Difficulties {
		t := c.ByDifficulty[d]
		fmt.Fprintf(&b, "  %-7s %d/%d %s\n", d, t.Completed, t.Total, renderBar(t.Percentage, 9))
	}
	fmt.Fprintf(&b, "  overall %d/%d (%d%%)\n", c.Completed, c.Total, c.Percentage)
	return b.String()
}

func renderPreload(r words.PreloadReport) string {
	var b strings.Builder
	for _, d := range r.Details {
		status := styleCorrect.Render("ok")
		if !d.Success {
			status = styleWarn.Render("fallback")
		}
		fmt.Fprintf(&b, "  %-7s %-9s %-8s %3d words", d.Difficulty, d.Category, status, d.WordCount)
		if d.Err != nil {
			b.WriteString(styleSubtle.Render("  " + d.Err.Error()))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Loaded %d/%d word banks from source (%d failed).\n", r.SuccessCount, len(r.Details), r.FailedCount)
	return b.String()
}

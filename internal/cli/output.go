package cli

import (
	"complykit/internal/model"
	"complykit/internal/risk"
	"fmt"
	"io"

	"github.com/fatih/color"
)

func levelColor(level model.RiskLevel) *color.Color {
	switch level {
	case model.RiskUnacceptable:
		return color.New(color.FgRed, color.Bold)
	case model.RiskHigh:
		return color.New(color.FgRed)
	case model.RiskLimited:
		return color.New(color.FgYellow)
	case model.RiskMinimal:
		return color.New(color.FgGreen)
	}
	return color.New(color.FgCyan)
}

// printOutcome writes the risk level and its static copy
func printOutcome(w io.Writer, level model.RiskLevel, rule string, score int) {
	c := risk.CopyFor(level)
	bold := color.New(color.Bold)

	fmt.Fprintln(w)
	levelColor(level).Fprintf(w, "%s %s (%s)\n", c.Emoji, c.Title, level)
	fmt.Fprintf(w, "%s\n", c.Description)
	fmt.Fprintf(w, "Matched rule: %s, score: %d\n\n", rule, score)

	if c.MainMessage != "" {
		bold.Fprintln(w, c.MainMessage)
	}
	if len(c.Reasons) > 0 {
		fmt.Fprintln(w, "Why this classification:")
		for _, r := range c.Reasons {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
	if c.Impact != "" {
		fmt.Fprintf(w, "\n%s\n", c.Impact)
	}
}

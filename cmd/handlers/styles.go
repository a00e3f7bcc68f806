package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/validation"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ruleWidth   = 72
	heavyRule   = strings.Repeat("═", ruleWidth)
	lightRule   = strings.Repeat("─", ruleWidth)
)

func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(title))
	fmt.Fprintln(w, heavyRule)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func statusLabel(valid bool) string {
	if valid {
		return okStyle.Render("valid")
	}
	return errorStyle.Render("invalid")
}

func printValidation(w io.Writer, name string, r validation.Result) {
	fmt.Fprintf(w, "%s  %s  score %.0f\n", name, statusLabel(r.Valid), r.Score)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s %s [%s] %s\n", errorStyle.Render("✗"), e.Code, e.Severity, e.Message)
	}
	for _, wn := range r.Warnings {
		fmt.Fprintf(w, "  %s %s %s\n", warnStyle.Render("!"), wn.Code, wn.Message)
	}
}

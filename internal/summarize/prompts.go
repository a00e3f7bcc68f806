package summarize

import (
	"fmt"
	"strings"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
)

// BuildArticlePrompt creates the prompt for one article's digest entry
func BuildArticlePrompt(article core.Article, opts Options) string {
	var prompt strings.Builder

	prompt.WriteString("Summarize this research article for a weekly academic digest.\n\n")

	prompt.WriteString(fmt.Sprintf("**Title:** %s\n", article.Title))
	if len(article.Authors) > 0 {
		prompt.WriteString(fmt.Sprintf("**Authors:** %s\n", strings.Join(article.Authors, ", ")))
	}
	if article.Venue != "" {
		prompt.WriteString(fmt.Sprintf("**Venue:** %s (%s)\n", article.Venue, article.VenueType))
	}
	if article.Subfield != "" {
		prompt.WriteString(fmt.Sprintf("**Subfield:** %s\n", article.Subfield))
	}
	prompt.WriteString(fmt.Sprintf("\n**Abstract:**\n%s\n\n", truncateContent(article.Abstract, 4000)))

	prompt.WriteString("**Instructions:**\n")
	switch opts.AudienceLevel {
	case core.AudienceBeginner:
		prompt.WriteString("- Write for curious non-specialists. Define any technical term you use.\n")
	case core.AudienceAdvanced:
		prompt.WriteString("- Write for researchers in the field. Assume familiarity with standard methods.\n")
	default:
		prompt.WriteString("- Write for readers with a general science background.\n")
	}
	if opts.IncludeTechnicalDetails {
		prompt.WriteString("- Mention the study design or method in one sentence.\n")
	} else {
		prompt.WriteString("- Leave out methodological detail.\n")
	}
	if opts.EmphasizeApplications {
		prompt.WriteString("- In WHY IT MATTERS, focus on practical applications.\n")
	} else {
		prompt.WriteString("- In WHY IT MATTERS, focus on what it means for the research field.\n")
	}
	prompt.WriteString("- Use only facts stated in the abstract. Keep the summary between 60 and 120 words.\n\n")

	prompt.WriteString("**OUTPUT FORMAT:**\n")
	prompt.WriteString("SUMMARY:\n[summary]\n\n")
	prompt.WriteString("WHY IT MATTERS:\n[one or two sentences]\n\n")
	prompt.WriteString("KEY FINDINGS:\n- [finding 1]\n- [finding 2]\n- [finding 3]\n")

	return prompt.String()
}

// ParseArticleResponse extracts the SUMMARY, WHY IT MATTERS and KEY FINDINGS
// sections of a model response.
func ParseArticleResponse(response string) (summary, why string, findings []string) {
	const (
		none = iota
		inSummary
		inWhy
		inFindings
	)

	var summaryLines, whyLines []string
	section := none

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(strings.Trim(line, "*# "))

		switch {
		case strings.HasPrefix(upper, "SUMMARY:"):
			section = inSummary
			if rest := afterColon(line); rest != "" {
				summaryLines = append(summaryLines, rest)
			}
			continue
		case strings.HasPrefix(upper, "WHY IT MATTERS:"), strings.HasPrefix(upper, "WHY THIS MATTERS:"):
			section = inWhy
			if rest := afterColon(line); rest != "" {
				whyLines = append(whyLines, rest)
			}
			continue
		case strings.HasPrefix(upper, "KEY FINDINGS:"), strings.HasPrefix(upper, "KEY POINTS:"):
			section = inFindings
			continue
		}

		if line == "" {
			continue
		}

		switch section {
		case inSummary:
			summaryLines = append(summaryLines, line)
		case inWhy:
			whyLines = append(whyLines, line)
		case inFindings:
			if point := listItem(line); point != "" {
				findings = append(findings, point)
			}
		}
	}

	return strings.Join(summaryLines, " "), strings.Join(whyLines, " "), findings
}

func afterColon(line string) string {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(strings.Trim(line[idx+1:], "*"))
}

// listItem strips a bullet or number prefix. Lines that are not list items are returned as-is.
func listItem(line string) string {
	for _, bullet := range []string{"-", "•", "*"} {
		if strings.HasPrefix(line, bullet) {
			return strings.TrimSpace(strings.TrimPrefix(line, bullet))
		}
	}
	if len(line) > 2 && line[0] >= '1' && line[0] <= '9' && (line[1] == '.' || line[1] == ')') {
		return strings.TrimSpace(line[2:])
	}
	return line
}

// truncateContent truncates content to a maximum character count
func truncateContent(content string, maxChars int) string {
	if len(content) <= maxChars {
		return content
	}

	truncated := content[:maxChars]

	// Try to break at sentence boundary
	lastPeriod := strings.LastIndex(truncated, ". ")
	if lastPeriod > maxChars/2 {
		truncated = truncated[:lastPeriod+1]
	} else {
		lastSpace := strings.LastIndex(truncated, " ")
		if lastSpace > 0 {
			truncated = truncated[:lastSpace]
		}
	}

	return truncated + "..."
}

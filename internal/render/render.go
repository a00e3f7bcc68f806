package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
)

// Markdown renders a composed digest as a markdown document. fieldName is the
// display name of the digest's field.
func Markdown(d *core.ComposedDigest, fieldName string) string {
	if fieldName == "" {
		fieldName = string(d.Field)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# %s Weekly Digest: Week %d, %d\n\n", fieldName, d.WeekNumber, d.Year)
	fmt.Fprintf(&b, "*%d articles, about %d minutes of reading*\n\n", len(d.FeaturedArticles), d.TotalReadingTime)

	if strings.TrimSpace(d.Introduction) != "" {
		b.WriteString(d.Introduction + "\n\n")
	}

	if len(d.FeaturedArticles) == 0 {
		b.WriteString("No articles were selected for this digest.\n")
		return b.String()
	}

	for _, ca := range d.FeaturedArticles {
		a := ca.Article
		fmt.Fprintf(&b, "## %d. %s\n\n", ca.Position, a.Title)

		var meta []string
		if len(a.Authors) > 0 {
			meta = append(meta, authorList(a.Authors))
		}
		if a.Venue != "" {
			meta = append(meta, "*"+a.Venue+"*")
		}
		if !a.PublishedAt.IsZero() {
			meta = append(meta, a.PublishedAt.Format("2 Jan 2006"))
		}
		meta = append(meta, fmt.Sprintf("%d min read", ca.ReadingTime))
		b.WriteString(strings.Join(meta, " · ") + "\n\n")

		b.WriteString(ca.Summary + "\n\n")
		if ca.WhyThisMatters != "" {
			fmt.Fprintf(&b, "**Why this matters:** %s\n\n", ca.WhyThisMatters)
		}
		if len(ca.KeyFindings) > 0 {
			b.WriteString("**Key findings:**\n\n")
			for _, f := range ca.KeyFindings {
				fmt.Fprintf(&b, "- %s\n", f)
			}
			b.WriteString("\n")
		}
		if link := articleLink(a); link != "" {
			fmt.Fprintf(&b, "[Read the paper](%s)\n\n", link)
		}
		if ca.Transition != "" {
			fmt.Fprintf(&b, "> %s\n\n", ca.Transition)
		}
		b.WriteString("---\n\n")
	}

	if d.Methodology != "" {
		b.WriteString("## How we chose these articles\n\n")
		b.WriteString(d.Methodology + "\n\n")
	}
	if d.Conclusion != "" {
		b.WriteString(d.Conclusion + "\n")
	}
	return b.String()
}

// WriteDigest renders d and writes it to <outputDir>/<digest id>.md.
func WriteDigest(d *core.ComposedDigest, fieldName, outputDir string) (string, error) {
	return WriteDigestToFile(Markdown(d, fieldName), outputDir, d.ID+".md")
}

// WriteDigestToFile writes the provided content to a file in the specified directory
func WriteDigestToFile(content, outputDir, filename string) (string, error) {
	if outputDir == "" {
		outputDir = "digests" // Default output directory
	}

	err := os.MkdirAll(outputDir, 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	filePath := filepath.Join(outputDir, filename)

	err = os.WriteFile(filePath, []byte(content), 0644)
	if err != nil {
		return "", fmt.Errorf("failed to write digest file %s: %w", filePath, err)
	}

	return filePath, nil
}

func authorList(authors []string) string {
	switch len(authors) {
	case 1:
		return authors[0]
	case 2:
		return authors[0] + " and " + authors[1]
	default:
		return authors[0] + " et al."
	}
}

func articleLink(a core.Article) string {
	if a.URL != "" {
		return a.URL
	}
	if a.DOI != "" {
		return "https://doi.org/" + a.DOI
	}
	return ""
}

// Package tui is a terminal browser for a composed digest.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
)

const defaultWidth = 100

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headingStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).Padding(0, 1)
)

// Model holds the browser state. The zero cursor points at the first
// featured article.
type Model struct {
	digest    *core.ComposedDigest
	fieldName string
	cursor    int
	width     int
	height    int
	quitting  bool
}

// New returns a browser over d.
func New(d *core.ComposedDigest, fieldName string) Model {
	if fieldName == "" {
		fieldName = string(d.Field)
	}
	return Model{digest: d, fieldName: fieldName, width: defaultWidth}
}

// Selected returns the highlighted article, if any.
func (m Model) Selected() (core.ComposedArticle, bool) {
	if m.digest == nil || len(m.digest.FeaturedArticles) == 0 {
		return core.ComposedArticle{}, false
	}
	return m.digest.FeaturedArticles[m.cursor], true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		n := 0
		if m.digest != nil {
			n = len(m.digest.FeaturedArticles)
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < n-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = max(0, n-1)
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.digest == nil {
		return "No digest loaded.\n"
	}

	d := m.digest
	header := titleStyle.Render(fmt.Sprintf("%s Weekly Digest: Week %d, %d", m.fieldName, d.WeekNumber, d.Year)) + "\n" +
		mutedStyle.Render(fmt.Sprintf("%d articles, about %d minutes of reading", len(d.FeaturedArticles), d.TotalReadingTime))

	if len(d.FeaturedArticles) == 0 {
		return header + "\n\nNo articles were selected for this digest.\n"
	}

	paneWidth := max(30, m.width/2-4)
	left := paneStyle.Width(paneWidth).Render(m.listView())
	right := paneStyle.Width(paneWidth).Render(m.detailView())

	help := mutedStyle.Render("[↑/k] up  [↓/j] down  [g/G] first/last  [q] quit")
	return header + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n" + help + "\n"
}

func (m Model) listView() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Featured"))
	b.WriteString("\n\n")
	for i, ca := range m.digest.FeaturedArticles {
		line := fmt.Sprintf("%d. %s (%d min)", ca.Position, ca.Article.Title, ca.ReadingTime)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) detailView() string {
	ca, ok := m.Selected()
	if !ok {
		return ""
	}
	a := ca.Article

	var b strings.Builder
	b.WriteString(headingStyle.Render(a.Title))
	b.WriteString("\n")

	var meta []string
	if len(a.Authors) > 0 {
		meta = append(meta, strings.Join(a.Authors, ", "))
	}
	if a.Venue != "" {
		meta = append(meta, a.Venue)
	}
	if !a.PublishedAt.IsZero() {
		meta = append(meta, a.PublishedAt.Format("2 Jan 2006"))
	}
	if len(meta) > 0 {
		b.WriteString(mutedStyle.Render(strings.Join(meta, " · ")))
		b.WriteString("\n")
	}

	if a.Summary != "" {
		b.WriteString("\n" + a.Summary + "\n")
	}
	if a.WhyThisMatters != "" {
		b.WriteString("\nWhy this matters: " + a.WhyThisMatters + "\n")
	}
	if len(a.KeyFindings) > 0 {
		b.WriteString("\nKey findings:\n")
		for _, f := range a.KeyFindings {
			b.WriteString("  • " + f + "\n")
		}
	}
	if ca.Transition != "" {
		b.WriteString("\n" + mutedStyle.Render(ca.Transition) + "\n")
	}
	return b.String()
}

// Run starts the browser in the alternate screen and blocks until it quits.
func Run(d *core.ComposedDigest, fieldName string) error {
	p := tea.NewProgram(New(d, fieldName), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

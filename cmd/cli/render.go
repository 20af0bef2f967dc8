package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pep299/news-summarizer/internal/model"
	"github.com/pep299/news-summarizer/internal/report"
)

// Color palette
const (
	colorPrimary  = "#2C3E50"
	colorPositive = "#2E7D32"
	colorNeutral  = "#757575"
	colorNegative = "#C62828"
	colorInfo     = "#626262"
	colorError    = "#FF0000"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary)).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError))

	headlineStyle = lipgloss.NewStyle().Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorPrimary)).
			Padding(0, 1).
			Width(80)
)

func badgeStyle(s model.Sentiment) lipgloss.Style {
	color := colorNeutral
	switch s {
	case model.SentimentPositive:
		color = colorPositive
	case model.SentimentNegative:
		color = colorNegative
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// renderReport lays out a report for the terminal, one box per entry.
func renderReport(rep *report.Report) string {
	doc := report.NewDocument(rep)

	var b strings.Builder
	b.WriteString(titleStyle.Render(doc.Title) + "\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Topic: %s | Generated on: %s | Articles: %d | Skipped: %d",
		doc.Topic, doc.GeneratedAt, doc.Total, doc.Skipped)) + "\n\n")

	if len(doc.Sections) == 0 {
		b.WriteString("No relevant articles were found for this topic.\n")
		return b.String()
	}

	for _, s := range doc.Sections {
		var body strings.Builder
		fmt.Fprintf(&body, "%s\n", headlineStyle.Render(fmt.Sprintf("%d. %s", s.Index, s.Headline)))
		fmt.Fprintf(&body, "%s\n", infoStyle.Render(fmt.Sprintf("%s | %s | relevance %.2f", s.Source, s.Published, s.Score)))
		fmt.Fprintf(&body, "%s\n\n", s.Title)
		fmt.Fprintf(&body, "%s\n\n", s.Summary)
		fmt.Fprintf(&body, "%s  %s\n", badgeStyle(s.Sentiment).Render(s.Badge()), formatTags(s.Tags))
		body.WriteString(infoStyle.Render(s.URL))
		b.WriteString(boxStyle.Render(body.String()) + "\n")
	}
	return b.String()
}

func formatTags(tags []string) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = "#" + t
	}
	return strings.Join(out, " ")
}

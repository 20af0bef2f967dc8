package summarizer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pep299/news-summarizer/internal/model"
)

const maxArticleChars = 1500

const systemPrompt = "You are a news analyst. You read one news article and answer with a single JSON object only, no prose and no code fences."

var (
	unwantedChars = regexp.MustCompile(`[^\p{L}\p{N}\s.,!?'_-]`)
	spaces        = regexp.MustCompile(`\s+`)
)

// articleText joins the article fields, removes symbols the model does not
// need and caps the length.
func articleText(a model.RawArticle) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Title, a.Description, stripTruncationMarker(a.Content)} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	text := strings.Join(parts, ". ")
	text = unwantedChars.ReplaceAllString(text, " ")
	text = strings.TrimSpace(spaces.ReplaceAllString(text, " "))

	if runes := []rune(text); len(runes) > maxArticleChars {
		text = string(runes[:maxArticleChars])
	}
	return text
}

var truncationMarker = regexp.MustCompile(`\s*\[\+\d+ chars\]\s*$`)

func stripTruncationMarker(s string) string {
	return truncationMarker.ReplaceAllString(s, "")
}

func buildPrompt(a model.RawArticle) string {
	var content strings.Builder

	content.WriteString("Summarize the news article below. Respond with a JSON object with exactly these fields:\n\n")
	content.WriteString("{\n")
	content.WriteString("  \"headline\": \"a catchy 4-8 word headline\",\n")
	content.WriteString("  \"summary\": \"2-4 sentences covering the key facts\",\n")
	content.WriteString("  \"sentiment\": \"positive | neutral | negative\",\n")
	content.WriteString("  \"confidence\": 0.0-1.0,\n")
	content.WriteString("  \"tags\": [\"1 to 5 short tags\"]\n")
	content.WriteString("}\n\n")

	content.WriteString("Article:\n")
	if a.Source != "" {
		content.WriteString(fmt.Sprintf("Source: %s\n", a.Source))
	}
	content.WriteString(articleText(a))
	content.WriteString("\n")

	return content.String()
}

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pep299/news-summarizer/internal/model"
)

func outcome(url string, score float64, position int, err error) Outcome {
	return Outcome{
		Article: model.ScoredArticle{
			RawArticle: model.RawArticle{
				Title:       "Story " + url,
				Description: "Description for " + url,
				URL:         url,
				Source:      "Reuters",
				PublishedAt: "2024-01-25T21:30:00Z",
			},
			Score:    score,
			Keep:     true,
			Position: position,
		},
		Summary: model.SummaryResult{
			Headline:   "Headline " + url,
			Summary:    "Summary one. Summary two.",
			Sentiment:  model.SentimentNeutral,
			Confidence: 0.75,
			Tags:       []string{"tag"},
		},
		Err: err,
	}
}

func fixedAssembler() *Assembler {
	a := NewAssembler()
	a.now = func() time.Time { return time.Date(2024, 1, 26, 8, 30, 0, 0, time.UTC) }
	return a
}

func TestAssembleOrdersDropsFailuresAndDeduplicates(t *testing.T) {
	outcomes := []Outcome{
		outcome("https://example.com/c", 0.5, 4, nil),
		outcome("https://example.com/a", 1.0, 0, nil),
		outcome("https://example.com/fail", 0.9, 2, errors.New("missing sentiment")),
		outcome("https://example.com/b", 1.0, 1, nil),
		outcome("https://example.com/a", 0.5, 5, nil),
	}
	notKept := outcome("https://example.com/low", 0.1, 6, nil)
	notKept.Article.Keep = false
	outcomes = append(outcomes, notKept)

	r := fixedAssembler().Assemble(Meta{ID: "run-1", Topic: "tesla", Fetched: 10, Kept: 6}, outcomes)

	entries := r.Entries()
	urls := make([]string, len(entries))
	for i, e := range entries {
		urls[i] = e.Article.URL
	}
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}, urls)
	assert.Equal(t, 1, r.Skipped())
	assert.Equal(t, 1, r.Stats().Duplicates)
	assert.Equal(t, 4, r.Stats().Summarized)
	assert.Equal(t, "run-1", r.ID())
	assert.Equal(t, 10, r.Stats().Fetched)
}

func TestAssembleEmpty(t *testing.T) {
	r := fixedAssembler().Assemble(Meta{Topic: "tesla"}, nil)
	assert.Equal(t, 0, r.Len())
	assert.NotNil(t, r.Entries())

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"entries":[]`)
}

func TestReportIsImmutable(t *testing.T) {
	o := outcome("https://example.com/a", 1, 0, nil)
	r := fixedAssembler().Assemble(Meta{Topic: "tesla"}, []Outcome{o})

	o.Summary.Tags[0] = "changed by caller"
	entries := r.Entries()
	entries[0].Article.Title = "mutated"
	entries[0].Summary.Tags[0] = "mutated"

	again := r.Entries()
	assert.Equal(t, "Story https://example.com/a", again[0].Article.Title)
	assert.Equal(t, []string{"tag"}, again[0].Summary.Tags)
}

func TestReportJSONRoundTrip(t *testing.T) {
	r := fixedAssembler().Assemble(Meta{ID: "run-9", Topic: "tesla earnings", Fetched: 3}, []Outcome{
		outcome("https://example.com/a", 1, 0, nil),
		outcome("https://example.com/b", 0.5, 1, nil),
	})

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var restored Report
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, r.ID(), restored.ID())
	assert.Equal(t, r.Topic(), restored.Topic())
	assert.True(t, r.GeneratedAt().Equal(restored.GeneratedAt()))
	assert.Equal(t, r.Entries(), restored.Entries())
	assert.Equal(t, r.Stats(), restored.Stats())
}

func TestUnmarshalRejectsBrokenOrdering(t *testing.T) {
	data := []byte(`{"id":"x","topic":"t","entries":[
		{"article":{"url":"https://a","score":0.2},"summary":{}},
		{"article":{"url":"https://b","score":0.9},"summary":{}}]}`)

	var r Report
	assert.Error(t, json.Unmarshal(data, &r))
}

func TestDocumentHasOneSectionPerEntry(t *testing.T) {
	outcomes := []Outcome{
		outcome("https://example.com/a?id=1&x=(2)", 1, 0, nil),
		outcome("https://example.com/b", 0.8, 1, nil),
		outcome("https://example.com/c", 0.6, 2, nil),
	}
	outcomes[0].Article.Title = "Tesla’s “record” quarter — analysts react"
	r := fixedAssembler().Assemble(Meta{Topic: "tesla"}, outcomes)

	doc := NewDocument(r)
	require.Len(t, doc.Sections, r.Len())
	for i, e := range r.Entries() {
		assert.Equal(t, i+1, doc.Sections[i].Index)
		assert.Equal(t, e.Article.Title, doc.Sections[i].Title)
		assert.Equal(t, e.Article.URL, doc.Sections[i].URL)
	}
	assert.Equal(t, "January 25, 2024 at 09:30 PM", doc.Sections[1].Published)
	assert.Equal(t, "NEUTRAL (75% confidence)", doc.Sections[0].Badge())
	assert.Equal(t, DocumentTitle, doc.Title)
}

// pdfString is s as it appears in an uncompressed content stream written
// with a Unicode font: UTF-16BE with PDF string escapes.
func pdfString(s string) string {
	var b strings.Builder
	for _, u := range utf16.Encode([]rune(s)) {
		b.WriteByte(byte(u >> 8))
		b.WriteByte(byte(u))
	}
	escaped := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`, "\r", `\r`).Replace(b.String())
	return "(" + escaped + ")"
}

func TestRenderPDF(t *testing.T) {
	r := fixedAssembler().Assemble(Meta{Topic: "Tesla earnings"}, []Outcome{
		outcome("https://example.com/a", 1, 0, nil),
		outcome("https://example.com/b", 0.8, 1, nil),
	})

	var buf bytes.Buffer
	renderer := &PDFRenderer{compress: false}
	require.NoError(t, renderer.Render(&buf, NewDocument(r)))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	assert.Contains(t, out, pdfString("AI Generated Summary 1"))
	assert.Contains(t, out, pdfString("AI Generated Summary 2"))
	assert.Contains(t, out, pdfString("https://example.com/a"))
	assert.Contains(t, out, pdfString("Total Articles Found: 2"))
}

func TestRenderPDFKeepsTitlesAndURLsVerbatim(t *testing.T) {
	titles := []string{
		"Tesla’s “record” quarter — analysts react…",
		"Łódź plant opens (finally) at 50% capacity",
		"Αθήνα: EV sales surge",
		`Back\slash & "quotes" in a title`,
	}
	longURL := "https://www.example.com/business/autos/2024/01/25/tesla-fourth-quarter-earnings-record-deliveries-margins-guidance-analysts-react?utm_source=feed&utm_medium=rss&id=(42)"
	require.Greater(t, len(longURL), 150)

	var outcomes []Outcome
	for i, title := range titles {
		url := fmt.Sprintf("%s&n=%d", longURL, i)
		o := outcome(url, 1-float64(i)/10, i, nil)
		o.Article.Title = title
		outcomes = append(outcomes, o)
	}
	r := fixedAssembler().Assemble(Meta{Topic: "Tesla earnings"}, outcomes)
	require.Equal(t, len(titles), r.Len())

	var buf bytes.Buffer
	require.NoError(t, (&PDFRenderer{compress: false}).Render(&buf, NewDocument(r)))
	out := buf.String()

	for i, e := range r.Entries() {
		assert.Contains(t, out, pdfString(fmt.Sprintf("Article %d", i+1)))
		assert.Contains(t, out, pdfString(e.Article.Title), "title %d", i+1)
		assert.Contains(t, out, pdfString(e.Article.URL), "url %d", i+1)
	}
	assert.NotContains(t, out, pdfString(fmt.Sprintf("Article %d", len(titles)+1)))
}

func TestRenderPDFCompressed(t *testing.T) {
	r := fixedAssembler().Assemble(Meta{Topic: "Émissions à Zürich, Łódź"}, []Outcome{outcome("https://example.com/a", 1, 0, nil)})

	var buf bytes.Buffer
	require.NoError(t, NewPDFRenderer().Render(&buf, NewDocument(r)))
	assert.Greater(t, buf.Len(), 500)
}

func TestTrimDescription(t *testing.T) {
	assert.Equal(t, "Short description.", TrimDescription("Short description.", ""))
	assert.Equal(t, "Lead. Body text", TrimDescription("Lead.", "Body text [+1234 chars]"))

	long := strings.Repeat("Sentence number one is here. ", 40)
	trimmed := TrimDescription(long, "")
	assert.LessOrEqual(t, len([]rune(trimmed)), maxDescriptionChars)
	assert.True(t, strings.HasSuffix(trimmed, "."))

	noPeriod := strings.Repeat("word ", 200)
	assert.True(t, strings.HasSuffix(TrimDescription(noPeriod, ""), "..."))
}

func TestFileNameAndSlug(t *testing.T) {
	at := time.Date(2024, 1, 26, 8, 30, 5, 0, time.UTC)
	assert.Equal(t, "news_summary_Tesla_earnings_20240126_083005.pdf", FileName("Tesla earnings", at))
	assert.Equal(t, "news_summary_AI_chips_20240126_083005.pdf", FileName("AI/chips", at))
	assert.Equal(t, "tesla-earnings-q3", Slug("  Tesla earnings: Q3! "))
}

package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/pep299/news-summarizer/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"lower": strings.ToLower,
}).ParseFS(templateFS, "templates/*.html"))

type indexPage struct {
	Title string
	Topic string
	Error string
}

type reportPage struct {
	report.Document
	Cached  bool
	PDFHref template.URL
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("template failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// indexHandler serves the search form.
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index.html", indexPage{Title: report.DocumentTitle})
}

// reportPageHandler renders the report for ?topic= as HTML. Errors go back
// to the form.
func (s *Server) reportPageHandler(w http.ResponseWriter, r *http.Request) {
	req, err := parseQuery(r)
	if err != nil {
		s.render(w, http.StatusBadRequest, "index.html", indexPage{Title: report.DocumentTitle, Error: err.Error()})
		return
	}

	rep, cached, err := s.service.Report(r.Context(), req)
	if err != nil {
		s.logger.Warn("report failed", "topic", req.Topic, "error", err)
		s.render(w, statusFor(err), "index.html", indexPage{
			Title: report.DocumentTitle,
			Topic: req.Topic,
			Error: err.Error(),
		})
		return
	}

	s.render(w, http.StatusOK, "report.html", reportPage{
		Document: report.NewDocument(rep),
		Cached:   cached,
		PDFHref:  template.URL("/report.pdf?" + r.URL.Query().Encode()),
	})
}

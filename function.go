// Package newssummarizer exposes the news summarizer as a Google Cloud
// Function. The function serves the same router as cmd/server.
package newssummarizer

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/pep299/news-summarizer/internal/app"
	"github.com/pep299/news-summarizer/internal/config"
	"github.com/pep299/news-summarizer/internal/logging"
)

func init() {
	functions.HTTP("SummarizeNews", SummarizeNews)
}

var (
	once    sync.Once
	handler http.Handler
	initErr error
)

// setup builds the application once per instance.
func setup() {
	cfg, err := config.Load()
	if err != nil {
		initErr = fmt.Errorf("loading config: %w", err)
		return
	}
	a, err := app.New(context.Background(), cfg, logging.New(cfg.LogLevel, "json"))
	if err != nil {
		initErr = fmt.Errorf("creating application: %w", err)
		return
	}
	handler = a.Router()
}

// SummarizeNews is the HTTP function entry point.
func SummarizeNews(w http.ResponseWriter, r *http.Request) {
	once.Do(setup)
	if initErr != nil {
		fmt.Fprintf(funcframework.LogWriter(r.Context()), "function not initialised: %v\n", initErr)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	handler.ServeHTTP(w, r)
}

package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pep299/news-summarizer/internal/archive"
	"github.com/pep299/news-summarizer/internal/cache"
	"github.com/pep299/news-summarizer/internal/logging"
	"github.com/pep299/news-summarizer/internal/model"
	"github.com/pep299/news-summarizer/internal/pipeline"
	"github.com/pep299/news-summarizer/internal/report"
)

type stubRunner struct {
	calls atomic.Int32
	err   error
	last  pipeline.Request
}

func (s *stubRunner) Run(ctx context.Context, req pipeline.Request) (*report.Report, error) {
	s.calls.Add(1)
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	outcomes := []report.Outcome{{
		Article: model.ScoredArticle{
			RawArticle: model.RawArticle{Title: "Tesla earnings beat", URL: "https://example.com/a", Source: "Reuters"},
			Score:      1,
			Keep:       true,
		},
		Summary: model.SummaryResult{
			Headline:   "Tesla Beats",
			Summary:    "Record quarter.",
			Sentiment:  model.SentimentPositive,
			Confidence: 0.9,
			Tags:       []string{"tesla"},
		},
	}}
	return report.NewAssembler().Assemble(report.Meta{ID: "run", Topic: req.Topic, Fetched: 1, Kept: 1}, outcomes), nil
}

func newService(t *testing.T, runner Runner, store archive.Store) *Service {
	t.Helper()
	return New(runner, Options{
		Cache:             cache.NewManagerWithCache(cache.NewMemoryCache(8, time.Hour), nil, logging.Discard()),
		Archive:           store,
		ArchivePrefix:     "reports",
		DefaultThreshold:  0.5,
		DefaultMaxResults: 20,
		Logger:            logging.Discard(),
	})
}

func TestReportUsesCache(t *testing.T) {
	runner := &stubRunner{}
	svc := newService(t, runner, nil)
	ctx := context.Background()

	first, cached, err := svc.Report(ctx, Request{Topic: "Tesla earnings"})
	require.NoError(t, err)
	assert.False(t, cached)

	second, cached, err := svc.Report(ctx, Request{Topic: "  tesla EARNINGS "})
	require.NoError(t, err)
	assert.True(t, cached, "normalised topic should hit the cache")
	assert.Equal(t, first.ID(), second.ID())
	assert.EqualValues(t, 1, runner.calls.Load())

	_, cached, err = svc.Report(ctx, Request{Topic: "Tesla earnings", Refresh: true})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.EqualValues(t, 2, runner.calls.Load())
}

func TestReportPassesOverrides(t *testing.T) {
	runner := &stubRunner{}
	svc := newService(t, runner, nil)
	threshold := 0.8

	_, _, err := svc.Report(context.Background(), Request{Topic: "tesla", MaxResults: 7, Threshold: &threshold})
	require.NoError(t, err)
	assert.Equal(t, 7, runner.last.MaxResults)
	require.NotNil(t, runner.last.Threshold)
	assert.InDelta(t, 0.8, *runner.last.Threshold, 1e-9)
}

func TestReportErrorIsNotCached(t *testing.T) {
	runner := &stubRunner{err: errors.New("boom")}
	svc := newService(t, runner, nil)

	_, _, err := svc.Report(context.Background(), Request{Topic: "tesla"})
	require.Error(t, err)

	runner.err = nil
	_, cached, err := svc.Report(context.Background(), Request{Topic: "tesla"})
	require.NoError(t, err)
	assert.False(t, cached)
}

func TestPDF(t *testing.T) {
	svc := newService(t, &stubRunner{}, nil)
	rep, _, err := svc.Report(context.Background(), Request{Topic: "Tesla earnings"})
	require.NoError(t, err)

	data, name, err := svc.PDF(rep)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.True(t, strings.HasPrefix(name, "news_summary_Tesla_earnings_"))
	assert.True(t, strings.HasSuffix(name, ".pdf"))
}

func TestArchive(t *testing.T) {
	store := archive.NewMemoryStore()
	svc := newService(t, &stubRunner{}, store)
	rep, _, err := svc.Report(context.Background(), Request{Topic: "Tesla earnings"})
	require.NoError(t, err)

	require.True(t, svc.ArchiveEnabled())
	location, err := svc.Archive(context.Background(), rep)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(location, "mem://reports/tesla-earnings/"))
	assert.Len(t, store.Keys(), 1)
}

func TestArchiveDisabled(t *testing.T) {
	svc := newService(t, &stubRunner{}, nil)
	rep, _, _ := svc.Report(context.Background(), Request{Topic: "tesla"})

	assert.False(t, svc.ArchiveEnabled())
	_, err := svc.Archive(context.Background(), rep)
	assert.Error(t, err)
}

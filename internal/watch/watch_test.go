package watch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pep299/news-summarizer/internal/logging"
	"github.com/pep299/news-summarizer/internal/report"
	"github.com/pep299/news-summarizer/internal/service"
)

type fakeReporter struct {
	mu       sync.Mutex
	requests []service.Request
	archived []string
	failOn   string
	archive  bool
}

func (f *fakeReporter) Report(ctx context.Context, req service.Request) (*report.Report, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if req.Topic == f.failOn {
		return nil, false, errors.New("upstream down")
	}
	return report.NewAssembler().Assemble(report.Meta{ID: "r-" + req.Topic, Topic: req.Topic}, nil), false, nil
}

func (f *fakeReporter) ArchiveEnabled() bool { return f.archive }

func (f *fakeReporter) Archive(ctx context.Context, rep *report.Report) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archived = append(f.archived, rep.Topic())
	return "mem://" + rep.Topic(), nil
}

type fakeNotifier struct {
	topics []string
	err    error
}

func (f *fakeNotifier) SendDigest(ctx context.Context, rep *report.Report) error {
	f.topics = append(f.topics, rep.Topic())
	return f.err
}

func TestNewRejectsBadSchedule(t *testing.T) {
	_, err := New("every tuesday", []string{"tesla"}, &fakeReporter{}, Options{Logger: logging.Discard()})
	assert.Error(t, err)
}

func TestRefreshAll(t *testing.T) {
	reporter := &fakeReporter{archive: true, failOn: "rivian"}
	notifier := &fakeNotifier{}
	w, err := New("0 */2 * * *", []string{"tesla", "rivian", "lucid"}, reporter, Options{
		Notifier: notifier,
		Logger:   logging.Discard(),
	})
	require.NoError(t, err)

	err = w.RefreshAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `topic "rivian"`)

	require.Len(t, reporter.requests, 3)
	for _, req := range reporter.requests {
		assert.True(t, req.Refresh, "watch refresh must bypass the cache")
	}
	assert.Equal(t, []string{"tesla", "lucid"}, reporter.archived)
	assert.Equal(t, []string{"tesla", "lucid"}, notifier.topics)
}

func TestRefreshToleratesNotifierFailure(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("slack down")}
	w, err := New("@hourly", []string{"tesla"}, &fakeReporter{}, Options{Notifier: notifier, Logger: logging.Discard()})
	require.NoError(t, err)

	assert.NoError(t, w.Refresh(context.Background(), "tesla"))
	assert.Equal(t, []string{"tesla"}, notifier.topics)
}

func TestRefreshAllStopsOnCancel(t *testing.T) {
	reporter := &fakeReporter{}
	w, err := New("@hourly", []string{"a", "b"}, reporter, Options{Logger: logging.Discard()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = w.RefreshAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reporter.requests)
}

func TestStartStop(t *testing.T) {
	w, err := New("@hourly", nil, &fakeReporter{}, Options{Logger: logging.Discard()})
	require.NoError(t, err)
	w.Start()
	w.Stop(context.Background())
}

// Package watch refreshes the reports of a fixed topic list on a cron
// schedule, archiving and announcing each fresh report.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pep299/news-summarizer/internal/report"
	"github.com/pep299/news-summarizer/internal/service"
)

// Reporter is the part of the report service the watcher drives.
type Reporter interface {
	Report(ctx context.Context, req service.Request) (*report.Report, bool, error)
	ArchiveEnabled() bool
	Archive(ctx context.Context, rep *report.Report) (string, error)
}

// Notifier announces a refreshed report.
type Notifier interface {
	SendDigest(ctx context.Context, rep *report.Report) error
}

// Options tune a Watcher.
type Options struct {
	// Notifier may be nil.
	Notifier Notifier
	// Timeout bounds one refresh of all topics; zero means none.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Watcher owns the cron scheduler.
type Watcher struct {
	cron     *cron.Cron
	schedule string
	topics   []string
	reporter Reporter
	opts     Options
	logger   *slog.Logger
	running  atomic.Bool
}

// New validates schedule (standard five-field cron) and registers the job.
func New(schedule string, topics []string, reporter Reporter, opts Options) (*Watcher, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		cron:     cron.New(),
		schedule: schedule,
		topics:   append([]string(nil), topics...),
		reporter: reporter,
		opts:     opts,
		logger:   logger.With("component", "watch"),
	}

	if _, err := w.cron.AddFunc(schedule, w.tick); err != nil {
		return nil, fmt.Errorf("failed to add cron job: %w", err)
	}
	return w, nil
}

// Start runs the scheduler in the background.
func (w *Watcher) Start() {
	w.cron.Start()
	w.logger.Info("watch started", "schedule", w.schedule, "topics", len(w.topics))
}

// Stop stops the scheduler and waits for a running refresh, up to ctx.
func (w *Watcher) Stop(ctx context.Context) {
	done := w.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		w.logger.Warn("watch stop timed out")
	}
}

func (w *Watcher) tick() {
	if !w.running.CompareAndSwap(false, true) {
		w.logger.Info("refresh skipped: previous run still busy")
		return
	}
	defer w.running.Store(false)

	ctx := context.Background()
	if w.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.Timeout)
		defer cancel()
	}
	if err := w.RefreshAll(ctx); err != nil {
		w.logger.Warn("refresh finished with errors", "error", err)
	}
}

// RefreshAll refreshes every watched topic in order. A failing topic does
// not stop the others.
func (w *Watcher) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, topic := range w.topics {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := w.Refresh(ctx, topic); err != nil {
			errs = append(errs, fmt.Errorf("topic %q: %w", topic, err))
		}
	}
	return errors.Join(errs...)
}

// Refresh rebuilds one topic's report, bypassing the cache. Archive and
// notification failures are logged only.
func (w *Watcher) Refresh(ctx context.Context, topic string) error {
	logger := w.logger.With("topic", topic)

	rep, _, err := w.reporter.Report(ctx, service.Request{Topic: topic, Refresh: true})
	if err != nil {
		return err
	}
	logger.Info("topic refreshed", "report_id", rep.ID(), "entries", rep.Len(), "skipped", rep.Skipped())

	if w.reporter.ArchiveEnabled() {
		if location, err := w.reporter.Archive(ctx, rep); err != nil {
			logger.Warn("archive failed", "error", err)
		} else {
			logger.Debug("report archived", "location", location)
		}
	}

	if w.opts.Notifier != nil {
		if err := w.opts.Notifier.SendDigest(ctx, rep); err != nil {
			logger.Warn("digest notification failed", "error", err)
		}
	}
	return nil
}

// Package pipeline drives a topic through fetching, filtering, summarizing
// and assembling, as an explicit state machine.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pep299/news-summarizer/internal/metrics"
	"github.com/pep299/news-summarizer/internal/model"
	"github.com/pep299/news-summarizer/internal/relevance"
	"github.com/pep299/news-summarizer/internal/report"
	"github.com/pep299/news-summarizer/internal/search"
)

// Fetcher retrieves raw articles for a topic.
type Fetcher interface {
	Fetch(ctx context.Context, topic string, maxResults int) (search.Result, error)
}

// Summarizer produces the summary of one article.
type Summarizer interface {
	Summarize(ctx context.Context, article model.ScoredArticle) (model.SummaryResult, error)
}

// Enricher adds full text to kept articles before summarization.
type Enricher interface {
	Enrich(ctx context.Context, articles []model.ScoredArticle) []model.ScoredArticle
}

// Request is a single report request.
type Request struct {
	Topic      string
	MaxResults int
	// Threshold overrides the filter threshold when set.
	Threshold *float64
}

// Options tune a Pipeline. Zero values are usable.
type Options struct {
	Concurrency  int
	Enricher     Enricher
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	OnTransition func(Transition)
}

// Pipeline wires the stages together.
type Pipeline struct {
	fetcher    Fetcher
	filter     *relevance.Filter
	summarizer Summarizer
	assembler  *report.Assembler
	opts       Options
	logger     *slog.Logger
}

// New creates a pipeline.
func New(fetcher Fetcher, filter *relevance.Filter, summarizer Summarizer, assembler *report.Assembler, opts Options) *Pipeline {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		fetcher:    fetcher,
		filter:     filter,
		summarizer: summarizer,
		assembler:  assembler,
		opts:       opts,
		logger:     logger.With("component", "pipeline"),
	}
}

type run struct {
	id      string
	state   State
	started time.Time
	stage   time.Time
	p       *Pipeline
	logger  *slog.Logger
}

func (r *run) move(to State, err error) {
	from := r.state
	if !canMove(from, to) {
		r.logger.Error("illegal state transition", "from", from, "to", to)
		return
	}
	if from != StatePending {
		r.p.opts.Metrics.RecordStage(string(from), time.Since(r.stage))
	}
	r.state = to
	r.stage = time.Now()
	r.logger.Debug("state changed", "from", from, "to", to)
	if r.p.opts.OnTransition != nil {
		r.p.opts.OnTransition(Transition{RunID: r.id, From: from, To: to, Err: err})
	}
}

func (r *run) fail(err error) error {
	r.move(StateFailed, err)
	r.p.opts.Metrics.RecordRun(string(StateFailed))
	r.logger.Warn("run failed", "error", err, "elapsed", time.Since(r.started))
	return err
}

// Run produces a report for req. Per-article problems are counted in the
// report; only an invalid request, a total fetch failure or cancellation
// fail the run.
func (p *Pipeline) Run(ctx context.Context, req Request) (*report.Report, error) {
	topic := strings.TrimSpace(req.Topic)
	r := &run{id: uuid.NewString(), state: StatePending, started: time.Now(), stage: time.Now(), p: p}
	r.logger = p.logger.With("run_id", r.id, "topic", topic)

	if topic == "" {
		return nil, r.fail(&ValidationError{Field: "topic", Message: "topic must not be empty"})
	}
	filter := p.filter
	if req.Threshold != nil {
		if *req.Threshold < 0 || *req.Threshold > 1 {
			return nil, r.fail(&ValidationError{Field: "threshold", Message: "must be within [0, 1]"})
		}
		filter = filter.WithThreshold(*req.Threshold)
	}
	if req.MaxResults < 0 {
		return nil, r.fail(&ValidationError{Field: "max_results", Message: "must not be negative"})
	}

	r.move(StateFetching, nil)
	fetched, err := p.fetcher.Fetch(ctx, topic, req.MaxResults)
	if err != nil {
		return nil, r.fail(fmt.Errorf("fetching articles: %w", err))
	}
	p.opts.Metrics.RecordArticles("fetched", len(fetched.Articles))

	r.move(StateFiltering, nil)
	ranked, malformed := filter.Rank(topic, fetched.Articles)
	kept := relevance.Kept(ranked)
	p.opts.Metrics.RecordArticles("kept", len(kept))
	p.opts.Metrics.RecordArticles("discarded", len(ranked)-len(kept))
	r.logger.Info("articles filtered",
		"fetched", len(fetched.Articles), "kept", len(kept), "malformed", len(malformed),
		"threshold", filter.Threshold())

	r.move(StateSummarizing, nil)
	if p.opts.Enricher != nil && len(kept) > 0 {
		kept = p.opts.Enricher.Enrich(ctx, kept)
	}
	outcomes := p.summarizeAll(ctx, r.logger, kept)
	if err := ctx.Err(); err != nil {
		return nil, r.fail(err)
	}

	r.move(StateAssembling, nil)
	rep := p.assembler.Assemble(report.Meta{
		ID:         r.id,
		Topic:      topic,
		Fetched:    len(fetched.Articles),
		Kept:       len(kept),
		Discarded:  len(ranked) - len(kept),
		Duplicates: fetched.Duplicates,
		Skipped:    len(malformed),
	}, outcomes)
	p.opts.Metrics.RecordArticles("summarized", rep.Stats().Summarized)
	p.opts.Metrics.RecordArticles("skipped", rep.Skipped())

	r.move(StateDone, nil)
	p.opts.Metrics.RecordRun(string(StateDone))
	r.logger.Info("report assembled",
		"entries", rep.Len(), "skipped", rep.Skipped(), "elapsed", time.Since(r.started))
	return rep, nil
}

// summarizeAll runs the summarizer over a bounded pool. Each goroutine owns
// exactly one slot of the result slice.
func (p *Pipeline) summarizeAll(ctx context.Context, logger *slog.Logger, kept []model.ScoredArticle) []report.Outcome {
	outcomes := make([]report.Outcome, len(kept))

	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)
	for i, article := range kept {
		g.Go(func() error {
			outcomes[i].Article = article
			if err := ctx.Err(); err != nil {
				outcomes[i].Err = err
				return nil
			}
			summary, err := p.summarizer.Summarize(ctx, article)
			if err != nil {
				logger.Warn("summarization failed", "url", article.URL, "error", err)
				outcomes[i].Err = err
				return nil
			}
			outcomes[i].Summary = summary
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// Package pipeline drives the poll, retrieve, evaluate and write loop.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"screener/internal/config"
	"screener/internal/evaluate"
	"screener/internal/notify"
	"screener/internal/reconcile"
	"screener/internal/retrieve"
)

// Reconciler lists unprocessed rows and records verdicts.
type Reconciler interface {
	ListUnprocessed(ctx context.Context) ([]reconcile.Candidate, error)
	WriteVerdict(ctx context.Context, verdict map[string]string, sourceRow int) error
	MarkSeen(ctx context.Context, row int)
}

// Retriever gathers candidate text.
type Retriever interface {
	Collect(ctx context.Context, email, profileURL string) retrieve.Bundle
}

// Evaluator turns candidate text into a verdict.
type Evaluator interface {
	Evaluate(ctx context.Context, in evaluate.Input) evaluate.Evaluation
}

// Dependencies wires a Runner. Observer, Notifier, Logger, RunID and Now
// have defaults.
type Dependencies struct {
	Config     *config.Config
	Reconciler Reconciler
	Retriever  Retriever
	Evaluator  Evaluator
	Notifier   notify.Notifier
	Observer   Observer
	Logger     *zap.Logger
	RunID      func() string
	Now        func() time.Time
}

// Options controls a single run.
type Options struct {
	// BatchSize caps the candidates attempted; zero means unlimited.
	BatchSize int
	// Delay is the pause between consecutive candidates.
	Delay time.Duration
	// Workbook names the data source in run events.
	Workbook string
}

// Runner processes candidates strictly one at a time.
type Runner struct {
	deps Dependencies
}

// New validates deps and fills defaults.
func New(deps Dependencies) (*Runner, error) {
	switch {
	case deps.Config == nil:
		return nil, fmt.Errorf("config is required")
	case deps.Reconciler == nil:
		return nil, fmt.Errorf("reconciler is required")
	case deps.Retriever == nil:
		return nil, fmt.Errorf("retriever is required")
	case deps.Evaluator == nil:
		return nil, fmt.Errorf("evaluator is required")
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Observer == nil {
		deps.Observer = NopObserver{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.RunID == nil {
		deps.RunID = uuid.NewString
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Runner{deps: deps}, nil
}

// errStop ends the loop without being reported as a failure.
var errStop = errors.New("stop")

// Run polls until no unattempted candidates remain, the batch cap is reached
// or ctx is cancelled. A poll failure or a panic ends the run with an error;
// the summary always carries the counts so far.
func (r *Runner) Run(ctx context.Context, opts Options) (summary Summary, err error) {
	summary = Summary{RunID: r.deps.RunID(), StartedAt: r.deps.Now(), ByPriority: map[string]int{}}
	logger := r.deps.Logger.With(zap.String("run_id", summary.RunID))
	r.deps.Observer.OnRunStart(summary.RunID, opts.Workbook)
	logger.Info("run started", zap.Int("batch_size", opts.BatchSize), zap.Duration("delay", opts.Delay))

	defer func() {
		if recovered := recover(); recovered != nil {
			summary.Interrupted = true
			err = fmt.Errorf("run panicked: %v", recovered)
			logger.Error("run panicked", zap.Any("panic", recovered))
		}
		summary.FinishedAt = r.deps.Now()
		r.deps.Observer.OnRunEnd(summary)
		logger.Info("run finished",
			zap.Int("attempted", summary.Attempted),
			zap.Int("succeeded", summary.Succeeded),
			zap.Int("failed", summary.Failed),
			zap.Int("skipped", summary.Skipped),
			zap.Bool("interrupted", summary.Interrupted),
			zap.Duration("duration", summary.Duration()),
		)
	}()

	attempted := map[int]struct{}{}
	for {
		if ctx.Err() != nil {
			summary.Interrupted = true
			return summary, nil
		}
		candidates, pollErr := r.deps.Reconciler.ListUnprocessed(ctx)
		if pollErr != nil {
			if ctx.Err() != nil {
				summary.Interrupted = true
				return summary, nil
			}
			logger.Error("poll failed", zap.Error(pollErr))
			return summary, pollErr
		}
		pending := candidates[:0:0]
		for _, candidate := range candidates {
			if _, done := attempted[candidate.Row]; !done {
				pending = append(pending, candidate)
			}
		}
		r.deps.Observer.OnPoll(len(pending))
		if len(pending) == 0 {
			return summary, nil
		}

		for _, candidate := range pending {
			if opts.BatchSize > 0 && summary.Attempted >= opts.BatchSize {
				logger.Info("batch limit reached", zap.Int("batch_size", opts.BatchSize))
				return summary, nil
			}
			if summary.Attempted > 0 {
				if err := sleep(ctx, opts.Delay); err != nil {
					summary.Interrupted = true
					return summary, nil
				}
			}
			attempted[candidate.Row] = struct{}{}
			if err := r.process(ctx, logger, candidate, &summary); errors.Is(err, errStop) {
				summary.Interrupted = true
				return summary, nil
			}
		}
	}
}

// process handles one candidate. It returns errStop when ctx was cancelled
// before the verdict could be written.
func (r *Runner) process(ctx context.Context, logger *zap.Logger, candidate reconcile.Candidate, summary *Summary) error {
	started := r.deps.Now()
	id := candidate.Identity
	label := id.Email
	if label == "" {
		label = id.LinkedIn
	}
	logger = logger.With(zap.Int("row", candidate.Row), zap.String("candidate", label))
	emit := func(event CandidateEvent) {
		event.Row = candidate.Row
		event.Identity = label
		event.EmittedAt = r.deps.Now()
		if event.Status.Terminal() {
			event.WallTime = event.EmittedAt.Sub(started)
		}
		r.deps.Observer.OnCandidate(event)
	}

	summary.Attempted++
	if id.Empty() {
		logger.Warn("input row has no e-mail or profile URL")
		r.deps.Reconciler.MarkSeen(ctx, candidate.Row)
		summary.Failed++
		emit(CandidateEvent{Status: CandidateNoIdentity, Error: reconcile.ErrNoIdentity.Error()})
		return nil
	}

	emit(CandidateEvent{Status: CandidateRetrieving})
	bundle := r.deps.Retriever.Collect(ctx, id.Email, id.LinkedIn)
	profileURL := bundle.ProfileURL
	if profileURL == "" {
		profileURL = id.LinkedIn
	}

	emit(CandidateEvent{Status: CandidateEvaluating})
	evaluation := r.deps.Evaluator.Evaluate(ctx, evaluate.Input{
		Profile:    bundle.Profile.Text,
		Company:    bundle.Company.Text,
		Email:      id.Email,
		ProfileURL: profileURL,
	})
	if ctx.Err() != nil {
		summary.Attempted--
		return errStop
	}
	if evaluation.Fallback {
		summary.Fallbacks++
		logger.Warn("using default verdict", zap.String("reason", evaluation.Reason))
	}
	for _, issue := range evaluation.Issues {
		logger.Debug("evaluation issue", zap.String("issue", issue))
	}

	priority := evaluation.Priority()
	emit(CandidateEvent{Status: CandidateWriting, Priority: priority})
	err := r.deps.Reconciler.WriteVerdict(ctx, evaluation.Verdict, candidate.Row)
	switch {
	case errors.Is(err, reconcile.ErrDuplicate):
		summary.Skipped++
		emit(CandidateEvent{Status: CandidateDuplicate, Priority: priority})
		return nil
	case err != nil:
		summary.Failed++
		logger.Error("write verdict failed", zap.Error(err))
		emit(CandidateEvent{Status: CandidateFailed, Priority: priority, Error: err.Error()})
		return nil
	}

	summary.Succeeded++
	summary.record(priority)
	logger.Info("verdict written", zap.String("priority", priority), zap.Bool("fallback", evaluation.Fallback))
	emit(CandidateEvent{
		Status:   CandidateWritten,
		Priority: priority,
		Fallback: evaluation.Fallback,
		Reason:   evaluation.Reason,
	})

	draft := evaluation.Verdict["email_draft"]
	if priority == r.deps.Config.Response.PositiveLabel && draft != "" && id.Email != "" {
		r.deps.Notifier.Notify(ctx, notify.Message{
			Recipient: id.Email,
			Subject:   r.deps.Config.CRM.Subject,
			Body:      draft,
		})
	}
	return nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

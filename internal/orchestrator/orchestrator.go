package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wrkbench/internal/report"
	"wrkbench/internal/stats"
)

// Outcome describes a finished (or interrupted) run.
type Outcome struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Cancelled  bool
	Summaries  []stats.TargetSummary
}

// Completed reports whether every target finished without a failed endpoint.
func (o *Outcome) Completed() bool {
	if o.Cancelled {
		return false
	}
	for _, s := range o.Summaries {
		if !s.Completed {
			return false
		}
	}
	return true
}

type Option func(*Orchestrator)

// WithEvents publishes progress events on ch.
func WithEvents(ch Events) Option {
	return func(o *Orchestrator) { o.events = ch }
}

// WithParser replaces report.Parse.
func WithParser(fn ParseFunc) Option {
	return func(o *Orchestrator) { o.parse = fn }
}

// Orchestrator benchmarks every target against every endpoint, one wrk
// process at a time.
type Orchestrator struct {
	invoker Invoker
	results ResultWriter
	parse   ParseFunc
	events  Events
	logger  zerolog.Logger
}

func New(invoker Invoker, results ResultWriter, logger zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		invoker: invoker,
		results: results,
		parse:   report.Parse,
		logger:  logger.With().Str("component", "orchestrator").Logger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the plan. Targets that fail are reported in the returned
// error (joined) and the run moves on to the next target; filesystem errors
// and cancellation stop the run. Result files already written stay valid.
func (o *Orchestrator) Run(ctx context.Context, plan Plan) (*Outcome, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	out := &Outcome{
		ID:        newRunID(),
		StartedAt: time.Now(),
	}
	p := &progress{steps: len(plan.Targets) * len(plan.Endpoints)}

	o.logger.Info().
		Str("run_id", out.ID).
		Int("targets", len(plan.Targets)).
		Int("endpoints", len(plan.Endpoints)).
		Str("duration", plan.Config.Duration).
		Int("threads", plan.Config.Threads).
		Int("connections", plan.Config.Connections).
		Msg("benchmark run started")

	var errs []error
	for _, target := range plan.Targets {
		if err := ctx.Err(); err != nil {
			out.Cancelled = true
			errs = append(errs, err)
			break
		}

		summary, err := o.runTarget(ctx, plan, target, p)
		out.Summaries = append(out.Summaries, summary)
		if err == nil {
			continue
		}
		errs = append(errs, err)

		var fsErr *FilesystemError
		if errors.As(err, &fsErr) {
			break
		}
		if ctx.Err() != nil {
			out.Cancelled = true
			break
		}
	}

	out.FinishedAt = time.Now()
	err := errors.Join(errs...)

	o.logger.Info().
		Str("run_id", out.ID).
		Bool("completed", out.Completed()).
		Dur("elapsed", out.FinishedAt.Sub(out.StartedAt)).
		Msg("benchmark run finished")

	o.emit(Event{Kind: EventRunDone, Step: p.step, Steps: p.steps, Outcome: out, Err: err})
	return out, err
}

func (o *Orchestrator) runTarget(ctx context.Context, plan Plan, target Target, p *progress) (stats.TargetSummary, error) {
	log := o.logger.With().Str("target", target.Name).Logger()
	results := make(ResultSet, len(plan.Endpoints))
	agg := stats.NewStats()
	var failures []error

	o.emit(Event{Kind: EventTargetStarted, Target: target.Name, Step: p.step, Steps: p.steps})

	for i, endpoint := range plan.Endpoints {
		url := RequestURL(target.BaseURL, endpoint)
		p.step++

		o.emit(Event{Kind: EventEndpointStarted, Target: target.Name, Endpoint: endpoint, URL: url, Step: p.step, Steps: p.steps})
		log.Info().Str("endpoint", endpoint).Str("url", url).Msg("running load generator")

		raw, err := o.invoker.Invoke(ctx, url, plan.Config)
		if err != nil {
			if ctx.Err() != nil {
				log.Warn().Str("endpoint", endpoint).Msg("run interrupted, results for this target discarded")
				return o.abandon(target, agg, p, len(plan.Endpoints)-i-1, ctx.Err()), ctx.Err()
			}

			ierr := &InvocationError{Target: target.Name, Endpoint: endpoint, URL: url, Err: err}
			log.Error().Err(err).Str("endpoint", endpoint).Str("url", url).Msg("load generator failed")
			o.emit(Event{Kind: EventEndpointDone, Target: target.Name, Endpoint: endpoint, URL: url, Step: p.step, Steps: p.steps, Err: ierr})

			if !plan.KeepGoing {
				return o.abandon(target, agg, p, len(plan.Endpoints)-i-1, ierr), ierr
			}

			rec := report.Record{Error: err.Error()}
			results[endpoint] = rec
			agg.Add(endpoint, rec)
			failures = append(failures, ierr)
			continue
		}

		rec := o.parse(raw)
		if rec.IsEmpty() {
			log.Warn().Str("endpoint", endpoint).Int("report_bytes", len(raw)).Msg("report matched no known patterns")
		}
		results[endpoint] = rec
		agg.Add(endpoint, rec)

		o.emit(Event{Kind: EventEndpointDone, Target: target.Name, Endpoint: endpoint, URL: url, Step: p.step, Steps: p.steps, Record: &rec})
	}

	summary := agg.Summary(target.Name)

	path, err := o.results.Save(target.Name, results)
	if err != nil {
		fsErr := &FilesystemError{Target: target.Name, Err: err}
		summary.Error = fsErr.Error()
		log.Error().Err(err).Msg("could not write results")
		o.emit(Event{Kind: EventTargetDone, Target: target.Name, Step: p.step, Steps: p.steps, Summary: &summary, Err: fsErr})
		return summary, fsErr
	}

	summary.File = path
	summary.Completed = len(failures) == 0
	err = errors.Join(failures...)
	if err != nil {
		summary.Error = err.Error()
	}

	log.Info().
		Str("file", path).
		Int("endpoints", len(results)).
		Int("failed", len(failures)).
		Float64("median_rps", summary.MedianRPS).
		Msg("results saved")
	o.emit(Event{Kind: EventTargetDone, Target: target.Name, Step: p.step, Steps: p.steps, Summary: &summary, Err: err})

	return summary, err
}

// abandon closes out a target without writing its results.
func (o *Orchestrator) abandon(target Target, agg *stats.Stats, p *progress, skipped int, cause error) stats.TargetSummary {
	p.step += skipped
	summary := agg.Summary(target.Name)
	summary.Error = cause.Error()
	o.emit(Event{Kind: EventTargetDone, Target: target.Name, Step: p.step, Steps: p.steps, Summary: &summary, Err: cause})
	return summary
}

func (o *Orchestrator) emit(ev Event) {
	if o.events == nil {
		return
	}
	o.events <- ev
}

type progress struct {
	step  int
	steps int
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Package check walks a queue of mod names, looks each one up on the mod
// portal and decides whether the run succeeded.
package check

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/frederic-klein/modcheck/internal/mod"
	"github.com/frederic-klein/modcheck/internal/portal"
	"github.com/frederic-klein/modcheck/internal/report"
)

// Catalog looks up the release history of one mod.
type Catalog interface {
	FullModInfo(ctx context.Context, token portal.Token, name string) portal.Result
}

// Options configure a Checker. Zero values are usable.
type Options struct {
	Window  mod.Window
	Flags   Flags
	Emitter report.Emitter
	// Timeout bounds each lookup. Defaults to portal.DefaultTimeout.
	Timeout time.Duration
	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Outcome is the result of Run.
type Outcome struct {
	ExitCode int
	Results  Results
	// Early is set when quiet mode stopped the run before the queue was
	// exhausted.
	Early bool
	// Err is set when the run was interrupted by its context.
	Err error
}

// Checker owns the state of one run: the queue, the session token and
// the accumulated verdicts. Lookups are strictly sequential.
type Checker struct {
	catalog Catalog
	token   portal.Token
	queue   *Queue
	window  mod.Window
	flags   Flags
	emitter report.Emitter
	timeout time.Duration
	log     zerolog.Logger
	results Results
}

// NewChecker creates a checker that drains queue using catalog.
func NewChecker(catalog Catalog, token portal.Token, queue *Queue, opts Options) *Checker {
	emitter := opts.Emitter
	if emitter == nil || opts.Flags.Quiet {
		emitter = report.Discard
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = portal.DefaultTimeout
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Checker{
		catalog: catalog,
		token:   token,
		queue:   queue,
		window:  opts.Window,
		flags:   opts.Flags,
		emitter: emitter,
		timeout: timeout,
		log:     logger,
	}
}

// Run checks queued mods one at a time until the queue is empty, quiet
// mode decides the outcome early, or ctx is cancelled.
func (c *Checker) Run(ctx context.Context) Outcome {
	for {
		if c.flags.Quiet {
			if code, ok := EarlyExit(c.flags, &c.results); ok {
				c.log.Debug().
					Int("matched", len(c.results.Matched)).
					Int("non_matched", len(c.results.NonMatched)).
					Int("skipped", c.queue.Len()).
					Msg("outcome decided, stopping early")
				return Outcome{ExitCode: code, Results: c.results, Early: true}
			}
		}

		if err := ctx.Err(); err != nil {
			return Outcome{ExitCode: ExitFailure, Results: c.results, Err: fmt.Errorf("check interrupted: %w", err)}
		}

		name, ok := c.queue.Pop()
		if !ok {
			return c.finish()
		}

		c.log.Debug().Str("mod", name).Msg("fetching mod info")
		c.classify(name, c.fetch(ctx, name))
	}
}

// Results returns the verdicts recorded so far.
func (c *Checker) Results() Results {
	return c.results
}

// fetch runs one lookup under the per-request timeout and returns only
// once the catalog has returned, so the next lookup never overlaps it.
// An answer that arrives after the deadline still counts as a timeout.
func (c *Checker) fetch(ctx context.Context, name string) portal.Result {
	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res := c.catalog.FullModInfo(fetchCtx, c.token, name)
	if err := fetchCtx.Err(); err != nil && res.Kind == portal.KindOK {
		return portal.Failure(fmt.Errorf("fetching %s: %w", name, err))
	}
	return res
}

func (c *Checker) classify(name string, res portal.Result) {
	if res.Kind != portal.KindOK {
		c.log.Error().Err(res.Err).Str("mod", name).Str("kind", res.Kind.String()).
			Msg("could not retrieve mod information")
		c.results.RecordNonMatch(name)
		return
	}
	if res.Info == nil {
		c.log.Error().Str("mod", name).Msg("could not retrieve mod information: empty response")
		c.results.RecordNonMatch(name)
		return
	}

	rel, ok := mod.SelectMatch(res.Info.Releases, c.window)
	if !ok {
		c.log.Debug().Str("mod", name).Int("releases", len(res.Info.Releases)).Msg("no release in window")
		c.results.RecordNonMatch(name)
		return
	}

	m := c.results.RecordMatch(name, rel)
	if err := c.emitter.Match(m); err != nil {
		c.log.Warn().Err(err).Str("mod", name).Msg("writing match")
	}
}

func (c *Checker) finish() Outcome {
	code := FinalExit(&c.results)
	summary := report.Summary{
		Matched:    c.results.Matched,
		NonMatched: c.results.NonMatched,
		ExitCode:   code,
	}
	if err := c.emitter.Summary(summary); err != nil {
		c.log.Warn().Err(err).Msg("writing summary")
	}
	return Outcome{ExitCode: code, Results: c.results}
}

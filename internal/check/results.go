package check

import "github.com/frederic-klein/modcheck/internal/mod"

// Exit codes.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Flags change output and the success criterion.
type Flags struct {
	// Quiet suppresses stdout and lets the run stop as soon as the
	// outcome is known.
	Quiet bool
	// Single makes any match a success on the early exit path.
	Single bool
	// Verbose lists every mod name in the summary.
	Verbose bool
}

// Results accumulates verdicts in processing order.
type Results struct {
	Matched    []mod.Match
	NonMatched []string
}

// RecordMatch appends a match for name and returns it.
func (r *Results) RecordMatch(name string, rel mod.Release) mod.Match {
	m := mod.Match{Name: name, Release: rel}
	r.Matched = append(r.Matched, m)
	return m
}

// RecordNonMatch appends name to the non-matched mods.
func (r *Results) RecordNonMatch(name string) {
	r.NonMatched = append(r.NonMatched, name)
}

// Processed returns how many mods have a verdict.
func (r *Results) Processed() int {
	return len(r.Matched) + len(r.NonMatched)
}

// EarlyExit reports whether the outcome is already decided. It is only
// consulted in quiet mode.
func EarlyExit(flags Flags, r *Results) (int, bool) {
	if flags.Single && len(r.Matched) > 0 {
		return ExitSuccess, true
	}
	if !flags.Single && len(r.NonMatched) > 0 {
		return ExitFailure, true
	}
	return 0, false
}

// FinalExit decides the exit code once the queue is exhausted: success
// requires at least one checked mod and no non-matches.
//
// Unlike EarlyExit it does not honor Flags.Single, so a single-mode run
// that drains the queue with one non-match fails.
func FinalExit(r *Results) int {
	if r.Processed() == 0 || len(r.NonMatched) > 0 {
		return ExitFailure
	}
	return ExitSuccess
}

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/modcheck/internal/mod"
)

// Output formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Formats lists the accepted values for New.
var Formats = []string{FormatText, FormatYAML, FormatJSON}

// Summary is the final state of a run.
type Summary struct {
	Matched    []mod.Match
	NonMatched []string
	ExitCode   int
}

// Emitter writes the verdicts of a run.
type Emitter interface {
	// Match is called once per matched mod, as soon as it is classified.
	Match(m mod.Match) error
	// Summary is called once when the queue is exhausted.
	Summary(s Summary) error
}

// New returns the emitter for format.
func New(format string, w io.Writer, verbose bool) (Emitter, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return NewTextEmitter(w, verbose), nil
	case FormatYAML:
		return &yamlEmitter{w: w}, nil
	case FormatJSON:
		return &jsonEmitter{w: w}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// Discard drops everything; used in quiet mode.
var Discard Emitter = discard{}

type discard struct{}

func (discard) Match(mod.Match) error  { return nil }
func (discard) Summary(Summary) error { return nil }

// TextEmitter writes human-readable lines.
type TextEmitter struct {
	w       io.Writer
	verbose bool
}

// NewTextEmitter creates a text emitter. When verbose is set the summary
// lists every mod name under its count.
func NewTextEmitter(w io.Writer, verbose bool) *TextEmitter {
	return &TextEmitter{w: w, verbose: verbose}
}

// Match writes the verdict line for one matched mod.
func (e *TextEmitter) Match(m mod.Match) error {
	_, err := fmt.Fprintf(e.w, "Mod \"%s\" matched the filter: Last release (version %s) is dated %s.\n",
		m.Name, m.Release.Version, mod.FormatTime(m.Release.ReleasedAt))
	return err
}

// Summary writes the matched and non-matched counts, each followed by
// its mod names when verbose.
func (e *TextEmitter) Summary(s Summary) error {
	names := make([]string, len(s.Matched))
	for i, m := range s.Matched {
		names[i] = m.Name
	}
	if err := e.emitGroup("%d mod/s matched the filter.\n", names); err != nil {
		return err
	}
	return e.emitGroup("%d mod/s did not match the filter.\n", s.NonMatched)
}

func (e *TextEmitter) emitGroup(format string, names []string) error {
	if _, err := fmt.Fprintf(e.w, format, len(names)); err != nil {
		return err
	}
	if !e.verbose {
		return nil
	}
	for _, name := range names {
		if _, err := fmt.Fprintf(e.w, "    %s\n", name); err != nil {
			return err
		}
	}
	return nil
}

type matchDoc struct {
	Name       string `yaml:"name" json:"name"`
	Version    string `yaml:"version" json:"version"`
	ReleasedAt string `yaml:"released_at" json:"released_at"`
}

type summaryDoc struct {
	Matched    []matchDoc `yaml:"matched" json:"matched"`
	NonMatched []string   `yaml:"non_matched" json:"non_matched"`
	ExitCode   int        `yaml:"exit_code" json:"exit_code"`
}

func newSummaryDoc(s Summary) summaryDoc {
	doc := summaryDoc{
		Matched:    make([]matchDoc, 0, len(s.Matched)),
		NonMatched: append([]string{}, s.NonMatched...),
		ExitCode:   s.ExitCode,
	}
	for _, m := range s.Matched {
		doc.Matched = append(doc.Matched, matchDoc{
			Name:       m.Name,
			Version:    m.Release.Version,
			ReleasedAt: mod.FormatTime(m.Release.ReleasedAt),
		})
	}
	return doc
}

type yamlEmitter struct {
	w io.Writer
}

func (e *yamlEmitter) Match(mod.Match) error { return nil }

func (e *yamlEmitter) Summary(s Summary) error {
	enc := yaml.NewEncoder(e.w)
	enc.SetIndent(2)
	if err := enc.Encode(newSummaryDoc(s)); err != nil {
		return fmt.Errorf("encoding yaml report: %w", err)
	}
	return enc.Close()
}

type jsonEmitter struct {
	w io.Writer
}

func (e *jsonEmitter) Match(mod.Match) error { return nil }

func (e *jsonEmitter) Summary(s Summary) error {
	enc := json.NewEncoder(e.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newSummaryDoc(s)); err != nil {
		return fmt.Errorf("encoding json report: %w", err)
	}
	return nil
}

// Package report carries data-quality issues out of the decoder, merger,
// fold and flattener. Those stages never fail on a bad partial record;
// they record what they dropped or recovered through a Sink and continue.
package report

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/coursemap/pkg/logging"
)

// Severity grades an issue.
type Severity int

// Severities, lowest first.
const (
	Info Severity = iota
	Warning
	Error
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Stage names the pipeline step that raised an issue.
type Stage string

// Pipeline stages.
const (
	StageIngest  Stage = "ingest"
	StageMerge   Stage = "merge"
	StageFold    Stage = "fold"
	StageFlatten Stage = "flatten"
	StageExport  Stage = "export"
	StageExtract Stage = "extract"
)

// Issue is one recorded problem with its context.
type Issue struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Stage    Stage    `json:"stage" yaml:"stage"`
	Page     int      `json:"page,omitempty" yaml:"page,omitempty"`
	Path     string   `json:"path,omitempty" yaml:"path,omitempty"`
	Message  string   `json:"message" yaml:"message"`
	Err      error    `json:"-" yaml:"-"`
}

// String formats the issue on one line.
func (i Issue) String() string {
	var b strings.Builder
	b.WriteString(i.Severity.String())
	b.WriteString(" [")
	b.WriteString(string(i.Stage))
	b.WriteString("]")
	if i.Page > 0 {
		fmt.Fprintf(&b, " page %d", i.Page)
	}
	if i.Path != "" {
		b.WriteString(" ")
		b.WriteString(i.Path)
	}
	b.WriteString(": ")
	b.WriteString(i.Message)
	if i.Err != nil {
		b.WriteString(": ")
		b.WriteString(i.Err.Error())
	}
	return b.String()
}

// Sink records issues.
type Sink interface {
	Report(Issue)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Issue)

// Report implements Sink.
func (f SinkFunc) Report(i Issue) { f(i) }

// Discard drops every issue.
var Discard Sink = SinkFunc(func(Issue) {})

// OrDiscard returns s, or Discard when s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// Collector keeps issues in memory. It is safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	issues []Issue
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Report implements Sink.
func (c *Collector) Report(i Issue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issues = append(c.issues, i)
}

// Issues returns a copy of the recorded issues in report order.
func (c *Collector) Issues() []Issue {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Issue, len(c.issues))
	copy(out, c.issues)
	return out
}

// Len returns the number of recorded issues.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.issues)
}

// Filter returns the issues matching stage and at or above floor.
// An empty stage matches every stage.
func (c *Collector) Filter(stage Stage, floor Severity) []Issue {
	var out []Issue
	for _, i := range c.Issues() {
		if (stage == "" || i.Stage == stage) && i.Severity >= floor {
			out = append(out, i)
		}
	}
	return out
}

// Reset drops all recorded issues.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issues = nil
}

// Logger writes issues to a zerolog logger.
type Logger struct {
	log *zerolog.Logger
}

// NewLogger returns a sink that logs through l, or through the default
// logger when l is nil.
func NewLogger(l *zerolog.Logger) *Logger {
	if l == nil {
		l = logging.Default()
	}
	return &Logger{log: l}
}

// Report implements Sink.
func (l *Logger) Report(i Issue) {
	var ev *zerolog.Event
	switch i.Severity {
	case Error:
		ev = l.log.Error()
	case Warning:
		ev = l.log.Warn()
	default:
		ev = l.log.Debug()
	}
	ev = ev.Str("stage", string(i.Stage))
	if i.Page > 0 {
		ev = ev.Int("page", i.Page)
	}
	if i.Path != "" {
		ev = ev.Str("path", i.Path)
	}
	if i.Err != nil {
		ev = ev.Err(i.Err)
	}
	ev.Msg(i.Message)
}

// Multi fans each issue out to every sink.
func Multi(sinks ...Sink) Sink {
	var live []Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return SinkFunc(func(i Issue) {
		for _, s := range live {
			s.Report(i)
		}
	})
}

// WithPage returns a sink that stamps page onto issues lacking one.
func WithPage(s Sink, page int) Sink {
	s = OrDiscard(s)
	return SinkFunc(func(i Issue) {
		if i.Page == 0 {
			i.Page = page
		}
		s.Report(i)
	})
}

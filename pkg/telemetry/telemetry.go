// Package telemetry writes the solver's per-iteration progress to a JSON
// file that an external visualization front-end polls.
package telemetry

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Snapshot is one iteration's worth of reportable state. Within Strategy,
// keys are info-set ids and values map action name to probability; within
// ActionEVs the same keys map to action name -> expected utility.
type Snapshot struct {
	Type           string                        `json:"type"`
	Iteration      int                           `json:"iteration"`
	ResidualNorm   float64                       `json:"residual_norm"`
	StepNorm       float64                       `json:"step_norm"`
	Alpha          float64                       `json:"alpha"`
	Lambda         float64                       `json:"lambda"`
	Beta           float64                       `json:"beta"`
	Game           string                        `json:"game"`
	Strategy       map[string]map[string]float64 `json:"strategy"`
	ActionEVs      map[string]map[string]float64 `json:"action_evs"`
	Exploitability *float64                      `json:"exploitability,omitempty"`
	ExpectedValue  *float64                      `json:"expected_value,omitempty"`
}

// Completion replaces latest when the solver finishes.
type Completion struct {
	Type                string  `json:"type"`
	Status              string  `json:"status"`
	FinalExploitability float64 `json:"final_exploitability"`
	TotalIterations     int     `json:"total_iterations"`
}

// document is the full telemetry file shape.
type document struct {
	Status         string      `json:"status"`
	IterationCount int         `json:"iteration_count"`
	Iterations     []Snapshot  `json:"iterations"`
	Latest         interface{} `json:"latest"`
}

// Sink owns an output path and rewrites it after every iteration via
// write-temp-then-rename, so a reader never observes truncated JSON.
type Sink struct {
	path     string
	history  []Snapshot
	latest   interface{}
	finished bool
}

// NewSink creates a sink at path and writes the initial empty state.
func NewSink(path string) (*Sink, error) {
	s := &Sink{path: path}
	if err := s.writeFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the sink's output path.
func (s *Sink) Path() string { return s.path }

// LogIteration appends snapshot to the history and rewrites the file.
// The CLI's per-iteration callback builds a Snapshot and calls this.
func (s *Sink) LogIteration(snap Snapshot) error {
	s.history = append(s.history, snap)
	s.latest = snap
	return s.writeFile()
}

// Finish marks the solve complete and rewrites the file one last time.
func (s *Sink) Finish(finalExploitability float64, totalIterations int) error {
	s.latest = Completion{
		Type:                "complete",
		Status:              "done",
		FinalExploitability: finalExploitability,
		TotalIterations:     totalIterations,
	}
	s.finished = true
	return s.writeFile()
}

func (s *Sink) writeFile() error {
	status := "running"
	if s.finished {
		status = "complete"
	}
	doc := document{
		Status:         status,
		IterationCount: len(s.history),
		Iterations:     s.history,
		Latest:         s.latest,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal telemetry document")
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.Wrapf(err, "write temp telemetry file %q", tmpPath)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return errors.Wrapf(err, "rename %q to %q", tmpPath, s.path)
	}
	return nil
}

package domain

import "time"

// Status is the classified outcome of one simulation log.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusWarn    Status = "WARN"
	StatusFail    Status = "FAIL"
	StatusUnknown Status = "UNKNOWN"
)

// LogLine is a log line that matched a classification pattern.
type LogLine struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Outcome is the classification of a simulation log.
type Outcome struct {
	Status   Status    `json:"status"`
	LogPath  string    `json:"log_path"`
	Finished bool      `json:"finished"`
	Errors   []LogLine `json:"errors,omitempty"`
	Warnings []LogLine `json:"warnings,omitempty"`
	Excluded []LogLine `json:"excluded,omitempty"`
}

// InstanceResult is the result of one (test, seed) simulation.
type InstanceResult struct {
	Bucket   string        `json:"bucket,omitempty"`
	Test     string        `json:"test"`
	Seed     uint32        `json:"seed"`
	Dir      string        `json:"dir"`
	Outcome  Outcome       `json:"outcome"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
	Resolved bool          `json:"resolved,omitempty"` // marked in the fails viewer
}

// Failed reports whether the instance needs attention.
func (r InstanceResult) Failed() bool {
	return r.Error != "" || r.Outcome.Status == StatusFail || r.Outcome.Status == StatusUnknown
}

// RunMeta contains metadata about a regression run.
type RunMeta struct {
	RunID           string  `json:"run_id"`
	Mode            string  `json:"mode"`
	Target          string  `json:"target"`
	Build           string  `json:"build"`
	Simulator       string  `json:"simulator"`
	TotalInstances  int     `json:"total_instances"`
	PassedInstances int     `json:"passed_instances"`
	WarnInstances   int     `json:"warn_instances"`
	FailedInstances int     `json:"failed_instances"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Timestamp       string  `json:"timestamp"`
}

// RunReport is the persisted output of a run.
type RunReport struct {
	Meta    RunMeta          `json:"meta"`
	Results []InstanceResult `json:"results"`
}

// Failures returns the results that failed.
func (r *RunReport) Failures() []InstanceResult {
	var out []InstanceResult
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Tally recomputes the counters in Meta from Results.
func (r *RunReport) Tally() {
	r.Meta.TotalInstances = len(r.Results)
	r.Meta.PassedInstances, r.Meta.WarnInstances, r.Meta.FailedInstances = 0, 0, 0
	for _, res := range r.Results {
		switch {
		case res.Failed():
			r.Meta.FailedInstances++
		case res.Outcome.Status == StatusWarn:
			r.Meta.WarnInstances++
		default:
			r.Meta.PassedInstances++
		}
	}
}

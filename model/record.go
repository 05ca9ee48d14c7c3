package model

import "time"

// RunRecord captures the outcome of a single completed benchmark run. A record
// is created exactly once, after the child runtime signalled readiness and its
// resident memory was sampled, and is never mutated afterwards.
type RunRecord struct {
	// RunID identifies the run that produced this record.
	RunID string `json:"runID" yaml:"runID"`

	// Population is the number of cooperative contexts the child runtime hosted.
	Population int `json:"population" yaml:"population"`

	// ResidentKb is the child's resident set size in kilobytes at the moment
	// readiness was confirmed. Always > 0 for a completed run.
	ResidentKb int64 `json:"residentKb" yaml:"residentKb"`

	// Recorded is the wall-clock time the sample was taken.
	Recorded time.Time `json:"recorded" yaml:"recorded"`
}

// SweepResult is the ordered outcome of one sweep: one RunRecord per
// successfully sampled population size, in strictly ascending population
// order. Failed runs leave gaps rather than zero-valued records.
type SweepResult struct {
	// SweepID identifies the sweep.
	SweepID string `json:"sweepID" yaml:"sweepID"`

	// Requested is the number of runs the sweep attempted.
	Requested int `json:"requested" yaml:"requested"`

	// Records holds one entry per completed run, ascending by Population.
	Records []RunRecord `json:"records" yaml:"records"`

	// Failed lists the population sizes whose runs did not complete.
	Failed []int `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Append adds a record to the result. Records must arrive in ascending
// population order; Append is the only mutation a SweepResult supports.
func (r *SweepResult) Append(record RunRecord) {
	r.Records = append(r.Records, record)
}

// Completed returns the number of successfully recorded runs.
func (r *SweepResult) Completed() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

// Largest returns the record with the highest population, or false when the
// result holds no records.
func (r *SweepResult) Largest() (RunRecord, bool) {
	if r == nil || len(r.Records) == 0 {
		return RunRecord{}, false
	}
	return r.Records[len(r.Records)-1], true
}

// At returns the record for the given population, or false when that run
// failed or was never attempted.
func (r *SweepResult) At(population int) (RunRecord, bool) {
	if r == nil {
		return RunRecord{}, false
	}
	for _, record := range r.Records {
		if record.Population == population {
			return record, true
		}
	}
	return RunRecord{}, false
}

// Package estimator post-processes recorded sweep samples into an amortized
// per-unit memory-overhead estimate. All functions are pure over the recorded
// data; nothing here touches processes or the filesystem.
package estimator

import (
	"fmt"
	"math"
	"sort"

	"github.com/corobench/corobench/model"
)

// Config tunes the estimation.
type Config struct {
	// TransitionThreshold is the relative growth over the flat-region
	// baseline at which the linear region is considered to start.
	TransitionThreshold float64 `json:"transitionThreshold" yaml:"transitionThreshold"`

	// ConfidenceLevel for repeat-based intervals. Supported levels: 0.90,
	// 0.95 and 0.99.
	ConfidenceLevel float64 `json:"confidenceLevel" yaml:"confidenceLevel"`
}

// DefaultConfig returns the default estimation settings.
func DefaultConfig() Config {
	return Config{
		TransitionThreshold: 0.10,
		ConfidenceLevel:     0.99,
	}
}

// Validate returns an error describing invalid settings or nil.
func (c Config) Validate() error {
	if c.TransitionThreshold <= 0 {
		return fmt.Errorf("transitionThreshold must be > 0, had: %v", c.TransitionThreshold)
	}
	if _, ok := criticalValues[c.ConfidenceLevel]; !ok {
		return fmt.Errorf("unsupported confidence level %v (supported: 0.90, 0.95, 0.99)", c.ConfidenceLevel)
	}
	return nil
}

// Stat is a statistic that may be unavailable when too few valid samples
// exist in its region. An unavailable statistic is never fabricated.
type Stat struct {
	Value     float64 `json:"value"`
	Samples   int     `json:"samples"`
	Available bool    `json:"available"`
}

// Interval is a mean ± margin estimate at a stated confidence level.
type Interval struct {
	Mean      float64 `json:"mean"`
	Margin    float64 `json:"margin"`
	Level     float64 `json:"level"`
	Samples   int     `json:"samples"`
	Available bool    `json:"available"`
}

// Report is the outcome of estimating one sweep (or one set of repeated
// sweeps).
type Report struct {
	// Baseline is the flat-region mean in kB, dominated by fixed interpreter
	// overhead.
	Baseline Stat `json:"baseline"`

	// TransitionPopulation is the first population whose memory exceeded the
	// baseline by the configured threshold; 0 when growth never left the
	// flat region.
	TransitionPopulation int `json:"transitionPopulation,omitempty"`

	// SlopeKbPerUnit is the least-squares slope over the linear region.
	SlopeKbPerUnit Stat `json:"slopeKbPerUnit"`

	// LargestPopulation is the largest successfully sampled population.
	LargestPopulation int `json:"largestPopulation"`

	// PerUnitKb is residentKb(LargestPopulation) / LargestPopulation.
	PerUnitKb Stat `json:"perUnitKb"`

	// PerUnitInterval is the repeat-based confidence interval on PerUnitKb;
	// unavailable with fewer than two repeats.
	PerUnitInterval Interval `json:"perUnitInterval"`

	// RequestedSamples and UsedSamples let the caller see how complete the
	// underlying data was.
	RequestedSamples int `json:"requestedSamples"`
	UsedSamples      int `json:"usedSamples"`

	// ShortSample flags any report computed from fewer samples than
	// requested.
	ShortSample bool `json:"shortSample"`
}

// Estimate computes a report over one sweep's records. requested is the
// number of samples the sweep attempted; it drives the ShortSample flag.
func Estimate(records []model.RunRecord, requested int, cfg Config) (*Report, error) {
	return EstimateRepeats([][]model.RunRecord{records}, requested, cfg)
}

// EstimateRepeats computes a report over repeated sweeps of the same
// sequence. Region statistics use the first repetition's view of each
// population (repeats agree within tolerance by construction); the
// confidence interval uses the explicit per-repetition per-unit values at the
// largest population every repetition sampled.
func EstimateRepeats(repeats [][]model.RunRecord, requested int, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	merged := mergeRepeats(repeats)
	if len(merged) == 0 {
		return nil, fmt.Errorf("no valid samples to estimate from")
	}

	report := &Report{
		RequestedSamples: requested,
		UsedSamples:      len(merged),
		ShortSample:      requested > 0 && len(merged) < requested,
	}

	transitionIdx := transitionIndex(merged, cfg.TransitionThreshold)
	report.Baseline = baseline(merged, transitionIdx)
	if transitionIdx < len(merged) {
		report.TransitionPopulation = merged[transitionIdx].population
	}
	report.SlopeKbPerUnit = slope(merged[transitionIdx:])

	largest := merged[len(merged)-1]
	report.LargestPopulation = largest.population
	report.PerUnitKb = Stat{
		Value:     largest.mean() / float64(largest.population),
		Samples:   len(largest.residentKb),
		Available: true,
	}
	report.PerUnitInterval = confidenceInterval(largest.perUnit(), cfg.ConfidenceLevel)
	return report, nil
}

// sample aggregates all repeat observations at one population size.
type sample struct {
	population int
	residentKb []float64
}

func (s sample) mean() float64 {
	return mean(s.residentKb)
}

func (s sample) perUnit() []float64 {
	values := make([]float64, 0, len(s.residentKb))
	for _, kb := range s.residentKb {
		values = append(values, kb/float64(s.population))
	}
	return values
}

func mergeRepeats(repeats [][]model.RunRecord) []sample {
	byPopulation := map[int]*sample{}
	for _, records := range repeats {
		for _, record := range records {
			if record.Population < 1 || record.ResidentKb <= 0 {
				continue
			}
			entry, ok := byPopulation[record.Population]
			if !ok {
				entry = &sample{population: record.Population}
				byPopulation[record.Population] = entry
			}
			entry.residentKb = append(entry.residentKb, float64(record.ResidentKb))
		}
	}
	merged := make([]sample, 0, len(byPopulation))
	for _, entry := range byPopulation {
		merged = append(merged, *entry)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].population < merged[j].population })
	return merged
}

// transitionIndex returns the index of the first sample whose memory exceeds
// the small-N reference by the relative threshold, or len(samples) when
// growth never leaves the flat region.
func transitionIndex(samples []sample, threshold float64) int {
	reference := samples[0].mean()
	for i, s := range samples {
		if s.mean() > reference*(1+threshold) {
			return i
		}
	}
	return len(samples)
}

// baseline averages the flat-region samples below the transition point.
func baseline(samples []sample, transitionIdx int) Stat {
	flat := samples[:transitionIdx]
	if len(flat) == 0 {
		return Stat{}
	}
	var values []float64
	for _, s := range flat {
		values = append(values, s.residentKb...)
	}
	return Stat{Value: mean(values), Samples: len(values), Available: true}
}

// slope fits residentKb = a + b*population over the linear region by least
// squares and reports b. At least two distinct populations are required.
func slope(linear []sample) Stat {
	if len(linear) < 2 {
		return Stat{Samples: len(linear)}
	}
	var sumX, sumY, sumXX, sumXY float64
	n := float64(len(linear))
	for _, s := range linear {
		x := float64(s.population)
		y := s.mean()
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
	}
	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return Stat{Samples: len(linear)}
	}
	b := (n*sumXY - sumX*sumY) / denominator
	return Stat{Value: b, Samples: len(linear), Available: true}
}

// confidenceInterval computes mean ± margin over the supplied values using a
// t-distribution critical value for small sample counts and the normal
// approximation beyond 30 degrees of freedom.
func confidenceInterval(values []float64, level float64) Interval {
	if len(values) < 2 {
		return Interval{Level: level, Samples: len(values)}
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(values) - 1)
	standardError := math.Sqrt(variance / float64(len(values)))
	return Interval{
		Mean:      m,
		Margin:    critical(level, len(values)-1) * standardError,
		Level:     level,
		Samples:   len(values),
		Available: true,
	}
}

func mean(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

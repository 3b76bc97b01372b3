package align

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// Config is the recognized configuration surface (spec.md §6). It is a
// plain struct passed explicitly to NewFacade — no package-level mutable
// state is required or permitted in the core (spec.md §5/§9).
type Config struct {
	Strategy AlignmentStrategy

	QualityThreshold float64 // Q ∈ [0,1], default 0.85

	FixDrift      bool
	FixOverlaps   bool
	OverlapPolicy OverlapPolicy

	MaxSegmentsPerAyah int // K, default 6

	CascadeThreshold  float64 // C, default 0.7
	MinCascadeLength  int     // default 2

	LongAyahWords     int     // default 30
	LongAyahDurationS float64 // default 30.0
}

// DefaultConfig returns the defaults listed in spec.md §6.
func DefaultConfig() Config {
	return Config{
		Strategy:           StrategyHybrid,
		QualityThreshold:   0.85,
		FixDrift:           true,
		FixOverlaps:        true,
		OverlapPolicy:      OverlapPolicyShiftLaterStart,
		MaxSegmentsPerAyah: defaultMaxSegmentsPerAyah,
		CascadeThreshold:   0.7,
		MinCascadeLength:   2,
		LongAyahWords:      30,
		LongAyahDurationS:  30.0,
	}
}

// RunReport summarizes one Align call end-to-end: identifying metadata,
// aggregate quality statistics, and counts from each repair pass. It
// supplements HybridStats (which only applies to the hybrid strategy)
// with a report that applies to every strategy (spec.md §3, §10).
type RunReport struct {
	RunID    string
	Strategy AlignmentStrategy

	MeanSimilarity   float64
	StdDevSimilarity float64

	CascadesRecovered int
	ZonesRealigned    int
	OverlapsFixed     int

	Stats    *HybridStats
	Warnings []string
}

// Facade is the single entry point any external collaborator should
// depend on (spec.md §4.9). It selects a strategy, chains post-processing
// passes, and returns each run's statistics in that call's RunReport; it
// keeps no state from earlier runs.
type Facade struct {
	cfg Config
}

// NewFacade constructs a Facade with the given configuration.
func NewFacade(cfg Config) *Facade {
	return &Facade{cfg: cfg}
}

// Align aligns segments to ayahs, applying the configured strategy and
// post-processing passes (spec.md §4.9). Segments not tagged
// SegmentSourceAyah are ignored (spec.md §6). ctx is checked between
// sūra-level stages only; there are no suspension points inside a single
// pass (spec.md §5).
func (f *Facade) Align(ctx context.Context, segments []Segment, ayahs []Ayah, silences []SilenceInterval, onProgress ProgressFunc) ([]AlignmentResult, *RunReport, error) {
	filtered := filterAyahBearing(segments)

	if err := validateInputs(filtered, ayahs, silences); err != nil {
		return nil, nil, err
	}

	if len(filtered) == 0 || len(ayahs) == 0 {
		return nil, nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	results, stats := f.runStrategy(filtered, ayahs, silences, onProgress)

	if len(results) < len(ayahs) {
		results = recoverInfeasibleTail(filtered, ayahs, results)
		if len(results) < len(ayahs) {
			report := f.buildReport(results, stats, 0, 0, 0)
			return results, report, infeasiblef("aligned %d of %d ayahs", len(results), len(ayahs))
		}
	}

	if err := ctx.Err(); err != nil {
		return results, f.buildReport(results, stats, 0, 0, 0), err
	}

	results = applyCascadeRecovery(filtered, ayahs, results, silences, f.cfg)
	cascadesRecovered := countSource(results, ResultSourceCascadeRecovery)

	zonesRealigned := 0
	if f.cfg.FixDrift {
		if err := ctx.Err(); err == nil {
			var n1, n2 int
			results, n1 = realignProblemZones(results, filtered, silences, f.cfg)
			results, n2 = realignFromAnchors(results, filtered, silences, f.cfg)
			zonesRealigned = n1 + n2
		}
	}

	overlapsFixed := 0
	if f.cfg.FixOverlaps {
		overlapsFixed = fixOverlaps(results, f.cfg.OverlapPolicy)
	}

	report := f.buildReport(results, stats, cascadesRecovered, zonesRealigned, overlapsFixed)
	return results, report, nil
}

// runStrategy dispatches to the configured top-level strategy.
func (f *Facade) runStrategy(segments []Segment, ayahs []Ayah, silences []SilenceInterval, onProgress ProgressFunc) ([]AlignmentResult, *HybridStats) {
	switch f.cfg.Strategy {
	case StrategyGreedy:
		return alignGreedy(segments, ayahs), nil
	case StrategyDP:
		dp := alignDP(segments, ayahs, silences, f.cfg.MaxSegmentsPerAyah, onProgress)
		return dp.results, nil
	default:
		results, stats := alignHybrid(segments, ayahs, silences, f.cfg, onProgress)
		return results, &stats
	}
}

// recoverInfeasibleTail falls back to the greedy aligner for whatever
// āyāt a DP-based strategy failed to reach (spec.md §4.4 Failure / §7).
func recoverInfeasibleTail(segments []Segment, ayahs []Ayah, partial []AlignmentResult) []AlignmentResult {
	if len(partial) >= len(ayahs) {
		return partial
	}

	consumedSegments := 0
	if len(partial) > 0 {
		last := partial[len(partial)-1]
		for i, s := range segments {
			if s.End <= last.End {
				consumedSegments = i + 1
			}
		}
	}

	remainingSegments := segments[consumedSegments:]
	remainingAyahs := ayahs[len(partial):]

	tail := alignGreedy(remainingSegments, remainingAyahs)
	return append(append([]AlignmentResult{}, partial...), tail...)
}

func filterAyahBearing(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, s := range segments {
		if s.Source == SegmentSourceAyah {
			out = append(out, s)
		}
	}
	return out
}

func countSource(results []AlignmentResult, source ResultSource) int {
	n := 0
	for _, r := range results {
		if r.Source == source {
			n++
		}
	}
	return n
}

func (f *Facade) buildReport(results []AlignmentResult, stats *HybridStats, cascades, zones, overlaps int) *RunReport {
	runID := uuid.New().String()

	sims := make([]float64, len(results))
	for i, r := range results {
		sims[i] = r.Similarity
	}

	var mean, stdDev float64
	if len(sims) > 0 {
		mean, stdDev = stat.MeanStdDev(sims, nil)
	}

	var warnings []string
	if stats != nil && stats.StillLow > 0 {
		warnings = append(warnings, fmt.Sprintf("%s: %d ayah(s) remained below quality threshold", ErrQualityWarning, stats.StillLow))
	}

	log.Printf("align: run %s strategy=%s ayahs=%d mean_sim=%.3f cascades=%d zones=%d overlaps=%d",
		runID, f.cfg.Strategy, len(results), mean, cascades, zones, overlaps)

	return &RunReport{
		RunID:             runID,
		Strategy:          f.cfg.Strategy,
		MeanSimilarity:    mean,
		StdDevSimilarity:  stdDev,
		CascadesRecovered: cascades,
		ZonesRealigned:    zones,
		OverlapsFixed:     overlaps,
		Stats:             stats,
		Warnings:          warnings,
	}
}

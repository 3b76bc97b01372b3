package config

import "flag"

// Config is the flag-parsed configuration for cmd/alignsurah. The core
// align.Config (strategy thresholds, pass toggles) is a plain struct built
// by the caller from this, mirroring the teacher's split between
// internal/config (CLI surface) and the library's own runtime config
// (spec.md §10's "library configuration is constructed by callers, not
// parsed from flags, inside the core").
type Config struct {
	SegmentsPath string
	AyahsPath    string
	SilencesPath string

	Strategy string

	QualityThreshold   float64
	FixDrift           bool
	FixOverlaps        bool
	OverlapPolicy      string
	MaxSegmentsPerAyah int
	CascadeThreshold   float64
	MinCascadeLength   int
	LongAyahWords      int
	LongAyahDurationS  float64

	Serve bool
	Addr  string
}

// Load parses the process's command-line flags into a Config.
func Load() *Config {
	segmentsPath := flag.String("segments", "segments.json", "Path to the transcribed-segments JSON fixture")
	ayahsPath := flag.String("ayahs", "ayahs.json", "Path to the canonical-ayahs JSON fixture")
	silencesPath := flag.String("silences", "", "Path to the silence-intervals JSON fixture (optional)")

	strategy := flag.String("strategy", "hybrid", "Alignment strategy: greedy, dp, or hybrid")
	qualityThreshold := flag.Float64("quality-threshold", 0.85, "Similarity threshold above which an alignment is considered acceptable")
	fixDrift := flag.Bool("fix-drift", true, "Run the zone realigner drift-repair pass")
	fixOverlaps := flag.Bool("fix-overlaps", true, "Run the overlap fixer pass")
	overlapPolicy := flag.String("overlap-policy", "shift_later_start", "Overlap-fix direction: shift_later_start or shift_earlier_end")
	maxSegmentsPerAyah := flag.Int("max-segments-per-ayah", 6, "Maximum number of segments the DP aligner may merge into one ayah")
	cascadeThreshold := flag.Float64("cascade-threshold", 0.7, "Similarity below which an ayah counts toward a cascade")
	minCascadeLength := flag.Int("min-cascade-length", 2, "Minimum run length to treat as a cascade")
	longAyahWords := flag.Int("long-ayah-words", 30, "Word count above which an ayah is eligible for split-and-restitch")
	longAyahDurationS := flag.Float64("long-ayah-duration", 30.0, "Duration in seconds above which an ayah is eligible for split-and-restitch")

	serve := flag.Bool("serve", false, "Start the HTTP+WebSocket API server instead of running one fixture alignment")
	addr := flag.String("addr", ":8080", "Listen address for -serve")

	flag.Parse()

	return &Config{
		SegmentsPath: *segmentsPath,
		AyahsPath:    *ayahsPath,
		SilencesPath: *silencesPath,

		Strategy: *strategy,

		QualityThreshold:   *qualityThreshold,
		FixDrift:           *fixDrift,
		FixOverlaps:        *fixOverlaps,
		OverlapPolicy:      *overlapPolicy,
		MaxSegmentsPerAyah: *maxSegmentsPerAyah,
		CascadeThreshold:   *cascadeThreshold,
		MinCascadeLength:   *minCascadeLength,
		LongAyahWords:      *longAyahWords,
		LongAyahDurationS:  *longAyahDurationS,

		Serve: *serve,
		Addr:  *addr,
	}
}

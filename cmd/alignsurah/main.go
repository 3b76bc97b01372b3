// Demonstration driver for the alignment core: loads a sūra's segments,
// āyāt, and silences from JSON fixture files standing in for the
// transcription/silence-detection/canonical-text collaborators (spec.md
// §1's "out of scope" boundary; this is fixture loading, not ingestion),
// runs align.Facade.Align, and prints a human-readable report. Modeled
// directly on the teacher's cmd/testfull/main.go: a log.Println-narrated,
// flag-configured, single-purpose main().
//
// Run: go run ./cmd/alignsurah -segments segments.json -ayahs ayahs.json
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"munajjam/align"
	"munajjam/internal/api"
	"munajjam/internal/config"
)

type fixtureSegment struct {
	ID         int      `json:"id"`
	SurahID    int      `json:"surahId"`
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Text       string   `json:"text"`
	Source     string   `json:"source"`
	Confidence *float32 `json:"confidence,omitempty"`
}

type fixtureAyah struct {
	Number  int    `json:"number"`
	SurahID int    `json:"surahId"`
	Text    string `json:"text"`
}

type fixtureSilence struct {
	StartMS int64 `json:"startMs"`
	EndMS   int64 `json:"endMs"`
}

func main() {
	cfg := config.Load()

	if cfg.Serve {
		serve(cfg)
		return
	}

	log.Println("=== Sūra alignment ===")

	segments := loadSegments(cfg.SegmentsPath)
	ayahs := loadAyahs(cfg.AyahsPath)
	silences := loadSilences(cfg.SilencesPath)

	log.Printf("loaded %d segments, %d ayahs, %d silence intervals", len(segments), len(ayahs), len(silences))

	facade := align.NewFacade(alignConfig(cfg))

	onProgress := func(current, total int) {
		log.Printf("progress: %d/%d ayahs", current, total)
	}

	results, report, err := facade.Align(context.Background(), segments, ayahs, silences, onProgress)
	if err != nil {
		log.Printf("alignment error: %v", err)
		if len(results) == 0 {
			os.Exit(1)
		}
	}

	log.Println()
	log.Println("=== Results ===")
	for _, r := range results {
		log.Printf("ayah %3d [%6.2f-%6.2f] sim=%.3f src=%-6s overlap=%v text=%q",
			r.Ayah.Number, r.Start, r.End, r.Similarity, r.Source, r.Overlap, r.Text)
	}

	log.Println()
	log.Println("=== Report ===")
	if report != nil {
		log.Printf("run %s strategy=%s mean_sim=%.3f stddev=%.3f",
			report.RunID, report.Strategy, report.MeanSimilarity, report.StdDevSimilarity)
		log.Printf("cascades_recovered=%d zones_realigned=%d overlaps_fixed=%d",
			report.CascadesRecovered, report.ZonesRealigned, report.OverlapsFixed)
		if report.Stats != nil {
			log.Printf("hybrid stats: total=%d dp_kept=%d greedy_fallback=%d split_improved=%d still_low=%d",
				report.Stats.Total, report.Stats.DPKept, report.Stats.GreedyFallback,
				report.Stats.SplitImproved, report.Stats.StillLow)
		}
		for _, w := range report.Warnings {
			log.Printf("warning: %s", w)
		}
	}
}

// serve starts the HTTP+WebSocket API server around a facade built from
// cfg, instead of running one fixture alignment (SPEC_FULL.md §10/§11).
func serve(cfg *config.Config) {
	facade := align.NewFacade(alignConfig(cfg))
	srv := api.NewServer(facade)
	if err := srv.Start(cfg.Addr); err != nil {
		log.Fatalf("api server: %v", err)
	}
}

func alignConfig(cfg *config.Config) align.Config {
	return align.Config{
		Strategy:           align.AlignmentStrategy(cfg.Strategy),
		QualityThreshold:   cfg.QualityThreshold,
		FixDrift:           cfg.FixDrift,
		FixOverlaps:        cfg.FixOverlaps,
		OverlapPolicy:      align.OverlapPolicy(cfg.OverlapPolicy),
		MaxSegmentsPerAyah: cfg.MaxSegmentsPerAyah,
		CascadeThreshold:   cfg.CascadeThreshold,
		MinCascadeLength:   cfg.MinCascadeLength,
		LongAyahWords:      cfg.LongAyahWords,
		LongAyahDurationS:  cfg.LongAyahDurationS,
	}
}

func loadSegments(path string) []align.Segment {
	var fixtures []fixtureSegment
	readJSONFile(path, &fixtures)

	out := make([]align.Segment, len(fixtures))
	for i, f := range fixtures {
		confidence := align.None[float32]()
		if f.Confidence != nil {
			confidence = align.Some(*f.Confidence)
		}
		out[i] = align.Segment{
			ID:         f.ID,
			SurahID:    f.SurahID,
			Start:      f.Start,
			End:        f.End,
			Text:       f.Text,
			Source:     api.SegmentSourceFromString(f.Source),
			Confidence: confidence,
		}
	}
	return out
}

func loadAyahs(path string) []align.Ayah {
	var fixtures []fixtureAyah
	readJSONFile(path, &fixtures)

	out := make([]align.Ayah, len(fixtures))
	for i, f := range fixtures {
		out[i] = align.Ayah{Number: f.Number, SurahID: f.SurahID, Text: f.Text}
	}
	return out
}

func loadSilences(path string) []align.SilenceInterval {
	if path == "" {
		return nil
	}
	var fixtures []fixtureSilence
	readJSONFile(path, &fixtures)

	out := make([]align.SilenceInterval, len(fixtures))
	for i, f := range fixtures {
		out[i] = align.SilenceInterval{StartMS: f.StartMS, EndMS: f.EndMS}
	}
	return out
}

func readJSONFile(path string, v any) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		log.Fatalf("decoding %s: %v", path, err)
	}
}

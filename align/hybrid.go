package align

import "strings"

const splitImprovementMargin = 0.05

// alignHybrid runs the DP aligner over the whole sūra, then for each
// below-quality result tries split-and-restitch (long āyāt only) and the
// greedy aligner's result for the same āya, keeping whichever source
// scores highest (spec.md §4.6).
func alignHybrid(segments []Segment, ayahs []Ayah, silences []SilenceInterval, cfg Config, onProgress ProgressFunc) ([]AlignmentResult, HybridStats) {
	stats := HybridStats{Total: len(ayahs)}

	dp := alignDP(segments, ayahs, silences, cfg.MaxSegmentsPerAyah, onProgress)
	if len(dp.results) == 0 {
		greedy := alignGreedy(segments, ayahs)
		stats.GreedyFallback = len(greedy)
		return greedy, stats
	}

	greedyResults := alignGreedy(segments, ayahs)
	greedyByAyah := make(map[int]AlignmentResult, len(greedyResults))
	for _, r := range greedyResults {
		greedyByAyah[r.Ayah.Number] = r
	}

	final := make([]AlignmentResult, 0, len(dp.results))
	for _, dpR := range dp.results {
		ayah := dpR.Ayah
		if dpR.Similarity >= cfg.QualityThreshold {
			final = append(final, dpR)
			stats.DPKept++
			continue
		}

		best := dpR
		source := "dp"

		if isLongAyah(ayah.Text, dpR.End-dpR.Start, cfg) {
			if split, ok := trySplitAndRestitch(segments, ayah, dpR, silences); ok && split.Similarity > best.Similarity {
				best = split
				source = "split"
			}
		}

		if g, ok := greedyByAyah[ayah.Number]; ok && g.Similarity > best.Similarity {
			best = g
			source = "greedy"
		}

		switch {
		case source == "greedy":
			stats.GreedyFallback++
		case source == "split":
			stats.SplitImproved++
		case best.Similarity < cfg.QualityThreshold:
			stats.StillLow++
		default:
			stats.DPKept++
		}

		final = append(final, best)
	}

	return final, stats
}

func isLongAyah(ayahText string, duration float64, cfg Config) bool {
	wordCount := len(strings.Fields(ayahText))
	return wordCount > cfg.LongAyahWords || duration > cfg.LongAyahDurationS
}

// trySplitAndRestitch rebuilds a long āya's merged text by joining chunks
// separated at silence boundaries within the DP result's time range, and
// accepts the rebuilt text only if it improves similarity by more than
// splitImprovementMargin (spec.md §4.6, step 1).
func trySplitAndRestitch(segments []Segment, ayah Ayah, dpResult AlignmentResult, silences []SilenceInterval) (AlignmentResult, bool) {
	if len(silences) == 0 {
		return AlignmentResult{}, false
	}

	silSec := toSilenceSec(silences)
	chunks := splitSegmentsAtSilences(segments, silSec, dpResult.Start, dpResult.End)
	if len(chunks) <= 1 {
		return AlignmentResult{}, false
	}

	var chunkTexts []string
	for _, chunk := range chunks {
		text := joinSegmentTexts(chunk)
		if strings.TrimSpace(text) != "" {
			chunkTexts = append(chunkTexts, text)
		}
	}
	if len(chunkTexts) == 0 {
		return AlignmentResult{}, false
	}

	mergedText := strings.Join(chunkTexts, " ")
	newSim := Similarity(mergedText, ayah.Text)
	if newSim <= dpResult.Similarity+splitImprovementMargin {
		return AlignmentResult{}, false
	}

	return AlignmentResult{
		Ayah:       ayah,
		Start:      dpResult.Start,
		End:        dpResult.End,
		Text:       mergedText,
		Similarity: newSim,
		Overlap:    dpResult.Overlap,
		Source:     ResultSourceSplitRestitch,
	}, true
}

// findSilencesInRange returns the silence intervals (clipped to the
// range) that overlap [start,end] by at least minDuration seconds.
func findSilencesInRange(silences []silenceSec, start, end, minDuration float64) []silenceSec {
	var out []silenceSec
	for _, s := range silences {
		if s.end <= start || s.start >= end {
			continue
		}
		clippedStart := maxF(s.start, start)
		clippedEnd := minF(s.end, end)
		if clippedEnd-clippedStart >= minDuration {
			out = append(out, silenceSec{start: clippedStart, end: clippedEnd})
		}
	}
	return out
}

// splitSegmentsAtSilences partitions the segments covering [start,end]
// into chunks separated at silence boundaries (spec.md §4.6, step 1).
func splitSegmentsAtSilences(segments []Segment, silences []silenceSec, start, end float64) [][]Segment {
	var rangeSegments []Segment
	for _, s := range segments {
		if s.Start >= start-0.5 && s.End <= end+0.5 {
			rangeSegments = append(rangeSegments, s)
		}
	}
	if len(rangeSegments) == 0 {
		return nil
	}

	sils := findSilencesInRange(silences, start, end, 0.2)
	if len(sils) == 0 {
		return [][]Segment{rangeSegments}
	}

	var chunks [][]Segment
	var current []Segment
	silIdx := 0

	for _, seg := range rangeSegments {
		if silIdx >= len(sils) {
			current = append(current, seg)
			continue
		}
		sil := sils[silIdx]
		switch {
		case seg.End <= sil.start:
			current = append(current, seg)
		case seg.Start >= sil.end:
			if len(current) > 0 {
				chunks = append(chunks, current)
			}
			current = []Segment{seg}
			silIdx++
		default:
			current = append(current, seg)
			chunks = append(chunks, current)
			current = nil
			silIdx++
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	if len(chunks) == 0 {
		return [][]Segment{rangeSegments}
	}
	return chunks
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

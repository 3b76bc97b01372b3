package align

const cascadeContextAyahs = 1

// findCascadeSequences finds maximal runs of >= minLen consecutive results
// with similarity below threshold (spec.md §4.7). Returns half-open
// [start,end) index ranges.
func findCascadeSequences(results []AlignmentResult, threshold float64, minLen int) [][2]int {
	var cascades [][2]int
	i := 0
	for i < len(results) {
		if results[i].Similarity < threshold {
			start := i
			for i < len(results) && results[i].Similarity < threshold {
				i++
			}
			if i-start >= minLen {
				cascades = append(cascades, [2]int{start, i})
			}
		} else {
			i++
		}
	}
	return cascades
}

// applyCascadeRecovery detects cascades and, for each, attempts a
// conservative local re-solve, replacing the affected slice only if the
// acceptance gate passes. Cascades are processed right-to-left so earlier
// indices remain valid (spec.md §4.7).
func applyCascadeRecovery(segments []Segment, ayahs []Ayah, results []AlignmentResult, silences []SilenceInterval, cfg Config) []AlignmentResult {
	if len(results) == 0 {
		return results
	}

	cascades := findCascadeSequences(results, cfg.CascadeThreshold, cfg.MinCascadeLength)
	if len(cascades) == 0 {
		return results
	}

	improved := append([]AlignmentResult(nil), results...)

	for ci := len(cascades) - 1; ci >= 0; ci-- {
		start, end := cascades[ci][0], cascades[ci][1]
		if candidate, ok := recoverCascade(segments, ayahs, improved, start, end, silences); ok {
			extStart := maxInt(0, start-cascadeContextAyahs)
			extEnd := minInt(len(improved), end+cascadeContextAyahs)
			rebuilt := make([]AlignmentResult, 0, len(improved)-(extEnd-extStart)+len(candidate))
			rebuilt = append(rebuilt, improved[:extStart]...)
			rebuilt = append(rebuilt, candidate...)
			rebuilt = append(rebuilt, improved[extEnd:]...)
			improved = rebuilt
		}
	}

	return improved
}

// recoverCascade attempts to re-solve the cascade [cascadeStart,cascadeEnd)
// plus one āya of context on each side, constrained to the segments whose
// time interval falls within that window (spec.md §4.7). It returns the
// candidate replacement slice (covering the extended window) only if the
// conservative acceptance gate accepts it.
func recoverCascade(segments []Segment, ayahs []Ayah, results []AlignmentResult, cascadeStart, cascadeEnd int, silences []SilenceInterval) ([]AlignmentResult, bool) {
	extStart := maxInt(0, cascadeStart-cascadeContextAyahs)
	extEnd := minInt(len(results), cascadeEnd+cascadeContextAyahs)

	segStartTime := results[extStart].Start
	segEndTime := results[extEnd-1].End

	var rangeLo, rangeHi = -1, -1
	for idx, seg := range segments {
		if seg.Start >= segStartTime-0.5 && seg.End <= segEndTime+0.5 {
			if rangeLo == -1 {
				rangeLo = idx
			}
			rangeHi = idx
		}
	}
	if rangeLo == -1 {
		return nil, false
	}

	subSegments := segments[rangeLo : rangeHi+1]
	subAyahs := make([]Ayah, 0, extEnd-extStart)
	for i := extStart; i < extEnd; i++ {
		subAyahs = append(subAyahs, results[i].Ayah)
	}
	if len(subSegments) < len(subAyahs) {
		return nil, false
	}

	var relevantSilences []SilenceInterval
	for _, sil := range silences {
		startSec, _ := sil.Seconds()
		if startSec >= segStartTime && startSec <= segEndTime {
			relevantSilences = append(relevantSilences, sil)
		}
	}

	dpRes := solveDP(subSegments, subAyahs, relevantSilences, 6, nil)
	if !dpRes.feasible || len(dpRes.results) != len(subAyahs) {
		return nil, false
	}

	oldRange := results[extStart:extEnd]
	if !cascadeAcceptanceGate(oldRange, dpRes.results) {
		return nil, false
	}

	for i := range dpRes.results {
		dpRes.results[i].Source = ResultSourceCascadeRecovery
	}
	return dpRes.results, true
}

// cascadeAcceptanceGate implements the four-part conservative acceptance
// gate from spec.md §4.7.
func cascadeAcceptanceGate(old, candidate []AlignmentResult) bool {
	if len(old) != len(candidate) {
		return false
	}

	for i := range old {
		drop := old[i].Similarity - candidate[i].Similarity

		if old[i].Similarity >= 0.75 && drop > 0.08 {
			return false
		}
		if old[i].Similarity >= 0.50 && drop > 0.12 {
			return false
		}
		if old[i].Similarity >= 0.75 && candidate[i].Similarity < 0.70 {
			return false
		}
	}

	cascadeLo, cascadeHi := 0, len(old)
	if len(old) > 2 {
		cascadeLo = cascadeContextAyahs
		cascadeHi = len(old) - cascadeContextAyahs
	}
	if cascadeHi <= cascadeLo {
		return false
	}

	var oldSum, newSum float64
	for i := cascadeLo; i < cascadeHi; i++ {
		oldSum += old[i].Similarity
		newSum += candidate[i].Similarity
	}
	n := float64(cascadeHi - cascadeLo)
	oldAvg, newAvg := oldSum/n, newSum/n

	return newAvg > oldAvg+0.08
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

package align

import (
	"math"
	"strings"
)

// ProgressFunc is invoked synchronously on the aligning goroutine to report
// coarse progress. It must not block for long and must not mutate its
// caller's inputs (spec.md §5). Panics from a caller-supplied ProgressFunc
// are recovered and ignored (spec.md §7); see progress.go.
type ProgressFunc func(current, total int)

const (
	defaultMaxSegmentsPerAyah = 6
	relaxedMaxSegmentsPerAyah = 8
	tieEpsilon                = 1e-9
)

// dpResult is the outcome of one DP solve attempt.
type dpResult struct {
	results  []AlignmentResult
	feasible bool // true if every āya in ayahs received a result
}

// alignDP runs the DP aligner over the full segment/āya range (spec.md
// §4.4): dp[i][j] = minimum cost to assign the first i segments to the
// first j āyāt, transitioning over group sizes k in [1,K]. On infeasibility
// it relaxes K once (K+2) before giving up and returning the best partial
// prefix it reached.
func alignDP(segments []Segment, ayahs []Ayah, silences []SilenceInterval, maxK int, onProgress ProgressFunc) dpResult {
	if len(segments) == 0 || len(ayahs) == 0 {
		return dpResult{}
	}

	res := solveDP(segments, ayahs, silences, maxK, onProgress)
	if res.feasible {
		return res
	}

	relaxed := solveDP(segments, ayahs, silences, maxK+2, onProgress)
	if relaxed.feasible {
		return relaxed
	}

	// Still infeasible: return whichever partial attempt covered more
	// āyāt, preferring the relaxed attempt on a tie since it searched a
	// wider K.
	if len(relaxed.results) >= len(res.results) {
		return relaxed
	}
	return res
}

// solveDP performs one DP solve attempt at a fixed K.
func solveDP(segments []Segment, ayahs []Ayah, silences []SilenceInterval, maxK int, onProgress ProgressFunc) dpResult {
	n, m := len(segments), len(ayahs)
	width := m + 1
	silSec := toSilenceSec(silences)
	cache := newSimilarityCache()

	dp := make([]float64, (n+1)*width)
	back := make([]int16, (n+1)*width)
	for idx := range dp {
		dp[idx] = math.Inf(1)
	}
	dp[0*width+0] = 0

	for j := 1; j <= m; j++ {
		ayah := ayahs[j-1]
		lo := j
		hi := n - (m - j)
		if hi > n {
			hi = n
		}
		prevHi := n - (m - (j - 1))

		for i := lo; i <= hi; i++ {
			bestCost := math.Inf(1)
			bestK := 0
			bestPrevI := -1

			kmax := maxK
			if kmax > i {
				kmax = i
			}
			for k := 1; k <= kmax; k++ {
				prevI := i - k
				if prevI < j-1 || prevI > prevHi {
					continue
				}
				prevCost := dp[prevI*width+(j-1)]
				if math.IsInf(prevCost, 1) {
					continue
				}

				mergedText := joinSegmentTexts(segments[prevI:i])
				if strings.TrimSpace(mergedText) == "" {
					continue
				}

				edgeCost := cache.get(prevI, i, j-1, func() float64 {
					return alignmentCost(mergedText, ayah.Text)
				})
				if endsNearSilence(segments[i-1].End, silSec) {
					edgeCost -= silenceBonus
				}

				total := prevCost + edgeCost

				if betterTransition(total, bestCost, k, bestK, prevI, bestPrevI) {
					bestCost = total
					bestK = k
					bestPrevI = prevI
				}
			}

			dp[i*width+j] = bestCost
			back[i*width+j] = int16(bestK)
		}

		if onProgress != nil {
			callProgress(onProgress, j, m)
		}
	}

	terminal, throughCol, ok := bestTerminal(dp, n, m, width)
	if !ok {
		return dpResult{feasible: false}
	}

	results := backtrack(segments, ayahs, back, width, terminal, throughCol)
	return dpResult{results: results, feasible: throughCol == m}
}

// betterTransition implements the tie-break rule from spec.md §4.4:
// lower cost wins; ties are broken in favor of the larger k (longer
// grouping), then by earlier start (smaller prevI).
func betterTransition(cost, bestCost float64, k, bestK, prevI, bestPrevI int) bool {
	if bestK == 0 {
		return true
	}
	if cost < bestCost-tieEpsilon {
		return true
	}
	if cost > bestCost+tieEpsilon {
		return false
	}
	if k != bestK {
		return k > bestK
	}
	return prevI < bestPrevI
}

// bestTerminal finds the terminal row n* <= n with the lowest finite cost
// at column m, preferring more segment coverage (larger n*) on a tie. A row
// n* < n leaves the trailing segments unassigned; it is chosen whenever its
// cost is lower than that of row n, not only when row n is unreachable.
//
// When column m has no reachable finite-cost cell (the DP cannot complete
// all m āyāt, even after alignDP's K+2 relaxation), it falls back to the
// largest column j* < m that does, recovering the longest prefix of āyāt
// the DP could genuinely assign — spec.md §4.4's Failure clause: "if
// still infeasible it returns the best partial alignment it reached
// (prefix)". dp[0][0]=0 is always reachable, so this only returns !ok
// when n or m is zero.
func bestTerminal(dp []float64, n, m, width int) (i, throughCol int, ok bool) {
	for col := m; col >= 0; col-- {
		best := -1
		bestCost := math.Inf(1)
		for row := col; row <= n; row++ {
			c := dp[row*width+col]
			if math.IsInf(c, 1) {
				continue
			}
			if c < bestCost-tieEpsilon || (abs(c-bestCost) <= tieEpsilon && row > best) {
				bestCost = c
				best = row
			}
		}
		if best >= 0 {
			return best, col, true
		}
	}
	return 0, 0, false
}

// backtrack walks the backpointer table from (terminal, throughCol) to
// recover the per-āya segment groupings for āyāt [0,throughCol) and
// builds the final AlignmentResults in āya order, recomputing similarity
// on the final merged text. throughCol may be less than the full āya
// count m when bestTerminal could only reach a prefix.
func backtrack(segments []Segment, ayahs []Ayah, back []int16, width, terminal, throughCol int) []AlignmentResult {
	type group struct {
		start, end, ayahIdx int
	}
	var groups []group

	i, j := terminal, throughCol
	for j > 0 {
		k := int(back[i*width+j])
		if k == 0 {
			// No valid transition reached this cell; the partition is
			// broken here, stop backtracking (partial result).
			break
		}
		groups = append(groups, group{start: i - k, end: i, ayahIdx: j - 1})
		i -= k
		j--
	}

	results := make([]AlignmentResult, len(groups))
	for idx := len(groups) - 1; idx >= 0; idx-- {
		g := groups[idx]
		ayah := ayahs[g.ayahIdx]
		segGroup := segments[g.start:g.end]
		text := joinSegmentTexts(segGroup)
		sim := Similarity(text, ayah.Text)

		results[len(groups)-1-idx] = AlignmentResult{
			Ayah:       ayah,
			Start:      segGroup[0].Start,
			End:        segGroup[len(segGroup)-1].End,
			Text:       text,
			Similarity: sim,
			Source:     ResultSourceDP,
		}
	}
	return results
}

func joinSegmentTexts(segs []Segment) string {
	if len(segs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		if strings.TrimSpace(s.Text) != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}

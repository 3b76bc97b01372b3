package align

import "strings"

// tailMatchThreshold and headMatchThreshold are the end-of-āya cue
// thresholds from spec.md §4.5. The tail cue uses >=, the next-āya head
// cue uses a strict >, matching the spec's wording exactly.
const (
	tailMatchThreshold = 0.6
	headMatchThreshold = 0.6
)

// alignGreedy is the linear-time fallback aligner (spec.md §4.5): it
// accumulates segments into the current āya's buffer until an end-of-āya
// cue fires, never backtracking. It is not guaranteed optimal but always
// makes progress.
func alignGreedy(segments []Segment, ayahs []Ayah) []AlignmentResult {
	var results []AlignmentResult

	i := 0
	for ayahIdx := 0; ayahIdx < len(ayahs) && i < len(segments); ayahIdx++ {
		ayah := ayahs[ayahIdx]

		start := segments[i].Start
		end := segments[i].End
		merged := segments[i].Text
		overlap := false
		consumed := i

		for {
			if cueWordsMatch(lastWords(merged, tailWordCount(ayah.Text)), lastWords(ayah.Text, tailWordCount(ayah.Text)), tailMatchThreshold, false) {
				break
			}

			nextSegIdx := consumed + 1
			hasNextSeg := nextSegIdx < len(segments)
			hasNextAyah := ayahIdx+1 < len(ayahs)

			if hasNextSeg && hasNextAyah {
				nextAyah := ayahs[ayahIdx+1]
				n := tailWordCount(nextAyah.Text)
				if cueWordsMatch(firstWords(segments[nextSegIdx].Text, n), firstWords(nextAyah.Text, n), headMatchThreshold, true) {
					break
				}
			}

			if !hasNextSeg {
				break // end of input: emit whatever has been accumulated
			}

			mergedNext, overlapFound := removeOverlap(merged, segments[nextSegIdx].Text)
			merged = mergedNext
			if overlapFound {
				overlap = true
			}
			end = segments[nextSegIdx].End
			consumed = nextSegIdx
		}

		results = append(results, AlignmentResult{
			Ayah:       ayah,
			Start:      start,
			End:        end,
			Text:       merged,
			Similarity: Similarity(merged, ayah.Text),
			Overlap:    overlap,
			Source:     ResultSourceGreedy,
		})

		i = consumed + 1
	}

	return results
}

// cueWordsMatch normalizes both sides and compares with Similarity. strict
// selects a strict-greater-than comparison (the next-āya head cue); a
// non-strict (>=) comparison is used for the tail cue.
func cueWordsMatch(a, b string, threshold float64, strict bool) bool {
	sim := Similarity(a, b)
	if strict {
		return sim > threshold
	}
	return sim >= threshold
}

// tailWordCount returns N = min(3, wordcount(text)), the window size used
// for both the tail-match and next-āya head-match cues (spec.md §4.5).
func tailWordCount(text string) int {
	n := len(strings.Fields(Normalize(text)))
	if n > 3 {
		return 3
	}
	return n
}

// lastWords returns the last n normalized words of text, space-joined.
func lastWords(text string, n int) string {
	words := strings.Fields(Normalize(text))
	if n <= 0 || len(words) == 0 {
		return ""
	}
	if n > len(words) {
		n = len(words)
	}
	return strings.Join(words[len(words)-n:], " ")
}

// firstWords returns the first n normalized words of text, space-joined.
func firstWords(text string, n int) string {
	words := strings.Fields(Normalize(text))
	if n <= 0 || len(words) == 0 {
		return ""
	}
	if n > len(words) {
		n = len(words)
	}
	return strings.Join(words[:n], " ")
}

// removeOverlap merges next into current while dropping a leading run of
// next's tokens that duplicate tokens already present in current, using a
// multiset count built from current's tokens (spec.md §4.5): each
// duplicated token is dropped at most as many times as it appears in
// current. Dropping stops at the first token of next that has no
// remaining match, even if a later token would also duplicate one.
func removeOverlap(current, next string) (merged string, overlapFound bool) {
	currentTokens := strings.Fields(current)
	nextTokens := strings.Fields(next)

	counts := make(map[string]int, len(currentTokens))
	for _, t := range currentTokens {
		counts[Normalize(t)]++
	}

	dropping := true
	kept := make([]string, 0, len(nextTokens))
	for _, t := range nextTokens {
		nt := Normalize(t)
		if dropping && nt != "" && counts[nt] > 0 {
			counts[nt]--
			overlapFound = true
			continue
		}
		dropping = false
		kept = append(kept, t)
	}

	trimmedCurrent := strings.TrimSpace(current)
	if len(kept) == 0 {
		return trimmedCurrent, overlapFound
	}
	if trimmedCurrent == "" {
		return strings.Join(kept, " "), overlapFound
	}
	return trimmedCurrent + " " + strings.Join(kept, " "), overlapFound
}

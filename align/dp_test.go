package align

import "testing"

func twoAyahFixture() ([]Segment, []Ayah) {
	ayahs := []Ayah{
		{Number: 1, SurahID: 1, Text: "بسم الله الرحمن الرحيم"},
		{Number: 2, SurahID: 1, Text: "الحمد لله رب العالمين"},
	}
	segments := []Segment{
		{ID: 1, SurahID: 1, Start: 0.0, End: 3.0, Text: "بسم الله الرحمن الرحيم", Source: SegmentSourceAyah},
		{ID: 2, SurahID: 1, Start: 3.0, End: 6.0, Text: "الحمد لله رب العالمين", Source: SegmentSourceAyah},
	}
	return segments, ayahs
}

func TestAlignDPExactMatch(t *testing.T) {
	segments, ayahs := twoAyahFixture()
	res := alignDP(segments, ayahs, nil, 3, nil)
	if !res.feasible {
		t.Fatal("expected feasible DP solve")
	}
	if len(res.results) != 2 {
		t.Fatalf("got %d results, want 2", len(res.results))
	}
	for i, r := range res.results {
		if r.Similarity < 0.99 {
			t.Errorf("result %d similarity = %v, want ~1", i, r.Similarity)
		}
		if r.Ayah.Number != i+1 {
			t.Errorf("result %d ayah number = %d, want %d", i, r.Ayah.Number, i+1)
		}
	}
}

func TestAlignDPSplitAcrossSegments(t *testing.T) {
	ayahs := []Ayah{
		{Number: 1, SurahID: 1, Text: "الحمد لله رب العالمين"},
	}
	segments := []Segment{
		{ID: 1, SurahID: 1, Start: 0.0, End: 1.0, Text: "الحمد لله", Source: SegmentSourceAyah},
		{ID: 2, SurahID: 1, Start: 1.0, End: 2.0, Text: "رب العالمين", Source: SegmentSourceAyah},
	}
	res := alignDP(segments, ayahs, nil, 3, nil)
	if !res.feasible || len(res.results) != 1 {
		t.Fatalf("expected one feasible result, got %+v", res)
	}
	if res.results[0].Start != 0.0 || res.results[0].End != 2.0 {
		t.Errorf("result span = [%v,%v], want [0,2]", res.results[0].Start, res.results[0].End)
	}
	if res.results[0].Similarity < 0.99 {
		t.Errorf("expected merged text to match ayah, got similarity %v", res.results[0].Similarity)
	}
}

func TestAlignDPCoversAllSegmentsInOrder(t *testing.T) {
	segments, ayahs := twoAyahFixture()
	res := alignDP(segments, ayahs, nil, 3, nil)
	if len(res.results) != len(ayahs) || res.results[0].Start != segments[0].Start || res.results[len(res.results)-1].End != segments[len(segments)-1].End {
		t.Fatalf("results do not span every segment [%v,%v]: %+v", segments[0].Start, segments[len(segments)-1].End, res.results)
	}
	for i := 1; i < len(res.results); i++ {
		if res.results[i].Start < res.results[i-1].End {
			t.Errorf("result %d starts (%v) before result %d ends (%v)", i, res.results[i].Start, i-1, res.results[i-1].End)
		}
	}
}

func TestAlignDPEmptyInputs(t *testing.T) {
	res := alignDP(nil, nil, nil, 3, nil)
	if res.feasible || len(res.results) != 0 {
		t.Errorf("expected empty infeasible result for empty inputs, got %+v", res)
	}
}

func TestAlignDPProgressCallback(t *testing.T) {
	segments, ayahs := twoAyahFixture()
	var calls []int
	alignDP(segments, ayahs, nil, 3, func(current, total int) {
		calls = append(calls, current)
		if total != len(ayahs) {
			t.Errorf("progress total = %d, want %d", total, len(ayahs))
		}
	})
	if len(calls) != len(ayahs) {
		t.Errorf("progress called %d times, want %d", len(calls), len(ayahs))
	}
}

func TestBetterTransitionTieBreak(t *testing.T) {
	if !betterTransition(1.0, 1.0, 3, 2, 0, 0) {
		t.Error("expected larger k to win a cost tie")
	}
	if betterTransition(1.0, 1.0, 2, 3, 0, 0) {
		t.Error("expected smaller k to lose a cost tie")
	}
	if !betterTransition(0.5, 1.0, 1, 1, 0, 0) {
		t.Error("expected strictly lower cost to win")
	}
}

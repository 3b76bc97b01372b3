package align

import "testing"

func TestAlignHybridKeepsHighQualityDPResults(t *testing.T) {
	segments, ayahs := twoAyahFixture()
	cfg := DefaultConfig()
	results, stats := alignHybrid(segments, ayahs, nil, cfg, nil)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if stats.Total != 2 {
		t.Errorf("stats.Total = %d, want 2", stats.Total)
	}
	if stats.DPKept != 2 {
		t.Errorf("stats.DPKept = %d, want 2 (both exact matches)", stats.DPKept)
	}
}

func TestAlignHybridFallsBackToGreedyWhenDPEmpty(t *testing.T) {
	cfg := DefaultConfig()
	ayahs := []Ayah{{Number: 1, SurahID: 1, Text: "بسم الله"}}
	// No segments at all: DP has nothing to work with.
	results, stats := alignHybrid(nil, ayahs, nil, cfg, nil)
	if len(results) != 0 {
		t.Errorf("got %d results with no segments, want 0", len(results))
	}
	if stats.GreedyFallback != 0 {
		t.Errorf("GreedyFallback = %d, want 0 (nothing to fall back on)", stats.GreedyFallback)
	}
}

func TestIsLongAyah(t *testing.T) {
	cfg := DefaultConfig()
	longText := ""
	for i := 0; i < cfg.LongAyahWords+5; i++ {
		longText += "كلمة "
	}
	if !isLongAyah(longText, 1.0, cfg) {
		t.Error("expected word-count threshold to classify as long")
	}
	if !isLongAyah("قصير", cfg.LongAyahDurationS+1, cfg) {
		t.Error("expected duration threshold to classify as long")
	}
	if isLongAyah("قصير", 1.0, cfg) {
		t.Error("expected short ayah/short duration to not classify as long")
	}
}

func TestSplitSegmentsAtSilences(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1, End: 2, Text: "b"},
		{Start: 3, End: 4, Text: "c"},
	}
	sils := []silenceSec{{start: 2.0, end: 3.0}}
	chunks := splitSegmentsAtSilences(segments, sils, 0, 4)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if len(chunks[0]) != 2 || len(chunks[1]) != 1 {
		t.Errorf("chunk sizes = %d,%d want 2,1", len(chunks[0]), len(chunks[1]))
	}
}

func TestSplitSegmentsAtSilencesNoSilence(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1, End: 2, Text: "b"},
	}
	chunks := splitSegmentsAtSilences(segments, nil, 0, 2)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 (no silences to split on)", len(chunks))
	}
}

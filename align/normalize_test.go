package align

import "testing"

func TestNormalizeFoldsAlefVariants(t *testing.T) {
	variants := []string{"أحمد", "إحمد", "آحمد", "احمد"}
	want := Normalize(variants[3])
	for _, v := range variants {
		if got := Normalize(v); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestNormalizeFoldsYaAndTaMarbuta(t *testing.T) {
	if got, want := Normalize("مصطفى"), Normalize("مصطفي"); got != want {
		t.Errorf("ى not folded to ي: %q != %q", got, want)
	}
	if got, want := Normalize("رحمة"), Normalize("رحمه"); got != want {
		t.Errorf("ة not folded to ه: %q != %q", got, want)
	}
}

func TestNormalizeStripsDiacritics(t *testing.T) {
	bare := "الحمد لله رب العالمين"
	diacritized := "الْحَمْدُ لِلَّهِ رَبِّ الْعَالَمِينَ"
	if got, want := Normalize(diacritized), Normalize(bare); got != want {
		t.Errorf("Normalize(diacritized) = %q, want %q", got, want)
	}
}

func TestNormalizeStripsTatweelAndPunctuation(t *testing.T) {
	got := Normalize("بسـم، الله!")
	want := Normalize("بسم الله")
	if got != want {
		t.Errorf("Normalize with tatweel/punctuation = %q, want %q", got, want)
	}
}

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	got := Normalize("  الله   اكبر\n\tاكبر  ")
	want := "الله اكبر اكبر"
	if got != want {
		t.Errorf("Normalize whitespace = %q, want %q", got, want)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	samples := []string{
		"الْحَمْدُ لِلَّهِ رَبِّ الْعَالَمِينَ",
		"أإآ مصطفى رحمة ـتطويل",
		"",
		"plain ascii text 123",
	}
	for _, s := range samples {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent on %q: once=%q twice=%q", s, once, twice)
		}
	}
}

func TestNormalizeStripsDigitMarks(t *testing.T) {
	if got, want := Normalize("اية2"), Normalize("اية"); got != want {
		t.Errorf("Normalize did not strip digit marks: %q != %q", got, want)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if got := Normalize(""); got != "" {
		t.Errorf("Normalize(\"\") = %q, want \"\"", got)
	}
}

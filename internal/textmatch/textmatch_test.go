package textmatch

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestJaccard(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "the quick brown fox", "the quick brown fox", 1.0},
		{"case and whitespace insensitive", "The  Quick\tBROWN fox", "the quick brown fox", 1.0},
		{"disjoint", "alpha beta", "gamma delta", 0.0},
		{"empty left", "", "alpha", 0.0},
		{"both empty", "", "", 0.0},
		{"half overlap", "a b c d", "c d e f", 2.0 / 6.0},
		{"reordering irrelevant to word sets", "b a", "a b", 1.0},
	}
	for _, c := range cases {
		if got := Jaccard(c.a, c.b); !almostEqual(got, c.want) {
			t.Errorf("%s: Jaccard(%q, %q) = %v, want %v", c.name, c.a, c.b, got, c.want)
		}
	}
}

func TestJaccardDecimalTokens(t *testing.T) {
	// "99.5%" must survive as one token so numeric thresholds count as
	// shared vocabulary.
	desc := "Deposit account records must maintain 99.5% accuracy standards."
	grounded := "National Banking Corporation shall maintain deposit account records meeting 99.5% accuracy standards"
	// desc: 8 tokens, grounded: 12 tokens, 7 shared -> 7/13.
	if got, want := Jaccard(desc, grounded), 7.0/13.0; !almostEqual(got, want) {
		t.Errorf("Jaccard = %v, want %v", got, want)
	}
}

func TestContiguousPhrases(t *testing.T) {
	desc := "Deposit account records must maintain 99.5% accuracy standards."
	grounded := "National Banking Corporation shall maintain deposit account records meeting 99.5% accuracy standards"
	phrases := ContiguousPhrases(grounded, desc, 3)
	want := []string{"deposit account records", "99.5% accuracy standards"}
	if len(phrases) != len(want) {
		t.Fatalf("ContiguousPhrases = %v, want %v", phrases, want)
	}
	for i := range want {
		if phrases[i] != want[i] {
			t.Errorf("phrase[%d] = %q, want %q", i, phrases[i], want[i])
		}
	}
}

func TestContiguousPhrasesOrderSensitive(t *testing.T) {
	// Word reordering breaks a contiguous run even though the word set is
	// unchanged.
	if got := ContiguousPhrases("records account deposit", "deposit account records", 3); got != nil {
		t.Errorf("reordered phrase matched: %v", got)
	}
}

func TestContiguousPhrasesNoSubPhrases(t *testing.T) {
	got := ContiguousPhrases("a b c d", "x a b c d y", 3)
	if len(got) != 1 || got[0] != "a b c d" {
		t.Errorf("ContiguousPhrases = %v, want [a b c d]", got)
	}
}

func TestContiguousPhrasesLongerRunSubsumesEarlier(t *testing.T) {
	// The run at the first "b" stops at "b c d"; the repeat later in the
	// source extends to "b c d e" and must replace the shorter match.
	got := ContiguousPhrases("b c d b c d e", "x b c d e y", 3)
	if len(got) != 1 || got[0] != "b c d e" {
		t.Errorf("ContiguousPhrases = %v, want [b c d e]", got)
	}
}

func TestContiguousPhrasesTooShort(t *testing.T) {
	if got := ContiguousPhrases("a b", "a b", 3); got != nil {
		t.Errorf("ContiguousPhrases on short source = %v, want nil", got)
	}
}

func TestNegationMismatch(t *testing.T) {
	markers := []string{"must not", "shall not", "prohibited", "never"}
	cases := []struct {
		name string
		a, b string
		want bool
	}{
		{"both positive", "records must be kept", "records shall be kept", false},
		{"both negative", "must not disclose", "disclosure is prohibited", false},
		{"description negates", "records must not be altered", "records shall be retained", true},
		{"excerpt negates", "records shall be retained", "alteration is never permitted", true},
	}
	for _, c := range cases {
		if got := NegationMismatch(c.a, c.b, markers); got != c.want {
			t.Errorf("%s: NegationMismatch = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestContainsFold(t *testing.T) {
	hay := "National   Banking\nCorporation shall maintain records"
	if !ContainsFold(hay, "banking corporation SHALL maintain") {
		t.Error("whitespace-normalized case-insensitive match failed")
	}
	if ContainsFold(hay, "maintain banking") {
		t.Error("non-substring matched")
	}
	if ContainsFold(hay, "   ") {
		t.Error("blank needle matched")
	}
}

func TestFirstNumber(t *testing.T) {
	cases := []struct {
		in   string
		val  float64
		unit string
		ok   bool
	}{
		{"maintain 99.5% accuracy", 99.5, "percent", true},
		{"within 30 days", 30, "", true},
		{"at least 25 percent ownership", 25, "percent", true},
		{"no numbers here", 0, "", false},
	}
	for _, c := range cases {
		val, unit, ok := FirstNumber(c.in)
		if ok != c.ok || val != c.val || unit != c.unit {
			t.Errorf("FirstNumber(%q) = (%v, %q, %v), want (%v, %q, %v)",
				c.in, val, unit, ok, c.val, c.unit, c.ok)
		}
	}
}

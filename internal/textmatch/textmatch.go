// Package textmatch provides the lexical primitives shared by the evaluation
// checks: tokenization, Jaccard word-set similarity, contiguous-phrase
// matching, negation-marker detection, and numeric literal extraction. All
// signals here are statistical by design; nothing consults embeddings or
// models, so every score is reproducible from its inputs alone.
package textmatch

import (
	"regexp"
	"strconv"
	"strings"
)

// Package-level compiled regexes (compiled once).
var (
	wordRE = regexp.MustCompile(`[a-z0-9]+(?:\.[0-9]+)?`)

	// numberRE matches numeric literals, including percentages such as
	// "99.5%".
	numberRE = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*(%|percent)?`)

	spaceRE = regexp.MustCompile(`\s+`)
)

// Fold lowercases s and collapses all whitespace runs to single spaces.
func Fold(s string) string {
	return spaceRE.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), " ")
}

// Tokens splits s into lowercase word tokens. Decimal literals such as
// "99.5" survive as single tokens.
func Tokens(s string) []string {
	return wordRE.FindAllString(strings.ToLower(s), -1)
}

// TokenSet returns the case-folded word set of s.
func TokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range Tokens(s) {
		set[w] = struct{}{}
	}
	return set
}

// Jaccard computes |A ∩ B| / |A ∪ B| over the case-folded word sets of a
// and b. Returns 0 when either set is empty.
func Jaccard(a, b string) float64 {
	sa, sb := TokenSet(a), TokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	inter := 0
	for w := range sa {
		if _, ok := sb[w]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// ContiguousPhrases finds the maximal contiguous runs of at least minWords
// words from source that appear verbatim (case-insensitive) in target. A run
// that is a sub-phrase of another reported run is not reported separately.
// Matching is order-sensitive: reordering words in target breaks a run.
func ContiguousPhrases(source, target string, minWords int) []string {
	words := strings.Fields(strings.ToLower(source))
	targetFolded := Fold(target)
	if len(words) < minWords || targetFolded == "" {
		return nil
	}

	var phrases []string
	for i := 0; i <= len(words)-minWords; i++ {
		// Longest run starting at i that still appears in target.
		best := ""
		for n := minWords; i+n <= len(words); n++ {
			phrase := strings.Join(words[i:i+n], " ")
			if !strings.Contains(targetFolded, phrase) {
				break
			}
			best = phrase
		}
		if best == "" {
			continue
		}
		subset := false
		for _, p := range phrases {
			if strings.Contains(p, best) {
				subset = true
				break
			}
		}
		if !subset {
			// A longer run subsumes any earlier run it contains.
			kept := phrases[:0]
			for _, p := range phrases {
				if !strings.Contains(best, p) {
					kept = append(kept, p)
				}
			}
			phrases = append(kept, best)
		}
	}
	return phrases
}

// HasNegation reports whether any of the markers occurs in s (case-folded).
func HasNegation(s string, markers []string) bool {
	folded := Fold(s)
	for _, m := range markers {
		if strings.Contains(folded, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// NegationMismatch reports a polarity contradiction: one text carries a
// negation marker and the other does not.
func NegationMismatch(a, b string, markers []string) bool {
	return HasNegation(a, markers) != HasNegation(b, markers)
}

// ContainsFold reports whether needle occurs in hay after case folding and
// whitespace normalization of both.
func ContainsFold(hay, needle string) bool {
	n := Fold(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Fold(hay), n)
}

// ContainsAnyTerm reports whether s contains any of the terms (case-folded).
func ContainsAnyTerm(s string, terms []string) bool {
	folded := Fold(s)
	for _, t := range terms {
		if strings.Contains(folded, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// HasNumber reports whether s contains a numeric literal.
func HasNumber(s string) bool {
	return numberRE.MatchString(s)
}

// FirstNumber extracts the first numeric literal from s. The second return
// is the unit hint "percent" when the literal was written as a percentage,
// otherwise empty. ok is false when no literal is present.
func FirstNumber(s string) (value float64, unit string, ok bool) {
	m := numberRE.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, "", false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}
	if m[2] != "" {
		return v, "percent", true
	}
	return v, "", true
}

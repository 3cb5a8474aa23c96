// Package keywords extracts frequency-weighted terms from document text.
//
// Tokenisation is deliberately naive: Latin words longer than two letters are
// kept whole and CJK runs are expanded into every 2-4 character substring in
// place of a real word breaker. Weights are term frequencies over the
// filtered token stream of a single document; there is no IDF component.
package keywords

import (
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

const (
	minLatinLength = 3
	minGramLength  = 2
	maxGramLength  = 4

	// similarityKeywords is the keyword set size compared by Similarity.
	similarityKeywords = 50
)

// Extract returns at most maxKeywords terms occurring at least minFrequency
// times, ordered by weight descending. Equal weights keep first-occurrence order.
func Extract(text string, maxKeywords, minFrequency int) []domain.Keyword {
	tokens := filterStopwords(tokenize(text))
	if len(tokens) == 0 || maxKeywords <= 0 {
		return nil
	}

	counts := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	total := float64(len(tokens))
	result := make([]domain.Keyword, 0, len(order))
	for _, tok := range order {
		freq := counts[tok]
		if freq < minFrequency {
			continue
		}
		result = append(result, domain.Keyword{
			Keyword:   tok,
			Weight:    float64(freq) / total,
			Frequency: freq,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Weight > result[j].Weight
	})

	if len(result) > maxKeywords {
		result = result[:maxKeywords]
	}
	return result
}

// Set returns the extracted keywords of text as a lookup set.
func Set(text string, maxKeywords, minFrequency int) map[string]struct{} {
	kws := Extract(text, maxKeywords, minFrequency)
	set := make(map[string]struct{}, len(kws))
	for _, kw := range kws {
		set[kw.Keyword] = struct{}{}
	}
	return set
}

// Similarity is the Jaccard overlap of the top keyword sets of a and b.
// It is diagnostic only and plays no part in retrieval.
func Similarity(a, b string) float64 {
	setA := Set(a, similarityKeywords, 1)
	setB := Set(b, similarityKeywords, 1)

	union := len(setA)
	intersection := 0
	for kw := range setB {
		if _, ok := setA[kw]; ok {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Ngrams returns space-joined runs of n consecutive cleaned words.
func Ngrams(text string, n int) []string {
	if n <= 0 {
		return nil
	}

	var words []string
	for _, w := range strings.Fields(clean(text)) {
		if len([]rune(w)) > 1 && !isStopword(w) {
			words = append(words, w)
		}
	}

	var grams []string
	for i := 0; i+n <= len(words); i++ {
		grams = append(grams, strings.Join(words[i:i+n], " "))
	}
	return grams
}

// tokenize lowercases text and splits it into Latin words and CJK n-grams.
func tokenize(text string) []string {
	var tokens []string
	runes := []rune(clean(text))

	for i := 0; i < len(runes); {
		switch {
		case isLatin(runes[i]):
			j := i
			for j < len(runes) && isLatin(runes[j]) {
				j++
			}
			if j-i >= minLatinLength {
				tokens = append(tokens, string(runes[i:j]))
			}
			i = j
		case isCJK(runes[i]):
			j := i
			for j < len(runes) && isCJK(runes[j]) {
				j++
			}
			tokens = append(tokens, cjkGrams(runes[i:j])...)
			i = j
		default:
			i++
		}
	}

	return tokens
}

// cjkGrams expands a CJK run into every substring of 2-4 characters,
// grouped by length.
func cjkGrams(run []rune) []string {
	longest := maxGramLength
	if len(run) < longest {
		longest = len(run)
	}

	var grams []string
	for size := minGramLength; size <= longest; size++ {
		for i := 0; i+size <= len(run); i++ {
			grams = append(grams, string(run[i:i+size]))
		}
	}
	return grams
}

// clean lowercases text and replaces anything other than ASCII word
// characters, CJK ideographs and whitespace with a space.
func clean(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case isWordChar(r), isCJK(r), unicode.IsSpace(r):
			return r
		default:
			return ' '
		}
	}, strings.ToLower(text))
}

func filterStopwords(tokens []string) []string {
	out := tokens[:0]
	for _, tok := range tokens {
		if !isStopword(tok) {
			out = append(out, tok)
		}
	}
	return out
}

func isLatin(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func isWordChar(r rune) bool {
	return isLatin(r) || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

func isCJK(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fa5
}

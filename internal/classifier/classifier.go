package classifier

import (
	"sort"
	"strings"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/keywords"
)

// Default thresholds.
const (
	DefaultScoreCeiling    = 15.0
	DefaultConfidenceFloor = 0.1
	DefaultMaxCategories   = 2
	DefaultOverrideScore   = 100.0
	DefaultLeadingWindow   = 500

	keywordMatchScore = 2
	docKeywordScore   = 1
	patternMatchScore = 3

	// docKeywordLimit bounds the document keyword set used for scoring.
	docKeywordLimit = 100
)

// Config holds the tunable scoring constants.
type Config struct {
	// ScoreCeiling is the score that maps to confidence 1.
	ScoreCeiling float64

	// ConfidenceFloor drops assignments below this confidence.
	ConfidenceFloor float64

	// MaxCategories caps the assignment list.
	MaxCategories int

	// OverrideScore is the score forced by an exclusivity override.
	OverrideScore float64

	// LeadingWindow is how many leading content characters overrides inspect.
	LeadingWindow int
}

// DefaultConfig returns the default scoring constants.
func DefaultConfig() Config {
	return Config{
		ScoreCeiling:    DefaultScoreCeiling,
		ConfidenceFloor: DefaultConfidenceFloor,
		MaxCategories:   DefaultMaxCategories,
		OverrideScore:   DefaultOverrideScore,
		LeadingWindow:   DefaultLeadingWindow,
	}
}

// Rules is the rule-based classifier.
type Rules struct {
	catalog *Catalog
	cfg     Config
}

// NewRules creates a rule engine. Zero-valued config fields take defaults.
func NewRules(catalog *Catalog, cfg Config) *Rules {
	def := DefaultConfig()
	if cfg.ScoreCeiling <= 0 {
		cfg.ScoreCeiling = def.ScoreCeiling
	}
	if cfg.ConfidenceFloor <= 0 {
		cfg.ConfidenceFloor = def.ConfidenceFloor
	}
	if cfg.MaxCategories <= 0 {
		cfg.MaxCategories = def.MaxCategories
	}
	if cfg.OverrideScore <= 0 {
		cfg.OverrideScore = def.OverrideScore
	}
	if cfg.LeadingWindow <= 0 {
		cfg.LeadingWindow = def.LeadingWindow
	}
	return &Rules{catalog: catalog, cfg: cfg}
}

// Catalog returns the catalog the rules score against.
func (r *Rules) Catalog() *Catalog {
	return r.catalog
}

// Classify scores every scoreable category and returns the matches ranked
// by confidence, or the uncategorized bucket with confidence 1.
func (r *Rules) Classify(content, title string) []domain.Classification {
	fullText := strings.ToLower(title + " " + content)
	docKeywords := keywords.Set(fullText, docKeywordLimit, 1)

	lowerTitle := strings.ToLower(title)
	leading := strings.ToLower(leadingRunes(content, r.cfg.LeadingWindow))

	var results []domain.Classification
	for _, rule := range r.catalog.rules {
		id := rule.Category.ID
		if r.catalog.unscored[id] {
			continue
		}

		score, matched, patterns := scoreRule(rule, fullText, docKeywords)

		if r.overridden(id, lowerTitle, leading) {
			score = r.cfg.OverrideScore
		} else if score > 0 && !hasHardEvidence(r.catalog.hardEvidence[id], fullText) {
			score = 0
		}

		if score <= 0 {
			continue
		}

		results = append(results, domain.Classification{
			CategoryID:      id,
			CategoryName:    rule.Category.Name,
			Confidence:      min(score/r.cfg.ScoreCeiling, 1.0),
			MatchedKeywords: matched,
			MatchedPatterns: patterns,
			Source:          domain.ClassifiedByRules,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	if len(results) == 0 {
		return []domain.Classification{r.fallback()}
	}
	return results
}

// Assign returns the de-noised assignment list for a document: forced
// file-type categories first, then thresholded rule results with the
// product/bidding conflict resolved, capped at MaxCategories.
func (r *Rules) Assign(fileType domain.FileType, content, title string) []domain.Classification {
	if forced, ok := r.forced(fileType); ok {
		return []domain.Classification{forced}
	}

	ranked := r.Classify(content, title)

	kept := ranked[:0:0]
	for _, c := range ranked {
		if c.Confidence >= r.cfg.ConfidenceFloor {
			kept = append(kept, c)
		}
	}

	kept = dropBiddingUnderProduct(kept)

	if len(kept) > r.cfg.MaxCategories {
		kept = kept[:r.cfg.MaxCategories]
	}
	if len(kept) == 0 {
		return []domain.Classification{r.fallback()}
	}
	return kept
}

func (r *Rules) forced(ft domain.FileType) (domain.Classification, bool) {
	id, ok := r.catalog.ForcedCategory(ft)
	if !ok {
		return domain.Classification{}, false
	}
	cat, _ := r.catalog.Category(id)
	return domain.Classification{
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Confidence:   1,
		Source:       domain.ClassifiedByType,
	}, true
}

func (r *Rules) fallback() domain.Classification {
	cat := r.catalog.Fallback()
	return domain.Classification{
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Confidence:   1,
		Source:       domain.ClassifiedFallback,
	}
}

func (r *Rules) overridden(id, lowerTitle, leading string) bool {
	for _, o := range r.catalog.overrides {
		if o.CategoryID != id {
			continue
		}
		if containsAny(lowerTitle, o.TitlePhrases) || containsAny(leading, o.LeadingPhrases) {
			return true
		}
	}
	return false
}

// scoreRule computes the base score of one category.
func scoreRule(rule CategoryRule, fullText string, docKeywords map[string]struct{}) (float64, []string, int) {
	var score float64
	var matched []string

	for _, kw := range rule.Keywords {
		lower := strings.ToLower(kw)
		hit := false
		if strings.Contains(fullText, lower) {
			score += keywordMatchScore
			hit = true
		}
		if _, ok := docKeywords[lower]; ok {
			score += docKeywordScore
			hit = true
		}
		if hit {
			matched = append(matched, kw)
		}
	}

	patterns := 0
	for _, p := range rule.Patterns {
		if n := len(p.FindAllStringIndex(fullText, -1)); n > 0 {
			score += float64(n * patternMatchScore)
			patterns++
		}
	}

	return score, matched, patterns
}

// dropBiddingUnderProduct discards the bidding entry when product is also
// present with at least half of bidding's confidence.
func dropBiddingUnderProduct(list []domain.Classification) []domain.Classification {
	product, bidding := -1, -1
	for i, c := range list {
		switch c.CategoryID {
		case domain.CategoryProduct:
			product = i
		case domain.CategoryBidding:
			bidding = i
		}
	}
	if product < 0 || bidding < 0 {
		return list
	}
	if list[product].Confidence < list[bidding].Confidence*0.5 {
		return list
	}
	return append(list[:bidding:bidding], list[bidding+1:]...)
}

// hasHardEvidence is true when no evidence is required or any phrase is present.
func hasHardEvidence(phrases []string, fullText string) bool {
	if len(phrases) == 0 {
		return true
	}
	return containsAny(fullText, phrases)
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func leadingRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

package domain

// Category ids of the fixed taxonomy.
const (
	CategoryProduct       = "product"
	CategoryTech          = "tech"
	CategoryReport        = "report"
	CategoryBidding       = "bidding"
	CategoryPolicy        = "policy"
	CategoryMeeting       = "meeting"
	CategoryTraining      = "training"
	CategoryImage         = "image"
	CategoryReimbursement = "reimbursement"
	CategoryOther         = "other"
)

// Category is an entry in the fixed topic catalog.
// Categories are seeded from the catalog and never created at runtime.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LocalName   string `json:"localName"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	SortOrder   int    `json:"sortOrder"`
}

// ClassificationSource records which path produced a classification.
type ClassificationSource string

// Classification sources.
const (
	ClassifiedByRules  ClassificationSource = "rules"
	ClassifiedByAI     ClassificationSource = "ai"
	ClassifiedByType   ClassificationSource = "file-type"
	ClassifiedFallback ClassificationSource = "fallback"
)

// Classification is a category assignment produced by either the rule
// engine or the AI path. Confidence is always within [0, 1].
type Classification struct {
	CategoryID      string               `json:"categoryId"`
	CategoryName    string               `json:"categoryName"`
	Confidence      float64              `json:"confidence"`
	MatchedKeywords []string             `json:"matchedKeywords,omitempty"`
	MatchedPatterns int                  `json:"matchedPatterns,omitempty"`
	Source          ClassificationSource `json:"source,omitempty"`
}

// CategoryCount is a category with the number of documents assigned to it.
type CategoryCount struct {
	Category
	DocumentCount int `json:"documentCount"`
}

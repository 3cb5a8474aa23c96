package keywords

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		// English
		"a", "an", "the", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with",
		"by", "from", "as", "is", "was", "are", "were", "been", "be", "have", "has", "had",
		"do", "does", "did", "will", "would", "could", "should", "may", "might", "must",
		"shall", "can", "need", "dare", "ought", "used", "it", "its", "this", "that",
		"these", "those", "i", "you", "he", "she", "we", "they", "what", "which", "who",
		"whom", "when", "where", "why", "how", "all", "each", "every", "both", "few",
		"more", "most", "other", "some", "such", "no", "nor", "not", "only", "own",
		"same", "so", "than", "too", "very", "just", "also", "now", "here", "there",
		// Chinese
		"的", "了", "和", "是", "就", "都", "而", "及", "与", "着", "或", "一个", "没有",
		"我们", "你们", "他们", "它们", "这个", "那个", "这些", "那些", "什么", "怎么",
		"如何", "为什么", "因为", "所以", "但是", "然而", "如果", "虽然", "即使",
		"不", "也", "又", "还", "再", "更", "最", "很", "非常", "可以", "能够", "应该",
	} {
		stopwords[w] = struct{}{}
	}
}

func isStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

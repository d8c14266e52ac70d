// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vectorize

// stopwords is the fixed English stopword set dropped during tokenization.
// Contraction remnants (don, isn, ve, ...) appear because the tokenizer
// splits on apostrophes.
var stopwords = map[string]struct{}{}

func init() {
	words := []string{
		"i", "me", "my", "myself", "we", "our", "ours", "ourselves",
		"you", "your", "yours", "yourself", "yourselves",
		"he", "him", "his", "himself", "she", "her", "hers", "herself",
		"it", "its", "itself", "they", "them", "their", "theirs", "themselves",
		"what", "which", "who", "whom", "this", "that", "these", "those",
		"am", "is", "are", "was", "were", "be", "been", "being",
		"have", "has", "had", "having", "do", "does", "did", "doing",
		"a", "an", "the", "and", "but", "if", "or", "because", "as",
		"until", "while", "of", "at", "by", "for", "with", "about",
		"against", "between", "into", "through", "during", "before",
		"after", "above", "below", "to", "from", "up", "down", "in",
		"out", "on", "off", "over", "under", "again", "further", "then",
		"once", "here", "there", "when", "where", "why", "how",
		"all", "any", "both", "each", "few", "more", "most", "other",
		"some", "such", "no", "nor", "not", "only", "own", "same",
		"so", "than", "too", "very", "can", "will", "just", "now",
		"s", "t", "d", "ll", "m", "o", "re", "ve", "y",
		"ain", "aren", "couldn", "didn", "doesn", "don", "hadn", "hasn",
		"haven", "isn", "ma", "mightn", "mustn", "needn", "shan",
		"shouldn", "wasn", "weren", "won", "wouldn", "should",
	}
	for _, w := range words {
		stopwords[w] = struct{}{}
	}
}

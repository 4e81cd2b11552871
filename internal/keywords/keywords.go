// Package keywords turns a free-text task description, plus optional
// strategy hints, into an ordered, deduplicated, stopword-filtered keyword
// list bounded at 20 entries.
package keywords

import (
	"regexp"
	"strings"
)

// MaxKeywords is the hard cap on the derived keyword list.
const MaxKeywords = 20

// identifierPattern extracts identifier-shaped substrings: runs of letters,
// digits, underscore, and hyphen at least two characters long. Hyphens and
// underscores are included so kebab-case and snake_case task mentions (e.g.
// "rate-limiter", "rate_limiter") survive as a single keyword.
var identifierPattern = regexp.MustCompile(`[A-Za-z0-9_-]{2,}`)

// stopwords is the set of common English words filtered out of the derived
// keyword list. It is intentionally small: the goal is to drop connective
// tissue, not to be a full NLP stopword list.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"for": true, "with": true, "that": true, "this": true, "these": true,
	"those": true, "from": true, "into": true, "onto": true, "that's": true,
	"about": true, "above": true, "after": true, "again": true, "against": true,
	"all": true, "any": true, "are": true, "was": true, "were": true, "been": true,
	"being": true, "can": true, "could": true, "did": true, "does": true,
	"doing": true, "down": true, "during": true, "each": true, "few": true,
	"had": true, "has": true, "have": true, "having": true, "how": true,
	"if": true, "in": true, "is": true, "it": true, "its": true, "just": true,
	"more": true, "most": true, "need": true, "not": true, "now": true, "of": true,
	"on": true, "once": true, "only": true, "other": true, "out": true, "over": true,
	"own": true, "same": true, "should": true, "so": true, "some": true, "such": true,
	"than": true, "then": true, "there": true, "to": true, "too": true, "under": true,
	"until": true, "up": true, "very": true, "what": true, "when": true, "where": true,
	"which": true, "while": true, "who": true, "why": true, "will": true, "with'": true,
	"you": true, "your": true, "we": true, "i": true, "my": true, "me": true,
	"please": true, "add": true, "make": true, "use": true, "using": true,
}

// Derive extracts an ordered, deduplicated, stopword-filtered keyword list
// from task plus any hints. Identifier-shaped substrings are lowercased;
// duplicates keep their first occurrence position. The result never exceeds
// MaxKeywords entries.
func Derive(task string, hints []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, MaxKeywords)

	consume := func(text string) {
		for _, raw := range identifierPattern.FindAllString(text, -1) {
			word := strings.ToLower(raw)
			word = strings.Trim(word, "-_")
			if word == "" {
				continue
			}
			if stopwords[word] {
				continue
			}
			if seen[word] {
				continue
			}
			seen[word] = true
			out = append(out, word)
			if len(out) >= MaxKeywords {
				return
			}
		}
	}

	consume(task)
	for _, h := range hints {
		if len(out) >= MaxKeywords {
			break
		}
		consume(h)
	}

	return out
}

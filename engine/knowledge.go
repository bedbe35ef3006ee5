package engine

import (
	"strings"
	"unicode/utf8"
)

// minKeywordLen excludes short filler tokens from knowledge matching.
const minKeywordLen = 3

// knowledgeKeywords splits a lower-cased knowledge base into candidate keywords.
func knowledgeKeywords(kb string) []string {
	parts := strings.FieldsFunc(kb, func(r rune) bool {
		return r == ',' || r == '.' || r == '\n' || r == '\r'
	})
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) > minKeywordLen {
			keywords = append(keywords, p)
		}
	}
	return keywords
}

// mentionsKnowledge reports whether msg contains any keyword of kb. Both are lower-cased.
func mentionsKnowledge(msg, kb string) bool {
	for _, k := range knowledgeKeywords(kb) {
		if strings.Contains(msg, k) {
			return true
		}
	}
	return false
}

// knowledgeFacts returns the non-blank lines of the knowledge base, trimmed.
func knowledgeFacts(kb string) []string {
	var facts []string
	for _, line := range strings.Split(kb, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			facts = append(facts, line)
		}
	}
	return facts
}

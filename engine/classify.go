package engine

import "strings"

// Category is the coarse classification of an incoming message.
type Category int

const (
	CategoryDefault Category = iota
	CategoryGreeting
	CategoryGoodbye
	CategoryQuestion
)

func (c Category) String() string {
	switch c {
	case CategoryGreeting:
		return "greeting"
	case CategoryGoodbye:
		return "goodbye"
	case CategoryQuestion:
		return "question"
	default:
		return "default"
	}
}

type categoryRule struct {
	category Category
	keywords []string
}

// rules are evaluated top to bottom; the first hit decides the category.
func (l *Language) rules() []categoryRule {
	return []categoryRule{
		{CategoryGreeting, l.Keywords.Greetings},
		{CategoryGoodbye, l.Keywords.Goodbyes},
		{CategoryQuestion, l.Keywords.Questions},
	}
}

// classify expects an already lower-cased message.
func (l *Language) classify(msg string) Category {
	for _, r := range l.rules() {
		if containsAny(msg, r.keywords) {
			return r.category
		}
	}
	return CategoryDefault
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}

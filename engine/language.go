package engine

import (
	"embed"
	"fmt"
	"path"
	"regexp"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed lang/*.yaml
var langFS embed.FS

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Language is the complete phrase set the engine renders replies from.
type Language struct {
	Tag         string                `yaml:"tag"`
	Keywords    Keywords              `yaml:"keywords"`
	Tiers       map[string]TieredText `yaml:"tiers"`
	Cascades    map[string]Cascade    `yaml:"cascades"`
	Templates   Templates             `yaml:"templates"`
	Fallbacks   Fallbacks             `yaml:"fallbacks"`
	Personalize Personalize           `yaml:"personalize"`

	tag      language.Tag
	pronouns []pronounRule
}

type Keywords struct {
	Greetings    []string `yaml:"greetings"`
	Goodbyes     []string `yaml:"goodbyes"`
	Questions    []string `yaml:"questions"`
	Capabilities []string `yaml:"capabilities"`
}

type Templates struct {
	Greeting     []string `yaml:"greeting"`
	Goodbye      []string `yaml:"goodbye"`
	Capabilities []string `yaml:"capabilities"`
	Knowledge    []string `yaml:"knowledge"`
	Question     []string `yaml:"question"`
	Default      []string `yaml:"default"`
}

type Fallbacks struct {
	Description string `yaml:"description"`
	Knowledge   string `yaml:"knowledge"`
}

type Personalize struct {
	Emoji    string    `yaml:"emoji"`
	Pronouns []Pronoun `yaml:"pronouns"`
}

type Pronoun struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

type pronounRule struct {
	re          *regexp.Regexp
	replacement string
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// LoadLanguage reads lang/<name>.yaml from the embedded phrase sets.
func LoadLanguage(name string) (*Language, error) {
	data, err := langFS.ReadFile(path.Join("lang", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("language %q: %w", name, err)
	}
	return ParseLanguage(data)
}

// ParseLanguage decodes and checks a phrase set.
func ParseLanguage(data []byte) (*Language, error) {
	var lang Language
	if err := yaml.Unmarshal(data, &lang); err != nil {
		return nil, fmt.Errorf("failed to parse language: %w", err)
	}

	tag, err := language.Parse(lang.Tag)
	if err != nil {
		return nil, fmt.Errorf("language tag %q: %w", lang.Tag, err)
	}
	lang.tag = tag

	for _, p := range lang.Personalize.Pronouns {
		re, err := regexp.Compile(`(?i)\b(?:` + p.Pattern + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("pronoun pattern %q: %w", p.Pattern, err)
		}
		lang.pronouns = append(lang.pronouns, pronounRule{re: re, replacement: p.Replacement})
	}

	if err := lang.validate(); err != nil {
		return nil, err
	}
	return &lang, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (l *Language) validate() error {
	families := map[string][]string{
		"greeting":     l.Templates.Greeting,
		"goodbye":      l.Templates.Goodbye,
		"capabilities": l.Templates.Capabilities,
		"knowledge":    l.Templates.Knowledge,
		"question":     l.Templates.Question,
		"default":      l.Templates.Default,
	}
	for name, family := range families {
		if len(family) == 0 {
			return fmt.Errorf("language %q: no %s templates", l.Tag, name)
		}
	}
	for name, t := range l.Tiers {
		if _, ok := axisScore(defaultPersonality, t.Axis); !ok {
			return fmt.Errorf("language %q: tier %q has unknown axis %q", l.Tag, name, t.Axis)
		}
	}
	for name, c := range l.Cascades {
		if len(c) == 0 || c[len(c)-1].Axis != "" {
			return fmt.Errorf("language %q: cascade %q needs an unconditional last entry", l.Tag, name)
		}
		for _, e := range c[:len(c)-1] {
			if _, ok := axisScore(defaultPersonality, e.Axis); !ok {
				return fmt.Errorf("language %q: cascade %q has unknown axis %q", l.Tag, name, e.Axis)
			}
		}
	}
	if l.Fallbacks.Knowledge == "" || l.Fallbacks.Description == "" {
		return fmt.Errorf("language %q: missing fallbacks", l.Tag)
	}
	return nil
}

func mustLoadLanguage(name string) *Language {
	lang, err := LoadLanguage(name)
	if err != nil {
		panic(err)
	}
	return lang
}

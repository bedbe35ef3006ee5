package engine

import (
	"testing"

	"botwerk-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLanguage(t *testing.T) {
	lang, err := LoadLanguage(DefaultLanguage)
	require.NoError(t, err)
	assert.Equal(t, "de", lang.Tag)
	assert.Len(t, lang.Templates.Greeting, 3)
	assert.Len(t, lang.pronouns, 4)

	_, err = LoadLanguage("tlh")
	assert.Error(t, err)

	_, err = New(WithLanguage("tlh"))
	assert.Error(t, err)
}

func TestTemplatesOnlyReferenceKnownVariables(t *testing.T) {
	lang, err := LoadLanguage(DefaultLanguage)
	require.NoError(t, err)

	e := &Engine{lang: lang, picker: globalPicker{}}
	known := e.vars(models.BotConfig{}, defaultPersonality)
	known["fact"] = ""

	families := [][]string{
		lang.Templates.Greeting,
		lang.Templates.Goodbye,
		lang.Templates.Capabilities,
		lang.Templates.Knowledge,
		lang.Templates.Question,
		lang.Templates.Default,
	}
	for _, family := range families {
		for _, tmpl := range family {
			for _, name := range Placeholders(tmpl) {
				_, ok := known[name]
				assert.True(t, ok, "template %q uses unknown variable %q", tmpl, name)
			}
		}
	}
}

func TestParseLanguageRejectsIncompleteSets(t *testing.T) {
	base := `
tag: "de"
templates:
  greeting: ["a"]
  goodbye: ["a"]
  capabilities: ["a"]
  knowledge: ["a"]
  question: ["a"]
  default: ["a"]
fallbacks:
  description: "d"
  knowledge: "k"
`
	_, err := ParseLanguage([]byte(base))
	require.NoError(t, err)

	tests := map[string]string{
		"missing templates": `
tag: "de"
fallbacks: {description: "d", knowledge: "k"}
`,
		"bad tag": `tag: "not a tag!"`,
		"unknown tier axis": base + `
tiers:
  mood: {axis: "mood", high: "a", medium: "b", low: "c"}
`,
		"conditional last cascade entry": base + `
cascades:
  greeting:
    - {axis: "humor", text: "x"}
`,
		"bad pronoun pattern": base + `
personalize:
  pronouns:
    - {pattern: "(", replacement: "x"}
`,
		"not yaml": "tag: [",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLanguage([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestCascadePick(t *testing.T) {
	c := Cascade{
		{Axis: "humor", Text: "funny"},
		{Text: "plain"},
	}
	assert.Equal(t, "funny", c.Pick(models.BotPersonality{Humor: 8}))
	assert.Equal(t, "plain", c.Pick(models.BotPersonality{Humor: 7}))
}

func TestPersonalityTraits(t *testing.T) {
	traits := PersonalityTraits(models.BotPersonality{Friendliness: 9, Humor: 1, Formality: 5, DetailLevel: 8})
	assert.Equal(t, []string{
		"very friendly and warm",
		"stay serious and focused",
		"use moderately formal language",
		"provide comprehensive, detailed explanations",
	}, traits)
}

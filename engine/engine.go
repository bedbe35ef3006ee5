/*
Package engine generates bot replies from templates. A reply is chosen by
matching the creator's example pairs first, then by classifying the message
as greeting, goodbye, question or anything else and rendering one of the
category's templates with phrases picked from the bot's personality.

The engine does no I/O and keeps no per-conversation state, so a single
Engine can serve concurrent requests.
*/
package engine

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"

	"botwerk-server/models"

	"golang.org/x/text/cases"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Picker chooses an index in [0, n). Implementations must be safe for concurrent use.
type Picker interface {
	IntN(n int) int
}

// Engine renders replies for one phrase set.
type Engine struct {
	lang   *Language
	picker Picker
}

// Opt configures an Engine.
type Opt func(*Engine) error

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const DefaultLanguage = "de"

var defaultEngine = &Engine{lang: mustLoadLanguage(DefaultLanguage), picker: globalPicker{}}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates an engine for the default German phrase set.
func New(opts ...Opt) (*Engine, error) {
	e := &Engine{picker: globalPicker{}}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.lang == nil {
		lang, err := LoadLanguage(DefaultLanguage)
		if err != nil {
			return nil, err
		}
		e.lang = lang
	}
	return e, nil
}

// WithLanguage selects an embedded phrase set by name.
func WithLanguage(name string) Opt {
	return func(e *Engine) error {
		lang, err := LoadLanguage(name)
		if err != nil {
			return err
		}
		e.lang = lang
		return nil
	}
}

// WithPicker injects the source of randomness used between template variants.
func WithPicker(p Picker) Opt {
	return func(e *Engine) error {
		if p != nil {
			e.picker = p
		}
		return nil
	}
}

// WithSeed makes template choice reproducible.
func WithSeed(seed uint64) Opt {
	return WithPicker(NewSeededPicker(seed))
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// GenerateReply answers with the default engine.
func GenerateReply(userMessage string, bot models.BotConfig, history []models.ChatTurn) string {
	return defaultEngine.GenerateReply(userMessage, bot, history)
}

// GenerateReply returns a non-empty reply for any input. The history is accepted for
// parity with other responders; template selection does not depend on it.
func (e *Engine) GenerateReply(userMessage string, bot models.BotConfig, history []models.ChatTurn) string {
	p := bot.PersonalityOrDefault()
	msg := e.lower(strings.TrimSpace(userMessage))

	if msg == "" {
		return e.render(e.lang.Templates.Default, e.vars(bot, p))
	}

	if ex, ok := e.matchExample(msg, bot.Examples); ok {
		return e.personalize(ex.BotResponse, p)
	}

	vars := e.vars(bot, p)
	switch e.lang.classify(msg) {
	case CategoryGreeting:
		return e.render(e.lang.Templates.Greeting, vars)
	case CategoryGoodbye:
		return e.render(e.lang.Templates.Goodbye, vars)
	case CategoryQuestion:
		return e.questionReply(msg, bot, vars)
	default:
		return e.render(e.lang.Templates.Default, vars)
	}
}

// Reply lets the engine stand in wherever a context-aware responder is expected. It never fails.
func (e *Engine) Reply(_ context.Context, userMessage string, bot models.BotConfig, history []models.ChatTurn) (string, error) {
	return e.GenerateReply(userMessage, bot, history), nil
}

// Classify reports the category a message would be answered from, ignoring examples.
func (e *Engine) Classify(userMessage string) Category {
	return e.lang.classify(e.lower(userMessage))
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (e *Engine) lower(s string) string {
	// A Caser carries state, so one is made per call.
	return cases.Lower(e.lang.tag).String(s)
}

// matchExample returns the first example whose trigger contains, or is contained
// in, the message. Blank triggers never match.
func (e *Engine) matchExample(msg string, examples []models.Example) (models.Example, bool) {
	for _, ex := range examples {
		trigger := e.lower(strings.TrimSpace(ex.UserMessage))
		if trigger == "" {
			continue
		}
		if strings.Contains(msg, trigger) || strings.Contains(trigger, msg) {
			return ex, true
		}
	}
	return models.Example{}, false
}

func (e *Engine) questionReply(msg string, bot models.BotConfig, vars map[string]string) string {
	if strings.TrimSpace(bot.Capabilities) != "" && containsAny(msg, e.lang.Keywords.Capabilities) {
		return e.render(e.lang.Templates.Capabilities, vars)
	}

	if strings.TrimSpace(bot.KnowledgeBase) == "" {
		return e.lang.Fallbacks.Knowledge
	}

	if mentionsKnowledge(msg, e.lower(bot.KnowledgeBase)) {
		facts := knowledgeFacts(bot.KnowledgeBase)
		if len(facts) == 0 {
			return e.lang.Fallbacks.Knowledge
		}
		vars["fact"] = e.choose(facts)
		return e.render(e.lang.Templates.Knowledge, vars)
	}

	return e.render(e.lang.Templates.Question, vars)
}

// personalize adapts an example response; generated templates already carry personality.
func (e *Engine) personalize(response string, p models.BotPersonality) string {
	if TierOf(p.Humor) == TierHigh && e.lang.Personalize.Emoji != "" {
		response += " " + e.lang.Personalize.Emoji
	}
	if TierOf(p.Formality) == TierHigh {
		for _, rule := range e.lang.pronouns {
			response = rule.re.ReplaceAllString(response, rule.replacement)
		}
	}
	return response
}

func (e *Engine) vars(bot models.BotConfig, p models.BotPersonality) map[string]string {
	vars := map[string]string{
		"name":         bot.Name,
		"description":  bot.Description,
		"capabilities": bot.Capabilities,
	}
	if strings.TrimSpace(bot.Description) == "" {
		vars["description"] = e.lang.Fallbacks.Description
	}
	for name, t := range e.lang.Tiers {
		vars[name] = t.Pick(p)
	}
	for name, c := range e.lang.Cascades {
		vars[name] = c.Pick(p)
	}
	return vars
}

func (e *Engine) render(templates []string, vars map[string]string) string {
	return Interpolate(e.choose(templates), vars)
}

func (e *Engine) choose(choices []string) string {
	switch len(choices) {
	case 0:
		return ""
	case 1:
		return choices[0]
	}
	return choices[e.picker.IntN(len(choices))]
}

///////////////////////////////////////////////////////////////////////////////
// PICKERS

type globalPicker struct{}

func (globalPicker) IntN(n int) int {
	return rand.IntN(n)
}

// SeededPicker is a reproducible Picker guarded for concurrent use.
type SeededPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSeededPicker(seed uint64) *SeededPicker {
	return &SeededPicker{rng: rand.New(rand.NewPCG(seed, seed))}
}

func (p *SeededPicker) IntN(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

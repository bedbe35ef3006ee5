package engine

import "botwerk-server/models"

// Tier is the coarse bucket a personality score falls into.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "low"
	}
}

// TierOf buckets a score: above 7 is high, above 4 medium, anything else low.
func TierOf(score int) Tier {
	switch {
	case score > 7:
		return TierHigh
	case score > 4:
		return TierMedium
	default:
		return TierLow
	}
}

var defaultPersonality = models.DefaultPersonality()

func axisScore(p models.BotPersonality, axis string) (int, bool) {
	switch axis {
	case "friendliness":
		return p.Friendliness, true
	case "humor":
		return p.Humor, true
	case "formality":
		return p.Formality, true
	case "detailLevel":
		return p.DetailLevel, true
	}
	return 0, false
}

// TieredText maps one personality axis onto three fixed phrases.
type TieredText struct {
	Axis   string `yaml:"axis"`
	High   string `yaml:"high"`
	Medium string `yaml:"medium"`
	Low    string `yaml:"low"`
}

func (t TieredText) Pick(p models.BotPersonality) string {
	score, _ := axisScore(p, t.Axis)
	switch TierOf(score) {
	case TierHigh:
		return t.High
	case TierMedium:
		return t.Medium
	default:
		return t.Low
	}
}

// Cascade is an ordered list of phrases guarded by a high score on one axis.
type Cascade []CascadeEntry

type CascadeEntry struct {
	Axis string `yaml:"axis"`
	Text string `yaml:"text"`
}

func (c Cascade) Pick(p models.BotPersonality) string {
	for _, e := range c {
		if e.Axis == "" {
			return e.Text
		}
		if score, ok := axisScore(p, e.Axis); ok && TierOf(score) == TierHigh {
			return e.Text
		}
	}
	return ""
}

// PersonalityTraits describes a personality in plain English, one trait per axis.
func PersonalityTraits(p models.BotPersonality) []string {
	return []string{
		tieredTrait(p.Friendliness, "very friendly and warm", "moderately friendly", "professional and matter-of-fact"),
		tieredTrait(p.Humor, "use humor and light-hearted comments when appropriate", "occasionally use gentle humor", "stay serious and focused"),
		tieredTrait(p.Formality, "maintain formal language and proper etiquette", "use moderately formal language", "use casual, conversational language"),
		tieredTrait(p.DetailLevel, "provide comprehensive, detailed explanations", "provide balanced detail in responses", "keep responses concise and to the point"),
	}
}

func tieredTrait(score int, high, medium, low string) string {
	switch TierOf(score) {
	case TierHigh:
		return high
	case TierMedium:
		return medium
	default:
		return low
	}
}

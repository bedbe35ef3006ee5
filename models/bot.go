package models

import (
	"encoding/json"
	"time"
)

const (
	BotStatusActive   = "active"
	BotStatusDraft    = "draft"
	BotStatusDisabled = "disabled"

	DefaultBotName = "Neuer Bot"
	DefaultBotType = "assistant"

	// DefaultPersonalityScore is the mid-point used when a personality is missing.
	DefaultPersonalityScore = 5
)

// BotPersonality holds the four personality sliders, each in [1,10].
type BotPersonality struct {
	Friendliness int `json:"friendliness"`
	Humor        int `json:"humor"`
	Formality    int `json:"formality"`
	DetailLevel  int `json:"detailLevel"`
}

func DefaultPersonality() BotPersonality {
	return BotPersonality{
		Friendliness: DefaultPersonalityScore,
		Humor:        DefaultPersonalityScore,
		Formality:    DefaultPersonalityScore,
		DetailLevel:  DefaultPersonalityScore,
	}
}

// UnmarshalJSON fills axes missing from the input with DefaultPersonalityScore.
func (p *BotPersonality) UnmarshalJSON(data []byte) error {
	type plain BotPersonality
	v := plain(DefaultPersonality())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = BotPersonality(v)
	return nil
}

// Example is a creator-supplied dialogue pair used for direct matching.
type Example struct {
	UserMessage string `json:"userMessage"`
	BotResponse string `json:"botResponse"`
}

// BotConfig is the read-only view of a bot that reply generation works from.
type BotConfig struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Type           string          `json:"type"`
	TargetAudience string          `json:"targetAudience"`
	Capabilities   string          `json:"capabilities"`
	KnowledgeBase  string          `json:"knowledgeBase"`
	Personality    *BotPersonality `json:"personality"`
	Examples       []Example       `json:"examples"`
}

// PersonalityOrDefault never returns a partially filled personality.
func (c BotConfig) PersonalityOrDefault() BotPersonality {
	if c.Personality == nil {
		return DefaultPersonality()
	}
	return *c.Personality
}

type Bot struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Type           string          `json:"type"`
	TargetAudience string          `json:"targetAudience"`
	Capabilities   string          `json:"capabilities"`
	KnowledgeBase  string          `json:"knowledgeBase"`
	Personality    *BotPersonality `json:"personality"`
	Examples       []Example       `json:"examples"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (b *Bot) Config() BotConfig {
	return BotConfig{
		Name:           b.Name,
		Description:    b.Description,
		Type:           b.Type,
		TargetAudience: b.TargetAudience,
		Capabilities:   b.Capabilities,
		KnowledgeBase:  b.KnowledgeBase,
		Personality:    b.Personality,
		Examples:       b.Examples,
	}
}

// CreateBotRequest carries a new bot. Omitted fields get the defaults from ApplyDefaults.
type CreateBotRequest struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Type           string          `json:"type"`
	TargetAudience string          `json:"targetAudience"`
	Capabilities   string          `json:"capabilities"`
	KnowledgeBase  string          `json:"knowledgeBase"`
	Personality    *BotPersonality `json:"personality"`
	Examples       []Example       `json:"examples"`
	Status         string          `json:"status"`
}

func (r *CreateBotRequest) ApplyDefaults() {
	if r.Name == "" {
		r.Name = DefaultBotName
	}
	if r.Type == "" {
		r.Type = DefaultBotType
	}
	if r.Personality == nil {
		p := DefaultPersonality()
		r.Personality = &p
	}
	if r.Examples == nil {
		r.Examples = []Example{}
	}
	if r.Status == "" {
		r.Status = BotStatusActive
	}
}

// UpdateBotRequest is a partial update: nil fields are left untouched.
type UpdateBotRequest struct {
	Name           *string         `json:"name,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Type           *string         `json:"type,omitempty"`
	TargetAudience *string         `json:"targetAudience,omitempty"`
	Capabilities   *string         `json:"capabilities,omitempty"`
	KnowledgeBase  *string         `json:"knowledgeBase,omitempty"`
	Personality    *BotPersonality `json:"personality,omitempty"`
	Examples       []Example       `json:"examples,omitempty"`
	Status         *string         `json:"status,omitempty"`
}

func (r UpdateBotRequest) Apply(b *Bot) {
	if r.Name != nil {
		b.Name = *r.Name
	}
	if r.Description != nil {
		b.Description = *r.Description
	}
	if r.Type != nil {
		b.Type = *r.Type
	}
	if r.TargetAudience != nil {
		b.TargetAudience = *r.TargetAudience
	}
	if r.Capabilities != nil {
		b.Capabilities = *r.Capabilities
	}
	if r.KnowledgeBase != nil {
		b.KnowledgeBase = *r.KnowledgeBase
	}
	if r.Personality != nil {
		p := *r.Personality
		b.Personality = &p
	}
	if r.Examples != nil {
		b.Examples = r.Examples
	}
	if r.Status != nil {
		b.Status = *r.Status
	}
}

type DashboardStats struct {
	ActiveBots         int `json:"activeBots"`
	ConversationsToday int `json:"conversationsToday"`
	SuccessRate        int `json:"successRate"`
}

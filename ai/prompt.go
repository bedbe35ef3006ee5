package ai

import (
	"fmt"
	"strings"

	"botwerk-server/engine"
	"botwerk-server/models"
)

// SystemPrompt describes the bot to a language model. Empty fields are left out.
func SystemPrompt(bot models.BotConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s", bot.Name)
	if bot.Type != "" {
		fmt.Fprintf(&b, ", a %s bot", bot.Type)
	}
	b.WriteString(". Always answer in German.\n")

	section := func(title, body string) {
		if body = strings.TrimSpace(body); body != "" {
			fmt.Fprintf(&b, "\n%s:\n%s\n", title, body)
		}
	}
	section("Description", bot.Description)
	section("Target audience", bot.TargetAudience)
	section("Capabilities", bot.Capabilities)
	section("Knowledge base", bot.KnowledgeBase)

	b.WriteString("\nPersonality:\n")
	for _, trait := range engine.PersonalityTraits(bot.PersonalityOrDefault()) {
		fmt.Fprintf(&b, "- %s\n", trait)
	}

	if len(bot.Examples) > 0 {
		b.WriteString("\nAnswer in the style of these examples:\n")
		for _, ex := range bot.Examples {
			fmt.Fprintf(&b, "User: %s\nYou: %s\n", ex.UserMessage, ex.BotResponse)
		}
	}

	return strings.TrimSpace(b.String())
}

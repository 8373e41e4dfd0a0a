package config

import (
	"fmt"
	"strings"
)

// validate collects every configuration problem before reporting.
func validate(c *Config) error {
	var problems []string
	if c.Reasoner.BaseURL != "" && strings.TrimSpace(c.Reasoner.Model) == "" {
		problems = append(problems, "reasoner.model is required when reasoner.base_url is set")
	}
	if c.Reasoner.Temperature < 0 || c.Reasoner.Temperature > 2 {
		problems = append(problems, "reasoner.temperature must be within [0,2]")
	}
	if c.Reasoner.MaxRetries < 0 {
		problems = append(problems, "reasoner.max_retries must be non-negative")
	}
	if c.Retriever.TopK > 50 {
		problems = append(problems, "retriever.top_k above 50 is not supported")
	}
	if c.Notify.Telegram.Enabled {
		if strings.TrimSpace(c.Notify.Telegram.BotToken) == "" {
			problems = append(problems, "notify.telegram.bot_token is required when telegram is enabled")
		}
		if strings.TrimSpace(c.Notify.Telegram.ChatID) == "" {
			problems = append(problems, "notify.telegram.chat_id is required when telegram is enabled")
		}
	}
	if c.Notify.HighRiskThreshold > 100 {
		problems = append(problems, "notify.high_risk_threshold must be within (0,100]")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

package scoring

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RulesConfig holds the pattern sets driving the spam heuristics. A project
// deployment can override the compiled defaults with a YAML file.
type RulesConfig struct {
	DisposableDomains []string `yaml:"disposable_domains" json:"disposable_domains"`
	SpamKeywords      []string `yaml:"spam_keywords" json:"spam_keywords"`
	BotPatterns       []string `yaml:"bot_patterns" json:"bot_patterns"`
}

// LoadRules reads a rule set override from path. Every error path returns
// DefaultRules alongside the error, so a caller that logs and continues
// still scores with a working rule set.
func LoadRules(path string) (RulesConfig, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultRules(), err
	}

	var cfg RulesConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return DefaultRules(), err
	}

	if len(cfg.SpamKeywords) == 0 && len(cfg.DisposableDomains) == 0 && len(cfg.BotPatterns) == 0 {
		return DefaultRules(), errors.New("no scoring rules configured")
	}

	return cfg, nil
}

func DefaultRules() RulesConfig {
	return RulesConfig{
		DisposableDomains: []string{
			"10minutemail.com",
			"guerrillamail.com",
			"mailinator.com",
			"tempmail.org",
			"yopmail.com",
			"throwaway.email",
		},
		SpamKeywords: []string{
			"buy now",
			"click here",
			"free money",
			"guaranteed",
			"make money",
			"no cost",
			"risk free",
			"special promotion",
			"urgent",
			"winner",
		},
		BotPatterns: []string{
			"bot",
			"crawler",
			"spider",
			"curl",
			"wget",
			"python",
		},
	}
}

package config

import (
	"strings"

	"syl-optimizer/internal/score"
)

type Config struct {
	Provider          string                    `yaml:"provider"`
	APIKeyEnv         string                    `yaml:"api_key_env"`
	Marketplace       string                    `yaml:"marketplace"`
	RulesFile         string                    `yaml:"rules_file"`
	MaxRetries        int                       `yaml:"max_retries"`
	RequestTimeoutSec int                       `yaml:"request_timeout_sec"`
	Output            OutputConfig              `yaml:"output"`
	Generation        GenerationConfig          `yaml:"generation"`
	Optimizer         OptimizerConfig           `yaml:"optimizer"`
	Weights           score.Weights             `yaml:"weights"`
	Providers         map[string]ProviderConfig `yaml:"providers"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
	Num int    `yaml:"num"`
}

type GenerationConfig struct {
	BulletCount           int `yaml:"bullet_count"`
	BulletMinChars        int `yaml:"bullet_min_chars"`
	DescriptionParagraphs int `yaml:"description_paragraphs"`
	TitleMustContainTopKW int `yaml:"title_must_contain_top_kw"`
}

// 观察值作为默认，全部可调，不当业务真理写死。
type OptimizerConfig struct {
	TitleTierRatio       float64 `yaml:"title_tier_ratio"`
	BulletsTierRatio     float64 `yaml:"bullets_tier_ratio"`
	CoverageThreshold    float64 `yaml:"coverage_threshold"`
	UtilizationTargetPct float64 `yaml:"utilization_target_pct"`
}

type ProviderConfig struct {
	BaseURL              string `yaml:"base_url"`
	APIMode              string `yaml:"api_mode"`
	Model                string `yaml:"model"`
	ModelReasoningEffort string `yaml:"model_reasoning_effort"`
}

type Paths struct {
	HomeDir           string
	RootDir           string
	ConfigPath        string
	RulesPath         string
	EnvPath           string
	EnvExample        string
	ConfigSource      string
	ResolvedRulesPath string
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Provider) == "" {
		c.Provider = "deepseek"
	}
	if strings.TrimSpace(c.APIKeyEnv) == "" {
		c.APIKeyEnv = "DEEPSEEK_API_KEY"
	}
	if strings.TrimSpace(c.Marketplace) == "" {
		c.Marketplace = "us"
	}
	if strings.TrimSpace(c.RulesFile) == "" {
		c.RulesFile = "~/.syl-optimizer/rules/compliance.yaml"
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RequestTimeoutSec <= 0 {
		c.RequestTimeoutSec = 300
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		c.Output.Dir = "."
	}
	if c.Output.Num <= 0 {
		c.Output.Num = 1
	}
	if c.Generation.BulletCount <= 0 {
		c.Generation.BulletCount = 5
	}
	if c.Generation.BulletMinChars <= 0 {
		c.Generation.BulletMinChars = 120
	}
	if c.Generation.DescriptionParagraphs <= 0 {
		c.Generation.DescriptionParagraphs = 3
	}
	if c.Generation.TitleMustContainTopKW <= 0 {
		c.Generation.TitleMustContainTopKW = 3
	}
	if c.Optimizer.TitleTierRatio <= 0 {
		c.Optimizer.TitleTierRatio = 0.3
	}
	if c.Optimizer.BulletsTierRatio <= 0 {
		c.Optimizer.BulletsTierRatio = 0.4
	}
	if c.Optimizer.CoverageThreshold <= 0 || c.Optimizer.CoverageThreshold > 1 {
		c.Optimizer.CoverageThreshold = 0.7
	}
	if c.Optimizer.UtilizationTargetPct <= 0 || c.Optimizer.UtilizationTargetPct > 100 {
		c.Optimizer.UtilizationTargetPct = 70
	}
	if c.Weights == (score.Weights{}) {
		c.Weights = score.DefaultWeights()
	}
	if c.Providers == nil {
		c.Providers = map[string]ProviderConfig{}
	}
	if _, ok := c.Providers["deepseek"]; !ok {
		c.Providers["deepseek"] = ProviderConfig{
			BaseURL: "https://api.deepseek.com",
			APIMode: "chat",
			Model:   "deepseek-chat",
		}
	}
	if _, ok := c.Providers["openai"]; !ok {
		c.Providers["openai"] = ProviderConfig{
			BaseURL: "https://api.openai.com",
			APIMode: "auto",
			Model:   "gpt-4o-mini",
		}
	}
}

package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Interview struct {
		BankID              string  `yaml:"bank_id"`
		BankTTL             string  `yaml:"bank_ttl"`
		QuestionsPerSession int     `yaml:"questions_per_session"`
		MaxFollowups        int     `yaml:"max_followups"`
		FollowupThreshold   float64 `yaml:"followup_threshold"`
		OracleTimeout       string  `yaml:"oracle_timeout"`
	} `yaml:"interview"`
	Oracle struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"oracle"`
}

// Load reads YAML config from path. A missing oracle api key falls back to
// heuristic scoring at wiring time, so the file may omit that section.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Oracle.APIKey == "" {
		cfg.Oracle.APIKey = os.Getenv("ORACLE_API_KEY")
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

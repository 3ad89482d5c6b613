// Package config loads the tracker configuration from a yaml file with
// ${VAR} environment expansion, falling back to environment variables
// for credentials so a bare checkout still runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full tracker configuration.
type Config struct {
	DataDir   string `yaml:"data_dir"`
	DBFile    string `yaml:"db_file"`
	ModelFile string `yaml:"model_file"`
	SheetFile string `yaml:"sheet_file"`

	IMAP struct {
		Host        string `yaml:"host"`
		Email       string `yaml:"email"`
		Password    string `yaml:"password"`
		AccessToken string `yaml:"access_token"`
		Folder      string `yaml:"folder"`
		OAuth       struct {
			ClientID     string `yaml:"client_id"`
			ClientSecret string `yaml:"client_secret"`
			RefreshToken string `yaml:"refresh_token"`
		} `yaml:"oauth"`
	} `yaml:"imap"`

	Gemini struct {
		APIKey         string `yaml:"api_key"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		BodyLimit      int    `yaml:"body_limit"`
	} `yaml:"gemini"`

	Fetch struct {
		LookbackDays int `yaml:"lookback_days"`
		MaxEmails    int `yaml:"max_emails"`
	} `yaml:"fetch"`

	Features struct {
		SubjectFeatures int `yaml:"subject_features"`
		BodyFeatures    int `yaml:"body_features"`
		TopDomains      int `yaml:"top_domains"`
	} `yaml:"features"`

	Pipeline struct {
		Concurrency int `yaml:"concurrency"`
	} `yaml:"pipeline"`

	Notify struct {
		Enabled    bool   `yaml:"enabled"`
		SMTPServer string `yaml:"smtp_server"`
		SMTPPort   int    `yaml:"smtp_port"`
		Username   string `yaml:"username"`
		Password   string `yaml:"password"`
		From       string `yaml:"from"`
		To         string `yaml:"to"`
	} `yaml:"notify"`
}

// Load reads a yaml config file, expands ${VAR} references against the
// environment, then applies env fallbacks and defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(b))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvFallbacks()
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the built-in configuration with credentials pulled
// from the environment. Used when no config file exists.
func Default() *Config {
	var cfg Config
	cfg.applyEnvFallbacks()
	cfg.applyDefaults()
	return &cfg
}

// expandEnvVars replaces ${VAR} references with environment values.
// Unset variables are left verbatim so the yaml error points at them.
func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		name := match[2 : len(match)-1]
		if value := os.Getenv(name); value != "" {
			return value
		}
		return match
	})
}

func (c *Config) applyEnvFallbacks() {
	if c.IMAP.Email == "" {
		c.IMAP.Email = os.Getenv("IMAP_EMAIL")
	}
	if c.IMAP.Password == "" {
		c.IMAP.Password = os.Getenv("IMAP_PASSWORD")
	}
	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.DBFile == "" {
		c.DBFile = "intern.db"
	}
	if c.ModelFile == "" {
		c.ModelFile = "model.json"
	}
	if c.SheetFile == "" {
		c.SheetFile = "tracker.csv"
	}
	if c.IMAP.Host == "" {
		c.IMAP.Host = "imap.gmail.com:993"
	}
	if c.IMAP.Folder == "" {
		c.IMAP.Folder = "INBOX"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-1.5-flash"
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = 20
	}
	if c.Gemini.BodyLimit <= 0 {
		c.Gemini.BodyLimit = 2000
	}
	if c.Fetch.LookbackDays <= 0 {
		c.Fetch.LookbackDays = 14
	}
	if c.Fetch.MaxEmails <= 0 {
		c.Fetch.MaxEmails = 500
	}
	if c.Features.SubjectFeatures <= 0 {
		c.Features.SubjectFeatures = 1000
	}
	if c.Features.BodyFeatures <= 0 {
		c.Features.BodyFeatures = 5000
	}
	if c.Features.TopDomains <= 0 {
		c.Features.TopDomains = 50
	}
	if c.Pipeline.Concurrency <= 0 {
		c.Pipeline.Concurrency = 4
	}
	if c.Notify.SMTPPort <= 0 {
		c.Notify.SMTPPort = 587
	}
}

// DBPath is the SQLite database location.
func (c *Config) DBPath() string { return c.dataPath(c.DBFile) }

// ModelPath is the trained model bundle location.
func (c *Config) ModelPath() string { return c.dataPath(c.ModelFile) }

// SheetPath is the tracking sheet CSV location.
func (c *Config) SheetPath() string { return c.dataPath(c.SheetFile) }

func (c *Config) dataPath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(c.DataDir, file)
}

// GeminiTimeout is the per-call deadline for model extraction.
func (c *Config) GeminiTimeout() time.Duration {
	return time.Duration(c.Gemini.TimeoutSeconds) * time.Second
}

// AIEnabled reports whether the model extraction tier should run.
// Presence of an API key is the whole decision.
func (c *Config) AIEnabled() bool { return c.Gemini.APIKey != "" }

// RequireIMAP validates the fields the mail commands need.
func (c *Config) RequireIMAP() error {
	if c.IMAP.Email == "" {
		return errors.New("imap email not configured (set imap.email or IMAP_EMAIL)")
	}
	if c.IMAP.Password == "" && c.IMAP.AccessToken == "" && c.IMAP.OAuth.RefreshToken == "" {
		return errors.New("imap credentials not configured (set imap.password, imap.access_token or imap.oauth)")
	}
	return nil
}

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Default scrape settings, used for any field a config file leaves unset
var (
	DefaultSubreddits = []string{
		"ROV",
		"UnderwaterRobotics",
		"OceanEngineering",
		"MarineScience",
		"Aquaculture",
		"robotics",
		"engineering",
	}

	DefaultKeywords = []string{
		"underwater ROV inspection",
		"aquaculture net damage",
		"marine hull biofouling",
		"subsea infrastructure corrosion",
		"diver safety underwater inspection",
		"ocean environmental monitoring",
		"cost effective underwater inspection",
		"autonomous underwater vehicle",
		"underwater robot",
		"modular underwater drone",
		"marine robotics",
		"automated underwater monitoring",
		"underwater inspection technology",
		"ROV innovation",
		"diver risks",
	}
)

const (
	DefaultSearchLimit     = 50
	DefaultRequestDelay    = 2 * time.Second
	DefaultErrorDelay      = 5 * time.Second
	DefaultPostWords       = 50
	DefaultDiscussionWords = 80
	DefaultOutputFile      = "reddit_scrapped.csv"
	DefaultUserAgent       = "RedditScraper/0.1 (by u/YourRedditUsername)"
	DefaultSort            = "relevance"
	DefaultTimeFilter      = "all"

	// maxSearchLimit is the largest page the search endpoint returns
	maxSearchLimit = 100
)

// Environment variables holding the Reddit API credentials
const (
	envClientID     = "REDDIT_CLIENT_ID"
	envClientSecret = "REDDIT_CLIENT_SECRET"
	envUserAgent    = "REDDIT_USER_AGENT"
)

// Credentials authenticate the application against the Reddit API
type Credentials struct {
	ClientID     string `yaml:"-"`
	ClientSecret string `yaml:"-"`
	UserAgent    string `yaml:"user_agent"`
}

// Config holds everything a scrape run needs
type Config struct {
	Subreddits      []string      `yaml:"subreddits"`
	Keywords        []string      `yaml:"keywords"`
	SearchLimit     int           `yaml:"search_limit"`
	RequestDelay    time.Duration `yaml:"request_delay"`
	ErrorDelay      time.Duration `yaml:"error_delay"`
	PostWords       int           `yaml:"post_words"`
	DiscussionWords int           `yaml:"discussion_words"`
	OutputFile      string        `yaml:"output_file"`
	Sort            string        `yaml:"sort"`
	TimeFilter      string        `yaml:"time_filter"`
	StripMarkup     bool          `yaml:"strip_markup"`
	Credentials     Credentials   `yaml:"credentials"`
}

// DefaultConfig returns the built-in scrape configuration without credentials
func DefaultConfig() *Config {
	return &Config{
		Subreddits:      append([]string(nil), DefaultSubreddits...),
		Keywords:        append([]string(nil), DefaultKeywords...),
		SearchLimit:     DefaultSearchLimit,
		RequestDelay:    DefaultRequestDelay,
		ErrorDelay:      DefaultErrorDelay,
		PostWords:       DefaultPostWords,
		DiscussionWords: DefaultDiscussionWords,
		OutputFile:      DefaultOutputFile,
		Sort:            DefaultSort,
		TimeFilter:      DefaultTimeFilter,
		Credentials:     Credentials{UserAgent: DefaultUserAgent},
	}
}

// loadConfigFromFile overlays a YAML file on top of the defaults
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return config, nil
}

// LoadDotEnv loads .env files with priority: .env.local > .env.
// godotenv.Load does not overwrite variables that are already set,
// so the process environment always wins.
func LoadDotEnv() []string {
	candidates := []string{".env.local", ".env"}
	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		if err := godotenv.Load(loaded...); err != nil {
			log.WithError(err).Warn("Failed to load .env files")
		}
	}
	return loaded
}

// applyEnv fills credentials from the environment; a user agent in the
// environment takes precedence over the config file
func (c *Config) applyEnv() {
	c.Credentials.ClientID = os.Getenv(envClientID)
	c.Credentials.ClientSecret = os.Getenv(envClientSecret)
	if ua := os.Getenv(envUserAgent); ua != "" {
		c.Credentials.UserAgent = ua
	}
}

// LoadConfig builds the run configuration:
// 1. Built-in defaults
// 2. YAML file (if specified)
// 3. Credentials from the environment, after loading .env files
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		log.WithField("path", configPath).Debug("Loading config from file")
		fileConfig, err := loadConfigFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", configPath, err)
		}
		config = fileConfig
		log.WithField("path", configPath).Info("Loaded config from file")
	}

	if loaded := LoadDotEnv(); len(loaded) > 0 {
		log.WithField("files", loaded).Debug("Loaded environment files")
	}
	config.applyEnv()

	return config, nil
}

// Validate checks the limits and word budgets of the scrape settings
func (c *Config) Validate() error {
	var errs []error
	if c.SearchLimit <= 0 {
		errs = append(errs, fmt.Errorf("search_limit must be positive, got %d", c.SearchLimit))
	}
	if c.PostWords <= 0 {
		errs = append(errs, fmt.Errorf("post_words must be positive, got %d", c.PostWords))
	}
	if c.DiscussionWords <= 0 {
		errs = append(errs, fmt.Errorf("discussion_words must be positive, got %d", c.DiscussionWords))
	}
	if c.RequestDelay < 0 {
		errs = append(errs, fmt.Errorf("request_delay must not be negative, got %s", c.RequestDelay))
	}
	if c.ErrorDelay < 0 {
		errs = append(errs, fmt.Errorf("error_delay must not be negative, got %s", c.ErrorDelay))
	}
	if c.OutputFile == "" {
		errs = append(errs, errors.New("output_file must be set"))
	}
	return errors.Join(errs...)
}

// ValidateCredentials checks that the Reddit API can be authenticated against
func (c *Credentials) ValidateCredentials() error {
	var errs []error
	if c.ClientID == "" {
		errs = append(errs, fmt.Errorf("%s is not set", envClientID))
	}
	if c.ClientSecret == "" {
		errs = append(errs, fmt.Errorf("%s is not set", envClientSecret))
	}
	if c.UserAgent == "" {
		errs = append(errs, errors.New("user agent is empty"))
	}
	return errors.Join(errs...)
}

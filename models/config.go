// Package models defines shared data structures and configuration for the
// timeline-digest pipeline.
package models

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every runtime option for the collect and summarize stages.
// Loaded from a YAML file with ${VAR} environment expansion; every field has
// a default so an empty file is a valid config (except the API key, which is
// only required once summarization actually runs).
type Config struct {
	Handle       string  `yaml:"handle"`
	HoursBack    float64 `yaml:"hours_back"`
	OutputTZ     string  `yaml:"output_tz"`
	CorpusFile   string  `yaml:"corpus_file"`
	SummaryFile  string  `yaml:"summary_file"`
	MaxScrolls   int     `yaml:"max_scrolls"`
	ScrollWaitMS int     `yaml:"scroll_wait_ms"`
	CookiesFile  string  `yaml:"cookies_file"`
	DBPath       string  `yaml:"db_path"`

	MaxChunkBytes int    `yaml:"max_chunk_bytes"`
	Model         string `yaml:"model"`
	APIKey        string `yaml:"api_key"`
	Instructions  string `yaml:"instructions"`

	UserAgent string `yaml:"user_agent"`
	Headless  *bool  `yaml:"headless"`
}

// DefaultInstructions is the digest template handed to the generation service
// for both the per-chunk and the final synthesis calls.
const DefaultInstructions = `Summarize the following headlines into a concise Daily Macro & Markets Recap.
Divide the summary into clear sections by region and country, using headings and bullet points.
Group closely related news together and keep only the most relevant news for financial markets.
Keep the summary within 2 pages maximum, and max 5 bullet points per country.
Use the following sections, but remove those without relevant news:
1. Euro Area (Germany, France, Italy, Spain, Greece, Portugal, Belgium, Netherlands, Austria, Ireland, Finland)
2. Nordics (Sweden, Norway, Denmark, not Switzerland)
3. United Kingdom
4. Switzerland
5. North America (only United States and Canada)
6. APAC (only China, Japan, Australia, and New Zealand)
Make a subsection for each country for sections including many countries, and keep max 5 bullet points per country.
Use a headline line for each country (e.g., United States - Housing soft, Fed bias tilts dovish).
Divide every section with a horizontal line (---).`

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
// Unset variables are left as-is so validation can report them meaningfully.
func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

func setDefaults(cfg *Config) {
	if cfg.Handle == "" {
		cfg.Handle = "financialjuice"
	}
	if cfg.HoursBack == 0 {
		cfg.HoursBack = 24
	}
	if cfg.OutputTZ == "" {
		cfg.OutputTZ = "Europe/Zurich"
	}
	if cfg.CorpusFile == "" {
		cfg.CorpusFile = "timeline_last_hours.txt"
	}
	if cfg.SummaryFile == "" {
		cfg.SummaryFile = "summary.md"
	}
	if cfg.MaxScrolls == 0 {
		cfg.MaxScrolls = 80
	}
	if cfg.ScrollWaitMS == 0 {
		cfg.ScrollWaitMS = 1600
	}
	if cfg.CookiesFile == "" {
		cfg.CookiesFile = "x_cookies.json"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "timeline-digest.db"
	}
	if cfg.MaxChunkBytes == 0 {
		cfg.MaxChunkBytes = 15000
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.Instructions == "" {
		cfg.Instructions = DefaultInstructions
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Headless == nil {
		headless := true
		cfg.Headless = &headless
	}
}

func validate(cfg *Config) error {
	if cfg.Handle == "" {
		return fmt.Errorf("config: handle is required")
	}
	if cfg.HoursBack <= 0 {
		return fmt.Errorf("config: hours_back must be positive, got %v", cfg.HoursBack)
	}
	if cfg.MaxScrolls <= 0 {
		return fmt.Errorf("config: max_scrolls must be positive, got %d", cfg.MaxScrolls)
	}
	if cfg.ScrollWaitMS < 0 {
		return fmt.Errorf("config: scroll_wait_ms must not be negative, got %d", cfg.ScrollWaitMS)
	}
	if cfg.MaxChunkBytes < 1 {
		return fmt.Errorf("config: max_chunk_bytes must be at least 1, got %d", cfg.MaxChunkBytes)
	}
	if _, err := time.LoadLocation(cfg.OutputTZ); err != nil {
		return fmt.Errorf("config: invalid output_tz %q: %w", cfg.OutputTZ, err)
	}
	return nil
}

// RequireAPIKey reports a configuration error when no generation-service
// credential is available. Called by the summarize path before any request
// is issued.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("config: %w", ErrMissingAPIKey)
	}
	return nil
}

// Window returns the trailing collection window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.HoursBack * float64(time.Hour))
}

// ScrollWait returns the per-iteration settle delay.
func (c *Config) ScrollWait() time.Duration {
	return time.Duration(c.ScrollWaitMS) * time.Millisecond
}

// Location resolves the configured output timezone. Validation guarantees it
// loads, so errors here only happen on a hand-built Config.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.OutputTZ)
}

// LoadConfig reads the YAML config file, expands environment variables,
// applies defaults, and validates the result. A missing file is not an error:
// defaults cover every option.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	} else {
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions. Secrets normally come from the environment (ApplyEnv).

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const (
	defaultListen        = "127.0.0.1:3000"
	defaultLogLevel      = "info"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultAITimeoutSec  = 60
	defaultSpoolDir      = "./uploads"
	defaultMaxBytes      = 20 << 20
	defaultSweep         = "*/30 * * * *"
	defaultMaxAgeMinutes = 60
)

// AIConfig selects and configures the AI completion provider. An empty
// APIKey disables AI extraction; documents then go straight to the
// heuristic extractor.
type AIConfig struct {
	// Provider is "openai" (default) or "gemini".
	Provider string `yaml:"provider" json:"provider"`
	// Model is the provider-specific model identifier.
	Model string `yaml:"model" json:"model"`
	// BaseURL overrides the OpenAI API root (e.g. for a proxy). Unused for gemini.
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	// APIKey is usually left empty in the file and supplied via
	// OPENAI_API_KEY / GEMINI_API_KEY.
	APIKey string `yaml:"api_key,omitempty" json:"-"`
	// TimeoutSeconds bounds a single completion call.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Enabled reports whether an AI provider credential is present.
func (a AIConfig) Enabled() bool {
	return strings.TrimSpace(a.APIKey) != ""
}

// UploadConfig controls the on-disk spool used for multipart uploads.
type UploadConfig struct {
	// SpoolDir holds uploaded files while they are decoded.
	SpoolDir string `yaml:"spool_dir" json:"spool_dir"`
	// MaxBytes caps the size of one upload request.
	MaxBytes int64 `yaml:"max_bytes" json:"max_bytes"`
	// Sweep is a cron-style schedule (e.g. "*/30 * * * *") for removing
	// spool files left behind by interrupted requests.
	Sweep string `yaml:"sweep" json:"sweep"`
	// MaxAgeMinutes is how old a spool file must be before Sweep removes it.
	MaxAgeMinutes int `yaml:"max_age_minutes" json:"max_age_minutes"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// LogLevel is one of "debug", "info", "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Concurrency is how many documents of one batch are extracted at the
	// same time. 1 processes them sequentially.
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	AI     AIConfig     `yaml:"ai" json:"ai"`
	Upload UploadConfig `yaml:"upload" json:"upload"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}

	switch c.AI.Provider {
	case ProviderOpenAI, ProviderGemini:
		// ok
	default:
		// Unknown or empty; openai matches the schema contract we build.
		c.AI.Provider = ProviderOpenAI
	}
	if c.AI.Model == "" {
		if c.AI.Provider == ProviderGemini {
			c.AI.Model = defaultGeminiModel
		} else {
			c.AI.Model = defaultOpenAIModel
		}
	}
	if c.AI.BaseURL == "" && c.AI.Provider == ProviderOpenAI {
		c.AI.BaseURL = defaultOpenAIBaseURL
	}
	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = defaultAITimeoutSec
	}

	if c.Upload.SpoolDir == "" {
		c.Upload.SpoolDir = defaultSpoolDir
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = defaultMaxBytes
	}
	if c.Upload.Sweep == "" {
		c.Upload.Sweep = defaultSweep
	}
	if c.Upload.MaxAgeMinutes <= 0 {
		c.Upload.MaxAgeMinutes = defaultMaxAgeMinutes
	}
}

// ApplyEnv overlays environment-derived settings:
//
//   - SCHEDCAL_AI_PROVIDER selects the provider
//   - OPENAI_API_KEY / GEMINI_API_KEY supply the key for that provider; if
//     no provider was chosen and only GEMINI_API_KEY is set, gemini is used
//   - PORT overrides the listen port, keeping the configured host
//
// getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	providerSet := false
	if p := strings.ToLower(strings.TrimSpace(getenv("SCHEDCAL_AI_PROVIDER"))); p != "" {
		c.AI.Provider = p
		providerSet = true
	}

	openaiKey := getenv("OPENAI_API_KEY")
	geminiKey := getenv("GEMINI_API_KEY")
	if !providerSet && c.AI.APIKey == "" && openaiKey == "" && geminiKey != "" {
		c.AI.Provider = ProviderGemini
		c.AI.Model = ""
		c.AI.BaseURL = ""
	}
	c.AI.dropForeignDefaults()

	switch c.AI.Provider {
	case ProviderGemini:
		if geminiKey != "" {
			c.AI.APIKey = geminiKey
		}
	default:
		if openaiKey != "" {
			c.AI.APIKey = openaiKey
		}
	}

	if port := strings.TrimSpace(getenv("PORT")); port != "" {
		host := "0.0.0.0"
		if i := strings.LastIndex(c.Listen, ":"); i > 0 {
			host = c.Listen[:i]
		}
		c.Listen = host + ":" + port
	}

	c.Normalize()
}

// dropForeignDefaults clears a model or base URL that is still another
// provider's default, so Normalize refills them for the selected provider.
// Explicitly chosen values are kept.
func (a *AIConfig) dropForeignDefaults() {
	switch a.Provider {
	case ProviderGemini:
		if a.Model == defaultOpenAIModel {
			a.Model = ""
		}
		if a.BaseURL == defaultOpenAIBaseURL {
			a.BaseURL = ""
		}
	case ProviderOpenAI:
		if a.Model == defaultGeminiModel {
			a.Model = ""
		}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".schedcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

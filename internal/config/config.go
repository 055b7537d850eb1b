package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	appLog "eventcal/internal/log"
)

// Source types accepted in SourceConfig.Type.
const (
	SourceTypeHTTP = "http"
	SourceTypeFile = "file"
)

// SourceConfig describes one entry of the event source chain. The chain is
// tried in list order; the first source that yields a parseable document
// wins.
type SourceConfig struct {
	// Name identifies the source in logs.
	Name string `yaml:"name" json:"name"`
	// Type is "http" or "file".
	Type string `yaml:"type" json:"type"`
	// URL is the document endpoint for http sources.
	URL string `yaml:"url,omitempty" json:"url,omitempty"`
	// Path is the document location for file sources.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used when resolving "today" and when
	// converting event times for calendar links (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// driving the periodic event refresh.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Sources is the ordered event source chain.
	Sources []SourceConfig `yaml:"sources" json:"sources"`

	// PrefsFile is where client view preferences are persisted.
	PrefsFile string `yaml:"prefs_file" json:"prefs_file"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "Europe/Berlin",
		RefreshCron: "*/15 * * * *",
		Sources: []SourceConfig{
			{Name: "fallback", Type: SourceTypeFile, Path: "./events.json"},
		},
		PrefsFile: "./prefs.json",
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly. Source entries without a
// usable location are dropped.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Berlin"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.PrefsFile == "" {
		c.PrefsFile = "./prefs.json"
	}

	kept := make([]SourceConfig, 0, len(c.Sources))
	for _, src := range c.Sources {
		switch src.Type {
		case SourceTypeHTTP:
			if src.URL == "" {
				continue
			}
		case SourceTypeFile:
			if src.Path == "" {
				continue
			}
		default:
			continue
		}
		if src.Name == "" {
			src.Name = src.URL + src.Path
		}
		kept = append(kept, src)
	}
	c.Sources = kept

	if len(c.Sources) == 0 {
		c.Sources = DefaultConfig().Sources
	}
}

// ApplyEnv loads a .env file (outside production) and applies environment
// overrides:
//
//   - EVENTCAL_LISTEN overrides Listen.
//   - EVENTCAL_REMOTE_URL inserts (or replaces) an http source named
//     "remote" just before the first file source, matching the remote-URL
//     fallback slot of the source chain.
func (c *Config) ApplyEnv() {
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			appLog.Debug("no .env file loaded", "err", err)
		}
	}

	if v := os.Getenv("EVENTCAL_LISTEN"); v != "" {
		c.Listen = v
	}

	if v := os.Getenv("EVENTCAL_REMOTE_URL"); v != "" {
		remote := SourceConfig{Name: "remote", Type: SourceTypeHTTP, URL: v}

		for i, src := range c.Sources {
			if src.Name == "remote" {
				c.Sources[i] = remote
				return
			}
		}
		for i, src := range c.Sources {
			if src.Type == SourceTypeFile {
				c.Sources = append(c.Sources[:i], append([]SourceConfig{remote}, c.Sources[i:]...)...)
				return
			}
		}
		c.Sources = append(c.Sources, remote)
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create the parent directory if needed,
//     write a default config with 0600 perms, and return the defaults.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
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

// Save writes the given configuration to the specified path. The write is
// atomic (temp file + rename) and the final file ends up with 0600 perms.
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

	tmp, err := os.CreateTemp(dir, ".eventcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
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
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

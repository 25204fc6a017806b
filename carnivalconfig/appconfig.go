package carnivalconfig

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const configFileName = "carnival.conf"

// NetworkConf holds the pipeline's tunable resource knobs, settable
// from carnival.conf or overridden per-invocation by CLI flags.
type NetworkConf struct {
	ContentBase        string `toml:"CONTENT_BASE"`
	MaxDownloadWorkers int    `toml:"MAX_DOWNLOAD_WORKERS"`
	MaxMemoryUsage     int64  `toml:"MAX_MEMORY_USAGE"`
}

// InstallConf holds install-path defaults.
type InstallConf struct {
	DefaultBasePath string `toml:"DEFAULT_BASE_PATH"`
}

// AppConfig is the single authoritative TOML config file for the
// installer, in the shape of the teacher's MixConfig (one struct per
// TOML section, loaded/saved as a whole).
type AppConfig struct {
	Network NetworkConf
	Install InstallConf

	filename string
}

// LoadDefaults fills AppConfig with sane values rooted at configDir.
func (c *AppConfig) LoadDefaults(configDir string) {
	c.Network.ContentBase = "https://cdn.carnivalhq.example.com"
	c.Network.MaxDownloadWorkers = 0 // 0 means "use pipeline.Options.WithDefaults"
	c.Network.MaxMemoryUsage = 0
	c.Install.DefaultBasePath = filepath.Join(configDir, "games")
	c.filename = filepath.Join(configDir, configFileName)
}

// Load reads carnival.conf from configDir, falling back to defaults
// (and writing them out) if the file does not yet exist.
func Load(configDir string) (*AppConfig, error) {
	c := &AppConfig{}
	c.LoadDefaults(configDir)

	if _, err := os.Stat(c.filename); os.IsNotExist(err) {
		return c, c.Save()
	}

	if _, err := toml.DecodeFile(c.filename, c); err != nil {
		return nil, errors.Wrap(err, "carnivalconfig.Load")
	}
	return c, nil
}

// Save writes the config back to its file, creating parent directories
// as needed.
func (c *AppConfig) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.filename), 0755); err != nil {
		return errors.Wrap(err, "carnivalconfig.Save")
	}
	f, err := os.OpenFile(c.filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "carnivalconfig.Save")
	}
	defer func() { _ = f.Close() }()

	return toml.NewEncoder(f).Encode(c)
}

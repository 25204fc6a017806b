// Package carnivalconfig resolves the application's config directory, the
// root under which the manifest cache, library cache, and install state all
// live.
package carnivalconfig

import (
	"os"
	"path/filepath"
)

// EnvOverride is the environment variable that, when set, takes precedence
// over the platform-appropriate application config directory.
const EnvOverride = "CARNIVAL_CONFIG_PATH"

// appDirName is the subdirectory created under the OS config directory when
// EnvOverride is not set.
const appDirName = "carnival"

// Dir returns the application's config directory: EnvOverride if set,
// otherwise "<os.UserConfigDir()>/carnival". The directory is created if it
// does not already exist.
func Dir() (string, error) {
	dir := os.Getenv(EnvOverride)
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, appDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

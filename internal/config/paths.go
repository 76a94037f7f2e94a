package config

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

const appName = "fcclipper"

// Dirs are the per-user directories the program reads from and writes to.
type Dirs struct {
	Config string
	Data   string
	Log    string
}

// DefaultDirs resolves the directories under the user's home. When the home
// directory cannot be determined everything lives in ./fcclipper-data.
func DefaultDirs() Dirs {
	home, err := homedir.Dir()
	if err != nil {
		return DirsAt("./" + appName + "-data")
	}

	data := filepath.Join(home, ".local", "share", appName)
	return Dirs{
		Config: filepath.Join(home, ".config", appName),
		Data:   data,
		Log:    filepath.Join(data, "logs"),
	}
}

// DirsAt keeps every directory under a single root.
func DirsAt(root string) Dirs {
	return Dirs{
		Config: root,
		Data:   root,
		Log:    filepath.Join(root, "logs"),
	}
}

// Ensure creates any missing directory.
func (d Dirs) Ensure() error {
	for _, dir := range []string{d.Config, d.Data, d.Log} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func (d Dirs) SettingsFile() string    { return filepath.Join(d.Config, "settings.yaml") }
func (d Dirs) CredentialsFile() string { return filepath.Join(d.Config, "config.ini") }
func (d Dirs) CacheFile() string       { return filepath.Join(d.Data, ".cache.gob") }
func (d Dirs) ProfileDir() string      { return filepath.Join(d.Data, "browser-profile") }
func (d Dirs) LogFile() string         { return filepath.Join(d.Log, appName+".log") }

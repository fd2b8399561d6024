package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/kkyr/fig"
)

const (
	EnvPrefix = "PEERLINK"
	FileName  = "config.yaml"
)

// LoadConfig loads a configuration file into the given struct.
// The path param specifies a custom path to the configuration file,
// either a file or a directory holding config.yaml.
// Reads and puts environment variables with the prefix PEERLINK_.
// Params from the config should be in uppercase separated with _.
// Without a file only the defaults and env are used.
// It returns the path of the file that was read.
func LoadConfig(config any, path string) (string, error) {
	file, err := find(path)
	if err != nil {
		return "", err
	}
	if file == "" {
		return "", LoadConfigEnv(config)
	}
	err = fig.Load(config,
		fig.File(filepath.Base(file)),
		fig.Dirs(filepath.Dir(file)),
		fig.UseEnv(EnvPrefix),
	)
	return file, err
}

func LoadConfigEnv(config any) error {
	return fig.Load(config, fig.IgnoreFile(), fig.UseEnv(EnvPrefix))
}

// find resolves the config file location. An explicit path must exist,
// the default search dirs may all be empty.
func find(path string) (string, error) {
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			path = filepath.Join(path, FileName)
			if _, err = os.Stat(path); err != nil {
				return "", err
			}
		}
		return path, nil
	}
	dirs := []string{".", "configs", "../configs", "../../configs"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".peerlink"))
	}
	for _, dir := range dirs {
		file := filepath.Join(dir, FileName)
		if _, err := os.Stat(file); err == nil {
			return file, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", nil
}

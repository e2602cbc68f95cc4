package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	clog "github.com/charmbracelet/log"
)

// Loaded is the merged config and the files that contributed to it.
type Loaded struct {
	Config  Config
	Applied []Source
}

// Paths returns the applied file paths in the order they were decoded.
func (l Loaded) Paths() []string {
	paths := make([]string, len(l.Applied))
	for i, src := range l.Applied {
		paths[i] = src.Path
	}
	return paths
}

// Loader decodes config files over the defaults.
type Loader struct {
	log  *clog.Logger
	stat func(string) (fs.FileInfo, error)
}

func NewLoader() *Loader {
	return &Loader{
		log:  clog.Default().WithPrefix("config"),
		stat: os.Stat,
	}
}

// Load decodes each existing source in order, so later files override earlier
// ones key by key, then validates the result. Missing files are skipped, except
// an override file, which must exist.
func (l *Loader) Load(sources []Source) (Loaded, error) {
	loaded := Loaded{Config: DefaultConfig()}

	for _, src := range sources {
		info, err := l.stat(src.Path)
		if err != nil {
			if src.Scope == ScopeOverride && errors.Is(err, fs.ErrNotExist) {
				return Loaded{}, fmt.Errorf("%s points at a missing file: %s", EnvOverride, src.Path)
			}
			continue
		}
		if info.IsDir() {
			l.log.Debug("Skipping directory named like a config file", "path", src.Path)
			continue
		}

		md, err := toml.DecodeFile(src.Path, &loaded.Config)
		if err != nil {
			return Loaded{}, fmt.Errorf("failed to parse %s: %w", src.Path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			l.log.Warn("Unknown config keys", "path", src.Path, "keys", undecoded)
		}
		loaded.Applied = append(loaded.Applied, src)
	}

	if err := loaded.Config.Validate(); err != nil {
		return Loaded{}, fmt.Errorf("invalid config: %w", err)
	}
	return loaded, nil
}

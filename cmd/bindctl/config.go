package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type logConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type stressConfig struct {
	Workers int    `toml:"workers"`
	Objects int    `toml:"objects"`
	Policy  string `toml:"policy"`
}

type config struct {
	Log    logConfig    `toml:"log"`
	Stress stressConfig `toml:"stress"`
}

func defaultConfig() config {
	return config{
		Log:    logConfig{Level: "warn", Format: "console"},
		Stress: stressConfig{Workers: 4, Objects: 1000, Policy: "raw"},
	}
}

// loadConfig reads path over the defaults. Keys missing from the file keep
// their default values.
func loadConfig(path string) (config, error) {
	c := defaultConfig()
	meta, err := toml.DecodeFile(path, &c)
	if err != nil {
		return config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	return c, nil
}

func (c config) validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (expected debug|info|warn|error)", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q (expected console|json)", c.Log.Format)
	}
	if _, err := readPolicy(c.Stress.Policy); err != nil {
		return err
	}
	if c.Stress.Workers <= 0 || c.Stress.Objects < 0 {
		return fmt.Errorf("invalid [stress] workers=%d objects=%d", c.Stress.Workers, c.Stress.Objects)
	}
	return nil
}

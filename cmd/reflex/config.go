package main

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the configuration file read from the working directory
// when no other is named.
const ConfigFileName = "reflex.toml"

// Config holds the settings of a session.
type Config struct {
	// Trace logs every dispatched instruction.
	Trace bool `toml:"trace"`
	// Sigil introduces identifiers resolved from the environment. Empty
	// disables environment lookups.
	Sigil string `toml:"sigil"`
	// Prompt is the REPL prompt.
	Prompt string `toml:"prompt"`
	// History is the file holding REPL history. Empty disables history.
	History string `toml:"history"`
	// Using lists libraries imported into every scope.
	Using []string `toml:"using"`
}

// DefaultConfig returns the settings used when no configuration file exists.
func DefaultConfig() *Config {
	return &Config{
		Sigil:  "$",
		Prompt: "reflex> ",
	}
}

// LoadConfig reads a configuration file over the defaults. If the file does
// not exist and required is false, the defaults are returned.
func LoadConfig(path string, required bool) (*Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if utf8.RuneCountInString(config.Sigil) > 1 {
		return nil, fmt.Errorf("sigil %q must be a single character", config.Sigil)
	}
	return config, nil
}

// SigilRune returns the sigil as a rune, or zero if there is none.
func (c *Config) SigilRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Sigil)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

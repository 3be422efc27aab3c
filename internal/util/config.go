package util

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds runtime settings and flags shared across the program.
// Precedence, highest wins: command-line flag > environment variable >
// TOML settings file > struct default.
type Config struct {
	SeedText     string
	DSN          string
	WorldDir     string
	TextDensity  string // concise|standard|rich
	UseOracle    bool
	OracleAPIKey string
	Debug        bool
	RulesVersion string
}

// fileSettings is the shape of the optional TOML settings file. Only
// fields a deployment wants to override need be present.
type fileSettings struct {
	DSN         string `toml:"dsn"`
	WorldDir    string `toml:"world_dir"`
	TextDensity string `toml:"text_density"`
	UseOracle   bool   `toml:"use_oracle"`
}

// LoadFileSettings reads a TOML settings file if it exists. A missing
// file is not an error: every field just keeps its struct-default zero
// value, to be filled in by env/flags as usual.
func LoadFileSettings(path string) (Config, error) {
	var fs fileSettings
	if path == "" {
		return Config{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Config{}, nil
	}
	if _, err := toml.DecodeFile(path, &fs); err != nil {
		return Config{}, err
	}
	return Config{
		DSN:         fs.DSN,
		WorldDir:    fs.WorldDir,
		TextDensity: fs.TextDensity,
		UseOracle:   fs.UseOracle,
	}, nil
}

// ApplyEnv overlays environment variables onto cfg, overriding whatever
// the TOML file set (env wins over file, flags set by the caller win
// over both since they're applied after ApplyEnv returns).
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv("ADVENTURE_DSN"); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv("ADVENTURE_WORLD_DIR"); v != "" {
		cfg.WorldDir = v
	}
	if v := os.Getenv("ADVENTURE_TEXT_DENSITY"); v != "" {
		cfg.TextDensity = v
	}
	if v := os.Getenv("ADVENTURE_USE_ORACLE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.UseOracle = b
		}
	}
	if v := os.Getenv("ADVENTURE_ORACLE_API_KEY"); v != "" {
		cfg.OracleAPIKey = v
	}
	if os.Getenv("ADVENTURE_DEBUG") == "1" {
		cfg.Debug = true
	}
	return cfg
}

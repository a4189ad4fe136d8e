package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

type fileConfig struct {
	TZ        string                `toml:"tz"`
	Output    string                `toml:"output"`
	Fields    string                `toml:"fields"`
	Now       string                `toml:"now"`
	Seed      *uint64               `toml:"seed"`
	LogLevel  string                `toml:"log_level"`
	OutputDir string                `toml:"output_dir"`
	UserID    string                `toml:"user_id"`
	Profile   string                `toml:"profile"`
	Profiles  map[string]fileConfig `toml:"profiles"`
}

func resolveGlobalOptions(cmd *cobra.Command, defaults *globalOptions) (*globalOptions, error) {
	resolved := *defaults

	profile := firstNonEmpty(env("TASKGEN_PROFILE"), defaults.Profile)
	if flagValueChanged(cmd, "profile") {
		profile = defaults.Profile
	}
	if profile == "" {
		profile = "default"
	}
	resolved.Profile = profile

	userPath := defaultUserConfigPath()
	projectPath := ".taskgen.toml"
	configPath := firstNonEmpty(env("TASKGEN_CONFIG"), userPath)
	explicit := flagValueChanged(cmd, "config") || env("TASKGEN_CONFIG") != ""
	if flagValueChanged(cmd, "config") {
		configPath = defaults.Config
	}

	if cfg, ok, _ := readConfigFile(userPath); ok {
		applyFileConfig(&resolved, cfg, profile)
	}
	if cfg, ok, _ := readConfigFile(projectPath); ok {
		applyFileConfig(&resolved, cfg, profile)
	}
	if configPath != "" && configPath != userPath && configPath != projectPath {
		cfg, ok, err := readConfigFile(configPath)
		if err != nil && explicit {
			return nil, err
		}
		if ok {
			applyFileConfig(&resolved, cfg, profile)
		}
	}

	if err := applyEnv(&resolved); err != nil {
		return nil, err
	}
	applyFlags(cmd, &resolved, defaults)

	if resolved.Config == "" {
		resolved.Config = configPath
	}
	return &resolved, nil
}

func applyFileConfig(dst *globalOptions, cfg fileConfig, profile string) {
	if p, ok := cfg.Profiles[profile]; ok {
		cfg = mergeFileConfig(cfg, p)
	}
	if cfg.TZ != "" {
		dst.TZ = cfg.TZ
	}
	if cfg.Fields != "" {
		dst.Fields = cfg.Fields
	}
	if cfg.Now != "" {
		dst.Now = cfg.Now
	}
	if cfg.Seed != nil {
		dst.Seed = *cfg.Seed
	}
	if cfg.LogLevel != "" {
		dst.LogLevel = cfg.LogLevel
	}
	if cfg.OutputDir != "" {
		dst.OutputDir = cfg.OutputDir
	}
	if cfg.UserID != "" {
		dst.UserID = cfg.UserID
	}
	if cfg.Output != "" {
		setOutputMode(dst, cfg.Output)
	}
}

func mergeFileConfig(base, overlay fileConfig) fileConfig {
	if overlay.TZ != "" {
		base.TZ = overlay.TZ
	}
	if overlay.Output != "" {
		base.Output = overlay.Output
	}
	if overlay.Fields != "" {
		base.Fields = overlay.Fields
	}
	if overlay.Now != "" {
		base.Now = overlay.Now
	}
	if overlay.Seed != nil {
		base.Seed = overlay.Seed
	}
	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}
	if overlay.OutputDir != "" {
		base.OutputDir = overlay.OutputDir
	}
	if overlay.UserID != "" {
		base.UserID = overlay.UserID
	}
	if overlay.Profile != "" {
		base.Profile = overlay.Profile
	}
	return base
}

func setOutputMode(dst *globalOptions, v string) {
	switch strings.ToLower(v) {
	case "json":
		dst.JSON, dst.JSONL, dst.Plain = true, false, false
	case "jsonl":
		dst.JSON, dst.JSONL, dst.Plain = false, true, false
	case "plain":
		dst.JSON, dst.JSONL, dst.Plain = false, false, true
	}
}

func applyEnv(dst *globalOptions) error {
	if v := env("TASKGEN_TIMEZONE"); v != "" {
		dst.TZ = v
	}
	if v := env("TASKGEN_FIELDS"); v != "" {
		dst.Fields = v
	}
	if v := env("TASKGEN_OUTPUT"); v != "" {
		setOutputMode(dst, v)
	}
	if v := env("TASKGEN_NOW"); v != "" {
		dst.Now = v
	}
	if v := env("TASKGEN_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TASKGEN_SEED %q: %w", v, err)
		}
		dst.Seed = seed
	}
	if v := env("TASKGEN_LOG_LEVEL"); v != "" {
		dst.LogLevel = v
	}
	if v := env("TASKGEN_OUTPUT_DIR"); v != "" {
		dst.OutputDir = v
	}
	if v := env("TASKGEN_USER_ID"); v != "" {
		dst.UserID = v
	}
	return nil
}

func applyFlags(cmd *cobra.Command, dst, fromFlags *globalOptions) {
	copyIfChanged(cmd, "json", func() { dst.JSON = fromFlags.JSON })
	copyIfChanged(cmd, "jsonl", func() { dst.JSONL = fromFlags.JSONL })
	copyIfChanged(cmd, "plain", func() { dst.Plain = fromFlags.Plain })
	copyIfChanged(cmd, "fields", func() { dst.Fields = fromFlags.Fields })
	copyIfChanged(cmd, "quiet", func() { dst.Quiet = fromFlags.Quiet })
	copyIfChanged(cmd, "verbose", func() { dst.Verbose = fromFlags.Verbose })
	copyIfChanged(cmd, "no-color", func() { dst.NoColor = fromFlags.NoColor })
	copyIfChanged(cmd, "profile", func() { dst.Profile = fromFlags.Profile })
	copyIfChanged(cmd, "config", func() { dst.Config = fromFlags.Config })
	copyIfChanged(cmd, "tz", func() { dst.TZ = fromFlags.TZ })
	copyIfChanged(cmd, "now", func() { dst.Now = fromFlags.Now })
	copyIfChanged(cmd, "seed", func() { dst.Seed = fromFlags.Seed })
	copyIfChanged(cmd, "log-level", func() { dst.LogLevel = fromFlags.LogLevel })
	copyIfChanged(cmd, "schema-version", func() { dst.SchemaVersion = fromFlags.SchemaVersion })

	// A single explicit output flag overrides env/config output mode.
	modeSet := 0
	if flagValueChanged(cmd, "json") && fromFlags.JSON {
		modeSet++
	}
	if flagValueChanged(cmd, "jsonl") && fromFlags.JSONL {
		modeSet++
	}
	if flagValueChanged(cmd, "plain") && fromFlags.Plain {
		modeSet++
	}
	if modeSet == 1 {
		if flagValueChanged(cmd, "json") && fromFlags.JSON {
			setOutputMode(dst, "json")
		}
		if flagValueChanged(cmd, "jsonl") && fromFlags.JSONL {
			setOutputMode(dst, "jsonl")
		}
		if flagValueChanged(cmd, "plain") && fromFlags.Plain {
			setOutputMode(dst, "plain")
		}
	}
}

func copyIfChanged(cmd *cobra.Command, name string, fn func()) {
	if flagValueChanged(cmd, name) {
		fn()
	}
}

func flagValueChanged(cmd *cobra.Command, name string) bool {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := cmd.InheritedFlags().Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}

// readConfigFile reports ok=false for a missing or blank path. A file that
// exists but fails to read or decode returns the error.
func readConfigFile(path string) (fileConfig, bool, error) {
	if strings.TrimSpace(path) == "" {
		return fileConfig{}, false, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileConfig{}, false, fmt.Errorf("config file %s not found", path)
		}
		return fileConfig{}, false, err
	}
	var cfg fileConfig
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return fileConfig{}, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, true, nil
}

func defaultUserConfigPath() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "taskgen", "config.toml")
	}
	home := strings.TrimSpace(os.Getenv("HOME"))
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "taskgen", "config.toml")
}

func env(k string) string { return strings.TrimSpace(os.Getenv(k)) }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

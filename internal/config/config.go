// Package config merges the config file with command-line flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"gopkg.in/yaml.v3"

	"github.com/jmagar/anydl/internal/formats"
	"github.com/jmagar/anydl/internal/model"
	"github.com/jmagar/anydl/internal/ui"
)

// LoadedConfigPath tracks which config file was loaded, empty when none was found.
var LoadedConfigPath string

var (
	// ErrNoSubcommand is returned by ParseCfg when argv names no subcommand.
	ErrNoSubcommand = errors.New("no subcommand given")
	// ErrUsage wraps command-line parse failures other than --help.
	ErrUsage = errors.New("invalid arguments")
)

// SearchPaths lists the config locations in lookup order. An explicit path
// from --config replaces the default list.
func SearchPaths(explicit string) ([]string, error) {
	if explicit != "" {
		return []string{explicit}, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return []string{
		"config.json",
		filepath.Join(homeDir, ".anydl", "config.json"),
		filepath.Join(homeDir, ".config", "anydl", "config.json"),
		filepath.Join(homeDir, ".config", "anydl", "config.yaml"),
	}, nil
}

// ReadConfig loads the first config file found. A missing default file is
// not an error and yields an empty Config; a missing --config file is.
func ReadConfig(explicit string) (*model.Config, error) {
	LoadedConfigPath = ""
	paths, err := SearchPaths(explicit)
	if err != nil {
		return nil, err
	}

	var data []byte
	var configPath string
	for _, path := range paths {
		data, err = os.ReadFile(path)
		if err == nil {
			configPath = path
			break
		}
		if explicit != "" {
			return nil, fmt.Errorf("failed to read config %s: %w", explicit, err)
		}
	}
	if data == nil {
		return &model.Config{}, nil
	}

	var obj model.Config
	if err := decode(configPath, data, &obj); err != nil {
		return nil, fmt.Errorf("failed to parse config at %s: %w", configPath, err)
	}
	LoadedConfigPath = configPath
	warnInsecure(configPath, obj)
	return &obj, nil
}

func decode(path string, data []byte, cfg *model.Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

// warnInsecure tightens permissions of a config file holding a Gotify token.
func warnInsecure(path string, cfg model.Config) {
	if cfg.GotifyToken == "" {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.Mode().Perm()&0077 == 0 {
		return
	}
	ui.PrintWarning(fmt.Sprintf("Config file %s has insecure permissions (%04o)", path, info.Mode().Perm()))
	if runtime.GOOS == "windows" {
		return
	}
	if err := os.Chmod(path, 0600); err != nil {
		ui.PrintWarning(fmt.Sprintf("Fix manually: chmod 600 %s", path))
	}
}

// ParseArgs parses argv (without the program name) using go-arg. The parser
// is returned so callers can print help or usage on error.
func ParseArgs(argv []string) (*model.Args, *arg.Parser, error) {
	var args model.Args
	p, err := arg.NewParser(arg.Config{Program: "anydl"}, &args)
	if err != nil {
		return nil, nil, err
	}
	if err := p.Parse(argv); err != nil {
		if errors.Is(err, arg.ErrHelp) {
			return &args, p, err
		}
		return &args, p, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return &args, p, nil
}

// ApplyDefaults fills zero fields with the built-in defaults.
func ApplyDefaults(cfg *model.Config) {
	cfg.ServerURL = strings.TrimRight(strings.TrimSpace(cfg.ServerURL), "/")
	if cfg.ServerURL == "" {
		cfg.ServerURL = model.DefaultServerURL
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = model.DefaultAPIPrefix
	}
	if !strings.HasPrefix(cfg.APIPrefix, "/") {
		cfg.APIPrefix = "/" + cfg.APIPrefix
	}
	cfg.OutPath = strings.TrimSpace(cfg.OutPath)
	if cfg.OutPath == "" {
		cfg.OutPath = model.DefaultOutPath
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = model.DefaultMaxAttempts
	}
	if cfg.AttemptTimeoutSeconds == 0 {
		cfg.AttemptTimeoutSeconds = int(model.DefaultAttemptTimeout / time.Second)
	}
	if cfg.InterItemDelayMs == 0 {
		cfg.InterItemDelayMs = int(model.DefaultInterItemDelay / time.Millisecond)
	}
	if cfg.RateLimitPerSecond == 0 {
		cfg.RateLimitPerSecond = model.DefaultRateLimitPerSecond
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = model.DefaultRateLimitBurst
	}
	if cfg.CircuitThreshold == 0 {
		cfg.CircuitThreshold = model.DefaultCircuitThreshold
	}
	if cfg.CircuitResetSeconds == 0 {
		cfg.CircuitResetSeconds = int(model.DefaultCircuitReset / time.Second)
	}
}

// Validate rejects values the client cannot run with.
func Validate(cfg *model.Config) error {
	u, err := url.Parse(cfg.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid serverUrl %q: must be an http(s) URL", cfg.ServerURL)
	}
	if cfg.MaxAttempts < 1 {
		return fmt.Errorf("maxAttempts must be at least 1, got %d", cfg.MaxAttempts)
	}
	if cfg.AttemptTimeoutSeconds < 1 {
		return fmt.Errorf("attemptTimeoutSeconds must be positive, got %d", cfg.AttemptTimeoutSeconds)
	}
	if cfg.InterItemDelayMs < 0 {
		return fmt.Errorf("interItemDelayMs must not be negative, got %d", cfg.InterItemDelayMs)
	}
	// Negative rateLimitPerSecond or circuitThreshold disables that guard.
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("rateLimitBurst must not be negative, got %d", cfg.RateLimitBurst)
	}
	if cfg.CircuitResetSeconds < 0 {
		return fmt.Errorf("circuitResetSeconds must not be negative, got %d", cfg.CircuitResetSeconds)
	}
	if cfg.Platform != "" && !strings.Contains(cfg.Platform, "/") &&
		formats.ParsePlatform(cfg.Platform) == formats.Other &&
		!strings.EqualFold(cfg.Platform, string(formats.Other)) {
		return fmt.Errorf("unknown platform %q (mac, windows, ios, android, linux, other)", cfg.Platform)
	}
	return nil
}

// ParseCfg parses argv, loads the config file it points at, applies flag
// overrides and defaults, and validates the result.
func ParseCfg(argv []string) (*model.Config, *model.Args, *arg.Parser, error) {
	args, p, err := ParseArgs(argv)
	if err != nil {
		return nil, args, p, err
	}
	if p.Subcommand() == nil {
		return nil, args, p, ErrNoSubcommand
	}
	cfg, err := ReadConfig(args.Config)
	if err != nil {
		return nil, args, p, err
	}
	if args.Server != "" {
		cfg.ServerURL = args.Server
	}
	if args.OutPath != "" {
		cfg.OutPath = args.OutPath
	}
	if args.Platform != "" {
		cfg.Platform = args.Platform
	}
	if args.Attempts != 0 {
		cfg.MaxAttempts = args.Attempts
	}
	if args.APILog != "" {
		cfg.APILogPath = args.APILog
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, args, p, err
	}
	return cfg, args, p, nil
}

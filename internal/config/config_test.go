package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexflint/go-arg"

	"github.com/jmagar/anydl/internal/model"
	"github.com/jmagar/anydl/internal/testutil"
)

func writeFile(t *testing.T, path, body string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), perm); err != nil {
		t.Fatal(err)
	}
}

func TestReadConfig_MissingDefaultsToEmpty(t *testing.T) {
	testutil.WithTempHome(t)
	testutil.ChdirTemp(t)
	cfg, err := ReadConfig("")
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if *cfg != (model.Config{}) || LoadedConfigPath != "" {
		t.Fatalf("cfg = %+v, path = %q", cfg, LoadedConfigPath)
	}
}

func TestReadConfig_ExplicitMissingFails(t *testing.T) {
	testutil.ChdirTemp(t)
	if _, err := ReadConfig("nope.json"); err == nil {
		t.Fatal("expected error for missing --config file")
	}
}

func TestReadConfig_SearchOrder(t *testing.T) {
	home := testutil.WithTempHome(t)
	testutil.ChdirTemp(t)

	writeFile(t, filepath.Join(home, ".config", "anydl", "config.yaml"), "serverUrl: http://yaml:1\nmaxAttempts: 4\n", 0o600)
	cfg, err := ReadConfig("")
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.ServerURL != "http://yaml:1" || cfg.MaxAttempts != 4 {
		t.Fatalf("yaml cfg = %+v", cfg)
	}

	writeFile(t, filepath.Join(home, ".anydl", "config.json"), `{"serverUrl":"http://home:2"}`, 0o600)
	cfg, _ = ReadConfig("")
	if cfg.ServerURL != "http://home:2" {
		t.Fatalf("home json should win over yaml, got %q", cfg.ServerURL)
	}

	writeFile(t, "config.json", `{"serverUrl":"http://cwd:3","rateLimitPerSecond":2.5}`, 0o600)
	cfg, _ = ReadConfig("")
	if cfg.ServerURL != "http://cwd:3" || cfg.RateLimitPerSecond != 2.5 || LoadedConfigPath != "config.json" {
		t.Fatalf("cwd cfg = %+v from %q", cfg, LoadedConfigPath)
	}
}

func TestReadConfig_BadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.json")
	writeFile(t, path, "{", 0o600)
	if _, err := ReadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestReadConfig_TightensTokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.yml")
	writeFile(t, path, "gotifyUrl: http://g\ngotifyToken: abc\n", 0o644)
	out := testutil.CaptureStdout(t, func() {
		if _, err := ReadConfig(path); err != nil {
			t.Errorf("ReadConfig: %v", err)
		}
	})
	if out == "" {
		t.Fatal("expected a permissions warning")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("perm = %04o", info.Mode().Perm())
	}
}

func TestParseCfg_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.json")
	writeFile(t, path, `{"serverUrl":"http://file:1/","outPath":"from-file","maxAttempts":5,"interItemDelayMs":100}`, 0o600)

	cfg, args, _, err := ParseCfg([]string{"-c", path, "--server", "http://flag:9", "--attempts", "2", "get", "https://example.com/v", "-f", "22"})
	if err != nil {
		t.Fatalf("ParseCfg: %v", err)
	}
	if cfg.ServerURL != "http://flag:9" || cfg.MaxAttempts != 2 || cfg.OutPath != "from-file" || cfg.InterItemDelayMs != 100 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if args.Get == nil || args.Get.URL != "https://example.com/v" || args.Get.Format != "22" {
		t.Fatalf("get args = %+v", args.Get)
	}
	if cfg.APIPrefix != "/api" || cfg.AttemptTimeoutSeconds != 30 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestParseCfg_Subcommands(t *testing.T) {
	testutil.WithTempHome(t)
	testutil.ChdirTemp(t)

	_, args, _, err := ParseCfg([]string{"batch", "https://a", "list.txt"})
	if err != nil {
		t.Fatalf("ParseCfg: %v", err)
	}
	if args.Batch == nil || len(args.Batch.URLs) != 2 || args.Batch.Format != "best" {
		t.Fatalf("batch args = %+v", args.Batch)
	}

	if _, _, _, err := ParseCfg(nil); !errors.Is(err, ErrNoSubcommand) {
		t.Fatalf("err = %v, want ErrNoSubcommand", err)
	}
	if _, _, _, err := ParseCfg([]string{"--help"}); !errors.Is(err, arg.ErrHelp) {
		t.Fatalf("err = %v, want arg.ErrHelp", err)
	}
}

func TestApplyDefaultsAndValidate(t *testing.T) {
	cfg := &model.Config{ServerURL: " http://host:8000/ ", APIPrefix: "v1"}
	ApplyDefaults(cfg)
	if cfg.ServerURL != "http://host:8000" || cfg.APIPrefix != "/v1" || cfg.OutPath != model.DefaultOutPath {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.MaxAttempts != 3 || cfg.InterItemDelayMs != 500 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.CircuitThreshold != 5 || cfg.CircuitResetSeconds != 30 || cfg.RateLimitPerSecond != 10 || cfg.RateLimitBurst != 10 {
		t.Fatalf("guards not defaulted: %+v", cfg)
	}
	if cfg.CircuitThreshold <= cfg.MaxAttempts {
		t.Fatalf("default threshold %d must exceed default attempts %d", cfg.CircuitThreshold, cfg.MaxAttempts)
	}

	disabled := &model.Config{RateLimitPerSecond: -1, CircuitThreshold: -1}
	ApplyDefaults(disabled)
	if disabled.RateLimitPerSecond != -1 || disabled.CircuitThreshold != -1 {
		t.Fatalf("explicitly disabled guards were overwritten: %+v", disabled)
	}
	if err := Validate(disabled); err != nil {
		t.Fatalf("Validate disabled guards: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*model.Config)
	}{
		{"bad scheme", func(c *model.Config) { c.ServerURL = "ftp://host" }},
		{"no host", func(c *model.Config) { c.ServerURL = "http://" }},
		{"zero attempts", func(c *model.Config) { c.MaxAttempts = -1 }},
		{"negative delay", func(c *model.Config) { c.InterItemDelayMs = -5 }},
		{"negative burst", func(c *model.Config) { c.RateLimitBurst = -1 }},
		{"negative circuit reset", func(c *model.Config) { c.CircuitResetSeconds = -1 }},
		{"unknown platform", func(c *model.Config) { c.Platform = "amiga" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := *cfg
			tc.mutate(&c)
			if err := Validate(&c); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	ok := *cfg
	ok.Platform = "other"
	if err := Validate(&ok); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

// SPDX-License-Identifier: MPL-2.0

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"precipice-cli/internal/bench"
)

func overrideDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)
	return dir
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Runs != bench.DefaultRuns {
		t.Errorf("expected default runs %d, got %d", bench.DefaultRuns, cfg.Runs)
	}
	if !cfg.Warmup {
		t.Error("expected warmup enabled by default")
	}
	if cfg.TargetPath != "" {
		t.Errorf("expected empty target path, got %q", cfg.TargetPath)
	}
	if len(cfg.TargetArgs) != 0 || len(cfg.TraceFiles) != 0 {
		t.Error("expected empty lists by default")
	}
}

func TestLoadWithoutFile(t *testing.T) {
	overrideDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := overrideDir(t)
	bin := touch(t, dir, "mybin")
	tr1 := touch(t, dir, "t1.csv")
	tr2 := touch(t, dir, "t2.csv")

	in := &Config{
		TargetPath: bin,
		TargetArgs: []string{"--fast", "-n", "2"},
		Runs:       250,
		Warmup:     false,
		TraceFiles: []string{tr1, tr2},
	}
	if err := Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("round trip changed config:\n  saved  %+v\n  loaded %+v", in, out)
	}
}

func TestLoadDropsMissingPaths(t *testing.T) {
	dir := overrideDir(t)
	kept := touch(t, dir, "kept.csv")
	gone := filepath.Join(dir, "gone.csv")

	in := &Config{
		TargetPath: filepath.Join(dir, "deleted-binary"),
		Runs:       10,
		TraceFiles: []string{kept, gone},
	}
	if err := Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.TargetPath != "" {
		t.Errorf("expected missing target path to be dropped, got %q", out.TargetPath)
	}
	if !reflect.DeepEqual(out.TraceFiles, []string{kept}) {
		t.Errorf("expected only existing trace files, got %v", out.TraceFiles)
	}
}

func TestLoadEmptyListsStayEmpty(t *testing.T) {
	overrideDir(t)

	// An empty joined string must decode to no elements, not to [""].
	if err := Save(&Config{Runs: 5}); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out.TargetArgs) != 0 {
		t.Errorf("expected no args, got %v", out.TargetArgs)
	}
	if len(out.TraceFiles) != 0 {
		t.Errorf("expected no trace files, got %v", out.TraceFiles)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	dir := overrideDir(t)
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("expected error for corrupt preferences file")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "deep", "nested")
	SetConfigDirOverride(nested)
	t.Cleanup(Reset)

	if err := Save(DefaultConfig()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(nested, ConfigFileName+"."+ConfigFileExt)); err != nil {
		t.Errorf("expected config file to exist: %v", err)
	}
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scenepack/internal/config"
	"scenepack/internal/document"
	"scenepack/internal/store/localblob"
	"scenepack/internal/store/sqlite"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, packageName string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
workspace_dir = %q
archive_dir = %q
log_dir = %q
database_path = %q

[package]
name = %q
title = "Haunted Keep"
author = "Tester"
version = "1.0.0"

[origin]
base_url = "http://localhost:30000"
`,
		filepath.Join(base, "workspace"),
		filepath.Join(base, "archives"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "db", "scenepack.db"),
		packageName,
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func (env *cliTestEnv) seedDocuments(t *testing.T, docs map[document.Kind][]*document.Document) {
	t.Helper()

	db, err := sqlite.OpenPath(env.cfg.Paths.DatabasePath)
	if err != nil {
		t.Fatalf("sqlite.OpenPath: %v", err)
	}
	defer db.Close()

	for kind, batch := range docs {
		if _, err := db.CreateMany(context.Background(), kind, batch); err != nil {
			t.Fatalf("seed %s documents: %v", kind, err)
		}
	}
}

func (env *cliTestEnv) seedBlob(t *testing.T, storagePath string, data []byte) {
	t.Helper()

	blobs, err := localblob.New(filepath.Join(env.cfg.Paths.WorkspaceDir, "files"))
	if err != nil {
		t.Fatalf("localblob.New: %v", err)
	}
	if err := blobs.Upload(context.Background(), storagePath, data); err != nil {
		t.Fatalf("seed blob %s: %v", storagePath, err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "convexgen.yml")
	src := `
schema: convex/schema.ts
functions:
  - convex/messages.ts
  - convex/users.ts
out: api/client.go
package: api
workers: 4
helper_stubs:
  "./validators": |
    export const status = v.union(v.literal("a"), v.literal("b"));
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := LoadProjectConfig(path)
	require.NoError(t, err)

	// Relative paths resolve against the config file's directory.
	assert.Equal(t, filepath.Join(dir, "convex", "schema.ts"), cfg.Schema)
	assert.Equal(t, []string{
		filepath.Join(dir, "convex", "messages.ts"),
		filepath.Join(dir, "convex", "users.ts"),
	}, cfg.Functions)
	assert.Equal(t, filepath.Join(dir, "api", "client.go"), cfg.Out)
	assert.Equal(t, "api", cfg.Package)
	assert.Equal(t, 4, cfg.Workers)
	assert.Contains(t, cfg.HelperStubs["./validators"], "export const status")
}

func TestLoadProjectConfigStubFile(t *testing.T) {
	dir := t.TempDir()
	stubPath := filepath.Join(dir, "validators.ts")
	stubSrc := `export const status = v.union(v.literal("a"), v.literal("b"));`
	require.NoError(t, os.WriteFile(stubPath, []byte(stubSrc), 0o644))

	path := filepath.Join(dir, "convexgen.yml")
	src := `
schema: schema.ts
out: client.go
helper_stubs:
  "./validators": validators.ts
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := LoadProjectConfig(path)
	require.NoError(t, err)
	// A stub value naming a file next to the config is read as source.
	assert.Equal(t, stubSrc, cfg.HelperStubs["./validators"])
}

func TestLoadProjectConfigMissing(t *testing.T) {
	_, err := LoadProjectConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadProjectConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convexgen.yml")
	require.NoError(t, os.WriteFile(path, []byte("schema: [broken"), 0o644))
	_, err := LoadProjectConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")
}

func TestProjectConfigMerge(t *testing.T) {
	cfg := &ProjectConfig{
		Schema:  "a/schema.ts",
		Out:     "a/client.go",
		Package: "api",
		Workers: 2,
	}
	cfg.merge(&ProjectConfig{Schema: "b/schema.ts", Workers: 8})
	assert.Equal(t, "b/schema.ts", cfg.Schema)
	assert.Equal(t, "a/client.go", cfg.Out)
	assert.Equal(t, "api", cfg.Package)
	assert.Equal(t, 8, cfg.Workers)

	gc := cfg.genConfig()
	assert.Equal(t, "b/schema.ts", gc.SchemaPath)
	assert.Equal(t, "a/client.go", gc.OutFile)
	assert.Equal(t, 8, gc.Workers)
}

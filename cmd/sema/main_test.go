package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("text"))
	assert.Error(t, validateFormat("yaml"))
	assert.Error(t, validateFormat(""))
}

func TestFindRepoRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "src", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Equal(t, root, findRepoRoot(nested))
	assert.Equal(t, root, findRepoRoot(root))

	// No .git anywhere up the tree: the start dir is returned.
	plain := t.TempDir()
	assert.Equal(t, plain, findRepoRoot(plain))
}

func TestResolveDBPath(t *testing.T) {
	orig := flagDB
	t.Cleanup(func() { flagDB = orig })

	root := t.TempDir()

	flagDB = ""
	assert.Equal(t, filepath.Join(root, ".sema", "index.db"), resolveDBPath(root, &config{}))
	assert.Equal(t, filepath.Join(root, "custom.db"), resolveDBPath(root, &config{DB: "custom.db"}))
	assert.Equal(t, "/abs/custom.db", resolveDBPath(root, &config{DB: "/abs/custom.db"}))

	// The flag wins over the config file.
	flagDB = "flagged.db"
	assert.Equal(t, filepath.Join(root, "flagged.db"), resolveDBPath(root, &config{DB: "custom.db"}))
	flagDB = "/abs/flagged.db"
	assert.Equal(t, "/abs/flagged.db", resolveDBPath(root, &config{DB: "custom.db"}))
}

func TestLoadConfig(t *testing.T) {
	root := t.TempDir()

	// Missing file yields the zero config.
	cfg, err := loadConfig(root)
	require.NoError(t, err)
	assert.Equal(t, &config{}, cfg)

	require.NoError(t, os.WriteFile(filepath.Join(root, configName), []byte(`
db: data/idx.db
exclude:
  - generated
  - third_party
serial: true
`), 0o644))

	cfg, err = loadConfig(root)
	require.NoError(t, err)
	assert.Equal(t, "data/idx.db", cfg.DB)
	assert.Equal(t, []string{"generated", "third_party"}, cfg.Exclude)
	assert.True(t, cfg.Serial)
	assert.Len(t, cfg.engineOptions(), 2)
}

func TestLoadConfig_Malformed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, configName), []byte("db: [unclosed"), 0o644))

	_, err := loadConfig(root)
	assert.Error(t, err)
}

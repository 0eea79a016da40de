package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Overridden())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not toml {{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("analysis.default_language", "Korean"))
	require.NoError(t, store.Set("analysis.max_tokens", 2048))
	require.NoError(t, store.Set("vault.watch", true))
	require.NoError(t, store.Set("vault.exclude", []string{".obsidian", "templates"}))

	assert.Equal(t, "Korean", store.GetString("analysis.default_language"))
	assert.Equal(t, 2048, store.GetInt("analysis.max_tokens"))
	assert.True(t, store.GetBool("vault.watch"))
	assert.Equal(t, []string{".obsidian", "templates"}, store.GetStringSlice("vault.exclude"))

	// Wrong types and missing keys yield zero values.
	assert.Empty(t, store.GetString("analysis.max_tokens"))
	assert.Zero(t, store.GetInt("analysis.default_language"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))
	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("providers.anthropic.api_key", "sk-ant"))
	require.NoError(t, store.Set("providers.anthropic.model", "claude-3-5-haiku-latest"))
	require.NoError(t, store.Set("clipper.requests_per_second", 2.5))
	require.NoError(t, store.Set("analysis.max_tokens", 1000))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[providers.anthropic]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "sk-ant", reloaded.GetString("providers.anthropic.api_key"))
	assert.Equal(t, "claude-3-5-haiku-latest", reloaded.GetString("providers.anthropic.model"))
	assert.Equal(t, 1000, reloaded.GetInt("analysis.max_tokens"))
	rate, ok := reloaded.Get("clipper.requests_per_second")
	require.True(t, ok)
	assert.InDelta(t, 2.5, rate, 0.0001)
}

func TestConfigStore_ReadsFlatQuotedKeys(t *testing.T) {
	tmpDir := t.TempDir()
	content := "\"vault.path\" = \"/notes\"\n\n[analysis]\ndefault_type = \"comparison\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "/notes", store.GetString("vault.path"))
	assert.Equal(t, "comparison", store.GetString("analysis.default_type"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("k", "v"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_SetUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("shared", "value")
		}()
		go func() {
			defer wg.Done()
			_ = store.GetString("shared")
		}()
	}
	wg.Wait()

	assert.Equal(t, "value", store.GetString("shared"))
}

func TestWithEnvOverlay(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SHEAF_TEST_KEY=from-file\nSHEAF_TEST_LANG=French\nSHEAF_TEST_BLANK=\n"), 0600))
	t.Setenv("SHEAF_TEST_LANG", "Korean")

	mapping := map[string]string{
		"SHEAF_TEST_KEY":   "providers.openai.api_key",
		"SHEAF_TEST_LANG":  "analysis.default_language",
		"SHEAF_TEST_BLANK": "vault.path",
		"SHEAF_TEST_UNSET": "analysis.default_type",
	}

	store, err := NewConfigStore(tmpDir, WithEnvOverlay(mapping, envFile, filepath.Join(tmpDir, "missing.env")))
	require.NoError(t, err)

	assert.Equal(t, "from-file", store.GetString("providers.openai.api_key"))
	// Process environment beats .env files.
	assert.Equal(t, "Korean", store.GetString("analysis.default_language"))
	assert.Empty(t, store.GetString("vault.path"))
	assert.Equal(t, []string{"analysis.default_language", "providers.openai.api_key"}, store.Overridden())
}

func TestWithEnvOverlay_NotPersisted(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("SHEAF_TEST_SECRET", "sk-env")
	mapping := map[string]string{"SHEAF_TEST_SECRET": "providers.anthropic.api_key"}

	store, err := NewConfigStore(tmpDir, WithEnvOverlay(mapping))
	require.NoError(t, err)

	require.NoError(t, store.Set("providers.anthropic.api_key", "sk-file"))
	assert.Equal(t, "sk-env", store.GetString("providers.anthropic.api_key"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-env")

	plain, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", plain.GetString("providers.anthropic.api_key"))
}

func TestWithEnvOverlay_BadEnvFile(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	require.NoError(t, os.Mkdir(envFile, 0700))

	_, err := NewConfigStore(tmpDir, WithEnvOverlay(map[string]string{"X": "y"}, envFile))
	assert.Error(t, err)
}

func TestUnflattenMap(t *testing.T) {
	nested := unflattenMap(map[string]any{
		"a":     1,
		"a.b":   2,
		"c.d.e": "x",
		"c.f":   true,
	})

	assert.Equal(t, 1, nested["a"])
	assert.Equal(t, 2, nested["a.b"])
	c, ok := nested["c"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, c["f"])
	d, ok := c["d"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "x", d["e"])
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uberswe/domaingen/pkg/config"
	"github.com/uberswe/domaingen/pkg/domain"
)

// inTempDir runs the test from an empty directory so no .env file is picked up
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_MissingFile(t *testing.T) {
	dir := inTempDir(t)

	cfg, err := config.Load(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	def := domain.DefaultConfig()
	assert.Equal(t, def.Generation, cfg.Generation)
	assert.Equal(t, def.Suffixes, cfg.Suffixes)
	assert.Equal(t, def.BatchSize, cfg.BatchSize)
	assert.Equal(t, def.WindowMs, cfg.WindowMs)
}

func TestLoad_JSON(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"backend": "whois",
		"whois_api_key": "k",
		"suffixes": [".io", ".dev"],
		"batch_size": 10,
		"generation": {"min_length": 3, "max_length": 4, "charset": {"letters": true, "digits": true}}
	}`), 0600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "whois", cfg.Backend)
	assert.Equal(t, []string{".io", ".dev"}, cfg.Suffixes)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 3, cfg.Generation.MinLength)
	assert.True(t, cfg.Generation.Charset.Digits)
	// untouched fields keep their defaults
	assert.Equal(t, 60, cfg.MaxRequests)
}

func TestLoad_YAML(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: loopia\nusername: user@loopiaapi\ntld_delay_ms: 75\n"), 0600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "loopia", cfg.Backend)
	assert.Equal(t, "user@loopiaapi", cfg.Username)
	assert.Equal(t, 75, cfg.SuffixDelayMs)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOOPIA_PASSWORD=from-dotenv\n"), 0600))
	t.Setenv("LOOPIA_USERNAME", "env-user")
	t.Setenv("DOMAINGEN_SUFFIXES", ".se,.nu")
	t.Setenv("DOMAINGEN_BATCH_SIZE", "5")
	// godotenv sets the process environment directly
	t.Cleanup(func() { os.Unsetenv("LOOPIA_PASSWORD") })

	cfg, err := config.Load(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, "env-user", cfg.Username)
	assert.Equal(t, "from-dotenv", cfg.Password)
	assert.Equal(t, []string{".se", ".nu"}, cfg.Suffixes)
	assert.Equal(t, 5, cfg.BatchSize)
}

func TestLoad_Invalid(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "config.json")

	require.NoError(t, os.WriteFile(path, []byte(`{"batch_size": 0}`), 0600))
	_, err := config.Load(path)
	assert.True(t, domain.IsConfigError(err))

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0600))
	_, err = config.Load(path)
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	dir := inTempDir(t)

	for _, name := range []string{"out.json", "out.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			want := domain.DefaultConfig()
			want.Suffixes = []string{".com", ".net"}
			want.Generation.WordConstraints = []string{"go"}

			require.NoError(t, config.Save(&want, path))
			got, err := config.Load(path)
			require.NoError(t, err)
			assert.Equal(t, want, *got)
		})
	}
}

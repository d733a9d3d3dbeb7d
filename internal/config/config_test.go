package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "QZag_vDmlUwshopblUOkEONqD6d5UMDBA0syEPKAnWE="

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_RequiresFernetKey(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FERNET_KEY")
}

func TestLoad_RejectsMalformedKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("FERNET_KEY", "not-a-key")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid key")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("FERNET_KEY", testKey)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "8501", cfg.UIPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "data/db_insurance.db", cfg.DBPath)
	assert.Equal(t, "data/charges_model.json", cfg.ModelPath)
	assert.Equal(t, 10*time.Minute, cfg.PredictionCacheTTL)
	assert.Equal(t, 12*time.Hour, cfg.JWTTTL)
	assert.True(t, cfg.IsDev())
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "FERNET_KEY=" + testKey + "\nPORT=9000\nDB_DRIVER=Postgres\nDATABASE_URL=postgres://u:p@localhost:5432/medical\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "postgres://u:p@localhost:5432/medical", cfg.DatabaseURL)
}

func TestValidate(t *testing.T) {
	base := Config{FernetKey: testKey, DBDriver: "sqlite", DBPath: "x.db"}

	c := base
	assert.NoError(t, c.Validate())

	c = base
	c.DBDriver = "postgres"
	assert.ErrorContains(t, c.Validate(), "DATABASE_URL")

	c = base
	c.DBDriver = "mysql"
	assert.ErrorContains(t, c.Validate(), "DB_DRIVER")

	c = base
	c.JWTSecretKey = "secret"
	assert.ErrorContains(t, c.Validate(), "JWT_TTL")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"jwt": {"secret": "s3cret"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "minio", cfg.Storage.Backend)
	assert.Equal(t, "zippybox", cfg.Upload.Namespace)
	assert.Equal(t, DefaultMaxFileSize, cfg.Upload.MaxFileSize)
	assert.Equal(t, DefaultDeniedExtensions, cfg.Upload.DeniedExtensions)
	assert.Equal(t, 24*time.Hour, cfg.JWT.GetExpiration())
}

func TestLoadReadsFileValues(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"port": 9090},
		"database": {"driver": "sqlite3", "path": "/tmp/catalog.db"},
		"storage": {"backend": "filesystem", "dir": "/tmp/blobs"},
		"jwt": {"secret": "s3cret", "expiration": "1h"},
		"upload": {"namespace": "drive", "max_file_size": 1024}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "file:/tmp/catalog.db?cache=shared&_fk=1", cfg.Database.DSN())
	assert.Equal(t, "filesystem", cfg.Storage.Backend)
	assert.Equal(t, "drive", cfg.Upload.Namespace)
	assert.Equal(t, int64(1024), cfg.Upload.MaxFileSize)
	assert.Equal(t, time.Hour, cfg.JWT.GetExpiration())
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"jwt": {"secret": "from-file"}, "minio": {"bucket_name": "files"}}`)
	t.Setenv("ZIPPYBOX_JWT_SECRET", "from-env")
	t.Setenv("ZIPPYBOX_MINIO_BUCKET_NAME", "env-bucket")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "env-bucket", cfg.MinIO.BucketName)
}

func TestLoadRequiresSecret(t *testing.T) {
	path := writeConfig(t, `{"server": {"port": 8080}}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `{"jwt": {"secret": "x"}, "database": {"driver": "mysql"}}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	db := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", DBName: "files", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=files sslmode=disable", db.DSN())
}

func TestGetExpirationFallsBackOnGarbage(t *testing.T) {
	j := JWTConfig{Expiration: "soon"}
	assert.Equal(t, 24*time.Hour, j.GetExpiration())
}

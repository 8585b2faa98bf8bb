package store

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_FileScheme(t *testing.T) {
	f := NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))

	s, err := f.StoreFor("file://" + t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
}

func TestFactory_VaultScheme(t *testing.T) {
	f := NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))

	s, err := f.StoreFor("vault://vault.example.com:8200/secret/adcs/ca-settings?tls=true")
	require.NoError(t, err)
	require.IsType(t, &VaultStore{}, s)
	assert.Contains(t, s.(*VaultStore).LocationURI(), "https://vault.example.com:8200")

	_, err = f.StoreFor("vault://vault.example.com:8200/secret")
	assert.Error(t, err, "mount without data path is rejected")
}

func TestFactory_S3Scheme(t *testing.T) {
	f := NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))

	s, err := f.StoreFor("s3://my-bucket/adcs?region=eu-west-1")
	require.NoError(t, err)
	require.IsType(t, &S3Store{}, s)
	assert.Contains(t, s.(*S3Store).LocationURI(), "region=eu-west-1")
}

func TestFactory_UnsupportedScheme(t *testing.T) {
	f := NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := f.StoreFor("ftp://example.com/settings")
	assert.ErrorContains(t, err, "unsupported store scheme")
}

// Package store provides registry store implementations behind a
// URI-scheme factory. A store holds the certification authority settings
// addressed by target and setting name; reconciliation reads typed raw
// values from it and writes encoded strings back.
//
// Supported URI schemes:
//
//   - file:///var/lib/adcs/ca-settings
//   - vault://vault.example.com:8200/secret/adcs?tls=true
//   - s3://bucket-name/prefix?region=us-west-2
package store

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
)

// Factory creates registry stores from location URIs.
type Factory struct {
	log *slog.Logger
}

// NewFactory creates a store factory.
func NewFactory(log *slog.Logger) *Factory {
	return &Factory{log: log}
}

// StoreFor creates a registry store from a location URI. The URI format is
// [scheme]://[auth@]host[:port][/path][?params]; see the package
// documentation for the supported schemes. Returns an error for a
// malformed URI or an unsupported scheme.
func (f *Factory) StoreFor(locationURI string) (interfaces.RegistryStore, error) {
	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("invalid store location URI: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return f.createFileStore(u)
	case "vault":
		return f.createVaultStore(u)
	case "s3":
		return f.createS3Store(u)
	default:
		return nil, fmt.Errorf("unsupported store scheme: %s", u.Scheme)
	}
}

// createFileStore creates a file store from a URI like
// file:///var/lib/adcs/ca-settings.
func (f *Factory) createFileStore(u *url.URL) (interfaces.RegistryStore, error) {
	baseDir := u.Path
	if u.Host != "" {
		baseDir = u.Host + u.Path
	}
	if baseDir == "" {
		return nil, fmt.Errorf("file store URI has no path")
	}
	return NewFileStore(baseDir, f.log)
}

// createVaultStore creates a Vault store from a URI like
// vault://vault.example.com:8200/secret/adcs/ca-settings?tls=true.
// The first path segment is the KV v2 mount; the rest is the data path.
// The token comes from the URI userinfo or the Vault environment.
func (f *Factory) createVaultStore(u *url.URL) (interfaces.RegistryStore, error) {
	segments := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return nil, fmt.Errorf("vault store URI must include mount and data path: %s", u.Redacted())
	}

	scheme := "http"
	if u.Query().Get("tls") == "true" {
		scheme = "https"
	}
	address := fmt.Sprintf("%s://%s", scheme, u.Host)

	var token string
	if u.User != nil {
		token, _ = u.User.Password()
		if token == "" {
			token = u.User.Username()
		}
	}

	return NewVaultStore(address, segments[0], segments[1], token, f.log)
}

// createS3Store creates an S3 store from a URI like
// s3://access:secret@bucket/prefix?region=us-west-2&endpoint=minio:9000.
func (f *Factory) createS3Store(u *url.URL) (interfaces.RegistryStore, error) {
	bucket := u.Host
	if bucket == "" {
		return nil, fmt.Errorf("s3 store URI has no bucket")
	}

	region := u.Query().Get("region")
	if region == "" {
		region = "us-east-1"
	}

	var accessKey, secretKey string
	if u.User != nil {
		accessKey = u.User.Username()
		secretKey, _ = u.User.Password()
	}

	return NewS3Store(bucket, strings.Trim(u.Path, "/"), region, u.Query().Get("endpoint"), accessKey, secretKey, f.log)
}

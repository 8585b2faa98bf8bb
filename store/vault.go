package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
)

// VaultStore implements a registry store on HashiCorp Vault KV v2. Each
// target's settings live in a single secret holding a name-to-value map,
// and a dedicated "active" secret names the active target. Authentication
// uses the standard Vault environment (VAULT_TOKEN et al.) unless a token
// is supplied explicitly.
type VaultStore struct {
	client      *api.Client
	mountPath   string
	dataPath    string
	log         *slog.Logger
	locationURI string
}

// NewVaultStore creates a Vault-backed registry store.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - mountPath: KV v2 mount path (e.g. "secret")
//   - dataPath: path within the mount (e.g. "adcs/ca-settings")
//   - token: Vault token; empty means use the client's environment
//   - log: structured logger for operational insights
func NewVaultStore(address, mountPath, dataPath, token string, log *slog.Logger) (*VaultStore, error) {
	config := api.DefaultConfig()
	config.Address = address
	config.Timeout = 30 * time.Second

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}

	mountPath = strings.TrimSuffix(mountPath, "/")
	dataPath = strings.Trim(dataPath, "/")

	return &VaultStore{
		client:      client,
		mountPath:   mountPath,
		dataPath:    dataPath,
		log:         log,
		locationURI: fmt.Sprintf("vault://%s/%s/%s", address, mountPath, dataPath),
	}, nil
}

// ResolveActiveTarget reads the "active" secret. A missing secret or an
// empty target field means no target is active.
func (s *VaultStore) ResolveActiveTarget(ctx context.Context) (string, error) {
	secret, err := s.client.Logical().ReadWithContext(ctx, s.secretPath(activeFileName))
	if err != nil {
		return "", fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}

	data := kvData(secret)
	target, _ := data["target"].(string)
	if target == "" {
		return "", fmt.Errorf("%w: no active target at %s", interfaces.ErrStoreUnavailable, s.secretPath(activeFileName))
	}
	return target, nil
}

// SetActiveTarget writes the "active" secret naming the active target.
func (s *VaultStore) SetActiveTarget(ctx context.Context, target string) error {
	_, err := s.client.Logical().WriteWithContext(ctx, s.secretPath(activeFileName), map[string]interface{}{
		"data": map[string]interface{}{"target": target},
	})
	if err != nil {
		return fmt.Errorf("failed to write active target: %w", err)
	}
	return nil
}

// ReadValue reads one setting from the target's secret. Vault decodes KV
// payloads as JSON, so numeric values surface as json.Number and are
// reported with their native integer kind.
func (s *VaultStore) ReadValue(ctx context.Context, target, name string) (interfaces.RawValue, error) {
	secret, err := s.client.Logical().ReadWithContext(ctx, s.secretPath(target))
	if err != nil {
		return interfaces.RawValue{}, fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}

	data := kvData(secret)
	raw, ok := data[name]
	if !ok {
		return interfaces.AbsentRaw(), nil
	}

	switch v := raw.(type) {
	case string:
		return interfaces.StringRaw(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil || n < 0 || n > math.MaxUint32 {
			return interfaces.RawValue{}, fmt.Errorf("invalid numeric value for %q: %v", name, raw)
		}
		return interfaces.NumberRaw(uint32(n)), nil
	default:
		return interfaces.RawValue{}, fmt.Errorf("unsupported value type %T for %q", raw, name)
	}
}

// WriteValue stores one encoded setting in the target's secret using
// read-modify-write, since KV v2 replaces the whole data map on write.
func (s *VaultStore) WriteValue(ctx context.Context, target, name, encoded string) error {
	path := s.secretPath(target)

	secret, err := s.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrWriteFailed, err)
	}

	data := kvData(secret)
	if data == nil {
		data = map[string]interface{}{}
	}
	data[name] = encoded

	if _, err := s.client.Logical().WriteWithContext(ctx, path, map[string]interface{}{"data": data}); err != nil {
		s.log.Error("Failed to write to Vault",
			slog.String("path", path),
			slog.String("setting", name),
			"err", err)
		return fmt.Errorf("%w: %v", interfaces.ErrWriteFailed, err)
	}

	s.log.Debug("Wrote value to Vault",
		slog.String("path", path),
		slog.String("setting", name))
	return nil
}

// LocationURI returns the URI this store was created from.
func (s *VaultStore) LocationURI() string {
	return s.locationURI
}

// secretPath builds the KV v2 data path for a target's secret.
func (s *VaultStore) secretPath(target string) string {
	return fmt.Sprintf("%s/data/%s/%s", s.mountPath, s.dataPath, target)
}

// kvData unwraps the KV v2 response envelope, returning nil for a missing
// secret or malformed payload.
func kvData(secret *api.Secret) map[string]interface{} {
	if secret == nil || secret.Data == nil {
		return nil
	}
	data, _ := secret.Data["data"].(map[string]interface{})
	return data
}

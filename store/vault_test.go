package store

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
)

// fakeKV serves a minimal Vault KV v2 API backed by an in-memory map of
// secret data keyed by request path.
type fakeKV struct {
	mu      sync.Mutex
	secrets map[string]map[string]any
}

func newFakeKV() *fakeKV {
	return &fakeKV{secrets: map[string]map[string]any{}}
}

func (f *fakeKV) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/v1/")
	switch r.Method {
	case http.MethodGet:
		data, ok := f.secrets[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":[]}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"data": data},
		})
	case http.MethodPut, http.MethodPost:
		var body struct {
			Data map[string]any `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.secrets[path] = body.Data
		w.Write([]byte(`{}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestVaultStore(t *testing.T) (*VaultStore, *fakeKV) {
	t.Helper()
	kv := newFakeKV()
	srv := httptest.NewServer(kv)
	t.Cleanup(srv.Close)

	s, err := NewVaultStore(srv.URL, "secret", "adcs/ca-settings", "test-token", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s, kv
}

func TestVaultStore_ActiveTargetRoundTrip(t *testing.T) {
	s, _ := newTestVaultStore(t)
	ctx := context.Background()

	_, err := s.ResolveActiveTarget(ctx)
	assert.ErrorIs(t, err, interfaces.ErrStoreUnavailable)

	require.NoError(t, s.SetActiveTarget(ctx, "CONTOSO-CA"))

	target, err := s.ResolveActiveTarget(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CONTOSO-CA", target)
}

func TestVaultStore_ReadWriteRoundTrip(t *testing.T) {
	s, _ := newTestVaultStore(t)
	ctx := context.Background()

	raw, err := s.ReadValue(ctx, "CONTOSO-CA", "CRLPeriodUnits")
	require.NoError(t, err)
	assert.Equal(t, interfaces.RawAbsent, raw.Kind, "missing value reads as absent, not as an error")

	require.NoError(t, s.WriteValue(ctx, "CONTOSO-CA", "CRLPeriodUnits", "10"))
	require.NoError(t, s.WriteValue(ctx, "CONTOSO-CA", "CRLPeriod", "Days"))

	raw, err = s.ReadValue(ctx, "CONTOSO-CA", "CRLPeriodUnits")
	require.NoError(t, err)
	assert.Equal(t, interfaces.StringRaw("10"), raw)

	raw, err = s.ReadValue(ctx, "CONTOSO-CA", "CRLPeriod")
	require.NoError(t, err)
	assert.Equal(t, interfaces.StringRaw("Days"), raw)
}

func TestVaultStore_ReadValue_Number(t *testing.T) {
	s, kv := newTestVaultStore(t)
	kv.secrets["secret/data/adcs/ca-settings/CONTOSO-CA"] = map[string]any{
		"AuditFilter": 68,
	}

	raw, err := s.ReadValue(context.Background(), "CONTOSO-CA", "AuditFilter")
	require.NoError(t, err)
	assert.Equal(t, interfaces.NumberRaw(68), raw)
}

func TestVaultStore_ReadValue_NumberOutOfRange(t *testing.T) {
	s, kv := newTestVaultStore(t)
	ctx := context.Background()

	// Values that cannot fit a registry DWORD must surface as read
	// errors rather than wrap around to a smaller mask.
	kv.secrets["secret/data/adcs/ca-settings/CONTOSO-CA"] = map[string]any{
		"AuditFilter":         int64(4294967296),
		"ValidityPeriodUnits": -1,
	}

	_, err := s.ReadValue(ctx, "CONTOSO-CA", "AuditFilter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AuditFilter")

	_, err = s.ReadValue(ctx, "CONTOSO-CA", "ValidityPeriodUnits")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ValidityPeriodUnits")
}

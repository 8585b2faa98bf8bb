package reconciler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
	"github.com/20100g/ActiveDirectoryCSDsc/schema"
)

// fakeStore is a mutable in-memory registry store. Unlike a call mock it
// lets writes feed back into subsequent reads, which is what the
// idempotence and convergence properties are about.
type fakeStore struct {
	target    string
	values    map[string]interfaces.RawValue
	writes    []interfaces.PendingWrite
	failWrite string // name whose write is rejected
}

func newFakeStore(target string) *fakeStore {
	return &fakeStore{target: target, values: map[string]interfaces.RawValue{}}
}

func (s *fakeStore) ResolveActiveTarget(ctx context.Context) (string, error) {
	if s.target == "" {
		return "", fmt.Errorf("%w: no active CA", interfaces.ErrStoreUnavailable)
	}
	return s.target, nil
}

func (s *fakeStore) ReadValue(ctx context.Context, target, name string) (interfaces.RawValue, error) {
	raw, ok := s.values[name]
	if !ok {
		return interfaces.AbsentRaw(), nil
	}
	return raw, nil
}

func (s *fakeStore) WriteValue(ctx context.Context, target, name, encoded string) error {
	if name == s.failWrite {
		return fmt.Errorf("%w: access denied", interfaces.ErrWriteFailed)
	}
	s.writes = append(s.writes, interfaces.PendingWrite{Name: name, Encoded: encoded})
	s.values[name] = interfaces.StringRaw(encoded)
	return nil
}

// fakeSignaler records restart requests.
type fakeSignaler struct {
	requests []string
	outcome  interfaces.RestartOutcome
}

func (s *fakeSignaler) RequestRestart(ctx context.Context, service string) (interfaces.RestartOutcome, error) {
	s.requests = append(s.requests, service)
	return s.outcome, nil
}

func newTestResource(store *fakeStore, signaler *fakeSignaler) *Resource {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResource(schema.Default(), store, signaler, schema.CertSvcServiceName, log)
}

func TestGet_NoActiveTarget(t *testing.T) {
	res := newTestResource(newFakeStore(""), &fakeSignaler{})

	_, err := res.Get(context.Background())
	assert.ErrorIs(t, err, interfaces.ErrStoreUnavailable)
}

func TestGet_FullSnapshot(t *testing.T) {
	store := newFakeStore("CONTOSO-CA")
	store.values["CRLPeriodUnits"] = interfaces.NumberRaw(10)
	store.values["CRLPeriod"] = interfaces.StringRaw("Days")
	store.values["AuditFilter"] = interfaces.NumberRaw(68)
	res := newTestResource(store, &fakeSignaler{})

	current, err := res.Get(context.Background())
	require.NoError(t, err)

	require.Len(t, current, len(schema.Default().Descriptors()),
		"every schema entry present, including absent ones decoded to empty values")
	assert.Equal(t, "10", current["CRLPeriodUnits"].Scalar)
	assert.Equal(t, "Days", current["CRLPeriod"].Scalar)
	assert.ElementsMatch(t, []string{
		schema.AuditIssueAndManageCertificateRequests,
		schema.AuditChangeCAConfiguration,
	}, current["AuditFilter"].Flags)
	assert.Empty(t, current["CRLPublicationURLs"].List)
}

func TestGet_InvalidStoredMask(t *testing.T) {
	store := newFakeStore("CONTOSO-CA")
	store.values["AuditFilter"] = interfaces.NumberRaw(128)
	res := newTestResource(store, &fakeSignaler{})

	_, err := res.Get(context.Background())
	assert.ErrorIs(t, err, interfaces.ErrInvalidFlagValue)
}

func TestDiff_ListOrderInsensitive(t *testing.T) {
	sch := schema.Default()
	current := interfaces.Snapshot{"CRLPublicationURLs": interfaces.ListValue("a", "b")}
	desired := interfaces.Snapshot{"CRLPublicationURLs": interfaces.ListValue("b", "a")}

	diff, err := Diff(sch, current, desired)
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestDiff_PartialDesired(t *testing.T) {
	sch := schema.Default()
	current := interfaces.Snapshot{
		"CRLPeriodUnits": interfaces.ScalarValue("1"),
		"CRLPeriod":      interfaces.ScalarValue("Weeks"),
	}
	desired := interfaces.Snapshot{"CRLPeriodUnits": interfaces.ScalarValue("1")}

	diff, err := Diff(sch, current, desired)
	require.NoError(t, err)
	assert.Empty(t, diff, "unasserted settings are excluded from the diff entirely")
}

func TestDiff_UnknownSettingRejected(t *testing.T) {
	sch := schema.Default()
	desired := interfaces.Snapshot{"NoSuchSetting": interfaces.ScalarValue("1")}

	_, err := Diff(sch, interfaces.Snapshot{}, desired)
	assert.ErrorIs(t, err, interfaces.ErrUnknownSetting)
}

func TestDiff_SchemaOrder(t *testing.T) {
	sch := schema.Default()
	current := interfaces.Snapshot{}
	desired := interfaces.Snapshot{
		"DSConfigDN":     interfaces.ScalarValue("CN=Configuration,DC=contoso,DC=com"),
		"CRLPeriodUnits": interfaces.ScalarValue("10"),
	}

	diff, err := Diff(sch, current, desired)
	require.NoError(t, err)
	assert.Equal(t, []string{"CRLPeriodUnits", "DSConfigDN"}, diff)
}

func TestSet_Idempotent(t *testing.T) {
	store := newFakeStore("CONTOSO-CA")
	signaler := &fakeSignaler{}
	res := newTestResource(store, signaler)

	desired := interfaces.Snapshot{
		"CRLPeriodUnits":     interfaces.NumberValue(10),
		"CRLPeriod":          interfaces.ScalarValue("Days"),
		"CRLPublicationURLs": interfaces.ListValue("65:C:\\Windows\\crl\\%3%8.crl"),
		"AuditFilter": interfaces.FlagsValue(
			schema.AuditIssueAndManageCertificateRequests,
			schema.AuditChangeCAConfiguration,
		),
	}

	applied, err := res.Set(context.Background(), desired)
	require.NoError(t, err)
	assert.Equal(t, 4, applied)

	applied, err = res.Set(context.Background(), desired)
	require.NoError(t, err)
	assert.Equal(t, 0, applied, "second Set must be a no-op")

	converged, err := res.Test(context.Background(), desired)
	require.NoError(t, err)
	assert.True(t, converged, "Test must pass after Set")
}

func TestSet_ValidatesFlagsBeforeWriting(t *testing.T) {
	store := newFakeStore("CONTOSO-CA")
	signaler := &fakeSignaler{}
	res := newTestResource(store, signaler)

	desired := interfaces.Snapshot{
		"CRLPeriodUnits": interfaces.NumberValue(10),
		"AuditFilter":    interfaces.FlagsValue("NoSuchFlag"),
	}

	_, err := res.Set(context.Background(), desired)
	assert.ErrorIs(t, err, interfaces.ErrUnknownFlagName)
	assert.Empty(t, store.writes, "an invalid batch must issue zero writes")
	assert.Empty(t, signaler.requests)
}

func TestSet_RestartGating(t *testing.T) {
	store := newFakeStore("CONTOSO-CA")
	store.values["CRLPeriodUnits"] = interfaces.NumberRaw(1)
	signaler := &fakeSignaler{}
	res := newTestResource(store, signaler)

	// Empty desired: nothing asserted, no writes, no signal.
	applied, err := res.Set(context.Background(), interfaces.Snapshot{})
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Empty(t, signaler.requests)

	// One differing setting: one write, one signal.
	applied, err = res.Set(context.Background(), interfaces.Snapshot{
		"CRLPeriodUnits": interfaces.NumberValue(10),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, []string{schema.CertSvcServiceName}, signaler.requests)
}

func TestSet_ServiceNotPresentIsNoop(t *testing.T) {
	store := newFakeStore("CONTOSO-CA")
	signaler := &fakeSignaler{outcome: interfaces.ServiceNotPresent}
	res := newTestResource(store, signaler)

	applied, err := res.Set(context.Background(), interfaces.Snapshot{
		"DSDomainDN": interfaces.ScalarValue("DC=contoso,DC=com"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
}

func TestSet_PartialBatchFailure(t *testing.T) {
	store := newFakeStore("CONTOSO-CA")
	store.failWrite = "CRLPeriod"
	signaler := &fakeSignaler{}
	res := newTestResource(store, signaler)

	desired := interfaces.Snapshot{
		"CRLPeriodUnits": interfaces.NumberValue(10),
		"CRLPeriod":      interfaces.ScalarValue("Days"),
	}

	applied, err := res.Set(context.Background(), desired)
	require.ErrorIs(t, err, interfaces.ErrWriteFailed)
	assert.Contains(t, err.Error(), "CRLPeriod", "error names the failed setting")
	assert.Equal(t, 1, applied, "prior writes are retained")

	// Retry after the store recovers: only the remainder is written.
	store.failWrite = ""
	applied, err = res.Set(context.Background(), desired)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
}

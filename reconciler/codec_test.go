package reconciler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
	"github.com/20100g/ActiveDirectoryCSDsc/schema"
)

func auditDescriptor(t *testing.T) interfaces.SettingDescriptor {
	t.Helper()
	d, err := schema.Default().Lookup("AuditFilter")
	require.NoError(t, err)
	return d
}

func TestFlagRoundTrip(t *testing.T) {
	sch := schema.Default()
	d := auditDescriptor(t)

	value := interfaces.FlagsValue(
		schema.AuditIssueAndManageCertificateRequests,
		schema.AuditChangeCAConfiguration,
	)

	encoded, err := encodeValue(sch, d, value)
	require.NoError(t, err)
	assert.Equal(t, "68", encoded, "4+64")

	decoded, err := decodeValue(d, interfaces.NumberRaw(68))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		schema.AuditIssueAndManageCertificateRequests,
		schema.AuditChangeCAConfiguration,
	}, decoded.Flags)
}

func TestFlagDecode_Zero(t *testing.T) {
	decoded, err := decodeValue(auditDescriptor(t), interfaces.NumberRaw(0))
	require.NoError(t, err)
	assert.Empty(t, decoded.Flags)
}

func TestFlagDecode_UndefinedBitRejected(t *testing.T) {
	_, err := decodeValue(auditDescriptor(t), interfaces.NumberRaw(128))
	assert.ErrorIs(t, err, interfaces.ErrInvalidFlagValue)

	// A valid mask alongside an undefined bit must still fail, not be
	// silently truncated.
	_, err = decodeValue(auditDescriptor(t), interfaces.NumberRaw(68|256))
	assert.ErrorIs(t, err, interfaces.ErrInvalidFlagValue)
}

func TestFlagDecode_NumericString(t *testing.T) {
	decoded, err := decodeValue(auditDescriptor(t), interfaces.StringRaw("68"))
	require.NoError(t, err)
	assert.Len(t, decoded.Flags, 2)

	_, err = decodeValue(auditDescriptor(t), interfaces.StringRaw("not-a-mask"))
	assert.ErrorIs(t, err, interfaces.ErrInvalidFlagValue)
}

func TestFlagEncode_UnknownNameRejected(t *testing.T) {
	sch := schema.Default()
	_, err := encodeValue(sch, auditDescriptor(t), interfaces.FlagsValue("NotAFlag"))
	assert.ErrorIs(t, err, interfaces.ErrUnknownFlagName)
}

func TestListRoundTrip(t *testing.T) {
	sch := schema.Default()
	d, err := sch.Lookup("CRLPublicationURLs")
	require.NoError(t, err)

	value := interfaces.ListValue("65:C:\\CRL\\%3%8.crl", "6:http://pki.example.com/%3%8.crl")

	encoded, err := encodeValue(sch, d, value)
	require.NoError(t, err)
	assert.Equal(t, `65:C:\CRL\%3%8.crl\n6:http://pki.example.com/%3%8.crl`, encoded,
		"elements joined with the literal backslash-n token")

	decoded, err := decodeValue(d, interfaces.StringRaw(encoded))
	require.NoError(t, err)
	assert.Equal(t, value.List, decoded.List)
}

func TestListDecode_Empty(t *testing.T) {
	d, err := schema.Default().Lookup("CACertPublicationURLs")
	require.NoError(t, err)

	decoded, err := decodeValue(d, interfaces.AbsentRaw())
	require.NoError(t, err)
	assert.Empty(t, decoded.List)

	decoded, err = decodeValue(d, interfaces.StringRaw(""))
	require.NoError(t, err)
	assert.Empty(t, decoded.List)
}

func TestScalarDecode_NumberCanonicalized(t *testing.T) {
	d, err := schema.Default().Lookup("CRLPeriodUnits")
	require.NoError(t, err)

	decoded, err := decodeValue(d, interfaces.NumberRaw(10))
	require.NoError(t, err)
	assert.Equal(t, interfaces.ScalarValue("10"), decoded)
	assert.True(t, decoded.Equal(interfaces.NumberValue(10)))
}

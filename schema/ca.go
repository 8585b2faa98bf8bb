package schema

import "github.com/20100g/ActiveDirectoryCSDsc/interfaces"

// Registry location and the service controlled by the certification
// authority configuration. The configuration key holds one subkey per
// registered CA; the Active value under it names the CA that is currently
// in service, which the stores mirror with their active marker.
const (
	// CertSvcConfigPath is the registry key holding CA configuration.
	CertSvcConfigPath = `SYSTEM\CurrentControlSet\Services\CertSvc\Configuration`

	// CertSvcServiceName is the service restarted after settings change.
	CertSvcServiceName = "CertSvc"
)

// AuditFilter flag names. Each toggles auditing of one class of CA
// operation; together they pack into a single 7-bit mask.
const (
	AuditStartAndStopADCS                  = "StartAndStopADCS"
	AuditBackupAndRestoreCADatabase        = "BackupAndRestoreCADatabase"
	AuditIssueAndManageCertificateRequests = "IssueAndManageCertificateRequests"
	AuditRevokeCertificatesAndPublishCRLs  = "RevokeCertificatesAndPublishCRLs"
	AuditChangeCASecuritySettings          = "ChangeCASecuritySettings"
	AuditStoreAndRetrieveArchivedKeys      = "StoreAndRetrieveArchivedKeys"
	AuditChangeCAConfiguration             = "ChangeCAConfiguration"
)

// Default returns the setting table for the certification authority
// configuration: publication URL lists, CRL and certificate validity
// periods, directory service distinguished names, and the audit filter
// flag set.
func Default() *Schema {
	return MustNew([]interfaces.SettingDescriptor{
		{Name: "CACertPublicationURLs", Kind: interfaces.StringList},
		{Name: "CRLPublicationURLs", Kind: interfaces.StringList},
		{Name: "CRLOverlapUnits", Kind: interfaces.Scalar},
		{Name: "CRLOverlapPeriod", Kind: interfaces.Scalar},
		{Name: "CRLPeriodUnits", Kind: interfaces.Scalar},
		{Name: "CRLPeriod", Kind: interfaces.Scalar},
		{Name: "ValidityPeriodUnits", Kind: interfaces.Scalar},
		{Name: "ValidityPeriod", Kind: interfaces.Scalar},
		{Name: "DSConfigDN", Kind: interfaces.Scalar},
		{Name: "DSDomainDN", Kind: interfaces.Scalar},
		{Name: "AuditFilter", Kind: interfaces.FlagSet, Flags: []interfaces.FlagBit{
			{Name: AuditStartAndStopADCS, Bit: 1},
			{Name: AuditBackupAndRestoreCADatabase, Bit: 2},
			{Name: AuditIssueAndManageCertificateRequests, Bit: 4},
			{Name: AuditRevokeCertificatesAndPublishCRLs, Bit: 8},
			{Name: AuditChangeCASecuritySettings, Bit: 16},
			{Name: AuditStoreAndRetrieveArchivedKeys, Bit: 32},
			{Name: AuditChangeCAConfiguration, Bit: 64},
		}},
	})
}

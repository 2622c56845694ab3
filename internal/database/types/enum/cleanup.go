package enum

// CleanupType marks how an archival run was triggered.
type CleanupType string

const (
	// CleanupTypeAuto is written by the scheduled cleanup job.
	CleanupTypeAuto CleanupType = "auto"
	// CleanupTypeManual is written when an admin triggers cleanup.
	CleanupTypeManual CleanupType = "manual"
)

// String returns the stored representation.
func (t CleanupType) String() string {
	return string(t)
}

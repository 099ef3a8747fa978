package domain

import "strings"

// UploadStatus is the lifecycle state of an UploadBatch.
type UploadStatus string

const (
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusError      UploadStatus = "error"
)

var uploadStatusLabels = map[UploadStatus]string{
	UploadStatusProcessing: "Processing",
	UploadStatusCompleted:  "Completed",
	UploadStatusError:      "Error",
}

// Label returns a human-readable label for the status.
func (s UploadStatus) Label() string {
	if label, ok := uploadStatusLabels[s]; ok {
		return label
	}

	return "Unknown"
}

// ParseUploadStatus returns the status for a given label (case-insensitive).
func ParseUploadStatus(label string) (UploadStatus, bool) {
	status := UploadStatus(strings.ToLower(strings.TrimSpace(label)))
	_, ok := uploadStatusLabels[status]

	return status, ok
}

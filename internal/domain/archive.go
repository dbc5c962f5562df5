package domain

import (
	"fmt"
	"time"
)

// JobState is the lifecycle state of an archive job.
// Transitions are strictly forward: Queued -> InProgress -> {Completed|Failed}.
type JobState string

const (
	JobStateQueued     JobState = "Queued"
	JobStateInProgress JobState = "InProgress"
	JobStateCompleted  JobState = "Completed"
	JobStateFailed     JobState = "Failed"
)

// Terminal reports whether no further transitions occur from s.
func (s JobState) Terminal() bool {
	return s == JobStateCompleted || s == JobStateFailed
}

// Valid reports whether s is one of the four known states.
func (s JobState) Valid() bool {
	switch s {
	case JobStateQueued, JobStateInProgress, JobStateCompleted, JobStateFailed:
		return true
	}
	return false
}

// ArchiveJob is the status record for one archive request, keyed by
// (owner, job). Every write is a full replace: state, details and
// timestamp are set together and Version gets a fresh opaque token.
type ArchiveJob struct {
	OwnerID   string    `gorm:"type:text;primaryKey" json:"-"`
	JobID     string    `gorm:"type:text;primaryKey" json:"zipFileId"`
	State     JobState  `gorm:"type:text;not null" json:"status"`
	Details   string    `gorm:"type:text" json:"statusDetails"`
	UpdatedAt time.Time `json:"timeStamp"`
	// Version is an opaque concurrency token rewritten on every save.
	// Readers may use it for conditional writes; the worker does not.
	Version string `gorm:"type:text" json:"-"`
}

// TableName returns the database table name for ArchiveJob.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (ArchiveJob) TableName() string {
	return "archive_jobs"
}

// ArchiveRequest is the queue envelope correlating a status record with
// the archive object the worker will eventually produce. The job id is
// minted by the dispatcher before publication so both share it.
type ArchiveRequest struct {
	OwnerID string `json:"ownerId"`
	JobID   string `json:"jobId"`
}

// Detail builds the human-readable status detail string embedded in
// InProgress and Failed records.
func (r ArchiveRequest) Detail() string {
	return fmt.Sprintf("archive %s for note %s", r.JobID, r.OwnerID)
}

// ArchiveNamespace returns the destination namespace for an owner's
// finished archives.
func ArchiveNamespace(ownerID string) string {
	return ownerID + "-archive"
}

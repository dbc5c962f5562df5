package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mfield/notebox/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVersionMismatch is returned by SaveIf when the stored record's
// version token no longer matches the expected one.
var ErrVersionMismatch = errors.New("archive job version mismatch")

// ArchiveJobRepository is the status store adapter. Records are keyed
// by (owner_id, job_id); every save is a full replace that stamps a
// fresh version token and timestamp.
type ArchiveJobRepository struct {
	db *gorm.DB
}

// NewArchiveJobRepository creates a new ArchiveJobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ArchiveJobRepository: repository instance bound to db.
func NewArchiveJobRepository(db *gorm.DB) *ArchiveJobRepository {
	return &ArchiveJobRepository{db: db}
}

// Save upserts a status record unconditionally (last-write-wins).
// The record's UpdatedAt and Version are overwritten here so callers
// never manage them.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - job: record to write; State must be a valid JobState.
// Returns:
//   - error: non-nil if the write fails.
func (r *ArchiveJobRepository) Save(ctx context.Context, job *domain.ArchiveJob) error {
	if !job.State.Valid() {
		return fmt.Errorf("invalid job state %q", job.State)
	}
	job.UpdatedAt = time.Now().UTC()
	job.Version = uuid.New().String()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "job_id"}},
		UpdateAll: true,
	}).Create(job).Error
}

// SaveIf updates a status record only when the stored version matches
// expectedVersion. Callers that want optimistic concurrency use this
// instead of Save.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - job: record to write.
//   - expectedVersion: version token read earlier.
// Returns:
//   - error: ErrVersionMismatch on a stale token, other errors on failure.
func (r *ArchiveJobRepository) SaveIf(ctx context.Context, job *domain.ArchiveJob, expectedVersion string) error {
	job.UpdatedAt = time.Now().UTC()
	job.Version = uuid.New().String()
	res := r.db.WithContext(ctx).
		Model(&domain.ArchiveJob{}).
		Where("owner_id = ? AND job_id = ? AND version = ?", job.OwnerID, job.JobID, expectedVersion).
		Updates(map[string]interface{}{
			"state":      job.State,
			"details":    job.Details,
			"updated_at": job.UpdatedAt,
			"version":    job.Version,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionMismatch
	}
	return nil
}

// Get retrieves one status record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: partition key.
//   - jobID: row key.
// Returns:
//   - *domain.ArchiveJob: record if found.
//   - error: gorm.ErrRecordNotFound if absent, other errors on failure.
func (r *ArchiveJobRepository) Get(ctx context.Context, ownerID, jobID string) (*domain.ArchiveJob, error) {
	var job domain.ArchiveJob
	if err := r.db.WithContext(ctx).
		First(&job, "owner_id = ? AND job_id = ?", ownerID, jobID).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// ListByOwner retrieves all status records in an owner's partition,
// newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: partition key.
// Returns:
//   - []domain.ArchiveJob: matching records, possibly empty.
//   - error: non-nil if the query fails.
func (r *ArchiveJobRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.ArchiveJob, error) {
	var jobs []domain.ArchiveJob
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// AnyInState checks whether any record in the owner's partition is in
// the given state. Used by the deletion guard.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: partition key.
//   - state: job state to look for.
// Returns:
//   - bool: true if at least one record matches.
//   - error: non-nil if the query fails.
func (r *ArchiveJobRepository) AnyInState(ctx context.Context, ownerID string, state domain.JobState) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.ArchiveJob{}).
		Where("owner_id = ? AND state = ?", ownerID, state).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteByOwner removes every status record in an owner's partition.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: partition key.
// Returns:
//   - error: non-nil if the delete fails.
func (r *ArchiveJobRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	return r.db.WithContext(ctx).Delete(&domain.ArchiveJob{}, "owner_id = ?", ownerID).Error
}

// Delete removes a single status record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: partition key.
//   - jobID: row key.
// Returns:
//   - error: non-nil if the delete fails.
func (r *ArchiveJobRepository) Delete(ctx context.Context, ownerID, jobID string) error {
	return r.db.WithContext(ctx).Delete(&domain.ArchiveJob{}, "owner_id = ? AND job_id = ?", ownerID, jobID).Error
}

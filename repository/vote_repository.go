package repository

import (
	"context"

	"github.com/juicebox-at/limited-builder/models"
	"github.com/juicebox-at/limited-builder/utils"
	"gorm.io/gorm"
)

// VoteRepositoryImpl implements the VoteRepository interface
type VoteRepositoryImpl struct {
	*BaseRepository[models.Vote, models.VoteFilter]
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &VoteRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Vote, models.VoteFilter](db),
	}
}

// ByVoterEmail retrieves the voter's standing vote, case-insensitively.
// The voter_email unique index guarantees at most one row.
func (r *VoteRepositoryImpl) ByVoterEmail(ctx context.Context, email string) (*models.Vote, error) {
	filter := models.VoteFilter{VoterEmail: &email}
	votes, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(votes) == 0 {
		return nil, nil
	}
	return votes[0], nil
}

// DeleteByID removes a single vote row
func (r *VoteRepositoryImpl) DeleteByID(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	return db.Delete(&models.Vote{}, id).Error
}

// DeleteByCreationID removes all votes for a creation
func (r *VoteRepositoryImpl) DeleteByCreationID(ctx context.Context, creationID uint) error {
	db := r.getDB(ctx)
	return db.Where("creation_id = ?", creationID).Delete(&models.Vote{}).Error
}

// CountByCreationID counts the votes standing for a creation
func (r *VoteRepositoryImpl) CountByCreationID(ctx context.Context, creationID uint) (int64, error) {
	filter := models.VoteFilter{CreationID: &creationID}
	return r.Count(ctx, filter)
}

// ByFilter retrieves votes based on filter criteria
func (r *VoteRepositoryImpl) ByFilter(ctx context.Context, filter models.VoteFilter, orderBy string, limit, offset int) ([]*models.Vote, error) {
	db := r.getDB(ctx)

	var votes []*models.Vote
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&votes).Error
	if err != nil {
		return nil, err
	}

	return votes, nil
}

// Count returns the number of votes matching the filter
func (r *VoteRepositoryImpl) Count(ctx context.Context, filter models.VoteFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.Vote{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any vote matching the filter exists
func (r *VoteRepositoryImpl) Exists(ctx context.Context, filter models.VoteFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *VoteRepositoryImpl) applyFilter(db *gorm.DB, filter models.VoteFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.CreationID != nil {
		db = db.Where("creation_id = ?", *filter.CreationID)
	}
	if filter.VoterEmail != nil {
		db = db.Where("LOWER(voter_email) = ?", utils.NormalizeEmail(*filter.VoterEmail))
	}
	return db
}

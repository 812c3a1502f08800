package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/juicebox-at/limited-builder/models"
	"github.com/juicebox-at/limited-builder/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreationRepositoryImpl implements the CreationRepository interface
type CreationRepositoryImpl struct {
	*BaseRepository[models.Creation, models.CreationFilter]
}

// NewCreationRepository creates a new creation repository
func NewCreationRepository(db *gorm.DB) CreationRepository {
	return &CreationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Creation, models.CreationFilter](db),
	}
}

// ByUUID retrieves a creation by UUID
func (r *CreationRepositoryImpl) ByUUID(ctx context.Context, rawUUID string) (*models.Creation, error) {
	parsed, err := uuid.Parse(rawUUID)
	if err != nil {
		return nil, nil
	}

	filter := models.CreationFilter{UUID: &parsed}
	creations, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(creations) == 0 {
		return nil, nil
	}
	return creations[0], nil
}

// ByUUIDForUpdate retrieves a creation by UUID with a row lock. Must be called
// inside a transaction opened via WithTransaction.
func (r *CreationRepositoryImpl) ByUUIDForUpdate(ctx context.Context, rawUUID string) (*models.Creation, error) {
	parsed, err := uuid.Parse(rawUUID)
	if err != nil {
		return nil, nil
	}

	db := r.getDB(ctx)

	var creation models.Creation
	err = db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("uuid = ?", parsed).
		First(&creation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &creation, nil
}

// ByName retrieves a creation by its name, case-insensitively
func (r *CreationRepositoryImpl) ByName(ctx context.Context, name string) (*models.Creation, error) {
	filter := models.CreationFilter{Name: &name}
	creations, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(creations) == 0 {
		return nil, nil
	}
	return creations[0], nil
}

// ByCreatorEmail retrieves the creation submitted under an email, case-insensitively
func (r *CreationRepositoryImpl) ByCreatorEmail(ctx context.Context, email string) (*models.Creation, error) {
	filter := models.CreationFilter{CreatorEmail: &email}
	creations, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(creations) == 0 {
		return nil, nil
	}
	return creations[0], nil
}

// Leaderboard retrieves creations ordered by votes, ties broken by insertion
// order so pagination stays stable.
func (r *CreationRepositoryImpl) Leaderboard(ctx context.Context, filter models.CreationFilter, limit, offset int) ([]*models.Creation, error) {
	return r.ByFilter(ctx, filter, "votes_count DESC, id ASC", limit, offset)
}

// UpdateImageURL sets (or clears) the image URL of a creation. Last write wins.
func (r *CreationRepositoryImpl) UpdateImageURL(ctx context.Context, id uint, imageURL *string) error {
	db := r.getDB(ctx)
	return db.Model(&models.Creation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"image_url":  imageURL,
			"updated_at": utils.UTCNow(),
		}).Error
}

// IncrementVotes bumps the denormalized vote counter by one
func (r *CreationRepositoryImpl) IncrementVotes(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.Creation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"votes_count": gorm.Expr("votes_count + 1"),
			"updated_at":  utils.UTCNow(),
		}).Error
}

// DecrementVotes lowers the denormalized vote counter by one, clamped at zero
func (r *CreationRepositoryImpl) DecrementVotes(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.Creation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"votes_count": gorm.Expr("GREATEST(votes_count - 1, 0)"),
			"updated_at":  utils.UTCNow(),
		}).Error
}

// Delete removes a creation row
func (r *CreationRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	return db.Delete(&models.Creation{}, id).Error
}

// ByFilter retrieves creations based on filter criteria
func (r *CreationRepositoryImpl) ByFilter(ctx context.Context, filter models.CreationFilter, orderBy string, limit, offset int) ([]*models.Creation, error) {
	db := r.getDB(ctx)

	var creations []*models.Creation
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

	err := query.Find(&creations).Error
	if err != nil {
		return nil, err
	}

	return creations, nil
}

// Count returns the number of creations matching the filter
func (r *CreationRepositoryImpl) Count(ctx context.Context, filter models.CreationFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.Creation{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any creation matching the filter exists
func (r *CreationRepositoryImpl) Exists(ctx context.Context, filter models.CreationFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *CreationRepositoryImpl) applyFilter(db *gorm.DB, filter models.CreationFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		db = db.Where("LOWER(name) = LOWER(?)", *filter.Name)
	}
	if filter.CreatorEmail != nil {
		db = db.Where("LOWER(creator_email) = ?", utils.NormalizeEmail(*filter.CreatorEmail))
	}
	if filter.FlavorLike != nil && *filter.FlavorLike != "" {
		// Substring match against any element of the flavor array.
		db = db.Where(
			"EXISTS (SELECT 1 FROM unnest(primary_flavors) AS pf WHERE pf ILIKE ?)",
			"%"+*filter.FlavorLike+"%",
		)
	}
	if filter.Accent != nil {
		if *filter.Accent == "none" {
			db = db.Where("accent IS NULL")
		} else {
			db = db.Where("accent = ?", *filter.Accent)
		}
	}
	if filter.Variant != nil {
		db = db.Where("variant = ?", *filter.Variant)
	}
	if filter.MissingImage != nil {
		if *filter.MissingImage {
			db = db.Where("image_url IS NULL OR image_url = ''")
		} else {
			db = db.Where("image_url IS NOT NULL AND image_url <> ''")
		}
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

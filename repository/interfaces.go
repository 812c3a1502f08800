// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/juicebox-at/limited-builder/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// CreationRepository defines operations for beverage creations
type CreationRepository interface {
	Repository[models.Creation, models.CreationFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Creation, error)
	ByUUIDForUpdate(ctx context.Context, uuid string) (*models.Creation, error)
	ByName(ctx context.Context, name string) (*models.Creation, error)
	ByCreatorEmail(ctx context.Context, email string) (*models.Creation, error)
	Leaderboard(ctx context.Context, filter models.CreationFilter, limit, offset int) ([]*models.Creation, error)
	UpdateImageURL(ctx context.Context, id uint, imageURL *string) error
	IncrementVotes(ctx context.Context, id uint) error
	DecrementVotes(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

// VoteRepository defines operations for votes
type VoteRepository interface {
	Repository[models.Vote, models.VoteFilter]
	ByVoterEmail(ctx context.Context, email string) (*models.Vote, error)
	DeleteByID(ctx context.Context, id uint) error
	DeleteByCreationID(ctx context.Context, creationID uint) error
	CountByCreationID(ctx context.Context, creationID uint) (int64, error)
}

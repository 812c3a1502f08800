// Package businessflow contains the core business logic and use cases for voting workflows
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/juicebox-at/limited-builder/app/dto"
	"github.com/juicebox-at/limited-builder/config"
	"github.com/juicebox-at/limited-builder/models"
	"github.com/juicebox-at/limited-builder/repository"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// VoteFlow handles the vote integrity business logic
type VoteFlow interface {
	CastVote(ctx context.Context, req *dto.CastVoteRequest) (*dto.CastVoteResponse, error)
	RemoveVote(ctx context.Context, req *dto.RemoveVoteRequest) (*dto.RemoveVoteResponse, error)
	GetVoterState(ctx context.Context, req *dto.VoterStateRequest) (*dto.VoterStateResponse, error)
}

// VoteFlowImpl implements the vote business flow
type VoteFlowImpl struct {
	creationRepo repository.CreationRepository
	voteRepo     repository.VoteRepository
	cacheConfig  *config.CacheConfig
	rc           *redis.Client
	db           *gorm.DB
}

// NewVoteFlow creates a new vote flow instance
func NewVoteFlow(
	creationRepo repository.CreationRepository,
	voteRepo repository.VoteRepository,
	db *gorm.DB,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) VoteFlow {
	return &VoteFlowImpl{
		creationRepo: creationRepo,
		voteRepo:     voteRepo,
		cacheConfig:  cacheConfig,
		rc:           rc,
		db:           db,
	}
}

// CastVote registers a standing vote. The vote row and the denormalized
// counter move together inside one transaction, with the creation row locked
// so concurrent votes serialize.
func (s *VoteFlowImpl) CastVote(ctx context.Context, req *dto.CastVoteRequest) (*dto.CastVoteResponse, error) {
	identity, err := models.NewVoterIdentity(req.VoterEmail)
	if err != nil {
		return nil, NewBusinessError("VALIDATION_ERROR", "Invalid voter email", ErrInvalidEmail)
	}

	var votesCount int
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		creation, err := s.creationRepo.ByUUIDForUpdate(txCtx, req.CreationUUID)
		if err != nil {
			return err
		}
		if creation == nil {
			return NewBusinessError("CREATION_NOT_FOUND", "Creation not found", ErrCreationNotFound)
		}

		if identity.Matches(creation.CreatorEmail) {
			return NewBusinessError("SELF_VOTE", "Voting for your own creation is not allowed", ErrSelfVote)
		}

		// One standing vote per voter across all creations.
		existing, err := s.voteRepo.ByVoterEmail(txCtx, identity.Email())
		if err != nil {
			return err
		}
		if existing != nil {
			return NewBusinessError("ALREADY_VOTED", "This email already has a standing vote", ErrAlreadyVoted)
		}

		vote := models.Vote{
			CreationID: creation.ID,
			VoterEmail: identity.Email(),
		}
		if err := s.voteRepo.Save(txCtx, &vote); err != nil {
			// Two concurrent casts by the same voter can both pass the
			// ByVoterEmail check; the loser hits uk_votes_voter_email.
			if repository.IsDuplicateKey(err) {
				return NewBusinessError("ALREADY_VOTED", "This email already has a standing vote", ErrAlreadyVoted)
			}
			return err
		}
		if err := s.creationRepo.IncrementVotes(txCtx, creation.ID); err != nil {
			return err
		}

		votesCount = creation.VotesCount + 1
		return nil
	})
	if err != nil {
		var bizErr *BusinessError
		if errors.As(err, &bizErr) {
			return nil, bizErr
		}
		return nil, NewBusinessError("INTERNAL_ERROR", "Failed to cast vote", err)
	}

	s.invalidateLeaderboardCache(ctx)

	return &dto.CastVoteResponse{
		Message:    "Vote recorded",
		VotesCount: votesCount,
	}, nil
}

// RemoveVote retracts the voter's standing vote on a creation. The counter is
// decremented in the same transaction and clamped at zero.
func (s *VoteFlowImpl) RemoveVote(ctx context.Context, req *dto.RemoveVoteRequest) (*dto.RemoveVoteResponse, error) {
	identity, err := models.NewVoterIdentity(req.VoterEmail)
	if err != nil {
		return nil, NewBusinessError("VALIDATION_ERROR", "Invalid voter email", ErrInvalidEmail)
	}

	var votesCount int
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		creation, err := s.creationRepo.ByUUIDForUpdate(txCtx, req.CreationUUID)
		if err != nil {
			return err
		}
		if creation == nil {
			return NewBusinessError("CREATION_NOT_FOUND", "Creation not found", ErrCreationNotFound)
		}

		vote, err := s.voteRepo.ByVoterEmail(txCtx, identity.Email())
		if err != nil {
			return err
		}
		if vote == nil || vote.CreationID != creation.ID {
			return NewBusinessError("VOTE_NOT_FOUND", "No standing vote found for this email", ErrVoteNotFound)
		}

		if err := s.voteRepo.DeleteByID(txCtx, vote.ID); err != nil {
			return err
		}
		if err := s.creationRepo.DecrementVotes(txCtx, creation.ID); err != nil {
			return err
		}

		votesCount = creation.VotesCount - 1
		if votesCount < 0 {
			votesCount = 0
		}
		return nil
	})
	if err != nil {
		var bizErr *BusinessError
		if errors.As(err, &bizErr) {
			return nil, bizErr
		}
		return nil, NewBusinessError("INTERNAL_ERROR", "Failed to remove vote", err)
	}

	s.invalidateLeaderboardCache(ctx)

	return &dto.RemoveVoteResponse{
		Message:    "Vote removed",
		VotesCount: votesCount,
	}, nil
}

// GetVoterState reports the voter's standing vote and owned creation so
// clients can reconcile cached state against the server.
func (s *VoteFlowImpl) GetVoterState(ctx context.Context, req *dto.VoterStateRequest) (*dto.VoterStateResponse, error) {
	identity, err := models.NewVoterIdentity(req.VoterEmail)
	if err != nil {
		return nil, NewBusinessError("VALIDATION_ERROR", "Invalid voter email", ErrInvalidEmail)
	}

	resp := &dto.VoterStateResponse{}

	vote, err := s.voteRepo.ByVoterEmail(ctx, identity.Email())
	if err != nil {
		return nil, NewBusinessError("INTERNAL_ERROR", "Failed to load voter state", err)
	}
	if vote != nil {
		voted, err := s.creationRepo.ByID(ctx, vote.CreationID)
		if err != nil {
			return nil, NewBusinessError("INTERNAL_ERROR", "Failed to load voted creation", err)
		}
		if voted != nil {
			uuidStr := voted.UUID.String()
			resp.VotedCreationUUID = &uuidStr
		}
	}

	owned, err := s.creationRepo.ByCreatorEmail(ctx, identity.Email())
	if err != nil {
		return nil, NewBusinessError("INTERNAL_ERROR", "Failed to load owned creation", err)
	}
	if owned != nil {
		uuidStr := owned.UUID.String()
		resp.OwnedCreationUUID = &uuidStr
		resp.OwnedCreationName = &owned.Name
	}

	return resp, nil
}

// invalidateLeaderboardCache drops the cached default pages after a write
func (s *VoteFlowImpl) invalidateLeaderboardCache(ctx context.Context) {
	if s.rc == nil || s.cacheConfig == nil || !s.cacheConfig.Enabled {
		return
	}
	keys := []string{
		fmt.Sprintf("%sleaderboard:%d:%d", s.cacheConfig.RedisPrefix, 50, 0),
		fmt.Sprintf("%sleaderboard:%d:%d", s.cacheConfig.RedisPrefix, 100, 0),
	}
	if err := s.rc.Del(ctx, keys...).Err(); err != nil {
		log.Printf("failed to invalidate leaderboard cache: %v", err)
	}
}

// Package businessflow contains the core business logic and use cases for creation workflows
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/juicebox-at/limited-builder/app/dto"
	"github.com/juicebox-at/limited-builder/config"
	"github.com/juicebox-at/limited-builder/models"
	"github.com/juicebox-at/limited-builder/repository"
	"github.com/juicebox-at/limited-builder/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreationFlow handles the creation submission and leaderboard business logic
type CreationFlow interface {
	SubmitCreation(ctx context.Context, req *dto.SubmitCreationRequest, metadata *ClientMetadata) (*dto.SubmitCreationResponse, error)
	ListCreations(ctx context.Context, req *dto.ListCreationsRequest) (*dto.ListCreationsResponse, error)
	GetCreation(ctx context.Context, uuid string) (*dto.CreationResponse, error)
	DeleteCreation(ctx context.Context, req *dto.DeleteCreationRequest, isAdmin bool) (*dto.DeleteCreationResponse, error)
	GetCatalog() *dto.CatalogResponse
}

// CreationFlowImpl implements the creation business flow
type CreationFlowImpl struct {
	creationRepo repository.CreationRepository
	voteRepo     repository.VoteRepository
	cacheConfig  *config.CacheConfig
	rc           *redis.Client
	db           *gorm.DB
}

// NewCreationFlow creates a new creation flow instance
func NewCreationFlow(
	creationRepo repository.CreationRepository,
	voteRepo repository.VoteRepository,
	db *gorm.DB,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) CreationFlow {
	return &CreationFlowImpl{
		creationRepo: creationRepo,
		voteRepo:     voteRepo,
		cacheConfig:  cacheConfig,
		rc:           rc,
		db:           db,
	}
}

// creationNamePattern allows letters, digits, German umlauts, spaces and dashes
var creationNamePattern = regexp.MustCompile(`^[a-zA-Z0-9äöüÄÖÜß\s\-]+$`)

// ValidateCreationName checks the naming rules shared by API validation and
// the business flow.
func ValidateCreationName(name string) error {
	trimmed := strings.TrimSpace(name)
	if len([]rune(trimmed)) < utils.CreationNameMinLen || len([]rune(trimmed)) > utils.CreationNameMaxLen {
		return ErrNameInvalid
	}
	if !creationNamePattern.MatchString(trimmed) {
		return ErrNameInvalid
	}
	return nil
}

// SubmitCreation handles the complete creation submission process
func (s *CreationFlowImpl) SubmitCreation(ctx context.Context, req *dto.SubmitCreationRequest, metadata *ClientMetadata) (*dto.SubmitCreationResponse, error) {
	if err := s.validateSubmitRequest(req); err != nil {
		return nil, NewBusinessError("VALIDATION_ERROR", "Creation validation failed", err)
	}

	identity, err := models.NewVoterIdentity(req.Email)
	if err != nil {
		return nil, NewBusinessError("VALIDATION_ERROR", "Creation validation failed", ErrInvalidEmail)
	}

	// One creation per email. A duplicate submission is answered with the
	// existing creation so the client can recover instead of dead-ending.
	existing, err := s.creationRepo.ByCreatorEmail(ctx, identity.Email())
	if err != nil {
		return nil, NewBusinessError("INTERNAL_ERROR", "Failed to check existing creations", err)
	}
	if existing != nil {
		return nil, NewBusinessError("DUPLICATE_EMAIL", "This email has already submitted a creation", &DuplicateEmailError{
			ExistingName: existing.Name,
			ExistingUUID: existing.UUID.String(),
		})
	}

	name := strings.TrimSpace(req.Name)
	conflict, err := s.creationRepo.ByName(ctx, name)
	if err != nil {
		return nil, NewBusinessError("INTERNAL_ERROR", "Failed to check existing names", err)
	}
	if conflict != nil {
		return nil, NewBusinessError("DUPLICATE_NAME", "A creation with this name already exists", ErrDuplicateName)
	}

	creation := models.Creation{
		Name:             name,
		PrimaryFlavors:   req.PrimaryFlavors,
		BaseType:         models.BaseType(req.BaseType),
		Variant:          models.Variant(req.Variant),
		CreatorEmail:     identity.Email(),
		MarketingConsent: req.MarketingConsent,
	}
	if req.Accent != nil && *req.Accent != "none" && *req.Accent != "" {
		accent := models.Accent(*req.Accent)
		creation.Accent = &accent
	}
	if metadata != nil && metadata.IPAddress != "" {
		creation.CreatorIP = utils.ToPtr(metadata.IPAddress)
	}

	if err := s.creationRepo.Save(ctx, &creation); err != nil {
		return nil, NewBusinessError("INTERNAL_ERROR", "Failed to save creation", err)
	}

	s.invalidateLeaderboardCache(ctx)

	return &dto.SubmitCreationResponse{
		Message:  "Creation submitted successfully",
		Creation: toCreationResponse(&creation),
	}, nil
}

// ListCreations returns a leaderboard page ordered by votes
func (s *CreationFlowImpl) ListCreations(ctx context.Context, req *dto.ListCreationsRequest) (*dto.ListCreationsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 || req.Offset < 0 {
		return nil, NewBusinessError("VALIDATION_ERROR", "Invalid pagination", ErrInvalidPagination)
	}

	unfiltered := req.Flavor == "" && req.Accent == "" && req.Variant == ""
	cacheable := unfiltered && cacheableLeaderboardPage(limit, req.Offset)
	if cacheable {
		if cached := s.cachedLeaderboard(ctx, limit, req.Offset); cached != nil {
			return cached, nil
		}
	}

	filter := models.CreationFilter{}
	if req.Flavor != "" {
		filter.FlavorLike = utils.ToPtr(req.Flavor)
	}
	if req.Accent != "" {
		filter.Accent = utils.ToPtr(req.Accent)
	}
	if req.Variant != "" {
		variant := models.Variant(req.Variant)
		filter.Variant = &variant
	}

	creations, err := s.creationRepo.Leaderboard(ctx, filter, limit, req.Offset)
	if err != nil {
		return nil, NewBusinessError("INTERNAL_ERROR", "Failed to list creations", err)
	}

	total, err := s.creationRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("INTERNAL_ERROR", "Failed to count creations", err)
	}

	resp := &dto.ListCreationsResponse{
		Creations: make([]dto.CreationResponse, 0, len(creations)),
		Total:     total,
		Limit:     limit,
		Offset:    req.Offset,
	}
	for _, c := range creations {
		resp.Creations = append(resp.Creations, *toCreationResponse(c))
	}

	if cacheable {
		s.storeLeaderboard(ctx, limit, req.Offset, resp)
	}

	return resp, nil
}

// GetCreation retrieves a single creation by UUID
func (s *CreationFlowImpl) GetCreation(ctx context.Context, uuid string) (*dto.CreationResponse, error) {
	creation, err := s.creationRepo.ByUUID(ctx, uuid)
	if err != nil {
		return nil, NewBusinessError("INTERNAL_ERROR", "Failed to load creation", err)
	}
	if creation == nil {
		return nil, NewBusinessError("CREATION_NOT_FOUND", "Creation not found", ErrCreationNotFound)
	}
	return toCreationResponse(creation), nil
}

// DeleteCreation removes a creation together with its votes. Vote cleanup
// failure does not abort the deletion; a later backfill reconciles counters.
func (s *CreationFlowImpl) DeleteCreation(ctx context.Context, req *dto.DeleteCreationRequest, isAdmin bool) (*dto.DeleteCreationResponse, error) {
	creation, err := s.creationRepo.ByUUID(ctx, req.UUID)
	if err != nil {
		return nil, NewBusinessError("INTERNAL_ERROR", "Failed to load creation", err)
	}
	if creation == nil {
		return nil, NewBusinessError("CREATION_NOT_FOUND", "Creation not found", ErrCreationNotFound)
	}

	if !isAdmin {
		if req.RequesterEmail == nil {
			return nil, NewBusinessError("FORBIDDEN", "Requester email is required", ErrNotCreationOwner)
		}
		identity, err := models.NewVoterIdentity(*req.RequesterEmail)
		if err != nil || !identity.Matches(creation.CreatorEmail) {
			return nil, NewBusinessError("FORBIDDEN", "Requester does not own this creation", ErrNotCreationOwner)
		}
	}

	if err := s.voteRepo.DeleteByCreationID(ctx, creation.ID); err != nil {
		log.Printf("failed to delete votes for creation %s: %v", creation.UUID, err)
	}

	if err := s.creationRepo.Delete(ctx, creation.ID); err != nil {
		return nil, NewBusinessError("INTERNAL_ERROR", "Failed to delete creation", err)
	}

	s.invalidateLeaderboardCache(ctx)

	return &dto.DeleteCreationResponse{Message: "Creation deleted successfully"}, nil
}

// GetCatalog returns the selectable builder options
func (s *CreationFlowImpl) GetCatalog() *dto.CatalogResponse {
	resp := &dto.CatalogResponse{}
	for _, f := range models.Fruits {
		resp.Fruits = append(resp.Fruits, dto.CatalogOption{ID: f.ID, Name: f.Name, Emoji: f.Emoji})
	}
	for _, f := range models.Extras {
		resp.Extras = append(resp.Extras, dto.CatalogOption{ID: f.ID, Name: f.Name, Emoji: f.Emoji})
	}
	for _, a := range models.AccentOptions {
		resp.Accents = append(resp.Accents, dto.CatalogOption{ID: a.ID, Name: a.Name, Emoji: a.Emoji})
	}
	for _, v := range models.VariantOptions {
		resp.Variants = append(resp.Variants, dto.CatalogOption{ID: v.ID, Name: v.Name, Description: v.Description})
	}
	return resp
}

func (s *CreationFlowImpl) validateSubmitRequest(req *dto.SubmitCreationRequest) error {
	if err := ValidateCreationName(req.Name); err != nil {
		return err
	}
	if len(req.PrimaryFlavors) == 0 {
		return ErrFlavorsRequired
	}
	if len(req.PrimaryFlavors) > utils.MaxPrimaryFlavors {
		return ErrTooManyFlavors
	}
	for _, id := range req.PrimaryFlavors {
		if !models.IsKnownFlavor(id) {
			return ErrUnknownFlavor
		}
	}
	if req.Accent != nil && *req.Accent != "" && *req.Accent != "none" {
		if !models.Accent(*req.Accent).Valid() {
			return ErrInvalidAccent
		}
	}
	if !models.BaseType(req.BaseType).Valid() {
		return ErrInvalidBaseType
	}
	if !models.Variant(req.Variant).Valid() {
		return ErrInvalidVariant
	}
	return nil
}

// cacheableLeaderboardPage reports whether an unfiltered page is one of the
// cached default pages. This set must stay in sync with
// invalidateLeaderboardCache, which deletes exactly these keys.
func cacheableLeaderboardPage(limit, offset int) bool {
	return offset == 0 && (limit == 50 || limit == 100)
}

func (s *CreationFlowImpl) leaderboardCacheKey(limit, offset int) string {
	prefix := ""
	if s.cacheConfig != nil {
		prefix = s.cacheConfig.RedisPrefix
	}
	return fmt.Sprintf("%sleaderboard:%d:%d", prefix, limit, offset)
}

func (s *CreationFlowImpl) cachedLeaderboard(ctx context.Context, limit, offset int) *dto.ListCreationsResponse {
	if s.rc == nil || s.cacheConfig == nil || !s.cacheConfig.Enabled {
		return nil
	}
	raw, err := s.rc.Get(ctx, s.leaderboardCacheKey(limit, offset)).Bytes()
	if err != nil {
		return nil
	}
	var resp dto.ListCreationsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	return &resp
}

func (s *CreationFlowImpl) storeLeaderboard(ctx context.Context, limit, offset int, resp *dto.ListCreationsResponse) {
	if s.rc == nil || s.cacheConfig == nil || !s.cacheConfig.Enabled {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	ttl := s.cacheConfig.LeaderboardTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if err := s.rc.Set(ctx, s.leaderboardCacheKey(limit, offset), raw, ttl).Err(); err != nil {
		log.Printf("failed to cache leaderboard page: %v", err)
	}
}

// invalidateLeaderboardCache drops the cached default pages after a write
func (s *CreationFlowImpl) invalidateLeaderboardCache(ctx context.Context) {
	if s.rc == nil || s.cacheConfig == nil || !s.cacheConfig.Enabled {
		return
	}
	// Only the common first pages are cached; drop them explicitly.
	keys := []string{
		s.leaderboardCacheKey(50, 0),
		s.leaderboardCacheKey(100, 0),
	}
	if err := s.rc.Del(ctx, keys...).Err(); err != nil {
		log.Printf("failed to invalidate leaderboard cache: %v", err)
	}
}

// toCreationResponse maps a model to its API representation
func toCreationResponse(c *models.Creation) *dto.CreationResponse {
	emojis := make([]string, 0, len(c.PrimaryFlavors))
	for _, id := range c.PrimaryFlavors {
		emojis = append(emojis, models.FlavorEmoji(id))
	}
	return &dto.CreationResponse{
		UUID:           c.UUID.String(),
		Name:           c.Name,
		PrimaryFlavors: c.PrimaryFlavors,
		FlavorEmojis:   emojis,
		Accent:         c.AccentID(),
		BaseType:       c.BaseType.String(),
		Variant:        c.Variant.String(),
		ImageURL:       c.ImageURL,
		VotesCount:     c.VotesCount,
		StandardMatch:  models.FindStandardMatches(c.PrimaryFlavors, accentOrEmpty(c)),
		CreatedAt:      c.CreatedAt,
	}
}

func accentOrEmpty(c *models.Creation) string {
	if c.Accent == nil {
		return ""
	}
	return c.Accent.String()
}

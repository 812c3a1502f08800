// Package testing provides test utilities and database setup for testing the builder API
package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/juicebox-at/limited-builder/models"
	"github.com/juicebox-at/limited-builder/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCreation creates a test creation with a unique name and creator email
func (tf *TestFixtures) CreateTestCreation() (*models.Creation, error) {
	suffix := rand.Intn(900000) + 100000

	creation := &models.Creation{
		UUID:           uuid.New(),
		Name:           fmt.Sprintf("Testmix %d", suffix),
		PrimaryFlavors: pq.StringArray{"erdbeere", "zitrone"},
		BaseType:       models.BaseTypeNormal,
		Variant:        models.VariantOriginal,
		CreatorEmail:   fmt.Sprintf("creator.%d@example.com", suffix),
		CreatedAt:      utils.UTCNow(),
		UpdatedAt:      utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(creation).Error; err != nil {
		return nil, fmt.Errorf("failed to create test creation: %w", err)
	}

	return creation, nil
}

// CreateTestCreationWithOptions creates a test creation with explicit fields
func (tf *TestFixtures) CreateTestCreationWithOptions(name, email string, flavors []string, accent *models.Accent, variant models.Variant) (*models.Creation, error) {
	creation := &models.Creation{
		UUID:           uuid.New(),
		Name:           name,
		PrimaryFlavors: pq.StringArray(flavors),
		Accent:         accent,
		BaseType:       models.BaseTypeNormal,
		Variant:        variant,
		CreatorEmail:   utils.NormalizeEmail(email),
		CreatedAt:      utils.UTCNow(),
		UpdatedAt:      utils.UTCNow(),
	}

	if accent != nil && *accent == models.AccentEistee {
		creation.BaseType = models.BaseTypeEistee
	}

	if err := tf.DB.DB.Create(creation).Error; err != nil {
		return nil, fmt.Errorf("failed to create test creation %s: %w", name, err)
	}

	return creation, nil
}

// CreateTestVote creates a vote for the given creation and bumps its counter
// the way the vote flow does, so fixtures stay consistent with reads.
func (tf *TestFixtures) CreateTestVote(creation *models.Creation, voterEmail string) (*models.Vote, error) {
	vote := &models.Vote{
		UUID:       uuid.New(),
		CreationID: creation.ID,
		VoterEmail: utils.NormalizeEmail(voterEmail),
		CreatedAt:  utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(vote).Error; err != nil {
		return nil, fmt.Errorf("failed to create test vote: %w", err)
	}

	err := tf.DB.DB.Model(&models.Creation{}).
		Where("id = ?", creation.ID).
		UpdateColumn("votes_count", gorm.Expr("votes_count + 1")).Error
	if err != nil {
		return nil, fmt.Errorf("failed to bump votes_count: %w", err)
	}
	creation.VotesCount++

	return vote, nil
}

// RandomEmail returns a unique email address for tests
func (tf *TestFixtures) RandomEmail() string {
	return fmt.Sprintf("voter.%d@example.com", rand.Intn(900000000)+100000000)
}

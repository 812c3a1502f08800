// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juicebox-at/limited-builder/models"
	"github.com/juicebox-at/limited-builder/repository"
	testingutil "github.com/juicebox-at/limited-builder/testing"
	"github.com/juicebox-at/limited-builder/utils"
)

func TestCreationRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCreationRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("SaveAndByUUID", func(t *testing.T) {
			creation := &models.Creation{
				Name:           "Beeren Blitz",
				PrimaryFlavors: []string{"erdbeere", "himbeere"},
				BaseType:       models.BaseTypeNormal,
				Variant:        models.VariantOriginal,
				CreatorEmail:   "Berry.Fan@Example.com",
			}
			require.NoError(t, repo.Save(ctx, creation))
			assert.NotZero(t, creation.ID)
			assert.NotEqual(t, uuid.Nil, creation.UUID)
			// BeforeCreate normalizes the creator email
			assert.Equal(t, "berry.fan@example.com", creation.CreatorEmail)

			found, err := repo.ByUUID(ctx, creation.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, creation.ID, found.ID)
			assert.Equal(t, []string{"erdbeere", "himbeere"}, []string(found.PrimaryFlavors))
		})

		t.Run("ByUUIDNotFound", func(t *testing.T) {
			found, err := repo.ByUUID(ctx, uuid.NewString())
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ByUUIDInvalidInput", func(t *testing.T) {
			found, err := repo.ByUUID(ctx, "not-a-uuid")
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ByNameCaseInsensitive", func(t *testing.T) {
			_, err := fixtures.CreateTestCreationWithOptions("Zitrus Power", fixtures.RandomEmail(), []string{"zitrone"}, nil, models.VariantOriginal)
			require.NoError(t, err)

			found, err := repo.ByName(ctx, "zitrus power")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, "Zitrus Power", found.Name)

			found, err = repo.ByName(ctx, "ZITRUS POWER")
			require.NoError(t, err)
			assert.NotNil(t, found)
		})

		t.Run("ByCreatorEmailCaseInsensitive", func(t *testing.T) {
			_, err := fixtures.CreateTestCreationWithOptions("Mango Welle", "mango.fan@example.com", []string{"mango"}, nil, models.VariantOriginal)
			require.NoError(t, err)

			found, err := repo.ByCreatorEmail(ctx, "Mango.Fan@Example.COM")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, "Mango Welle", found.Name)
		})

		t.Run("LeaderboardOrderingAndTiebreak", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			first, err := fixtures.CreateTestCreationWithOptions("Erster Mix", fixtures.RandomEmail(), []string{"apfel"}, nil, models.VariantOriginal)
			require.NoError(t, err)
			second, err := fixtures.CreateTestCreationWithOptions("Zweiter Mix", fixtures.RandomEmail(), []string{"birne"}, nil, models.VariantOriginal)
			require.NoError(t, err)
			third, err := fixtures.CreateTestCreationWithOptions("Dritter Mix", fixtures.RandomEmail(), []string{"kirsche"}, nil, models.VariantOriginal)
			require.NoError(t, err)

			// third gets two votes, first and second stay tied at zero
			_, err = fixtures.CreateTestVote(third, fixtures.RandomEmail())
			require.NoError(t, err)
			_, err = fixtures.CreateTestVote(third, fixtures.RandomEmail())
			require.NoError(t, err)

			page, err := repo.Leaderboard(ctx, models.CreationFilter{}, 10, 0)
			require.NoError(t, err)
			require.Len(t, page, 3)
			assert.Equal(t, third.ID, page[0].ID)
			// Equal vote counts keep insertion order
			assert.Equal(t, first.ID, page[1].ID)
			assert.Equal(t, second.ID, page[2].ID)
		})

		t.Run("LeaderboardFlavorFilter", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := fixtures.CreateTestCreationWithOptions("Erdbeer Traum", fixtures.RandomEmail(), []string{"erdbeere", "vanille"}, nil, models.VariantOriginal)
			require.NoError(t, err)
			_, err = fixtures.CreateTestCreationWithOptions("Kokos Insel", fixtures.RandomEmail(), []string{"kokos"}, nil, models.VariantOriginal)
			require.NoError(t, err)

			page, err := repo.Leaderboard(ctx, models.CreationFilter{FlavorLike: utils.ToPtr("erdbeere")}, 10, 0)
			require.NoError(t, err)
			require.Len(t, page, 1)
			assert.Equal(t, "Erdbeer Traum", page[0].Name)
		})

		t.Run("LeaderboardAccentNoneFilter", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			cola := models.AccentCola
			_, err := fixtures.CreateTestCreationWithOptions("Cola Kick", fixtures.RandomEmail(), []string{"kirsche"}, &cola, models.VariantOriginal)
			require.NoError(t, err)
			plain, err := fixtures.CreateTestCreationWithOptions("Pur Genuss", fixtures.RandomEmail(), []string{"apfel"}, nil, models.VariantOriginal)
			require.NoError(t, err)

			// "none" selects creations without an accent
			page, err := repo.Leaderboard(ctx, models.CreationFilter{Accent: utils.ToPtr("none")}, 10, 0)
			require.NoError(t, err)
			require.Len(t, page, 1)
			assert.Equal(t, plain.ID, page[0].ID)

			page, err = repo.Leaderboard(ctx, models.CreationFilter{Accent: utils.ToPtr("cola")}, 10, 0)
			require.NoError(t, err)
			require.Len(t, page, 1)
			assert.Equal(t, "Cola Kick", page[0].Name)
		})

		t.Run("IncrementAndDecrementVotes", func(t *testing.T) {
			creation, err := fixtures.CreateTestCreation()
			require.NoError(t, err)

			require.NoError(t, repo.IncrementVotes(ctx, creation.ID))
			require.NoError(t, repo.IncrementVotes(ctx, creation.ID))

			found, err := repo.ByID(ctx, creation.ID)
			require.NoError(t, err)
			assert.Equal(t, 2, found.VotesCount)

			require.NoError(t, repo.DecrementVotes(ctx, creation.ID))
			require.NoError(t, repo.DecrementVotes(ctx, creation.ID))
			// Decrementing at zero clamps instead of going negative
			require.NoError(t, repo.DecrementVotes(ctx, creation.ID))

			found, err = repo.ByID(ctx, creation.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, found.VotesCount)
		})

		t.Run("UpdateImageURL", func(t *testing.T) {
			creation, err := fixtures.CreateTestCreation()
			require.NoError(t, err)

			url := "https://cdn.example.com/creation-images/testmix-123.jpg"
			require.NoError(t, repo.UpdateImageURL(ctx, creation.ID, &url))

			found, err := repo.ByID(ctx, creation.ID)
			require.NoError(t, err)
			require.NotNil(t, found.ImageURL)
			assert.Equal(t, url, *found.ImageURL)
		})

		t.Run("MissingImageFilter", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			withImage, err := fixtures.CreateTestCreation()
			require.NoError(t, err)
			url := "https://cdn.example.com/creation-images/a.jpg"
			require.NoError(t, repo.UpdateImageURL(ctx, withImage.ID, &url))

			missing, err := fixtures.CreateTestCreation()
			require.NoError(t, err)

			page, err := repo.ByFilter(ctx, models.CreationFilter{MissingImage: utils.ToPtr(true)}, "created_at ASC", 10, 0)
			require.NoError(t, err)
			require.Len(t, page, 1)
			assert.Equal(t, missing.ID, page[0].ID)
		})

		t.Run("Delete", func(t *testing.T) {
			creation, err := fixtures.CreateTestCreation()
			require.NoError(t, err)

			require.NoError(t, repo.Delete(ctx, creation.ID))

			found, err := repo.ByID(ctx, creation.ID)
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestVoteRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewVoteRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("SaveAndByVoterEmail", func(t *testing.T) {
			creation, err := fixtures.CreateTestCreation()
			require.NoError(t, err)

			vote := &models.Vote{
				CreationID: creation.ID,
				VoterEmail: "Voter.One@Example.com",
			}
			require.NoError(t, repo.Save(ctx, vote))
			assert.NotEqual(t, uuid.Nil, vote.UUID)
			assert.Equal(t, "voter.one@example.com", vote.VoterEmail)

			found, err := repo.ByVoterEmail(ctx, "VOTER.ONE@example.com")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, creation.ID, found.CreationID)
		})

		t.Run("ByVoterEmailNotFound", func(t *testing.T) {
			found, err := repo.ByVoterEmail(ctx, "nobody@example.com")
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("UniqueVoterEmail", func(t *testing.T) {
			first, err := fixtures.CreateTestCreation()
			require.NoError(t, err)
			second, err := fixtures.CreateTestCreation()
			require.NoError(t, err)

			email := fixtures.RandomEmail()
			_, err = fixtures.CreateTestVote(first, email)
			require.NoError(t, err)

			// The unique index rejects a second standing vote for the same
			// email, and the error is recognizable so concurrent casts can
			// be answered with ALREADY_VOTED instead of a server error.
			dup := &models.Vote{CreationID: second.ID, VoterEmail: email}
			err = repo.Save(ctx, dup)
			require.Error(t, err)
			assert.True(t, repository.IsDuplicateKey(err))
		})

		t.Run("CountAndDeleteByCreationID", func(t *testing.T) {
			creation, err := fixtures.CreateTestCreation()
			require.NoError(t, err)

			_, err = fixtures.CreateTestVote(creation, fixtures.RandomEmail())
			require.NoError(t, err)
			_, err = fixtures.CreateTestVote(creation, fixtures.RandomEmail())
			require.NoError(t, err)

			count, err := repo.CountByCreationID(ctx, creation.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)

			require.NoError(t, repo.DeleteByCreationID(ctx, creation.ID))

			count, err = repo.CountByCreationID(ctx, creation.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(0), count)
		})

		t.Run("DeleteByID", func(t *testing.T) {
			creation, err := fixtures.CreateTestCreation()
			require.NoError(t, err)

			email := fixtures.RandomEmail()
			vote, err := fixtures.CreateTestVote(creation, email)
			require.NoError(t, err)

			require.NoError(t, repo.DeleteByID(ctx, vote.ID))

			found, err := repo.ByVoterEmail(ctx, email)
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		return nil
	})
	require.NoError(t, err)
}

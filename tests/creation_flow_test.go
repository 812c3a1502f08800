// Package tests contains test cases for business flows against a real database
package tests

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juicebox-at/limited-builder/app/dto"
	businessflow "github.com/juicebox-at/limited-builder/business_flow"
	"github.com/juicebox-at/limited-builder/models"
	"github.com/juicebox-at/limited-builder/repository"
	testingutil "github.com/juicebox-at/limited-builder/testing"
	"github.com/juicebox-at/limited-builder/utils"
)

func newCreationFlow(testDB *testingutil.TestDB) businessflow.CreationFlow {
	creationRepo := repository.NewCreationRepository(testDB.DB)
	voteRepo := repository.NewVoteRepository(testDB.DB)
	return businessflow.NewCreationFlow(creationRepo, voteRepo, testDB.DB, nil, nil)
}

func submitRequest(name, email string) *dto.SubmitCreationRequest {
	return &dto.SubmitCreationRequest{
		Name:           name,
		PrimaryFlavors: []string{"erdbeere", "zitrone"},
		BaseType:       "normal",
		Variant:        "original",
		Email:          email,
	}
}

func TestSubmitCreation(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newCreationFlow(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("203.0.113.7", "test-agent")

		t.Run("Success", func(t *testing.T) {
			resp, err := flow.SubmitCreation(ctx, submitRequest("Sommer Traum", "summer@example.com"), metadata)
			require.NoError(t, err)
			require.NotNil(t, resp.Creation)
			assert.Equal(t, "Sommer Traum", resp.Creation.Name)
			assert.Equal(t, "none", resp.Creation.Accent)
			assert.Equal(t, 0, resp.Creation.VotesCount)
			assert.NotEmpty(t, resp.Creation.UUID)
			assert.Len(t, resp.Creation.FlavorEmojis, 2)
			assert.NotEmpty(t, resp.Creation.StandardMatch)
		})

		t.Run("DuplicateEmailSurfacesExistingCreation", func(t *testing.T) {
			resp, err := flow.SubmitCreation(ctx, submitRequest("Anderer Name", "Summer@Example.COM"), metadata)
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.True(t, businessflow.IsDuplicateEmail(err))

			var dup *businessflow.DuplicateEmailError
			require.True(t, errors.As(err, &dup))
			assert.Equal(t, "Sommer Traum", dup.ExistingName)
			assert.NotEmpty(t, dup.ExistingUUID)
		})

		t.Run("DuplicateNameCaseInsensitive", func(t *testing.T) {
			resp, err := flow.SubmitCreation(ctx, submitRequest("sommer traum", "other@example.com"), metadata)
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.True(t, businessflow.IsDuplicateName(err))
		})

		t.Run("InvalidName", func(t *testing.T) {
			for _, name := range []string{"ab", "Mix! With? Symbols", "   ", "Ein viel zu langer Kreationsname der das Limit sprengt"} {
				resp, err := flow.SubmitCreation(ctx, submitRequest(name, "namecheck@example.com"), metadata)
				assert.Nil(t, resp)
				require.Error(t, err)
				assert.True(t, businessflow.IsValidationError(err), "expected validation error for %q", name)
			}
		})

		t.Run("UmlautNameAccepted", func(t *testing.T) {
			resp, err := flow.SubmitCreation(ctx, submitRequest("Süße Überraschung", "umlaut@example.com"), metadata)
			require.NoError(t, err)
			assert.Equal(t, "Süße Überraschung", resp.Creation.Name)
		})

		t.Run("UnknownFlavorRejected", func(t *testing.T) {
			req := submitRequest("Geheime Zutat", "secret@example.com")
			req.PrimaryFlavors = []string{"erdbeere", "durian"}
			resp, err := flow.SubmitCreation(ctx, req, metadata)
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.True(t, businessflow.IsValidationError(err))
		})

		t.Run("AccentNoneStoredAsNull", func(t *testing.T) {
			req := submitRequest("Purer Saft", "pure@example.com")
			req.Accent = utils.ToPtr("none")
			resp, err := flow.SubmitCreation(ctx, req, metadata)
			require.NoError(t, err)
			assert.Equal(t, "none", resp.Creation.Accent)

			repo := repository.NewCreationRepository(testDB.DB)
			stored, err := repo.ByUUID(ctx, resp.Creation.UUID)
			require.NoError(t, err)
			assert.Nil(t, stored.Accent)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListCreations(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newCreationFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		cola := models.AccentCola
		top, err := fixtures.CreateTestCreationWithOptions("Cola Blitz", fixtures.RandomEmail(), []string{"kirsche"}, &cola, models.VariantOriginal)
		require.NoError(t, err)
		_, err = fixtures.CreateTestCreationWithOptions("Leichte Brise", fixtures.RandomEmail(), []string{"zitrone", "minze"}, nil, models.VariantLight)
		require.NoError(t, err)
		_, err = fixtures.CreateTestVote(top, fixtures.RandomEmail())
		require.NoError(t, err)

		t.Run("DefaultOrdering", func(t *testing.T) {
			resp, err := flow.ListCreations(ctx, &dto.ListCreationsRequest{})
			require.NoError(t, err)
			assert.Equal(t, int64(2), resp.Total)
			assert.Equal(t, 50, resp.Limit)
			require.Len(t, resp.Creations, 2)
			assert.Equal(t, "Cola Blitz", resp.Creations[0].Name)
			assert.Equal(t, 1, resp.Creations[0].VotesCount)
		})

		t.Run("VariantFilter", func(t *testing.T) {
			resp, err := flow.ListCreations(ctx, &dto.ListCreationsRequest{Variant: "light"})
			require.NoError(t, err)
			require.Len(t, resp.Creations, 1)
			assert.Equal(t, "Leichte Brise", resp.Creations[0].Name)
		})

		t.Run("FlavorFilter", func(t *testing.T) {
			resp, err := flow.ListCreations(ctx, &dto.ListCreationsRequest{Flavor: "minze"})
			require.NoError(t, err)
			require.Len(t, resp.Creations, 1)
			assert.Equal(t, "Leichte Brise", resp.Creations[0].Name)
		})

		t.Run("AccentNoneFilter", func(t *testing.T) {
			resp, err := flow.ListCreations(ctx, &dto.ListCreationsRequest{Accent: "none"})
			require.NoError(t, err)
			require.Len(t, resp.Creations, 1)
			assert.Equal(t, "Leichte Brise", resp.Creations[0].Name)
		})

		t.Run("InvalidPagination", func(t *testing.T) {
			resp, err := flow.ListCreations(ctx, &dto.ListCreationsRequest{Limit: 500})
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.True(t, businessflow.IsValidationError(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDeleteCreation(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newCreationFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		voteRepo := repository.NewVoteRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("OwnerCanDelete", func(t *testing.T) {
			creation, err := fixtures.CreateTestCreationWithOptions("Mein Eigener Mix", "owner@example.com", []string{"apfel"}, nil, models.VariantOriginal)
			require.NoError(t, err)
			_, err = fixtures.CreateTestVote(creation, fixtures.RandomEmail())
			require.NoError(t, err)

			req := &dto.DeleteCreationRequest{
				UUID:           creation.UUID.String(),
				RequesterEmail: utils.ToPtr("Owner@Example.COM"),
			}
			resp, err := flow.DeleteCreation(ctx, req, false)
			require.NoError(t, err)
			assert.NotEmpty(t, resp.Message)

			// Votes are removed along with the creation
			count, err := voteRepo.CountByCreationID(ctx, creation.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(0), count)

			_, err = flow.GetCreation(ctx, creation.UUID.String())
			require.Error(t, err)
			assert.True(t, businessflow.IsCreationNotFound(err))
		})

		t.Run("NonOwnerForbidden", func(t *testing.T) {
			creation, err := fixtures.CreateTestCreationWithOptions("Fremder Mix", "stranger@example.com", []string{"birne"}, nil, models.VariantOriginal)
			require.NoError(t, err)

			req := &dto.DeleteCreationRequest{
				UUID:           creation.UUID.String(),
				RequesterEmail: utils.ToPtr("intruder@example.com"),
			}
			resp, err := flow.DeleteCreation(ctx, req, false)
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.True(t, businessflow.IsNotCreationOwner(err))
		})

		t.Run("AdminSkipsOwnershipCheck", func(t *testing.T) {
			creation, err := fixtures.CreateTestCreationWithOptions("Admin Ziel", "target@example.com", []string{"mango"}, nil, models.VariantOriginal)
			require.NoError(t, err)

			req := &dto.DeleteCreationRequest{UUID: creation.UUID.String()}
			_, err = flow.DeleteCreation(ctx, req, true)
			require.NoError(t, err)
		})

		t.Run("NotFound", func(t *testing.T) {
			req := &dto.DeleteCreationRequest{
				UUID:           "b8e9c6a1-0000-4000-8000-000000000000",
				RequesterEmail: utils.ToPtr("anyone@example.com"),
			}
			resp, err := flow.DeleteCreation(ctx, req, false)
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.True(t, businessflow.IsCreationNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

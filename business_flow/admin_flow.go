// Package businessflow contains the core business logic and use cases for admin workflows
package businessflow

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/juicebox-at/limited-builder/app/dto"
	"github.com/juicebox-at/limited-builder/config"
	"github.com/juicebox-at/limited-builder/models"
	"github.com/juicebox-at/limited-builder/repository"
	"github.com/juicebox-at/limited-builder/utils"
	"github.com/xuri/excelize/v2"
)

// AdminFlow handles privileged maintenance operations
type AdminFlow interface {
	BackfillImages(ctx context.Context) (*dto.BackfillImagesResponse, error)
	ExportParticipants(ctx context.Context) (string, []byte, error)
}

// AdminFlowImpl implements the admin business flow
type AdminFlowImpl struct {
	creationRepo    repository.CreationRepository
	voteRepo        repository.VoteRepository
	imageFlow       ImageFlow
	schedulerConfig *config.SchedulerConfig
}

// NewAdminFlow creates a new admin flow instance
func NewAdminFlow(
	creationRepo repository.CreationRepository,
	voteRepo repository.VoteRepository,
	imageFlow ImageFlow,
	schedulerConfig *config.SchedulerConfig,
) AdminFlow {
	return &AdminFlowImpl{
		creationRepo:    creationRepo,
		voteRepo:        voteRepo,
		imageFlow:       imageFlow,
		schedulerConfig: schedulerConfig,
	}
}

// BackfillImages regenerates images for creations that have none, one at a
// time with a delay so the upstream API is not hammered.
func (f *AdminFlowImpl) BackfillImages(ctx context.Context) (*dto.BackfillImagesResponse, error) {
	batch := f.schedulerConfig.BackfillBatch
	if batch <= 0 {
		batch = 5
	}

	filter := models.CreationFilter{MissingImage: utils.ToPtr(true)}
	creations, err := f.creationRepo.ByFilter(ctx, filter, "created_at ASC", batch, 0)
	if err != nil {
		return nil, NewBusinessError("INTERNAL_ERROR", "Failed to scan creations", err)
	}

	resp := &dto.BackfillImagesResponse{
		Message: "Backfill complete",
		Scanned: len(creations),
	}

	for i, creation := range creations {
		if i > 0 && f.schedulerConfig.BackfillDelay > 0 {
			select {
			case <-ctx.Done():
				resp.Message = "Backfill interrupted"
				return resp, nil
			case <-time.After(f.schedulerConfig.BackfillDelay):
			}
		}

		result, err := f.imageFlow.GenerateForCreation(ctx, creation)
		if err != nil || result.ImageURL == nil {
			if err != nil {
				log.Printf("backfill failed for %s: %v", creation.UUID, err)
			}
			resp.Failed = append(resp.Failed, creation.UUID.String())
			continue
		}
		resp.Generated++
	}

	return resp, nil
}

// ExportParticipants builds an xlsx workbook of all participants for the
// marketing team; the consent column is what the marketing_consent flag is
// collected for.
func (f *AdminFlowImpl) ExportParticipants(ctx context.Context) (string, []byte, error) {
	creations, err := f.creationRepo.ByFilter(ctx, models.CreationFilter{}, "created_at ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("FETCH_CREATIONS_FAILED", "Failed to fetch participants", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Participants"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"name", "email", "marketing_consent", "votes_count", "flavors", "accent", "variant", "created_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for i, c := range creations {
		record := []string{
			c.Name,
			c.CreatorEmail,
			strconv.FormatBool(c.MarketingConsent),
			strconv.Itoa(c.VotesCount),
			strings.Join(c.PrimaryFlavors, ", "),
			c.AccentID(),
			c.Variant.String(),
			c.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	filename := "juicebox_participants.xlsx"
	return filename, buf.Bytes(), nil
}

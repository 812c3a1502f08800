package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/juicebox-at/limited-builder/utils"
	"gorm.io/gorm"
)

// Vote represents a voter's single standing vote for a creation.
// voter_email is unique across the whole table: one standing vote per voter.
type Vote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_votes_uuid" json:"uuid"`
	CreationID uint      `gorm:"not null;index:idx_votes_creation_id" json:"creation_id"`
	VoterEmail string    `gorm:"size:255;not null;uniqueIndex:uk_votes_voter_email" json:"voter_email"`
	CreatedAt  time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_votes_created_at" json:"created_at"`

	// Relations
	Creation *Creation `gorm:"foreignKey:CreationID;references:ID" json:"creation,omitempty"`
}

// TableName returns the table name for the model
func (Vote) TableName() string {
	return "votes"
}

// BeforeCreate is called before creating a new record
func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.UUID == uuid.Nil {
		v.UUID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = utils.UTCNow()
	}
	v.VoterEmail = utils.NormalizeEmail(v.VoterEmail)
	return nil
}

// VoteFilter provides filter fields for repository queries
type VoteFilter struct {
	ID         *uint
	UUID       *uuid.UUID
	CreationID *uint
	VoterEmail *string // case-insensitive exact match
}

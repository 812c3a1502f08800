package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/juicebox-at/limited-builder/utils"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Accent represents the optional accent of a creation
type Accent string

const (
	AccentCola   Accent = "cola"
	AccentEnergy Accent = "energy"
	AccentEistee Accent = "eistee"
)

// String returns the string representation of the accent
func (a Accent) String() string {
	return string(a)
}

// Valid checks if the accent is valid
func (a Accent) Valid() bool {
	switch a {
	case AccentCola, AccentEnergy, AccentEistee:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for Accent
func (a *Accent) Scan(value any) error {
	if value == nil {
		*a = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*a = Accent(v)
	case []byte:
		*a = Accent(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Accent", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for Accent
func (a Accent) Value() (driver.Value, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid Accent: %s", a)
	}
	return string(a), nil
}

// BaseType represents the base beverage type of a creation
type BaseType string

const (
	BaseTypeNormal BaseType = "normal"
	BaseTypeEistee BaseType = "eistee"
)

// String returns the string representation of the base type
func (b BaseType) String() string {
	return string(b)
}

// Valid checks if the base type is valid
func (b BaseType) Valid() bool {
	switch b {
	case BaseTypeNormal, BaseTypeEistee:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for BaseType
func (b *BaseType) Scan(value any) error {
	if value == nil {
		*b = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*b = BaseType(v)
	case []byte:
		*b = BaseType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into BaseType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for BaseType
func (b BaseType) Value() (driver.Value, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid BaseType: %s", b)
	}
	return string(b), nil
}

// Variant represents the sweetness variant of a creation
type Variant string

const (
	VariantOriginal Variant = "original"
	VariantLight    Variant = "light"
)

// String returns the string representation of the variant
func (v Variant) String() string {
	return string(v)
}

// Valid checks if the variant is valid
func (v Variant) Valid() bool {
	switch v {
	case VariantOriginal, VariantLight:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for Variant
func (v *Variant) Scan(value any) error {
	if value == nil {
		*v = ""
		return nil
	}

	switch val := value.(type) {
	case string:
		*v = Variant(val)
	case []byte:
		*v = Variant(string(val))
	default:
		return fmt.Errorf("cannot scan %T into Variant", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for Variant
func (v Variant) Value() (driver.Value, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid Variant: %s", v)
	}
	return string(v), nil
}

// Creation represents a submitted limited-edition beverage creation
type Creation struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UUID             uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_creations_uuid" json:"uuid"`
	Name             string         `gorm:"size:30;not null" json:"name"`
	PrimaryFlavors   pq.StringArray `gorm:"type:text[];not null" json:"primary_flavors"`
	Accent           *Accent        `gorm:"type:creation_accent" json:"accent,omitempty"`
	BaseType         BaseType       `gorm:"type:creation_base_type;not null;default:'normal'" json:"base_type"`
	Variant          Variant        `gorm:"type:creation_variant;not null;default:'original'" json:"variant"`
	CreatorEmail     string         `gorm:"size:255;not null" json:"creator_email"`
	CreatorIP        *string        `gorm:"size:45" json:"creator_ip,omitempty"`
	ImageURL         *string        `gorm:"type:text" json:"image_url,omitempty"`
	VotesCount       int            `gorm:"not null;default:0;index:idx_creations_votes_count" json:"votes_count"`
	MarketingConsent bool           `gorm:"not null;default:false" json:"marketing_consent"`
	CreatedAt        time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_creations_created_at" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Votes []Vote `gorm:"foreignKey:CreationID" json:"votes,omitempty"`
}

// TableName returns the table name for the model
func (Creation) TableName() string {
	return "creations"
}

// BeforeCreate is called before creating a new record
func (c *Creation) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	c.UpdatedAt = utils.UTCNow()
	c.CreatorEmail = utils.NormalizeEmail(c.CreatorEmail)
	return nil
}

// AccentID returns the accent id or "none" when the creation has no accent.
func (c *Creation) AccentID() string {
	if c.Accent == nil {
		return "none"
	}
	return c.Accent.String()
}

// DominantFlavor returns the first selected flavor id.
func (c *Creation) DominantFlavor() string {
	if len(c.PrimaryFlavors) == 0 {
		return ""
	}
	return c.PrimaryFlavors[0]
}

// CreationFilter provides filter fields for repository queries
type CreationFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Name          *string // case-insensitive exact match
	CreatorEmail  *string // case-insensitive exact match
	FlavorLike    *string // substring match against any selected flavor
	Accent        *string // accent id; "none" matches creations without accent
	Variant       *Variant
	MissingImage  *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

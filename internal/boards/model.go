package boards

import (
	"strings"
	"time"
)

// Occasion enumerates the supported board occasions.
type Occasion string

const (
	OccasionBirthday        Occasion = "birthday"
	OccasionFarewell        Occasion = "farewell"
	OccasionCongratulations Occasion = "congratulations"
	OccasionThankYou        Occasion = "thank-you"
	OccasionWelcome         Occasion = "welcome"
	OccasionAnniversary     Occasion = "anniversary"
	OccasionGetWell         Occasion = "get-well"
	OccasionHoliday         Occasion = "holiday"
	OccasionOther           Occasion = "other"
)

// ParseOccasion validates raw input against the occasion enumeration.
func ParseOccasion(raw string) (Occasion, bool) {
	occasion := Occasion(strings.TrimSpace(raw))
	switch occasion {
	case OccasionBirthday, OccasionFarewell, OccasionCongratulations,
		OccasionThankYou, OccasionWelcome, OccasionAnniversary,
		OccasionGetWell, OccasionHoliday, OccasionOther:
		return occasion, true
	default:
		return "", false
	}
}

const (
	maxTitleLength         = 100
	maxRecipientNameLength = 50
)

// Board is a shareable collection of messages for one occasion and recipient.
// The share code is the only public lookup path; Password is stripped before
// any response leaves the owner scope.
type Board struct {
	ID                string     `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	OwnerID           string     `gorm:"column:owner_id;size:190;not null;index" json:"userId"`
	Title             string     `gorm:"column:title;size:100;not null" json:"title"`
	RecipientName     string     `gorm:"column:recipient_name;size:50;not null" json:"recipientName"`
	Occasion          Occasion   `gorm:"column:occasion;size:32;not null" json:"occasion"`
	Description       string     `gorm:"column:description;type:text" json:"description,omitempty"`
	BackgroundColor   string     `gorm:"column:background_color;size:32;not null" json:"backgroundColor"`
	BackgroundPattern string     `gorm:"column:background_pattern;size:64" json:"backgroundPattern,omitempty"`
	IsPublic          bool       `gorm:"column:is_public;not null;default:true" json:"isPublic"`
	Password          string     `gorm:"column:password;size:190" json:"password,omitempty"`
	ShareCode         string     `gorm:"column:share_code;size:16;not null;uniqueIndex" json:"shareCode"`
	ExpiresAt         *time.Time `gorm:"column:expires_at" json:"expiresAt,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;not null" json:"updatedAt"`
}

// TableName provides the explicit table binding for GORM.
func (Board) TableName() string {
	return "boards"
}

// Public returns a copy of the board safe for non-owner consumption.
func (b Board) Public() Board {
	b.Password = ""
	return b
}

// Expired reports whether the board's expiry timestamp has passed.
func (b Board) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && b.ExpiresAt.Before(now)
}
